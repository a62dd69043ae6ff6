/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bufio"
	"context"
	"fmt"
	"math/rand"
	"net"
	"os"
	"strconv"
	"time"
)

// guesser narrows the candidate range [min, max] from the server's LOW/HIGH
// hints, picking uniformly within it and avoiding the previous attempt when
// the range still allows a different one.
type guesser struct {
	min  int
	max  int
	last int
}

func newGuesser(min, max int) *guesser {
	return &guesser{
		min:  min,
		max:  max,
		last: min - 1,
	}
}

func (g *guesser) next() int {
	attempt := g.min + rand.Intn(g.max-g.min+1)
	if attempt == g.last && g.min < g.max {
		for attempt == g.last {
			attempt = g.min + rand.Intn(g.max-g.min+1)
		}
	}
	g.last = attempt

	return attempt
}

func (g *guesser) tooLow() {
	if g.last+1 > g.min {
		g.min = g.last + 1
	}
}

func (g *guesser) tooHigh() {
	if g.last-1 < g.max {
		g.max = g.last - 1
	}
}

// Play connects to a server and plays one session, either echoing prompts to
// the terminal and forwarding stdin, or guessing automatically.
func Play(ctx context.Context, cfg *Config, host string, port int) error {
	dialer := &net.Dialer{Timeout: 10 * time.Second}

	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("Connected to %s\n", conn.RemoteAddr())

	pc := newTCPConn(conn)
	stdin := bufio.NewScanner(os.Stdin)

	var auto *guesser

	for {
		line, err := pc.ReadLine()
		if err != nil {
			return fmt.Errorf("connection closed: %w", err)
		}

		fmt.Println(line)

		verb, args := parseLine(line)

		switch verb {
		case verbTurn:
			if !cfg.auto {
				if !stdin.Scan() {
					return stdin.Err()
				}
				if err := pc.WriteLine(stdin.Text()); err != nil {
					return err
				}

				continue
			}

			if auto == nil && len(args) == 2 {
				auto = newGuesser(args[0], args[1])
			}
			if auto == nil {
				auto = newGuesser(0, 100)
			}

			time.Sleep(cfg.delay)

			attempt := auto.next()
			fmt.Printf("Guessing %d (range %d-%d)\n", attempt, auto.min, auto.max)
			if err := pc.WriteLine(strconv.Itoa(attempt)); err != nil {
				return err
			}

		case verbLow:
			if auto != nil {
				auto.tooLow()
			}

		case verbHigh:
			if auto != nil {
				auto.tooHigh()
			}

		case verbBadInput:
			// Manual play only; the next TURN reprompt never comes, the
			// server reads again immediately, so forward another line here.
			if !cfg.auto {
				if !stdin.Scan() {
					return stdin.Err()
				}
				if err := pc.WriteLine(stdin.Text()); err != nil {
					return err
				}
			}

		case verbWon, verbLost, verbAbort:
			return nil
		}
	}
}
