/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bufio"
	"net"
	"strconv"
	"strings"
)

// playerConn is one line-oriented player connection. The TCP listener and the
// WebSocket endpoint both produce these, so the game loop never cares which
// transport a player arrived on.
type playerConn interface {
	ReadLine() (string, error)
	WriteLine(line string) error
	Close() error
	RemoteAddr() string
}

type tcpConn struct {
	conn   net.Conn
	reader *bufio.Reader
}

func newTCPConn(conn net.Conn) *tcpConn {
	return &tcpConn{
		conn:   conn,
		reader: bufio.NewReader(conn),
	}
}

func (t *tcpConn) ReadLine() (string, error) {
	line, err := t.reader.ReadString('\n')
	if err != nil {
		return "", err
	}

	return strings.TrimRight(line, "\r\n"), nil
}

func (t *tcpConn) WriteLine(line string) error {
	_, err := t.conn.Write([]byte(line + "\n"))

	return err
}

func (t *tcpConn) Close() error {
	return t.conn.Close()
}

func (t *tcpConn) RemoteAddr() string {
	return t.conn.RemoteAddr().String()
}

// handlePlayer drives a single seat through the whole session: wait for the
// game to start, then alternate between parking until this seat holds the
// turn and reading exactly one well-formed guess. The connection is only ever
// read while this seat legitimately holds the turn.
//
// Any read or write failure makes the handler return, and the deferred leave
// forfeits the seat so the remaining players are never stuck waiting on a
// connection that is gone.
func handlePlayer(cfg *Config, s *Session, conn playerConn, seat int) {
	defer conn.Close()
	defer s.leave(seat)

	if conn.WriteLine(msgWelcome(seat)) != nil {
		return
	}
	if conn.WriteLine(msgLobby(seat+1, s.players)) != nil {
		return
	}

	if !s.waitUntilStarted() {
		_ = conn.WriteLine(msgAbort())
		return
	}

	if conn.WriteLine(msgStart()) != nil {
		return
	}

	for {
		if cur, ok := s.currentTurn(); ok && cur != seat {
			if conn.WriteLine(msgWait(cur)) != nil {
				return
			}
		}

		if s.waitForTurn(seat) == turnOver {
			break
		}

		if conn.WriteLine(msgTurn(s.low, s.high)) != nil {
			return
		}

		if !playTurn(cfg, s, conn, seat) {
			return
		}
	}

	out := s.result()
	switch {
	case out == nil:
		_ = conn.WriteLine(msgAbort())
	case out.Winner != seat:
		_ = conn.WriteLine(msgLost(out.Winner, out.Secret))
	}
}

// playTurn reads lines until one parses as an integer, then evaluates it and
// hands the turn back to the session. Malformed input is reprompted without
// consuming the turn. Returns false if the connection failed mid-turn, in
// which case the caller's deferred leave applies the forfeiture rule.
func playTurn(cfg *Config, s *Session, conn playerConn, seat int) bool {
	for {
		line, err := conn.ReadLine()
		if err != nil {
			logf(cfg, "GAMES: Player %d left session %s mid-turn: %v", seat, s.id, err)
			return false
		}

		attempt, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			if conn.WriteLine(msgBadInput()) != nil {
				return false
			}
			continue
		}

		result := evaluate(attempt, s.secret)

		if result == Equal {
			if conn.WriteLine(msgWon(s.secret)) != nil {
				return false
			}
			logf(cfg, "GAMES: Player %d won session %s (secret %d)", seat, s.id, s.secret)
		} else if conn.WriteLine(msgComparison(result)) != nil {
			return false
		}

		s.submitTurnResult(seat, result)

		return true
	}
}
