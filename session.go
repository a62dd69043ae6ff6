/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Outcome records the terminal result of a session. It is produced at most
// once, by the first correct guess, and never mutated afterwards.
type Outcome struct {
	Winner int
	Secret int
}

type turnState int

const (
	turnPlay turnState = iota // the caller holds the turn
	turnOver                  // the session ended while waiting
)

// Session is one instance of the game: a fixed number of seats, a single
// secret, and the turn rotation among them. All mutable state is guarded by
// one mutex per session; handlers share the Session by reference and park on
// its condition variable, re-checking their own predicate on every wake since
// turn advances and game end are broadcast to every waiter.
type Session struct {
	id      string
	secret  int
	low     int
	high    int
	players int

	mu        sync.Mutex
	cond      *sync.Cond
	admitted  int
	started   bool
	ended     bool
	current   int
	departed  []bool
	outcome   *Outcome
	createdAt time.Time
}

func newSession(id string, cfg *Config) *Session {
	s := &Session{
		id:        id,
		secret:    cfg.low + rand.Intn(cfg.high-cfg.low+1),
		low:       cfg.low,
		high:      cfg.high,
		players:   cfg.players,
		departed:  make([]bool, cfg.players),
		createdAt: time.Now(),
	}
	s.cond = sync.NewCond(&s.mu)

	return s
}

// admit assigns the next seat to a joining connection. The final admission
// and the transition into the started state are a single critical section, so
// a late connection can never slip into a session that is already full.
func (s *Session) admit() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started || s.ended || s.admitted >= s.players {
		return 0, false
	}

	seat := s.admitted
	s.admitted++

	if s.admitted == s.players {
		s.started = true
		if s.departed[s.current] {
			s.advanceLocked()
		}
		s.cond.Broadcast()
	}

	return seat, true
}

// waitUntilStarted parks the caller until the session starts, returning false
// if it was abandoned first.
func (s *Session) waitUntilStarted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for !s.started && !s.ended {
		s.cond.Wait()
	}

	return s.started && !s.ended
}

// waitForTurn parks the caller until it holds the turn or the session ends.
func (s *Session) waitForTurn(seat int) turnState {
	s.mu.Lock()
	defer s.mu.Unlock()

	for !s.ended && !(s.started && s.current == seat) {
		s.cond.Wait()
	}

	if s.ended {
		return turnOver
	}

	return turnPlay
}

// submitTurnResult records one evaluated attempt by the seat holding the
// turn: a win ends the session and produces the outcome, anything else
// rotates the turn to the next live seat. Calling this out of turn means the
// synchronization contract is broken, so it panics rather than guessing.
func (s *Session) submitTurnResult(seat int, result Comparison) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started || s.ended || s.current != seat {
		panic(fmt.Sprintf("session %s: seat %d submitted a result out of turn", s.id, seat))
	}

	if result == Equal {
		s.ended = true
		s.outcome = &Outcome{Winner: seat, Secret: s.secret}
	} else {
		s.advanceLocked()
	}

	s.cond.Broadcast()
}

// leave marks a seat as departed. If the seat held the turn, the turn is
// forfeited and rotation continues; if no live seats remain, the session ends
// with no outcome. Safe to call more than once and after the session ends.
func (s *Session) leave(seat int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.departed[seat] {
		return
	}
	s.departed[seat] = true

	if s.ended {
		return
	}

	live := 0
	for _, gone := range s.departed {
		if !gone {
			live++
		}
	}

	switch {
	case live == 0:
		s.ended = true
	case s.started && s.current == seat:
		s.advanceLocked()
	}

	s.cond.Broadcast()
}

// abort ends a session that never started, releasing everyone parked on it.
func (s *Session) abort() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started || s.ended {
		return false
	}

	s.ended = true
	s.cond.Broadcast()

	return true
}

// advanceLocked rotates the turn to the next seat that has not departed.
// Callers must hold s.mu. If every seat is gone, the session ends instead.
func (s *Session) advanceLocked() {
	for i := 1; i <= s.players; i++ {
		next := (s.current + i) % s.players
		if !s.departed[next] {
			s.current = next
			return
		}
	}

	s.ended = true
}

// currentTurn reports whose turn it is; ok is false unless the game is in
// progress, since the turn index is meaningless outside that window.
func (s *Session) currentTurn() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current, s.started && !s.ended
}

func (s *Session) finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ended
}

func (s *Session) result() *Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.outcome
}
