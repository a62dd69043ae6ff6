/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"testing"
	"time"
)

func testSession(players, secret int) *Session {
	cfg := &Config{
		low:     0,
		high:    100,
		players: players,
	}

	s := newSession("testtest", cfg)
	s.secret = secret

	return s
}

func waitDone(t *testing.T, done <-chan struct{}, what string) {
	t.Helper()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestSessionStartsOnlyWhenFull(t *testing.T) {
	s := testSession(3, 42)

	for i := 0; i < 2; i++ {
		seat, ok := s.admit()
		if !ok || seat != i {
			t.Fatalf("admit %d = (%d, %v), want (%d, true)", i, seat, ok, i)
		}
	}

	started := make(chan struct{})
	go func() {
		s.waitUntilStarted()
		close(started)
	}()

	select {
	case <-started:
		t.Fatal("session started with only 2 of 3 players admitted")
	case <-time.After(50 * time.Millisecond):
	}

	if seat, ok := s.admit(); !ok || seat != 2 {
		t.Fatalf("final admit = (%d, %v), want (2, true)", seat, ok)
	}

	waitDone(t, started, "session start")

	if _, ok := s.admit(); ok {
		t.Fatal("admit succeeded on a full session")
	}
}

func TestTurnRotationIsRoundRobin(t *testing.T) {
	s := testSession(3, 42)
	for i := 0; i < 3; i++ {
		s.admit()
	}

	want := []int{0, 1, 2, 0, 1}
	for _, seat := range want {
		cur, ok := s.currentTurn()
		if !ok {
			t.Fatal("currentTurn not meaningful while game in progress")
		}
		if cur != seat {
			t.Fatalf("currentTurn = %d, want %d", cur, seat)
		}
		s.submitTurnResult(seat, TooLow)
	}
}

func TestWinEndsSessionExactlyOnce(t *testing.T) {
	s := testSession(2, 42)
	s.admit()
	s.admit()

	s.submitTurnResult(0, TooHigh)
	s.submitTurnResult(1, Equal)

	if !s.finished() {
		t.Fatal("session not ended after winning guess")
	}

	out := s.result()
	if out == nil {
		t.Fatal("no outcome recorded after winning guess")
	}
	if out.Winner != 1 || out.Secret != 42 {
		t.Fatalf("outcome = %+v, want winner 1, secret 42", out)
	}

	if _, ok := s.currentTurn(); ok {
		t.Fatal("currentTurn still meaningful after session ended")
	}

	defer func() {
		if recover() == nil {
			t.Fatal("submitTurnResult after end did not panic")
		}
	}()
	s.submitTurnResult(0, TooLow)
}

func TestSubmitOutOfTurnPanics(t *testing.T) {
	s := testSession(2, 42)
	s.admit()
	s.admit()

	defer func() {
		if recover() == nil {
			t.Fatal("out-of-turn submit did not panic")
		}
	}()
	s.submitTurnResult(1, TooLow)
}

func TestWaitForTurnUnblocksOnEnd(t *testing.T) {
	s := testSession(2, 42)
	s.admit()
	s.admit()

	released := make(chan turnState, 1)
	go func() {
		released <- s.waitForTurn(1)
	}()

	s.submitTurnResult(0, Equal)

	select {
	case state := <-released:
		if state != turnOver {
			t.Fatalf("waitForTurn = %v, want turnOver", state)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("waiter still parked after session ended")
	}
}

func TestLeaveForfeitsHeldTurn(t *testing.T) {
	s := testSession(3, 42)
	for i := 0; i < 3; i++ {
		s.admit()
	}

	s.leave(0)

	if cur, ok := s.currentTurn(); !ok || cur != 1 {
		t.Fatalf("currentTurn = (%d, %v) after forfeit, want (1, true)", cur, ok)
	}

	// Departed seats are skipped on rotation.
	s.submitTurnResult(1, TooLow)
	if cur, _ := s.currentTurn(); cur != 2 {
		t.Fatalf("currentTurn = %d, want 2", cur)
	}
	s.submitTurnResult(2, TooLow)
	if cur, _ := s.currentTurn(); cur != 1 {
		t.Fatalf("currentTurn = %d after wrapping past departed seat, want 1", cur)
	}
}

func TestLeaveByWaiterDoesNotAdvanceTurn(t *testing.T) {
	s := testSession(3, 42)
	for i := 0; i < 3; i++ {
		s.admit()
	}

	s.leave(2)

	if cur, ok := s.currentTurn(); !ok || cur != 0 {
		t.Fatalf("currentTurn = (%d, %v), want (0, true)", cur, ok)
	}
}

func TestSessionEndsWhenAllSeatsDepart(t *testing.T) {
	s := testSession(2, 42)
	s.admit()
	s.admit()

	s.leave(0)
	s.leave(1)

	if !s.finished() {
		t.Fatal("session not ended after every seat departed")
	}
	if s.result() != nil {
		t.Fatal("outcome produced without a winning guess")
	}
}

func TestPreStartDepartureSkippedOnStart(t *testing.T) {
	s := testSession(2, 42)
	s.admit()
	s.leave(0)
	s.admit()

	if cur, ok := s.currentTurn(); !ok || cur != 1 {
		t.Fatalf("currentTurn = (%d, %v) after pre-start departure, want (1, true)", cur, ok)
	}
}

func TestAbortReleasesLobby(t *testing.T) {
	s := testSession(2, 42)
	s.admit()

	released := make(chan bool, 1)
	go func() {
		released <- s.waitUntilStarted()
	}()

	if !s.abort() {
		t.Fatal("abort of an unfilled session failed")
	}

	select {
	case started := <-released:
		if started {
			t.Fatal("waitUntilStarted reported a started session after abort")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("lobby waiter still parked after abort")
	}

	if s.abort() {
		t.Fatal("abort succeeded twice")
	}
}

func TestAbortRefusedOnceStarted(t *testing.T) {
	s := testSession(2, 42)
	s.admit()
	s.admit()

	if s.abort() {
		t.Fatal("abort succeeded on a started session")
	}
	if s.finished() {
		t.Fatal("started session ended by refused abort")
	}
}
