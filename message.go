/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"strconv"
	"strings"
)

// Comparison is the result of evaluating a guess against the secret.
type Comparison int

const (
	Equal Comparison = iota
	TooLow
	TooHigh
)

func evaluate(attempt, secret int) Comparison {
	switch {
	case attempt < secret:
		return TooLow
	case attempt > secret:
		return TooHigh
	default:
		return Equal
	}
}

// Wire protocol: one message per line, a machine-readable verb (plus any
// numeric arguments) first, a human-readable trailer after. Clients key off
// the verb and leading integers only.
const (
	verbWelcome  = "WELCOME"  // WELCOME <seat>
	verbLobby    = "LOBBY"    // LOBBY <joined> <needed>
	verbStart    = "START"    // START
	verbTurn     = "TURN"     // TURN <low> <high>
	verbWait     = "WAIT"     // WAIT <seat>
	verbLow      = "LOW"      // LOW
	verbHigh     = "HIGH"     // HIGH
	verbBadInput = "BADINPUT" // BADINPUT
	verbWon      = "WON"      // WON <secret>
	verbLost     = "LOST"     // LOST <winner> <secret>
	verbAbort    = "ABORT"    // ABORT
)

func msgWelcome(seat int) string {
	return fmt.Sprintf("%s %d Welcome! You are player %d.", verbWelcome, seat, seat)
}

func msgLobby(joined, needed int) string {
	return fmt.Sprintf("%s %d %d Waiting for %d more player(s) to connect.", verbLobby, joined, needed, needed-joined)
}

func msgStart() string {
	return verbStart + " All players are connected. The game begins!"
}

func msgTurn(low, high int) string {
	return fmt.Sprintf("%s %d %d Your turn. Enter a number between %d and %d:", verbTurn, low, high, low, high)
}

func msgWait(seat int) string {
	return fmt.Sprintf("%s %d Waiting for player %d to guess.", verbWait, seat, seat)
}

func msgComparison(c Comparison) string {
	if c == TooLow {
		return verbLow + " Too low. The secret number is higher."
	}
	return verbHigh + " Too high. The secret number is lower."
}

func msgBadInput() string {
	return verbBadInput + " Please enter a valid whole number."
}

func msgWon(secret int) string {
	return fmt.Sprintf("%s %d You guessed it! The secret number was %d. You win!", verbWon, secret, secret)
}

func msgLost(winner, secret int) string {
	return fmt.Sprintf("%s %d %d Player %d has won! The secret number was %d.", verbLost, winner, secret, winner, secret)
}

func msgAbort() string {
	return verbAbort + " The session was closed before the game could finish."
}

// parseLine splits a server message into its verb and leading integer
// arguments, ignoring the human-readable trailer.
func parseLine(line string) (string, []int) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}

	var args []int
	for _, f := range fields[1:] {
		n, err := strconv.Atoi(f)
		if err != nil {
			break
		}
		args = append(args, n)
	}

	return fields[0], args
}
