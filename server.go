/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"crypto/rand"
	"errors"
	"net"
	"os"
	"strconv"
	"sync"
	"time"
)

// sessionManager holds every live session plus the one currently filling up.
// Each accepted connection is admitted into the pending session; once that
// session fills and starts, the next connection opens a fresh one, so any
// number of independent games can run over a single listening process.
type sessionManager struct {
	cfg *Config

	mu       sync.Mutex
	sessions map[string]*Session
	pending  *Session
}

func newSessionManager(cfg *Config) *sessionManager {
	sm := &sessionManager{
		cfg:      cfg,
		sessions: make(map[string]*Session),
	}

	if cfg.lobbyTimeout > 0 {
		go sm.reaperLoop()
	}

	return sm
}

// admit places a connection into the filling session, creating one if needed,
// and starts the per-seat handler goroutine.
func (sm *sessionManager) admit(conn playerConn) {
	sm.mu.Lock()

	if sm.pending == nil {
		id := sm.newSessionID()
		sm.pending = newSession(id, sm.cfg)
		sm.sessions[id] = sm.pending
		logf(sm.cfg, "GAMES: Created session %s (secret %d, %d players)", id, sm.pending.secret, sm.cfg.players)
	}

	s := sm.pending

	seat, ok := s.admit()
	if !ok {
		// Full sessions are cleared below, so this only races an abort.
		sm.pending = nil
		sm.mu.Unlock()
		sm.admit(conn)

		return
	}

	if seat == s.players-1 {
		sm.pending = nil
	}

	sm.mu.Unlock()

	logf(sm.cfg, "GAMES: Player %d joined session %s from %s", seat, s.id, conn.RemoteAddr())

	go handlePlayer(sm.cfg, s, conn, seat)
}

// newSessionID generates a crypto-random session ID and ensures it doesn't
// collide with existing sessions. Callers must hold the manager lock.
func (sm *sessionManager) newSessionID() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	for {
		buf := make([]byte, 8)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out := make([]byte, 8)
		for i := range out {
			out[i] = letters[int(buf[i])%len(letters)]
		}
		id := string(out)

		if _, exists := sm.sessions[id]; !exists {
			return id
		}
	}
}

// reaperLoop periodically abandons sessions that have sat unfilled longer
// than the lobby timeout, and drops finished sessions from the map.
func (sm *sessionManager) reaperLoop() {
	ticker := time.NewTicker(sm.cfg.lobbyTimeout / 2)
	for range ticker.C {
		cutoff := time.Now().Add(-sm.cfg.lobbyTimeout)

		sm.mu.Lock()
		for id, s := range sm.sessions {
			if s.finished() {
				delete(sm.sessions, id)

				continue
			}

			if s.createdAt.Before(cutoff) && s.abort() {
				logf(sm.cfg, "GAMES: Abandoned unfilled session %s", id)
				delete(sm.sessions, id)
				if sm.pending == s {
					sm.pending = nil
				}
			}
		}
		sm.mu.Unlock()
	}
}

// Serve runs the TCP game listener and, unless disabled, the web listener.
func Serve(ctx context.Context, cfg *Config) error {
	var err error

	timeZone := os.Getenv("TZ")
	if timeZone != "" {
		time.Local, err = time.LoadLocation(timeZone)
		if err != nil {
			return err
		}
	}

	logf(cfg, "START: hilo v%s", releaseVersion)

	sm := newSessionManager(cfg)

	listener, err := net.Listen("tcp", net.JoinHostPort(cfg.bind, strconv.Itoa(cfg.port)))
	if err != nil {
		return err
	}

	logf(cfg, "SERVE: Listening for players on %s", listener.Addr())

	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	if cfg.webPort > 0 {
		go serveWeb(ctx, cfg, sm)
	}

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}

			return err
		}

		sm.admit(newTCPConn(conn))
	}
}
