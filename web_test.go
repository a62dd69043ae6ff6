/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

func testWebServer(cfg *Config, sm *sessionManager) *httptest.Server {
	mux := httprouter.New()
	errs := make(chan error, 64)

	mux.GET("/", serveHomePage(cfg))
	mux.GET("/healthz", serveHealthCheck(cfg, errs))
	mux.GET("/qr", qrHandler(cfg))
	mux.GET("/version", serveVersion(cfg, errs))
	mux.GET("/play/ws", serveWS(cfg, sm))

	return httptest.NewServer(mux)
}

func TestHealthCheckAndVersion(t *testing.T) {
	cfg := &Config{low: 0, high: 100, players: 2, port: 5000}
	srv := testWebServer(cfg, newSessionManager(cfg))
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("healthz status = %d, want 200", resp.StatusCode)
	}

	resp, err = srv.Client().Get(srv.URL + "/version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("version status = %d, want 200", resp.StatusCode)
	}
}

func TestQRHandlerServesPNG(t *testing.T) {
	cfg := &Config{low: 0, high: 100, players: 2, port: 5000}
	srv := testWebServer(cfg, newSessionManager(cfg))
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/qr")
	if err != nil {
		t.Fatalf("qr: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("qr status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Fatalf("qr content type = %q, want image/png", ct)
	}
}

// wsClient wraps a dialed websocket for line-based assertions.
type wsClient struct {
	conn *websocket.Conn
}

func dialWS(t *testing.T, srv *httptest.Server) *wsClient {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/play/ws"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}

	return &wsClient{conn: conn}
}

func (c *wsClient) expect(t *testing.T, verb string) []int {
	t.Helper()

	got, args := parseWSLine(t, c)
	if got != verb {
		t.Fatalf("next message verb = %q, want %s", got, verb)
	}

	return args
}

func (c *wsClient) send(t *testing.T, attempt int) {
	t.Helper()

	if err := c.conn.WriteMessage(websocket.TextMessage, []byte(strconv.Itoa(attempt))); err != nil {
		t.Fatalf("send: %v", err)
	}
}

func TestWebSocketGame(t *testing.T) {
	cfg := &Config{low: 0, high: 100, players: 2}
	sm := newSessionManager(cfg)

	srv := testWebServer(cfg, sm)
	defer srv.Close()

	p0 := dialWS(t, srv)
	defer p0.conn.Close()

	p0.expect(t, verbWelcome)
	p0.expect(t, verbLobby)

	p1 := dialWS(t, srv)
	defer p1.conn.Close()

	p1.expect(t, verbWelcome)
	p1.expect(t, verbLobby)

	p0.expect(t, verbStart)
	args := p0.expect(t, verbTurn)
	if len(args) != 2 {
		t.Fatalf("TURN args = %v, want low and high", args)
	}
	low, high := args[0], args[1]

	p1.expect(t, verbStart)
	p1.expect(t, verbWait)

	// Binary-search from seat 0 until it wins or the turn rotates through
	// seat 1, which always guesses out of range and keeps the game alive.
	for {
		guess := (low + high) / 2
		p0.send(t, guess)

		verb, _ := parseWSLine(t, p0)
		switch verb {
		case verbWon:
			p1.expect(t, verbLost)
			return
		case verbLow:
			low = guess + 1
		case verbHigh:
			high = guess - 1
		default:
			t.Fatalf("unexpected reply %q to a guess", verb)
		}

		p0.expect(t, verbWait)

		p1.expect(t, verbTurn)
		p1.send(t, low-1000)
		p1.expect(t, verbLow)
		p1.expect(t, verbWait)

		p0.expect(t, verbTurn)
	}
}

func parseWSLine(t *testing.T, c *wsClient) (string, []int) {
	t.Helper()

	_ = c.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	verb, args := parseLine(string(data))

	return verb, args
}
