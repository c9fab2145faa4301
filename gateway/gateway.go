/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package gateway terminates player websockets and routes their requests
// to sessions.
//
// Each connection gets one reader (the goroutine serving the HTTP request)
// and one writer. Sessions reach a connection only through Deliver, which
// never blocks: a connection that cannot keep up is closed on its own,
// without holding up its opponent.
package gateway

import (
	"net/http"
	"time"

	"github.com/Seednode/tictactoe/metrics"
	"github.com/Seednode/tictactoe/session"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	DefaultMaxMessageSize = 512
	DefaultSendBuffer     = 16
)

type Option func(*Gateway)

// WithSendBuffer sets how many outbound messages may queue per connection
// before it is dropped.
func WithSendBuffer(n int) Option {
	return func(g *Gateway) {
		if n > 0 {
			g.sendBuffer = n
		}
	}
}

func WithMaxMessageSize(n int64) Option {
	return func(g *Gateway) {
		if n > 0 {
			g.maxMessageSize = n
		}
	}
}

func WithLogger(logf func(format string, args ...any)) Option {
	return func(g *Gateway) {
		if logf != nil {
			g.logf = logf
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gateway) {
		g.metrics = m
	}
}

// WithCheckOrigin replaces the upgrader's origin check.
func WithCheckOrigin(check func(r *http.Request) bool) Option {
	return func(g *Gateway) {
		g.upgrader.CheckOrigin = check
	}
}

// WithPingPeriod overrides the keepalive timings; pongWait is derived from it.
func WithPingPeriod(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.pingPeriod = d
			g.pongWait = d * 10 / 9
		}
	}
}

type Gateway struct {
	registry *session.Registry
	upgrader websocket.Upgrader

	sendBuffer     int
	maxMessageSize int64
	writeWait      time.Duration
	pongWait       time.Duration
	pingPeriod     time.Duration

	logf    func(format string, args ...any)
	metrics *metrics.Metrics
}

func New(registry *session.Registry, opts ...Option) *Gateway {
	g := &Gateway{
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		sendBuffer:     DefaultSendBuffer,
		maxMessageSize: DefaultMaxMessageSize,
		writeWait:      writeWait,
		pongWait:       pongWait,
		pingPeriod:     pingPeriod,
		logf:           func(string, ...any) {},
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// ServeWS upgrades the request and serves the connection until it closes.
// If gameID is not empty, the connection may only join that game.
func (g *Gateway) ServeWS(w http.ResponseWriter, r *http.Request, gameID string) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logf("ERROR: WebSocket upgrade from %s failed: %v", r.RemoteAddr, err)
		return
	}

	c := &client{
		id:     uuid.NewString(),
		gw:     g,
		conn:   conn,
		gameID: gameID,
		send:   make(chan any, g.sendBuffer),
	}

	g.metrics.ConnectionOpened()
	g.logf("SERVE: Connection %s opened from %s", c.id, r.RemoteAddr)

	go c.writePump()
	c.readPump()
}
