/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package gateway

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Seednode/tictactoe/protocol"
	"github.com/Seednode/tictactoe/session"
	"github.com/gorilla/websocket"
)

type client struct {
	id     string
	gw     *Gateway
	conn   *websocket.Conn
	gameID string

	// session is only touched by the reader goroutine.
	session *session.Session
	name    string

	mu     sync.Mutex
	send   chan any
	closed bool
}

// Deliver queues msg for the writer. It never blocks; if the queue is full
// the connection is shut down instead.
func (c *client) Deliver(msg any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	select {
	case c.send <- msg:
	default:
		c.closed = true
		close(c.send)
		c.gw.logf("SERVE: Connection %s dropped, send buffer full", c.id)
	}
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *client) readPump() {
	defer func() {
		c.leave()
		c.close()
		_ = c.conn.Close()

		c.gw.metrics.ConnectionClosed()
		c.gw.logf("SERVE: Connection %s closed", c.id)
	}()

	c.conn.SetReadLimit(c.gw.maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.gw.pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.gw.pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.gw.logf("ERROR: Connection %s: %v", c.id, err)
			}
			return
		}

		if err := c.handle(data); err != nil {
			c.reject(err)
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(c.gw.pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.gw.writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := protocol.Encode(msg)
			if err != nil {
				c.gw.logf("ERROR: Encoding %T for %s: %v", msg, c.id, err)
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.gw.writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) handle(data []byte) error {
	in, err := protocol.Decode(data)
	if err != nil {
		return err
	}

	if in.Join != nil {
		return c.join(in.Join)
	}

	if c.session == nil {
		return ErrNotJoined
	}
	if in.GameID != "" && in.GameID != c.session.ID() {
		return fmt.Errorf("%w: gameId %q does not match joined game", protocol.ErrMalformedMessage, in.GameID)
	}

	switch {
	case in.Choose != nil:
		return c.session.ChooseSymbol(c, in.Choose.Symbol)

	case in.Move != nil:
		if err := c.session.Move(c, in.Move.Index); err != nil {
			return err
		}
		c.gw.metrics.MoveAccepted()
	}

	return nil
}

func (c *client) join(req *protocol.Join) error {
	if c.session != nil {
		return ErrAlreadyJoined
	}
	if c.gameID != "" && req.GameID != c.gameID {
		return fmt.Errorf("%w: gameId %q does not match this game", protocol.ErrMalformedMessage, req.GameID)
	}

	s, role, err := c.gw.registry.CreateOrJoin(req.GameID, req.PlayerName, c)
	if err != nil {
		return err
	}

	c.session = s
	c.name = req.PlayerName
	c.gw.logf("GAMES: %q joined %s as %s via %s", c.name, s.ID(), role, c.id)

	return nil
}

// leave turns a closed connection into a disconnect for its session.
func (c *client) leave() {
	if c.session == nil {
		return
	}

	if err := c.session.Leave(c); err != nil && !errors.Is(err, session.ErrNotParticipant) {
		c.gw.logf("ERROR: Leaving %s for %s: %v", c.session.ID(), c.id, err)
	}
}

func (c *client) reject(err error) {
	code := Code(err)
	c.gw.metrics.Rejected(code)

	c.Deliver(protocol.ErrorMessage{
		Type:    protocol.TypeError,
		Code:    code,
		Message: err.Error(),
	})
}
