// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mcthuva007/Acadamist/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096

	// SendBuffer is the number of frames queued per client before the client
	// is considered too slow and dropped.
	SendBuffer = 32
)

var ErrHubClosed = errors.New("hub closed")

// Hub tracks live connections and pushes full-state frames to all of them.
type Hub struct {
	mu      sync.Mutex
	clients map[*Client]struct{}
	closed  bool
	wg      sync.WaitGroup
}

// Client is one live connection.
type Client struct {
	ID     string
	Remote string

	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

// Register adds conn to the hub and queues initial ahead of any later
// broadcast. The hub takes ownership of conn.
func (h *Hub) Register(conn *websocket.Conn, remote string, initial ...models.Message) (*Client, error) {
	frames := make([][]byte, 0, len(initial))
	for _, msg := range initial {
		data, err := json.Marshal(msg)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to encode %s: %w", msg.Event, err)
		}
		frames = append(frames, data)
	}

	c := &Client{
		ID:     uuid.NewString(),
		Remote: remote,
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, SendBuffer+len(frames)),
	}
	for _, f := range frames {
		c.send <- f
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return nil, ErrHubClosed
	}
	h.clients[c] = struct{}{}
	h.wg.Add(2)
	h.mu.Unlock()

	go c.writePump()
	go c.readPump()

	slog.Info("client connected", "client_id", c.ID, "remote", remote)
	return c, nil
}

// Publish sends the event to every connected client. Clients whose queue is
// full are disconnected.
func (h *Hub) Publish(event string, payload any) {
	data, err := json.Marshal(models.Message{Event: event, Data: payload})
	if err != nil {
		slog.Error("failed to encode broadcast", "event", event, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			slog.Warn("dropping slow client", "client_id", c.ID, "remote", c.Remote)
			h.removeLocked(c)
		}
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Run blocks until ctx is done, then disconnects every client and waits for
// their goroutines to exit.
func (h *Hub) Run(ctx context.Context) error {
	<-ctx.Done()
	h.Close()
	return nil
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
	h.mu.Unlock()

	h.wg.Wait()
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

// removeLocked closes the client's queue; its writer then closes the socket.
func (h *Hub) removeLocked(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// readPump discards inbound frames; it exists to process control frames
// and notice when the peer goes away.
func (c *Client) readPump() {
	defer c.hub.wg.Done()
	defer func() {
		c.hub.unregister(c)
		slog.Info("client disconnected", "client_id", c.ID, "remote", c.Remote)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("client read failed", "client_id", c.ID, "error", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer c.hub.wg.Done()
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				slog.Warn("client write failed", "client_id", c.ID, "error", err)
				c.hub.unregister(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.hub.unregister(c)
				return
			}
		}
	}
}
