package session

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sirivellaramudu/code-collab-server/internal/models"
)

const (
	writeWait     = 10 * time.Second
	pingPeriod    = 54 * time.Second
	sendQueueSize = 64
)

// Client wraps the outbound side of one websocket connection. Frames are
// queued and written by a single writer goroutine, so the per-room order in
// which frames were queued is the order the peer observes them.
type Client struct {
	ID   string
	Conn *websocket.Conn

	send chan models.WSFrame
	done chan struct{}

	mu     sync.Mutex
	hook   func(models.WSFrame)
	closed bool
}

func NewClient(id string, conn *websocket.Conn) *Client {
	return &Client{
		ID:   id,
		Conn: conn,
		send: make(chan models.WSFrame, sendQueueSize),
		done: make(chan struct{}),
	}
}

// SetSendHook replaces the default WebSocket sender (used in tests).
func (c *Client) SetSendHook(fn func(models.WSFrame)) {
	c.mu.Lock()
	c.hook = fn
	c.mu.Unlock()
}

// Send queues a frame for delivery. Delivery is best-effort: frames for a
// closed connection or a backed-up queue are dropped, never an error.
func (c *Client) Send(frame models.WSFrame) {
	c.mu.Lock()
	hook, closed := c.hook, c.closed
	c.mu.Unlock()

	if hook != nil {
		hook(frame)
		return
	}
	if closed || c.Conn == nil {
		return
	}
	select {
	case c.send <- frame:
	default:
	}
}

// Run starts the writer goroutine. No-op without a live connection.
func (c *Client) Run() {
	if c.Conn == nil {
		return
	}
	go c.writePump()
}

// Close stops the writer. Safe to call more than once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteJSON(frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.Conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
