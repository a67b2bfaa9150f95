package session

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"
)

// Client wraps one participant's transport connection. Writes are serialized
// through its mutex because gorilla/websocket allows only one concurrent
// writer per connection.
type Client struct {
	conn *websocket.Conn

	mu     sync.Mutex
	closed bool
	hook   func(msg any)
}

func NewClient(conn *websocket.Conn) *Client { return &Client{conn: conn} }

// SetSendHook replaces the WebSocket sender (used in tests).
func (c *Client) SetSendHook(fn func(msg any)) {
	c.mu.Lock()
	c.hook = fn
	c.mu.Unlock()
}

// Send serializes msg onto the connection. The error is reported to the
// caller; a broadcast loop logs and moves on rather than aborting.
func (c *Client) Send(msg any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hook != nil {
		c.hook(msg)
		return nil
	}
	if c.closed || c.conn == nil {
		return errors.New("connection closed")
	}
	return c.conn.WriteJSON(msg)
}

// Close tears down the transport. Idempotent; later Sends fail.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.conn != nil {
		_ = c.conn.Close()
	}
}
