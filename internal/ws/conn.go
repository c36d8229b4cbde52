// internal/ws/conn.go
package ws

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"
)

// ErrConnClosed is returned by Write once a connection has been torn down or
// its outbound buffer is no longer being drained.
var ErrConnClosed = errors.New("connection closed")

const outboundBuffer = 16

// Conn wraps a single live WebSocket with a buffered outbound channel.
// All registry sends go through the channel so broadcasting never blocks on a
// slow peer; the write pump is the only goroutine touching the socket writer.
type Conn struct {
	ws     *websocket.Conn
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	out    chan []byte
}

// NewConn wraps an accepted WebSocket. cancel stops the connection's read
// loop and write pump; it may be nil in tests.
func NewConn(wsc *websocket.Conn, cancel context.CancelFunc) *Conn {
	return &Conn{
		ws:     wsc,
		cancel: cancel,
		out:    make(chan []byte, outboundBuffer),
	}
}

// Write enqueues one serialized message for the write pump. A full buffer is
// treated the same as a closed connection: the peer has stopped draining and
// the caller should unregister it.
func (c *Conn) Write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.out <- data:
		return nil
	default:
		return ErrConnClosed
	}
}

// Close tears the connection down. Idempotent; safe from any goroutine.
func (c *Conn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.out)
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
	if c.ws != nil {
		_ = c.ws.Close(websocket.StatusNormalClosure, "closed")
	}
}

// RunWritePump drains the outbound channel onto the socket and keeps the
// connection alive with periodic pings. It exits when the context is done,
// the channel is closed, or a write fails.
func (c *Conn) RunWritePump(ctx context.Context, logger *logrus.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.out:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := c.ws.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("write pump: socket write failed: %v", err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.ws.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warnf("write pump: ping failed, assuming disconnect: %v", err)
				return
			}
		}
	}
}

// Drain returns the outbound channel for inspection. Test helper.
func (c *Conn) Drain() <-chan []byte {
	return c.out
}
