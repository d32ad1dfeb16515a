// Package stream provides transport implementations for live tracking
// sessions.
package stream

import (
	"context"
	"log/slog"
	"sync"

	"parceltrack/internal/core/domain/model/kernel"
	"parceltrack/internal/core/ports"
)

// FrameHandler consumes wire frames sent over a loopback connection.
type FrameHandler func(deliveryID kernel.UUID, frame []byte)

// Loopback is an in-process Transport. Dialing always succeeds and frames are
// handed to the configured handler on the sender's goroutine. It backs
// single-node deployments where the event hub is the only consumer, and it
// keeps the session machinery exercisable without a broker.
type Loopback struct {
	handler FrameHandler
	logger  *slog.Logger
}

// NewLoopback creates a loopback transport. handler may be nil; frames are
// discarded then.
func NewLoopback(handler FrameHandler, logger *slog.Logger) *Loopback {
	return &Loopback{
		handler: handler,
		logger:  logger.With("component", "loopback_transport"),
	}
}

// Dial opens a connection for one delivery's stream.
func (l *Loopback) Dial(_ context.Context, deliveryID, _ kernel.UUID) (ports.Conn, error) {
	return &loopbackConn{transport: l, deliveryID: deliveryID}, nil
}

type loopbackConn struct {
	transport  *Loopback
	deliveryID kernel.UUID

	mu     sync.Mutex
	closed bool
}

// Send hands the frame to the transport handler. Sending on a closed
// connection is a silent no-op; the session replaces the connection anyway.
func (c *loopbackConn) Send(frame []byte) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()

	if closed {
		return nil
	}
	if c.transport.handler != nil {
		c.transport.handler(c.deliveryID, frame)
	}
	return nil
}

func (c *loopbackConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}
