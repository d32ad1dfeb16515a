package ports

import (
	"context"

	"parceltrack/internal/core/domain/model/kernel"
)

// Transport establishes live stream connections for tracking sessions.
// Dial blocks until the handshake completes or ctx is cancelled; each call
// yields a fresh connection, so reconnecting is dialing again.
type Transport interface {
	Dial(ctx context.Context, deliveryID, pickerID kernel.UUID) (Conn, error)
}

// Conn is one live stream connection. Send pushes an encoded wire frame; a
// transport failure is reported as an error and the connection is considered
// dead from that point (the session dials a new one).
type Conn interface {
	Send(frame []byte) error
	Close() error
}
