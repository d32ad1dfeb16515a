package tracking

import "errors"

var (
	// ErrSessionAlreadyOpen is returned when opening a session for a delivery
	// that already has a non-closed one. Callers must go through the
	// supervisor, which treats this as "intent already satisfied" and logs it.
	ErrSessionAlreadyOpen = errors.New("tracking session already open for delivery")

	// ErrSessionClosed is returned on any use of a session handle after
	// Close. Late writes are expected during teardown races; callers drop
	// them silently and log at debug level.
	ErrSessionClosed = errors.New("tracking session is closed")

	// ErrNoActiveSession is returned when a location sample arrives for a
	// delivery that has no open tracking session (not picked up, or viewer
	// tracking disabled).
	ErrNoActiveSession = errors.New("no active tracking session for delivery")
)
