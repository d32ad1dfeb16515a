package tracking

// ConnectionState describes where a tracking session's transport currently is
// in its lifecycle.
//
// State transitions:
//
//	connecting ──> open <──> reconnecting
//	     │          │             │
//	     └──────────┴─────────────┴──> closed
//
// closed is terminal; a session is never reused after it.
type ConnectionState int

const (
	// StateUnknown represents an invalid or undefined state.
	StateUnknown ConnectionState = iota

	// StateConnecting is the initial state while the transport handshake is
	// in flight.
	StateConnecting

	// StateOpen means the transport is established and samples flow.
	StateOpen

	// StateReconnecting means the transport failed and the session is
	// retrying with backoff. Samples are still accepted and fanned out
	// locally; only the wire stream is interrupted.
	StateReconnecting

	// StateClosed means the session was torn down. Terminal.
	StateClosed
)

// String returns the wire name of the connection state.
func (s ConnectionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateReconnecting:
		return "reconnecting"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
