// Package tracking manages live location streaming for in-transit deliveries.
//
// A Session is the unit of streaming: it exclusively owns one transport
// connection, numbers the samples it accepts, and recovers transport failures
// with exponential backoff without ever surfacing them to the user. The
// Supervisor is the only component allowed to create or destroy sessions; it
// listens to committed status changes and to the viewer-consent toggle, and
// maintains at most one session per delivery, open exactly while the delivery
// is picked up and a viewer wants tracking.
//
// Closing is cooperative and prompt: a close request aborts a pending
// reconnect before its next retry, and any sample published after close is
// rejected with ErrSessionClosed.
package tracking
