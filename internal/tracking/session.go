package tracking

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"parceltrack/internal/core/domain/events"
	"parceltrack/internal/core/domain/model/kernel"
	"parceltrack/internal/core/ports"
	"parceltrack/internal/pkg/metrics"

	"github.com/cenkalti/backoff/v4"
)

// Config holds the reconnect and escalation parameters of a tracking session.
type Config struct {
	// InitialBackoff is the delay before the first reconnect attempt.
	InitialBackoff time.Duration

	// BackoffFactor multiplies the delay after each failed attempt.
	BackoffFactor float64

	// MaxBackoff caps the delay between attempts.
	MaxBackoff time.Duration

	// UnavailableAfter is how long a session may stay disconnected before a
	// TrackingUnavailable event is escalated to subscribers. Reconnect
	// attempts continue past this point; only the visibility changes.
	UnavailableAfter time.Duration
}

// DefaultConfig returns the production reconnect parameters: 1s base delay
// doubling up to 30s between attempts, unbounded retries, escalation after
// two minutes offline.
func DefaultConfig() Config {
	return Config{
		InitialBackoff:   time.Second,
		BackoffFactor:    2,
		MaxBackoff:       30 * time.Second,
		UnavailableAfter: 2 * time.Minute,
	}
}

// EventSink receives the events a session emits: accepted location samples
// and tracking-unavailable escalations. Sample delivery happens under the
// session lock so implementations must not block.
type EventSink interface {
	OnLocationSample(sample events.LocationSample)
	OnTrackingUnavailable(event events.TrackingUnavailable)
}

// RawSample is a position report from the external location producer.
// Seq is optional: zero means "assign the next sequence number"; a producer
// that numbers its own reports supplies it, and stale numbers are dropped.
type RawSample struct {
	Coords     kernel.Coordinates
	CapturedAt time.Time
	Seq        uint64
}

// Session is one live tracking stream for a single delivery while it is
// picked up. It owns the transport connection exclusively, assigns sample
// sequence numbers, and recovers transport failures with exponential backoff.
//
// Sessions are created and destroyed only by the Supervisor. A session is
// single-use: once closed it never reopens, and a fresh session starts a
// fresh sequence space.
type Session struct {
	deliveryID kernel.UUID
	pickerID   kernel.UUID
	transport  ports.Transport
	sink       EventSink
	cfg        Config
	logger     *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu           sync.Mutex
	state        ConnectionState
	conn         ports.Conn
	lastSeq      uint64
	openedAt     time.Time
	lastSampleAt time.Time
	opened       bool
	closed       bool
}

// NewSession creates a session for one delivery and picker. The session does
// nothing until Open is called.
func NewSession(
	deliveryID kernel.UUID,
	pickerID kernel.UUID,
	transport ports.Transport,
	sink EventSink,
	cfg Config,
	logger *slog.Logger,
) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		deliveryID: deliveryID,
		pickerID:   pickerID,
		transport:  transport,
		sink:       sink,
		cfg:        cfg,
		logger: logger.With("component", "tracking_session",
			"deliveryId", deliveryID.String()),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Open establishes the transport connection. It blocks until the handshake
// completes or fails; a failed handshake is treated like any transport
// failure and the session moves to reconnecting, recovering on its own.
//
// Open may be called once: a second call returns ErrSessionAlreadyOpen, and
// a call after Close returns ErrSessionClosed.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.opened {
		s.mu.Unlock()
		return ErrSessionAlreadyOpen
	}
	s.opened = true
	s.state = StateConnecting
	s.openedAt = time.Now()
	s.mu.Unlock()

	metrics.ActiveSessions.Inc()

	conn, err := s.transport.Dial(ctx, s.deliveryID, s.pickerID)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		return ErrSessionClosed
	}
	if err != nil {
		s.state = StateReconnecting
		s.mu.Unlock()
		s.logger.Warn("Transport handshake failed, entering reconnect", "error", err)
		go s.reconnectLoop()
		return nil
	}
	s.conn = conn
	s.state = StateOpen
	s.mu.Unlock()

	s.logger.Info("Tracking session open", "pickerId", s.pickerID.String())
	return nil
}

// Publish accepts one raw sample from the location producer. The session
// assigns or validates the sequence number, fans the sample out to
// subscribers, and forwards it over the transport when connected.
//
// A sample whose sequence is not beyond the last accepted one is dropped:
// accepted=false, no error, no event. Last-sample-wins; there is no
// reordering buffer. After Close, Publish returns ErrSessionClosed.
func (s *Session) Publish(raw RawSample) (bool, error) {
	if err := raw.Coords.Validate(); err != nil {
		return false, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, ErrSessionClosed
	}

	seq := raw.Seq
	if seq == 0 {
		seq = s.lastSeq + 1
	}
	if seq <= s.lastSeq {
		s.mu.Unlock()
		metrics.LocationSamplesDroppedTotal.Inc()
		s.logger.Debug("Dropped stale location sample", "seq", seq)
		return false, nil
	}
	s.lastSeq = seq
	s.lastSampleAt = time.Now()

	sample := events.LocationSample{
		DeliveryID: s.deliveryID,
		PickerID:   s.pickerID,
		Coords:     raw.Coords,
		Seq:        seq,
		CapturedAt: raw.CapturedAt,
	}

	// Fan out under the lock so subscribers observe non-decreasing sequence
	// order even with concurrent producers.
	s.sink.OnLocationSample(sample)

	conn := s.conn
	state := s.state
	s.mu.Unlock()

	metrics.LocationSamplesTotal.Inc()

	if state == StateOpen && conn != nil {
		frame, err := events.MarshalFrame(sample)
		if err != nil {
			return true, err
		}
		if err := conn.Send(frame); err != nil {
			s.transportFailed(conn, err)
		}
	}

	return true, nil
}

// State returns the current connection state.
func (s *Session) State() ConnectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// DeliveryID returns the delivery this session tracks.
func (s *Session) DeliveryID() kernel.UUID {
	return s.deliveryID
}

// PickerID returns the picker whose position this session streams.
func (s *Session) PickerID() kernel.UUID {
	return s.pickerID
}

// OpenedAt returns when Open was called, zero before that.
func (s *Session) OpenedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openedAt
}

// LastSampleSeq returns the sequence number of the last accepted sample.
func (s *Session) LastSampleSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeq
}

// LastSampleAt returns when the last sample was accepted, zero if none was.
func (s *Session) LastSampleAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSampleAt
}

// EmitUnavailable pushes a TrackingUnavailable event for this session's
// delivery to subscribers. Used by the reconnect loop when the backoff
// ceiling is exceeded and by the stale-session job.
func (s *Session) EmitUnavailable(since time.Time) {
	metrics.TrackingUnavailableTotal.Inc()
	s.sink.OnTrackingUnavailable(events.TrackingUnavailable{
		DeliveryID: s.deliveryID,
		Since:      since,
	})
}

// Close tears the session down: the state becomes closed, the transport
// connection is released, and any pending reconnect attempt aborts before
// its next retry. Close is idempotent; the handle is not reusable.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.state = StateClosed
	conn := s.conn
	s.conn = nil
	wasOpened := s.opened
	s.mu.Unlock()

	s.cancel()
	close(s.done)
	if conn != nil {
		_ = conn.Close()
	}
	if wasOpened {
		metrics.ActiveSessions.Dec()
	}

	s.logger.Info("Tracking session closed", "lastSeq", s.LastSampleSeq())
}

// transportFailed moves the session to reconnecting unless the failed
// connection was already replaced or the session is closing.
func (s *Session) transportFailed(failed ports.Conn, cause error) {
	s.mu.Lock()
	if s.closed || s.conn != failed {
		s.mu.Unlock()
		return
	}
	s.conn = nil
	s.state = StateReconnecting
	s.mu.Unlock()

	_ = failed.Close()
	s.logger.Warn("Transport failed, entering reconnect", "error", cause)
	go s.reconnectLoop()
}

// reconnectLoop redials the transport with exponential backoff until it
// succeeds or the session closes. The sequence space continues across a
// reconnect; only the wire connection is replaced. Once the session has been
// offline longer than UnavailableAfter, a single TrackingUnavailable event is
// escalated while attempts continue.
func (s *Session) reconnectLoop() {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.cfg.InitialBackoff
	bo.Multiplier = s.cfg.BackoffFactor
	bo.MaxInterval = s.cfg.MaxBackoff
	bo.MaxElapsedTime = 0 // retry until closed

	offlineSince := time.Now()
	unavailableSent := false

	for {
		wait := bo.NextBackOff()
		select {
		case <-s.done:
			return
		case <-time.After(wait):
		}

		metrics.ReconnectsTotal.Inc()
		conn, err := s.transport.Dial(s.ctx, s.deliveryID, s.pickerID)
		if err == nil {
			s.mu.Lock()
			if s.closed {
				s.mu.Unlock()
				_ = conn.Close()
				return
			}
			s.conn = conn
			s.state = StateOpen
			s.mu.Unlock()
			s.logger.Info("Transport reconnected",
				"offlineFor", time.Since(offlineSince).String())
			return
		}

		s.logger.Debug("Reconnect attempt failed", "error", err)

		if !unavailableSent && time.Since(offlineSince) > s.cfg.UnavailableAfter {
			unavailableSent = true
			s.logger.Warn("Tracking unavailable, backoff ceiling exceeded",
				"offlineSince", offlineSince)
			s.EmitUnavailable(offlineSince)
		}
	}
}
