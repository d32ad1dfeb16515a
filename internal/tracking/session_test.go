package tracking_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"parceltrack/internal/core/domain/events"
	"parceltrack/internal/core/domain/model/kernel"
	"parceltrack/internal/core/ports"
	"parceltrack/internal/tracking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu      sync.Mutex
	frames  [][]byte
	sendErr error
	closed  bool
}

func (c *fakeConn) Send(frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.frames = append(c.frames, frame)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) failNextSends(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sendErr = err
}

func (c *fakeConn) sentFrames() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.frames))
	copy(out, c.frames)
	return out
}

// fakeTransport hands out fakeConns and can be armed to fail a number of
// dials in a row.
type fakeTransport struct {
	mu        sync.Mutex
	conns     []*fakeConn
	dials     int
	failDials int
}

func (t *fakeTransport) Dial(_ context.Context, _, _ kernel.UUID) (ports.Conn, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dials++
	if t.failDials > 0 {
		t.failDials--
		return nil, errors.New("transport unreachable")
	}
	conn := &fakeConn{}
	t.conns = append(t.conns, conn)
	return conn, nil
}

func (t *fakeTransport) dialCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dials
}

func (t *fakeTransport) lastConn() *fakeConn {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.conns) == 0 {
		return nil
	}
	return t.conns[len(t.conns)-1]
}

type recordingSink struct {
	mu          sync.Mutex
	samples     []events.LocationSample
	unavailable []events.TrackingUnavailable
}

func (s *recordingSink) OnLocationSample(sample events.LocationSample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = append(s.samples, sample)
}

func (s *recordingSink) OnTrackingUnavailable(event events.TrackingUnavailable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unavailable = append(s.unavailable, event)
}

func (s *recordingSink) sampleSeqs() []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	seqs := make([]uint64, 0, len(s.samples))
	for _, sample := range s.samples {
		seqs = append(seqs, sample.Seq)
	}
	return seqs
}

func (s *recordingSink) unavailableCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.unavailable)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fastConfig keeps reconnect delays tiny so tests finish quickly.
func fastConfig() tracking.Config {
	return tracking.Config{
		InitialBackoff:   time.Millisecond,
		BackoffFactor:    2,
		MaxBackoff:       5 * time.Millisecond,
		UnavailableAfter: time.Minute,
	}
}

func coords(t *testing.T, lat, lng float64) kernel.Coordinates {
	t.Helper()
	c, err := kernel.NewCoordinates(lat, lng)
	require.NoError(t, err)
	return c
}

func rawSample(t *testing.T, seq uint64) tracking.RawSample {
	t.Helper()
	return tracking.RawSample{
		Coords:     coords(t, 55.75, 37.62),
		CapturedAt: time.Now(),
		Seq:        seq,
	}
}

func newTestSession(t *testing.T, transport *fakeTransport, sink *recordingSink) *tracking.Session {
	t.Helper()
	session := tracking.NewSession(
		kernel.NewUUID(), kernel.NewUUID(), transport, sink, fastConfig(), testLogger())
	t.Cleanup(session.Close)
	return session
}

func TestSessionOpen(t *testing.T) {
	t.Run("should connect and move to open state", func(t *testing.T) {
		transport := &fakeTransport{}
		session := newTestSession(t, transport, &recordingSink{})

		err := session.Open(context.Background())

		require.NoError(t, err)
		assert.Equal(t, tracking.StateOpen, session.State())
		assert.Equal(t, 1, transport.dialCount())
	})

	t.Run("should return error on second open", func(t *testing.T) {
		transport := &fakeTransport{}
		session := newTestSession(t, transport, &recordingSink{})
		require.NoError(t, session.Open(context.Background()))

		err := session.Open(context.Background())

		assert.ErrorIs(t, err, tracking.ErrSessionAlreadyOpen)
	})

	t.Run("should return error on open after close", func(t *testing.T) {
		transport := &fakeTransport{}
		session := newTestSession(t, transport, &recordingSink{})
		session.Close()

		err := session.Open(context.Background())

		assert.ErrorIs(t, err, tracking.ErrSessionClosed)
	})

	t.Run("should enter reconnecting when handshake fails", func(t *testing.T) {
		transport := &fakeTransport{failDials: 1}
		session := newTestSession(t, transport, &recordingSink{})

		err := session.Open(context.Background())

		require.NoError(t, err)
		require.Eventually(t, func() bool {
			return session.State() == tracking.StateOpen
		}, time.Second, time.Millisecond, "session should recover on its own")
	})
}

func TestSessionPublish(t *testing.T) {
	t.Run("should assign sequence numbers and fan out in order", func(t *testing.T) {
		transport := &fakeTransport{}
		sink := &recordingSink{}
		session := newTestSession(t, transport, sink)
		require.NoError(t, session.Open(context.Background()))

		for i := 0; i < 3; i++ {
			accepted, err := session.Publish(rawSample(t, 0))
			require.NoError(t, err)
			assert.True(t, accepted)
		}

		assert.Equal(t, []uint64{1, 2, 3}, sink.sampleSeqs())
		assert.Equal(t, uint64(3), session.LastSampleSeq())
		assert.Len(t, transport.lastConn().sentFrames(), 3)
	})

	t.Run("should drop sample with stale sequence number", func(t *testing.T) {
		transport := &fakeTransport{}
		sink := &recordingSink{}
		session := newTestSession(t, transport, sink)
		require.NoError(t, session.Open(context.Background()))
		_, err := session.Publish(rawSample(t, 5))
		require.NoError(t, err)

		accepted, err := session.Publish(rawSample(t, 5))

		require.NoError(t, err)
		assert.False(t, accepted)
		assert.Equal(t, []uint64{5}, sink.sampleSeqs())
		assert.Equal(t, uint64(5), session.LastSampleSeq())
	})

	t.Run("should reject sample after close", func(t *testing.T) {
		transport := &fakeTransport{}
		session := newTestSession(t, transport, &recordingSink{})
		require.NoError(t, session.Open(context.Background()))
		session.Close()

		_, err := session.Publish(rawSample(t, 0))

		assert.ErrorIs(t, err, tracking.ErrSessionClosed)
	})

	t.Run("should reject sample with invalid coordinates", func(t *testing.T) {
		transport := &fakeTransport{}
		session := newTestSession(t, transport, &recordingSink{})
		require.NoError(t, session.Open(context.Background()))

		_, err := session.Publish(tracking.RawSample{CapturedAt: time.Now()})

		assert.Error(t, err)
	})
}

func TestSessionReconnect(t *testing.T) {
	t.Run("should continue sequence numbers across a reconnect", func(t *testing.T) {
		transport := &fakeTransport{}
		sink := &recordingSink{}
		session := newTestSession(t, transport, sink)
		require.NoError(t, session.Open(context.Background()))

		for seq := uint64(1); seq <= 42; seq++ {
			accepted, err := session.Publish(rawSample(t, seq))
			require.NoError(t, err)
			require.True(t, accepted)
		}

		firstConn := transport.lastConn()
		firstConn.failNextSends(errors.New("connection reset"))
		accepted, err := session.Publish(rawSample(t, 43))
		require.NoError(t, err)
		assert.True(t, accepted, "sample is accepted even while the wire drops")

		require.Eventually(t, func() bool {
			return session.State() == tracking.StateOpen
		}, time.Second, time.Millisecond, "session should reconnect")

		accepted, err = session.Publish(rawSample(t, 0))
		require.NoError(t, err)
		require.True(t, accepted)

		assert.Equal(t, uint64(44), session.LastSampleSeq(),
			"sequence space survives the reconnect")
		frames := transport.lastConn().sentFrames()
		assert.Len(t, frames, 1, "no samples before the cut are redelivered")
	})

	t.Run("should drop stale samples after reconnect", func(t *testing.T) {
		transport := &fakeTransport{failDials: 1}
		sink := &recordingSink{}
		session := newTestSession(t, transport, sink)
		require.NoError(t, session.Open(context.Background()))
		require.Eventually(t, func() bool {
			return session.State() == tracking.StateOpen
		}, time.Second, time.Millisecond)
		_, err := session.Publish(rawSample(t, 42))
		require.NoError(t, err)

		accepted, err := session.Publish(rawSample(t, 40))

		require.NoError(t, err)
		assert.False(t, accepted)
		assert.Equal(t, []uint64{42}, sink.sampleSeqs())
	})

	t.Run("should stop redialing when closed mid backoff", func(t *testing.T) {
		transport := &fakeTransport{failDials: 1000}
		session := newTestSession(t, transport, &recordingSink{})
		require.NoError(t, session.Open(context.Background()))
		require.Eventually(t, func() bool {
			return transport.dialCount() >= 2
		}, time.Second, time.Millisecond, "reconnect loop should be running")

		session.Close()
		dialsAtClose := transport.dialCount()
		time.Sleep(20 * time.Millisecond)

		assert.Equal(t, tracking.StateClosed, session.State())
		assert.LessOrEqual(t, transport.dialCount(), dialsAtClose+1,
			"at most one attempt already in flight may land after close")
	})

	t.Run("should escalate tracking unavailable once past the ceiling", func(t *testing.T) {
		transport := &fakeTransport{failDials: 1000}
		sink := &recordingSink{}
		cfg := fastConfig()
		cfg.UnavailableAfter = 5 * time.Millisecond
		session := tracking.NewSession(
			kernel.NewUUID(), kernel.NewUUID(), transport, sink, cfg, testLogger())
		t.Cleanup(session.Close)
		require.NoError(t, session.Open(context.Background()))

		require.Eventually(t, func() bool {
			return sink.unavailableCount() >= 1
		}, time.Second, time.Millisecond)
		time.Sleep(30 * time.Millisecond)

		assert.Equal(t, 1, sink.unavailableCount(),
			"the escalation fires once per outage")
		assert.Equal(t, tracking.StateReconnecting, session.State(),
			"attempts keep going after the escalation")
	})
}
