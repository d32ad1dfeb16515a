package tracking

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"parceltrack/internal/core/domain/events"
	"parceltrack/internal/core/domain/model/delivery"
	"parceltrack/internal/core/domain/model/kernel"
	"parceltrack/internal/core/ports"
)

// RecordSource provides the current state of a delivery record. The
// supervisor reads it when the viewer toggle arrives before any status event
// has been observed (for example right after a restart).
type RecordSource interface {
	Get(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error)
}

// Supervisor owns every tracking session in the process. It subscribes to
// StatusChanged events and keeps exactly one invariant: a delivery has an
// open session if and only if its status is picked_up AND the viewer has
// tracking enabled. Either condition turning false tears the session down;
// both turning true opens a fresh one with a fresh sequence space.
//
// No other component creates, closes, or holds a reference to a session's
// transport.
type Supervisor struct {
	transport ports.Transport
	sink      EventSink
	cache     ports.SampleCache
	records   RecordSource
	cfg       Config
	logger    *slog.Logger

	mu      sync.Mutex
	entries map[string]*entry
}

// entry is the supervisor's view of one delivery: last observed status,
// bound picker, viewer consent, and the session if one is open.
type entry struct {
	status        delivery.Status
	pickerID      *kernel.UUID
	viewerEnabled bool
	session       *Session
}

// NewSupervisor creates a supervisor. cache may be nil when no last-known
// cache is configured; records may be nil when viewer toggles are guaranteed
// to arrive after status events.
func NewSupervisor(
	transport ports.Transport,
	sink EventSink,
	cache ports.SampleCache,
	records RecordSource,
	cfg Config,
	logger *slog.Logger,
) *Supervisor {
	return &Supervisor{
		transport: transport,
		sink:      sink,
		cache:     cache,
		records:   records,
		cfg:       cfg,
		logger:    logger.With("component", "session_supervisor"),
		entries:   map[string]*entry{},
	}
}

// OnStatusChanged reacts to one committed status transition. Implements
// events.StatusListener; called synchronously in commit order.
func (sv *Supervisor) OnStatusChanged(event events.StatusChanged) {
	sv.mu.Lock()
	defer sv.mu.Unlock()

	e := sv.entryLocked(event.DeliveryID)
	e.status = event.To
	if event.PickerID != nil {
		e.pickerID = event.PickerID
	}

	sv.evaluateLocked(event.DeliveryID, e)

	if event.To.IsTerminal() {
		delete(sv.entries, event.DeliveryID.String())
	}
}

// SetViewerEnabled records the viewer consent flag for a delivery. A session
// only exists while tracking is both status-eligible and viewer-enabled, so
// flipping this to false closes any open session immediately, and flipping
// it to true (re)opens one if the delivery is currently picked up.
func (sv *Supervisor) SetViewerEnabled(id kernel.UUID, enabled bool) {
	sv.mu.Lock()
	defer sv.mu.Unlock()

	e := sv.entryLocked(id)
	e.viewerEnabled = enabled

	if enabled && e.status == delivery.StatusUnknown && sv.records != nil {
		sv.refreshFromRecordLocked(id, e)
	}

	sv.evaluateLocked(id, e)
}

// Publish routes a raw producer sample to the delivery's open session.
// Returns ErrNoActiveSession when tracking is not currently running for the
// delivery, and accepted=false when the session dropped the sample as stale.
func (sv *Supervisor) Publish(id kernel.UUID, raw RawSample) (bool, error) {
	sv.mu.Lock()
	e, ok := sv.entries[id.String()]
	var session *Session
	if ok {
		session = e.session
	}
	sv.mu.Unlock()

	if session == nil {
		return false, ErrNoActiveSession
	}

	accepted, err := session.Publish(raw)
	if errors.Is(err, ErrSessionClosed) {
		// Teardown race: the sample arrived for a session that just closed.
		sv.logger.Debug("Dropped sample for closed session", "deliveryId", id.String())
		return false, err
	}
	return accepted, err
}

// Session returns the open session for a delivery, or nil. Exposed for the
// stale-session job and for state queries; callers must not close it.
func (sv *Supervisor) Session(id kernel.UUID) *Session {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	if e, ok := sv.entries[id.String()]; ok {
		return e.session
	}
	return nil
}

// Sessions returns a snapshot of all open sessions.
func (sv *Supervisor) Sessions() []*Session {
	sv.mu.Lock()
	defer sv.mu.Unlock()

	sessions := make([]*Session, 0, len(sv.entries))
	for _, e := range sv.entries {
		if e.session != nil {
			sessions = append(sessions, e.session)
		}
	}
	return sessions
}

// Shutdown closes every open session. Called on process teardown.
func (sv *Supervisor) Shutdown() {
	sv.mu.Lock()
	defer sv.mu.Unlock()

	for id, e := range sv.entries {
		if e.session != nil {
			e.session.Close()
			e.session = nil
			sv.logger.Info("Closed session on shutdown", "deliveryId", id)
		}
	}
}

func (sv *Supervisor) entryLocked(id kernel.UUID) *entry {
	e, ok := sv.entries[id.String()]
	if !ok {
		e = &entry{}
		sv.entries[id.String()] = e
	}
	return e
}

// refreshFromRecordLocked fills an entry from the record store when the
// supervisor has not yet observed any event for the delivery.
func (sv *Supervisor) refreshFromRecordLocked(id kernel.UUID, e *entry) {
	record, err := sv.records.Get(context.Background(), id)
	if err != nil {
		sv.logger.Debug("Viewer enabled for unknown delivery",
			"deliveryId", id.String(), "error", err)
		return
	}
	e.status = record.Status()
	e.pickerID = record.PickerID()
}

// evaluateLocked reconciles one entry against the invariant: session open
// exactly when status is picked_up and the viewer has tracking enabled.
func (sv *Supervisor) evaluateLocked(id kernel.UUID, e *entry) {
	want := e.status.IsTracked() && e.viewerEnabled && e.pickerID != nil

	switch {
	case want && e.session == nil:
		session := NewSession(id, *e.pickerID, sv.transport, sv.sink, sv.cfg, sv.logger)
		if err := session.Open(context.Background()); err != nil {
			if errors.Is(err, ErrSessionAlreadyOpen) {
				// Intent already satisfied; keep the existing session.
				sv.logger.Warn("Session already open", "deliveryId", id.String())
				return
			}
			sv.logger.Error("Failed to open tracking session",
				"deliveryId", id.String(), "error", err)
			return
		}
		e.session = session
		sv.logger.Info("Tracking session started",
			"deliveryId", id.String(), "pickerId", e.pickerID.String())

	case !want && e.session != nil:
		e.session.Close()
		e.session = nil
		sv.dropCachedSample(id)
		sv.logger.Info("Tracking session stopped", "deliveryId", id.String())
	}
}

// dropCachedSample clears the last-known position when tracking stops so a
// later session starts with a clean slate.
func (sv *Supervisor) dropCachedSample(id kernel.UUID) {
	if sv.cache == nil {
		return
	}
	if err := sv.cache.DropSample(context.Background(), id); err != nil {
		sv.logger.Debug("Failed to drop cached sample",
			"deliveryId", id.String(), "error", err)
	}
}
