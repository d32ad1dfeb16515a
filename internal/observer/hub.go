// Package observer delivers lifecycle and tracking events to connected
// clients, one subscription per client per delivery.
package observer

import (
	"context"
	"log/slog"
	"sync"

	"parceltrack/internal/core/domain/events"
	"parceltrack/internal/core/domain/model/kernel"
	"parceltrack/internal/core/ports"
)

// Subscription is one client's view of a single delivery's event stream.
// Events arrive on Events() in publish order; the channel closes when the
// subscription is cancelled or the delivery reaches a terminal status.
type Subscription struct {
	deliveryID kernel.UUID

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []events.Event
	closed bool

	out  chan events.Event
	done chan struct{}
}

func newSubscription(deliveryID kernel.UUID) *Subscription {
	s := &Subscription{
		deliveryID: deliveryID,
		out:        make(chan events.Event, 16),
		done:       make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.mu)
	go s.pump()
	return s
}

// DeliveryID returns the delivery this subscription follows.
func (s *Subscription) DeliveryID() kernel.UUID {
	return s.deliveryID
}

// Events returns the stream of events for the delivery. The channel closes
// when the subscription ends; a slow reader delays only itself.
func (s *Subscription) Events() <-chan events.Event {
	return s.out
}

// push appends an event to the mailbox. Never blocks: the mailbox grows and
// the pump goroutine drains it at the reader's pace.
func (s *Subscription) push(event events.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.queue = append(s.queue, event)
	s.cond.Signal()
}

// pump moves events from the mailbox to the outbound channel, delivering
// everything already queued before closing.
func (s *Subscription) pump() {
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.cond.Wait()
		}
		if len(s.queue) == 0 {
			s.mu.Unlock()
			close(s.out)
			return
		}
		event := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- event:
		case <-s.done:
			close(s.out)
			return
		}
	}
}

func (s *Subscription) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.done)
	s.cond.Signal()
	s.mu.Unlock()
}

// Hub fans delivery events out to subscribed clients. It listens to committed
// status changes and to live tracking sessions, remembers the last status and
// last location per delivery, and replays both to a late subscriber so a
// client that connects mid-transit immediately sees the current picture.
//
// Fan-out never blocks producers: each subscription buffers in its own
// mailbox and a slow client delays only itself.
type Hub struct {
	cache  ports.SampleCache
	logger *slog.Logger

	mu         sync.Mutex
	subs       map[string][]*Subscription
	lastStatus map[string]events.StatusChanged
	lastSample map[string]events.LocationSample
}

// NewHub creates a hub. cache may be nil; when set, accepted samples are
// mirrored into it and a replay miss falls back to it.
func NewHub(cache ports.SampleCache, logger *slog.Logger) *Hub {
	return &Hub{
		cache:      cache,
		logger:     logger.With("component", "observer_hub"),
		subs:       map[string][]*Subscription{},
		lastStatus: map[string]events.StatusChanged{},
		lastSample: map[string]events.LocationSample{},
	}
}

// Subscribe registers a client for one delivery's events. The last known
// status and, while in transit, the last known location are replayed onto the
// stream before any live event.
func (h *Hub) Subscribe(deliveryID kernel.UUID) *Subscription {
	sub := newSubscription(deliveryID)
	key := deliveryID.String()

	h.mu.Lock()
	_, haveSample := h.lastSample[key]
	h.mu.Unlock()

	// Cache lookup happens outside the hub lock so a slow cache never stalls
	// fan-out for everyone else.
	var cached *events.LocationSample
	if !haveSample && h.cache != nil {
		cached = h.cachedSample(deliveryID)
	}

	h.mu.Lock()
	if status, ok := h.lastStatus[key]; ok {
		sub.push(status)
	}
	if sample, ok := h.lastSample[key]; ok {
		sub.push(sample)
	} else if cached != nil {
		sub.push(*cached)
	}
	h.subs[key] = append(h.subs[key], sub)
	h.mu.Unlock()

	return sub
}

// Unsubscribe removes a subscription and closes its stream. Safe to call for
// an already-removed subscription.
func (h *Hub) Unsubscribe(sub *Subscription) {
	key := sub.deliveryID.String()

	h.mu.Lock()
	remaining := h.subs[key][:0]
	for _, existing := range h.subs[key] {
		if existing != sub {
			remaining = append(remaining, existing)
		}
	}
	if len(remaining) == 0 {
		delete(h.subs, key)
	} else {
		h.subs[key] = remaining
	}
	h.mu.Unlock()

	sub.close()
}

// OnStatusChanged fans a committed status change out to the delivery's
// subscribers. A terminal status ends every stream after the event is
// delivered. Implements events.StatusListener.
func (h *Hub) OnStatusChanged(event events.StatusChanged) {
	key := event.DeliveryID.String()

	h.mu.Lock()
	h.lastStatus[key] = event
	subs := h.subs[key]
	for _, sub := range subs {
		sub.push(event)
	}
	if event.To.IsTerminal() {
		delete(h.subs, key)
		delete(h.lastSample, key)
	}
	h.mu.Unlock()

	if event.To.IsTerminal() {
		for _, sub := range subs {
			sub.close()
		}
	}
}

// OnLocationSample fans an accepted sample out and remembers it as the last
// known position. Implements tracking.EventSink; must not block, so the
// cache write happens off the calling goroutine.
func (h *Hub) OnLocationSample(sample events.LocationSample) {
	key := sample.DeliveryID.String()

	h.mu.Lock()
	h.lastSample[key] = sample
	for _, sub := range h.subs[key] {
		sub.push(sample)
	}
	h.mu.Unlock()

	if h.cache != nil {
		go func() {
			if err := h.cache.PutSample(context.Background(), sample); err != nil {
				h.logger.Debug("Failed to cache location sample",
					"deliveryId", key, "error", err)
			}
		}()
	}
}

// OnTrackingUnavailable fans a degraded-tracking signal out to subscribers.
// Implements tracking.EventSink.
func (h *Hub) OnTrackingUnavailable(event events.TrackingUnavailable) {
	key := event.DeliveryID.String()

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subs[key] {
		sub.push(event)
	}
}

// LastSample returns the last known position for a delivery, or nil.
func (h *Hub) LastSample(deliveryID kernel.UUID) *events.LocationSample {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sample, ok := h.lastSample[deliveryID.String()]; ok {
		return &sample
	}
	return nil
}

func (h *Hub) cachedSample(deliveryID kernel.UUID) *events.LocationSample {
	sample, err := h.cache.GetSample(context.Background(), deliveryID)
	if err != nil {
		h.logger.Debug("Last sample cache lookup failed",
			"deliveryId", deliveryID.String(), "error", err)
		return nil
	}
	return sample
}
