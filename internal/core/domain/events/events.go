// Package events defines the domain events flowing out of the lifecycle core
// and the dispatcher that fans status changes out to their consumers.
//
// Two event families exist: StatusChanged, committed by the record store, and
// LocationSample / TrackingUnavailable, emitted by live tracking sessions.
// Within one delivery, StatusChanged events are dispatched synchronously in
// commit order; location samples reach subscribers in non-decreasing sequence
// order.
package events

import (
	"time"

	"parceltrack/internal/core/domain/model/delivery"
	"parceltrack/internal/core/domain/model/kernel"
)

// Event is implemented by every event the core emits. Subscribers receive
// events for a single delivery, identified by Delivery().
type Event interface {
	Delivery() kernel.UUID
}

// StatusChanged is emitted by the record store after a transition commits.
// PickerID is carried alongside the actor so that session management never
// needs to read the store back: on the picked_up edge the supervisor opens a
// session for exactly this picker.
type StatusChanged struct {
	DeliveryID kernel.UUID
	From       delivery.Status
	To         delivery.Status
	ActorID    kernel.UUID
	PickerID   *kernel.UUID
	OccurredAt time.Time
}

// Delivery returns the delivery the status change belongs to.
func (e StatusChanged) Delivery() kernel.UUID {
	return e.DeliveryID
}

// LocationSample is one accepted position report from an open tracking
// session. Seq increases monotonically within a session; samples are never
// persisted beyond the last-known cache.
type LocationSample struct {
	DeliveryID kernel.UUID
	PickerID   kernel.UUID
	Coords     kernel.Coordinates
	Seq        uint64
	CapturedAt time.Time
}

// Delivery returns the delivery the sample belongs to.
func (e LocationSample) Delivery() kernel.UUID {
	return e.DeliveryID
}

// TrackingUnavailable signals that a tracking session has been unable to
// recover its transport for longer than the configured ceiling. The session
// keeps retrying; this event lets the UI show a degraded-tracking indicator
// instead of silently stale data.
type TrackingUnavailable struct {
	DeliveryID kernel.UUID
	Since      time.Time
}

// Delivery returns the delivery whose tracking degraded.
func (e TrackingUnavailable) Delivery() kernel.UUID {
	return e.DeliveryID
}

// StatusListener consumes committed status changes. Implementations must not
// block: dispatch happens synchronously on the committing goroutine to
// preserve commit order.
type StatusListener interface {
	OnStatusChanged(event StatusChanged)
}

// Dispatcher fans StatusChanged events out to registered listeners in
// registration order. Registration happens once during composition, before
// any dispatch, so Dispatch iterates without locking.
type Dispatcher struct {
	listeners []StatusListener
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Register adds a listener. Not safe to call concurrently with Dispatch;
// wire all listeners during composition.
func (d *Dispatcher) Register(listener StatusListener) {
	d.listeners = append(d.listeners, listener)
}

// Dispatch delivers the event to every listener, synchronously and in
// registration order.
func (d *Dispatcher) Dispatch(event StatusChanged) {
	for _, listener := range d.listeners {
		listener.OnStatusChanged(event)
	}
}
