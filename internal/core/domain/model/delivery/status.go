package delivery

import (
	"fmt"

	"parceltrack/internal/pkg/errs"
)

// Status represents the lifecycle state of a delivery request.
// It implements a state machine whose transitions are restricted both by the
// current state and by the role of the actor requesting the change.
//
// State transitions:
//
//	pending ──> accepted ──> picked_up ──> delivered
//	   │            │             │
//	   └────────────┴─────────────┴──────> cancelled
//
// The chain is monotonic: a delivery never moves backward and never skips a
// state. Cancellation is terminal and reachable from every non-terminal state.
// Status is a value object; transition checks live in CanTransitionTo.
type Status int

const (
	// StatusUnknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	StatusUnknown Status = iota

	// StatusPending is the initial status when a sender creates a delivery
	// request. The request is waiting for a picker to accept it.
	StatusPending

	// StatusAccepted indicates a picker has committed to the delivery.
	// The picker identity is fixed from this point on.
	StatusAccepted

	// StatusPickedUp indicates the parcel is in transit. This is the only
	// status during which a live tracking session may exist.
	StatusPickedUp

	// StatusDelivered indicates the parcel reached its destination.
	// Terminal state.
	StatusDelivered

	// StatusCancelled indicates the request was abandoned before completion.
	// Terminal state, reachable from any non-terminal status.
	StatusCancelled
)

// statusStrings maps statuses to their wire representation. The lowercase
// snake_case names are the canonical enum values used in API payloads and
// stream frames.
func statusStrings() map[Status]string {
	return map[Status]string{
		StatusUnknown:   "unknown",
		StatusPending:   "pending",
		StatusAccepted:  "accepted",
		StatusPickedUp:  "picked_up",
		StatusDelivered: "delivered",
		StatusCancelled: "cancelled",
	}
}

func validStatusStrings() map[Status]string {
	//nolint:exhaustive // StatusUnknown is intentionally excluded as it's invalid
	return map[Status]string{
		StatusPending:   "pending",
		StatusAccepted:  "accepted",
		StatusPickedUp:  "picked_up",
		StatusDelivered: "delivered",
		StatusCancelled: "cancelled",
	}
}

// String returns the wire name of the status ("pending", "picked_up", ...).
// Invalid values render as "unknown". Implements fmt.Stringer.
func (s Status) String() string {
	if str, ok := statusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// StatusFromString parses a wire status name into a Status.
// Returns an error for unknown names, including "unknown" itself.
func StatusFromString(s string) (Status, error) {
	for status, name := range validStatusStrings() {
		if name == s {
			return status, nil
		}
	}
	return StatusUnknown, errs.NewValueIsInvalidErrorWithCause("status",
		fmt.Errorf("%q is not a valid status", s))
}

// Validate checks that the Status is one of the defined lifecycle states.
// StatusUnknown and out-of-range values are invalid.
func (s Status) Validate() error {
	if _, ok := validStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// IsTerminal reports whether the status admits no further transitions.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// IsTracked reports whether a live tracking session may exist in this status.
func (s Status) IsTracked() bool {
	return s == StatusPickedUp
}

// transitionKey identifies one edge of the status graph.
type transitionKey struct {
	from Status
	to   Status
}

// roleSet is the set of roles allowed to trigger a transition.
type roleSet struct {
	sender bool
	picker bool
}

func (r roleSet) allows(role Role) bool {
	switch role {
	case RoleSender:
		return r.sender
	case RolePicker:
		return r.picker
	default:
		return false
	}
}

var (
	bySender = roleSet{sender: true}
	byPicker = roleSet{picker: true}
	byEither = roleSet{sender: true, picker: true}
)

// legalTransitions is the authoritative transition table. Any (from, to) pair
// absent from this map is denied regardless of actor. Cancellation from
// picked_up is the exceptional abort path while the parcel is in transit.
func legalTransitions() map[transitionKey]roleSet {
	return map[transitionKey]roleSet{
		{StatusPending, StatusAccepted}:   byPicker,
		{StatusPending, StatusCancelled}:  bySender,
		{StatusAccepted, StatusPickedUp}:  byPicker,
		{StatusAccepted, StatusCancelled}: byEither,
		{StatusPickedUp, StatusDelivered}: byPicker,
		{StatusPickedUp, StatusCancelled}: byEither,
	}
}

// CanTransitionTo checks the transition table for the edge s -> to triggered
// by the given role.
//
// Re-requesting the current status (to == s) is allowed and reported as nil:
// duplicate submissions of the action the delivery already completed are
// treated as idempotent no-ops, not failures. Callers that need to distinguish
// the no-op case compare to against the current status.
//
// Returns nil when the transition is legal, or an *InvalidTransitionError
// naming the rejected edge and role.
func (s Status) CanTransitionTo(to Status, by Role) error {
	if err := to.Validate(); err != nil {
		return NewInvalidTransitionError(s, to, by)
	}

	if to == s {
		return nil
	}

	allowed, ok := legalTransitions()[transitionKey{from: s, to: to}]
	if !ok || !allowed.allows(by) {
		return NewInvalidTransitionError(s, to, by)
	}

	return nil
}

// ValidateCanHavePicker validates the consistency between status and picker
// assignment. A delivery must have a picker from acceptance onward; it must
// not have one while still pending. Cancelled deliveries may or may not carry
// a picker depending on how far they progressed before the cancellation.
func (s Status) ValidateCanHavePicker(hasPicker bool) error {
	switch s {
	case StatusPending:
		if hasPicker {
			return errs.NewValueIsInvalidErrorWithCause("pickerId",
				fmt.Errorf("%s delivery must not have a picker", s))
		}
	case StatusAccepted, StatusPickedUp, StatusDelivered:
		if !hasPicker {
			return errs.NewValueIsInvalidErrorWithCause("pickerId",
				fmt.Errorf("%s delivery must have a picker", s))
		}
	case StatusCancelled, StatusUnknown:
		// no constraint
	}
	return nil
}
