package commands

import (
	"context"

	"parceltrack/internal/core/application/store"
	"parceltrack/internal/core/domain/model/delivery"
)

// RequestTransitionCommandHandler validates and commits lifecycle
// transitions. Role gating, picker binding, and terminal-state protection all
// live in the aggregate; the record store adds backend confirmation and
// per-delivery serialization.
type RequestTransitionCommandHandler struct {
	store *store.RecordStore
}

// NewRequestTransitionCommandHandler creates a handler for transition requests.
func NewRequestTransitionCommandHandler(recordStore *store.RecordStore) RequestTransitionCommandHandler {
	return RequestTransitionCommandHandler{store: recordStore}
}

// Handle processes the transition request and returns the delivery's status
// after the operation. A request for the current status is an idempotent
// no-op and succeeds.
func (h RequestTransitionCommandHandler) Handle(
	ctx context.Context,
	cmd RequestTransitionCommand,
) (delivery.Status, error) {
	if err := cmd.Validate(); err != nil {
		return delivery.StatusUnknown, err
	}

	return h.store.ApplyTransition(ctx, cmd.DeliveryID(), cmd.ActorID(), cmd.Role(), cmd.Target())
}
