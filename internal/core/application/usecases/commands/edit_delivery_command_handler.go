package commands

import (
	"context"

	"parceltrack/internal/core/application/store"
)

// EditDeliveryCommandHandler applies sender edits to pending deliveries.
// The aggregate enforces that only the sender may edit and only before a
// picker accepts.
type EditDeliveryCommandHandler struct {
	store *store.RecordStore
}

// NewEditDeliveryCommandHandler creates a handler for delivery edits.
func NewEditDeliveryCommandHandler(recordStore *store.RecordStore) EditDeliveryCommandHandler {
	return EditDeliveryCommandHandler{store: recordStore}
}

// Handle processes the edit command under the delivery's serialization lock.
func (h EditDeliveryCommandHandler) Handle(ctx context.Context, cmd EditDeliveryCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	return h.store.Edit(
		ctx,
		cmd.DeliveryID(),
		cmd.ActorID(),
		cmd.FromAddress(),
		cmd.ToAddress(),
		cmd.PriceCents(),
		cmd.Size(),
		cmd.WeightGrams(),
		cmd.Notes(),
	)
}
