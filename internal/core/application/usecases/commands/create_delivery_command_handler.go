package commands

import (
	"context"

	"parceltrack/internal/core/application/store"
	"parceltrack/internal/core/domain/model/delivery"
)

// CreateDeliveryCommandHandler handles the business logic for posting a new
// delivery request. The record enters the marketplace in pending status and
// its birth is announced to event subscribers.
//
// Example:
//
//	handler := NewCreateDeliveryCommandHandler(recordStore)
//	cmd, _ := NewCreateDeliveryCommand(
//	    kernel.NewUUID(), senderID, "1 Origin St", "2 Target Ave", 2500,
//	    delivery.SizeSmall, nil, "")
//
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("delivery creation failed: %w", err)
//	}
type CreateDeliveryCommandHandler struct {
	store *store.RecordStore
}

// NewCreateDeliveryCommandHandler creates a handler for delivery creation.
func NewCreateDeliveryCommandHandler(recordStore *store.RecordStore) CreateDeliveryCommandHandler {
	return CreateDeliveryCommandHandler{store: recordStore}
}

// Handle processes the creation command: builds the pending aggregate and
// commits it through the record store.
func (h CreateDeliveryCommandHandler) Handle(ctx context.Context, cmd CreateDeliveryCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	aggregate, err := delivery.NewDelivery(
		cmd.DeliveryID(),
		cmd.SenderID(),
		cmd.FromAddress(),
		cmd.ToAddress(),
		cmd.PriceCents(),
		cmd.Size(),
		cmd.WeightGrams(),
		cmd.Notes(),
	)
	if err != nil {
		return err
	}

	return h.store.Create(ctx, aggregate)
}
