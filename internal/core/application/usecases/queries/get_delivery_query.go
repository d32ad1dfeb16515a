// Package queries contains read operations for retrieving delivery state.
// Implements the Query pattern for the CQRS architecture: queries bypass the
// aggregate and read optimized models straight from the database.
package queries

import (
	"errors"

	"parceltrack/internal/core/domain/model/kernel"
	"parceltrack/internal/pkg/guard"
)

var ErrGetDeliveryQueryIsNotConstructed = errors.New(
	"GetDeliveryQuery must be created via NewGetDeliveryQuery constructor",
)

// GetDeliveryQuery retrieves one delivery record by identifier.
//
// Example:
//
//	query, err := NewGetDeliveryQuery(deliveryID)
//	if err != nil {
//	    return err
//	}
//
//	handler := NewGetDeliveryQueryHandler(db)
//	record, err := handler.Handle(ctx, query)
type GetDeliveryQuery struct { //nolint:recvcheck //using for validation
	deliveryID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetDeliveryQuery creates a query for a single delivery.
func NewGetDeliveryQuery(deliveryID kernel.UUID) (GetDeliveryQuery, error) {
	if err := deliveryID.Validate(); err != nil {
		return GetDeliveryQuery{}, err
	}

	return GetDeliveryQuery{
		deliveryID: deliveryID,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetDeliveryQuery) Validate() error {
	return q.guard.Validate(ErrGetDeliveryQueryIsNotConstructed)
}

// DeliveryID returns the requested delivery identifier.
func (q GetDeliveryQuery) DeliveryID() kernel.UUID {
	return q.deliveryID
}

// DeliveryResponse is the read model of one delivery record. Status and size
// carry their wire names so the response serializes without further mapping.
type DeliveryResponse struct {
	ID          kernel.UUID
	SenderID    kernel.UUID
	PickerID    *kernel.UUID
	Status      string
	FromAddress string
	ToAddress   string
	PriceCents  int64
	Size        string
	WeightGrams *int64
	Notes       string
}
