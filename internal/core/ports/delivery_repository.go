// Package ports defines the boundaries between the lifecycle core and its
// collaborators: persistence, the authoritative status backend, the live
// stream transport, and the last-known sample cache. Adapters implement these
// interfaces; the core never imports an adapter.
package ports

import (
	"context"

	"parceltrack/internal/core/domain/model/delivery"
	"parceltrack/internal/core/domain/model/kernel"
)

// DeliveryRepository defines the persistence contract for delivery aggregates.
type DeliveryRepository interface {
	// Add persists a new delivery aggregate.
	// The delivery must be valid and not already exist.
	Add(ctx context.Context, aggregate *delivery.Delivery) error

	// Update persists changes to an existing delivery aggregate.
	Update(ctx context.Context, aggregate *delivery.Delivery) error

	// Get retrieves a delivery by its identifier. Returns an
	// errs.ObjectNotFoundError when the id is unknown.
	Get(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error)

	// GetAllActive retrieves all deliveries in a non-terminal status.
	// Used by the reconcile job and the active-deliveries query.
	GetAllActive(ctx context.Context) ([]*delivery.Delivery, error)
}
