package ports

import (
	"context"

	"parceltrack/internal/core/domain/model/delivery"
	"parceltrack/internal/core/domain/model/kernel"
)

// StatusBackend is the authoritative remote source of delivery status. The
// record store validates transitions locally, pushes them to the backend, and
// treats the backend's answer as final.
type StatusBackend interface {
	// PushStatus reports a locally validated transition to the backend.
	// A backend rejection because its status disagrees with ours surfaces as
	// an errs.ConflictError; the store then re-fetches authoritative state
	// before the caller may retry.
	PushStatus(ctx context.Context, id kernel.UUID, status delivery.Status) error

	// FetchStatus retrieves the backend's current status for a delivery.
	// Returns an errs.ObjectNotFoundError when the backend does not know the id.
	FetchStatus(ctx context.Context, id kernel.UUID) (delivery.Status, error)
}
