package ports

import (
	"context"

	"parceltrack/internal/core/domain/events"
	"parceltrack/internal/core/domain/model/kernel"
)

// SampleCache stores the single most recent location sample per delivery so
// that late subscribers get an immediate position before live events arrive.
// The cache is best effort: lookups may miss, writes may fail, and neither
// blocks the event pipeline.
type SampleCache interface {
	// PutSample stores the sample as the last known position for its delivery,
	// replacing any previous one.
	PutSample(ctx context.Context, sample events.LocationSample) error

	// GetSample returns the last known sample for a delivery, or nil when the
	// cache holds none.
	GetSample(ctx context.Context, deliveryID kernel.UUID) (*events.LocationSample, error)

	// DropSample removes the cached sample for a delivery. Called when its
	// tracking session closes so a later session starts clean.
	DropSample(ctx context.Context, deliveryID kernel.UUID) error
}
