// Package rediscache implements the SampleCache port on Redis, keeping the
// single most recent location sample per delivery.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"parceltrack/internal/core/domain/events"
	"parceltrack/internal/core/domain/model/kernel"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "parceltrack:lastsample:"

// DefaultTTL bounds how long a last-known position outlives its session when
// teardown never ran, for example after a crash.
const DefaultTTL = 24 * time.Hour

// SampleCache stores the last accepted sample per delivery under a single
// key, overwritten on every write.
type SampleCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSampleCache creates a Redis-backed sample cache. A non-positive ttl
// falls back to DefaultTTL.
func NewSampleCache(client *redis.Client, ttl time.Duration) *SampleCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SampleCache{client: client, ttl: ttl}
}

// sampleDTO is the stored shape of a location sample.
type sampleDTO struct {
	DeliveryID string    `json:"deliveryId"`
	PickerID   string    `json:"pickerId"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	Seq        uint64    `json:"seq"`
	CapturedAt time.Time `json:"capturedAt"`
}

// PutSample stores the sample as the delivery's last known position.
func (c *SampleCache) PutSample(ctx context.Context, sample events.LocationSample) error {
	dto := sampleDTO{
		DeliveryID: sample.DeliveryID.String(),
		PickerID:   sample.PickerID.String(),
		Lat:        sample.Coords.Lat(),
		Lng:        sample.Coords.Lng(),
		Seq:        sample.Seq,
		CapturedAt: sample.CapturedAt,
	}

	payload, err := json.Marshal(dto)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key(sample.DeliveryID), payload, c.ttl).Err()
}

// GetSample returns the last known sample for a delivery, or nil on a miss.
func (c *SampleCache) GetSample(ctx context.Context, deliveryID kernel.UUID) (*events.LocationSample, error) {
	payload, err := c.client.Get(ctx, key(deliveryID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var dto sampleDTO
	if err := json.Unmarshal(payload, &dto); err != nil {
		return nil, fmt.Errorf("decode cached sample: %w", err)
	}

	return toDomain(dto)
}

// DropSample removes the cached sample for a delivery.
func (c *SampleCache) DropSample(ctx context.Context, deliveryID kernel.UUID) error {
	return c.client.Del(ctx, key(deliveryID)).Err()
}

func key(deliveryID kernel.UUID) string {
	return keyPrefix + deliveryID.String()
}

func toDomain(dto sampleDTO) (*events.LocationSample, error) {
	deliveryID, err := kernel.UUIDFromString(dto.DeliveryID)
	if err != nil {
		return nil, err
	}

	pickerID, err := kernel.UUIDFromString(dto.PickerID)
	if err != nil {
		return nil, err
	}

	coords, err := kernel.NewCoordinates(dto.Lat, dto.Lng)
	if err != nil {
		return nil, err
	}

	return &events.LocationSample{
		DeliveryID: deliveryID,
		PickerID:   pickerID,
		Coords:     coords,
		Seq:        dto.Seq,
		CapturedAt: dto.CapturedAt,
	}, nil
}
