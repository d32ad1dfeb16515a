package observer_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"parceltrack/internal/core/domain/events"
	"parceltrack/internal/core/domain/model/delivery"
	"parceltrack/internal/core/domain/model/kernel"
	"parceltrack/internal/observer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySampleCache struct {
	mu      sync.Mutex
	samples map[string]events.LocationSample
	getErr  error
}

func newMemorySampleCache() *memorySampleCache {
	return &memorySampleCache{samples: map[string]events.LocationSample{}}
}

func (c *memorySampleCache) PutSample(_ context.Context, sample events.LocationSample) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.samples[sample.DeliveryID.String()] = sample
	return nil
}

func (c *memorySampleCache) GetSample(_ context.Context, id kernel.UUID) (*events.LocationSample, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	if sample, ok := c.samples[id.String()]; ok {
		return &sample, nil
	}
	return nil, nil
}

func (c *memorySampleCache) DropSample(_ context.Context, id kernel.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.samples, id.String())
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func statusEvent(id kernel.UUID, from, to delivery.Status) events.StatusChanged {
	return events.StatusChanged{
		DeliveryID: id,
		From:       from,
		To:         to,
		ActorID:    kernel.NewUUID(),
		OccurredAt: time.Now(),
	}
}

func locationSample(t *testing.T, id kernel.UUID, seq uint64) events.LocationSample {
	t.Helper()
	coords, err := kernel.NewCoordinates(48.85, 2.35)
	require.NoError(t, err)
	return events.LocationSample{
		DeliveryID: id,
		PickerID:   kernel.NewUUID(),
		Coords:     coords,
		Seq:        seq,
		CapturedAt: time.Now(),
	}
}

// receive reads the next event off a subscription with a deadline so a broken
// stream fails the test instead of hanging it.
func receive(t *testing.T, sub *observer.Subscription) events.Event {
	t.Helper()
	select {
	case event, ok := <-sub.Events():
		require.True(t, ok, "stream closed unexpectedly")
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func requireClosed(t *testing.T, sub *observer.Subscription) {
	t.Helper()
	select {
	case _, ok := <-sub.Events():
		assert.False(t, ok, "expected stream to be closed")
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for stream to close")
	}
}

func TestHubFanOut(t *testing.T) {
	t.Run("should deliver status changes to every subscriber", func(t *testing.T) {
		hub := observer.NewHub(nil, testLogger())
		deliveryID := kernel.NewUUID()
		first := hub.Subscribe(deliveryID)
		second := hub.Subscribe(deliveryID)
		defer hub.Unsubscribe(first)
		defer hub.Unsubscribe(second)

		hub.OnStatusChanged(statusEvent(deliveryID, delivery.StatusPending, delivery.StatusAccepted))

		for _, sub := range []*observer.Subscription{first, second} {
			event := receive(t, sub)
			status, ok := event.(events.StatusChanged)
			require.True(t, ok)
			assert.Equal(t, delivery.StatusAccepted, status.To)
		}
	})

	t.Run("should not leak events across deliveries", func(t *testing.T) {
		hub := observer.NewHub(nil, testLogger())
		watched := kernel.NewUUID()
		other := kernel.NewUUID()
		sub := hub.Subscribe(watched)
		defer hub.Unsubscribe(sub)

		hub.OnStatusChanged(statusEvent(other, delivery.StatusPending, delivery.StatusAccepted))
		hub.OnStatusChanged(statusEvent(watched, delivery.StatusPending, delivery.StatusCancelled))

		event := receive(t, sub)
		assert.True(t, watched.IsEqual(event.Delivery()))
	})

	t.Run("should deliver samples in sequence order", func(t *testing.T) {
		hub := observer.NewHub(nil, testLogger())
		deliveryID := kernel.NewUUID()
		sub := hub.Subscribe(deliveryID)
		defer hub.Unsubscribe(sub)

		for seq := uint64(1); seq <= 3; seq++ {
			hub.OnLocationSample(locationSample(t, deliveryID, seq))
		}

		for seq := uint64(1); seq <= 3; seq++ {
			event := receive(t, sub)
			sample, ok := event.(events.LocationSample)
			require.True(t, ok)
			assert.Equal(t, seq, sample.Seq)
		}
	})

	t.Run("should deliver tracking unavailable signals", func(t *testing.T) {
		hub := observer.NewHub(nil, testLogger())
		deliveryID := kernel.NewUUID()
		sub := hub.Subscribe(deliveryID)
		defer hub.Unsubscribe(sub)

		hub.OnTrackingUnavailable(events.TrackingUnavailable{
			DeliveryID: deliveryID, Since: time.Now(),
		})

		_, ok := receive(t, sub).(events.TrackingUnavailable)
		assert.True(t, ok)
	})
}

func TestHubReplay(t *testing.T) {
	t.Run("should replay last status and sample to a late subscriber", func(t *testing.T) {
		hub := observer.NewHub(nil, testLogger())
		deliveryID := kernel.NewUUID()
		hub.OnStatusChanged(statusEvent(deliveryID, delivery.StatusAccepted, delivery.StatusPickedUp))
		hub.OnLocationSample(locationSample(t, deliveryID, 7))

		sub := hub.Subscribe(deliveryID)
		defer hub.Unsubscribe(sub)

		status, ok := receive(t, sub).(events.StatusChanged)
		require.True(t, ok)
		assert.Equal(t, delivery.StatusPickedUp, status.To)

		sample, ok := receive(t, sub).(events.LocationSample)
		require.True(t, ok)
		assert.Equal(t, uint64(7), sample.Seq)
	})

	t.Run("should fall back to the cache for the last sample", func(t *testing.T) {
		cache := newMemorySampleCache()
		hub := observer.NewHub(cache, testLogger())
		deliveryID := kernel.NewUUID()
		require.NoError(t, cache.PutSample(context.Background(), locationSample(t, deliveryID, 12)))

		sub := hub.Subscribe(deliveryID)
		defer hub.Unsubscribe(sub)

		sample, ok := receive(t, sub).(events.LocationSample)
		require.True(t, ok)
		assert.Equal(t, uint64(12), sample.Seq)
	})

	t.Run("should subscribe cleanly when the cache fails", func(t *testing.T) {
		cache := newMemorySampleCache()
		cache.getErr = errors.New("cache down")
		hub := observer.NewHub(cache, testLogger())
		deliveryID := kernel.NewUUID()

		sub := hub.Subscribe(deliveryID)
		defer hub.Unsubscribe(sub)

		hub.OnStatusChanged(statusEvent(deliveryID, delivery.StatusPending, delivery.StatusAccepted))
		_, ok := receive(t, sub).(events.StatusChanged)
		assert.True(t, ok)
	})

	t.Run("should mirror accepted samples into the cache", func(t *testing.T) {
		cache := newMemorySampleCache()
		hub := observer.NewHub(cache, testLogger())
		deliveryID := kernel.NewUUID()

		hub.OnLocationSample(locationSample(t, deliveryID, 3))

		require.Eventually(t, func() bool {
			sample, err := cache.GetSample(context.Background(), deliveryID)
			return err == nil && sample != nil && sample.Seq == 3
		}, time.Second, time.Millisecond)
	})
}

func TestHubTermination(t *testing.T) {
	t.Run("should close streams after a terminal status", func(t *testing.T) {
		hub := observer.NewHub(nil, testLogger())
		deliveryID := kernel.NewUUID()
		sub := hub.Subscribe(deliveryID)

		hub.OnStatusChanged(statusEvent(deliveryID, delivery.StatusPickedUp, delivery.StatusDelivered))

		status, ok := receive(t, sub).(events.StatusChanged)
		require.True(t, ok)
		assert.Equal(t, delivery.StatusDelivered, status.To)
		requireClosed(t, sub)
	})

	t.Run("should replay the terminal status to a late subscriber", func(t *testing.T) {
		hub := observer.NewHub(nil, testLogger())
		deliveryID := kernel.NewUUID()
		hub.OnLocationSample(locationSample(t, deliveryID, 4))
		hub.OnStatusChanged(statusEvent(deliveryID, delivery.StatusPickedUp, delivery.StatusCancelled))

		sub := hub.Subscribe(deliveryID)
		defer hub.Unsubscribe(sub)

		status, ok := receive(t, sub).(events.StatusChanged)
		require.True(t, ok)
		assert.Equal(t, delivery.StatusCancelled, status.To)
		assert.Nil(t, hub.LastSample(deliveryID), "sample forgotten after terminal status")
	})

	t.Run("should close the stream on unsubscribe", func(t *testing.T) {
		hub := observer.NewHub(nil, testLogger())
		sub := hub.Subscribe(kernel.NewUUID())

		hub.Unsubscribe(sub)

		requireClosed(t, sub)
	})

	t.Run("should tolerate a double unsubscribe", func(t *testing.T) {
		hub := observer.NewHub(nil, testLogger())
		sub := hub.Subscribe(kernel.NewUUID())

		hub.Unsubscribe(sub)
		hub.Unsubscribe(sub)

		requireClosed(t, sub)
	})
}
