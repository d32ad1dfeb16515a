package rediscache_test

import (
	"context"
	"testing"
	"time"

	"parceltrack/internal/adapters/out/rediscache"
	"parceltrack/internal/core/domain/events"
	"parceltrack/internal/core/domain/model/kernel"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*rediscache.SampleCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return rediscache.NewSampleCache(client, ttl), mr
}

func testSample(t *testing.T, seq uint64) events.LocationSample {
	t.Helper()
	coords, err := kernel.NewCoordinates(59.33, 18.07)
	require.NoError(t, err)
	return events.LocationSample{
		DeliveryID: kernel.NewUUID(),
		PickerID:   kernel.NewUUID(),
		Coords:     coords,
		Seq:        seq,
		CapturedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}

func TestSampleCache(t *testing.T) {
	t.Run("should round trip the last sample", func(t *testing.T) {
		cache, _ := newTestCache(t, 0)
		sample := testSample(t, 17)

		require.NoError(t, cache.PutSample(context.Background(), sample))
		got, err := cache.GetSample(context.Background(), sample.DeliveryID)

		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, sample.DeliveryID.IsEqual(got.DeliveryID))
		assert.True(t, sample.PickerID.IsEqual(got.PickerID))
		assert.Equal(t, sample.Seq, got.Seq)
		assert.InDelta(t, sample.Coords.Lat(), got.Coords.Lat(), 1e-9)
		assert.InDelta(t, sample.Coords.Lng(), got.Coords.Lng(), 1e-9)
		assert.True(t, sample.CapturedAt.Equal(got.CapturedAt))
	})

	t.Run("should overwrite the previous sample", func(t *testing.T) {
		cache, _ := newTestCache(t, 0)
		first := testSample(t, 1)
		second := first
		second.Seq = 2

		require.NoError(t, cache.PutSample(context.Background(), first))
		require.NoError(t, cache.PutSample(context.Background(), second))
		got, err := cache.GetSample(context.Background(), first.DeliveryID)

		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, uint64(2), got.Seq)
	})

	t.Run("should return nil on a miss", func(t *testing.T) {
		cache, _ := newTestCache(t, 0)

		got, err := cache.GetSample(context.Background(), kernel.NewUUID())

		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("should drop the sample", func(t *testing.T) {
		cache, _ := newTestCache(t, 0)
		sample := testSample(t, 5)
		require.NoError(t, cache.PutSample(context.Background(), sample))

		require.NoError(t, cache.DropSample(context.Background(), sample.DeliveryID))
		got, err := cache.GetSample(context.Background(), sample.DeliveryID)

		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("should expire samples after the ttl", func(t *testing.T) {
		cache, mr := newTestCache(t, time.Minute)
		sample := testSample(t, 9)
		require.NoError(t, cache.PutSample(context.Background(), sample))

		mr.FastForward(2 * time.Minute)
		got, err := cache.GetSample(context.Background(), sample.DeliveryID)

		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
