package kernel_test

import (
	"fmt"
	"testing"

	"parceltrack/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCoordinates(t *testing.T) {
	t.Run("should create valid coordinates", func(t *testing.T) {
		c, err := kernel.NewCoordinates(52.52, 13.405)

		require.NoError(t, err)
		require.NoError(t, c.Validate())
		assert.InDelta(t, 52.52, c.Lat(), 1e-9)
		assert.InDelta(t, 13.405, c.Lng(), 1e-9)
	})

	t.Run("should accept boundary values", func(t *testing.T) {
		boundaries := []struct {
			lat, lng float64
		}{
			{kernel.LatitudeMin, kernel.LongitudeMin},
			{kernel.LatitudeMax, kernel.LongitudeMax},
			{0, 0},
		}

		for _, b := range boundaries {
			t.Run(fmt.Sprintf("should accept (%g,%g)", b.lat, b.lng), func(t *testing.T) {
				c, err := kernel.NewCoordinates(b.lat, b.lng)

				require.NoError(t, err)
				require.NoError(t, c.Validate())
			})
		}
	})

	t.Run("should reject out of range latitude", func(t *testing.T) {
		_, err := kernel.NewCoordinates(90.5, 0)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "latitude")
	})

	t.Run("should reject out of range longitude", func(t *testing.T) {
		_, err := kernel.NewCoordinates(0, -180.5)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "longitude")
	})

	t.Run("should join errors for both axes", func(t *testing.T) {
		_, err := kernel.NewCoordinates(-91, 181)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "latitude")
		assert.Contains(t, err.Error(), "longitude")
	})
}

func TestCoordinates_Validate(t *testing.T) {
	t.Run("should reject zero value", func(t *testing.T) {
		var c kernel.Coordinates

		err := c.Validate()

		require.Error(t, err)
		assert.Equal(t, kernel.ErrCoordinatesAreNotConstructed, err)
	})
}

func TestCoordinates_IsEqual(t *testing.T) {
	t.Run("should compare by position", func(t *testing.T) {
		a, _ := kernel.NewCoordinates(10, 20)
		b, _ := kernel.NewCoordinates(10, 20)
		c, _ := kernel.NewCoordinates(10, 21)

		assert.True(t, a.IsEqual(b))
		assert.False(t, a.IsEqual(c))
	})
}
