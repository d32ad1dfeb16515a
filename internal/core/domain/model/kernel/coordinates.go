package kernel

import (
	"errors"
	"fmt"

	"parceltrack/internal/pkg/errs"
	"parceltrack/internal/pkg/guard"
)

const (
	// LatitudeMin is the southernmost valid latitude in degrees.
	LatitudeMin = -90.0
	// LatitudeMax is the northernmost valid latitude in degrees.
	LatitudeMax = 90.0
	// LongitudeMin is the westernmost valid longitude in degrees.
	LongitudeMin = -180.0
	// LongitudeMax is the easternmost valid longitude in degrees.
	LongitudeMax = 180.0
)

// ErrCoordinatesAreNotConstructed is returned when attempting to use a zero
// value Coordinates. Instances must be created via NewCoordinates.
var ErrCoordinatesAreNotConstructed = errs.NewValueIsRequiredError(
	"coordinates must be created via NewCoordinates constructor")

// Coordinates is an immutable geographic position in WGS84 degrees.
// The zero value is invalid and fails Validate; construct via NewCoordinates.
//
// Example:
//
//	pos, err := kernel.NewCoordinates(52.5200, 13.4050)
//	if err != nil {
//	    // out of range
//	}
type Coordinates struct { //nolint:recvcheck //using for validation
	lat   float64
	lng   float64
	guard guard.ConstructorGuard
}

// NewCoordinates creates Coordinates with the given latitude and longitude in
// degrees. Latitude must lie within [-90, 90] and longitude within [-180, 180];
// an out-of-range value produces a validation error naming the offending axis.
func NewCoordinates(lat, lng float64) (Coordinates, error) {
	c := Coordinates{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(c.setLat(lat), c.setLng(lng)); err != nil {
		return Coordinates{}, err
	}

	return c, nil
}

// Validate checks that the Coordinates were created through the constructor.
func (c Coordinates) Validate() error {
	return c.guard.Validate(ErrCoordinatesAreNotConstructed)
}

// Lat returns the latitude in degrees.
func (c Coordinates) Lat() float64 {
	return c.lat
}

// Lng returns the longitude in degrees.
func (c Coordinates) Lng() float64 {
	return c.lng
}

// IsEqual reports whether two coordinates are exactly the same position.
func (c Coordinates) IsEqual(other Coordinates) bool {
	return c.lat == other.lat && c.lng == other.lng
}

// String returns a "Coordinates(lat,lng)" representation for logs.
func (c Coordinates) String() string {
	return fmt.Sprintf("Coordinates(%g,%g)", c.lat, c.lng)
}

func (c *Coordinates) setLat(lat float64) error {
	if lat < LatitudeMin || lat > LatitudeMax {
		return errs.NewValueIsInvalidErrorWithCause("latitude",
			fmt.Errorf("%g is outside [%g, %g]", lat, LatitudeMin, LatitudeMax))
	}
	c.lat = lat
	return nil
}

func (c *Coordinates) setLng(lng float64) error {
	if lng < LongitudeMin || lng > LongitudeMax {
		return errs.NewValueIsInvalidErrorWithCause("longitude",
			fmt.Errorf("%g is outside [%g, %g]", lng, LongitudeMin, LongitudeMax))
	}
	c.lng = lng
	return nil
}
