package delivery

import (
	"fmt"

	"parceltrack/internal/pkg/errs"
)

// Size is the declared parcel size class. It informs the picker what to
// expect; it carries no physical constraint beyond the optional weight field.
type Size int

const (
	// SizeUnknown represents an invalid or undefined size.
	SizeUnknown Size = iota

	// SizeSmall fits in a bag (documents, small boxes).
	SizeSmall

	// SizeMedium fits on a bike rack or car seat.
	SizeMedium

	// SizeLarge requires a trunk or cargo space.
	SizeLarge
)

// String returns the wire name of the size class.
func (s Size) String() string {
	switch s {
	case SizeSmall:
		return "small"
	case SizeMedium:
		return "medium"
	case SizeLarge:
		return "large"
	default:
		return "unknown"
	}
}

// SizeFromString parses a wire size name into a Size.
func SizeFromString(s string) (Size, error) {
	switch s {
	case "small":
		return SizeSmall, nil
	case "medium":
		return SizeMedium, nil
	case "large":
		return SizeLarge, nil
	default:
		return SizeUnknown, errs.NewValueIsInvalidErrorWithCause("size",
			fmt.Errorf("%q is not a valid size", s))
	}
}

// Validate checks that the Size is one of the defined classes.
func (s Size) Validate() error {
	if s != SizeSmall && s != SizeMedium && s != SizeLarge {
		return errs.NewValueIsInvalidErrorWithCause("size",
			fmt.Errorf("%d is not a valid size", s))
	}
	return nil
}
