package delivery

import (
	"fmt"

	"parceltrack/internal/pkg/errs"
)

// Role identifies which side of the marketplace an actor acts for.
// The core does not authenticate; it trusts the role+id pair supplied by the
// session layer and only authorizes transitions against it.
type Role int

const (
	// RoleUnknown represents an invalid or undefined role.
	RoleUnknown Role = iota

	// RoleSender is the customer who created the delivery request.
	RoleSender

	// RolePicker is the courier who accepts and fulfills the request.
	RolePicker
)

// String returns the wire name of the role ("sender" or "picker").
func (r Role) String() string {
	switch r {
	case RoleSender:
		return "sender"
	case RolePicker:
		return "picker"
	default:
		return "unknown"
	}
}

// RoleFromString parses a wire role name into a Role.
func RoleFromString(s string) (Role, error) {
	switch s {
	case "sender":
		return RoleSender, nil
	case "picker":
		return RolePicker, nil
	default:
		return RoleUnknown, errs.NewValueIsInvalidErrorWithCause("role",
			fmt.Errorf("%q is not a valid role", s))
	}
}

// Validate checks that the Role is either sender or picker.
func (r Role) Validate() error {
	if r != RoleSender && r != RolePicker {
		return errs.NewValueIsInvalidErrorWithCause("role",
			fmt.Errorf("%d is not a valid role", r))
	}
	return nil
}
