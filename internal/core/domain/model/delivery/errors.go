package delivery

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is the sentinel for transitions denied by the status
// table. It is recoverable: the record is left unchanged and the caller may
// retry with a valid action.
var ErrInvalidTransition = errors.New("invalid status transition")

// InvalidTransitionError describes a denied transition: the edge that was
// requested and the role that requested it.
type InvalidTransitionError struct {
	From Status
	To   Status
	Role Role
}

// NewInvalidTransitionError creates an InvalidTransitionError for the denied
// edge.
func NewInvalidTransitionError(from, to Status, role Role) *InvalidTransitionError {
	return &InvalidTransitionError{From: from, To: to, Role: role}
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s is not allowed for %s",
		ErrInvalidTransition, e.From, e.To, e.Role)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}
