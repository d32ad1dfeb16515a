package commands

import (
	"errors"

	"parceltrack/internal/core/domain/model/delivery"
	"parceltrack/internal/core/domain/model/kernel"
	"parceltrack/internal/pkg/guard"
)

var ErrRequestTransitionCommandIsNotConstructed = errors.New(
	"RequestTransitionCommand must be created via NewRequestTransitionCommand constructor",
)

// RequestTransitionCommand represents an actor's request to move a delivery
// to a new lifecycle status: a picker accepting, picking up, or delivering,
// or either party cancelling.
//
// Example:
//
//	cmd, err := NewRequestTransitionCommand(
//	    deliveryID, pickerID, delivery.RolePicker, delivery.StatusAccepted)
//	if err != nil {
//	    return err
//	}
//
//	handler := NewRequestTransitionCommandHandler(recordStore)
//	status, err := handler.Handle(ctx, cmd)
type RequestTransitionCommand struct { //nolint:recvcheck //using for validation
	deliveryID kernel.UUID
	actorID    kernel.UUID
	role       delivery.Role
	target     delivery.Status

	guard guard.ConstructorGuard
}

// NewRequestTransitionCommand creates a transition request. The target must
// be a valid status; whether the transition is legal for this actor is
// decided by the aggregate when the command is handled.
func NewRequestTransitionCommand(
	deliveryID kernel.UUID,
	actorID kernel.UUID,
	role delivery.Role,
	target delivery.Status,
) (RequestTransitionCommand, error) {
	cmd := RequestTransitionCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setDeliveryID(deliveryID),
		cmd.setActorID(actorID),
		cmd.setRole(role),
		cmd.setTarget(target),
	); err != nil {
		return RequestTransitionCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c RequestTransitionCommand) Validate() error {
	return c.guard.Validate(ErrRequestTransitionCommandIsNotConstructed)
}

// DeliveryID returns the delivery to transition.
func (c RequestTransitionCommand) DeliveryID() kernel.UUID {
	return c.deliveryID
}

// ActorID returns who is requesting the transition.
func (c RequestTransitionCommand) ActorID() kernel.UUID {
	return c.actorID
}

// Role returns the role the actor claims.
func (c RequestTransitionCommand) Role() delivery.Role {
	return c.role
}

// Target returns the requested status.
func (c RequestTransitionCommand) Target() delivery.Status {
	return c.target
}

func (c *RequestTransitionCommand) setDeliveryID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.deliveryID = id
	return nil
}

func (c *RequestTransitionCommand) setActorID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.actorID = id
	return nil
}

func (c *RequestTransitionCommand) setRole(role delivery.Role) error {
	if err := role.Validate(); err != nil {
		return err
	}

	c.role = role
	return nil
}

func (c *RequestTransitionCommand) setTarget(target delivery.Status) error {
	if err := target.Validate(); err != nil {
		return err
	}

	c.target = target
	return nil
}
