package commands

import (
	"errors"

	"parceltrack/internal/core/domain/model/delivery"
	"parceltrack/internal/core/domain/model/kernel"
	"parceltrack/internal/pkg/guard"
)

var ErrEditDeliveryCommandIsNotConstructed = errors.New(
	"EditDeliveryCommand must be created via NewEditDeliveryCommand constructor",
)

// EditDeliveryCommand represents a sender's request to revise a still-pending
// delivery: addresses, price, size, weight, or notes. Once a picker has
// accepted, the terms are locked and the edit is rejected.
type EditDeliveryCommand struct { //nolint:recvcheck //using for validation
	deliveryID  kernel.UUID
	actorID     kernel.UUID
	fromAddress string
	toAddress   string
	priceCents  int64
	size        delivery.Size
	weightGrams *int64
	notes       string

	guard guard.ConstructorGuard
}

// NewEditDeliveryCommand creates an edit request with the full replacement
// set of editable fields.
func NewEditDeliveryCommand(
	deliveryID kernel.UUID,
	actorID kernel.UUID,
	fromAddress string,
	toAddress string,
	priceCents int64,
	size delivery.Size,
	weightGrams *int64,
	notes string,
) (EditDeliveryCommand, error) {
	cmd := EditDeliveryCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setDeliveryID(deliveryID),
		cmd.setActorID(actorID),
		cmd.setAddresses(fromAddress, toAddress),
		cmd.setPrice(priceCents),
		cmd.setSize(size),
		cmd.setWeight(weightGrams),
	); err != nil {
		return EditDeliveryCommand{}, err
	}

	cmd.notes = notes
	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c EditDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrEditDeliveryCommandIsNotConstructed)
}

// DeliveryID returns the delivery to edit.
func (c EditDeliveryCommand) DeliveryID() kernel.UUID {
	return c.deliveryID
}

// ActorID returns who is requesting the edit.
func (c EditDeliveryCommand) ActorID() kernel.UUID {
	return c.actorID
}

// FromAddress returns the new pickup address.
func (c EditDeliveryCommand) FromAddress() string {
	return c.fromAddress
}

// ToAddress returns the new dropoff address.
func (c EditDeliveryCommand) ToAddress() string {
	return c.toAddress
}

// PriceCents returns the new offered price in cents.
func (c EditDeliveryCommand) PriceCents() int64 {
	return c.priceCents
}

// Size returns the new parcel size class.
func (c EditDeliveryCommand) Size() delivery.Size {
	return c.size
}

// WeightGrams returns the new optional parcel weight.
func (c EditDeliveryCommand) WeightGrams() *int64 {
	if c.weightGrams == nil {
		return nil
	}
	weight := *c.weightGrams
	return &weight
}

// Notes returns the new handling notes.
func (c EditDeliveryCommand) Notes() string {
	return c.notes
}

func (c *EditDeliveryCommand) setDeliveryID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.deliveryID = id
	return nil
}

func (c *EditDeliveryCommand) setActorID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.actorID = id
	return nil
}

func (c *EditDeliveryCommand) setAddresses(from, to string) error {
	if from == "" {
		return ErrFromAddressIsRequired
	}
	if to == "" {
		return ErrToAddressIsRequired
	}

	c.fromAddress = from
	c.toAddress = to
	return nil
}

func (c *EditDeliveryCommand) setPrice(priceCents int64) error {
	if priceCents <= 0 {
		return ErrPriceIsInvalid
	}

	c.priceCents = priceCents
	return nil
}

func (c *EditDeliveryCommand) setSize(size delivery.Size) error {
	if err := size.Validate(); err != nil {
		return err
	}

	c.size = size
	return nil
}

func (c *EditDeliveryCommand) setWeight(weightGrams *int64) error {
	if weightGrams != nil && *weightGrams <= 0 {
		return ErrWeightIsInvalid
	}

	if weightGrams != nil {
		weight := *weightGrams
		c.weightGrams = &weight
	}
	return nil
}
