// Package commands contains write operations that mutate delivery state.
// Implements the Command pattern for the CQRS architecture: each command is a
// validated, immutable request object paired with a handler.
package commands

import (
	"errors"

	"parceltrack/internal/core/domain/model/delivery"
	"parceltrack/internal/core/domain/model/kernel"
	"parceltrack/internal/pkg/guard"
)

var (
	ErrCreateDeliveryCommandIsNotConstructed = errors.New(
		"CreateDeliveryCommand must be created via NewCreateDeliveryCommand constructor",
	)
	ErrFromAddressIsRequired = errors.New("from address is required")
	ErrToAddressIsRequired   = errors.New("to address is required")
	ErrPriceIsInvalid        = errors.New("price must be greater than 0")
	ErrWeightIsInvalid       = errors.New("weight must be greater than 0 when provided")
)

// CreateDeliveryCommand represents a sender's request to post a new parcel
// delivery. The request enters the marketplace in pending status, visible to
// pickers for acceptance.
//
// Example:
//
//	deliveryID := kernel.NewUUID()
//	cmd, err := NewCreateDeliveryCommand(
//	    deliveryID, senderID, "1 Origin St", "2 Target Ave", 2500,
//	    delivery.SizeSmall, nil, "fragile")
//	if err != nil {
//	    return fmt.Errorf("invalid delivery data: %w", err)
//	}
//
//	handler := NewCreateDeliveryCommandHandler(recordStore)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to create delivery: %w", err)
//	}
type CreateDeliveryCommand struct { //nolint:recvcheck //using for validation
	deliveryID  kernel.UUID
	senderID    kernel.UUID
	fromAddress string
	toAddress   string
	priceCents  int64
	size        delivery.Size
	weightGrams *int64
	notes       string

	guard guard.ConstructorGuard
}

// NewCreateDeliveryCommand creates a command to post a new delivery request.
// Validates identifiers, addresses, price, size, and the optional weight.
func NewCreateDeliveryCommand(
	deliveryID kernel.UUID,
	senderID kernel.UUID,
	fromAddress string,
	toAddress string,
	priceCents int64,
	size delivery.Size,
	weightGrams *int64,
	notes string,
) (CreateDeliveryCommand, error) {
	cmd := CreateDeliveryCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setDeliveryID(deliveryID),
		cmd.setSenderID(senderID),
		cmd.setAddresses(fromAddress, toAddress),
		cmd.setPrice(priceCents),
		cmd.setSize(size),
		cmd.setWeight(weightGrams),
	); err != nil {
		return CreateDeliveryCommand{}, err
	}

	cmd.notes = notes
	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrCreateDeliveryCommandIsNotConstructed)
}

// DeliveryID returns the identifier for the new delivery.
func (c CreateDeliveryCommand) DeliveryID() kernel.UUID {
	return c.deliveryID
}

// SenderID returns the identifier of the posting sender.
func (c CreateDeliveryCommand) SenderID() kernel.UUID {
	return c.senderID
}

// FromAddress returns the pickup address.
func (c CreateDeliveryCommand) FromAddress() string {
	return c.fromAddress
}

// ToAddress returns the dropoff address.
func (c CreateDeliveryCommand) ToAddress() string {
	return c.toAddress
}

// PriceCents returns the offered price in cents.
func (c CreateDeliveryCommand) PriceCents() int64 {
	return c.priceCents
}

// Size returns the parcel size class.
func (c CreateDeliveryCommand) Size() delivery.Size {
	return c.size
}

// WeightGrams returns the optional parcel weight.
func (c CreateDeliveryCommand) WeightGrams() *int64 {
	if c.weightGrams == nil {
		return nil
	}
	weight := *c.weightGrams
	return &weight
}

// Notes returns the free-form handling notes.
func (c CreateDeliveryCommand) Notes() string {
	return c.notes
}

func (c *CreateDeliveryCommand) setDeliveryID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.deliveryID = id
	return nil
}

func (c *CreateDeliveryCommand) setSenderID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.senderID = id
	return nil
}

func (c *CreateDeliveryCommand) setAddresses(from, to string) error {
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

func (c *CreateDeliveryCommand) setPrice(priceCents int64) error {
	if priceCents <= 0 {
		return ErrPriceIsInvalid
	}

	c.priceCents = priceCents
	return nil
}

func (c *CreateDeliveryCommand) setSize(size delivery.Size) error {
	if err := size.Validate(); err != nil {
		return err
	}

	c.size = size
	return nil
}

func (c *CreateDeliveryCommand) setWeight(weightGrams *int64) error {
	if weightGrams != nil && *weightGrams <= 0 {
		return ErrWeightIsInvalid
	}

	if weightGrams != nil {
		weight := *weightGrams
		c.weightGrams = &weight
	}
	return nil
}
