package delivery

import (
	"errors"
	"fmt"
	"strings"

	"parceltrack/internal/core/domain/model/kernel"
	"parceltrack/internal/pkg/errs"
	"parceltrack/internal/pkg/guard"
)

// ErrDeliveryIsNotConstructed is returned when a Delivery instance was not
// created through NewDelivery or RestoreDelivery. This ensures all deliveries
// carry validated state.
var ErrDeliveryIsNotConstructed = errors.New(
	"Delivery must be created via NewDelivery or RestoreDelivery")

// Delivery is the aggregate root for a delivery request. It owns the status
// state machine and the actor bindings: the sender who created the request and
// the picker who fulfills it.
//
// Invariants:
//   - id and senderID are immutable and valid
//   - pickerID is unset while pending, then fixed for the lifetime of the
//     record once a picker accepts
//   - status only changes through RequestTransition, which enforces the
//     transition table and actor identity
//   - metadata is immutable after creation except through Edit, which is
//     reserved to the sender while the request is still pending
type Delivery struct {
	id       kernel.UUID
	senderID kernel.UUID
	pickerID *kernel.UUID
	status   Status

	fromAddress string
	toAddress   string
	priceCents  int64
	size        Size
	weightGrams *int64
	notes       string

	guard guard.ConstructorGuard
}

// NewDelivery creates a new delivery request in pending status.
//
// Parameters:
//   - id: unique identifier for the request
//   - senderID: the creating sender's identifier
//   - fromAddress, toAddress: pickup and dropoff addresses (non-empty)
//   - priceCents: offered price in cents (must be positive)
//   - size: declared parcel size class
//   - weightGrams: optional parcel weight, nil when not declared
//   - notes: optional free-form instructions for the picker
//
// Returns the created delivery or a joined validation error naming every
// invalid parameter.
func NewDelivery(
	id kernel.UUID,
	senderID kernel.UUID,
	fromAddress string,
	toAddress string,
	priceCents int64,
	size Size,
	weightGrams *int64,
	notes string,
) (*Delivery, error) {
	d := &Delivery{
		status: StatusPending,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setID(id),
		d.setSenderID(senderID),
		d.setAddresses(fromAddress, toAddress),
		d.setPrice(priceCents),
		d.setSize(size),
		d.setWeight(weightGrams),
	); err != nil {
		return nil, err
	}
	d.notes = notes

	return d, nil
}

// RestoreDelivery reconstructs a delivery aggregate from persisted state.
// Unlike NewDelivery it accepts any valid status and an optional picker, and
// additionally checks that the picker assignment is consistent with the
// status (a pending delivery has none, an accepted one always does).
func RestoreDelivery(
	id kernel.UUID,
	senderID kernel.UUID,
	pickerID *kernel.UUID,
	status Status,
	fromAddress string,
	toAddress string,
	priceCents int64,
	size Size,
	weightGrams *int64,
	notes string,
) (*Delivery, error) {
	d := &Delivery{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setID(id),
		d.setSenderID(senderID),
		d.setAddresses(fromAddress, toAddress),
		d.setPrice(priceCents),
		d.setSize(size),
		d.setWeight(weightGrams),
		status.Validate(),
		status.ValidateCanHavePicker(pickerID != nil),
	); err != nil {
		return nil, err
	}

	if pickerID != nil {
		if err := pickerID.Validate(); err != nil {
			return nil, err
		}
		idCopy := *pickerID
		d.pickerID = &idCopy
	}

	d.status = status
	d.notes = notes

	return d, nil
}

// Validate ensures the Delivery was constructed through a constructor.
func (d *Delivery) Validate() error {
	if d == nil {
		return ErrDeliveryIsNotConstructed
	}
	return d.guard.Validate(ErrDeliveryIsNotConstructed)
}

// IsEqual compares two deliveries by identifier.
func (d *Delivery) IsEqual(other *Delivery) bool {
	return other != nil && d.id.IsEqual(other.id)
}

// ID returns the delivery's unique identifier.
func (d *Delivery) ID() kernel.UUID {
	return d.id
}

// SenderID returns the identifier of the sender who created the request.
func (d *Delivery) SenderID() kernel.UUID {
	return d.senderID
}

// PickerID returns the identifier of the accepting picker, or nil while the
// request is unaccepted.
func (d *Delivery) PickerID() *kernel.UUID {
	if d.pickerID == nil {
		return nil
	}
	idCopy := *d.pickerID
	return &idCopy
}

// Status returns the current lifecycle status.
func (d *Delivery) Status() Status {
	return d.status
}

// FromAddress returns the pickup address.
func (d *Delivery) FromAddress() string {
	return d.fromAddress
}

// ToAddress returns the dropoff address.
func (d *Delivery) ToAddress() string {
	return d.toAddress
}

// PriceCents returns the offered price in cents.
func (d *Delivery) PriceCents() int64 {
	return d.priceCents
}

// Size returns the declared parcel size class.
func (d *Delivery) Size() Size {
	return d.size
}

// WeightGrams returns the optional declared weight, nil when not set.
func (d *Delivery) WeightGrams() *int64 {
	if d.weightGrams == nil {
		return nil
	}
	w := *d.weightGrams
	return &w
}

// Notes returns the free-form instructions for the picker.
func (d *Delivery) Notes() string {
	return d.notes
}

// RequestTransition applies a status change requested by an actor.
//
// The request is checked in three stages:
//  1. the claimed actor identity must match the delivery's bindings for the
//     claimed role (the sender must be this delivery's sender; a picker must
//     be the bound picker once one is fixed)
//  2. re-requesting the current status is an idempotent no-op and succeeds
//     without side effects
//  3. the (from, to, role) edge must appear in the transition table
//
// On the pending -> accepted edge the acting picker becomes the delivery's
// picker; the binding never changes afterwards.
//
// Returns changed=false for the idempotent no-op case, changed=true when the
// status actually moved, and an *InvalidTransitionError when the request is
// denied. A denied request leaves the delivery unchanged.
func (d *Delivery) RequestTransition(actorID kernel.UUID, role Role, to Status) (bool, error) {
	if err := errors.Join(actorID.Validate(), role.Validate()); err != nil {
		return false, err
	}

	if err := d.authorizeActor(actorID, role); err != nil {
		return false, err
	}

	if to == d.status {
		return false, nil
	}

	if err := d.status.CanTransitionTo(to, role); err != nil {
		return false, err
	}

	if d.status == StatusPending && to == StatusAccepted {
		idCopy := actorID
		d.pickerID = &idCopy
	}

	d.status = to
	return true, nil
}

// Edit updates the delivery metadata. Only the sender may edit, and only
// while the request is still pending; once a picker has accepted, the terms
// they accepted are frozen.
func (d *Delivery) Edit(
	actorID kernel.UUID,
	fromAddress string,
	toAddress string,
	priceCents int64,
	size Size,
	weightGrams *int64,
	notes string,
) error {
	if err := actorID.Validate(); err != nil {
		return err
	}
	if !actorID.IsEqual(d.senderID) {
		return errs.NewValueIsInvalidErrorWithCause("actorId",
			fmt.Errorf("only the sender may edit a delivery request"))
	}
	if d.status != StatusPending {
		return errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%s delivery can no longer be edited", d.status))
	}

	if err := errors.Join(
		d.setAddresses(fromAddress, toAddress),
		d.setPrice(priceCents),
		d.setSize(size),
		d.setWeight(weightGrams),
	); err != nil {
		return err
	}
	d.notes = notes

	return nil
}

// authorizeActor checks the claimed role+id pair against the delivery's actor
// bindings. Any picker may act on an unaccepted request; once bound, only the
// bound picker may.
func (d *Delivery) authorizeActor(actorID kernel.UUID, role Role) error {
	switch role {
	case RoleSender:
		if !actorID.IsEqual(d.senderID) {
			return NewInvalidTransitionError(d.status, d.status, role)
		}
	case RolePicker:
		if d.pickerID != nil && !actorID.IsEqual(*d.pickerID) {
			return NewInvalidTransitionError(d.status, d.status, role)
		}
	case RoleUnknown:
		return NewInvalidTransitionError(d.status, d.status, role)
	}
	return nil
}

func (d *Delivery) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	d.id = id
	return nil
}

func (d *Delivery) setSenderID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("senderId", err)
	}
	d.senderID = id
	return nil
}

func (d *Delivery) setAddresses(from, to string) error {
	if strings.TrimSpace(from) == "" {
		return errs.NewValueIsRequiredError("fromAddress")
	}
	if strings.TrimSpace(to) == "" {
		return errs.NewValueIsRequiredError("toAddress")
	}
	d.fromAddress = from
	d.toAddress = to
	return nil
}

func (d *Delivery) setPrice(priceCents int64) error {
	if priceCents <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("price",
			fmt.Errorf("%d is not greater than 0", priceCents))
	}
	d.priceCents = priceCents
	return nil
}

func (d *Delivery) setSize(size Size) error {
	if err := size.Validate(); err != nil {
		return err
	}
	d.size = size
	return nil
}

func (d *Delivery) setWeight(weightGrams *int64) error {
	if weightGrams == nil {
		d.weightGrams = nil
		return nil
	}
	if *weightGrams <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("weight",
			fmt.Errorf("%d is not greater than 0", *weightGrams))
	}
	w := *weightGrams
	d.weightGrams = &w
	return nil
}
