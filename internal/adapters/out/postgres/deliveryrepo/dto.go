// Package deliveryrepo provides data transfer objects and mapping functions
// for delivery persistence. It implements the repository pattern for the
// delivery aggregate, converting between domain entities and database rows.
package deliveryrepo

import (
	"parceltrack/internal/core/domain/model/delivery"
	"parceltrack/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// DeliveryDTO represents the database structure for persisting delivery
// aggregates, indexed for lookup by sender, picker, and status.
type DeliveryDTO struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	SenderID    uuid.UUID  `gorm:"type:uuid;index"`
	PickerID    *uuid.UUID `gorm:"type:uuid;index"`
	Status      int        `gorm:"index"`
	FromAddress string
	ToAddress   string
	PriceCents  int64
	Size        int
	WeightGrams *int64
	Notes       string
}

// TableName overrides GORM's default naming convention to use "deliveries".
func (DeliveryDTO) TableName() string {
	return "deliveries"
}

// fromDomain converts a delivery aggregate to its database representation.
func fromDomain(aggregate *delivery.Delivery) DeliveryDTO {
	var pickerID *uuid.UUID
	if id := aggregate.PickerID(); id != nil {
		raw := id.Bytes()
		pickerID = &raw
	}

	return DeliveryDTO{
		ID:          aggregate.ID().Bytes(),
		SenderID:    aggregate.SenderID().Bytes(),
		PickerID:    pickerID,
		Status:      int(aggregate.Status()),
		FromAddress: aggregate.FromAddress(),
		ToAddress:   aggregate.ToAddress(),
		PriceCents:  aggregate.PriceCents(),
		Size:        int(aggregate.Size()),
		WeightGrams: aggregate.WeightGrams(),
		Notes:       aggregate.Notes(),
	}
}

// toDomain reconstructs the aggregate from a database row using
// RestoreDelivery, which re-checks the status and picker consistency.
func toDomain(dto DeliveryDTO) (*delivery.Delivery, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	senderID, err := kernel.UUIDFromBytes(dto.SenderID[:])
	if err != nil {
		return nil, err
	}

	var pickerID *kernel.UUID
	if dto.PickerID != nil {
		pID, pickerErr := kernel.UUIDFromBytes((*dto.PickerID)[:])
		if pickerErr != nil {
			return nil, pickerErr
		}

		pickerID = &pID
	}

	return delivery.RestoreDelivery(
		id,
		senderID,
		pickerID,
		delivery.Status(dto.Status),
		dto.FromAddress,
		dto.ToAddress,
		dto.PriceCents,
		delivery.Size(dto.Size),
		dto.WeightGrams,
		dto.Notes,
	)
}
