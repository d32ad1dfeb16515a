package queries

import (
	"context"
	"database/sql"
	"errors"

	"parceltrack/internal/core/domain/model/delivery"
	"parceltrack/internal/core/domain/model/kernel"
	"parceltrack/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetDeliveryQueryHandler retrieves a single delivery read model. Uses a
// direct SQL query for read performance in the CQRS pattern.
type GetDeliveryQueryHandler struct {
	db *gorm.DB
}

// NewGetDeliveryQueryHandler creates a handler for single-delivery queries.
func NewGetDeliveryQueryHandler(db *gorm.DB) GetDeliveryQueryHandler {
	return GetDeliveryQueryHandler{db: db}
}

// Handle executes the query. Returns an errs.ObjectNotFoundError when the
// identifier is unknown.
func (h GetDeliveryQueryHandler) Handle(
	ctx context.Context,
	query GetDeliveryQuery,
) (DeliveryResponse, error) {
	if err := query.Validate(); err != nil {
		return DeliveryResponse{}, err
	}

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			sender_id,
			picker_id,
			status,
			from_address,
			to_address,
			price_cents,
			size,
			weight_grams,
			notes
		FROM deliveries
		WHERE id = ?
	`, query.DeliveryID().Bytes()).Row()

	response, err := scanDelivery(row)
	if errors.Is(err, sql.ErrNoRows) {
		return DeliveryResponse{}, errs.NewObjectNotFoundError("delivery", query.DeliveryID().String())
	}
	return response, err
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDelivery(row rowScanner) (DeliveryResponse, error) {
	var response DeliveryResponse
	var id uuid.UUID
	var senderID uuid.UUID
	var pickerID *uuid.UUID
	var status, size int

	err := row.Scan(
		&id,
		&senderID,
		&pickerID,
		&status,
		&response.FromAddress,
		&response.ToAddress,
		&response.PriceCents,
		&size,
		&response.WeightGrams,
		&response.Notes,
	)
	if err != nil {
		return DeliveryResponse{}, err
	}

	deliveryID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return DeliveryResponse{}, err
	}
	response.ID = deliveryID

	sender, err := kernel.UUIDFromBytes(senderID[:])
	if err != nil {
		return DeliveryResponse{}, err
	}
	response.SenderID = sender

	if pickerID != nil {
		picker, pickerErr := kernel.UUIDFromBytes((*pickerID)[:])
		if pickerErr != nil {
			return DeliveryResponse{}, pickerErr
		}
		response.PickerID = &picker
	}

	response.Status = delivery.Status(status).String()
	response.Size = delivery.Size(size).String()
	return response, nil
}
