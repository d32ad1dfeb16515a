package http

import "time"

// Error is the JSON error envelope returned by every failing endpoint.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// CreateDeliveryRequest is the body of POST /api/v1/deliveries.
type CreateDeliveryRequest struct {
	SenderID    string `json:"senderId"`
	FromAddress string `json:"fromAddress"`
	ToAddress   string `json:"toAddress"`
	PriceCents  int64  `json:"priceCents"`
	Size        string `json:"size"`
	WeightGrams *int64 `json:"weightGrams,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// EditDeliveryRequest is the body of PATCH /api/v1/deliveries/:id. The edit
// replaces the full editable field set.
type EditDeliveryRequest struct {
	ActorID     string `json:"actorId"`
	FromAddress string `json:"fromAddress"`
	ToAddress   string `json:"toAddress"`
	PriceCents  int64  `json:"priceCents"`
	Size        string `json:"size"`
	WeightGrams *int64 `json:"weightGrams,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// TransitionRequest is the body of POST /api/v1/deliveries/:id/transition.
type TransitionRequest struct {
	ActorID string `json:"actorId"`
	Role    string `json:"role"`
	Target  string `json:"target"`
}

// TransitionResponse reports the delivery status after a transition request.
type TransitionResponse struct {
	Status string `json:"status"`
}

// ViewerRequest is the body of PUT /api/v1/deliveries/:id/viewer.
type ViewerRequest struct {
	Enabled bool `json:"enabled"`
}

// LocationRequest is the body of POST /api/v1/deliveries/:id/location: one
// position report from the picker's device. Seq is optional; zero lets the
// session assign the next number.
type LocationRequest struct {
	Lat        float64    `json:"lat"`
	Lng        float64    `json:"lng"`
	Seq        uint64     `json:"seq,omitempty"`
	CapturedAt *time.Time `json:"capturedAt,omitempty"`
}

// LocationResponse reports whether a sample was accepted into the stream.
// Accepted is false when the sample was dropped as stale.
type LocationResponse struct {
	Accepted bool `json:"accepted"`
}

// Delivery is the read model of one delivery record.
type Delivery struct {
	ID          string  `json:"id"`
	SenderID    string  `json:"senderId"`
	PickerID    *string `json:"pickerId,omitempty"`
	Status      string  `json:"status"`
	FromAddress string  `json:"fromAddress"`
	ToAddress   string  `json:"toAddress"`
	PriceCents  int64   `json:"priceCents"`
	Size        string  `json:"size"`
	WeightGrams *int64  `json:"weightGrams,omitempty"`
	Notes       string  `json:"notes,omitempty"`
}

// CreateDeliveryResponse returns the identifier of a newly posted delivery.
type CreateDeliveryResponse struct {
	ID string `json:"id"`
}
