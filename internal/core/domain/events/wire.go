package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Frame type discriminators for the live stream wire format.
const (
	FrameTypeStatus              = "status"
	FrameTypeLocation            = "location"
	FrameTypeTrackingUnavailable = "tracking_unavailable"
)

// statusFrame is the wire shape of a status event:
//
//	{ "type": "status", "deliveryId": <id>, "status": <enum>, "actorId": <id> }
type statusFrame struct {
	Type       string `json:"type"`
	DeliveryID string `json:"deliveryId"`
	Status     string `json:"status"`
	ActorID    string `json:"actorId"`
}

// locationFrame is the wire shape of a location event:
//
//	{ "type": "location", "deliveryId": <id>, "lat": <f64>, "lng": <f64>,
//	  "seq": <u64>, "capturedAt": <iso8601> }
type locationFrame struct {
	Type       string  `json:"type"`
	DeliveryID string  `json:"deliveryId"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	Seq        uint64  `json:"seq"`
	CapturedAt string  `json:"capturedAt"`
}

type trackingUnavailableFrame struct {
	Type       string `json:"type"`
	DeliveryID string `json:"deliveryId"`
	Since      string `json:"since"`
}

// MarshalFrame encodes an event as a JSON stream frame. The frame format is
// transport-agnostic: the same bytes go over the event stream endpoint, the
// session transport, and the broker publisher.
func MarshalFrame(event Event) ([]byte, error) {
	switch e := event.(type) {
	case StatusChanged:
		return json.Marshal(statusFrame{
			Type:       FrameTypeStatus,
			DeliveryID: e.DeliveryID.String(),
			Status:     e.To.String(),
			ActorID:    e.ActorID.String(),
		})
	case LocationSample:
		return json.Marshal(locationFrame{
			Type:       FrameTypeLocation,
			DeliveryID: e.DeliveryID.String(),
			Lat:        e.Coords.Lat(),
			Lng:        e.Coords.Lng(),
			Seq:        e.Seq,
			CapturedAt: e.CapturedAt.UTC().Format(time.RFC3339Nano),
		})
	case TrackingUnavailable:
		return json.Marshal(trackingUnavailableFrame{
			Type:       FrameTypeTrackingUnavailable,
			DeliveryID: e.DeliveryID.String(),
			Since:      e.Since.UTC().Format(time.RFC3339Nano),
		})
	default:
		return nil, fmt.Errorf("unsupported event type %T", event)
	}
}
