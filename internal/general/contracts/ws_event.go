package contracts

import "time"

// WSClientMessage is the envelope for every inbound frame after auth:
// { "type":"join_order", "data":{...} }
type WSClientMessage struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

// WSLocationUpdate mirrors "location_update" sent to room subscribers.
type WSLocationUpdate struct {
	Type        string    `json:"type"` // "location_update"
	OrderID     string    `json:"order_id"`
	Location    GeoPoint  `json:"location"`
	Destination *GeoPoint `json:"destination,omitempty"`
	Distance    string    `json:"distance,omitempty"`
	ETA         string    `json:"eta,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Envelope
}

// WSStatusUpdate mirrors "status_update" sent to room subscribers.
type WSStatusUpdate struct {
	Type          string      `json:"type"` // "status_update"
	OrderID       string      `json:"order_id"`
	Status        string      `json:"status"`
	Previous      string      `json:"previous_status,omitempty"`
	EstimatedTime string      `json:"estimated_time,omitempty"`
	RiderInfo     *RiderBrief `json:"rider_info,omitempty"`
	Timestamp     time.Time   `json:"timestamp"`
	Envelope
}

// WSAck confirms a client action, e.g. {"type":"join_order_ack","order_id":"..."}.
type WSAck struct {
	Type    string `json:"type"`
	OrderID string `json:"order_id,omitempty"`
	Status  string `json:"status,omitempty"`
}

// WSError is sent when an inbound frame is rejected.
type WSError struct {
	Type    string `json:"type"` // "error"
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}
