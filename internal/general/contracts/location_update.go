package contracts

import "time"

// RiderLocationMessage is broadcast while a rider is moving with an order.
// Exchange: ExchangeLocationFanout (fanout, no routing key).
type RiderLocationMessage struct {
	RiderID     string    `json:"rider_id"`
	OrderID     string    `json:"order_id"`
	Location    GeoPoint  `json:"location"`
	Destination *GeoPoint `json:"destination,omitempty"`
	Distance    string    `json:"distance,omitempty"` // e.g. "0.8 km"
	ETA         string    `json:"eta,omitempty"`      // e.g. "4 mins"
	Timestamp   time.Time `json:"timestamp"`
	Envelope
}
