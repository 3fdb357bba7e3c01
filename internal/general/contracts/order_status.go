package contracts

import "time"

// OrderStatusMessage is published when an order moves along its lifecycle.
// Routing key: "order.status.{status}" on ExchangeOrderTopic, where {status}
// is the snake_case form (e.g. "out_for_delivery").
type OrderStatusMessage struct {
	OrderID       string    `json:"order_id"`
	Status        string    `json:"status"` // Packed|Accepted|Picked Up|Out for Delivery|Delivered
	Previous      string    `json:"previous_status,omitempty"`
	RiderID       string    `json:"rider_id,omitempty"`
	EstimatedTime string    `json:"estimated_time,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	Envelope
}
