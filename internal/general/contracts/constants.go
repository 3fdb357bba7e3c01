package contracts

// Exchanges
const (
	ExchangeOrderTopic     = "order_topic"
	ExchangeLocationFanout = "location_fanout"
)

// Queues
const (
	QueueOrderStatus     = "order_status"
	QueueLocationUpdates = "location_updates"
)

// Routing patterns
const (
	RouteOrderStatusPrefix = "order.status." // {status}
)
