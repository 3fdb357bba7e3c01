package service

import (
	"context"
	"encoding/json"
	"time"

	"lunchbox/internal/domain/geo"
	"lunchbox/internal/general/contracts"
	"lunchbox/internal/general/logger"
	"lunchbox/internal/general/rabbitmq"
	"lunchbox/internal/ports"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Consumers drains the broker queues in the background: location messages are
// archived to the history table, status messages are surfaced in the logs for
// operators tailing the service.
type Consumers struct {
	logger       *logger.Logger
	uow          ports.UnitOfWork
	locationRepo ports.RiderLocationRepository
	mq           *rabbitmq.Client
}

// NewConsumers wires the background consumers.
func NewConsumers(logger *logger.Logger, uow ports.UnitOfWork, locationRepo ports.RiderLocationRepository, mq *rabbitmq.Client) *Consumers {
	return &Consumers{logger: logger, uow: uow, locationRepo: locationRepo, mq: mq}
}

// Run starts both consumers and blocks until ctx is cancelled. Consume exits
// on channel loss; we retry with a small delay so reconnects are picked up.
func (c *Consumers) Run(ctx context.Context) {
	go c.consumeLoop(ctx, contracts.QueueLocationUpdates, "location-archiver", c.handleLocation)
	c.consumeLoop(ctx, contracts.QueueOrderStatus, "status-monitor", c.handleStatus)
}

func (c *Consumers) consumeLoop(ctx context.Context, queue, tag string, handler func(context.Context, amqp.Delivery) error) {
	for {
		err := c.mq.Consume(ctx, queue, tag, 16, handler)

		select {
		case <-ctx.Done():
			return
		default:
		}

		if err != nil {
			c.logger.Error(ctx, "consumer_restarting", "Queue consumer stopped, retrying", err, map[string]any{
				"queue": queue,
			})
		}
		time.Sleep(5 * time.Second)
	}
}

// handleLocation archives every fanned-out location sample.
func (c *Consumers) handleLocation(ctx context.Context, d amqp.Delivery) error {
	var msg contracts.RiderLocationMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		c.logger.Error(ctx, "location_archive_failed", "Malformed location message", err, nil)
		return err
	}

	sample := &geo.LocationSample{
		OrderID:    msg.OrderID,
		RiderID:    msg.RiderID,
		Lat:        msg.Location.Lat,
		Lng:        msg.Location.Lng,
		Distance:   msg.Distance,
		ETA:        msg.ETA,
		RecordedAt: msg.Timestamp,
	}
	if msg.Destination != nil {
		sample.DestLat = &msg.Destination.Lat
		sample.DestLng = &msg.Destination.Lng
	}
	if err := sample.Validate(); err != nil {
		c.logger.Error(ctx, "location_archive_failed", "Invalid location message", err, nil)
		return err
	}

	return c.uow.WithinTx(ctx, func(ctx context.Context) error {
		return c.locationRepo.Archive(ctx, sample)
	})
}

// handleStatus logs lifecycle messages; persistence already happened in the
// transaction that produced them.
func (c *Consumers) handleStatus(ctx context.Context, d amqp.Delivery) error {
	var msg contracts.OrderStatusMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		c.logger.Error(ctx, "status_monitor_failed", "Malformed status message", err, nil)
		return err
	}

	c.logger.Info(c.logger.WithOrderID(ctx, msg.OrderID), "order_status_observed", "Order status message consumed", map[string]any{
		"status":      msg.Status,
		"previous":    msg.Previous,
		"rider_id":    msg.RiderID,
		"routing_key": d.RoutingKey,
	})
	return nil
}
