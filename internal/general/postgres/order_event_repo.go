package postgres

import (
	"context"

	"lunchbox/internal/domain/order"
	"lunchbox/internal/ports"
)

// OrderEventRepo appends rows to the order audit trail.
type OrderEventRepo struct{}

// NewOrderEventRepo constructs a new OrderEventRepo.
func NewOrderEventRepo() ports.OrderEventRepository {
	return &OrderEventRepo{}
}

// Append inserts one audit event and fills in the generated ID.
func (repo *OrderEventRepo) Append(ctx context.Context, e *order.Event) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	data, err := e.DataJSON()
	if err != nil {
		return err
	}

	return tx.QueryRow(ctx, `
		INSERT INTO order_events (order_id, event_type, event_data)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, e.OrderID, e.Type.String(), data).Scan(&e.ID, &e.CreatedAt)
}
