package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lunchbox/internal/domain/order"
	"lunchbox/internal/ports"

	"github.com/jackc/pgx/v5"
)

// OrderRepo persists orders using pgx and plain SQL.
type OrderRepo struct{}

// NewOrderRepo constructs a new OrderRepo.
func NewOrderRepo() ports.OrderRepository {
	return &OrderRepo{}
}

// CreateOrder inserts a new order row and fills in the generated ID.
func (repo *OrderRepo) CreateOrder(ctx context.Context, o *order.Order) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	return tx.QueryRow(ctx, `
		INSERT INTO orders (customer_id, kid_id, order_date, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`,
		o.CustomerID,
		o.KidID,
		o.OrderDate,
		o.Status.String(),
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
}

// GetByID returns the bare order entity (no joins), for state transitions.
func (repo *OrderRepo) GetByID(ctx context.Context, id string) (*order.Order, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var (
		out        order.Order
		statusText string
	)
	err = tx.QueryRow(ctx, `
		SELECT id, created_at, updated_at, customer_id, kid_id, rider_id,
			to_char(order_date, 'YYYY-MM-DD'), status,
			accepted_at, picked_up_at, out_for_delivery_at, delivered_at, estimated_time
		FROM orders
		WHERE id = $1
	`, id).Scan(
		&out.ID, &out.CreatedAt, &out.UpdatedAt, &out.CustomerID, &out.KidID, &out.RiderID,
		&out.OrderDate, &statusText,
		&out.AcceptedAt, &out.PickedUpAt, &out.OutForDeliveryAt, &out.DeliveredAt, &out.EstimatedTime,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, order.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	out.Status = order.Status(statusText)
	return &out, nil
}

// GetViewByID returns the joined read model for one order.
func (repo *OrderRepo) GetViewByID(ctx context.Context, id string) (*ports.OrderView, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	v, err := scanOrderView(tx.QueryRow(ctx, orderViewSelect+` WHERE o.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, order.ErrNotFound
	}
	return v, err
}

// ListViews returns joined rows filtered by the query's viewer and date.
//
// Riders see their assigned orders plus any unassigned Packed order whose kid
// is not on leave that day; customers see their own; admins see everything.
func (repo *OrderRepo) ListViews(ctx context.Context, q ports.OrderListQuery) ([]ports.OrderView, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := orderViewSelect + ` WHERE 1=1`
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.Date != "" {
		query += ` AND o.order_date = ` + arg(q.Date) + `::date`
	}
	switch {
	case q.CustomerID != "":
		query += ` AND o.customer_id = ` + arg(q.CustomerID)
	case q.RiderID != "":
		query += ` AND (o.rider_id = ` + arg(q.RiderID) + `
			OR (o.rider_id IS NULL AND o.status = 'Packed'
				AND NOT EXISTS (
					SELECT 1 FROM leaves lv
					WHERE lv.kid_id = o.kid_id AND lv.leave_date = o.order_date
				)))`
	}
	query += ` ORDER BY o.created_at DESC`

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ports.OrderView
	for rows.Next() {
		v, err := scanOrderView(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

// UpdateStatus persists the order's current lifecycle fields after a transition.
func (repo *OrderRepo) UpdateStatus(ctx context.Context, o *order.Order) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE orders
		SET status = $2, rider_id = $3,
			accepted_at = $4, picked_up_at = $5, out_for_delivery_at = $6, delivered_at = $7,
			estimated_time = $8, updated_at = $9
		WHERE id = $1
	`,
		o.ID, o.Status.String(), o.RiderID,
		o.AcceptedAt, o.PickedUpAt, o.OutForDeliveryAt, o.DeliveredAt,
		o.EstimatedTime, o.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// AssignRider binds a rider to a still-Packed order (admin override).
func (repo *OrderRepo) AssignRider(ctx context.Context, orderID, riderID string, assignedAt time.Time) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE orders
		SET rider_id = $2, updated_at = $3
		WHERE id = $1
	`, orderID, riderID, assignedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// ExistsFor reports whether the kid already has an order on the date.
func (repo *OrderRepo) ExistsFor(ctx context.Context, kidID, date string) (bool, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return false, err
	}

	var exists bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM orders WHERE kid_id = $1 AND order_date = $2::date)
	`, kidID, date).Scan(&exists)
	return exists, err
}

// CountByStatusOn counts the day's orders currently in the given status.
func (repo *OrderRepo) CountByStatusOn(ctx context.Context, date string, status order.Status) (int, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var n int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM orders WHERE order_date = $1::date AND status = $2
	`, date, status.String()).Scan(&n)
	return n, err
}

// CountCreatedOn counts orders placed for the given day.
func (repo *OrderRepo) CountCreatedOn(ctx context.Context, date string) (int, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var n int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM orders WHERE order_date = $1::date
	`, date).Scan(&n)
	return n, err
}

const orderViewSelect = `
	SELECT o.id, o.customer_id, o.kid_id, o.rider_id,
		to_char(o.order_date, 'YYYY-MM-DD'), o.status, o.estimated_time,
		c.name AS customer_name,
		k.name AS kid_name, k.school_name, k.school_address,
		COALESCE(k.school_lat, 0), COALESCE(k.school_lng, 0), k.delivery_address,
		r.name AS rider_name, r.phone AS rider_phone, r.avatar AS rider_avatar,
		EXISTS (
			SELECT 1 FROM leaves lv
			WHERE lv.kid_id = o.kid_id AND lv.leave_date = o.order_date
		) AS is_on_leave,
		o.created_at, o.updated_at
	FROM orders o
	JOIN users c ON c.id = o.customer_id
	JOIN kids_lunch_boxes k ON k.id = o.kid_id
	LEFT JOIN users r ON r.id = o.rider_id`

func scanOrderView(row pgx.Row) (*ports.OrderView, error) {
	var v ports.OrderView
	if err := row.Scan(
		&v.ID, &v.CustomerID, &v.KidID, &v.RiderID,
		&v.OrderDate, &v.Status, &v.EstimatedTime,
		&v.CustomerName,
		&v.KidName, &v.SchoolName, &v.SchoolAddress,
		&v.SchoolLat, &v.SchoolLng, &v.DeliveryAddress,
		&v.RiderName, &v.RiderPhone, &v.RiderAvatar,
		&v.IsOnLeave,
		&v.CreatedAt, &v.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &v, nil
}
