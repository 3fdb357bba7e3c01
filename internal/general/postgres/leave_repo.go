package postgres

import (
	"context"

	"lunchbox/internal/domain/leave"
	"lunchbox/internal/ports"
)

// LeaveRepo persists skip days using pgx and plain SQL.
type LeaveRepo struct{}

// NewLeaveRepo constructs a new LeaveRepo.
func NewLeaveRepo() ports.LeaveRepository {
	return &LeaveRepo{}
}

// CreateLeave inserts a leave row and fills in the generated ID.
func (repo *LeaveRepo) CreateLeave(ctx context.Context, l *leave.Leave) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	return tx.QueryRow(ctx, `
		INSERT INTO leaves (kid_id, leave_date)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, l.KidID, l.LeaveDate).Scan(&l.ID, &l.CreatedAt)
}

// ListByDate returns leaves for a single day with kid names attached.
func (repo *LeaveRepo) ListByDate(ctx context.Context, date string) ([]ports.LeaveRow, error) {
	return repo.list(ctx, leaveSelect+` WHERE l.leave_date = $1 ORDER BY l.created_at DESC`, date)
}

// ListAll returns every leave, newest first.
func (repo *LeaveRepo) ListAll(ctx context.Context) ([]ports.LeaveRow, error) {
	return repo.list(ctx, leaveSelect+` ORDER BY l.created_at DESC`)
}

// ExistsFor reports whether the kid already has a leave on the date.
func (repo *LeaveRepo) ExistsFor(ctx context.Context, kidID, date string) (bool, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return false, err
	}

	var exists bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM leaves WHERE kid_id = $1 AND leave_date = $2)
	`, kidID, date).Scan(&exists)
	return exists, err
}

func (repo *LeaveRepo) list(ctx context.Context, query string, args ...any) ([]ports.LeaveRow, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ports.LeaveRow
	for rows.Next() {
		var r ports.LeaveRow
		if err := rows.Scan(&r.ID, &r.KidID, &r.KidName, &r.LeaveDate, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const leaveSelect = `
	SELECT l.id, l.kid_id, k.name AS kid_name, to_char(l.leave_date, 'YYYY-MM-DD'), l.created_at
	FROM leaves l
	JOIN kids_lunch_boxes k ON k.id = l.kid_id`
