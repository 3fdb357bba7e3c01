package postgres

import (
	"context"
	"errors"
	"time"

	"lunchbox/internal/domain/kid"
	"lunchbox/internal/ports"

	"github.com/jackc/pgx/v5"
)

// ErrKidNotFound is returned when a kid lookup matches no row.
var ErrKidNotFound = errors.New("kid not found")

// KidRepo persists lunch-box registrations using pgx and plain SQL.
type KidRepo struct{}

// NewKidRepo constructs a new KidRepo.
func NewKidRepo() ports.KidRepository {
	return &KidRepo{}
}

// CreateKid inserts a new kid row and fills in the generated ID.
func (repo *KidRepo) CreateKid(ctx context.Context, k *kid.Kid) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	return tx.QueryRow(ctx, `
		INSERT INTO kids_lunch_boxes
			(customer_id, name, school_name, school_address, school_lat, school_lng, parent_phone, delivery_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`,
		k.CustomerID,
		k.Name,
		k.SchoolName,
		k.SchoolAddress,
		k.SchoolLat,
		k.SchoolLng,
		k.ParentPhone,
		k.DeliveryAddress,
	).Scan(&k.ID, &k.CreatedAt, &k.UpdatedAt)
}

// GetByID returns one kid by id.
func (repo *KidRepo) GetByID(ctx context.Context, id string) (*kid.Kid, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	k, err := scanKidRow(tx.QueryRow(ctx, kidSelect+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrKidNotFound
	}
	return k, err
}

// ListByCustomer returns the customer's registered kids, newest first.
func (repo *KidRepo) ListByCustomer(ctx context.Context, customerID string) ([]*kid.Kid, error) {
	return repo.list(ctx, kidSelect+` WHERE customer_id = $1 ORDER BY created_at DESC`, customerID)
}

// ListAll returns every registration (admin view).
func (repo *KidRepo) ListAll(ctx context.Context) ([]*kid.Kid, error) {
	return repo.list(ctx, kidSelect+` ORDER BY created_at DESC`)
}

// Update rewrites the editable fields of a registration.
func (repo *KidRepo) Update(ctx context.Context, k *kid.Kid) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE kids_lunch_boxes
		SET name = $2, school_name = $3, school_address = $4,
			school_lat = $5, school_lng = $6,
			parent_phone = $7, delivery_address = $8, updated_at = $9
		WHERE id = $1
	`,
		k.ID, k.Name, k.SchoolName, k.SchoolAddress,
		k.SchoolLat, k.SchoolLng,
		k.ParentPhone, k.DeliveryAddress, time.Now().UTC(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrKidNotFound
	}
	return nil
}

func (repo *KidRepo) list(ctx context.Context, query string, args ...any) ([]*kid.Kid, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*kid.Kid
	for rows.Next() {
		k, err := scanKidRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

const kidSelect = `
	SELECT id, created_at, updated_at, customer_id, name,
		school_name, school_address, school_lat, school_lng,
		parent_phone, delivery_address
	FROM kids_lunch_boxes`

func scanKidRow(row pgx.Row) (*kid.Kid, error) {
	var out kid.Kid
	if err := row.Scan(
		&out.ID, &out.CreatedAt, &out.UpdatedAt, &out.CustomerID, &out.Name,
		&out.SchoolName, &out.SchoolAddress, &out.SchoolLat, &out.SchoolLng,
		&out.ParentPhone, &out.DeliveryAddress,
	); err != nil {
		return nil, err
	}
	return &out, nil
}
