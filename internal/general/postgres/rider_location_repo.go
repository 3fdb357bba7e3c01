package postgres

import (
	"context"
	"errors"
	"time"

	"lunchbox/internal/domain/geo"
	"lunchbox/internal/ports"

	"github.com/jackc/pgx/v5"
)

// ErrLocationNotFound is returned when a rider has no recorded position.
var ErrLocationNotFound = errors.New("rider location not found")

// RiderLocationRepo keeps the last known rider position and an append-only
// history archive fed by the location consumer.
type RiderLocationRepo struct{}

// NewRiderLocationRepo constructs a new RiderLocationRepo.
func NewRiderLocationRepo() ports.RiderLocationRepository {
	return &RiderLocationRepo{}
}

// UpsertCurrent overwrites the rider's latest position.
func (repo *RiderLocationRepo) UpsertCurrent(ctx context.Context, s *geo.LocationSample) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO rider_locations (rider_id, order_id, lat, lng, dest_lat, dest_lng, distance, eta, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (rider_id) DO UPDATE SET
			order_id = EXCLUDED.order_id,
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			dest_lat = EXCLUDED.dest_lat,
			dest_lng = EXCLUDED.dest_lng,
			distance = EXCLUDED.distance,
			eta = EXCLUDED.eta,
			recorded_at = EXCLUDED.recorded_at
	`, s.RiderID, s.OrderID, s.Lat, s.Lng, s.DestLat, s.DestLng, s.Distance, s.ETA, s.RecordedAt)
	return err
}

// GetCurrent returns the rider's latest position.
func (repo *RiderLocationRepo) GetCurrent(ctx context.Context, riderID string) (*geo.LocationSample, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var s geo.LocationSample
	err = tx.QueryRow(ctx, `
		SELECT rider_id, order_id, lat, lng, dest_lat, dest_lng, distance, eta, recorded_at
		FROM rider_locations
		WHERE rider_id = $1
	`, riderID).Scan(
		&s.RiderID, &s.OrderID, &s.Lat, &s.Lng, &s.DestLat, &s.DestLng, &s.Distance, &s.ETA, &s.RecordedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLocationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Archive appends the sample to the history table.
func (repo *RiderLocationRepo) Archive(ctx context.Context, s *geo.LocationSample) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO rider_location_history (rider_id, order_id, lat, lng, dest_lat, dest_lng, distance, eta, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, s.RiderID, s.OrderID, s.Lat, s.Lng, s.DestLat, s.DestLng, s.Distance, s.ETA, s.RecordedAt)
	return err
}

// CountActiveSince counts riders with a position newer than the cutoff.
func (repo *RiderLocationRepo) CountActiveSince(ctx context.Context, since time.Time) (int, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var n int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM rider_locations WHERE recorded_at >= $1
	`, since).Scan(&n)
	return n, err
}
