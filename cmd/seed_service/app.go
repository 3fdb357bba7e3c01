package seedservice

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"lunchbox/internal/general/config"
	"lunchbox/internal/general/logger"
	"lunchbox/internal/general/postgres"
)

// Fixed demo IDs so the token utility and manual testing have stable subjects.
const (
	demoCustomerID = "550e8400-e29b-41d4-a716-446655440001"
	demoRiderID    = "550e8400-e29b-41d4-a716-446655440002"
	demoRider2ID   = "550e8400-e29b-41d4-a716-446655440003"
	demoAdminID    = "550e8400-e29b-41d4-a716-446655440004"
	demoKidID      = "660e8400-e29b-41d4-a716-446655440001"
	demoKid2ID     = "660e8400-e29b-41d4-a716-446655440002"

	demoPassword = "password123"
)

var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,

	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		name          TEXT NOT NULL,
		email         TEXT NOT NULL UNIQUE,
		role          TEXT NOT NULL CHECK (role IN ('CUSTOMER', 'RIDER', 'ADMIN')),
		phone         TEXT,
		address       TEXT,
		avatar        TEXT,
		password_hash TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS kids_lunch_boxes (
		id               UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		customer_id      UUID NOT NULL REFERENCES users(id),
		name             TEXT NOT NULL,
		school_name      TEXT NOT NULL,
		school_address   TEXT NOT NULL,
		school_lat       DOUBLE PRECISION,
		school_lng       DOUBLE PRECISION,
		parent_phone     TEXT NOT NULL,
		delivery_address TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS leaves (
		id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		kid_id     UUID NOT NULL REFERENCES kids_lunch_boxes(id),
		leave_date DATE NOT NULL,
		UNIQUE (kid_id, leave_date)
	)`,

	`CREATE TABLE IF NOT EXISTS orders (
		id                  UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
		customer_id         UUID NOT NULL REFERENCES users(id),
		kid_id              UUID NOT NULL REFERENCES kids_lunch_boxes(id),
		rider_id            UUID REFERENCES users(id),
		order_date          DATE NOT NULL,
		status              TEXT NOT NULL DEFAULT 'Packed'
			CHECK (status IN ('Packed', 'Accepted', 'Picked Up', 'Out for Delivery', 'Delivered')),
		accepted_at         TIMESTAMPTZ,
		picked_up_at        TIMESTAMPTZ,
		out_for_delivery_at TIMESTAMPTZ,
		delivered_at        TIMESTAMPTZ,
		estimated_time      TEXT,
		UNIQUE (kid_id, order_date)
	)`,

	`CREATE TABLE IF NOT EXISTS order_events (
		id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		order_id   UUID NOT NULL REFERENCES orders(id),
		event_type TEXT NOT NULL,
		event_data JSONB
	)`,

	`CREATE TABLE IF NOT EXISTS rider_locations (
		rider_id    UUID PRIMARY KEY REFERENCES users(id),
		order_id    UUID,
		lat         DOUBLE PRECISION NOT NULL,
		lng         DOUBLE PRECISION NOT NULL,
		dest_lat    DOUBLE PRECISION,
		dest_lng    DOUBLE PRECISION,
		distance    TEXT,
		eta         TEXT,
		recorded_at TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS rider_location_history (
		id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		rider_id    UUID NOT NULL,
		order_id    UUID,
		lat         DOUBLE PRECISION NOT NULL,
		lng         DOUBLE PRECISION NOT NULL,
		dest_lat    DOUBLE PRECISION,
		dest_lng    DOUBLE PRECISION,
		distance    TEXT,
		eta         TEXT,
		recorded_at TIMESTAMPTZ NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_orders_date ON orders (order_date)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_rider ON orders (rider_id)`,
	`CREATE INDEX IF NOT EXISTS idx_order_events_order ON order_events (order_id)`,
	`CREATE INDEX IF NOT EXISTS idx_location_history_rider ON rider_location_history (rider_id, recorded_at)`,
}

// Run creates the schema and inserts demo accounts, kids and one order for
// today. Re-running is safe: all statements are idempotent.
func Run(ctx context.Context) error {
	logger := logger.New("lunchbox-seed")
	ctx = logger.WithRequestID(ctx, "seed-001")

	cfg, err := config.LoadFromFile("config/config.yaml")
	if err != nil {
		logger.Error(ctx, "config_load_failed", "Failed to load configuration", err, nil)
		return err
	}

	pool, err := postgres.NewPool(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "db_connection_failed", "Failed to initialize Postgres pool", err, nil)
		return err
	}
	defer pool.Close()

	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			logger.Error(ctx, "schema_failed", "Failed to apply schema statement", err, nil)
			return err
		}
	}
	logger.Info(ctx, "schema_ready", "Schema created or already present", nil)

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	users := []struct {
		id, name, email, role, phone, address string
	}{
		{demoCustomerID, "Aziza Karimova", "aziza@example.com", "CUSTOMER", "+998901112233", "Chilonzor 5, Tashkent"},
		{demoRiderID, "Bek Tursunov", "bek@example.com", "RIDER", "+998901234567", ""},
		{demoRider2ID, "Diyor Rahimov", "diyor@example.com", "RIDER", "+998909876543", ""},
		{demoAdminID, "Dispatch Admin", "admin@example.com", "ADMIN", "", ""},
	}
	for _, u := range users {
		_, err := pool.Exec(ctx, `
			INSERT INTO users (id, name, email, role, phone, address, password_hash)
			VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7)
			ON CONFLICT (email) DO NOTHING
		`, u.id, u.name, u.email, u.role, u.phone, u.address, string(hash))
		if err != nil {
			logger.Error(ctx, "seed_user_failed", "Failed to insert demo user", err, map[string]any{"email": u.email})
			return err
		}
	}

	kids := []struct {
		id, customerID, name, school, schoolAddr string
		lat, lng                                 float64
		phone, delivery                          string
	}{
		{demoKidID, demoCustomerID, "Timur", "School 21", "Mustaqillik 12, Tashkent",
			41.3111, 69.2797, "+998901112233", "Chilonzor 5, Tashkent"},
		{demoKid2ID, demoCustomerID, "Lola", "School 50", "Amir Temur 7, Tashkent",
			41.3265, 69.2285, "+998901112233", "Chilonzor 5, Tashkent"},
	}
	for _, k := range kids {
		_, err := pool.Exec(ctx, `
			INSERT INTO kids_lunch_boxes
				(id, customer_id, name, school_name, school_address, school_lat, school_lng, parent_phone, delivery_address)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (id) DO NOTHING
		`, k.id, k.customerID, k.name, k.school, k.schoolAddr, k.lat, k.lng, k.phone, k.delivery)
		if err != nil {
			logger.Error(ctx, "seed_kid_failed", "Failed to insert demo kid", err, map[string]any{"kid": k.name})
			return err
		}
	}

	today := time.Now().UTC().Format("2006-01-02")
	_, err = pool.Exec(ctx, `
		INSERT INTO orders (customer_id, kid_id, order_date, status)
		VALUES ($1, $2, $3::date, 'Packed')
		ON CONFLICT (kid_id, order_date) DO NOTHING
	`, demoCustomerID, demoKidID, today)
	if err != nil {
		logger.Error(ctx, "seed_order_failed", "Failed to insert demo order", err, nil)
		return err
	}

	logger.Info(ctx, "seed_complete", "Demo data inserted", map[string]any{
		"customer": "aziza@example.com",
		"riders":   []string{"bek@example.com", "diyor@example.com"},
		"admin":    "admin@example.com",
		"password": demoPassword,
	})
	return nil
}
