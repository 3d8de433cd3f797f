package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS price_cache (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'booking_status') THEN
			CREATE TYPE booking_status AS ENUM ('RECEIVED', 'DELIVERED', 'FAILED');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS booking_request (
		reference UUID PRIMARY KEY,
		status booking_status NOT NULL DEFAULT 'RECEIVED',
		seminar_kind VARCHAR(16) NOT NULL,
		company TEXT,
		contact_name TEXT NOT NULL,
		contact_email TEXT NOT NULL,
		headcount INTEGER NOT NULL,
		days INTEGER NOT NULL,
		nights INTEGER NOT NULL,
		total_gross NUMERIC(12,2) NOT NULL,
		total_net NUMERIC(12,2) NOT NULL,
		price_origin VARCHAR(16) NOT NULL,
		archive_url TEXT,
		failure_reason TEXT,
		submitted_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		delivered_at TIMESTAMPTZ
	);`,
	`CREATE INDEX IF NOT EXISTS idx_booking_request_status ON booking_request (status);`,
	`CREATE INDEX IF NOT EXISTS idx_booking_request_submitted_at ON booking_request (submitted_at DESC);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
