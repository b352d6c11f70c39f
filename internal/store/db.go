package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// NewDB opens and verifies a PostgreSQL connection
func NewDB(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// schema holds the DDL for all tables; idempotent so every start can run it
var schema = []string{
	`CREATE TABLE IF NOT EXISTS snapshots (
		snapshot_date DATE PRIMARY KEY,
		record_count  INTEGER NOT NULL DEFAULT 0,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS licence_records (
		snapshot_date  DATE NOT NULL REFERENCES snapshots(snapshot_date) ON DELETE CASCADE,
		licence_number TEXT NOT NULL,
		name           TEXT NOT NULL DEFAULT '',
		classes        TEXT NOT NULL DEFAULT '',
		status         TEXT NOT NULL,
		status_detail  TEXT NOT NULL DEFAULT '',
		expiry_date    DATE,
		medical_due    DATE,
		comments       TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (snapshot_date, licence_number)
	)`,
	`CREATE TABLE IF NOT EXISTS operators (
		licence_number  TEXT PRIMARY KEY,
		operator_id     TEXT NOT NULL,
		name            TEXT NOT NULL,
		department_id   TEXT NOT NULL DEFAULT '',
		department_name TEXT NOT NULL DEFAULT '',
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS runs (
		id               UUID PRIMARY KEY,
		run_date         DATE NOT NULL,
		total_parsed     INTEGER NOT NULL,
		unlicensed       INTEGER NOT NULL,
		added            INTEGER NOT NULL,
		removed          INTEGER NOT NULL,
		status_changed   INTEGER NOT NULL,
		class_changed    INTEGER NOT NULL,
		comments_changed INTEGER NOT NULL,
		urgent_expiry    INTEGER NOT NULL,
		medical_due      INTEGER NOT NULL,
		parse_errors     INTEGER NOT NULL,
		baseline         BOOLEAN NOT NULL,
		report_sent      BOOLEAN NOT NULL,
		upload_prepared  BOOLEAN NOT NULL,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// Migrate creates any missing tables
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, ddl := range schema {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
