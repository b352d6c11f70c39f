package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/erimojdehi/aris-driver-check/internal/model"
)

// SnapshotStore persists one RecordSet per calendar date in PostgreSQL.
// Writing a date that already exists replaces it in one transaction, so a
// rerun cleanly overwrites its own slot.
type SnapshotStore struct {
	db *sql.DB
}

// NewSnapshotStore creates a new SnapshotStore
func NewSnapshotStore(db *sql.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// Write stores the RecordSet under its date, replacing any existing snapshot
// for that date
func (s *SnapshotStore) Write(ctx context.Context, set *model.RecordSet) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	upsert := `
		INSERT INTO snapshots (snapshot_date, record_count)
		VALUES ($1, $2)
		ON CONFLICT (snapshot_date) DO UPDATE SET
			record_count = EXCLUDED.record_count,
			created_at = now()
	`
	if _, err := tx.ExecContext(ctx, upsert, set.Date, set.Len()); err != nil {
		return fmt.Errorf("failed to upsert snapshot row: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM licence_records WHERE snapshot_date = $1`, set.Date); err != nil {
		return fmt.Errorf("failed to clear snapshot records: %w", err)
	}

	insert := `
		INSERT INTO licence_records (snapshot_date, licence_number, name, classes,
		                             status, status_detail, expiry_date, medical_due, comments)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	for _, key := range set.Keys() {
		rec := set.Get(key)
		_, err := tx.ExecContext(ctx, insert,
			set.Date,
			rec.LicenceNumber,
			rec.Name,
			strings.Join(rec.Classes, ","),
			rec.Status.String(),
			rec.StatusDetail,
			nullTime(rec.ExpiryDate),
			nullTime(rec.MedicalDue),
			rec.Comments,
		)
		if err != nil {
			return fmt.Errorf("failed to insert record %s: %w", rec.LicenceNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// Read loads the RecordSet stored for a date, or nil when none exists
func (s *SnapshotStore) Read(ctx context.Context, date time.Time) (*model.RecordSet, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT record_count FROM snapshots WHERE snapshot_date = $1`, date).Scan(&count)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot row: %w", err)
	}

	query := `
		SELECT licence_number, name, classes, status, status_detail,
		       expiry_date, medical_due, comments
		FROM licence_records
		WHERE snapshot_date = $1
		ORDER BY licence_number
	`
	rows, err := s.db.QueryContext(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot records: %w", err)
	}
	defer rows.Close()

	set := model.NewRecordSet(date)
	for rows.Next() {
		var rec model.LicenceRecord
		var classes, status string
		var expiry, medical sql.NullTime
		err := rows.Scan(
			&rec.LicenceNumber,
			&rec.Name,
			&classes,
			&status,
			&rec.StatusDetail,
			&expiry,
			&medical,
			&rec.Comments,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}

		if classes != "" {
			rec.Classes = model.CanonicalClasses(strings.Split(classes, ","))
		}
		rec.Status = model.StatusFromString(status)
		rec.ExpiryDate = timePtr(expiry)
		rec.MedicalDue = timePtr(medical)

		set.Add(&rec)
	}

	return set, rows.Err()
}

// Dates returns all stored snapshot dates, newest first
func (s *SnapshotStore) Dates(ctx context.Context) ([]time.Time, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT snapshot_date FROM snapshots ORDER BY snapshot_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshot dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot date: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// Delete removes one date's snapshot and its records
func (s *SnapshotStore) Delete(ctx context.Context, date time.Time) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM snapshots WHERE snapshot_date = $1`, date); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
