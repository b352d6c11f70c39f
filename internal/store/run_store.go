package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erimojdehi/aris-driver-check/internal/model"
)

// RunStore persists one summary row per completed daily check
type RunStore struct {
	db *sql.DB
}

// NewRunStore creates a new RunStore
func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db}
}

// Record inserts a run summary
func (s *RunStore) Record(ctx context.Context, run *model.RunSummary) error {
	query := `
		INSERT INTO runs (id, run_date, total_parsed, unlicensed, added, removed,
		                  status_changed, class_changed, comments_changed,
		                  urgent_expiry, medical_due, parse_errors,
		                  baseline, report_sent, upload_prepared, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := s.db.ExecContext(ctx, query,
		run.ID,
		run.RunDate,
		run.TotalParsed,
		run.Unlicensed,
		run.Added,
		run.Removed,
		run.StatusChanged,
		run.ClassChanged,
		run.CommentsChanged,
		run.UrgentExpiry,
		run.MedicalDue,
		run.ParseErrors,
		run.Baseline,
		run.ReportSent,
		run.UploadPrepared,
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", run.RunDate.Format("2006-01-02"), err)
	}
	return nil
}

const runColumns = `id, run_date, total_parsed, unlicensed, added, removed,
	status_changed, class_changed, comments_changed,
	urgent_expiry, medical_due, parse_errors,
	baseline, report_sent, upload_prepared, created_at`

// GetRecent retrieves the most recent runs, newest first
func (s *RunStore) GetRecent(ctx context.Context, limit int) ([]model.RunSummary, error) {
	if limit <= 0 {
		limit = 30
	}
	query := fmt.Sprintf(`SELECT %s FROM runs ORDER BY created_at DESC LIMIT $1`, runColumns)

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get runs: %w", err)
	}
	defer rows.Close()

	var out []model.RunSummary
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *run)
	}
	return out, rows.Err()
}

// GetLatestForDate retrieves the most recent run for one date, or nil
func (s *RunStore) GetLatestForDate(ctx context.Context, date time.Time) (*model.RunSummary, error) {
	query := fmt.Sprintf(`SELECT %s FROM runs WHERE run_date = $1 ORDER BY created_at DESC LIMIT 1`, runColumns)

	row := s.db.QueryRowContext(ctx, query, date)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*model.RunSummary, error) {
	var run model.RunSummary
	err := row.Scan(
		&run.ID,
		&run.RunDate,
		&run.TotalParsed,
		&run.Unlicensed,
		&run.Added,
		&run.Removed,
		&run.StatusChanged,
		&run.ClassChanged,
		&run.CommentsChanged,
		&run.UrgentExpiry,
		&run.MedicalDue,
		&run.ParseErrors,
		&run.Baseline,
		&run.ReportSent,
		&run.UploadPrepared,
		&run.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	return &run, nil
}
