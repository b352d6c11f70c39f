package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erimojdehi/aris-driver-check/internal/model"
)

// OperatorStore handles database operations for the operator roster
type OperatorStore struct {
	db *sql.DB
}

// NewOperatorStore creates a new OperatorStore
func NewOperatorStore(db *sql.DB) *OperatorStore {
	return &OperatorStore{db: db}
}

// UpsertOperator inserts or updates one roster entry keyed by licence number
func (s *OperatorStore) UpsertOperator(ctx context.Context, op *model.Operator) error {
	query := `
		INSERT INTO operators (licence_number, operator_id, name, department_id, department_name, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (licence_number) DO UPDATE SET
			operator_id = EXCLUDED.operator_id,
			name = EXCLUDED.name,
			department_id = EXCLUDED.department_id,
			department_name = EXCLUDED.department_name,
			updated_at = now()
	`
	_, err := s.db.ExecContext(ctx, query,
		op.LicenceNumber, op.OperatorID, op.Name, op.DepartmentID, op.DepartmentName)
	if err != nil {
		return fmt.Errorf("failed to upsert operator %s: %w", op.OperatorID, err)
	}
	return nil
}

// ImportRoster replaces the stored roster with the given one and returns the
// number of entries written
func (s *OperatorStore) ImportRoster(ctx context.Context, roster *model.Roster) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM operators`); err != nil {
		return 0, fmt.Errorf("failed to clear operators: %w", err)
	}

	insert := `
		INSERT INTO operators (licence_number, operator_id, name, department_id, department_name, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
	`
	count := 0
	for _, op := range roster.Operators() {
		if _, err := tx.ExecContext(ctx, insert,
			op.LicenceNumber, op.OperatorID, op.Name, op.DepartmentID, op.DepartmentName); err != nil {
			return 0, fmt.Errorf("failed to insert operator %s: %w", op.OperatorID, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit roster import: %w", err)
	}
	return count, nil
}

// GetByLicence retrieves one operator by canonical licence number, or nil
func (s *OperatorStore) GetByLicence(ctx context.Context, licenceNumber string) (*model.Operator, error) {
	query := `
		SELECT licence_number, operator_id, name, department_id, department_name
		FROM operators
		WHERE licence_number = $1
	`
	var op model.Operator
	err := s.db.QueryRowContext(ctx, query, licenceNumber).Scan(
		&op.LicenceNumber, &op.OperatorID, &op.Name, &op.DepartmentID, &op.DepartmentName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get operator for %s: %w", licenceNumber, err)
	}
	return &op, nil
}

// GetAll retrieves all operators ordered by licence number
func (s *OperatorStore) GetAll(ctx context.Context) ([]model.Operator, error) {
	query := `
		SELECT licence_number, operator_id, name, department_id, department_name
		FROM operators
		ORDER BY licence_number
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get operators: %w", err)
	}
	defer rows.Close()

	var out []model.Operator
	for rows.Next() {
		var op model.Operator
		if err := rows.Scan(&op.LicenceNumber, &op.OperatorID, &op.Name, &op.DepartmentID, &op.DepartmentName); err != nil {
			return nil, fmt.Errorf("failed to scan operator: %w", err)
		}
		out = append(out, op)
	}
	return out, rows.Err()
}

// CountOperators returns the roster size
func (s *OperatorStore) CountOperators(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM operators`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count operators: %w", err)
	}
	return count, nil
}

// Departments returns per-department operator counts, largest first
func (s *OperatorStore) Departments(ctx context.Context) ([]model.Department, error) {
	query := `
		SELECT department_id, department_name, COUNT(*) AS operator_count
		FROM operators
		GROUP BY department_id, department_name
		ORDER BY operator_count DESC, department_id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get departments: %w", err)
	}
	defer rows.Close()

	var out []model.Department
	for rows.Next() {
		var d model.Department
		if err := rows.Scan(&d.DepartmentID, &d.DepartmentName, &d.OperatorCount); err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
