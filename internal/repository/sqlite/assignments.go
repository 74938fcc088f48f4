package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"assetwatch/internal/domain"
)

const assignmentColumns = `id, asset_id, assigned_to, assigned_by, purpose, condition_out, condition_returned, issued_at, due_at, returned_at`

func scanAssignment(row interface{ Scan(...any) error }) (*domain.Assignment, error) {
	var (
		a                 domain.Assignment
		purpose, condRet  sql.NullString
		dueAt, returnedAt sql.NullTime
	)
	err := row.Scan(&a.ID, &a.AssetID, &a.AssignedTo, &a.AssignedBy, &purpose,
		&a.ConditionOut, &condRet, &a.IssuedAt, &dueAt, &returnedAt)
	if err != nil {
		return nil, err
	}
	a.Purpose = nullToString(purpose)
	if condRet.Valid {
		c := domain.Condition(condRet.String)
		a.ConditionReturned = &c
	}
	a.DueAt = nullToTime(dueAt)
	a.ReturnedAt = nullToTime(returnedAt)
	return &a, nil
}

// GetAssignment retrieves an assignment by ID.
func (r *Repository) GetAssignment(ctx context.Context, id int64) (*domain.Assignment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+assignmentColumns+` FROM assignments WHERE id = ?`, id)
	a, err := scanAssignment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query assignment: %w", err)
	}
	return a, nil
}

// OpenAssignment returns the open assignment for an asset, if any. The
// partial unique index guarantees there is at most one.
func (r *Repository) OpenAssignment(ctx context.Context, assetID int64) (*domain.Assignment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+assignmentColumns+` FROM assignments
		 WHERE asset_id = ? AND returned_at IS NULL`, assetID)
	a, err := scanAssignment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query open assignment: %w", err)
	}
	return a, nil
}

// ListAssignments returns assignments, newest first, optionally only
// the open ones.
func (r *Repository) ListAssignments(ctx context.Context, openOnly bool) ([]domain.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments ORDER BY issued_at DESC`
	if openOnly {
		query = `SELECT ` + assignmentColumns + ` FROM assignments
			WHERE returned_at IS NULL ORDER BY issued_at DESC`
	}

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	return collectAssignments(rows)
}

// ListOverdueAssignments returns every open assignment whose due date
// is before now.
func (r *Repository) ListOverdueAssignments(ctx context.Context, now time.Time) ([]domain.Assignment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+assignmentColumns+` FROM assignments
		 WHERE due_at IS NOT NULL AND due_at < ? AND returned_at IS NULL
		 ORDER BY due_at`, now)
	if err != nil {
		return nil, fmt.Errorf("list overdue assignments: %w", err)
	}
	defer rows.Close()

	return collectAssignments(rows)
}

func collectAssignments(rows *sql.Rows) ([]domain.Assignment, error) {
	var assignments []domain.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		assignments = append(assignments, *a)
	}
	return assignments, rows.Err()
}

// CreateAssignment opens a new assignment. The partial unique index on
// open assignments rejects a second open record for the same asset.
func (r *Repository) CreateAssignment(ctx context.Context, a *domain.Assignment) error {
	if a.ConditionOut == "" {
		a.ConditionOut = domain.ConditionGood
	}
	if a.IssuedAt.IsZero() {
		a.IssuedAt = time.Now().UTC()
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO assignments (asset_id, assigned_to, assigned_by, purpose, condition_out, issued_at, due_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.AssetID, a.AssignedTo, a.AssignedBy, stringToNull(a.Purpose),
		a.ConditionOut, a.IssuedAt, timeToNull(a.DueAt))
	if err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("assignment id: %w", err)
	}
	a.ID = id
	return nil
}

// CloseAssignment records the return of an asset.
func (r *Repository) CloseAssignment(ctx context.Context, id int64, returned time.Time, condition domain.Condition) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE assignments SET returned_at = ?, condition_returned = ?
		WHERE id = ? AND returned_at IS NULL`,
		returned, condition, id)
	if err != nil {
		return fmt.Errorf("close assignment: %w", err)
	}
	return nil
}
