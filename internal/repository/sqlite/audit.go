package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"assetwatch/internal/domain"
)

// AppendAudit inserts an audit trail entry. The table is append-only;
// nothing in this package updates or deletes from it.
func (r *Repository) AppendAudit(ctx context.Context, e *domain.AuditEntry) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_log (actor, action, subject, description) VALUES (?, ?, ?, ?)`,
		int64ToNull(e.Actor), e.Action, stringToNull(e.Subject), e.Description)
	if err != nil {
		return fmt.Errorf("append audit: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("audit id: %w", err)
	}
	e.ID = id
	return nil
}

// ListAudit returns the most recent audit entries, newest first.
func (r *Repository) ListAudit(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, actor, action, subject, description, created_at
		 FROM audit_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit: %w", err)
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var (
			e       domain.AuditEntry
			actor   sql.NullInt64
			subject sql.NullString
		)
		if err := rows.Scan(&e.ID, &actor, &e.Action, &subject, &e.Description, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.Actor = nullToInt64(actor)
		e.Subject = nullToString(subject)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
