package sqlite

import (
	"context"
	"fmt"

	"assetwatch/internal/domain"
)

// CreateNotification inserts a notification and fills in its ID.
func (r *Repository) CreateNotification(ctx context.Context, n *domain.Notification) error {
	if n.Severity == "" {
		n.Severity = domain.SeverityInfo
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (custodian_id, message, severity) VALUES (?, ?, ?)`,
		n.CustodianID, n.Message, n.Severity)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("notification id: %w", err)
	}
	n.ID = id
	return nil
}

// ListNotifications returns a custodian's notifications, newest first.
func (r *Repository) ListNotifications(ctx context.Context, custodianID int64, unreadOnly bool) ([]domain.Notification, error) {
	query := `SELECT id, custodian_id, message, severity, read, created_at
		FROM notifications WHERE custodian_id = ? ORDER BY created_at DESC`
	if unreadOnly {
		query = `SELECT id, custodian_id, message, severity, read, created_at
			FROM notifications WHERE custodian_id = ? AND read = 0 ORDER BY created_at DESC`
	}

	rows, err := r.db.QueryContext(ctx, query, custodianID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.CustodianID, &n.Message, &n.Severity, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkNotificationRead flips the read flag.
func (r *Repository) MarkNotificationRead(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}
