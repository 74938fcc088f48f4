package repository

import (
	"context"
	"time"

	"assetwatch/internal/domain"
)

// Repository defines data access for the asset registry, custody
// records, notifications, and the audit trail. Lookups return nil, nil
// when no row matches.
type Repository interface {
	// Assets
	GetAsset(ctx context.Context, id int64) (*domain.Asset, error)
	GetAssetByTag(ctx context.Context, tag string) (*domain.Asset, error)
	// GetAssetByMAC matches case-insensitively; the stored address is
	// canonical (uppercase, colon-separated).
	GetAssetByMAC(ctx context.Context, mac string) (*domain.Asset, error)
	ListAssets(ctx context.Context, status domain.Status) ([]domain.Asset, error)
	CreateAsset(ctx context.Context, asset *domain.Asset) error
	UpdateAsset(ctx context.Context, asset *domain.Asset) error
	// RecordSighting refreshes the network observation fields only.
	RecordSighting(ctx context.Context, id int64, ip string, seen time.Time) error
	UpdateAssetStatus(ctx context.Context, id int64, status domain.Status, location string) error

	// Custodians
	GetCustodian(ctx context.Context, id int64) (*domain.Custodian, error)
	ListCustodians(ctx context.Context) ([]domain.Custodian, error)
	CreateCustodian(ctx context.Context, c *domain.Custodian) error

	// Assignments
	GetAssignment(ctx context.Context, id int64) (*domain.Assignment, error)
	OpenAssignment(ctx context.Context, assetID int64) (*domain.Assignment, error)
	ListAssignments(ctx context.Context, openOnly bool) ([]domain.Assignment, error)
	ListOverdueAssignments(ctx context.Context, now time.Time) ([]domain.Assignment, error)
	CreateAssignment(ctx context.Context, a *domain.Assignment) error
	CloseAssignment(ctx context.Context, id int64, returned time.Time, condition domain.Condition) error

	// Notifications
	CreateNotification(ctx context.Context, n *domain.Notification) error
	ListNotifications(ctx context.Context, custodianID int64, unreadOnly bool) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, id int64) error

	// Audit trail (append-only)
	AppendAudit(ctx context.Context, e *domain.AuditEntry) error
	ListAudit(ctx context.Context, limit int) ([]domain.AuditEntry, error)

	Close() error
}
