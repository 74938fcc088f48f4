package domain

import "time"

// AuditAction classifies an audit trail entry.
type AuditAction string

const (
	AuditActionCreate AuditAction = "CREATE"
	AuditActionUpdate AuditAction = "UPDATE"
	AuditActionIssue  AuditAction = "ISSUE"
	AuditActionReturn AuditAction = "RETURN"
	AuditActionScan   AuditAction = "SCAN"
	AuditActionNotify AuditAction = "NOTIFY"
	AuditActionError  AuditAction = "ERROR"
)

// AuditEntry is one append-only record in the audit trail. Actor is the
// custodian who caused the entry, when known; system jobs leave it nil.
type AuditEntry struct {
	ID          int64       `json:"id"`
	Actor       *int64      `json:"actor,omitempty"`
	Action      AuditAction `json:"action"`
	Subject     string      `json:"subject,omitempty"`
	Description string      `json:"description"`
	CreatedAt   time.Time   `json:"created_at"`
}
