package domain

import "time"

// Severity is the level of a notification.
type Severity string

const (
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARNING"
	SeverityAlert   Severity = "ALERT"
)

// Notification is an in-app message addressed to one custodian.
// Creation is append-only from this system's core; the read flag is
// mutated by whoever presents notifications to users.
type Notification struct {
	ID          int64     `json:"id"`
	CustodianID int64     `json:"custodian_id"`
	Message     string    `json:"message"`
	Severity    Severity  `json:"severity"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}
