package domain

import "time"

// Custodian is a person who can hold or issue assets.
type Custodian struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email,omitempty"`
	Department string    `json:"department,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Assignment records custody of an asset: who holds it, who issued it,
// since when, and when it is due back. An assignment with no ReturnedAt
// is "open"; at most one open assignment may exist per asset.
type Assignment struct {
	ID                int64      `json:"id"`
	AssetID           int64      `json:"asset_id"`
	AssignedTo        int64      `json:"assigned_to"`
	AssignedBy        int64      `json:"assigned_by"`
	Purpose           string     `json:"purpose,omitempty"`
	ConditionOut      Condition  `json:"condition_out"`
	ConditionReturned *Condition `json:"condition_returned,omitempty"`
	IssuedAt          time.Time  `json:"issued_at"`
	DueAt             *time.Time `json:"due_at,omitempty"`
	ReturnedAt        *time.Time `json:"returned_at,omitempty"`
}

// Open reports whether the assignment is still outstanding.
func (a *Assignment) Open() bool {
	return a.ReturnedAt == nil
}

// Overdue reports whether the assignment is open and past its due date.
func (a *Assignment) Overdue(now time.Time) bool {
	return a.Open() && a.DueAt != nil && a.DueAt.Before(now)
}
