package domain

import (
	"fmt"
	"net"
	"strings"
	"time"
)

// Status describes the lifecycle state of an asset.
type Status string

const (
	StatusAvailable   Status = "AVAILABLE"
	StatusAssigned    Status = "ASSIGNED"
	StatusMissing     Status = "MISSING"
	StatusMaintenance Status = "MAINTENANCE"
	StatusRetired     Status = "RETIRED"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusAssigned, StatusMissing, StatusMaintenance, StatusRetired:
		return true
	}
	return false
}

// transitions lists the legal status changes. RETIRED is terminal.
var transitions = map[Status][]Status{
	StatusAvailable:   {StatusAssigned, StatusMaintenance, StatusMissing, StatusRetired},
	StatusAssigned:    {StatusAvailable, StatusMissing},
	StatusMissing:     {StatusAvailable, StatusRetired},
	StatusMaintenance: {StatusAvailable, StatusRetired},
	StatusRetired:     {},
}

// CanTransition reports whether an asset may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Condition describes the physical condition of an asset.
type Condition string

const (
	ConditionExcellent Condition = "EXCELLENT"
	ConditionGood      Condition = "GOOD"
	ConditionFair      Condition = "FAIR"
	ConditionPoor      Condition = "POOR"
	ConditionDamaged   Condition = "DAMAGED"
)

// Asset is a tracked piece of physical equipment.
//
// MAC, when set, is stored in canonical form (uppercase, colon-separated)
// and is unique across all assets; it is the key linking the asset to
// network observations.
type Asset struct {
	ID           int64      `json:"id"`
	Tag          string     `json:"tag"`
	Name         string     `json:"name"`
	Category     string     `json:"category,omitempty"`
	SerialNumber string     `json:"serial_number,omitempty"`
	MAC          string     `json:"mac,omitempty"`
	IP           string     `json:"ip,omitempty"`
	Status       Status     `json:"status"`
	Condition    Condition  `json:"condition"`
	Location     string     `json:"location,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	LastSeen     *time.Time `json:"last_seen,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NormalizeMAC converts a hardware address to canonical form: uppercase,
// colon-separated. Accepts the colon, dash, and dot notations that
// net.ParseMAC understands.
func NormalizeMAC(s string) (string, error) {
	hw, err := net.ParseMAC(strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("invalid hardware address %q: %w", s, err)
	}
	return strings.ToUpper(hw.String()), nil
}
