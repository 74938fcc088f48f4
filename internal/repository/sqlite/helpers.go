package sqlite

import (
	"database/sql"
	"time"
)

// nullToString unwraps a NullString into its zero value when invalid.
func nullToString(s sql.NullString) string {
	if s.Valid {
		return s.String
	}
	return ""
}

// stringToNull wraps a string, treating empty as NULL.
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullToTime unwraps a NullTime into a *time.Time.
func nullToTime(t sql.NullTime) *time.Time {
	if t.Valid {
		v := t.Time
		return &v
	}
	return nil
}

// timeToNull wraps a *time.Time, treating nil as NULL.
func timeToNull(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// int64ToNull wraps an optional row reference.
func int64ToNull(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

// nullToInt64 unwraps a NullInt64 into a *int64.
func nullToInt64(v sql.NullInt64) *int64 {
	if v.Valid {
		n := v.Int64
		return &n
	}
	return nil
}
