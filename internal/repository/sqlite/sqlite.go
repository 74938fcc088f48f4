// Package sqlite implements repository.Repository on SQLite using the
// pure-Go modernc driver.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Repository implements repository.Repository using SQLite.
type Repository struct {
	db *sql.DB
}

// New opens (creating if necessary) the database at path and applies
// the schema. ":memory:" yields an ephemeral database for tests.
func New(path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite allows one writer; a single pooled connection avoids
	// SQLITE_BUSY churn and keeps :memory: databases coherent.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma %q: %w", p, err)
		}
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return repo, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS custodians (
	id         INTEGER PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	email      TEXT,
	department TEXT,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS assets (
	id         INTEGER PRIMARY KEY,
	tag        TEXT NOT NULL UNIQUE,
	name       TEXT NOT NULL,
	category   TEXT,
	serial     TEXT,
	mac        TEXT,
	ip         TEXT,
	status     TEXT NOT NULL DEFAULT 'AVAILABLE'
		CHECK (status IN ('AVAILABLE', 'ASSIGNED', 'MISSING', 'MAINTENANCE', 'RETIRED')),
	condition  TEXT NOT NULL DEFAULT 'GOOD',
	location   TEXT,
	notes      TEXT,
	last_seen  DATETIME,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_assets_mac ON assets(mac) WHERE mac IS NOT NULL;

CREATE TABLE IF NOT EXISTS assignments (
	id                 INTEGER PRIMARY KEY,
	asset_id           INTEGER NOT NULL REFERENCES assets(id),
	assigned_to        INTEGER NOT NULL REFERENCES custodians(id),
	assigned_by        INTEGER NOT NULL REFERENCES custodians(id),
	purpose            TEXT,
	condition_out      TEXT NOT NULL DEFAULT 'GOOD',
	condition_returned TEXT,
	issued_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	due_at             DATETIME,
	returned_at        DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_assignments_open
	ON assignments(asset_id) WHERE returned_at IS NULL;
CREATE INDEX IF NOT EXISTS idx_assignments_due ON assignments(due_at);

CREATE TABLE IF NOT EXISTS notifications (
	id           INTEGER PRIMARY KEY,
	custodian_id INTEGER NOT NULL REFERENCES custodians(id),
	message      TEXT NOT NULL,
	severity     TEXT NOT NULL DEFAULT 'INFO' CHECK (severity IN ('INFO', 'WARNING', 'ALERT')),
	read         INTEGER NOT NULL DEFAULT 0,
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_notifications_custodian ON notifications(custodian_id);

CREATE TABLE IF NOT EXISTS audit_log (
	id          INTEGER PRIMARY KEY,
	actor       INTEGER REFERENCES custodians(id),
	action      TEXT NOT NULL,
	subject     TEXT,
	description TEXT NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

func (r *Repository) migrate() error {
	_, err := r.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}
