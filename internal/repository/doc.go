// Package repository defines the data access interface for assetwatch.
//
// The sqlite subpackage provides the only implementation, using SQLite
// with WAL mode. Services declare their own narrow interfaces over the
// subset of methods they consume; Repository is the union the sqlite
// implementation satisfies.
//
// Hardware addresses are normalized to uppercase colon-separated form
// before they reach this layer, and the assets table enforces their
// uniqueness with a partial index over non-null values.
package repository
