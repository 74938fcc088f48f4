package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"assetwatch/internal/domain"
)

const assetColumns = `id, tag, name, category, serial, mac, ip, status, condition, location, notes, last_seen, created_at, updated_at`

func scanAsset(row interface{ Scan(...any) error }) (*domain.Asset, error) {
	var (
		a                                     domain.Asset
		category, serial, mac, ip, loc, notes sql.NullString
		lastSeen                              sql.NullTime
	)
	err := row.Scan(&a.ID, &a.Tag, &a.Name, &category, &serial, &mac, &ip,
		&a.Status, &a.Condition, &loc, &notes, &lastSeen, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Category = nullToString(category)
	a.SerialNumber = nullToString(serial)
	a.MAC = nullToString(mac)
	a.IP = nullToString(ip)
	a.Location = nullToString(loc)
	a.Notes = nullToString(notes)
	a.LastSeen = nullToTime(lastSeen)
	return &a, nil
}

func (r *Repository) getAssetWhere(ctx context.Context, where string, arg any) (*domain.Asset, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE `+where, arg)
	asset, err := scanAsset(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query asset: %w", err)
	}
	return asset, nil
}

// GetAsset retrieves an asset by ID.
func (r *Repository) GetAsset(ctx context.Context, id int64) (*domain.Asset, error) {
	return r.getAssetWhere(ctx, "id = ?", id)
}

// GetAssetByTag retrieves an asset by its unique tag.
func (r *Repository) GetAssetByTag(ctx context.Context, tag string) (*domain.Asset, error) {
	return r.getAssetWhere(ctx, "tag = ?", tag)
}

// GetAssetByMAC retrieves an asset by hardware address. Stored values
// are canonical uppercase; the NOCASE collation covers lookups with
// addresses that arrive in other casings.
func (r *Repository) GetAssetByMAC(ctx context.Context, mac string) (*domain.Asset, error) {
	return r.getAssetWhere(ctx, "mac = ? COLLATE NOCASE", mac)
}

// ListAssets returns all assets, optionally filtered by status.
func (r *Repository) ListAssets(ctx context.Context, status domain.Status) ([]domain.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets ORDER BY tag`
	args := []any{}
	if status != "" {
		query = `SELECT ` + assetColumns + ` FROM assets WHERE status = ? ORDER BY tag`
		args = append(args, status)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var assets []domain.Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		assets = append(assets, *asset)
	}
	return assets, rows.Err()
}

// CreateAsset inserts a new asset and fills in its generated ID and
// timestamps. The hardware address must already be normalized.
func (r *Repository) CreateAsset(ctx context.Context, asset *domain.Asset) error {
	if asset.Status == "" {
		asset.Status = domain.StatusAvailable
	}
	if asset.Condition == "" {
		asset.Condition = domain.ConditionGood
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO assets (tag, name, category, serial, mac, ip, status, condition, location, notes, last_seen)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		asset.Tag, asset.Name, stringToNull(asset.Category), stringToNull(asset.SerialNumber),
		stringToNull(asset.MAC), stringToNull(asset.IP), asset.Status, asset.Condition,
		stringToNull(asset.Location), stringToNull(asset.Notes), timeToNull(asset.LastSeen))
	if err != nil {
		return fmt.Errorf("create asset: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("asset id: %w", err)
	}

	created, err := r.GetAsset(ctx, id)
	if err != nil {
		return err
	}
	*asset = *created
	return nil
}

// UpdateAsset rewrites all mutable asset fields.
func (r *Repository) UpdateAsset(ctx context.Context, asset *domain.Asset) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE assets
		SET tag = ?, name = ?, category = ?, serial = ?, mac = ?, ip = ?,
			status = ?, condition = ?, location = ?, notes = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		asset.Tag, asset.Name, stringToNull(asset.Category), stringToNull(asset.SerialNumber),
		stringToNull(asset.MAC), stringToNull(asset.IP), asset.Status, asset.Condition,
		stringToNull(asset.Location), stringToNull(asset.Notes), asset.ID)
	if err != nil {
		return fmt.Errorf("update asset: %w", err)
	}
	return nil
}

// RecordSighting refreshes the network observation fields of an asset
// without touching its status, a single-row last-write-wins update.
func (r *Repository) RecordSighting(ctx context.Context, id int64, ip string, seen time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE assets SET ip = ?, last_seen = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		ip, seen, id)
	if err != nil {
		return fmt.Errorf("record sighting: %w", err)
	}
	return nil
}

// UpdateAssetStatus sets the status and, when non-empty, the location.
func (r *Repository) UpdateAssetStatus(ctx context.Context, id int64, status domain.Status, location string) error {
	var err error
	if location != "" {
		_, err = r.db.ExecContext(ctx, `
			UPDATE assets SET status = ?, location = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ?`, status, location, id)
	} else {
		_, err = r.db.ExecContext(ctx, `
			UPDATE assets SET status = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ?`, status, id)
	}
	if err != nil {
		return fmt.Errorf("update asset status: %w", err)
	}
	return nil
}
