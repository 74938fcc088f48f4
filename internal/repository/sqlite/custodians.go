package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"assetwatch/internal/domain"
)

// GetCustodian retrieves a custodian by ID.
func (r *Repository) GetCustodian(ctx context.Context, id int64) (*domain.Custodian, error) {
	var (
		c                 domain.Custodian
		email, department sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, department, created_at FROM custodians WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &email, &department, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query custodian: %w", err)
	}
	c.Email = nullToString(email)
	c.Department = nullToString(department)
	return &c, nil
}

// ListCustodians returns all custodians ordered by name.
func (r *Repository) ListCustodians(ctx context.Context) ([]domain.Custodian, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, email, department, created_at FROM custodians ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list custodians: %w", err)
	}
	defer rows.Close()

	var custodians []domain.Custodian
	for rows.Next() {
		var (
			c                 domain.Custodian
			email, department sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Name, &email, &department, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan custodian: %w", err)
		}
		c.Email = nullToString(email)
		c.Department = nullToString(department)
		custodians = append(custodians, c)
	}
	return custodians, rows.Err()
}

// CreateCustodian inserts a new custodian and fills in its ID.
func (r *Repository) CreateCustodian(ctx context.Context, c *domain.Custodian) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO custodians (name, email, department) VALUES (?, ?, ?)`,
		c.Name, stringToNull(c.Email), stringToNull(c.Department))
	if err != nil {
		return fmt.Errorf("create custodian: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("custodian id: %w", err)
	}

	created, err := r.GetCustodian(ctx, id)
	if err != nil {
		return err
	}
	*c = *created
	return nil
}
