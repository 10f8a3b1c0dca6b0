package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/minbok/shuttle-reservation/internal/model"
)

// CompanyRepo maintains tenant companies.
type CompanyRepo struct {
	db *sql.DB
}

// NewCompanyRepo returns a CompanyRepo bound to the given database.
func NewCompanyRepo(db *sql.DB) *CompanyRepo { return &CompanyRepo{db: db} }

// List returns all companies ordered by name.
func (r *CompanyRepo) List(ctx context.Context) ([]model.Company, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM companies ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.Company, 0)
	for rows.Next() {
		var c model.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// Create inserts a company; duplicate names map to ErrConflict.
func (r *CompanyRepo) Create(ctx context.Context, c *model.Company) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO companies (name) VALUES (?)`, c.Name)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
			return ErrConflict
		}
		return fmt.Errorf("insert company: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// Rename changes a company's name.
func (r *CompanyRepo) Rename(ctx context.Context, id uint64, name string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE companies SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
			return ErrConflict
		}
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM companies WHERE id = ?)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return sql.ErrNoRows
		}
	}
	return nil
}

// Delete removes a company without members; ErrConflict otherwise.
func (r *CompanyRepo) Delete(ctx context.Context, id uint64) error {
	var hasUsers bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE company_id = ?)`, id).Scan(&hasUsers); err != nil {
		return err
	}
	if hasUsers {
		return ErrConflict
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM companies WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
