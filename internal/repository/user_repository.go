package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/minbok/shuttle-reservation/internal/model"
)

// UserRepo maintains the rider/administrator directory.  Identity and
// sessions live in the external provider; this table only carries the
// profile, role, company membership and approval flag.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo returns a UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// GetByID loads one user.  sql.ErrNoRows passes through.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	const q = `SELECT id, email, full_name, phone_number, role, company_id, is_approved, created_at
	           FROM users WHERE id = ?`
	var u model.User
	var email, fullName, phone sql.NullString
	var companyID sql.NullInt64
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&u.ID, &email, &fullName, &phone, &u.Role, &companyID, &u.IsApproved, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	if email.Valid {
		v := email.String
		u.Email = &v
	}
	if fullName.Valid {
		v := fullName.String
		u.FullName = &v
	}
	if phone.Valid {
		v := phone.String
		u.PhoneNumber = &v
	}
	if companyID.Valid {
		v := uint64(companyID.Int64)
		u.CompanyID = &v
	}
	return &u, nil
}

// Upsert creates the directory row on first sight of a subject and
// refreshes the profile fields on later calls.  Role and approval are
// never touched here; those change only through admin endpoints.
func (r *UserRepo) Upsert(ctx context.Context, id uint64, email, fullName, phone *string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, full_name, phone_number)
		 VALUES (?, ?, ?, ?)
		 ON DUPLICATE KEY UPDATE
		     email = COALESCE(VALUES(email), email),
		     full_name = COALESCE(VALUES(full_name), full_name),
		     phone_number = COALESCE(VALUES(phone_number), phone_number)`,
		id, email, fullName, phone,
	)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// List returns users, optionally filtered to one company or to
// unapproved accounts only.  Ordered oldest first so pending approvals
// surface in arrival order.
func (r *UserRepo) List(ctx context.Context, companyID *uint64, pendingOnly bool) ([]model.User, error) {
	q := `SELECT id, email, full_name, phone_number, role, company_id, is_approved, created_at
	      FROM users WHERE 1 = 1`
	args := make([]interface{}, 0, 2)
	if companyID != nil {
		q += ` AND company_id = ?`
		args = append(args, *companyID)
	}
	if pendingOnly {
		q += ` AND is_approved = 0`
	}
	q += ` ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		var email, fullName, phone sql.NullString
		var cid sql.NullInt64
		if err := rows.Scan(&u.ID, &email, &fullName, &phone, &u.Role, &cid, &u.IsApproved, &u.CreatedAt); err != nil {
			return nil, err
		}
		if email.Valid {
			v := email.String
			u.Email = &v
		}
		if fullName.Valid {
			v := fullName.String
			u.FullName = &v
		}
		if phone.Valid {
			v := phone.String
			u.PhoneNumber = &v
		}
		if cid.Valid {
			v := uint64(cid.Int64)
			u.CompanyID = &v
		}
		items = append(items, u)
	}
	return items, rows.Err()
}

// Approve marks an account as allowed to book.
func (r *UserRepo) Approve(ctx context.Context, id uint64) error {
	return r.setFlagOrNotFound(ctx,
		`UPDATE users SET is_approved = 1 WHERE id = ?`, id)
}

// SetRole changes an account's role.  The caller validates the value
// against the model.Role* constants.
func (r *UserRepo) SetRole(ctx context.Context, id uint64, role string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET role = ? WHERE id = ?`, role, id)
	if err != nil {
		return err
	}
	return r.checkTouched(ctx, result, id)
}

// SetCompany assigns (or clears) company membership.
func (r *UserRepo) SetCompany(ctx context.Context, id uint64, companyID *uint64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET company_id = ? WHERE id = ?`, companyID, id)
	if err != nil {
		return err
	}
	return r.checkTouched(ctx, result, id)
}

func (r *UserRepo) setFlagOrNotFound(ctx context.Context, q string, id uint64) error {
	result, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	return r.checkTouched(ctx, result, id)
}

func (r *UserRepo) checkTouched(ctx context.Context, result sql.Result, id uint64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return sql.ErrNoRows
		}
	}
	return nil
}
