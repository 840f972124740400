package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/kailashsur/filmyfly/internal/model"
	"github.com/kailashsur/filmyfly/internal/utils"
)

const adminColumns = "id, email, password_hash, role, is_active, created_at, updated_at"

// AdminUserRepo stores back-office accounts.
type AdminUserRepo struct{ db *sql.DB }

func NewAdminUserRepo(db *sql.DB) *AdminUserRepo { return &AdminUserRepo{db: db} }

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// Create hashes password with the given bcrypt cost and inserts an ADMIN
// account, returning its ID.
func (r *AdminUserRepo) Create(ctx context.Context, email, password string, cost int) (uint64, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO admin_users (email, password_hash, role, is_active, created_at, updated_at) VALUES (?,?,?,?,?,?)",
		normalizeEmail(email), hash, model.RoleAdmin, true, now, now)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// SetPassword replaces the password hash of the account with email.
func (r *AdminUserRepo) SetPassword(ctx context.Context, email, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE admin_users SET password_hash=?, updated_at=? WHERE email=?",
		hash, time.Now().UTC(), normalizeEmail(email))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func scanAdmin(s rowScanner) (model.AdminUser, error) {
	var u model.AdminUser
	err := s.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, notFound(err, ErrUserNotFound)
}

func (r *AdminUserRepo) GetByEmail(ctx context.Context, email string) (model.AdminUser, error) {
	return scanAdmin(r.db.QueryRowContext(ctx,
		"SELECT "+adminColumns+" FROM admin_users WHERE email=? LIMIT 1", normalizeEmail(email)))
}

func (r *AdminUserRepo) GetByID(ctx context.Context, id uint64) (model.AdminUser, error) {
	return scanAdmin(r.db.QueryRowContext(ctx,
		"SELECT "+adminColumns+" FROM admin_users WHERE id=? LIMIT 1", id))
}
