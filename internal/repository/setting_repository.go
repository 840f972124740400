package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/kailashsur/filmyfly/internal/model"
)

type SettingRepo struct{ db *sql.DB }

func NewSettingRepo(db *sql.DB) *SettingRepo { return &SettingRepo{db: db} }

// Get returns the stored value and whether the key exists.
func (r *SettingRepo) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := r.db.QueryRowContext(ctx,
		"SELECT value FROM settings WHERE setting_key=? LIMIT 1", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// All returns every stored setting keyed by name.
func (r *SettingRepo) All(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT setting_key, value FROM settings ORDER BY setting_key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

func (r *SettingRepo) List(ctx context.Context) ([]model.Setting, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT setting_key, value, description, updated_at FROM settings ORDER BY setting_key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Setting
	for rows.Next() {
		var s model.Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.Description, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Upsert writes value and description for key, creating the row if needed.
func (r *SettingRepo) Upsert(ctx context.Context, key, value, description string) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	now := time.Now().UTC()
	var n int
	if err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM settings WHERE setting_key=?", key).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		_, err = tx.ExecContext(ctx,
			"UPDATE settings SET value=?, description=?, updated_at=? WHERE setting_key=?",
			value, description, now, key)
		return err
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO settings (setting_key, value, description, created_at, updated_at) VALUES (?,?,?,?,?)",
		key, value, description, now, now)
	return err
}
