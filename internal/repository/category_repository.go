package repository

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/kailashsur/filmyfly/internal/model"
)

type CategoryRepo struct{ db *sql.DB }

func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) scanAll(ctx context.Context, q string, withCount bool, args ...any) ([]model.Category, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Category
	for rows.Next() {
		var c model.Category
		dest := []any{&c.ID, &c.Name, &c.Slug, &c.CreatedAt, &c.UpdatedAt}
		if withCount {
			dest = append(dest, &c.MovieCount)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// List returns all categories ordered by name.
func (r *CategoryRepo) List(ctx context.Context) ([]model.Category, error) {
	return r.scanAll(ctx, `SELECT id, name, slug, created_at, updated_at
		FROM categories ORDER BY name ASC`, false)
}

// ListWithCounts is List plus the number of movies in each category.
func (r *CategoryRepo) ListWithCounts(ctx context.Context) ([]model.Category, error) {
	return r.scanAll(ctx, `SELECT c.id, c.name, c.slug, c.created_at, c.updated_at, COUNT(m.id)
		FROM categories c
		LEFT JOIN movies m ON m.category_id = c.id
		GROUP BY c.id, c.name, c.slug, c.created_at, c.updated_at
		ORDER BY c.name ASC`, true)
}

func (r *CategoryRepo) GetByID(ctx context.Context, id uint64) (model.Category, error) {
	var c model.Category
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, slug, created_at, updated_at FROM categories WHERE id=? LIMIT 1", id).
		Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt, &c.UpdatedAt)
	return c, notFound(err, ErrCategoryNotFound)
}

func (r *CategoryRepo) GetBySlug(ctx context.Context, slug string) (model.Category, error) {
	var c model.Category
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, slug, created_at, updated_at FROM categories WHERE slug=? LIMIT 1", slug).
		Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt, &c.UpdatedAt)
	return c, notFound(err, ErrCategoryNotFound)
}

// Find resolves a category path parameter: a numeric id first, then a slug.
func (r *CategoryRepo) Find(ctx context.Context, idOrSlug string) (model.Category, error) {
	if id, err := strconv.ParseUint(idOrSlug, 10, 64); err == nil {
		c, err := r.GetByID(ctx, id)
		if err != ErrCategoryNotFound {
			return c, err
		}
	}
	return r.GetBySlug(ctx, idOrSlug)
}

// Upsert creates the category or renames the existing one with the same
// slug.  It reports whether a row was created.
func (r *CategoryRepo) Upsert(ctx context.Context, name, slug string) (bool, error) {
	now := time.Now().UTC()
	existing, err := r.GetBySlug(ctx, slug)
	switch err {
	case nil:
		_, err = r.db.ExecContext(ctx,
			"UPDATE categories SET name=?, updated_at=? WHERE id=?", name, now, existing.ID)
		return false, err
	case ErrCategoryNotFound:
		_, err = r.db.ExecContext(ctx,
			"INSERT INTO categories (name, slug, created_at, updated_at) VALUES (?,?,?,?)",
			name, slug, now, now)
		return err == nil, err
	default:
		return false, err
	}
}

func (r *CategoryRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories").Scan(&n)
	return n, err
}
