package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/kailashsur/filmyfly/internal/model"
)

const pageColumns = `id, title, slug, content, meta_title, meta_description, meta_keywords,
	is_published, created_at, updated_at`

type StaticPageRepo struct{ db *sql.DB }

func NewStaticPageRepo(db *sql.DB) *StaticPageRepo { return &StaticPageRepo{db: db} }

func scanPage(s rowScanner) (model.StaticPage, error) {
	var p model.StaticPage
	err := s.Scan(&p.ID, &p.Title, &p.Slug, &p.Content, &p.MetaTitle, &p.MetaDescription,
		&p.MetaKeywords, &p.IsPublished, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *StaticPageRepo) list(ctx context.Context, q string, args ...any) ([]model.StaticPage, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.StaticPage
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *StaticPageRepo) Create(ctx context.Context, p *model.StaticPage) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `INSERT INTO static_pages
		(title, slug, content, meta_title, meta_description, meta_keywords, is_published, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		p.Title, p.Slug, p.Content, p.MetaTitle, p.MetaDescription, p.MetaKeywords, p.IsPublished, now, now)
	if err != nil {
		if isDuplicate(err) {
			return ErrSlugExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	p.CreatedAt, p.UpdatedAt = now, now
	return nil
}

func (r *StaticPageRepo) Update(ctx context.Context, p *model.StaticPage) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `UPDATE static_pages SET
		title=?, slug=?, content=?, meta_title=?, meta_description=?, meta_keywords=?,
		is_published=?, updated_at=?
		WHERE id=?`,
		p.Title, p.Slug, p.Content, p.MetaTitle, p.MetaDescription, p.MetaKeywords, p.IsPublished, now, p.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrSlugExists
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPageNotFound
	}
	p.UpdatedAt = now
	return nil
}

func (r *StaticPageRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM static_pages WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPageNotFound
	}
	return nil
}

func (r *StaticPageRepo) GetByID(ctx context.Context, id uint64) (model.StaticPage, error) {
	p, err := scanPage(r.db.QueryRowContext(ctx,
		"SELECT "+pageColumns+" FROM static_pages WHERE id=? LIMIT 1", id))
	return p, notFound(err, ErrPageNotFound)
}

// GetPublishedBySlug hides unpublished pages behind ErrPageNotFound.
func (r *StaticPageRepo) GetPublishedBySlug(ctx context.Context, slug string) (model.StaticPage, error) {
	p, err := scanPage(r.db.QueryRowContext(ctx,
		"SELECT "+pageColumns+" FROM static_pages WHERE slug=? AND is_published=? LIMIT 1", slug, true))
	return p, notFound(err, ErrPageNotFound)
}

func (r *StaticPageRepo) SlugExists(ctx context.Context, slug string, excludeID uint64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM static_pages WHERE slug=? AND id<>?", slug, excludeID).Scan(&n)
	return n > 0, err
}

// List returns every page, newest first.
func (r *StaticPageRepo) List(ctx context.Context) ([]model.StaticPage, error) {
	return r.list(ctx, "SELECT "+pageColumns+" FROM static_pages ORDER BY created_at DESC, id DESC")
}

// ListPublished returns published pages ordered by slug.
func (r *StaticPageRepo) ListPublished(ctx context.Context) ([]model.StaticPage, error) {
	return r.list(ctx, "SELECT "+pageColumns+" FROM static_pages WHERE is_published=? ORDER BY slug ASC", true)
}

func (r *StaticPageRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM static_pages").Scan(&n)
	return n, err
}
