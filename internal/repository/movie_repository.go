package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/kailashsur/filmyfly/internal/model"
)

const movieColumns = `m.id, m.title, m.slug, m.description, m.thumbnail, m.genre, m.languages,
	m.duration, m.release_year, m.movie_cast, m.sizes, m.download_url, m.screenshot,
	m.keywords, m.category_id, m.created_at, m.updated_at`

// MovieRepo provides CRUD and listing for the movies table.
type MovieRepo struct{ db *sql.DB }

func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{db: db} }

func scanMovie(s rowScanner) (model.Movie, error) {
	var m model.Movie
	err := s.Scan(&m.ID, &m.Title, &m.Slug, &m.Description, &m.Thumbnail, &m.Genre,
		&m.Languages, &m.Duration, &m.ReleaseYear, &m.Cast, &m.Sizes, &m.DownloadURL,
		&m.Screenshot, &m.Keywords, &m.CategoryID, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func (r *MovieRepo) queryMovies(ctx context.Context, q string, args ...any) ([]model.Movie, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Create inserts m and fills in its ID and timestamps.  A taken slug yields
// ErrSlugExists, including when a concurrent insert wins the race.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `INSERT INTO movies
		(title, slug, description, thumbnail, genre, languages, duration, release_year,
		 movie_cast, sizes, download_url, screenshot, keywords, category_id, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		m.Title, m.Slug, m.Description, m.Thumbnail, m.Genre, m.Languages, m.Duration,
		m.ReleaseYear, m.Cast, m.Sizes, m.DownloadURL, m.Screenshot, m.Keywords, m.CategoryID,
		now, now)
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
	m.ID = uint64(id)
	m.CreatedAt, m.UpdatedAt = now, now
	return nil
}

// Update overwrites every editable column of the movie with m.ID.
func (r *MovieRepo) Update(ctx context.Context, m *model.Movie) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `UPDATE movies SET
		title=?, slug=?, description=?, thumbnail=?, genre=?, languages=?, duration=?,
		release_year=?, movie_cast=?, sizes=?, download_url=?, screenshot=?, keywords=?,
		category_id=?, updated_at=?
		WHERE id=?`,
		m.Title, m.Slug, m.Description, m.Thumbnail, m.Genre, m.Languages, m.Duration,
		m.ReleaseYear, m.Cast, m.Sizes, m.DownloadURL, m.Screenshot, m.Keywords, m.CategoryID,
		now, m.ID)
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
		return ErrMovieNotFound
	}
	m.UpdatedAt = now
	return nil
}

// Delete removes the movie and its trending entry in one transaction.
func (r *MovieRepo) Delete(ctx context.Context, id uint64) (err error) {
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

	if _, err = tx.ExecContext(ctx, "DELETE FROM trending_movies WHERE movie_id=?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM movies WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMovieNotFound
	}
	return nil
}

func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (model.Movie, error) {
	m, err := scanMovie(r.db.QueryRowContext(ctx,
		"SELECT "+movieColumns+" FROM movies m WHERE m.id=? LIMIT 1", id))
	return m, notFound(err, ErrMovieNotFound)
}

// GetBySlug loads a movie together with its category, if any.
func (r *MovieRepo) GetBySlug(ctx context.Context, slug string) (model.Movie, error) {
	m, err := scanMovie(r.db.QueryRowContext(ctx,
		"SELECT "+movieColumns+" FROM movies m WHERE m.slug=? LIMIT 1", slug))
	if err != nil {
		return m, notFound(err, ErrMovieNotFound)
	}
	if m.CategoryID != nil {
		var c model.Category
		err := r.db.QueryRowContext(ctx,
			"SELECT id, name, slug, created_at, updated_at FROM categories WHERE id=?", *m.CategoryID).
			Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt, &c.UpdatedAt)
		switch {
		case err == nil:
			m.Category = &c
		case err != sql.ErrNoRows:
			return m, err
		}
	}
	return m, nil
}

// SlugExists reports whether another movie than excludeID uses slug.
// Pass excludeID 0 when creating.
func (r *MovieRepo) SlugExists(ctx context.Context, slug string, excludeID uint64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM movies WHERE slug=? AND id<>?", slug, excludeID).Scan(&n)
	return n > 0, err
}

func (r *MovieRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM movies").Scan(&n)
	return n, err
}

// ListRecent returns one page of movies, newest first.
func (r *MovieRepo) ListRecent(ctx context.Context, limit, offset int) ([]model.Movie, error) {
	return r.queryMovies(ctx, "SELECT "+movieColumns+` FROM movies m
		ORDER BY m.created_at DESC, m.id DESC LIMIT ? OFFSET ?`, limit, offset)
}

func (r *MovieRepo) CountByCategory(ctx context.Context, categoryID uint64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM movies WHERE category_id=?", categoryID).Scan(&n)
	return n, err
}

func (r *MovieRepo) ListByCategory(ctx context.Context, categoryID uint64, limit, offset int) ([]model.Movie, error) {
	return r.queryMovies(ctx, "SELECT "+movieColumns+` FROM movies m
		WHERE m.category_id=?
		ORDER BY m.created_at DESC, m.id DESC LIMIT ? OFFSET ?`, categoryID, limit, offset)
}

// ListRelated returns the most recent movies other than excludeID.
func (r *MovieRepo) ListRelated(ctx context.Context, excludeID uint64, limit int) ([]model.Movie, error) {
	return r.queryMovies(ctx, "SELECT "+movieColumns+` FROM movies m
		WHERE m.id<>?
		ORDER BY m.created_at DESC, m.id DESC LIMIT ?`, excludeID, limit)
}

// ListForSitemap returns every movie, most recently updated first.
func (r *MovieRepo) ListForSitemap(ctx context.Context) ([]model.Movie, error) {
	return r.queryMovies(ctx, "SELECT "+movieColumns+` FROM movies m
		ORDER BY m.updated_at DESC, m.id DESC`)
}
