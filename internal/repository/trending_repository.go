package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/kailashsur/filmyfly/internal/model"
)

type TrendingRepo struct{ db *sql.DB }

func NewTrendingRepo(db *sql.DB) *TrendingRepo { return &TrendingRepo{db: db} }

// Add appends movieID to the trending list with order max+1 (0 for the
// first entry).  Callers check that the movie exists.
func (r *TrendingRepo) Add(ctx context.Context, movieID uint64) (t model.TrendingMovie, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return t, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	var n int
	if err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM trending_movies WHERE movie_id=?", movieID).Scan(&n); err != nil {
		return t, err
	}
	if n > 0 {
		return t, ErrAlreadyTrending
	}

	var maxOrder sql.NullInt64
	if err = tx.QueryRowContext(ctx, "SELECT MAX(sort_order) FROM trending_movies").Scan(&maxOrder); err != nil {
		return t, err
	}
	order := 0
	if maxOrder.Valid {
		order = int(maxOrder.Int64) + 1
	}

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		"INSERT INTO trending_movies (movie_id, sort_order, created_at) VALUES (?,?,?)",
		movieID, order, now)
	if err != nil {
		if isDuplicate(err) {
			return t, ErrAlreadyTrending
		}
		return t, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return t, err
	}
	return model.TrendingMovie{ID: uint64(id), MovieID: movieID, Order: order, CreatedAt: now}, nil
}

// Remove deletes the trending entry of movieID and reports whether one
// existed.  Other entries keep their order.
func (r *TrendingRepo) Remove(ctx context.Context, movieID uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM trending_movies WHERE movie_id=?", movieID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *TrendingRepo) IsTrending(ctx context.Context, movieID uint64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM trending_movies WHERE movie_id=?", movieID).Scan(&n)
	return n > 0, err
}

// List returns trending entries in display order with their movies.
func (r *TrendingRepo) List(ctx context.Context) ([]model.TrendingMovie, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT t.id, t.movie_id, t.sort_order, t.created_at, `+movieColumns+`
		FROM trending_movies t
		JOIN movies m ON m.id = t.movie_id
		ORDER BY t.sort_order ASC, t.id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TrendingMovie
	for rows.Next() {
		var t model.TrendingMovie
		var m model.Movie
		if err := rows.Scan(&t.ID, &t.MovieID, &t.Order, &t.CreatedAt,
			&m.ID, &m.Title, &m.Slug, &m.Description, &m.Thumbnail, &m.Genre,
			&m.Languages, &m.Duration, &m.ReleaseYear, &m.Cast, &m.Sizes, &m.DownloadURL,
			&m.Screenshot, &m.Keywords, &m.CategoryID, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		t.Movie = &m
		out = append(out, t)
	}
	return out, rows.Err()
}

// MovieIDs returns the set of trending movie ids.
func (r *TrendingRepo) MovieIDs(ctx context.Context) (map[uint64]bool, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT movie_id FROM trending_movies")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[uint64]bool{}
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

func (r *TrendingRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM trending_movies").Scan(&n)
	return n, err
}
