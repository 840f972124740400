package repository

import (
	"context"
	"strings"

	"github.com/kailashsur/filmyfly/internal/model"
)

// MovieSearchQuery is a case-insensitive substring search over the text
// columns of movies.
type MovieSearchQuery struct {
	Term     string
	Page     int
	PageSize int
}

var searchColumns = []string{"m.title", "m.description", "m.keywords", "m.genre", "m.movie_cast", "m.slug"}

// Search returns one page of matches, newest first, and the total match count.
func (r *MovieRepo) Search(ctx context.Context, q MovieSearchQuery) ([]model.Movie, int64, error) {
	term := strings.ToLower(strings.TrimSpace(q.Term))
	if term == "" {
		return nil, 0, nil
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 20
	}

	where := make([]string, 0, len(searchColumns))
	args := make([]any, 0, len(searchColumns)+2)
	pattern := "%" + term + "%"
	for _, col := range searchColumns {
		where = append(where, "LOWER(COALESCE("+col+", '')) LIKE ?")
		args = append(args, pattern)
	}
	cond := strings.Join(where, " OR ")

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM movies m WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return nil, 0, nil
	}

	argsData := append(append([]any{}, args...), q.PageSize, (q.Page-1)*q.PageSize)
	items, err := r.queryMovies(ctx, "SELECT "+movieColumns+" FROM movies m WHERE "+cond+`
		ORDER BY m.created_at DESC, m.id DESC LIMIT ? OFFSET ?`, argsData...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
