package model

import "time"

// TrendingMovie promotes one movie to the home page trending strip.
// Order is assigned at promotion time and never compacted.
type TrendingMovie struct {
	ID        uint64    `json:"id"`              // trending_movies.id
	MovieID   uint64    `json:"movieId"`         // trending_movies.movie_id
	Order     int       `json:"order"`           // trending_movies.sort_order
	CreatedAt time.Time `json:"createdAt"`       // trending_movies.created_at
	Movie     *Movie    `json:"movie,omitempty"` // joined for display
}
