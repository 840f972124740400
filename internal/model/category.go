package model

import "time"

// Category groups movies.  MovieCount is only filled by listings that
// aggregate it.
type Category struct {
	ID         uint64    `json:"id"`                   // categories.id
	Name       string    `json:"name"`                 // categories.name
	Slug       string    `json:"slug"`                 // categories.slug
	MovieCount int       `json:"movieCount,omitempty"` // COUNT(movies.id)
	CreatedAt  time.Time `json:"createdAt"`            // categories.created_at
	UpdatedAt  time.Time `json:"updatedAt"`            // categories.updated_at
}
