package model

import "time"

// Movie is a catalog entry.  Slug is unique and is the public lookup key;
// every descriptive field is optional and nil when absent.
type Movie struct {
	ID          uint64    `json:"id"`                    // movies.id
	Title       string    `json:"title"`                 // movies.title
	Slug        string    `json:"slug"`                  // movies.slug
	Description *string   `json:"description"`           // movies.description
	Thumbnail   *string   `json:"thumbnail"`             // movies.thumbnail
	Genre       *string   `json:"genre"`                 // movies.genre
	Languages   *string   `json:"languages"`             // movies.languages
	Duration    *string   `json:"duration"`              // movies.duration
	ReleaseYear *int      `json:"releaseYear"`           // movies.release_year
	Cast        *string   `json:"cast"`                  // movies.movie_cast
	Sizes       *string   `json:"sizes"`                 // movies.sizes
	DownloadURL *string   `json:"downloadUrl"`           // movies.download_url
	Screenshot  *string   `json:"screenshot"`            // movies.screenshot
	Keywords    *string   `json:"keywords"`              // movies.keywords
	CategoryID  *uint64   `json:"categoryId"`            // movies.category_id
	Category    *Category `json:"category,omitempty"`    // joined when requested
	CreatedAt   time.Time `json:"createdAt"`             // movies.created_at
	UpdatedAt   time.Time `json:"updatedAt"`             // movies.updated_at
}
