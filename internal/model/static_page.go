package model

import "time"

// StaticPage is an admin-authored informational page served at /site-{slug}
// while published.
type StaticPage struct {
	ID              uint64    `json:"id"`              // static_pages.id
	Title           string    `json:"title"`           // static_pages.title
	Slug            string    `json:"slug"`            // static_pages.slug
	Content         string    `json:"content"`         // static_pages.content
	MetaTitle       *string   `json:"metaTitle"`       // static_pages.meta_title
	MetaDescription *string   `json:"metaDescription"` // static_pages.meta_description
	MetaKeywords    *string   `json:"metaKeywords"`    // static_pages.meta_keywords
	IsPublished     bool      `json:"isPublished"`     // static_pages.is_published
	CreatedAt       time.Time `json:"createdAt"`       // static_pages.created_at
	UpdatedAt       time.Time `json:"updatedAt"`       // static_pages.updated_at
}
