package model

import "time"

// Setting is one site-wide key/value pair.
type Setting struct {
	Key         string    `json:"key"`         // settings.setting_key
	Value       string    `json:"value"`       // settings.value
	Description *string   `json:"description"` // settings.description
	UpdatedAt   time.Time `json:"updatedAt"`   // settings.updated_at
}
