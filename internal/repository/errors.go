// Package repository holds the SQL data access layer of the content store.
// Sentinel errors let handlers tell missing rows and unique-key conflicts
// apart from infrastructure failures.
package repository

import (
	"database/sql"
	"errors"
	"strings"
)

var (
	ErrMovieNotFound    = errors.New("movie not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrPageNotFound     = errors.New("page not found")
	ErrUserNotFound     = errors.New("user not found")

	// ErrSlugExists is returned when a movie or page slug is already taken.
	ErrSlugExists = errors.New("slug already exists")
	// ErrAlreadyTrending is returned when promoting a movie that is trending.
	ErrAlreadyTrending = errors.New("movie is already in trending")
	ErrEmailExists     = errors.New("email already exists")
)

// isDuplicate reports a unique constraint violation on MySQL (1062) or
// SQLite.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "1062") || strings.Contains(msg, "UNIQUE constraint failed")
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func notFound(err, sentinel error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel
	}
	return err
}
