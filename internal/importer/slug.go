package importer

import (
	"regexp"
	"strings"
)

var (
	slugStrip  = regexp.MustCompile(`[^\w\s-]`)
	slugSpaces = regexp.MustCompile(`\s+`)
	slugDashes = regexp.MustCompile(`-+`)
)

// GenerateSlug derives a URL slug from a title.
func GenerateSlug(title string) string {
	s := strings.TrimSpace(strings.ToLower(title))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	return slugDashes.ReplaceAllString(s, "-")
}
