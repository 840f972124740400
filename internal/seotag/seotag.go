// Package seotag builds the long comma-separated keyword tag shown on movie
// pages.
package seotag

import (
	"strconv"
	"strings"
)

const defaultLabel = "Bollywood Hindi Movie"

// labelRules are matched in order against the lowercased category name.
var labelRules = []struct {
	needle string
	label  string
}{
	{"hollywood", "Hollywood Hindi Movie"},
	{"south", "South Hindi Dubbed Movie"},
	{"animation", "Animation Movie"},
	{"k-drama", "K-Drama Hindi Dubbed"},
	{"punjabi", "Punjabi Movie"},
}

var suffixes = []string{
	"Filmy4wap",
	"",
	"filmy4wap.xyz",
	"480p Download",
	"720p Download",
	"HEVC Download",
	"Filmy4wep",
	"filmywap",
	"400mb",
	"Full Movie Download",
	"filmy4wap.com.de",
	"filmy4wap.Pro",
	"filmy4wap.xy",
	"Filmy4wap.in",
	"1filmy4wap.in",
}

var trailing = []string{"filmy4wap.xyz", "filmy4wap.com.de"}

// Label picks the audience label for a category name.
func Label(categoryName string, dualAudio bool) string {
	name := strings.ToLower(categoryName)
	label := defaultLabel
	for _, r := range labelRules {
		if strings.Contains(name, r.needle) {
			label = r.label
			break
		}
	}
	if dualAudio && label == "Hollywood Hindi Movie" {
		return "Hollywood Movie"
	}
	return label
}

// IsDualAudio reports whether languages name both English and Hindi.
func IsDualAudio(languages string) bool {
	l := strings.ToLower(languages)
	return strings.Contains(l, "english") && strings.Contains(l, "hindi")
}

// LongTag returns the keyword tag for a movie. releaseYear may be nil.
func LongTag(title string, releaseYear *int, categoryName, languages string) string {
	base := title
	if releaseYear != nil {
		base += " " + strconv.Itoa(*releaseYear)
	}
	dual := IsDualAudio(languages)
	label := Label(categoryName, dual)

	parts := make([]string, 0, len(suffixes)+len(trailing)+1)
	for _, s := range suffixes {
		tag := base + " " + label + " HD ESub"
		if s != "" {
			tag += " " + s
		}
		parts = append(parts, tag)
	}
	if dual {
		parts = append(parts, base+" Hindi English Dual Audio "+label+" HD ESub")
	}
	parts = append(parts, trailing...)
	return strings.Join(parts, ",")
}
