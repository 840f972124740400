package importer

import "strings"

// csvAliases lists accepted header spellings per field, after lowercasing
// and whitespace removal.
var csvAliases = []struct {
	field   string
	headers []string
}{
	{"title", []string{"title", "name"}},
	{"slug", []string{"slug"}},
	{"description", []string{"description", "desc"}},
	{"thumbnail", []string{"thumbnail", "image"}},
	{"genre", []string{"genre", "category"}},
	{"languages", []string{"languages", "language"}},
	{"duration", []string{"duration", "runtime"}},
	{"releaseYear", []string{"releaseyear", "year", "release-year"}},
	{"cast", []string{"cast", "actors"}},
	{"sizes", []string{"sizes", "quality"}},
	{"downloadUrl", []string{"downloadurl", "url", "link"}},
	{"screenshot", []string{"screenshot", "poster"}},
	{"keywords", []string{"keywords", "tags"}},
	{"categoryId", []string{"categoryid"}},
}

// decodeCSV parses comma separated text with a header line. Values are split
// on every comma; quoted commas are not supported.
func decodeCSV(text string) []Record {
	var lines []string
	for _, l := range strings.Split(strings.TrimSpace(text), "\n") {
		l = strings.TrimSuffix(l, "\r")
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) < 2 {
		return nil
	}

	headers := splitCSVLine(lines[0])
	for i, h := range headers {
		headers[i] = normalizeHeader(h)
	}

	var out []Record
	for _, line := range lines[1:] {
		values := splitCSVLine(line)
		if len(values) != len(headers) {
			continue
		}
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			row[h] = values[i]
		}
		r := recordFromRow(row)
		if r.Title == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}

func recordFromRow(row map[string]string) Record {
	var r Record
	for _, a := range csvAliases {
		for _, h := range a.headers {
			if v := row[h]; v != "" {
				setters[a.field](&r, v)
				break
			}
		}
	}
	if r.Slug == "" && r.Title != "" {
		r.Slug = GenerateSlug(r.Title)
	}
	return r
}

func splitCSVLine(line string) []string {
	parts := strings.Split(line, ",")
	for i, p := range parts {
		parts[i] = unquote(strings.TrimSpace(p))
	}
	return parts
}

func normalizeHeader(h string) string {
	return strings.Join(strings.Fields(strings.ToLower(h)), "")
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
