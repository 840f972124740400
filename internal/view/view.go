// Package view renders the public HTML pages from embedded templates.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templateFS embed.FS

// SettingsKey is the echo.Context key holding the site settings map.
const SettingsKey = "settings"

// Page is the data every template receives.
type Page struct {
	Title       string
	Description string
	Keywords    string
	Canonical   string
	Settings    map[string]string
	Data        any
}

// Setting returns a settings value or "".
func (p Page) Setting(key string) string { return p.Settings[key] }

// Snippet returns a settings value as trusted HTML. Only admins can edit
// settings.
func (p Page) Snippet(key string) template.HTML { return template.HTML(p.Settings[key]) }

// Pagination is shared by listing pages.
type Pagination struct {
	Page       int
	TotalPages int
	Total      int64
	BasePath   string
	Query      string
}

func (p Pagination) HasPrev() bool { return p.Page > 1 }
func (p Pagination) HasNext() bool { return p.Page < p.TotalPages }

// URL links to page n, keeping the search query.
func (p Pagination) URL(n int) string {
	q := "page=" + fmt.Sprint(n)
	if p.Query != "" {
		q = p.Query + "&" + q
	}
	return p.BasePath + "?" + q
}

var pages = []string{"home", "category", "search", "movie", "page", "info", "notfound", "error"}

var funcs = template.FuncMap{
	"derefStr": func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	},
	"derefInt": func(p *int) int {
		if p == nil {
			return 0
		}
		return *p
	},
	"add":      func(a, b int) int { return a + b },
	"subtract": func(a, b int) int { return a - b },
	"raw":      func(s string) template.HTML { return template.HTML(s) },
	"splitTags": func(s *string) []string {
		if s == nil {
			return nil
		}
		var out []string
		for _, t := range strings.Split(*s, ",") {
			if t = strings.TrimSpace(t); t != "" {
				out = append(out, t)
			}
		}
		return out
	},
}

// Renderer implements echo.Renderer.
type Renderer struct {
	tmpls map[string]*template.Template
}

// NewRenderer parses every page against the shared base layout.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{tmpls: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		t, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/base.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", page, err)
		}
		r.tmpls[page] = t
	}
	return r, nil
}

// Render executes the named page. Page data without settings picks them up
// from the request context.
func (r *Renderer) Render(w io.Writer, name string, data any, c echo.Context) error {
	t, ok := r.tmpls[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	if p, ok := data.(Page); ok {
		if p.Settings == nil && c != nil {
			p.Settings, _ = c.Get(SettingsKey).(map[string]string)
		}
		data = p
	}
	return t.ExecuteTemplate(w, "base", data)
}
