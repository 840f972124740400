// Package sitemap renders sitemap.xml and robots.txt and regenerates the
// sitemap in the background when content changes.
package sitemap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kailashsur/filmyfly/internal/model"
)

// Logger is satisfied by *applog.Logger.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type SiteURLSource interface {
	SiteURL(ctx context.Context) (string, error)
}

type PageLister interface {
	ListPublished(ctx context.Context) ([]model.StaticPage, error)
}

type CategoryLister interface {
	List(ctx context.Context) ([]model.Category, error)
}

type MovieLister interface {
	ListForSitemap(ctx context.Context) ([]model.Movie, error)
}

// Sources bundles what the generator reads.
type Sources struct {
	Settings   SiteURLSource
	Pages      PageLister
	Categories CategoryLister
	Movies     MovieLister
}

// Result describes one written sitemap.
type Result struct {
	Path     string
	SiteURL  string
	URLs     int
	Bytes    int
	Warnings []string
}

type Generator struct {
	src    Sources
	path   string
	log    Logger
	pinger *Pinger
	now    func() time.Time
}

// NewGenerator writes to path. pinger may be nil to skip notifying search
// engines.
func NewGenerator(src Sources, path string, log Logger, pinger *Pinger) *Generator {
	if src.Settings == nil || src.Pages == nil || src.Categories == nil || src.Movies == nil {
		panic("sitemap: incomplete sources")
	}
	if log == nil {
		panic("sitemap: nil logger")
	}
	return &Generator{src: src, path: path, log: log, pinger: pinger, now: time.Now}
}

// Path is the file Generate writes.
func (g *Generator) Path() string { return g.path }

const (
	xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"
        xmlns:image="http://www.google.com/schemas/sitemap-image/1.1"
        xmlns:news="http://www.google.com/schemas/sitemap-news/0.9">
`
	xmlFooter = `</urlset>`
)

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func day(t time.Time) string { return t.UTC().Format("2006-01-02") }

type urlWriter struct {
	b    strings.Builder
	base string
	n    int
}

func (w *urlWriter) add(path, lastmod, freq, priority string, image *model.Movie) {
	w.n++
	fmt.Fprintf(&w.b, "  <url>\n    <loc>%s</loc>\n    <lastmod>%s</lastmod>\n    <changefreq>%s</changefreq>\n    <priority>%s</priority>",
		xmlEscaper.Replace(w.base+path), lastmod, freq, priority)
	if image != nil && image.Thumbnail != nil && *image.Thumbnail != "" {
		fmt.Fprintf(&w.b, "\n    <image:image>\n      <image:loc>%s</image:loc>\n      <image:title>%s</image:title>\n    </image:image>",
			xmlEscaper.Replace(*image.Thumbnail), xmlEscaper.Replace(image.Title))
	}
	w.b.WriteString("\n  </url>\n")
}

// Build renders the document without writing it. Only a failure to read
// the site URL is fatal; every other section is skipped with a warning.
func (g *Generator) Build(ctx context.Context) ([]byte, Result, error) {
	var res Result
	site, err := g.src.Settings.SiteURL(ctx)
	if err != nil {
		return nil, res, fmt.Errorf("read site url: %w", err)
	}
	site = strings.TrimRight(site, "/")
	res.SiteURL = site
	today := day(g.now())

	w := &urlWriter{base: site}
	w.b.WriteString(xmlHeader)
	w.add("/", today, "daily", "1.0", nil)
	w.add("/about", today, "monthly", "0.8", nil)
	w.add("/page-how-to-download-movie", today, "monthly", "0.8", nil)

	warn := func(section string, err error) {
		msg := fmt.Sprintf("could not fetch %s for sitemap: %v", section, err)
		res.Warnings = append(res.Warnings, msg)
		g.log.Warnf("%s", msg)
	}

	if pages, err := g.src.Pages.ListPublished(ctx); err != nil {
		warn("static pages", err)
	} else {
		for _, p := range pages {
			w.add("/site-"+p.Slug, day(p.UpdatedAt), "monthly", "0.7", nil)
		}
	}

	if cats, err := g.src.Categories.List(ctx); err != nil {
		warn("categories", err)
	} else {
		for _, c := range cats {
			w.add(fmt.Sprintf("/page-cat/%d/%s", c.ID, c.Slug), day(c.UpdatedAt), "weekly", "0.9", nil)
		}
	}

	if movies, err := g.src.Movies.ListForSitemap(ctx); err != nil {
		warn("movies", err)
	} else {
		for i := range movies {
			m := &movies[i]
			w.add("/"+m.Slug, day(m.UpdatedAt), "weekly", "0.8", m)
		}
	}

	w.b.WriteString(xmlFooter)
	out := []byte(w.b.String())
	res.URLs, res.Bytes = w.n, len(out)
	return out, res, nil
}

// Generate builds the sitemap, replaces the file atomically and pings the
// configured search engine.
func (g *Generator) Generate(ctx context.Context) (Result, error) {
	doc, res, err := g.Build(ctx)
	if err != nil {
		return res, err
	}
	if err := writeAtomic(g.path, doc); err != nil {
		return res, fmt.Errorf("write sitemap: %w", err)
	}
	res.Path = g.path
	g.log.Infof("sitemap.xml generated at %s (%d urls)", g.path, res.URLs)

	if g.pinger != nil {
		sitemapURL := res.SiteURL + "/sitemap.xml"
		if err := g.pinger.Ping(ctx, sitemapURL); err != nil {
			g.log.Infof("sitemap ping skipped: %v", err)
		} else {
			g.log.Infof("sitemap submitted: %s", sitemapURL)
		}
	}
	return res, nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".sitemap-*.xml")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
