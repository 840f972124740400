package sitemap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kailashsur/filmyfly/internal/model"
)

type testLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *testLogger) add(level, f string, a ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, level+" "+fmt.Sprintf(f, a...))
}
func (l *testLogger) Infof(f string, a ...any)  { l.add("INFO", f, a...) }
func (l *testLogger) Warnf(f string, a ...any)  { l.add("WARN", f, a...) }
func (l *testLogger) Errorf(f string, a ...any) { l.add("ERROR", f, a...) }

func (l *testLogger) count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, s := range l.lines {
		if strings.HasPrefix(s, level+" ") {
			n++
		}
	}
	return n
}

type fakeSource struct {
	site    string
	siteErr error
	pages   []model.StaticPage
	cats    []model.Category
	movies  []model.Movie
	pageErr error
	catErr  error
	movErr  error
}

func (f *fakeSource) SiteURL(context.Context) (string, error) { return f.site, f.siteErr }
func (f *fakeSource) ListPublished(context.Context) ([]model.StaticPage, error) {
	return f.pages, f.pageErr
}
func (f *fakeSource) List(context.Context) ([]model.Category, error) { return f.cats, f.catErr }
func (f *fakeSource) ListForSitemap(context.Context) ([]model.Movie, error) {
	return f.movies, f.movErr
}

func sources(f *fakeSource) Sources {
	return Sources{Settings: f, Pages: f, Categories: f, Movies: f}
}

func str(s string) *string { return &s }

var updated = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

func sampleSource() *fakeSource {
	return &fakeSource{
		site:  "https://filmyfly.example/",
		pages: []model.StaticPage{{Slug: "dmca", IsPublished: true, UpdatedAt: updated}},
		cats:  []model.Category{{ID: 3, Slug: "bollywood-movies", UpdatedAt: updated}},
		movies: []model.Movie{
			{Slug: "newer", Title: `Tom & Jerry's "Big" <Day>`, Thumbnail: str("https://img.example/a.jpg?x=1&y=2"), UpdatedAt: updated},
			{Slug: "older", Title: "Older", UpdatedAt: updated.Add(-time.Hour)},
		},
	}
}

func TestBuildOrderAndEscaping(t *testing.T) {
	log := &testLogger{}
	g := NewGenerator(sources(sampleSource()), filepath.Join(t.TempDir(), "sitemap.xml"), log, nil)
	g.now = func() time.Time { return time.Date(2025, 1, 2, 23, 0, 0, 0, time.UTC) }

	doc, res, err := g.Build(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	s := string(doc)
	if !strings.HasPrefix(s, `<?xml version="1.0" encoding="UTF-8"?>`) || !strings.HasSuffix(s, "</urlset>") {
		t.Fatalf("bad envelope: %q", s)
	}
	order := []string{
		"<loc>https://filmyfly.example/</loc>",
		"<loc>https://filmyfly.example/about</loc>",
		"<loc>https://filmyfly.example/page-how-to-download-movie</loc>",
		"<loc>https://filmyfly.example/site-dmca</loc>",
		"<loc>https://filmyfly.example/page-cat/3/bollywood-movies</loc>",
		"<loc>https://filmyfly.example/newer</loc>",
		"<loc>https://filmyfly.example/older</loc>",
	}
	last := -1
	for _, want := range order {
		i := strings.Index(s, want)
		if i < 0 || i < last {
			t.Fatalf("%s missing or out of order", want)
		}
		last = i
	}
	if res.URLs != 7 {
		t.Errorf("urls = %d", res.URLs)
	}
	if !strings.Contains(s, "<lastmod>2025-01-02</lastmod>") {
		t.Error("fixed pages should use the generation date")
	}
	if !strings.Contains(s, "<image:loc>https://img.example/a.jpg?x=1&amp;y=2</image:loc>") {
		t.Error("image loc not escaped")
	}
	if !strings.Contains(s, "<image:title>Tom &amp; Jerry&apos;s &quot;Big&quot; &lt;Day&gt;</image:title>") {
		t.Error("image title not escaped")
	}
	if strings.Count(s, "<image:image>") != 1 {
		t.Error("only movies with a thumbnail get an image")
	}
}

func TestBuildSectionsAreFaultTolerant(t *testing.T) {
	src := sampleSource()
	src.pageErr = errors.New("pages down")
	src.movErr = errors.New("movies down")
	log := &testLogger{}
	g := NewGenerator(sources(src), filepath.Join(t.TempDir(), "sitemap.xml"), log, nil)

	doc, res, err := g.Build(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(doc), "/site-dmca") || strings.Contains(string(doc), "/newer") {
		t.Error("failed sections must be omitted")
	}
	if !strings.Contains(string(doc), "/page-cat/3/bollywood-movies") {
		t.Error("healthy section missing")
	}
	if len(res.Warnings) != 2 || log.count("WARN") != 2 {
		t.Errorf("warnings = %v", res.Warnings)
	}
}

func TestBuildSiteURLErrorIsFatal(t *testing.T) {
	src := sampleSource()
	src.siteErr = errors.New("db down")
	g := NewGenerator(sources(src), filepath.Join(t.TempDir(), "sitemap.xml"), &testLogger{}, nil)
	if _, _, err := g.Build(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestGenerateWritesIdempotently(t *testing.T) {
	path := filepath.Join(t.TempDir(), "public", "sitemap.xml")
	g := NewGenerator(sources(sampleSource()), path, &testLogger{}, nil)

	if _, err := g.Generate(context.Background()); err != nil {
		t.Fatal(err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.Generate(context.Background()); err != nil {
		t.Fatal(err)
	}
	second, _ := os.ReadFile(path)
	if string(first) != string(second) {
		t.Error("regenerating without changes should produce the same document")
	}
	tmps, _ := filepath.Glob(filepath.Join(filepath.Dir(path), ".sitemap-*"))
	if len(tmps) != 0 {
		t.Errorf("temp files left behind: %v", tmps)
	}
}

func TestGenerateWriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	g := NewGenerator(sources(sampleSource()), filepath.Join(blocker, "sitemap.xml"), &testLogger{}, nil)
	if _, err := g.Generate(context.Background()); err == nil {
		t.Fatal("expected write error")
	}
}

func TestPingFailureIsNotFatal(t *testing.T) {
	var gotQuery, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("sitemap")
		gotUA = r.UserAgent()
		w.WriteHeader(http.StatusGone)
	}))
	defer srv.Close()

	log := &testLogger{}
	g := NewGenerator(sources(sampleSource()), filepath.Join(t.TempDir(), "sitemap.xml"), log,
		NewPinger(srv.URL+"/ping", time.Second))
	if _, err := g.Generate(context.Background()); err != nil {
		t.Fatalf("ping failure must not fail generation: %v", err)
	}
	if gotQuery != "https://filmyfly.example/sitemap.xml" {
		t.Errorf("ping sitemap param = %q", gotQuery)
	}
	if gotUA != "FilmyFly-Sitemap-Bot/1.0" {
		t.Errorf("user agent = %q", gotUA)
	}
}

func TestRobots(t *testing.T) {
	got := Robots("https://filmyfly.work/")
	if !strings.HasSuffix(got, "Sitemap: https://filmyfly.work/sitemap.xml\n") {
		t.Errorf("robots tail = %q", got[len(got)-60:])
	}
	if !strings.HasPrefix(got, "# robots.txt for FilmyFly\n") || !strings.Contains(got, "Crawl-delay: 1\n") {
		t.Error("robots body changed")
	}
}
