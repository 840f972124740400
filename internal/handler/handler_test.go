package handler_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kailashsur/filmyfly/internal/applog"
	"github.com/kailashsur/filmyfly/internal/config"
	"github.com/kailashsur/filmyfly/internal/database"
	"github.com/kailashsur/filmyfly/internal/handler"
	"github.com/kailashsur/filmyfly/internal/importer"
	"github.com/kailashsur/filmyfly/internal/middleware"
	"github.com/kailashsur/filmyfly/internal/model"
	"github.com/kailashsur/filmyfly/internal/repository"
	"github.com/kailashsur/filmyfly/internal/router"
	"github.com/kailashsur/filmyfly/internal/seotag"
	"github.com/kailashsur/filmyfly/internal/service"
	"github.com/kailashsur/filmyfly/internal/sitemap"
	"github.com/kailashsur/filmyfly/internal/utils"
	"github.com/kailashsur/filmyfly/internal/view"
)

const testSecret = "handler-test-secret"

type recordingSubmitter struct {
	mu      sync.Mutex
	reasons []string
}

func (r *recordingSubmitter) Submit(reason string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reasons = append(r.reasons, reason)
	return true
}

func (r *recordingSubmitter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reasons)
}

type testEnv struct {
	t          *testing.T
	e          *echo.Echo
	db         *sql.DB
	movies     *repository.MovieRepo
	categories *repository.CategoryRepo
	pages      *repository.StaticPageRepo
	admins     *repository.AdminUserRepo
	submitted  *recordingSubmitter
	logs       *applog.Logger
	token      string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	db, err := database.OpenSQLite(filepath.Join(dir, "filmyfly.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db, database.DriverSQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	logs, err := applog.Open(config.LogConfig{Dir: filepath.Join(dir, "logs"), TailBytes: 4096})
	if err != nil {
		t.Fatalf("open logs: %v", err)
	}
	t.Cleanup(func() { logs.Close() })

	movies := repository.NewMovieRepo(db)
	cats := repository.NewCategoryRepo(db)
	trending := repository.NewTrendingRepo(db)
	pages := repository.NewStaticPageRepo(db)
	admins := repository.NewAdminUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	settings := service.NewSettings(repository.NewSettingRepo(db))
	sitemapPath := filepath.Join(dir, "public", "sitemap.xml")
	gen := sitemap.NewGenerator(sitemap.Sources{Settings: settings, Pages: pages, Categories: cats, Movies: movies},
		sitemapPath, logs, nil)

	renderer, err := view.NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	e := echo.New()
	e.Renderer = renderer
	e.HTTPErrorHandler = handler.HTTPErrorHandler(logs)

	sub := &recordingSubmitter{}
	public := handler.NewPublicHandler(movies, cats, trending, pages, settings, gen, logs)
	admin := handler.NewAdminHandler(handler.AdminDeps{
		DB:          db,
		Driver:      database.DriverSQLite,
		Movies:      movies,
		Categories:  cats,
		Trending:    trending,
		Pages:       pages,
		Settings:    settings,
		Importer:    importer.New(movies),
		Sitemap:     sub,
		SitemapPath: sitemapPath,
		Logs:        logs,
		LogTail:     4096,
	})
	auth := handler.NewAuthHandler(config.Config{
		Env:            "test",
		JWTSecret:      testSecret,
		AccessTTLMin:   5,
		RefreshTTLDays: 1,
		BcryptCost:     4,
	}, admins, tokens, logs)

	router.RegisterRoutes(e)
	router.RegisterAdmin(e, admin, auth, testSecret, nil)
	router.RegisterPublic(e, public, "", middleware.InjectSettings(settings, logs))

	tok, err := utils.NewAccessToken(testSecret, 1, "admin@example.com", model.RoleAdmin, time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return &testEnv{t: t, e: e, db: db, movies: movies, categories: cats, pages: pages, admins: admins,
		submitted: sub, logs: logs, token: tok.Token}
}

func (env *testEnv) do(method, target, body, token string) *httptest.ResponseRecorder {
	env.t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		if strings.HasPrefix(body, "{") {
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		} else {
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
		}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) admin(method, target, body string) *httptest.ResponseRecorder {
	return env.do(method, target, body, env.token)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func ptr[T any](v T) *T { return &v }

func (env *testEnv) seedMovie(title, slug string, categoryID *uint64) model.Movie {
	env.t.Helper()
	m := model.Movie{
		Title:       title,
		Slug:        slug,
		ReleaseYear: ptr(2023),
		Languages:   ptr("Hindi, English"),
		DownloadURL: ptr("https://dl.test/" + slug),
		CategoryID:  categoryID,
	}
	if err := env.movies.Create(context.Background(), &m); err != nil {
		env.t.Fatalf("create movie %s: %v", slug, err)
	}
	return m
}

func TestPublicPages(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if _, err := env.categories.Upsert(ctx, "South Hindi Dubbed", "south-hindi-dubbed"); err != nil {
		t.Fatal(err)
	}
	cat, err := env.categories.GetBySlug(ctx, "south-hindi-dubbed")
	if err != nil {
		t.Fatal(err)
	}
	m := env.seedMovie("Pathaan", "pathaan-2023", &cat.ID)
	env.seedMovie("Jawan", "jawan-2023", nil)

	rec := env.do(http.MethodGet, "/", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Pathaan") {
		t.Fatalf("home: %d %s", rec.Code, rec.Body.String())
	}

	rec = env.do(http.MethodGet, "/pathaan-2023", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("movie page: %d", rec.Code)
	}
	body := rec.Body.String()
	tag := seotag.LongTag(m.Title, m.ReleaseYear, cat.Name, "Hindi, English")
	if !strings.Contains(body, html.EscapeString(tag)) {
		t.Errorf("movie page lacks long tag %q", tag)
	}
	if !strings.Contains(body, "redirect=https://dl.test/pathaan-2023") {
		t.Errorf("movie page lacks download link")
	}
	if !strings.Contains(body, "/jawan-2023") {
		t.Errorf("movie page lacks related movie")
	}

	for _, path := range []string{"/no-such-movie", "/page-foo", "/site-dmca", "/page-cat/999"} {
		if rec := env.do(http.MethodGet, path, "", ""); rec.Code != http.StatusNotFound {
			t.Errorf("GET %s = %d, want 404", path, rec.Code)
		} else if !strings.Contains(rec.Body.String(), "404") {
			t.Errorf("GET %s did not render the not found page", path)
		}
	}

	for _, path := range []string{"/page-cat/" + itoa(cat.ID) + "/south-hindi-dubbed", "/page-cat/south-hindi-dubbed"} {
		rec := env.do(http.MethodGet, path, "", "")
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Pathaan") {
			t.Errorf("GET %s = %d", path, rec.Code)
		}
	}

	rec = env.do(http.MethodGet, "/search?to-search=PATHAAN", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "/pathaan-2023") {
		t.Errorf("search: %d", rec.Code)
	}
	rec = env.do(http.MethodGet, "/site-1?q=nothing-matches", "", "")
	if rec.Code != http.StatusOK || strings.Contains(rec.Body.String(), "/pathaan-2023") {
		t.Errorf("empty search: %d", rec.Code)
	}

	for _, path := range []string{"/about", "/page-how-to-download-movie"} {
		if rec := env.do(http.MethodGet, path, "", ""); rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d", path, rec.Code)
		}
	}

	rec = env.do(http.MethodGet, "/api/categories", "", "")
	var cats []model.Category
	if err := json.Unmarshal(rec.Body.Bytes(), &cats); err != nil || len(cats) != 1 {
		t.Errorf("api categories = %s", rec.Body.String())
	}

	rec = env.do(http.MethodGet, "/robots.txt", "", "")
	if !strings.Contains(rec.Body.String(), "Sitemap: https://filmyfly.work/sitemap.xml") {
		t.Errorf("robots.txt = %q", rec.Body.String())
	}

	rec = env.do(http.MethodGet, "/sitemap.xml", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "https://filmyfly.work/pathaan-2023") {
		t.Errorf("sitemap.xml: %d %s", rec.Code, rec.Body.String())
	}

	if rec := env.do(http.MethodGet, "/healthz", "", ""); rec.Body.String() != "ok" {
		t.Errorf("healthz = %q", rec.Body.String())
	}
}

func itoa(n uint64) string { return strconv.FormatUint(n, 10) }

func TestStaticPagePublishing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := model.StaticPage{Title: "DMCA", Slug: "dmca", Content: "<p>Takedown policy</p>", IsPublished: false}
	if err := env.pages.Create(ctx, &p); err != nil {
		t.Fatal(err)
	}
	if rec := env.do(http.MethodGet, "/site-dmca", "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unpublished page = %d", rec.Code)
	}
	p.IsPublished = true
	if err := env.pages.Update(ctx, &p); err != nil {
		t.Fatal(err)
	}
	rec := env.do(http.MethodGet, "/site-dmca", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<p>Takedown policy</p>") {
		t.Fatalf("published page = %d %s", rec.Code, rec.Body.String())
	}
}

func TestSettingsReachPublicPages(t *testing.T) {
	env := newTestEnv(t)
	rec := env.admin(http.MethodPut, "/admin/settings",
		`{"googleAnalytics":"<script>gtag('ga-test')</script>","siteUrl":"https://filmyfly.work"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("save settings: %d %s", rec.Code, rec.Body.String())
	}
	rec = env.do(http.MethodGet, "/about", "", "")
	if !strings.Contains(rec.Body.String(), "gtag('ga-test')") {
		t.Fatalf("analytics snippet missing from page")
	}
}

func TestAdminRequiresToken(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/admin", "/admin/movies", "/admin/settings"} {
		if rec := env.do(http.MethodGet, path, "", ""); rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s without token = %d", path, rec.Code)
		}
	}
	if rec := env.do(http.MethodGet, "/admin/nope", "", env.token); rec.Code != http.StatusNotFound {
		t.Errorf("unknown admin route = %d", rec.Code)
	} else if _, ok := decode(t, rec)["error"]; !ok {
		t.Errorf("admin 404 is not JSON: %s", rec.Body.String())
	}
}

func TestAdminLoginFlow(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.admins.Create(context.Background(), "Admin@Example.com", "supersecret", 4); err != nil {
		t.Fatal(err)
	}

	if rec := env.do(http.MethodPost, "/admin/login", `{"email":"admin@example.com","password":"wrong-password"}`, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password = %d", rec.Code)
	}

	rec := env.do(http.MethodPost, "/admin/login", `{"email":"admin@example.com","password":"supersecret"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login = %d %s", rec.Code, rec.Body.String())
	}
	var pair struct {
		User    struct{ Email, Role string }
		Access  struct{ Token string }
		Refresh struct{ Token string }
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &pair); err != nil {
		t.Fatal(err)
	}
	if pair.User.Role != model.RoleAdmin || pair.Access.Token == "" || pair.Refresh.Token == "" {
		t.Fatalf("login response = %s", rec.Body.String())
	}

	rec = env.do(http.MethodGet, "/admin/me", "", pair.Access.Token)
	if rec.Code != http.StatusOK || decode(t, rec)["email"] != "admin@example.com" {
		t.Fatalf("me = %d %s", rec.Code, rec.Body.String())
	}

	rec = env.do(http.MethodPost, "/admin/refresh", `{"refresh_token":"`+pair.Refresh.Token+`"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh = %d %s", rec.Code, rec.Body.String())
	}
	var rotated struct{ Refresh struct{ Token string } }
	_ = json.Unmarshal(rec.Body.Bytes(), &rotated)

	if rec := env.do(http.MethodPost, "/admin/refresh", `{"refresh_token":"`+pair.Refresh.Token+`"}`, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("reused refresh token = %d", rec.Code)
	}
	if rec := env.do(http.MethodPost, "/admin/logout", `{"refresh_token":"`+rotated.Refresh.Token+`"}`, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("logout = %d", rec.Code)
	}
	if rec := env.do(http.MethodPost, "/admin/refresh", `{"refresh_token":"`+rotated.Refresh.Token+`"}`, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("refresh after logout = %d", rec.Code)
	}
}

func TestAdminMovieLifecycle(t *testing.T) {
	env := newTestEnv(t)

	rec := env.admin(http.MethodPost, "/admin/movies", `{"title":"Leo","genre":"Action"}`)
	body := decode(t, rec)
	if rec.Code != http.StatusBadRequest || body["error"] != "Title and slug are required" {
		t.Fatalf("missing slug = %d %v", rec.Code, body)
	}
	if echoed, _ := body["movie"].(map[string]any); echoed["genre"] != "Action" {
		t.Errorf("input not preserved: %v", body)
	}

	rec = env.admin(http.MethodPost, "/admin/movies", `{"title":"Leo","slug":"leo-2023","releaseYear":"2023","languages":"Tamil"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d %s", rec.Code, rec.Body.String())
	}
	id := uint64(decode(t, rec)["movie"].(map[string]any)["id"].(float64))
	if env.submitted.count() != 1 {
		t.Errorf("create submitted %d sitemap runs", env.submitted.count())
	}

	rec = env.admin(http.MethodPost, "/admin/movies", `{"title":"Leo again","slug":"leo-2023"}`)
	if rec.Code != http.StatusConflict || decode(t, rec)["error"] != "A movie with this slug already exists" {
		t.Fatalf("duplicate = %d %s", rec.Code, rec.Body.String())
	}

	rec = env.admin(http.MethodPost, "/admin/movies", `title=Jailer&slug=jailer-2023&releaseYear=abc`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad year = %d", rec.Code)
	}
	rec = env.admin(http.MethodPost, "/admin/movies", `title=Jailer&slug=jailer-2023`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("form create = %d %s", rec.Code, rec.Body.String())
	}

	path := "/admin/movies/" + itoa(id)
	if rec := env.admin(http.MethodPut, path, `{"title":"Leo","slug":"jailer-2023"}`); rec.Code != http.StatusConflict {
		t.Fatalf("update onto taken slug = %d", rec.Code)
	}
	if rec := env.admin(http.MethodPut, path, `{"title":"Leo (2023)","slug":"leo-2023"}`); rec.Code != http.StatusOK {
		t.Fatalf("update keeping own slug = %d %s", rec.Code, rec.Body.String())
	}
	if rec := env.admin(http.MethodPut, "/admin/movies/9999", `{"title":"X","slug":"x"}`); rec.Code != http.StatusNotFound {
		t.Fatalf("update missing = %d", rec.Code)
	}

	trendPath := "/admin/movies/trending/" + itoa(id)
	if rec := env.admin(http.MethodPost, trendPath, ""); rec.Code != http.StatusCreated {
		t.Fatalf("add trending = %d %s", rec.Code, rec.Body.String())
	}
	rec = env.admin(http.MethodPost, trendPath, "")
	if rec.Code != http.StatusBadRequest || decode(t, rec)["error"] != "Movie is already in trending" {
		t.Fatalf("add trending twice = %d %s", rec.Code, rec.Body.String())
	}
	rec = env.admin(http.MethodPost, "/admin/movies/trending/9999", "")
	if rec.Code != http.StatusNotFound || decode(t, rec)["error"] != "Movie not found" {
		t.Fatalf("trend missing movie = %d %s", rec.Code, rec.Body.String())
	}

	rec = env.admin(http.MethodGet, "/admin/movies?page=1", "")
	list := decode(t, rec)
	if rec.Code != http.StatusOK || list["total"].(float64) != 2 {
		t.Fatalf("list = %d %v", rec.Code, list)
	}
	trendingFlags := 0
	for _, row := range list["movies"].([]any) {
		if row.(map[string]any)["trending"] == true {
			trendingFlags++
		}
	}
	if trendingFlags != 1 {
		t.Errorf("trending flags = %d", trendingFlags)
	}

	if rec := env.admin(http.MethodDelete, trendPath, ""); rec.Code != http.StatusOK {
		t.Fatalf("remove trending = %d", rec.Code)
	}
	if rec := env.admin(http.MethodDelete, trendPath, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("remove trending twice = %d", rec.Code)
	}
	if rec := env.admin(http.MethodDelete, path, ""); rec.Code != http.StatusOK {
		t.Fatalf("delete = %d", rec.Code)
	}
	if rec := env.admin(http.MethodDelete, path, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("delete twice = %d", rec.Code)
	}
}

func TestAdminMoviesByCategory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if _, err := env.categories.Upsert(ctx, "Hollywood Hindi", "hollywood-hindi"); err != nil {
		t.Fatal(err)
	}
	cat, _ := env.categories.GetBySlug(ctx, "hollywood-hindi")
	env.seedMovie("Dune", "dune-2021", &cat.ID)
	env.seedMovie("Other", "other", nil)

	rec := env.admin(http.MethodGet, "/admin/movies/by-category?categoryId="+itoa(cat.ID), "")
	body := decode(t, rec)
	if rec.Code != http.StatusOK || body["total"].(float64) != 1 {
		t.Fatalf("by category = %d %v", rec.Code, body)
	}
	if rec := env.admin(http.MethodGet, "/admin/movies/by-category", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing categoryId = %d", rec.Code)
	}
}

func TestAdminBulkImport(t *testing.T) {
	env := newTestEnv(t)

	csv := "title,slug,year\nMovie A,movie-a,2020\nMovie B,movie-a,2021\n,missing-title,2022"
	payload, _ := json.Marshal(map[string]any{"moviesData": csv})
	rec := env.admin(http.MethodPost, "/admin/movies/bulk", string(payload))
	body := decode(t, rec)
	// the untitled row is dropped while decoding
	if rec.Code != http.StatusOK || body["total"].(float64) != 2 || body["success"].(float64) != 1 || body["failed"].(float64) != 1 {
		t.Fatalf("csv import = %d %v", rec.Code, body)
	}
	lines := body["errorLines"].([]any)
	if len(lines) != 1 || !strings.Contains(lines[0].(string), `Slug "movie-a" already exists`) {
		t.Errorf("error lines = %v", lines)
	}
	if env.submitted.count() != 1 {
		t.Errorf("bulk import submitted %d sitemap runs", env.submitted.count())
	}

	rec = env.admin(http.MethodPost, "/admin/movies/bulk",
		`{"moviesData":[{"title":"Movie C","slug":"movie-c","releaseYear":2019,"categoryId":""}]}`)
	if body := decode(t, rec); rec.Code != http.StatusOK || body["success"].(float64) != 1 {
		t.Fatalf("json array import = %d %v", rec.Code, body)
	}

	rec = env.admin(http.MethodPost, "/admin/movies/bulk", "moviesData="+url.QueryEscape("title,slug\nMovie D,movie-d"))
	if body := decode(t, rec); rec.Code != http.StatusOK || body["success"].(float64) != 1 {
		t.Fatalf("form import = %d %v", rec.Code, body)
	}

	rec = env.admin(http.MethodPost, "/admin/movies/bulk", `{"moviesData":"   "}`)
	if body := decode(t, rec); rec.Code != http.StatusBadRequest || body["error"] != "No movie data provided" {
		t.Fatalf("empty import = %d %v", rec.Code, body)
	}
}

func TestAdminStaticPages(t *testing.T) {
	env := newTestEnv(t)

	rec := env.admin(http.MethodPost, "/admin/static-pages", `{"title":"Contact","slug":"contact-us"}`)
	if rec.Code != http.StatusBadRequest || decode(t, rec)["error"] != "Title, slug, and content are required" {
		t.Fatalf("missing content = %d %s", rec.Code, rec.Body.String())
	}
	rec = env.admin(http.MethodPost, "/admin/static-pages", `title=Contact&slug=contact-us&content=Mail+us&isPublished=on`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create page = %d %s", rec.Code, rec.Body.String())
	}
	page := decode(t, rec)["page"].(map[string]any)
	if page["isPublished"] != true {
		t.Errorf("checkbox value not published: %v", page)
	}
	rec = env.admin(http.MethodPost, "/admin/static-pages", `{"title":"Contact","slug":"contact-us","content":"x"}`)
	if rec.Code != http.StatusConflict || decode(t, rec)["error"] != "A page with this slug already exists" {
		t.Fatalf("duplicate page = %d %s", rec.Code, rec.Body.String())
	}

	path := "/admin/static-pages/" + itoa(uint64(page["id"].(float64)))
	if rec := env.admin(http.MethodPut, path, `{"title":"Contact","slug":"contact-us","content":"Write to us","isPublished":false}`); rec.Code != http.StatusOK {
		t.Fatalf("update page = %d %s", rec.Code, rec.Body.String())
	}
	if rec := env.do(http.MethodGet, "/site-contact-us", "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unpublished page served: %d", rec.Code)
	}
	rec = env.admin(http.MethodGet, "/admin/static-pages", "")
	if pages := decode(t, rec)["pages"].([]any); len(pages) != 1 {
		t.Fatalf("list pages = %v", pages)
	}
	if rec := env.admin(http.MethodDelete, path, ""); rec.Code != http.StatusOK {
		t.Fatalf("delete page = %d", rec.Code)
	}
	if rec := env.admin(http.MethodDelete, path, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("delete page twice = %d", rec.Code)
	}
	if env.submitted.count() != 3 {
		t.Errorf("page changes submitted %d sitemap runs, want 3", env.submitted.count())
	}
}

func TestAdminSettings(t *testing.T) {
	env := newTestEnv(t)

	rec := env.admin(http.MethodGet, "/admin/settings", "")
	if entries := decode(t, rec)["settings"].([]any); len(entries) != len(service.SettingDefs) {
		t.Fatalf("settings entries = %d", len(entries))
	}

	rec = env.admin(http.MethodPut, "/admin/settings", `{"downloadRedirectUrl":"not a url"}`)
	if rec.Code != http.StatusBadRequest || decode(t, rec)["error"] != "Invalid URL format. Please enter a valid URL." {
		t.Fatalf("invalid redirect = %d %s", rec.Code, rec.Body.String())
	}
	rec = env.admin(http.MethodPut, "/admin/settings", `{"siteUrl":"ftp://files.test"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("non-http site url = %d", rec.Code)
	}

	rec = env.admin(http.MethodPut, "/admin/settings", `{"siteUrl":"https://filmyfly.work"}`)
	if rec.Code != http.StatusOK || env.submitted.count() != 0 {
		t.Fatalf("unchanged site url = %d, %d submits", rec.Code, env.submitted.count())
	}
	rec = env.admin(http.MethodPut, "/admin/settings", `{"siteUrl":"https://new.example"}`)
	if rec.Code != http.StatusOK || env.submitted.count() != 1 {
		t.Fatalf("changed site url = %d, %d submits", rec.Code, env.submitted.count())
	}
	if rec := env.do(http.MethodGet, "/robots.txt", "", ""); !strings.Contains(rec.Body.String(), "Sitemap: https://new.example/sitemap.xml") {
		t.Fatalf("robots.txt after change = %q", rec.Body.String())
	}
}

func TestAdminLogsAndSitemap(t *testing.T) {
	env := newTestEnv(t)

	if rec := env.admin(http.MethodPost, "/admin/logs/clear?type=all", ""); rec.Code != http.StatusOK {
		t.Fatalf("clear = %d", rec.Code)
	}
	rec := env.admin(http.MethodGet, "/admin/logs/data", "")
	body := decode(t, rec)
	if body["appLogs"] != "No logs available yet." || body["errorLogs"] != "No error logs available yet." ||
		body["appLogSizeFormatted"] != "0 Bytes" {
		t.Fatalf("empty logs = %v", body)
	}

	env.logs.Errorf("disk almost full")
	body = decode(t, env.admin(http.MethodGet, "/admin/logs/data", ""))
	if !strings.Contains(body["errorLogs"].(string), "disk almost full") {
		t.Fatalf("error log tail = %v", body["errorLogs"])
	}

	if rec := env.admin(http.MethodPost, "/admin/logs/clear?type=bogus", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad clear type = %d", rec.Code)
	}
	rec = env.admin(http.MethodGet, "/admin/logs/download?type=error", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Header().Get(echo.HeaderContentDisposition), "attachment") {
		t.Fatalf("download = %d %v", rec.Code, rec.Header())
	}

	rec = env.admin(http.MethodPost, "/admin/sitemap/regenerate", "")
	if rec.Code != http.StatusAccepted || env.submitted.count() != 1 {
		t.Fatalf("regenerate = %d, %d submits", rec.Code, env.submitted.count())
	}
}

func TestAdminDashboardAndSystemCheck(t *testing.T) {
	env := newTestEnv(t)
	env.seedMovie("Leo", "leo", nil)

	rec := env.admin(http.MethodGet, "/admin", "")
	counts, _ := decode(t, rec)["counts"].(map[string]any)
	if rec.Code != http.StatusOK || counts["movies"].(float64) != 1 || counts["categories"].(float64) != 0 {
		t.Fatalf("dashboard = %d %s", rec.Code, rec.Body.String())
	}

	rec = env.admin(http.MethodGet, "/admin/system-check", "")
	body := decode(t, rec)
	db, _ := body["database"].(map[string]any)
	if db["status"] != "ok" || db["sizeBytes"].(float64) <= 0 {
		t.Fatalf("database check = %v", body["database"])
	}
	if redis, _ := body["redis"].(map[string]any); redis["status"] != "disabled" {
		t.Errorf("redis check = %v", body["redis"])
	}
	if sm, _ := body["sitemap"].(map[string]any); sm["status"] != "missing" {
		t.Errorf("sitemap check = %v", body["sitemap"])
	}
}
