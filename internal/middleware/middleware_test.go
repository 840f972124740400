package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kailashsur/filmyfly/internal/config"
	"github.com/kailashsur/filmyfly/internal/model"
	"github.com/kailashsur/filmyfly/internal/utils"
	"github.com/kailashsur/filmyfly/internal/view"
)

const testSecret = "test-secret"

func protected() *echo.Echo {
	e := echo.New()
	g := e.Group("/admin", JWTAuth(testSecret), RequireRole(model.RoleAdmin))
	g.GET("/me", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"id": UserID(c), "email": Email(c)})
	})
	return e
}

func TestJWTAuth(t *testing.T) {
	e := protected()
	good, err := utils.NewAccessToken(testSecret, 7, "admin@example.com", model.RoleAdmin, time.Minute)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	other, _ := utils.NewAccessToken("another-secret", 7, "admin@example.com", model.RoleAdmin, time.Minute)
	editor, _ := utils.NewAccessToken(testSecret, 7, "admin@example.com", "EDITOR", time.Minute)
	expired, _ := utils.NewAccessToken(testSecret, 7, "admin@example.com", model.RoleAdmin, -time.Minute)

	cases := []struct {
		name   string
		header string
		cookie string
		want   int
	}{
		{"missing", "", "", http.StatusUnauthorized},
		{"bearer", "Bearer " + good.Token, "", http.StatusOK},
		{"cookie", "", good.Token, http.StatusOK},
		{"wrong secret", "Bearer " + other.Token, "", http.StatusUnauthorized},
		{"expired", "Bearer " + expired.Token, "", http.StatusUnauthorized},
		{"wrong role", "Bearer " + editor.Token, "", http.StatusForbidden},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/admin/me", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		if tc.cookie != "" {
			req.AddCookie(&http.Cookie{Name: AccessCookie, Value: tc.cookie})
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Errorf("%s: status %d, want %d (%s)", tc.name, rec.Code, tc.want, rec.Body.String())
		}
	}
}

func TestSubjectID(t *testing.T) {
	if id, ok := subjectID(float64(12)); !ok || id != 12 {
		t.Fatalf("float sub = %d %v", id, ok)
	}
	if id, ok := subjectID("42"); !ok || id != 42 {
		t.Fatalf("string sub = %d %v", id, ok)
	}
	if _, ok := subjectID("abc"); ok {
		t.Fatal("non-numeric sub accepted")
	}
	if _, ok := subjectID(nil); ok {
		t.Fatal("missing sub accepted")
	}
}

type stubSettings struct {
	vals map[string]string
	err  error
}

func (s stubSettings) Values(context.Context) (map[string]string, error) { return s.vals, s.err }

type nopWarner struct{ n int }

func (w *nopWarner) Warnf(string, ...any) { w.n++ }

func TestInjectSettings(t *testing.T) {
	run := func(src SettingsSource, w *nopWarner) map[string]string {
		e := echo.New()
		var got map[string]string
		h := InjectSettings(src, w)(func(c echo.Context) error {
			got, _ = c.Get(view.SettingsKey).(map[string]string)
			return nil
		})
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		if err := h(c); err != nil {
			t.Fatalf("handler: %v", err)
		}
		return got
	}

	w := &nopWarner{}
	got := run(stubSettings{vals: map[string]string{"siteUrl": "https://x.test"}}, w)
	if got["siteUrl"] != "https://x.test" || w.n != 0 {
		t.Fatalf("settings = %v, warnings = %d", got, w.n)
	}

	got = run(stubSettings{err: errors.New("db down")}, w)
	if got == nil || len(got) != 0 || w.n != 1 {
		t.Fatalf("fallback settings = %v, warnings = %d", got, w.n)
	}
}

func TestCacheSkipAndKeys(t *testing.T) {
	cfg := config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{"GET": true},
		Prefix:       "filmyfly:page",
		KeyStrategy:  "route_query",
		SkipPrefixes: []string{"/admin", "/healthz"},
	}
	e := echo.New()
	ctx := func(method, target string) echo.Context {
		return e.NewContext(httptest.NewRequest(method, target, nil), httptest.NewRecorder())
	}

	if !skipCache(cfg, ctx(http.MethodGet, "/admin/movies")) {
		t.Error("admin path should skip the cache")
	}
	if !skipCache(cfg, ctx(http.MethodPost, "/")) {
		t.Error("POST should skip the cache")
	}
	if skipCache(cfg, ctx(http.MethodGet, "/pathaan-2023")) {
		t.Error("movie page should be cacheable")
	}

	a := cacheKeyFrom(cfg, ctx(http.MethodGet, "/movie-a"))
	b := cacheKeyFrom(cfg, ctx(http.MethodGet, "/movie-b"))
	if a == b {
		t.Fatal("different movie paths share a cache key")
	}
	if p1, p2 := cacheKeyFrom(cfg, ctx(http.MethodGet, "/?page=1")), cacheKeyFrom(cfg, ctx(http.MethodGet, "/?page=2")); p1 == p2 {
		t.Fatal("query string ignored by route_query strategy")
	}
}

func TestPayloadEncoding(t *testing.T) {
	hdr := http.Header{"Content-Type": []string{"text/html; charset=UTF-8"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte("<html></html>"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	status, got, body, ok := decodePayload(bs)
	if !ok || status != http.StatusOK || string(body) != "<html></html>" || got.Get("Content-Type") != hdr.Get("Content-Type") {
		t.Fatalf("decode = %d %v %q %v", status, got, body, ok)
	}
	if _, _, _, ok := decodePayload([]byte{0, 1}); ok {
		t.Fatal("short payload decoded")
	}
}

func TestDisabledMiddlewaresPassThrough(t *testing.T) {
	e := echo.New()
	called := 0
	next := func(c echo.Context) error { called++; return nil }
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	if err := NewRedisCache(config.CacheConfig{Enabled: true}, nil)(next)(c); err != nil {
		t.Fatal(err)
	}
	if err := NewLoginLimiter(config.RateLimitConfig{Enabled: true}, nil, &nopWarner{})(next)(c); err != nil {
		t.Fatal(err)
	}
	if called != 2 {
		t.Fatalf("next called %d times", called)
	}
	var pc *PageCache
	if n, err := pc.Purge(context.Background()); n != 0 || err != nil {
		t.Fatalf("nil purge = %d %v", n, err)
	}
	if NewPageCache(config.CacheConfig{Enabled: true}, nil) != nil {
		t.Fatal("page cache without redis should be nil")
	}
}

func TestLoginKey(t *testing.T) {
	cases := []struct {
		ip, email, want string
	}{
		{"10.0.0.1", "  Admin@Example.COM ", "rl:login:10.0.0.1:admin@example.com"},
		{"10.0.0.1", "", "rl:login:10.0.0.1:-"},
		{"", "a@b.c", "rl:login:unknown:a@b.c"},
	}
	for _, tc := range cases {
		if got := loginKey("rl", tc.ip, tc.email); got != tc.want {
			t.Errorf("loginKey(%q, %q) = %q, want %q", tc.ip, tc.email, got, tc.want)
		}
	}
}

// countingBuckets allows the first limit takes per key.
type countingBuckets struct {
	limit int
	seen  map[string]int
	keys  []string
	err   error
}

func (b *countingBuckets) Take(_ context.Context, key string, _ time.Time) (attempt, error) {
	if b.err != nil {
		return attempt{}, b.err
	}
	b.keys = append(b.keys, key)
	b.seen[key]++
	left := b.limit - b.seen[key]
	if left < 0 {
		return attempt{Allowed: false, RetryAfter: 1500 * time.Millisecond}, nil
	}
	return attempt{Allowed: true, Remaining: int64(left)}, nil
}

func TestLoginLimiter(t *testing.T) {
	store := &countingBuckets{limit: 2, seen: map[string]int{}}
	w := &nopWarner{}
	e := echo.New()
	e.POST("/admin/login", func(c echo.Context) error {
		var body struct{ Email, Password string }
		if err := c.Bind(&body); err != nil {
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{"email": body.Email, "password": body.Password})
	}, loginLimiter(config.RateLimitConfig{Capacity: 2, Prefix: "rl"}, store, w))

	login := func(body, contentType string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, contentType)
		req.RemoteAddr = "192.0.2.7:4000"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	rec := login(`{"email":"Admin@Example.com","password":"pw"}`, echo.MIMEApplicationJSON)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"password":"pw"`) {
		t.Fatalf("first attempt = %d %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "1" || rec.Header().Get("X-RateLimit-Limit") != "2" {
		t.Errorf("headers = %v", rec.Header())
	}
	form := url.Values{"email": {" admin@example.com"}, "password": {"pw"}}.Encode()
	if rec := login(form, echo.MIMEApplicationForm); rec.Code != http.StatusOK {
		t.Fatalf("second attempt = %d %s", rec.Code, rec.Body.String())
	}

	rec = login(`{"email":"admin@example.com","password":"pw"}`, echo.MIMEApplicationJSON)
	if rec.Code != http.StatusTooManyRequests || rec.Header().Get("Retry-After") != "2" {
		t.Fatalf("third attempt = %d %v", rec.Code, rec.Header())
	}
	if store.keys[0] != "rl:login:192.0.2.7:admin@example.com" || store.keys[1] != store.keys[0] {
		t.Errorf("keys = %v", store.keys)
	}

	if rec := login(`{"email":"other@example.com","password":"pw"}`, echo.MIMEApplicationJSON); rec.Code != http.StatusOK {
		t.Fatalf("other account blocked: %d", rec.Code)
	}

	store.err = errors.New("redis down")
	if rec := login(`{"email":"admin@example.com","password":"pw"}`, echo.MIMEApplicationJSON); rec.Code != http.StatusOK {
		t.Fatalf("store error should let the attempt through, got %d", rec.Code)
	}
	if w.n != 1 {
		t.Errorf("store error logged %d times", w.n)
	}
}
