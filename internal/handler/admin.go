package handler

import (
    "context"
    "database/sql"
    "encoding/json"
    "net/http"
    "os"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/kailashsur/filmyfly/internal/applog"
    "github.com/kailashsur/filmyfly/internal/database"
    "github.com/kailashsur/filmyfly/internal/importer"
    "github.com/kailashsur/filmyfly/internal/repository"
    "github.com/kailashsur/filmyfly/internal/service"
    "github.com/kailashsur/filmyfly/internal/sitemap"
)

// CachePurger drops cached public pages; *middleware.PageCache implements it.
type CachePurger interface {
    Purge(ctx context.Context) (int, error)
}

// AdminDeps lists everything the back office needs.  Redis and Cache may be
// nil.
type AdminDeps struct {
    DB          *sql.DB
    Driver      string
    Movies      *repository.MovieRepo
    Categories  *repository.CategoryRepo
    Trending    *repository.TrendingRepo
    Pages       *repository.StaticPageRepo
    Settings    *service.Settings
    Importer    *importer.Importer
    Sitemap     sitemap.Submitter
    SitemapPath string
    Redis       *redis.Client
    Cache       CachePurger
    Logs        *applog.Logger
    LogTail     int64
}

// AdminHandler serves the JSON back office under /admin.
type AdminHandler struct {
    AdminDeps
}

func NewAdminHandler(d AdminDeps) *AdminHandler {
    if d.DB == nil || d.Movies == nil || d.Categories == nil || d.Trending == nil || d.Pages == nil ||
        d.Settings == nil || d.Importer == nil || d.Sitemap == nil || d.Logs == nil {
        panic("nil dependency passed to NewAdminHandler")
    }
    if d.LogTail <= 0 {
        d.LogTail = 100 * 1024
    }
    return &AdminHandler{AdminDeps: d}
}

// purgeCache is best effort: a stale page expires with its TTL anyway.
func (h *AdminHandler) purgeCache() {
    if h.Cache == nil {
        return
    }
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if _, err := h.Cache.Purge(ctx); err != nil {
        h.Logs.Warnf("purge page cache: %v", err)
    }
}

// contentChanged refreshes everything derived from the catalog.
func (h *AdminHandler) contentChanged(reason string) {
    h.purgeCache()
    if !h.Sitemap.Submit(reason) {
        h.Logs.Infof("sitemap regeneration for %q coalesced into a pending run", reason)
    }
}

// readFields decodes a JSON object or form body into a flat map.
func readFields(c echo.Context) (map[string]any, error) {
    req := c.Request()
    if strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
        out := map[string]any{}
        if req.ContentLength == 0 {
            return out, nil
        }
        if err := json.NewDecoder(req.Body).Decode(&out); err != nil {
            return nil, err
        }
        return out, nil
    }
    form, err := c.FormParams()
    if err != nil {
        return nil, err
    }
    out := make(map[string]any, len(form))
    for k, v := range form {
        if len(v) > 0 {
            out[k] = v[0]
        }
    }
    return out, nil
}

// Dashboard returns catalog counts.
func (h *AdminHandler) Dashboard(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    counts := map[string]int64{}
    for name, count := range map[string]func(context.Context) (int64, error){
        "movies":      h.Movies.Count,
        "categories":  h.Categories.Count,
        "trending":    h.Trending.Count,
        "staticPages": h.Pages.Count,
    } {
        n, err := count(ctx)
        if err != nil {
            h.Logs.Errorf("dashboard count %s: %v", name, err)
            if storeUnavailable(err) {
                return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "service unavailable"})
            }
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to load dashboard"})
        }
        counts[name] = n
    }
    return c.JSON(http.StatusOK, echo.Map{"counts": counts, "user": echo.Map{"email": c.Get("email")}})
}

type checkStatus struct {
    Status  string `json:"status"`
    Message string `json:"message,omitempty"`
}

// SystemCheck reports database, cache and sitemap health.
func (h *AdminHandler) SystemCheck(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    out := echo.Map{}

    start := time.Now()
    if err := h.DB.PingContext(ctx); err != nil {
        out["database"] = checkStatus{Status: "error", Message: err.Error()}
    } else {
        db := echo.Map{"status": "ok", "driver": h.Driver, "latencyMs": time.Since(start).Milliseconds()}
        if size, err := database.Size(ctx, h.DB, h.Driver); err != nil {
            db["sizeError"] = err.Error()
        } else {
            db["sizeBytes"] = size
            db["size"] = applog.FormatBytes(size)
        }
        out["database"] = db
    }

    switch {
    case h.Redis == nil:
        out["redis"] = checkStatus{Status: "disabled"}
    default:
        if err := h.Redis.Ping(ctx).Err(); err != nil {
            out["redis"] = checkStatus{Status: "error", Message: err.Error()}
        } else {
            out["redis"] = checkStatus{Status: "ok"}
        }
    }

    if st, err := os.Stat(h.SitemapPath); err != nil {
        out["sitemap"] = checkStatus{Status: "missing", Message: h.SitemapPath}
    } else {
        out["sitemap"] = echo.Map{
            "status":       "ok",
            "path":         h.SitemapPath,
            "size":         applog.FormatBytes(st.Size()),
            "lastModified": st.ModTime().UTC(),
        }
    }
    return c.JSON(http.StatusOK, out)
}

// RegenerateSitemap queues a run and answers immediately.
func (h *AdminHandler) RegenerateSitemap(c echo.Context) error {
    queued := h.Sitemap.Submit("admin request")
    return c.JSON(http.StatusAccepted, echo.Map{
        "message": "Sitemap regeneration started",
        "queued":  queued,
    })
}
