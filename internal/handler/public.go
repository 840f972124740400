package handler

import (
    "context"
    "errors"
    "net/http"
    "net/url"
    "os"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/kailashsur/filmyfly/internal/model"
    "github.com/kailashsur/filmyfly/internal/repository"
    "github.com/kailashsur/filmyfly/internal/seotag"
    "github.com/kailashsur/filmyfly/internal/service"
    "github.com/kailashsur/filmyfly/internal/sitemap"
    "github.com/kailashsur/filmyfly/internal/view"
)

const (
    homePageSize     = 50
    categoryPageSize = 20
    searchPageSize   = 20
    relatedLimit     = 10

    searchFailed = "An error occurred while searching. Please try again."
)

// reservedSlugs never resolve to a movie.
var reservedSlugs = map[string]bool{
    "admin":                      true,
    "about":                      true,
    "api":                        true,
    "page-how-to-download-movie": true,
    "search":                     true,
    "site-1":                     true,
    "site-privacy-policy":        true,
    "site-contact-us":            true,
    "site-about-us":              true,
    "site-dmca":                  true,
}

func isReservedSlug(slug string) bool {
    return reservedSlugs[slug] || strings.HasPrefix(slug, "site-") || strings.HasPrefix(slug, "page-")
}

// SitemapBuilder renders the sitemap in memory; *sitemap.Generator
// implements it.
type SitemapBuilder interface {
    Build(ctx context.Context) ([]byte, sitemap.Result, error)
    Path() string
}

// PublicHandler serves the HTML catalog.
type PublicHandler struct {
    Movies     *repository.MovieRepo
    Categories *repository.CategoryRepo
    Trending   *repository.TrendingRepo
    Pages      *repository.StaticPageRepo
    Settings   *service.Settings
    Sitemap    SitemapBuilder
    Log        Logger
}

func NewPublicHandler(movies *repository.MovieRepo, cats *repository.CategoryRepo, trending *repository.TrendingRepo,
    pages *repository.StaticPageRepo, settings *service.Settings, sm SitemapBuilder, log Logger) *PublicHandler {
    if movies == nil || cats == nil || trending == nil || pages == nil || settings == nil || sm == nil || log == nil {
        panic("nil dependency passed to NewPublicHandler")
    }
    return &PublicHandler{Movies: movies, Categories: cats, Trending: trending, Pages: pages, Settings: settings, Sitemap: sm, Log: log}
}

type homeData struct {
    Trending   []model.Movie
    Recent     []model.Movie
    Categories []model.Category
    Pagination view.Pagination
}

// Home lists the newest movies with the trending strip and category counts.
// Store failures are logged and render empty sections.
func (h *PublicHandler) Home(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()
    page := pageParam(c)

    data := homeData{Pagination: view.Pagination{Page: page, TotalPages: 1, BasePath: "/"}}
    total, err := h.Movies.Count(ctx)
    if err == nil {
        data.Recent, err = h.Movies.ListRecent(ctx, homePageSize, (page-1)*homePageSize)
    }
    if err != nil {
        h.Log.Errorf("home: list movies: %v", err)
    } else {
        data.Pagination.Total = total
        data.Pagination.TotalPages = totalPages(total, homePageSize)
    }

    if trending, err := h.Trending.List(ctx); err != nil {
        h.Log.Errorf("home: list trending: %v", err)
    } else {
        for _, t := range trending {
            if t.Movie != nil {
                data.Trending = append(data.Trending, *t.Movie)
            }
        }
    }
    if data.Categories, err = h.Categories.ListWithCounts(ctx); err != nil {
        h.Log.Errorf("home: list categories: %v", err)
    }

    return c.Render(http.StatusOK, "home", view.Page{
        Title:       "FilmyFly - Download Latest Bollywood, Hollywood, South Movies",
        Description: "Download the latest Bollywood, Hollywood, South Indian and dual audio movies.",
        Canonical:   "/",
        Data:        data,
    })
}

type categoryData struct {
    Category   model.Category
    Movies     []model.Movie
    Pagination view.Pagination
}

// Category lists one category.  The :id parameter may hold the numeric id
// or the slug.
func (h *PublicHandler) Category(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    cat, err := h.Categories.Find(ctx, c.Param("id"))
    if errors.Is(err, repository.ErrCategoryNotFound) {
        return notFoundPage(c)
    }
    if err != nil {
        return h.failPage(c, "category", err)
    }

    page := pageParam(c)
    total, err := h.Movies.CountByCategory(ctx, cat.ID)
    if err != nil {
        return h.failPage(c, "category count", err)
    }
    movies, err := h.Movies.ListByCategory(ctx, cat.ID, categoryPageSize, (page-1)*categoryPageSize)
    if err != nil {
        return h.failPage(c, "category movies", err)
    }

    base := c.Request().URL.Path
    return c.Render(http.StatusOK, "category", view.Page{
        Title:       cat.Name + " Movies - FilmyFly",
        Description: "Download " + cat.Name + " movies on FilmyFly.",
        Canonical:   base,
        Data: categoryData{
            Category:   cat,
            Movies:     movies,
            Pagination: view.Pagination{Page: page, TotalPages: totalPages(total, categoryPageSize), Total: total, BasePath: base},
        },
    })
}

type searchData struct {
    Query      string
    Error      string
    Movies     []model.Movie
    Pagination view.Pagination
}

// Search matches ?to-search= (or ?q=) against the movie text columns.
func (h *PublicHandler) Search(c echo.Context) error {
    q := strings.TrimSpace(c.QueryParam("to-search"))
    param := "to-search"
    if q == "" {
        q = strings.TrimSpace(c.QueryParam("q"))
        param = "q"
    }
    page := pageParam(c)
    data := searchData{
        Query:      q,
        Pagination: view.Pagination{Page: page, TotalPages: 1, BasePath: c.Request().URL.Path},
    }

    if q != "" {
        ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
        defer cancel()
        movies, total, err := h.Movies.Search(ctx, repository.MovieSearchQuery{Term: q, Page: page, PageSize: searchPageSize})
        if err != nil {
            h.Log.Errorf("search %q: %v", q, err)
            data.Error = searchFailed
        } else {
            data.Movies = movies
            data.Pagination.Total = total
            data.Pagination.TotalPages = totalPages(total, searchPageSize)
            data.Pagination.Query = param + "=" + url.QueryEscape(q)
        }
    }

    title := "Search Movies - FilmyFly"
    if q != "" {
        title = "Search results for " + q + " - FilmyFly"
    }
    return c.Render(http.StatusOK, "search", view.Page{Title: title, Canonical: "/search", Data: data})
}

// About and HowToDownload are fixed informational pages.
func (h *PublicHandler) About(c echo.Context) error {
    return c.Render(http.StatusOK, "info", view.Page{Title: "About Us - FilmyFly", Canonical: "/about", Data: "about"})
}

func (h *PublicHandler) HowToDownload(c echo.Context) error {
    return c.Render(http.StatusOK, "info", view.Page{
        Title:     "How to Download Movies - FilmyFly",
        Canonical: "/page-how-to-download-movie",
        Data:      "how-to-download",
    })
}

// StaticPage serves a published admin page at /site-:slug.
func (h *PublicHandler) StaticPage(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    p, err := h.Pages.GetPublishedBySlug(ctx, c.Param("slug"))
    if errors.Is(err, repository.ErrPageNotFound) {
        return notFoundPage(c)
    }
    if err != nil {
        return h.failPage(c, "static page", err)
    }
    title := p.Title + " - FilmyFly"
    if p.MetaTitle != nil && *p.MetaTitle != "" {
        title = *p.MetaTitle
    }
    return c.Render(http.StatusOK, "page", view.Page{
        Title:       title,
        Description: deref(p.MetaDescription),
        Keywords:    deref(p.MetaKeywords),
        Canonical:   "/site-" + p.Slug,
        Data:        struct{ Page model.StaticPage }{p},
    })
}

type movieData struct {
    Movie        model.Movie
    DownloadLink string
    LongTag      string
    Related      []model.Movie
}

// Movie renders the detail page of /:slug.
func (h *PublicHandler) Movie(c echo.Context) error {
    slug := c.Param("slug")
    if slug == "" || isReservedSlug(slug) {
        return notFoundPage(c)
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    m, err := h.Movies.GetBySlug(ctx, slug)
    if errors.Is(err, repository.ErrMovieNotFound) {
        return notFoundPage(c)
    }
    if err != nil {
        return h.failPage(c, "movie", err)
    }

    related, err := h.Movies.ListRelated(ctx, m.ID, relatedLimit)
    if err != nil {
        h.Log.Warnf("movie %s: related: %v", slug, err)
    }

    categoryName := ""
    if m.Category != nil {
        categoryName = m.Category.Name
    }
    data := movieData{
        Movie:   m,
        LongTag: seotag.LongTag(m.Title, m.ReleaseYear, categoryName, deref(m.Languages)),
        Related: related,
    }
    if dl := deref(m.DownloadURL); dl != "" {
        data.DownloadLink = h.downloadPrefix(c) + dl
    }

    title := m.Title
    if m.ReleaseYear != nil {
        title += " (" + strconv.Itoa(*m.ReleaseYear) + ")"
    }
    return c.Render(http.StatusOK, "movie", view.Page{
        Title:       title + " Full Movie Download - FilmyFly",
        Description: deref(m.Description),
        Keywords:    deref(m.Keywords),
        Canonical:   "/" + m.Slug,
        Data:        data,
    })
}

// downloadPrefix prefers the settings injected for this request.
func (h *PublicHandler) downloadPrefix(c echo.Context) string {
    if vals, ok := c.Get(view.SettingsKey).(map[string]string); ok && vals[service.KeyDownloadRedirectURL] != "" {
        return vals[service.KeyDownloadRedirectURL]
    }
    v, err := h.Settings.Get(c.Request().Context(), service.KeyDownloadRedirectURL)
    if err != nil || v == "" {
        return service.DefaultDownloadRedirectURL
    }
    return v
}

// Robots renders robots.txt for the configured site URL, or a minimal file
// when settings cannot be read.
func (h *PublicHandler) Robots(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()
    body := sitemap.FallbackRobots
    if site, err := h.Settings.SiteURL(ctx); err != nil {
        h.Log.Errorf("robots.txt: %v", err)
    } else {
        body = sitemap.Robots(site)
    }
    return c.String(http.StatusOK, body)
}

// SitemapXML serves the generated file.  Before the first generation
// completes it renders one in memory.
func (h *PublicHandler) SitemapXML(c echo.Context) error {
    if _, err := os.Stat(h.Sitemap.Path()); err == nil {
        c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=UTF-8")
        return c.File(h.Sitemap.Path())
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()
    data, _, err := h.Sitemap.Build(ctx)
    if err != nil {
        h.Log.Errorf("sitemap.xml: %v", err)
        return c.String(http.StatusInternalServerError, "Error generating sitemap")
    }
    return c.Blob(http.StatusOK, "application/xml; charset=UTF-8", data)
}

// CategoriesJSON lists every category.
func (h *PublicHandler) CategoriesJSON(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()
    cats, err := h.Categories.List(ctx)
    if err != nil {
        h.Log.Errorf("api categories: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch categories"})
    }
    if cats == nil {
        cats = []model.Category{}
    }
    return c.JSON(http.StatusOK, cats)
}

func (h *PublicHandler) failPage(c echo.Context, what string, err error) error {
    h.Log.Errorf("%s %s: %v", what, c.Request().URL.Path, err)
    return c.Render(http.StatusInternalServerError, "error", view.Page{Title: "Error - FilmyFly"})
}

func notFoundPage(c echo.Context) error {
    return c.Render(http.StatusNotFound, "notfound", view.Page{Title: "404 - Page Not Found"})
}
