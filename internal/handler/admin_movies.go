package handler

import (
    "context"
    "errors"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"
    "github.com/spf13/cast"

    "github.com/kailashsur/filmyfly/internal/model"
    "github.com/kailashsur/filmyfly/internal/repository"
)

const (
    adminMoviesPageSize   = 10
    adminCategoryPageSize = 20

    msgMovieRequired   = "Title and slug are required"
    msgMovieSlugExists = "A movie with this slug already exists"
)

// movieFromFields builds a movie from a decoded request body.  The returned
// message is empty when the input is valid.
func movieFromFields(f map[string]any) (model.Movie, string) {
    str := func(k string) string {
        s, _ := cast.ToStringE(f[k])
        return strings.TrimSpace(s)
    }
    opt := func(k string) *string {
        if s := str(k); s != "" {
            return &s
        }
        return nil
    }

    m := model.Movie{
        Title:       str("title"),
        Slug:        str("slug"),
        Description: opt("description"),
        Thumbnail:   opt("thumbnail"),
        Genre:       opt("genre"),
        Languages:   opt("languages"),
        Duration:    opt("duration"),
        Cast:        opt("cast"),
        Sizes:       opt("sizes"),
        DownloadURL: opt("downloadUrl"),
        Screenshot:  opt("screenshot"),
        Keywords:    opt("keywords"),
    }
    if m.Title == "" || m.Slug == "" {
        return m, msgMovieRequired
    }
    if s := str("releaseYear"); s != "" {
        y, err := cast.ToIntE(s)
        if err != nil {
            return m, "Release year must be a number"
        }
        m.ReleaseYear = &y
    }
    if s := str("categoryId"); s != "" {
        id, err := cast.ToUint64E(s)
        if err != nil || id == 0 {
            return m, "Invalid category"
        }
        m.CategoryID = &id
    }
    return m, ""
}

func (h *AdminHandler) checkCategory(ctx context.Context, m model.Movie) (string, error) {
    if m.CategoryID == nil {
        return "", nil
    }
    _, err := h.Categories.GetByID(ctx, *m.CategoryID)
    if errors.Is(err, repository.ErrCategoryNotFound) {
        return "Category not found", nil
    }
    return "", err
}

// ListMovies pages through every movie, newest first.  Count and list each
// get their own timeout; a store that cannot be reached answers 503.
func (h *AdminHandler) ListMovies(c echo.Context) error {
    page := pageParam(c)

    countCtx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    total, err := h.Movies.Count(countCtx)
    cancel()
    if err != nil {
        return h.moviesFailed(c, "count movies", err)
    }

    listCtx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()
    movies, err := h.Movies.ListRecent(listCtx, adminMoviesPageSize, (page-1)*adminMoviesPageSize)
    if err != nil {
        return h.moviesFailed(c, "list movies", err)
    }
    trending, err := h.Trending.MovieIDs(listCtx)
    if err != nil {
        h.Logs.Warnf("admin movies: trending ids: %v", err)
        trending = map[uint64]bool{}
    }
    if movies == nil {
        movies = []model.Movie{}
    }

    type row struct {
        model.Movie
        Trending bool `json:"trending"`
    }
    rows := make([]row, 0, len(movies))
    for _, m := range movies {
        rows = append(rows, row{Movie: m, Trending: trending[m.ID]})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "movies":     rows,
        "page":       page,
        "totalPages": totalPages(total, adminMoviesPageSize),
        "total":      total,
    })
}

func (h *AdminHandler) moviesFailed(c echo.Context, what string, err error) error {
    h.Logs.Errorf("admin %s: %v", what, err)
    if storeUnavailable(err) {
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "service unavailable"})
    }
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to load movies"})
}

// CreateMovie validates and inserts a movie.  Failed validation echoes the
// submitted fields back so the form can be refilled.
func (h *AdminHandler) CreateMovie(c echo.Context) error {
    fields, err := readFields(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    m, msg := movieFromFields(fields)
    if msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg, "movie": fields})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    if msg, err := h.checkCategory(ctx, m); err != nil {
        return h.moviesFailed(c, "create movie", err)
    } else if msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg, "movie": fields})
    }
    exists, err := h.Movies.SlugExists(ctx, m.Slug, 0)
    if err != nil {
        return h.moviesFailed(c, "create movie", err)
    }
    if exists {
        return c.JSON(http.StatusConflict, echo.Map{"error": msgMovieSlugExists, "movie": fields})
    }
    if err := h.Movies.Create(ctx, &m); err != nil {
        if errors.Is(err, repository.ErrSlugExists) {
            return c.JSON(http.StatusConflict, echo.Map{"error": msgMovieSlugExists, "movie": fields})
        }
        return h.moviesFailed(c, "create movie", err)
    }

    h.Logs.Infof("movie %d (%s) created", m.ID, m.Slug)
    h.contentChanged("movie created")
    return c.JSON(http.StatusCreated, echo.Map{"message": "Movie created successfully", "movie": m})
}

// UpdateMovie overwrites a movie.  The slug must not belong to another id.
func (h *AdminHandler) UpdateMovie(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    fields, err := readFields(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    m, msg := movieFromFields(fields)
    if msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg, "movie": fields})
    }
    m.ID = id

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    if msg, err := h.checkCategory(ctx, m); err != nil {
        return h.moviesFailed(c, "update movie", err)
    } else if msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg, "movie": fields})
    }
    exists, err := h.Movies.SlugExists(ctx, m.Slug, id)
    if err != nil {
        return h.moviesFailed(c, "update movie", err)
    }
    if exists {
        return c.JSON(http.StatusConflict, echo.Map{"error": msgMovieSlugExists, "movie": fields})
    }
    switch err := h.Movies.Update(ctx, &m); {
    case errors.Is(err, repository.ErrMovieNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "Movie not found"})
    case errors.Is(err, repository.ErrSlugExists):
        return c.JSON(http.StatusConflict, echo.Map{"error": msgMovieSlugExists, "movie": fields})
    case err != nil:
        return h.moviesFailed(c, "update movie", err)
    }

    updated, err := h.Movies.GetByID(ctx, id)
    if err != nil {
        updated = m
    }
    h.Logs.Infof("movie %d (%s) updated", id, m.Slug)
    h.contentChanged("movie updated")
    return c.JSON(http.StatusOK, echo.Map{"message": "Movie updated successfully", "movie": updated})
}

// DeleteMovie removes a movie and its trending entry.
func (h *AdminHandler) DeleteMovie(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    if err := h.Movies.Delete(ctx, id); err != nil {
        if errors.Is(err, repository.ErrMovieNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "Movie not found"})
        }
        return h.moviesFailed(c, "delete movie", err)
    }
    h.Logs.Infof("movie %d deleted", id)
    h.contentChanged("movie deleted")
    return c.JSON(http.StatusOK, echo.Map{"message": "Movie deleted successfully"})
}

// MoviesByCategory lists one category for the back office.
func (h *AdminHandler) MoviesByCategory(c echo.Context) error {
    ref := strings.TrimSpace(c.QueryParam("categoryId"))
    if ref == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "categoryId is required"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    cat, err := h.Categories.Find(ctx, ref)
    if errors.Is(err, repository.ErrCategoryNotFound) {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "Category not found"})
    }
    if err != nil {
        return h.moviesFailed(c, "category lookup", err)
    }
    page := pageParam(c)
    total, err := h.Movies.CountByCategory(ctx, cat.ID)
    if err != nil {
        return h.moviesFailed(c, "count category movies", err)
    }
    movies, err := h.Movies.ListByCategory(ctx, cat.ID, adminCategoryPageSize, (page-1)*adminCategoryPageSize)
    if err != nil {
        return h.moviesFailed(c, "list category movies", err)
    }
    if movies == nil {
        movies = []model.Movie{}
    }
    return c.JSON(http.StatusOK, echo.Map{
        "category":   cat,
        "movies":     movies,
        "page":       page,
        "totalPages": totalPages(total, adminCategoryPageSize),
        "total":      total,
    })
}

// AddTrending promotes a movie to the end of the trending list.
func (h *AdminHandler) AddTrending(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    if _, err := h.Movies.GetByID(ctx, id); err != nil {
        if errors.Is(err, repository.ErrMovieNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "Movie not found"})
        }
        return h.moviesFailed(c, "add trending", err)
    }
    t, err := h.Trending.Add(ctx, id)
    if err != nil {
        if errors.Is(err, repository.ErrAlreadyTrending) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "Movie is already in trending"})
        }
        return h.moviesFailed(c, "add trending", err)
    }
    h.contentChanged("trending added")
    return c.JSON(http.StatusCreated, echo.Map{"message": "Movie added to trending", "trending": t})
}

// RemoveTrending drops a movie from the trending list by movie id.
func (h *AdminHandler) RemoveTrending(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    removed, err := h.Trending.Remove(ctx, id)
    if err != nil {
        return h.moviesFailed(c, "remove trending", err)
    }
    if !removed {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "Movie is not in trending"})
    }
    h.contentChanged("trending removed")
    return c.JSON(http.StatusOK, echo.Map{"message": "Movie removed from trending"})
}
