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
    msgPageRequired   = "Title, slug, and content are required"
    msgPageSlugExists = "A page with this slug already exists"
)

// pageFromFields mirrors movieFromFields for static pages.  isPublished
// defaults to true and accepts checkbox values.
func pageFromFields(f map[string]any) (model.StaticPage, string) {
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
    p := model.StaticPage{
        Title:           str("title"),
        Slug:            str("slug"),
        Content:         str("content"),
        MetaTitle:       opt("metaTitle"),
        MetaDescription: opt("metaDescription"),
        MetaKeywords:    opt("metaKeywords"),
        IsPublished:     true,
    }
    if v, ok := f["isPublished"]; ok {
        switch s := strings.ToLower(str("isPublished")); s {
        case "on", "yes":
            p.IsPublished = true
        default:
            p.IsPublished = cast.ToBool(v)
        }
    }
    if p.Title == "" || p.Slug == "" || p.Content == "" {
        return p, msgPageRequired
    }
    return p, ""
}

func (h *AdminHandler) pagesFailed(c echo.Context, what string, err error) error {
    h.Logs.Errorf("admin %s: %v", what, err)
    if storeUnavailable(err) {
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "service unavailable"})
    }
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to save page"})
}

// ListPages returns every static page, newest first.
func (h *AdminHandler) ListPages(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()
    pages, err := h.Pages.List(ctx)
    if err != nil {
        return h.pagesFailed(c, "list pages", err)
    }
    if pages == nil {
        pages = []model.StaticPage{}
    }
    return c.JSON(http.StatusOK, echo.Map{"pages": pages})
}

func (h *AdminHandler) CreatePage(c echo.Context) error {
    fields, err := readFields(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    p, msg := pageFromFields(fields)
    if msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg, "page": fields})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()
    exists, err := h.Pages.SlugExists(ctx, p.Slug, 0)
    if err != nil {
        return h.pagesFailed(c, "create page", err)
    }
    if exists {
        return c.JSON(http.StatusConflict, echo.Map{"error": msgPageSlugExists, "page": fields})
    }
    if err := h.Pages.Create(ctx, &p); err != nil {
        if errors.Is(err, repository.ErrSlugExists) {
            return c.JSON(http.StatusConflict, echo.Map{"error": msgPageSlugExists, "page": fields})
        }
        return h.pagesFailed(c, "create page", err)
    }
    h.Logs.Infof("static page %d (%s) created", p.ID, p.Slug)
    h.contentChanged("page created")
    return c.JSON(http.StatusCreated, echo.Map{"message": "Page created successfully", "page": p})
}

func (h *AdminHandler) UpdatePage(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    fields, err := readFields(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    p, msg := pageFromFields(fields)
    if msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg, "page": fields})
    }
    p.ID = id

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()
    exists, err := h.Pages.SlugExists(ctx, p.Slug, id)
    if err != nil {
        return h.pagesFailed(c, "update page", err)
    }
    if exists {
        return c.JSON(http.StatusConflict, echo.Map{"error": msgPageSlugExists, "page": fields})
    }
    switch err := h.Pages.Update(ctx, &p); {
    case errors.Is(err, repository.ErrPageNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "Page not found"})
    case errors.Is(err, repository.ErrSlugExists):
        return c.JSON(http.StatusConflict, echo.Map{"error": msgPageSlugExists, "page": fields})
    case err != nil:
        return h.pagesFailed(c, "update page", err)
    }
    h.Logs.Infof("static page %d (%s) updated", id, p.Slug)
    h.contentChanged("page updated")
    return c.JSON(http.StatusOK, echo.Map{"message": "Page updated successfully", "page": p})
}

func (h *AdminHandler) DeletePage(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()
    if err := h.Pages.Delete(ctx, id); err != nil {
        if errors.Is(err, repository.ErrPageNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "Page not found"})
        }
        return h.pagesFailed(c, "delete page", err)
    }
    h.Logs.Infof("static page %d deleted", id)
    h.contentChanged("page deleted")
    return c.JSON(http.StatusOK, echo.Map{"message": "Page deleted successfully"})
}
