package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/kailashsur/filmyfly/internal/service"
)

// GetSettings lists every known setting with its description.
func (h *AdminHandler) GetSettings(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()
    entries, err := h.Settings.Entries(ctx)
    if err != nil {
        h.Logs.Errorf("admin settings: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to load settings"})
    }
    return c.JSON(http.StatusOK, echo.Map{"settings": entries})
}

// SaveSettings upserts the known keys.  Every page embeds settings, so the
// page cache is dropped; a new site URL also regenerates the sitemap.
func (h *AdminHandler) SaveSettings(c echo.Context) error {
    fields, err := readFields(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    siteChanged, err := h.Settings.Save(ctx, fields)
    if err != nil {
        if service.IsValidation(err) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
        }
        h.Logs.Errorf("save settings: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to save settings"})
    }
    if siteChanged {
        h.contentChanged("site url changed")
    } else {
        h.purgeCache()
    }
    entries, err := h.Settings.Entries(ctx)
    if err != nil {
        return c.JSON(http.StatusOK, echo.Map{"message": "Settings saved successfully"})
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "Settings saved successfully", "settings": entries})
}
