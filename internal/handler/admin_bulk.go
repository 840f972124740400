package handler

import (
    "context"
    "encoding/json"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/kailashsur/filmyfly/internal/importer"
)

// bulkTimeout bounds one bulk import request.
const bulkTimeout = 2 * time.Minute

// moviesData extracts the moviesData field.  In a JSON body it may be a
// string holding CSV or JSON text, or the JSON array itself.
func moviesData(c echo.Context) (string, error) {
    req := c.Request()
    if !strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
        return c.FormValue("moviesData"), nil
    }
    var body map[string]json.RawMessage
    if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
        return "", err
    }
    raw := body["moviesData"]
    if len(raw) == 0 || string(raw) == "null" {
        return "", nil
    }
    var s string
    if err := json.Unmarshal(raw, &s); err == nil {
        return s, nil
    }
    return string(raw), nil
}

// BulkImport decodes a CSV or JSON batch and inserts every valid row.  Row
// failures are reported, they never abort the batch.
func (h *AdminHandler) BulkImport(c echo.Context) error {
    text, err := moviesData(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), bulkTimeout)
    defer cancel()

    res, err := h.Importer.ImportText(ctx, text)
    if errors.Is(err, importer.ErrNoData) || errors.Is(err, importer.ErrNoValidRecords) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "Error parsing data: " + err.Error()})
    }

    h.Logs.Infof("bulk import: %d total, %d added, %d failed", res.Total, res.Success, res.Failed)
    if res.Success > 0 {
        h.contentChanged("bulk import")
    }
    return c.JSON(http.StatusOK, echo.Map{
        "total":      res.Total,
        "success":    res.Success,
        "failed":     res.Failed,
        "errors":     res.Errors,
        "messages":   res.Messages(),
        "errorLines": res.ErrorLines(),
    })
}

