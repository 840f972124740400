package handler

import (
    "errors"
    "io/fs"
    "net/http"
    "os"

    "github.com/labstack/echo/v4"

    "github.com/kailashsur/filmyfly/internal/applog"
)

func (h *AdminHandler) tail(kind applog.Kind, empty string) (string, int64, error) {
    text, size, err := h.Logs.Tail(kind, h.LogTail)
    if errors.Is(err, fs.ErrNotExist) {
        return empty, 0, nil
    }
    if err != nil {
        return "", 0, err
    }
    if text == "" {
        text = empty
    }
    return text, size, nil
}

// LogsData returns the tail of app.log and error.log.
func (h *AdminHandler) LogsData(c echo.Context) error {
    app, appSize, err := h.tail(applog.KindApp, "No logs available yet.")
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to read logs"})
    }
    errs, errSize, err := h.tail(applog.KindError, "No error logs available yet.")
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to read logs"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "appLogs":               app,
        "errorLogs":             errs,
        "appLogSize":            appSize,
        "errorLogSize":          errSize,
        "appLogSizeFormatted":   applog.FormatBytes(appSize),
        "errorLogSizeFormatted": applog.FormatBytes(errSize),
    })
}

// ClearLogs truncates app.log, error.log or both (?type=all|app|error).
func (h *AdminHandler) ClearLogs(c echo.Context) error {
    var kinds []applog.Kind
    switch c.QueryParam("type") {
    case "", "all":
        kinds = []applog.Kind{applog.KindApp, applog.KindError}
    case "app":
        kinds = []applog.Kind{applog.KindApp}
    case "error":
        kinds = []applog.Kind{applog.KindError}
    default:
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid log type"})
    }
    if err := h.Logs.Clear(kinds...); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to clear logs"})
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "Logs cleared successfully"})
}

// DownloadLogs serves one log file as an attachment (?type=app|error).
func (h *AdminHandler) DownloadLogs(c echo.Context) error {
    kind := applog.KindApp
    switch c.QueryParam("type") {
    case "", "app":
    case "error":
        kind = applog.KindError
    default:
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid log type"})
    }
    path := h.Logs.Path(kind)
    if _, err := os.Stat(path); err != nil {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "Log file not found"})
    }
    return c.Attachment(path, string(kind)+".log")
}
