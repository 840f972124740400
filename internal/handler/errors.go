package handler

import (
    "errors"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/kailashsur/filmyfly/internal/view"
)

// HTTPErrorHandler renders HTML error pages for the public site and JSON
// errors for /admin and /api.
func HTTPErrorHandler(log Logger) echo.HTTPErrorHandler {
    return func(err error, c echo.Context) {
        if c.Response().Committed {
            return
        }
        code := http.StatusInternalServerError
        msg := any(http.StatusText(code))
        var he *echo.HTTPError
        if errors.As(err, &he) {
            code = he.Code
            msg = he.Message
        }
        if code >= http.StatusInternalServerError {
            log.Errorf("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
        }

        path := c.Request().URL.Path
        if strings.HasPrefix(path, "/admin") || strings.HasPrefix(path, "/api") {
            if c.Request().Method == http.MethodHead {
                err = c.NoContent(code)
            } else {
                err = c.JSON(code, echo.Map{"error": msg})
            }
        } else if code == http.StatusNotFound || code == http.StatusMethodNotAllowed {
            err = notFoundPage(c)
        } else {
            err = c.Render(code, "error", view.Page{Title: "Error - FilmyFly"})
        }
        if err != nil {
            log.Errorf("error handler: %v", err)
        }
    }
}
