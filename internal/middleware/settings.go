package middleware

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/kailashsur/filmyfly/internal/view"
)

// SettingsSource supplies the site settings exposed to every public page.
type SettingsSource interface {
	Values(ctx context.Context) (map[string]string, error)
}

type warner interface {
	Warnf(format string, args ...any)
}

// InjectSettings loads the site settings once per request and stores them
// under view.SettingsKey for the renderer.  A lookup failure is logged and
// the page renders with an empty set.
func InjectSettings(src SettingsSource, log warner) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			vals, err := src.Values(c.Request().Context())
			if err != nil {
				log.Warnf("load settings for %s: %v", c.Request().URL.Path, err)
				vals = map[string]string{}
			}
			c.Set(view.SettingsKey, vals)
			return next(c)
		}
	}
}
