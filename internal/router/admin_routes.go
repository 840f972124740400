package router

import (
	"github.com/labstack/echo/v4"

	"github.com/kailashsur/filmyfly/internal/handler"
	"github.com/kailashsur/filmyfly/internal/middleware"
	"github.com/kailashsur/filmyfly/internal/model"
)

// RegisterAdmin registers the JSON back office under /admin.  Login,
// refresh and logout are open; everything else requires an ADMIN access
// token.  loginLimit guards the login route and may be nil.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, auth *handler.AuthHandler, jwtSecret string, loginLimit echo.MiddlewareFunc) {
	if loginLimit != nil {
		e.POST("/admin/login", auth.Login, loginLimit)
	} else {
		e.POST("/admin/login", auth.Login)
	}
	e.POST("/admin/refresh", auth.Refresh)
	e.POST("/admin/logout", auth.Logout)

	g := e.Group(
		"/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	g.GET("", a.Dashboard)
	g.GET("/me", auth.Me)
	g.GET("/system-check", a.SystemCheck)

	// ---- Movies ----
	g.GET("/movies", a.ListMovies)
	g.POST("/movies", a.CreateMovie)
	g.POST("/movies/bulk", a.BulkImport)
	g.GET("/movies/by-category", a.MoviesByCategory)
	g.POST("/movies/trending/:id", a.AddTrending)
	g.DELETE("/movies/trending/:id", a.RemoveTrending)
	g.PUT("/movies/:id", a.UpdateMovie)
	g.DELETE("/movies/:id", a.DeleteMovie)

	// ---- Static pages ----
	g.GET("/static-pages", a.ListPages)
	g.POST("/static-pages", a.CreatePage)
	g.PUT("/static-pages/:id", a.UpdatePage)
	g.DELETE("/static-pages/:id", a.DeletePage)

	// ---- Settings, logs, sitemap ----
	g.GET("/settings", a.GetSettings)
	g.PUT("/settings", a.SaveSettings)
	g.GET("/logs/data", a.LogsData)
	g.POST("/logs/clear", a.ClearLogs)
	g.GET("/logs/download", a.DownloadLogs)
	g.POST("/sitemap/regenerate", a.RegenerateSitemap)
}
