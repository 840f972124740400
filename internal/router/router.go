package router // package router defines how HTTP routes are registered

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/kailashsur/filmyfly/internal/handler" // handlers implementing each page
)

// RegisterRoutes registers the liveness probe.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the HTML catalog.  mw runs on every page route,
// typically settings injection followed by the page cache.  Static routes
// are registered before /:slug; echo matches static segments first.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, staticDir string, mw ...echo.MiddlewareFunc) {
	e.GET("/", p.Home, mw...)
	e.GET("/page-cat/:id/:slug", p.Category, mw...)
	e.GET("/page-cat/:id", p.Category, mw...)
	e.GET("/search", p.Search, mw...)
	e.GET("/site-1", p.Search, mw...)
	e.GET("/about", p.About, mw...)
	e.GET("/page-how-to-download-movie", p.HowToDownload, mw...)
	e.GET("/site-:slug", p.StaticPage, mw...)

	// Crawler files and JSON are served outside the page middleware chain.
	e.GET("/robots.txt", p.Robots)
	e.GET("/sitemap.xml", p.SitemapXML)
	e.GET("/api/categories", p.CategoriesJSON)
	if staticDir != "" {
		e.Static("/static", staticDir)
	}

	// Catch-all movie route; reserved slugs are rejected in the handler.
	e.GET("/:slug", p.Movie, mw...)
}
