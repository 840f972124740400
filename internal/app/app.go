// Package app wires the FilmyFly service together.  New builds every
// component in dependency order, Start launches the background workers and
// Close tears everything down in reverse.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/kailashsur/filmyfly/internal/applog"
	"github.com/kailashsur/filmyfly/internal/config"
	"github.com/kailashsur/filmyfly/internal/database"
	"github.com/kailashsur/filmyfly/internal/handler"
	"github.com/kailashsur/filmyfly/internal/importer"
	"github.com/kailashsur/filmyfly/internal/middleware"
	"github.com/kailashsur/filmyfly/internal/queue"
	"github.com/kailashsur/filmyfly/internal/repository"
	"github.com/kailashsur/filmyfly/internal/router"
	"github.com/kailashsur/filmyfly/internal/scheduler"
	"github.com/kailashsur/filmyfly/internal/service"
	"github.com/kailashsur/filmyfly/internal/sitemap"
	"github.com/kailashsur/filmyfly/internal/view"
)

// Options carries every configuration section.
type Options struct {
	Config    config.Config
	Log       config.LogConfig
	Redis     config.RedisConfig
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	Sitemap   config.SitemapConfig
}

// LoadOptions reads all sections from the environment.
func LoadOptions() Options {
	cfg := config.Load()
	return Options{
		Config:    cfg,
		Log:       config.LoadLogConfig(),
		Redis:     config.LoadRedisConfig(),
		Cache:     config.LoadCacheConfig(),
		RateLimit: config.LoadRateLimitConfig(),
		Sitemap:   config.LoadSitemapConfig(cfg.PublicDir),
	}
}

// Repositories groups the content store.
type Repositories struct {
	Movies     *repository.MovieRepo
	Categories *repository.CategoryRepo
	Trending   *repository.TrendingRepo
	Pages      *repository.StaticPageRepo
	Settings   *repository.SettingRepo
	Admins     *repository.AdminUserRepo
	Tokens     *repository.TokenRepo
}

func NewRepositories(db *sql.DB) Repositories {
	return Repositories{
		Movies:     repository.NewMovieRepo(db),
		Categories: repository.NewCategoryRepo(db),
		Trending:   repository.NewTrendingRepo(db),
		Pages:      repository.NewStaticPageRepo(db),
		Settings:   repository.NewSettingRepo(db),
		Admins:     repository.NewAdminUserRepo(db),
		Tokens:     repository.NewTokenRepo(db),
	}
}

// NewGenerator builds the sitemap generator over the content store.
func NewGenerator(repos Repositories, settings *service.Settings, cfg config.SitemapConfig, log sitemap.Logger) *sitemap.Generator {
	var pinger *sitemap.Pinger
	if cfg.PingEnabled && cfg.PingURL != "" {
		pinger = sitemap.NewPinger(cfg.PingURL, cfg.PingTimeout)
	}
	return sitemap.NewGenerator(sitemap.Sources{
		Settings:   settings,
		Pages:      repos.Pages,
		Categories: repos.Categories,
		Movies:     repos.Movies,
	}, cfg.Path, log, pinger)
}

type App struct {
	opts Options

	Log         *applog.Logger
	DB          *sql.DB
	Redis       *redis.Client
	Repos       Repositories
	Settings    *service.Settings
	Generator   *sitemap.Generator
	Regenerator *sitemap.Regenerator
	Submitter   sitemap.Submitter
	Scheduler   *scheduler.Scheduler
	Echo        *echo.Echo

	closers []func() error
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// New constructs the service.  On error everything built so far is closed.
func New(opts Options) (*App, error) {
	a := &App{opts: opts}
	if err := a.build(); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) build() (err error) {
	opts := a.opts

	if a.Log, err = applog.Open(opts.Log); err != nil {
		return fmt.Errorf("open logs: %w", err)
	}
	a.onClose(a.Log.Close)

	if a.DB, err = database.Open(opts.Config); err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	a.onClose(a.DB.Close)
	if err = database.Migrate(a.DB, opts.Config.DBDriver); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	if a.Redis = config.NewRedisClient(opts.Redis); a.Redis != nil {
		a.onClose(a.Redis.Close)
	} else if opts.Redis.Enabled {
		a.Log.Warnf("redis at %s unreachable; page cache and login rate limit disabled", opts.Redis.Addr)
	}

	a.Repos = NewRepositories(a.DB)
	a.Settings = service.NewSettings(a.Repos.Settings)
	a.Generator = NewGenerator(a.Repos, a.Settings, opts.Sitemap, a.Log)
	a.Regenerator = sitemap.NewRegenerator(a.Generator, a.Log, opts.Sitemap.Timeout, 1)
	a.onClose(func() error { a.Regenerator.Close(); return nil })

	a.Submitter = a.Regenerator
	if opts.Sitemap.Queue == "amqp" {
		broker := sitemap.NewBrokerSubmitter(queue.NewPublisher(opts.Sitemap.AMQPURL, opts.Sitemap.QueueName), a.Regenerator, a.Log)
		a.onClose(func() error { broker.Close(); return nil })
		a.Submitter = broker
	}

	a.Scheduler = scheduler.NewScheduler(a.Log, opts.Sitemap.Timeout)
	if opts.Sitemap.Cron != "" {
		if err = a.Scheduler.AddJob(opts.Sitemap.Cron, scheduler.NewSitemapJob(a.Submitter)); err != nil {
			return err
		}
	}
	a.onClose(func() error { a.Scheduler.Stop(); return nil })

	a.Echo, err = a.newEcho()
	return err
}

func (a *App) onClose(fn func() error) { a.closers = append(a.closers, fn) }

func (a *App) newEcho() (*echo.Echo, error) {
	renderer, err := view.NewRenderer()
	if err != nil {
		return nil, err
	}
	cfg := a.opts.Config

	e := echo.New()
	e.HideBanner = true
	e.Renderer = renderer
	e.HTTPErrorHandler = handler.HTTPErrorHandler(a.Log)
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.LoggerWithConfig(echomw.LoggerConfig{Output: a.Log.Writer()}))

	imp := importer.New(a.Repos.Movies)
	public := handler.NewPublicHandler(a.Repos.Movies, a.Repos.Categories, a.Repos.Trending, a.Repos.Pages,
		a.Settings, a.Generator, a.Log)
	admin := handler.NewAdminHandler(handler.AdminDeps{
		DB:          a.DB,
		Driver:      cfg.DBDriver,
		Movies:      a.Repos.Movies,
		Categories:  a.Repos.Categories,
		Trending:    a.Repos.Trending,
		Pages:       a.Repos.Pages,
		Settings:    a.Settings,
		Importer:    imp,
		Sitemap:     a.Submitter,
		SitemapPath: a.opts.Sitemap.Path,
		Redis:       a.Redis,
		Cache:       middleware.NewPageCache(a.opts.Cache, a.Redis),
		Logs:        a.Log,
		LogTail:     a.opts.Log.TailBytes,
	})
	auth := handler.NewAuthHandler(cfg, a.Repos.Admins, a.Repos.Tokens, a.Log)

	var limiter echo.MiddlewareFunc
	if a.Redis != nil && a.opts.RateLimit.Enabled {
		limiter = middleware.NewLoginLimiter(a.opts.RateLimit, a.Redis, a.Log)
	}

	router.RegisterRoutes(e)
	router.RegisterAdmin(e, admin, auth, cfg.JWTSecret, limiter)
	router.RegisterPublic(e, public, filepath.Join(cfg.PublicDir, "static"),
		middleware.InjectSettings(a.Settings, a.Log),
		middleware.NewRedisCache(a.opts.Cache, a.Redis),
	)
	return e, nil
}

// Start launches the sitemap worker, the broker consumer, the scheduler and
// an initial sitemap run.  It does not serve HTTP.
func (a *App) Start(ctx context.Context) {
	if a.started {
		return
	}
	a.started = true
	ctx, a.cancel = context.WithCancel(ctx)

	a.Regenerator.Start(ctx)
	if a.opts.Sitemap.Queue == "amqp" {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			err := queue.Consume(ctx, a.opts.Sitemap.AMQPURL, a.opts.Sitemap.QueueName,
				sitemap.HandleRequested(a.Regenerator, a.Log), a.Log)
			if err != nil && !errors.Is(err, context.Canceled) {
				a.Log.Errorf("sitemap consumer stopped: %v", err)
			}
		}()
	}
	a.Scheduler.Start()
	a.Regenerator.Submit("startup")
}

// Run starts the workers and serves HTTP until ctx is cancelled, then shuts
// the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	a.Start(ctx)

	addr := ":" + a.opts.Config.Port
	errCh := make(chan error, 1)
	go func() {
		a.Log.Infof("listening on %s (env=%s, db=%s)", addr, a.opts.Config.Env, a.opts.Config.DBDriver)
		if err := a.Echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.Log.Infof("shutting down")
	return a.Echo.Shutdown(shutdownCtx)
}

// Close stops background work and releases resources in reverse order of
// construction.  It is safe to call more than once.
func (a *App) Close() error {
	if a.cancel != nil {
		a.cancel()
		a.wg.Wait()
		a.cancel = nil
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
