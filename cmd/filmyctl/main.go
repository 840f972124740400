// Command filmyctl runs FilmyFly maintenance tasks against the configured
// database: migrations, seeding, bulk imports, sitemap generation and admin
// account management.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/kailashsur/filmyfly/internal/app"
	"github.com/kailashsur/filmyfly/internal/applog"
	"github.com/kailashsur/filmyfly/internal/database"
	"github.com/kailashsur/filmyfly/internal/importer"
	"github.com/kailashsur/filmyfly/internal/seed"
	"github.com/kailashsur/filmyfly/internal/service"
)

type CLI struct {
	EnvFile string `name:"env-file" help:"Load environment variables from this file." default:".env" type:"path"`

	Migrate     MigrateCmd     `cmd:"" help:"Apply, roll back or inspect schema migrations."`
	Seed        SeedCmd        `cmd:"" help:"Upsert the default categories and settings."`
	Import      ImportCmd      `cmd:"" help:"Bulk import movies from a CSV or JSON file."`
	Sitemap     SitemapCmd     `cmd:"" help:"Generate sitemap.xml now."`
	CreateAdmin CreateAdminCmd `cmd:"" name:"create-admin" help:"Create a back office account or reset its password."`
}

// env is shared by every command.
type env struct {
	ctx  context.Context
	opts app.Options
	out  io.Writer
}

func (e *env) openDB() (*sql.DB, error) {
	db, err := database.Open(e.opts.Config)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

// migrated opens the database and brings the schema up to date.
func (e *env) migrated() (*sql.DB, error) {
	db, err := e.openDB()
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db, e.opts.Config.DBDriver); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

type MigrateCmd struct {
	Direction string `arg:"" optional:"" enum:"up,down,status" default:"up" help:"up, down or status."`
}

func (c *MigrateCmd) Run(e *env) error {
	db, err := e.openDB()
	if err != nil {
		return err
	}
	defer db.Close()
	m := database.NewMigrationManager(db, e.opts.Config.DBDriver)
	switch c.Direction {
	case "down":
		err = m.Down()
	case "status":
		err = m.Status()
	default:
		err = m.Up()
	}
	if err != nil {
		return err
	}
	v, err := m.Version()
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "schema version %d\n", v)
	return nil
}

type SeedCmd struct{}

func (c *SeedCmd) Run(e *env) error {
	db, err := e.migrated()
	if err != nil {
		return err
	}
	defer db.Close()
	repos := app.NewRepositories(db)
	r, err := seed.Run(e.ctx, repos.Categories, repos.Settings)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "categories: %d created, %d updated; settings: %d upserted\n",
		r.CategoriesCreated, r.CategoriesUpdated, r.Settings)
	return nil
}

type ImportCmd struct {
	File            string        `arg:"" help:"CSV or JSON file to import, - for stdin."`
	BatchSize       int           `name:"batch-size" default:"50" help:"Rows per batch."`
	Pause           time.Duration `default:"100ms" help:"Pause between batches."`
	KeepPlaceholder bool          `name:"keep-placeholder" help:"Store the scraped placeholder description as is."`
}

func (c *ImportCmd) Run(e *env) error {
	var (
		data []byte
		err  error
	)
	if c.File == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(c.File)
	}
	if err != nil {
		return err
	}
	recs, format, err := importer.Decode(string(data))
	if err != nil {
		return err
	}

	db, err := e.migrated()
	if err != nil {
		return err
	}
	defer db.Close()

	im := importer.New(app.NewRepositories(db).Movies)
	im.DropPlaceholder = !c.KeepPlaceholder
	fmt.Fprintf(e.out, "importing %d %s record(s)\n", len(recs), format)
	res, err := im.ImportBatches(e.ctx, recs, importer.BatchOptions{
		Size:  c.BatchSize,
		Pause: c.Pause,
		Progress: func(batch int, sofar importer.Result) {
			fmt.Fprintf(e.out, "batch %d: %d added, %d failed\n", batch, sofar.Success, sofar.Failed)
		},
	})
	for _, line := range res.Messages() {
		fmt.Fprintln(e.out, line)
	}
	for _, line := range res.ErrorLines() {
		fmt.Fprintln(e.out, "  "+line)
	}
	return err
}

type SitemapCmd struct{}

func (c *SitemapCmd) Run(e *env) error {
	db, err := e.migrated()
	if err != nil {
		return err
	}
	defer db.Close()
	logs, err := applog.Open(e.opts.Log)
	if err != nil {
		return err
	}
	defer logs.Close()

	repos := app.NewRepositories(db)
	gen := app.NewGenerator(repos, service.NewSettings(repos.Settings), e.opts.Sitemap, logs)
	res, err := gen.Generate(e.ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "wrote %s: %d urls, %d bytes\n", res.Path, res.URLs, res.Bytes)
	for _, w := range res.Warnings {
		fmt.Fprintln(e.out, "warning: "+w)
	}
	return nil
}

type CreateAdminCmd struct {
	Email    string `required:"" help:"Account email."`
	Password string `required:"" help:"Account password (min 8 characters)." env:"FILMYFLY_ADMIN_PASSWORD"`
	Reset    bool   `help:"Reset the password of an existing account."`
}

func (c *CreateAdminCmd) Run(e *env) error {
	db, err := e.migrated()
	if err != nil {
		return err
	}
	defer db.Close()
	admins := app.NewRepositories(db).Admins
	cost := e.opts.Config.BcryptCost
	if c.Reset {
		if err := admins.SetPassword(e.ctx, c.Email, c.Password, cost); err != nil {
			return err
		}
		fmt.Fprintf(e.out, "password reset for %s\n", c.Email)
		return nil
	}
	id, err := admins.Create(e.ctx, c.Email, c.Password, cost)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "admin %s created with id %d\n", c.Email, id)
	return nil
}

// envFileArg finds --env-file in args ahead of parsing, so flags with env
// defaults see the variables the file sets.
func envFileArg(args []string) string {
	for i, a := range args {
		switch {
		case a == "--":
			return ".env"
		case a == "--env-file" && i+1 < len(args):
			return args[i+1]
		case strings.HasPrefix(a, "--env-file="):
			return strings.TrimPrefix(a, "--env-file=")
		}
	}
	return ".env"
}

func main() {
	_ = godotenv.Load(envFileArg(os.Args[1:]))

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("filmyctl"),
		kong.Description("FilmyFly maintenance commands."),
		kong.UsageOnError(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := kctx.Run(&env{ctx: ctx, opts: app.LoadOptions(), out: os.Stdout})
	kctx.FatalIfErrorf(err)
}
