package database

import (
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/mysql/*.sql migrations/sqlite3/*.sql
var embedMigrations embed.FS

// goose keeps its filesystem and dialect in package state; serialise access.
var gooseMu sync.Mutex

// MigrationManager applies the embedded schema for one driver.
type MigrationManager struct {
	db     *sql.DB
	driver string
}

func NewMigrationManager(db *sql.DB, driver string) *MigrationManager {
	return &MigrationManager{db: db, driver: driver}
}

func (m *MigrationManager) dir() string { return "migrations/" + m.driver }

// with configures goose for this manager's dialect and runs fn.
func (m *MigrationManager) with(fn func() error) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect(m.driver); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return fn()
}

func (m *MigrationManager) Up() error {
	return m.with(func() error {
		if err := goose.Up(m.db, m.dir()); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		return nil
	})
}

func (m *MigrationManager) Down() error {
	return m.with(func() error {
		if err := goose.Down(m.db, m.dir()); err != nil {
			return fmt.Errorf("failed to rollback migration: %w", err)
		}
		return nil
	})
}

func (m *MigrationManager) Status() error {
	return m.with(func() error {
		if err := goose.Status(m.db, m.dir()); err != nil {
			return fmt.Errorf("failed to get migration status: %w", err)
		}
		return nil
	})
}

func (m *MigrationManager) Version() (int64, error) {
	var v int64
	err := m.with(func() error {
		var err error
		v, err = goose.GetDBVersion(m.db)
		if err != nil {
			return fmt.Errorf("failed to get database version: %w", err)
		}
		return nil
	})
	return v, err
}

// Migrate brings the schema up to date.
func Migrate(db *sql.DB, driver string) error {
	return NewMigrationManager(db, driver).Up()
}
