// internal/db/db.go
package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/codr1/courtbook/internal/config"
	"github.com/codr1/courtbook/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const defaultBusyTimeoutMS = 5000

type DB struct {
	*sqlx.DB
	*Queries
}

var _ store.Store = (*DB)(nil)

// New opens a SQLite database for the given data source name, applies
// embedded migrations, and returns a DB with queries bound to the
// connection. Every transaction begins IMMEDIATE so writers serialise on
// the database lock before they read.
func New(dataSourceName string) (*DB, error) {
	return open(dataSourceName, defaultBusyTimeoutMS)
}

// NewFromConfig creates the directory for the configured sqlite file if
// needed and opens it with New's guarantees.
func NewFromConfig(cfg *config.Config) (*DB, error) {
	switch cfg.Database.Driver {
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Filename), 0755); err != nil {
			return nil, fmt.Errorf("error creating database directory: %w", err)
		}
		busyTimeout := cfg.Database.BusyTimeoutMS
		if busyTimeout <= 0 {
			busyTimeout = defaultBusyTimeoutMS
		}
		return open(cfg.Database.Filename, busyTimeout)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
}

func open(dataSourceName string, busyTimeoutMS int) (*DB, error) {
	dataSourceName = withDSNParams(dataSourceName, map[string]string{
		"_fk":           "1",
		"_txlock":       "immediate",
		"_journal_mode": "WAL",
		"_busy_timeout": fmt.Sprint(busyTimeoutMS),
	})
	sqlDB, err := sqlx.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := runMigrations(sqlDB.DB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("error running migrations: %w", err)
	}

	return &DB{
		DB:      sqlDB,
		Queries: NewQueries(sqlDB),
	}, nil
}

// withDSNParams appends each parameter the DSN does not already set.
func withDSNParams(dataSourceName string, params map[string]string) string {
	keys := []string{"_fk", "_txlock", "_journal_mode", "_busy_timeout"}
	for _, key := range keys {
		value, ok := params[key]
		if !ok || strings.Contains(dataSourceName, key+"=") {
			continue
		}
		sep := "?"
		if strings.Contains(dataSourceName, "?") {
			sep = "&"
		}
		dataSourceName += sep + key + "=" + value
	}
	return dataSourceName
}

// MigrationSource exposes the embedded schema migrations to tooling.
func MigrationSource() (source.Driver, error) {
	return iofs.New(migrationsFS, "migrations")
}

// runMigrations applies the embedded SQL migrations from migrationsFS.
// A "no change" result is not treated as an error.
func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("could not create migrate driver: %w", err)
	}

	src, err := MigrationSource()
	if err != nil {
		return fmt.Errorf("could not create source: %w", err)
	}

	m, err := migrate.NewWithInstance(
		"iofs", src,
		"sqlite3", driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

// RunInTx runs fn in a transaction, committing only if fn returns nil.
func (db *DB) RunInTx(ctx context.Context, fn func(q store.Queries) error) error {
	tx, err := db.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(NewQueries(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("error rolling back: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing: %w", err)
	}

	return nil
}
