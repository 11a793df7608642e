// cmd/dbtools/migrate/main.go
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codr1/courtbook/internal/config"
	"github.com/codr1/courtbook/internal/db"
)

func main() {
	var (
		configPath     = flag.String("config", "", "Path to config.yaml (used when -db is empty)")
		dbPath         = flag.String("db", "", "Path to SQLite database")
		migrationsPath = flag.String("migrations", "", "Migrations directory (defaults to the embedded set)")
		command        = flag.String("command", "", "Command to run (up, down, version, force)")
		version        = flag.Int("version", -1, "Version for the force command")
	)
	flag.Parse()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *command == "" {
		flag.Usage()
		os.Exit(1)
	}

	path := *dbPath
	if path == "" {
		if *configPath == "" {
			log.Fatal().Msg("Either -db or -config is required")
		}
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}
		path = cfg.Database.Filename
	}

	absDB, err := filepath.Abs(path)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid database path")
	}
	if err := os.MkdirAll(filepath.Dir(absDB), 0755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create database directory")
	}

	m, err := newMigrate(*migrationsPath, "sqlite3://"+absDB)
	if err != nil {
		log.Fatal().Err(err).Msg("Migration init failed")
	}
	defer m.Close()

	switch *command {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal().Err(err).Msg("Migration up failed")
		}
		log.Info().Msg("Successfully ran migrations up")
	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal().Err(err).Msg("Migration down failed")
		}
		log.Info().Msg("Successfully ran migrations down")
	case "version":
		current, dirty, err := m.Version()
		if err != nil {
			log.Fatal().Err(err).Msg("Get version failed")
		}
		fmt.Printf("Version: %d, Dirty: %v\n", current, dirty)
	case "force":
		if *version < 0 {
			log.Fatal().Msg("force requires -version")
		}
		if err := m.Force(*version); err != nil {
			log.Fatal().Err(err).Msg("Force failed")
		}
		log.Info().Int("version", *version).Msg("Forced migration version")
	default:
		log.Fatal().Str("command", *command).Msg("Unknown command")
	}
}

func newMigrate(migrationsPath, databaseURL string) (*migrate.Migrate, error) {
	if migrationsPath == "" {
		src, err := db.MigrationSource()
		if err != nil {
			return nil, err
		}
		return migrate.NewWithSourceInstance("iofs", src, databaseURL)
	}
	absMigrations, err := filepath.Abs(migrationsPath)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(absMigrations); err != nil {
		return nil, fmt.Errorf("migrations directory: %w", err)
	}
	return migrate.New("file://"+absMigrations, databaseURL)
}
