package infra

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RunMigrations applies pending schema migrations before the API starts
// serving. Retries cover the common case of the database container still
// coming up when the process launches.
func RunMigrations(cfg *Config, logger zerolog.Logger, retries int, idle time.Duration) error {
	var err error
	for attempt := 1; attempt <= retries; attempt++ {
		if err = runMigrate(cfg); err == nil {
			logger.Info().Msg("database migrations applied")
			return nil
		}
		if attempt < retries {
			logger.Warn().Err(err).Msgf("migration attempt %d failed; retrying in %s", attempt, idle)
			time.Sleep(idle)
		}
	}
	return fmt.Errorf("run migrations: %w", err)
}

func runMigrate(cfg *Config) error {
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	absPath, err := filepath.Abs(cfg.MigrationsPath)
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+absPath, "postgres", driver)
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
