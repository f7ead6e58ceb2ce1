package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migration directions accepted by Migrate.
const (
	MigrateUp   = "up"
	MigrateDown = "down"
)

func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("load migrations: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("init migrator: %w", err)
	}
	return m, nil
}

// RunMigrations applies every pending migration.
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	return Migrate(db, MigrateUp, 0, logger)
}

// Migrate moves the schema up or down. steps of zero means all the way.
func Migrate(db *sql.DB, direction string, steps int, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	m, err := newMigrator(db)
	if err != nil {
		return err
	}

	switch {
	case direction == MigrateUp && steps > 0:
		err = m.Steps(steps)
	case direction == MigrateUp:
		err = m.Up()
	case direction == MigrateDown && steps > 0:
		err = m.Steps(-steps)
	case direction == MigrateDown:
		err = m.Down()
	default:
		return fmt.Errorf("unknown migration direction %q", direction)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate %s: %w", direction, err)
	}

	version, dirty, verr := m.Version()
	switch {
	case errors.Is(verr, migrate.ErrNilVersion):
		logger.Info("database schema empty")
	case dirty:
		logger.Warn("database migration dirty", zap.Uint("version", version))
	default:
		logger.Info("database migrated", zap.Uint("version", version))
	}
	return nil
}
