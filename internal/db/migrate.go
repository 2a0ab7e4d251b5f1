package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/hbnb/apiserver/config"
)

//go:embed migrations
var migrationsFS embed.FS

// MigrateUp applies all pending up migrations. It is a no-op when the
// schema is current.
func MigrateUp(cfg config.DatabaseConfig) error {
	return runMigrations(cfg, func(m *migrate.Migrate) error { return m.Up() })
}

// MigrateDown reverts every applied migration.
func MigrateDown(cfg config.DatabaseConfig) error {
	return runMigrations(cfg, func(m *migrate.Migrate) error { return m.Down() })
}

// MigrationVersion returns the applied schema version.
func MigrationVersion(cfg config.DatabaseConfig) (version uint, dirty bool, err error) {
	err = runMigrations(cfg, func(m *migrate.Migrate) error {
		version, dirty, err = m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			return nil
		}
		return err
	})
	return version, dirty, err
}

func runMigrations(cfg config.DatabaseConfig, step func(*migrate.Migrate) error) error {
	driverName, dsn, err := DSN(cfg)
	if err != nil {
		return err
	}

	// The migrator owns its own handle: closing it closes the handle too.
	conn, err := sql.Open(driverName, dsn)
	if err != nil {
		return err
	}
	defer conn.Close()

	var (
		driver database.Driver
		dir    string
	)
	switch driverName {
	case DriverNamePostgres:
		driver, err = postgres.WithInstance(conn, &postgres.Config{})
		dir = "migrations/postgres"
	case DriverNameSQLite:
		driver, err = sqlite3.WithInstance(conn, &sqlite3.Config{})
		dir = "migrations/sqlite"
	}
	if err != nil {
		return fmt.Errorf("init migration driver failed: %w", err)
	}

	source, err := iofs.New(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("open migrations failed: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, driverName, driver)
	if err != nil {
		return fmt.Errorf("init migrator failed: %w", err)
	}
	defer func() {
		_, _ = migrator.Close()
	}()

	if err := step(migrator); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
