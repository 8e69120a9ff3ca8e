package database

import (
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/pkg/errors"
)

// Migrate applies all pending schema migrations from migrationsPath
// (e.g. "file://./migrations") to the configured database. An up-to-date
// schema is not an error.
func Migrate(cfg Config, migrationsPath string) error {
	dsn, err := cfg.DSN()
	if err != nil {
		return err
	}
	if cfg.Driver == DriverMySQL {
		// The mysql DSN carries no scheme; migrate needs one to pick its
		// database driver.
		dsn = "mysql://" + dsn
	}

	m, err := migrate.New(migrationsPath, dsn)
	if err != nil {
		return errors.Wrap(err, "failed to create migration instance")
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return errors.Wrap(err, "migration failed")
	}
	return nil
}
