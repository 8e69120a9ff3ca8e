package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/mensylisir/taskcores/outcome"
)

// Supported driver names.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Config describes one relational database connection.
type Config struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslMode"`
}

// DSN builds the driver-specific connection string.
func (c Config) DSN() (string, error) {
	switch c.Driver {
	case DriverPostgres:
		sslMode := c.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
			c.User, c.Password, c.Host, c.Port, c.Name, sslMode), nil
	case DriverMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
			c.User, c.Password, c.Host, c.Port, c.Name), nil
	default:
		return "", errors.Errorf("unsupported database driver %q", c.Driver)
	}
}

// DB wraps *sql.DB together with the driver it was opened with, so that
// helpers can build driver-appropriate placeholders.
type DB struct {
	*sql.DB
	driver string
}

// Driver returns the driver name the connection was opened with.
func (db *DB) Driver() string {
	return db.driver
}

// Open establishes and verifies a connection. Failures surface as internal
// errors.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, outcome.MarkInternal(err)
	}
	conn, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, outcome.MarkInternal(errors.Wrapf(err, "failed to open %s connection", cfg.Driver))
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, outcome.MarkInternal(errors.Wrapf(err, "failed to verify %s connection", cfg.Driver))
	}
	return &DB{DB: conn, driver: cfg.Driver}, nil
}

// Execute runs fn with a live connection, closing it afterward even when
// fn fails.
func Execute(ctx context.Context, cfg Config, fn func(db *DB) error) error {
	db, err := Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db)
}

// RunProcedure calls a stored procedure by name.
func RunProcedure(ctx context.Context, db *DB, name string, args ...interface{}) error {
	stmt := fmt.Sprintf("CALL %s(%s)", name, placeholders(db.driver, len(args)))
	if _, err := db.ExecContext(ctx, stmt, args...); err != nil {
		return outcome.MarkInternal(errors.Wrapf(err, "procedure %s failed", name))
	}
	return nil
}

// RowDecoder maps one result row to a typed record. Decoders are written
// explicitly per record type; there is no reflective field mapping.
type RowDecoder[T any] func(rows *sql.Rows) (T, error)

// Query runs a statement and decodes every result row with decode.
func Query[T any](ctx context.Context, db *DB, decode RowDecoder[T], query string, args ...interface{}) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, outcome.MarkInternal(errors.Wrap(err, "query failed"))
	}
	defer rows.Close()

	var records []T
	for rows.Next() {
		rec, err := decode(rows)
		if err != nil {
			return nil, outcome.MarkInternal(errors.Wrap(err, "failed to decode row"))
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, outcome.MarkInternal(errors.Wrap(err, "row iteration failed"))
	}
	return records, nil
}

// Update runs a data-modifying statement and returns the affected row
// count.
func Update(ctx context.Context, db *DB, query string, args ...interface{}) (int64, error) {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, outcome.MarkInternal(errors.Wrap(err, "update failed"))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, outcome.MarkInternal(errors.Wrap(err, "failed to read affected rows"))
	}
	return affected, nil
}

// placeholders renders n driver-appropriate statement placeholders.
func placeholders(driver string, n int) string {
	if n == 0 {
		return ""
	}
	parts := make([]string, n)
	for i := range parts {
		if driver == DriverPostgres {
			parts[i] = fmt.Sprintf("$%d", i+1)
		} else {
			parts[i] = "?"
		}
	}
	return strings.Join(parts, ", ")
}
