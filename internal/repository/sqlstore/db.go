package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

//go:embed migrations
var migrations embed.FS

type dialect struct {
	driver     string
	sqlDriver  string
	goose      goose.Dialect
	dollarArgs bool
	rowLock    string
}

var dialects = map[string]dialect{
	DriverSQLite: {
		driver:    DriverSQLite,
		sqlDriver: "sqlite",
		goose:     goose.DialectSQLite3,
	},
	DriverPostgres: {
		driver:     DriverPostgres,
		sqlDriver:  "pgx",
		goose:      goose.DialectPostgres,
		dollarArgs: true,
		rowLock:    " FOR UPDATE",
	},
}

// rebind rewrites ? placeholders into the dialect's bind syntax.
func (d dialect) rebind(query string) string {
	if !d.dollarArgs {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// DB is a database handle that knows its SQL dialect.
type DB struct {
	*sql.DB
	dialect dialect
	logger  logrus.FieldLogger
}

// Open opens a database for the given driver. For sqlite the dsn is a file path
// whose directory is created when missing.
func Open(driver, dsn string, logger logrus.FieldLogger) (*DB, error) {
	if driver == "" {
		driver = DriverSQLite
	}
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if logger == nil {
		logger = logrus.New()
	}

	if d.driver == DriverSQLite && dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open(d.sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", d.driver, err)
	}

	switch d.driver {
	case DriverSQLite:
		// single writer; sqlite serializes anyway
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	case DriverPostgres:
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
	}

	return &DB{DB: db, dialect: d, logger: logger}, nil
}

// Driver reports the driver name the database was opened with.
func (db *DB) Driver() string {
	return db.dialect.driver
}

// Migrate applies the embedded migrations for the database's dialect.
func (db *DB) Migrate(ctx context.Context) error {
	fsys, err := fs.Sub(migrations, "migrations/"+db.dialect.driver)
	if err != nil {
		return fmt.Errorf("locate migrations: %w", err)
	}
	provider, err := goose.NewProvider(db.dialect.goose, db.DB, fsys)
	if err != nil {
		return fmt.Errorf("configure goose: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, res := range results {
		db.logger.WithFields(logrus.Fields{
			"version":  res.Source.Version,
			"duration": res.Duration,
		}).Info("migration applied")
	}
	return nil
}
