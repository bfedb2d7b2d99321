// Package migrate applies embedded SQL migrations on startup.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/and161185/nextmode/migrations"
)

// Supported store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// goose keeps dialect and base FS in package globals.
var gooseMu sync.Mutex

// sqlDriver maps a store driver to its database/sql driver name.
func sqlDriver(driver string) (string, error) {
	switch driver {
	case DriverPostgres:
		return "pgx", nil
	case DriverSQLite:
		return "sqlite", nil
	}
	return "", fmt.Errorf("unknown store driver %q", driver)
}

// dialect maps a store driver to its goose dialect and migrations directory.
func dialect(driver string) (string, string, error) {
	switch driver {
	case DriverPostgres:
		return "postgres", "postgres", nil
	case DriverSQLite:
		return "sqlite3", "sqlite", nil
	}
	return "", "", fmt.Errorf("unknown store driver %q", driver)
}

// Up runs all pending migrations from the embedded filesystem.
func Up(ctx context.Context, driver, dsn string) error {
	name, err := sqlDriver(driver)
	if err != nil {
		return err
	}
	db, err := sql.Open(name, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	return UpDB(ctx, db, driver)
}

// UpDB runs all pending migrations on an already opened database.
func UpDB(ctx context.Context, db *sql.DB, driver string) error {
	d, dir, err := dialect(driver)
	if err != nil {
		return err
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect(d); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, dir)
}
