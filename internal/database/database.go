package database

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// OpenDB initializes and returns the connection pool.
// The driver and DSN come from the environment: DB_DRIVER is "mysql"
// (production) or "sqlite" (local dev, pure Go, no CGO), DB_DSN is the
// driver-specific connection string.
func OpenDB() (*sql.DB, error) {
	driver := os.Getenv("DB_DRIVER")
	if driver == "" {
		driver = "mysql"
	}

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		switch driver {
		case "mysql":
			dsn = "root:@tcp(127.0.0.1:3306)/followup?parseTime=true"
		case "sqlite":
			dsn = "followup.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
		}
	}

	return OpenDBWithDriver(driver, dsn)
}

// OpenDBWithDriver creates and configures a DB connection pool for any
// supported driver/DSN pair. The test suite calls this directly with
// ("sqlite", ":memory:...").
func OpenDBWithDriver(driver, dsn string) (*sql.DB, error) {
	switch driver {
	case "mysql", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if driver == "mysql" {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	} else {
		// A single connection keeps :memory: databases stable and avoids
		// SQLITE_BUSY under the low per-user contention this service sees.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := Migrate(db, driver); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}
