// Copyright 2026 The TEEDS Authors
// Licensed under the EUPL-1.2

package database

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq" // Postgres driver for managed deployments
	"github.com/vinovest/sqlx"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver for dev and tests
)

// Open creates a database connection and runs pending migrations.
// Postgres DSNs select the pq driver; everything else is treated as a
// SQLite path with optimized settings.
func Open(dsn string) (*sqlx.DB, error) {
	if dsn == "" {
		dsn = "./data/teeds.db"
	}

	driver := driverFor(dsn)

	if driver == "sqlite" {
		// Create directory for file-based databases
		if !strings.HasPrefix(dsn, ":memory:") && !strings.Contains(dsn, "mode=memory") {
			dir := filepath.Dir(dsn)
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, err
			}
		}
		dsn = addDefaultParams(dsn)
	}

	conn, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	// Configure connection pool. In-memory SQLite databases exist per
	// connection, so they get a single shared one.
	if driver == "sqlite" && (strings.HasPrefix(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")) {
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(10)
		conn.SetMaxIdleConns(5)
		conn.SetConnMaxLifetime(time.Hour)
	}

	if driver == "sqlite" {
		if err := configureSQLite(context.Background(), conn); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}

	if err := RunMigrations(conn.DB, driver); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return conn, nil
}

// Close closes the database connection.
func Close(db *sqlx.DB) error {
	return db.Close()
}

func driverFor(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}

// addDefaultParams adds recommended SQLite parameters if not already present.
func addDefaultParams(dsn string) string {
	defaults := map[string]string{
		"_txlock":       "immediate",
		"_busy_timeout": "5000",
		"_foreign_keys": "on",
	}

	for key, value := range defaults {
		if !strings.Contains(dsn, key) {
			separator := "?"
			if strings.Contains(dsn, "?") {
				separator = "&"
			}
			dsn += separator + key + "=" + value
		}
	}

	return dsn
}

// configureSQLite sets PRAGMAs for optimal performance.
func configureSQLite(ctx context.Context, db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA cache_size = 2000",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return err
		}
	}

	return nil
}
