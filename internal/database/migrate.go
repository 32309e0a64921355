// Copyright 2026 The TEEDS Authors
// Licensed under the EUPL-1.2

package database

import (
	"database/sql"
	"embed"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

func gooseDialect(driver string) string {
	if driver == "postgres" {
		return "postgres"
	}
	return "sqlite3"
}

// RunMigrations runs all pending goose migrations.
func RunMigrations(db *sql.DB, driver string) error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect(gooseDialect(driver)); err != nil {
		return err
	}

	return goose.Up(db, "migrations")
}

// MigrateDown rolls back the last migration.
func MigrateDown(db *sql.DB, driver string) error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect(gooseDialect(driver)); err != nil {
		return err
	}

	return goose.Down(db, "migrations")
}
