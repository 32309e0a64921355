// Copyright 2026 The TEEDS Authors
// Licensed under the EUPL-1.2

// Package repository wraps sqlx for database access.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vinovest/sqlx"
)

// ErrNotFound is returned when a record is not found.
var ErrNotFound = errors.New("record not found")

// querier is the subset of sqlx shared by *sqlx.DB and *sqlx.Tx, so the
// same repository methods run inside and outside transactions.
type querier interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	Rebind(query string) string
}

// Repository provides database operations for all entities.
type Repository struct {
	db *sqlx.DB
	q  querier
}

// New creates a new Repository instance.
func New(db *sqlx.DB) *Repository {
	return &Repository{db: db, q: db}
}

// Tx runs fn with a repository bound to a single transaction. The
// transaction is rolled back if fn returns an error.
func (r *Repository) Tx(ctx context.Context, fn func(*Repository) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(&Repository{db: r.db, q: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// wrapError converts sql errors to repository errors.
func wrapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
