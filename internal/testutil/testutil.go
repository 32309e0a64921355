// Copyright 2026 The TEEDS Authors
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"

	"codeberg.org/teedsvote/teeds/internal/database"
	"codeberg.org/teedsvote/teeds/internal/models"
	"codeberg.org/teedsvote/teeds/internal/repository"
)

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	repo := repository.New(db)
	return db, repo
}

// NewTestUser creates a test user in the database.
func NewTestUser(t *testing.T, repo *repository.Repository, email string) *models.User {
	t.Helper()
	ctx := context.Background()
	user, err := repo.CreateUser(ctx, email)
	require.NoError(t, err)
	return user
}

// NewTestDesign creates a test design submission for a user.
func NewTestDesign(t *testing.T, repo *repository.Repository, submitterID, modality, artworkName string) *models.Design {
	t.Helper()
	ctx := context.Background()
	design := &models.Design{
		ID:          "design-" + artworkName,
		Filename:    artworkName + ".png",
		ArtworkName: artworkName,
		StoragePath: "designs/" + artworkName + ".png",
		Modality:    modality,
		SubmitterID: submitterID,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, repo.CreateDesign(ctx, design))
	return design
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

// NewEchoContextWithHeaders creates an Echo context with custom headers.
func NewEchoContextWithHeaders(e *echo.Echo, method, path string, body io.Reader, headers map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}
