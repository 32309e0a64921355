// Copyright 2026 The TEEDS Authors
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/teedsvote/teeds/internal/repository"
	"codeberg.org/teedsvote/teeds/internal/testutil"
)

func TestCreateUser(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user, err := repo.CreateUser(ctx, "student@asu.edu")

	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "student@asu.edu", user.Email)
	assert.False(t, user.IsAdmin)
	assert.NotZero(t, user.CreatedAt)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	_, err := repo.CreateUser(ctx, "student@asu.edu")
	require.NoError(t, err)

	_, err = repo.CreateUser(ctx, "student@asu.edu")

	assert.Error(t, err)
}

func TestGetUserByEmail(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	created, err := repo.CreateUser(ctx, "student@asu.edu")
	require.NoError(t, err)

	retrieved, err := repo.GetUserByEmail(ctx, "student@asu.edu")

	require.NoError(t, err)
	assert.Equal(t, created.ID, retrieved.ID)
}

func TestGetUserByID_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	_, err := repo.GetUserByID(context.Background(), "missing")

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPromoteAdmin(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "organizer@asu.edu")
	require.NoError(t, repo.PromoteAdmin(ctx, user.ID))

	promoted, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, promoted.IsAdmin)
}

func TestUpdateUserProfile(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "student@asu.edu")
	err := repo.UpdateUserProfile(ctx, user.ID, "Sam Hill", "1234567890", "Industrial Design")
	require.NoError(t, err)

	updated, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.FullName)
	assert.Equal(t, "Sam Hill", *updated.FullName)
	require.NotNil(t, updated.AsuID)
	assert.Equal(t, "1234567890", *updated.AsuID)
	require.NotNil(t, updated.Discipline)
	assert.Equal(t, "Industrial Design", *updated.Discipline)
}

func TestAdminEmailAllowList(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	exists, err := repo.AdminEmailExists(ctx, "chair@asu.edu")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.AddAdminEmail(ctx, "chair@asu.edu"))
	// Re-adding is a no-op, not an error.
	require.NoError(t, repo.AddAdminEmail(ctx, "chair@asu.edu"))

	exists, err = repo.AdminEmailExists(ctx, "chair@asu.edu")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestListUsers(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	testutil.NewTestUser(t, repo, "a@asu.edu")
	testutil.NewTestUser(t, repo, "b@asu.edu")

	users, err := repo.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
