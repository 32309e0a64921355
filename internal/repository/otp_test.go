// Copyright 2026 The TEEDS Authors
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/teedsvote/teeds/internal/repository"
	"codeberg.org/teedsvote/teeds/internal/testutil"
)

func TestCreateOneTimeCode(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	code, err := repo.CreateOneTimeCode(ctx, "student@asu.edu", "hash-1", time.Now().Add(10*time.Minute))

	require.NoError(t, err)
	assert.NotEmpty(t, code.ID)
	assert.False(t, code.Used)
}

func TestNewestUnusedCode(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	_, err := repo.CreateOneTimeCode(ctx, "student@asu.edu", "hash-1", time.Now().Add(10*time.Minute))
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	_, err = repo.CreateOneTimeCode(ctx, "student@asu.edu", "hash-2", time.Now().Add(10*time.Minute))
	require.NoError(t, err)

	newest, err := repo.NewestUnusedCode(ctx, "student@asu.edu")
	require.NoError(t, err)
	assert.Equal(t, "hash-2", newest.OTPHash)
}

func TestNewestUnusedCode_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	_, err := repo.NewestUnusedCode(context.Background(), "student@asu.edu")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestConsumeOneTimeCode(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	code, err := repo.CreateOneTimeCode(ctx, "student@asu.edu", "hash-1", time.Now().Add(10*time.Minute))
	require.NoError(t, err)

	consumed, err := repo.ConsumeOneTimeCode(ctx, code.ID)
	require.NoError(t, err)
	assert.True(t, consumed)

	// The second attempt loses the race by definition.
	consumed, err = repo.ConsumeOneTimeCode(ctx, code.ID)
	require.NoError(t, err)
	assert.False(t, consumed)

	_, err = repo.NewestUnusedCode(ctx, "student@asu.edu")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
