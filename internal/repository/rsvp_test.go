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

func TestUpsertRSVP(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "student@asu.edu")

	_, err := repo.UpsertRSVP(ctx, user.ID, "yes")
	require.NoError(t, err)

	// Changing the answer replaces the row instead of adding one.
	_, err = repo.UpsertRSVP(ctx, user.ID, "no")
	require.NoError(t, err)

	rsvp, err := repo.GetRSVP(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "no", rsvp.WillAttend)

	yes, no, err := repo.CountRSVPs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, yes)
	assert.Equal(t, 1, no)
}

func TestGetRSVP_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	user := testutil.NewTestUser(t, repo, "student@asu.edu")

	_, err := repo.GetRSVP(context.Background(), user.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCountRSVPs(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	for i, answer := range []string{"yes", "yes", "no"} {
		user := testutil.NewTestUser(t, repo, string(rune('a'+i))+"@asu.edu")
		_, err := repo.UpsertRSVP(ctx, user.ID, answer)
		require.NoError(t, err)
	}

	yes, no, err := repo.CountRSVPs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, yes)
	assert.Equal(t, 1, no)
}
