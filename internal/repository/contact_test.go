// Copyright 2026 The TEEDS Authors
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/teedsvote/teeds/internal/testutil"
)

func TestCreateContactMessage(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	topic := "sponsorship"
	msg, err := repo.CreateContactMessage(ctx, "Pat", "pat@example.com", &topic, "Hello organizers")

	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, "Pat", msg.SenderName)
	require.NotNil(t, msg.Topic)
	assert.Equal(t, "sponsorship", *msg.Topic)
}

func TestListRecentContactMessages(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		_, err := repo.CreateContactMessage(ctx, name, name+"@example.com", nil, "hi")
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	messages, err := repo.ListRecentContactMessages(ctx, 2)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "third", messages[0].SenderName)
	assert.Equal(t, "second", messages[1].SenderName)
}
