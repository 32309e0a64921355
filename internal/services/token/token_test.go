// Copyright 2026 The TEEDS Authors
// Licensed under the EUPL-1.2

package token_test

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/teedsvote/teeds/internal/services/token"
)

func newCodec() *token.Codec {
	return token.NewCodec([]byte("test-secret"), 12*time.Hour)
}

func TestMintAndDecode(t *testing.T) {
	codec := newCodec()

	tok, err := codec.Mint("user-1", "student@asu.edu", false)
	require.NoError(t, err)
	assert.Len(t, strings.Split(tok, "."), 3)

	claims, err := codec.Decode(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Sub)
	assert.Equal(t, "student@asu.edu", claims.Email)
	assert.False(t, claims.IsAdmin)
	assert.False(t, claims.Expired(time.Now()))
}

func TestDecode_TamperedPayload(t *testing.T) {
	codec := newCodec()

	tok, err := codec.Mint("user-1", "student@asu.edu", false)
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	forged, err := codec.Mint("user-2", "other@asu.edu", true)
	require.NoError(t, err)
	forgedParts := strings.Split(forged, ".")

	tampered := parts[0] + "." + forgedParts[1] + "." + parts[2]
	_, err = codec.Decode(tampered)
	assert.ErrorIs(t, err, token.ErrInvalid)
}

func TestDecode_TamperedSignature(t *testing.T) {
	codec := newCodec()

	tok, err := codec.Mint("user-1", "student@asu.edu", false)
	require.NoError(t, err)

	last := tok[len(tok)-1]
	flipped := byte('A')
	if last == 'A' {
		flipped = 'B'
	}
	_, err = codec.Decode(tok[:len(tok)-1] + string(flipped))
	assert.ErrorIs(t, err, token.ErrInvalid)
}

func TestDecode_WrongSecret(t *testing.T) {
	tok, err := newCodec().Mint("user-1", "student@asu.edu", false)
	require.NoError(t, err)

	other := token.NewCodec([]byte("different-secret"), 12*time.Hour)
	_, err = other.Decode(tok)
	assert.ErrorIs(t, err, token.ErrInvalid)
}

func TestDecode_AlgorithmNotPinnedIsRejected(t *testing.T) {
	codec := newCodec()

	tok, err := codec.Mint("user-1", "student@asu.edu", false)
	require.NoError(t, err)
	parts := strings.Split(tok, ".")

	// An alg:none header must be rejected before any signature check.
	noneHeader := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	_, err = codec.Decode(noneHeader + "." + parts[1] + ".")
	assert.ErrorIs(t, err, token.ErrInvalid)

	_, err = codec.Decode(noneHeader + "." + parts[1] + "." + parts[2])
	assert.ErrorIs(t, err, token.ErrInvalid)
}

func TestDecode_MalformedStructure(t *testing.T) {
	codec := newCodec()

	for _, tok := range []string{"", "abc", "a.b", "a.b.c.d", "!.!.!"} {
		_, err := codec.Decode(tok)
		assert.ErrorIs(t, err, token.ErrInvalid, "token %q", tok)
	}
}

func TestClaims_ExpiredBoundary(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	claims := &token.Claims{Exp: now.Unix()}

	// Strictly less-than: the exact expiry instant is still valid, one
	// millisecond past it is not.
	assert.True(t, claims.Expired(now.Add(time.Millisecond)))
	assert.False(t, claims.Expired(now))

	claims.Exp = now.Add(time.Second).Unix()
	assert.False(t, claims.Expired(now))
}

func TestDecode_DoesNotCheckExpiry(t *testing.T) {
	codec := newCodec()
	past := time.Now().Add(-48 * time.Hour)

	tok, err := codec.MintAt("user-1", "student@asu.edu", false, past)
	require.NoError(t, err)

	claims, err := codec.Decode(tok)
	require.NoError(t, err)
	assert.True(t, claims.Expired(time.Now()))
}

func TestRefresh(t *testing.T) {
	codec := newCodec()
	now := time.Now()

	tok, err := codec.MintAt("user-1", "student@asu.edu", true, now.Add(-time.Hour))
	require.NoError(t, err)

	refreshed, err := codec.Refresh(tok, now)
	require.NoError(t, err)
	assert.NotEqual(t, tok, refreshed)

	claims, err := codec.Decode(refreshed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Sub)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, now.Add(12*time.Hour).Unix(), claims.Exp)
}

func TestRefresh_ExpiredToken(t *testing.T) {
	codec := newCodec()
	now := time.Now()

	tok, err := codec.MintAt("user-1", "student@asu.edu", false, now.Add(-24*time.Hour))
	require.NoError(t, err)

	_, err = codec.Refresh(tok, now)
	assert.ErrorIs(t, err, token.ErrExpired)
}

func TestRefresh_InvalidToken(t *testing.T) {
	_, err := newCodec().Refresh("not.a.token", time.Now())
	assert.ErrorIs(t, err, token.ErrInvalid)
}
