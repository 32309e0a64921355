// Copyright 2026 The TEEDS Authors
// Licensed under the EUPL-1.2

package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/teedsvote/teeds/internal/config"
	"codeberg.org/teedsvote/teeds/internal/handlers"
	"codeberg.org/teedsvote/teeds/internal/repository"
	"codeberg.org/teedsvote/teeds/internal/services/otp"
	"codeberg.org/teedsvote/teeds/internal/services/token"
	"codeberg.org/teedsvote/teeds/internal/testutil"
)

// fakeSender records the last delivered code.
type fakeSender struct {
	lastCode string
}

func (f *fakeSender) SendOTP(_ context.Context, _, code string, _ time.Duration) error {
	f.lastCode = code
	return nil
}

func newAuthFixture(t *testing.T) (*handlers.AuthHandlers, *fakeSender, *repository.Repository, *token.Codec) {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	codec := token.NewCodec([]byte("test-secret"), 12*time.Hour)
	sender := &fakeSender{}
	cfg := &config.AuthConfig{
		EmailDomain: "asu.edu",
		OTPTTL:      10 * time.Minute,
		SessionTTL:  12 * time.Hour,
	}
	service := otp.NewService(repo, sender, codec, cfg, []byte("test-secret"))
	return handlers.NewAuth(service, codec), sender, repo, codec
}

func decodeBody(t *testing.T, body string) map[string]any {
	t.Helper()
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &decoded))
	return decoded
}

func TestRequestOTP(t *testing.T) {
	h, sender, _, _ := newAuthFixture(t)
	e := echo.New()

	c, rec := testutil.NewEchoContext(e, http.MethodPost, "/api/request-otp",
		strings.NewReader(`{"email":"student@asu.edu"}`))
	require.NoError(t, h.RequestOTP(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, sender.lastCode, 6)
	body := decodeBody(t, rec.Body.String())
	assert.Equal(t, true, body["ok"])
}

func TestRequestOTP_MissingEmail(t *testing.T) {
	h, _, _, _ := newAuthFixture(t)
	e := echo.New()

	c, rec := testutil.NewEchoContext(e, http.MethodPost, "/api/request-otp", strings.NewReader(`{}`))
	require.NoError(t, h.RequestOTP(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestOTP_ForeignDomain(t *testing.T) {
	h, _, _, _ := newAuthFixture(t)
	e := echo.New()

	c, rec := testutil.NewEchoContext(e, http.MethodPost, "/api/request-otp",
		strings.NewReader(`{"email":"someone@gmail.com"}`))
	require.NoError(t, h.RequestOTP(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec.Body.String())
	assert.Equal(t, "ASU email required", body["message"])
}

func TestVerifyOTP(t *testing.T) {
	h, sender, _, codec := newAuthFixture(t)
	e := echo.New()

	c, _ := testutil.NewEchoContext(e, http.MethodPost, "/api/request-otp",
		strings.NewReader(`{"email":"student@asu.edu"}`))
	require.NoError(t, h.RequestOTP(c))

	c, rec := testutil.NewEchoContext(e, http.MethodPost, "/api/verify-otp",
		strings.NewReader(`{"email":"student@asu.edu","otp":"`+sender.lastCode+`"}`))
	require.NoError(t, h.VerifyOTP(c))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec.Body.String())
	session, ok := body["session"].(map[string]any)
	require.True(t, ok)

	tok, ok := session["token"].(string)
	require.True(t, ok)
	assert.Len(t, strings.Split(tok, "."), 3)

	claims, err := codec.Decode(tok)
	require.NoError(t, err)
	assert.Equal(t, "student@asu.edu", claims.Email)
	assert.False(t, claims.IsAdmin)
}

func TestVerifyOTP_WrongCode(t *testing.T) {
	h, sender, _, _ := newAuthFixture(t)
	e := echo.New()

	c, _ := testutil.NewEchoContext(e, http.MethodPost, "/api/request-otp",
		strings.NewReader(`{"email":"student@asu.edu"}`))
	require.NoError(t, h.RequestOTP(c))

	wrong := "000000"
	if sender.lastCode == wrong {
		wrong = "000001"
	}
	c, rec := testutil.NewEchoContext(e, http.MethodPost, "/api/verify-otp",
		strings.NewReader(`{"email":"student@asu.edu","otp":"`+wrong+`"}`))
	require.NoError(t, h.VerifyOTP(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec.Body.String())
	assert.Equal(t, "Invalid or expired OTP", body["message"])
}

func TestVerifyOTP_MissingFields(t *testing.T) {
	h, _, _, _ := newAuthFixture(t)
	e := echo.New()

	c, rec := testutil.NewEchoContext(e, http.MethodPost, "/api/verify-otp",
		strings.NewReader(`{"email":"student@asu.edu"}`))
	require.NoError(t, h.VerifyOTP(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshToken(t *testing.T) {
	h, _, _, codec := newAuthFixture(t)
	e := echo.New()

	tok, err := codec.Mint("user-1", "student@asu.edu", false)
	require.NoError(t, err)

	c, rec := testutil.NewEchoContext(e, http.MethodPost, "/api/refresh-token",
		strings.NewReader(`{"token":"`+tok+`"}`))
	require.NoError(t, h.RefreshToken(c))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec.Body.String())
	refreshed, ok := body["token"].(string)
	require.True(t, ok)

	claims, err := codec.Decode(refreshed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Sub)
}

func TestRefreshToken_FromAuthorizationHeader(t *testing.T) {
	h, _, _, codec := newAuthFixture(t)
	e := echo.New()

	tok, err := codec.Mint("user-1", "student@asu.edu", false)
	require.NoError(t, err)

	c, rec := testutil.NewEchoContextWithHeaders(e, http.MethodPost, "/api/refresh-token", strings.NewReader(`{}`),
		map[string]string{
			echo.HeaderContentType:   echo.MIMEApplicationJSON,
			echo.HeaderAuthorization: "Bearer " + tok,
		})
	require.NoError(t, h.RefreshToken(c))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRefreshToken_Expired(t *testing.T) {
	h, _, _, codec := newAuthFixture(t)
	e := echo.New()

	tok, err := codec.MintAt("user-1", "student@asu.edu", false, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)

	c, rec := testutil.NewEchoContext(e, http.MethodPost, "/api/refresh-token",
		strings.NewReader(`{"token":"`+tok+`"}`))
	require.NoError(t, h.RefreshToken(c))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec.Body.String())
	assert.Equal(t, "Token expired", body["message"])
}

func TestRefreshToken_Missing(t *testing.T) {
	h, _, _, _ := newAuthFixture(t)
	e := echo.New()

	c, rec := testutil.NewEchoContext(e, http.MethodPost, "/api/refresh-token", strings.NewReader(`{}`))
	require.NoError(t, h.RefreshToken(c))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec.Body.String())
	assert.Equal(t, "Missing token", body["message"])
}
