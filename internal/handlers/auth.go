// Copyright 2026 The TEEDS Authors
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"codeberg.org/teedsvote/teeds/internal/services/otp"
	"codeberg.org/teedsvote/teeds/internal/services/token"
)

// AuthHandlers contains the OTP and session token endpoints.
type AuthHandlers struct {
	otp   *otp.Service
	codec *token.Codec
}

// NewAuth creates a new AuthHandlers instance.
func NewAuth(otpService *otp.Service, codec *token.Codec) *AuthHandlers {
	return &AuthHandlers{otp: otpService, codec: codec}
}

// RequestOTPRequest is the request body for requesting a sign-in code.
type RequestOTPRequest struct {
	Email string `json:"email"`
}

// RequestOTP issues a one-time code to an institutional email address.
func (h *AuthHandlers) RequestOTP(c echo.Context) error {
	var req RequestOTPRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request")
	}
	if req.Email == "" {
		return fail(c, http.StatusBadRequest, "email is required")
	}

	if err := h.otp.Issue(c.Request().Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, otp.ErrInvalidEmail):
			return fail(c, http.StatusBadRequest, "ASU email required")
		case errors.Is(err, otp.ErrDeliveryFailed):
			return fail(c, http.StatusInternalServerError, "Unable to send OTP")
		default:
			slog.Error("request-otp failed", "error", err)
			return fail(c, http.StatusInternalServerError, "Unable to send OTP")
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"ok": true, "message": "OTP sent to your inbox"})
}

// VerifyOTPRequest is the request body for verifying a sign-in code.
type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// VerifyOTP exchanges a valid code for a session token.
func (h *AuthHandlers) VerifyOTP(c echo.Context) error {
	var req VerifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request")
	}
	if req.Email == "" || req.OTP == "" {
		return fail(c, http.StatusBadRequest, "Email and OTP required")
	}

	session, err := h.otp.Verify(c.Request().Context(), req.Email, req.OTP)
	if err != nil {
		if errors.Is(err, otp.ErrInvalidCode) {
			return fail(c, http.StatusBadRequest, "Invalid or expired OTP")
		}
		slog.Error("verify-otp failed", "error", err)
		return fail(c, http.StatusInternalServerError, "OTP verification failed")
	}

	return c.JSON(http.StatusOK, echo.Map{"ok": true, "session": session})
}

// RefreshTokenRequest is the request body for rotating a session token.
type RefreshTokenRequest struct {
	Token string `json:"token"`
}

// RefreshToken rotates a still-valid token. Refresh is pre-emptive:
// an already-expired token gets a 401, not a grace period.
func (h *AuthHandlers) RefreshToken(c echo.Context) error {
	var req RefreshTokenRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request")
	}

	tok := bearerToken(c, req.Token)
	if tok == "" {
		return fail(c, http.StatusUnauthorized, "Missing token")
	}

	refreshed, err := h.codec.Refresh(tok, time.Now())
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			return fail(c, http.StatusUnauthorized, "Token expired")
		}
		return fail(c, http.StatusUnauthorized, "Invalid token")
	}

	return c.JSON(http.StatusOK, echo.Map{"ok": true, "token": refreshed})
}
