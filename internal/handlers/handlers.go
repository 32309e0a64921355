// Copyright 2026 The TEEDS Authors
// Licensed under the EUPL-1.2

// Package handlers contains the HTTP handlers for the JSON API.
package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"codeberg.org/teedsvote/teeds/internal/services/token"
)

// fail writes the uniform error body. Messages are user-facing; internal
// error detail stays in the server log.
func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, echo.Map{"ok": false, "message": message})
}

// bearerToken pulls the session token from the JSON body field or the
// Authorization header; both transports are supported.
func bearerToken(c echo.Context, bodyToken string) string {
	if bodyToken != "" {
		return bodyToken
	}
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}

// authenticate resolves the claims behind a request. The returned
// message is empty on success; otherwise it is the 401 response wording.
func authenticate(codec *token.Codec, c echo.Context, bodyToken string) (*token.Claims, string) {
	tok := bearerToken(c, bodyToken)
	if tok == "" {
		return nil, "Missing token"
	}
	claims, err := codec.Decode(tok)
	if err != nil {
		return nil, "Invalid token"
	}
	if claims.Expired(time.Now()) {
		return nil, "Token expired"
	}
	return claims, ""
}

// Health is a liveness endpoint.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
