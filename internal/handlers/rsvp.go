// Copyright 2026 The TEEDS Authors
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"codeberg.org/teedsvote/teeds/internal/repository"
	"codeberg.org/teedsvote/teeds/internal/services/token"
)

// RSVPHandlers contains the RSVP endpoint.
type RSVPHandlers struct {
	repo  *repository.Repository
	codec *token.Codec
}

// NewRSVP creates a new RSVPHandlers instance.
func NewRSVP(repo *repository.Repository, codec *token.Codec) *RSVPHandlers {
	return &RSVPHandlers{repo: repo, codec: codec}
}

// RecordRSVPRequest carries both the get and set variants.
type RecordRSVPRequest struct {
	Action     string `json:"action"`
	Token      string `json:"token"`
	WillAttend string `json:"will_attend"`
}

// RecordRSVP reads or upserts the caller's RSVP.
func (h *RSVPHandlers) RecordRSVP(c echo.Context) error {
	var req RecordRSVPRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request")
	}

	claims, authErr := authenticate(h.codec, c, req.Token)
	if authErr != "" {
		return fail(c, http.StatusUnauthorized, authErr)
	}

	ctx := c.Request().Context()

	if req.Action == "set" {
		if req.WillAttend != "yes" && req.WillAttend != "no" {
			return fail(c, http.StatusBadRequest, "will_attend required")
		}
		rsvp, err := h.repo.UpsertRSVP(ctx, claims.Sub, req.WillAttend)
		if err != nil {
			slog.Error("record-rsvp upsert failed", "error", err)
			return fail(c, http.StatusInternalServerError, "Failed to process RSVP")
		}
		return c.JSON(http.StatusOK, echo.Map{"ok": true, "rsvp": rsvp})
	}

	// default to get
	rsvp, err := h.repo.GetRSVP(ctx, claims.Sub)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusOK, echo.Map{"ok": true, "rsvp": nil})
		}
		slog.Error("record-rsvp lookup failed", "error", err)
		return fail(c, http.StatusInternalServerError, "Failed to process RSVP")
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "rsvp": rsvp})
}
