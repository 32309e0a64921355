// Copyright 2026 The TEEDS Authors
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"codeberg.org/teedsvote/teeds/internal/services/token"
	"codeberg.org/teedsvote/teeds/internal/services/voting"
)

// VoteHandlers contains the voting endpoint.
type VoteHandlers struct {
	voting *voting.Service
	codec  *token.Codec
}

// NewVote creates a new VoteHandlers instance.
func NewVote(votingService *voting.Service, codec *token.Codec) *VoteHandlers {
	return &VoteHandlers{voting: votingService, codec: codec}
}

// CastVoteRequest is the request body for casting a vote.
type CastVoteRequest struct {
	Token    string `json:"token"`
	DesignID string `json:"designId"`
}

// CastVote spends one of the caller's votes on a design. The voter is
// the token subject; limits and the voting window are enforced by the
// voting service.
func (h *VoteHandlers) CastVote(c echo.Context) error {
	var req CastVoteRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request")
	}

	claims, authErr := authenticate(h.codec, c, req.Token)
	if authErr != "" {
		return fail(c, http.StatusUnauthorized, authErr)
	}
	if req.DesignID == "" {
		return fail(c, http.StatusBadRequest, "designId is required")
	}

	err := h.voting.Cast(c.Request().Context(), claims.Sub, req.DesignID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, voting.ErrVotingClosed):
			return fail(c, http.StatusBadRequest, "Voting is not open")
		case errors.Is(err, voting.ErrVoteLimit):
			return fail(c, http.StatusConflict, "Vote limit reached for this modality")
		case errors.Is(err, voting.ErrDesignUnavailable):
			return fail(c, http.StatusNotFound, "Design not found")
		default:
			slog.Error("cast-vote failed", "error", err)
			return fail(c, http.StatusInternalServerError, "Unable to record vote")
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
