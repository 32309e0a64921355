// Copyright 2026 The TEEDS Authors
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"

	"codeberg.org/teedsvote/teeds/internal/models"
	"codeberg.org/teedsvote/teeds/internal/repository"
	"codeberg.org/teedsvote/teeds/internal/services/token"
	"codeberg.org/teedsvote/teeds/internal/services/voting"
)

const analyticsContactLimit = 50

// AdminHandlers contains the organizer-only endpoints.
type AdminHandlers struct {
	repo   *repository.Repository
	voting *voting.Service
	codec  *token.Codec
}

// NewAdmin creates a new AdminHandlers instance.
func NewAdmin(repo *repository.Repository, votingService *voting.Service, codec *token.Codec) *AdminHandlers {
	return &AdminHandlers{repo: repo, voting: votingService, codec: codec}
}

// requireAdmin authenticates the request and checks the admin claim.
// A non-empty message means the request must be rejected with status.
func (h *AdminHandlers) requireAdmin(c echo.Context, bodyToken string) (status int, message string) {
	claims, authErr := authenticate(h.codec, c, bodyToken)
	if authErr != "" {
		return http.StatusUnauthorized, authErr
	}
	if !claims.IsAdmin {
		return http.StatusForbidden, "Admin access required"
	}
	return 0, ""
}

// FlagDesignRequest is the request body for flagging a submission.
type FlagDesignRequest struct {
	Token    string `json:"token"`
	DesignID string `json:"designId"`
	Flag     *bool  `json:"flag"`
}

// FlagDesign hides a design from the gallery and moves its votes to the
// next-highest unflagged design in the same modality. Omitting the flag
// field flags; flag=false restores without touching votes.
func (h *AdminHandlers) FlagDesign(c echo.Context) error {
	var req FlagDesignRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request")
	}

	if status, message := h.requireAdmin(c, req.Token); message != "" {
		return fail(c, status, message)
	}
	if req.DesignID == "" {
		return fail(c, http.StatusBadRequest, "Missing designId")
	}

	flag := true
	if req.Flag != nil {
		flag = *req.Flag
	}

	if err := h.voting.Flag(c.Request().Context(), req.DesignID, flag); err != nil {
		if errors.Is(err, voting.ErrDesignUnavailable) {
			return fail(c, http.StatusNotFound, "Design not found")
		}
		slog.Error("flag-design failed", "error", err, "design_id", req.DesignID)
		return fail(c, http.StatusInternalServerError, "Unable to flag design")
	}

	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// DesignAnalytics is the per-design breakdown in the analytics report.
type DesignAnalytics struct {
	models.Design
	Votes         int      `json:"votes"`
	Voters        []string `json:"voters"`
	FacultyVoters []string `json:"faculty_voters"`
}

// AnalyticsResponse is the full organizer report.
type AnalyticsResponse struct {
	VotesByModality map[string]int          `json:"votes_by_modality"`
	Designs         []DesignAnalytics       `json:"designs"`
	Users           []models.User           `json:"users"`
	RSVPs           map[string]int          `json:"rsvps"`
	Messages        []models.ContactMessage `json:"messages"`
}

// Analytics assembles the organizer dashboard data: per-modality vote
// totals, per-design tallies with deduplicated voter emails, the user
// roster, RSVP counts, and recent contact messages.
func (h *AdminHandlers) Analytics(c echo.Context) error {
	if status, message := h.requireAdmin(c, ""); message != "" {
		return fail(c, status, message)
	}

	ctx := c.Request().Context()

	designs, err := h.repo.ListDesigns(ctx, "", true)
	if err != nil {
		slog.Error("analytics designs failed", "error", err)
		return fail(c, http.StatusInternalServerError, "Unable to load analytics")
	}
	votes, err := h.repo.ListVotes(ctx)
	if err != nil {
		slog.Error("analytics votes failed", "error", err)
		return fail(c, http.StatusInternalServerError, "Unable to load analytics")
	}
	users, err := h.repo.ListUsers(ctx)
	if err != nil {
		slog.Error("analytics users failed", "error", err)
		return fail(c, http.StatusInternalServerError, "Unable to load analytics")
	}
	yes, no, err := h.repo.CountRSVPs(ctx)
	if err != nil {
		slog.Error("analytics rsvps failed", "error", err)
		return fail(c, http.StatusInternalServerError, "Unable to load analytics")
	}
	messages, err := h.repo.ListRecentContactMessages(ctx, analyticsContactLimit)
	if err != nil {
		slog.Error("analytics messages failed", "error", err)
		return fail(c, http.StatusInternalServerError, "Unable to load analytics")
	}

	usersByID := make(map[string]models.User, len(users))
	for _, user := range users {
		usersByID[user.ID] = user
	}

	byModality := make(map[string]int)
	countByDesign := make(map[string]int)
	votersByDesign := make(map[string]map[string]bool)
	facultyByDesign := make(map[string]map[string]bool)
	for _, vote := range votes {
		byModality[vote.Modality]++
		countByDesign[vote.DesignID]++

		email := vote.VoterID
		isFaculty := false
		if voter, ok := usersByID[vote.VoterID]; ok {
			email = voter.Email
			isFaculty = voter.IsFaculty
		}
		if votersByDesign[vote.DesignID] == nil {
			votersByDesign[vote.DesignID] = make(map[string]bool)
		}
		votersByDesign[vote.DesignID][email] = true
		if isFaculty {
			if facultyByDesign[vote.DesignID] == nil {
				facultyByDesign[vote.DesignID] = make(map[string]bool)
			}
			facultyByDesign[vote.DesignID][email] = true
		}
	}

	report := make([]DesignAnalytics, 0, len(designs))
	for _, design := range designs {
		report = append(report, DesignAnalytics{
			Design:        design,
			Votes:         countByDesign[design.ID],
			Voters:        sortedKeys(votersByDesign[design.ID]),
			FacultyVoters: sortedKeys(facultyByDesign[design.ID]),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"ok": true, "analytics": AnalyticsResponse{
		VotesByModality: byModality,
		Designs:         report,
		Users:           users,
		RSVPs:           map[string]int{"yes": yes, "no": no},
		Messages:        messages,
	}})
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
