// Copyright 2026 The TEEDS Authors
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"codeberg.org/teedsvote/teeds/internal/models"
	"codeberg.org/teedsvote/teeds/internal/repository"
	"codeberg.org/teedsvote/teeds/internal/services/token"
	"codeberg.org/teedsvote/teeds/internal/storage"
)

// maxDesignsPerSubmitter is the submission cap per student.
const maxDesignsPerSubmitter = 2

// DesignHandlers contains the submission endpoints.
type DesignHandlers struct {
	repo       *repository.Repository
	store      *storage.Store
	codec      *token.Codec
	modalities []string
}

// NewDesign creates a new DesignHandlers instance.
func NewDesign(repo *repository.Repository, store *storage.Store, codec *token.Codec, modalities []string) *DesignHandlers {
	return &DesignHandlers{repo: repo, store: store, codec: codec, modalities: modalities}
}

// Upload stores a design file and returns its storage path and public URL.
func (h *DesignHandlers) Upload(c echo.Context) error {
	if _, authErr := authenticate(h.codec, c, c.FormValue("token")); authErr != "" {
		return fail(c, http.StatusUnauthorized, authErr)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return fail(c, http.StatusBadRequest, "file is required")
	}

	src, err := file.Open()
	if err != nil {
		return fail(c, http.StatusBadRequest, "file is required")
	}
	defer func() {
		_ = src.Close()
	}()

	key := "designs/" + uuid.NewString() + "-" + sanitizeFilename(file.Filename)
	if err := h.store.Save(key, src); err != nil {
		slog.Error("upload-design save failed", "error", err)
		return fail(c, http.StatusInternalServerError, "Unable to store file")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"ok":          true,
		"storagePath": key,
		"publicUrl":   h.store.PublicURL(key),
	})
}

// RecordDesignRequest is the request body for registering an upload.
type RecordDesignRequest struct {
	Token       string `json:"token"`
	Filename    string `json:"filename"`
	ArtworkName string `json:"artworkName"`
	Modality    string `json:"modality"`
	StoragePath string `json:"storagePath"`
}

// RecordDesign registers an uploaded file as a contest submission. The
// submitter comes from the verified token, never from the payload.
func (h *DesignHandlers) RecordDesign(c echo.Context) error {
	var req RecordDesignRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request")
	}

	claims, authErr := authenticate(h.codec, c, req.Token)
	if authErr != "" {
		return fail(c, http.StatusUnauthorized, authErr)
	}

	artworkName := strings.TrimSpace(req.ArtworkName)
	if req.Filename == "" || req.Modality == "" || req.StoragePath == "" || artworkName == "" {
		return fail(c, http.StatusBadRequest, "filename, artworkName, modality, and storagePath are required")
	}
	if !slices.Contains(h.modalities, req.Modality) {
		return fail(c, http.StatusBadRequest, "unknown modality")
	}

	ctx := c.Request().Context()

	existing, err := h.repo.ListDesignsBySubmitter(ctx, claims.Sub)
	if err != nil {
		slog.Error("record-design lookup failed", "error", err)
		return fail(c, http.StatusInternalServerError, "Unable to record design")
	}
	if len(existing) >= maxDesignsPerSubmitter {
		return fail(c, http.StatusBadRequest, "You already have two designs uploaded. Delete one to continue.")
	}
	for _, design := range existing {
		if design.Modality != req.Modality {
			return fail(c, http.StatusBadRequest, "All of your uploads must stay in the same modality unless you delete them first.")
		}
	}

	user, err := h.repo.GetUserByID(ctx, claims.Sub)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusBadRequest, "User metadata missing")
		}
		slog.Error("record-design user lookup failed", "error", err)
		return fail(c, http.StatusInternalServerError, "Unable to record design")
	}
	if user.FullName == nil || strings.TrimSpace(*user.FullName) == "" {
		return fail(c, http.StatusBadRequest, "User metadata missing")
	}

	design := &models.Design{
		ID:          uuid.NewString(),
		Filename:    req.Filename,
		ArtworkName: artworkName,
		StoragePath: req.StoragePath,
		Modality:    req.Modality,
		SubmitterID: user.ID,
		StudentName: user.FullName,
		Major:       user.Discipline,
		Asurite:     deriveAsurite(user),
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.repo.CreateDesign(ctx, design); err != nil {
		slog.Error("record-design insert failed", "error", err)
		return fail(c, http.StatusInternalServerError, "Unable to record design")
	}

	return c.JSON(http.StatusOK, echo.Map{"ok": true, "design": design})
}

// DeleteDesignRequest is the request body for removing a submission.
type DeleteDesignRequest struct {
	Token    string `json:"token"`
	DesignID string `json:"designId"`
}

// DeleteDesign removes one of the caller's own submissions, blob first.
func (h *DesignHandlers) DeleteDesign(c echo.Context) error {
	var req DeleteDesignRequest
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

	ctx := c.Request().Context()

	design, err := h.repo.GetDesignForSubmitter(ctx, req.DesignID, claims.Sub)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Design not found")
		}
		slog.Error("delete-design lookup failed", "error", err)
		return fail(c, http.StatusInternalServerError, "Unable to delete design")
	}

	if err := h.store.Remove(design.StoragePath); err != nil {
		slog.Error("delete-design blob removal failed", "error", err, "path", design.StoragePath)
		return fail(c, http.StatusInternalServerError, "Unable to delete design")
	}
	if err := h.repo.DeleteDesign(ctx, design.ID); err != nil {
		slog.Error("delete-design row removal failed", "error", err)
		return fail(c, http.StatusInternalServerError, "Unable to delete design")
	}

	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// GalleryEntry is a design with its running vote count and public URL.
type GalleryEntry struct {
	models.Design
	Votes     int    `json:"votes"`
	PublicURL string `json:"public_url"`
}

// ListDesigns returns the public gallery: unflagged designs with vote
// tallies, optionally filtered by modality.
func (h *DesignHandlers) ListDesigns(c echo.Context) error {
	ctx := c.Request().Context()

	designs, err := h.repo.ListDesigns(ctx, c.QueryParam("modality"), false)
	if err != nil {
		slog.Error("list-designs failed", "error", err)
		return fail(c, http.StatusInternalServerError, "Unable to load designs")
	}

	tallies, err := h.repo.TallyVotes(ctx)
	if err != nil {
		slog.Error("list-designs tally failed", "error", err)
		return fail(c, http.StatusInternalServerError, "Unable to load designs")
	}
	votesByDesign := make(map[string]int, len(tallies))
	for _, tally := range tallies {
		votesByDesign[tally.DesignID] = tally.Votes
	}

	entries := make([]GalleryEntry, 0, len(designs))
	for _, design := range designs {
		entries = append(entries, GalleryEntry{
			Design:    design,
			Votes:     votesByDesign[design.ID],
			PublicURL: h.store.PublicURL(design.StoragePath),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"ok": true, "designs": entries})
}

// UpdateProfileRequest is the request body for profile metadata.
type UpdateProfileRequest struct {
	Token      string `json:"token"`
	FullName   string `json:"fullName"`
	AsuID      string `json:"asuId"`
	Discipline string `json:"discipline"`
}

// UpdateProfile stores the submission metadata shown alongside designs.
func (h *DesignHandlers) UpdateProfile(c echo.Context) error {
	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request")
	}

	claims, authErr := authenticate(h.codec, c, req.Token)
	if authErr != "" {
		return fail(c, http.StatusUnauthorized, authErr)
	}

	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return fail(c, http.StatusBadRequest, "fullName is required")
	}

	err := h.repo.UpdateUserProfile(c.Request().Context(), claims.Sub,
		fullName, strings.TrimSpace(req.AsuID), strings.TrimSpace(req.Discipline))
	if err != nil {
		slog.Error("update-profile failed", "error", err)
		return fail(c, http.StatusInternalServerError, "Unable to update profile")
	}

	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// deriveAsurite falls back from the stored ASU ID to the email local part.
func deriveAsurite(user *models.User) *string {
	if user.AsuID != nil {
		if id := strings.TrimSpace(*user.AsuID); id != "" {
			return &id
		}
	}
	if local, _, ok := strings.Cut(user.Email, "@"); ok && local != "" {
		return &local
	}
	return nil
}

// sanitizeFilename keeps the base name and replaces path separators.
func sanitizeFilename(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		return "upload"
	}
	return base
}
