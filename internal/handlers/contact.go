// Copyright 2026 The TEEDS Authors
// Licensed under the EUPL-1.2

package handlers

import (
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"

	"codeberg.org/teedsvote/teeds/internal/repository"
)

const maxContactMessageLength = 2000

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ContactHandlers contains the public contact form endpoint.
type ContactHandlers struct {
	repo *repository.Repository
}

// NewContact creates a new ContactHandlers instance.
func NewContact(repo *repository.Repository) *ContactHandlers {
	return &ContactHandlers{repo: repo}
}

// ContactRequest is the request body for the contact form.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Topic   string `json:"topic"`
	Message string `json:"message"`
}

// Contact stores a message for the organizers. No authentication; the
// form is open to visitors who have not signed in.
func (h *ContactHandlers) Contact(c echo.Context) error {
	var req ContactRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request")
	}

	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	message := strings.TrimSpace(req.Message)
	topic := strings.TrimSpace(req.Topic)

	if name == "" || email == "" || message == "" {
		return fail(c, http.StatusBadRequest, "Name, email, and message are required.")
	}
	if !emailPattern.MatchString(email) {
		return fail(c, http.StatusBadRequest, "A valid email address is required.")
	}
	if len(message) > maxContactMessageLength {
		return fail(c, http.StatusBadRequest, "Message is too long.")
	}

	var topicPtr *string
	if topic != "" {
		topicPtr = &topic
	}

	if _, err := h.repo.CreateContactMessage(c.Request().Context(), name, email, topicPtr, message); err != nil {
		slog.Error("contact-organizers failed", "error", err)
		return fail(c, http.StatusInternalServerError, "Unable to send message")
	}

	return c.JSON(http.StatusOK, echo.Map{"ok": true, "message": "Thanks! The organizers will get back to you."})
}
