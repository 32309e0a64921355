// Copyright 2026 The TEEDS Authors
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"codeberg.org/teedsvote/teeds/internal/models"
)

// CreateContactMessage stores a message from the public contact form.
func (r *Repository) CreateContactMessage(ctx context.Context, senderName, senderEmail string, topic *string, message string) (*models.ContactMessage, error) {
	msg := &models.ContactMessage{
		ID:          uuid.NewString(),
		SenderName:  senderName,
		SenderEmail: senderEmail,
		Topic:       topic,
		Message:     message,
		CreatedAt:   time.Now().UTC(),
	}
	_, err := r.q.ExecContext(ctx,
		r.q.Rebind(`INSERT INTO contact_messages (id, sender_name, sender_email, topic, message, created_at) VALUES (?, ?, ?, ?, ?, ?)`),
		msg.ID, msg.SenderName, msg.SenderEmail, msg.Topic, msg.Message, msg.CreatedAt)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// ListRecentContactMessages returns the newest messages first.
func (r *Repository) ListRecentContactMessages(ctx context.Context, limit int) ([]models.ContactMessage, error) {
	var messages []models.ContactMessage
	err := r.q.SelectContext(ctx, &messages,
		r.q.Rebind(`SELECT * FROM contact_messages ORDER BY created_at DESC LIMIT ?`), limit)
	if err != nil {
		return nil, err
	}
	return messages, nil
}
