// Copyright 2026 The TEEDS Authors
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"codeberg.org/teedsvote/teeds/internal/models"
)

// GetUserByID retrieves a user by their ID.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.q.GetContext(ctx, &user, r.q.Rebind(`SELECT * FROM users WHERE id = ?`), id)
	if err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by their email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.q.GetContext(ctx, &user, r.q.Rebind(`SELECT * FROM users WHERE email = ?`), email)
	if err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// CreateUser creates a bare user record for an email address.
func (r *Repository) CreateUser(ctx context.Context, email string) (*models.User, error) {
	now := time.Now().UTC()
	user := &models.User{
		ID:        uuid.NewString(),
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := r.q.ExecContext(ctx,
		r.q.Rebind(`INSERT INTO users (id, email, is_admin, is_faculty, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`),
		user.ID, user.Email, false, false, now, now)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// PromoteAdmin sets the admin flag for a user. There is no demotion path.
func (r *Repository) PromoteAdmin(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx,
		r.q.Rebind(`UPDATE users SET is_admin = ?, updated_at = ? WHERE id = ?`),
		true, time.Now().UTC(), id)
	return err
}

// UpdateUserProfile updates the submission metadata for a user.
func (r *Repository) UpdateUserProfile(ctx context.Context, id, fullName, asuID, discipline string) error {
	_, err := r.q.ExecContext(ctx,
		r.q.Rebind(`UPDATE users SET full_name = ?, asu_id = ?, discipline = ?, updated_at = ? WHERE id = ?`),
		fullName, asuID, discipline, time.Now().UTC(), id)
	return err
}

// ListUsers returns all users ordered by creation date (newest first).
func (r *Repository) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.q.SelectContext(ctx, &users, `SELECT * FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return users, nil
}

// AdminEmailExists reports whether an email is in the admins table.
func (r *Repository) AdminEmailExists(ctx context.Context, email string) (bool, error) {
	var count int
	err := r.q.GetContext(ctx, &count, r.q.Rebind(`SELECT count(*) FROM admins WHERE email = ?`), email)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AddAdminEmail adds an email to the admins allow-list table.
func (r *Repository) AddAdminEmail(ctx context.Context, email string) error {
	_, err := r.q.ExecContext(ctx,
		r.q.Rebind(`INSERT INTO admins (email) VALUES (?) ON CONFLICT (email) DO NOTHING`), email)
	return err
}
