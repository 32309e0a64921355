// Copyright 2026 The TEEDS Authors
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"codeberg.org/teedsvote/teeds/internal/models"
)

// CreateOneTimeCode persists a new hashed sign-in code.
func (r *Repository) CreateOneTimeCode(ctx context.Context, email, otpHash string, expiresAt time.Time) (*models.OneTimeCode, error) {
	code := &models.OneTimeCode{
		ID:        uuid.NewString(),
		Email:     email,
		OTPHash:   otpHash,
		ExpiresAt: expiresAt.UTC(),
		CreatedAt: time.Now().UTC(),
	}
	_, err := r.q.ExecContext(ctx,
		r.q.Rebind(`INSERT INTO otps (id, email, otp_hash, expires_at, used, created_at) VALUES (?, ?, ?, ?, ?, ?)`),
		code.ID, code.Email, code.OTPHash, code.ExpiresAt, false, code.CreatedAt)
	if err != nil {
		return nil, err
	}
	return code, nil
}

// NewestUnusedCode returns the most recently created unused code for an
// email, which is the only row verification treats as authoritative.
func (r *Repository) NewestUnusedCode(ctx context.Context, email string) (*models.OneTimeCode, error) {
	var code models.OneTimeCode
	err := r.q.GetContext(ctx, &code,
		r.q.Rebind(`SELECT * FROM otps WHERE email = ? AND used = ? ORDER BY created_at DESC LIMIT 1`),
		email, false)
	if err != nil {
		return nil, wrapError(err)
	}
	return &code, nil
}

// ConsumeOneTimeCode marks a code used with a conditional update, so only
// one of two racing verifications can win.
func (r *Repository) ConsumeOneTimeCode(ctx context.Context, id string) (bool, error) {
	res, err := r.q.ExecContext(ctx,
		r.q.Rebind(`UPDATE otps SET used = ? WHERE id = ? AND used = ?`),
		true, id, false)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}
