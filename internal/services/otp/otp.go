// Copyright 2026 The TEEDS Authors
// Licensed under the EUPL-1.2

// Package otp implements one-time-passcode issuance and verification.
package otp

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"codeberg.org/teedsvote/teeds/internal/config"
	"codeberg.org/teedsvote/teeds/internal/repository"
	"codeberg.org/teedsvote/teeds/internal/services/mailer"
	"codeberg.org/teedsvote/teeds/internal/services/token"
)

var (
	// ErrInvalidEmail rejects addresses outside the institutional domain.
	ErrInvalidEmail = errors.New("institutional email required")
	// ErrInvalidCode is the single generic failure for verification:
	// missing, expired, mismatched, and already-used codes all collapse
	// into it so callers cannot probe which emails hold codes.
	ErrInvalidCode = errors.New("invalid or expired code")
	// ErrDeliveryFailed signals the email provider rejected the send.
	ErrDeliveryFailed = errors.New("unable to send code")
)

// Session is the result of a successful verification.
type Session struct {
	Token string      `json:"token"`
	User  SessionUser `json:"user"`
}

// SessionUser is the denormalized identity returned with a fresh token.
type SessionUser struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

// Service issues and verifies one-time codes.
type Service struct { //nolint:govet // fieldalignment not critical
	repo        *repository.Repository
	sender      mailer.Sender
	codec       *token.Codec
	domain      string
	ttl         time.Duration
	salt        []byte
	adminEmails map[string]bool
}

// NewService creates the OTP service. The salt is the server signing
// secret; the hash formula must match between issuance and verification.
func NewService(repo *repository.Repository, sender mailer.Sender, codec *token.Codec, cfg *config.AuthConfig, salt []byte) *Service {
	admins := make(map[string]bool, len(cfg.AdminEmails))
	for _, email := range cfg.AdminEmails {
		admins[email] = true
	}
	return &Service{
		repo:        repo,
		sender:      sender,
		codec:       codec,
		domain:      cfg.EmailDomain,
		ttl:         cfg.OTPTTL,
		salt:        salt,
		adminEmails: admins,
	}
}

// NormalizeEmail lowercases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Issue generates a 6-digit code for the email, persists its hash with a
// fixed TTL, and attempts delivery. A failed send invalidates the stored
// code before the error is reported, so no live code exists whose value
// nobody received.
func (s *Service) Issue(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	if !strings.HasSuffix(email, "@"+s.domain) {
		return ErrInvalidEmail
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("generating code: %w", err)
	}

	row, err := s.repo.CreateOneTimeCode(ctx, email, s.hashCode(email, code), time.Now().Add(s.ttl))
	if err != nil {
		return fmt.Errorf("persisting code: %w", err)
	}

	if err := s.sender.SendOTP(ctx, email, code, s.ttl); err != nil {
		slog.Error("one-time code delivery failed", "email", email, "error", err)
		if _, consumeErr := s.repo.ConsumeOneTimeCode(ctx, row.ID); consumeErr != nil {
			slog.Error("failed to invalidate undelivered code", "id", row.ID, "error", consumeErr)
		}
		return ErrDeliveryFailed
	}

	return nil
}

// Verify checks a submitted code, consumes it, ensures a user record
// exists, resolves admin status, and mints a session token.
func (s *Service) Verify(ctx context.Context, email, code string) (*Session, error) {
	email = NormalizeEmail(email)

	row, err := s.repo.NewestUnusedCode(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCode
		}
		return nil, fmt.Errorf("looking up code: %w", err)
	}

	if row.ExpiresAt.Before(time.Now()) {
		return nil, ErrInvalidCode
	}

	if subtle.ConstantTimeCompare([]byte(s.hashCode(email, code)), []byte(row.OTPHash)) != 1 {
		return nil, ErrInvalidCode
	}

	// Conditional update closes the window where two verifications race
	// on the same row: only one of them consumes it.
	consumed, err := s.repo.ConsumeOneTimeCode(ctx, row.ID)
	if err != nil {
		return nil, fmt.Errorf("consuming code: %w", err)
	}
	if !consumed {
		return nil, ErrInvalidCode
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		user, err = s.repo.CreateUser(ctx, email)
	}
	if err != nil {
		return nil, fmt.Errorf("resolving user record: %w", err)
	}

	isAdmin, err := s.resolveAdmin(ctx, user.ID, email, user.IsAdmin)
	if err != nil {
		return nil, err
	}

	tok, err := s.codec.Mint(user.ID, email, isAdmin)
	if err != nil {
		return nil, fmt.Errorf("minting session token: %w", err)
	}

	return &Session{
		Token: tok,
		User:  SessionUser{ID: user.ID, Email: email, IsAdmin: isAdmin},
	}, nil
}

// resolveAdmin merges the configured allow-list, the admins table, and
// the stored flag. A newly matched email is promoted and stays promoted.
func (s *Service) resolveAdmin(ctx context.Context, userID, email string, stored bool) (bool, error) {
	listed := s.adminEmails[email]
	if !listed {
		var err error
		listed, err = s.repo.AdminEmailExists(ctx, email)
		if err != nil {
			return false, fmt.Errorf("checking admin allow-list: %w", err)
		}
	}

	isAdmin := listed || stored
	if isAdmin && !stored {
		if err := s.repo.PromoteAdmin(ctx, userID); err != nil {
			return false, fmt.Errorf("promoting admin: %w", err)
		}
	}
	return isAdmin, nil
}

// generateCode draws a zero-padded 6-digit decimal code from a
// cryptographically secure source.
func generateCode() (string, error) {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", binary.BigEndian.Uint32(buf[:])%1_000_000), nil
}

// hashCode computes hex(sha256(email + ":" + code + ":" + salt)).
func (s *Service) hashCode(email, code string) string {
	digest := sha256.Sum256([]byte(email + ":" + code + ":" + string(s.salt)))
	return hex.EncodeToString(digest[:])
}
