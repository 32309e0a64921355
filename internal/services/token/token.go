// Copyright 2026 The TEEDS Authors
// Licensed under the EUPL-1.2

// Package token implements the compact signed session token: three
// base64url segments (header.claims.signature) with an HMAC-SHA256
// signature. The shape is wire-compatible with HS256 JWTs, but the
// verifier pins the algorithm to exactly HS256 instead of negotiating.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var (
	// ErrInvalid covers every structural or cryptographic failure. The
	// wording is deliberately generic so callers cannot build an oracle.
	ErrInvalid = errors.New("invalid token")
	// ErrExpired is returned by Refresh for a token past its expiry.
	ErrExpired = errors.New("token expired")
)

// tokenHeader is the only header the codec emits or accepts.
const tokenHeader = `{"alg":"HS256","typ":"JWT"}`

// Claims are the identity fields carried by a session token.
type Claims struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	Exp     int64  `json:"exp"`
}

// Expired reports whether the claims are stale at the given instant.
// The comparison is strictly less-than in milliseconds; anything past
// the expiry second is stale.
func (c *Claims) Expired(now time.Time) bool {
	return c.Exp*1000 < now.UnixMilli()
}

// Codec mints and verifies session tokens with a server-held secret.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// NewCodec creates a codec. The ttl is single-sourced: minting and
// refreshing both use it.
func NewCodec(secret []byte, ttl time.Duration) *Codec {
	return &Codec{secret: secret, ttl: ttl}
}

// Mint issues a token for the identity with expiry now+ttl.
func (c *Codec) Mint(sub, email string, isAdmin bool) (string, error) {
	return c.MintAt(sub, email, isAdmin, time.Now())
}

// MintAt issues a token with the expiry computed from an explicit clock.
func (c *Codec) MintAt(sub, email string, isAdmin bool, now time.Time) (string, error) {
	claims := Claims{
		Sub:     sub,
		Email:   email,
		IsAdmin: isAdmin,
		Exp:     now.Add(c.ttl).Unix(),
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	headerB64 := base64.RawURLEncoding.EncodeToString([]byte(tokenHeader))
	payloadB64 := base64.RawURLEncoding.EncodeToString(payload)
	signed := headerB64 + "." + payloadB64
	return signed + "." + c.sign(signed), nil
}

// Decode verifies structure, algorithm, and signature, and returns the
// claims. Expiry is NOT checked here; callers decide whether a
// cryptographically valid token is still current.
func (c *Codec) Decode(tok string) (*Claims, error) {
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		return nil, ErrInvalid
	}

	headerJSON, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, ErrInvalid
	}
	var header struct {
		Alg string `json:"alg"`
		Typ string `json:"typ"`
	}
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, ErrInvalid
	}
	// Pin the algorithm before any signature work. An attacker-supplied
	// "none" or asymmetric header must never reach verification.
	if header.Alg != "HS256" {
		return nil, ErrInvalid
	}

	expected := c.sign(parts[0] + "." + parts[1])
	if !hmac.Equal([]byte(expected), []byte(parts[2])) {
		return nil, ErrInvalid
	}

	payloadJSON, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, ErrInvalid
	}
	var claims Claims
	if err := json.Unmarshal(payloadJSON, &claims); err != nil {
		return nil, ErrInvalid
	}
	return &claims, nil
}

// Refresh rotates a still-valid token, preserving identity claims and
// stamping a fresh expiry. Refresh is not a grace period: an expired
// token cannot be refreshed.
func (c *Codec) Refresh(tok string, now time.Time) (string, error) {
	claims, err := c.Decode(tok)
	if err != nil {
		return "", err
	}
	if claims.Expired(now) {
		return "", ErrExpired
	}
	return c.MintAt(claims.Sub, claims.Email, claims.IsAdmin, now)
}

func (c *Codec) sign(message string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(message))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
