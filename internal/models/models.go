// Copyright 2026 The TEEDS Authors
// Licensed under the EUPL-1.2

// Package models defines the database row types.
package models

import "time"

// User is an authenticated account, created on first successful OTP
// verification. The admin flag is only ever promoted, never revoked.
type User struct { //nolint:govet // fieldalignment: readability over optimization
	ID         string    `db:"id" json:"id"`
	Email      string    `db:"email" json:"email"`
	FullName   *string   `db:"full_name" json:"full_name"`
	AsuID      *string   `db:"asu_id" json:"asu_id"`
	Discipline *string   `db:"discipline" json:"discipline"`
	IsAdmin    bool      `db:"is_admin" json:"is_admin"`
	IsFaculty  bool      `db:"is_faculty" json:"is_faculty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// OneTimeCode stores a salted SHA-256 hash of an emailed sign-in code.
// Rows are consumed exactly once and never deleted by the auth flow.
type OneTimeCode struct { //nolint:govet // fieldalignment: readability over optimization
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	OTPHash   string    `db:"otp_hash" json:"-"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	Used      bool      `db:"used" json:"used"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Design is a contest submission. A submitter may hold at most two,
// all locked to one modality.
type Design struct { //nolint:govet // fieldalignment: readability over optimization
	ID          string    `db:"id" json:"id"`
	Filename    string    `db:"filename" json:"filename"`
	ArtworkName string    `db:"artwork_name" json:"artwork_name"`
	StoragePath string    `db:"storage_path" json:"storage_path"`
	Modality    string    `db:"modality" json:"modality"`
	SubmitterID string    `db:"submitter_id" json:"submitter_id"`
	StudentName *string   `db:"student_name" json:"student_name"`
	Major       *string   `db:"major" json:"major"`
	YearLevel   *string   `db:"year_level" json:"year_level"`
	Asurite     *string   `db:"asurite" json:"asurite"`
	IsFlagged   bool      `db:"is_flagged" json:"is_flagged"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Vote records a single cast vote. Votes stay attached to a modality so
// they survive reassignment when a design is flagged.
type Vote struct { //nolint:govet // fieldalignment: readability over optimization
	ID        string    `db:"id" json:"id"`
	DesignID  string    `db:"design_id" json:"design_id"`
	Modality  string    `db:"modality" json:"modality"`
	VoterID   string    `db:"voter_id" json:"voter_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// RSVP is one row per user, upserted.
type RSVP struct {
	UserID     string    `db:"user_id" json:"user_id"`
	WillAttend string    `db:"will_attend" json:"will_attend"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// ContactMessage is a message submitted through the public contact form.
type ContactMessage struct { //nolint:govet // fieldalignment: readability over optimization
	ID          string    `db:"id" json:"id"`
	SenderName  string    `db:"sender_name" json:"sender_name"`
	SenderEmail string    `db:"sender_email" json:"sender_email"`
	Topic       *string   `db:"topic" json:"topic"`
	Message     string    `db:"message" json:"message"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Setting is a key/value row; vote limits live here so organizers can
// tune them without a redeploy.
type Setting struct {
	Key   string `db:"key" json:"key"`
	Value string `db:"value" json:"value"`
}
