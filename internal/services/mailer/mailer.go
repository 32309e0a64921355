// Copyright 2026 The TEEDS Authors
// Licensed under the EUPL-1.2

// Package mailer delivers one-time sign-in codes.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wneessen/go-mail"

	"codeberg.org/teedsvote/teeds/internal/config"
)

// dialTimeout bounds the SMTP exchange so a slow provider surfaces as a
// delivery failure instead of hanging the request.
const dialTimeout = 10 * time.Second

// Sender delivers a one-time code to a recipient.
type Sender interface {
	SendOTP(ctx context.Context, to, code string, ttl time.Duration) error
}

// New returns an SMTP sender, or a logging fallback when no SMTP host is
// configured (local development).
func New(cfg *config.SMTPConfig) Sender {
	if cfg.Host == "" || cfg.From == "" {
		return &logSender{}
	}
	return &smtpSender{cfg: cfg}
}

type smtpSender struct {
	cfg *config.SMTPConfig
}

func (s *smtpSender) SendOTP(ctx context.Context, to, code string, ttl time.Duration) error {
	msg := mail.NewMsg()

	if s.cfg.FromName != "" {
		if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject("Your TEEDS Design Voting OTP")
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
		"Here is your 6-digit OTP: %s\n\nIt expires in %d minutes.",
		code, int(ttl.Minutes())))

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTimeout(dialTimeout),
	}

	if s.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		// Implicit TLS for port 465, STARTTLS for everything else
		if s.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if s.cfg.Username != "" && s.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}

// logSender logs codes instead of sending them.
type logSender struct{}

func (*logSender) SendOTP(_ context.Context, to, code string, _ time.Duration) error {
	slog.Warn("SMTP not configured, logging one-time code instead", "to", to, "code", code)
	return nil
}
