// Copyright 2026 The TEEDS Authors
// Licensed under the EUPL-1.2

package config

import (
	"fmt"
	"strings"
	"time"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

var configFile = altsrc.StringSourcer("config.toml")

type Config struct { //nolint:govet // fieldalignment not critical for config structs
	Server   ServerConfig
	Log      LogConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Auth     AuthConfig
	Voting   VotingConfig
	Storage  StorageConfig
}

type ServerConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Host        string
	Port        int
	BaseURL     string
	MaxBodySize int // in MB
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

type DatabaseConfig struct {
	DSN string
}

type SMTPConfig struct { //nolint:govet // fieldalignment not critical
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	TLS      bool
}

type AuthConfig struct { //nolint:govet // fieldalignment not critical
	EmailDomain string        // institutional domain suffix, e.g. "asu.edu"
	OTPTTL      time.Duration // one-time code lifetime
	SessionTTL  time.Duration // token lifetime, single-sourced for mint and refresh
	Secret      string        // HMAC signing secret (doubles as the OTP hash salt)
	AdminEmails []string      // allow-list merged with the admins table
}

type VotingConfig struct { //nolint:govet // fieldalignment not critical
	Start            time.Time
	End              time.Time // zero means no closing time
	Modalities       []string
	DefaultVoteLimit int
}

type StorageConfig struct {
	Dir        string // local blob store root
	PublicPath string // URL prefix the files are served under
}

func NewFromCLI(cmd *cli.Command) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:        cmd.String("host"),
			Port:        int(cmd.Int("port")),
			BaseURL:     cmd.String("base-url"),
			MaxBodySize: int(cmd.Int("max-body-size")),
		},
		Log: LogConfig{
			Level:  cmd.String("log-level"),
			Format: cmd.String("log-format"),
		},
		Database: DatabaseConfig{
			DSN: cmd.String("database-dsn"),
		},
		SMTP: SMTPConfig{
			Host:     cmd.String("smtp-host"),
			Port:     int(cmd.Int("smtp-port")),
			Username: cmd.String("smtp-username"),
			Password: cmd.String("smtp-password"),
			From:     cmd.String("smtp-from"),
			FromName: cmd.String("smtp-from-name"),
			TLS:      cmd.Bool("smtp-tls"),
		},
		Auth: AuthConfig{
			EmailDomain: strings.TrimPrefix(cmd.String("email-domain"), "@"),
			OTPTTL:      time.Duration(cmd.Int("otp-ttl")) * time.Minute,
			SessionTTL:  time.Duration(cmd.Int("session-ttl")) * time.Hour,
			Secret:      cmd.String("signing-secret"),
			AdminEmails: splitList(cmd.String("admin-emails")),
		},
		Voting: VotingConfig{
			Modalities:       splitList(cmd.String("modalities")),
			DefaultVoteLimit: int(cmd.Int("default-vote-limit")),
		},
		Storage: StorageConfig{
			Dir:        cmd.String("storage-dir"),
			PublicPath: cmd.String("storage-public-path"),
		},
	}

	start, err := parseTimeFlag(cmd.String("voting-start"))
	if err != nil {
		return nil, fmt.Errorf("invalid voting-start: %w", err)
	}
	cfg.Voting.Start = start

	end, err := parseTimeFlag(cmd.String("voting-end"))
	if err != nil {
		return nil, fmt.Errorf("invalid voting-end: %w", err)
	}
	cfg.Voting.End = end

	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = buildBaseURL(cfg)
	}

	return cfg, nil
}

// splitList splits a comma-separated flag value into trimmed, lowercased entries.
func splitList(value string) []string {
	var entries []string
	for part := range strings.SplitSeq(value, ",") {
		if trimmed := strings.ToLower(strings.TrimSpace(part)); trimmed != "" {
			entries = append(entries, trimmed)
		}
	}
	return entries
}

func parseTimeFlag(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, value)
}

func buildBaseURL(cfg *Config) string {
	host := cfg.Server.Host
	port := cfg.Server.Port
	if port == 80 {
		return fmt.Sprintf("http://%s", host)
	}
	return fmt.Sprintf("http://%s:%d", host, port)
}

// IsLocalhost checks if the host is a localhost address.
func IsLocalhost(host string) bool {
	switch host {
	case "", "localhost", "127.0.0.1", "::1":
		return true
	}
	return strings.HasSuffix(host, ".localhost")
}

func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "host",
			Value:   "localhost",
			Usage:   "Host to bind to",
			Sources: cli.NewValueSourceChain(cli.EnvVar("HOST"), toml.TOML("server.host", configFile)),
		},
		&cli.IntFlag{
			Name:    "port",
			Value:   8080,
			Usage:   "Port to listen on",
			Sources: cli.NewValueSourceChain(cli.EnvVar("PORT"), toml.TOML("server.port", configFile)),
		},
		&cli.StringFlag{
			Name:    "base-url",
			Usage:   "Base URL for the application",
			Sources: cli.NewValueSourceChain(cli.EnvVar("BASE_URL"), toml.TOML("server.base_url", configFile)),
		},
		&cli.IntFlag{
			Name:    "max-body-size",
			Value:   16,
			Usage:   "Maximum request body size in MB",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MAX_BODY_SIZE"), toml.TOML("server.max_body_size", configFile)),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "Log level (debug, info, warn, error)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_LEVEL"), toml.TOML("log.level", configFile)),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Value:   "text",
			Usage:   "Log format (text, json)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_FORMAT"), toml.TOML("log.format", configFile)),
		},
		&cli.StringFlag{
			Name:    "database-dsn",
			Value:   "./data/teeds.db",
			Usage:   "Database DSN (SQLite path or postgres:// URL)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("DATABASE_DSN"), toml.TOML("database.dsn", configFile)),
		},
		// SMTP flags
		&cli.StringFlag{
			Name:    "smtp-host",
			Usage:   "SMTP host for outbound mail (unset logs codes instead)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_HOST"), toml.TOML("smtp.host", configFile)),
		},
		&cli.IntFlag{
			Name:    "smtp-port",
			Value:   587,
			Usage:   "SMTP port",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_PORT"), toml.TOML("smtp.port", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-username",
			Usage:   "SMTP username",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_USERNAME"), toml.TOML("smtp.username", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-password",
			Usage:   "SMTP password",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_PASSWORD"), toml.TOML("smtp.password", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-from",
			Usage:   "Sender address for outbound mail",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_FROM"), toml.TOML("smtp.from", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-from-name",
			Value:   "TEEDS Design Voting",
			Usage:   "Sender display name",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_FROM_NAME"), toml.TOML("smtp.from_name", configFile)),
		},
		&cli.BoolFlag{
			Name:    "smtp-tls",
			Value:   true,
			Usage:   "Require TLS for SMTP",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_TLS"), toml.TOML("smtp.tls", configFile)),
		},
		// Auth flags
		&cli.StringFlag{
			Name:    "email-domain",
			Value:   "asu.edu",
			Usage:   "Institutional email domain required for sign-in",
			Sources: cli.NewValueSourceChain(cli.EnvVar("EMAIL_DOMAIN"), toml.TOML("auth.email_domain", configFile)),
		},
		&cli.IntFlag{
			Name:    "otp-ttl",
			Value:   10,
			Usage:   "One-time code lifetime in minutes",
			Sources: cli.NewValueSourceChain(cli.EnvVar("OTP_TTL"), toml.TOML("auth.otp_ttl", configFile)),
		},
		&cli.IntFlag{
			Name:    "session-ttl",
			Value:   12,
			Usage:   "Session token lifetime in hours (minting and refresh)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SESSION_TTL"), toml.TOML("auth.session_ttl", configFile)),
		},
		&cli.StringFlag{
			Name:    "signing-secret",
			Usage:   "HMAC signing secret (auto-generated on localhost if empty)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SIGNING_SECRET"), toml.TOML("auth.signing_secret", configFile)),
		},
		&cli.StringFlag{
			Name:    "admin-emails",
			Usage:   "Comma-separated admin allow-list (merged with the admins table)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("ADMIN_EMAILS"), toml.TOML("auth.admin_emails", configFile)),
		},
		// Voting flags
		&cli.StringFlag{
			Name:    "voting-start",
			Usage:   "RFC3339 timestamp when voting opens (empty opens immediately)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("VOTING_START"), toml.TOML("voting.start", configFile)),
		},
		&cli.StringFlag{
			Name:    "voting-end",
			Usage:   "RFC3339 timestamp when voting closes (empty keeps it open)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("VOTING_END"), toml.TOML("voting.end", configFile)),
		},
		&cli.StringFlag{
			Name:    "modalities",
			Value:   "online,in-person",
			Usage:   "Comma-separated submission modalities",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MODALITIES"), toml.TOML("voting.modalities", configFile)),
		},
		&cli.IntFlag{
			Name:    "default-vote-limit",
			Value:   1,
			Usage:   "Votes per voter per modality when no setting overrides it",
			Sources: cli.NewValueSourceChain(cli.EnvVar("DEFAULT_VOTE_LIMIT"), toml.TOML("voting.default_vote_limit", configFile)),
		},
		// Storage flags
		&cli.StringFlag{
			Name:    "storage-dir",
			Value:   "./data/uploads",
			Usage:   "Directory for uploaded design files",
			Sources: cli.NewValueSourceChain(cli.EnvVar("STORAGE_DIR"), toml.TOML("storage.dir", configFile)),
		},
		&cli.StringFlag{
			Name:    "storage-public-path",
			Value:   "/files",
			Usage:   "URL prefix uploaded files are served under",
			Sources: cli.NewValueSourceChain(cli.EnvVar("STORAGE_PUBLIC_PATH"), toml.TOML("storage.public_path", configFile)),
		},
	}
}
