// Copyright 2026 The TEEDS Authors
// Licensed under the EUPL-1.2

// Package server wires the configuration, database, services, and HTTP
// routes together and runs the API with graceful shutdown.
package server

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/labstack/echo/v4"
	"github.com/urfave/cli/v3"

	"codeberg.org/teedsvote/teeds/internal/config"
	"codeberg.org/teedsvote/teeds/internal/database"
	"codeberg.org/teedsvote/teeds/internal/handlers"
	"codeberg.org/teedsvote/teeds/internal/repository"
	"codeberg.org/teedsvote/teeds/internal/services/mailer"
	"codeberg.org/teedsvote/teeds/internal/services/otp"
	"codeberg.org/teedsvote/teeds/internal/services/token"
	"codeberg.org/teedsvote/teeds/internal/services/voting"
	"codeberg.org/teedsvote/teeds/internal/storage"
)

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.NewFromCLI(cmd)
	if err != nil {
		return err
	}
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
	)

	secret, err := resolveSecret(cfg)
	if err != nil {
		return err
	}

	// Database
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := database.Close(db); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	// Repository and services
	repo := repository.New(db)
	codec := token.NewCodec(secret, cfg.Auth.SessionTTL)
	sender := mailer.New(&cfg.SMTP)
	otpService := otp.NewService(repo, sender, codec, &cfg.Auth, secret)
	votingService := voting.NewService(repo, &cfg.Voting)
	store := storage.New(cfg.Storage.Dir, cfg.Storage.PublicPath)

	if err := seedAdmins(ctx, repo, cfg.Auth.AdminEmails); err != nil {
		return fmt.Errorf("failed to seed admin allow-list: %w", err)
	}

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	setupMiddleware(e, cfg)
	setupRoutes(e, cfg, repo, codec, otpService, votingService, store)

	return startWithGracefulShutdown(e, cfg)
}

func setupRoutes(
	e *echo.Echo,
	cfg *config.Config,
	repo *repository.Repository,
	codec *token.Codec,
	otpService *otp.Service,
	votingService *voting.Service,
	store *storage.Store,
) {
	auth := handlers.NewAuth(otpService, codec)
	rsvp := handlers.NewRSVP(repo, codec)
	design := handlers.NewDesign(repo, store, codec, cfg.Voting.Modalities)
	vote := handlers.NewVote(votingService, codec)
	admin := handlers.NewAdmin(repo, votingService, codec)
	contact := handlers.NewContact(repo)

	// Uploaded files
	e.Static(cfg.Storage.PublicPath, store.Dir())

	e.GET("/health", handlers.Health)

	api := e.Group("/api")
	api.POST("/request-otp", auth.RequestOTP)
	api.POST("/verify-otp", auth.VerifyOTP)
	api.POST("/refresh-token", auth.RefreshToken)
	api.POST("/record-rsvp", rsvp.RecordRSVP)
	api.POST("/upload-design", design.Upload)
	api.POST("/record-design", design.RecordDesign)
	api.POST("/delete-design", design.DeleteDesign)
	api.GET("/designs", design.ListDesigns)
	api.POST("/update-profile", design.UpdateProfile)
	api.POST("/cast-vote", vote.CastVote)
	api.POST("/flag-design", admin.FlagDesign)
	api.GET("/admin-analytics", admin.Analytics)
	api.POST("/contact-organizers", contact.Contact)
}

// resolveSecret returns the HMAC signing secret. A missing secret is
// tolerated only on localhost, where an ephemeral one is generated;
// every restart then invalidates outstanding tokens.
func resolveSecret(cfg *config.Config) ([]byte, error) {
	if cfg.Auth.Secret != "" {
		return []byte(cfg.Auth.Secret), nil
	}
	if !config.IsLocalhost(cfg.Server.Host) {
		return nil, errors.New("signing-secret is required outside localhost")
	}

	key := securecookie.GenerateRandomKey(32)
	if key == nil {
		return nil, errors.New("failed to generate signing secret")
	}
	slog.Warn("signing-secret not set, generated an ephemeral one",
		"secret", hex.EncodeToString(key))
	return key, nil
}

// seedAdmins mirrors the configured allow-list into the admins table so
// operators can inspect and extend it with plain SQL.
func seedAdmins(ctx context.Context, repo *repository.Repository, emails []string) error {
	for _, email := range emails {
		if err := repo.AddAdminEmail(ctx, email); err != nil {
			return err
		}
	}
	return nil
}

func startWithGracefulShutdown(e *echo.Echo, cfg *config.Config) error {
	e.Server.ReadHeaderTimeout = 10 * time.Second
	e.Server.ReadTimeout = 30 * time.Second
	e.Server.WriteTimeout = 60 * time.Second

	errChan := make(chan error, 1)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		slog.Info("Server running", "url", cfg.Server.BaseURL)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	slog.Info("server stopped")
	return nil
}
