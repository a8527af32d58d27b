package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/anonto42/recipe-hub/backend/internal/handlers"
	"github.com/anonto42/recipe-hub/backend/internal/identity"
	"github.com/anonto42/recipe-hub/backend/internal/middleware"
	"github.com/anonto42/recipe-hub/backend/internal/repositories"
	"github.com/anonto42/recipe-hub/backend/internal/router"
	"github.com/anonto42/recipe-hub/backend/pkg/config"
	"github.com/anonto42/recipe-hub/backend/pkg/firebase"
	"github.com/anonto42/recipe-hub/backend/pkg/mailer"
	"github.com/anonto42/recipe-hub/backend/pkg/storage"
	"github.com/anonto42/recipe-hub/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := config.NewLogger(cfg.Log)

	db, err := config.InitDB(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to initialize databases: %w", err)
	}
	defer db.CloseDB()

	if err := repositories.AutoMigrate(db.Postgres); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	if err := repositories.NewMongoSearchHistoryRepository(db.MongoDB).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create search history indexes: %w", err)
	}

	fbApp, err := firebase.InitFirebase(ctx, cfg.Firebase, log)
	if err != nil {
		return fmt.Errorf("failed to initialize Firebase: %w", err)
	}
	defer func() {
		if err := fbApp.Close(); err != nil {
			log.Warn("closing firestore", slog.Any("error", err))
		}
	}()

	deps := router.Dependencies{
		Config:   cfg,
		DB:       db,
		Log:      log,
		Identity: identity.NewFirebaseProvider(fbApp.AuthClient, fbApp.Firestore, cfg.Firebase.MembershipsCollection),
	}

	switch cfg.Auth.Mode {
	case config.AuthModeJWT:
		jwtVerifier := middleware.NewJWTVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)
		deps.Verifier = jwtVerifier
		deps.Auth = handlers.NewAuthHandler(fbApp.AuthClient, jwtVerifier, deps.Identity, log)
	default:
		deps.Verifier = middleware.NewFirebaseVerifier(fbApp.AuthClient)
		deps.Auth = handlers.NewAuthHandler(fbApp.AuthClient, nil, deps.Identity, log)
	}

	if m := mailer.New(cfg.Mail); m != nil {
		deps.Mailer = m
	} else {
		log.Info("SMTP not configured, moderation emails disabled")
	}

	if cfg.Storage.Bucket != "" {
		s3, err := storage.NewS3(ctx, cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		deps.Storage = s3
	} else {
		log.Info("S3 bucket not configured, media uploads disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.NewHTTPErrorHandler(log)
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	config.SetupMiddleware(e, cfg, log)
	router.SetupRoutes(e, deps)

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", slog.String("addr", cfg.Server.Addr()), slog.String("env", cfg.Env))
		if err := e.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
