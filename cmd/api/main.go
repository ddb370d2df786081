// Copyright (c) 2026 Tatami. All rights reserved.
// Author: an.le.vn@gmail.com

// Command api is the entry point for the Tatami HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anlevn/tatami/internal/api"
	"github.com/anlevn/tatami/internal/authz"
	"github.com/anlevn/tatami/internal/core/document"
	"github.com/anlevn/tatami/internal/core/organisation"
	"github.com/anlevn/tatami/internal/core/person"
	"github.com/anlevn/tatami/internal/core/reference"
	"github.com/anlevn/tatami/internal/core/school"
	"github.com/anlevn/tatami/internal/platform/config"
	"github.com/anlevn/tatami/internal/platform/constants"
	"github.com/anlevn/tatami/internal/platform/migration"
	pgstore "github.com/anlevn/tatami/internal/platform/postgres"
	redisstore "github.com/anlevn/tatami/internal/platform/redis"
	"github.com/anlevn/tatami/internal/platform/sec"
	"github.com/anlevn/tatami/internal/users/account"
	"github.com/anlevn/tatami/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "tatami"))
	slog.SetDefault(log)

	log.Info("[Tatami] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "tatami"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// Application context outlives startup; it drives background middleware
	// workers and is cancelled on shutdown.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Token Service ──────────────────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 8. Access Control ─────────────────────────────────────────────────
	// The directories are the authority on who belongs where; every request
	// resolves its requester through them once a scope is opened.
	personDirectory := authz.NewPersonDirectory(pool)
	organisationDirectory := authz.NewOrganisationDirectory(pool)
	schoolDirectory := authz.NewSchoolDirectory(pool)

	accessResolver := authz.NewResolver(personDirectory, log)
	accessValidator := authz.NewValidator(accessResolver, personDirectory, organisationDirectory, schoolDirectory)

	// ── 9. Identity Wiring ────────────────────────────────────────────────
	accountRepository := auth.NewAccountRepository(pool)
	sessionRepository := auth.NewSessionRepository(pool)
	resetTokenRepository := auth.NewResetTokenRepository(rdb)
	verificationTokenRepository := auth.NewVerificationTokenRepository(rdb)
	authService := auth.NewService(accountRepository, sessionRepository, resetTokenRepository, verificationTokenRepository, jwtSvc)
	authHandler := auth.NewHandler(authService)

	profileRepository := account.NewAccountRepository(pool)
	preferencesRepository := account.NewPreferencesRepository(pool)
	profileSessionRepository := account.NewSessionRepository(pool)
	accountService := account.NewService(profileRepository, preferencesRepository, profileSessionRepository, log)
	accountHandler := account.NewHandler(accountService)

	// ── 10. Registry Wiring ───────────────────────────────────────────────
	organisationRepository := organisation.NewPostgresRepository(pool)
	organisationService := organisation.NewService(organisationRepository, organisationDirectory, log)
	organisationHandler := organisation.NewHandler(organisationService, accessValidator)

	schoolRepository := school.NewPostgresRepository(pool)
	schoolService := school.NewService(schoolRepository, log)
	schoolHandler := school.NewHandler(schoolService, accessValidator)

	personRepository := person.NewPostgresRepository(pool)
	personService := person.NewService(personRepository, log)
	personHandler := person.NewHandler(personService, accessValidator)

	documentRepository := document.NewPostgresRepository(pool)
	documentService := document.NewService(documentRepository, log)
	documentHandler := document.NewHandler(documentService, accessValidator)

	referenceHandler := reference.NewHandler(reference.DefaultCatalogue())

	// ── 11. HTTP Server ───────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:     liveness,
		Readiness:    readiness,
		Auth:         authHandler,
		Account:      accountHandler,
		Organisation: organisationHandler,
		School:       schoolHandler,
		Person:       personHandler,
		Document:     documentHandler,
		Reference:    referenceHandler,
	}

	server := api.NewServer(appCtx, cfg, log, jwtSvc, accessResolver, handlers)

	// ── 12. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
