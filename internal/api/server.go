// Copyright (c) 2026 Tatami. All rights reserved.
// Author: an.le.vn@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/anlevn/tatami/internal/authz"
	"github.com/anlevn/tatami/internal/core/document"
	"github.com/anlevn/tatami/internal/core/organisation"
	"github.com/anlevn/tatami/internal/core/person"
	"github.com/anlevn/tatami/internal/core/reference"
	"github.com/anlevn/tatami/internal/core/school"
	"github.com/anlevn/tatami/internal/platform/config"
	"github.com/anlevn/tatami/internal/platform/constants"
	"github.com/anlevn/tatami/internal/platform/middleware"
	"github.com/anlevn/tatami/internal/users/account"
	"github.com/anlevn/tatami/internal/users/auth"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here — no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler — always returns 200 if process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler — returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth handles authentication routes (login, register, refresh).
	Auth *auth.Handler

	// Account handles account self-service (profile, preferences, sessions).
	Account *account.Handler

	// Organisation manages federation organisations and their members.
	Organisation *organisation.Handler

	// School manages schools and their student rosters.
	School *school.Handler

	// Person manages the member registry and role grants.
	Person *person.Handler

	// Document manages per-person document metadata.
	Document *document.Handler

	// Reference serves the static catalogues (arts, countries, roles).
	Reference *reference.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
//
// Route groups fall into three access tiers:
//   - /auth and the reference catalogues need a parsed token at most.
//   - Account self-service needs an authenticated login.
//   - Every registry resource additionally needs a bound person record,
//     enforced by the registration gate.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, resolver *authz.Resolver, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Authenticate(verifier))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application API
	// Domain-specific route groups mounted under versioned prefix.
	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/auth", h.Auth.Routes())
		api.Mount("/", h.Reference.Routes())

		// Account self-service requires a login but not a person record:
		// freshly registered accounts manage their own profile before an
		// invitation binds them to the registry.
		api.Group(func(private chi.Router) {
			private.Use(middleware.RequireAuth)
			private.Mount("/me", h.Account.Routes())
		})

		// Registry resources require a bound, role-resolved person.
		api.Group(func(registry chi.Router) {
			registry.Use(middleware.RequireRegistered(resolver))

			registry.Mount("/organisations", h.Organisation.Routes())
			registry.Mount("/schools", h.School.Routes())
			registry.Route("/persons", func(persons chi.Router) {
				persons.Mount("/{id}/documents", h.Document.Routes())
				persons.Mount("/", h.Person.Routes())
			})
		})
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
