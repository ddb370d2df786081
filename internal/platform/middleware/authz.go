// Copyright (c) 2026 Tatami. All rights reserved.
// Author: an.le.vn@gmail.com

package middleware

import (
	"net/http"
	"strings"

	"github.com/anlevn/tatami/internal/authz"
	"github.com/anlevn/tatami/internal/platform/apperr"
	"github.com/anlevn/tatami/internal/platform/ctxutil"
	"github.com/anlevn/tatami/internal/platform/respond"
	"github.com/anlevn/tatami/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify tokens in middleware.
//
// # Why an interface?
//
// Defining TokenVerifier here decouples the middleware from the token service
// implementation, allowing us to easily inject mocks during unit testing.
type TokenVerifier interface {
	VerifyToken(tokenStr string) (*sec.AuthClaims, error)
}

// Authenticate extracts and verifies the JWT from the Authorization header.
//
// # Flow
//  1. Check for 'Authorization: Bearer <token>' header.
//  2. If absent, request proceeds as anonymous.
//  3. If present, parse and verify the JWT via [TokenVerifier].
//  4. Inject [*sec.AuthClaims] into the request context for downstream use.
//
// Signature and expiry validation end here; everything downstream may trust
// the claim set structurally.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get("Authorization")

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Format Validation ──────────────────────────────────────────
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
				return
			}

			// ── 3. Token Verification ─────────────────────────────────────────
			tokenStr := parts[1]
			claims, err := verifier.VerifyToken(tokenStr)
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetAuthUser(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireRegistered resolves the requesting person exactly once per request.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate]. It implies
// [RequireAuth] so both need not be mounted.
//
// # Flow
//  1. Require verified [*sec.AuthClaims] in context (401 otherwise).
//  2. Extract the external identity; a missing subject claim is 401.
//  3. Create a fresh [*authz.Scope] and resolve the person id through it —
//     consuming a pending invitation code on first login.
//  4. No person bound → 403 NOT_REGISTERED (a business condition, distinct
//     from role-based denial).
//  5. Resolve the role set and inject requester + scope into the context so
//     handlers validate many times without re-resolving.
func RequireRegistered(resolver *authz.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Authentication Check ───────────────────────────────────────
			claims := ctxutil.GetAuthUser(request.Context())
			if claims == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			// ── 2. Structural Identity ────────────────────────────────────────
			identity, err := authz.ExtractIdentity(claims)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			// ── 3. Person Resolution (scoped cache) ───────────────────────────
			scope := authz.NewScope()
			personID, err := resolver.ResolvePersonID(request.Context(), scope, identity)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			// ── 4. Registration Gate ──────────────────────────────────────────
			if personID == "" {
				respond.Error(writer, request, apperr.NotRegistered())
				return
			}

			// ── 5. Role Resolution & Context Injection ────────────────────────
			roles, err := resolver.ResolveRoles(request.Context(), scope, personID)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			ctx := ctxutil.WithAuthScope(request.Context(), scope)
			ctx = ctxutil.WithRequester(ctx, &authz.Requester{PersonID: personID, Roles: roles})
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAnyRole blocks registered requesters holding none of the given roles.
//
// # Usage
//
// Must be registered AFTER [RequireRegistered]. The super-user role always
// passes. This guards role-gated endpoints (platform administration); entity
// relationship checks stay in the [authz.Validator].
func RequireAnyRole(roles ...authz.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			requester := ctxutil.GetRequester(request.Context())
			if requester == nil {
				respond.Error(writer, request, apperr.NotRegistered())
				return
			}

			if !requester.Roles.Has(authz.RoleSuperUser) && !requester.Roles.HasAny(roles...) {
				respond.Error(writer, request, authz.Deny(authz.ReasonInsufficientRole).Err())
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
