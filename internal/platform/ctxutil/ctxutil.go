// Copyright (c) 2026 Tatami. All rights reserved.
// Author: an.le.vn@gmail.com

// Package ctxutil provides helpers for interacting with values stored in [context.Context].
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/anlevn/tatami/internal/authz"
	"github.com/anlevn/tatami/internal/platform/ctxkey"
	"github.com/anlevn/tatami/internal/platform/sec"
)

// # Request Tracing

// WithRequestID returns a new context with the provided request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if not found.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger retrieves the logger from the context.
// If no logger is found, it returns the global default logger.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return logger
}

// # Identity & Access

// WithAuthUser returns a new context with the provided token claims attached.
func WithAuthUser(ctx context.Context, user *sec.AuthClaims) context.Context {
	return context.WithValue(ctx, ctxkey.KeyUser, user)
}

// GetAuthUser retrieves the [*sec.AuthClaims] from the [context.Context].
func GetAuthUser(ctx context.Context) *sec.AuthClaims {
	claims, ok := ctx.Value(ctxkey.KeyUser).(*sec.AuthClaims)
	if !ok {
		return nil
	}
	return claims
}

// WithRequester returns a new context carrying the resolved person identity.
func WithRequester(ctx context.Context, requester *authz.Requester) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequester, requester)
}

// GetRequester retrieves the resolved [*authz.Requester] from the context.
// Returns nil when identity resolution has not run for this request.
func GetRequester(ctx context.Context) *authz.Requester {
	requester, ok := ctx.Value(ctxkey.KeyRequester).(*authz.Requester)
	if !ok {
		return nil
	}
	return requester
}

// WithAuthScope returns a new context carrying the per-request identity cache.
func WithAuthScope(ctx context.Context, scope *authz.Scope) context.Context {
	return context.WithValue(ctx, ctxkey.KeyAuthScope, scope)
}

// GetAuthScope retrieves the [*authz.Scope] from the context.
//
// A fresh empty scope is returned when none is attached, so callers can
// always validate — they just lose cross-call memoization.
func GetAuthScope(ctx context.Context) *authz.Scope {
	scope, ok := ctx.Value(ctxkey.KeyAuthScope).(*authz.Scope)
	if !ok {
		return authz.NewScope()
	}
	return scope
}
