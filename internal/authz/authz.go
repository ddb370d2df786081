// Copyright (c) 2026 Tatami. All rights reserved.
// Author: an.le.vn@gmail.com

/*
Package authz implements the access-validation core of the Tatami platform.

It answers one question for every protected endpoint: may the requesting
person act on this organisation, school, or person? The package resolves a
bearer-token identity to an internal person record, determines that person's
effective roles, and evaluates entity-specific relationship rules.

Architecture:

  - Scope: A request-lifetime memoization store for identity and role lookups.
  - Resolver: Binds external identities (token subjects, invitation codes) to persons.
  - Validator: The two-stage existence-then-authorization rule engine.
  - Directories: Narrow store interfaces for persons, organisations, and schools.

Decisions are returned as plain values ([Decision]) rather than raised as
errors. Go errors are reserved for genuine store failures, which must never be
mistaken for a denial.
*/
package authz

// # Request Identity

// Requester is the resolved identity of the current request.
//
// It is produced exactly once per request by the authorization middleware and
// stored in the request context so handlers and the [Validator] can consult it
// without re-resolving.
type Requester struct {
	// PersonID is the internal person record backing the authenticated account.
	PersonID string

	// Roles is the person's effective role set, resolved through the scoped cache.
	Roles RoleSet
}
