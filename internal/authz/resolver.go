// Copyright (c) 2026 Tatami. All rights reserved.
// Author: an.le.vn@gmail.com

package authz

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anlevn/tatami/internal/platform/apperr"
	"github.com/anlevn/tatami/internal/platform/sec"
)

// # Identity Resolution

// Identity is the external identity carried by a verified bearer token.
// It is immutable for the duration of a request.
type Identity struct {
	// ExternalID is the subject claim of the token — the login account id.
	ExternalID string

	// InvitationCode is the optional one-time secret presented on first
	// login, before any person is bound to the external id.
	InvitationCode string
}

// ExtractIdentity reads the external identity from verified token claims.
//
// Signature and expiry validation happen in the authentication middleware;
// this only checks structural integrity. A missing subject claim is a
// structural failure and maps to 401, not to a business denial.
func ExtractIdentity(claims *sec.AuthClaims) (Identity, error) {
	if claims == nil || claims.Subject == "" {
		return Identity{}, apperr.Unauthorized("Token carries no subject claim")
	}

	return Identity{
		ExternalID:     claims.Subject,
		InvitationCode: claims.InvitationCode,
	}, nil
}

// cacheID builds the scoped-cache key id for this identity.
func (identity Identity) cacheID() string {
	return identity.ExternalID + "\x00" + identity.InvitationCode
}

// # Resolver

// Resolver binds external identities to internal persons and persons to
// their role grants. Every lookup goes through the per-request [Scope].
type Resolver struct {
	persons PersonDirectory
	logger  *slog.Logger
}

// NewResolver constructs a [Resolver].
func NewResolver(persons PersonDirectory, logger *slog.Logger) *Resolver {
	return &Resolver{persons: persons, logger: logger}
}

/*
ResolvePersonID resolves an external identity to an internal person id.

Description: Looks up the person bound to the external id first. When nothing
is bound and an invitation code is present, looks up the code instead; on a
match the code is consumed — the external id is bound permanently and the code
cleared — so it can never resolve again. The final result, including a
legitimate miss, is memoized for the rest of the request.

Parameters:
  - context: context.Context
  - scope: *Scope (Per-request cache)
  - identity: Identity

Returns:
  - string: Person id, or "" when the identity resolves to no person
  - error: Store failures only — "not registered" is not an error here
*/
func (resolver *Resolver) ResolvePersonID(context context.Context, scope *Scope, identity Identity) (string, error) {
	key := cacheKey{kind: kindPersonByIdentity, id: identity.cacheID()}

	value, err := scope.memoize(key, func() (any, error) {
		return resolver.lookupPersonID(context, identity)
	})
	if err != nil {
		return "", err
	}

	return value.(string), nil
}

// lookupPersonID performs the uncached two-step identity lookup.
func (resolver *Resolver) lookupPersonID(context context.Context, identity Identity) (string, error) {
	personID, err := resolver.persons.FindPersonIDByExternalID(context, identity.ExternalID)
	if err != nil {
		return "", fmt.Errorf("authz_resolve_by_external_id_failed: %w", err)
	}
	if personID != "" {
		return personID, nil
	}

	if identity.InvitationCode == "" {
		return "", nil
	}

	// First login with an invitation: bind the external id and burn the code.
	personID, err = resolver.persons.FindPersonIDByInvitationCode(context, identity.InvitationCode)
	if err != nil {
		return "", fmt.Errorf("authz_resolve_by_invitation_failed: %w", err)
	}
	if personID == "" {
		return "", nil
	}

	if err := resolver.persons.ConsumeInvitationCode(context, personID, identity.ExternalID); err != nil {
		return "", fmt.Errorf("authz_consume_invitation_failed: %w", err)
	}

	resolver.logger.Info("invitation_code_consumed",
		slog.String("person_id", personID),
	)

	return personID, nil
}

/*
ResolveRoles returns the role set currently granted to a person.

Description: The underlying store is consulted at most once per request scope;
repeated calls return the identical cached set, empty set included.

Parameters:
  - context: context.Context
  - scope: *Scope
  - personID: string

Returns:
  - RoleSet: Possibly empty, never nil on success
  - error: Store failures only
*/
func (resolver *Resolver) ResolveRoles(context context.Context, scope *Scope, personID string) (RoleSet, error) {
	key := cacheKey{kind: kindRolesByPerson, id: personID}

	value, err := scope.memoize(key, func() (any, error) {
		roles, err := resolver.persons.GetRolesForPerson(context, personID)
		if err != nil {
			return nil, fmt.Errorf("authz_resolve_roles_failed: %w", err)
		}
		return NewRoleSet(roles...), nil
	})
	if err != nil {
		return nil, err
	}

	return value.(RoleSet), nil
}

/*
ResolveUserAccountID returns the login account id backing a person.

Parameters:
  - context: context.Context
  - scope: *Scope
  - personID: string

Returns:
  - string: Account id, or "" for persons without a linked account
  - error: Store failures only
*/
func (resolver *Resolver) ResolveUserAccountID(context context.Context, scope *Scope, personID string) (string, error) {
	key := cacheKey{kind: kindAccountByPerson, id: personID}

	value, err := scope.memoize(key, func() (any, error) {
		accountID, err := resolver.persons.GetUserAccountIDForPerson(context, personID)
		if err != nil {
			return nil, fmt.Errorf("authz_resolve_account_failed: %w", err)
		}
		return accountID, nil
	})
	if err != nil {
		return "", err
	}

	return value.(string), nil
}
