// Copyright (c) 2026 Tatami. All rights reserved.
// Author: an.le.vn@gmail.com

package authz_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anlevn/tatami/internal/authz"
	"github.com/anlevn/tatami/internal/platform/apperr"
	"github.com/anlevn/tatami/internal/platform/sec"
)

// fakePersonDirectory is an in-memory [authz.PersonDirectory] with call
// counters, so tests can assert how often the store is actually consulted.
type fakePersonDirectory struct {
	byExternalID map[string]string // externalID -> personID
	byCode       map[string]string // invitationCode -> personID
	roles        map[string][]authz.Role
	accounts     map[string]string // personID -> accountID
	existing     map[string]bool   // personID -> record exists

	externalIDCalls int
	codeCalls       int
	roleCalls       int
	consumeCalls    int

	rolesErr error
}

func newFakePersonDirectory() *fakePersonDirectory {
	return &fakePersonDirectory{
		byExternalID: map[string]string{},
		byCode:       map[string]string{},
		roles:        map[string][]authz.Role{},
		accounts:     map[string]string{},
		existing:     map[string]bool{},
	}
}

func (f *fakePersonDirectory) FindPersonIDByExternalID(_ context.Context, externalID string) (string, error) {
	f.externalIDCalls++
	return f.byExternalID[externalID], nil
}

func (f *fakePersonDirectory) FindPersonIDByInvitationCode(_ context.Context, code string) (string, error) {
	f.codeCalls++
	return f.byCode[code], nil
}

func (f *fakePersonDirectory) ConsumeInvitationCode(_ context.Context, personID, externalID string) error {
	f.consumeCalls++
	for code, boundPerson := range f.byCode {
		if boundPerson == personID {
			delete(f.byCode, code)
		}
	}
	f.byExternalID[externalID] = personID
	return nil
}

func (f *fakePersonDirectory) GetRolesForPerson(_ context.Context, personID string) ([]authz.Role, error) {
	f.roleCalls++
	if f.rolesErr != nil {
		err := f.rolesErr
		f.rolesErr = nil
		return nil, err
	}
	return f.roles[personID], nil
}

func (f *fakePersonDirectory) GetUserAccountIDForPerson(_ context.Context, personID string) (string, error) {
	return f.accounts[personID], nil
}

func (f *fakePersonDirectory) Exists(_ context.Context, personID string) (bool, error) {
	return f.existing[personID], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExtractIdentity(t *testing.T) {
	t.Run("nil claims are unauthorized", func(t *testing.T) {
		_, err := authz.ExtractIdentity(nil)

		var appErr *apperr.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, 401, appErr.HTTPStatus)
	})

	t.Run("missing subject is unauthorized", func(t *testing.T) {
		claims := &sec.AuthClaims{}

		_, err := authz.ExtractIdentity(claims)

		var appErr *apperr.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, 401, appErr.HTTPStatus)
	})

	t.Run("subject and invitation code are carried over", func(t *testing.T) {
		claims := &sec.AuthClaims{InvitationCode: "c0ffee"}
		claims.Subject = "account-1"

		identity, err := authz.ExtractIdentity(claims)

		require.NoError(t, err)
		assert.Equal(t, "account-1", identity.ExternalID)
		assert.Equal(t, "c0ffee", identity.InvitationCode)
	})
}

func TestResolvePersonID(t *testing.T) {
	t.Run("bound identity resolves directly", func(t *testing.T) {
		directory := newFakePersonDirectory()
		directory.byExternalID["account-1"] = "person-1"
		resolver := authz.NewResolver(directory, testLogger())

		personID, err := resolver.ResolvePersonID(context.Background(), authz.NewScope(), authz.Identity{ExternalID: "account-1"})

		require.NoError(t, err)
		assert.Equal(t, "person-1", personID)
		assert.Zero(t, directory.consumeCalls)
	})

	t.Run("unbound identity without code resolves to nothing", func(t *testing.T) {
		directory := newFakePersonDirectory()
		resolver := authz.NewResolver(directory, testLogger())

		personID, err := resolver.ResolvePersonID(context.Background(), authz.NewScope(), authz.Identity{ExternalID: "stranger"})

		require.NoError(t, err)
		assert.Empty(t, personID)
		assert.Zero(t, directory.codeCalls)
	})

	t.Run("invitation code binds and is consumed exactly once", func(t *testing.T) {
		directory := newFakePersonDirectory()
		directory.byCode["c0ffee"] = "person-1"
		resolver := authz.NewResolver(directory, testLogger())

		identity := authz.Identity{ExternalID: "account-1", InvitationCode: "c0ffee"}
		personID, err := resolver.ResolvePersonID(context.Background(), authz.NewScope(), identity)

		require.NoError(t, err)
		assert.Equal(t, "person-1", personID)
		assert.Equal(t, 1, directory.consumeCalls)
		assert.Equal(t, "person-1", directory.byExternalID["account-1"])

		// The burned code no longer resolves for anyone else.
		rival := authz.Identity{ExternalID: "account-2", InvitationCode: "c0ffee"}
		personID, err = resolver.ResolvePersonID(context.Background(), authz.NewScope(), rival)

		require.NoError(t, err)
		assert.Empty(t, personID)
		assert.Equal(t, 1, directory.consumeCalls)
	})

	t.Run("misses are memoized within a scope", func(t *testing.T) {
		directory := newFakePersonDirectory()
		resolver := authz.NewResolver(directory, testLogger())
		scope := authz.NewScope()
		identity := authz.Identity{ExternalID: "stranger"}

		for range 3 {
			personID, err := resolver.ResolvePersonID(context.Background(), scope, identity)
			require.NoError(t, err)
			assert.Empty(t, personID)
		}

		assert.Equal(t, 1, directory.externalIDCalls)
	})
}

func TestResolveRoles(t *testing.T) {
	t.Run("store is consulted once per scope", func(t *testing.T) {
		directory := newFakePersonDirectory()
		directory.roles["person-1"] = []authz.Role{authz.RoleSchoolMember, authz.RoleSchoolSecretary}
		resolver := authz.NewResolver(directory, testLogger())
		scope := authz.NewScope()

		first, err := resolver.ResolveRoles(context.Background(), scope, "person-1")
		require.NoError(t, err)
		second, err := resolver.ResolveRoles(context.Background(), scope, "person-1")
		require.NoError(t, err)

		assert.Equal(t, 1, directory.roleCalls)
		assert.True(t, first.Has(authz.RoleSchoolSecretary))
		assert.Equal(t, first, second)
	})

	t.Run("empty role sets are cached too", func(t *testing.T) {
		directory := newFakePersonDirectory()
		resolver := authz.NewResolver(directory, testLogger())
		scope := authz.NewScope()

		roles, err := resolver.ResolveRoles(context.Background(), scope, "person-1")
		require.NoError(t, err)
		assert.False(t, roles.Has(authz.RoleSuperUser))

		_, err = resolver.ResolveRoles(context.Background(), scope, "person-1")
		require.NoError(t, err)
		assert.Equal(t, 1, directory.roleCalls)
	})

	t.Run("failures are not cached", func(t *testing.T) {
		directory := newFakePersonDirectory()
		directory.roles["person-1"] = []authz.Role{authz.RoleSchoolMember}
		directory.rolesErr = errors.New("connection reset")
		resolver := authz.NewResolver(directory, testLogger())
		scope := authz.NewScope()

		_, err := resolver.ResolveRoles(context.Background(), scope, "person-1")
		require.Error(t, err)

		roles, err := resolver.ResolveRoles(context.Background(), scope, "person-1")
		require.NoError(t, err)
		assert.True(t, roles.Has(authz.RoleSchoolMember))
		assert.Equal(t, 2, directory.roleCalls)
	})
}

func TestResolveUserAccountID(t *testing.T) {
	directory := newFakePersonDirectory()
	directory.accounts["person-1"] = "account-1"
	resolver := authz.NewResolver(directory, testLogger())

	accountID, err := resolver.ResolveUserAccountID(context.Background(), authz.NewScope(), "person-1")

	require.NoError(t, err)
	assert.Equal(t, "account-1", accountID)

	accountID, err = resolver.ResolveUserAccountID(context.Background(), authz.NewScope(), "person-2")

	require.NoError(t, err)
	assert.Empty(t, accountID)
}
