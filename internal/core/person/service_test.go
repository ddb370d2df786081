// Copyright (c) 2026 Tatami. All rights reserved.
// Author: an.le.vn@gmail.com

package person_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anlevn/tatami/internal/core/person"
	"github.com/anlevn/tatami/internal/platform/apperr"
)

// fakeRepository is an in-memory [person.Repository] for service tests.
type fakeRepository struct {
	persons map[string]*person.Person
	roles   map[string][]string
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		persons: map[string]*person.Person{},
		roles:   map[string][]string{},
	}
}

func (f *fakeRepository) List(_ context.Context, _ person.Filter, _, _ int) ([]*person.Person, int, error) {
	var all []*person.Person
	for _, p := range f.persons {
		all = append(all, p)
	}
	return all, len(all), nil
}

func (f *fakeRepository) FindByID(_ context.Context, id string) (*person.Person, error) {
	p, ok := f.persons[id]
	if !ok {
		return nil, apperr.NotFound("Person")
	}
	return p, nil
}

func (f *fakeRepository) Create(_ context.Context, p *person.Person) error {
	f.persons[p.ID] = p
	return nil
}

func (f *fakeRepository) Update(_ context.Context, p *person.Person) error {
	f.persons[p.ID] = p
	return nil
}

func (f *fakeRepository) SoftDelete(_ context.Context, id string) error {
	delete(f.persons, id)
	return nil
}

func (f *fakeRepository) SetInvitationCode(_ context.Context, personID, code string) error {
	f.persons[personID].InvitationCode = &code
	return nil
}

func (f *fakeRepository) ClearBinding(_ context.Context, personID string) error {
	f.persons[personID].ExternalID = nil
	f.persons[personID].InvitationCode = nil
	return nil
}

func (f *fakeRepository) ListRoles(_ context.Context, personID string) ([]*person.RoleGrant, error) {
	var grants []*person.RoleGrant
	for _, role := range f.roles[personID] {
		grants = append(grants, &person.RoleGrant{PersonID: personID, Role: role})
	}
	return grants, nil
}

func (f *fakeRepository) GrantRole(_ context.Context, personID, role string) error {
	for _, held := range f.roles[personID] {
		if held == role {
			return nil
		}
	}
	f.roles[personID] = append(f.roles[personID], role)
	return nil
}

func (f *fakeRepository) RevokeRole(_ context.Context, personID, role string) error {
	kept := f.roles[personID][:0]
	for _, held := range f.roles[personID] {
		if held != role {
			kept = append(kept, held)
		}
	}
	f.roles[personID] = kept
	return nil
}

func newService(repo *fakeRepository) *person.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return person.NewService(repo, logger)
}

/*
TestService_CreatePerson checks that new records start unbound and active.
*/
func TestService_CreatePerson(t *testing.T) {
	repo := newFakeRepository()
	service := newService(repo)

	external := "auth0|should-be-dropped"
	input := &person.Person{
		FullName:    "Aiko Tanaka",
		CountryCode: "JP",
		ExternalID:  &external,
	}

	require.NoError(t, service.CreatePerson(context.Background(), input))

	assert.NotEmpty(t, input.ID)
	assert.True(t, input.IsActive)
	assert.Nil(t, input.ExternalID, "binding fields must not be settable at creation")
	assert.Nil(t, input.InvitationCode)
	assert.False(t, input.IsBound())
}

/*
TestService_IssueInvitationCode checks issuance, reissuance, and the
already-bound rejection.
*/
func TestService_IssueInvitationCode(t *testing.T) {
	ctx := context.Background()

	t.Run("issues_fresh_code", func(t *testing.T) {
		repo := newFakeRepository()
		repo.persons["p1"] = &person.Person{ID: "p1", FullName: "Aiko"}
		service := newService(repo)

		code, err := service.IssueInvitationCode(ctx, "p1")
		require.NoError(t, err)
		assert.Len(t, code, 32)
		require.NotNil(t, repo.persons["p1"].InvitationCode)
		assert.Equal(t, code, *repo.persons["p1"].InvitationCode)
	})

	t.Run("reissue_replaces_code", func(t *testing.T) {
		repo := newFakeRepository()
		repo.persons["p1"] = &person.Person{ID: "p1", FullName: "Aiko"}
		service := newService(repo)

		first, err := service.IssueInvitationCode(ctx, "p1")
		require.NoError(t, err)
		second, err := service.IssueInvitationCode(ctx, "p1")
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
		assert.Equal(t, second, *repo.persons["p1"].InvitationCode)
	})

	t.Run("bound_record_rejected", func(t *testing.T) {
		repo := newFakeRepository()
		external := "auth0|abc"
		repo.persons["p1"] = &person.Person{ID: "p1", FullName: "Aiko", ExternalID: &external}
		service := newService(repo)

		_, err := service.IssueInvitationCode(ctx, "p1")
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "CONFLICT", ae.Code)
	})

	t.Run("missing_person", func(t *testing.T) {
		service := newService(newFakeRepository())

		_, err := service.IssueInvitationCode(ctx, "ghost")
		require.Error(t, err)
	})
}

/*
TestService_DisassociateIdentity checks that unbinding clears both the
external identity and the outstanding invitation code.
*/
func TestService_DisassociateIdentity(t *testing.T) {
	repo := newFakeRepository()
	external := "auth0|abc"
	code := "deadbeef"
	repo.persons["p1"] = &person.Person{ID: "p1", FullName: "Aiko", ExternalID: &external, InvitationCode: &code}
	service := newService(repo)

	require.NoError(t, service.DisassociateIdentity(context.Background(), "p1"))

	assert.Nil(t, repo.persons["p1"].ExternalID)
	assert.Nil(t, repo.persons["p1"].InvitationCode)
	assert.False(t, repo.persons["p1"].IsBound())
}

/*
TestService_GrantRole checks catalogue validation and idempotent grants.
*/
func TestService_GrantRole(t *testing.T) {
	ctx := context.Background()

	t.Run("known_role_granted", func(t *testing.T) {
		repo := newFakeRepository()
		repo.persons["p1"] = &person.Person{ID: "p1"}
		service := newService(repo)

		require.NoError(t, service.GrantRole(ctx, "p1", "school-instructor"))
		assert.Equal(t, []string{"school-instructor"}, repo.roles["p1"])
	})

	t.Run("unknown_role_rejected", func(t *testing.T) {
		repo := newFakeRepository()
		repo.persons["p1"] = &person.Person{ID: "p1"}
		service := newService(repo)

		err := service.GrantRole(ctx, "p1", "grandmaster")
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "VALIDATION_ERROR", ae.Code)
		assert.Empty(t, repo.roles["p1"])
	})

	t.Run("repeat_grant_is_noop", func(t *testing.T) {
		repo := newFakeRepository()
		repo.persons["p1"] = &person.Person{ID: "p1"}
		service := newService(repo)

		require.NoError(t, service.GrantRole(ctx, "p1", "organisation-admin"))
		require.NoError(t, service.GrantRole(ctx, "p1", "organisation-admin"))
		assert.Len(t, repo.roles["p1"], 1)
	})

	t.Run("revoke_removes_grant", func(t *testing.T) {
		repo := newFakeRepository()
		repo.persons["p1"] = &person.Person{ID: "p1"}
		repo.roles["p1"] = []string{"organisation-admin"}
		service := newService(repo)

		require.NoError(t, service.RevokeRole(ctx, "p1", "organisation-admin"))
		assert.Empty(t, repo.roles["p1"])
	})
}
