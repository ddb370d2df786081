// Copyright (c) 2026 Tatami. All rights reserved.
// Author: an.le.vn@gmail.com

package organisation_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anlevn/tatami/internal/core/organisation"
	"github.com/anlevn/tatami/internal/platform/apperr"
)

// fakeRepository is an in-memory [organisation.Repository] for service tests.
type fakeRepository struct {
	organisations map[string]*organisation.Organisation
	slugs         map[string]*organisation.Organisation
	members       map[string][]*organisation.Member

	findByIDCalls   int
	findBySlugCalls int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		organisations: map[string]*organisation.Organisation{},
		slugs:         map[string]*organisation.Organisation{},
		members:       map[string][]*organisation.Member{},
	}
}

func (f *fakeRepository) List(_ context.Context, _ organisation.Filter, _, _ int) ([]*organisation.Organisation, int, error) {
	var all []*organisation.Organisation
	for _, o := range f.organisations {
		all = append(all, o)
	}
	return all, len(all), nil
}

func (f *fakeRepository) FindByID(_ context.Context, id string) (*organisation.Organisation, error) {
	f.findByIDCalls++
	o, ok := f.organisations[id]
	if !ok {
		return nil, apperr.NotFound("Organisation")
	}
	return o, nil
}

func (f *fakeRepository) FindBySlug(_ context.Context, slug string) (*organisation.Organisation, error) {
	f.findBySlugCalls++
	o, ok := f.slugs[slug]
	if !ok {
		return nil, apperr.NotFound("Organisation")
	}
	return o, nil
}

func (f *fakeRepository) Create(_ context.Context, o *organisation.Organisation) error {
	f.organisations[o.ID] = o
	f.slugs[o.Slug] = o
	return nil
}

func (f *fakeRepository) Update(_ context.Context, o *organisation.Organisation) error {
	f.organisations[o.ID] = o
	return nil
}

func (f *fakeRepository) SoftDelete(_ context.Context, id string) error {
	delete(f.organisations, id)
	return nil
}

func (f *fakeRepository) ListMembers(_ context.Context, organisationID string) ([]*organisation.Member, error) {
	return f.members[organisationID], nil
}

func (f *fakeRepository) AddMember(_ context.Context, member *organisation.Member) error {
	f.members[member.OrganisationID] = append(f.members[member.OrganisationID], member)
	return nil
}

func (f *fakeRepository) SetMemberAdmin(_ context.Context, organisationID, personID string, isAdmin bool) error {
	for _, member := range f.members[organisationID] {
		if member.PersonID == personID {
			member.IsAdmin = isAdmin
		}
	}
	return nil
}

func (f *fakeRepository) RemoveMember(_ context.Context, organisationID, personID string) error {
	kept := f.members[organisationID][:0]
	for _, member := range f.members[organisationID] {
		if member.PersonID != personID {
			kept = append(kept, member)
		}
	}
	f.members[organisationID] = kept
	return nil
}

func (f *fakeRepository) CountAdmins(_ context.Context, organisationID string) (int, error) {
	count := 0
	for _, member := range f.members[organisationID] {
		if member.IsAdmin {
			count++
		}
	}
	return count, nil
}

// fakeHierarchy serves parent links from a static map.
type fakeHierarchy struct {
	parents map[string]string
}

func (f *fakeHierarchy) GetParentID(_ context.Context, organisationID string) (string, error) {
	return f.parents[organisationID], nil
}

func newService(repo *fakeRepository, parents map[string]string) *organisation.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return organisation.NewService(repo, &fakeHierarchy{parents: parents}, logger)
}

/*
TestService_GetOrganisation_Discriminator checks that 36-character identifiers
resolve by ID and anything else resolves by slug.
*/
func TestService_GetOrganisation_Discriminator(t *testing.T) {
	repo := newFakeRepository()
	service := newService(repo, nil)

	uuidLike := "0190793f-2f36-7b5c-b3a1-000000000001"
	repo.organisations[uuidLike] = &organisation.Organisation{ID: uuidLike, Name: "Judo Federation"}
	repo.slugs["judo-federation"] = repo.organisations[uuidLike]

	byID, err := service.GetOrganisation(context.Background(), uuidLike)
	require.NoError(t, err)
	assert.Equal(t, "Judo Federation", byID.Name)
	assert.Equal(t, 1, repo.findByIDCalls)
	assert.Equal(t, 0, repo.findBySlugCalls)

	bySlug, err := service.GetOrganisation(context.Background(), "judo-federation")
	require.NoError(t, err)
	assert.Equal(t, byID, bySlug)
	assert.Equal(t, 1, repo.findBySlugCalls)
}

/*
TestService_CreateOrganisation checks slug generation and that the creator is
enrolled as the first admin member.
*/
func TestService_CreateOrganisation(t *testing.T) {
	repo := newFakeRepository()
	service := newService(repo, nil)

	input := &organisation.Organisation{
		Name:        "Tokyo Judo Association",
		Art:         "judo",
		CountryCode: "JP",
	}

	err := service.CreateOrganisation(context.Background(), input, "person-1")
	require.NoError(t, err)

	assert.NotEmpty(t, input.ID)
	assert.Equal(t, "tokyo-judo-association", input.Slug)
	assert.True(t, input.IsActive)

	members := repo.members[input.ID]
	require.Len(t, members, 1)
	assert.Equal(t, "person-1", members[0].PersonID)
	assert.True(t, members[0].IsAdmin)
}

/*
TestService_CreateOrganisation_Validation checks that mandatory fields are
enforced before anything is persisted.
*/
func TestService_CreateOrganisation_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input organisation.Organisation
	}{
		{"missing_name", organisation.Organisation{Art: "judo", CountryCode: "JP"}},
		{"missing_art", organisation.Organisation{Name: "Club", CountryCode: "JP"}},
		{"missing_country", organisation.Organisation{Name: "Club", Art: "judo"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepository()
			service := newService(repo, nil)

			err := service.CreateOrganisation(context.Background(), &tt.input, "person-1")
			require.Error(t, err)

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, "VALIDATION_ERROR", ae.Code)
			assert.Empty(t, repo.organisations)
		})
	}
}

/*
TestService_UpdateOrganisation_ParentCycle checks that parent changes closing
a cycle in the organisation tree are rejected.
*/
func TestService_UpdateOrganisation_ParentCycle(t *testing.T) {
	// Tree: federation -> association -> club.
	parents := map[string]string{
		"association": "federation",
		"club":        "association",
	}

	tests := []struct {
		name      string
		target    string
		newParent string
		wantErr   bool
	}{
		{"own_parent", "federation", "federation", true},
		{"direct_cycle", "association", "club", true},
		{"root_cycle", "federation", "club", true},
		{"valid_reparent", "club", "federation", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepository()
			service := newService(repo, parents)

			parent := tt.newParent
			err := service.UpdateOrganisation(context.Background(), &organisation.Organisation{
				ID:       tt.target,
				ParentID: &parent,
			})

			if tt.wantErr {
				require.Error(t, err)
				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, 422, ae.HTTPStatus)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

/*
TestService_LastAdminProtection checks that neither demotion nor removal can
leave an organisation without any admin.
*/
func TestService_LastAdminProtection(t *testing.T) {
	ctx := context.Background()

	setup := func() (*fakeRepository, *organisation.Service) {
		repo := newFakeRepository()
		repo.members["org-1"] = []*organisation.Member{
			{OrganisationID: "org-1", PersonID: "admin-1", IsAdmin: true},
			{OrganisationID: "org-1", PersonID: "member-1", IsAdmin: false},
		}
		return repo, newService(repo, nil)
	}

	t.Run("demote_last_admin_rejected", func(t *testing.T) {
		repo, service := setup()

		err := service.SetMemberAdmin(ctx, "org-1", "admin-1", false)
		require.Error(t, err)

		count, _ := repo.CountAdmins(ctx, "org-1")
		assert.Equal(t, 1, count)
	})

	t.Run("remove_last_admin_rejected", func(t *testing.T) {
		_, service := setup()

		err := service.RemoveMember(ctx, "org-1", "admin-1")
		require.Error(t, err)
	})

	t.Run("remove_plain_member_allowed", func(t *testing.T) {
		repo, service := setup()

		require.NoError(t, service.RemoveMember(ctx, "org-1", "member-1"))
		assert.Len(t, repo.members["org-1"], 1)
	})

	t.Run("demote_with_second_admin_allowed", func(t *testing.T) {
		repo, service := setup()
		repo.members["org-1"] = append(repo.members["org-1"],
			&organisation.Member{OrganisationID: "org-1", PersonID: "admin-2", IsAdmin: true})

		require.NoError(t, service.SetMemberAdmin(ctx, "org-1", "admin-1", false))

		count, _ := repo.CountAdmins(ctx, "org-1")
		assert.Equal(t, 1, count)
	})
}
