// Copyright (c) 2026 Tatami. All rights reserved.
// Author: an.le.vn@gmail.com

package authz_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anlevn/tatami/internal/authz"
	"github.com/anlevn/tatami/internal/platform/apperr"
)

// fakeOrganisationDirectory is an in-memory [authz.OrganisationDirectory].
type fakeOrganisationDirectory struct {
	existing map[string]bool
	members  map[string]map[string]bool // organisationID -> personID -> isAdmin
	parents  map[string]string

	// existsErr is returned (once) by the next Exists call.
	existsErr error
}

func newFakeOrganisationDirectory() *fakeOrganisationDirectory {
	return &fakeOrganisationDirectory{
		existing: map[string]bool{},
		members:  map[string]map[string]bool{},
		parents:  map[string]string{},
	}
}

func (f *fakeOrganisationDirectory) addMember(organisationID, personID string, isAdmin bool) {
	f.existing[organisationID] = true
	if f.members[organisationID] == nil {
		f.members[organisationID] = map[string]bool{}
	}
	f.members[organisationID][personID] = isAdmin
}

func (f *fakeOrganisationDirectory) Exists(_ context.Context, organisationID string) (bool, error) {
	if f.existsErr != nil {
		err := f.existsErr
		f.existsErr = nil
		return false, err
	}
	return f.existing[organisationID], nil
}

func (f *fakeOrganisationDirectory) HasMember(_ context.Context, organisationID, personID string) (bool, error) {
	_, ok := f.members[organisationID][personID]
	return ok, nil
}

func (f *fakeOrganisationDirectory) IsAdmin(_ context.Context, organisationID, personID string) (bool, error) {
	return f.members[organisationID][personID], nil
}

func (f *fakeOrganisationDirectory) GetParentID(_ context.Context, organisationID string) (string, error) {
	return f.parents[organisationID], nil
}

func (f *fakeOrganisationDirectory) ListOrganisationIDsForPerson(_ context.Context, personID string) ([]string, error) {
	var ids []string
	for organisationID, roster := range f.members {
		if _, ok := roster[personID]; ok {
			ids = append(ids, organisationID)
		}
	}
	return ids, nil
}

// fakeSchoolDirectory is an in-memory [authz.SchoolDirectory].
type fakeSchoolDirectory struct {
	existing map[string]bool
	students map[string]map[string]bool // schoolID -> personID -> isSecretary
}

func newFakeSchoolDirectory() *fakeSchoolDirectory {
	return &fakeSchoolDirectory{
		existing: map[string]bool{},
		students: map[string]map[string]bool{},
	}
}

func (f *fakeSchoolDirectory) addStudent(schoolID, personID string, isSecretary bool) {
	f.existing[schoolID] = true
	if f.students[schoolID] == nil {
		f.students[schoolID] = map[string]bool{}
	}
	f.students[schoolID][personID] = isSecretary
}

func (f *fakeSchoolDirectory) Exists(_ context.Context, schoolID string) (bool, error) {
	return f.existing[schoolID], nil
}

func (f *fakeSchoolDirectory) HasStudent(_ context.Context, schoolID, personID string) (bool, error) {
	_, ok := f.students[schoolID][personID]
	return ok, nil
}

func (f *fakeSchoolDirectory) HasSecretary(_ context.Context, schoolID, personID string) (bool, error) {
	return f.students[schoolID][personID], nil
}

func (f *fakeSchoolDirectory) ListSchoolIDsForPerson(_ context.Context, personID string) ([]string, error) {
	var ids []string
	for schoolID, roster := range f.students {
		if _, ok := roster[personID]; ok {
			ids = append(ids, schoolID)
		}
	}
	return ids, nil
}

// world bundles the three fake directories behind one validator.
type world struct {
	persons       *fakePersonDirectory
	organisations *fakeOrganisationDirectory
	schools       *fakeSchoolDirectory
	validator     *authz.Validator
}

func newWorld() *world {
	persons := newFakePersonDirectory()
	organisations := newFakeOrganisationDirectory()
	schools := newFakeSchoolDirectory()
	resolver := authz.NewResolver(persons, testLogger())

	return &world{
		persons:       persons,
		organisations: organisations,
		schools:       schools,
		validator:     authz.NewValidator(resolver, persons, organisations, schools),
	}
}

func (w *world) grant(personID string, roles ...authz.Role) {
	w.persons.existing[personID] = true
	w.persons.roles[personID] = append(w.persons.roles[personID], roles...)
}

func TestMemberAccessToOrganisation(t *testing.T) {
	ctx := context.Background()

	t.Run("missing organisation is not found", func(t *testing.T) {
		w := newWorld()
		w.grant("person-1", authz.RoleOrganisationMember)

		decision, err := w.validator.MemberAccessToOrganisation(ctx, authz.NewScope(), "person-1", "org-missing")

		require.NoError(t, err)
		assert.Equal(t, authz.OutcomeNotFound, decision.Outcome)
		assert.Equal(t, authz.EntityOrganisation, decision.Entity)

		var appErr *apperr.AppError
		require.ErrorAs(t, decision.Err(), &appErr)
		assert.Equal(t, 404, appErr.HTTPStatus)
	})

	t.Run("super-user bypasses membership", func(t *testing.T) {
		w := newWorld()
		w.grant("root", authz.RoleSuperUser)
		w.organisations.addMember("org-1", "someone-else", false)

		decision, err := w.validator.MemberAccessToOrganisation(ctx, authz.NewScope(), "root", "org-1")

		require.NoError(t, err)
		assert.True(t, decision.Allowed())
		assert.NoError(t, decision.Err())
	})

	t.Run("member of this organisation is allowed", func(t *testing.T) {
		w := newWorld()
		w.grant("person-1", authz.RoleOrganisationMember)
		w.organisations.addMember("org-1", "person-1", false)

		decision, err := w.validator.MemberAccessToOrganisation(ctx, authz.NewScope(), "person-1", "org-1")

		require.NoError(t, err)
		assert.True(t, decision.Allowed())
	})

	t.Run("member of another organisation is denied", func(t *testing.T) {
		w := newWorld()
		w.grant("person-1", authz.RoleOrganisationMember)
		w.organisations.addMember("org-a", "person-1", false)
		w.organisations.addMember("org-b", "someone-else", false)

		decision, err := w.validator.MemberAccessToOrganisation(ctx, authz.NewScope(), "person-1", "org-b")

		require.NoError(t, err)
		assert.Equal(t, authz.OutcomeDenied, decision.Outcome)
		assert.Equal(t, authz.ReasonNoOrganisationAccess, decision.Reason)
	})

	t.Run("no qualifying role is denied before the roster is checked", func(t *testing.T) {
		w := newWorld()
		w.grant("person-1", authz.RoleSchoolMember)
		w.organisations.addMember("org-1", "person-1", false)

		decision, err := w.validator.MemberAccessToOrganisation(ctx, authz.NewScope(), "person-1", "org-1")

		require.NoError(t, err)
		assert.Equal(t, authz.ReasonInsufficientRole, decision.Reason)
	})
}

func TestAdminAccessToOrganisation(t *testing.T) {
	ctx := context.Background()

	t.Run("admin of this organisation is allowed", func(t *testing.T) {
		w := newWorld()
		w.grant("person-1", authz.RoleOrganisationAdmin)
		w.organisations.addMember("org-1", "person-1", true)

		decision, err := w.validator.AdminAccessToOrganisation(ctx, authz.NewScope(), "person-1", "org-1")

		require.NoError(t, err)
		assert.True(t, decision.Allowed())
	})

	t.Run("admin access implies member access", func(t *testing.T) {
		w := newWorld()
		w.grant("person-1", authz.RoleOrganisationAdmin)
		w.organisations.addMember("org-1", "person-1", true)

		decision, err := w.validator.AdminAccessToOrganisation(ctx, authz.NewScope(), "person-1", "org-1")
		require.NoError(t, err)
		require.True(t, decision.Allowed())

		decision, err = w.validator.MemberAccessToOrganisation(ctx, authz.NewScope(), "person-1", "org-1")
		require.NoError(t, err)
		assert.True(t, decision.Allowed())
	})

	t.Run("plain member is not an admin", func(t *testing.T) {
		w := newWorld()
		w.grant("person-1", authz.RoleOrganisationAdmin)
		w.organisations.addMember("org-1", "person-1", false)

		decision, err := w.validator.AdminAccessToOrganisation(ctx, authz.NewScope(), "person-1", "org-1")

		require.NoError(t, err)
		assert.Equal(t, authz.ReasonNotOrganisationAdmin, decision.Reason)
	})

	t.Run("admin flag does not travel between organisations", func(t *testing.T) {
		w := newWorld()
		w.grant("person-1", authz.RoleOrganisationAdmin)
		w.organisations.addMember("org-a", "person-1", true)
		w.organisations.addMember("org-b", "person-1", false)

		decision, err := w.validator.AdminAccessToOrganisation(ctx, authz.NewScope(), "person-1", "org-a")
		require.NoError(t, err)
		assert.True(t, decision.Allowed())

		decision, err = w.validator.AdminAccessToOrganisation(ctx, authz.NewScope(), "person-1", "org-b")
		require.NoError(t, err)
		assert.Equal(t, authz.ReasonNotOrganisationAdmin, decision.Reason)
	})
}

func TestMemberAccessToSchool(t *testing.T) {
	ctx := context.Background()

	t.Run("enrolled student is allowed", func(t *testing.T) {
		w := newWorld()
		w.grant("person-1", authz.RoleSchoolMember)
		w.schools.addStudent("school-1", "person-1", false)

		decision, err := w.validator.MemberAccessToSchool(ctx, authz.NewScope(), "person-1", "school-1")

		require.NoError(t, err)
		assert.True(t, decision.Allowed())
	})

	t.Run("student of another school is denied", func(t *testing.T) {
		w := newWorld()
		w.grant("person-1", authz.RoleSchoolInstructor)
		w.schools.addStudent("school-a", "person-1", false)
		w.schools.addStudent("school-b", "someone-else", false)

		decision, err := w.validator.MemberAccessToSchool(ctx, authz.NewScope(), "person-1", "school-b")

		require.NoError(t, err)
		assert.Equal(t, authz.ReasonNotSchoolStudent, decision.Reason)
	})

	t.Run("missing school is not found", func(t *testing.T) {
		w := newWorld()
		w.grant("person-1", authz.RoleSchoolMember)

		decision, err := w.validator.MemberAccessToSchool(ctx, authz.NewScope(), "person-1", "school-missing")

		require.NoError(t, err)
		assert.Equal(t, authz.OutcomeNotFound, decision.Outcome)
		assert.Equal(t, authz.EntitySchool, decision.Entity)
	})
}

func TestAdminAccessToSchool(t *testing.T) {
	ctx := context.Background()

	t.Run("secretary of this school is allowed", func(t *testing.T) {
		w := newWorld()
		w.grant("person-1", authz.RoleSchoolSecretary)
		w.schools.addStudent("school-1", "person-1", true)

		decision, err := w.validator.AdminAccessToSchool(ctx, authz.NewScope(), "person-1", "school-1")

		require.NoError(t, err)
		assert.True(t, decision.Allowed())
	})

	t.Run("head instructor does not manage students", func(t *testing.T) {
		w := newWorld()
		w.grant("person-1", authz.RoleSchoolHeadInstructor, authz.RoleSchoolInstructor, authz.RoleSchoolMember)
		w.schools.addStudent("school-1", "person-1", false)

		decision, err := w.validator.AdminAccessToSchool(ctx, authz.NewScope(), "person-1", "school-1")

		require.NoError(t, err)
		assert.Equal(t, authz.ReasonInsufficientRole, decision.Reason)
	})

	t.Run("secretary of another school is denied", func(t *testing.T) {
		w := newWorld()
		w.grant("person-1", authz.RoleSchoolSecretary)
		w.schools.addStudent("school-a", "person-1", true)
		w.schools.addStudent("school-b", "person-1", false)

		decision, err := w.validator.AdminAccessToSchool(ctx, authz.NewScope(), "person-1", "school-b")

		require.NoError(t, err)
		assert.Equal(t, authz.ReasonNotSchoolSecretary, decision.Reason)
	})
}

func TestAccessToPerson(t *testing.T) {
	ctx := context.Background()

	t.Run("missing target is not found before roles are evaluated", func(t *testing.T) {
		w := newWorld()
		w.grant("person-1") // exists, zero roles

		decision, err := w.validator.AccessToPerson(ctx, authz.NewScope(), "person-1", "ghost")

		require.NoError(t, err)
		assert.Equal(t, authz.OutcomeNotFound, decision.Outcome)
		assert.Equal(t, authz.EntityPerson, decision.Entity)
		assert.Zero(t, w.persons.roleCalls)
	})

	t.Run("self access needs no roles", func(t *testing.T) {
		w := newWorld()
		w.grant("person-1")

		decision, err := w.validator.AccessToPerson(ctx, authz.NewScope(), "person-1", "person-1")

		require.NoError(t, err)
		assert.True(t, decision.Allowed())
	})

	t.Run("super-user reaches anyone", func(t *testing.T) {
		w := newWorld()
		w.grant("root", authz.RoleSuperUser)
		w.grant("person-2")

		decision, err := w.validator.AccessToPerson(ctx, authz.NewScope(), "root", "person-2")

		require.NoError(t, err)
		assert.True(t, decision.Allowed())
	})

	t.Run("secretary reaches students of their school", func(t *testing.T) {
		w := newWorld()
		w.grant("secretary", authz.RoleSchoolSecretary)
		w.grant("student")
		w.schools.addStudent("school-1", "secretary", true)
		w.schools.addStudent("school-1", "student", false)

		decision, err := w.validator.AccessToPerson(ctx, authz.NewScope(), "secretary", "student")

		require.NoError(t, err)
		assert.True(t, decision.Allowed())
	})

	t.Run("secretary of an unrelated school is denied", func(t *testing.T) {
		w := newWorld()
		w.grant("secretary", authz.RoleSchoolSecretary)
		w.grant("student")
		w.schools.addStudent("school-a", "secretary", true)
		w.schools.addStudent("school-b", "student", false)

		decision, err := w.validator.AccessToPerson(ctx, authz.NewScope(), "secretary", "student")

		require.NoError(t, err)
		assert.Equal(t, authz.ReasonNoAccessToPerson, decision.Reason)
	})

	t.Run("organisation admin reaches their members", func(t *testing.T) {
		w := newWorld()
		w.grant("admin", authz.RoleOrganisationAdmin)
		w.grant("member")
		w.organisations.addMember("org-1", "admin", true)
		w.organisations.addMember("org-1", "member", false)

		decision, err := w.validator.AccessToPerson(ctx, authz.NewScope(), "admin", "member")

		require.NoError(t, err)
		assert.True(t, decision.Allowed())
	})

	t.Run("no roles at all is an insufficient-role denial", func(t *testing.T) {
		w := newWorld()
		w.grant("person-1")
		w.grant("person-2")

		decision, err := w.validator.AccessToPerson(ctx, authz.NewScope(), "person-1", "person-2")

		require.NoError(t, err)
		assert.Equal(t, authz.ReasonInsufficientRole, decision.Reason)
	})

	t.Run("instructor role carries no custodial reach", func(t *testing.T) {
		w := newWorld()
		w.grant("person-1", authz.RoleSchoolInstructor)
		w.grant("person-2")
		w.schools.addStudent("school-1", "person-1", false)
		w.schools.addStudent("school-1", "person-2", false)

		decision, err := w.validator.AccessToPerson(ctx, authz.NewScope(), "person-1", "person-2")

		require.NoError(t, err)
		assert.Equal(t, authz.ReasonInsufficientRole, decision.Reason)
	})
}

func TestFilterByMemberAccess(t *testing.T) {
	type enrolment struct {
		OrganisationID string
		Label          string
	}

	t.Run("keeps only the caller's organisations", func(t *testing.T) {
		w := newWorld()
		w.grant("person-1", authz.RoleOrganisationMember)
		w.organisations.addMember("org-a", "person-1", false)
		w.organisations.addMember("org-c", "person-1", false)
		w.organisations.addMember("org-b", "someone-else", false)

		items := []enrolment{
			{OrganisationID: "org-a", Label: "alpha"},
			{OrganisationID: "org-b", Label: "beta"},
			{OrganisationID: "org-c", Label: "gamma"},
			{OrganisationID: "org-gone", Label: "vanished"},
		}

		allowed, err := authz.FilterByMemberAccess(context.Background(), w.validator, authz.NewScope(), "person-1", items,
			func(item enrolment) string { return item.OrganisationID })

		require.NoError(t, err)

		// Exact subset, original order, fields untouched.
		require.Len(t, allowed, 2)
		assert.Equal(t, enrolment{OrganisationID: "org-a", Label: "alpha"}, allowed[0])
		assert.Equal(t, enrolment{OrganisationID: "org-c", Label: "gamma"}, allowed[1])
	})

	t.Run("store failure aborts the filter", func(t *testing.T) {
		w := newWorld()
		w.grant("person-1", authz.RoleOrganisationMember)
		w.organisations.addMember("org-a", "person-1", false)

		storeErr := errors.New("connection reset")
		w.organisations.existsErr = storeErr

		items := []enrolment{
			{OrganisationID: "org-a", Label: "alpha"},
		}

		allowed, err := authz.FilterByMemberAccess(context.Background(), w.validator, authz.NewScope(), "person-1", items,
			func(item enrolment) string { return item.OrganisationID })

		require.ErrorIs(t, err, storeErr)
		assert.Nil(t, allowed)
	})
}
