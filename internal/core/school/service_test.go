// Copyright (c) 2026 Tatami. All rights reserved.
// Author: an.le.vn@gmail.com

package school_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anlevn/tatami/internal/core/school"
	"github.com/anlevn/tatami/internal/platform/apperr"
)

// fakeRepository is an in-memory [school.Repository] for service tests.
type fakeRepository struct {
	schools  map[string]*school.School
	students map[string][]*school.Student
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		schools:  map[string]*school.School{},
		students: map[string][]*school.Student{},
	}
}

func (f *fakeRepository) List(_ context.Context, _ school.Filter, _, _ int) ([]*school.School, int, error) {
	var all []*school.School
	for _, s := range f.schools {
		all = append(all, s)
	}
	return all, len(all), nil
}

func (f *fakeRepository) FindByID(_ context.Context, id string) (*school.School, error) {
	s, ok := f.schools[id]
	if !ok {
		return nil, apperr.NotFound("School")
	}
	return s, nil
}

func (f *fakeRepository) FindBySlug(_ context.Context, slug string) (*school.School, error) {
	for _, s := range f.schools {
		if s.Slug == slug {
			return s, nil
		}
	}
	return nil, apperr.NotFound("School")
}

func (f *fakeRepository) Create(_ context.Context, s *school.School) error {
	f.schools[s.ID] = s
	return nil
}

func (f *fakeRepository) Update(_ context.Context, s *school.School) error {
	f.schools[s.ID] = s
	return nil
}

func (f *fakeRepository) SoftDelete(_ context.Context, id string) error {
	delete(f.schools, id)
	return nil
}

func (f *fakeRepository) ListStudents(_ context.Context, schoolID string) ([]*school.Student, error) {
	return f.students[schoolID], nil
}

func (f *fakeRepository) EnrollStudent(_ context.Context, student *school.Student) error {
	f.students[student.SchoolID] = append(f.students[student.SchoolID], student)
	return nil
}

func (f *fakeRepository) SetStudentFlags(_ context.Context, student *school.Student) error {
	for _, existing := range f.students[student.SchoolID] {
		if existing.PersonID == student.PersonID {
			existing.IsInstructor = student.IsInstructor
			existing.IsHeadInstructor = student.IsHeadInstructor
			existing.IsSecretary = student.IsSecretary
		}
	}
	return nil
}

func (f *fakeRepository) RemoveStudent(_ context.Context, schoolID, personID string) error {
	kept := f.students[schoolID][:0]
	for _, student := range f.students[schoolID] {
		if student.PersonID != personID {
			kept = append(kept, student)
		}
	}
	f.students[schoolID] = kept
	return nil
}

func newService(repo *fakeRepository) *school.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return school.NewService(repo, logger)
}

/*
TestService_CreateSchool checks slug generation and that the creator becomes
the first secretary.
*/
func TestService_CreateSchool(t *testing.T) {
	repo := newFakeRepository()
	service := newService(repo)

	input := &school.School{
		OrganisationID: "0190793f-2f36-7b5c-b3a1-000000000001",
		Name:           "Shibuya Dojo",
		City:           "Tokyo",
	}

	err := service.CreateSchool(context.Background(), input, "person-1")
	require.NoError(t, err)

	assert.NotEmpty(t, input.ID)
	assert.Equal(t, "shibuya-dojo", input.Slug)
	assert.True(t, input.IsActive)

	students := repo.students[input.ID]
	require.Len(t, students, 1)
	assert.Equal(t, "person-1", students[0].PersonID)
	assert.True(t, students[0].IsSecretary)
	assert.False(t, students[0].IsInstructor)
}

/*
TestService_CreateSchool_Validation checks mandatory field enforcement.
*/
func TestService_CreateSchool_Validation(t *testing.T) {
	orgID := "0190793f-2f36-7b5c-b3a1-000000000001"

	tests := []struct {
		name  string
		input school.School
	}{
		{"missing_name", school.School{OrganisationID: orgID, City: "Tokyo"}},
		{"missing_organisation", school.School{Name: "Dojo", City: "Tokyo"}},
		{"invalid_organisation_id", school.School{OrganisationID: "not-a-uuid", Name: "Dojo", City: "Tokyo"}},
		{"missing_city", school.School{OrganisationID: orgID, Name: "Dojo"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepository()
			service := newService(repo)

			err := service.CreateSchool(context.Background(), &tt.input, "person-1")
			require.Error(t, err)
			assert.Empty(t, repo.schools)
		})
	}
}

/*
TestService_EnrollStudent_HeadInstructorImpliesInstructor checks flag
normalisation on enrollment.
*/
func TestService_EnrollStudent_HeadInstructorImpliesInstructor(t *testing.T) {
	repo := newFakeRepository()
	service := newService(repo)

	student := &school.Student{
		SchoolID:         "school-1",
		PersonID:         "person-1",
		IsHeadInstructor: true,
	}

	require.NoError(t, service.EnrollStudent(context.Background(), student))
	assert.True(t, student.IsInstructor)
}

/*
TestService_LastSecretaryProtection checks that neither flag revocation nor
removal can leave a school without a secretary.
*/
func TestService_LastSecretaryProtection(t *testing.T) {
	ctx := context.Background()

	setup := func() (*fakeRepository, *school.Service) {
		repo := newFakeRepository()
		repo.students["school-1"] = []*school.Student{
			{SchoolID: "school-1", PersonID: "secretary-1", IsSecretary: true},
			{SchoolID: "school-1", PersonID: "student-1", IsInstructor: true},
		}
		return repo, newService(repo)
	}

	t.Run("revoke_last_secretary_rejected", func(t *testing.T) {
		_, service := setup()

		err := service.SetStudentFlags(ctx, &school.Student{
			SchoolID: "school-1", PersonID: "secretary-1", IsSecretary: false,
		})
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, 422, ae.HTTPStatus)
	})

	t.Run("remove_last_secretary_rejected", func(t *testing.T) {
		_, service := setup()

		err := service.RemoveStudent(ctx, "school-1", "secretary-1")
		require.Error(t, err)
	})

	t.Run("remove_plain_student_allowed", func(t *testing.T) {
		repo, service := setup()

		require.NoError(t, service.RemoveStudent(ctx, "school-1", "student-1"))
		assert.Len(t, repo.students["school-1"], 1)
	})

	t.Run("revoke_with_second_secretary_allowed", func(t *testing.T) {
		repo, service := setup()
		repo.students["school-1"] = append(repo.students["school-1"],
			&school.Student{SchoolID: "school-1", PersonID: "secretary-2", IsSecretary: true})

		require.NoError(t, service.SetStudentFlags(ctx, &school.Student{
			SchoolID: "school-1", PersonID: "secretary-1", IsSecretary: false,
		}))
	})
}
