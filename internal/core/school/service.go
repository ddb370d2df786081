// Copyright (c) 2026 Tatami. All rights reserved.
// Author: an.le.vn@gmail.com

package school

import (
	"context"
	"log/slog"

	"github.com/anlevn/tatami/internal/platform/apperr"
	"github.com/anlevn/tatami/internal/platform/validate"
	"github.com/anlevn/tatami/pkg/slug"
	"github.com/anlevn/tatami/pkg/uuid"
)

// # Service Layer

// Service orchestrates business rules for schools and their rosters.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a new school [Service].
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// # School Management

/*
ListSchools retrieves a paginated and filtered list of schools.

Parameters:
  - context: context.Context
  - filter: Filter
  - limit, offset: int

Returns:
  - []*School: List of schools
  - int: Total matching count
  - error: Retrieval errors
*/
func (service *Service) ListSchools(context context.Context, filter Filter, limit, offset int) ([]*School, int, error) {
	return service.repo.List(context, filter, limit, offset)
}

/*
GetSchool retrieves a school by its UUID or slug identifier.

Parameters:
  - context: context.Context
  - identifier: string

Returns:
  - *School: Hydrated entity
  - error: ErrNotFound if missing
*/
func (service *Service) GetSchool(context context.Context, identifier string) (*School, error) {

	// Discriminator: ID vs Slug
	// UUIDs have a fixed length of 36 characters in standard hyphenated format.
	if len(identifier) == 36 {
		return service.repo.FindByID(context, identifier)
	}

	return service.repo.FindBySlug(context, identifier)
}

/*
CreateSchool registers a new school under an organisation and enrolls the
creator as its first secretary.

Parameters:
  - context: context.Context
  - school: *School
  - creatorPersonID: string

Returns:
  - error: Validation or persistence failures
*/
func (service *Service) CreateSchool(context context.Context, school *School, creatorPersonID string) error {
	validator := &validate.Validator{}
	validator.Required(FieldName, school.Name).MaxLen(FieldName, school.Name, 200).
		Required(FieldOrganisationID, school.OrganisationID).UUID(FieldOrganisationID, school.OrganisationID).
		Required(FieldCity, school.City)

	if err := validator.Err(); err != nil {
		return err
	}

	school.ID = uuid.New()
	school.Slug = slug.From(school.Name)
	school.IsActive = true

	if err := service.repo.Create(context, school); err != nil {
		return err
	}

	if err := service.repo.EnrollStudent(context, &Student{
		SchoolID:    school.ID,
		PersonID:    creatorPersonID,
		IsSecretary: true,
	}); err != nil {
		return err
	}

	service.logger.Info("school_created",
		slog.String("school_id", school.ID),
		slog.String("organisation_id", school.OrganisationID),
		slog.String("creator_person_id", creatorPersonID),
	)

	return nil
}

/*
UpdateSchool modifies the metadata of an existing school.

Description: The owning organisation is fixed at creation; reassignment is not
supported.

Parameters:
  - context: context.Context
  - school: *School

Returns:
  - error: Validation or persistence failures
*/
func (service *Service) UpdateSchool(context context.Context, school *School) error {
	validator := &validate.Validator{}
	if school.Name != "" {
		validator.MaxLen(FieldName, school.Name, 200)
	}

	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.repo.Update(context, school); err != nil {
		return err
	}

	service.logger.Info("school_updated", slog.String("school_id", school.ID))

	return nil
}

/*
DeleteSchool soft-deletes a school.

Parameters:
  - context: context.Context
  - schoolID: string

Returns:
  - error: Persistence failures
*/
func (service *Service) DeleteSchool(context context.Context, schoolID string) error {
	if err := service.repo.SoftDelete(context, schoolID); err != nil {
		return err
	}

	service.logger.Info("school_deleted", slog.String("school_id", schoolID))

	return nil
}

// # Roster Controls

/*
ListStudents returns the roster for a specific school.

Parameters:
  - context: context.Context
  - schoolID: string

Returns:
  - []*Student: Enrolled persons
  - error: Retrieval failures
*/
func (service *Service) ListStudents(context context.Context, schoolID string) ([]*Student, error) {
	return service.repo.ListStudents(context, schoolID)
}

/*
EnrollStudent registers a person at the school.

Description: A head instructor is always an instructor; the combined flags are
normalised before persisting.

Parameters:
  - context: context.Context
  - student: *Student

Returns:
  - error: Persistence failures
*/
func (service *Service) EnrollStudent(context context.Context, student *Student) error {
	if student.IsHeadInstructor {
		student.IsInstructor = true
	}

	if err := service.repo.EnrollStudent(context, student); err != nil {
		return err
	}

	service.logger.Info("school_student_enrolled",
		slog.String("school_id", student.SchoolID),
		slog.String("person_id", student.PersonID),
		slog.Bool("is_instructor", student.IsInstructor),
		slog.Bool("is_secretary", student.IsSecretary),
	)

	return nil
}

/*
SetStudentFlags replaces the capability flags on an enrollment.

Description: Revoking the last secretary is rejected so every school keeps an
administrative contact.

Parameters:
  - context: context.Context
  - student: *Student

Returns:
  - error: Orphan-prevention or persistence failures
*/
func (service *Service) SetStudentFlags(context context.Context, student *Student) error {
	if student.IsHeadInstructor {
		student.IsInstructor = true
	}

	if !student.IsSecretary {
		if err := service.guardLastSecretary(context, student.SchoolID, student.PersonID); err != nil {
			return err
		}
	}

	return service.repo.SetStudentFlags(context, student)
}

/*
RemoveStudent terminates a person's enrollment at the school.

Parameters:
  - context: context.Context
  - schoolID: string
  - personID: string

Returns:
  - error: Orphan-prevention or persistence failures
*/
func (service *Service) RemoveStudent(context context.Context, schoolID, personID string) error {
	if err := service.guardLastSecretary(context, schoolID, personID); err != nil {
		return err
	}

	if err := service.repo.RemoveStudent(context, schoolID, personID); err != nil {
		return err
	}

	service.logger.Info("school_student_removed",
		slog.String("school_id", schoolID),
		slog.String("person_id", personID),
	)

	return nil
}

// guardLastSecretary rejects the operation when personID is the only secretary
// the school has left.
func (service *Service) guardLastSecretary(context context.Context, schoolID, personID string) error {
	students, err := service.repo.ListStudents(context, schoolID)
	if err != nil {
		return err
	}

	secretaries := 0
	targetIsSecretary := false
	for _, student := range students {
		if student.IsSecretary {
			secretaries++
			if student.PersonID == personID {
				targetIsSecretary = true
			}
		}
	}

	if targetIsSecretary && secretaries <= 1 {
		return apperr.Unprocessable("Cannot remove the last secretary of a school")
	}

	return nil
}
