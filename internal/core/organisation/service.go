// Copyright (c) 2026 Tatami. All rights reserved.
// Author: an.le.vn@gmail.com

package organisation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anlevn/tatami/internal/platform/apperr"
	"github.com/anlevn/tatami/internal/platform/validate"
	"github.com/anlevn/tatami/pkg/slug"
	"github.com/anlevn/tatami/pkg/uuid"
)

// maxParentDepth bounds the ancestry walk during cycle detection. The real
// tree is at most federation → association → club; anything deeper than 32
// indicates corrupted data.
const maxParentDepth = 32

// # Service Layer

// Service orchestrates business rules for organisations and memberships.
type Service struct {
	repo      Repository
	hierarchy Hierarchy
	logger    *slog.Logger
}

// NewService constructs a new organisation [Service].
func NewService(repo Repository, hierarchy Hierarchy, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		hierarchy: hierarchy,
		logger:    logger,
	}
}

// # Organisation Management

/*
ListOrganisations retrieves a paginated and filtered list of organisations.

Parameters:
  - context: context.Context
  - filter: Filter
  - limit, offset: int

Returns:
  - []*Organisation: List of organisations
  - int: Total matching count
  - error: Retrieval errors
*/
func (service *Service) ListOrganisations(context context.Context, filter Filter, limit, offset int) ([]*Organisation, int, error) {
	return service.repo.List(context, filter, limit, offset)
}

/*
GetOrganisation retrieves an organisation by its UUID or slug identifier.

Parameters:
  - context: context.Context
  - identifier: string

Returns:
  - *Organisation: Hydrated entity
  - error: ErrNotFound if missing
*/
func (service *Service) GetOrganisation(context context.Context, identifier string) (*Organisation, error) {

	// Discriminator: ID vs Slug
	// UUIDs have a fixed length of 36 characters in standard hyphenated format.
	if len(identifier) == 36 {
		return service.repo.FindByID(context, identifier)
	}

	return service.repo.FindBySlug(context, identifier)
}

/*
CreateOrganisation registers a new organisation and enrolls the creator as its
first admin member.

Parameters:
  - context: context.Context
  - organisation: *Organisation
  - creatorPersonID: string

Returns:
  - error: Validation or persistence failures
*/
func (service *Service) CreateOrganisation(context context.Context, organisation *Organisation, creatorPersonID string) error {
	validator := &validate.Validator{}
	validator.Required(FieldName, organisation.Name).MaxLen(FieldName, organisation.Name, 200).
		Required(FieldArt, organisation.Art).
		Required(FieldCountryCode, organisation.CountryCode)

	if organisation.Website != nil && *organisation.Website != "" {
		validator.URL(FieldWebsite, *organisation.Website)
	}

	if err := validator.Err(); err != nil {
		return err
	}

	if organisation.ParentID != nil {
		if err := service.checkParentLink(context, "", *organisation.ParentID); err != nil {
			return err
		}
	}

	organisation.ID = uuid.New()
	organisation.Slug = slug.From(organisation.Name)
	organisation.IsActive = true

	if err := service.repo.Create(context, organisation); err != nil {
		return err
	}

	if err := service.repo.AddMember(context, &Member{
		OrganisationID: organisation.ID,
		PersonID:       creatorPersonID,
		IsAdmin:        true,
	}); err != nil {
		return err
	}

	service.logger.Info("organisation_created",
		slog.String("organisation_id", organisation.ID),
		slog.String("creator_person_id", creatorPersonID),
	)

	return nil
}

/*
UpdateOrganisation modifies the metadata of an existing organisation.

Description: Changing the parent link triggers cycle detection — an
organisation may never become its own ancestor.

Parameters:
  - context: context.Context
  - organisation: *Organisation

Returns:
  - error: Validation, cycle, or persistence failures
*/
func (service *Service) UpdateOrganisation(context context.Context, organisation *Organisation) error {
	validator := &validate.Validator{}
	if organisation.Name != "" {
		validator.MaxLen(FieldName, organisation.Name, 200)
	}
	if organisation.Website != nil && *organisation.Website != "" {
		validator.URL(FieldWebsite, *organisation.Website)
	}

	if err := validator.Err(); err != nil {
		return err
	}

	if organisation.ParentID != nil {
		if err := service.checkParentLink(context, organisation.ID, *organisation.ParentID); err != nil {
			return err
		}
	}

	if err := service.repo.Update(context, organisation); err != nil {
		return err
	}

	service.logger.Info("organisation_updated", slog.String("organisation_id", organisation.ID))

	return nil
}

/*
DeleteOrganisation soft-deletes an organisation.

Parameters:
  - context: context.Context
  - organisationID: string

Returns:
  - error: Persistence failures
*/
func (service *Service) DeleteOrganisation(context context.Context, organisationID string) error {
	if err := service.repo.SoftDelete(context, organisationID); err != nil {
		return err
	}

	service.logger.Info("organisation_deleted", slog.String("organisation_id", organisationID))

	return nil
}

// checkParentLink rejects self-links and ancestry cycles before a parent
// change is persisted.
func (service *Service) checkParentLink(context context.Context, organisationID, parentID string) error {
	if parentID == organisationID && organisationID != "" {
		return apperr.Unprocessable("An organisation cannot be its own parent")
	}

	// Walk up from the proposed parent. Hitting the organisation being
	// updated means the new link would close a cycle.
	current := parentID
	for depth := 0; current != ""; depth++ {
		if depth >= maxParentDepth {
			return fmt.Errorf("organisation: parent chain deeper than %d at %s", maxParentDepth, current)
		}

		ancestor, err := service.hierarchy.GetParentID(context, current)
		if err != nil {
			return err
		}
		if ancestor == organisationID && organisationID != "" {
			return apperr.Unprocessable("Parent change would create a cycle in the organisation tree")
		}
		current = ancestor
	}

	return nil
}

// # Membership Controls

/*
ListMembers returns the roster for a specific organisation.

Parameters:
  - context: context.Context
  - organisationID: string

Returns:
  - []*Member: Enrolled persons
  - error: Retrieval failures
*/
func (service *Service) ListMembers(context context.Context, organisationID string) ([]*Member, error) {
	return service.repo.ListMembers(context, organisationID)
}

/*
AddMember enrolls a person in the organisation.

Parameters:
  - context: context.Context
  - member: *Member

Returns:
  - error: Persistence failures
*/
func (service *Service) AddMember(context context.Context, member *Member) error {
	if err := service.repo.AddMember(context, member); err != nil {
		return err
	}

	service.logger.Info("organisation_member_added",
		slog.String("organisation_id", member.OrganisationID),
		slog.String("person_id", member.PersonID),
		slog.Bool("is_admin", member.IsAdmin),
	)

	return nil
}

/*
SetMemberAdmin toggles the admin flag on a membership.

Description: Demoting the last remaining admin is rejected — an organisation
must never be orphaned without any administrator.

Parameters:
  - context: context.Context
  - organisationID: string
  - personID: string
  - isAdmin: bool

Returns:
  - error: Orphan-prevention or persistence failures
*/
func (service *Service) SetMemberAdmin(context context.Context, organisationID, personID string, isAdmin bool) error {
	if !isAdmin {
		adminCount, err := service.repo.CountAdmins(context, organisationID)
		if err != nil {
			return err
		}
		if adminCount <= 1 {
			return apperr.Unprocessable("Cannot demote the last admin of an organisation")
		}
	}

	return service.repo.SetMemberAdmin(context, organisationID, personID, isAdmin)
}

/*
RemoveMember terminates a person's enrollment in the organisation.

Description: Removing the last admin is rejected for the same orphan-prevention
rule as [Service.SetMemberAdmin].

Parameters:
  - context: context.Context
  - organisationID: string
  - personID: string

Returns:
  - error: Orphan-prevention or persistence failures
*/
func (service *Service) RemoveMember(context context.Context, organisationID, personID string) error {
	adminCount, err := service.repo.CountAdmins(context, organisationID)
	if err != nil {
		return err
	}

	members, err := service.repo.ListMembers(context, organisationID)
	if err != nil {
		return err
	}

	for _, member := range members {
		if member.PersonID == personID && member.IsAdmin && adminCount <= 1 {
			return apperr.Unprocessable("Cannot remove the last admin of an organisation")
		}
	}

	if err := service.repo.RemoveMember(context, organisationID, personID); err != nil {
		return err
	}

	service.logger.Info("organisation_member_removed",
		slog.String("organisation_id", organisationID),
		slog.String("person_id", personID),
	)

	return nil
}
