// Copyright (c) 2026 Tatami. All rights reserved.
// Author: an.le.vn@gmail.com

package person

import (
	"context"
	"log/slog"

	"github.com/anlevn/tatami/internal/authz"
	"github.com/anlevn/tatami/internal/platform/apperr"
	"github.com/anlevn/tatami/internal/platform/sec"
	"github.com/anlevn/tatami/internal/platform/validate"
	"github.com/anlevn/tatami/pkg/uuid"
)

// invitationCodeBytes sizes the random invitation code. 16 bytes yields a
// 32-character hex string, long enough to be unguessable and short enough to
// forward in an email.
const invitationCodeBytes = 16

// # Service Layer

// Service orchestrates business rules for the member registry.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a new person [Service].
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// # Registry Management

/*
ListPersons retrieves a paginated and filtered list of person records.

Parameters:
  - context: context.Context
  - filter: Filter
  - limit, offset: int

Returns:
  - []*Person: List of persons
  - int: Total matching count
  - error: Retrieval errors
*/
func (service *Service) ListPersons(context context.Context, filter Filter, limit, offset int) ([]*Person, int, error) {
	return service.repo.List(context, filter, limit, offset)
}

/*
GetPerson retrieves a person record by UUID.

Parameters:
  - context: context.Context
  - personID: string

Returns:
  - *Person: Hydrated entity
  - error: ErrNotFound if missing
*/
func (service *Service) GetPerson(context context.Context, personID string) (*Person, error) {
	return service.repo.FindByID(context, personID)
}

/*
CreatePerson registers a new, unbound person record.

Parameters:
  - context: context.Context
  - person: *Person

Returns:
  - error: Validation or persistence failures
*/
func (service *Service) CreatePerson(context context.Context, person *Person) error {
	validator := &validate.Validator{}
	validator.Required(FieldFullName, person.FullName).MaxLen(FieldFullName, person.FullName, 200).
		Required(FieldCountryCode, person.CountryCode)

	if person.Email != nil && *person.Email != "" {
		validator.Email(FieldEmail, *person.Email)
	}

	if err := validator.Err(); err != nil {
		return err
	}

	person.ID = uuid.New()
	person.IsActive = true
	person.ExternalID = nil
	person.InvitationCode = nil

	if err := service.repo.Create(context, person); err != nil {
		return err
	}

	service.logger.Info("person_created", slog.String("person_id", person.ID))

	return nil
}

/*
UpdatePerson modifies a person's profile fields.

Description: Identity binding fields are not touched here; see
[Service.IssueInvitationCode] and [Service.DisassociateIdentity].

Parameters:
  - context: context.Context
  - person: *Person

Returns:
  - error: Validation or persistence failures
*/
func (service *Service) UpdatePerson(context context.Context, person *Person) error {
	validator := &validate.Validator{}
	if person.FullName != "" {
		validator.MaxLen(FieldFullName, person.FullName, 200)
	}
	if person.Email != nil && *person.Email != "" {
		validator.Email(FieldEmail, *person.Email)
	}

	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.repo.Update(context, person); err != nil {
		return err
	}

	service.logger.Info("person_updated", slog.String("person_id", person.ID))

	return nil
}

/*
DeletePerson soft-deletes a person record.

Parameters:
  - context: context.Context
  - personID: string

Returns:
  - error: Persistence failures
*/
func (service *Service) DeletePerson(context context.Context, personID string) error {
	if err := service.repo.SoftDelete(context, personID); err != nil {
		return err
	}

	service.logger.Info("person_deleted", slog.String("person_id", personID))

	return nil
}

// # Identity Binding

/*
IssueInvitationCode generates a fresh invitation code for an unbound record.

Description: Reissuing replaces any outstanding code, so at most one code is
ever valid per record. Bound records are rejected.

Parameters:
  - context: context.Context
  - personID: string

Returns:
  - string: The newly issued code, shown once to the caller
  - error: Conflict when the record is already bound
*/
func (service *Service) IssueInvitationCode(context context.Context, personID string) (string, error) {
	person, err := service.repo.FindByID(context, personID)
	if err != nil {
		return "", err
	}

	if person.IsBound() {
		return "", apperr.Conflict("Person is already linked to a login account")
	}

	code, err := sec.GenerateSecureToken(invitationCodeBytes)
	if err != nil {
		return "", err
	}

	if err := service.repo.SetInvitationCode(context, personID, code); err != nil {
		return "", err
	}

	service.logger.Info("invitation_code_issued", slog.String("person_id", personID))

	return code, nil
}

/*
DisassociateIdentity unbinds a person record from its login account.

Description: Clears the external identity and any outstanding invitation code
in one step. The record can afterwards be re-invited.

Parameters:
  - context: context.Context
  - personID: string

Returns:
  - error: ErrNotFound or persistence failures
*/
func (service *Service) DisassociateIdentity(context context.Context, personID string) error {
	if _, err := service.repo.FindByID(context, personID); err != nil {
		return err
	}

	if err := service.repo.ClearBinding(context, personID); err != nil {
		return err
	}

	service.logger.Info("person_identity_disassociated", slog.String("person_id", personID))

	return nil
}

// # Role Grants

/*
ListRoles returns the named roles granted to a person.

Parameters:
  - context: context.Context
  - personID: string

Returns:
  - []*RoleGrant: Grants ordered by grant time
  - error: Retrieval failures
*/
func (service *Service) ListRoles(context context.Context, personID string) ([]*RoleGrant, error) {
	return service.repo.ListRoles(context, personID)
}

/*
GrantRole adds a named role to a person.

Description: The role must exist in the catalogue; unknown names are rejected
before touching the store.

Parameters:
  - context: context.Context
  - personID: string
  - role: string

Returns:
  - error: Validation or persistence failures
*/
func (service *Service) GrantRole(context context.Context, personID, role string) error {
	if !authz.IsKnownRole(authz.Role(role)) {
		return apperr.ValidationError("Unknown role", apperr.FieldError{Field: FieldRole, Message: "Must be a role from the catalogue"})
	}

	if _, err := service.repo.FindByID(context, personID); err != nil {
		return err
	}

	if err := service.repo.GrantRole(context, personID, role); err != nil {
		return err
	}

	service.logger.Info("person_role_granted",
		slog.String("person_id", personID),
		slog.String("role", role),
	)

	return nil
}

/*
RevokeRole removes a named role from a person.

Parameters:
  - context: context.Context
  - personID: string
  - role: string

Returns:
  - error: Persistence failures
*/
func (service *Service) RevokeRole(context context.Context, personID, role string) error {
	if err := service.repo.RevokeRole(context, personID, role); err != nil {
		return err
	}

	service.logger.Info("person_role_revoked",
		slog.String("person_id", personID),
		slog.String("role", role),
	)

	return nil
}
