// Copyright (c) 2026 Tatami. All rights reserved.
// Author: an.le.vn@gmail.com

package authz

import (
	"context"
	"fmt"
)

// # Access Validator

// Validator evaluates whether a resolved person may act on a specific
// organisation, school, or person.
//
// # Two-Stage Contract
//
// Every validation follows the same fixed order:
//
//  1. Existence stage — a missing target short-circuits to [OutcomeNotFound]
//     before any role is consulted. Existence errors take priority over
//     authorization errors (see [OutcomeNotFound] for why this is deliberate).
//  2. Role-then-relationship stage — the super-user role short-circuits to
//     allow; otherwise the caller's role set must intersect the capability's
//     legitimizing roles (miss → [ReasonInsufficientRole]), and a final
//     relationship check confirms the claim against the specific target
//     (miss → an entity-specific reason).
//
// Each call is a pure function of roles and relationship data; there is no
// state carried between calls beyond the read-only [Scope] memoization.
type Validator struct {
	resolver      *Resolver
	persons       PersonDirectory
	organisations OrganisationDirectory
	schools       SchoolDirectory
}

// NewValidator constructs a [Validator].
func NewValidator(resolver *Resolver, persons PersonDirectory, organisations OrganisationDirectory, schools SchoolDirectory) *Validator {
	return &Validator{
		resolver:      resolver,
		persons:       persons,
		organisations: organisations,
		schools:       schools,
	}
}

// # Organisation Access

/*
MemberAccessToOrganisation validates member-level access to one organisation.

Parameters:
  - context: context.Context
  - scope: *Scope
  - personID: string (Requester)
  - organisationID: string (Target)

Returns:
  - Decision: Allow, NotFound, or Deny (InsufficientRole / NoOrganisationAccess)
  - error: Store failures only
*/
func (validator *Validator) MemberAccessToOrganisation(context context.Context, scope *Scope, personID, organisationID string) (Decision, error) {
	exists, err := validator.organisations.Exists(context, organisationID)
	if err != nil {
		return Decision{}, fmt.Errorf("authz_organisation_exists_failed: %w", err)
	}
	if !exists {
		return NotFound(EntityOrganisation, organisationID), nil
	}

	roles, err := validator.resolver.ResolveRoles(context, scope, personID)
	if err != nil {
		return Decision{}, err
	}
	if roles.Has(RoleSuperUser) {
		return Allow(), nil
	}

	if !roles.HasAny(organisationMemberRoles...) {
		return Deny(ReasonInsufficientRole), nil
	}

	isMember, err := validator.organisations.HasMember(context, organisationID, personID)
	if err != nil {
		return Decision{}, fmt.Errorf("authz_organisation_has_member_failed: %w", err)
	}
	if !isMember {
		return Deny(ReasonNoOrganisationAccess), nil
	}

	return Allow(), nil
}

/*
AdminAccessToOrganisation validates admin-level access to one organisation.

Description: Admin access implies member access — the admin flag lives on the
membership row — but never the other way around.

Parameters:
  - context: context.Context
  - scope: *Scope
  - personID: string (Requester)
  - organisationID: string (Target)

Returns:
  - Decision: Allow, NotFound, or Deny (InsufficientRole / NotOrganisationAdmin)
  - error: Store failures only
*/
func (validator *Validator) AdminAccessToOrganisation(context context.Context, scope *Scope, personID, organisationID string) (Decision, error) {
	exists, err := validator.organisations.Exists(context, organisationID)
	if err != nil {
		return Decision{}, fmt.Errorf("authz_organisation_exists_failed: %w", err)
	}
	if !exists {
		return NotFound(EntityOrganisation, organisationID), nil
	}

	roles, err := validator.resolver.ResolveRoles(context, scope, personID)
	if err != nil {
		return Decision{}, err
	}
	if roles.Has(RoleSuperUser) {
		return Allow(), nil
	}

	if !roles.Has(RoleOrganisationAdmin) {
		return Deny(ReasonInsufficientRole), nil
	}

	isAdmin, err := validator.organisations.IsAdmin(context, organisationID, personID)
	if err != nil {
		return Decision{}, fmt.Errorf("authz_organisation_is_admin_failed: %w", err)
	}
	if !isAdmin {
		return Deny(ReasonNotOrganisationAdmin), nil
	}

	return Allow(), nil
}

// # School Access

/*
MemberAccessToSchool validates member-level access to one school.

Parameters:
  - context: context.Context
  - scope: *Scope
  - personID: string (Requester)
  - schoolID: string (Target)

Returns:
  - Decision: Allow, NotFound, or Deny (InsufficientRole / NotSchoolStudent)
  - error: Store failures only
*/
func (validator *Validator) MemberAccessToSchool(context context.Context, scope *Scope, personID, schoolID string) (Decision, error) {
	exists, err := validator.schools.Exists(context, schoolID)
	if err != nil {
		return Decision{}, fmt.Errorf("authz_school_exists_failed: %w", err)
	}
	if !exists {
		return NotFound(EntitySchool, schoolID), nil
	}

	roles, err := validator.resolver.ResolveRoles(context, scope, personID)
	if err != nil {
		return Decision{}, err
	}
	if roles.Has(RoleSuperUser) {
		return Allow(), nil
	}

	if !roles.HasAny(schoolMemberRoles...) {
		return Deny(ReasonInsufficientRole), nil
	}

	isStudent, err := validator.schools.HasStudent(context, schoolID, personID)
	if err != nil {
		return Decision{}, fmt.Errorf("authz_school_has_student_failed: %w", err)
	}
	if !isStudent {
		return Deny(ReasonNotSchoolStudent), nil
	}

	return Allow(), nil
}

/*
AdminAccessToSchool validates the student-management capability for one school.

Description: For schools, the administrative capability belongs specifically to
the secretary. Head instructors hold a distinct, non-overlapping capability and
do not pass this check.

Parameters:
  - context: context.Context
  - scope: *Scope
  - personID: string (Requester)
  - schoolID: string (Target)

Returns:
  - Decision: Allow, NotFound, or Deny (InsufficientRole / NotSchoolSecretary)
  - error: Store failures only
*/
func (validator *Validator) AdminAccessToSchool(context context.Context, scope *Scope, personID, schoolID string) (Decision, error) {
	exists, err := validator.schools.Exists(context, schoolID)
	if err != nil {
		return Decision{}, fmt.Errorf("authz_school_exists_failed: %w", err)
	}
	if !exists {
		return NotFound(EntitySchool, schoolID), nil
	}

	roles, err := validator.resolver.ResolveRoles(context, scope, personID)
	if err != nil {
		return Decision{}, err
	}
	if roles.Has(RoleSuperUser) {
		return Allow(), nil
	}

	if !roles.Has(RoleSchoolSecretary) {
		return Deny(ReasonInsufficientRole), nil
	}

	isSecretary, err := validator.schools.HasSecretary(context, schoolID, personID)
	if err != nil {
		return Decision{}, fmt.Errorf("authz_school_has_secretary_failed: %w", err)
	}
	if !isSecretary {
		return Deny(ReasonNotSchoolSecretary), nil
	}

	return Allow(), nil
}

// # Person Access

/*
AccessToPerson validates access to another person's record.

Description: Evaluated in fixed precedence order:

 1. Target existence (NotFound short-circuits, as everywhere).
 2. Super-user → allow.
 3. Requester is the target → allow, regardless of roles.
 4. Requester holds neither school-secretary nor organisation-admin → deny
    InsufficientRole.
 5. Requester is secretary of any school the target is enrolled at → allow.
 6. Requester is admin of any organisation the target belongs to → allow.
 7. Otherwise deny NoAccessToPerson.

Parameters:
  - context: context.Context
  - scope: *Scope
  - requesterID: string
  - targetPersonID: string

Returns:
  - Decision: Allow, NotFound, or Deny (InsufficientRole / NoAccessToPerson)
  - error: Store failures only
*/
func (validator *Validator) AccessToPerson(context context.Context, scope *Scope, requesterID, targetPersonID string) (Decision, error) {
	exists, err := validator.persons.Exists(context, targetPersonID)
	if err != nil {
		return Decision{}, fmt.Errorf("authz_person_exists_failed: %w", err)
	}
	if !exists {
		return NotFound(EntityPerson, targetPersonID), nil
	}

	roles, err := validator.resolver.ResolveRoles(context, scope, requesterID)
	if err != nil {
		return Decision{}, err
	}
	if roles.Has(RoleSuperUser) {
		return Allow(), nil
	}

	// Self-access is always permitted, even for persons with zero roles.
	if requesterID == targetPersonID {
		return Allow(), nil
	}

	if !roles.HasAny(personAccessRoles...) {
		return Deny(ReasonInsufficientRole), nil
	}

	if roles.Has(RoleSchoolSecretary) {
		schoolIDs, err := validator.schools.ListSchoolIDsForPerson(context, targetPersonID)
		if err != nil {
			return Decision{}, fmt.Errorf("authz_list_schools_failed: %w", err)
		}
		for _, schoolID := range schoolIDs {
			isSecretary, err := validator.schools.HasSecretary(context, schoolID, requesterID)
			if err != nil {
				return Decision{}, fmt.Errorf("authz_school_has_secretary_failed: %w", err)
			}
			if isSecretary {
				return Allow(), nil
			}
		}
	}

	if roles.Has(RoleOrganisationAdmin) {
		organisationIDs, err := validator.organisations.ListOrganisationIDsForPerson(context, targetPersonID)
		if err != nil {
			return Decision{}, fmt.Errorf("authz_list_organisations_failed: %w", err)
		}
		for _, organisationID := range organisationIDs {
			isAdmin, err := validator.organisations.IsAdmin(context, organisationID, requesterID)
			if err != nil {
				return Decision{}, fmt.Errorf("authz_organisation_is_admin_failed: %w", err)
			}
			if isAdmin {
				return Allow(), nil
			}
		}
	}

	return Deny(ReasonNoAccessToPerson), nil
}

// # List Filtering

/*
FilterByMemberAccess narrows a list of organisation-backed items to the subset
the person may access at member level.

Description: Items whose validation is denied (or whose target has vanished)
are silently excluded — exclusion is the point of the operation, not an error.
Items are returned unmodified, preserving their original field values. Store
failures are re-raised immediately: an unexpected error must never be
swallowed as "no access".

Parameters:
  - context: context.Context
  - validator: *Validator
  - scope: *Scope
  - personID: string
  - items: []T
  - organisationID: func(T) string (Extracts the target id per item)

Returns:
  - []T: The allowed subset, in original order
  - error: Store failures only
*/
func FilterByMemberAccess[T any](context context.Context, validator *Validator, scope *Scope, personID string, items []T, organisationID func(T) string) ([]T, error) {
	allowed := make([]T, 0, len(items))

	for _, item := range items {
		decision, err := validator.MemberAccessToOrganisation(context, scope, personID, organisationID(item))
		if err != nil {
			return nil, err
		}
		if decision.Allowed() {
			allowed = append(allowed, item)
		}
	}

	return allowed, nil
}
