// Copyright (c) 2026 Tatami. All rights reserved.
// Author: an.le.vn@gmail.com

package authz

import "context"

// # Directory Contracts
//
// The authorization core never owns tables. It consults three narrow
// read-mostly interfaces; the single write (invitation-code consumption)
// is part of identity resolution. Every call takes a context and must honor
// its cancellation — all implementations are network I/O.

// PersonDirectory resolves external identities to persons and persons to
// their accounts and role grants.
type PersonDirectory interface {

	/*
		FindPersonIDByExternalID returns the person bound to the given
		external identity.

		Parameters:
		  - context: context.Context
		  - externalID: string (Token subject)

		Returns:
		  - string: Person id, or "" when no person is bound
		  - error: Store failures only — absence is not an error
	*/
	FindPersonIDByExternalID(context context.Context, externalID string) (string, error)

	/*
		FindPersonIDByInvitationCode returns the person holding the given
		unconsumed invitation code.

		Parameters:
		  - context: context.Context
		  - code: string

		Returns:
		  - string: Person id, or "" when the code matches nothing
		  - error: Store failures only
	*/
	FindPersonIDByInvitationCode(context context.Context, code string) (string, error)

	/*
		ConsumeInvitationCode permanently binds the external id to the person
		and clears the invitation code in one atomic update.

		Parameters:
		  - context: context.Context
		  - personID: string
		  - externalID: string

		Returns:
		  - error: Persistence failures
	*/
	ConsumeInvitationCode(context context.Context, personID, externalID string) error

	/*
		GetRolesForPerson returns the role names currently granted.

		Parameters:
		  - context: context.Context
		  - personID: string

		Returns:
		  - []Role: Possibly empty, never nil on success
		  - error: Store failures only
	*/
	GetRolesForPerson(context context.Context, personID string) ([]Role, error)

	/*
		GetUserAccountIDForPerson returns the login account backing a person.

		Parameters:
		  - context: context.Context
		  - personID: string

		Returns:
		  - string: Account id, or "" when the person has no linked account
		  - error: Store failures only
	*/
	GetUserAccountIDForPerson(context context.Context, personID string) (string, error)

	/*
		Exists reports whether a person record exists (soft-deleted excluded).

		Parameters:
		  - context: context.Context
		  - personID: string

		Returns:
		  - bool: Existence flag
		  - error: Store failures only
	*/
	Exists(context context.Context, personID string) (bool, error)
}

// OrganisationDirectory exposes the organisation relationships the validator
// needs: existence, membership, and the admin flag on a membership.
type OrganisationDirectory interface {

	/*
		Exists reports whether the organisation exists.

		Parameters:
		  - context: context.Context
		  - organisationID: string

		Returns:
		  - bool: Existence flag
		  - error: Store failures only
	*/
	Exists(context context.Context, organisationID string) (bool, error)

	/*
		HasMember reports whether the person is enrolled in the organisation.

		Parameters:
		  - context: context.Context
		  - organisationID: string
		  - personID: string

		Returns:
		  - bool: Membership flag
		  - error: Store failures only
	*/
	HasMember(context context.Context, organisationID, personID string) (bool, error)

	/*
		IsAdmin reports whether the person's membership carries the admin flag.

		Implies HasMember at the data level: admin is a flag on the membership
		row, never a standalone grant.

		Parameters:
		  - context: context.Context
		  - organisationID: string
		  - personID: string

		Returns:
		  - bool: Admin flag
		  - error: Store failures only
	*/
	IsAdmin(context context.Context, organisationID, personID string) (bool, error)

	/*
		GetParentID returns the id of the parent organisation.

		Parameters:
		  - context: context.Context
		  - organisationID: string

		Returns:
		  - string: Parent id, or "" for a root organisation
		  - error: Store failures only
	*/
	GetParentID(context context.Context, organisationID string) (string, error)

	/*
		ListOrganisationIDsForPerson returns every organisation the person
		is a member of.

		Parameters:
		  - context: context.Context
		  - personID: string

		Returns:
		  - []string: Organisation ids, possibly empty
		  - error: Store failures only
	*/
	ListOrganisationIDsForPerson(context context.Context, personID string) ([]string, error)
}

// SchoolDirectory exposes the school relationships the validator needs.
type SchoolDirectory interface {

	/*
		Exists reports whether the school exists.

		Parameters:
		  - context: context.Context
		  - schoolID: string

		Returns:
		  - bool: Existence flag
		  - error: Store failures only
	*/
	Exists(context context.Context, schoolID string) (bool, error)

	/*
		HasStudent reports whether the person is enrolled at the school.

		Parameters:
		  - context: context.Context
		  - schoolID: string
		  - personID: string

		Returns:
		  - bool: Enrollment flag
		  - error: Store failures only
	*/
	HasStudent(context context.Context, schoolID, personID string) (bool, error)

	/*
		HasSecretary reports whether the person holds the secretary flag at
		the school.

		Parameters:
		  - context: context.Context
		  - schoolID: string
		  - personID: string

		Returns:
		  - bool: Secretary flag
		  - error: Store failures only
	*/
	HasSecretary(context context.Context, schoolID, personID string) (bool, error)

	/*
		ListSchoolIDsForPerson returns every school the person is enrolled at.

		Parameters:
		  - context: context.Context
		  - personID: string

		Returns:
		  - []string: School ids, possibly empty
		  - error: Store failures only
	*/
	ListSchoolIDsForPerson(context context.Context, personID string) ([]string, error)
}
