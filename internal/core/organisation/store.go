// Copyright (c) 2026 Tatami. All rights reserved.
// Author: an.le.vn@gmail.com

package organisation

import "context"

// # Organisation Data Access

// Repository defines the data access contract for organisations and memberships.
type Repository interface {

	/*
		List returns a filtered, paginated slice of organisations and the total count.

		Parameters:
		  - context: context.Context
		  - filter: Filter (Search query, art, country, parent)
		  - limit: int
		  - offset: int

		Returns:
		  - []*Organisation: Slice of matching organisations
		  - int: Total record count
		  - error: Database retrieval failures
	*/
	List(context context.Context, filter Filter, limit, offset int) ([]*Organisation, int, error)

	/*
		FindByID retrieves an organisation by its UUID.

		Parameters:
		  - context: context.Context
		  - id: string (UUIDv7)

		Returns:
		  - *Organisation: Hydrated entity
		  - error: ErrNotFound if missing
	*/
	FindByID(context context.Context, id string) (*Organisation, error)

	/*
		FindBySlug retrieves an organisation by its human-readable identifier.

		Parameters:
		  - context: context.Context
		  - slug: string

		Returns:
		  - *Organisation: Hydrated entity
		  - error: ErrNotFound if missing
	*/
	FindBySlug(context context.Context, slug string) (*Organisation, error)

	/*
		Create persists a new organisation to the store.

		Parameters:
		  - context: context.Context
		  - organisation: *Organisation

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, organisation *Organisation) error

	/*
		Update modifies an existing organisation's metadata and parent link.

		Parameters:
		  - context: context.Context
		  - organisation: *Organisation

		Returns:
		  - error: Persistence failures
	*/
	Update(context context.Context, organisation *Organisation) error

	/*
		SoftDelete marks an organisation as deleted.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Persistence failures
	*/
	SoftDelete(context context.Context, id string) error

	// # Membership Management

	/*
		ListMembers returns all persons enrolled in an organisation.

		Parameters:
		  - context: context.Context
		  - organisationID: string

		Returns:
		  - []*Member: Roster ordered by join date
		  - error: Retrieval failures
	*/
	ListMembers(context context.Context, organisationID string) ([]*Member, error)

	/*
		AddMember enrolls a person, optionally flagged admin.

		Parameters:
		  - context: context.Context
		  - member: *Member

		Returns:
		  - error: Persistence failures
	*/
	AddMember(context context.Context, member *Member) error

	/*
		SetMemberAdmin toggles the admin flag on an existing membership.

		Parameters:
		  - context: context.Context
		  - organisationID: string
		  - personID: string
		  - isAdmin: bool

		Returns:
		  - error: Persistence failures
	*/
	SetMemberAdmin(context context.Context, organisationID, personID string, isAdmin bool) error

	/*
		RemoveMember terminates a person's enrollment.

		Parameters:
		  - context: context.Context
		  - organisationID: string
		  - personID: string

		Returns:
		  - error: Persistence failures
	*/
	RemoveMember(context context.Context, organisationID, personID string) error

	/*
		CountAdmins returns how many memberships carry the admin flag.

		Parameters:
		  - context: context.Context
		  - organisationID: string

		Returns:
		  - int: Admin count
		  - error: Retrieval failures
	*/
	CountAdmins(context context.Context, organisationID string) (int, error)
}

// Hierarchy resolves parent links in the organisation tree.
//
// # Why a separate interface?
//
// The cycle check walks ancestry through the same directory the
// access-validation core reads, so both layers see one consistent tree.
type Hierarchy interface {
	// GetParentID returns the parent organisation id, or "" for a root.
	GetParentID(context context.Context, organisationID string) (string, error)
}
