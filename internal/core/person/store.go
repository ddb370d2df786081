// Copyright (c) 2026 Tatami. All rights reserved.
// Author: an.le.vn@gmail.com

package person

import "context"

// # Person Data Access

// Repository defines the data access contract for person records and roles.
type Repository interface {

	/*
		List returns a filtered, paginated slice of persons and the total count.

		Parameters:
		  - context: context.Context
		  - filter: Filter (Search query, country, binding state)
		  - limit: int
		  - offset: int

		Returns:
		  - []*Person: Slice of matching persons
		  - int: Total record count
		  - error: Database retrieval failures
	*/
	List(context context.Context, filter Filter, limit, offset int) ([]*Person, int, error)

	/*
		FindByID retrieves a person by their UUID.

		Parameters:
		  - context: context.Context
		  - id: string (UUIDv7)

		Returns:
		  - *Person: Hydrated entity
		  - error: ErrNotFound if missing
	*/
	FindByID(context context.Context, id string) (*Person, error)

	/*
		Create persists a new person record.

		Parameters:
		  - context: context.Context
		  - person: *Person

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, person *Person) error

	/*
		Update modifies a person's profile fields.

		Parameters:
		  - context: context.Context
		  - person: *Person

		Returns:
		  - error: Persistence failures
	*/
	Update(context context.Context, person *Person) error

	/*
		SoftDelete marks a person record as deleted.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Persistence failures
	*/
	SoftDelete(context context.Context, id string) error

	// # Identity Binding

	/*
		SetInvitationCode replaces the outstanding invitation code.

		Parameters:
		  - context: context.Context
		  - personID: string
		  - code: string

		Returns:
		  - error: Persistence failures
	*/
	SetInvitationCode(context context.Context, personID, code string) error

	/*
		ClearBinding removes the external identity and any outstanding
		invitation code in one statement.

		Parameters:
		  - context: context.Context
		  - personID: string

		Returns:
		  - error: Persistence failures
	*/
	ClearBinding(context context.Context, personID string) error

	// # Role Grants

	/*
		ListRoles returns all named roles granted to a person.

		Parameters:
		  - context: context.Context
		  - personID: string

		Returns:
		  - []*RoleGrant: Grants ordered by grant time
		  - error: Retrieval failures
	*/
	ListRoles(context context.Context, personID string) ([]*RoleGrant, error)

	/*
		GrantRole adds a named role to a person. Granting an already-held
		role is a no-op.

		Parameters:
		  - context: context.Context
		  - personID: string
		  - role: string

		Returns:
		  - error: Persistence failures
	*/
	GrantRole(context context.Context, personID, role string) error

	/*
		RevokeRole removes a named role from a person.

		Parameters:
		  - context: context.Context
		  - personID: string
		  - role: string

		Returns:
		  - error: Persistence failures
	*/
	RevokeRole(context context.Context, personID, role string) error
}
