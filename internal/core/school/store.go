// Copyright (c) 2026 Tatami. All rights reserved.
// Author: an.le.vn@gmail.com

package school

import "context"

// # School Data Access

// Repository defines the data access contract for schools and student rosters.
type Repository interface {

	/*
		List returns a filtered, paginated slice of schools and the total count.

		Parameters:
		  - context: context.Context
		  - filter: Filter (Search query, organisation, city)
		  - limit: int
		  - offset: int

		Returns:
		  - []*School: Slice of matching schools
		  - int: Total record count
		  - error: Database retrieval failures
	*/
	List(context context.Context, filter Filter, limit, offset int) ([]*School, int, error)

	/*
		FindByID retrieves a school by its UUID.

		Parameters:
		  - context: context.Context
		  - id: string (UUIDv7)

		Returns:
		  - *School: Hydrated entity
		  - error: ErrNotFound if missing
	*/
	FindByID(context context.Context, id string) (*School, error)

	/*
		FindBySlug retrieves a school by its human-readable identifier.

		Parameters:
		  - context: context.Context
		  - slug: string

		Returns:
		  - *School: Hydrated entity
		  - error: ErrNotFound if missing
	*/
	FindBySlug(context context.Context, slug string) (*School, error)

	/*
		Create persists a new school to the store.

		Parameters:
		  - context: context.Context
		  - school: *School

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, school *School) error

	/*
		Update modifies an existing school's metadata.

		Parameters:
		  - context: context.Context
		  - school: *School

		Returns:
		  - error: Persistence failures
	*/
	Update(context context.Context, school *School) error

	/*
		SoftDelete marks a school as deleted.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Persistence failures
	*/
	SoftDelete(context context.Context, id string) error

	// # Roster Management

	/*
		ListStudents returns all persons enrolled at a school.

		Parameters:
		  - context: context.Context
		  - schoolID: string

		Returns:
		  - []*Student: Roster ordered by join date
		  - error: Retrieval failures
	*/
	ListStudents(context context.Context, schoolID string) ([]*Student, error)

	/*
		EnrollStudent registers a person at the school.

		Parameters:
		  - context: context.Context
		  - student: *Student

		Returns:
		  - error: Persistence failures
	*/
	EnrollStudent(context context.Context, student *Student) error

	/*
		SetStudentFlags replaces the capability flags on an enrollment.

		Parameters:
		  - context: context.Context
		  - student: *Student (SchoolID, PersonID, and the three flags)

		Returns:
		  - error: Persistence failures
	*/
	SetStudentFlags(context context.Context, student *Student) error

	/*
		RemoveStudent terminates a person's enrollment.

		Parameters:
		  - context: context.Context
		  - schoolID: string
		  - personID: string

		Returns:
		  - error: Persistence failures
	*/
	RemoveStudent(context context.Context, schoolID, personID string) error
}
