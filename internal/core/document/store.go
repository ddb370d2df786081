// Copyright (c) 2026 Tatami. All rights reserved.
// Author: an.le.vn@gmail.com

package document

import "context"

// # Document Data Access

// Repository defines the data access contract for document metadata.
type Repository interface {

	/*
		ListByPerson returns all documents attached to one person.

		Parameters:
		  - context: context.Context
		  - personID: string
		  - kinds: []string (optional kind filter, nil means all kinds)

		Returns:
		  - []*Document: Documents ordered by creation time, newest first
		  - error: Retrieval failures
	*/
	ListByPerson(context context.Context, personID string, kinds []string) ([]*Document, error)

	/*
		FindByID retrieves a document by its UUID.

		Parameters:
		  - context: context.Context
		  - id: string (UUIDv7)

		Returns:
		  - *Document: Hydrated entity
		  - error: ErrNotFound if missing
	*/
	FindByID(context context.Context, id string) (*Document, error)

	/*
		Create persists a new document record.

		Parameters:
		  - context: context.Context
		  - document: *Document

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, document *Document) error

	/*
		Update modifies a document's metadata.

		Parameters:
		  - context: context.Context
		  - document: *Document

		Returns:
		  - error: Persistence failures
	*/
	Update(context context.Context, document *Document) error

	/*
		SoftDelete marks a document as deleted.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Persistence failures
	*/
	SoftDelete(context context.Context, id string) error
}
