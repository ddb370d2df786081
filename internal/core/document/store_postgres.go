// Copyright (c) 2026 Tatami. All rights reserved.
// Author: an.le.vn@gmail.com

package document

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anlevn/tatami/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed document store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

/*
ListByPerson returns all documents attached to one person, newest first.
A nil kinds slice is passed through as a NULL array and disables the filter.

Parameters:
  - context: context.Context
  - personID: string
  - kinds: []string

Returns:
  - []*Document: Documents, newest first
  - error: Retrieval failures
*/
func (repository *PostgresRepository) ListByPerson(context context.Context, personID string, kinds []string) ([]*Document, error) {
	const query = `
		SELECT id, personid, kind, title, filename, contenttype, issuedat, notes, createdat, updatedat
		FROM core.document
		WHERE personid = $1 AND deletedat IS NULL
		AND ($2::text[] IS NULL OR kind = ANY($2::text[]))
		ORDER BY createdat DESC
	`
	rows, err := repository.db.Query(context, query, personID, kinds)
	if err != nil {
		return nil, dberr.Wrap(err, "list_person_documents")
	}
	defer rows.Close()

	var documents []*Document
	for rows.Next() {
		document := &Document{}
		if err := rows.Scan(
			&document.ID, &document.PersonID, &document.Kind, &document.Title,
			&document.FileName, &document.ContentType, &document.IssuedAt, &document.Notes,
			&document.CreatedAt, &document.UpdatedAt,
		); err != nil {
			return nil, dberr.Wrap(err, "scan_document")
		}
		documents = append(documents, document)
	}

	return documents, nil
}

/*
FindByID retrieves a single document by primary key.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Document: Hydrated entity
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Document, error) {
	const query = `
		SELECT id, personid, kind, title, filename, contenttype, issuedat, notes, createdat, updatedat
		FROM core.document
		WHERE id = $1 AND deletedat IS NULL
	`
	document := &Document{}
	err := repository.db.QueryRow(context, query, id).Scan(
		&document.ID, &document.PersonID, &document.Kind, &document.Title,
		&document.FileName, &document.ContentType, &document.IssuedAt, &document.Notes,
		&document.CreatedAt, &document.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_document_by_id")
	}
	return document, nil
}

/*
Create inserts a new document record.

Parameters:
  - context: context.Context
  - document: *Document

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) Create(context context.Context, document *Document) error {
	const query = `
		INSERT INTO core.document (
			id, personid, kind, title, filename, contenttype, issuedat, notes, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING createdat, updatedat
	`
	err := repository.db.QueryRow(context, query,
		document.ID, document.PersonID, document.Kind, document.Title,
		document.FileName, document.ContentType, document.IssuedAt, document.Notes,
	).Scan(&document.CreatedAt, &document.UpdatedAt)

	return dberr.Wrap(err, "create_document")
}

/*
Update modifies document metadata fields.

Parameters:
  - context: context.Context
  - document: *Document

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) Update(context context.Context, document *Document) error {
	const query = `
		UPDATE core.document
		SET title = COALESCE(NULLIF($2, ''), title),
		    issuedat = COALESCE($3, issuedat),
		    notes = COALESCE($4, notes),
		    updatedat = NOW()
		WHERE id = $1 AND deletedat IS NULL
		RETURNING updatedat
	`
	err := repository.db.QueryRow(context, query,
		document.ID, document.Title, document.IssuedAt, document.Notes,
	).Scan(&document.UpdatedAt)
	return dberr.Wrap(err, "update_document")
}

/*
SoftDelete flags a document as deleted.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) SoftDelete(context context.Context, id string) error {
	const query = `UPDATE core.document SET deletedat = NOW() WHERE id = $1`
	_, err := repository.db.Exec(context, query, id)
	return dberr.Wrap(err, "delete_document")
}
