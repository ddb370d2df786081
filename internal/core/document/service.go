// Copyright (c) 2026 Tatami. All rights reserved.
// Author: an.le.vn@gmail.com

package document

import (
	"context"
	"log/slog"

	"github.com/anlevn/tatami/internal/platform/validate"
	"github.com/anlevn/tatami/pkg/uuid"
)

// # Service Layer

// Service orchestrates business rules for document metadata.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a new document [Service].
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

/*
ListDocuments returns all documents attached to one person, optionally
restricted to a set of document kinds.

Parameters:
  - context: context.Context
  - personID: string
  - kinds: []string (nil means all kinds)

Returns:
  - []*Document: Documents, newest first
  - error: Retrieval failures
*/
func (service *Service) ListDocuments(context context.Context, personID string, kinds []string) ([]*Document, error) {
	return service.repo.ListByPerson(context, personID, kinds)
}

/*
GetDocument retrieves a document by UUID.

Parameters:
  - context: context.Context
  - documentID: string

Returns:
  - *Document: Hydrated entity
  - error: ErrNotFound if missing
*/
func (service *Service) GetDocument(context context.Context, documentID string) (*Document, error) {
	return service.repo.FindByID(context, documentID)
}

/*
CreateDocument attaches a new document record to a person.

Parameters:
  - context: context.Context
  - document: *Document

Returns:
  - error: Validation or persistence failures
*/
func (service *Service) CreateDocument(context context.Context, document *Document) error {
	validator := &validate.Validator{}
	validator.Required(FieldKind, document.Kind).
		Required(FieldTitle, document.Title).MaxLen(FieldTitle, document.Title, 300)

	if err := validator.Err(); err != nil {
		return err
	}

	document.ID = uuid.New()

	if err := service.repo.Create(context, document); err != nil {
		return err
	}

	service.logger.Info("document_created",
		slog.String("document_id", document.ID),
		slog.String("person_id", document.PersonID),
		slog.String("kind", document.Kind),
	)

	return nil
}

/*
UpdateDocument modifies document metadata.

Parameters:
  - context: context.Context
  - document: *Document

Returns:
  - error: Validation or persistence failures
*/
func (service *Service) UpdateDocument(context context.Context, document *Document) error {
	validator := &validate.Validator{}
	if document.Title != "" {
		validator.MaxLen(FieldTitle, document.Title, 300)
	}

	if err := validator.Err(); err != nil {
		return err
	}

	return service.repo.Update(context, document)
}

/*
DeleteDocument soft-deletes a document record.

Parameters:
  - context: context.Context
  - documentID: string

Returns:
  - error: Persistence failures
*/
func (service *Service) DeleteDocument(context context.Context, documentID string) error {
	if err := service.repo.SoftDelete(context, documentID); err != nil {
		return err
	}

	service.logger.Info("document_deleted", slog.String("document_id", documentID))

	return nil
}
