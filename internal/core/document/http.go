// Copyright (c) 2026 Tatami. All rights reserved.
// Author: an.le.vn@gmail.com

/*
Package document provides the HTTP interface for person paperwork.

Documents are addressed through their owner: routes are mounted under
/persons/{id}/documents and every endpoint resolves the per-person access
rule for that owner before touching the service.
*/
package document

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/anlevn/tatami/internal/authz"
	"github.com/anlevn/tatami/internal/platform/apperr"
	requestutil "github.com/anlevn/tatami/internal/platform/request"
	"github.com/anlevn/tatami/internal/platform/respond"
	"github.com/anlevn/tatami/pkg/query"
)

// # Handler Implementation

// Handler implements the HTTP layer for document metadata.
type Handler struct {
	service *Service
	access  *authz.Validator
}

// NewHandler constructs a new document [Handler].
func NewHandler(service *Service, access *authz.Validator) *Handler {
	return &Handler{service: service, access: access}
}

// Routes returns a [chi.Router] for mounting under /persons/{id}/documents.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listDocuments)
	router.Post("/", handler.createDocument)
	router.Route("/{documentID}", func(subRouter chi.Router) {
		subRouter.Get("/", handler.getDocument)
		subRouter.Patch("/", handler.updateDocument)
		subRouter.Delete("/", handler.deleteDocument)
	})

	return router
}

// # Document Endpoints

/*
GET /api/v1/persons/{id}/documents.

Description: Lists all documents attached to the person. Requires access to
the owner. An optional comma-separated kind parameter restricts the listing
to the named document kinds.

Request:
  - id: string (Person UUID)
  - kind: string (optional, e.g. "grading-certificate,license")

Response:
  - 200: []Document: Success
  - 403: NO_ACCESS_TO_PERSON: No custodial relationship
  - 404: ErrNotFound: Person not found
*/
func (handler *Handler) listDocuments(writer http.ResponseWriter, request *http.Request) {
	personID := requestutil.ID(request, "id")
	kinds := query.StringSlice(request.URL.Query().Get("kind"))

	if !handler.requireOwnerAccess(writer, request, personID) {
		return
	}

	documents, err := handler.service.ListDocuments(request.Context(), personID, kinds)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, documents)
}

/*
GET /api/v1/persons/{id}/documents/{documentID}.

Description: Retrieves a single document. Requires access to the owner; a
document belonging to a different person than the one in the path is treated
as missing.

Request:
  - id: string (Person UUID)
  - documentID: string (Document UUID)

Response:
  - 200: Document: Success
  - 403: NO_ACCESS_TO_PERSON: No custodial relationship
  - 404: ErrNotFound: Document not found
*/
func (handler *Handler) getDocument(writer http.ResponseWriter, request *http.Request) {
	personID := requestutil.ID(request, "id")
	documentID := requestutil.ID(request, "documentID")

	if !handler.requireOwnerAccess(writer, request, personID) {
		return
	}

	document, err := handler.service.GetDocument(request.Context(), documentID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if document.PersonID != personID {
		respond.Error(writer, request, apperr.NotFoundID("Document", documentID))
		return
	}

	respond.OK(writer, document)
}

/*
POST /api/v1/persons/{id}/documents.

Description: Attaches a new document record. Requires access to the owner.

Request (Body):
  - Document JSON object

Response:
  - 201: Document: Created record
  - 400: ErrInvalidJSON/Validation: Invalid input data
  - 403: NO_ACCESS_TO_PERSON: No custodial relationship
  - 404: ErrNotFound: Person not found
*/
func (handler *Handler) createDocument(writer http.ResponseWriter, request *http.Request) {
	personID := requestutil.ID(request, "id")

	if !handler.requireOwnerAccess(writer, request, personID) {
		return
	}

	var input Document
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	input.PersonID = personID

	if err := handler.service.CreateDocument(request.Context(), &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, input)
}

/*
PATCH /api/v1/persons/{id}/documents/{documentID}.

Description: Updates document metadata. Requires access to the owner.

Request:
  - body: Document Partial (JSON)

Response:
  - 200: Document: Updated record
  - 403: NO_ACCESS_TO_PERSON: No custodial relationship
  - 404: ErrNotFound: Document not found
*/
func (handler *Handler) updateDocument(writer http.ResponseWriter, request *http.Request) {
	personID := requestutil.ID(request, "id")
	documentID := requestutil.ID(request, "documentID")

	if !handler.requireOwnerAccess(writer, request, personID) {
		return
	}

	var input Document
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	input.ID = documentID
	input.PersonID = personID

	if err := handler.service.UpdateDocument(request.Context(), &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, input)
}

/*
DELETE /api/v1/persons/{id}/documents/{documentID}.

Description: Soft-deletes a document record. Requires access to the owner.

Response:
  - 204: No Content: Success
  - 403: NO_ACCESS_TO_PERSON: No custodial relationship
  - 404: ErrNotFound: Document not found
*/
func (handler *Handler) deleteDocument(writer http.ResponseWriter, request *http.Request) {
	personID := requestutil.ID(request, "id")
	documentID := requestutil.ID(request, "documentID")

	if !handler.requireOwnerAccess(writer, request, personID) {
		return
	}

	if err := handler.service.DeleteDocument(request.Context(), documentID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// requireOwnerAccess resolves the per-person access decision for the document
// owner and writes the failure response itself.
func (handler *Handler) requireOwnerAccess(writer http.ResponseWriter, request *http.Request, ownerID string) bool {
	requester, err := requestutil.RequiredRequester(request)
	if err != nil {
		respond.Error(writer, request, err)
		return false
	}

	decision, err := handler.access.AccessToPerson(request.Context(), requestutil.AuthScope(request), requester.PersonID, ownerID)
	if err != nil {
		respond.Error(writer, request, err)
		return false
	}
	if !decision.Allowed() {
		respond.Error(writer, request, decision.Err())
		return false
	}

	return true
}
