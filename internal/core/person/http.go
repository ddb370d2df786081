// Copyright (c) 2026 Tatami. All rights reserved.
// Author: an.le.vn@gmail.com

/*
Package person provides the HTTP interface for the member registry.

# Routing Strategy

  - Self and custodians: Reads and profile updates run through the per-person
    access rule (self, the secretary of one of the person's schools, or an
    admin of one of their organisations).
  - System: Registry-wide listing, creation, deletion, role grants, and
    identity disassociation are system-administrator actions.
*/
package person

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/anlevn/tatami/internal/authz"
	"github.com/anlevn/tatami/internal/platform/constants"
	"github.com/anlevn/tatami/internal/platform/middleware"
	requestutil "github.com/anlevn/tatami/internal/platform/request"
	"github.com/anlevn/tatami/internal/platform/respond"
	"github.com/anlevn/tatami/pkg/convert"
	"github.com/anlevn/tatami/pkg/pagination"
	"github.com/anlevn/tatami/pkg/pointer"
)

// # Handler Implementation

// Handler implements the HTTP layer for the member registry.
type Handler struct {
	service *Service
	access  *authz.Validator
}

// NewHandler constructs a new person [Handler].
func NewHandler(service *Service, access *authz.Validator) *Handler {
	return &Handler{service: service, access: access}
}

// Routes returns a [chi.Router] configured with registry endpoints.
//
// All routes assume the registration middleware already ran: a requester and
// an access scope are present in the request context.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	systemAdmin := middleware.RequireAnyRole(authz.RoleSystemAdmin)

	// ## System Administration
	router.With(systemAdmin).Get("/", handler.listPersons)
	router.With(systemAdmin).Post("/", handler.createPerson)

	router.Route("/{id}", func(subRouter chi.Router) {
		// ## Self & Custodian Access
		subRouter.Get("/", handler.getPerson)
		subRouter.Patch("/", handler.updatePerson)
		subRouter.Post("/invitation-code", handler.issueInvitationCode)

		// ## System Administration
		subRouter.With(systemAdmin).Delete("/", handler.deletePerson)
		subRouter.With(systemAdmin).Delete("/identity", handler.disassociateIdentity)
		subRouter.Route("/roles", func(roles chi.Router) {
			roles.Get("/", handler.listRoles)
			roles.With(systemAdmin).Post("/", handler.grantRole)
			roles.With(systemAdmin).Delete("/{role}", handler.revokeRole)
		})
	})

	return router
}

// # Registry Endpoints

/*
GET /api/v1/persons.

Description: Lists the member registry. System administrators only.

Request:
  - q: string (Full-text name search)
  - country_code: string
  - unbound: bool (Only records without a login-account binding)
  - limit: int
  - page: int

Response:
  - 200: []Person: Paginated list
  - 403: INSUFFICIENT_ROLE: Caller is not a system administrator
*/
func (handler *Handler) listPersons(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	queryParams := request.URL.Query()

	filter := Filter{
		Query:       queryParams.Get("q"),
		CountryCode: queryParams.Get("country_code"),
	}

	if unbound := queryParams.Get("unbound"); unbound != "" {
		filter.Unbound = pointer.To(convert.ToBool(unbound))
	}

	persons, total, err := handler.service.ListPersons(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, persons, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
GET /api/v1/persons/{id}.

Description: Retrieves a person record. Allowed for the person themselves,
the secretary of one of their schools, or an admin of one of their
organisations.

Request:
  - id: string (Person UUID)

Response:
  - 200: Person: Success
  - 403: NO_ACCESS_TO_PERSON: No custodial relationship
  - 404: ErrNotFound: Person not found
*/
func (handler *Handler) getPerson(writer http.ResponseWriter, request *http.Request) {
	personID := requestutil.ID(request, "id")

	if !handler.requirePersonAccess(writer, request, personID) {
		return
	}

	person, err := handler.service.GetPerson(request.Context(), personID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, person)
}

/*
POST /api/v1/persons.

Description: Registers a new, unbound person record. System administrators
only.

Request (Body):
  - Person JSON object

Response:
  - 201: Person: Created record
  - 400: ErrInvalidJSON/Validation: Invalid input data
  - 403: INSUFFICIENT_ROLE: Caller is not a system administrator
*/
func (handler *Handler) createPerson(writer http.ResponseWriter, request *http.Request) {
	var input Person
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.CreatePerson(request.Context(), &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, input)
}

/*
PATCH /api/v1/persons/{id}.

Description: Updates a person's profile. Same access rule as the detail view.

Request:
  - id: string (Person UUID)
  - body: Person Partial (JSON)

Response:
  - 200: Person: Updated record
  - 400: ErrInvalidJSON/Validation: Invalid input data
  - 403: NO_ACCESS_TO_PERSON: No custodial relationship
  - 404: ErrNotFound: Person not found
*/
func (handler *Handler) updatePerson(writer http.ResponseWriter, request *http.Request) {
	personID := requestutil.ID(request, "id")

	if !handler.requirePersonAccess(writer, request, personID) {
		return
	}

	var input Person
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	input.ID = personID

	if err := handler.service.UpdatePerson(request.Context(), &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, input)
}

/*
DELETE /api/v1/persons/{id}.

Description: Soft-deletes a person record. System administrators only.

Request:
  - id: string (Person UUID)

Response:
  - 204: No Content: Success
  - 403: INSUFFICIENT_ROLE: Caller is not a system administrator
  - 404: ErrNotFound: Person not found
*/
func (handler *Handler) deletePerson(writer http.ResponseWriter, request *http.Request) {
	personID := requestutil.ID(request, "id")

	if err := handler.service.DeletePerson(request.Context(), personID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Identity Endpoints

/*
POST /api/v1/persons/{id}/invitation-code.

Description: Issues (or reissues) an invitation code for an unbound record.
Same access rule as the detail view; the code is returned exactly once.

Request:
  - id: string (Person UUID)

Response:
  - 201: { "invitation_code": "..." }: Freshly issued code
  - 403: NO_ACCESS_TO_PERSON: No custodial relationship
  - 404: ErrNotFound: Person not found
  - 409: Conflict: Record is already bound to an account
*/
func (handler *Handler) issueInvitationCode(writer http.ResponseWriter, request *http.Request) {
	personID := requestutil.ID(request, "id")

	if !handler.requirePersonAccess(writer, request, personID) {
		return
	}

	code, err := handler.service.IssueInvitationCode(request.Context(), personID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, map[string]string{"invitation_code": code})
}

/*
DELETE /api/v1/persons/{id}/identity.

Description: Unbinds the record from its login account and voids any
outstanding invitation code. System administrators only.

Request:
  - id: string (Person UUID)

Response:
  - 204: No Content: Success
  - 403: INSUFFICIENT_ROLE: Caller is not a system administrator
  - 404: ErrNotFound: Person not found
*/
func (handler *Handler) disassociateIdentity(writer http.ResponseWriter, request *http.Request) {
	personID := requestutil.ID(request, "id")

	if err := handler.service.DisassociateIdentity(request.Context(), personID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Role Endpoints

/*
GET /api/v1/persons/{id}/roles.

Description: Lists the named roles granted to a person. Same access rule as
the detail view.

Request:
  - id: string (Person UUID)

Response:
  - 200: []RoleGrant: Success
  - 403: NO_ACCESS_TO_PERSON: No custodial relationship
  - 404: ErrNotFound: Person not found
*/
func (handler *Handler) listRoles(writer http.ResponseWriter, request *http.Request) {
	personID := requestutil.ID(request, "id")

	if !handler.requirePersonAccess(writer, request, personID) {
		return
	}

	grants, err := handler.service.ListRoles(request.Context(), personID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, grants)
}

/*
POST /api/v1/persons/{id}/roles.

Description: Grants a named role. System administrators only.

Request (Body):
  - { "role": "string" }

Response:
  - 201: Message: Success
  - 400: Validation: Unknown role name
  - 403: INSUFFICIENT_ROLE: Caller is not a system administrator
  - 404: ErrNotFound: Person not found
*/
func (handler *Handler) grantRole(writer http.ResponseWriter, request *http.Request) {
	personID := requestutil.ID(request, "id")

	var input struct {
		Role string `json:"role"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.GrantRole(request.Context(), personID, input.Role); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, map[string]string{constants.FieldMessage: "Role granted"})
}

/*
DELETE /api/v1/persons/{id}/roles/{role}.

Description: Revokes a named role. System administrators only.

Request:
  - id: string (Person UUID)
  - role: string

Response:
  - 204: No Content: Success
  - 403: INSUFFICIENT_ROLE: Caller is not a system administrator
*/
func (handler *Handler) revokeRole(writer http.ResponseWriter, request *http.Request) {
	personID := requestutil.ID(request, "id")
	role := requestutil.Param(request, "role")

	if err := handler.service.RevokeRole(request.Context(), personID, role); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// requirePersonAccess resolves the per-person access decision and writes the
// failure response itself. Returns true when the caller may proceed.
func (handler *Handler) requirePersonAccess(writer http.ResponseWriter, request *http.Request, targetPersonID string) bool {
	requester, err := requestutil.RequiredRequester(request)
	if err != nil {
		respond.Error(writer, request, err)
		return false
	}

	decision, err := handler.access.AccessToPerson(request.Context(), requestutil.AuthScope(request), requester.PersonID, targetPersonID)
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
