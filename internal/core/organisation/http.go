// Copyright (c) 2026 Tatami. All rights reserved.
// Author: an.le.vn@gmail.com

/*
Package organisation provides the HTTP interface for organisation management.

It exposes endpoints for organisation discovery, metadata administration, and
membership handling.

# Routing Strategy

  - Registered: Listing and detail views, filtered by the caller's memberships.
  - Admin: Metadata mutations and membership changes (organisation admins).
  - System: Organisation creation (system administrators only).

The handler translates between the REST layer and the [Service] domain. Every
endpoint resolves its access decision through the access-validation core
before touching the service.
*/
package organisation

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/anlevn/tatami/internal/authz"
	"github.com/anlevn/tatami/internal/platform/constants"
	"github.com/anlevn/tatami/internal/platform/middleware"
	requestutil "github.com/anlevn/tatami/internal/platform/request"
	"github.com/anlevn/tatami/internal/platform/respond"
	"github.com/anlevn/tatami/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for organisation operations.
type Handler struct {
	service *Service
	access  *authz.Validator
}

// NewHandler constructs a new organisation [Handler].
func NewHandler(service *Service, access *authz.Validator) *Handler {
	return &Handler{service: service, access: access}
}

// Routes returns a [chi.Router] configured with organisation endpoints.
//
// All routes assume the registration middleware already ran: a requester and
// an access scope are present in the request context.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Discovery (scoped to the caller's memberships)
	router.Get("/", handler.listOrganisations)
	router.Get("/{identifier}", handler.getOrganisation)

	// ## System Administration
	router.With(middleware.RequireAnyRole(authz.RoleSystemAdmin)).Post("/", handler.createOrganisation)

	// ## Organisation Administration
	router.Route("/{id}", func(subRouter chi.Router) {
		subRouter.Patch("/", handler.updateOrganisation)
		subRouter.Delete("/", handler.deleteOrganisation)
		subRouter.Route("/members", func(members chi.Router) {
			members.Get("/", handler.listMembers)
			members.Post("/", handler.addMember)
			members.Patch("/{personID}", handler.setMemberAdmin)
			members.Delete("/{personID}", handler.removeMember)
		})
	})

	return router
}

// # Organisation Endpoints

/*
GET /api/v1/organisations.

Description: Retrieves a paginated list of organisations, restricted to those
the caller can see. Non-members are filtered out of the result set.

Request:
  - q: string (Full-text search)
  - art: string (Reference code)
  - country_code: string
  - limit: int
  - page: int

Response:
  - 200: []Organisation: Paginated, access-filtered list
  - 403: NOT_REGISTERED: Caller has no person record
*/
func (handler *Handler) listOrganisations(writer http.ResponseWriter, request *http.Request) {
	requester, err := requestutil.RequiredRequester(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	paginationParams := pagination.FromRequest(request)
	queryParams := request.URL.Query()

	filter := Filter{
		Query:       queryParams.Get("q"),
		Art:         queryParams.Get("art"),
		CountryCode: queryParams.Get("country_code"),
	}

	organisations, total, err := handler.service.ListOrganisations(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	visible, err := authz.FilterByMemberAccess(request.Context(), handler.access, requestutil.AuthScope(request),
		requester.PersonID, organisations, func(organisation *Organisation) string { return organisation.ID })
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Totals reflect the unfiltered count; the page itself only carries
	// entries the caller is allowed to see.
	respond.Paginated(writer, visible, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
GET /api/v1/organisations/{identifier}.

Description: Retrieves full details of an organisation by UUID or slug.
Requires membership of the organisation (or a super-user role).

Request:
  - identifier: string (UUID or Slug)

Response:
  - 200: Organisation: Success
  - 403: NO_ORGANISATION_ACCESS: Caller is not a member
  - 404: ErrNotFound: Organisation not found
*/
func (handler *Handler) getOrganisation(writer http.ResponseWriter, request *http.Request) {
	requester, err := requestutil.RequiredRequester(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	identifier := requestutil.Param(request, "identifier")

	organisation, err := handler.service.GetOrganisation(request.Context(), identifier)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	decision, err := handler.access.MemberAccessToOrganisation(request.Context(), requestutil.AuthScope(request), requester.PersonID, organisation.ID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if !decision.Allowed() {
		respond.Error(writer, request, decision.Err())
		return
	}

	respond.OK(writer, organisation)
}

/*
POST /api/v1/organisations.

Description: Registers a new organisation. The caller becomes its first admin
member. Restricted to system administrators; slugs are auto-generated from
the organisation name.

Request (Body):
  - Organisation JSON object

Response:
  - 201: Organisation: Created object
  - 400: ErrInvalidJSON/Validation: Invalid input data
  - 403: INSUFFICIENT_ROLE: Caller is not a system administrator
*/
func (handler *Handler) createOrganisation(writer http.ResponseWriter, request *http.Request) {
	requester, err := requestutil.RequiredRequester(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input Organisation
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.CreateOrganisation(request.Context(), &input, requester.PersonID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, input)
}

/*
PATCH /api/v1/organisations/{id}.

Description: Updates mutable organisation metadata or the parent link.
Requires admin access to the organisation.

Request:
  - id: string (Target UUID)
  - body: Organisation Partial (JSON)

Response:
  - 200: Organisation: Updated entity
  - 400: ErrInvalidJSON/Validation: Invalid input data
  - 403: NOT_ORGANISATION_ADMIN: Caller is not an admin
  - 404: ErrNotFound: Organisation not found
  - 422: 422: Unprocessable: Parent change would create a cycle
*/
func (handler *Handler) updateOrganisation(writer http.ResponseWriter, request *http.Request) {
	organisationID := requestutil.ID(request, "id")

	if !handler.requireAdmin(writer, request, organisationID) {
		return
	}

	var input Organisation
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	input.ID = organisationID

	if err := handler.service.UpdateOrganisation(request.Context(), &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, input)
}

/*
DELETE /api/v1/organisations/{id}.

Description: Soft-deletes an organisation. Requires admin access.

Request:
  - id: string (Target UUID)

Response:
  - 204: No Content: Success
  - 403: NOT_ORGANISATION_ADMIN: Caller is not an admin
  - 404: ErrNotFound: Organisation not found
*/
func (handler *Handler) deleteOrganisation(writer http.ResponseWriter, request *http.Request) {
	organisationID := requestutil.ID(request, "id")

	if !handler.requireAdmin(writer, request, organisationID) {
		return
	}

	if err := handler.service.DeleteOrganisation(request.Context(), organisationID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Membership Endpoints

/*
GET /api/v1/organisations/{id}/members.

Description: Lists the membership roster. Requires membership of the
organisation.

Request:
  - id: string (Organisation UUID)

Response:
  - 200: []Member: Success
  - 403: NO_ORGANISATION_ACCESS: Caller is not a member
  - 404: ErrNotFound: Organisation not found
*/
func (handler *Handler) listMembers(writer http.ResponseWriter, request *http.Request) {
	organisationID := requestutil.ID(request, "id")

	requester, err := requestutil.RequiredRequester(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	decision, err := handler.access.MemberAccessToOrganisation(request.Context(), requestutil.AuthScope(request), requester.PersonID, organisationID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if !decision.Allowed() {
		respond.Error(writer, request, decision.Err())
		return
	}

	members, err := handler.service.ListMembers(request.Context(), organisationID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, members)
}

/*
POST /api/v1/organisations/{id}/members.

Description: Enrolls a person in the organisation. Requires admin access.

Request (Body):
  - { "person_id": "string", "is_admin": bool }

Response:
  - 201: Member: Created enrollment
  - 400: ErrInvalidJSON: Invalid payload
  - 403: NOT_ORGANISATION_ADMIN: Caller is not an admin
  - 404: ErrNotFound: Organisation or person not found
*/
func (handler *Handler) addMember(writer http.ResponseWriter, request *http.Request) {
	organisationID := requestutil.ID(request, "id")

	if !handler.requireAdmin(writer, request, organisationID) {
		return
	}

	var input Member
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	input.OrganisationID = organisationID

	if err := handler.service.AddMember(request.Context(), &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, input)
}

/*
PATCH /api/v1/organisations/{id}/members/{personID}.

Description: Promotes or demotes a member's admin flag. Requires admin access;
demoting the last remaining admin is rejected.

Request (Body):
  - { "is_admin": bool }

Response:
  - 200: Message: Success
  - 403: NOT_ORGANISATION_ADMIN: Caller is not an admin
  - 404: ErrNotFound: Membership not found
  - 422: 422: Unprocessable: Would demote the last admin
*/
func (handler *Handler) setMemberAdmin(writer http.ResponseWriter, request *http.Request) {
	organisationID := requestutil.ID(request, "id")
	personID := requestutil.ID(request, "personID")

	if !handler.requireAdmin(writer, request, organisationID) {
		return
	}

	var input struct {
		IsAdmin bool `json:"is_admin"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.SetMemberAdmin(request.Context(), organisationID, personID, input.IsAdmin); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{constants.FieldMessage: "Membership updated"})
}

/*
DELETE /api/v1/organisations/{id}/members/{personID}.

Description: Terminates a person's enrollment. Requires admin access; removing
the last remaining admin is rejected.

Request:
  - id: string (Organisation UUID)
  - personID: string (Person UUID)

Response:
  - 204: No Content: Success
  - 403: NOT_ORGANISATION_ADMIN: Caller is not an admin
  - 404: ErrNotFound: Membership not found
  - 422: 422: Unprocessable: Would remove the last admin
*/
func (handler *Handler) removeMember(writer http.ResponseWriter, request *http.Request) {
	organisationID := requestutil.ID(request, "id")
	personID := requestutil.ID(request, "personID")

	if !handler.requireAdmin(writer, request, organisationID) {
		return
	}

	if err := handler.service.RemoveMember(request.Context(), organisationID, personID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// requireAdmin resolves the admin-access decision for the organisation and
// writes the failure response itself. Returns true when the caller may proceed.
func (handler *Handler) requireAdmin(writer http.ResponseWriter, request *http.Request, organisationID string) bool {
	requester, err := requestutil.RequiredRequester(request)
	if err != nil {
		respond.Error(writer, request, err)
		return false
	}

	decision, err := handler.access.AdminAccessToOrganisation(request.Context(), requestutil.AuthScope(request), requester.PersonID, organisationID)
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
