// Copyright (c) 2026 Tatami. All rights reserved.
// Author: an.le.vn@gmail.com

/*
Package school provides the HTTP interface for school and roster management.

# Routing Strategy

  - Registered: Listing within an organisation the caller belongs to; detail
    views for schools the caller is enrolled at.
  - Secretary: Roster mutations (enroll, flag changes, removal).
  - Organisation admin: School creation and deletion within the owning
    organisation.

The handler translates between the REST layer and the [Service] domain. Every
endpoint resolves its access decision through the access-validation core
before touching the service.
*/
package school

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/anlevn/tatami/internal/authz"
	"github.com/anlevn/tatami/internal/platform/apperr"
	requestutil "github.com/anlevn/tatami/internal/platform/request"
	"github.com/anlevn/tatami/internal/platform/respond"
	"github.com/anlevn/tatami/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for school operations.
type Handler struct {
	service *Service
	access  *authz.Validator
}

// NewHandler constructs a new school [Handler].
func NewHandler(service *Service, access *authz.Validator) *Handler {
	return &Handler{service: service, access: access}
}

// Routes returns a [chi.Router] configured with school endpoints.
//
// All routes assume the registration middleware already ran: a requester and
// an access scope are present in the request context.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Discovery (scoped to the caller's memberships)
	router.Get("/", handler.listSchools)
	router.Get("/{identifier}", handler.getSchool)

	// ## Organisation Administration
	router.Post("/", handler.createSchool)

	// ## School Administration
	router.Route("/{id}", func(subRouter chi.Router) {
		subRouter.Patch("/", handler.updateSchool)
		subRouter.Delete("/", handler.deleteSchool)
		subRouter.Route("/students", func(students chi.Router) {
			students.Get("/", handler.listStudents)
			students.Post("/", handler.enrollStudent)
			students.Patch("/{personID}", handler.setStudentFlags)
			students.Delete("/{personID}", handler.removeStudent)
		})
	})

	return router
}

// # School Endpoints

/*
GET /api/v1/schools.

Description: Lists the schools of one organisation. Requires membership of
that organisation, so the organisation_id filter is mandatory.

Request:
  - organisation_id: string (Required)
  - q: string (Full-text search)
  - city: string
  - limit: int
  - page: int

Response:
  - 200: []School: Paginated list
  - 400: Validation: Missing organisation_id
  - 403: NO_ORGANISATION_ACCESS: Caller is not a member
  - 404: ErrNotFound: Organisation not found
*/
func (handler *Handler) listSchools(writer http.ResponseWriter, request *http.Request) {
	requester, err := requestutil.RequiredRequester(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	queryParams := request.URL.Query()
	organisationID := queryParams.Get(FieldOrganisationID)
	if organisationID == "" {
		respond.Error(writer, request, apperr.ValidationError("organisation_id query parameter is required"))
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

	paginationParams := pagination.FromRequest(request)
	filter := Filter{
		Query:          queryParams.Get("q"),
		OrganisationID: organisationID,
		City:           queryParams.Get("city"),
	}

	schools, total, err := handler.service.ListSchools(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, schools, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
GET /api/v1/schools/{identifier}.

Description: Retrieves full details of a school by UUID or slug. Requires
enrollment at the school (or a super-user role).

Request:
  - identifier: string (UUID or Slug)

Response:
  - 200: School: Success
  - 403: NOT_SCHOOL_STUDENT: Caller is not enrolled
  - 404: ErrNotFound: School not found
*/
func (handler *Handler) getSchool(writer http.ResponseWriter, request *http.Request) {
	requester, err := requestutil.RequiredRequester(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	identifier := requestutil.Param(request, "identifier")

	school, err := handler.service.GetSchool(request.Context(), identifier)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	decision, err := handler.access.MemberAccessToSchool(request.Context(), requestutil.AuthScope(request), requester.PersonID, school.ID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if !decision.Allowed() {
		respond.Error(writer, request, decision.Err())
		return
	}

	respond.OK(writer, school)
}

/*
POST /api/v1/schools.

Description: Registers a new school under an organisation. Requires admin
access to the owning organisation; the caller becomes the first secretary.

Request (Body):
  - School JSON object (organisation_id required)

Response:
  - 201: School: Created object
  - 400: ErrInvalidJSON/Validation: Invalid input data
  - 403: NOT_ORGANISATION_ADMIN: Caller is not an organisation admin
  - 404: ErrNotFound: Organisation not found
*/
func (handler *Handler) createSchool(writer http.ResponseWriter, request *http.Request) {
	requester, err := requestutil.RequiredRequester(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input School
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if input.OrganisationID == "" {
		respond.Error(writer, request, apperr.ValidationError("organisation_id is required"))
		return
	}

	decision, err := handler.access.AdminAccessToOrganisation(request.Context(), requestutil.AuthScope(request), requester.PersonID, input.OrganisationID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if !decision.Allowed() {
		respond.Error(writer, request, decision.Err())
		return
	}

	if err := handler.service.CreateSchool(request.Context(), &input, requester.PersonID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, input)
}

/*
PATCH /api/v1/schools/{id}.

Description: Updates mutable school metadata. Requires the secretary
capability for this school.

Request:
  - id: string (Target UUID)
  - body: School Partial (JSON)

Response:
  - 200: School: Updated entity
  - 400: ErrInvalidJSON/Validation: Invalid input data
  - 403: NOT_SCHOOL_SECRETARY: Caller is not the secretary
  - 404: ErrNotFound: School not found
*/
func (handler *Handler) updateSchool(writer http.ResponseWriter, request *http.Request) {
	schoolID := requestutil.ID(request, "id")

	if !handler.requireSecretary(writer, request, schoolID) {
		return
	}

	var input School
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	input.ID = schoolID

	if err := handler.service.UpdateSchool(request.Context(), &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, input)
}

/*
DELETE /api/v1/schools/{id}.

Description: Soft-deletes a school. Requires admin access to the owning
organisation.

Request:
  - id: string (Target UUID)

Response:
  - 204: No Content: Success
  - 403: NOT_ORGANISATION_ADMIN: Caller is not an organisation admin
  - 404: ErrNotFound: School not found
*/
func (handler *Handler) deleteSchool(writer http.ResponseWriter, request *http.Request) {
	requester, err := requestutil.RequiredRequester(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	schoolID := requestutil.ID(request, "id")

	school, err := handler.service.GetSchool(request.Context(), schoolID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	decision, err := handler.access.AdminAccessToOrganisation(request.Context(), requestutil.AuthScope(request), requester.PersonID, school.OrganisationID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if !decision.Allowed() {
		respond.Error(writer, request, decision.Err())
		return
	}

	if err := handler.service.DeleteSchool(request.Context(), schoolID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Roster Endpoints

/*
GET /api/v1/schools/{id}/students.

Description: Lists the student roster. Requires enrollment at the school.

Request:
  - id: string (School UUID)

Response:
  - 200: []Student: Success
  - 403: NOT_SCHOOL_STUDENT: Caller is not enrolled
  - 404: ErrNotFound: School not found
*/
func (handler *Handler) listStudents(writer http.ResponseWriter, request *http.Request) {
	schoolID := requestutil.ID(request, "id")

	requester, err := requestutil.RequiredRequester(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	decision, err := handler.access.MemberAccessToSchool(request.Context(), requestutil.AuthScope(request), requester.PersonID, schoolID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if !decision.Allowed() {
		respond.Error(writer, request, decision.Err())
		return
	}

	students, err := handler.service.ListStudents(request.Context(), schoolID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, students)
}

/*
POST /api/v1/schools/{id}/students.

Description: Enrolls a person at the school. Requires the secretary
capability.

Request (Body):
  - { "person_id": "string", "is_instructor": bool, "is_head_instructor": bool, "is_secretary": bool }

Response:
  - 201: Student: Created enrollment
  - 400: ErrInvalidJSON: Invalid payload
  - 403: NOT_SCHOOL_SECRETARY: Caller is not the secretary
  - 404: ErrNotFound: School or person not found
*/
func (handler *Handler) enrollStudent(writer http.ResponseWriter, request *http.Request) {
	schoolID := requestutil.ID(request, "id")

	if !handler.requireSecretary(writer, request, schoolID) {
		return
	}

	var input Student
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	input.SchoolID = schoolID

	if err := handler.service.EnrollStudent(request.Context(), &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, input)
}

/*
PATCH /api/v1/schools/{id}/students/{personID}.

Description: Replaces the capability flags on an enrollment. Requires the
secretary capability; revoking the last secretary is rejected.

Request (Body):
  - { "is_instructor": bool, "is_head_instructor": bool, "is_secretary": bool }

Response:
  - 200: Student: Updated enrollment
  - 403: NOT_SCHOOL_SECRETARY: Caller is not the secretary
  - 404: ErrNotFound: Enrollment not found
  - 422: 422: Unprocessable: Would revoke the last secretary
*/
func (handler *Handler) setStudentFlags(writer http.ResponseWriter, request *http.Request) {
	schoolID := requestutil.ID(request, "id")
	personID := requestutil.ID(request, "personID")

	if !handler.requireSecretary(writer, request, schoolID) {
		return
	}

	var input Student
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	input.SchoolID = schoolID
	input.PersonID = personID

	if err := handler.service.SetStudentFlags(request.Context(), &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, input)
}

/*
DELETE /api/v1/schools/{id}/students/{personID}.

Description: Terminates a person's enrollment. Requires the secretary
capability; removing the last secretary is rejected.

Request:
  - id: string (School UUID)
  - personID: string (Person UUID)

Response:
  - 204: No Content: Success
  - 403: NOT_SCHOOL_SECRETARY: Caller is not the secretary
  - 404: ErrNotFound: Enrollment not found
  - 422: 422: Unprocessable: Would remove the last secretary
*/
func (handler *Handler) removeStudent(writer http.ResponseWriter, request *http.Request) {
	schoolID := requestutil.ID(request, "id")
	personID := requestutil.ID(request, "personID")

	if !handler.requireSecretary(writer, request, schoolID) {
		return
	}

	if err := handler.service.RemoveStudent(request.Context(), schoolID, personID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// requireSecretary resolves the secretary-capability decision for the school
// and writes the failure response itself. Returns true when the caller may
// proceed.
func (handler *Handler) requireSecretary(writer http.ResponseWriter, request *http.Request, schoolID string) bool {
	requester, err := requestutil.RequiredRequester(request)
	if err != nil {
		respond.Error(writer, request, err)
		return false
	}

	decision, err := handler.access.AdminAccessToSchool(request.Context(), requestutil.AuthScope(request), requester.PersonID, schoolID)
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
