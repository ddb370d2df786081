// Copyright (c) 2026 Tatami. All rights reserved.
// Author: an.le.vn@gmail.com

package reference

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/anlevn/tatami/internal/authz"
	"github.com/anlevn/tatami/internal/platform/respond"
	"github.com/anlevn/tatami/pkg/slice"
)

// # Handler Implementation

// Handler serves the read-only reference endpoints.
type Handler struct {
	catalogue *Catalogue
}

// NewHandler constructs a new reference [Handler].
func NewHandler(catalogue *Catalogue) *Handler {
	return &Handler{catalogue: catalogue}
}

// Routes returns a [chi.Router] with the reference endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/arts", handler.listArts)
	router.Get("/countries", handler.listCountries)
	router.Get("/roles", handler.listRoles)

	return router
}

/*
GET /api/v1/arts.

Response:
  - 200: []Art: All recognised martial arts
*/
func (handler *Handler) listArts(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, handler.catalogue.Arts())
}

/*
GET /api/v1/countries.

Response:
  - 200: []Country: All supported countries
*/
func (handler *Handler) listCountries(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, handler.catalogue.Countries())
}

/*
GET /api/v1/roles.

Response:
  - 200: []string: The role catalogue, in capability order
*/
func (handler *Handler) listRoles(writer http.ResponseWriter, request *http.Request) {
	names := slice.Map(authz.Catalog(), func(role authz.Role) string {
		return string(role)
	})

	respond.OK(writer, names)
}
