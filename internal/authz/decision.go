// Copyright (c) 2026 Tatami. All rights reserved.
// Author: an.le.vn@gmail.com

package authz

import (
	"fmt"

	"github.com/anlevn/tatami/internal/platform/apperr"
)

// # Access Decisions

// Outcome classifies the result of one validation call.
type Outcome int

const (
	// OutcomeAllowed grants the requested capability.
	OutcomeAllowed Outcome = iota

	// OutcomeDenied refuses the capability for a specific [Reason].
	OutcomeDenied

	// OutcomeNotFound reports that the target entity does not exist.
	//
	// Existence is checked before any role or relationship rule, so a missing
	// target is reported as 404 even to callers who would also have been
	// denied. This deliberately reveals existence over permission; it matches
	// the platform's long-standing observable behavior and is relied on by
	// clients. Do not harden it silently.
	OutcomeNotFound
)

// Reason is the machine-readable cause of a denial.
type Reason string

const (
	// ReasonInsufficientRole: the caller holds none of the roles that
	// legitimize the requested capability.
	ReasonInsufficientRole Reason = "INSUFFICIENT_ROLE"

	// ReasonNotSchoolStudent: the caller has a school-level role in general
	// but is not enrolled at this specific school.
	ReasonNotSchoolStudent Reason = "NOT_SCHOOL_STUDENT"

	// ReasonNotSchoolSecretary: the caller is a secretary somewhere, but not
	// of this specific school.
	ReasonNotSchoolSecretary Reason = "NOT_SCHOOL_SECRETARY"

	// ReasonNoOrganisationAccess: the caller is not a member of this specific
	// organisation.
	ReasonNoOrganisationAccess Reason = "NO_ORGANISATION_ACCESS"

	// ReasonNotOrganisationAdmin: the caller is not flagged admin of this
	// specific organisation.
	ReasonNotOrganisationAdmin Reason = "NOT_ORGANISATION_ADMIN"

	// ReasonNoAccessToPerson: the caller has no administrative relationship
	// with any school or organisation the target person belongs to.
	ReasonNoAccessToPerson Reason = "NO_ACCESS_TO_PERSON"
)

// Entity kinds used in NotFound decisions.
const (
	EntityOrganisation = "Organisation"
	EntitySchool       = "School"
	EntityPerson       = "Person"
)

// Decision is the transient result of a single validation call. It is never
// persisted and carries everything the HTTP boundary needs to build a response.
type Decision struct {
	Outcome Outcome

	// Reason is set when Outcome is [OutcomeDenied].
	Reason Reason

	// Entity and EntityID are set when Outcome is [OutcomeNotFound].
	Entity   string
	EntityID string
}

// Allow builds an allowing [Decision].
func Allow() Decision {
	return Decision{Outcome: OutcomeAllowed}
}

// Deny builds a denying [Decision] with the given reason.
func Deny(reason Reason) Decision {
	return Decision{Outcome: OutcomeDenied, Reason: reason}
}

// NotFound builds a [Decision] reporting a missing target entity.
func NotFound(entity, entityID string) Decision {
	return Decision{Outcome: OutcomeNotFound, Entity: entity, EntityID: entityID}
}

// Allowed reports whether the decision grants access.
func (decision Decision) Allowed() bool {
	return decision.Outcome == OutcomeAllowed
}

// Err translates the decision into the typed error the response boundary
// understands, or nil when access is allowed.
//
// # Mapping
//   - Denied   → 403 with the decision's [Reason] as machine code.
//   - NotFound → 404 naming the entity kind and id.
func (decision Decision) Err() error {
	switch decision.Outcome {
	case OutcomeAllowed:
		return nil
	case OutcomeNotFound:
		return apperr.NotFoundID(decision.Entity, decision.EntityID)
	default:
		return apperr.ForbiddenCode(string(decision.Reason), denialMessage(decision.Reason))
	}
}

// denialMessage maps a denial reason to its client-safe description.
func denialMessage(reason Reason) string {
	switch reason {
	case ReasonInsufficientRole:
		return "Your roles do not permit this action"
	case ReasonNotSchoolStudent:
		return "You are not a student of this school"
	case ReasonNotSchoolSecretary:
		return "You are not a secretary of this school"
	case ReasonNoOrganisationAccess:
		return "You are not a member of this organisation"
	case ReasonNotOrganisationAdmin:
		return "You are not an admin of this organisation"
	case ReasonNoAccessToPerson:
		return "You have no administrative access to this person"
	default:
		return fmt.Sprintf("Access denied (%s)", reason)
	}
}
