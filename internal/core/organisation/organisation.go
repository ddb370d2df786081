// Copyright (c) 2026 Tatami. All rights reserved.
// Author: an.le.vn@gmail.com

/*
Package organisation manages martial-arts organisations and their memberships.

It handles the lifecycle of federations, associations, and clubs, from
registration through membership administration.

# Core Responsibility

  - Hierarchy: Defines the [Organisation] entity and its optional parent link.
  - Membership: Manages [Member] associations and the per-membership admin flag.
  - Governance: Guards mutations behind the access-validation core.

Organisations form a tree: a national federation may parent regional
associations, which in turn parent local clubs. Cycles are rejected when a
parent link is changed.
*/
package organisation

import "time"

// # Core Entities

// Organisation represents a martial-arts federation, association, or club.
type Organisation struct {
	ID          string     `json:"id"` // UUIDv7
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	ParentID    *string    `json:"parent_id,omitempty"`
	Art         string     `json:"art"`          // Reference code, e.g. "judo"
	CountryCode string     `json:"country_code"` // ISO 3166-1 alpha-2
	Description *string    `json:"description,omitempty"`
	Website     *string    `json:"website,omitempty"`
	IsActive    bool       `json:"is_active"`
	MemberCount int        `json:"member_count"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"-"`
}

// Member represents a person's enrollment in a specific organisation.
type Member struct {
	OrganisationID string    `json:"organisation_id"`
	PersonID       string    `json:"person_id"`
	FullName       string    `json:"full_name"` // Denormalized for roster views
	IsAdmin        bool      `json:"is_admin"`
	JoinedAt       time.Time `json:"joined_at"`
}

// # Search & Filtering

// Filter holds parameters for searching and listing organisations.
type Filter struct {
	Query       string  `json:"q"`
	Art         string  `json:"art"`
	CountryCode string  `json:"country_code"`
	ParentID    *string `json:"parent_id"`
}

// # Field Identifiers

const (
	FieldName        = "name"
	FieldArt         = "art"
	FieldCountryCode = "country_code"
	FieldDescription = "description"
	FieldWebsite     = "website"
	FieldParentID    = "parent_id"
	FieldPersonID    = "person_id"
	FieldMessage     = "message"
)
