// Copyright (c) 2026 Tatami. All rights reserved.
// Author: an.le.vn@gmail.com

/*
Package school manages martial-arts schools and their student rosters.

A school always belongs to exactly one organisation. Persons enroll as
students; per-enrollment flags mark instructors, head instructors, and the
school secretary.

# Capability Split

  - Instructors teach; the head instructor leads the teaching staff.
  - The secretary administers the roster: enrollment and flag changes run
    through the secretary capability, not the instructor one.
*/
package school

import "time"

// # Core Entities

// School represents a martial-arts school within an organisation.
type School struct {
	ID             string     `json:"id"` // UUIDv7
	OrganisationID string     `json:"organisation_id"`
	Name           string     `json:"name"`
	Slug           string     `json:"slug"`
	Address        *string    `json:"address,omitempty"`
	City           string     `json:"city"`
	Description    *string    `json:"description,omitempty"`
	IsActive       bool       `json:"is_active"`
	StudentCount   int        `json:"student_count"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	DeletedAt      *time.Time `json:"-"`
}

// Student represents a person's enrollment at a school.
type Student struct {
	SchoolID         string    `json:"school_id"`
	PersonID         string    `json:"person_id"`
	FullName         string    `json:"full_name"` // Denormalized for roster views
	IsInstructor     bool      `json:"is_instructor"`
	IsHeadInstructor bool      `json:"is_head_instructor"`
	IsSecretary      bool      `json:"is_secretary"`
	JoinedAt         time.Time `json:"joined_at"`
}

// # Search & Filtering

// Filter holds parameters for searching and listing schools.
type Filter struct {
	Query          string `json:"q"`
	OrganisationID string `json:"organisation_id"`
	City           string `json:"city"`
}

// # Field Identifiers

const (
	FieldName           = "name"
	FieldOrganisationID = "organisation_id"
	FieldCity           = "city"
	FieldAddress        = "address"
	FieldPersonID       = "person_id"
)
