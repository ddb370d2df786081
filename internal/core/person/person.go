// Copyright (c) 2026 Tatami. All rights reserved.
// Author: an.le.vn@gmail.com

/*
Package person manages the member registry: the people behind every
organisation membership and school enrollment.

# Identity Lifecycle

A person record is created by an administrator before the person ever signs
in. The record is then bound to a login account in one of two ways:

  - An invitation code is issued for the record and handed to the person.
    Presenting the code at first sign-in binds the account's external
    identity to the record and burns the code.
  - The external identity is already known and set directly.

Disassociation clears both the external identity and any outstanding
invitation code, returning the record to its unbound state.
*/
package person

import "time"

// # Core Entities

// Person represents a registered member of the federation.
type Person struct {
	ID             string     `json:"id"` // UUIDv7
	FullName       string     `json:"full_name"`
	Email          *string    `json:"email,omitempty"`
	BirthDate      *time.Time `json:"birth_date,omitempty"`
	CountryCode    string     `json:"country_code"` // ISO 3166-1 alpha-2
	ExternalID     *string    `json:"-"`            // Login-account binding, never serialized
	InvitationCode *string    `json:"-"`            // Outstanding invite, never serialized
	IsActive       bool       `json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	DeletedAt      *time.Time `json:"-"`
}

// IsBound reports whether the record is linked to a login account.
func (person *Person) IsBound() bool {
	return person.ExternalID != nil && *person.ExternalID != ""
}

// RoleGrant represents one named role held by a person.
type RoleGrant struct {
	PersonID  string    `json:"person_id"`
	Role      string    `json:"role"`
	GrantedAt time.Time `json:"granted_at"`
}

// # Search & Filtering

// Filter holds parameters for searching and listing persons.
type Filter struct {
	Query       string `json:"q"`
	CountryCode string `json:"country_code"`
	// Unbound restricts to records without a login-account binding.
	Unbound *bool `json:"unbound"`
}

// # Field Identifiers

const (
	FieldFullName    = "full_name"
	FieldEmail       = "email"
	FieldCountryCode = "country_code"
	FieldRole        = "role"
)
