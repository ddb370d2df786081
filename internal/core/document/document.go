// Copyright (c) 2026 Tatami. All rights reserved.
// Author: an.le.vn@gmail.com

/*
Package document manages document metadata attached to person records:
grading certificates, licenses, medical clearances, and similar paperwork.

Only metadata lives here. File content storage is handled outside the API;
records carry a file name and content type for the client to resolve.

Access follows the owner: whoever may read the person record may read and
manage its documents.
*/
package document

import "time"

// # Core Entities

// Document represents one piece of paperwork attached to a person.
type Document struct {
	ID          string     `json:"id"` // UUIDv7
	PersonID    string     `json:"person_id"`
	Kind        string     `json:"kind"` // e.g. "grading-certificate", "license"
	Title       string     `json:"title"`
	FileName    *string    `json:"file_name,omitempty"`
	ContentType *string    `json:"content_type,omitempty"`
	IssuedAt    *time.Time `json:"issued_at,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"-"`
}

// # Field Identifiers

const (
	FieldKind  = "kind"
	FieldTitle = "title"
)
