// Copyright (c) 2026 Tatami. All rights reserved.
// Author: an.le.vn@gmail.com

package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// # PostgreSQL Directories
//
// Concrete pgx-backed implementations of the directory contracts. Unlike the
// domain repositories, absence is modelled as ("" / false, nil) rather than
// as an error: the resolver and validator treat "not found" as data.

// PostgresPersonDirectory implements [PersonDirectory] using pgx.
type PostgresPersonDirectory struct {
	db *pgxpool.Pool
}

// NewPersonDirectory constructs a PostgreSQL backed person directory.
func NewPersonDirectory(db *pgxpool.Pool) *PostgresPersonDirectory {
	return &PostgresPersonDirectory{db: db}
}

// FindPersonIDByExternalID implements [PersonDirectory].
func (directory *PostgresPersonDirectory) FindPersonIDByExternalID(context context.Context, externalID string) (string, error) {
	const query = `
		SELECT id FROM core.person
		WHERE externalid = $1 AND deletedat IS NULL
	`
	return scanOptionalID(directory.db.QueryRow(context, query, externalID), "find_person_by_external_id")
}

// FindPersonIDByInvitationCode implements [PersonDirectory].
func (directory *PostgresPersonDirectory) FindPersonIDByInvitationCode(context context.Context, code string) (string, error) {
	const query = `
		SELECT id FROM core.person
		WHERE invitationcode = $1 AND deletedat IS NULL
	`
	return scanOptionalID(directory.db.QueryRow(context, query, code), "find_person_by_invitation_code")
}

/*
ConsumeInvitationCode binds the external id and clears the code atomically.

Description: A single UPDATE guards against double consumption — the WHERE
clause only matches while the code is still set, so a concurrent second
consumer updates zero rows and the binding stays with the first winner.
*/
func (directory *PostgresPersonDirectory) ConsumeInvitationCode(context context.Context, personID, externalID string) error {
	const query = `
		UPDATE core.person
		SET externalid = $2, invitationcode = NULL, updatedat = NOW()
		WHERE id = $1 AND invitationcode IS NOT NULL
	`
	_, err := directory.db.Exec(context, query, personID, externalID)
	if err != nil {
		return fmt.Errorf("authz_store: consume_invitation_code: %w", err)
	}
	return nil
}

// GetRolesForPerson implements [PersonDirectory].
func (directory *PostgresPersonDirectory) GetRolesForPerson(context context.Context, personID string) ([]Role, error) {
	const query = `
		SELECT r.name
		FROM core.personrole pr
		JOIN core.role r ON r.id = pr.roleid
		WHERE pr.personid = $1
		ORDER BY r.name ASC
	`
	rows, err := directory.db.Query(context, query, personID)
	if err != nil {
		return nil, fmt.Errorf("authz_store: get_roles_for_person: %w", err)
	}
	defer rows.Close()

	roles := make([]Role, 0, 4)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("authz_store: scan_role: %w", err)
		}
		roles = append(roles, Role(name))
	}

	return roles, rows.Err()
}

// GetUserAccountIDForPerson implements [PersonDirectory].
func (directory *PostgresPersonDirectory) GetUserAccountIDForPerson(context context.Context, personID string) (string, error) {
	const query = `
		SELECT COALESCE(externalid, '') FROM core.person
		WHERE id = $1 AND deletedat IS NULL
	`
	var accountID string
	err := directory.db.QueryRow(context, query, personID).Scan(&accountID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("authz_store: get_account_for_person: %w", err)
	}
	return accountID, nil
}

// Exists implements [PersonDirectory].
func (directory *PostgresPersonDirectory) Exists(context context.Context, personID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM core.person WHERE id = $1 AND deletedat IS NULL
		)
	`
	return scanExists(directory.db.QueryRow(context, query, personID), "person_exists")
}

// PostgresOrganisationDirectory implements [OrganisationDirectory] using pgx.
type PostgresOrganisationDirectory struct {
	db *pgxpool.Pool
}

// NewOrganisationDirectory constructs a PostgreSQL backed organisation directory.
func NewOrganisationDirectory(db *pgxpool.Pool) *PostgresOrganisationDirectory {
	return &PostgresOrganisationDirectory{db: db}
}

// Exists implements [OrganisationDirectory].
func (directory *PostgresOrganisationDirectory) Exists(context context.Context, organisationID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM core.organisation WHERE id = $1 AND deletedat IS NULL
		)
	`
	return scanExists(directory.db.QueryRow(context, query, organisationID), "organisation_exists")
}

// HasMember implements [OrganisationDirectory].
func (directory *PostgresOrganisationDirectory) HasMember(context context.Context, organisationID, personID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM core.organisationmember
			WHERE organisationid = $1 AND personid = $2
		)
	`
	return scanExists(directory.db.QueryRow(context, query, organisationID, personID), "organisation_has_member")
}

// IsAdmin implements [OrganisationDirectory].
func (directory *PostgresOrganisationDirectory) IsAdmin(context context.Context, organisationID, personID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM core.organisationmember
			WHERE organisationid = $1 AND personid = $2 AND isadmin = TRUE
		)
	`
	return scanExists(directory.db.QueryRow(context, query, organisationID, personID), "organisation_is_admin")
}

// GetParentID implements [OrganisationDirectory].
func (directory *PostgresOrganisationDirectory) GetParentID(context context.Context, organisationID string) (string, error) {
	const query = `
		SELECT COALESCE(parentid::text, '') FROM core.organisation
		WHERE id = $1 AND deletedat IS NULL
	`
	var parentID string
	err := directory.db.QueryRow(context, query, organisationID).Scan(&parentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("authz_store: get_parent_id: %w", err)
	}
	return parentID, nil
}

// ListOrganisationIDsForPerson implements [OrganisationDirectory].
func (directory *PostgresOrganisationDirectory) ListOrganisationIDsForPerson(context context.Context, personID string) ([]string, error) {
	const query = `
		SELECT organisationid FROM core.organisationmember
		WHERE personid = $1
		ORDER BY organisationid ASC
	`
	return scanIDList(directory.db.Query(context, query, personID))
}

// PostgresSchoolDirectory implements [SchoolDirectory] using pgx.
type PostgresSchoolDirectory struct {
	db *pgxpool.Pool
}

// NewSchoolDirectory constructs a PostgreSQL backed school directory.
func NewSchoolDirectory(db *pgxpool.Pool) *PostgresSchoolDirectory {
	return &PostgresSchoolDirectory{db: db}
}

// Exists implements [SchoolDirectory].
func (directory *PostgresSchoolDirectory) Exists(context context.Context, schoolID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM core.school WHERE id = $1 AND deletedat IS NULL
		)
	`
	return scanExists(directory.db.QueryRow(context, query, schoolID), "school_exists")
}

// HasStudent implements [SchoolDirectory].
func (directory *PostgresSchoolDirectory) HasStudent(context context.Context, schoolID, personID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM core.schoolstudent
			WHERE schoolid = $1 AND personid = $2
		)
	`
	return scanExists(directory.db.QueryRow(context, query, schoolID, personID), "school_has_student")
}

// HasSecretary implements [SchoolDirectory].
func (directory *PostgresSchoolDirectory) HasSecretary(context context.Context, schoolID, personID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM core.schoolstudent
			WHERE schoolid = $1 AND personid = $2 AND issecretary = TRUE
		)
	`
	return scanExists(directory.db.QueryRow(context, query, schoolID, personID), "school_has_secretary")
}

// ListSchoolIDsForPerson implements [SchoolDirectory].
func (directory *PostgresSchoolDirectory) ListSchoolIDsForPerson(context context.Context, personID string) ([]string, error) {
	const query = `
		SELECT schoolid FROM core.schoolstudent
		WHERE personid = $1
		ORDER BY schoolid ASC
	`
	return scanIDList(directory.db.Query(context, query, personID))
}

// # Scan Helpers

// scanOptionalID reads a single id column, mapping "no rows" to "".
func scanOptionalID(row pgx.Row, action string) (string, error) {
	var id string
	err := row.Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("authz_store: %s: %w", action, err)
	}
	return id, nil
}

// scanExists reads a single boolean EXISTS column.
func scanExists(row pgx.Row, action string) (bool, error) {
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("authz_store: %s: %w", action, err)
	}
	return exists, nil
}

// scanIDList drains a single-column id result set.
func scanIDList(rows pgx.Rows, err error) ([]string, error) {
	if err != nil {
		return nil, fmt.Errorf("authz_store: list_ids: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0, 8)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("authz_store: scan_id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
