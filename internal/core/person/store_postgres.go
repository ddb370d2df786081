// Copyright (c) 2026 Tatami. All rights reserved.
// Author: an.le.vn@gmail.com

package person

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anlevn/tatami/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed person store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// # Person Retrieval

/*
List returns a filtered and paginated list of person records.

Parameters:
  - context: context.Context
  - filter: Filter
  - limit: int
  - offset: int

Returns:
  - []*Person: Slice of matching persons
  - int: Total record count
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Person, int, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT
			id, fullname, email, birthdate, countrycode, externalid, invitationcode,
			isactive, createdat, updatedat,
			COUNT(*) OVER() as total
		FROM core.person
		WHERE deletedat IS NULL
	`)

	args := []any{}
	argID := 1

	if filter.Query != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND fullname ILIKE $%d", argID))
		args = append(args, "%"+filter.Query+"%")
		argID++
	}

	if filter.CountryCode != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND countrycode = $%d", argID))
		args = append(args, filter.CountryCode)
		argID++
	}

	if filter.Unbound != nil {
		if *filter.Unbound {
			queryBuilder.WriteString(" AND externalid IS NULL")
		} else {
			queryBuilder.WriteString(" AND externalid IS NOT NULL")
		}
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY fullname ASC LIMIT $%d OFFSET $%d", argID, argID+1))
	args = append(args, limit, offset)

	rows, err := repository.db.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_persons")
	}
	defer rows.Close()

	var persons []*Person
	var total int
	for rows.Next() {
		person := &Person{}
		err := rows.Scan(
			&person.ID, &person.FullName, &person.Email, &person.BirthDate, &person.CountryCode,
			&person.ExternalID, &person.InvitationCode,
			&person.IsActive, &person.CreatedAt, &person.UpdatedAt, &total,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_person")
		}
		persons = append(persons, person)
	}

	return persons, total, nil
}

/*
FindByID retrieves a single person record by primary key.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Person: Hydrated entity
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Person, error) {
	const query = `
		SELECT
			id, fullname, email, birthdate, countrycode, externalid, invitationcode,
			isactive, createdat, updatedat
		FROM core.person
		WHERE id = $1 AND deletedat IS NULL
	`
	person := &Person{}
	err := repository.db.QueryRow(context, query, id).Scan(
		&person.ID, &person.FullName, &person.Email, &person.BirthDate, &person.CountryCode,
		&person.ExternalID, &person.InvitationCode,
		&person.IsActive, &person.CreatedAt, &person.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_person_by_id")
	}
	return person, nil
}

// # Person Mutation

/*
Create inserts a new person record.

Parameters:
  - context: context.Context
  - person: *Person

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) Create(context context.Context, person *Person) error {
	const query = `
		INSERT INTO core.person (
			id, fullname, email, birthdate, countrycode, isactive, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING createdat, updatedat
	`
	err := repository.db.QueryRow(context, query,
		person.ID, person.FullName, person.Email, person.BirthDate, person.CountryCode, person.IsActive,
	).Scan(&person.CreatedAt, &person.UpdatedAt)

	return dberr.Wrap(err, "create_person")
}

/*
Update modifies a person's profile fields.

Parameters:
  - context: context.Context
  - person: *Person

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) Update(context context.Context, person *Person) error {
	const query = `
		UPDATE core.person
		SET fullname = COALESCE(NULLIF($2, ''), fullname),
		    email = COALESCE($3, email),
		    birthdate = COALESCE($4, birthdate),
		    countrycode = COALESCE(NULLIF($5, ''), countrycode),
		    updatedat = NOW()
		WHERE id = $1 AND deletedat IS NULL
		RETURNING updatedat
	`
	err := repository.db.QueryRow(context, query,
		person.ID, person.FullName, person.Email, person.BirthDate, person.CountryCode,
	).Scan(&person.UpdatedAt)
	return dberr.Wrap(err, "update_person")
}

/*
SoftDelete flags a person record as deleted.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) SoftDelete(context context.Context, id string) error {
	const query = `UPDATE core.person SET deletedat = NOW() WHERE id = $1`
	_, err := repository.db.Exec(context, query, id)
	return dberr.Wrap(err, "delete_person")
}

// # Identity Binding

/*
SetInvitationCode replaces the outstanding invitation code.

Parameters:
  - context: context.Context
  - personID: string
  - code: string

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) SetInvitationCode(context context.Context, personID, code string) error {
	const query = `
		UPDATE core.person
		SET invitationcode = $2, updatedat = NOW()
		WHERE id = $1 AND deletedat IS NULL
	`
	_, err := repository.db.Exec(context, query, personID, code)
	return dberr.Wrap(err, "set_invitation_code")
}

/*
ClearBinding removes the external identity and any outstanding invitation code.

Parameters:
  - context: context.Context
  - personID: string

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) ClearBinding(context context.Context, personID string) error {
	const query = `
		UPDATE core.person
		SET externalid = NULL, invitationcode = NULL, updatedat = NOW()
		WHERE id = $1
	`
	_, err := repository.db.Exec(context, query, personID)
	return dberr.Wrap(err, "clear_person_binding")
}

// # Role Grants

/*
ListRoles returns all named roles granted to a person.

Parameters:
  - context: context.Context
  - personID: string

Returns:
  - []*RoleGrant: Grants ordered by grant time
  - error: Retrieval failures
*/
func (repository *PostgresRepository) ListRoles(context context.Context, personID string) ([]*RoleGrant, error) {
	const query = `
		SELECT pr.personid, r.name, pr.grantedat
		FROM core.personrole pr
		JOIN core.role r ON pr.roleid = r.id
		WHERE pr.personid = $1
		ORDER BY pr.grantedat ASC
	`
	rows, err := repository.db.Query(context, query, personID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_person_roles")
	}
	defer rows.Close()

	var grants []*RoleGrant
	for rows.Next() {
		grant := &RoleGrant{}
		if err := rows.Scan(&grant.PersonID, &grant.Role, &grant.GrantedAt); err != nil {
			return nil, dberr.Wrap(err, "scan_person_role")
		}
		grants = append(grants, grant)
	}

	return grants, nil
}

/*
GrantRole adds a named role. ON CONFLICT makes repeat grants a no-op.

Parameters:
  - context: context.Context
  - personID: string
  - role: string

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) GrantRole(context context.Context, personID, role string) error {
	const query = `
		INSERT INTO core.personrole (personid, roleid, grantedat)
		SELECT $1, r.id, NOW() FROM core.role r WHERE r.name = $2
		ON CONFLICT (personid, roleid) DO NOTHING
	`
	_, err := repository.db.Exec(context, query, personID, role)
	return dberr.Wrap(err, "grant_person_role")
}

/*
RevokeRole removes a named role from a person.

Parameters:
  - context: context.Context
  - personID: string
  - role: string

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) RevokeRole(context context.Context, personID, role string) error {
	const query = `
		DELETE FROM core.personrole pr
		USING core.role r
		WHERE pr.roleid = r.id AND pr.personid = $1 AND r.name = $2
	`
	_, err := repository.db.Exec(context, query, personID, role)
	return dberr.Wrap(err, "revoke_person_role")
}
