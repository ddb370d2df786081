// Copyright (c) 2026 Tatami. All rights reserved.
// Author: an.le.vn@gmail.com

package organisation

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

// NewPostgresRepository constructs a PostgreSQL backed organisation store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// # Organisation Retrieval

/*
List returns a filtered and paginated list of organisations.

Description: Uses trigram ILIKE for name search and COUNT(*) OVER() for total
metadata. Member counts come from a correlated subquery.

Parameters:
  - context: context.Context
  - filter: Filter
  - limit: int
  - offset: int

Returns:
  - []*Organisation: Slice of matching organisations
  - int: Total record count
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Organisation, int, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT
			o.id, o.name, o.slug, o.parentid, o.art, o.countrycode,
			o.description, o.website, o.isactive, o.createdat, o.updatedat,
			(SELECT COUNT(*) FROM core.organisationmember m WHERE m.organisationid = o.id) AS membercount,
			COUNT(*) OVER() as total
		FROM core.organisation o
		WHERE o.deletedat IS NULL
	`)

	args := []any{}
	argID := 1

	if filter.Query != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND o.name ILIKE $%d", argID))
		args = append(args, "%"+filter.Query+"%")
		argID++
	}

	if filter.Art != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND o.art = $%d", argID))
		args = append(args, filter.Art)
		argID++
	}

	if filter.CountryCode != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND o.countrycode = $%d", argID))
		args = append(args, filter.CountryCode)
		argID++
	}

	if filter.ParentID != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND o.parentid = $%d", argID))
		args = append(args, *filter.ParentID)
		argID++
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY o.name ASC LIMIT $%d OFFSET $%d", argID, argID+1))
	args = append(args, limit, offset)

	rows, err := repository.db.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_organisations")
	}
	defer rows.Close()

	var organisations []*Organisation
	var total int
	for rows.Next() {
		organisation := &Organisation{}
		err := rows.Scan(
			&organisation.ID, &organisation.Name, &organisation.Slug, &organisation.ParentID,
			&organisation.Art, &organisation.CountryCode, &organisation.Description, &organisation.Website,
			&organisation.IsActive, &organisation.CreatedAt, &organisation.UpdatedAt,
			&organisation.MemberCount, &total,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_organisation")
		}
		organisations = append(organisations, organisation)
	}

	return organisations, total, nil
}

/*
FindByID retrieves a single organisation record by its primary key.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Organisation: Hydrated entity
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Organisation, error) {
	const query = `
		SELECT
			o.id, o.name, o.slug, o.parentid, o.art, o.countrycode,
			o.description, o.website, o.isactive, o.createdat, o.updatedat,
			(SELECT COUNT(*) FROM core.organisationmember m WHERE m.organisationid = o.id) AS membercount
		FROM core.organisation o
		WHERE o.id = $1 AND o.deletedat IS NULL
	`
	organisation := &Organisation{}
	err := repository.db.QueryRow(context, query, id).Scan(
		&organisation.ID, &organisation.Name, &organisation.Slug, &organisation.ParentID,
		&organisation.Art, &organisation.CountryCode, &organisation.Description, &organisation.Website,
		&organisation.IsActive, &organisation.CreatedAt, &organisation.UpdatedAt,
		&organisation.MemberCount,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_organisation_by_id")
	}
	return organisation, nil
}

/*
FindBySlug retrieves an organisation by its unique URL slug.

Parameters:
  - context: context.Context
  - slug: string

Returns:
  - *Organisation: Hydrated entity
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) FindBySlug(context context.Context, slug string) (*Organisation, error) {
	const query = `
		SELECT
			o.id, o.name, o.slug, o.parentid, o.art, o.countrycode,
			o.description, o.website, o.isactive, o.createdat, o.updatedat,
			(SELECT COUNT(*) FROM core.organisationmember m WHERE m.organisationid = o.id) AS membercount
		FROM core.organisation o
		WHERE o.slug = $1 AND o.deletedat IS NULL
	`
	organisation := &Organisation{}
	err := repository.db.QueryRow(context, query, slug).Scan(
		&organisation.ID, &organisation.Name, &organisation.Slug, &organisation.ParentID,
		&organisation.Art, &organisation.CountryCode, &organisation.Description, &organisation.Website,
		&organisation.IsActive, &organisation.CreatedAt, &organisation.UpdatedAt,
		&organisation.MemberCount,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_organisation_by_slug")
	}
	return organisation, nil
}

// # Organisation Mutation

/*
Create inserts a new organisation record.

Parameters:
  - context: context.Context
  - organisation: *Organisation

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) Create(context context.Context, organisation *Organisation) error {
	const query = `
		INSERT INTO core.organisation (
			id, name, slug, parentid, art, countrycode, description, website, isactive, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING createdat, updatedat
	`
	err := repository.db.QueryRow(context, query,
		organisation.ID, organisation.Name, organisation.Slug, organisation.ParentID,
		organisation.Art, organisation.CountryCode, organisation.Description, organisation.Website,
		organisation.IsActive,
	).Scan(&organisation.CreatedAt, &organisation.UpdatedAt)

	return dberr.Wrap(err, "create_organisation")
}

/*
Update modifies organisation metadata and the parent link.

Description: COALESCE keeps existing values when the partial update omits a
field; the parent link is replaced as given.

Parameters:
  - context: context.Context
  - organisation: *Organisation

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) Update(context context.Context, organisation *Organisation) error {
	const query = `
		UPDATE core.organisation
		SET name = COALESCE(NULLIF($2, ''), name),
		    description = COALESCE($3, description),
		    website = COALESCE($4, website),
		    parentid = $5,
		    updatedat = NOW()
		WHERE id = $1 AND deletedat IS NULL
		RETURNING updatedat
	`
	err := repository.db.QueryRow(context, query,
		organisation.ID, organisation.Name, organisation.Description, organisation.Website, organisation.ParentID,
	).Scan(&organisation.UpdatedAt)
	return dberr.Wrap(err, "update_organisation")
}

/*
SoftDelete flags an organisation as deleted.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) SoftDelete(context context.Context, id string) error {
	const query = `UPDATE core.organisation SET deletedat = NOW() WHERE id = $1`
	_, err := repository.db.Exec(context, query, id)
	return dberr.Wrap(err, "delete_organisation")
}

// # Membership Implementation

/*
ListMembers retrieves the enrollment roster with denormalised person names.

Parameters:
  - context: context.Context
  - organisationID: string

Returns:
  - []*Member: List of enrolled persons
  - error: Retrieval failures
*/
func (repository *PostgresRepository) ListMembers(context context.Context, organisationID string) ([]*Member, error) {
	const query = `
		SELECT m.organisationid, m.personid, p.fullname, m.isadmin, m.joinedat
		FROM core.organisationmember m
		JOIN core.person p ON m.personid = p.id
		WHERE m.organisationid = $1
		ORDER BY m.joinedat ASC
	`
	rows, err := repository.db.Query(context, query, organisationID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_organisation_members")
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		member := &Member{}
		if err := rows.Scan(&member.OrganisationID, &member.PersonID, &member.FullName, &member.IsAdmin, &member.JoinedAt); err != nil {
			return nil, dberr.Wrap(err, "scan_organisation_member")
		}
		members = append(members, member)
	}

	return members, nil
}

/*
AddMember inserts a new enrollment record.

Parameters:
  - context: context.Context
  - member: *Member

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) AddMember(context context.Context, member *Member) error {
	const query = `
		INSERT INTO core.organisationmember (organisationid, personid, isadmin, joinedat)
		VALUES ($1, $2, $3, NOW())
		RETURNING joinedat
	`
	err := repository.db.QueryRow(context, query, member.OrganisationID, member.PersonID, member.IsAdmin).Scan(&member.JoinedAt)
	return dberr.Wrap(err, "add_organisation_member")
}

/*
SetMemberAdmin toggles the admin flag on an enrollment.

Parameters:
  - context: context.Context
  - organisationID: string
  - personID: string
  - isAdmin: bool

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) SetMemberAdmin(context context.Context, organisationID, personID string, isAdmin bool) error {
	const query = `UPDATE core.organisationmember SET isadmin = $3 WHERE organisationid = $1 AND personid = $2`
	_, err := repository.db.Exec(context, query, organisationID, personID, isAdmin)
	return dberr.Wrap(err, "set_organisation_member_admin")
}

/*
RemoveMember hard-deletes an enrollment link.

Parameters:
  - context: context.Context
  - organisationID: string
  - personID: string

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) RemoveMember(context context.Context, organisationID, personID string) error {
	const query = `DELETE FROM core.organisationmember WHERE organisationid = $1 AND personid = $2`
	_, err := repository.db.Exec(context, query, organisationID, personID)
	return dberr.Wrap(err, "remove_organisation_member")
}

/*
CountAdmins returns the number of admin-flagged enrollments.

Parameters:
  - context: context.Context
  - organisationID: string

Returns:
  - int: Admin count
  - error: Retrieval failures
*/
func (repository *PostgresRepository) CountAdmins(context context.Context, organisationID string) (int, error) {
	const query = `SELECT COUNT(*) FROM core.organisationmember WHERE organisationid = $1 AND isadmin = TRUE`
	var count int
	if err := repository.db.QueryRow(context, query, organisationID).Scan(&count); err != nil {
		return 0, dberr.Wrap(err, "count_organisation_admins")
	}
	return count, nil
}
