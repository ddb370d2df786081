// Copyright (c) 2026 Tatami. All rights reserved.
// Author: an.le.vn@gmail.com

package school

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

// NewPostgresRepository constructs a PostgreSQL backed school store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// # School Retrieval

/*
List returns a filtered and paginated list of schools.

Parameters:
  - context: context.Context
  - filter: Filter
  - limit: int
  - offset: int

Returns:
  - []*School: Slice of matching schools
  - int: Total record count
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) List(context context.Context, filter Filter, limit, offset int) ([]*School, int, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT
			s.id, s.organisationid, s.name, s.slug, s.address, s.city,
			s.description, s.isactive, s.createdat, s.updatedat,
			(SELECT COUNT(*) FROM core.schoolstudent st WHERE st.schoolid = s.id) AS studentcount,
			COUNT(*) OVER() as total
		FROM core.school s
		WHERE s.deletedat IS NULL
	`)

	args := []any{}
	argID := 1

	if filter.OrganisationID != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND s.organisationid = $%d", argID))
		args = append(args, filter.OrganisationID)
		argID++
	}

	if filter.Query != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND s.name ILIKE $%d", argID))
		args = append(args, "%"+filter.Query+"%")
		argID++
	}

	if filter.City != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND s.city = $%d", argID))
		args = append(args, filter.City)
		argID++
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY s.name ASC LIMIT $%d OFFSET $%d", argID, argID+1))
	args = append(args, limit, offset)

	rows, err := repository.db.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_schools")
	}
	defer rows.Close()

	var schools []*School
	var total int
	for rows.Next() {
		school := &School{}
		err := rows.Scan(
			&school.ID, &school.OrganisationID, &school.Name, &school.Slug, &school.Address, &school.City,
			&school.Description, &school.IsActive, &school.CreatedAt, &school.UpdatedAt,
			&school.StudentCount, &total,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_school")
		}
		schools = append(schools, school)
	}

	return schools, total, nil
}

/*
FindByID retrieves a single school record by its primary key.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *School: Hydrated entity
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*School, error) {
	const query = `
		SELECT
			s.id, s.organisationid, s.name, s.slug, s.address, s.city,
			s.description, s.isactive, s.createdat, s.updatedat,
			(SELECT COUNT(*) FROM core.schoolstudent st WHERE st.schoolid = s.id) AS studentcount
		FROM core.school s
		WHERE s.id = $1 AND s.deletedat IS NULL
	`
	school := &School{}
	err := repository.db.QueryRow(context, query, id).Scan(
		&school.ID, &school.OrganisationID, &school.Name, &school.Slug, &school.Address, &school.City,
		&school.Description, &school.IsActive, &school.CreatedAt, &school.UpdatedAt,
		&school.StudentCount,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_school_by_id")
	}
	return school, nil
}

/*
FindBySlug retrieves a school by its unique URL slug.

Parameters:
  - context: context.Context
  - slug: string

Returns:
  - *School: Hydrated entity
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) FindBySlug(context context.Context, slug string) (*School, error) {
	const query = `
		SELECT
			s.id, s.organisationid, s.name, s.slug, s.address, s.city,
			s.description, s.isactive, s.createdat, s.updatedat,
			(SELECT COUNT(*) FROM core.schoolstudent st WHERE st.schoolid = s.id) AS studentcount
		FROM core.school s
		WHERE s.slug = $1 AND s.deletedat IS NULL
	`
	school := &School{}
	err := repository.db.QueryRow(context, query, slug).Scan(
		&school.ID, &school.OrganisationID, &school.Name, &school.Slug, &school.Address, &school.City,
		&school.Description, &school.IsActive, &school.CreatedAt, &school.UpdatedAt,
		&school.StudentCount,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_school_by_slug")
	}
	return school, nil
}

// # School Mutation

/*
Create inserts a new school record.

Parameters:
  - context: context.Context
  - school: *School

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) Create(context context.Context, school *School) error {
	const query = `
		INSERT INTO core.school (
			id, organisationid, name, slug, address, city, description, isactive, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING createdat, updatedat
	`
	err := repository.db.QueryRow(context, query,
		school.ID, school.OrganisationID, school.Name, school.Slug, school.Address, school.City,
		school.Description, school.IsActive,
	).Scan(&school.CreatedAt, &school.UpdatedAt)

	return dberr.Wrap(err, "create_school")
}

/*
Update modifies school metadata fields.

Parameters:
  - context: context.Context
  - school: *School

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) Update(context context.Context, school *School) error {
	const query = `
		UPDATE core.school
		SET name = COALESCE(NULLIF($2, ''), name),
		    address = COALESCE($3, address),
		    city = COALESCE(NULLIF($4, ''), city),
		    description = COALESCE($5, description),
		    updatedat = NOW()
		WHERE id = $1 AND deletedat IS NULL
		RETURNING updatedat
	`
	err := repository.db.QueryRow(context, query,
		school.ID, school.Name, school.Address, school.City, school.Description,
	).Scan(&school.UpdatedAt)
	return dberr.Wrap(err, "update_school")
}

/*
SoftDelete flags a school as deleted.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) SoftDelete(context context.Context, id string) error {
	const query = `UPDATE core.school SET deletedat = NOW() WHERE id = $1`
	_, err := repository.db.Exec(context, query, id)
	return dberr.Wrap(err, "delete_school")
}

// # Roster Implementation

/*
ListStudents retrieves the enrollment roster with denormalised person names.

Parameters:
  - context: context.Context
  - schoolID: string

Returns:
  - []*Student: List of enrolled persons
  - error: Retrieval failures
*/
func (repository *PostgresRepository) ListStudents(context context.Context, schoolID string) ([]*Student, error) {
	const query = `
		SELECT st.schoolid, st.personid, p.fullname, st.isinstructor, st.isheadinstructor, st.issecretary, st.joinedat
		FROM core.schoolstudent st
		JOIN core.person p ON st.personid = p.id
		WHERE st.schoolid = $1
		ORDER BY st.joinedat ASC
	`
	rows, err := repository.db.Query(context, query, schoolID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_school_students")
	}
	defer rows.Close()

	var students []*Student
	for rows.Next() {
		student := &Student{}
		if err := rows.Scan(&student.SchoolID, &student.PersonID, &student.FullName,
			&student.IsInstructor, &student.IsHeadInstructor, &student.IsSecretary, &student.JoinedAt); err != nil {
			return nil, dberr.Wrap(err, "scan_school_student")
		}
		students = append(students, student)
	}

	return students, nil
}

/*
EnrollStudent inserts a new enrollment record.

Parameters:
  - context: context.Context
  - student: *Student

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) EnrollStudent(context context.Context, student *Student) error {
	const query = `
		INSERT INTO core.schoolstudent (schoolid, personid, isinstructor, isheadinstructor, issecretary, joinedat)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING joinedat
	`
	err := repository.db.QueryRow(context, query,
		student.SchoolID, student.PersonID, student.IsInstructor, student.IsHeadInstructor, student.IsSecretary,
	).Scan(&student.JoinedAt)
	return dberr.Wrap(err, "enroll_school_student")
}

/*
SetStudentFlags replaces the capability flags on an enrollment.

Parameters:
  - context: context.Context
  - student: *Student

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) SetStudentFlags(context context.Context, student *Student) error {
	const query = `
		UPDATE core.schoolstudent
		SET isinstructor = $3, isheadinstructor = $4, issecretary = $5
		WHERE schoolid = $1 AND personid = $2
	`
	_, err := repository.db.Exec(context, query,
		student.SchoolID, student.PersonID, student.IsInstructor, student.IsHeadInstructor, student.IsSecretary,
	)
	return dberr.Wrap(err, "set_school_student_flags")
}

/*
RemoveStudent hard-deletes an enrollment link.

Parameters:
  - context: context.Context
  - schoolID: string
  - personID: string

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) RemoveStudent(context context.Context, schoolID, personID string) error {
	const query = `DELETE FROM core.schoolstudent WHERE schoolid = $1 AND personid = $2`
	_, err := repository.db.Exec(context, query, schoolID, personID)
	return dberr.Wrap(err, "remove_school_student")
}
