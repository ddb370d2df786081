// Copyright (c) 2026 Tatami. All rights reserved.
// Author: an.le.vn@gmail.com

package authz

// # Role Catalog

// Role is a named permission grant from the fixed platform catalog.
type Role string

const (
	// Bypasses every role and relationship check
	RoleSuperUser Role = "super-user"

	// Can manage platform-wide reference data and person records
	RoleSystemAdmin Role = "system-admin"

	// Enrolled in at least one organisation
	RoleOrganisationMember Role = "organisation-member"

	// Administers one or more organisations
	RoleOrganisationAdmin Role = "organisation-admin"

	// Trains at one or more schools
	RoleSchoolMember Role = "school-member"

	// Teaches at one or more schools
	RoleSchoolInstructor Role = "school-instructor"

	// Leads the curriculum of one or more schools
	RoleSchoolHeadInstructor Role = "school-head-instructor"

	// Manages student administration for one or more schools
	RoleSchoolSecretary Role = "school-secretary"
)

// catalog is the closed set of known role names. It is never mutated after
// package initialization; callers receive copies via [Catalog].
var catalog = []Role{
	RoleSuperUser,
	RoleSystemAdmin,
	RoleOrganisationMember,
	RoleOrganisationAdmin,
	RoleSchoolMember,
	RoleSchoolInstructor,
	RoleSchoolHeadInstructor,
	RoleSchoolSecretary,
}

// Catalog returns a copy of the full role catalog.
func Catalog() []Role {
	out := make([]Role, len(catalog))
	copy(out, catalog)
	return out
}

// IsKnownRole reports whether the given name is part of the fixed catalog.
func IsKnownRole(role Role) bool {
	for _, known := range catalog {
		if role == known {
			return true
		}
	}
	return false
}

// # Role Sets

// RoleSet is the collection of roles granted to a single person.
//
// The zero value (nil map) is a valid, empty set.
type RoleSet map[Role]struct{}

// NewRoleSet builds a [RoleSet] from the given role names.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, role := range roles {
		set[role] = struct{}{}
	}
	return set
}

// Has reports whether the set contains the given role.
func (set RoleSet) Has(role Role) bool {
	_, ok := set[role]
	return ok
}

// HasAny reports whether the set contains at least one of the given roles.
func (set RoleSet) HasAny(roles ...Role) bool {
	for _, role := range roles {
		if set.Has(role) {
			return true
		}
	}
	return false
}

// Names returns the role names in the set as plain strings.
//
// Ordering is unspecified; callers that need stable output must sort.
func (set RoleSet) Names() []string {
	names := make([]string, 0, len(set))
	for role := range set {
		names = append(names, string(role))
	}
	return names
}

// Capability groupings used by the [Validator]. A role in one of these slices
// legitimizes the capability in general; the relationship stage still confirms
// it against the specific target entity.
var (
	// schoolMemberRoles legitimize member-level access to a school.
	schoolMemberRoles = []Role{RoleSchoolMember, RoleSchoolInstructor, RoleSchoolHeadInstructor, RoleSchoolSecretary}

	// organisationMemberRoles legitimize member-level access to an organisation.
	organisationMemberRoles = []Role{RoleOrganisationMember, RoleOrganisationAdmin}

	// personAccessRoles legitimize access to another person's record.
	personAccessRoles = []Role{RoleSchoolSecretary, RoleOrganisationAdmin}
)
