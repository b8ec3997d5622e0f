package entitlement

import "strings"

// =============================================================================
// IDENTITY RESOLUTION
// =============================================================================

// IdentitySet holds every identifier a request may carry for one employee:
// the employee id and the ids of users linked by email.
type IdentitySet map[string]struct{}

// IdentitiesFor builds the identity set once per query.
func IdentitiesFor(emp Employee, users []User) IdentitySet {
	ids := IdentitySet{}
	if emp.ID != "" {
		ids[emp.ID] = struct{}{}
	}
	email := normalizeEmail(emp.Email)
	if email == "" {
		return ids
	}
	for _, u := range users {
		if u.ID != "" && normalizeEmail(u.Email) == email {
			ids[u.ID] = struct{}{}
		}
	}
	return ids
}

// Contains reports whether ref identifies the employee.
func (s IdentitySet) Contains(ref string) bool {
	_, ok := s[ref]
	return ok
}

// OwnerIndex maps every request reference (employee id or linked user id) to
// the owning employee id. Used by organization-wide aggregation.
type OwnerIndex map[string]string

// NewOwnerIndex indexes employees and users. Employee ids win over user ids
// when the two collide.
func NewOwnerIndex(employees []Employee, users []User) OwnerIndex {
	idx := OwnerIndex{}
	byEmail := map[string]string{}
	for _, e := range employees {
		if email := normalizeEmail(e.Email); email != "" {
			if _, dup := byEmail[email]; !dup {
				byEmail[email] = e.ID
			}
		}
	}
	for _, u := range users {
		if owner, ok := byEmail[normalizeEmail(u.Email)]; ok && u.ID != "" {
			idx[u.ID] = owner
		}
	}
	for _, e := range employees {
		idx[e.ID] = e.ID
	}
	return idx
}

// Owner returns the employee id behind ref.
func (idx OwnerIndex) Owner(ref string) (string, bool) {
	id, ok := idx[ref]
	return id, ok
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
