package entitlement

import (
	"context"
	"strings"
)

// =============================================================================
// DATASET - Immutable snapshot handed to the engine
// =============================================================================

// Dataset is the record set one computation runs against. The engine never
// mutates it; stores hand out a fresh copy per snapshot.
type Dataset struct {
	Employees []Employee
	Branches  []Branch
	Users     []User
	Requests  []LeaveRequest
	Grants    []WelfareGrant
}

// Source yields a consistent snapshot of the records.
type Source interface {
	Dataset(ctx context.Context) (*Dataset, error)
}

// EmployeeSource is implemented by sources that can load the records one
// employee's figures depend on: the employee, every branch and user, and only
// the requests and grants filed under the employee's identities. Unknown ids
// fail with generic.ErrEntityNotFound.
type EmployeeSource interface {
	EmployeeDataset(ctx context.Context, employeeID string) (*Dataset, error)
}

// Importer is implemented by sources that accept bulk record loads.
type Importer interface {
	Import(ctx context.Context, ds *Dataset) error
}

// Employee finds an employee by id.
func (d *Dataset) Employee(id string) (Employee, bool) {
	for _, e := range d.Employees {
		if e.ID == id {
			return e, true
		}
	}
	return Employee{}, false
}

// Branch matches ref against branch ids first, then against names (trimmed,
// case-insensitive).
func (d *Dataset) Branch(ref string) (Branch, bool) {
	return findBranch(d.Branches, ref)
}

// GrantsFor returns the welfare grants issued to an employee.
func (d *Dataset) GrantsFor(employeeID string) []WelfareGrant {
	var out []WelfareGrant
	for _, g := range d.Grants {
		if g.EmployeeID == employeeID {
			out = append(out, g)
		}
	}
	return out
}

// Clone deep-copies the slices and optional dates.
func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return &Dataset{}
	}
	out := &Dataset{
		Employees: make([]Employee, len(d.Employees)),
		Branches:  append([]Branch(nil), d.Branches...),
		Users:     append([]User(nil), d.Users...),
		Requests:  append([]LeaveRequest(nil), d.Requests...),
		Grants:    make([]WelfareGrant, len(d.Grants)),
	}
	for i, e := range d.Employees {
		if e.HireDate != nil {
			h := *e.HireDate
			e.HireDate = &h
		}
		out.Employees[i] = e
	}
	for i, g := range d.Grants {
		if g.ExpiryDate != nil {
			x := *g.ExpiryDate
			g.ExpiryDate = &x
		}
		out.Grants[i] = g
	}
	return out
}

func findBranch(branches []Branch, ref string) (Branch, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Branch{}, false
	}
	for _, b := range branches {
		if b.ID == ref {
			return b, true
		}
	}
	for _, b := range branches {
		if sameName(b.Name, ref) {
			return b, true
		}
	}
	return Branch{}, false
}

func sameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
