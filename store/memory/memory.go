// Package memory provides an in-memory record store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/offday/leave-engine/entitlement"
	"github.com/offday/leave-engine/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory keeps records keyed by id and hands out deep-copied snapshots, so
// writers never race with an engine reading a previous snapshot.
type Memory struct {
	mu        sync.RWMutex
	branches  map[string]entitlement.Branch
	employees map[string]entitlement.Employee
	users     map[string]entitlement.User
	requests  map[string]entitlement.LeaveRequest
	grants    map[string]entitlement.WelfareGrant
}

var (
	_ entitlement.Source         = (*Memory)(nil)
	_ entitlement.EmployeeSource = (*Memory)(nil)
	_ entitlement.Importer       = (*Memory)(nil)
)

func NewMemory() *Memory {
	return &Memory{
		branches:  make(map[string]entitlement.Branch),
		employees: make(map[string]entitlement.Employee),
		users:     make(map[string]entitlement.User),
		requests:  make(map[string]entitlement.LeaveRequest),
		grants:    make(map[string]entitlement.WelfareGrant),
	}
}

// Import upserts every record of ds atomically.
func (m *Memory) Import(_ context.Context, ds *entitlement.Dataset) error {
	if ds == nil {
		return nil
	}
	ds = ds.Clone()

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, b := range ds.Branches {
		m.branches[b.ID] = b
	}
	for _, e := range ds.Employees {
		m.employees[e.ID] = e
	}
	for _, u := range ds.Users {
		m.users[u.ID] = u
	}
	for _, r := range ds.Requests {
		m.requests[r.ID] = r
	}
	for _, g := range ds.Grants {
		m.grants[g.ID] = g
	}
	return nil
}

// Dataset returns a copy-on-read snapshot with records in a stable order
// (employees by name, requests and grants by date).
func (m *Memory) Dataset(_ context.Context) (*entitlement.Dataset, error) {
	m.mu.RLock()
	ds := &entitlement.Dataset{}
	for _, b := range m.branches {
		ds.Branches = append(ds.Branches, b)
	}
	for _, e := range m.employees {
		ds.Employees = append(ds.Employees, e)
	}
	for _, u := range m.users {
		ds.Users = append(ds.Users, u)
	}
	for _, r := range m.requests {
		ds.Requests = append(ds.Requests, r)
	}
	for _, g := range m.grants {
		ds.Grants = append(ds.Grants, g)
	}
	m.mu.RUnlock()

	// maps hold values, but hire/expiry dates are pointers
	return sortDataset(ds).Clone(), nil
}

// EmployeeDataset returns the employee, every branch and user, and the
// requests and grants filed under the employee's identities.
func (m *Memory) EmployeeDataset(_ context.Context, employeeID string) (*entitlement.Dataset, error) {
	m.mu.RLock()
	emp, ok := m.employees[employeeID]
	if !ok {
		m.mu.RUnlock()
		return nil, fmt.Errorf("employee %s: %w", employeeID, generic.ErrEntityNotFound)
	}
	ds := &entitlement.Dataset{Employees: []entitlement.Employee{emp}}
	for _, b := range m.branches {
		ds.Branches = append(ds.Branches, b)
	}
	for _, u := range m.users {
		ds.Users = append(ds.Users, u)
	}
	ids := entitlement.IdentitiesFor(emp, ds.Users)
	for _, r := range m.requests {
		if ids.Contains(r.EmployeeRef) {
			ds.Requests = append(ds.Requests, r)
		}
	}
	for _, g := range m.grants {
		if g.EmployeeID == emp.ID {
			ds.Grants = append(ds.Grants, g)
		}
	}
	m.mu.RUnlock()

	return sortDataset(ds).Clone(), nil
}

func sortDataset(ds *entitlement.Dataset) *entitlement.Dataset {
	sort.Slice(ds.Branches, func(i, j int) bool { return ds.Branches[i].ID < ds.Branches[j].ID })
	sort.Slice(ds.Employees, func(i, j int) bool {
		if ds.Employees[i].Name != ds.Employees[j].Name {
			return ds.Employees[i].Name < ds.Employees[j].Name
		}
		return ds.Employees[i].ID < ds.Employees[j].ID
	})
	sort.Slice(ds.Users, func(i, j int) bool { return ds.Users[i].ID < ds.Users[j].ID })
	sort.Slice(ds.Requests, func(i, j int) bool {
		a, b := ds.Requests[i], ds.Requests[j]
		if !a.StartDate.Equal(b.StartDate) {
			return a.StartDate.Before(b.StartDate)
		}
		return a.ID < b.ID
	})
	sort.Slice(ds.Grants, func(i, j int) bool {
		a, b := ds.Grants[i], ds.Grants[j]
		if !a.EffectiveDate.Equal(b.EffectiveDate) {
			return a.EffectiveDate.Before(b.EffectiveDate)
		}
		return a.ID < b.ID
	})
	return ds
}

// Reset clears all records.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.branches)
	clear(m.employees)
	clear(m.users)
	clear(m.requests)
	clear(m.grants)
	return nil
}
