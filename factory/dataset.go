/*
Package factory converts JSON record sets into entitlement datasets.

PURPOSE:
  The leave records are kept by the surrounding application in a camelCase
  JSON shape. The factory parses that shape into entitlement.Dataset values
  (and back), validating dates and applying the record-level conventions:
    - hire date is "hireDate", falling back to the older "joinDate"
    - branch standard lives in "leaveCalculationStandard"
    - "reasonType" is kept as recorded; half_morning / half_afternoon also
      marks a half-day
    - identifiers may be strings or numbers (timestamps)
    - requests and grants without an id receive a generated UUID

JSON SCHEMA:
  {
    "branches":  [{"id": "b-1", "name": "Seoul", "leaveCalculationStandard": "fiscal_year"}],
    "employees": [{"id": "e-1", "name": "Kim", "email": "kim@x", "branch": "Seoul",
                   "department": "Sales", "hireDate": "2023-07-10"}],
    "users":     [{"id": "u-1", "email": "kim@x"}],
    "leaveRequests": [{"id": 1718000000000, "employeeId": "u-1", "leaveType": "vacation",
                       "reasonType": "half_morning", "type": "반차",
                       "startDate": "2024-03-04", "endDate": "2024-03-04",
                       "days": 0.5, "status": "approved"}],
    "welfareLeaveGrants": [{"id": "g-1", "employeeId": "e-1", "grantedDays": 3,
                            "effectiveDate": "2024-01-01", "expiryDate": "2024-12-31"}]
  }

USAGE:
  f := factory.NewDatasetFactory()
  ds, err := f.ParseDataset(data)
  engine := entitlement.NewEngine(ds)

SEE ALSO:
  - entitlement/types.go: record types
  - store/sqlite: persists parsed datasets
*/
package factory

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/offday/leave-engine/entitlement"
	"github.com/offday/leave-engine/generic"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// DatasetJSON is the JSON representation of a record set.
type DatasetJSON struct {
	Branches      []BranchJSON       `json:"branches"`
	Employees     []EmployeeJSON     `json:"employees"`
	Users         []UserJSON         `json:"users,omitempty"`
	LeaveRequests []LeaveRequestJSON `json:"leaveRequests"`
	WelfareGrants []WelfareGrantJSON `json:"welfareLeaveGrants,omitempty"`
}

type BranchJSON struct {
	ID                       FlexID `json:"id"`
	Name                     string `json:"name"`
	LeaveCalculationStandard string `json:"leaveCalculationStandard,omitempty"`
}

type EmployeeJSON struct {
	ID         FlexID `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Branch     string `json:"branch,omitempty"`
	Department string `json:"department,omitempty"`
	HireDate   string `json:"hireDate,omitempty"`
	JoinDate   string `json:"joinDate,omitempty"` // legacy alias
}

type UserJSON struct {
	ID    FlexID `json:"id"`
	Email string `json:"email"`
}

type LeaveRequestJSON struct {
	ID         FlexID  `json:"id"`
	EmployeeID FlexID  `json:"employeeId"`
	LeaveType  string  `json:"leaveType,omitempty"`
	ReasonType string  `json:"reasonType,omitempty"`
	Type       string  `json:"type,omitempty"`
	StartDate  string  `json:"startDate"`
	EndDate    string  `json:"endDate"`
	Days       float64 `json:"days"`
	Status     string  `json:"status"`
	Reason     string  `json:"reason,omitempty"`
}

type WelfareGrantJSON struct {
	ID            FlexID  `json:"id"`
	EmployeeID    FlexID  `json:"employeeId"`
	GrantedDays   float64 `json:"grantedDays"`
	EffectiveDate string  `json:"effectiveDate"`
	ExpiryDate    string  `json:"expiryDate,omitempty"`
	GrantedDate   string  `json:"grantedDate,omitempty"`
	GrantedBy     string  `json:"grantedBy,omitempty"`
	Reason        string  `json:"reason,omitempty"`
}

// FlexID accepts identifiers written as JSON strings or numbers.
type FlexID string

func (id *FlexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = FlexID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = FlexID(n.String())
	return nil
}

// reason types that mark half-day requests
const (
	reasonHalfMorning   = "half_morning"
	reasonHalfAfternoon = "half_afternoon"
)

// =============================================================================
// DATASET FACTORY
// =============================================================================

// DatasetFactory converts JSON record sets to entitlement datasets.
type DatasetFactory struct {
	newID func() string
}

// NewDatasetFactory creates a factory that assigns UUIDs to records lacking an id.
func NewDatasetFactory() *DatasetFactory {
	return &DatasetFactory{newID: uuid.NewString}
}

// ParseDataset parses a JSON document.
func (f *DatasetFactory) ParseDataset(data []byte) (*entitlement.Dataset, error) {
	var doc DatasetJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", generic.ErrInvalidRecord, err)
	}
	return f.FromJSON(doc)
}

// Decode reads one JSON document from r.
func (f *DatasetFactory) Decode(r io.Reader) (*entitlement.Dataset, error) {
	var doc DatasetJSON
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", generic.ErrInvalidRecord, err)
	}
	return f.FromJSON(doc)
}

// FromJSON validates and converts a decoded document. All record errors are
// reported together.
func (f *DatasetFactory) FromJSON(doc DatasetJSON) (*entitlement.Dataset, error) {
	ds := &entitlement.Dataset{}
	var errs []error

	for _, b := range doc.Branches {
		ds.Branches = append(ds.Branches, entitlement.Branch{
			ID:              string(b.ID),
			Name:            strings.TrimSpace(b.Name),
			AccrualStandard: entitlement.AccrualStandard(strings.ToLower(strings.TrimSpace(b.LeaveCalculationStandard))),
		})
	}

	for _, e := range doc.Employees {
		emp, err := f.employee(e)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		ds.Employees = append(ds.Employees, emp)
	}

	for _, u := range doc.Users {
		ds.Users = append(ds.Users, entitlement.User{ID: string(u.ID), Email: strings.TrimSpace(u.Email)})
	}

	for _, r := range doc.LeaveRequests {
		req, err := f.request(r)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		ds.Requests = append(ds.Requests, req)
	}

	for _, g := range doc.WelfareGrants {
		grant, err := f.grant(g)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		ds.Grants = append(ds.Grants, grant)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return ds, nil
}

func (f *DatasetFactory) employee(e EmployeeJSON) (entitlement.Employee, error) {
	if e.ID == "" {
		return entitlement.Employee{}, &generic.RecordError{Kind: "employee", ID: e.Name, Field: "id", Err: errors.New("required")}
	}
	emp := entitlement.Employee{
		ID:         string(e.ID),
		Name:       e.Name,
		Email:      strings.TrimSpace(e.Email),
		Branch:     strings.TrimSpace(e.Branch),
		Department: strings.TrimSpace(e.Department),
	}

	raw, field := e.HireDate, "hireDate"
	if strings.TrimSpace(raw) == "" {
		raw, field = e.JoinDate, "joinDate"
	}
	hire, err := parseOptionalDate(raw)
	if err != nil {
		return entitlement.Employee{}, &generic.RecordError{Kind: "employee", ID: emp.ID, Field: field, Err: err}
	}
	emp.HireDate = hire
	return emp, nil
}

func (f *DatasetFactory) request(r LeaveRequestJSON) (entitlement.LeaveRequest, error) {
	id := string(r.ID)
	if id == "" {
		id = f.newID()
	}
	if r.EmployeeID == "" {
		return entitlement.LeaveRequest{}, &generic.RecordError{Kind: "request", ID: id, Field: "employeeId", Err: errors.New("required")}
	}
	start, err := parseDate(r.StartDate)
	if err != nil {
		return entitlement.LeaveRequest{}, &generic.RecordError{Kind: "request", ID: id, Field: "startDate", Err: err}
	}
	end, err := parseDate(r.EndDate)
	if err != nil {
		return entitlement.LeaveRequest{}, &generic.RecordError{Kind: "request", ID: id, Field: "endDate", Err: err}
	}

	// reversed ranges are kept; the engine skips and counts them
	return entitlement.LeaveRequest{
		ID:          id,
		EmployeeRef: string(r.EmployeeID),
		StartDate:   start,
		EndDate:     end,
		Days:        generic.Amount{Value: decimal.NewFromFloat(r.Days), Unit: generic.UnitDays},
		LeaveType:   strings.TrimSpace(r.LeaveType),
		Type:        strings.TrimSpace(r.Type),
		ReasonType:  strings.TrimSpace(r.ReasonType),
		HalfDay:     halfDayFromReason(r.ReasonType),
		Status:      entitlement.RequestStatus(strings.ToLower(strings.TrimSpace(r.Status))),
		Reason:      r.Reason,
	}, nil
}

func (f *DatasetFactory) grant(g WelfareGrantJSON) (entitlement.WelfareGrant, error) {
	id := string(g.ID)
	if id == "" {
		id = f.newID()
	}
	if g.EmployeeID == "" {
		return entitlement.WelfareGrant{}, &generic.RecordError{Kind: "grant", ID: id, Field: "employeeId", Err: errors.New("required")}
	}
	if g.GrantedDays <= 0 {
		return entitlement.WelfareGrant{}, &generic.RecordError{Kind: "grant", ID: id, Field: "grantedDays", Err: fmt.Errorf("must be positive, got %v", g.GrantedDays)}
	}
	effective, err := parseDate(g.EffectiveDate)
	if err != nil {
		return entitlement.WelfareGrant{}, &generic.RecordError{Kind: "grant", ID: id, Field: "effectiveDate", Err: err}
	}
	expiry, err := parseOptionalDate(g.ExpiryDate)
	if err != nil {
		return entitlement.WelfareGrant{}, &generic.RecordError{Kind: "grant", ID: id, Field: "expiryDate", Err: err}
	}
	if expiry != nil && expiry.Before(effective) {
		return entitlement.WelfareGrant{}, &generic.RecordError{Kind: "grant", ID: id, Field: "expiryDate", Err: generic.ErrInvalidPeriod}
	}
	granted := effective
	if d, err := parseOptionalDate(g.GrantedDate); err == nil && d != nil {
		granted = *d
	}

	return entitlement.WelfareGrant{
		ID:            id,
		EmployeeID:    string(g.EmployeeID),
		GrantedDays:   generic.Amount{Value: decimal.NewFromFloat(g.GrantedDays), Unit: generic.UnitDays},
		EffectiveDate: effective,
		ExpiryDate:    expiry,
		GrantedDate:   granted,
		GrantedBy:     g.GrantedBy,
		Reason:        g.Reason,
	}, nil
}

// =============================================================================
// ENCODING
// =============================================================================

// ToJSON converts a dataset back to the record shape.
func (f *DatasetFactory) ToJSON(ds *entitlement.Dataset) DatasetJSON {
	doc := DatasetJSON{
		Branches:      []BranchJSON{},
		Employees:     []EmployeeJSON{},
		LeaveRequests: []LeaveRequestJSON{},
	}
	for _, b := range ds.Branches {
		doc.Branches = append(doc.Branches, BranchJSON{ID: FlexID(b.ID), Name: b.Name, LeaveCalculationStandard: string(b.AccrualStandard)})
	}
	for _, e := range ds.Employees {
		ej := EmployeeJSON{ID: FlexID(e.ID), Name: e.Name, Email: e.Email, Branch: e.Branch, Department: e.Department}
		if e.HireDate != nil {
			ej.HireDate = e.HireDate.String()
		}
		doc.Employees = append(doc.Employees, ej)
	}
	for _, u := range ds.Users {
		doc.Users = append(doc.Users, UserJSON{ID: FlexID(u.ID), Email: u.Email})
	}
	for _, r := range ds.Requests {
		doc.LeaveRequests = append(doc.LeaveRequests, LeaveRequestJSON{
			ID:         FlexID(r.ID),
			EmployeeID: FlexID(r.EmployeeRef),
			LeaveType:  r.LeaveType,
			ReasonType: reasonTypeOf(r),
			Type:       r.Type,
			StartDate:  r.StartDate.String(),
			EndDate:    r.EndDate.String(),
			Days:       r.Days.Float64(),
			Status:     string(r.Status),
			Reason:     r.Reason,
		})
	}
	for _, g := range ds.Grants {
		gj := WelfareGrantJSON{
			ID:            FlexID(g.ID),
			EmployeeID:    FlexID(g.EmployeeID),
			GrantedDays:   g.GrantedDays.Float64(),
			EffectiveDate: g.EffectiveDate.String(),
			GrantedBy:     g.GrantedBy,
			Reason:        g.Reason,
		}
		if g.ExpiryDate != nil {
			gj.ExpiryDate = g.ExpiryDate.String()
		}
		if !g.GrantedDate.IsZero() {
			gj.GrantedDate = g.GrantedDate.String()
		}
		doc.WelfareGrants = append(doc.WelfareGrants, gj)
	}
	return doc
}

// MarshalDataset encodes ds as indented JSON.
func (f *DatasetFactory) MarshalDataset(ds *entitlement.Dataset) ([]byte, error) {
	return json.MarshalIndent(f.ToJSON(ds), "", "  ")
}

// =============================================================================
// HELPERS
// =============================================================================

// parseDate accepts YYYY-MM-DD and ISO timestamps (the date part is kept).
func parseDate(s string) (generic.TimePoint, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(generic.DateLayout) && s[len(generic.DateLayout)] == 'T' {
		s = s[:len(generic.DateLayout)]
	}
	return generic.ParseDate(s)
}

func parseOptionalDate(s string) (*generic.TimePoint, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	tp, err := parseDate(s)
	if err != nil {
		return nil, err
	}
	return &tp, nil
}

func halfDayFromReason(reason string) entitlement.HalfDayPart {
	switch strings.ToLower(strings.TrimSpace(reason)) {
	case reasonHalfMorning:
		return entitlement.HalfDayMorning
	case reasonHalfAfternoon:
		return entitlement.HalfDayAfternoon
	default:
		return entitlement.HalfDayNone
	}
}

// reasonTypeOf keeps the recorded reason type, deriving one from the half-day
// tag for requests built without it.
func reasonTypeOf(r entitlement.LeaveRequest) string {
	if r.ReasonType != "" {
		return r.ReasonType
	}
	switch r.HalfDay {
	case entitlement.HalfDayMorning:
		return reasonHalfMorning
	case entitlement.HalfDayAfternoon:
		return reasonHalfAfternoon
	default:
		return ""
	}
}
