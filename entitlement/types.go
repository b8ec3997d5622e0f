// Package entitlement implements the leave entitlement and ledger engine.
// It computes statutory days earned under a branch's accrual standard, usage
// from the leave-request log, and the welfare-grant ledger with expiry.
package entitlement

import (
	"errors"
	"strings"

	"github.com/offday/leave-engine/generic"
)

// =============================================================================
// ACCRUAL STANDARD
// =============================================================================

// AccrualStandard selects how statutory leave accrues for a branch.
// The zero value means "unset" and resolves to StandardHireDate.
type AccrualStandard string

const (
	StandardUnset      AccrualStandard = ""
	StandardHireDate   AccrualStandard = "hire_date"
	StandardFiscalYear AccrualStandard = "fiscal_year"
)

// Known reports whether s is one of the declared standards.
func (s AccrualStandard) Known() bool {
	return s == StandardHireDate || s == StandardFiscalYear
}

// =============================================================================
// CATEGORY / STATUS
// =============================================================================

// Category separates statutory annual leave from discretionary welfare leave.
type Category string

const (
	CategoryStatutory Category = "statutory"
	CategoryWelfare   Category = "welfare"
)

// ParseCategory accepts "statutory"/"annual" and "welfare"; anything else is false.
func ParseCategory(s string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "statutory", "annual":
		return CategoryStatutory, true
	case "welfare":
		return CategoryWelfare, true
	default:
		return "", false
	}
}

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

// HalfDayPart tags a request as a morning or afternoon half-day.
type HalfDayPart string

const (
	HalfDayNone      HalfDayPart = ""
	HalfDayMorning   HalfDayPart = "morning"
	HalfDayAfternoon HalfDayPart = "afternoon"
)

// welfarePrefix marks welfare leave types ("welfare-vacation", "welfare-half-morning").
const welfarePrefix = "welfare-"

// halfDayMarkers are legacy type strings that denote a half-day request.
var halfDayMarkers = []string{"half-day", "half_day", "halfday", "반차"}

// =============================================================================
// RECORDS - owned by external collaborators, read-only here
// =============================================================================

// Employee is a directory record. HireDate is nil when unknown.
type Employee struct {
	ID         string
	Name       string
	Email      string
	Branch     string // branch id or branch name
	Department string
	HireDate   *generic.TimePoint
}

// Branch declares the accrual standard for its employees.
type Branch struct {
	ID              string
	Name            string
	AccrualStandard AccrualStandard
}

// User is a login identity. Requests filed under a user id belong to the
// employee sharing the user's email.
type User struct {
	ID    string
	Email string
}

// LeaveRequest is an entry of the leave-request log.
type LeaveRequest struct {
	ID          string
	EmployeeRef string // employee id or linked user id
	StartDate   generic.TimePoint
	EndDate     generic.TimePoint
	Days        generic.Amount
	LeaveType   string // e.g. "vacation", "half-morning", "welfare-vacation"
	Type        string // legacy free-form type, may carry a half-day marker
	ReasonType  string // e.g. "personal", "sick", "family", "half_morning"
	HalfDay     HalfDayPart
	Status      RequestStatus
	Reason      string
}

// Span is the inclusive date range of the request.
func (r LeaveRequest) Span() generic.Period {
	return generic.Period{Start: r.StartDate, End: r.EndDate}
}

// Category derives statutory vs welfare from the leave type.
func (r LeaveRequest) Category() Category {
	if strings.HasPrefix(strings.ToLower(r.LeaveType), welfarePrefix) {
		return CategoryWelfare
	}
	return CategoryStatutory
}

// IsHalfDay reports an explicit morning/afternoon tag or a half-day marker in
// the type strings.
func (r LeaveRequest) IsHalfDay() bool {
	if r.HalfDay == HalfDayMorning || r.HalfDay == HalfDayAfternoon {
		return true
	}
	for _, s := range []string{r.Type, r.LeaveType} {
		if isHalfDayLabel(s) {
			return true
		}
	}
	return false
}

// EffectiveDays is 0.5 for half-days, otherwise the stored day count
// (negative counts are treated as zero).
func (r LeaveRequest) EffectiveDays() generic.Amount {
	if r.IsHalfDay() {
		return generic.HalfDay()
	}
	return generic.Amount{Value: r.Days.Value, Unit: generic.UnitDays}.FloorZero()
}

func isHalfDayLabel(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return false
	}
	for _, m := range halfDayMarkers {
		if s == m {
			return true
		}
	}
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '_' }) {
		if part == "half" {
			return true
		}
	}
	return false
}

// WelfareGrant is an immutable allocation of welfare leave with its own window.
// ExpiryDate nil means the grant never expires.
type WelfareGrant struct {
	ID            string
	EmployeeID    string
	GrantedDays   generic.Amount
	EffectiveDate generic.TimePoint
	ExpiryDate    *generic.TimePoint
	GrantedDate   generic.TimePoint // audit only
	GrantedBy     string
	Reason        string
}

// Window is [EffectiveDate, ExpiryDate]; open-ended grants report ok=false.
func (g WelfareGrant) Window() (generic.Period, bool) {
	if g.ExpiryDate == nil {
		return generic.Period{}, false
	}
	return generic.Period{Start: g.EffectiveDate, End: *g.ExpiryDate}, true
}

// ExpiredAt reports whether the grant's expiry is strictly before asOf.
func (g WelfareGrant) ExpiredAt(asOf generic.TimePoint) bool {
	return g.ExpiryDate != nil && g.ExpiryDate.Before(asOf)
}

// =============================================================================
// OUTPUT FIGURES
// =============================================================================

// Diagnostics counts records skipped for data-quality reasons. Samples keeps
// the first few errors for logging.
type Diagnostics struct {
	InvalidRange int
	Unmatched    int
	Samples      []error
}

const maxDiagnosticSamples = 5

func (d *Diagnostics) record(err error) {
	switch {
	case errors.Is(err, generic.ErrInvalidDateRange):
		d.InvalidRange++
	case errors.Is(err, generic.ErrUnmatchedIdentifier):
		d.Unmatched++
	}
	if len(d.Samples) < maxDiagnosticSamples {
		d.Samples = append(d.Samples, err)
	}
}

// Merge adds other's counts into d.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.InvalidRange += other.InvalidRange
	d.Unmatched += other.Unmatched
	for _, s := range other.Samples {
		if len(d.Samples) >= maxDiagnosticSamples {
			break
		}
		d.Samples = append(d.Samples, s)
	}
}

// Empty reports whether nothing was skipped.
func (d Diagnostics) Empty() bool {
	return d.InvalidRange == 0 && d.Unmatched == 0
}

// EntitlementSnapshot is the statutory picture for one employee as of a date,
// together with the welfare ledger.
type EntitlementSnapshot struct {
	EmployeeID string
	AsOf       generic.TimePoint
	Standard   AccrualStandard
	Earned     generic.Amount
	Used       generic.Amount
	Pending    generic.Amount
	Remaining  generic.Amount
	Welfare    WelfareSnapshot
}
