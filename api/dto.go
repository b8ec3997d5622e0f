/*
dto.go - Data Transfer Objects for API responses

PURPOSE:
  JSON shapes of the HTTP surface. Engine types carry decimals and
  TimePoints; the DTOs flatten them to float days and ISO dates so
  clients never see the internal model.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Response: Wrappers with metadata (import counts, errors)

SEE ALSO:
  - handlers.go: Uses these types
  - entitlement/: Source types
*/
package api

import (
	"github.com/offday/leave-engine/entitlement"
	"github.com/offday/leave-engine/generic"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO is one row of the employee list.
type EmployeeDTO struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Email           string  `json:"email,omitempty"`
	Branch          string  `json:"branch,omitempty"`
	Department      string  `json:"department,omitempty"`
	HireDate        string  `json:"hire_date,omitempty"`
	AccrualStandard string  `json:"accrual_standard"`
	Earned          float64 `json:"earned"`
	Remaining       float64 `json:"remaining"`
}

// AccrualStandardDTO explains how the accrual standard was chosen.
type AccrualStandardDTO struct {
	EmployeeID string `json:"employee_id"`
	Standard   string `json:"standard"`
	Branch     string `json:"branch,omitempty"`
	Defaulted  bool   `json:"defaulted"`
	Reason     string `json:"reason,omitempty"`
}

// EarnedDTO is the statutory entitlement as of a date.
type EarnedDTO struct {
	EmployeeID string  `json:"employee_id"`
	AsOf       string  `json:"as_of"`
	Standard   string  `json:"standard"`
	Earned     float64 `json:"earned"`
}

// SnapshotDTO is the combined entitlement picture.
type SnapshotDTO struct {
	EmployeeID string     `json:"employee_id"`
	AsOf       string     `json:"as_of"`
	Standard   string     `json:"standard"`
	Earned     float64    `json:"earned"`
	Used       float64    `json:"used"`
	Pending    float64    `json:"pending"`
	Remaining  float64    `json:"remaining"`
	Welfare    WelfareDTO `json:"welfare"`
}

// =============================================================================
// USAGE
// =============================================================================

// DiagnosticsDTO reports records the engine skipped.
type DiagnosticsDTO struct {
	InvalidRange int      `json:"invalid_range"`
	Unmatched    int      `json:"unmatched"`
	Samples      []string `json:"samples,omitempty"`
}

// UsageDTO is a usage summary over a period.
type UsageDTO struct {
	EmployeeID  string         `json:"employee_id"`
	Category    string         `json:"category"`
	From        string         `json:"from"`
	To          string         `json:"to"`
	Used        float64        `json:"used"`
	Pending     float64        `json:"pending"`
	Requests    int            `json:"requests"`
	Diagnostics DiagnosticsDTO `json:"diagnostics"`
}

// MonthlyBreakdownDTO lists approved days per calendar month.
type MonthlyBreakdownDTO struct {
	EmployeeID  string         `json:"employee_id"`
	Year        int            `json:"year"`
	Category    string         `json:"category"`
	Months      []float64      `json:"months"`
	Total       float64        `json:"total"`
	Diagnostics DiagnosticsDTO `json:"diagnostics"`
}

// UsageKindDTO is one reason bucket of a usage pattern.
type UsageKindDTO struct {
	Kind    string  `json:"kind"`
	Days    float64 `json:"days"`
	Percent int     `json:"percent"`
}

// UsagePatternDTO breaks a year's approved leave down by reason.
type UsagePatternDTO struct {
	EmployeeID  string         `json:"employee_id"`
	Year        int            `json:"year"`
	Kinds       []UsageKindDTO `json:"kinds"`
	Total       float64        `json:"total"`
	Requests    int            `json:"requests"`
	Diagnostics DiagnosticsDTO `json:"diagnostics"`
}

// =============================================================================
// WELFARE
// =============================================================================

// GrantDTO is one grant's line in the welfare ledger.
type GrantDTO struct {
	ID            string  `json:"id"`
	GrantedDays   float64 `json:"granted_days"`
	EffectiveDate string  `json:"effective_date"`
	ExpiryDate    string  `json:"expiry_date,omitempty"`
	Status        string  `json:"status"`
	Consumed      float64 `json:"consumed"`
	Expired       float64 `json:"expired"`
	Reason        string  `json:"reason,omitempty"`
}

// WelfareDTO is the welfare ledger.
type WelfareDTO struct {
	AsOf         string     `json:"as_of"`
	TotalGranted float64    `json:"total_granted"`
	Used         float64    `json:"used"`
	UsedThisYear float64    `json:"used_this_year"`
	Scheduled    float64    `json:"scheduled"`
	Pending      float64    `json:"pending"`
	Expired      float64    `json:"expired"`
	Remaining    float64    `json:"remaining"`
	Overdrawn    float64    `json:"overdrawn,omitempty"`
	Grants       []GrantDTO `json:"grants"`
}

// =============================================================================
// STATISTICS
// =============================================================================

// OverviewDTO is the dashboard headline.
type OverviewDTO struct {
	AsOf        string  `json:"as_of"`
	Employees   int     `json:"employees"`
	TotalEarned float64 `json:"total_earned"`
	TotalUsed   float64 `json:"total_used"`
	UsageRate   int     `json:"usage_rate"`
}

// MonthStatDTO is one month of organization statistics.
type MonthStatDTO struct {
	Month int     `json:"month"`
	Days  float64 `json:"days"`
	Count int     `json:"count"`
}

// PatternsDTO counts requests by shape.
type PatternsDTO struct {
	SingleDay int `json:"single_day"`
	MultiDay  int `json:"multi_day"`
	Pending   int `json:"pending"`
	Approved  int `json:"approved"`
}

// MonthlyStatsDTO is the organization's month-by-month usage.
type MonthlyStatsDTO struct {
	Year        int            `json:"year"`
	Months      []MonthStatDTO `json:"months"`
	TotalDays   float64        `json:"total_days"`
	Patterns    PatternsDTO    `json:"patterns"`
	Diagnostics DiagnosticsDTO `json:"diagnostics"`
}

// DepartmentDTO is one department's totals.
type DepartmentDTO struct {
	Department string  `json:"department"`
	Employees  int     `json:"employees"`
	Earned     float64 `json:"earned"`
	Used       float64 `json:"used"`
	Pending    int     `json:"pending"`
	Remaining  float64 `json:"remaining"`
}

// =============================================================================
// IMPORT / ERRORS
// =============================================================================

// ImportResponse reports how many records were loaded.
type ImportResponse struct {
	Branches  int `json:"branches"`
	Employees int `json:"employees"`
	Users     int `json:"users"`
	Requests  int `json:"requests"`
	Grants    int `json:"grants"`
}

// ErrorResponse is the JSON body of every error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func optionalDate(tp *generic.TimePoint) string {
	if tp == nil {
		return ""
	}
	return tp.String()
}

func toDiagnosticsDTO(d entitlement.Diagnostics) DiagnosticsDTO {
	out := DiagnosticsDTO{InvalidRange: d.InvalidRange, Unmatched: d.Unmatched}
	for _, err := range d.Samples {
		out.Samples = append(out.Samples, err.Error())
	}
	return out
}

func toWelfareDTO(w entitlement.WelfareSnapshot) WelfareDTO {
	out := WelfareDTO{
		AsOf:         w.AsOf.String(),
		TotalGranted: w.TotalGranted.Float64(),
		Used:         w.Used.Float64(),
		UsedThisYear: w.UsedThisYear.Float64(),
		Scheduled:    w.Scheduled.Float64(),
		Pending:      w.Pending.Float64(),
		Expired:      w.Expired.Float64(),
		Remaining:    w.Remaining.Float64(),
		Overdrawn:    w.Overdrawn.Float64(),
		Grants:       make([]GrantDTO, 0, len(w.Grants)),
	}
	for _, g := range w.Grants {
		out.Grants = append(out.Grants, GrantDTO{
			ID:            g.Grant.ID,
			GrantedDays:   g.Grant.GrantedDays.Float64(),
			EffectiveDate: g.Grant.EffectiveDate.String(),
			ExpiryDate:    optionalDate(g.Grant.ExpiryDate),
			Status:        string(g.Status),
			Consumed:      g.Consumed.Float64(),
			Expired:       g.Expired.Float64(),
			Reason:        g.Grant.Reason,
		})
	}
	return out
}

func toSnapshotDTO(s entitlement.EntitlementSnapshot) SnapshotDTO {
	return SnapshotDTO{
		EmployeeID: s.EmployeeID,
		AsOf:       s.AsOf.String(),
		Standard:   string(s.Standard),
		Earned:     s.Earned.Float64(),
		Used:       s.Used.Float64(),
		Pending:    s.Pending.Float64(),
		Remaining:  s.Remaining.Float64(),
		Welfare:    toWelfareDTO(s.Welfare),
	}
}

func toUsagePatternDTO(employeeID string, p entitlement.UsagePattern) UsagePatternDTO {
	out := UsagePatternDTO{
		EmployeeID:  employeeID,
		Year:        p.Year,
		Kinds:       make([]UsageKindDTO, 0, len(entitlement.UsageKinds)),
		Total:       p.Total.Float64(),
		Requests:    p.Requests,
		Diagnostics: toDiagnosticsDTO(p.Diagnostics),
	}
	for _, k := range entitlement.UsageKinds {
		out.Kinds = append(out.Kinds, UsageKindDTO{Kind: string(k), Days: p.Days[k].Float64(), Percent: p.Share(k)})
	}
	return out
}

func toMonthlyStatsDTO(s entitlement.MonthlyStats) MonthlyStatsDTO {
	out := MonthlyStatsDTO{
		Year:      s.Year,
		Months:    make([]MonthStatDTO, 12),
		TotalDays: s.TotalDays().Float64(),
		Patterns: PatternsDTO{
			SingleDay: s.Patterns.SingleDay,
			MultiDay:  s.Patterns.MultiDay,
			Pending:   s.Patterns.Pending,
			Approved:  s.Patterns.Approved,
		},
		Diagnostics: toDiagnosticsDTO(s.Diagnostics),
	}
	for i, m := range s.Months {
		out.Months[i] = MonthStatDTO{Month: i + 1, Days: m.Days.Float64(), Count: m.Count}
	}
	return out
}
