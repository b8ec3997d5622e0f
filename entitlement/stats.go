/*
stats.go - Organization-wide statistics

PURPOSE:
  Aggregates across every employee of a dataset for dashboards and exports:
    Overview         head count, total earned, statutory days used, usage rate
    MonthlyStats     approved days and request count per start month
    DepartmentStats  per-department earned / used / remaining

FILTERS:
  Branch and department compare trimmed and case-insensitive; empty means all.
  Requests whose reference matches no employee are counted as unmatched and
  only included when neither branch nor department is filtered.

SEE ALSO:
  - identity.go: OwnerIndex
  - report/: CSV, XLSX exports of MonthlyStats
*/
package entitlement

import (
	"math"
	"sort"
	"strings"

	"github.com/offday/leave-engine/generic"
)

// StatsFilter narrows statistics. Zero value selects everything.
type StatsFilter struct {
	Branch     string
	Department string
	From       *generic.TimePoint // on request start date, inclusive
	To         *generic.TimePoint
}

func (f StatsFilter) scoped() bool {
	return strings.TrimSpace(f.Branch) != "" || strings.TrimSpace(f.Department) != ""
}

// OverviewStats is the dashboard headline.
type OverviewStats struct {
	AsOf        generic.TimePoint
	Employees   int
	TotalEarned generic.Amount
	TotalUsed   generic.Amount
	UsageRate   int // percent of earned used, rounded
}

// MonthStat is one month of MonthlyStats.
type MonthStat struct {
	Days  generic.Amount
	Count int
}

// LeavePatterns counts requests by shape.
type LeavePatterns struct {
	SingleDay int
	MultiDay  int
	Pending   int
	Approved  int
}

// MonthlyStats attributes approved requests to their start month.
type MonthlyStats struct {
	Year        int
	Filter      StatsFilter
	Months      [12]MonthStat
	Patterns    LeavePatterns
	Diagnostics Diagnostics
}

// TotalDays sums the twelve months.
func (s MonthlyStats) TotalDays() generic.Amount {
	total := generic.ZeroDays()
	for _, m := range s.Months {
		total = total.Add(m.Days)
	}
	return total
}

// DepartmentStat is one row of DepartmentStats.
type DepartmentStat struct {
	Department string
	Employees  int
	Earned     generic.Amount
	Used       generic.Amount
	Pending    int // pending request count
	Remaining  generic.Amount
}

// =============================================================================
// OVERVIEW
// =============================================================================

// Overview sums earned and statutory usage for asOf's year across the
// employees matching the filter.
func (e *Engine) Overview(asOf generic.TimePoint, filter StatsFilter) OverviewStats {
	out := OverviewStats{AsOf: asOf, TotalEarned: generic.ZeroDays(), TotalUsed: generic.ZeroDays()}
	year := generic.YearPeriod(asOf.Year())

	for _, emp := range e.data.Employees {
		if !e.matchesEmployee(emp, filter) {
			continue
		}
		out.Employees++
		out.TotalEarned = out.TotalEarned.Add(e.resolver.Resolve(emp).Earned(asOf))
		usage := Summarize(e.data.Requests, e.identities(emp), year, CategoryStatutory)
		out.TotalUsed = out.TotalUsed.Add(usage.Used)
	}

	if out.TotalEarned.IsPositive() {
		rate := out.TotalUsed.Value.Div(out.TotalEarned.Value).InexactFloat64() * 100
		out.UsageRate = int(math.Round(rate))
	}
	return out
}

// =============================================================================
// MONTHLY
// =============================================================================

// MonthlyStats attributes each approved request starting in year to its
// start month.
func (e *Engine) MonthlyStats(year int, filter StatsFilter) MonthlyStats {
	out := MonthlyStats{Year: year, Filter: filter}
	for i := range out.Months {
		out.Months[i].Days = generic.ZeroDays()
	}

	owners := NewOwnerIndex(e.data.Employees, e.data.Users)
	for _, r := range e.data.Requests {
		if r.StartDate.Year() != year || !filter.inRange(r.StartDate) {
			continue
		}
		if err := validateSpan(r); err != nil {
			out.Diagnostics.record(err)
			continue
		}

		ownerID, ok := owners.Owner(r.EmployeeRef)
		if ok {
			emp, _ := e.data.Employee(ownerID)
			if !e.matchesEmployee(emp, filter) {
				continue
			}
		} else {
			out.Diagnostics.record(&generic.UnmatchedRequestError{RequestID: r.ID, EmployeeRef: r.EmployeeRef})
			if filter.scoped() {
				continue
			}
		}

		switch r.Status {
		case StatusPending:
			out.Patterns.Pending++
		case StatusApproved:
			out.Patterns.Approved++
			days := r.EffectiveDays()
			if days.GreaterThan(generic.Days(1)) {
				out.Patterns.MultiDay++
			} else if days.Equal(generic.Days(1)) {
				out.Patterns.SingleDay++
			}
			m := &out.Months[r.StartDate.Month()-1]
			m.Days = m.Days.Add(days)
			m.Count++
		}
	}

	if !out.Diagnostics.Empty() {
		e.logger.Warn("records skipped", "op", "monthly_stats", "year", year,
			"invalid_range", out.Diagnostics.InvalidRange, "unmatched", out.Diagnostics.Unmatched)
	}
	return out
}

// =============================================================================
// DEPARTMENTS
// =============================================================================

// DepartmentStats groups employees by department, sorted by name. Usage is
// statutory approved days in year.
func (e *Engine) DepartmentStats(year int, asOf generic.TimePoint) []DepartmentStat {
	byDept := map[string]*DepartmentStat{}
	period := generic.YearPeriod(year)

	for _, emp := range e.data.Employees {
		name := strings.TrimSpace(emp.Department)
		if name == "" {
			name = "unassigned"
		}
		row, ok := byDept[strings.ToLower(name)]
		if !ok {
			row = &DepartmentStat{Department: name, Earned: generic.ZeroDays(), Used: generic.ZeroDays(), Remaining: generic.ZeroDays()}
			byDept[strings.ToLower(name)] = row
		}

		ids := e.identities(emp)
		earned := e.resolver.Resolve(emp).Earned(asOf)
		usage := Summarize(e.data.Requests, ids, period, CategoryStatutory)

		row.Employees++
		row.Earned = row.Earned.Add(earned)
		row.Used = row.Used.Add(usage.Used)
		row.Remaining = row.Remaining.Add(earned.Sub(usage.Used).FloorZero())
		for _, r := range e.data.Requests {
			if r.Status == StatusPending && ids.Contains(r.EmployeeRef) && period.Contains(r.StartDate) {
				row.Pending++
			}
		}
	}

	out := make([]DepartmentStat, 0, len(byDept))
	for _, row := range byDept {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Department < out[j].Department })
	return out
}

// =============================================================================
// HELPERS
// =============================================================================

// matchesEmployee compares the filter with the employee's branch reference
// and, when it resolves, the branch name.
func (e *Engine) matchesEmployee(emp Employee, f StatsFilter) bool {
	if d := strings.TrimSpace(f.Department); d != "" && !sameName(emp.Department, d) {
		return false
	}
	b := strings.TrimSpace(f.Branch)
	if b == "" {
		return true
	}
	if sameName(emp.Branch, b) {
		return true
	}
	if branch, ok := e.data.Branch(emp.Branch); ok {
		return sameName(branch.Name, b) || branch.ID == b
	}
	return false
}

func (f StatsFilter) inRange(t generic.TimePoint) bool {
	if f.From != nil && t.Before(*f.From) {
		return false
	}
	if f.To != nil && t.After(*f.To) {
		return false
	}
	return true
}
