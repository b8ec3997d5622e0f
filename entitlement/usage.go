/*
usage.go - Leave usage aggregation

PURPOSE:
  Sums an employee's leave requests over a period. Approved requests count as
  used, pending as pending, rejected as nothing. Half-day requests always
  count 0.5 regardless of their stored day count.

MONTH BUCKETING:
  A multi-day request is apportioned to every month it overlaps by inclusive
  day overlap:
    2024-01-30 .. 2024-02-02  ->  Jan 2, Feb 2

DATA QUALITY:
  Requests whose end precedes their start are skipped and counted in
  Diagnostics.InvalidRange. Nothing here returns an error.

SEE ALSO:
  - identity.go: which references belong to the employee
  - ledger.go: welfare consumption per grant
*/
package entitlement

import (
	"time"

	"github.com/offday/leave-engine/generic"
)

// UsageSummary is the used/pending total for one category over a period.
type UsageSummary struct {
	Category    Category
	Period      generic.Period
	Used        generic.Amount
	Pending     generic.Amount
	Requests    int // approved + pending requests counted
	Diagnostics Diagnostics
}

// MonthlyBreakdown holds approved days per calendar month, January first.
type MonthlyBreakdown struct {
	Year        int
	Category    Category
	Months      [12]generic.Amount
	Diagnostics Diagnostics
}

// Total sums the twelve months.
func (b MonthlyBreakdown) Total() generic.Amount {
	return generic.Sum(b.Months[:]...)
}

// Month returns the amount for m.
func (b MonthlyBreakdown) Month(m time.Month) generic.Amount {
	return b.Months[m-1]
}

// Summarize aggregates the requests owned by ids that overlap period and
// match category.
func Summarize(requests []LeaveRequest, ids IdentitySet, period generic.Period, category Category) UsageSummary {
	sum := UsageSummary{
		Category: category,
		Period:   period,
		Used:     generic.ZeroDays(),
		Pending:  generic.ZeroDays(),
	}
	for _, r := range requests {
		if !ids.Contains(r.EmployeeRef) || r.Category() != category {
			continue
		}
		if err := validateSpan(r); err != nil {
			sum.Diagnostics.record(err)
			continue
		}
		if !r.Span().Overlaps(period) {
			continue
		}
		switch r.Status {
		case StatusApproved:
			sum.Used = sum.Used.Add(r.EffectiveDays())
			sum.Requests++
		case StatusPending:
			sum.Pending = sum.Pending.Add(r.EffectiveDays())
			sum.Requests++
		}
	}
	return sum
}

// Monthly apportions approved requests owned by ids to the months of year.
func Monthly(requests []LeaveRequest, ids IdentitySet, year int, category Category) MonthlyBreakdown {
	out := MonthlyBreakdown{Year: year, Category: category}
	for i := range out.Months {
		out.Months[i] = generic.ZeroDays()
	}
	for _, r := range requests {
		if !ids.Contains(r.EmployeeRef) || r.Category() != category || r.Status != StatusApproved {
			continue
		}
		if err := validateSpan(r); err != nil {
			out.Diagnostics.record(err)
			continue
		}
		addToMonths(&out.Months, r, year)
	}
	return out
}

// addToMonths spreads one approved request over the months of year.
func addToMonths(months *[12]generic.Amount, r LeaveRequest, year int) {
	if r.IsHalfDay() {
		if r.StartDate.Year() == year {
			m := r.StartDate.Month() - 1
			months[m] = months[m].Add(generic.HalfDay())
		}
		return
	}
	span := r.Span()
	if !span.Overlaps(generic.YearPeriod(year)) {
		return
	}
	for m := time.January; m <= time.December; m++ {
		if n := span.OverlapDays(generic.MonthPeriod(year, m)); n > 0 {
			months[m-1] = months[m-1].Add(generic.NewAmountFromInt(n, generic.UnitDays))
		}
	}
}

func validateSpan(r LeaveRequest) error {
	if !r.Span().Valid() {
		return &generic.InvalidDateRangeError{RequestID: r.ID, Range: r.Span()}
	}
	return nil
}
