/*
accrual.go - Statutory accrual calculators

PURPOSE:
  Computes statutory days earned as of a date under the two branch policies.
  Every calculator is a pure function of (hire date, as-of date).

MONTHLY ACCRUAL (first year of service):
  - Nothing before 30 days of tenure
  - +1 day on each monthly anniversary of the hire date (clamped to month end)
  - At most 11 days

HIRE-DATE POLICY:
  - Tenure under 365 days: monthly accrual
  - Otherwise: 15 + floor((completedYears-1)/2), capped at 25
    1-2 years = 15, 3-4 years = 16, 5-6 years = 17, ... 21+ years = 25

FISCAL-YEAR POLICY (calendar year accounting):
  - Hire year: monthly accrual, rounded to 0.5
  - Second calendar year: pro-rated share of 15 for the days worked in the hire
    year, plus the monthly days still owed (cap 11 minus those earned in the
    hire year), rounded to 0.5 once at the end
  - Third year on: 15 + floor((yearDiff-2)/2), additional days capped at 10

EXAMPLE:
  calc := CalculatorFor(StandardFiscalYear)
  days := calc.Earned(MustParseDate("2023-07-10"), MustParseDate("2023-12-31"))
  // 5 (Aug, Sep, Oct, Nov, Dec)

SEE ALSO:
  - generic/time.go: MonthlyStep, CompletedAnniversaryYears
  - policies.go: selects the calculator for an employee's branch
*/
package entitlement

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/offday/leave-engine/generic"
)

const (
	// DefaultAnnualDays is the statutory base entitlement, also used when the
	// hire date is unknown.
	DefaultAnnualDays = 15

	// MaxAnnualDays caps the hire-date policy.
	MaxAnnualDays = 25

	// MaxMonthlyDays caps first-year monthly accrual.
	MaxMonthlyDays = 11

	// MaxFiscalAdditionalDays caps the seniority bonus under the fiscal-year policy.
	MaxFiscalAdditionalDays = 10

	minTenureDaysForMonthly = 30
	daysPerTenureYear       = 365
)

// Calculator computes statutory days earned as of a date.
type Calculator interface {
	Standard() AccrualStandard
	Earned(hire, asOf generic.TimePoint) generic.Amount
}

// CalculatorFor selects the calculator for a standard. Unset and unknown
// standards fall back to the hire-date policy.
func CalculatorFor(standard AccrualStandard) Calculator {
	if standard == StandardFiscalYear {
		return FiscalYearPolicy{}
	}
	return HireDatePolicy{}
}

// =============================================================================
// MONTHLY ACCRUAL
// =============================================================================

// MonthlyAccrual counts completed monthly anniversaries of hire on or before
// asOf, capped at MaxMonthlyDays. Returns 0 under 30 days of tenure.
func MonthlyAccrual(hire, asOf generic.TimePoint) int {
	if generic.DaysBetween(hire, asOf) < minTenureDaysForMonthly {
		return 0
	}
	return countMonthlySteps(hire, asOf, MaxMonthlyDays)
}

// countMonthlySteps counts k >= 1 with MonthlyStep(origin, k) <= until, up to limit.
func countMonthlySteps(origin, until generic.TimePoint, limit int) int {
	n := 0
	for k := 1; n < limit; k++ {
		if generic.MonthlyStep(origin, k).After(until) {
			break
		}
		n++
	}
	return n
}

// =============================================================================
// HIRE-DATE POLICY
// =============================================================================

// HireDatePolicy grants entitlement on each hire anniversary.
type HireDatePolicy struct{}

func (HireDatePolicy) Standard() AccrualStandard { return StandardHireDate }

// Earned is the monthly accrual until the first anniversary, then 15 plus one
// day per two further completed years, capped at 25. A span of 365 days that
// crosses Feb 29 without reaching the anniversary stays on monthly accrual
// rather than dropping to 0.
func (HireDatePolicy) Earned(hire, asOf generic.TimePoint) generic.Amount {
	if asOf.Before(hire) {
		return generic.ZeroDays()
	}
	if generic.DaysBetween(hire, asOf) < daysPerTenureYear {
		return generic.NewAmountFromInt(MonthlyAccrual(hire, asOf), generic.UnitDays)
	}

	years := generic.CompletedAnniversaryYears(hire, asOf)
	if years < 1 {
		// 365 days elapsed across Feb 29 but the anniversary is still ahead
		return generic.NewAmountFromInt(MonthlyAccrual(hire, asOf), generic.UnitDays)
	}
	days := DefaultAnnualDays + (years-1)/2
	if days > MaxAnnualDays {
		days = MaxAnnualDays
	}
	return generic.NewAmountFromInt(days, generic.UnitDays)
}

// =============================================================================
// FISCAL-YEAR POLICY
// =============================================================================

// FiscalYearPolicy accounts entitlement per calendar year.
type FiscalYearPolicy struct{}

func (FiscalYearPolicy) Standard() AccrualStandard { return StandardFiscalYear }

func (p FiscalYearPolicy) Earned(hire, asOf generic.TimePoint) generic.Amount {
	if asOf.Before(hire) {
		return generic.ZeroDays()
	}

	switch yearDiff := asOf.Year() - hire.Year(); {
	case yearDiff == 0:
		return generic.NewAmountFromInt(MonthlyAccrual(hire, asOf), generic.UnitDays).RoundHalf()
	case yearDiff == 1:
		return p.secondYear(hire, asOf)
	default:
		additional := (yearDiff - 2) / 2
		if additional > MaxFiscalAdditionalDays {
			additional = MaxFiscalAdditionalDays
		}
		return generic.NewAmountFromInt(DefaultAnnualDays+additional, generic.UnitDays).RoundHalf()
	}
}

// secondYear is the pro-rated hire-year share of 15 plus the monthly days
// still owed in the following year.
func (FiscalYearPolicy) secondYear(hire, asOf generic.TimePoint) generic.Amount {
	hireYearEnd := generic.EndOfYear(hire.Year())

	worked := decimal.NewFromInt(int64(generic.DaysBetweenInclusive(hire, hireYearEnd)))
	yearLen := decimal.NewFromInt(int64(generic.DaysInYear(hire.Year())))
	proportional := generic.Amount{
		Value: worked.Mul(decimal.NewFromInt(DefaultAnnualDays)).Div(yearLen),
		Unit:  generic.UnitDays,
	}

	firstYearMonthly := countMonthlySteps(hire, hireYearEnd, MaxMonthlyDays)
	owed := MaxMonthlyDays - firstYearMonthly
	secondYearMonthly := countSecondYearSteps(hire, asOf, owed)

	total := proportional.Add(generic.NewAmountFromInt(secondYearMonthly, generic.UnitDays))
	return total.RoundHalf()
}

// countSecondYearSteps counts the hire-day dates of the year after hire,
// starting in January, that fall on or before asOf, up to limit.
func countSecondYearSteps(hire, asOf generic.TimePoint, limit int) int {
	n := 0
	step := generic.ClampedDate(hire.Year()+1, time.January, hire.Day())
	for m := 0; m < 12 && n < limit; m++ {
		if step.After(asOf) {
			break
		}
		n++
		step = generic.AddOneMonthClamped(step, hire.Day())
	}
	return n
}
