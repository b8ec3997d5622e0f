package generic

import "time"

// =============================================================================
// PERIOD - Inclusive date range
// =============================================================================

// Period is an inclusive calendar range [Start, End].
//
// Examples:
//   - Calendar year 2025: Jan 1 - Dec 31
//   - A leave request: first day off - last day off
//   - A welfare grant window: effective date - expiry date
type Period struct {
	Start TimePoint
	End   TimePoint
}

// YearPeriod is Jan 1 - Dec 31 of year.
func YearPeriod(year int) Period {
	return Period{Start: StartOfYear(year), End: EndOfYear(year)}
}

// MonthPeriod spans the whole calendar month.
func MonthPeriod(year int, month time.Month) Period {
	return Period{Start: StartOfMonth(year, month), End: EndOfMonth(year, month)}
}

// Valid reports whether End is not before Start.
func (p Period) Valid() bool {
	return !p.End.Before(p.Start)
}

// Validate returns ErrInvalidPeriod for reversed ranges.
func (p Period) Validate() error {
	if !p.Valid() {
		return ErrInvalidPeriod
	}
	return nil
}

// Contains returns true if the time point is within the period [Start, End]
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// Overlaps reports whether the two ranges share at least one day.
func (p Period) Overlaps(other Period) bool {
	return p.Start.BeforeOrEqual(other.End) && p.End.AfterOrEqual(other.Start)
}

// Intersect returns the shared range; ok is false when there is none.
func (p Period) Intersect(other Period) (Period, bool) {
	if !p.Valid() || !other.Valid() || !p.Overlaps(other) {
		return Period{}, false
	}
	return Period{Start: Latest(p.Start, other.Start), End: Earliest(p.End, other.End)}, true
}

// OverlapDays counts the inclusive days both ranges share.
func (p Period) OverlapDays(other Period) int {
	shared, ok := p.Intersect(other)
	if !ok {
		return 0
	}
	return shared.Length()
}

// Length is the inclusive day count of the period.
func (p Period) Length() int {
	return DaysBetweenInclusive(p.Start, p.End)
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}
