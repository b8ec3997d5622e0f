package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// TIME POINT - Calendar date without time-of-day
// =============================================================================

// DateLayout is the ISO calendar date format used on every boundary.
const DateLayout = "2006-01-02"

// TimePoint is an immutable calendar date. All values are normalized to
// midnight UTC so comparisons never depend on the local zone or clock time.
type TimePoint struct {
	Time time.Time
}

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime drops the time-of-day component of t, keeping its calendar date.
func FromTime(t time.Time) TimePoint {
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

func Today() TimePoint {
	return FromTime(time.Now())
}

// ParseDate parses an ISO calendar date (YYYY-MM-DD).
func ParseDate(s string) (TimePoint, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return TimePoint{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return FromTime(t), nil
}

// MustParseDate is ParseDate for fixtures and constants. It panics on bad input.
func MustParseDate(s string) TimePoint {
	tp, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return tp
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.Time.Before(other.Time) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.Time.Equal(other.Time) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.Time.After(other.Time) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return !tp.After(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return !tp.Before(other) }

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint { return TimePoint{Time: tp.Time.AddDate(0, 0, n)} }

// Properties
func (tp TimePoint) Year() int         { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month { return tp.Time.Month() }
func (tp TimePoint) Day() int          { return tp.Time.Day() }
func (tp TimePoint) IsZero() bool      { return tp.Time.IsZero() }

func (tp TimePoint) String() string {
	return tp.Time.Format(DateLayout)
}

// Earliest returns the earlier of two dates.
func Earliest(a, b TimePoint) TimePoint {
	if a.Before(b) {
		return a
	}
	return b
}

// Latest returns the later of two dates.
func Latest(a, b TimePoint) TimePoint {
	if a.After(b) {
		return a
	}
	return b
}

// =============================================================================
// DATE MATH
// =============================================================================

// IsLeapYear applies the Gregorian rule.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInYear is 366 for leap years, 365 otherwise.
func DaysInYear(year int) int {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}

// DaysInMonth returns the length of the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DaysBetween returns the number of whole days from 'from' to 'to'
// (negative when to is earlier).
func DaysBetween(from, to TimePoint) int {
	return int(to.Time.Sub(from.Time).Hours() / 24)
}

// DaysBetweenInclusive counts calendar days in [start, end].
// Returns 0 when end is before start.
func DaysBetweenInclusive(start, end TimePoint) int {
	if end.Before(start) {
		return 0
	}
	return DaysBetween(start, end) + 1
}

// ClampedDate builds year/month/day, clamping day to the month's last day.
func ClampedDate(year int, month time.Month, day int) TimePoint {
	// normalize month overflow first (e.g. month 13 -> January next year)
	first := NewTimePoint(year, month, 1)
	last := DaysInMonth(first.Year(), first.Month())
	if day > last {
		day = last
	}
	return NewTimePoint(first.Year(), first.Month(), day)
}

// AddOneMonthClamped returns the date one calendar month after 'date' on
// anchorDay, clamped to the target month's length. The anchor is passed in
// explicitly so repeated steps never inherit a previous clamp.
func AddOneMonthClamped(date TimePoint, anchorDay int) TimePoint {
	return ClampedDate(date.Year(), date.Month()+1, anchorDay)
}

// MonthlyStep returns the k-th monthly anniversary of origin, always derived
// from origin's own day-of-month. MonthlyStep(d, 0) == d.
func MonthlyStep(origin TimePoint, k int) TimePoint {
	return ClampedDate(origin.Year(), origin.Month()+time.Month(k), origin.Day())
}

// CompletedAnniversaryYears counts full years from start to asOf. A year only
// completes on or after the anniversary month/day.
func CompletedAnniversaryYears(start, asOf TimePoint) int {
	years := asOf.Year() - start.Year()
	if asOf.Month() < start.Month() || (asOf.Month() == start.Month() && asOf.Day() < start.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// =============================================================================
// CALENDAR BOUNDARIES
// =============================================================================

func StartOfYear(year int) TimePoint                    { return NewTimePoint(year, time.January, 1) }
func EndOfYear(year int) TimePoint                      { return NewTimePoint(year, time.December, 31) }
func StartOfMonth(year int, month time.Month) TimePoint { return NewTimePoint(year, month, 1) }
func EndOfMonth(year int, month time.Month) TimePoint {
	return NewTimePoint(year, month, DaysInMonth(year, month))
}
