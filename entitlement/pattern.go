/*
pattern.go - Usage pattern by reason

PURPOSE:
  Breaks an employee's approved leave for a calendar year down by what it
  was taken for: vacation, personal, sick or other.

CLASSIFICATION (first match wins):
  1. ReasonType containing personal, sick, vacation, family or other
     (family is reported as other)
  2. LeaveType, or Type when LeaveType is empty, containing personal, sick
     or vacation; or the free-text reason containing 개인사정, 병가 or 휴가
  3. other

  Requests count in the year their start date falls in. Half-days count 0.5.

SEE ALSO:
  - usage.go: used/pending totals per category
*/
package entitlement

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/offday/leave-engine/generic"
)

// UsageKind is the reason bucket of a leave request.
type UsageKind string

const (
	KindVacation UsageKind = "vacation"
	KindPersonal UsageKind = "personal"
	KindSick     UsageKind = "sick"
	KindOther    UsageKind = "other"
)

// UsageKinds lists the buckets in display order.
var UsageKinds = []UsageKind{KindVacation, KindPersonal, KindSick, KindOther}

var hundred = decimal.NewFromInt(100)

// UsagePattern holds approved days per reason bucket for one year.
type UsagePattern struct {
	Year        int
	Days        map[UsageKind]generic.Amount
	Total       generic.Amount
	Requests    int
	Diagnostics Diagnostics
}

// Share is the bucket's percentage of Total, rounded to a whole number.
// An empty pattern reports 0 for every bucket.
func (p UsagePattern) Share(kind UsageKind) int {
	if !p.Total.IsPositive() {
		return 0
	}
	d, ok := p.Days[kind]
	if !ok {
		return 0
	}
	return int(d.Value.Mul(hundred).Div(p.Total.Value).Round(0).IntPart())
}

// ClassifyUsage puts a request into its reason bucket.
func ClassifyUsage(r LeaveRequest) UsageKind {
	rt := strings.ToLower(r.ReasonType)
	switch {
	case strings.Contains(rt, "personal"):
		return KindPersonal
	case strings.Contains(rt, "sick"):
		return KindSick
	case strings.Contains(rt, "vacation"):
		return KindVacation
	case strings.Contains(rt, "family"), strings.Contains(rt, "other"):
		return KindOther
	}

	lt := r.LeaveType
	if lt == "" {
		lt = r.Type
	}
	lt = strings.ToLower(lt)
	reason := strings.ToLower(r.Reason)
	switch {
	case strings.Contains(lt, "personal") || strings.Contains(reason, "개인사정"):
		return KindPersonal
	case strings.Contains(lt, "sick") || strings.Contains(reason, "병가"):
		return KindSick
	case strings.Contains(lt, "vacation") || strings.Contains(reason, "휴가"):
		return KindVacation
	}
	return KindOther
}

// Pattern buckets the approved requests owned by ids that start in year.
// Both categories count.
func Pattern(requests []LeaveRequest, ids IdentitySet, year int) UsagePattern {
	p := UsagePattern{
		Year:  year,
		Days:  make(map[UsageKind]generic.Amount, len(UsageKinds)),
		Total: generic.ZeroDays(),
	}
	for _, k := range UsageKinds {
		p.Days[k] = generic.ZeroDays()
	}
	for _, r := range requests {
		if !ids.Contains(r.EmployeeRef) || r.Status != StatusApproved || r.StartDate.Year() != year {
			continue
		}
		if err := validateSpan(r); err != nil {
			p.Diagnostics.record(err)
			continue
		}
		kind := ClassifyUsage(r)
		p.Days[kind] = p.Days[kind].Add(r.EffectiveDays())
		p.Total = p.Total.Add(r.EffectiveDays())
		p.Requests++
	}
	return p
}
