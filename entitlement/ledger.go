/*
ledger.go - Welfare grant ledger

PURPOSE:
  Welfare leave is granted by the employer in discrete, time-bounded grants.
  Each grant is an independent window [EffectiveDate, ExpiryDate] with a fixed
  allotment. There is no FIFO carry-over between grants: once a grant expires
  its unconsumed remainder is gone, even if a later grant is still valid.

COMPUTATION (as of a date):
  1. TotalGranted = sum of every grant's days, expired or not
  2. Used         = approved welfare days starting on or before asOf
                    (UsedThisYear restricts to asOf's year; approved days
                    starting later are reported as Scheduled)
  3. For each grant expiring strictly before asOf:
       consumed = approved welfare days starting inside the grant window,
                  on or before asOf
       Expired += max(granted - consumed, 0)
  4. Remaining = max(TotalGranted - Used - Expired, 0)

  Used is capped at TotalGranted (excess reported as Overdrawn) and Expired at
  TotalGranted - Used, so Remaining + Used + Expired never exceeds
  TotalGranted.

EXAMPLE:
  5 days effective 2024-01-01, expiring 2024-12-31, 2 days taken 2024-11-01,
  as of 2025-02-01:
    TotalGranted 5, Used 2, Expired 3, Remaining 0

SEE ALSO:
  - usage.go: statutory aggregation
  - engine.go: ComputeWelfareLedger
*/
package entitlement

import (
	"github.com/offday/leave-engine/generic"
)

// GrantStatus describes a grant relative to the as-of date.
type GrantStatus string

const (
	GrantActive    GrantStatus = "active"
	GrantExpired   GrantStatus = "expired"
	GrantScheduled GrantStatus = "scheduled" // effective date still ahead
)

// GrantDetail is one grant's contribution to the ledger.
type GrantDetail struct {
	Grant    WelfareGrant
	Status   GrantStatus
	Consumed generic.Amount // approved welfare days starting inside the window
	Expired  generic.Amount // unconsumed remainder lost at expiry
}

// WelfareSnapshot is the welfare ledger as of a date. Used spans every year
// up to AsOf and is what Remaining is computed from; the figure for the
// current accounting year alone is UsedThisYear.
type WelfareSnapshot struct {
	AsOf         generic.TimePoint
	TotalGranted generic.Amount
	Used         generic.Amount
	UsedThisYear generic.Amount
	Scheduled    generic.Amount // approved, starting after AsOf
	Pending      generic.Amount
	Expired      generic.Amount
	Remaining    generic.Amount
	Overdrawn    generic.Amount // approved welfare days beyond every grant
	Grants       []GrantDetail
	Diagnostics  Diagnostics
}

// Ledger computes the welfare snapshot for one employee's grants and the
// requests filed under ids.
func Ledger(grants []WelfareGrant, requests []LeaveRequest, ids IdentitySet, asOf generic.TimePoint) WelfareSnapshot {
	snap := WelfareSnapshot{
		AsOf:         asOf,
		TotalGranted: generic.ZeroDays(),
		Used:         generic.ZeroDays(),
		UsedThisYear: generic.ZeroDays(),
		Scheduled:    generic.ZeroDays(),
		Pending:      generic.ZeroDays(),
		Expired:      generic.ZeroDays(),
		Overdrawn:    generic.ZeroDays(),
	}

	approved := make([]LeaveRequest, 0)
	year := generic.YearPeriod(asOf.Year())
	for _, r := range requests {
		if !ids.Contains(r.EmployeeRef) || r.Category() != CategoryWelfare {
			continue
		}
		if err := validateSpan(r); err != nil {
			snap.Diagnostics.record(err)
			continue
		}
		switch {
		case r.Status == StatusApproved && r.StartDate.After(asOf):
			snap.Scheduled = snap.Scheduled.Add(r.EffectiveDays())
		case r.Status == StatusApproved:
			approved = append(approved, r)
			snap.Used = snap.Used.Add(r.EffectiveDays())
			if year.Contains(r.StartDate) {
				snap.UsedThisYear = snap.UsedThisYear.Add(r.EffectiveDays())
			}
		case r.Status == StatusPending:
			if r.Span().Overlaps(year) {
				snap.Pending = snap.Pending.Add(r.EffectiveDays())
			}
		}
	}

	for _, g := range grants {
		granted := g.GrantedDays.FloorZero()
		snap.TotalGranted = snap.TotalGranted.Add(granted)

		detail := GrantDetail{Grant: g, Status: grantStatus(g, asOf), Consumed: consumedBy(g, approved, asOf), Expired: generic.ZeroDays()}
		if detail.Status == GrantExpired {
			detail.Expired = granted.Sub(detail.Consumed).FloorZero()
			snap.Expired = snap.Expired.Add(detail.Expired)
		}
		snap.Grants = append(snap.Grants, detail)
	}

	if snap.Used.GreaterThan(snap.TotalGranted) {
		snap.Overdrawn = snap.Used.Sub(snap.TotalGranted)
		snap.Used = snap.TotalGranted
	}
	snap.Expired = snap.Expired.Min(snap.TotalGranted.Sub(snap.Used))
	snap.Remaining = snap.TotalGranted.Sub(snap.Used).Sub(snap.Expired).FloorZero()
	return snap
}

func grantStatus(g WelfareGrant, asOf generic.TimePoint) GrantStatus {
	switch {
	case g.ExpiredAt(asOf):
		return GrantExpired
	case g.EffectiveDate.After(asOf):
		return GrantScheduled
	default:
		return GrantActive
	}
}

// consumedBy sums approved requests starting inside the grant window. The
// requests are already bounded by asOf, and so are open ended grants.
func consumedBy(g WelfareGrant, approved []LeaveRequest, asOf generic.TimePoint) generic.Amount {
	window, ok := g.Window()
	if !ok {
		window = generic.Period{Start: g.EffectiveDate, End: asOf}
	}
	total := generic.ZeroDays()
	for _, r := range approved {
		if window.Contains(r.StartDate) {
			total = total.Add(r.EffectiveDays())
		}
	}
	return total
}
