package entitlement_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offday/leave-engine/entitlement"
)

func welfareRequest(id, ref, start, end string, n float64, status entitlement.RequestStatus) entitlement.LeaveRequest {
	r := request(id, ref, start, end, n, status)
	r.LeaveType = "welfare-vacation"
	return r
}

func TestLedger_ExpiredRemainder(t *testing.T) {
	// GIVEN: 5 days valid through 2024, 2 days taken in November
	grants := []entitlement.WelfareGrant{
		{ID: "g-1", EmployeeID: "e-1", GrantedDays: days(5), EffectiveDate: date("2024-01-01"), ExpiryDate: datePtr("2024-12-31")},
	}
	reqs := []entitlement.LeaveRequest{
		welfareRequest("w1", "e-1", "2024-11-01", "2024-11-02", 2, entitlement.StatusApproved),
	}

	// WHEN: queried in 2025
	snap := entitlement.Ledger(grants, reqs, ids("e-1"), date("2025-02-01"))

	// THEN: 3 days expired, nothing remains
	assert.Equal(t, 5.0, snap.TotalGranted.Float64())
	assert.Equal(t, 2.0, snap.Used.Float64())
	assert.True(t, snap.UsedThisYear.IsZero())
	assert.Equal(t, 3.0, snap.Expired.Float64())
	assert.True(t, snap.Remaining.IsZero())

	require.Len(t, snap.Grants, 1)
	assert.Equal(t, entitlement.GrantExpired, snap.Grants[0].Status)
	assert.Equal(t, 2.0, snap.Grants[0].Consumed.Float64())
}

func TestLedger_ExpiredGrantDoesNotFeedLaterGrant(t *testing.T) {
	// GIVEN: an unused 2024 grant and a live 2025 grant
	grants := []entitlement.WelfareGrant{
		{ID: "g-1", GrantedDays: days(3), EffectiveDate: date("2024-01-01"), ExpiryDate: datePtr("2024-12-31")},
		{ID: "g-2", GrantedDays: days(2), EffectiveDate: date("2025-01-01"), ExpiryDate: datePtr("2025-12-31")},
	}
	reqs := []entitlement.LeaveRequest{
		welfareRequest("w1", "e-1", "2025-03-03", "2025-03-03", 1, entitlement.StatusApproved),
		welfareRequest("w2", "e-1", "2025-03-10", "2025-03-10", 1, entitlement.StatusPending),
		welfareRequest("w3", "e-1", "2025-03-12", "2025-03-12", 1, entitlement.StatusRejected),
	}

	snap := entitlement.Ledger(grants, reqs, ids("e-1"), date("2025-06-01"))

	assert.Equal(t, 5.0, snap.TotalGranted.Float64())
	assert.Equal(t, 1.0, snap.Used.Float64())
	assert.Equal(t, 1.0, snap.UsedThisYear.Float64())
	assert.Equal(t, 1.0, snap.Pending.Float64())
	assert.Equal(t, 3.0, snap.Expired.Float64())
	assert.Equal(t, 1.0, snap.Remaining.Float64())
	assert.Equal(t, entitlement.GrantActive, snap.Grants[1].Status)
}

func TestLedger_ScheduledAndOpenEndedGrants(t *testing.T) {
	grants := []entitlement.WelfareGrant{
		{ID: "g-open", GrantedDays: days(2), EffectiveDate: date("2024-01-01")},
		{ID: "g-next", GrantedDays: days(4), EffectiveDate: date("2025-01-01"), ExpiryDate: datePtr("2025-12-31")},
	}
	reqs := []entitlement.LeaveRequest{
		welfareRequest("w1", "e-1", "2024-05-01", "2024-05-01", 1, entitlement.StatusApproved),
	}

	snap := entitlement.Ledger(grants, reqs, ids("e-1"), date("2024-06-01"))

	assert.Equal(t, entitlement.GrantActive, snap.Grants[0].Status)
	assert.Equal(t, 1.0, snap.Grants[0].Consumed.Float64())
	assert.Equal(t, entitlement.GrantScheduled, snap.Grants[1].Status)
	assert.True(t, snap.Expired.IsZero())
	assert.Equal(t, 5.0, snap.Remaining.Float64())
}

func TestLedger_ExpiryIsStrictlyBeforeAsOf(t *testing.T) {
	grants := []entitlement.WelfareGrant{
		{ID: "g-1", GrantedDays: days(2), EffectiveDate: date("2024-01-01"), ExpiryDate: datePtr("2024-12-31")},
	}
	onExpiry := entitlement.Ledger(grants, nil, ids("e-1"), date("2024-12-31"))
	dayAfter := entitlement.Ledger(grants, nil, ids("e-1"), date("2025-01-01"))

	assert.True(t, onExpiry.Expired.IsZero())
	assert.Equal(t, 2.0, onExpiry.Remaining.Float64())
	assert.Equal(t, 2.0, dayAfter.Expired.Float64())
	assert.True(t, dayAfter.Remaining.IsZero())
}

func TestLedger_NeverExceedsTotalGranted(t *testing.T) {
	grants := []entitlement.WelfareGrant{
		{ID: "g-1", GrantedDays: days(2), EffectiveDate: date("2024-01-01"), ExpiryDate: datePtr("2024-03-31")},
		{ID: "g-2", GrantedDays: days(1.5), EffectiveDate: date("2024-04-01"), ExpiryDate: datePtr("2024-12-31")},
	}
	scenarios := map[string][]entitlement.LeaveRequest{
		"none": nil,
		"partial": {
			welfareRequest("w1", "e-1", "2024-02-01", "2024-02-01", 1, entitlement.StatusApproved),
		},
		"outside every window": {
			welfareRequest("w1", "e-1", "2023-06-01", "2023-06-05", 5, entitlement.StatusApproved),
		},
		"overdrawn": {
			welfareRequest("w1", "e-1", "2024-05-01", "2024-05-03", 3, entitlement.StatusApproved),
			welfareRequest("w2", "e-1", "2024-06-01", "2024-06-02", 2, entitlement.StatusApproved),
		},
	}

	for name, reqs := range scenarios {
		for _, asOf := range []string{"2024-02-15", "2024-06-30", "2025-01-15"} {
			snap := entitlement.Ledger(grants, reqs, ids("e-1"), date(asOf))
			sum := snap.Remaining.Add(snap.Used).Add(snap.Expired)
			assert.False(t, sum.GreaterThan(snap.TotalGranted), "%s as of %s: %s > %s", name, asOf, sum, snap.TotalGranted)
			assert.False(t, snap.Remaining.IsNegative())
		}
	}

	over := entitlement.Ledger(grants, scenarios["overdrawn"], ids("e-1"), date("2024-06-30"))
	assert.Equal(t, 3.5, over.Used.Float64())
	assert.Equal(t, 1.5, over.Overdrawn.Float64())
}

func TestLedger_NoPartialConsumptionBalances(t *testing.T) {
	// equality holds when every grant is either fully used, fully expired or untouched
	grants := []entitlement.WelfareGrant{
		{ID: "g-1", GrantedDays: days(2), EffectiveDate: date("2024-01-01"), ExpiryDate: datePtr("2024-03-31")},
		{ID: "g-2", GrantedDays: days(3), EffectiveDate: date("2024-04-01"), ExpiryDate: datePtr("2024-12-31")},
	}
	reqs := []entitlement.LeaveRequest{
		welfareRequest("w1", "e-1", "2024-02-01", "2024-02-02", 2, entitlement.StatusApproved),
	}
	snap := entitlement.Ledger(grants, reqs, ids("e-1"), date("2024-06-30"))
	assert.True(t, snap.Remaining.Add(snap.Used).Add(snap.Expired).Equal(snap.TotalGranted))
}

func TestLedger_BackdatedQueryIgnoresLaterLeave(t *testing.T) {
	// GIVEN: 5 days granted for 2024, 2 days approved for November
	grants := []entitlement.WelfareGrant{
		{ID: "g-1", GrantedDays: days(5), EffectiveDate: date("2024-01-01"), ExpiryDate: datePtr("2024-12-31")},
	}
	reqs := []entitlement.LeaveRequest{
		welfareRequest("w1", "e-1", "2024-03-04", "2024-03-04", 1, entitlement.StatusApproved),
		welfareRequest("w2", "e-1", "2024-11-01", "2024-11-02", 2, entitlement.StatusApproved),
	}

	// WHEN: the ledger is read as of June
	snap := entitlement.Ledger(grants, reqs, ids("e-1"), date("2024-06-30"))

	// THEN: November's leave is scheduled, not used
	assert.Equal(t, 1.0, snap.Used.Float64())
	assert.Equal(t, 1.0, snap.UsedThisYear.Float64())
	assert.Equal(t, 2.0, snap.Scheduled.Float64())
	assert.Equal(t, 4.0, snap.Remaining.Float64())
	assert.Equal(t, 1.0, snap.Grants[0].Consumed.Float64())

	// and counts once its start date is reached
	later := entitlement.Ledger(grants, reqs, ids("e-1"), date("2024-11-01"))
	assert.Equal(t, 3.0, later.Used.Float64())
	assert.True(t, later.Scheduled.IsZero())
	assert.Equal(t, 2.0, later.Remaining.Float64())
}
