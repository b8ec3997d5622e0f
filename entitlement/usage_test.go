package entitlement_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offday/leave-engine/entitlement"
	"github.com/offday/leave-engine/generic"
)

func ids(refs ...string) entitlement.IdentitySet {
	set := entitlement.IdentitySet{}
	for _, r := range refs {
		set[r] = struct{}{}
	}
	return set
}

func TestMonthly_SplitsAcrossMonths(t *testing.T) {
	// GIVEN: one approved request 2024-01-30 .. 2024-02-02
	reqs := []entitlement.LeaveRequest{
		request("r1", "e-1", "2024-01-30", "2024-02-02", 4, entitlement.StatusApproved),
	}

	// WHEN
	out := entitlement.Monthly(reqs, ids("e-1"), 2024, entitlement.CategoryStatutory)

	// THEN: 2 days in January, 2 in February
	assert.Equal(t, 2.0, out.Month(time.January).Float64())
	assert.Equal(t, 2.0, out.Month(time.February).Float64())
	assert.Equal(t, 4.0, out.Total().Float64())
}

func TestMonthly_CrossYearKeepsOnlyTheYearsDays(t *testing.T) {
	reqs := []entitlement.LeaveRequest{
		request("r1", "e-1", "2023-12-29", "2024-01-02", 5, entitlement.StatusApproved),
	}
	out := entitlement.Monthly(reqs, ids("e-1"), 2024, entitlement.CategoryStatutory)
	assert.Equal(t, 2.0, out.Total().Float64())
	assert.Equal(t, 2.0, out.Month(time.January).Float64())
}

func TestMonthly_HalfDayAndPending(t *testing.T) {
	half := request("r1", "e-1", "2024-03-04", "2024-03-04", 1, entitlement.StatusApproved)
	half.HalfDay = entitlement.HalfDayMorning
	pending := request("r2", "e-1", "2024-03-05", "2024-03-06", 2, entitlement.StatusPending)

	out := entitlement.Monthly([]entitlement.LeaveRequest{half, pending}, ids("e-1"), 2024, entitlement.CategoryStatutory)
	assert.Equal(t, 0.5, out.Month(time.March).Float64())
	assert.Equal(t, 0.5, out.Total().Float64())
}

func TestSummarize_BucketsByStatus(t *testing.T) {
	ds := fixture()
	sum := entitlement.Summarize(ds.Requests, ids("e-1"), generic.YearPeriod(2024), entitlement.CategoryStatutory)

	// r1 4 + r2 half-day, r3 pending, r4 rejected, r8 reversed
	assert.Equal(t, 4.5, sum.Used.Float64())
	assert.Equal(t, 1.0, sum.Pending.Float64())
	assert.Equal(t, 3, sum.Requests)
	assert.Equal(t, 1, sum.Diagnostics.InvalidRange)
	require.Len(t, sum.Diagnostics.Samples, 1)
	assert.True(t, errors.Is(sum.Diagnostics.Samples[0], generic.ErrInvalidDateRange))
}

func TestSummarize_HalfDayOverridesStaleCount(t *testing.T) {
	labels := []func(*entitlement.LeaveRequest){
		func(r *entitlement.LeaveRequest) { r.HalfDay = entitlement.HalfDayAfternoon },
		func(r *entitlement.LeaveRequest) { r.Type = "반차" },
		func(r *entitlement.LeaveRequest) { r.Type = "half-day" },
		func(r *entitlement.LeaveRequest) { r.LeaveType = "half-morning" },
	}
	for i, label := range labels {
		r := request("r", "e-1", "2024-05-02", "2024-05-02", 3, entitlement.StatusApproved)
		label(&r)
		sum := entitlement.Summarize([]entitlement.LeaveRequest{r}, ids("e-1"), generic.YearPeriod(2024), entitlement.CategoryStatutory)
		assert.Equal(t, 0.5, sum.Used.Float64(), "case %d", i)
	}
}

func TestSummarize_CategorySeparation(t *testing.T) {
	ds := fixture()
	set := ids("e-2", "u-2")

	statutory := entitlement.Summarize(ds.Requests, set, generic.YearPeriod(2024), entitlement.CategoryStatutory)
	welfare := entitlement.Summarize(ds.Requests, set, generic.YearPeriod(2024), entitlement.CategoryWelfare)

	assert.Equal(t, 2.0, statutory.Used.Float64())
	assert.Equal(t, 1.0, welfare.Used.Float64())
}

func TestSummarize_OverlapSelectsRequest(t *testing.T) {
	reqs := []entitlement.LeaveRequest{
		request("r1", "e-1", "2023-12-29", "2024-01-02", 3, entitlement.StatusApproved),
	}
	in2023 := entitlement.Summarize(reqs, ids("e-1"), generic.YearPeriod(2023), entitlement.CategoryStatutory)
	in2024 := entitlement.Summarize(reqs, ids("e-1"), generic.YearPeriod(2024), entitlement.CategoryStatutory)
	in2025 := entitlement.Summarize(reqs, ids("e-1"), generic.YearPeriod(2025), entitlement.CategoryStatutory)

	assert.Equal(t, 3.0, in2023.Used.Float64())
	assert.Equal(t, 3.0, in2024.Used.Float64())
	assert.True(t, in2025.Used.IsZero())
}

func TestLeaveRequest_Category(t *testing.T) {
	r := entitlement.LeaveRequest{LeaveType: "welfare-half-morning"}
	assert.Equal(t, entitlement.CategoryWelfare, r.Category())
	assert.True(t, r.IsHalfDay())

	r.LeaveType = "vacation"
	assert.Equal(t, entitlement.CategoryStatutory, r.Category())
	assert.False(t, r.IsHalfDay())

	cat, ok := entitlement.ParseCategory("Welfare")
	assert.True(t, ok)
	assert.Equal(t, entitlement.CategoryWelfare, cat)
	_, ok = entitlement.ParseCategory("sick")
	assert.False(t, ok)
}
