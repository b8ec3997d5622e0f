package entitlement_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offday/leave-engine/entitlement"
)

func TestOverview_AllEmployees(t *testing.T) {
	engine := newFixtureEngine()
	out := engine.Overview(date("2024-06-30"), entitlement.StatsFilter{})

	// earned 15 + 13 + 15, used 4.5 + 2
	assert.Equal(t, 3, out.Employees)
	assert.Equal(t, 43.0, out.TotalEarned.Float64())
	assert.Equal(t, 6.5, out.TotalUsed.Float64())
	assert.Equal(t, 15, out.UsageRate)
}

func TestOverview_Filters(t *testing.T) {
	engine := newFixtureEngine()
	asOf := date("2024-06-30")

	byBranch := engine.Overview(asOf, entitlement.StatsFilter{Branch: "Seoul HQ"})
	assert.Equal(t, 1, byBranch.Employees)
	assert.Equal(t, 13.0, byBranch.TotalEarned.Float64())

	byBranchID := engine.Overview(asOf, entitlement.StatsFilter{Branch: "b-busan"})
	assert.Equal(t, 1, byBranchID.Employees)

	byDept := engine.Overview(asOf, entitlement.StatsFilter{Department: "ENGINEERING"})
	assert.Equal(t, 2, byDept.Employees)
	assert.Equal(t, 4.5, byDept.TotalUsed.Float64())
}

func TestMonthlyStats_StartMonthAttribution(t *testing.T) {
	engine := newFixtureEngine()
	out := engine.MonthlyStats(2024, entitlement.StatsFilter{})

	assert.Equal(t, 4.0, out.Months[time.January-1].Days.Float64())
	assert.Equal(t, 1, out.Months[time.January-1].Count)
	assert.Equal(t, 3.0, out.Months[time.February-1].Days.Float64(), "includes the unmatched request")
	assert.Equal(t, 2, out.Months[time.February-1].Count)
	assert.Equal(t, 1.5, out.Months[time.March-1].Days.Float64())
	assert.Equal(t, 8.5, out.TotalDays().Float64())

	assert.Equal(t, 1, out.Diagnostics.InvalidRange)
	assert.Equal(t, 1, out.Diagnostics.Unmatched)

	assert.Equal(t, entitlement.LeavePatterns{SingleDay: 2, MultiDay: 2, Pending: 1, Approved: 5}, out.Patterns)
}

func TestMonthlyStats_ScopedFilterDropsUnmatched(t *testing.T) {
	engine := newFixtureEngine()
	out := engine.MonthlyStats(2024, entitlement.StatsFilter{Branch: "busan"})

	assert.Equal(t, 4.0, out.Months[time.January-1].Days.Float64())
	assert.True(t, out.Months[time.February-1].Days.IsZero())
	assert.Equal(t, 0.5, out.Months[time.March-1].Days.Float64())
	assert.Equal(t, 4.5, out.TotalDays().Float64())
}

func TestMonthlyStats_DateRange(t *testing.T) {
	engine := newFixtureEngine()
	out := engine.MonthlyStats(2024, entitlement.StatsFilter{From: datePtr("2024-02-01"), To: datePtr("2024-02-29")})

	assert.True(t, out.Months[time.January-1].Days.IsZero())
	assert.Equal(t, 3.0, out.TotalDays().Float64())
}

func TestDepartmentStats(t *testing.T) {
	engine := newFixtureEngine()
	rows := engine.DepartmentStats(2024, date("2024-06-30"))

	require.Len(t, rows, 2)
	eng, sales := rows[0], rows[1]

	assert.Equal(t, "Engineering", eng.Department)
	assert.Equal(t, 2, eng.Employees)
	assert.Equal(t, 30.0, eng.Earned.Float64())
	assert.Equal(t, 4.5, eng.Used.Float64())
	assert.Equal(t, 25.5, eng.Remaining.Float64())
	assert.Equal(t, 1, eng.Pending)

	assert.Equal(t, "Sales", sales.Department)
	assert.Equal(t, 13.0, sales.Earned.Float64())
	assert.Equal(t, 11.0, sales.Remaining.Float64())
}
