package entitlement_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offday/leave-engine/entitlement"
)

func TestPolicyResolver_BranchByID(t *testing.T) {
	ds := fixture()
	res := entitlement.NewPolicyResolver(ds.Branches, quietLogger()).Resolve(ds.Employees[0])

	assert.Equal(t, entitlement.StandardHireDate, res.Standard)
	assert.False(t, res.Defaulted)
	require.NotNil(t, res.Branch)
	assert.Equal(t, "b-busan", res.Branch.ID)
}

func TestPolicyResolver_BranchByNameIgnoresCaseAndSpaces(t *testing.T) {
	ds := fixture()
	res := entitlement.NewPolicyResolver(ds.Branches, quietLogger()).Resolve(ds.Employees[1])

	assert.Equal(t, entitlement.StandardFiscalYear, res.Standard)
	require.NotNil(t, res.Branch)
	assert.Equal(t, "b-seoul", res.Branch.ID)
}

func TestPolicyResolver_DefaultsWithWarning(t *testing.T) {
	// GIVEN: a branch without a standard, an unknown standard and no branch
	branches := []entitlement.Branch{
		{ID: "b-1", Name: "Unset"},
		{ID: "b-2", Name: "Odd", AccrualStandard: "calendar"},
	}
	cases := map[string]string{
		"b-1":     "branch has no accrual standard",
		"b-2":     "unknown accrual standard calendar",
		"missing": "branch not found",
	}

	for branch, reason := range cases {
		logger, buf := bufferLogger()
		res := entitlement.NewPolicyResolver(branches, logger).Resolve(entitlement.Employee{
			ID: "e-9", Branch: branch, HireDate: datePtr("2020-01-01"),
		})

		// THEN: hire_date, flagged as defaulted, and logged
		assert.Equal(t, entitlement.StandardHireDate, res.Standard, branch)
		assert.True(t, res.Defaulted, branch)
		assert.Equal(t, reason, res.Reason)
		assert.Contains(t, buf.String(), "accrual standard defaulted to hire_date")
	}
}

func TestResolution_MissingHireDateEarnsDefault(t *testing.T) {
	logger, buf := bufferLogger()
	res := entitlement.NewPolicyResolver(nil, logger).Resolve(entitlement.Employee{ID: "e-3"})

	assert.Nil(t, res.HireDate)
	assert.Equal(t, 15.0, res.Earned(date("2024-06-30")).Float64())
	assert.Contains(t, buf.String(), "hire date missing")
}

func TestIdentitiesFor_LinksUsersByEmail(t *testing.T) {
	ds := fixture()
	ids := entitlement.IdentitiesFor(ds.Employees[1], ds.Users)

	assert.True(t, ids.Contains("e-2"))
	assert.True(t, ids.Contains("u-2"))
	assert.False(t, ids.Contains("e-1"))

	// no email, no links
	bare := entitlement.IdentitiesFor(entitlement.Employee{ID: "e-7"}, []entitlement.User{{ID: "u-7"}})
	assert.Len(t, bare, 1)
}

func TestOwnerIndex(t *testing.T) {
	ds := fixture()
	idx := entitlement.NewOwnerIndex(ds.Employees, ds.Users)

	owner, ok := idx.Owner("u-2")
	assert.True(t, ok)
	assert.Equal(t, "e-2", owner)

	owner, ok = idx.Owner("e-1")
	assert.True(t, ok)
	assert.Equal(t, "e-1", owner)

	_, ok = idx.Owner("ghost")
	assert.False(t, ok)
}
