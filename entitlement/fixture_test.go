package entitlement_test

import (
	"bytes"
	"io"
	"log/slog"

	"github.com/offday/leave-engine/entitlement"
	"github.com/offday/leave-engine/generic"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(s string) generic.TimePoint {
	return generic.MustParseDate(s)
}

func datePtr(s string) *generic.TimePoint {
	d := generic.MustParseDate(s)
	return &d
}

func days(n float64) generic.Amount {
	return generic.Days(n)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewTextHandler(buf, nil)), buf
}

func request(id, ref, start, end string, n float64, status entitlement.RequestStatus) entitlement.LeaveRequest {
	return entitlement.LeaveRequest{
		ID:          id,
		EmployeeRef: ref,
		StartDate:   date(start),
		EndDate:     date(end),
		Days:        days(n),
		LeaveType:   "vacation",
		Status:      status,
	}
}

// fixture is a small organization:
//
//	e-1 Kim   Busan (hire_date)            hired 2022-01-01
//	e-2 Lee   Seoul HQ (fiscal_year)       hired 2023-07-10, files as user u-2
//	e-3 Park  Daegu (no standard)          hire date unknown
func fixture() *entitlement.Dataset {
	halfDay := request("r2", "e-1", "2024-03-04", "2024-03-04", 1, entitlement.StatusApproved)
	halfDay.Type = "반차"

	welfare := request("r6", "e-2", "2024-03-11", "2024-03-11", 1, entitlement.StatusApproved)
	welfare.LeaveType = "welfare-vacation"

	return &entitlement.Dataset{
		Branches: []entitlement.Branch{
			{ID: "b-seoul", Name: "Seoul HQ", AccrualStandard: entitlement.StandardFiscalYear},
			{ID: "b-busan", Name: "Busan", AccrualStandard: entitlement.StandardHireDate},
			{ID: "b-daegu", Name: "Daegu"},
		},
		Employees: []entitlement.Employee{
			{ID: "e-1", Name: "Kim", Email: "kim@offday.test", Branch: "b-busan", Department: "Engineering", HireDate: datePtr("2022-01-01")},
			{ID: "e-2", Name: "Lee", Email: "lee@offday.test", Branch: " seoul hq ", Department: "Sales", HireDate: datePtr("2023-07-10")},
			{ID: "e-3", Name: "Park", Email: "park@offday.test", Branch: "b-daegu", Department: "engineering "},
		},
		Users: []entitlement.User{
			{ID: "u-2", Email: "LEE@offday.test"},
		},
		Requests: []entitlement.LeaveRequest{
			request("r1", "e-1", "2024-01-30", "2024-02-02", 4, entitlement.StatusApproved),
			halfDay,
			request("r3", "e-1", "2024-05-10", "2024-05-10", 1, entitlement.StatusPending),
			request("r4", "e-1", "2024-04-01", "2024-04-02", 2, entitlement.StatusRejected),
			request("r5", "u-2", "2024-02-05", "2024-02-06", 2, entitlement.StatusApproved),
			welfare,
			request("r7", "ghost", "2024-02-10", "2024-02-10", 1, entitlement.StatusApproved),
			request("r8", "e-1", "2024-06-10", "2024-06-08", 3, entitlement.StatusApproved),
		},
		Grants: []entitlement.WelfareGrant{
			{ID: "g-1", EmployeeID: "e-2", GrantedDays: days(3), EffectiveDate: date("2024-01-01"), ExpiryDate: datePtr("2024-12-31")},
		},
	}
}

func newFixtureEngine() *entitlement.Engine {
	return entitlement.NewEngine(fixture(), entitlement.WithLogger(quietLogger()))
}
