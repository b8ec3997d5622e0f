package sqlite_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offday/leave-engine/entitlement"
	"github.com/offday/leave-engine/generic"
	"github.com/offday/leave-engine/store/sqlite"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func date(s string) generic.TimePoint {
	return generic.MustParseDate(s)
}

func datePtr(s string) *generic.TimePoint {
	d := date(s)
	return &d
}

func sampleDataset() *entitlement.Dataset {
	return &entitlement.Dataset{
		Branches: []entitlement.Branch{
			{ID: "b-1", Name: "Seoul HQ", AccrualStandard: entitlement.StandardFiscalYear},
			{ID: "b-2", Name: "Busan"},
		},
		Employees: []entitlement.Employee{
			{ID: "e-1", Name: "Kim", Email: "kim@offday.test", Branch: "b-1", Department: "Sales", HireDate: datePtr("2023-07-10")},
			{ID: "e-2", Name: "Park", Branch: "Busan"},
		},
		Users: []entitlement.User{{ID: "u-1", Email: "KIM@offday.test"}},
		Requests: []entitlement.LeaveRequest{
			{ID: "r-1", EmployeeRef: "u-1", StartDate: date("2024-03-04"), EndDate: date("2024-03-04"),
				Days: generic.Days(1), LeaveType: "vacation", Type: "반차", ReasonType: "half_morning",
				HalfDay: entitlement.HalfDayMorning, Status: entitlement.StatusApproved},
			{ID: "r-2", EmployeeRef: "e-1", StartDate: date("2024-04-01"), EndDate: date("2024-04-03"),
				Days: generic.Days(3), LeaveType: "vacation", Status: entitlement.StatusPending, Reason: "trip"},
			{ID: "r-3", EmployeeRef: "e-1", StartDate: date("2024-05-01"), EndDate: date("2024-05-01"),
				Days: generic.Days(1), LeaveType: "welfare-vacation", Status: entitlement.StatusApproved},
		},
		Grants: []entitlement.WelfareGrant{
			{ID: "g-1", EmployeeID: "e-1", GrantedDays: generic.Days(2.5), EffectiveDate: date("2024-01-01"),
				ExpiryDate: datePtr("2024-12-31"), GrantedDate: date("2023-12-20"), GrantedBy: "admin"},
			{ID: "g-2", EmployeeID: "e-1", GrantedDays: generic.Days(1), EffectiveDate: date("2025-01-01")},
		},
	}
}

// =============================================================================
// TESTS
// =============================================================================

func TestStore_ImportThenSnapshot(t *testing.T) {
	// GIVEN: a dataset imported into a fresh store
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Import(ctx, sampleDataset()))

	// WHEN: a snapshot is read back
	ds, err := store.Dataset(ctx)
	require.NoError(t, err)

	// THEN: every record survives with its optional fields
	require.Len(t, ds.Branches, 2)
	require.Len(t, ds.Employees, 2)
	require.Len(t, ds.Users, 1)
	require.Len(t, ds.Requests, 3)
	require.Len(t, ds.Grants, 2)

	kim, ok := ds.Employee("e-1")
	require.True(t, ok)
	require.NotNil(t, kim.HireDate)
	assert.Equal(t, "2023-07-10", kim.HireDate.String())

	park, ok := ds.Employee("e-2")
	require.True(t, ok)
	assert.Nil(t, park.HireDate)
	assert.Empty(t, park.Email)

	half := ds.Requests[0]
	assert.Equal(t, "r-1", half.ID)
	assert.Equal(t, entitlement.HalfDayMorning, half.HalfDay)
	assert.Equal(t, "half_morning", half.ReasonType)
	assert.Equal(t, "반차", half.Type)

	g1 := ds.Grants[0]
	assert.Equal(t, 2.5, g1.GrantedDays.Float64())
	require.NotNil(t, g1.ExpiryDate)
	assert.Equal(t, "2024-12-31", g1.ExpiryDate.String())
	assert.Equal(t, "2023-12-20", g1.GrantedDate.String())
	assert.Nil(t, ds.Grants[1].ExpiryDate)
}

func TestStore_SnapshotFeedsEngine(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Import(ctx, sampleDataset()))

	ds, err := store.Dataset(ctx)
	require.NoError(t, err)
	engine := entitlement.NewEngine(ds)

	assert.Equal(t, entitlement.StandardFiscalYear, engine.ResolveAccrualStandard("e-1"))
	usage := engine.ComputeUsageSummary("e-1", 2024, entitlement.CategoryStatutory)
	assert.Equal(t, 0.5, usage.Used.Float64())
	assert.Equal(t, 3.0, usage.Pending.Float64())

	welfare := engine.ComputeWelfareLedger("e-1", date("2024-06-30"))
	assert.Equal(t, 3.5, welfare.TotalGranted.Float64())
	assert.Equal(t, 1.0, welfare.Used.Float64())
}

func TestStore_ImportIsUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Import(ctx, sampleDataset()))

	updated := sampleDataset()
	updated.Requests[1].Status = entitlement.StatusApproved
	require.NoError(t, store.Import(ctx, updated))

	ds, err := store.Dataset(ctx)
	require.NoError(t, err)
	require.Len(t, ds.Requests, 3)
	assert.Equal(t, entitlement.StatusApproved, ds.Requests[1].Status)
}

func TestStore_EmployeeDataset(t *testing.T) {
	// GIVEN: Kim files under e-1 and the linked user u-1, Park files nothing
	store := newTestStore(t)
	ctx := context.Background()
	ds := sampleDataset()
	ds.Requests = append(ds.Requests, entitlement.LeaveRequest{
		ID: "r-9", EmployeeRef: "e-2", StartDate: date("2024-01-02"), EndDate: date("2024-01-02"),
		Days: generic.Days(1), LeaveType: "vacation", Status: entitlement.StatusApproved,
	})
	require.NoError(t, store.Import(ctx, ds))

	// WHEN: Kim's slice is loaded
	kim, err := store.EmployeeDataset(ctx, "e-1")
	require.NoError(t, err)

	// THEN: it carries Kim's requests and grants only, and computes like the full snapshot
	require.Len(t, kim.Employees, 1)
	assert.Len(t, kim.Branches, 2)
	assert.Len(t, kim.Users, 1)
	assert.Len(t, kim.Requests, 3)
	assert.Len(t, kim.Grants, 2)

	full, err := store.Dataset(ctx)
	require.NoError(t, err)
	asOf := date("2024-06-30")
	want := entitlement.NewEngine(full).ComputeSnapshot("e-1", asOf)
	got := entitlement.NewEngine(kim).ComputeSnapshot("e-1", asOf)
	assert.Equal(t, want.Standard, got.Standard)
	assert.Equal(t, want.Earned.String(), got.Earned.String())
	assert.Equal(t, want.Used.String(), got.Used.String())
	assert.Equal(t, want.Pending.String(), got.Pending.String())
	assert.Equal(t, want.Welfare.Used.String(), got.Welfare.Used.String())
	assert.Equal(t, want.Welfare.Remaining.String(), got.Welfare.Remaining.String())

	park, err := store.EmployeeDataset(ctx, "e-2")
	require.NoError(t, err)
	require.Len(t, park.Requests, 1)
	assert.Empty(t, park.Grants)
	assert.Nil(t, park.Employees[0].HireDate)

	_, err = store.EmployeeDataset(ctx, "missing")
	assert.True(t, errors.Is(err, generic.ErrEntityNotFound))
}

func TestStore_KeepsReversedRangesAndReasonType(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Import(ctx, &entitlement.Dataset{
		Grants: []entitlement.WelfareGrant{
			{ID: "g-1", EmployeeID: "e-1", GrantedDays: generic.Days(1), EffectiveDate: date("2024-01-01")},
		},
		Requests: []entitlement.LeaveRequest{
			{ID: "r-1", EmployeeRef: "e-1", StartDate: date("2024-01-02"), EndDate: date("2024-01-01"),
				Days: generic.Days(1), ReasonType: "sick", Status: entitlement.StatusApproved},
		},
	}))

	ds, err := store.Dataset(ctx)
	require.NoError(t, err)
	require.Len(t, ds.Grants, 1)
	assert.True(t, ds.Grants[0].GrantedDate.IsZero())
	require.Len(t, ds.Requests, 1)
	assert.False(t, ds.Requests[0].Span().Valid(), "reversed ranges are stored as-is")
	assert.Equal(t, "sick", ds.Requests[0].ReasonType)
}

func TestStore_CorruptAmountIsAnError(t *testing.T) {
	// GIVEN: a request whose stored day count was damaged outside the store
	path := filepath.Join(t.TempDir(), "leave.db")
	store, err := sqlite.New(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	ctx := context.Background()
	require.NoError(t, store.Import(ctx, sampleDataset()))

	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer raw.Close()
	_, err = raw.Exec("UPDATE leave_requests SET days_value = 'two' WHERE id = 'r-2'")
	require.NoError(t, err)

	// WHEN: a snapshot is read
	_, err = store.Dataset(ctx)

	// THEN: the read fails naming the record instead of counting zero days
	var recErr *generic.RecordError
	require.True(t, errors.As(err, &recErr), "got %v", err)
	assert.Equal(t, "r-2", recErr.ID)
	assert.Equal(t, "days_value", recErr.Field)

	_, err = store.EmployeeDataset(ctx, "e-1")
	assert.True(t, errors.Is(err, generic.ErrInvalidRecord))
}

func TestStore_MigratesOlderSchema(t *testing.T) {
	// GIVEN: a database written before requests carried a reason type
	path := filepath.Join(t.TempDir(), "old.db")
	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = raw.Exec(`CREATE TABLE leave_requests (
		id TEXT PRIMARY KEY, employee_ref TEXT NOT NULL, start_date TEXT NOT NULL,
		end_date TEXT NOT NULL, days_value TEXT NOT NULL, leave_type TEXT, type TEXT,
		half_day TEXT, status TEXT NOT NULL, reason TEXT, created_at TEXT NOT NULL)`)
	require.NoError(t, err)
	_, err = raw.Exec(`INSERT INTO leave_requests VALUES
		('r-1', 'e-1', '2024-03-04', '2024-03-04', '1', 'vacation', NULL, NULL, 'approved', NULL, '2024-03-01T00:00:00Z')`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	// WHEN: the store opens it (twice, the second open is a no-op)
	for i := 0; i < 2; i++ {
		store, err := sqlite.New(path)
		require.NoError(t, err)
		require.NoError(t, store.Close())
	}
	store, err := sqlite.New(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	// THEN: old rows read back and new rows keep their reason type
	ctx := context.Background()
	require.NoError(t, store.Import(ctx, &entitlement.Dataset{Requests: []entitlement.LeaveRequest{
		{ID: "r-2", EmployeeRef: "e-1", StartDate: date("2024-04-01"), EndDate: date("2024-04-01"),
			Days: generic.Days(1), ReasonType: "personal", Status: entitlement.StatusApproved},
	}}))
	ds, err := store.Dataset(ctx)
	require.NoError(t, err)
	require.Len(t, ds.Requests, 2)
	assert.Empty(t, ds.Requests[0].ReasonType)
	assert.Equal(t, "personal", ds.Requests[1].ReasonType)
}

func TestStore_Reset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Import(ctx, sampleDataset()))
	require.NoError(t, store.Reset(ctx))

	ds, err := store.Dataset(ctx)
	require.NoError(t, err)
	assert.Empty(t, ds.Employees)
	assert.Empty(t, ds.Requests)
}
