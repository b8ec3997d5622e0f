package report_test

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/offday/leave-engine/entitlement"
	"github.com/offday/leave-engine/generic"
	"github.com/offday/leave-engine/report"
)

func sampleStats() entitlement.MonthlyStats {
	s := entitlement.MonthlyStats{Year: 2024}
	s.Months[0] = entitlement.MonthStat{Days: generic.Days(4), Count: 1}
	s.Months[1] = entitlement.MonthStat{Days: generic.Days(3), Count: 2}
	s.Months[2] = entitlement.MonthStat{Days: generic.Days(1.5), Count: 2}
	return s
}

func TestWriteMonthlyCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteMonthlyCSV(&buf, sampleStats()))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "\uFEFF"), "csv must start with a BOM")

	rows, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(out, "\uFEFF"))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 13)
	assert.Equal(t, []string{"month", "days", "count"}, rows[0])
	assert.Equal(t, []string{"1", "4", "1"}, rows[1])
	assert.Equal(t, []string{"3", "1.5", "2"}, rows[3])
	assert.Equal(t, []string{"12", "0", "0"}, rows[12])
}

func TestWriteMonthlyXLSX(t *testing.T) {
	departments := []entitlement.DepartmentStat{
		{Department: "Engineering", Employees: 2, Earned: generic.Days(30), Used: generic.Days(4.5), Remaining: generic.Days(25.5), Pending: 1},
	}

	var buf bytes.Buffer
	require.NoError(t, report.WriteMonthlyXLSX(&buf, sampleStats(), departments))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Monthly", "Departments"}, f.GetSheetList())

	rows, err := f.GetRows("Monthly")
	require.NoError(t, err)
	require.Len(t, rows, 14)
	assert.Equal(t, []string{"month", "days", "count"}, rows[0])
	assert.Equal(t, []string{"3", "1.5", "2"}, rows[3])
	assert.Equal(t, []string{"total", "8.5"}, rows[13])

	deps, err := f.GetRows("Departments")
	require.NoError(t, err)
	require.Len(t, deps, 2)
	assert.Equal(t, []string{"Engineering", "2", "30", "4.5", "25.5", "1"}, deps[1])
}

func TestWriteMonthlyXLSX_NoDepartments(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteMonthlyXLSX(&buf, sampleStats(), nil))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Monthly"}, f.GetSheetList())
}

func TestWriteStatementPDF(t *testing.T) {
	hire := generic.MustParseDate("2023-07-10")
	emp := entitlement.Employee{ID: "e-2", Name: "Lee", Department: "Sales", HireDate: &hire}
	snap := entitlement.EntitlementSnapshot{
		EmployeeID: "e-2",
		AsOf:       generic.MustParseDate("2024-06-30"),
		Standard:   entitlement.StandardFiscalYear,
		Earned:     generic.Days(13),
		Used:       generic.Days(2),
		Pending:    generic.ZeroDays(),
		Remaining:  generic.Days(11),
		Welfare: entitlement.WelfareSnapshot{
			TotalGranted: generic.Days(3),
			Used:         generic.Days(1),
			Expired:      generic.ZeroDays(),
			Remaining:    generic.Days(2),
			Grants: []entitlement.GrantDetail{{
				Grant:  entitlement.WelfareGrant{ID: "g-1", GrantedDays: generic.Days(3), EffectiveDate: generic.MustParseDate("2024-01-01")},
				Status: entitlement.GrantActive,
			}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, report.WriteStatementPDF(&buf, emp, snap))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestWriteStatementPDF_NonLatinName(t *testing.T) {
	emp := entitlement.Employee{ID: "e-9", Name: "김민수"}
	var buf bytes.Buffer
	require.NoError(t, report.WriteStatementPDF(&buf, emp, entitlement.EntitlementSnapshot{EmployeeID: "e-9"}))
	assert.NotZero(t, buf.Len())
}

func TestMonthlyFilename(t *testing.T) {
	assert.Equal(t, "leave-monthly-2024-all-all.csv", report.MonthlyFilename(2024, "", "", "csv"))
	assert.Equal(t, "leave-monthly-2024-b-seoul-Sales.xlsx", report.MonthlyFilename(2024, "b-seoul", "Sales", "xlsx"))
}
