package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/offday/leave-engine/entitlement"
)

const (
	sheetMonthly     = "Monthly"
	sheetDepartments = "Departments"
)

// WriteMonthlyXLSX writes a workbook with the monthly statistics and, when
// departments is non-empty, a per-department sheet.
func WriteMonthlyXLSX(w io.Writer, stats entitlement.MonthlyStats, departments []entitlement.DepartmentStat) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheetMonthly); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := setRow(f, sheetMonthly, 1, []any{"month", "days", "count"}); err != nil {
		return err
	}
	for i, m := range stats.Months {
		if err := setRow(f, sheetMonthly, i+2, []any{i + 1, m.Days.Float64(), m.Count}); err != nil {
			return err
		}
	}
	if err := setRow(f, sheetMonthly, 14, []any{"total", stats.TotalDays().Float64()}); err != nil {
		return err
	}

	if len(departments) > 0 {
		if _, err := f.NewSheet(sheetDepartments); err != nil {
			return fmt.Errorf("add sheet: %w", err)
		}
		header := []any{"department", "employees", "earned", "used", "remaining", "pending"}
		if err := setRow(f, sheetDepartments, 1, header); err != nil {
			return err
		}
		for i, d := range departments {
			row := []any{d.Department, d.Employees, d.Earned.Float64(), d.Used.Float64(), d.Remaining.Float64(), d.Pending}
			if err := setRow(f, sheetDepartments, i+2, row); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("%s row %d: %w", sheet, row, err)
	}
	return nil
}
