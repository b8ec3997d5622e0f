/*
Package report renders engine results for download.

PURPOSE:
  Exports organization statistics and per-employee statements:
    MonthlyCSV       month, days, count (UTF-8 with BOM so spreadsheet apps
                     detect the encoding)
    MonthlyXLSX      workbook with a Monthly sheet and a Departments sheet
    StatementPDF     one-page entitlement statement for an employee

  Writers only format; every figure comes from the entitlement engine.

SEE ALSO:
  - entitlement/stats.go: MonthlyStats, DepartmentStats
  - api/handlers.go: ?format=csv|xlsx and /statement.pdf
*/
package report

import (
	"fmt"

	"github.com/offday/leave-engine/generic"
)

// Content types for HTTP responses.
const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF  = "application/pdf"
)

// utf8BOM prefixes CSV output.
const utf8BOM = "\uFEFF"

var monthlyHeader = []string{"month", "days", "count"}

// MonthlyFilename names a monthly export: leave-monthly-2024-all-all.csv
func MonthlyFilename(year int, branch, department, ext string) string {
	if branch == "" {
		branch = "all"
	}
	if department == "" {
		department = "all"
	}
	return fmt.Sprintf("leave-monthly-%d-%s-%s.%s", year, branch, department, ext)
}

func formatDays(a generic.Amount) string {
	return a.Value.String()
}
