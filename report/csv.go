package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/offday/leave-engine/entitlement"
)

// WriteMonthlyCSV writes one row per month after the header.
func WriteMonthlyCSV(w io.Writer, stats entitlement.MonthlyStats) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(monthlyHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, m := range stats.Months {
		row := []string{strconv.Itoa(i + 1), formatDays(m.Days), strconv.Itoa(m.Count)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write month %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
