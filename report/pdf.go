package report

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/offday/leave-engine/entitlement"
	"github.com/offday/leave-engine/generic"
)

// WriteStatementPDF renders one employee's entitlement statement.
func WriteStatementPDF(w io.Writer, emp entitlement.Employee, snap entitlement.EntitlementSnapshot) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Leave Entitlement Statement")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	line := func(format string, args ...any) {
		pdf.Cell(0, 8, tr(fmt.Sprintf(format, args...)))
		pdf.Ln(7)
	}

	line("Employee: %s (%s)", emp.Name, emp.ID)
	if emp.Department != "" {
		line("Department: %s", emp.Department)
	}
	if emp.HireDate != nil {
		line("Hire date: %s", emp.HireDate.String())
	} else {
		line("Hire date: unknown (default entitlement applied)")
	}
	line("As of: %s", snap.AsOf.String())
	line("Accrual standard: %s", snap.Standard)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Statutory leave")
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 12)
	line("Earned: %s days", days(snap.Earned))
	line("Used: %s days", days(snap.Used))
	line("Pending: %s days", days(snap.Pending))
	line("Remaining: %s days", days(snap.Remaining))
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Welfare leave")
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 12)
	wf := snap.Welfare
	line("Granted: %s days", days(wf.TotalGranted))
	line("Used: %s days", days(wf.Used))
	line("Expired: %s days", days(wf.Expired))
	line("Remaining: %s days", days(wf.Remaining))
	for _, g := range wf.Grants {
		expiry := "no expiry"
		if g.Grant.ExpiryDate != nil {
			expiry = "until " + g.Grant.ExpiryDate.String()
		}
		line("  %s: %s days from %s, %s [%s]", g.Grant.ID, days(g.Grant.GrantedDays), g.Grant.EffectiveDate, expiry, g.Status)
	}

	return pdf.Output(w)
}

func days(a generic.Amount) string {
	return a.Value.StringFixed(1)
}
