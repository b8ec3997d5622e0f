package entitlement

import (
	"log/slog"

	"github.com/offday/leave-engine/generic"
)

// =============================================================================
// POLICY RESOLVER
// =============================================================================

// Resolution is the single point where missing reference data is defaulted.
type Resolution struct {
	HireDate  *generic.TimePoint
	Standard  AccrualStandard
	Branch    *Branch
	Defaulted bool   // standard fell back to hire_date
	Reason    string // why it fell back, empty otherwise
}

// Calculator returns the accrual calculator for the resolved standard.
func (r Resolution) Calculator() Calculator {
	return CalculatorFor(r.Standard)
}

// Earned applies the resolved policy. A missing hire date yields the
// organizational default.
func (r Resolution) Earned(asOf generic.TimePoint) generic.Amount {
	if r.HireDate == nil {
		return generic.NewAmountFromInt(DefaultAnnualDays, generic.UnitDays)
	}
	return r.Calculator().Earned(*r.HireDate, asOf)
}

// PolicyResolver looks up an employee's branch standard. It never fails.
type PolicyResolver struct {
	branches []Branch
	logger   *slog.Logger
}

func NewPolicyResolver(branches []Branch, logger *slog.Logger) *PolicyResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &PolicyResolver{branches: branches, logger: logger}
}

func (p *PolicyResolver) Resolve(emp Employee) Resolution {
	res := Resolution{HireDate: emp.HireDate, Standard: StandardHireDate}

	if emp.HireDate == nil {
		p.logger.Warn("hire date missing, using default entitlement",
			"employee_id", emp.ID, "default_days", DefaultAnnualDays, "err", generic.ErrMissingReference)
	}

	branch, ok := findBranch(p.branches, emp.Branch)
	switch {
	case !ok:
		res.Defaulted = true
		res.Reason = "branch not found"
	case branch.AccrualStandard == StandardUnset:
		res.Branch = &branch
		res.Defaulted = true
		res.Reason = "branch has no accrual standard"
	case !branch.AccrualStandard.Known():
		res.Branch = &branch
		res.Defaulted = true
		res.Reason = "unknown accrual standard " + string(branch.AccrualStandard)
	default:
		res.Branch = &branch
		res.Standard = branch.AccrualStandard
	}

	if res.Defaulted {
		p.logger.Warn("accrual standard defaulted to hire_date",
			"employee_id", emp.ID, "branch", emp.Branch, "reason", res.Reason, "err", generic.ErrMissingReference)
	}
	return res
}
