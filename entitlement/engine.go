/*
engine.go - Entitlement facade

PURPOSE:
  The single entry point consumers call. An Engine wraps one immutable
  Dataset and answers per-employee questions:

    ResolveAccrualStandard   which policy applies
    ComputeEarnedDays        statutory days earned as of a date
    ComputeUsageSummary      used / pending for a year and category
    ComputeWelfareLedger     welfare grants, usage and expiry
    ComputeMonthlyBreakdown  approved days per month
    UsagePattern             approved days per reason bucket
    ComputeSnapshot          all of the above for one as-of date

FAILURE SEMANTICS:
  No method returns an error. Unknown employees resolve to the documented
  defaults (15 earned, nothing used) and are logged. Skipped records are
  reported through Diagnostics and logged at warn level.

CONCURRENCY:
  The engine holds no mutable state; one Engine may serve many goroutines.
  Callers build a new Engine per snapshot to observe new records.

SEE ALSO:
  - policies.go, accrual.go, usage.go, ledger.go
  - stats.go: organization-wide figures over the same dataset
*/
package entitlement

import (
	"log/slog"

	"github.com/offday/leave-engine/generic"
)

// Engine computes entitlement figures over one dataset snapshot.
type Engine struct {
	data     *Dataset
	resolver *PolicyResolver
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for resolver defaults and skipped records.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine wraps ds. A nil dataset behaves as an empty one.
func NewEngine(ds *Dataset, opts ...Option) *Engine {
	if ds == nil {
		ds = &Dataset{}
	}
	e := &Engine{data: ds, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	e.resolver = NewPolicyResolver(ds.Branches, e.logger)
	return e
}

// Dataset exposes the snapshot the engine reads. Callers must not mutate it.
func (e *Engine) Dataset() *Dataset { return e.data }

// employee looks up id, falling back to a bare record for unknown ids.
func (e *Engine) employee(id string) Employee {
	emp, ok := e.data.Employee(id)
	if !ok {
		e.logger.Warn("employee not found, using defaults", "employee_id", id, "err", generic.ErrEntityNotFound)
		return Employee{ID: id}
	}
	return emp
}

func (e *Engine) identities(emp Employee) IdentitySet {
	return IdentitiesFor(emp, e.data.Users)
}

// =============================================================================
// CALL CONTRACTS
// =============================================================================

// ResolveAccrualStandard returns hire_date or fiscal_year for the employee.
func (e *Engine) ResolveAccrualStandard(employeeID string) AccrualStandard {
	return e.resolver.Resolve(e.employee(employeeID)).Standard
}

// Resolve exposes the full policy resolution for an employee.
func (e *Engine) Resolve(employeeID string) Resolution {
	return e.resolver.Resolve(e.employee(employeeID))
}

// ComputeEarnedDays returns statutory days earned as of asOf.
func (e *Engine) ComputeEarnedDays(employeeID string, asOf generic.TimePoint) generic.Amount {
	return e.resolver.Resolve(e.employee(employeeID)).Earned(asOf)
}

// ComputeUsageSummary aggregates the calendar year.
func (e *Engine) ComputeUsageSummary(employeeID string, year int, category Category) UsageSummary {
	return e.ComputeUsageSummaryInRange(employeeID, generic.YearPeriod(year), category)
}

// ComputeUsageSummaryInRange aggregates an explicit inclusive period.
func (e *Engine) ComputeUsageSummaryInRange(employeeID string, period generic.Period, category Category) UsageSummary {
	emp := e.employee(employeeID)
	sum := Summarize(e.data.Requests, e.identities(emp), period, category)
	e.logDiagnostics("usage", employeeID, sum.Diagnostics)
	return sum
}

// ComputeWelfareLedger returns the welfare snapshot as of asOf.
func (e *Engine) ComputeWelfareLedger(employeeID string, asOf generic.TimePoint) WelfareSnapshot {
	emp := e.employee(employeeID)
	snap := Ledger(e.data.GrantsFor(emp.ID), e.data.Requests, e.identities(emp), asOf)
	e.logDiagnostics("welfare", employeeID, snap.Diagnostics)
	return snap
}

// ComputeMonthlyBreakdown returns approved days per month of year.
func (e *Engine) ComputeMonthlyBreakdown(employeeID string, year int, category Category) MonthlyBreakdown {
	emp := e.employee(employeeID)
	out := Monthly(e.data.Requests, e.identities(emp), year, category)
	e.logDiagnostics("monthly", employeeID, out.Diagnostics)
	return out
}

// UsagePattern buckets the employee's approved days of year by reason.
func (e *Engine) UsagePattern(employeeID string, year int) UsagePattern {
	emp := e.employee(employeeID)
	p := Pattern(e.data.Requests, e.identities(emp), year)
	e.logDiagnostics("pattern", employeeID, p.Diagnostics)
	return p
}

// ComputeSnapshot combines earned, statutory usage for asOf's year and the
// welfare ledger. Remaining = max(earned - used - pending, 0).
func (e *Engine) ComputeSnapshot(employeeID string, asOf generic.TimePoint) EntitlementSnapshot {
	emp := e.employee(employeeID)
	res := e.resolver.Resolve(emp)
	ids := e.identities(emp)

	earned := res.Earned(asOf)
	usage := Summarize(e.data.Requests, ids, generic.YearPeriod(asOf.Year()), CategoryStatutory)
	welfare := Ledger(e.data.GrantsFor(emp.ID), e.data.Requests, ids, asOf)

	e.logDiagnostics("usage", employeeID, usage.Diagnostics)
	e.logDiagnostics("welfare", employeeID, welfare.Diagnostics)

	return EntitlementSnapshot{
		EmployeeID: employeeID,
		AsOf:       asOf,
		Standard:   res.Standard,
		Earned:     earned,
		Used:       usage.Used,
		Pending:    usage.Pending,
		Remaining:  earned.Sub(usage.Used).Sub(usage.Pending).FloorZero(),
		Welfare:    welfare,
	}
}

func (e *Engine) logDiagnostics(op, employeeID string, d Diagnostics) {
	if d.Empty() {
		return
	}
	attrs := []any{
		"op", op,
		"employee_id", employeeID,
		"invalid_range", d.InvalidRange,
		"unmatched", d.Unmatched,
	}
	if len(d.Samples) > 0 {
		attrs = append(attrs, "err", d.Samples[0])
	}
	e.logger.Warn("records skipped", attrs...)
}
