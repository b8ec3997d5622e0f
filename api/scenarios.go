/*
scenarios.go - Demo datasets for testing and demonstrations

PURPOSE:
	Pre-built record sets that reproduce the reference calculations. Each
	scenario is written in the record codec's JSON shape and loaded through
	the same path as POST /api/import, so it doubles as a codec fixture.

AVAILABLE SCENARIOS:
	monthly-accrual:  hire-date employee before the first anniversary (5 days)
	anniversary:      hire-date employee after two anniversaries (15 days)
	fiscal-hire-year: fiscal-year branch, hire year accrual (5 days)
	welfare-expiry:   expired welfare grant with unused days (3 expired)
	month-split:      one request crossing a month boundary (2 + 2)
	organization:     small multi-branch organization for the statistics pages

USAGE VIA API:
	POST /api/scenarios/load
	{"scenario_id": "welfare-expiry"}

NOTE:
	Loading a scenario resets the source first. Only use in development/demo
	environments.

SEE ALSO:
  - handlers.go: Import handler shares the load path
  - factory/dataset.go: JSON record shape
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/offday/leave-engine/entitlement"
	"github.com/offday/leave-engine/factory"
)

// ScenarioDTO describes one demo dataset.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	AsOf        string `json:"as_of"`
}

type scenario struct {
	ScenarioDTO
	data factory.DatasetJSON
}

// resetter is implemented by stores that can be emptied.
type resetter interface {
	Reset(ctx context.Context) error
}

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []scenario{
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "monthly-accrual",
			Name:        "Monthly Accrual",
			Description: "Hire-date policy before the first anniversary: one day per completed month",
			AsOf:        "2023-06-15",
		},
		data: factory.DatasetJSON{
			Branches:  []factory.BranchJSON{{ID: "b-1", Name: "Main", LeaveCalculationStandard: "hire_date"}},
			Employees: []factory.EmployeeJSON{{ID: "e-1", Name: "New Hire", Branch: "b-1", HireDate: "2023-01-01"}},
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "anniversary",
			Name:        "Anniversary Tier",
			Description: "Hire-date policy after two completed years",
			AsOf:        "2024-01-01",
		},
		data: factory.DatasetJSON{
			Branches:  []factory.BranchJSON{{ID: "b-1", Name: "Main", LeaveCalculationStandard: "hire_date"}},
			Employees: []factory.EmployeeJSON{{ID: "e-1", Name: "Veteran", Branch: "b-1", HireDate: "2022-01-01"}},
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "fiscal-hire-year",
			Name:        "Fiscal Year, Hire Year",
			Description: "Fiscal-year branch, monthly accrual within the calendar year of hire",
			AsOf:        "2023-12-31",
		},
		data: factory.DatasetJSON{
			Branches:  []factory.BranchJSON{{ID: "b-1", Name: "HQ", LeaveCalculationStandard: "fiscal_year"}},
			Employees: []factory.EmployeeJSON{{ID: "e-1", Name: "Summer Hire", Branch: "HQ", HireDate: "2023-07-10"}},
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "welfare-expiry",
			Name:        "Welfare Grant Expiry",
			Description: "Five-day grant, two days used, queried after expiry",
			AsOf:        "2025-02-01",
		},
		data: factory.DatasetJSON{
			Branches:  []factory.BranchJSON{{ID: "b-1", Name: "Main"}},
			Employees: []factory.EmployeeJSON{{ID: "e-1", Name: "Grantee", Branch: "b-1", HireDate: "2020-03-02"}},
			LeaveRequests: []factory.LeaveRequestJSON{
				{ID: "r-1", EmployeeID: "e-1", LeaveType: "welfare-vacation", StartDate: "2024-10-31", EndDate: "2024-11-01", Days: 2, Status: "approved"},
			},
			WelfareGrants: []factory.WelfareGrantJSON{
				{ID: "g-1", EmployeeID: "e-1", GrantedDays: 5, EffectiveDate: "2024-01-01", ExpiryDate: "2024-12-31", GrantedBy: "hr", Reason: "long service"},
			},
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "month-split",
			Name:        "Month Split",
			Description: "Approved request from Jan 30 to Feb 2 split across two months",
			AsOf:        "2024-12-31",
		},
		data: factory.DatasetJSON{
			Branches:  []factory.BranchJSON{{ID: "b-1", Name: "Main", LeaveCalculationStandard: "hire_date"}},
			Employees: []factory.EmployeeJSON{{ID: "e-1", Name: "Traveller", Branch: "b-1", HireDate: "2021-05-01"}},
			LeaveRequests: []factory.LeaveRequestJSON{
				{ID: "r-1", EmployeeID: "e-1", LeaveType: "vacation", StartDate: "2024-01-30", EndDate: "2024-02-02", Days: 4, Status: "approved"},
			},
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "organization",
			Name:        "Organization",
			Description: "Three branches, both accrual standards, half days, welfare grants and a linked user account",
			AsOf:        "2024-06-30",
		},
		data: factory.DatasetJSON{
			Branches: []factory.BranchJSON{
				{ID: "b-seoul", Name: "Seoul HQ", LeaveCalculationStandard: "fiscal_year"},
				{ID: "b-busan", Name: "Busan", LeaveCalculationStandard: "hire_date"},
				{ID: "b-daegu", Name: "Daegu"},
			},
			Employees: []factory.EmployeeJSON{
				{ID: "e-1", Name: "Kim", Email: "kim@offday.test", Branch: "b-busan", Department: "Engineering", HireDate: "2022-01-01"},
				{ID: "e-2", Name: "Lee", Email: "lee@offday.test", Branch: "Seoul HQ", Department: "Sales", JoinDate: "2023-07-10"},
				{ID: "e-3", Name: "Park", Email: "park@offday.test", Branch: "b-daegu", Department: "Engineering"},
			},
			Users: []factory.UserJSON{{ID: "u-2", Email: "LEE@offday.test"}},
			LeaveRequests: []factory.LeaveRequestJSON{
				{ID: "r-1", EmployeeID: "e-1", LeaveType: "vacation", StartDate: "2024-01-30", EndDate: "2024-02-02", Days: 4, Status: "approved"},
				{ID: "r-2", EmployeeID: "e-1", LeaveType: "vacation", ReasonType: "half_morning", StartDate: "2024-03-04", EndDate: "2024-03-04", Days: 1, Status: "approved"},
				{ID: "r-3", EmployeeID: "e-1", LeaveType: "vacation", StartDate: "2024-05-10", EndDate: "2024-05-10", Days: 1, Status: "pending"},
				{ID: "r-4", EmployeeID: "u-2", LeaveType: "vacation", StartDate: "2024-02-05", EndDate: "2024-02-06", Days: 2, Status: "approved"},
				{ID: "r-5", EmployeeID: "e-2", LeaveType: "welfare-vacation", StartDate: "2024-03-11", EndDate: "2024-03-11", Days: 1, Status: "approved"},
			},
			WelfareGrants: []factory.WelfareGrantJSON{
				{ID: "g-1", EmployeeID: "e-2", GrantedDays: 3, EffectiveDate: "2024-01-01", ExpiryDate: "2024-12-31", GrantedBy: "hr"},
			},
		},
	},
}

func findScenario(id string) (scenario, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return scenario{}, false
}

// =============================================================================
// HANDLERS
// =============================================================================

// ListScenarios returns available scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	out := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		out[i] = s.ScenarioDTO
	}
	writeJSON(w, http.StatusOK, out)
}

// LoadScenario replaces the source's records with a predefined scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	s, ok := findScenario(req.ScenarioID)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", fmt.Errorf("scenario %q", req.ScenarioID))
		return
	}

	importer, ok := h.Source.(entitlement.Importer)
	if !ok {
		writeError(w, http.StatusNotImplemented, "Import not supported", nil)
		return
	}

	ds, err := h.Factory.FromJSON(s.data)
	if err != nil {
		h.internalError(w, fmt.Errorf("scenario %s: %w", s.ID, err))
		return
	}

	ctx := r.Context()
	if rs, ok := h.Source.(resetter); ok {
		if err := rs.Reset(ctx); err != nil {
			h.internalError(w, fmt.Errorf("reset: %w", err))
			return
		}
	}
	if err := importer.Import(ctx, ds); err != nil {
		h.internalError(w, err)
		return
	}

	h.logger.Info("scenario loaded", "scenario", s.ID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": s.ID, "as_of": s.AsOf})
}
