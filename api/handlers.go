/*
handlers.go - HTTP API handlers for the leave entitlement engine

PURPOSE:
  Exposes the entitlement engine via REST API. Handles HTTP request/response,
  query parsing and JSON serialization, and delegates every figure to
  entitlement.Engine built over a fresh snapshot of the record source.

ENDPOINTS:
  Employees:
    GET    /api/employees                        List with earned/remaining
    GET    /api/employees/{id}                   Entitlement snapshot
    GET    /api/employees/{id}/accrual-standard  Resolved accrual standard
    GET    /api/employees/{id}/earned            Statutory days earned
    GET    /api/employees/{id}/usage             Usage summary
    GET    /api/employees/{id}/welfare           Welfare ledger
    GET    /api/employees/{id}/monthly           Monthly breakdown
    GET    /api/employees/{id}/usage-pattern     Approved days by reason
    GET    /api/employees/{id}/statement.pdf     Statement download

  Statistics:
    GET    /api/statistics/overview
    GET    /api/statistics/monthly               ?format=json|csv|xlsx
    GET    /api/statistics/departments

  Records:
    POST   /api/import                           Load a JSON dataset

QUERY PARAMETERS:
  as_of     YYYY-MM-DD, default today
  year      four digits, default as_of's year
  category  statutory | welfare, default statutory
  from, to  YYYY-MM-DD, inclusive

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid query parameters or malformed import body
  - 404: Unknown employee
  - 501: Import against a read-only source
  - 500: Record source failures

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Response data structures
  - server.go: Router setup and middleware
  - report/: CSV, XLSX and PDF renderers
*/
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/offday/leave-engine/entitlement"
	"github.com/offday/leave-engine/factory"
	"github.com/offday/leave-engine/generic"
	"github.com/offday/leave-engine/report"
)

// maxImportBytes bounds POST /api/import bodies.
const maxImportBytes = 16 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Source  entitlement.Source
	Factory *factory.DatasetFactory

	// Today supplies the default as-of date.
	Today func() generic.TimePoint

	logger *slog.Logger
}

// NewHandler creates a handler reading records from src.
func NewHandler(src entitlement.Source, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Source:  src,
		Factory: factory.NewDatasetFactory(),
		Today:   generic.Today,
		logger:  logger,
	}
}

// engine builds an engine over a fresh snapshot.
func (h *Handler) engine(r *http.Request) (*entitlement.Engine, error) {
	ds, err := h.Source.Dataset(r.Context())
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	return entitlement.NewEngine(ds, entitlement.WithLogger(h.logger)), nil
}

// employeeEngine resolves {id} and builds an engine over that employee's
// records. Sources implementing entitlement.EmployeeSource load only the
// employee's slice. It writes the error response itself.
func (h *Handler) employeeEngine(w http.ResponseWriter, r *http.Request) (*entitlement.Engine, entitlement.Employee, bool) {
	id := chi.URLParam(r, "id")
	ds, err := h.employeeDataset(r, id)
	if err != nil {
		if generic.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Employee not found", err)
			return nil, entitlement.Employee{}, false
		}
		h.internalError(w, err)
		return nil, entitlement.Employee{}, false
	}
	emp, ok := ds.Employee(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Employee not found", fmt.Errorf("%s: %w", id, generic.ErrEntityNotFound))
		return nil, entitlement.Employee{}, false
	}
	return entitlement.NewEngine(ds, entitlement.WithLogger(h.logger)), emp, true
}

func (h *Handler) employeeDataset(r *http.Request, id string) (*entitlement.Dataset, error) {
	if src, ok := h.Source.(entitlement.EmployeeSource); ok {
		ds, err := src.EmployeeDataset(r.Context(), id)
		if err != nil && !generic.IsNotFound(err) {
			return nil, fmt.Errorf("load records of %s: %w", id, err)
		}
		return ds, err
	}
	ds, err := h.Source.Dataset(r.Context())
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	return ds, nil
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees with their entitlement as of today.
// GET /api/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	eng, err := h.engine(r)
	if err != nil {
		h.internalError(w, err)
		return
	}
	asOf, err := h.asOfParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of", err)
		return
	}

	employees := eng.Dataset().Employees
	dtos := make([]EmployeeDTO, 0, len(employees))
	for _, e := range employees {
		snap := eng.ComputeSnapshot(e.ID, asOf)
		dtos = append(dtos, EmployeeDTO{
			ID:              e.ID,
			Name:            e.Name,
			Email:           e.Email,
			Branch:          e.Branch,
			Department:      e.Department,
			HireDate:        optionalDate(e.HireDate),
			AccrualStandard: string(snap.Standard),
			Earned:          snap.Earned.Float64(),
			Remaining:       snap.Remaining.Float64(),
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetSnapshot returns earned, used, pending, remaining and the welfare ledger.
// GET /api/employees/{id}?as_of=
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.asOfParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of", err)
		return
	}
	eng, emp, ok := h.employeeEngine(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotDTO(eng.ComputeSnapshot(emp.ID, asOf)))
}

// GetAccrualStandard reports which policy governs the employee and why.
// GET /api/employees/{id}/accrual-standard
func (h *Handler) GetAccrualStandard(w http.ResponseWriter, r *http.Request) {
	eng, emp, ok := h.employeeEngine(w, r)
	if !ok {
		return
	}
	res := eng.Resolve(emp.ID)
	dto := AccrualStandardDTO{
		EmployeeID: emp.ID,
		Standard:   string(res.Standard),
		Defaulted:  res.Defaulted,
		Reason:     res.Reason,
	}
	if res.Branch != nil {
		dto.Branch = res.Branch.ID
	}
	writeJSON(w, http.StatusOK, dto)
}

// GetEarned returns statutory days earned.
// GET /api/employees/{id}/earned?as_of=
func (h *Handler) GetEarned(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.asOfParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of", err)
		return
	}
	eng, emp, ok := h.employeeEngine(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, EarnedDTO{
		EmployeeID: emp.ID,
		AsOf:       asOf.String(),
		Standard:   string(eng.ResolveAccrualStandard(emp.ID)),
		Earned:     eng.ComputeEarnedDays(emp.ID, asOf).Float64(),
	})
}

// GetUsage summarizes used and pending days for a year or an explicit range.
// GET /api/employees/{id}/usage?year=&category= or ?from=&to=&category=
func (h *Handler) GetUsage(w http.ResponseWriter, r *http.Request) {
	category, err := categoryParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid category", err)
		return
	}
	period, err := h.periodParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}
	eng, emp, ok := h.employeeEngine(w, r)
	if !ok {
		return
	}

	sum := eng.ComputeUsageSummaryInRange(emp.ID, period, category)
	writeJSON(w, http.StatusOK, UsageDTO{
		EmployeeID:  emp.ID,
		Category:    string(sum.Category),
		From:        sum.Period.Start.String(),
		To:          sum.Period.End.String(),
		Used:        sum.Used.Float64(),
		Pending:     sum.Pending.Float64(),
		Requests:    sum.Requests,
		Diagnostics: toDiagnosticsDTO(sum.Diagnostics),
	})
}

// GetWelfare returns the welfare ledger with per-grant detail.
// GET /api/employees/{id}/welfare?as_of=
func (h *Handler) GetWelfare(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.asOfParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of", err)
		return
	}
	eng, emp, ok := h.employeeEngine(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toWelfareDTO(eng.ComputeWelfareLedger(emp.ID, asOf)))
}

// GetMonthly returns approved days per calendar month.
// GET /api/employees/{id}/monthly?year=&category=
func (h *Handler) GetMonthly(w http.ResponseWriter, r *http.Request) {
	category, err := categoryParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid category", err)
		return
	}
	year, err := h.yearParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	eng, emp, ok := h.employeeEngine(w, r)
	if !ok {
		return
	}

	b := eng.ComputeMonthlyBreakdown(emp.ID, year, category)
	dto := MonthlyBreakdownDTO{
		EmployeeID:  emp.ID,
		Year:        b.Year,
		Category:    string(b.Category),
		Months:      make([]float64, 12),
		Total:       b.Total().Float64(),
		Diagnostics: toDiagnosticsDTO(b.Diagnostics),
	}
	for i, m := range b.Months {
		dto.Months[i] = m.Float64()
	}
	writeJSON(w, http.StatusOK, dto)
}

// GetUsagePattern breaks the year's approved leave down by reason.
// GET /api/employees/{id}/usage-pattern?year=
func (h *Handler) GetUsagePattern(w http.ResponseWriter, r *http.Request) {
	year, err := h.yearParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	eng, emp, ok := h.employeeEngine(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toUsagePatternDTO(emp.ID, eng.UsagePattern(emp.ID, year)))
}

// GetStatement renders the entitlement statement as PDF.
// GET /api/employees/{id}/statement.pdf?as_of=
func (h *Handler) GetStatement(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.asOfParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of", err)
		return
	}
	eng, emp, ok := h.employeeEngine(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := report.WriteStatementPDF(&buf, emp, eng.ComputeSnapshot(emp.ID, asOf)); err != nil {
		h.internalError(w, err)
		return
	}
	filename := fmt.Sprintf("statement-%s-%s.pdf", emp.ID, asOf)
	writeFile(w, report.ContentTypePDF, filename, buf.Bytes())
}

// =============================================================================
// STATISTICS HANDLERS
// =============================================================================

// GetOverview returns head count, totals and usage rate.
// GET /api/statistics/overview?as_of=&branch=&department=
func (h *Handler) GetOverview(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.asOfParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of", err)
		return
	}
	filter, err := filterParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter", err)
		return
	}
	eng, err := h.engine(r)
	if err != nil {
		h.internalError(w, err)
		return
	}

	o := eng.Overview(asOf, filter)
	writeJSON(w, http.StatusOK, OverviewDTO{
		AsOf:        o.AsOf.String(),
		Employees:   o.Employees,
		TotalEarned: o.TotalEarned.Float64(),
		TotalUsed:   o.TotalUsed.Float64(),
		UsageRate:   o.UsageRate,
	})
}

// GetMonthlyStats returns month-by-month usage as JSON, CSV or XLSX.
// GET /api/statistics/monthly?year=&branch=&department=&from=&to=&format=
func (h *Handler) GetMonthlyStats(w http.ResponseWriter, r *http.Request) {
	year, err := h.yearParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	filter, err := filterParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter", err)
		return
	}
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format != "" && format != "json" && format != "csv" && format != "xlsx" {
		writeError(w, http.StatusBadRequest, "Invalid format", fmt.Errorf("unsupported format %q", format))
		return
	}
	eng, err := h.engine(r)
	if err != nil {
		h.internalError(w, err)
		return
	}

	stats := eng.MonthlyStats(year, filter)
	filename := report.MonthlyFilename(year, safeName(filter.Branch), safeName(filter.Department), format)

	var buf bytes.Buffer
	switch format {
	case "csv":
		if err := report.WriteMonthlyCSV(&buf, stats); err != nil {
			h.internalError(w, err)
			return
		}
		writeFile(w, report.ContentTypeCSV, filename, buf.Bytes())
	case "xlsx":
		asOf := generic.EndOfYear(year)
		if err := report.WriteMonthlyXLSX(&buf, stats, eng.DepartmentStats(year, asOf)); err != nil {
			h.internalError(w, err)
			return
		}
		writeFile(w, report.ContentTypeXLSX, filename, buf.Bytes())
	default:
		writeJSON(w, http.StatusOK, toMonthlyStatsDTO(stats))
	}
}

// GetDepartmentStats returns per-department totals.
// GET /api/statistics/departments?year=&as_of=
func (h *Handler) GetDepartmentStats(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.asOfParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of", err)
		return
	}
	year := asOf.Year()
	if r.URL.Query().Get("year") != "" {
		if year, err = h.yearParam(r); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
	}
	eng, err := h.engine(r)
	if err != nil {
		h.internalError(w, err)
		return
	}

	stats := eng.DepartmentStats(year, asOf)
	dtos := make([]DepartmentDTO, 0, len(stats))
	for _, d := range stats {
		dtos = append(dtos, DepartmentDTO{
			Department: d.Department,
			Employees:  d.Employees,
			Earned:     d.Earned.Float64(),
			Used:       d.Used.Float64(),
			Pending:    d.Pending,
			Remaining:  d.Remaining.Float64(),
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// IMPORT
// =============================================================================

// Import loads a JSON dataset into the source.
// POST /api/import
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	importer, ok := h.Source.(entitlement.Importer)
	if !ok {
		writeError(w, http.StatusNotImplemented, "Import not supported", generic.ErrImportUnsupported)
		return
	}

	ds, err := h.Factory.Decode(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		if !generic.IsClientError(err) {
			h.internalError(w, err)
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid dataset", err)
		return
	}
	if err := importer.Import(r.Context(), ds); err != nil {
		h.internalError(w, err)
		return
	}

	h.logger.Info("dataset imported",
		"employees", len(ds.Employees),
		"requests", len(ds.Requests),
		"grants", len(ds.Grants),
	)
	writeJSON(w, http.StatusOK, importCounts(ds))
}

func importCounts(ds *entitlement.Dataset) ImportResponse {
	return ImportResponse{
		Branches:  len(ds.Branches),
		Employees: len(ds.Employees),
		Users:     len(ds.Users),
		Requests:  len(ds.Requests),
		Grants:    len(ds.Grants),
	}
}

// =============================================================================
// QUERY PARAMETERS
// =============================================================================

func (h *Handler) asOfParam(r *http.Request) (generic.TimePoint, error) {
	s := r.URL.Query().Get("as_of")
	if s == "" {
		return h.Today(), nil
	}
	return generic.ParseDate(s)
}

// yearParam defaults to the as_of year.
func (h *Handler) yearParam(r *http.Request) (int, error) {
	s := r.URL.Query().Get("year")
	if s == "" {
		asOf, err := h.asOfParam(r)
		if err != nil {
			return 0, err
		}
		return asOf.Year(), nil
	}
	year, err := strconv.Atoi(s)
	if err != nil || year < 1900 || year > 9999 {
		return 0, fmt.Errorf("year %q: expected four digits", s)
	}
	return year, nil
}

// periodParam reads from/to when either is set, else the year.
func (h *Handler) periodParam(r *http.Request) (generic.Period, error) {
	q := r.URL.Query()
	if q.Get("from") == "" && q.Get("to") == "" {
		year, err := h.yearParam(r)
		if err != nil {
			return generic.Period{}, err
		}
		return generic.YearPeriod(year), nil
	}
	from, err := generic.ParseDate(q.Get("from"))
	if err != nil {
		return generic.Period{}, fmt.Errorf("from: %w", err)
	}
	to, err := generic.ParseDate(q.Get("to"))
	if err != nil {
		return generic.Period{}, fmt.Errorf("to: %w", err)
	}
	p := generic.Period{Start: from, End: to}
	if err := p.Validate(); err != nil {
		return generic.Period{}, err
	}
	return p, nil
}

func categoryParam(r *http.Request) (entitlement.Category, error) {
	s := r.URL.Query().Get("category")
	c, ok := entitlement.ParseCategory(s)
	if !ok {
		return "", fmt.Errorf("category %q: expected statutory or welfare", s)
	}
	return c, nil
}

func filterParam(r *http.Request) (entitlement.StatsFilter, error) {
	q := r.URL.Query()
	f := entitlement.StatsFilter{
		Branch:     allToEmpty(q.Get("branch")),
		Department: allToEmpty(q.Get("department")),
	}
	if s := q.Get("from"); s != "" {
		from, err := generic.ParseDate(s)
		if err != nil {
			return f, fmt.Errorf("from: %w", err)
		}
		f.From = &from
	}
	if s := q.Get("to"); s != "" {
		to, err := generic.ParseDate(s)
		if err != nil {
			return f, fmt.Errorf("to: %w", err)
		}
		f.To = &to
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return f, generic.ErrInvalidPeriod
	}
	return f, nil
}

// allToEmpty maps the dashboard's "all" selector to no filter.
func allToEmpty(s string) string {
	if strings.EqualFold(strings.TrimSpace(s), "all") {
		return ""
	}
	return s
}

// safeName keeps filter values usable in a Content-Disposition filename.
func safeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, strings.TrimSpace(s))
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func writeFile(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (h *Handler) internalError(w http.ResponseWriter, err error) {
	h.logger.Error("request failed", "err", err)
	status := http.StatusInternalServerError
	if generic.IsNotFound(err) {
		status = http.StatusNotFound
	}
	writeError(w, status, "Internal error", err)
}
