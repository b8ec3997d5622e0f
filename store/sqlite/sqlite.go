/*
Package sqlite provides a SQLite-backed record store for the leave engine.

PURPOSE:
  Persists the records the engine reads (branches, employees, users, the
  leave-request log and welfare grants) and hands out consistent snapshots.
  Implements entitlement.Source, entitlement.EmployeeSource and
  entitlement.Importer.

KEY TABLES:
  branches:        Branch names and their accrual standard
  employees:       Directory records (hire_date nullable)
  users:           Login identities linked to employees by email
  leave_requests:  The leave-request log (employee_ref = employee or user id)
  welfare_grants:  Time-bounded welfare allotments

INDEXES:
  - idx_requests_ref_start: per-employee usage lookups (hot path)
  - idx_grants_employee:    welfare ledger lookups

SNAPSHOTS:
  Dataset() reads every table inside one transaction so the engine never sees
  a half-applied Import. EmployeeDataset() does the same for one employee,
  reading only the requests and grants filed under that employee. Amounts are
  stored as decimal strings; a stored amount that does not parse fails the
  read with a RecordError.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of a single connection, which
  also keeps ":memory:" databases alive across calls.

USAGE:
  store, err := sqlite.New("./data/leave.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  ds, err := store.Dataset(ctx)
  engine := entitlement.NewEngine(ds)

SEE ALSO:
  - store/memory: in-memory implementation for tests and seeding
  - factory/dataset.go: JSON records imported through Import
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/offday/leave-engine/entitlement"
	"github.com/offday/leave-engine/generic"
)

// Store implements entitlement.Source and entitlement.Importer using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	_ entitlement.Source         = (*Store)(nil)
	_ entitlement.EmployeeSource = (*Store)(nil)
	_ entitlement.Importer       = (*Store)(nil)
)

// execQuerier is satisfied by *sql.DB and *sql.Tx.
type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS branches (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		accrual_standard TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		branch TEXT,
		department TEXT,
		hire_date TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_users_email
		ON users(email COLLATE NOCASE);

	-- Leave-request log. employee_ref holds an employee id or a user id.
	CREATE TABLE IF NOT EXISTS leave_requests (
		id TEXT PRIMARY KEY,
		employee_ref TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		days_value TEXT NOT NULL,
		leave_type TEXT,
		type TEXT,
		reason_type TEXT,
		half_day TEXT,
		status TEXT NOT NULL,
		reason TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_requests_ref_start
		ON leave_requests(employee_ref, start_date);

	CREATE TABLE IF NOT EXISTS welfare_grants (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		granted_days TEXT NOT NULL,
		effective_date TEXT NOT NULL,
		expiry_date TEXT,
		granted_date TEXT,
		granted_by TEXT,
		reason TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_grants_employee
		ON welfare_grants(employee_id);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return s.addColumn("leave_requests", "reason_type", "TEXT")
}

// addColumn adds a column missing from a database created by an older schema.
func (s *Store) addColumn(table, column, decl string) error {
	rows, err := s.db.Query("SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		if name == column {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()
	_, err = s.db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, decl))
	return err
}

// =============================================================================
// SNAPSHOT / IMPORT
// =============================================================================

// Dataset reads every record inside one transaction.
func (s *Store) Dataset(ctx context.Context) (*entitlement.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin snapshot: %w", err)
	}
	defer tx.Rollback()

	ds := &entitlement.Dataset{}
	if ds.Branches, err = listBranches(ctx, tx); err != nil {
		return nil, err
	}
	if ds.Employees, err = listEmployees(ctx, tx); err != nil {
		return nil, err
	}
	if ds.Users, err = listUsers(ctx, tx); err != nil {
		return nil, err
	}
	if ds.Requests, err = queryRequests(ctx, tx, requestSelect+" ORDER BY start_date, id"); err != nil {
		return nil, err
	}
	if ds.Grants, err = queryGrants(ctx, tx, grantSelect+" ORDER BY effective_date, id"); err != nil {
		return nil, err
	}
	return ds, tx.Commit()
}

// EmployeeDataset reads one employee's slice of the records inside one
// transaction. Requests are looked up by the employee id and every linked
// user id.
func (s *Store) EmployeeDataset(ctx context.Context, employeeID string) (*entitlement.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin snapshot: %w", err)
	}
	defer tx.Rollback()

	emp, err := getEmployee(ctx, tx, employeeID)
	if err != nil {
		return nil, err
	}
	ds := &entitlement.Dataset{Employees: []entitlement.Employee{emp}}
	if ds.Branches, err = listBranches(ctx, tx); err != nil {
		return nil, err
	}
	if ds.Users, err = listUsers(ctx, tx); err != nil {
		return nil, err
	}
	refs := make([]string, 0, 2)
	for id := range entitlement.IdentitiesFor(emp, ds.Users) {
		refs = append(refs, id)
	}
	if ds.Requests, err = requestsByRef(ctx, tx, refs); err != nil {
		return nil, err
	}
	if ds.Grants, err = grantsByEmployee(ctx, tx, emp.ID); err != nil {
		return nil, err
	}
	return ds, tx.Commit()
}

// Import upserts every record of ds in one transaction.
func (s *Store) Import(ctx context.Context, ds *entitlement.Dataset) error {
	if ds == nil {
		return nil
	}
	return s.withTx(ctx, func(tx execQuerier) error {
		for _, b := range ds.Branches {
			if err := saveBranch(ctx, tx, b); err != nil {
				return err
			}
		}
		for _, e := range ds.Employees {
			if err := saveEmployee(ctx, tx, e); err != nil {
				return err
			}
		}
		for _, u := range ds.Users {
			if err := saveUser(ctx, tx, u); err != nil {
				return err
			}
		}
		for _, r := range ds.Requests {
			if err := saveRequest(ctx, tx, r); err != nil {
				return err
			}
		}
		for _, g := range ds.Grants {
			if err := saveGrant(ctx, tx, g); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) withTx(ctx context.Context, fn func(tx execQuerier) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(sqlTx); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// =============================================================================
// BRANCHES / EMPLOYEES / USERS
// =============================================================================

func saveBranch(ctx context.Context, db execQuerier, b entitlement.Branch) error {
	query := `
		INSERT INTO branches (id, name, accrual_standard, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			accrual_standard = excluded.accrual_standard
	`
	_, err := db.ExecContext(ctx, query, b.ID, b.Name, string(b.AccrualStandard), now())
	if err != nil {
		return fmt.Errorf("save branch %s: %w", b.ID, err)
	}
	return nil
}

func listBranches(ctx context.Context, db execQuerier) ([]entitlement.Branch, error) {
	rows, err := db.QueryContext(ctx, "SELECT id, name, accrual_standard FROM branches ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var branches []entitlement.Branch
	for rows.Next() {
		var b entitlement.Branch
		var standard string
		if err := rows.Scan(&b.ID, &b.Name, &standard); err != nil {
			return nil, err
		}
		b.AccrualStandard = entitlement.AccrualStandard(standard)
		branches = append(branches, b)
	}
	return branches, rows.Err()
}

func saveEmployee(ctx context.Context, db execQuerier, emp entitlement.Employee) error {
	query := `
		INSERT INTO employees (id, name, email, branch, department, hire_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			branch = excluded.branch,
			department = excluded.department,
			hire_date = excluded.hire_date
	`
	_, err := db.ExecContext(ctx, query,
		emp.ID, emp.Name, nullString(emp.Email), nullString(emp.Branch),
		nullString(emp.Department), nullDate(emp.HireDate), now(),
	)
	if err != nil {
		return fmt.Errorf("save employee %s: %w", emp.ID, err)
	}
	return nil
}

// getEmployee returns generic.ErrEntityNotFound for unknown ids.
func getEmployee(ctx context.Context, db execQuerier, id string) (entitlement.Employee, error) {
	row := db.QueryRowContext(ctx, employeeSelect+" WHERE id = ?", id)
	emp, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return entitlement.Employee{}, fmt.Errorf("employee %s: %w", id, generic.ErrEntityNotFound)
	}
	return emp, err
}

const employeeSelect = "SELECT id, name, email, branch, department, hire_date FROM employees"

func listEmployees(ctx context.Context, db execQuerier) ([]entitlement.Employee, error) {
	rows, err := db.QueryContext(ctx, employeeSelect+" ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []entitlement.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row scanner) (entitlement.Employee, error) {
	var emp entitlement.Employee
	var email, branch, dept, hire sql.NullString
	if err := row.Scan(&emp.ID, &emp.Name, &email, &branch, &dept, &hire); err != nil {
		return entitlement.Employee{}, err
	}
	emp.Email = email.String
	emp.Branch = branch.String
	emp.Department = dept.String
	hireDate, err := parseNullDate(hire)
	if err != nil {
		return entitlement.Employee{}, &generic.RecordError{Kind: "employee", ID: emp.ID, Field: "hire_date", Err: err}
	}
	emp.HireDate = hireDate
	return emp, nil
}

func saveUser(ctx context.Context, db execQuerier, u entitlement.User) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO users (id, email) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET email = excluded.email
	`, u.ID, u.Email)
	if err != nil {
		return fmt.Errorf("save user %s: %w", u.ID, err)
	}
	return nil
}

func listUsers(ctx context.Context, db execQuerier) ([]entitlement.User, error) {
	rows, err := db.QueryContext(ctx, "SELECT id, email FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []entitlement.User
	for rows.Next() {
		var u entitlement.User
		if err := rows.Scan(&u.ID, &u.Email); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

func saveRequest(ctx context.Context, db execQuerier, r entitlement.LeaveRequest) error {
	query := `
		INSERT INTO leave_requests (id, employee_ref, start_date, end_date, days_value,
			leave_type, type, reason_type, half_day, status, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			employee_ref = excluded.employee_ref,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			days_value = excluded.days_value,
			leave_type = excluded.leave_type,
			type = excluded.type,
			reason_type = excluded.reason_type,
			half_day = excluded.half_day,
			status = excluded.status,
			reason = excluded.reason
	`
	_, err := db.ExecContext(ctx, query,
		r.ID, r.EmployeeRef, r.StartDate.String(), r.EndDate.String(), r.Days.Value.String(),
		nullString(r.LeaveType), nullString(r.Type), nullString(r.ReasonType), nullString(string(r.HalfDay)),
		string(r.Status), nullString(r.Reason), now(),
	)
	if err != nil {
		return fmt.Errorf("save request %s: %w", r.ID, err)
	}
	return nil
}

// requestsByRef returns the requests filed under any of refs.
func requestsByRef(ctx context.Context, db execQuerier, refs []string) ([]entitlement.LeaveRequest, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(refs)), ",")
	args := make([]any, len(refs))
	for i, r := range refs {
		args[i] = r
	}
	return queryRequests(ctx, db,
		requestSelect+" WHERE employee_ref IN ("+placeholders+") ORDER BY start_date, id", args...)
}

const requestSelect = `SELECT id, employee_ref, start_date, end_date, days_value,
	leave_type, type, reason_type, half_day, status, reason FROM leave_requests`

func queryRequests(ctx context.Context, db execQuerier, query string, args ...any) ([]entitlement.LeaveRequest, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entitlement.LeaveRequest
	for rows.Next() {
		var r entitlement.LeaveRequest
		var start, end, value, status string
		var leaveType, typ, reasonType, halfDay, reason sql.NullString
		if err := rows.Scan(&r.ID, &r.EmployeeRef, &start, &end, &value,
			&leaveType, &typ, &reasonType, &halfDay, &status, &reason); err != nil {
			return nil, err
		}
		if r.StartDate, err = generic.ParseDate(start); err != nil {
			return nil, &generic.RecordError{Kind: "request", ID: r.ID, Field: "start_date", Err: err}
		}
		if r.EndDate, err = generic.ParseDate(end); err != nil {
			return nil, &generic.RecordError{Kind: "request", ID: r.ID, Field: "end_date", Err: err}
		}
		if r.Days, err = parseAmount(value); err != nil {
			return nil, &generic.RecordError{Kind: "request", ID: r.ID, Field: "days_value", Err: err}
		}
		r.LeaveType = leaveType.String
		r.Type = typ.String
		r.ReasonType = reasonType.String
		r.HalfDay = entitlement.HalfDayPart(halfDay.String)
		r.Status = entitlement.RequestStatus(status)
		r.Reason = reason.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// =============================================================================
// WELFARE GRANTS
// =============================================================================

func saveGrant(ctx context.Context, db execQuerier, g entitlement.WelfareGrant) error {
	query := `
		INSERT INTO welfare_grants (id, employee_id, granted_days, effective_date,
			expiry_date, granted_date, granted_by, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			employee_id = excluded.employee_id,
			granted_days = excluded.granted_days,
			effective_date = excluded.effective_date,
			expiry_date = excluded.expiry_date,
			granted_date = excluded.granted_date,
			granted_by = excluded.granted_by,
			reason = excluded.reason
	`
	var grantedDate *generic.TimePoint
	if !g.GrantedDate.IsZero() {
		grantedDate = &g.GrantedDate
	}
	_, err := db.ExecContext(ctx, query,
		g.ID, g.EmployeeID, g.GrantedDays.Value.String(), g.EffectiveDate.String(),
		nullDate(g.ExpiryDate), nullDate(grantedDate), nullString(g.GrantedBy),
		nullString(g.Reason), now(),
	)
	if err != nil {
		return fmt.Errorf("save grant %s: %w", g.ID, err)
	}
	return nil
}

// grantsByEmployee returns an employee's welfare grants by effective date.
func grantsByEmployee(ctx context.Context, db execQuerier, employeeID string) ([]entitlement.WelfareGrant, error) {
	return queryGrants(ctx, db, grantSelect+" WHERE employee_id = ? ORDER BY effective_date, id", employeeID)
}

const grantSelect = `SELECT id, employee_id, granted_days, effective_date, expiry_date,
	granted_date, granted_by, reason FROM welfare_grants`

func queryGrants(ctx context.Context, db execQuerier, query string, args ...any) ([]entitlement.WelfareGrant, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entitlement.WelfareGrant
	for rows.Next() {
		var g entitlement.WelfareGrant
		var value, effective string
		var expiry, granted, grantedBy, reason sql.NullString
		if err := rows.Scan(&g.ID, &g.EmployeeID, &value, &effective, &expiry,
			&granted, &grantedBy, &reason); err != nil {
			return nil, err
		}
		if g.GrantedDays, err = parseAmount(value); err != nil {
			return nil, &generic.RecordError{Kind: "grant", ID: g.ID, Field: "granted_days", Err: err}
		}
		if g.EffectiveDate, err = generic.ParseDate(effective); err != nil {
			return nil, &generic.RecordError{Kind: "grant", ID: g.ID, Field: "effective_date", Err: err}
		}
		if g.ExpiryDate, err = parseNullDate(expiry); err != nil {
			return nil, &generic.RecordError{Kind: "grant", ID: g.ID, Field: "expiry_date", Err: err}
		}
		if gd, err := parseNullDate(granted); err == nil && gd != nil {
			g.GrantedDate = *gd
		}
		g.GrantedBy = grantedBy.String
		g.Reason = reason.String
		out = append(out, g)
	}
	return out, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"leave_requests", "welfare_grants", "users", "employees", "branches"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// Helper functions

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullDate(tp *generic.TimePoint) sql.NullString {
	if tp == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: tp.String(), Valid: true}
}

func parseNullDate(ns sql.NullString) (*generic.TimePoint, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	tp, err := generic.ParseDate(ns.String)
	if err != nil {
		return nil, err
	}
	return &tp, nil
}

func parseAmount(value string) (generic.Amount, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return generic.Amount{}, err
	}
	return generic.Amount{Value: d, Unit: generic.UnitDays}, nil
}
