/*
errors.go - Centralized error types for the leave engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The engine itself never fails a computation: it records these errors as
  diagnostics and degrades to documented defaults. Adapters (record codec,
  stores, HTTP) return them wrapped with additional context.

ERROR CATEGORIES:
  1. Reference data - hire date, branch or employee absent (recovered by defaults)
  2. Record quality - reversed date ranges, unmatched employee references
  3. Input errors - malformed records or query parameters

USAGE:
  if errors.Is(err, generic.ErrInvalidDateRange) {
      // skip the offending record
  }

SEE ALSO:
  - entitlement/usage.go: records InvalidDateRangeError in diagnostics
  - entitlement/stats.go: records UnmatchedRequestError in diagnostics
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrMissingReference marks absent hire dates or branch data. The engine
	// recovers locally with the documented defaults.
	ErrMissingReference = errors.New("missing reference data")

	// ErrInvalidDateRange marks a leave request whose end precedes its start.
	ErrInvalidDateRange = errors.New("invalid date range: end before start")

	// ErrUnmatchedIdentifier marks a request whose employee reference matches
	// neither an employee id nor a user linked by email.
	ErrUnmatchedIdentifier = errors.New("employee reference matches no employee")

	// ErrEntityNotFound is returned when a referenced entity doesn't exist.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrInvalidRecord is returned by the record codec for malformed input.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrImportUnsupported is returned when a record source is read-only.
	ErrImportUnsupported = errors.New("record source does not support import")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidDateRangeError identifies the request excluded for a reversed range.
type InvalidDateRangeError struct {
	RequestID string
	Range     Period
}

func (e *InvalidDateRangeError) Error() string {
	return fmt.Sprintf("request %s: end %s before start %s", e.RequestID, e.Range.End, e.Range.Start)
}

func (e *InvalidDateRangeError) Unwrap() error {
	return ErrInvalidDateRange
}

// UnmatchedRequestError identifies a request whose owner could not be resolved.
type UnmatchedRequestError struct {
	RequestID   string
	EmployeeRef string
}

func (e *UnmatchedRequestError) Error() string {
	return fmt.Sprintf("request %s: employee reference %q matches no employee or linked user",
		e.RequestID, e.EmployeeRef)
}

func (e *UnmatchedRequestError) Unwrap() error {
	return ErrUnmatchedIdentifier
}

// RecordError reports a malformed field in an input record.
type RecordError struct {
	Kind  string // "employee", "request", "grant", ...
	ID    string
	Field string
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s %s: field %s: %v", e.Kind, e.ID, e.Field, e.Err)
}

func (e *RecordError) Unwrap() []error {
	return []error{ErrInvalidRecord, e.Err}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsDataQuality returns true for record problems the engine skips and counts.
func IsDataQuality(err error) bool {
	return errors.Is(err, ErrInvalidDateRange) ||
		errors.Is(err, ErrUnmatchedIdentifier)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRecord) ||
		errors.Is(err, ErrInvalidPeriod)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEntityNotFound)
}
