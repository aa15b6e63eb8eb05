// Package domain defines core types, interfaces, and errors for the medallion lake.
package domain

import "fmt"

// NotFoundError indicates a zone, table, or record was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ValidationError indicates invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// DuplicateNameError indicates a write collision: the table name already
// exists in the target zone. Tables are never overwritten.
type DuplicateNameError struct {
	Zone Zone
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("table %q already exists in zone %s", e.Name, e.Zone)
}

// TransformDegradedError is a soft error: a zone transform could not fully
// apply and fell back to a reduced-fidelity output. It is carried in results
// and metadata, never returned as a hard failure.
type TransformDegradedError struct {
	Zone   Zone   `json:"zone"`
	Reason string `json:"reason"`
}

func (e *TransformDegradedError) Error() string {
	return fmt.Sprintf("%s transform degraded: %s", e.Zone, e.Reason)
}

// QuerySyntaxError indicates an expression outside the supported query grammar.
type QuerySyntaxError struct {
	Query   string
	Pos     int
	Message string
}

func (e *QuerySyntaxError) Error() string {
	return fmt.Sprintf("syntax error at position %d: %s (query: %q)", e.Pos, e.Message, e.Query)
}

// QueryExecutionError indicates a well-formed query that failed against the
// selected table (unknown column, incompatible types, timeout).
type QueryExecutionError struct {
	Query   string
	Message string
}

func (e *QueryExecutionError) Error() string {
	return fmt.Sprintf("query failed: %s (query: %q)", e.Message, e.Query)
}

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
