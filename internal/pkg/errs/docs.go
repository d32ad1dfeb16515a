// Package errs provides standardized error types for the application.
// It implements a consistent pattern for error creation, formatting, and
// unwrapping used throughout the codebase.
//
// Each error type follows the same shape:
//   - A sentinel error variable (e.g. ErrObjectNotFound)
//   - A struct type carrying the error details
//   - Constructor functions with and without a cause
//   - Error() for formatting and Unwrap() returning the sentinel
//
// Callers classify errors with errors.Is against the sentinels and, when they
// need the details, extract the struct with errors.As. Domain-specific errors
// (invalid status transitions, closed tracking sessions) live with their own
// packages; errs covers the cross-cutting cases: required values, invalid
// values, missing objects, and backend state conflicts.
package errs
