// Package errors provides structured error types for the weld build tool.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the build engine
//   - Machine-readable error codes for programmatic handling
//   - A hard split between system errors and user-actionable failures
//   - Error wrapping with context preservation
//
// # Error Classes
//
// Every code belongs to one of two classes:
//
//   - System errors describe broken invariants or a broken environment
//     (a dependency cycle, an unknown tag, an unregistered VCS scheme).
//     They are rendered with their full cause chain for diagnosis.
//   - User failures describe expected, actionable conditions (a malformed
//     domain name, an external command exiting non-zero, a VCS conflict).
//     They are rendered tersely, without internal noise.
//
// Use [IsSystem] and [IsUser] to classify an error when rendering it.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidDomain, "domain name %q has mis-matched parentheses", name)
//	if errors.Is(err, errors.ErrCodeInvalidDomain) {
//	    // Handle the malformed name
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeCommandFailed, origErr, "git clone %s", repo)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the different error categories.
const (
	// System errors: broken invariants, broken environment. Traced in full.
	ErrCodeCycle         Code = "DEPENDENCY_CYCLE"
	ErrCodeUnknownTag    Code = "UNKNOWN_TAG"
	ErrCodeUnknownKind   Code = "UNKNOWN_KIND"
	ErrCodeUnknownScheme Code = "UNKNOWN_VCS_SCHEME"
	ErrCodeRuleNotFound  Code = "RULE_NOT_FOUND"
	ErrCodeBadRule       Code = "UNBUILDABLE_RULE"
	ErrCodeUsage         Code = "USAGE"
	ErrCodeInternal      Code = "INTERNAL_ERROR"

	// User failures: expected, actionable conditions. Reported tersely.
	ErrCodeInvalidDomain  Code = "INVALID_DOMAIN"
	ErrCodeInvalidLabel   Code = "INVALID_LABEL"
	ErrCodeCommandFailed  Code = "COMMAND_FAILED"
	ErrCodeConflict       Code = "VCS_CONFLICT"
	ErrCodeNotInWorkspace Code = "NOT_IN_WORKSPACE"
	ErrCodeToolMissing    Code = "TOOL_MISSING"
	ErrCodeBadDescription Code = "BAD_DESCRIPTION"
)

// systemCodes is the set of codes classed as system errors.
// Codes absent from this set are user failures.
var systemCodes = map[Code]bool{
	ErrCodeCycle:         true,
	ErrCodeUnknownTag:    true,
	ErrCodeUnknownKind:   true,
	ErrCodeUnknownScheme: true,
	ErrCodeRuleNotFound:  true,
	ErrCodeBadRule:       true,
	ErrCodeUsage:         true,
	ErrCodeInternal:      true,
}

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsSystem reports whether err is a system error: a broken invariant or
// broken environment that should surface with its full cause chain.
// Errors that are not *Error values are treated as system errors, since
// an unclassified error is by definition unexpected.
func IsSystem(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return systemCodes[e.Code]
	}
	return true
}

// IsUser reports whether err is an expected, user-actionable failure.
func IsUser(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return !systemCodes[e.Code]
	}
	return false
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
