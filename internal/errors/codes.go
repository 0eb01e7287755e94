// Package errors provides structured error handling for linescout.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (file, directory)
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file and directory I/O errors.
	CategoryIO Category = "IO"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeInvalidAction = "ERR_101_INVALID_ACTION"
	ErrCodeConfigInvalid = "ERR_102_CONFIG_INVALID"

	// IO errors (200-299)
	ErrCodePathNotFound = "ERR_201_PATH_NOT_FOUND"
	ErrCodeReadFailed   = "ERR_202_READ_FAILED"
	ErrCodeEntrySkipped = "ERR_203_ENTRY_SKIPPED"

	// Internal errors (500-599)
	ErrCodeInternal = "ERR_501_INTERNAL"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	default:
		return CategoryInternal
	}
}

// severityFromCode derives severity from error code.
// Config errors and a missing search root abort the run; a skipped
// directory entry only degrades the result.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeInvalidAction, ErrCodeConfigInvalid, ErrCodePathNotFound:
		return SeverityFatal
	case ErrCodeEntrySkipped:
		return SeverityWarning
	default:
		return SeverityError
	}
}
