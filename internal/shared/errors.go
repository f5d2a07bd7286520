package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a missing entity or reference.
	ErrNotFound = errors.New("not found")
	// ErrConstraintViolation is the parent kind for uniqueness and protection failures.
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrDuplicate indicates a uniqueness conflict (sku, code, name, invoice number).
	ErrDuplicate = fmt.Errorf("duplicate entry: %w", ErrConstraintViolation)
	// ErrProtected indicates a delete blocked by records still referencing the target.
	ErrProtected = fmt.Errorf("protected by existing references: %w", ErrConstraintViolation)
	// ErrValidation indicates rejected input.
	ErrValidation = errors.New("validation failed")
	// ErrParseFailure indicates a malformed numeric field.
	ErrParseFailure = errors.New("parse failure")
	// ErrConflict indicates an operation already in progress elsewhere.
	ErrConflict = errors.New("operation already in progress")
)

// Invalid wraps ErrValidation with a field-level message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
