package lookup

import "fmt"

// Category is the caller-facing error classification. Raw site markup,
// cookies and proxy credentials never reach these errors.
type Category string

const (
	// CategoryInvalidIdentifier means the CPF failed the pattern check;
	// no navigation was attempted.
	CategoryInvalidIdentifier Category = "invalid_identifier"
	// CategoryLookupFailed covers session and navigation failures.
	CategoryLookupFailed Category = "lookup_failed"
	// CategoryInternal is anything unexpected.
	CategoryInternal Category = "internal"
)

// Error is the orchestrator's boundary error. Kind preserves the
// navigation failure mode (timeout, structure_mismatch,
// challenge_detected, canceled, session_init) for observability.
type Error struct {
	Category Category
	Kind     string
	Cause    error
}

func (e *Error) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("query failed: %s (%s)", e.Category, e.Kind)
	}
	return fmt.Sprintf("query failed: %s", e.Category)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
