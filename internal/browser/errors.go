package browser

import "fmt"

// InitError represents a browser or proxy setup failure. Fatal for the
// current request only; the manager recreates the allocator on the next
// acquisition attempt.
type InitError struct {
	Message string
	Cause   error
}

func (e *InitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("session init error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("session init error: %s", e.Message)
}

func (e *InitError) Unwrap() error {
	return e.Cause
}
