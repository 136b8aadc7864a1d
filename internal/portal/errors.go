// Package portal drives one lookup against the Portal da Transparência
// servidores search and extracts employment-bond records from the
// rendered pages.
package portal

import "fmt"

// Kind distinguishes navigation failure modes for observability.
type Kind string

const (
	// KindTimeout means the bounded wait elapsed before the results
	// area finished rendering.
	KindTimeout Kind = "timeout"
	// KindStructure means the rendered page did not match any known
	// layout (selectors not found).
	KindStructure Kind = "structure_mismatch"
	// KindChallenge means an anti-automation challenge was detected.
	KindChallenge Kind = "challenge_detected"
	// KindCanceled means the caller abandoned the lookup before it
	// finished, e.g. a dropped HTTP client. Kept apart from timeouts so
	// aborted requests do not skew the timeout failure counts.
	KindCanceled Kind = "canceled"
)

// NavError represents a per-request navigation failure. Messages are
// static: they never carry the identifier or page content, both of
// which are treated as sensitive.
type NavError struct {
	Kind    Kind
	Message string
}

func (e *NavError) Error() string {
	return fmt.Sprintf("navigation error (%s): %s", e.Kind, e.Message)
}
