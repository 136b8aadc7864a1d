// Package bond models the employment-bond records scraped from the
// Portal da Transparência and the rule that classifies them.
package bond

import (
	"encoding/json"
	"strings"
	"time"
)

// DateLayout is the portal's date format: two-digit day and month,
// four-digit year.
const DateLayout = "02/01/2006"

// Bond is one employment relationship record for the subject, as
// rendered by the portal. Immutable once extracted.
type Bond struct {
	// Role is the free-text bond type or position label.
	Role string
	// Status is the free-text administrative status label, e.g.
	// "Ativo" or "Aposentado".
	Status string
	// RetirementDate is set when the status indicates retirement and
	// the portal exposed a parseable date. Nil otherwise.
	RetirementDate *time.Time
}

// Retired reports whether the status label marks a retirement bond.
func (b Bond) Retired() bool {
	return StatusIndicatesRetirement(b.Status)
}

// StatusIndicatesRetirement matches the portal's retirement status
// label, tolerating case variations.
func StatusIndicatesRetirement(label string) bool {
	return strings.Contains(strings.ToLower(label), "aposentado")
}

// ParseDate parses a portal date (DD/MM/YYYY). It returns nil for
// malformed input; a bad date field never fails a whole lookup.
func ParseDate(s string) *time.Time {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &t
}

// Outcome is the caller-facing classification decision.
type Outcome string

const (
	// Descarte means the retirement is recent enough that no manual
	// investigation is warranted.
	Descarte Outcome = "descarte"
	// Pesquisar flags the subject for manual follow-up.
	Pesquisar Outcome = "pesquisar"
)

// Result is the terminal output of a classification. Date is the
// reference retirement date, when one exists.
type Result struct {
	Outcome Outcome
	Date    *time.Time
}

// MarshalJSON renders the wire shape consumed by workflow tools:
// {"result":"descarte","date":"15/05/2015"}, with date omitted when
// no retirement date was found.
func (r Result) MarshalJSON() ([]byte, error) {
	type wire struct {
		Result string `json:"result"`
		Date   string `json:"date,omitempty"`
	}
	w := wire{Result: string(r.Outcome)}
	if r.Date != nil {
		w.Date = r.Date.Format(DateLayout)
	}
	return json.Marshal(w)
}
