package bond

import "time"

// cutoff is the fixed classification threshold: retirements strictly
// after the end of December 2003 are discarded. Not configurable.
var cutoff = time.Date(2003, time.December, 31, 0, 0, 0, 0, time.UTC)

// Classify maps a bond list to a decision. Pure and deterministic:
// the result depends only on the bonds and the fixed cutoff.
//
// The representative date is the most recent retirement date across
// all bonds. When several bonds share the maximum, only the date value
// is observable, so any of them may be picked.
func Classify(bonds []Bond) Result {
	var latest *time.Time
	for i := range bonds {
		d := bonds[i].RetirementDate
		if d == nil {
			continue
		}
		if latest == nil || d.After(*latest) {
			latest = d
		}
	}

	if latest == nil {
		// No retirement evidence at all, including the empty list.
		return Result{Outcome: Pesquisar}
	}
	if latest.After(cutoff) {
		return Result{Outcome: Descarte, Date: latest}
	}
	return Result{Outcome: Pesquisar, Date: latest}
}
