// Package mirror contains the one-way sync core: the normalized issue record,
// the dedup marker, the destination publisher and the run driver.
package mirror

import "time"

// Issue is a normalized source issue record. It is built during pagination,
// consumed by the publisher, then discarded; nothing is persisted locally.
type Issue struct {
	Number    int
	Title     string
	Body      string
	URL       string
	State     string // "open" or "closed"
	CreatedAt time.Time
}

// Outcome is the per-issue publish result.
type Outcome int

const (
	OutcomeCreated Outcome = iota
	OutcomeSkipped
	OutcomeFailed
)

// String returns the lowercase outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Failure records a per-issue publish failure.
type Failure struct {
	Number int
	Reason string
}

// Summary aggregates the results of one run.
type Summary struct {
	RunID    string
	Created  int
	Skipped  int
	Failed   int
	Failures []Failure
}

// Total returns the number of issues processed.
func (s Summary) Total() int {
	return s.Created + s.Skipped + s.Failed
}

// Event is a per-issue progress notification consumed by the TUI.
type Event struct {
	Number  int
	Title   string
	Outcome Outcome
	Err     error
}
