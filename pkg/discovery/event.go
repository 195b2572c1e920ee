package discovery

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/CTAG07/namehunt/pkg/whois"
)

// Outcome is what happened to a single candidate.
type Outcome int

const (
	OutcomeAvailable Outcome = iota
	OutcomeTaken
	OutcomeRateLimited
	OutcomeIndeterminate
	OutcomeFilteredOut
	// OutcomeExhausted is emitted once, as the last event of a run that ran
	// out of candidates.
	OutcomeExhausted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAvailable:
		return "available"
	case OutcomeTaken:
		return "taken"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeIndeterminate:
		return "indeterminate"
	case OutcomeFilteredOut:
		return "filtered_out"
	case OutcomeExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// ParseOutcome is the inverse of Outcome.String.
func ParseOutcome(s string) (Outcome, bool) {
	for o := OutcomeAvailable; o <= OutcomeExhausted; o++ {
		if o.String() == s {
			return o, true
		}
	}
	return 0, false
}

func outcomeOf(s whois.Status) Outcome {
	switch s {
	case whois.Available:
		return OutcomeAvailable
	case whois.Taken:
		return OutcomeTaken
	case whois.RateLimited:
		return OutcomeRateLimited
	default:
		return OutcomeIndeterminate
	}
}

// Event is one entry of the discovery feed.
type Event struct {
	RunID   uuid.UUID
	Stem    string
	Name    string // Stem with prefix and suffix
	Domain  string // Name with the top-level domain
	Outcome Outcome
	// Reason is a short machine-readable cause for FilteredOut, Indeterminate
	// and Exhausted outcomes.
	Reason string
	// Raw and Err are only set when DebugTrace is enabled.
	Raw  string
	Err  error
	Time time.Time
}

// Sink receives events in the order the loop produces them. An error from
// Report is logged and does not stop the loop.
type Sink interface {
	Report(ctx context.Context, event Event) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, event Event) error

func (f SinkFunc) Report(ctx context.Context, event Event) error {
	return f(ctx, event)
}
