package feed

import (
	"time"

	"eventfeed/pkg/models"
)

// Outcome says what a refresh did to the view.
type Outcome int

const (
	// Applied means the fetched events replaced the view.
	Applied Outcome = iota
	// Failed means the fetch or decode failed; the view is unchanged.
	Failed
	// Stale means the fetch succeeded but a newer request had already been
	// applied, so the events were dropped.
	Stale
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Failed:
		return "failed"
	case Stale:
		return "stale"
	default:
		return "unknown"
	}
}

// Result describes one refresh.
type Result struct {
	Generation uint64
	RequestID  string
	Outcome    Outcome
	Events     []models.Event
	Err        error
	Started    time.Time
	Duration   time.Duration
}

// OK reports whether the fetch succeeded, whether or not it was applied.
func (r Result) OK() bool { return r.Err == nil }
