package engine

import "time"

// DefaultMaxIterations bounds the graph walk of a single execution. Cycles
// are legal in workflow definitions, so the cap is what guarantees
// termination.
const DefaultMaxIterations = 1000

// Options tunes a single execution. The zero value is valid: no timeout, the
// default iteration cap, no overrides.
type Options struct {
	// ExecutionID pins the execution id instead of generating one, so
	// callers launching a run in the background can hand out the id
	// immediately.
	ExecutionID string

	// Timeout aborts the run once exceeded. Zero means no timeout.
	Timeout time.Duration

	// MaxIterations overrides the node-visit cap. Zero means
	// DefaultMaxIterations.
	MaxIterations int

	// VariableOverrides are merged into the variable bag after input
	// seeding, last-write-wins.
	VariableOverrides map[string]any

	// UserID and SessionID are carried on the execution metadata for audit
	// trails.
	UserID    string
	SessionID string
}

func (o Options) maxIterations() int {
	if o.MaxIterations > 0 {
		return o.MaxIterations
	}

	return DefaultMaxIterations
}
