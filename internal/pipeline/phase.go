// Package pipeline runs the weekly digest phases in order against one run
// workspace, skipping every phase whose checkpoint already exists.
package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lizzypokerface/news-hub-aggregator/internal/report"
)

// Phase is one checkpointed unit of the run.
type Phase interface {
	// Name is the phase's display and logging name.
	Name() string
	// Key is the checkpoint key the phase's result is stored under.
	Key() string
	Execute(ctx context.Context) (Output, error)
}

// Output is what a phase produced: a checkpoint payload and the reports to
// persist before it.
type Output struct {
	Checkpoint any
	Reports    []report.Artifact
}

// State is the lifecycle state of one phase within a run.
type State string

const (
	NotStarted   State = "not_started"
	Skipped      State = "skipped"
	Running      State = "running"
	Checkpointed State = "checkpointed"
	Failed       State = "failed"
)

// Result records how one phase fared.
type Result struct {
	Name     string
	Key      string
	State    State
	Duration time.Duration
	Reports  []string
	Err      error
	// Payload is the checkpoint as stored. Skipped phases return it
	// undecoded.
	Payload json.RawMessage
}

// Summary is the outcome of a run.
type Summary struct {
	RunID   string
	Results []Result
}

// Completed reports whether every phase ended checkpointed or skipped.
func (s Summary) Completed() bool {
	for _, r := range s.Results {
		if r.State != Skipped && r.State != Checkpointed {
			return false
		}
	}
	return len(s.Results) > 0
}

// Count returns how many phases ended in state.
func (s Summary) Count(state State) int {
	n := 0
	for _, r := range s.Results {
		if r.State == state {
			n++
		}
	}
	return n
}
