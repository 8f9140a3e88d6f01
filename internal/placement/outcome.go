package placement

import (
	"fmt"

	"github.com/1broseidon/winpos/internal/platform"
)

// Status is the result of placing one rule.
type Status string

const (
	StatusPlaced                Status = "placed"
	StatusNoMatch               Status = "no-match"
	StatusScreenIndexOutOfRange Status = "screen-out-of-range"
	StatusApplyFailed           Status = "apply-failed"
)

// EnvironmentError means the display environment could not be queried. It
// aborts a run before any rule is processed.
type EnvironmentError struct {
	Op  string
	Err error
}

func (e *EnvironmentError) Error() string {
	return fmt.Sprintf("environment unavailable: %s: %v", e.Op, e.Err)
}

func (e *EnvironmentError) Unwrap() error {
	return e.Err
}

// MatchedWindow is the live window a rule resolved to.
type MatchedWindow struct {
	ID     platform.WindowID
	Title  string
	PID    int
	Bounds platform.Rect
}

// Outcome records what happened to one rule.
type Outcome struct {
	RuleName string
	Status   Status
	Detail   string
	Window   *MatchedWindow
	Geometry *platform.Rect
	Desktop  *int
}

// Summary counts placed and failed rules.
type Summary struct {
	Placed int
	Failed int
}

// Result is the ordered list of outcomes of one placement pass.
type Result struct {
	Snapshot *Snapshot
	Outcomes []Outcome
}

// Summary counts the outcomes by success.
func (r *Result) Summary() Summary {
	var s Summary
	for _, o := range r.Outcomes {
		if o.Status == StatusPlaced {
			s.Placed++
		} else {
			s.Failed++
		}
	}
	return s
}

// OK reports whether the pass counts as a success: at least one rule was
// placed, or there was nothing to place.
func (r *Result) OK() bool {
	return len(r.Outcomes) == 0 || r.Summary().Placed > 0
}
