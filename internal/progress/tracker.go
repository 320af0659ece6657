// Package progress derives completion figures from a session's step list.
package progress

import (
	"fmt"

	"github.com/nhle/guidance/internal/model"
)

// Snapshot is the completion state of the active step list.
type Snapshot struct {
	Total     int
	Completed int
	// Fraction is Completed/Total, or 0 for an empty list.
	Fraction float64
}

// Recompute counts s.StepsTried without modifying s.
func Recompute(s *model.GuidanceSession) Snapshot {
	snap := Snapshot{Total: len(s.StepsTried)}
	for _, sp := range s.StepsTried {
		if sp.Completed {
			snap.Completed++
		}
	}
	if snap.Total > 0 {
		snap.Fraction = float64(snap.Completed) / float64(snap.Total)
	}
	return snap
}

// Apply writes the snapshot's counters back onto s.
func (snap Snapshot) Apply(s *model.GuidanceSession) {
	s.TotalSteps = snap.Total
	s.CompletedSteps = snap.Completed
}

// Label is the progress line shown next to a session.
func Label(s *model.GuidanceSession) string {
	if s.Status() == model.StatusResolved {
		return "Completed"
	}
	return fmt.Sprintf("Step %d/%d in Progress", s.CompletedSteps, s.TotalSteps)
}
