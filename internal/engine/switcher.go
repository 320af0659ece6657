package engine

import (
	"time"

	"github.com/nhle/guidance/internal/catalog"
	"github.com/nhle/guidance/internal/model"
	"github.com/nhle/guidance/internal/progress"
)

// SwitchApproach returns a copy of s moved to the other approach: the
// counter goes up by one, the steps are reseeded from cat, and the state
// becomes the Switched marker. s itself is never modified.
//
// Ongoing and Switched sessions may switch, so repeated calls keep
// alternating. Resolved and deferred sessions are rejected.
func SwitchApproach(s *model.GuidanceSession, cat *catalog.Catalog, now time.Time) (model.GuidanceSession, error) {
	const op = "switch approach"
	if s.Status() != model.StatusOngoing && !s.State.IsSwitched() {
		return model.GuidanceSession{}, invalidState(op, "session %s is %s", s.ID, s.State)
	}

	next := s.Clone()
	next.Approach = activeApproach(s).Other()
	next.CurrentApproachIndex++
	next.StepsTried = model.SeedSteps(cat.Steps(next.PrimaryTag(), next.Approach))
	progress.Recompute(&next).Apply(&next)
	next.State = model.Switched()
	next.FinalNotes = ""
	next.UpdatedAt = now
	return next, nil
}

// activeApproach falls back to the switch counter's parity for records
// written without an explicit approach.
func activeApproach(s *model.GuidanceSession) model.Approach {
	if s.Approach.Valid() {
		return s.Approach
	}
	if s.CurrentApproachIndex%2 == 1 {
		return model.ApproachAlternative
	}
	return model.ApproachCBTPCIT
}
