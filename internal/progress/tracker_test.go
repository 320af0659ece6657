package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/guidance/internal/model"
)

func session(done ...bool) *model.GuidanceSession {
	s := &model.GuidanceSession{}
	for _, d := range done {
		s.StepsTried = append(s.StepsTried, model.StepProgress{Text: "step", Completed: d})
	}
	return s
}

func TestRecompute(t *testing.T) {
	tests := []struct {
		name string
		s    *model.GuidanceSession
		want Snapshot
	}{
		{"empty", session(), Snapshot{}},
		{"none done", session(false, false, false, false, false), Snapshot{Total: 5}},
		{"two of five", session(true, false, true, false, false), Snapshot{Total: 5, Completed: 2, Fraction: 0.4}},
		{"all done", session(true, true, true, true, true), Snapshot{Total: 5, Completed: 5, Fraction: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Recompute(tt.s)
			assert.Equal(t, tt.want.Total, got.Total)
			assert.Equal(t, tt.want.Completed, got.Completed)
			assert.InDelta(t, tt.want.Fraction, got.Fraction, 1e-9)
		})
	}
}

func TestRecomputeDoesNotMutate(t *testing.T) {
	s := session(true, false)
	s.TotalSteps, s.CompletedSteps = 9, 9

	snap := Recompute(s)
	assert.Equal(t, 9, s.TotalSteps)

	snap.Apply(s)
	assert.Equal(t, 2, s.TotalSteps)
	assert.Equal(t, 1, s.CompletedSteps)
}

func TestLabel(t *testing.T) {
	s := session(true, true, false, false, false)
	Recompute(s).Apply(s)
	assert.Equal(t, "Step 2/5 in Progress", Label(s))

	s.State = model.Deferred()
	assert.Equal(t, "Step 2/5 in Progress", Label(s))

	s.State, _ = model.Resolved(model.OutcomeImproved)
	assert.Equal(t, "Completed", Label(s))
}
