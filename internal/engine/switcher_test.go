package engine

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/guidance/internal/catalog"
	"github.com/nhle/guidance/internal/model"
	"github.com/nhle/guidance/tests/testutil"
)

func TestSwitchApproachIsPure(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	s := testutil.Session("a", now.Add(-time.Hour), 5)
	s.StepsTried[0].Completed = true
	s.CompletedSteps = 1
	before := s.Clone()

	next, err := SwitchApproach(s, cat, now)
	require.NoError(t, err)

	if diff := cmp.Diff(&before, s, cmp.AllowUnexported(model.State{})); diff != "" {
		t.Fatalf("input modified:\n%s", diff)
	}
	assert.Equal(t, now, next.UpdatedAt)
	assert.Equal(t, model.ApproachAlternative, next.Approach)
	assert.Equal(t, 0, next.CompletedSteps)
}

func TestSwitchApproachGuards(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)
	resolved, _ := model.Resolved(model.OutcomeSoSo)

	tests := []struct {
		name    string
		state   model.State
		wantErr bool
	}{
		{"ongoing", model.Ongoing(), false},
		{"switched", model.Switched(), false},
		{"deferred", model.Deferred(), true},
		{"resolved", resolved, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testutil.Session("a", time.Now(), 5)
			s.State = tt.state
			_, err := SwitchApproach(s, cat, time.Now())
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidState)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestActiveApproachFallsBackToCounter(t *testing.T) {
	assert.Equal(t, model.ApproachCBTPCIT, activeApproach(&model.GuidanceSession{}))
	assert.Equal(t, model.ApproachAlternative, activeApproach(&model.GuidanceSession{CurrentApproachIndex: 3}))
	assert.Equal(t, model.ApproachCBTPCIT, activeApproach(&model.GuidanceSession{
		Approach: model.ApproachCBTPCIT, CurrentApproachIndex: 3,
	}))
}
