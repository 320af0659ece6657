package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateConstructors(t *testing.T) {
	t.Run("zero value is ongoing", func(t *testing.T) {
		var s State
		assert.Equal(t, StatusOngoing, s.Status())
		_, ok := s.Outcome()
		assert.False(t, ok)
	})

	t.Run("resolved accepts improved and soSo", func(t *testing.T) {
		for _, o := range []Outcome{OutcomeImproved, OutcomeSoSo} {
			s, err := Resolved(o)
			require.NoError(t, err)
			assert.Equal(t, StatusResolved, s.Status())
			got, ok := s.Outcome()
			assert.True(t, ok)
			assert.Equal(t, o, got)
		}
	})

	t.Run("resolved rejects notGood and none", func(t *testing.T) {
		_, err := Resolved(OutcomeNotGood)
		assert.Error(t, err)
		_, err = Resolved(OutcomeNone)
		assert.Error(t, err)
	})

	t.Run("deferred", func(t *testing.T) {
		s := Deferred()
		assert.Equal(t, StatusUnresolved, s.Status())
		assert.True(t, s.IsDeferred())
		assert.False(t, s.IsSwitched())
		o, _ := s.Outcome()
		assert.Equal(t, OutcomeNotGood, o)
	})

	t.Run("switched", func(t *testing.T) {
		s := Switched()
		assert.Equal(t, StatusUnresolved, s.Status())
		assert.True(t, s.IsSwitched())
		assert.False(t, s.IsDeferred())
		_, ok := s.Outcome()
		assert.False(t, ok)
	})
}

func TestParseState(t *testing.T) {
	improved, _ := Resolved(OutcomeImproved)

	tests := []struct {
		status, outcome string
		want            State
		wantErr         bool
	}{
		{status: "ongoing", want: Ongoing()},
		{status: "resolved", outcome: "improved", want: improved},
		{status: "unresolved", outcome: "notGood", want: Deferred()},
		{status: "unresolved", want: Switched()},
		{status: "resolved", outcome: "notGood", wantErr: true},
		{status: "resolved", wantErr: true},
		{status: "ongoing", outcome: "soSo", wantErr: true},
		{status: "unresolved", outcome: "improved", wantErr: true},
		{status: "paused", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.status+"/"+tt.outcome, func(t *testing.T) {
			got, err := ParseState(tt.status, tt.outcome)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStateString(t *testing.T) {
	soSo, _ := Resolved(OutcomeSoSo)
	assert.Equal(t, "ongoing", Ongoing().String())
	assert.Equal(t, "resolved(soSo)", soSo.String())
	assert.Equal(t, "unresolved(notGood)", Deferred().String())
	assert.Equal(t, "unresolved", Switched().String())
}

func TestFeedback(t *testing.T) {
	f, err := ParseFeedback("Worked Well!")
	require.NoError(t, err)
	assert.Equal(t, OutcomeImproved, f.Outcome())
	assert.Equal(t, OutcomeSoSo, FeedbackSomewhat.Outcome())
	assert.Equal(t, OutcomeNotGood, FeedbackNotYet.Outcome())

	_, err = ParseFeedback("worked well")
	assert.Error(t, err)
}

func TestApproach(t *testing.T) {
	assert.Equal(t, ApproachAlternative, ApproachCBTPCIT.Other())
	assert.Equal(t, ApproachCBTPCIT, ApproachAlternative.Other())

	_, err := ParseApproach("cbt")
	assert.Error(t, err)
}
