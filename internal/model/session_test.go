package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneIsDeep(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	orig := GuidanceSession{
		ID:         "s1",
		Tags:       []string{"Tantrums", "Sleep Routines"},
		StepsTried: []StepProgress{{Text: "a", Completed: true, CompletedAt: &at}, {Text: "b"}},
		TotalSteps: 2, CompletedSteps: 1,
		State: Deferred(),
	}

	c := orig.Clone()
	if diff := cmp.Diff(orig, c, cmp.AllowUnexported(State{})); diff != "" {
		t.Fatalf("clone differs (-orig +clone):\n%s", diff)
	}

	c.Tags[0] = "changed"
	c.StepsTried[0].Text = "changed"
	*c.StepsTried[0].CompletedAt = at.Add(time.Hour)

	assert.Equal(t, "Tantrums", orig.Tags[0])
	assert.Equal(t, "a", orig.StepsTried[0].Text)
	assert.Equal(t, at, *orig.StepsTried[0].CompletedAt)
}

func TestAllStepsComplete(t *testing.T) {
	assert.False(t, (&GuidanceSession{}).AllStepsComplete())
	assert.False(t, (&GuidanceSession{TotalSteps: 5, CompletedSteps: 4}).AllStepsComplete())
	assert.True(t, (&GuidanceSession{TotalSteps: 5, CompletedSteps: 5}).AllStepsComplete())
}

func TestSeedSteps(t *testing.T) {
	got := SeedSteps([]StepDefinition{{Number: 1, Title: "one"}, {Number: 2, Title: "two"}})
	want := []StepProgress{{Text: "one"}, {Text: "two"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SeedSteps mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "", (&GuidanceSession{}).PrimaryTag())
}

func TestSessionJSON(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	resolved, _ := Resolved(OutcomeSoSo)
	orig := GuidanceSession{
		ID: "s1", OwnerID: "local", CreatedAt: at, UpdatedAt: at,
		Tags: []string{"Tantrums"}, FlowTitle: "Taming the Tantrum Storm",
		Approach: ApproachCBTPCIT, StepsTried: []StepProgress{{Text: "a", Completed: true, CompletedAt: &at}},
		TotalSteps: 1, CompletedSteps: 1, State: resolved, FinalNotes: "Somewhat!",
	}

	data, err := json.Marshal(orig)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"status":"resolved"`)
	assert.Contains(t, string(data), `"outcome":"soSo"`)

	var got GuidanceSession
	require.NoError(t, json.Unmarshal(data, &got))
	if diff := cmp.Diff(orig, got, cmp.AllowUnexported(State{})); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSessionJSONRejectsInvalidState(t *testing.T) {
	var s GuidanceSession
	err := json.Unmarshal([]byte(`{"id":"x","status":"resolved","outcome":"notGood"}`), &s)
	assert.Error(t, err)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"y"}`), &s))
	assert.Equal(t, StatusOngoing, s.Status())
}
