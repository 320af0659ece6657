package testutil

import (
	"testing"
	"time"

	"github.com/nhle/guidance/internal/model"
	"github.com/nhle/guidance/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// Clock is a settable time source for engine tests.
type Clock struct {
	Now time.Time
}

// NewClock starts a clock at a fixed UTC instant.
func NewClock() *Clock {
	return &Clock{Now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

// Func returns the clock as a func() time.Time, advancing by a second on
// every read so successive mutations get distinct timestamps.
func (c *Clock) Func() func() time.Time {
	return func() time.Time {
		c.Now = c.Now.Add(time.Second)
		return c.Now
	}
}

// Session returns an ongoing session with n incomplete steps.
func Session(id string, updated time.Time, n int) *model.GuidanceSession {
	s := &model.GuidanceSession{
		ID:        id,
		OwnerID:   "local",
		CreatedAt: updated,
		UpdatedAt: updated,
		Tags:      []string{"Tantrums"},
		FlowTitle: "Taming the Tantrum Storm",
		Approach:  model.ApproachCBTPCIT,
		State:     model.Ongoing(),
	}
	s.StepsTried = make([]model.StepProgress, n)
	for i := range s.StepsTried {
		s.StepsTried[i] = model.StepProgress{Text: "step"}
	}
	s.TotalSteps = n
	return s
}
