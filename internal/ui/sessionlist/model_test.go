package sessionlist

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/guidance/internal/keys"
	"github.com/nhle/guidance/internal/model"
	"github.com/nhle/guidance/internal/store"
)

type fakeLister struct {
	filters  []store.SessionFilter
	sessions []model.GuidanceSession
	err      error
}

func (f *fakeLister) ListSessions(_ context.Context, filter store.SessionFilter) ([]model.GuidanceSession, error) {
	f.filters = append(f.filters, filter)
	return f.sessions, f.err
}

func session(id, title string, state model.State) model.GuidanceSession {
	return model.GuidanceSession{
		ID:         id,
		OwnerID:    "local",
		Tags:       []string{"Tantrums"},
		FlowTitle:  title,
		Approach:   model.ApproachCBTPCIT,
		State:      state,
		TotalSteps: 5,
		UpdatedAt:  time.Now(),
	}
}

func loaded(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	require.IsType(t, SessionsLoadedMsg{}, msg)
	m, _ = m.Update(msg)
	return m
}

func TestLoadSessionsScopesToOwner(t *testing.T) {
	fl := &fakeLister{sessions: []model.GuidanceSession{session("a", "Taming the Tantrum Storm", model.Ongoing())}}
	m := New(fl, keys.DefaultKeyMap(), "parent-1", 80, 24)

	m = loaded(t, m, m.Init())

	require.Len(t, fl.filters, 1)
	require.NotNil(t, fl.filters[0].OwnerID)
	assert.Equal(t, "parent-1", *fl.filters[0].OwnerID)
	assert.Nil(t, fl.filters[0].Status)

	id, ok := m.SelectedID()
	assert.True(t, ok)
	assert.Equal(t, "a", id)
}

func TestCycleStatusFilter(t *testing.T) {
	fl := &fakeLister{}
	m := New(fl, keys.DefaultKeyMap(), "local", 80, 24)

	want := []string{"ongoing", "resolved", "unresolved", "all"}
	for _, label := range want {
		var cmd tea.Cmd
		m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyTab})
		m = loaded(t, m, cmd)
		assert.Equal(t, label, m.FilterLabel())
	}

	last := fl.filters[len(fl.filters)-1]
	assert.Nil(t, last.Status)
	require.NotNil(t, fl.filters[1].Status)
	assert.Equal(t, model.StatusResolved, *fl.filters[1].Status)
}

func TestSetStatusFilter(t *testing.T) {
	fl := &fakeLister{}
	m := New(fl, keys.DefaultKeyMap(), "local", 80, 24)

	st := model.StatusUnresolved
	m = loaded(t, m, m.SetStatusFilter(&st))
	assert.Equal(t, "unresolved", m.FilterLabel())

	m = loaded(t, m, m.SetStatusFilter(nil))
	assert.Equal(t, "all", m.FilterLabel())
}

func TestSelectEmitsMessage(t *testing.T) {
	fl := &fakeLister{sessions: []model.GuidanceSession{session("s1", "Sibling Peace Plan", model.Ongoing())}}
	m := New(fl, keys.DefaultKeyMap(), "local", 80, 24)
	m = loaded(t, m, m.Init())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, SelectedSessionMsg{ID: "s1"}, cmd())
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	fl := &fakeLister{sessions: []model.GuidanceSession{session("s1", "Sibling Peace Plan", model.Ongoing())}}
	m := New(fl, keys.DefaultKeyMap(), "local", 80, 24)
	m = loaded(t, m, m.Init())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	require.True(t, m.Confirming())
	assert.Equal(t, "s1", m.confirmID)

	t.Run("confirmed", func(t *testing.T) {
		c := m
		c.fb = &confirmBinding{confirm: true}
		c.confirmForm.State = huh.StateCompleted
		c, cmd := c.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
		assert.False(t, c.Confirming())
		require.NotNil(t, cmd)
		assert.Equal(t, DeleteSessionMsg{ID: "s1"}, cmd())
	})
}

func TestDeleteDeclined(t *testing.T) {
	fl := &fakeLister{sessions: []model.GuidanceSession{session("s1", "Sibling Peace Plan", model.Ongoing())}}
	m := New(fl, keys.DefaultKeyMap(), "local", 80, 24)
	m = loaded(t, m, m.Init())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	require.True(t, m.Confirming())
	m.confirmForm.State = huh.StateCompleted

	m, cmd := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.False(t, m.Confirming())
	assert.Nil(t, cmd)
}

func TestEmptyStates(t *testing.T) {
	fl := &fakeLister{}
	m := New(fl, keys.DefaultKeyMap(), "local", 80, 24)
	m = loaded(t, m, m.Init())
	assert.Contains(t, m.View(), "No struggles logged yet")

	fl.err = errors.New("database is locked")
	m = loaded(t, m, m.LoadSessions())
	assert.Contains(t, m.View(), "database is locked")
}

func TestRenderRow(t *testing.T) {
	resolved, err := model.Resolved(model.OutcomeImproved)
	require.NoError(t, err)

	tests := []struct {
		name   string
		state  model.State
		symbol string
		label  string
	}{
		{"ongoing", model.Ongoing(), "○", "Step 0/5 in Progress"},
		{"resolved", resolved, "✓", "Completed"},
		{"switched", model.Switched(), "↻", "Step 0/5 in Progress"},
		{"deferred", model.Deferred(), "✗", "Step 0/5 in Progress"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := session("x", "Taming the Tantrum Storm", tt.state)
			row := renderRow(&s, false)
			assert.Contains(t, row, tt.symbol)
			assert.Contains(t, row, "Taming the Tantrum Storm")
			assert.Contains(t, row, tt.label)
			assert.Contains(t, row, "#Tantrums")
		})
	}
}

func TestRenderRowElidesTags(t *testing.T) {
	s := session("x", "Title", model.Ongoing())
	s.Tags = []string{"Tantrums", "Sleep Routines", "Screen Time"}
	row := renderRow(&s, true)
	assert.Contains(t, row, "#Tantrums,Sleep Routines,…")
	assert.NotContains(t, row, "Screen Time")
	assert.Len(t, s.Tags, 3)
}

func TestRelativeTime(t *testing.T) {
	now := time.Now()
	tests := []struct {
		at   time.Time
		want string
	}{
		{time.Time{}, ""},
		{now.Add(-10 * time.Second), "just now"},
		{now.Add(-5 * time.Minute), "5m ago"},
		{now.Add(-3 * time.Hour), "3h ago"},
		{now.Add(-49 * time.Hour), "2d ago"},
		{now.Add(-15 * 24 * time.Hour), "2w ago"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, relativeTime(tt.at))
	}
}
