package detail

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/guidance/internal/keys"
	"github.com/nhle/guidance/internal/model"
)

func newSession() *model.GuidanceSession {
	s := &model.GuidanceSession{
		ID:         "s1",
		Tags:       []string{"Tantrums"},
		FlowTitle:  "Taming the Tantrum Storm",
		Approach:   model.ApproachCBTPCIT,
		State:      model.Ongoing(),
		StepsTried: []model.StepProgress{{Text: "one"}, {Text: "two"}, {Text: "three"}},
		TotalSteps: 3,
	}
	return s
}

func steps() []model.StepDefinition {
	return []model.StepDefinition{
		{Number: 1, Title: "one", Description: "first description"},
		{Number: 2, Title: "two", Description: "second description"},
		{Number: 3, Title: "three", Description: "third description"},
	}
}

func press(m Model, k tea.KeyMsg) (Model, tea.Msg) {
	m, cmd := m.Update(k)
	if cmd == nil {
		return m, nil
	}
	return m, cmd()
}

var (
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestCursorMovesWithinSteps(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 30)
	m.SetSession(newSession(), steps())

	m, _ = press(m, keyUp)
	assert.Equal(t, 0, m.Cursor())

	for i := 0; i < 5; i++ {
		m, _ = press(m, keyDown)
	}
	assert.Equal(t, 2, m.Cursor())
	assert.Contains(t, m.View(), "third description")
	assert.NotContains(t, m.View(), "first description")
}

func TestActionsCarrySessionAndCursor(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 30)
	m.SetSession(newSession(), steps())
	m, _ = press(m, keyDown)

	tests := []struct {
		key  tea.KeyMsg
		want Action
	}{
		{keySpace, ActionToggle},
		{runes("x"), ActionToggle},
		{runes("s"), ActionSwitch},
		{runes("f"), ActionFeedback},
		{runes("e"), ActionNote},
		{runes("N"), ActionStepNote},
	}
	for _, tt := range tests {
		_, msg := press(m, tt.key)
		require.IsType(t, ActionMsg{}, msg, tt.key.String())
		assert.Equal(t, ActionMsg{Action: tt.want, SessionID: "s1", StepIndex: 1}, msg)
	}
}

func TestBackWithoutSession(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 30)
	_, msg := press(m, keyEsc)
	assert.Equal(t, BackMsg{}, msg)

	_, msg = press(m, runes("s"))
	assert.Nil(t, msg)
	assert.Contains(t, m.View(), "No session selected")
}

func TestSetSessionKeepsCursorForSameSession(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 30)
	m.SetSession(newSession(), steps())
	m, _ = press(m, keyDown)
	m, _ = press(m, keyDown)

	s := newSession()
	s.StepsTried[0].Completed = true
	s.CompletedSteps = 1
	m.SetSession(s, steps())
	assert.Equal(t, 2, m.Cursor())

	other := newSession()
	other.ID = "s2"
	m.SetSession(other, steps())
	assert.Equal(t, 0, m.Cursor())
}

func TestBanners(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 100, 40)

	s := newSession()
	for i := range s.StepsTried {
		s.StepsTried[i].Completed = true
	}
	s.CompletedSteps = 3
	m.SetSession(s, steps())
	assert.Contains(t, m.View(), "Press f to tell us how it went")
	assert.Contains(t, m.View(), "[x] 1. one")

	s.State = model.Deferred()
	m.SetSession(s, steps())
	assert.Contains(t, m.View(), "try the other approach")
	assert.Contains(t, m.View(), "not yet")

	resolved, err := model.Resolved(model.OutcomeSoSo)
	require.NoError(t, err)
	s.State = resolved
	s.FinalNotes = "Somewhat!"
	m.SetSession(s, steps())
	assert.Contains(t, m.View(), "resolved (soSo)")
	assert.Contains(t, m.View(), "Somewhat!")
	assert.Contains(t, m.View(), "Completed")
}
