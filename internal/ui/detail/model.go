package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/guidance/internal/keys"
	"github.com/nhle/guidance/internal/model"
	"github.com/nhle/guidance/internal/progress"
	"github.com/nhle/guidance/internal/theme"
)

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// Action names a session operation requested from the detail view.
type Action string

// Actions emitted by the detail view.
const (
	ActionToggle   Action = "toggle"
	ActionSwitch   Action = "switch"
	ActionFeedback Action = "feedback"
	ActionNote     Action = "note"
	ActionStepNote Action = "step-note"
)

// ActionMsg signals the parent to run an operation on the shown session.
// StepIndex is the 0-based highlighted step for step-level actions.
type ActionMsg struct {
	Action    Action
	SessionID string
	StepIndex int
}

const progressWidth = 20

// Model is the session detail view.
type Model struct {
	session  *model.GuidanceSession
	steps    []model.StepDefinition
	cursor   int
	viewport viewport.Model
	keys     *keys.KeyMap
	width    int
	height   int
}

// New creates a new detail view model.
func New(keys *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()
	vp.KeyMap.Up.SetEnabled(false)
	vp.KeyMap.Down.SetEnabled(false)

	return Model{
		viewport: vp,
		keys:     keys,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the detail view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(msg, m.keys.Back) {
			return m, func() tea.Msg { return BackMsg{} }
		}
		if m.session == nil {
			return m, nil
		}

		switch {
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.refresh()
			}
			return m, nil

		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.session.StepsTried)-1 {
				m.cursor++
				m.refresh()
			}
			return m, nil

		case key.Matches(msg, m.keys.Toggle):
			return m, m.action(ActionToggle)
		case key.Matches(msg, m.keys.Switch):
			return m, m.action(ActionSwitch)
		case key.Matches(msg, m.keys.Feedback):
			return m, m.action(ActionFeedback)
		case key.Matches(msg, m.keys.EditNote):
			return m, m.action(ActionNote)
		case key.Matches(msg, m.keys.StepNote):
			return m, m.action(ActionStepNote)
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) action(a Action) tea.Cmd {
	msg := ActionMsg{Action: a, SessionID: m.session.ID, StepIndex: m.cursor}
	return func() tea.Msg { return msg }
}

// View renders the detail view.
func (m Model) View() string {
	if m.session == nil {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No session selected")
	}
	return m.viewport.View()
}

// SetSession shows s with the catalog steps of its active approach. The step
// cursor is kept when the same session is refreshed.
func (m *Model) SetSession(s *model.GuidanceSession, steps []model.StepDefinition) {
	if m.session == nil || m.session.ID != s.ID {
		m.cursor = 0
		m.viewport.GotoTop()
	}
	m.session = s
	m.steps = steps
	if m.cursor >= len(s.StepsTried) {
		m.cursor = 0
	}
	m.refresh()
}

// Session returns the session being shown, if any.
func (m Model) Session() *model.GuidanceSession {
	return m.session
}

// Cursor returns the highlighted 0-based step index.
func (m Model) Cursor() int {
	return m.cursor
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	m.refresh()
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderContent())
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	s := m.session
	if s == nil {
		return ""
	}

	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Render(s.FlowTitle))

	badgeLine := lipgloss.JoinHorizontal(lipgloss.Top,
		theme.StatusStyle(s.Status()).Render(stateLabel(s.State)),
		"  ",
		theme.ApproachStyle(s.Approach).Render(string(s.Approach)),
	)
	sections = append(sections, badgeLine, "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)
	meta := func(label, value string) {
		sections = append(sections, fmt.Sprintf("%s %s",
			metaStyle.Render(fmt.Sprintf("%-10s", label+":")),
			valStyle.Render(value)))
	}

	meta("Struggle", strings.Join(s.Tags, ", "))
	meta("Progress", theme.ProgressBar(progress.Recompute(s).Fraction, progressWidth)+" "+progress.Label(s))
	if s.CurrentApproachIndex > 0 {
		meta("Switches", fmt.Sprintf("%d", s.CurrentApproachIndex))
	}
	if !s.CreatedAt.IsZero() {
		meta("Started", s.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	if !s.UpdatedAt.IsZero() {
		meta("Updated", s.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	if s.CustomNote != "" {
		meta("Note", s.CustomNote)
	}
	if s.FinalNotes != "" {
		meta("Feedback", s.FinalNotes)
	}

	separator := lipgloss.NewStyle().
		Foreground(theme.ColorSubtle).
		Render(strings.Repeat("─", max(min(m.width-4, 80), 0)))
	sections = append(sections, "", separator, "")

	sections = append(sections, lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).
		Render(fmt.Sprintf("Steps (%s)", s.Approach)))
	sections = append(sections, "")

	for i, sp := range s.StepsTried {
		sections = append(sections, m.renderStep(i, sp))
	}

	if banner := m.banner(); banner != "" {
		sections = append(sections, "", banner)
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderStep(i int, sp model.StepProgress) string {
	box := "[ ]"
	if sp.Completed {
		box = "[x]"
	}
	line := fmt.Sprintf("%s %d. %s", box, i+1, sp.Text)
	if sp.Completed {
		line = theme.DimmedStyle.Render(line)
	}

	if i != m.cursor {
		return theme.ListItemStyle.Render(line)
	}

	rows := []string{theme.SelectedItemStyle.Render(line)}
	detailStyle := lipgloss.NewStyle().PaddingLeft(7).Foreground(theme.ColorGray)
	if i < len(m.steps) && m.steps[i].Description != "" {
		rows = append(rows, detailStyle.Width(max(m.width-10, 20)).Render(m.steps[i].Description))
	}
	if sp.CompletedAt != nil {
		rows = append(rows, detailStyle.Render("done "+sp.CompletedAt.Local().Format("Jan 02 15:04")))
	}
	if sp.Notes != "" {
		rows = append(rows, detailStyle.Italic(true).Render("notes: "+sp.Notes))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// banner tells the parent what the session is waiting for.
func (m Model) banner() string {
	s := m.session
	style := lipgloss.NewStyle().Bold(true)
	switch {
	case s.Status() == model.StatusResolved:
		return style.Foreground(theme.ColorGreen).Render("This struggle is resolved.")
	case s.State.IsDeferred():
		return style.Foreground(theme.ColorOrange).
			Render("This approach did not help yet. Untick a step to reopen it, then press s to try the other approach.")
	case s.AllStepsComplete():
		return style.Foreground(theme.ColorYellow).
			Render("All steps done! Press f to tell us how it went.")
	}
	return ""
}

// stateLabel spells out the unresolved variants the status alone hides.
func stateLabel(st model.State) string {
	switch {
	case st.IsSwitched():
		return "switched"
	case st.IsDeferred():
		return "not yet"
	}
	if o, ok := st.Outcome(); ok {
		return fmt.Sprintf("%s (%s)", st.Status(), o)
	}
	return string(st.Status())
}
