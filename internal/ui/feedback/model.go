// Package feedback asks the parent how a finished approach went.
package feedback

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/guidance/internal/model"
	"github.com/nhle/guidance/internal/theme"
)

// SubmittedMsg carries the chosen label and optional notes.
type SubmittedMsg struct {
	SessionID string
	Label     model.Feedback
	Notes     string
}

// CancelMsg is dispatched when the user aborts the form.
type CancelMsg struct{}

type formBindings struct {
	label model.Feedback
	notes string
}

// Model is the completion feedback form.
type Model struct {
	form      *huh.Form
	fb        *formBindings
	sessionID string
	flowTitle string
	width     int
	height    int
}

// New creates a new feedback form model.
func New(width, height int) Model {
	return Model{fb: &formBindings{}, width: width, height: height}
}

// Start opens the form for a session whose steps are all complete.
func (m *Model) Start(sessionID, flowTitle string) tea.Cmd {
	m.sessionID = sessionID
	m.flowTitle = flowTitle
	*m.fb = formBindings{label: model.FeedbackWorkedWell}

	opts := make([]huh.Option[model.Feedback], len(model.Feedbacks))
	for i, f := range model.Feedbacks {
		opts[i] = huh.NewOption(string(f), f)
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[model.Feedback]().
				Title("How did it go?").
				Options(opts...).
				Value(&m.fb.label),
			huh.NewText().
				Title("Notes").
				Placeholder("What changed? (optional)").
				Value(&m.fb.notes),
		),
	).WithWidth(min(max(m.width-4, 40), 100))

	return m.form.Init()
}

// Update handles messages for the feedback form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		out := SubmittedMsg{SessionID: m.sessionID, Label: m.fb.label, Notes: m.fb.notes}
		return m, func() tea.Msg { return out }
	case huh.StateAborted:
		return m, func() tea.Msg { return CancelMsg{} }
	}
	return m, cmd
}

// View renders the form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		Render("All steps done: " + m.flowTitle)
	hint := theme.HelpStyle.MarginBottom(1).
		Render(`"Not Yet!" keeps the struggle open so you can try the other approach.`)

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, hint, m.form.View()))
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
