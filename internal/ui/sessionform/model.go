package sessionform

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/guidance/internal/theme"
)

// SessionNote is the StepIndex of a note that belongs to the whole session.
const SessionNote = -1

// CreateSubmittedMsg is dispatched when the parent logs a new struggle.
type CreateSubmittedMsg struct {
	Tags []string
	Note string
}

// NoteSubmittedMsg is dispatched when a session or step note is saved.
type NoteSubmittedMsg struct {
	SessionID string
	StepIndex int
	Note      string
}

// CancelMsg is dispatched when the user aborts the form.
type CancelMsg struct{}

type mode int

const (
	modeCreate mode = iota
	modeNote
)

// formBindings holds field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	tags      []string
	customTag string
	note      string
}

// Model is the Bubble Tea model for logging a struggle and editing notes.
type Model struct {
	form      *huh.Form
	fb        *formBindings
	mode      mode
	title     string
	sessionID string
	stepIndex int
	knownTags []string
	width     int
	height    int
}

// New creates a new form model offering knownTags in the struggle picker.
func New(knownTags []string, width, height int) Model {
	return Model{
		fb:        &formBindings{},
		knownTags: knownTags,
		width:     width,
		height:    height,
	}
}

// StartCreate initializes the form for logging a new struggle.
func (m *Model) StartCreate() tea.Cmd {
	m.mode = modeCreate
	m.title = "Log a Struggle"
	*m.fb = formBindings{}

	opts := make([]huh.Option[string], len(m.knownTags))
	for i, t := range m.knownTags {
		opts[i] = huh.NewOption(t, t)
	}

	fb := m.fb
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("What is your child struggling with?").
				Description("The first one picked drives the guidance steps.").
				Options(opts...).
				Value(&fb.tags),
			huh.NewInput().
				Title("Something else?").
				Placeholder("Describe it in a few words (optional)").
				Value(&fb.customTag).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" && len(fb.tags) == 0 {
						return errors.New("pick a struggle or describe your own")
					}
					return nil
				}),
			huh.NewText().
				Title("Anything we should know?").
				Placeholder("Optional note...").
				Value(&fb.note),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())

	return m.form.Init()
}

// StartNote initializes the form for editing a note. stepIndex is the
// 0-based step, or SessionNote for the session's own note.
func (m *Model) StartNote(sessionID string, stepIndex int, current string) tea.Cmd {
	m.mode = modeNote
	m.sessionID = sessionID
	m.stepIndex = stepIndex
	*m.fb = formBindings{note: current}

	m.title = "Session Note"
	label := "Note"
	if stepIndex != SessionNote {
		m.title = "Step Notes"
		label = "What happened when you tried this step?"
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title(label).
				Value(&m.fb.note),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())

	return m.form.Init()
}

// Update handles messages for the form.
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
		return m, m.handleSubmit()
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

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(titleStyle.Render(m.title) + "\n" + m.form.View())
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) handleSubmit() tea.Cmd {
	if m.mode == modeNote {
		msg := NoteSubmittedMsg{SessionID: m.sessionID, StepIndex: m.stepIndex, Note: m.fb.note}
		return func() tea.Msg { return msg }
	}

	msg := CreateSubmittedMsg{
		Tags: append([]string(nil), m.fb.tags...),
		Note: m.fb.note,
	}
	if custom := strings.TrimSpace(m.fb.customTag); custom != "" {
		msg.Tags = append(msg.Tags, custom)
	}
	return func() tea.Msg { return msg }
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-4, 10)
}
