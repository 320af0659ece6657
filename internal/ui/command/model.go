package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/guidance/internal/theme"
)

// Commands understood by the palette.
var Commands = []string{
	"new", "plans", "refresh", "help", "quit",
	"all", "ongoing", "resolved", "unresolved",
	"switch", "feedback", "delete",
}

// CommandMsg is emitted when the user executes a command.
type CommandMsg struct {
	Name string
	Args []string
}

// Parse splits a raw palette line into a lower-cased command name and its
// arguments. A blank line yields ok == false.
func Parse(raw string) (CommandMsg, bool) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return CommandMsg{}, false
	}
	return CommandMsg{
		Name: strings.ToLower(strings.TrimPrefix(fields[0], ":")),
		Args: fields[1:],
	}, true
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command..."
	ti.Prompt = ": "
	ti.ShowSuggestions = true
	ti.SetSuggestions(Commands)
	ti.Focus()
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
		parsed, ok := Parse(m.input.Value())
		m.input.Reset()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg { return parsed }
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1).
		Render("Command Palette")

	hint := theme.HelpStyle.Render(strings.Join(Commands, " · "))
	content := lipgloss.JoinVertical(lipgloss.Left, title, m.input.View(), hint)

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
