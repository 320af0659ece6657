// Package catalogview lets the user browse the step plans for every known
// struggle and start a session from one.
package catalogview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/guidance/internal/keys"
	"github.com/nhle/guidance/internal/model"
	"github.com/nhle/guidance/internal/theme"
)

// CloseMsg signals the parent to close the catalog view.
type CloseMsg struct{}

// StartMsg asks the parent to start a session for Tag.
type StartMsg struct {
	Tag string
}

// Source is the read side of the step catalog.
type Source interface {
	KnownTags() []string
	Steps(tag string, approach model.Approach) []model.StepDefinition
	HasDedicatedSteps(tag string, approach model.Approach) bool
	TitleFor(tag string) string
}

// Model is the Bubble Tea model for the plan browser.
type Model struct {
	source      Source
	keys        *keys.KeyMap
	tags        []string
	selectedIdx int
	approach    model.Approach
	width       int
	height      int
}

// New creates a catalog browser over src.
func New(src Source, k *keys.KeyMap, width, height int) Model {
	return Model{
		source:   src,
		keys:     k,
		tags:     src.KnownTags(),
		approach: model.ApproachCBTPCIT,
		width:    width,
		height:   height,
	}
}

// Reset moves the cursor back to the first tag and the primary approach.
func (m *Model) Reset() {
	m.selectedIdx = 0
	m.approach = model.ApproachCBTPCIT
}

// Selected returns the highlighted tag.
func (m Model) Selected() (string, bool) {
	if len(m.tags) == 0 {
		return "", false
	}
	return m.tags[m.selectedIdx], true
}

// Approach returns the approach whose steps are being previewed.
func (m Model) Approach() model.Approach {
	return m.approach
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Down):
		if len(m.tags) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.tags)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(m.tags) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(m.tags) - 1
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.CycleStatus), key.Matches(msg, m.keys.Switch):
		m.approach = m.approach.Other()
		return m, nil

	case key.Matches(msg, m.keys.Select):
		tag, ok := m.Selected()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg { return StartMsg{Tag: tag} }
	}
	return m, nil
}

// View renders the tag list next to the selected plan.
func (m Model) View() string {
	if len(m.tags) == 0 {
		empty := lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true)
		return lipgloss.NewStyle().Padding(1, 2).Render(empty.Render("The catalog has no struggle plans."))
	}

	listWidth := 26
	for _, t := range m.tags {
		listWidth = max(listWidth, lipgloss.Width(t)+4)
	}

	var list strings.Builder
	list.WriteString(lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).Render("Struggles"))
	list.WriteString("\n\n")
	for i, t := range m.tags {
		if i == m.selectedIdx {
			list.WriteString(theme.SelectedItemStyle.Render(t))
		} else {
			list.WriteString(theme.ListItemStyle.Render(t))
		}
		list.WriteString("\n")
	}

	left := lipgloss.NewStyle().Width(listWidth).Render(list.String())
	right := lipgloss.NewStyle().
		Width(max(m.width-listWidth-6, 20)).
		PaddingLeft(2).
		Render(m.renderPlan())

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
}

func (m Model) renderPlan() string {
	tag := m.tags[m.selectedIdx]
	dim := lipgloss.NewStyle().Foreground(theme.ColorGray)

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(m.source.TitleFor(tag)))
	b.WriteString("  ")
	b.WriteString(theme.ApproachStyle(m.approach).Render(string(m.approach)))
	b.WriteString("\n\n")

	if !m.source.HasDedicatedSteps(tag, m.approach) {
		b.WriteString(dim.Italic(true).Render("No dedicated plan, showing the general steps."))
		b.WriteString("\n\n")
	}

	for _, s := range m.source.Steps(tag, m.approach) {
		fmt.Fprintf(&b, "%d. %s\n", s.Number, s.Title)
		if s.Description != "" {
			b.WriteString(dim.Render("   " + s.Description))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("enter start | tab other approach | esc back"))
	return b.String()
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
