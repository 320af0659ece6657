package sessionlist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/guidance/internal/model"
	"github.com/nhle/guidance/internal/progress"
	"github.com/nhle/guidance/internal/theme"
)

// maxTags is how many tags a row shows before eliding the rest.
const maxTags = 2

// SessionItem wraps a session so it can be used in a bubbles/list.
type SessionItem struct {
	Session model.GuidanceSession
}

// FilterValue returns the string used for fuzzy filtering.
func (i SessionItem) FilterValue() string {
	return i.Session.FlowTitle + " " + strings.Join(i.Session.Tags, " ")
}

// Title returns the flow title for the list.
func (i SessionItem) Title() string { return i.Session.FlowTitle }

// Description returns a short summary line for the list.
func (i SessionItem) Description() string {
	parts := []string{
		string(i.Session.Status()),
		progress.Label(&i.Session),
		relativeTime(i.Session.UpdatedAt),
	}
	return strings.Join(parts, " | ")
}

// ItemDelegate implements list.ItemDelegate for session rows.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single session row.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	si, ok := item.(SessionItem)
	if !ok {
		return
	}
	fmt.Fprint(w, renderRow(&si.Session, index == m.Index()))
}

func renderRow(s *model.GuidanceSession, selected bool) string {
	status := s.Status()
	statusBadge := theme.StatusStyle(status).Render(string(status))
	approachBadge := theme.ApproachStyle(s.Approach).Render(string(s.Approach))

	tagBadge := ""
	if len(s.Tags) > 0 {
		display := s.Tags
		if len(display) > maxTags {
			display = append(append([]string(nil), display[:maxTags]...), "…")
		}
		tagBadge = lipgloss.NewStyle().
			Foreground(theme.ColorMagenta).
			Render(" #" + strings.Join(display, ","))
	}

	meta := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(fmt.Sprintf("  %s · %s", progress.Label(s), relativeTime(s.UpdatedAt)))

	line := fmt.Sprintf("%s %s %s %s%s%s",
		statusSymbol(s), statusBadge, approachBadge, s.FlowTitle, tagBadge, meta)

	if status == model.StatusResolved {
		line = theme.DimmedStyle.Render(line)
	}
	if selected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

// statusSymbol gives each state a glyph so rows read without color.
func statusSymbol(s *model.GuidanceSession) string {
	switch {
	case s.Status() == model.StatusResolved:
		return "✓"
	case s.State.IsSwitched():
		return "↻"
	case s.State.IsDeferred():
		return "✗"
	default:
		return "○"
	}
}

// relativeTime returns a human-friendly relative time string.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return fmt.Sprintf("%dw ago", int(d.Hours()/24/7))
	}
}
