package sessionlist

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/guidance/internal/keys"
	"github.com/nhle/guidance/internal/model"
	"github.com/nhle/guidance/internal/store"
	"github.com/nhle/guidance/internal/theme"
)

// Lister loads sessions for display.
type Lister interface {
	ListSessions(ctx context.Context, filter store.SessionFilter) ([]model.GuidanceSession, error)
}

// SessionsLoadedMsg is sent when sessions have been loaded.
type SessionsLoadedMsg struct {
	Sessions []model.GuidanceSession
	Err      error
}

// SelectedSessionMsg is sent when a user opens a session.
type SelectedSessionMsg struct {
	ID string
}

// DeleteSessionMsg asks the app to delete a session the user confirmed.
type DeleteSessionMsg struct {
	ID string
}

// confirmBinding holds the confirm answer on the heap so huh's Value()
// pointer survives model copies.
type confirmBinding struct {
	confirm bool
}

// statusFilters is the cycle walked by the status filter key. nil shows all.
var statusFilters = []*model.Status{
	nil,
	statusPtr(model.StatusOngoing),
	statusPtr(model.StatusResolved),
	statusPtr(model.StatusUnresolved),
}

func statusPtr(s model.Status) *model.Status { return &s }

// Model is the session list view.
type Model struct {
	list        list.Model
	sessions    Lister
	keys        *keys.KeyMap
	ownerID     string
	filterIndex int
	err         error
	confirmForm *huh.Form
	confirmID   string
	fb          *confirmBinding
	width       int
	height      int
}

// New creates a session list showing ownerID's sessions.
func New(sessions Lister, k *keys.KeyMap, ownerID string, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.Title = "Struggles"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = theme.HeaderStyle
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ShowFullHelp.SetEnabled(false)
	l.KeyMap.CloseFullHelp.SetEnabled(false)

	return Model{
		list:     l,
		sessions: sessions,
		keys:     k,
		ownerID:  ownerID,
		fb:       &confirmBinding{},
		width:    width,
		height:   height,
	}
}

// Init returns a command that loads the initial set of sessions.
func (m Model) Init() tea.Cmd {
	return m.LoadSessions()
}

// Update handles messages for the session list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmForm != nil {
		if _, loaded := msg.(SessionsLoadedMsg); !loaded {
			return m.updateConfirm(msg)
		}
	}

	switch msg := msg.(type) {
	case SessionsLoadedMsg:
		m.err = msg.Err
		items := make([]list.Item, len(msg.Sessions))
		for i, s := range msg.Sessions {
			items[i] = SessionItem{Session: s}
		}
		return m, m.list.SetItems(items)

	case tea.KeyMsg:
		if m.Filtering() {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Select):
			if id, ok := m.SelectedID(); ok {
				return m, func() tea.Msg { return SelectedSessionMsg{ID: id} }
			}
			return m, nil

		case key.Matches(msg, m.keys.Delete):
			item, ok := m.list.SelectedItem().(SessionItem)
			if !ok {
				return m, nil
			}
			m.confirmID = item.Session.ID
			m.fb.confirm = false
			m.confirmForm = m.buildConfirmForm(item.Session.FlowTitle)
			return m, m.confirmForm.Init()

		case key.Matches(msg, m.keys.CycleStatus):
			m.filterIndex = (m.filterIndex + 1) % len(statusFilters)
			return m, m.LoadSessions()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) buildConfirmForm(title string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q?", title)).
				Description("Its steps and notes will be lost.").
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(min(max(m.width-4, 40), 100))
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}

	switch m.confirmForm.State {
	case huh.StateCompleted:
		m.confirmForm = nil
		if m.fb.confirm {
			id := m.confirmID
			return m, func() tea.Msg { return DeleteSessionMsg{ID: id} }
		}
		return m, nil
	case huh.StateAborted:
		m.confirmForm = nil
		return m, nil
	}
	return m, cmd
}

// Confirming reports whether a delete confirmation is open.
func (m Model) Confirming() bool {
	return m.confirmForm != nil
}

// Filtering reports whether the fuzzy filter input has focus, in which case
// global shortcuts must not fire.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// SelectedID returns the id of the highlighted session.
func (m Model) SelectedID() (string, bool) {
	item, ok := m.list.SelectedItem().(SessionItem)
	if !ok {
		return "", false
	}
	return item.Session.ID, true
}

// SetStatusFilter jumps the filter cycle to status; nil shows everything.
func (m *Model) SetStatusFilter(status *model.Status) tea.Cmd {
	m.filterIndex = 0
	for i, f := range statusFilters {
		if f != nil && status != nil && *f == *status {
			m.filterIndex = i
		}
	}
	return m.LoadSessions()
}

// FilterLabel names the active status filter for the header.
func (m Model) FilterLabel() string {
	if f := statusFilters[m.filterIndex]; f != nil {
		return string(*f)
	}
	return "all"
}

// View renders the session list view.
func (m Model) View() string {
	if m.confirmForm != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.confirmForm.View())
	}
	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}
	return m.list.View()
}

func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	switch {
	case m.err != nil:
		return style.Foreground(theme.ColorRed).Render("Could not load sessions.\n" + m.err.Error())
	case statusFilters[m.filterIndex] != nil:
		return style.Render("No " + m.FilterLabel() + " sessions.\nPress tab to change the filter.")
	}
	return style.Render("No struggles logged yet.\n\nPress n to log one.")
}

// LoadSessions returns a tea.Cmd that lists sessions with the current filter,
// most recently updated first.
func (m Model) LoadSessions() tea.Cmd {
	owner := m.ownerID
	filter := store.SessionFilter{
		Status:  statusFilters[m.filterIndex],
		OwnerID: &owner,
	}
	lister := m.sessions
	return func() tea.Msg {
		sessions, err := lister.ListSessions(context.Background(), filter)
		return SessionsLoadedMsg{Sessions: sessions, Err: err}
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}
