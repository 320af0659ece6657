package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/guidance/internal/engine"
	"github.com/nhle/guidance/internal/keys"
	"github.com/nhle/guidance/internal/model"
	appsync "github.com/nhle/guidance/internal/sync"
	"github.com/nhle/guidance/internal/ui"
	"github.com/nhle/guidance/internal/ui/catalogview"
	"github.com/nhle/guidance/internal/ui/command"
	"github.com/nhle/guidance/internal/ui/detail"
	"github.com/nhle/guidance/internal/ui/feedback"
	helpview "github.com/nhle/guidance/internal/ui/help"
	"github.com/nhle/guidance/internal/ui/sessionform"
	"github.com/nhle/guidance/internal/ui/sessionlist"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewDetail
	ViewHelp
	ViewCommand
	ViewCreate
	ViewNote
	ViewFeedback
	ViewCatalog
)

// Model is the root Bubble Tea model that routes between views and runs
// session operations through the engine.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	engine       *engine.Engine
	ownerID      string
	keys         *keys.KeyMap
	sessionList  sessionlist.Model
	detail       detail.Model
	helpView     helpview.Model
	commandView  command.Model
	sessionForm  sessionform.Model
	feedbackForm feedback.Model
	catalogView  catalogview.Model
	poller       *appsync.Poller
	ready        bool
	err          error
}

// New creates the root application model for ownerID's sessions. poller may
// be nil, in which case the list only reloads on demand.
func New(eng *engine.Engine, ownerID string, poller *appsync.Poller) Model {
	k := keys.DefaultKeyMap()

	return Model{
		currentView:  ViewList,
		engine:       eng,
		ownerID:      ownerID,
		keys:         k,
		sessionList:  sessionlist.New(eng, k, ownerID, 80, 24),
		detail:       detail.New(k, 80, 24),
		helpView:     helpview.New(k, 80, 24),
		commandView:  command.New(80, 24),
		sessionForm:  sessionform.New(eng.Catalog().KnownTags(), 80, 24),
		feedbackForm: feedback.New(80, 24),
		catalogView:  catalogview.New(eng.Catalog(), k, 80, 24),
		poller:       poller,
	}
}

// Init loads the session list and starts watching the store.
func (m Model) Init() tea.Cmd {
	if m.poller == nil {
		return m.sessionList.Init()
	}
	return tea.Batch(m.sessionList.Init(), m.poller.Start())
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.sessionList.SetSize(w, h)
		m.detail.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		m.sessionForm.SetSize(w, h)
		m.feedbackForm.SetSize(w, h)
		m.catalogView.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case sessionlist.SessionsLoadedMsg:
		var cmd tea.Cmd
		m.sessionList, cmd = m.sessionList.Update(msg)
		return m, cmd

	case appsync.SyncResultMsg:
		return m.handleSyncResult(msg)

	case sessionlist.SelectedSessionMsg:
		return m, m.loadSession(msg.ID)

	case sessionlist.DeleteSessionMsg:
		return m, m.deleteSession(msg.ID)

	case sessionLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			if errors.Is(msg.err, engine.ErrNotFound) && m.currentView == ViewDetail {
				m.currentView = ViewList
			}
			return m, nil
		}
		m.showSession(msg.session)
		return m, nil

	case sessionUpdatedMsg:
		return m.handleSessionUpdated(msg)

	case sessionDeletedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		if s := m.detail.Session(); s != nil && s.ID == msg.id && m.currentView == ViewDetail {
			m.currentView = ViewList
		}
		return m, m.sessionList.LoadSessions()

	case detail.BackMsg:
		m.currentView = ViewList
		return m, m.sessionList.LoadSessions()

	case detail.ActionMsg:
		cmd := m.runAction(msg)
		return m, cmd

	case sessionform.CreateSubmittedMsg:
		m.currentView = ViewList
		return m, m.createSession(msg.Tags, msg.Note)

	case sessionform.NoteSubmittedMsg:
		m.currentView = ViewDetail
		return m, m.saveNote(msg)

	case sessionform.CancelMsg, feedback.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case feedback.SubmittedMsg:
		m.currentView = ViewDetail
		return m, m.submitFeedback(msg.SessionID, string(msg.Label), msg.Notes)

	case catalogview.StartMsg:
		m.currentView = ViewList
		return m, m.createSession([]string{msg.Tag}, "")

	case catalogview.CloseMsg:
		m.currentView = ViewList
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		cmd := m.executeCommand(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, m.quit()
		}
		m.err = nil
		if handled, next, cmd := m.handleGlobalKey(msg); handled {
			return next, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKey processes keys that work across views. Forms and the
// command palette own the keyboard, so only navigation views are covered.
func (m Model) handleGlobalKey(msg tea.KeyMsg) (bool, Model, tea.Cmd) {
	switch m.currentView {
	case ViewHelp:
		if key.Matches(msg, m.keys.Help, m.keys.Back) {
			m.currentView = m.previousView
			return true, m, nil
		}
		return false, m, nil

	case ViewCommand:
		if key.Matches(msg, m.keys.Back) {
			m.currentView = m.previousView
			return true, m, nil
		}
		return false, m, nil

	case ViewList:
		if m.sessionList.Filtering() || m.sessionList.Confirming() {
			return false, m, nil
		}
	case ViewDetail:
	default:
		return false, m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.currentView == ViewList {
			return true, m, m.quit()
		}
	case key.Matches(msg, m.keys.Help):
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return true, m, nil
	case key.Matches(msg, m.keys.Command):
		m.previousView = m.currentView
		m.currentView = ViewCommand
		cmd := m.commandView.Focus()
		return true, m, cmd
	case key.Matches(msg, m.keys.New):
		if m.currentView == ViewList {
			cmd := m.openCreate()
			return true, m, cmd
		}
	case key.Matches(msg, m.keys.Catalog):
		if m.currentView == ViewList {
			m.openCatalog()
			return true, m, nil
		}
	case key.Matches(msg, m.keys.Refresh):
		cmd := m.refresh()
		return true, m, cmd
	}
	return false, m, nil
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.sessionList, cmd = m.sessionList.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewCreate, ViewNote:
		m.sessionForm, cmd = m.sessionForm.Update(msg)
	case ViewFeedback:
		m.feedbackForm, cmd = m.feedbackForm.Update(msg)
	case ViewCatalog:
		m.catalogView, cmd = m.catalogView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("Guidance", m.headerContext())
	statusBar := m.layout.RenderStatusBar(m.keyHints(), m.err)
	return m.layout.RenderWithFrame(header, m.renderContent(), statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewList:
		return m.sessionList.View()
	case ViewDetail:
		return m.detail.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewCreate, ViewNote:
		return m.sessionForm.View()
	case ViewFeedback:
		return m.feedbackForm.View()
	case ViewCatalog:
		return m.catalogView.View()
	default:
		return ""
	}
}

func (m Model) headerContext() string {
	ctx := fmt.Sprintf("%s · %s", m.ownerID, m.sessionList.FilterLabel())
	if m.poller == nil {
		return ctx
	}
	st := m.poller.Status()
	switch {
	case st.State == appsync.SyncError:
		return ctx + " · sync error"
	case !st.LastSync.IsZero():
		return ctx + " · synced " + st.LastSync.Format("15:04")
	}
	return ctx
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | tab complete | esc back"
	case ViewDetail:
		return "esc back | space toggle | s switch | f feedback | e note | N step notes | j/k move"
	case ViewCreate, ViewNote, ViewFeedback:
		return "enter submit | esc cancel"
	case ViewCatalog:
		return "enter start | tab approach | j/k move | esc back"
	}
	if m.sessionList.Confirming() {
		return "←/→ choose | enter confirm | esc cancel"
	}
	return "q quit | ? help | n new | c plans | enter open | d delete | tab status | / filter"
}

// openCreate switches to the struggle form.
func (m *Model) openCreate() tea.Cmd {
	m.previousView = m.currentView
	m.currentView = ViewCreate
	return m.sessionForm.StartCreate()
}

// openFeedback switches to the feedback form when s is waiting for one.
func (m *Model) openFeedback(s *model.GuidanceSession) tea.Cmd {
	if s.Status() == model.StatusResolved {
		m.err = fmt.Errorf("%q is already resolved", s.FlowTitle)
		return nil
	}
	if !s.AllStepsComplete() {
		m.err = fmt.Errorf("finish all %d steps before giving feedback", s.TotalSteps)
		return nil
	}
	m.previousView = ViewDetail
	m.currentView = ViewFeedback
	return m.feedbackForm.Start(s.ID, s.FlowTitle)
}

func (m *Model) showSession(s *model.GuidanceSession) {
	m.detail.SetSession(s, m.engine.Steps(s))
	m.currentView = ViewDetail
}

// openCatalog switches to the plan browser.
func (m *Model) openCatalog() {
	m.previousView = m.currentView
	m.currentView = ViewCatalog
	m.catalogView.Reset()
}

func (m Model) quit() tea.Cmd {
	if m.poller != nil {
		m.poller.Stop()
	}
	return tea.Quit
}

// handleSyncResult reloads what is on screen when the store changed
// underneath the UI, then waits for the next poll.
func (m Model) handleSyncResult(msg appsync.SyncResultMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if m.poller != nil {
		cmds = append(cmds, m.poller.WaitForNextResult())
	}
	if msg.Error != nil {
		m.err = fmt.Errorf("sync: %w", msg.Error)
		return m, tea.Batch(cmds...)
	}
	if msg.Changed {
		cmds = append(cmds, m.reload())
	}
	return m, tea.Batch(cmds...)
}

// refresh reloads immediately and asks the poller to re-read the store.
func (m *Model) refresh() tea.Cmd {
	if m.poller != nil {
		m.poller.RefreshAll()
	}
	return m.reload()
}

func (m *Model) reload() tea.Cmd {
	cmds := []tea.Cmd{m.sessionList.LoadSessions()}
	if s := m.detail.Session(); s != nil && m.currentView == ViewDetail {
		cmds = append(cmds, m.loadSession(s.ID))
	}
	return tea.Batch(cmds...)
}

func (m Model) handleSessionUpdated(msg sessionUpdatedMsg) (tea.Model, tea.Cmd) {
	reload := m.sessionList.LoadSessions()
	if msg.err != nil {
		m.err = msg.err
		return m, reload
	}

	m.showSession(msg.session)
	if msg.readyForFeedback {
		open := m.openFeedback(msg.session)
		return m, tea.Batch(reload, open)
	}
	return m, reload
}

// runAction carries out a request from the detail view.
func (m *Model) runAction(msg detail.ActionMsg) tea.Cmd {
	s := m.detail.Session()
	if s == nil || s.ID != msg.SessionID {
		return nil
	}

	switch msg.Action {
	case detail.ActionToggle:
		return m.toggleStep(s.ID, msg.StepIndex)
	case detail.ActionSwitch:
		return m.switchApproach(s.ID)
	case detail.ActionFeedback:
		return m.openFeedback(s)
	case detail.ActionNote:
		m.previousView = ViewDetail
		m.currentView = ViewNote
		return m.sessionForm.StartNote(s.ID, sessionform.SessionNote, s.CustomNote)
	case detail.ActionStepNote:
		if msg.StepIndex < 0 || msg.StepIndex >= len(s.StepsTried) {
			return nil
		}
		m.previousView = ViewDetail
		m.currentView = ViewNote
		return m.sessionForm.StartNote(s.ID, msg.StepIndex, s.StepsTried[msg.StepIndex].Notes)
	}
	return nil
}

// executeCommand handles a command from the command palette. Session
// commands act on the open session, or the highlighted one in the list.
func (m *Model) executeCommand(c command.CommandMsg) tea.Cmd {
	switch c.Name {
	case "refresh":
		return m.refresh()
	case "quit", "q":
		return m.quit()
	case "help":
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return nil
	case "new":
		return m.openCreate()
	case "plans", "catalog":
		m.openCatalog()
		return nil
	case "all":
		m.currentView = ViewList
		return m.sessionList.SetStatusFilter(nil)
	case "ongoing", "resolved", "unresolved":
		st := model.Status(c.Name)
		m.currentView = ViewList
		return m.sessionList.SetStatusFilter(&st)
	case "switch", "delete", "feedback":
		return m.sessionCommand(c)
	}

	m.err = fmt.Errorf("unknown command %q", c.Name)
	return nil
}

func (m *Model) sessionCommand(c command.CommandMsg) tea.Cmd {
	id, ok := m.targetID()
	if !ok {
		m.err = fmt.Errorf("%s: no session selected", c.Name)
		return nil
	}
	switch c.Name {
	case "switch":
		return m.switchApproach(id)
	case "delete":
		return m.deleteSession(id)
	}
	if len(c.Args) > 0 {
		return m.submitFeedback(id, strings.Join(c.Args, " "), "")
	}
	if s := m.detail.Session(); s != nil && s.ID == id {
		return m.openFeedback(s)
	}
	return m.loadSession(id)
}

func (m Model) targetID() (string, bool) {
	if m.currentView == ViewDetail {
		if s := m.detail.Session(); s != nil {
			return s.ID, true
		}
	}
	return m.sessionList.SelectedID()
}
