package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/guidance/internal/engine"
	"github.com/nhle/guidance/internal/model"
	"github.com/nhle/guidance/internal/ui/sessionform"
)

// sessionLoadedMsg carries a session fetched for the detail view.
type sessionLoadedMsg struct {
	session *model.GuidanceSession
	err     error
}

// sessionUpdatedMsg is sent after any engine operation that changes a session.
type sessionUpdatedMsg struct {
	session          *model.GuidanceSession
	readyForFeedback bool
	err              error
}

// sessionDeletedMsg is sent after a session is deleted.
type sessionDeletedMsg struct {
	id  string
	err error
}

func (m Model) loadSession(id string) tea.Cmd {
	eng := m.engine
	return func() tea.Msg {
		s, err := eng.GetSession(context.Background(), id)
		return sessionLoadedMsg{session: s, err: err}
	}
}

func (m Model) createSession(tags []string, note string) tea.Cmd {
	eng := m.engine
	in := engine.NewSession{OwnerID: m.ownerID, Tags: tags, CustomNote: note}
	return func() tea.Msg {
		s, err := eng.CreateSession(context.Background(), in)
		return sessionUpdatedMsg{session: s, err: err}
	}
}

func (m Model) toggleStep(id string, index int) tea.Cmd {
	eng := m.engine
	return func() tea.Msg {
		res, err := eng.ToggleStep(context.Background(), id, index)
		if err != nil {
			return sessionUpdatedMsg{err: err}
		}
		return sessionUpdatedMsg{session: res.Session, readyForFeedback: res.ReadyForFeedback}
	}
}

func (m Model) switchApproach(id string) tea.Cmd {
	eng := m.engine
	return func() tea.Msg {
		s, err := eng.SwitchApproach(context.Background(), id)
		return sessionUpdatedMsg{session: s, err: err}
	}
}

func (m Model) submitFeedback(id, label, notes string) tea.Cmd {
	eng := m.engine
	return func() tea.Msg {
		s, err := eng.SubmitFeedback(context.Background(), id, label, notes)
		return sessionUpdatedMsg{session: s, err: err}
	}
}

func (m Model) saveNote(msg sessionform.NoteSubmittedMsg) tea.Cmd {
	eng := m.engine
	return func() tea.Msg {
		ctx := context.Background()
		var (
			s   *model.GuidanceSession
			err error
		)
		if msg.StepIndex == sessionform.SessionNote {
			s, err = eng.UpdateNote(ctx, msg.SessionID, msg.Note)
		} else {
			s, err = eng.UpdateStepNotes(ctx, msg.SessionID, msg.StepIndex, msg.Note)
		}
		return sessionUpdatedMsg{session: s, err: err}
	}
}

func (m Model) deleteSession(id string) tea.Cmd {
	eng := m.engine
	return func() tea.Msg {
		return sessionDeletedMsg{id: id, err: eng.DeleteSession(context.Background(), id)}
	}
}
