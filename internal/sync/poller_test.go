package sync

import (
	"context"
	"errors"
	gosync "sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/guidance/internal/model"
	"github.com/nhle/guidance/internal/store"
)

type fakeLister struct {
	mu       gosync.Mutex
	sessions []model.GuidanceSession
	err      error
	owners   []string
}

func (f *fakeLister) ListSessions(_ context.Context, filter store.SessionFilter) ([]model.GuidanceSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if filter.OwnerID != nil {
		f.owners = append(f.owners, *filter.OwnerID)
	}
	return append([]model.GuidanceSession(nil), f.sessions...), f.err
}

func (f *fakeLister) set(sessions []model.GuidanceSession, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions = sessions
	f.err = err
}

func next(t *testing.T, cmd tea.Cmd) SyncResultMsg {
	t.Helper()
	require.NotNil(t, cmd)

	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	select {
	case msg := <-done:
		res, ok := msg.(SyncResultMsg)
		require.True(t, ok, "unexpected message %T", msg)
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for poll result")
		return SyncResultMsg{}
	}
}

func at(sec int) time.Time {
	return time.Date(2026, 3, 1, 9, 0, sec, 0, time.UTC)
}

func TestPollerReportsChanges(t *testing.T) {
	fl := &fakeLister{sessions: []model.GuidanceSession{{ID: "a", UpdatedAt: at(0)}}}
	p := New(fl, "local", time.Hour)
	defer p.Stop()

	first := next(t, p.Start())
	assert.True(t, first.Changed)
	assert.Equal(t, 1, first.Count)
	assert.Nil(t, p.Start(), "second Start is a no-op")

	p.RefreshAll()
	assert.False(t, next(t, p.WaitForNextResult()).Changed)

	fl.set([]model.GuidanceSession{{ID: "a", UpdatedAt: at(5)}}, nil)
	p.RefreshAll()
	res := next(t, p.WaitForNextResult())
	assert.True(t, res.Changed)
	assert.Equal(t, SyncIdle, p.Status().State)
	assert.False(t, p.Status().LastSync.IsZero())

	fl.mu.Lock()
	defer fl.mu.Unlock()
	for _, o := range fl.owners {
		assert.Equal(t, "local", o)
	}
}

func TestPollerReportsErrors(t *testing.T) {
	fl := &fakeLister{err: errors.New("connection refused")}
	p := New(fl, "local", time.Hour)
	defer p.Stop()

	res := next(t, p.Start())
	assert.EqualError(t, res.Error, "connection refused")
	assert.Equal(t, SyncError, p.Status().State)
	assert.Equal(t, "error", p.Status().State.String())

	fl.set(nil, nil)
	p.RefreshAll()
	res = next(t, p.WaitForNextResult())
	assert.NoError(t, res.Error)
	assert.True(t, res.Changed, "first successful poll counts as a change")
}

func TestStopIsIdempotent(t *testing.T) {
	p := New(&fakeLister{}, "local", 0)
	assert.Equal(t, 30*time.Second, p.interval)
	p.Stop()
	p.Start()
	p.Stop()
	p.Stop()
}
