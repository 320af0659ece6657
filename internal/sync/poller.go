// Package sync watches the session store for changes made outside the
// running UI, such as CLI commands or another process sharing the store.
package sync

import (
	"context"
	"slices"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/guidance/internal/model"
	"github.com/nhle/guidance/internal/store"
)

// SyncState represents the current state of the watcher.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncRunning
	SyncError
)

func (s SyncState) String() string {
	switch s {
	case SyncRunning:
		return "syncing"
	case SyncError:
		return "error"
	default:
		return "idle"
	}
}

// SyncStatus is a snapshot of the watcher's state.
type SyncStatus struct {
	State    SyncState
	LastSync time.Time
	Error    error
}

// SyncResultMsg is a tea.Msg sent after every poll. Changed is set when the
// owner's sessions differ from the previous poll.
type SyncResultMsg struct {
	Changed bool
	Count   int
	Error   error
}

// Lister is the read side of the engine the poller needs.
type Lister interface {
	ListSessions(ctx context.Context, filter store.SessionFilter) ([]model.GuidanceSession, error)
}

// fetchTimeout is the maximum time allowed for a single poll.
const fetchTimeout = 10 * time.Second

// stamp identifies one version of a session.
type stamp struct {
	id      string
	updated int64
}

// Poller lists an owner's sessions on an interval and reports changes.
type Poller struct {
	lister    Lister
	ownerID   string
	interval  time.Duration
	resultCh  chan SyncResultMsg
	triggerCh chan struct{}
	stopCh    chan struct{}
	mu        gosync.Mutex
	running   bool
	status    SyncStatus
	last      []stamp
	seen      bool
}

// New creates a Poller for ownerID. A non-positive interval falls back to
// thirty seconds.
func New(l Lister, ownerID string, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Poller{
		lister:    l,
		ownerID:   ownerID,
		interval:  interval,
		resultCh:  make(chan SyncResultMsg, 16),
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
	}
}

// Start launches the polling goroutine and returns a command that waits for
// the first result. It is a no-op once started.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.mu.Unlock()

	go p.loop()
	return p.waitForResult()
}

// Stop halts the polling goroutine.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}
	close(p.stopCh)
	p.running = false
}

// RefreshAll triggers an immediate poll.
func (p *Poller) RefreshAll() {
	select {
	case p.triggerCh <- struct{}{}:
	default:
		// A poll is already pending.
	}
}

// Status returns the current watcher state.
func (p *Poller) Status() SyncStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Poller) loop() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll()
	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.poll()
		case <-p.triggerCh:
			p.poll()
		}
	}
}

// poll lists the owner's sessions and sends a SyncResultMsg.
func (p *Poller) poll() {
	p.setStatus(SyncRunning, nil)

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	owner := p.ownerID
	sessions, err := p.lister.ListSessions(ctx, store.SessionFilter{OwnerID: &owner})
	if err != nil {
		p.setStatus(SyncError, err)
		p.sendResult(SyncResultMsg{Error: err})
		return
	}

	stamps := make([]stamp, len(sessions))
	for i, s := range sessions {
		stamps[i] = stamp{id: s.ID, updated: s.UpdatedAt.UnixNano()}
	}

	p.mu.Lock()
	changed := !p.seen || !slices.Equal(stamps, p.last)
	p.last = stamps
	p.seen = true
	p.mu.Unlock()

	p.setStatus(SyncIdle, nil)
	p.sendResult(SyncResultMsg{Changed: changed, Count: len(sessions)})
}

func (p *Poller) setStatus(state SyncState, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status.State = state
	p.status.Error = err
	if state == SyncIdle {
		p.status.LastSync = time.Now()
	}
}

// sendResult sends a result without blocking.
func (p *Poller) sendResult(msg SyncResultMsg) {
	select {
	case p.resultCh <- msg:
	default:
		// Drop if channel is full to avoid blocking the poller
	}
}

func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-p.resultCh
		if !ok {
			return nil
		}
		return result
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next poll result.
// Call it after handling each SyncResultMsg to keep listening.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}
