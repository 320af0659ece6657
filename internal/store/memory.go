package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/nhle/guidance/internal/model"
)

// MemoryStore keeps sessions in a map. Values are cloned on the way in and
// out so callers never share state with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]model.GuidanceSession
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]model.GuidanceSession),
	}
}

func (m *MemoryStore) Save(_ context.Context, s *model.GuidanceSession) error {
	if s.ID == "" {
		return fmt.Errorf("saving session: empty id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[s.ID] = s.Clone()
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*model.GuidanceSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	c := s.Clone()
	return &c, nil
}

func (m *MemoryStore) List(_ context.Context, filter SessionFilter) ([]model.GuidanceSession, error) {
	m.mu.RLock()
	var result []model.GuidanceSession
	for _, s := range m.sessions {
		if filter.matches(&s) {
			result = append(result, s.Clone())
		}
	}
	m.mu.RUnlock()

	sortRecentFirst(result)
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) Close() error { return nil }
