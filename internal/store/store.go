package store

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/nhle/guidance/internal/model"
)

// ErrNotFound is returned (wrapped) when a session id has no record.
var ErrNotFound = errors.New("not found")

// SessionFilter controls which sessions List returns.
type SessionFilter struct {
	Status  *model.Status // nil = all
	OwnerID *string       // nil = all owners
	Limit   int           // 0 = no limit
}

func (f SessionFilter) matches(s *model.GuidanceSession) bool {
	if f.Status != nil && s.Status() != *f.Status {
		return false
	}
	if f.OwnerID != nil && s.OwnerID != *f.OwnerID {
		return false
	}
	return true
}

// SessionStore persists guidance sessions.
type SessionStore interface {
	// Save inserts or replaces the session with s.ID.
	Save(ctx context.Context, s *model.GuidanceSession) error
	Get(ctx context.Context, id string) (*model.GuidanceSession, error)
	// List returns matching sessions, most recently updated first.
	List(ctx context.Context, filter SessionFilter) ([]model.GuidanceSession, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// sortRecentFirst orders by UpdatedAt descending, then by id for stability.
func sortRecentFirst(sessions []model.GuidanceSession) {
	slices.SortStableFunc(sessions, func(a, b model.GuidanceSession) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
