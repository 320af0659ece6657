// Package engine implements the guidance flow: creating sessions, ticking
// steps off, switching approach and recording completion feedback.
//
// Every mutating operation validates before it changes anything, works on a
// copy of the stored session, and returns only after the store accepted the
// new version. Operations on the same session id are serialized.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/guidance/internal/catalog"
	"github.com/nhle/guidance/internal/logging"
	"github.com/nhle/guidance/internal/model"
	"github.com/nhle/guidance/internal/progress"
	"github.com/nhle/guidance/internal/store"
)

// Engine runs session transitions against a SessionStore.
type Engine struct {
	store   store.SessionStore
	catalog *catalog.Catalog
	log     *logging.Logger
	locks   *keyedMutex
	now     func() time.Time
	newID   func() string
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator replaces the uuid generator used for new sessions.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// New creates an Engine. A nil logger discards output.
func New(s store.SessionStore, cat *catalog.Catalog, log *logging.Logger, opts ...Option) *Engine {
	if log == nil {
		log = logging.Nop()
	}
	e := &Engine{
		store:   s,
		catalog: cat,
		log:     log.With("component", "engine"),
		locks:   newKeyedMutex(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the step catalog the engine seeds sessions from.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// NewSession holds the input for CreateSession.
type NewSession struct {
	OwnerID    string
	Tags       []string
	CustomNote string
}

// CreateSession starts an ongoing session on the CBT+PCIT approach with
// steps seeded for the primary tag.
func (e *Engine) CreateSession(ctx context.Context, in NewSession) (*model.GuidanceSession, error) {
	const op = "create session"

	owner := strings.TrimSpace(in.OwnerID)
	if owner == "" {
		return nil, e.fail(op, "", invalidInput(op, "owner id is required"))
	}
	tags := NormalizeTags(in.Tags)
	if len(tags) == 0 {
		return nil, e.fail(op, "", invalidInput(op, "at least one struggle tag is required"))
	}

	now := e.now().UTC()
	s := model.GuidanceSession{
		ID:         e.newID(),
		OwnerID:    owner,
		CreatedAt:  now,
		UpdatedAt:  now,
		Tags:       tags,
		FlowTitle:  e.catalog.TitleFor(tags[0]),
		CustomNote: strings.TrimSpace(in.CustomNote),
		Approach:   model.ApproachCBTPCIT,
		StepsTried: model.SeedSteps(e.catalog.Steps(tags[0], model.ApproachCBTPCIT)),
		State:      model.Ongoing(),
	}
	progress.Recompute(&s).Apply(&s)

	if err := e.store.Save(ctx, &s); err != nil {
		return nil, e.fail(op, s.ID, fmt.Errorf("saving session %s: %w", s.ID, err))
	}
	e.log.Info("session created",
		"session_id", s.ID, "tag", tags[0], "total_steps", s.TotalSteps)
	return &s, nil
}

// ToggleResult is returned by ToggleStep.
type ToggleResult struct {
	Session *model.GuidanceSession
	// ReadyForFeedback is set once every step is complete. The session stays
	// ongoing until SubmitFeedback is called.
	ReadyForFeedback bool
}

// ToggleStep flips the completion flag of the step at index (0-based).
// A Switched or deferred session returns to ongoing. Resolved sessions are
// rejected.
func (e *Engine) ToggleStep(ctx context.Context, id string, index int) (*ToggleResult, error) {
	const op = "toggle step"
	s, err := e.mutate(ctx, op, id, func(cur *model.GuidanceSession, now time.Time) (model.GuidanceSession, error) {
		if cur.Status() == model.StatusResolved {
			return model.GuidanceSession{}, invalidState(op, "session %s is already resolved", id)
		}
		if index < 0 || index >= len(cur.StepsTried) {
			return model.GuidanceSession{}, invalidInput(op, "step %d out of range [0, %d)", index, len(cur.StepsTried))
		}

		next := cur.Clone()
		sp := &next.StepsTried[index]
		sp.Completed = !sp.Completed
		if sp.Completed {
			at := now
			sp.CompletedAt = &at
		} else {
			sp.CompletedAt = nil
		}
		progress.Recompute(&next).Apply(&next)

		if next.Status() != model.StatusOngoing {
			next.State = model.Ongoing()
			next.FinalNotes = ""
		}
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	return &ToggleResult{Session: s, ReadyForFeedback: s.AllStepsComplete()}, nil
}

// SubmitFeedback records the parent's verdict once every step is complete.
// "Worked Well!" and "Somewhat!" resolve the session; "Not Yet!" defers it
// with the steps left as they are. FinalNotes is notes when given, else the
// label itself.
func (e *Engine) SubmitFeedback(ctx context.Context, id, label, notes string) (*model.GuidanceSession, error) {
	const op = "submit feedback"
	feedback, err := model.ParseFeedback(label)
	if err != nil {
		return nil, e.fail(op, id, invalidInput(op, "%v", err))
	}

	return e.mutate(ctx, op, id, func(cur *model.GuidanceSession, _ time.Time) (model.GuidanceSession, error) {
		if cur.Status() == model.StatusResolved {
			return model.GuidanceSession{}, invalidState(op, "session %s is already resolved", id)
		}
		if !cur.AllStepsComplete() {
			return model.GuidanceSession{}, invalidState(op,
				"session %s has %d of %d steps complete", id, cur.CompletedSteps, cur.TotalSteps)
		}

		next := cur.Clone()
		switch outcome := feedback.Outcome(); outcome {
		case model.OutcomeNotGood:
			next.State = model.Deferred()
		default:
			st, err := model.Resolved(outcome)
			if err != nil {
				return model.GuidanceSession{}, invalidState(op, "%v", err)
			}
			next.State = st
			next.CompletedSteps = next.TotalSteps
		}

		next.FinalNotes = string(feedback)
		if n := strings.TrimSpace(notes); n != "" {
			next.FinalNotes = n
		}
		return next, nil
	})
}

// SwitchApproach moves the session to the other approach.
func (e *Engine) SwitchApproach(ctx context.Context, id string) (*model.GuidanceSession, error) {
	return e.mutate(ctx, "switch approach", id, func(cur *model.GuidanceSession, now time.Time) (model.GuidanceSession, error) {
		return SwitchApproach(cur, e.catalog, now)
	})
}

// UpdateNote replaces the session's free-text note. Status and steps are
// not touched.
func (e *Engine) UpdateNote(ctx context.Context, id, note string) (*model.GuidanceSession, error) {
	return e.mutate(ctx, "update note", id, func(cur *model.GuidanceSession, _ time.Time) (model.GuidanceSession, error) {
		next := cur.Clone()
		next.CustomNote = strings.TrimSpace(note)
		return next, nil
	})
}

// UpdateStepNotes replaces the notes of the step at index (0-based).
func (e *Engine) UpdateStepNotes(ctx context.Context, id string, index int, notes string) (*model.GuidanceSession, error) {
	const op = "update step notes"
	return e.mutate(ctx, op, id, func(cur *model.GuidanceSession, _ time.Time) (model.GuidanceSession, error) {
		if index < 0 || index >= len(cur.StepsTried) {
			return model.GuidanceSession{}, invalidInput(op, "step %d out of range [0, %d)", index, len(cur.StepsTried))
		}
		next := cur.Clone()
		next.StepsTried[index].Notes = strings.TrimSpace(notes)
		return next, nil
	})
}

// DeleteSession removes the session from the store.
func (e *Engine) DeleteSession(ctx context.Context, id string) error {
	const op = "delete session"
	unlock := e.locks.Lock(id)
	defer unlock()

	if err := e.store.Delete(ctx, id); err != nil {
		return e.fail(op, id, e.storeErr(op, id, err))
	}
	e.log.Info("session deleted", "session_id", id)
	return nil
}

// GetSession loads one session.
func (e *Engine) GetSession(ctx context.Context, id string) (*model.GuidanceSession, error) {
	const op = "get session"
	s, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, e.storeErr(op, id, err)
	}
	return s, nil
}

// ListSessions returns sessions matching filter, most recently updated first.
func (e *Engine) ListSessions(ctx context.Context, filter store.SessionFilter) ([]model.GuidanceSession, error) {
	sessions, err := e.store.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	return sessions, nil
}

// Steps returns the catalog definitions behind the session's active step
// list, for showing descriptions next to the recorded progress.
func (e *Engine) Steps(s *model.GuidanceSession) []model.StepDefinition {
	return e.catalog.Steps(s.PrimaryTag(), activeApproach(s))
}

// mutate runs fn on the stored session under the id lock and saves the
// result. fn must not modify cur.
func (e *Engine) mutate(
	ctx context.Context,
	op, id string,
	fn func(cur *model.GuidanceSession, now time.Time) (model.GuidanceSession, error),
) (*model.GuidanceSession, error) {
	unlock := e.locks.Lock(id)
	defer unlock()

	cur, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, e.fail(op, id, e.storeErr(op, id, err))
	}

	now := e.now().UTC()
	next, err := fn(cur, now)
	if err != nil {
		return nil, e.fail(op, id, err)
	}

	next.UpdatedAt = now
	if strings.TrimSpace(next.FlowTitle) == "" {
		next.FlowTitle = e.catalog.TitleFor(next.PrimaryTag())
	}

	if err := e.store.Save(ctx, &next); err != nil {
		return nil, e.fail(op, id, fmt.Errorf("saving session %s: %w", id, err))
	}

	e.log.Info("session updated",
		"op", op,
		"session_id", id,
		"status", next.State.String(),
		"approach", next.Approach,
		"completed_steps", next.CompletedSteps,
		"total_steps", next.TotalSteps,
	)
	return &next, nil
}

// storeErr turns a store miss into a NotFound engine error and wraps
// everything else.
func (e *Engine) storeErr(op, id string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return &Error{Kind: KindNotFound, Op: op, Msg: fmt.Sprintf("session %s", id), Err: err}
	}
	return fmt.Errorf("%s %s: %w", op, id, err)
}

// fail logs err and returns it. Rejections are warnings; anything else is
// an infrastructure failure.
func (e *Engine) fail(op, id string, err error) error {
	var engErr *Error
	if errors.As(err, &engErr) {
		e.log.Warn("operation rejected", "op", op, "session_id", id, "kind", engErr.Kind.String(), "error", err)
	} else {
		e.log.Error("operation failed", "op", op, "session_id", id, "error", err)
	}
	return err
}

// NormalizeTags trims tags, drops blanks and removes duplicates, keeping the
// first occurrence. Matching is case-sensitive.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
