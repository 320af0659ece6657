package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nhle/guidance/internal/model"
)

// sessionRow is the sessions table layout.
type sessionRow struct {
	ID             string    `db:"id"`
	OwnerID        string    `db:"owner_id"`
	Tags           string    `db:"tags"`
	FlowTitle      string    `db:"flow_title"`
	CustomNote     string    `db:"custom_note"`
	Approach       string    `db:"approach"`
	ApproachIndex  int       `db:"approach_index"`
	TotalSteps     int       `db:"total_steps"`
	CompletedSteps int       `db:"completed_steps"`
	Status         string    `db:"status"`
	Outcome        string    `db:"outcome"`
	FinalNotes     string    `db:"final_notes"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

type stepRow struct {
	SessionID string `db:"session_id"`
	Position  int    `db:"position"`
	model.StepProgress
}

const sessionColumns = `id, owner_id, tags, flow_title, custom_note,
	approach, approach_index, total_steps, completed_steps,
	status, outcome, final_notes, created_at, updated_at`

// Save upserts the session row and replaces its step rows in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, sess *model.GuidanceSession) error {
	if sess.ID == "" {
		return fmt.Errorf("saving session: empty id")
	}
	tags, err := json.Marshal(sess.Tags)
	if err != nil {
		return fmt.Errorf("encoding tags for session %s: %w", sess.ID, err)
	}
	outcome, _ := sess.State.Outcome()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			owner_id = excluded.owner_id,
			tags = excluded.tags,
			flow_title = excluded.flow_title,
			custom_note = excluded.custom_note,
			approach = excluded.approach,
			approach_index = excluded.approach_index,
			total_steps = excluded.total_steps,
			completed_steps = excluded.completed_steps,
			status = excluded.status,
			outcome = excluded.outcome,
			final_notes = excluded.final_notes,
			updated_at = excluded.updated_at`,
		sess.ID, sess.OwnerID, string(tags), sess.FlowTitle, sess.CustomNote,
		string(sess.Approach), sess.CurrentApproachIndex, sess.TotalSteps, sess.CompletedSteps,
		string(sess.State.Status()), string(outcome), sess.FinalNotes,
		sess.CreatedAt.UTC(), sess.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving session %s: %w", sess.ID, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM session_steps WHERE session_id = ?", sess.ID); err != nil {
		return fmt.Errorf("clearing steps for session %s: %w", sess.ID, err)
	}

	if len(sess.StepsTried) > 0 {
		stmt, err := tx.PreparexContext(ctx, `
			INSERT INTO session_steps (session_id, position, text, completed, completed_at, notes)
			VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("preparing step insert: %w", err)
		}
		defer stmt.Close()

		for i, sp := range sess.StepsTried {
			var completedAt *time.Time
			if sp.CompletedAt != nil {
				at := sp.CompletedAt.UTC()
				completedAt = &at
			}
			if _, err := stmt.ExecContext(ctx, sess.ID, i, sp.Text, sp.Completed, completedAt, sp.Notes); err != nil {
				return fmt.Errorf("saving step %d of session %s: %w", i, sess.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing session %s: %w", sess.ID, err)
	}
	return nil
}

// Get loads a session and its steps.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.GuidanceSession, error) {
	var row sessionRow
	err := s.db.GetContext(ctx, &row, "SELECT "+sessionColumns+" FROM sessions WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting session %s: %w", id, err)
	}

	steps, err := s.loadSteps(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	sess, err := row.toModel(steps[id])
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// List returns sessions matching filter, most recently updated first.
func (s *SQLiteStore) List(ctx context.Context, filter SessionFilter) ([]model.GuidanceSession, error) {
	query, args := buildSessionQuery(filter)

	var rows []sessionRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	steps, err := s.loadSteps(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]model.GuidanceSession, 0, len(rows))
	for _, r := range rows {
		sess, err := r.toModel(steps[r.ID])
		if err != nil {
			return nil, err
		}
		result = append(result, sess)
	}
	return result, nil
}

// Delete removes a session. Its steps go with it via ON DELETE CASCADE.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return nil
}

func buildSessionQuery(filter SessionFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.OwnerID != nil {
		conditions = append(conditions, "owner_id = ?")
		args = append(args, *filter.OwnerID)
	}

	query := "SELECT " + sessionColumns + " FROM sessions"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY updated_at DESC, id ASC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	return query, args
}

// loadSteps fetches the step rows of the given sessions, keyed by session id.
func (s *SQLiteStore) loadSteps(ctx context.Context, ids []string) (map[string][]model.StepProgress, error) {
	query, args, err := sqlx.In(`
		SELECT session_id, position, text, completed, completed_at, notes
		FROM session_steps
		WHERE session_id IN (?)
		ORDER BY session_id, position`, ids)
	if err != nil {
		return nil, fmt.Errorf("building step query: %w", err)
	}

	var rows []stepRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("loading steps: %w", err)
	}

	out := make(map[string][]model.StepProgress, len(ids))
	for _, r := range rows {
		out[r.SessionID] = append(out[r.SessionID], r.StepProgress)
	}
	return out, nil
}

func (r sessionRow) toModel(steps []model.StepProgress) (model.GuidanceSession, error) {
	var tags []string
	if err := json.Unmarshal([]byte(r.Tags), &tags); err != nil {
		return model.GuidanceSession{}, fmt.Errorf("decoding tags for session %s: %w", r.ID, err)
	}
	state, err := model.ParseState(r.Status, r.Outcome)
	if err != nil {
		return model.GuidanceSession{}, fmt.Errorf("decoding state for session %s: %w", r.ID, err)
	}
	if steps == nil {
		steps = []model.StepProgress{}
	}

	return model.GuidanceSession{
		ID:                   r.ID,
		OwnerID:              r.OwnerID,
		CreatedAt:            r.CreatedAt.UTC(),
		UpdatedAt:            r.UpdatedAt.UTC(),
		Tags:                 tags,
		FlowTitle:            r.FlowTitle,
		CustomNote:           r.CustomNote,
		Approach:             model.Approach(r.Approach),
		CurrentApproachIndex: r.ApproachIndex,
		StepsTried:           steps,
		TotalSteps:           r.TotalSteps,
		CompletedSteps:       r.CompletedSteps,
		State:                state,
		FinalNotes:           r.FinalNotes,
	}, nil
}
