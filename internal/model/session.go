package model

import "time"

// GuidanceSession is one attempt at resolving a struggle. It is created when a
// parent logs a struggle and changed by step toggles, approach switches and
// completion feedback.
type GuidanceSession struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Tags holds the struggle labels. Tags[0] is the primary tag used for
	// catalog lookups.
	Tags []string `json:"tags"`

	// FlowTitle is derived from the primary tag when the session is created.
	FlowTitle  string `json:"flow_title"`
	CustomNote string `json:"custom_note,omitempty"`

	// Approach is the active approach; CurrentApproachIndex counts switches.
	Approach             Approach `json:"approach"`
	CurrentApproachIndex int      `json:"current_approach_index"`

	StepsTried     []StepProgress `json:"steps_tried"`
	TotalSteps     int            `json:"total_steps"`
	CompletedSteps int            `json:"completed_steps"`

	State      State  `json:"-"`
	FinalNotes string `json:"final_notes,omitempty"`
}

// PrimaryTag returns the tag used for catalog lookups.
func (s *GuidanceSession) PrimaryTag() string {
	if len(s.Tags) == 0 {
		return ""
	}
	return s.Tags[0]
}

// Status is shorthand for s.State.Status().
func (s *GuidanceSession) Status() Status {
	return s.State.Status()
}

// AllStepsComplete reports whether a non-empty step list is fully ticked off.
func (s *GuidanceSession) AllStepsComplete() bool {
	return s.TotalSteps > 0 && s.CompletedSteps == s.TotalSteps
}

// Clone returns a deep copy so callers can mutate it without touching s.
func (s *GuidanceSession) Clone() GuidanceSession {
	c := *s
	c.Tags = append([]string(nil), s.Tags...)
	c.StepsTried = make([]StepProgress, len(s.StepsTried))
	for i, sp := range s.StepsTried {
		if sp.CompletedAt != nil {
			at := *sp.CompletedAt
			sp.CompletedAt = &at
		}
		c.StepsTried[i] = sp
	}
	return c
}

// SeedSteps builds fresh, incomplete progress records from catalog steps.
func SeedSteps(defs []StepDefinition) []StepProgress {
	steps := make([]StepProgress, len(defs))
	for i, d := range defs {
		steps[i] = StepProgress{Text: d.Title}
	}
	return steps
}
