package model

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON flattens State into "status" and "outcome" fields.
func (s GuidanceSession) MarshalJSON() ([]byte, error) {
	type alias GuidanceSession
	outcome, _ := s.State.Outcome()
	return json.Marshal(struct {
		alias
		Status  Status  `json:"status"`
		Outcome Outcome `json:"outcome,omitempty"`
	}{alias(s), s.State.Status(), outcome})
}

// UnmarshalJSON rebuilds State through ParseState, rejecting impossible
// status/outcome pairs. A missing status means ongoing.
func (s *GuidanceSession) UnmarshalJSON(data []byte) error {
	type alias GuidanceSession
	var raw struct {
		alias
		Status  string `json:"status"`
		Outcome string `json:"outcome"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Status == "" {
		raw.Status = string(StatusOngoing)
	}
	st, err := ParseState(raw.Status, raw.Outcome)
	if err != nil {
		return fmt.Errorf("session %s: %w", raw.ID, err)
	}
	*s = GuidanceSession(raw.alias)
	s.State = st
	return nil
}
