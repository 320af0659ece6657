package model

import "fmt"

// Status is the lifecycle status of a guidance session.
type Status string

// Session status constants.
const (
	StatusOngoing    Status = "ongoing"
	StatusResolved   Status = "resolved"
	StatusUnresolved Status = "unresolved"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusOngoing, StatusResolved, StatusUnresolved:
		return true
	}
	return false
}

// ParseStatus converts a raw string into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q", raw)
	}
	return s, nil
}

// Outcome is the parent's verdict once all steps of an approach are done.
type Outcome string

// Outcome constants. OutcomeNone marks a state that carries no verdict.
const (
	OutcomeNone     Outcome = ""
	OutcomeImproved Outcome = "improved"
	OutcomeSoSo     Outcome = "soSo"
	OutcomeNotGood  Outcome = "notGood"
)

// State is the status/outcome pair of a session. The zero value is Ongoing.
// Values can only be built through the constructors below, so a resolved
// state never carries OutcomeNotGood and an ongoing state never carries an
// outcome at all.
type State struct {
	status  Status
	outcome Outcome
}

// Ongoing is the state of a session whose steps are being worked through.
func Ongoing() State {
	return State{status: StatusOngoing}
}

// Resolved marks a session that helped. Only improved and soSo are accepted.
func Resolved(o Outcome) (State, error) {
	if o != OutcomeImproved && o != OutcomeSoSo {
		return State{}, fmt.Errorf("resolved state cannot carry outcome %q", o)
	}
	return State{status: StatusResolved, outcome: o}, nil
}

// Deferred marks a session whose approach was finished but did not help.
func Deferred() State {
	return State{status: StatusUnresolved, outcome: OutcomeNotGood}
}

// Switched marks a session whose approach was just replaced. It is consumed
// by the next step toggle.
func Switched() State {
	return State{status: StatusUnresolved}
}

// ParseState rebuilds a State from its persisted status and outcome.
func ParseState(status string, outcome string) (State, error) {
	st, err := ParseStatus(status)
	if err != nil {
		return State{}, err
	}
	o := Outcome(outcome)

	switch st {
	case StatusOngoing:
		if o != OutcomeNone {
			return State{}, fmt.Errorf("ongoing state cannot carry outcome %q", o)
		}
		return Ongoing(), nil
	case StatusResolved:
		return Resolved(o)
	default:
		switch o {
		case OutcomeNone:
			return Switched(), nil
		case OutcomeNotGood:
			return Deferred(), nil
		}
		return State{}, fmt.Errorf("unresolved state cannot carry outcome %q", o)
	}
}

// Status returns the lifecycle status.
func (s State) Status() Status {
	if s.status == "" {
		return StatusOngoing
	}
	return s.status
}

// Outcome returns the verdict and whether one is present.
func (s State) Outcome() (Outcome, bool) {
	return s.outcome, s.outcome != OutcomeNone
}

// IsSwitched reports whether the state is the transient marker left by an
// approach switch.
func (s State) IsSwitched() bool {
	return s.status == StatusUnresolved && s.outcome == OutcomeNone
}

// IsDeferred reports whether the parent said the finished approach did not help.
func (s State) IsDeferred() bool {
	return s.status == StatusUnresolved && s.outcome == OutcomeNotGood
}

func (s State) String() string {
	if s.outcome == OutcomeNone {
		return string(s.Status())
	}
	return fmt.Sprintf("%s(%s)", s.Status(), s.outcome)
}
