package model

import (
	"fmt"
	"time"
)

// Approach names a guidance methodology.
type Approach string

// The two approaches a struggle can be worked through with.
const (
	ApproachCBTPCIT     Approach = "CBT+PCIT"
	ApproachAlternative Approach = "Alternative"
)

// Valid reports whether a is a known approach.
func (a Approach) Valid() bool {
	return a == ApproachCBTPCIT || a == ApproachAlternative
}

// Other returns the approach a switch moves to.
func (a Approach) Other() Approach {
	if a == ApproachAlternative {
		return ApproachCBTPCIT
	}
	return ApproachAlternative
}

// ParseApproach converts a raw string into an Approach.
func ParseApproach(raw string) (Approach, error) {
	a := Approach(raw)
	if !a.Valid() {
		return "", fmt.Errorf("unknown approach %q", raw)
	}
	return a, nil
}

// StepDefinition is one catalog instruction. It is never persisted per session.
type StepDefinition struct {
	// Number is the 1-based position within its list.
	Number      int      `json:"number" yaml:"-"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Approach    Approach `json:"approach" yaml:"-"`
}

// StepProgress records how far the parent got with one step of the active
// approach. Text is a copy of the catalog title taken when the list was seeded.
type StepProgress struct {
	Text        string     `json:"text" db:"text"`
	Completed   bool       `json:"completed" db:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	Notes       string     `json:"notes,omitempty" db:"notes"`
}

// Feedback is the label a parent picks once every step is complete.
type Feedback string

// Feedback labels as shown to the parent.
const (
	FeedbackWorkedWell Feedback = "Worked Well!"
	FeedbackSomewhat   Feedback = "Somewhat!"
	FeedbackNotYet     Feedback = "Not Yet!"
)

// Feedbacks lists the labels in display order.
var Feedbacks = []Feedback{FeedbackWorkedWell, FeedbackSomewhat, FeedbackNotYet}

// ParseFeedback matches raw against the known labels.
func ParseFeedback(raw string) (Feedback, error) {
	for _, f := range Feedbacks {
		if string(f) == raw {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown feedback %q", raw)
}

// Outcome maps the label onto the recorded verdict.
func (f Feedback) Outcome() Outcome {
	switch f {
	case FeedbackWorkedWell:
		return OutcomeImproved
	case FeedbackSomewhat:
		return OutcomeSoSo
	default:
		return OutcomeNotGood
	}
}
