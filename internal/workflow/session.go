package workflow

import (
	"maps"

	"github.com/ppiankov/lossreport/internal/model"
)

// Phase is the position of a session in the review workflow.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseReviewing Phase = "reviewing"
	PhaseComplete  Phase = "complete"
)

// Session is the full state of one report review. Transitions take a Session
// by value and return a new one; the Accepted map is never shared between
// the input and the result.
type Session struct {
	ID       string                     `json:"id"`
	Facts    model.FactSheet            `json:"facts"`
	Phase    Phase                      `json:"phase"`
	Cursor   int                        `json:"cursor"`
	Draft    string                     `json:"draft,omitempty"`
	Weather  model.WeatherSummary       `json:"weather"`
	Accepted map[model.SectionID]string `json:"accepted"`
	Document string                     `json:"document,omitempty"`
}

// NewSession returns an idle session for facts.
func NewSession(id string, facts model.FactSheet) Session {
	return Session{
		ID:       id,
		Facts:    facts,
		Phase:    PhaseIdle,
		Accepted: map[model.SectionID]string{},
	}
}

func (s Session) clone() Session {
	out := s
	out.Accepted = maps.Clone(s.Accepted)
	if out.Accepted == nil {
		out.Accepted = map[model.SectionID]string{}
	}
	return out
}

// IsComplete reports whether the document has been compiled.
func (s Session) IsComplete() bool {
	return s.Phase == PhaseComplete
}
