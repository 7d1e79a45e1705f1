// Package workflow drives the section-by-section review of a report.
//
// Sections are generated strictly in catalog order. Each section must be
// accepted before the next one is generated, and once every section is
// accepted the session is compiled and frozen.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ppiankov/lossreport/internal/model"
	"github.com/ppiankov/lossreport/internal/observability"
	"github.com/ppiankov/lossreport/internal/pipeline"
)

var (
	// ErrSessionComplete is returned for any transition on a compiled session.
	ErrSessionComplete = errors.New("session is complete")

	// ErrInvalidTransition is returned when an action does not fit the phase.
	ErrInvalidTransition = errors.New("invalid workflow transition")
)

// Workflow actions, used as metric labels.
const (
	ActionStart      = "start"
	ActionRegenerate = "regenerate"
	ActionAccept     = "accept"
)

// Generator produces the content for one section.
type Generator interface {
	GenerateSection(ctx context.Context, req pipeline.SectionRequest) (*pipeline.SectionResponse, error)
}

// Machine applies workflow transitions. It holds no session state.
type Machine struct {
	gen      Generator
	sections []model.SectionDef
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// Option customizes a Machine.
type Option func(*Machine)

// WithMetrics records transition outcomes.
func WithMetrics(m *observability.Metrics) Option {
	return func(mc *Machine) { mc.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(mc *Machine) {
		if l != nil {
			mc.logger = l
		}
	}
}

// NewMachine creates a machine over the workflow sections of the catalog.
func NewMachine(gen Generator, opts ...Option) *Machine {
	m := &Machine{
		gen:      gen,
		sections: model.WorkflowSections(),
		logger:   observability.DiscardLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Sections returns the ordered sections the machine walks.
func (m *Machine) Sections() []model.SectionDef {
	out := make([]model.SectionDef, len(m.sections))
	copy(out, m.sections)
	return out
}

// Current returns the section under the cursor. It reports false for idle
// and complete sessions.
func (m *Machine) Current(s Session) (model.SectionDef, bool) {
	if s.Phase != PhaseReviewing || s.Cursor < 0 || s.Cursor >= len(m.sections) {
		return model.SectionDef{}, false
	}
	return m.sections[s.Cursor], true
}

// Progress returns the number of accepted sections and the total.
func (m *Machine) Progress(s Session) (accepted, total int) {
	for _, def := range m.sections {
		if _, ok := s.Accepted[def.ID]; ok {
			accepted++
		}
	}
	return accepted, len(m.sections)
}

// Start generates the first section of an idle session.
// On failure the session is returned unchanged.
func (m *Machine) Start(ctx context.Context, s Session) (Session, error) {
	if err := m.guard(s, PhaseIdle); err != nil {
		m.record(ActionStart, err)
		return s, err
	}

	next, err := m.generateAt(ctx, s.clone(), 0, "")
	m.record(ActionStart, err)
	if err != nil {
		return s, err
	}
	return next, nil
}

// Regenerate replaces the draft of the current section, applying feedback.
// On failure the session is returned unchanged so the operator can retry.
func (m *Machine) Regenerate(ctx context.Context, s Session, feedback string) (Session, error) {
	if err := m.guard(s, PhaseReviewing); err != nil {
		m.record(ActionRegenerate, err)
		return s, err
	}

	next, err := m.generateAt(ctx, s.clone(), s.Cursor, feedback)
	m.record(ActionRegenerate, err)
	if err != nil {
		return s, err
	}
	return next, nil
}

// Accept commits the current draft and moves to the next section.
//
// Accepting the last section compiles the document and completes the
// session. If generating the next section fails, the returned session keeps
// the commit but its cursor stays on the accepted section, with the same
// draft, so accepting again retries the advance.
func (m *Machine) Accept(ctx context.Context, s Session) (Session, error) {
	if err := m.guard(s, PhaseReviewing); err != nil {
		m.record(ActionAccept, err)
		return s, err
	}
	if s.Cursor < 0 || s.Cursor >= len(m.sections) {
		err := fmt.Errorf("%w: cursor %d out of range", ErrInvalidTransition, s.Cursor)
		m.record(ActionAccept, err)
		return s, err
	}

	committed := s.clone()
	committed.Accepted[m.sections[s.Cursor].ID] = s.Draft

	if s.Cursor+1 >= len(m.sections) {
		committed.Phase = PhaseComplete
		committed.Cursor = len(m.sections)
		committed.Draft = ""
		committed.Weather = model.WeatherSummary{}
		committed.Document = Compile(m.sections, committed.Accepted)
		m.record(ActionAccept, nil)
		m.logger.Info("report compiled", "session", s.ID, "sections", len(m.sections))
		return committed, nil
	}

	next, err := m.generateAt(ctx, committed.clone(), s.Cursor+1, "")
	m.record(ActionAccept, err)
	if err != nil {
		return committed, err
	}
	return next, nil
}

// Compile renders accepted sections in order, each under its title.
func Compile(sections []model.SectionDef, accepted map[model.SectionID]string) string {
	blocks := make([]string, 0, len(sections))
	for _, def := range sections {
		content, ok := accepted[def.ID]
		if !ok {
			continue
		}
		blocks = append(blocks, "## "+def.Title+"\n\n"+strings.TrimSpace(content))
	}
	return strings.Join(blocks, "\n\n") + "\n"
}

func (m *Machine) generateAt(ctx context.Context, s Session, index int, feedback string) (Session, error) {
	def := m.sections[index]
	resp, err := m.gen.GenerateSection(ctx, pipeline.SectionRequest{
		Section:            string(def.ID),
		Facts:              s.Facts,
		CustomInstructions: feedback,
	})
	if err != nil {
		m.logger.Warn("section generation failed", "session", s.ID, "section", def.ID, "error", err)
		return Session{}, fmt.Errorf("generate %s: %w", def.ID, err)
	}

	s.Phase = PhaseReviewing
	s.Cursor = index
	s.Draft = resp.Section
	s.Weather = resp.WeatherData
	return s, nil
}

func (m *Machine) guard(s Session, want Phase) error {
	if s.Phase == PhaseComplete {
		return ErrSessionComplete
	}
	if s.Phase != want {
		return fmt.Errorf("%w: session is %s, want %s", ErrInvalidTransition, s.Phase, want)
	}
	return nil
}

func (m *Machine) record(action string, err error) {
	if m.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.metrics.WorkflowActions.WithLabelValues(action, outcome).Inc()
}
