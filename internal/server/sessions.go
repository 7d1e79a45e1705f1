package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/ppiankov/lossreport/internal/cache"
	"github.com/ppiankov/lossreport/internal/model"
	"github.com/ppiankov/lossreport/internal/workflow"
)

type sectionRef struct {
	ID    model.SectionID `json:"id"`
	Title string          `json:"title"`
}

type progress struct {
	Accepted int `json:"accepted"`
	Total    int `json:"total"`
}

// sessionView is the client-facing snapshot of a session.
type sessionView struct {
	ID       string               `json:"id"`
	Phase    workflow.Phase       `json:"phase"`
	Section  *sectionRef          `json:"section,omitempty"`
	Draft    string               `json:"draft,omitempty"`
	Weather  model.WeatherSummary `json:"weather"`
	Progress progress             `json:"progress"`
	Accepted []sectionRef         `json:"accepted"`
}

func (s *Server) view(session workflow.Session) sessionView {
	v := sessionView{
		ID:       session.ID,
		Phase:    session.Phase,
		Draft:    session.Draft,
		Weather:  session.Weather,
		Accepted: []sectionRef{},
	}
	if cur, ok := s.machine.Current(session); ok {
		v.Section = &sectionRef{ID: cur.ID, Title: cur.Title}
	}
	v.Progress.Accepted, v.Progress.Total = s.machine.Progress(session)
	for _, def := range s.machine.Sections() {
		if _, ok := session.Accepted[def.ID]; ok {
			v.Accepted = append(v.Accepted, sectionRef{ID: def.ID, Title: def.Title})
		}
	}
	return v
}

type regenerateRequest struct {
	Feedback string `json:"feedback"`
}

// handleCreateSession stores a new session and generates its first section.
// A session whose first generation fails is discarded.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var facts model.FactSheet
	if err := s.decode(w, r, &facts); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	id := cache.NewSessionID()
	s.sessions.Create(workflow.NewSession(id, facts))

	lease, err := s.sessions.Acquire(id)
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	defer lease.Release()

	started, err := s.machine.Start(r.Context(), lease.Session())
	if err != nil {
		s.sessions.Delete(id)
		s.writeSessionError(w, err)
		return
	}
	lease.Commit(started)

	s.logger.Info("session started", "session", id)
	writeJSON(w, http.StatusCreated, s.view(started))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(session))
}

func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	var req regenerateRequest
	if err := s.decode(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	lease, err := s.sessions.Acquire(r.PathValue("id"))
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	defer lease.Release()

	next, err := s.machine.Regenerate(r.Context(), lease.Session(), req.Feedback)
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	lease.Commit(next)
	writeJSON(w, http.StatusOK, s.view(next))
}

// handleAccept commits the current draft. The returned session is stored even
// when generating the next section fails, so the commit is never lost.
func (s *Server) handleAccept(w http.ResponseWriter, r *http.Request) {
	lease, err := s.sessions.Acquire(r.PathValue("id"))
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	defer lease.Release()

	next, err := s.machine.Accept(r.Context(), lease.Session())
	lease.Commit(next)
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(next))
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	if !session.IsComplete() {
		writeError(w, http.StatusConflict, "Report is not complete", nil)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(session.Document))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	s.sessions.Delete(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cache.ErrNotFound):
		writeError(w, http.StatusNotFound, "Session not found", err)
	case errors.Is(err, cache.ErrBusy):
		writeError(w, http.StatusConflict, "Another action is in progress", err)
	case errors.Is(err, workflow.ErrSessionComplete), errors.Is(err, workflow.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "Action not allowed", err)
	default:
		writeError(w, http.StatusInternalServerError, "Failed to generate section", err)
	}
}
