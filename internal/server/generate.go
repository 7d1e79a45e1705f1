package server

import (
	"errors"
	"net/http"

	"github.com/ppiankov/lossreport/internal/model"
	"github.com/ppiankov/lossreport/internal/pipeline"
)

// handleGenerateSection generates one section from a self-contained request.
// Every failure, including a malformed body, is a 500 with error details.
func (s *Server) handleGenerateSection(w http.ResponseWriter, r *http.Request) {
	var req pipeline.SectionRequest
	if err := s.decode(w, r, &req); err != nil {
		s.logger.Warn("invalid generate request", "error", err)
		writeError(w, http.StatusInternalServerError, "Invalid request body", err)
		return
	}

	resp, err := s.generator.GenerateSection(r.Context(), req)
	if err != nil {
		msg := "Failed to generate section"
		if errors.Is(err, pipeline.ErrInvalidRequest) {
			msg = "Invalid request"
		}
		writeError(w, http.StatusInternalServerError, msg, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSections(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, model.AllSections())
}
