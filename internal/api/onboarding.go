package api

import (
	"net/http"

	"github.com/k2tech/ailab/internal/onboarding"
	"github.com/k2tech/ailab/internal/types"
)

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req onboarding.CreateSessionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	session, err := s.onboarding.CreateSession(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.onboarding.GetSession(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.onboarding.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleIngestText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Source string `json:"source,omitempty"`
		Text   string `json:"text"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Source == "" {
		req.Source = "text"
	}
	session, err := s.onboarding.IngestText(r.Context(), r.PathValue("id"), req.Source, req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleGenerateRoadmap(w http.ResponseWriter, r *http.Request) {
	session, err := s.onboarding.GenerateRoadmap(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleGenerateChecklist(w http.ResponseWriter, r *http.Request) {
	session, err := s.onboarding.GenerateChecklist(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handlePatchSummary(w http.ResponseWriter, r *http.Request) {
	var override types.Summary
	if err := decode(r, &override); err != nil {
		writeError(w, err)
		return
	}
	session, err := s.onboarding.PatchSummary(r.Context(), r.PathValue("id"), override)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleVoiceCommand(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Command string `json:"command"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	session, applied, err := s.onboarding.ApplyVoiceCommand(r.Context(), r.PathValue("id"), req.Command)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session": session,
		"applied": applied,
	})
}

func (s *Server) handleSessionChecklistStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	session, err := s.onboarding.UpdateChecklistStatus(r.Context(), r.PathValue("id"), r.PathValue("itemId"), req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.onboarding.Complete(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleSessionReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.onboarding.Report(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(report))
}
