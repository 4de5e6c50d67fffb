package api

import (
	"net/http"

	"github.com/k2tech/ailab/internal/hypothesis"
)

func (s *Server) handleCreateHypothesis(w http.ResponseWriter, r *http.Request) {
	var req hypothesis.CreateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	detail, err := s.hypotheses.Create(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, detail)
}

func (s *Server) handleListHypotheses(w http.ResponseWriter, r *http.Request) {
	items, err := s.hypotheses.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := s.hypotheses.BuildDashboard(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

func (s *Server) handleGetHypothesis(w http.ResponseWriter, r *http.Request) {
	detail, err := s.hypotheses.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleUpdateHypothesis(w http.ResponseWriter, r *http.Request) {
	var req hypothesis.UpdateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	detail, err := s.hypotheses.Update(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleArchiveHypothesis(w http.ResponseWriter, r *http.Request) {
	if err := s.hypotheses.Archive(r.Context(), r.PathValue("id"), r.URL.Query().Get("actor")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	var req hypothesis.CommentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	comment, err := s.hypotheses.AddComment(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (s *Server) handleUpdateComment(w http.ResponseWriter, r *http.Request) {
	var req hypothesis.CommentUpdateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	comment, err := s.hypotheses.UpdateComment(r.Context(), r.PathValue("id"), r.PathValue("commentId"), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	if err := s.hypotheses.DeleteComment(r.Context(), r.PathValue("id"), r.PathValue("commentId")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddAttachment(w http.ResponseWriter, r *http.Request) {
	var req hypothesis.AttachmentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	attachment, err := s.hypotheses.AddAttachment(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, attachment)
}

func (s *Server) handleAddChecklistItem(w http.ResponseWriter, r *http.Request) {
	var req hypothesis.ChecklistItemInput
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	detail, err := s.hypotheses.AddChecklistItem(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, detail)
}

func (s *Server) handleUpdateChecklistItem(w http.ResponseWriter, r *http.Request) {
	var req hypothesis.ChecklistItemUpdateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	detail, err := s.hypotheses.UpdateChecklistItem(r.Context(), r.PathValue("id"), r.PathValue("itemId"), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleRemoveChecklistItem(w http.ResponseWriter, r *http.Request) {
	detail, err := s.hypotheses.RemoveChecklistItem(r.Context(), r.PathValue("id"), r.PathValue("itemId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleAddTask(w http.ResponseWriter, r *http.Request) {
	var req hypothesis.TaskRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	detail, err := s.hypotheses.AddTask(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, detail)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var req hypothesis.TaskUpdateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	detail, err := s.hypotheses.UpdateTask(r.Context(), r.PathValue("id"), r.PathValue("taskId"), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleAddApproval(w http.ResponseWriter, r *http.Request) {
	var req hypothesis.ApprovalRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	detail, err := s.hypotheses.AddApproval(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, detail)
}

func (s *Server) handleUpdateApproval(w http.ResponseWriter, r *http.Request) {
	var req hypothesis.ApprovalUpdateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	detail, err := s.hypotheses.UpdateApproval(r.Context(), r.PathValue("id"), r.PathValue("approvalId"), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}
