// Package api exposes the hypothesis and onboarding services over HTTP.
//
// The server is a thin adapter: handlers decode JSON, call the service, and
// map the service error taxonomy onto status codes. All domain logic lives in
// internal/hypothesis and internal/onboarding.
package api

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/k2tech/ailab/internal/debug"
	"github.com/k2tech/ailab/internal/hypothesis"
	"github.com/k2tech/ailab/internal/onboarding"
)

// Server wraps the domain services with HTTP endpoints.
type Server struct {
	hypotheses *hypothesis.Service
	onboarding *onboarding.Service
	httpServer *http.Server
	listener   net.Listener
	tlsConfig  *tls.Config
	addr       string
	version    string
	started    time.Time
	mu         sync.RWMutex
}

// NewServer creates an HTTP server over the given services.
func NewServer(hyp *hypothesis.Service, onb *onboarding.Service, addr, version string) *Server {
	return &Server{
		hypotheses: hyp,
		onboarding: onb,
		addr:       addr,
		version:    version,
	}
}

// Start listens and serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.mu.Lock()
	s.started = time.Now()
	s.httpServer = &http.Server{
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	var err error
	s.listener, err = net.Listen("tcp", s.addr)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	if s.tlsConfig != nil {
		s.listener = tls.NewListener(s.listener, s.tlsConfig)
	}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpServer.Shutdown(shutdownCtx)
	}()

	debug.Logf("api: listening on %s\n", s.Addr())
	if err := s.httpServer.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	// Hypothesis portfolio. The literal "dashboard" segment takes precedence
	// over the {id} wildcard.
	mux.HandleFunc("POST /hypotheses", s.handleCreateHypothesis)
	mux.HandleFunc("GET /hypotheses", s.handleListHypotheses)
	mux.HandleFunc("GET /hypotheses/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /hypotheses/{id}", s.handleGetHypothesis)
	mux.HandleFunc("PATCH /hypotheses/{id}", s.handleUpdateHypothesis)
	mux.HandleFunc("DELETE /hypotheses/{id}", s.handleArchiveHypothesis)

	mux.HandleFunc("POST /hypotheses/{id}/comments", s.handleAddComment)
	mux.HandleFunc("PATCH /hypotheses/{id}/comments/{commentId}", s.handleUpdateComment)
	mux.HandleFunc("DELETE /hypotheses/{id}/comments/{commentId}", s.handleDeleteComment)
	mux.HandleFunc("POST /hypotheses/{id}/attachments", s.handleAddAttachment)
	mux.HandleFunc("POST /hypotheses/{id}/checklist", s.handleAddChecklistItem)
	mux.HandleFunc("PATCH /hypotheses/{id}/checklist/{itemId}", s.handleUpdateChecklistItem)
	mux.HandleFunc("DELETE /hypotheses/{id}/checklist/{itemId}", s.handleRemoveChecklistItem)
	mux.HandleFunc("POST /hypotheses/{id}/tasks", s.handleAddTask)
	mux.HandleFunc("PATCH /hypotheses/{id}/tasks/{taskId}", s.handleUpdateTask)
	mux.HandleFunc("POST /hypotheses/{id}/approvals", s.handleAddApproval)
	mux.HandleFunc("PATCH /hypotheses/{id}/approvals/{approvalId}", s.handleUpdateApproval)

	// Onboarding sessions.
	mux.HandleFunc("POST /onboarding/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /onboarding/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("DELETE /onboarding/sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("POST /onboarding/sessions/{id}/transcript", s.handleIngestText)
	mux.HandleFunc("POST /onboarding/sessions/{id}/roadmap", s.handleGenerateRoadmap)
	mux.HandleFunc("POST /onboarding/sessions/{id}/checklist", s.handleGenerateChecklist)
	mux.HandleFunc("PATCH /onboarding/sessions/{id}/summary", s.handlePatchSummary)
	mux.HandleFunc("POST /onboarding/sessions/{id}/voice", s.handleVoiceCommand)
	mux.HandleFunc("PATCH /onboarding/sessions/{id}/checklist/{itemId}", s.handleSessionChecklistStatus)
	mux.HandleFunc("POST /onboarding/sessions/{id}/complete", s.handleCompleteSession)
	mux.HandleFunc("GET /onboarding/sessions/{id}/report", s.handleSessionReport)
}

// Addr returns the address the server is listening on.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Handler builds the route mux without binding a listener. Used by tests.
func (s *Server) Handler() http.Handler {
	s.mu.Lock()
	if s.started.IsZero() {
		s.started = time.Now()
	}
	s.mu.Unlock()
	mux := http.NewServeMux()
	s.registerRoutes(mux)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"version": s.version,
		"uptime":  fmt.Sprintf("%.0fs", time.Since(started).Seconds()),
	})
}

// writeJSON encodes v with the canonical content type.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the service error taxonomy onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	var (
		hypNotFound *hypothesis.NotFoundError
		hypInvalid  *hypothesis.ValidationError
		transition  *hypothesis.InvalidTransitionError
		onbNotFound *onboarding.NotFoundError
		onbInvalid  *onboarding.ValidationError
	)
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &hypNotFound), errors.As(err, &onbNotFound):
		status = http.StatusNotFound
	case errors.As(err, &hypInvalid), errors.As(err, &transition), errors.As(err, &onbInvalid):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// decode reads a JSON request body into v.
func decode(r *http.Request, v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &hypothesis.ValidationError{Message: fmt.Sprintf("invalid request body: %v", err)}
	}
	return nil
}
