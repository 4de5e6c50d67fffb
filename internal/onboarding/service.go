package onboarding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/k2tech/ailab/internal/debug"
	"github.com/k2tech/ailab/internal/storage"
	"github.com/k2tech/ailab/internal/types"
)

// NotFoundError is returned for absent or soft-deleted sessions.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("session '%s' not found", e.ID)
}

// ValidationError reports malformed onboarding input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Service owns onboarding sessions: their lifecycle, text ingestion through
// the extractor, roadmap/checklist generation, and voice edits. Every
// mutation is mirrored into the session's append-only event log.
type Service struct {
	store storage.Storage
	now   func() time.Time
}

// NewService creates an onboarding service backed by the given store.
func NewService(store storage.Storage) *Service {
	return &Service{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// CreateSessionRequest carries the fields accepted at session creation.
type CreateSessionRequest struct {
	UserID            string `json:"userId"`
	Language          string `json:"language,omitempty"`
	Mode              string `json:"mode,omitempty"`
	Industry          string `json:"industry,omitempty"`
	ConsentGiven      bool   `json:"consentGiven"`
	VoiceConsent      bool   `json:"voiceConsent"`
	TimeHorizonMonths int    `json:"timeHorizonMonths,omitempty"`
}

// CreateSession starts a new onboarding session.
func (s *Service) CreateSession(ctx context.Context, req *CreateSessionRequest) (*types.OnboardingSession, error) {
	if req.UserID == "" {
		return nil, &ValidationError{Message: "user id is required"}
	}
	now := s.now()
	language := req.Language
	if language == "" {
		language = "en"
	}
	mode := req.Mode
	if mode == "" {
		mode = "text"
	}
	horizon := req.TimeHorizonMonths
	if horizon == 0 {
		horizon = 6
	}
	if horizon < horizonMin || horizon > horizonMax {
		return nil, &ValidationError{Message: fmt.Sprintf("time horizon must be between %d and %d months", horizonMin, horizonMax)}
	}

	session := &types.OnboardingSession{
		ID:                uuid.NewString(),
		UserID:            req.UserID,
		Language:          language,
		Mode:              mode,
		Industry:          req.Industry,
		Status:            types.SessionActive,
		ConsentGiven:      req.ConsentGiven,
		VoiceConsent:      req.VoiceConsent,
		TimeHorizonMonths: horizon,
		ExtractedSummary:  types.Summary{}.Clone(),
		Roadmap:           types.Roadmap{},
		Checklist:         []types.SessionChecklistItem{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if req.ConsentGiven || req.VoiceConsent {
		session.ConsentTimestamp = &now
	}

	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	if err := s.logEvent(ctx, session.ID, "session_created", map[string]any{
		"user_id": req.UserID,
		"mode":    mode,
	}); err != nil {
		return nil, err
	}
	debug.Logf("created onboarding session %s for user %s\n", session.ID, req.UserID)
	return session, nil
}

// GetSession returns an active or completed session; deleted ones answer
// NotFound.
func (s *Service) GetSession(ctx context.Context, id string) (*types.OnboardingSession, error) {
	session, err := s.store.GetSession(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, &NotFoundError{ID: id}
	}
	if err != nil {
		return nil, err
	}
	if session.IsDeleted() {
		return nil, &NotFoundError{ID: id}
	}
	return session, nil
}

// IngestText appends a transcript entry and runs the extractor over it,
// growing the session's summary in place.
func (s *Service) IngestText(ctx context.Context, sessionID, source, text string) (*types.OnboardingSession, error) {
	if text == "" {
		return nil, &ValidationError{Message: "text is required"}
	}
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	now := s.now()

	if err := s.store.AppendTranscript(ctx, &types.TranscriptEntry{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Source:    source,
		Text:      text,
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}

	session.ExtractedSummary = ExtractSummary(text, session.ExtractedSummary)
	session.UpdatedAt = now
	if err := s.store.UpdateSession(ctx, session); err != nil {
		return nil, err
	}
	if err := s.logEvent(ctx, sessionID, "text_ingested", map[string]any{
		"source": source,
		"length": len(text),
	}); err != nil {
		return nil, err
	}
	return session, nil
}

// GenerateRoadmap builds and stores the roadmap from the current summary.
func (s *Service) GenerateRoadmap(ctx context.Context, sessionID string) (*types.OnboardingSession, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	session.Roadmap = GenerateRoadmap(session.ExtractedSummary, session.TimeHorizonMonths)
	session.UpdatedAt = s.now()
	if err := s.store.UpdateSession(ctx, session); err != nil {
		return nil, err
	}
	if err := s.logEvent(ctx, sessionID, "roadmap_generated", map[string]any{
		"phases": len(session.Roadmap),
	}); err != nil {
		return nil, err
	}
	return session, nil
}

// GenerateChecklist builds and stores the readiness checklist, resetting the
// readiness score accordingly.
func (s *Service) GenerateChecklist(ctx context.Context, sessionID string) (*types.OnboardingSession, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	session.Checklist = GenerateChecklist(session.ExtractedSummary, session.TimeHorizonMonths, now)
	session.ReadinessScore = CalculateReadinessScore(session.Checklist)
	session.UpdatedAt = now
	if err := s.store.UpdateSession(ctx, session); err != nil {
		return nil, err
	}
	if err := s.logEvent(ctx, sessionID, "checklist_generated", map[string]any{
		"items": len(session.Checklist),
	}); err != nil {
		return nil, err
	}
	return session, nil
}

// PatchSummary overlays caller-provided entries onto the extracted summary.
func (s *Service) PatchSummary(ctx context.Context, sessionID string, override types.Summary) (*types.OnboardingSession, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	session.ExtractedSummary = MergeSummary(session.ExtractedSummary, override)
	session.UpdatedAt = s.now()
	if err := s.store.UpdateSession(ctx, session); err != nil {
		return nil, err
	}
	if err := s.logEvent(ctx, sessionID, "summary_patched", map[string]any{
		"keys": len(override),
	}); err != nil {
		return nil, err
	}
	return session, nil
}

// ApplyVoiceCommand runs the voice-command mini-language against the session
// and persists whatever it changed. The Applied map lands in the event log.
func (s *Service) ApplyVoiceCommand(ctx context.Context, sessionID, command string) (*types.OnboardingSession, map[string]any, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	now := s.now()

	result := ApplyVoiceCommand(command, session.ExtractedSummary, session.Checklist, session.TimeHorizonMonths, now)
	session.ExtractedSummary = result.Summary
	session.Checklist = result.Checklist
	session.TimeHorizonMonths = result.HorizonMonths
	session.ReadinessScore = result.ReadinessScore
	session.UpdatedAt = now

	if err := s.store.UpdateSession(ctx, session); err != nil {
		return nil, nil, err
	}
	if err := s.logEvent(ctx, sessionID, "voice_command", map[string]any{
		"command": command,
		"applied": result.Applied,
	}); err != nil {
		return nil, nil, err
	}
	return session, result.Applied, nil
}

// UpdateChecklistStatus sets one checklist item's status and recomputes the
// readiness score.
func (s *Service) UpdateChecklistStatus(ctx context.Context, sessionID, itemID, status string) (*types.OnboardingSession, error) {
	switch status {
	case ChecklistStatusPending, ChecklistStatusInProgress, ChecklistStatusCompleted:
	default:
		return nil, &ValidationError{Message: fmt.Sprintf("unknown checklist status: %s", status)}
	}

	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	found := false
	for i := range session.Checklist {
		if session.Checklist[i].ID == itemID {
			session.Checklist[i].Status = status
			found = true
			break
		}
	}
	if !found {
		return nil, &NotFoundError{ID: itemID}
	}

	session.ReadinessScore = CalculateReadinessScore(session.Checklist)
	session.UpdatedAt = s.now()
	if err := s.store.UpdateSession(ctx, session); err != nil {
		return nil, err
	}
	if err := s.logEvent(ctx, sessionID, "checklist_item_updated", map[string]any{
		"id":     itemID,
		"status": status,
	}); err != nil {
		return nil, err
	}
	return session, nil
}

// Complete marks a session finished.
func (s *Service) Complete(ctx context.Context, sessionID string) (*types.OnboardingSession, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	session.Status = types.SessionCompleted
	session.UpdatedAt = s.now()
	if err := s.store.UpdateSession(ctx, session); err != nil {
		return nil, err
	}
	if err := s.logEvent(ctx, sessionID, "session_completed", map[string]any{}); err != nil {
		return nil, err
	}
	return session, nil
}

// Delete soft-deletes a session. The row and its audit logs are retained.
func (s *Service) Delete(ctx context.Context, sessionID string) error {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	now := s.now()
	session.Status = types.SessionDeleted
	session.DeletedAt = &now
	session.UpdatedAt = now
	if err := s.store.UpdateSession(ctx, session); err != nil {
		return err
	}
	return s.logEvent(ctx, sessionID, "session_deleted", map[string]any{})
}

// Report renders the session's Markdown export.
func (s *Service) Report(ctx context.Context, sessionID string) (string, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return "", err
	}
	transcript, err := s.store.GetTranscript(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return BuildMarkdownReport(session, transcript), nil
}

func (s *Service) logEvent(ctx context.Context, sessionID, eventType string, payload map[string]any) error {
	return s.store.AppendSessionEvent(ctx, &types.SessionEvent{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		EventType: eventType,
		Payload:   payload,
		CreatedAt: s.now(),
	})
}
