package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/k2tech/ailab/internal/storage"
	"github.com/k2tech/ailab/internal/types"
)

// Onboarding session persistence. Sessions are single-row documents: the
// extracted summary, roadmap, and checklist are JSON columns rather than
// normalized tables because they are always read and written whole.

// CreateSession inserts a new onboarding session.
func (s *Store) CreateSession(ctx context.Context, session *types.OnboardingSession) error {
	summaryJSON, err := marshalJSON(session.ExtractedSummary)
	if err != nil {
		return err
	}
	roadmapJSON, err := marshalJSON(session.Roadmap)
	if err != nil {
		return err
	}
	checklistJSON, err := marshalJSON(session.Checklist)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO onboarding_sessions (
			id, user_id, language, mode, industry, status, readiness_score,
			consent_given, voice_consent, consent_timestamp, time_horizon_months,
			extracted_summary, roadmap, checklist, created_at, updated_at, deleted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, session.ID, session.UserID, session.Language, session.Mode, session.Industry,
		session.Status, session.ReadinessScore, session.ConsentGiven, session.VoiceConsent,
		fmtTimePtr(session.ConsentTimestamp), session.TimeHorizonMonths,
		summaryJSON, roadmapJSON, checklistJSON,
		fmtTime(session.CreatedAt), fmtTime(session.UpdatedAt), fmtTimePtr(session.DeletedAt))
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by id. Soft-deleted sessions are returned;
// callers decide whether DeletedAt disqualifies them.
func (s *Store) GetSession(ctx context.Context, id string) (*types.OnboardingSession, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, language, mode, industry, status, readiness_score,
			consent_given, voice_consent, consent_timestamp, time_horizon_months,
			extracted_summary, roadmap, checklist, created_at, updated_at, deleted_at
		FROM onboarding_sessions WHERE id = ?
	`, id)

	var (
		session                             types.OnboardingSession
		consentTS, deletedAt                sql.NullString
		summaryJSON, roadmapJSON, checklist string
		createdAt, updatedAt                string
	)
	err := row.Scan(&session.ID, &session.UserID, &session.Language, &session.Mode,
		&session.Industry, &session.Status, &session.ReadinessScore,
		&session.ConsentGiven, &session.VoiceConsent, &consentTS, &session.TimeHorizonMonths,
		&summaryJSON, &roadmapJSON, &checklist, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if err := unmarshalJSON(summaryJSON, &session.ExtractedSummary); err != nil {
		return nil, fmt.Errorf("failed to decode extracted summary: %w", err)
	}
	if err := unmarshalJSON(roadmapJSON, &session.Roadmap); err != nil {
		return nil, fmt.Errorf("failed to decode roadmap: %w", err)
	}
	if err := unmarshalJSON(checklist, &session.Checklist); err != nil {
		return nil, fmt.Errorf("failed to decode checklist: %w", err)
	}
	if session.ConsentTimestamp, err = parseTimePtr(consentTS); err != nil {
		return nil, fmt.Errorf("failed to parse consent_timestamp: %w", err)
	}
	if session.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if session.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	if session.DeletedAt, err = parseTimePtr(deletedAt); err != nil {
		return nil, fmt.Errorf("failed to parse deleted_at: %w", err)
	}
	return &session, nil
}

// UpdateSession persists the full session state.
func (s *Store) UpdateSession(ctx context.Context, session *types.OnboardingSession) error {
	summaryJSON, err := marshalJSON(session.ExtractedSummary)
	if err != nil {
		return err
	}
	roadmapJSON, err := marshalJSON(session.Roadmap)
	if err != nil {
		return err
	}
	checklistJSON, err := marshalJSON(session.Checklist)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE onboarding_sessions SET
			user_id = ?, language = ?, mode = ?, industry = ?, status = ?,
			readiness_score = ?, consent_given = ?, voice_consent = ?,
			consent_timestamp = ?, time_horizon_months = ?,
			extracted_summary = ?, roadmap = ?, checklist = ?,
			updated_at = ?, deleted_at = ?
		WHERE id = ?
	`, session.UserID, session.Language, session.Mode, session.Industry, session.Status,
		session.ReadinessScore, session.ConsentGiven, session.VoiceConsent,
		fmtTimePtr(session.ConsentTimestamp), session.TimeHorizonMonths,
		summaryJSON, roadmapJSON, checklistJSON,
		fmtTime(session.UpdatedAt), fmtTimePtr(session.DeletedAt), session.ID)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return requireRow(result)
}

// AppendTranscript records an ingested text fragment. Entries are append-only.
func (s *Store) AppendTranscript(ctx context.Context, entry *types.TranscriptEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transcript_entries (id, session_id, source, text, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, entry.ID, entry.SessionID, entry.Source, entry.Text, fmtTime(entry.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to append transcript entry: %w", err)
	}
	return nil
}

// GetTranscript returns all transcript entries for a session, oldest first.
func (s *Store) GetTranscript(ctx context.Context, sessionID string) ([]*types.TranscriptEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, source, text, created_at
		FROM transcript_entries WHERE session_id = ? ORDER BY created_at ASC, id ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transcript: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []*types.TranscriptEntry
	for rows.Next() {
		var (
			entry     types.TranscriptEntry
			createdAt string
		)
		if err := rows.Scan(&entry.ID, &entry.SessionID, &entry.Source, &entry.Text, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan transcript entry: %w", err)
		}
		if entry.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

// AppendSessionEvent records an audit entry for a session mutation.
func (s *Store) AppendSessionEvent(ctx context.Context, event *types.SessionEvent) error {
	payloadJSON, err := marshalJSON(event.Payload)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO session_events (id, session_id, event_type, payload, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, event.ID, event.SessionID, event.EventType, payloadJSON, fmtTime(event.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to append session event: %w", err)
	}
	return nil
}

// GetSessionEvents returns the audit log for a session, oldest first.
func (s *Store) GetSessionEvents(ctx context.Context, sessionID string) ([]*types.SessionEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, event_type, payload, created_at
		FROM session_events WHERE session_id = ? ORDER BY created_at ASC, id ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query session events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []*types.SessionEvent
	for rows.Next() {
		var (
			event       types.SessionEvent
			payloadJSON string
			createdAt   string
		)
		if err := rows.Scan(&event.ID, &event.SessionID, &event.EventType, &payloadJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan session event: %w", err)
		}
		if err := unmarshalJSON(payloadJSON, &event.Payload); err != nil {
			return nil, fmt.Errorf("failed to decode event payload: %w", err)
		}
		if event.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		events = append(events, &event)
	}
	return events, rows.Err()
}
