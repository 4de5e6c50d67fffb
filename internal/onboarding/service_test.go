package onboarding

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k2tech/ailab/internal/storage/sqlite"
	"github.com/k2tech/ailab/internal/types"
)

func newTestOnboarding(t *testing.T) *Service {
	t.Helper()
	store, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewService(store)
}

func TestSessionLifecycle(t *testing.T) {
	svc := newTestOnboarding(t)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, &CreateSessionRequest{UserID: "user-1", ConsentGiven: true})
	require.NoError(t, err)
	assert.Equal(t, types.SessionActive, session.Status)
	assert.Equal(t, "en", session.Language)
	assert.Equal(t, 6, session.TimeHorizonMonths)
	assert.NotNil(t, session.ConsentTimestamp)

	// Text ingestion grows the summary and the transcript.
	session, err = svc.IngestText(ctx, session.ID, "text", "I am the Head of Ops. Our goal is cut costs by 10%.")
	require.NoError(t, err)
	assert.Equal(t, []string{"Head of ops"}, session.ExtractedSummary[types.SummaryRole])
	assert.Equal(t, []string{"cut costs by 10%"}, session.ExtractedSummary[types.SummaryGoals])

	session, err = svc.GenerateRoadmap(ctx, session.ID)
	require.NoError(t, err)
	assert.Len(t, session.Roadmap, 3)

	session, err = svc.GenerateChecklist(ctx, session.ID)
	require.NoError(t, err)
	assert.Len(t, session.Checklist, 5)
	assert.Equal(t, 0, session.ReadinessScore)

	// Completing one item moves the score to round(1/5*100) = 20.
	session, err = svc.UpdateChecklistStatus(ctx, session.ID, session.Checklist[0].ID, ChecklistStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, 20, session.ReadinessScore)

	session, err = svc.Complete(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, types.SessionCompleted, session.Status)
}

func TestCreateSessionValidation(t *testing.T) {
	svc := newTestOnboarding(t)
	ctx := context.Background()

	_, err := svc.CreateSession(ctx, &CreateSessionRequest{})
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))

	_, err = svc.CreateSession(ctx, &CreateSessionRequest{UserID: "u", TimeHorizonMonths: 48})
	assert.True(t, errors.As(err, &verr))
}

func TestVoiceCommandPersistsAndAudits(t *testing.T) {
	svc := newTestOnboarding(t)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, &CreateSessionRequest{UserID: "user-1", VoiceConsent: true, Mode: "voice"})
	require.NoError(t, err)

	session, applied, err := svc.ApplyVoiceCommand(ctx, session.ID, "set horizon 9")
	require.NoError(t, err)
	assert.Equal(t, 9, session.TimeHorizonMonths)
	assert.Equal(t, map[string]any{"time_horizon_months": 9}, applied)

	events, err := svc.store.GetSessionEvents(ctx, session.ID)
	require.NoError(t, err)
	var found bool
	for _, event := range events {
		if event.EventType == "voice_command" {
			found = true
			assert.Equal(t, "set horizon 9", event.Payload["command"])
		}
	}
	assert.True(t, found, "voice_command event missing from audit log")
}

func TestDeleteSessionSoft(t *testing.T) {
	svc := newTestOnboarding(t)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, &CreateSessionRequest{UserID: "user-1"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, session.ID))

	_, err = svc.GetSession(ctx, session.ID)
	var nf *NotFoundError
	assert.True(t, errors.As(err, &nf))

	// The row is retained with status deleted.
	raw, err := svc.store.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, types.SessionDeleted, raw.Status)
	assert.NotNil(t, raw.DeletedAt)
}

func TestReportRendersMarkdown(t *testing.T) {
	svc := newTestOnboarding(t)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, &CreateSessionRequest{UserID: "user-1", Industry: "retail"})
	require.NoError(t, err)
	_, err = svc.IngestText(ctx, session.ID, "text", "Our goal is cut costs by 10%. We struggle with legacy data.")
	require.NoError(t, err)
	_, err = svc.GenerateRoadmap(ctx, session.ID)
	require.NoError(t, err)
	_, err = svc.GenerateChecklist(ctx, session.ID)
	require.NoError(t, err)

	report, err := svc.Report(ctx, session.ID)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(report, "# K2Tech AI Lab Onboarding — Session "+session.ID))
	assert.Contains(t, report, "**Industry:** retail")
	assert.Contains(t, report, "## Extracted Summary")
	assert.Contains(t, report, "- **Goals:** cut costs by 10%")
	assert.Contains(t, report, "### Discovery")
	assert.Contains(t, report, "## Readiness Checklist")
	assert.Contains(t, report, "## Transcript")
}
