package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/k2tech/ailab/internal/storage"
	"github.com/k2tech/ailab/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testRecord(hypID string) *types.HypothesisRecord {
	now := time.Now().UTC().Truncate(time.Millisecond)
	rec := &types.HypothesisRecord{
		HypID:            hypID,
		LabID:            "lab-1",
		Title:            "Churn prediction for enterprise accounts",
		Statement:        "If we score churn risk weekly, retention outreach improves renewals",
		ImpactScore:      8,
		FeasibilityScore: 6,
		ConfidenceScore:  0.7,
		Owners:           []types.Actor{{Name: "Dana Ives", Email: "dana@example.com"}},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	rec.SetDefaults()
	return rec
}

func insertRecord(t *testing.T, store *Store, rec *types.HypothesisRecord) {
	t.Helper()
	err := store.RunInTransaction(context.Background(), func(tx storage.Transaction) error {
		return tx.InsertHypothesis(context.Background(), rec)
	})
	if err != nil {
		t.Fatalf("failed to insert %s: %v", rec.HypID, err)
	}
}

func TestInsertAndGetHypothesis(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := testRecord("HYP-001")
	roi := types.ValueEstimate{Currency: "USD", ExpectedROI: 1500000, PaybackPeriodWeeks: 26}
	rec.ROIEstimate = &roi
	rec.Tags = []string{"churn", "ml"}
	insertRecord(t, store, rec)

	got, err := store.GetHypothesis(ctx, "HYP-001")
	if err != nil {
		t.Fatalf("failed to get hypothesis: %v", err)
	}
	if got.Record.Title != rec.Title {
		t.Errorf("title = %q, want %q", got.Record.Title, rec.Title)
	}
	if got.Record.Stage != types.StageIdeation {
		t.Errorf("stage = %q, want IDEATION", got.Record.Stage)
	}
	if got.Record.ROIEstimate == nil || got.Record.ROIEstimate.ExpectedROI != 1500000 {
		t.Errorf("roi estimate did not round-trip: %+v", got.Record.ROIEstimate)
	}
	if len(got.Record.Tags) != 2 {
		t.Errorf("tags = %v, want 2 entries", got.Record.Tags)
	}
	if len(got.Record.Owners) != 1 || got.Record.Owners[0].Name != "Dana Ives" {
		t.Errorf("owners = %+v", got.Record.Owners)
	}
}

func TestGetHypothesisNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetHypothesis(context.Background(), "HYP-999")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestNextHypID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var first string
	err := store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		id, err := tx.NextHypID(ctx)
		if err != nil {
			return err
		}
		first = id
		return tx.InsertHypothesis(ctx, testRecord(id))
	})
	if err != nil {
		t.Fatalf("first allocation failed: %v", err)
	}
	if first != "HYP-001" {
		t.Errorf("first id = %q, want HYP-001", first)
	}

	// Ids with higher numbers and malformed ids both feed the scan.
	insertRecord(t, store, testRecord("HYP-041"))

	var next string
	err = store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		id, err := tx.NextHypID(ctx)
		next = id
		return err
	})
	if err != nil {
		t.Fatalf("second allocation failed: %v", err)
	}
	if next != "HYP-042" {
		t.Errorf("next id = %q, want HYP-042", next)
	}
}

func TestUpdateHypothesis(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	rec := testRecord("HYP-001")
	insertRecord(t, store, rec)

	rec.Title = "Churn prediction v2"
	rec.Version = 2
	rec.UpdatedAt = time.Now().UTC()
	err := store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		return tx.UpdateHypothesis(ctx, rec)
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, err := store.GetHypothesis(ctx, "HYP-001")
	if err != nil {
		t.Fatalf("get after update failed: %v", err)
	}
	if got.Record.Title != "Churn prediction v2" {
		t.Errorf("title = %q", got.Record.Title)
	}
	if got.Record.Version != 2 {
		t.Errorf("version = %d, want 2", got.Record.Version)
	}
}

func TestUpdateMissingHypothesis(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	err := store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		return tx.UpdateHypothesis(ctx, testRecord("HYP-404"))
	})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListHypothesesExcludesArchived(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	insertRecord(t, store, testRecord("HYP-001"))

	archived := testRecord("HYP-002")
	archived.Stage = types.StageArchived
	archivedAt := time.Now().UTC()
	archived.ArchivedAt = &archivedAt
	insertRecord(t, store, archived)

	active, err := store.ListHypotheses(ctx, false)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(active) != 1 || active[0].Record.HypID != "HYP-001" {
		t.Errorf("active list = %d entries", len(active))
	}

	all, err := store.ListHypotheses(ctx, true)
	if err != nil {
		t.Fatalf("list with archived failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("full list = %d entries, want 2", len(all))
	}
}

func TestTransactionRollback(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		if err := tx.InsertHypothesis(ctx, testRecord("HYP-001")); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}

	_, err = store.GetHypothesis(ctx, "HYP-001")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("insert should have rolled back, got %v", err)
	}
}

func TestSubEntitiesAndSnapshots(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	rec := testRecord("HYP-001")
	insertRecord(t, store, rec)

	now := time.Now().UTC()
	err := store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		item := &types.ChecklistItem{
			ID: "chk-1", HypID: "HYP-001", Label: "Secure data access",
			Status: types.ChecklistPending, CreatedAt: now, UpdatedAt: now,
		}
		if err := tx.AddChecklistItem(ctx, item); err != nil {
			return err
		}
		att := &types.Attachment{
			ID: "att-1", HypID: "HYP-001", Name: "scoping.pdf",
			URL: "https://files.example.com/scoping.pdf", Version: 1, UploadedAt: now,
		}
		if err := tx.AddAttachment(ctx, att); err != nil {
			return err
		}
		event := &types.ActivityEvent{
			ID: "evt-1", HypID: "HYP-001", Type: types.ActivityCreated,
			Title: "Hypothesis created", Actor: "Dana Ives",
			Impact: types.ImpactPositive, OccurredAt: now,
		}
		if err := tx.AppendActivity(ctx, event); err != nil {
			return err
		}
		return tx.RefreshSnapshots(ctx, "HYP-001")
	})
	if err != nil {
		t.Fatalf("mutation batch failed: %v", err)
	}

	got, err := store.GetHypothesis(ctx, "HYP-001")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(got.Checklist) != 1 || got.Checklist[0].Label != "Secure data access" {
		t.Errorf("checklist = %+v", got.Checklist)
	}
	if len(got.Attachments) != 1 || got.Attachments[0].Name != "scoping.pdf" {
		t.Errorf("attachments = %+v", got.Attachments)
	}
	if len(got.Events) != 1 || got.Events[0].Type != types.ActivityCreated {
		t.Errorf("events = %+v", got.Events)
	}

	// Snapshots on the parent row must mirror the sub-entity tables.
	if len(got.Record.GatingChecklist) != 1 || got.Record.GatingChecklist[0].ID != "chk-1" {
		t.Errorf("gating checklist snapshot = %+v", got.Record.GatingChecklist)
	}
	if len(got.Record.Attachments) != 1 || got.Record.Attachments[0].ID != "att-1" {
		t.Errorf("attachments snapshot = %+v", got.Record.Attachments)
	}
	if len(got.Record.ActivityDigest) != 1 || got.Record.ActivityDigest[0].ID != "evt-1" {
		t.Errorf("activity digest snapshot = %+v", got.Record.ActivityDigest)
	}
}

func TestCommentCascadeDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	insertRecord(t, store, testRecord("HYP-001"))

	now := time.Now().UTC()
	err := store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		parent := &types.Comment{
			ID: "c-1", HypID: "HYP-001", Author: "Dana Ives",
			Body: "Scope looks thin", CreatedAt: now, UpdatedAt: now,
		}
		if err := tx.AddComment(ctx, parent); err != nil {
			return err
		}
		reply := &types.Comment{
			ID: "c-2", HypID: "HYP-001", ParentID: "c-1", Author: "Raj Patel",
			Body: "Adding detail this week", CreatedAt: now.Add(time.Second), UpdatedAt: now.Add(time.Second),
		}
		return tx.AddComment(ctx, reply)
	})
	if err != nil {
		t.Fatalf("comment setup failed: %v", err)
	}

	err = store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		return tx.DeleteComment(ctx, "HYP-001", "c-1")
	})
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	got, err := store.GetHypothesis(ctx, "HYP-001")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(got.Comments) != 0 {
		t.Errorf("expected reply cascade, got %d comments", len(got.Comments))
	}
}

func TestStageHistoryOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	insertRecord(t, store, testRecord("HYP-001"))

	base := time.Now().UTC()
	err := store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		entries := []*types.StageHistoryEntry{
			{HypID: "HYP-001", ToStage: types.StageIdeation, ChangedAt: base, ChangedBy: "Dana Ives"},
			{HypID: "HYP-001", FromStage: types.StageIdeation, ToStage: types.StageScoping, ChangedAt: base.Add(time.Hour), ChangedBy: "Dana Ives"},
		}
		for _, e := range entries {
			if err := tx.AddStageHistory(ctx, e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("history setup failed: %v", err)
	}

	got, err := store.GetHypothesis(ctx, "HYP-001")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(got.StageHistory) != 2 {
		t.Fatalf("history = %d entries, want 2", len(got.StageHistory))
	}
	if got.StageHistory[0].FromStage != "" {
		t.Errorf("initial entry FromStage = %q, want empty", got.StageHistory[0].FromStage)
	}
	if got.StageHistory[1].ToStage != types.StageScoping {
		t.Errorf("second entry ToStage = %q", got.StageHistory[1].ToStage)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	session := &types.OnboardingSession{
		ID: "sess-1", UserID: "user-1", Language: "en", Mode: "text",
		Status: types.SessionActive, TimeHorizonMonths: 6,
		ExtractedSummary: types.Summary{"role": {"Head of ops"}}.Clone(),
		CreatedAt:        now, UpdatedAt: now,
	}
	if err := store.CreateSession(ctx, session); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := store.GetSession(ctx, "sess-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.ExtractedSummary["role"][0] != "Head of ops" {
		t.Errorf("summary = %+v", got.ExtractedSummary)
	}

	got.ReadinessScore = 40
	got.Status = types.SessionCompleted
	if err := store.UpdateSession(ctx, got); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	again, err := store.GetSession(ctx, "sess-1")
	if err != nil {
		t.Fatalf("get after update failed: %v", err)
	}
	if again.ReadinessScore != 40 || again.Status != types.SessionCompleted {
		t.Errorf("session = %+v", again)
	}
}

func TestTranscriptAndEvents(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	session := &types.OnboardingSession{
		ID: "sess-1", UserID: "user-1", Language: "en", Mode: "voice",
		Status: types.SessionActive, TimeHorizonMonths: 6,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := store.CreateSession(ctx, session); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	for i, text := range []string{"I am the Head of ops", "We want to reduce churn"} {
		entry := &types.TranscriptEntry{
			ID: string(rune('a' + i)), SessionID: "sess-1", Source: "voice",
			Text: text, CreatedAt: now.Add(time.Duration(i) * time.Second),
		}
		if err := store.AppendTranscript(ctx, entry); err != nil {
			t.Fatalf("append transcript failed: %v", err)
		}
	}
	transcript, err := store.GetTranscript(ctx, "sess-1")
	if err != nil {
		t.Fatalf("get transcript failed: %v", err)
	}
	if len(transcript) != 2 || transcript[0].Text != "I am the Head of ops" {
		t.Errorf("transcript = %+v", transcript)
	}

	event := &types.SessionEvent{
		ID: "evt-1", SessionID: "sess-1", EventType: "voice_command",
		Payload:   map[string]any{"action": "set_time_horizon", "months": 9},
		CreatedAt: now,
	}
	if err := store.AppendSessionEvent(ctx, event); err != nil {
		t.Fatalf("append event failed: %v", err)
	}
	events, err := store.GetSessionEvents(ctx, "sess-1")
	if err != nil {
		t.Fatalf("get events failed: %v", err)
	}
	if len(events) != 1 || events[0].Payload["action"] != "set_time_horizon" {
		t.Errorf("events = %+v", events)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.GetConfig(ctx, "actor"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unset key, got %v", err)
	}
	if err := store.SetConfig(ctx, "actor", "Dana Ives"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := store.SetConfig(ctx, "actor", "Raj Patel"); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	value, err := store.GetConfig(ctx, "actor")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if value != "Raj Patel" {
		t.Errorf("value = %q, want Raj Patel", value)
	}
}
