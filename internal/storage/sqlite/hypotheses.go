package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/k2tech/ailab/internal/storage"
	"github.com/k2tech/ailab/internal/types"
)

// Timestamps are stored as RFC3339Nano strings in UTC so they sort
// lexicographically and round-trip without driver-specific time handling.
const timeLayout = time.RFC3339Nano

func fmtTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func fmtTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return fmtTime(*t)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		// Older rows may carry second precision.
		t, err = time.Parse(time.RFC3339, s)
	}
	return t, err
}

func parseTimePtr(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func marshalJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal json column: %w", err)
	}
	return string(b), nil
}

func unmarshalJSON(data string, v any) error {
	if data == "" {
		return nil
	}
	return json.Unmarshal([]byte(data), v)
}

const recordColumns = `hyp_id, lab_id, version, title, statement, description,
	ai_type, ai_subtype, business_category, priority, stage, stage_health,
	impact_score, feasibility_score, confidence_score, complexity_score,
	risk_class, data_requirements, roi_estimate, time_estimate, success_metrics,
	dependencies, linked_experiments, tags, links, governance_state, notes,
	owners, sponsors, observers, gating_checklist, attachments, activity_digest,
	created_at, updated_at, archived_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*types.HypothesisRecord, error) {
	var (
		rec                                          types.HypothesisRecord
		complexity                                   sql.NullFloat64
		dataReq, successMetrics, deps, linkedExps    string
		roiEstimate, timeEstimate                    sql.NullString
		tags, links, owners, sponsors, observers     string
		gatingChecklist, attachmentsJSON, digestJSON string
		createdAt, updatedAt                         string
		archivedAt                                   sql.NullString
	)
	err := row.Scan(
		&rec.HypID, &rec.LabID, &rec.Version, &rec.Title, &rec.Statement, &rec.Description,
		&rec.AIType, &rec.AISubtype, &rec.BusinessCategory, &rec.Priority, &rec.Stage, &rec.StageHealth,
		&rec.ImpactScore, &rec.FeasibilityScore, &rec.ConfidenceScore, &complexity,
		&rec.RiskClass, &dataReq, &roiEstimate, &timeEstimate, &successMetrics,
		&deps, &linkedExps, &tags, &links, &rec.GovernanceState, &rec.Notes,
		&owners, &sponsors, &observers, &gatingChecklist, &attachmentsJSON, &digestJSON,
		&createdAt, &updatedAt, &archivedAt,
	)
	if err != nil {
		return nil, err
	}

	if complexity.Valid {
		rec.ComplexityScore = &complexity.Float64
	}
	for _, col := range []struct {
		data string
		dest any
	}{
		{dataReq, &rec.DataRequirements},
		{successMetrics, &rec.SuccessMetrics},
		{deps, &rec.Dependencies},
		{linkedExps, &rec.LinkedExperiments},
		{tags, &rec.Tags},
		{links, &rec.Links},
		{owners, &rec.Owners},
		{sponsors, &rec.Sponsors},
		{observers, &rec.Observers},
		{gatingChecklist, &rec.GatingChecklist},
		{attachmentsJSON, &rec.Attachments},
		{digestJSON, &rec.ActivityDigest},
	} {
		if err := unmarshalJSON(col.data, col.dest); err != nil {
			return nil, fmt.Errorf("failed to decode json column for %s: %w", rec.HypID, err)
		}
	}
	if roiEstimate.Valid {
		rec.ROIEstimate = &types.ValueEstimate{}
		if err := unmarshalJSON(roiEstimate.String, rec.ROIEstimate); err != nil {
			return nil, fmt.Errorf("failed to decode roi estimate for %s: %w", rec.HypID, err)
		}
	}
	if timeEstimate.Valid {
		rec.TimeEstimate = &types.TimeEstimate{}
		if err := unmarshalJSON(timeEstimate.String, rec.TimeEstimate); err != nil {
			return nil, fmt.Errorf("failed to decode time estimate for %s: %w", rec.HypID, err)
		}
	}
	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at for %s: %w", rec.HypID, err)
	}
	if rec.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at for %s: %w", rec.HypID, err)
	}
	if rec.ArchivedAt, err = parseTimePtr(archivedAt); err != nil {
		return nil, fmt.Errorf("failed to parse archived_at for %s: %w", rec.HypID, err)
	}
	return &rec, nil
}

func getHypothesis(ctx context.Context, q querier, hypID string) (*storage.Hypothesis, error) {
	row := q.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM hypotheses WHERE hyp_id = ?`, hypID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get hypothesis: %w", err)
	}
	return loadSubEntities(ctx, q, rec)
}

func listHypotheses(ctx context.Context, q querier, includeArchived bool) ([]*storage.Hypothesis, error) {
	query := `SELECT ` + recordColumns + ` FROM hypotheses`
	if !includeArchived {
		query += ` WHERE archived_at IS NULL`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query hypotheses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*types.HypothesisRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan hypothesis: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating hypotheses: %w", err)
	}

	result := make([]*storage.Hypothesis, 0, len(records))
	for _, rec := range records {
		hyp, err := loadSubEntities(ctx, q, rec)
		if err != nil {
			return nil, err
		}
		result = append(result, hyp)
	}
	return result, nil
}

func loadSubEntities(ctx context.Context, q querier, rec *types.HypothesisRecord) (*storage.Hypothesis, error) {
	hyp := &storage.Hypothesis{Record: rec}
	var err error
	if hyp.StageHistory, err = getStageHistory(ctx, q, rec.HypID); err != nil {
		return nil, err
	}
	if hyp.Checklist, err = getChecklist(ctx, q, rec.HypID); err != nil {
		return nil, err
	}
	if hyp.Tasks, err = getTasks(ctx, q, rec.HypID); err != nil {
		return nil, err
	}
	if hyp.Comments, err = getComments(ctx, q, rec.HypID); err != nil {
		return nil, err
	}
	if hyp.Attachments, err = getAttachments(ctx, q, rec.HypID); err != nil {
		return nil, err
	}
	if hyp.Approvals, err = getApprovals(ctx, q, rec.HypID); err != nil {
		return nil, err
	}
	if hyp.Events, err = getActivityEvents(ctx, q, rec.HypID); err != nil {
		return nil, err
	}
	return hyp, nil
}

// GetHypothesis retrieves a hypothesis with all its sub-entities.
// Archived records are returned; filtering is the service layer's concern.
func (s *Store) GetHypothesis(ctx context.Context, hypID string) (*storage.Hypothesis, error) {
	return getHypothesis(ctx, s.db, hypID)
}

// ListHypotheses returns hypotheses ordered by creation date, newest first.
func (s *Store) ListHypotheses(ctx context.Context, includeArchived bool) ([]*storage.Hypothesis, error) {
	return listHypotheses(ctx, s.db, includeArchived)
}
