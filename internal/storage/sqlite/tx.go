package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/k2tech/ailab/internal/storage"
	"github.com/k2tech/ailab/internal/types"
)

// sqliteTx implements storage.Transaction on a pinned connection that has an
// open BEGIN IMMEDIATE transaction. Commit and rollback are owned by
// Store.RunInTransaction; this type only issues statements.
type sqliteTx struct {
	conn *sql.Conn
}

var _ storage.Transaction = (*sqliteTx)(nil)

// NextHypID scans existing ids and returns max+1 formatted as HYP-NNN.
// Safe under concurrency because the surrounding transaction holds the
// database write lock for its whole lifetime.
func (t *sqliteTx) NextHypID(ctx context.Context) (string, error) {
	rows, err := t.conn.QueryContext(ctx, `SELECT hyp_id FROM hypotheses`)
	if err != nil {
		return "", fmt.Errorf("failed to query hypothesis ids: %w", err)
	}
	defer func() { _ = rows.Close() }()

	maxID := 0
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("failed to scan hypothesis id: %w", err)
		}
		m := types.HypIDPattern.FindStringSubmatch(id)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > maxID {
			maxID = n
		}
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("error iterating hypothesis ids: %w", err)
	}
	return fmt.Sprintf("HYP-%03d", maxID+1), nil
}

// recordArgs flattens a record into the value list matching recordColumns.
func recordArgs(rec *types.HypothesisRecord) ([]any, error) {
	jsonCols := make([]string, 0, 12)
	for _, v := range []any{
		rec.DataRequirements, rec.SuccessMetrics, rec.Dependencies,
		rec.LinkedExperiments, rec.Tags, rec.Links,
		rec.Owners, rec.Sponsors, rec.Observers,
		rec.GatingChecklist, rec.Attachments, rec.ActivityDigest,
	} {
		s, err := marshalJSON(v)
		if err != nil {
			return nil, err
		}
		jsonCols = append(jsonCols, s)
	}

	var roiEstimate, timeEstimate any
	if rec.ROIEstimate != nil {
		s, err := marshalJSON(rec.ROIEstimate)
		if err != nil {
			return nil, err
		}
		roiEstimate = s
	}
	if rec.TimeEstimate != nil {
		s, err := marshalJSON(rec.TimeEstimate)
		if err != nil {
			return nil, err
		}
		timeEstimate = s
	}

	var complexity any
	if rec.ComplexityScore != nil {
		complexity = *rec.ComplexityScore
	}

	return []any{
		rec.HypID, rec.LabID, rec.Version, rec.Title, rec.Statement, rec.Description,
		rec.AIType, rec.AISubtype, rec.BusinessCategory, rec.Priority, rec.Stage, rec.StageHealth,
		rec.ImpactScore, rec.FeasibilityScore, rec.ConfidenceScore, complexity,
		rec.RiskClass, jsonCols[0], roiEstimate, timeEstimate, jsonCols[1],
		jsonCols[2], jsonCols[3], jsonCols[4], jsonCols[5], rec.GovernanceState, rec.Notes,
		jsonCols[6], jsonCols[7], jsonCols[8], jsonCols[9], jsonCols[10], jsonCols[11],
		fmtTime(rec.CreatedAt), fmtTime(rec.UpdatedAt), fmtTimePtr(rec.ArchivedAt),
	}, nil
}

func (t *sqliteTx) InsertHypothesis(ctx context.Context, rec *types.HypothesisRecord) error {
	args, err := recordArgs(rec)
	if err != nil {
		return err
	}
	query := `INSERT INTO hypotheses (` + recordColumns + `) VALUES (` +
		`?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := t.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert hypothesis %s: %w", rec.HypID, err)
	}
	return nil
}

func (t *sqliteTx) UpdateHypothesis(ctx context.Context, rec *types.HypothesisRecord) error {
	args, err := recordArgs(rec)
	if err != nil {
		return err
	}
	// Shift hyp_id to the WHERE clause.
	args = append(args[1:], rec.HypID)
	result, err := t.conn.ExecContext(ctx, `
		UPDATE hypotheses SET
			lab_id = ?, version = ?, title = ?, statement = ?, description = ?,
			ai_type = ?, ai_subtype = ?, business_category = ?, priority = ?, stage = ?, stage_health = ?,
			impact_score = ?, feasibility_score = ?, confidence_score = ?, complexity_score = ?,
			risk_class = ?, data_requirements = ?, roi_estimate = ?, time_estimate = ?, success_metrics = ?,
			dependencies = ?, linked_experiments = ?, tags = ?, links = ?, governance_state = ?, notes = ?,
			owners = ?, sponsors = ?, observers = ?, gating_checklist = ?, attachments = ?, activity_digest = ?,
			created_at = ?, updated_at = ?, archived_at = ?
		WHERE hyp_id = ?
	`, args...)
	if err != nil {
		return fmt.Errorf("failed to update hypothesis %s: %w", rec.HypID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (t *sqliteTx) GetHypothesis(ctx context.Context, hypID string) (*storage.Hypothesis, error) {
	return getHypothesis(ctx, t.conn, hypID)
}

func (t *sqliteTx) AddStageHistory(ctx context.Context, entry *types.StageHistoryEntry) error {
	var fromStage any
	if entry.FromStage != "" {
		fromStage = string(entry.FromStage)
	}
	_, err := t.conn.ExecContext(ctx, `
		INSERT INTO stage_history (hyp_id, from_stage, to_stage, changed_at, changed_by, notes)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.HypID, fromStage, entry.ToStage, fmtTime(entry.ChangedAt), entry.ChangedBy, entry.Notes)
	if err != nil {
		return fmt.Errorf("failed to add stage history: %w", err)
	}
	return nil
}

func (t *sqliteTx) AppendActivity(ctx context.Context, event *types.ActivityEvent) error {
	_, err := t.conn.ExecContext(ctx, `
		INSERT INTO activity_events (id, hyp_id, event_type, title, actor, actor_email, detail, stage, impact, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, event.ID, event.HypID, event.Type.Normalize(), event.Title, event.Actor,
		event.ActorEmail, event.Detail, event.Stage, event.Impact.Normalize(), fmtTime(event.OccurredAt))
	if err != nil {
		return fmt.Errorf("failed to append activity event: %w", err)
	}
	return nil
}

func (t *sqliteTx) AddChecklistItem(ctx context.Context, item *types.ChecklistItem) error {
	_, err := t.conn.ExecContext(ctx, `
		INSERT INTO checklist_items (id, hyp_id, label, owner, owner_email, status, due_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.ID, item.HypID, item.Label, item.Owner, item.OwnerEmail, item.Status,
		fmtTimePtr(item.DueAt), fmtTime(item.CreatedAt), fmtTime(item.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to add checklist item: %w", err)
	}
	return nil
}

func (t *sqliteTx) UpdateChecklistItem(ctx context.Context, item *types.ChecklistItem) error {
	result, err := t.conn.ExecContext(ctx, `
		UPDATE checklist_items SET label = ?, owner = ?, owner_email = ?, status = ?, due_at = ?, updated_at = ?
		WHERE id = ? AND hyp_id = ?
	`, item.Label, item.Owner, item.OwnerEmail, item.Status, fmtTimePtr(item.DueAt),
		fmtTime(item.UpdatedAt), item.ID, item.HypID)
	if err != nil {
		return fmt.Errorf("failed to update checklist item: %w", err)
	}
	return requireRow(result)
}

func (t *sqliteTx) DeleteChecklistItem(ctx context.Context, hypID, itemID string) error {
	result, err := t.conn.ExecContext(ctx,
		`DELETE FROM checklist_items WHERE id = ? AND hyp_id = ?`, itemID, hypID)
	if err != nil {
		return fmt.Errorf("failed to delete checklist item: %w", err)
	}
	return requireRow(result)
}

func (t *sqliteTx) ReplaceChecklist(ctx context.Context, hypID string, items []*types.ChecklistItem) error {
	if _, err := t.conn.ExecContext(ctx, `DELETE FROM checklist_items WHERE hyp_id = ?`, hypID); err != nil {
		return fmt.Errorf("failed to clear checklist: %w", err)
	}
	for _, item := range items {
		if err := t.AddChecklistItem(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

func (t *sqliteTx) AddTask(ctx context.Context, task *types.Task) error {
	_, err := t.conn.ExecContext(ctx, `
		INSERT INTO tasks (id, hyp_id, label, owner, owner_email, due, type, status, severity, related_stage, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, task.ID, task.HypID, task.Label, task.Owner, task.OwnerEmail, fmtTimePtr(task.Due),
		task.Type, task.Status, task.Severity, task.RelatedStage, task.Notes,
		fmtTime(task.CreatedAt), fmtTime(task.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to add task: %w", err)
	}
	return nil
}

func (t *sqliteTx) UpdateTask(ctx context.Context, task *types.Task) error {
	result, err := t.conn.ExecContext(ctx, `
		UPDATE tasks SET label = ?, owner = ?, owner_email = ?, due = ?, type = ?, status = ?,
			severity = ?, related_stage = ?, notes = ?, updated_at = ?
		WHERE id = ? AND hyp_id = ?
	`, task.Label, task.Owner, task.OwnerEmail, fmtTimePtr(task.Due), task.Type, task.Status,
		task.Severity, task.RelatedStage, task.Notes, fmtTime(task.UpdatedAt), task.ID, task.HypID)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return requireRow(result)
}

func (t *sqliteTx) DeleteTask(ctx context.Context, hypID, taskID string) error {
	result, err := t.conn.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = ? AND hyp_id = ?`, taskID, hypID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return requireRow(result)
}

func (t *sqliteTx) AddApproval(ctx context.Context, approval *types.Approval) error {
	_, err := t.conn.ExecContext(ctx, `
		INSERT INTO approvals (id, hyp_id, approver_name, approver_email, approver_role, status, required, decided_at, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, approval.ID, approval.HypID, approval.ApproverName, approval.ApproverEmail,
		approval.ApproverRole, approval.Status, approval.Required,
		fmtTimePtr(approval.DecidedAt), approval.Notes, fmtTime(approval.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to add approval: %w", err)
	}
	return nil
}

func (t *sqliteTx) UpdateApproval(ctx context.Context, approval *types.Approval) error {
	result, err := t.conn.ExecContext(ctx, `
		UPDATE approvals SET approver_name = ?, approver_email = ?, approver_role = ?,
			status = ?, required = ?, decided_at = ?, notes = ?
		WHERE id = ? AND hyp_id = ?
	`, approval.ApproverName, approval.ApproverEmail, approval.ApproverRole,
		approval.Status, approval.Required, fmtTimePtr(approval.DecidedAt), approval.Notes,
		approval.ID, approval.HypID)
	if err != nil {
		return fmt.Errorf("failed to update approval: %w", err)
	}
	return requireRow(result)
}

func (t *sqliteTx) AddComment(ctx context.Context, comment *types.Comment) error {
	var parentID any
	if comment.ParentID != "" {
		parentID = comment.ParentID
	}
	_, err := t.conn.ExecContext(ctx, `
		INSERT INTO comments (id, hyp_id, parent_id, author, author_email, body, is_resolved, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, comment.ID, comment.HypID, parentID, comment.Author, comment.AuthorEmail,
		comment.Body, comment.IsResolved, fmtTime(comment.CreatedAt), fmtTime(comment.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to add comment: %w", err)
	}
	return nil
}

func (t *sqliteTx) UpdateComment(ctx context.Context, comment *types.Comment) error {
	result, err := t.conn.ExecContext(ctx, `
		UPDATE comments SET body = ?, is_resolved = ?, updated_at = ?
		WHERE id = ? AND hyp_id = ?
	`, comment.Body, comment.IsResolved, fmtTime(comment.UpdatedAt), comment.ID, comment.HypID)
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	return requireRow(result)
}

// DeleteComment removes a comment; replies go with it via the parent_id
// cascade in the schema.
func (t *sqliteTx) DeleteComment(ctx context.Context, hypID, commentID string) error {
	result, err := t.conn.ExecContext(ctx,
		`DELETE FROM comments WHERE id = ? AND hyp_id = ?`, commentID, hypID)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return requireRow(result)
}

func (t *sqliteTx) AddAttachment(ctx context.Context, att *types.Attachment) error {
	_, err := t.conn.ExecContext(ctx, `
		INSERT INTO attachments (id, hyp_id, name, file_type, file_size_bytes, url, version, uploaded_by, uploaded_by_email, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, att.ID, att.HypID, att.Name, att.FileType, nullableInt64(att.FileSizeBytes), att.URL,
		att.Version, att.UploadedBy, att.UploadedByEmail, fmtTime(att.UploadedAt))
	if err != nil {
		return fmt.Errorf("failed to add attachment: %w", err)
	}
	return nil
}

// RefreshSnapshots rebuilds the denormalized JSON columns on the parent row
// from the sub-entity tables. Runs after every mutation batch so readers that
// only touch the hypotheses table still see current checklist, attachment,
// and activity data.
func (t *sqliteTx) RefreshSnapshots(ctx context.Context, hypID string) error {
	checklist, err := getChecklist(ctx, t.conn, hypID)
	if err != nil {
		return err
	}
	attachments, err := getAttachments(ctx, t.conn, hypID)
	if err != nil {
		return err
	}
	events, err := getActivityEvents(ctx, t.conn, hypID)
	if err != nil {
		return err
	}

	checklistJSON, err := marshalJSON(emptyIfNil(checklist))
	if err != nil {
		return err
	}
	attachmentsJSON, err := marshalJSON(emptyIfNil(attachments))
	if err != nil {
		return err
	}
	digestJSON, err := marshalJSON(emptyIfNil(events))
	if err != nil {
		return err
	}

	result, err := t.conn.ExecContext(ctx, `
		UPDATE hypotheses SET gating_checklist = ?, attachments = ?, activity_digest = ?
		WHERE hyp_id = ?
	`, checklistJSON, attachmentsJSON, digestJSON, hypID)
	if err != nil {
		return fmt.Errorf("failed to refresh snapshots for %s: %w", hypID, err)
	}
	return requireRow(result)
}

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func nullableInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

// emptyIfNil keeps snapshot columns as [] rather than null when a hypothesis
// has no rows in a sub-entity table.
func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
