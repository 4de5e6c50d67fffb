package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/k2tech/ailab/internal/types"
)

// Read helpers for the owned sub-entity tables. All return rows in their
// canonical order (insertion order for checklists, due order for tasks,
// reverse-chronological for activity).

func getStageHistory(ctx context.Context, q querier, hypID string) ([]*types.StageHistoryEntry, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, hyp_id, from_stage, to_stage, changed_at, changed_by, notes
		FROM stage_history WHERE hyp_id = ? ORDER BY changed_at ASC, id ASC
	`, hypID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stage history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []*types.StageHistoryEntry
	for rows.Next() {
		var (
			entry     types.StageHistoryEntry
			fromStage sql.NullString
			changedAt string
		)
		if err := rows.Scan(&entry.ID, &entry.HypID, &fromStage, &entry.ToStage, &changedAt, &entry.ChangedBy, &entry.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan stage history entry: %w", err)
		}
		entry.FromStage = types.Stage(fromStage.String)
		if entry.ChangedAt, err = parseTime(changedAt); err != nil {
			return nil, fmt.Errorf("failed to parse changed_at: %w", err)
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

func getChecklist(ctx context.Context, q querier, hypID string) ([]*types.ChecklistItem, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, hyp_id, label, owner, owner_email, status, due_at, created_at, updated_at
		FROM checklist_items WHERE hyp_id = ? ORDER BY created_at ASC, id ASC
	`, hypID)
	if err != nil {
		return nil, fmt.Errorf("failed to query checklist items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []*types.ChecklistItem
	for rows.Next() {
		var (
			item                 types.ChecklistItem
			dueAt                sql.NullString
			createdAt, updatedAt string
		)
		if err := rows.Scan(&item.ID, &item.HypID, &item.Label, &item.Owner, &item.OwnerEmail, &item.Status, &dueAt, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan checklist item: %w", err)
		}
		if item.DueAt, err = parseTimePtr(dueAt); err != nil {
			return nil, fmt.Errorf("failed to parse due_at: %w", err)
		}
		if item.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		if item.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

func getTasks(ctx context.Context, q querier, hypID string) ([]*types.Task, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, hyp_id, label, owner, owner_email, due, type, status, severity, related_stage, notes, created_at, updated_at
		FROM tasks WHERE hyp_id = ? ORDER BY due ASC, id ASC
	`, hypID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*types.Task
	for rows.Next() {
		var (
			task                 types.Task
			due                  sql.NullString
			createdAt, updatedAt string
		)
		if err := rows.Scan(&task.ID, &task.HypID, &task.Label, &task.Owner, &task.OwnerEmail, &due,
			&task.Type, &task.Status, &task.Severity, &task.RelatedStage, &task.Notes, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		if task.Due, err = parseTimePtr(due); err != nil {
			return nil, fmt.Errorf("failed to parse due: %w", err)
		}
		if task.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		if task.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}
		tasks = append(tasks, &task)
	}
	return tasks, rows.Err()
}

func getComments(ctx context.Context, q querier, hypID string) ([]*types.Comment, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, hyp_id, parent_id, author, author_email, body, is_resolved, created_at, updated_at
		FROM comments WHERE hyp_id = ? ORDER BY created_at ASC, id ASC
	`, hypID)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var comments []*types.Comment
	for rows.Next() {
		var (
			comment              types.Comment
			parentID             sql.NullString
			createdAt, updatedAt string
		)
		if err := rows.Scan(&comment.ID, &comment.HypID, &parentID, &comment.Author, &comment.AuthorEmail,
			&comment.Body, &comment.IsResolved, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comment.ParentID = parentID.String
		if comment.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		if comment.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}
		comments = append(comments, &comment)
	}
	return comments, rows.Err()
}

func getAttachments(ctx context.Context, q querier, hypID string) ([]*types.Attachment, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, hyp_id, name, file_type, file_size_bytes, url, version, uploaded_by, uploaded_by_email, uploaded_at
		FROM attachments WHERE hyp_id = ? ORDER BY uploaded_at ASC, id ASC
	`, hypID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attachments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var attachments []*types.Attachment
	for rows.Next() {
		var (
			att        types.Attachment
			size       sql.NullInt64
			uploadedAt string
		)
		if err := rows.Scan(&att.ID, &att.HypID, &att.Name, &att.FileType, &size, &att.URL,
			&att.Version, &att.UploadedBy, &att.UploadedByEmail, &uploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		if size.Valid {
			att.FileSizeBytes = &size.Int64
		}
		if att.UploadedAt, err = parseTime(uploadedAt); err != nil {
			return nil, fmt.Errorf("failed to parse uploaded_at: %w", err)
		}
		attachments = append(attachments, &att)
	}
	return attachments, rows.Err()
}

func getApprovals(ctx context.Context, q querier, hypID string) ([]*types.Approval, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, hyp_id, approver_name, approver_email, approver_role, status, required, decided_at, notes, created_at
		FROM approvals WHERE hyp_id = ? ORDER BY created_at ASC, id ASC
	`, hypID)
	if err != nil {
		return nil, fmt.Errorf("failed to query approvals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var approvals []*types.Approval
	for rows.Next() {
		var (
			approval  types.Approval
			decidedAt sql.NullString
			createdAt string
		)
		if err := rows.Scan(&approval.ID, &approval.HypID, &approval.ApproverName, &approval.ApproverEmail,
			&approval.ApproverRole, &approval.Status, &approval.Required, &decidedAt, &approval.Notes, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan approval: %w", err)
		}
		if approval.DecidedAt, err = parseTimePtr(decidedAt); err != nil {
			return nil, fmt.Errorf("failed to parse decided_at: %w", err)
		}
		if approval.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		approvals = append(approvals, &approval)
	}
	return approvals, rows.Err()
}

func getActivityEvents(ctx context.Context, q querier, hypID string) ([]*types.ActivityEvent, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, hyp_id, event_type, title, actor, actor_email, detail, stage, impact, occurred_at
		FROM activity_events WHERE hyp_id = ? ORDER BY occurred_at DESC, id DESC
	`, hypID)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []*types.ActivityEvent
	for rows.Next() {
		var (
			event      types.ActivityEvent
			occurredAt string
		)
		if err := rows.Scan(&event.ID, &event.HypID, &event.Type, &event.Title, &event.Actor,
			&event.ActorEmail, &event.Detail, &event.Stage, &event.Impact, &occurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity event: %w", err)
		}
		if event.OccurredAt, err = parseTime(occurredAt); err != nil {
			return nil, fmt.Errorf("failed to parse occurred_at: %w", err)
		}
		events = append(events, &event)
	}
	return events, rows.Err()
}
