package hypothesis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/k2tech/ailab/internal/storage"
	"github.com/k2tech/ailab/internal/types"
)

// Sub-resource mutations. Every one bumps the parent's updated_at, refreshes
// the denormalized snapshots, and commits atomically with its activity event.

// CommentRequest creates a comment, optionally as a reply.
type CommentRequest struct {
	ParentID    string `json:"parentId,omitempty"`
	Author      string `json:"author"`
	AuthorEmail string `json:"authorEmail,omitempty"`
	Body        string `json:"body"`
}

// CommentUpdateRequest is a partial comment edit.
type CommentUpdateRequest struct {
	Body       *string `json:"body,omitempty"`
	IsResolved *bool   `json:"isResolved,omitempty"`
}

// AttachmentRequest records file metadata for an uploaded artifact.
type AttachmentRequest struct {
	Name            string `json:"name"`
	FileType        string `json:"fileType,omitempty"`
	FileSizeBytes   *int64 `json:"fileSizeBytes,omitempty"`
	URL             string `json:"url"`
	Version         int    `json:"version,omitempty"`
	UploadedBy      string `json:"uploadedBy,omitempty"`
	UploadedByEmail string `json:"uploadedByEmail,omitempty"`
}

// ChecklistItemUpdateRequest is a partial checklist item edit.
type ChecklistItemUpdateRequest struct {
	Label      *string                `json:"label,omitempty"`
	Owner      *string                `json:"owner,omitempty"`
	OwnerEmail *string                `json:"ownerEmail,omitempty"`
	Status     *types.ChecklistStatus `json:"status,omitempty"`
	DueAt      *time.Time             `json:"dueAt,omitempty"`
}

// TaskRequest creates an explicit task record.
type TaskRequest struct {
	Label        string             `json:"label"`
	Owner        string             `json:"owner,omitempty"`
	OwnerEmail   string             `json:"ownerEmail,omitempty"`
	Due          *time.Time         `json:"due,omitempty"`
	Type         types.TaskType     `json:"type,omitempty"`
	Status       types.TaskStatus   `json:"status,omitempty"`
	Severity     types.TaskSeverity `json:"severity,omitempty"`
	RelatedStage types.Stage        `json:"relatedStage,omitempty"`
	Notes        string             `json:"notes,omitempty"`
}

// TaskUpdateRequest is a partial task edit.
type TaskUpdateRequest struct {
	Status   *types.TaskStatus   `json:"status,omitempty"`
	Severity *types.TaskSeverity `json:"severity,omitempty"`
	Due      *time.Time          `json:"due,omitempty"`
	Owner    *string             `json:"owner,omitempty"`
}

// ApprovalRequest registers an approver on a hypothesis.
type ApprovalRequest struct {
	ApproverName  string `json:"approverName"`
	ApproverEmail string `json:"approverEmail,omitempty"`
	ApproverRole  string `json:"approverRole,omitempty"`
	Required      bool   `json:"required"`
	Notes         string `json:"notes,omitempty"`
}

// ApprovalUpdateRequest records an approval decision.
type ApprovalUpdateRequest struct {
	Status *types.ApprovalStatus `json:"status,omitempty"`
	Notes  *string               `json:"notes,omitempty"`
}

// AddComment appends a comment, threading it under ParentID when given, and
// logs a COMMENTED activity event carrying the first 160 chars of the body.
func (s *Service) AddComment(ctx context.Context, hypID string, req *CommentRequest) (*types.Comment, error) {
	if req.Body == "" {
		return nil, validationErrorf("comment body is required")
	}
	now := s.now()
	comment := &types.Comment{
		ID:          uuid.NewString(),
		HypID:       hypID,
		ParentID:    req.ParentID,
		Author:      req.Author,
		AuthorEmail: req.AuthorEmail,
		Body:        req.Body,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.mutateActive(ctx, hypID, now, func(tx storage.Transaction, hyp *storage.Hypothesis) error {
		if req.ParentID != "" && findComment(hyp.Comments, req.ParentID) == nil {
			return &NotFoundError{Resource: "comment", ID: req.ParentID}
		}
		if err := tx.AddComment(ctx, comment); err != nil {
			return err
		}
		return tx.AppendActivity(ctx, &types.ActivityEvent{
			ID:         uuid.NewString(),
			HypID:      hypID,
			Type:       types.ActivityCommented,
			Title:      "New comment added",
			Actor:      req.Author,
			ActorEmail: req.AuthorEmail,
			Detail:     truncate(req.Body, 160),
			Stage:      hyp.Record.Stage,
			OccurredAt: now,
			Impact:     types.ImpactNeutral,
		})
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// UpdateComment edits a comment body or resolution flag.
func (s *Service) UpdateComment(ctx context.Context, hypID, commentID string, req *CommentUpdateRequest) (*types.Comment, error) {
	now := s.now()
	var updated *types.Comment

	err := s.mutateActive(ctx, hypID, now, func(tx storage.Transaction, hyp *storage.Hypothesis) error {
		comment := findComment(hyp.Comments, commentID)
		if comment == nil {
			return &NotFoundError{Resource: "comment", ID: commentID}
		}
		if req.Body != nil {
			comment.Body = *req.Body
		}
		if req.IsResolved != nil {
			comment.IsResolved = *req.IsResolved
		}
		comment.UpdatedAt = now
		if err := tx.UpdateComment(ctx, comment); err != nil {
			return err
		}
		updated = comment
		return tx.AppendActivity(ctx, &types.ActivityEvent{
			ID:         uuid.NewString(),
			HypID:      hypID,
			Type:       types.ActivityUpdated,
			Title:      "Comment updated",
			Actor:      comment.Author,
			Detail:     truncate(comment.Body, 160),
			Stage:      hyp.Record.Stage,
			OccurredAt: now,
			Impact:     types.ImpactNeutral,
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteComment removes a comment and its reply subtree.
func (s *Service) DeleteComment(ctx context.Context, hypID, commentID string) error {
	now := s.now()
	return s.mutateActive(ctx, hypID, now, func(tx storage.Transaction, hyp *storage.Hypothesis) error {
		if findComment(hyp.Comments, commentID) == nil {
			return &NotFoundError{Resource: "comment", ID: commentID}
		}
		if err := tx.DeleteComment(ctx, hypID, commentID); err != nil {
			return err
		}
		return tx.AppendActivity(ctx, &types.ActivityEvent{
			ID:         uuid.NewString(),
			HypID:      hypID,
			Type:       types.ActivityUpdated,
			Title:      "Comment removed",
			Actor:      "System",
			Stage:      hyp.Record.Stage,
			OccurredAt: now,
			Impact:     types.ImpactNeutral,
		})
	})
}

// AddAttachment records uploaded file metadata and logs an ATTACHMENT_ADDED
// event.
func (s *Service) AddAttachment(ctx context.Context, hypID string, req *AttachmentRequest) (*types.Attachment, error) {
	if req.Name == "" || req.URL == "" {
		return nil, validationErrorf("attachment name and url are required")
	}
	now := s.now()
	version := req.Version
	if version == 0 {
		version = 1
	}
	attachment := &types.Attachment{
		ID:              uuid.NewString(),
		HypID:           hypID,
		Name:            req.Name,
		FileType:        req.FileType,
		FileSizeBytes:   req.FileSizeBytes,
		URL:             req.URL,
		Version:         version,
		UploadedBy:      req.UploadedBy,
		UploadedByEmail: req.UploadedByEmail,
		UploadedAt:      now,
	}

	err := s.mutateActive(ctx, hypID, now, func(tx storage.Transaction, hyp *storage.Hypothesis) error {
		if err := tx.AddAttachment(ctx, attachment); err != nil {
			return err
		}
		actor := req.UploadedBy
		if actor == "" {
			actor = "System"
		}
		return tx.AppendActivity(ctx, &types.ActivityEvent{
			ID:         uuid.NewString(),
			HypID:      hypID,
			Type:       types.ActivityAttachmentAdded,
			Title:      fmt.Sprintf("Attachment added: %s", req.Name),
			Actor:      actor,
			ActorEmail: req.UploadedByEmail,
			Stage:      hyp.Record.Stage,
			OccurredAt: now,
			Impact:     types.ImpactNeutral,
		})
	})
	if err != nil {
		return nil, err
	}
	return attachment, nil
}

// AddChecklistItem appends a gating checklist item.
func (s *Service) AddChecklistItem(ctx context.Context, hypID string, input ChecklistItemInput) (*Detail, error) {
	now := s.now()
	item := checklistItemFromInput(hypID, input, now)
	err := s.mutateActive(ctx, hypID, now, func(tx storage.Transaction, hyp *storage.Hypothesis) error {
		return tx.AddChecklistItem(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, hypID)
}

// UpdateChecklistItem edits a gating checklist item.
func (s *Service) UpdateChecklistItem(ctx context.Context, hypID, itemID string, req *ChecklistItemUpdateRequest) (*Detail, error) {
	now := s.now()
	err := s.mutateActive(ctx, hypID, now, func(tx storage.Transaction, hyp *storage.Hypothesis) error {
		var item *types.ChecklistItem
		for _, candidate := range hyp.Checklist {
			if candidate.ID == itemID {
				item = candidate
				break
			}
		}
		if item == nil {
			return &NotFoundError{Resource: "checklist item", ID: itemID}
		}
		if req.Label != nil {
			item.Label = *req.Label
		}
		if req.Owner != nil {
			item.Owner = *req.Owner
		}
		if req.OwnerEmail != nil {
			item.OwnerEmail = *req.OwnerEmail
		}
		if req.Status != nil {
			item.Status = *req.Status
		}
		if req.DueAt != nil {
			item.DueAt = req.DueAt
		}
		item.UpdatedAt = now
		return tx.UpdateChecklistItem(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, hypID)
}

// RemoveChecklistItem deletes a gating checklist item.
func (s *Service) RemoveChecklistItem(ctx context.Context, hypID, itemID string) (*Detail, error) {
	now := s.now()
	err := s.mutateActive(ctx, hypID, now, func(tx storage.Transaction, hyp *storage.Hypothesis) error {
		return translateNotFound(tx.DeleteChecklistItem(ctx, hypID, itemID), "checklist item", itemID)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, hypID)
}

// AddTask records an explicit task on a hypothesis.
func (s *Service) AddTask(ctx context.Context, hypID string, req *TaskRequest) (*Detail, error) {
	if req.Label == "" {
		return nil, validationErrorf("task label is required")
	}
	now := s.now()
	task := &types.Task{
		ID:           uuid.NewString(),
		HypID:        hypID,
		Label:        req.Label,
		Owner:        req.Owner,
		OwnerEmail:   req.OwnerEmail,
		Due:          req.Due,
		Type:         req.Type,
		Status:       req.Status,
		Severity:     req.Severity,
		RelatedStage: req.RelatedStage,
		Notes:        req.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if task.Type == "" {
		task.Type = types.TaskGovernance
	}
	if task.Status == "" {
		task.Status = types.TaskDueSoon
	}
	if task.Severity == "" {
		task.Severity = types.SeverityMedium
	}

	err := s.mutateActive(ctx, hypID, now, func(tx storage.Transaction, hyp *storage.Hypothesis) error {
		return tx.AddTask(ctx, task)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, hypID)
}

// UpdateTask edits an explicit task record.
func (s *Service) UpdateTask(ctx context.Context, hypID, taskID string, req *TaskUpdateRequest) (*Detail, error) {
	now := s.now()
	err := s.mutateActive(ctx, hypID, now, func(tx storage.Transaction, hyp *storage.Hypothesis) error {
		var task *types.Task
		for _, candidate := range hyp.Tasks {
			if candidate.ID == taskID {
				task = candidate
				break
			}
		}
		if task == nil {
			return &NotFoundError{Resource: "task", ID: taskID}
		}
		if req.Status != nil {
			task.Status = *req.Status
		}
		if req.Severity != nil {
			task.Severity = *req.Severity
		}
		if req.Due != nil {
			task.Due = req.Due
		}
		if req.Owner != nil {
			task.Owner = *req.Owner
		}
		task.UpdatedAt = now
		return tx.UpdateTask(ctx, task)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, hypID)
}

// AddApproval registers an approver, defaulting to pending.
func (s *Service) AddApproval(ctx context.Context, hypID string, req *ApprovalRequest) (*Detail, error) {
	if req.ApproverName == "" {
		return nil, validationErrorf("approver name is required")
	}
	now := s.now()
	approval := &types.Approval{
		ID:            uuid.NewString(),
		HypID:         hypID,
		ApproverName:  req.ApproverName,
		ApproverEmail: req.ApproverEmail,
		ApproverRole:  req.ApproverRole,
		Status:        types.ApprovalPending,
		Required:      req.Required,
		Notes:         req.Notes,
		CreatedAt:     now,
	}
	err := s.mutateActive(ctx, hypID, now, func(tx storage.Transaction, hyp *storage.Hypothesis) error {
		return tx.AddApproval(ctx, approval)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, hypID)
}

// UpdateApproval records an approval decision. Moving off pending stamps
// decided_at; moving back to pending clears it.
func (s *Service) UpdateApproval(ctx context.Context, hypID, approvalID string, req *ApprovalUpdateRequest) (*Detail, error) {
	now := s.now()
	err := s.mutateActive(ctx, hypID, now, func(tx storage.Transaction, hyp *storage.Hypothesis) error {
		var approval *types.Approval
		for _, candidate := range hyp.Approvals {
			if candidate.ID == approvalID {
				approval = candidate
				break
			}
		}
		if approval == nil {
			return &NotFoundError{Resource: "approval", ID: approvalID}
		}
		if req.Status != nil {
			approval.Status = *req.Status
			if *req.Status != types.ApprovalPending {
				approval.DecidedAt = &now
			} else {
				approval.DecidedAt = nil
			}
		}
		if req.Notes != nil {
			approval.Notes = *req.Notes
		}
		return tx.UpdateApproval(ctx, approval)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, hypID)
}

// mutateActive loads the active (non-archived) hypothesis, runs fn, bumps
// updated_at, and refreshes the denormalized snapshots, all in one
// transaction.
func (s *Service) mutateActive(ctx context.Context, hypID string, now time.Time, fn func(tx storage.Transaction, hyp *storage.Hypothesis) error) error {
	return s.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		hyp, err := tx.GetHypothesis(ctx, hypID)
		if err != nil {
			return translateNotFound(err, "hypothesis", hypID)
		}
		if hyp.Record.IsArchived() {
			return &NotFoundError{Resource: "hypothesis", ID: hypID}
		}
		if err := fn(tx, hyp); err != nil {
			return err
		}
		hyp.Record.UpdatedAt = now
		if err := tx.UpdateHypothesis(ctx, hyp.Record); err != nil {
			return err
		}
		return tx.RefreshSnapshots(ctx, hypID)
	})
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
