package hypothesis

import (
	"strings"
	"time"

	"github.com/k2tech/ailab/internal/storage"
	"github.com/k2tech/ailab/internal/types"
)

// Task derivation turns open checklist items into task-shaped rows and
// normalizes explicit task records. Status, severity, and type are inferred
// from due-date proximity and label substrings. The inference is presentation
// logic with no persisted backing and is kept bug-for-bug stable because the
// dashboard contract depends on it.

func deriveChecklistTask(rec *types.HypothesisRecord, item *types.ChecklistItem, now time.Time) *types.Task {
	due := now
	if item.DueAt != nil {
		due = *item.DueAt
	} else if !rec.UpdatedAt.IsZero() {
		due = rec.UpdatedAt
	}

	label := item.Label
	if label == "" {
		label = "Checklist item"
	}
	owner := item.Owner
	if owner == "" {
		owner = item.OwnerEmail
	}
	if owner == "" {
		owner = primaryOwner(rec)
	}

	lowerLabel := strings.ToLower(label)
	var status types.TaskStatus
	switch {
	case due.Before(now):
		status = types.TaskAtRisk
	case due.Sub(now) <= 48*time.Hour:
		status = types.TaskDueSoon
	case strings.Contains(lowerLabel, "approval"):
		status = types.TaskBlocked
	default:
		status = types.TaskDueSoon
	}

	var taskType types.TaskType
	switch {
	case strings.Contains(lowerLabel, "data"):
		taskType = types.TaskData
	case strings.Contains(lowerLabel, "approval"), strings.Contains(lowerLabel, "approve"):
		taskType = types.TaskApproval
	default:
		taskType = types.TaskGovernance
	}

	var severity types.TaskSeverity
	switch status {
	case types.TaskAtRisk:
		severity = types.SeverityCritical
	case types.TaskBlocked:
		severity = types.SeverityHigh
	default:
		severity = types.SeverityMedium
	}

	return &types.Task{
		ID:           rec.HypID + "-" + item.ID,
		HypID:        rec.HypID,
		Label:        label,
		Owner:        owner,
		Due:          &due,
		Type:         taskType,
		Status:       status,
		Severity:     severity,
		RelatedStage: rec.Stage,
	}
}

func normalizeStoredTask(rec *types.HypothesisRecord, task *types.Task, now time.Time) *types.Task {
	due := now
	if task.Due != nil {
		due = *task.Due
	} else if !rec.UpdatedAt.IsZero() {
		due = rec.UpdatedAt
	}

	taskType := task.Type
	if !taskType.IsValid() {
		taskType = types.TaskGovernance
	}
	status := task.Status
	if !status.IsValid() {
		status = types.TaskDueSoon
	}
	severity := task.Severity
	if !severity.IsValid() {
		severity = types.SeverityMedium
	}
	owner := task.Owner
	if owner == "" {
		owner = task.OwnerEmail
	}
	if owner == "" {
		owner = "Unassigned"
	}
	relatedStage := task.RelatedStage
	if relatedStage == "" {
		relatedStage = rec.Stage
	}

	return &types.Task{
		ID:           task.ID,
		HypID:        rec.HypID,
		Label:        task.Label,
		Owner:        owner,
		Due:          &due,
		Type:         taskType,
		Status:       status,
		Severity:     severity,
		RelatedStage: relatedStage,
		Notes:        task.Notes,
	}
}

// deriveHypothesisTasks builds the task view for one hypothesis: open
// checklist items re-shaped as tasks, followed by normalized stored tasks.
func deriveHypothesisTasks(hyp *storage.Hypothesis, now time.Time) []*types.Task {
	tasks := make([]*types.Task, 0, len(hyp.Checklist)+len(hyp.Tasks))
	for _, item := range hyp.Checklist {
		if item.Status == types.ChecklistComplete {
			continue
		}
		tasks = append(tasks, deriveChecklistTask(hyp.Record, item, now))
	}
	for _, task := range hyp.Tasks {
		tasks = append(tasks, normalizeStoredTask(hyp.Record, task, now))
	}
	return tasks
}
