package types

import "time"

// Sub-entities owned by a hypothesis. Each row carries the parent HypID and is
// cascade-deleted with it; the canonical data lives in these tables, never in
// the denormalized snapshots on the parent record.

// ChecklistStatus is the state of a gating checklist item.
type ChecklistStatus string

const (
	ChecklistPending    ChecklistStatus = "pending"
	ChecklistInProgress ChecklistStatus = "in-progress"
	ChecklistComplete   ChecklistStatus = "complete"
)

// ChecklistItem is a gating prerequisite that must be completed before the
// hypothesis may advance a stage.
type ChecklistItem struct {
	ID         string          `json:"id"`
	HypID      string          `json:"-"`
	Label      string          `json:"label"`
	Owner      string          `json:"owner,omitempty"`
	OwnerEmail string          `json:"ownerEmail,omitempty"`
	Status     ChecklistStatus `json:"status"`
	DueAt      *time.Time      `json:"dueAt,omitempty"`
	CreatedAt  time.Time       `json:"-"`
	UpdatedAt  time.Time       `json:"-"`
}

// Satisfied reports whether the item passes stage gating. "done" is accepted
// alongside "complete" for older records.
func (c *ChecklistItem) Satisfied() bool {
	return c.Status == ChecklistComplete || c.Status == "done"
}

// TaskType classifies an explicit follow-up task.
type TaskType string

const (
	TaskData       TaskType = "data"
	TaskGovernance TaskType = "governance"
	TaskApproval   TaskType = "approval"
)

// IsValid checks if the task type is recognized.
func (t TaskType) IsValid() bool {
	switch t {
	case TaskData, TaskGovernance, TaskApproval:
		return true
	}
	return false
}

// TaskStatus is the urgency state of a task.
type TaskStatus string

const (
	TaskAtRisk  TaskStatus = "at-risk"
	TaskDueSoon TaskStatus = "due-soon"
	TaskBlocked TaskStatus = "blocked"
)

// IsValid checks if the task status is recognized.
func (t TaskStatus) IsValid() bool {
	switch t {
	case TaskAtRisk, TaskDueSoon, TaskBlocked:
		return true
	}
	return false
}

// TaskSeverity ranks how urgently a task needs attention.
type TaskSeverity string

const (
	SeverityCritical TaskSeverity = "critical"
	SeverityHigh     TaskSeverity = "high"
	SeverityMedium   TaskSeverity = "medium"
)

// IsValid checks if the severity is recognized.
func (t TaskSeverity) IsValid() bool {
	switch t {
	case SeverityCritical, SeverityHigh, SeverityMedium:
		return true
	}
	return false
}

// Task is an explicit follow-up item attached to a hypothesis.
type Task struct {
	ID           string       `json:"id"`
	HypID        string       `json:"-"`
	Label        string       `json:"label"`
	Owner        string       `json:"owner,omitempty"`
	OwnerEmail   string       `json:"ownerEmail,omitempty"`
	Due          *time.Time   `json:"due,omitempty"`
	Type         TaskType     `json:"type"`
	Status       TaskStatus   `json:"status"`
	Severity     TaskSeverity `json:"severity"`
	RelatedStage Stage        `json:"relatedStage,omitempty"`
	Notes        string       `json:"notes,omitempty"`
	CreatedAt    time.Time    `json:"-"`
	UpdatedAt    time.Time    `json:"-"`
}

// Comment is a threaded discussion entry. Comments form a tree via ParentID;
// Replies is populated only on read when assembling the thread view.
type Comment struct {
	ID          string     `json:"id"`
	HypID       string     `json:"-"`
	ParentID    string     `json:"-"`
	Author      string     `json:"author"`
	AuthorEmail string     `json:"authorEmail,omitempty"`
	Body        string     `json:"body"`
	IsResolved  bool       `json:"isResolved"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Replies     []*Comment `json:"replies"`
}

// Attachment records file metadata for an artifact uploaded against a
// hypothesis. File bytes live elsewhere; only the reference is tracked here.
type Attachment struct {
	ID            string    `json:"id"`
	HypID         string    `json:"-"`
	Name          string    `json:"name"`
	FileType      string    `json:"fileType,omitempty"`
	FileSizeBytes *int64    `json:"fileSizeBytes,omitempty"`
	URL           string    `json:"url"`
	Version       int       `json:"version"`
	UploadedBy    string    `json:"uploadedBy,omitempty"`
	UploadedByEmail string  `json:"uploadedByEmail,omitempty"`
	UploadedAt    time.Time `json:"uploadedAt"`
}

// ApprovalStatus is the decision state of an approval record.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Approval tracks a sign-off required (or optionally collected) before a
// hypothesis may advance.
type Approval struct {
	ID            string         `json:"id"`
	HypID         string         `json:"-"`
	ApproverName  string         `json:"approverName"`
	ApproverEmail string         `json:"approverEmail,omitempty"`
	ApproverRole  string         `json:"approverRole,omitempty"`
	Status        ApprovalStatus `json:"status"`
	Required      bool           `json:"required"`
	DecidedAt     *time.Time     `json:"decidedAt,omitempty"`
	Notes         string         `json:"notes,omitempty"`
	CreatedAt     time.Time      `json:"-"`
}

// StageHistoryEntry records a single stage transition. FromStage is empty for
// the initial submission entry.
type StageHistoryEntry struct {
	ID        int64     `json:"-"`
	HypID     string    `json:"-"`
	FromStage Stage     `json:"fromStage,omitempty"`
	ToStage   Stage     `json:"stage"`
	ChangedAt time.Time `json:"changedAt"`
	ChangedBy string    `json:"changedBy"`
	Notes     string    `json:"notes,omitempty"`
}

// ActivityType classifies an entry in the activity digest.
type ActivityType string

const (
	ActivityCreated         ActivityType = "CREATED"
	ActivityUpdated         ActivityType = "UPDATED"
	ActivityStageChanged    ActivityType = "STAGE_CHANGED"
	ActivityCommented       ActivityType = "COMMENTED"
	ActivityApproved        ActivityType = "APPROVED"
	ActivityRejected        ActivityType = "REJECTED"
	ActivityAttachmentAdded ActivityType = "ATTACHMENT_ADDED"
)

// Normalize coerces unknown event types to UPDATED, matching how the digest
// renders events recorded by older service versions.
func (a ActivityType) Normalize() ActivityType {
	switch a {
	case ActivityCreated, ActivityUpdated, ActivityStageChanged, ActivityCommented,
		ActivityApproved, ActivityRejected, ActivityAttachmentAdded:
		return a
	}
	return ActivityUpdated
}

// ImpactSentiment is the positive/neutral/negative coloring of an event.
type ImpactSentiment string

const (
	ImpactPositive ImpactSentiment = "positive"
	ImpactNeutral  ImpactSentiment = "neutral"
	ImpactNegative ImpactSentiment = "negative"
)

// Normalize coerces unknown sentiment values to neutral.
func (i ImpactSentiment) Normalize() ImpactSentiment {
	switch i {
	case ImpactPositive, ImpactNeutral, ImpactNegative:
		return i
	}
	return ImpactNeutral
}

// ActivityEvent is an append-only audit record for a hypothesis.
type ActivityEvent struct {
	ID         string          `json:"id"`
	HypID      string          `json:"-"`
	Type       ActivityType    `json:"type"`
	Title      string          `json:"title"`
	Actor      string          `json:"actor"`
	ActorEmail string          `json:"actorEmail,omitempty"`
	Detail     string          `json:"detail,omitempty"`
	Stage      Stage           `json:"stage,omitempty"`
	Impact     ImpactSentiment `json:"impact"`
	OccurredAt time.Time       `json:"occurredAt"`
}
