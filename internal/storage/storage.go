// Package storage provides shared types for hypothesis and session storage.
//
// The concrete implementation lives in the sqlite sub-package. This package
// holds the interface and value types referenced by both the implementation
// and its consumers (internal/hypothesis, internal/onboarding, cmd/ailab).
package storage

import (
	"context"
	"errors"

	"github.com/k2tech/ailab/internal/types"
)

// ErrNotFound is returned when a requested entity does not exist in the database.
var ErrNotFound = errors.New("not found")

// Hypothesis bundles a record with its owned sub-entities, loaded eagerly.
// Comments are returned flat (parent linkage via ParentID); callers assemble
// the reply tree.
type Hypothesis struct {
	Record       *types.HypothesisRecord
	StageHistory []*types.StageHistoryEntry
	Checklist    []*types.ChecklistItem
	Tasks        []*types.Task
	Comments     []*types.Comment
	Attachments  []*types.Attachment
	Approvals    []*types.Approval
	Events       []*types.ActivityEvent
}

// Storage is the interface satisfied by *sqlite.Store.
// Consumers depend on this interface rather than on the concrete type so that
// alternative implementations (mocks, proxies, etc.) can be substituted.
type Storage interface {
	// Hypothesis reads
	GetHypothesis(ctx context.Context, hypID string) (*Hypothesis, error)
	ListHypotheses(ctx context.Context, includeArchived bool) ([]*Hypothesis, error)

	// Onboarding sessions
	CreateSession(ctx context.Context, session *types.OnboardingSession) error
	GetSession(ctx context.Context, id string) (*types.OnboardingSession, error)
	UpdateSession(ctx context.Context, session *types.OnboardingSession) error
	AppendTranscript(ctx context.Context, entry *types.TranscriptEntry) error
	GetTranscript(ctx context.Context, sessionID string) ([]*types.TranscriptEntry, error)
	AppendSessionEvent(ctx context.Context, event *types.SessionEvent) error
	GetSessionEvents(ctx context.Context, sessionID string) ([]*types.SessionEvent, error)

	// Configuration
	SetConfig(ctx context.Context, key, value string) error
	GetConfig(ctx context.Context, key string) (string, error)

	// Transactions
	RunInTransaction(ctx context.Context, fn func(tx Transaction) error) error

	// Lifecycle
	Close() error
}

// Transaction exposes the mutation primitives that execute within a single
// database transaction. Mutating service operations compose these so that the
// record, its sub-entities, the denormalized snapshots, and the activity log
// either all commit or all roll back.
//
// If the callback passed to RunInTransaction returns an error or panics, the
// transaction is rolled back; on successful return it is committed.
type Transaction interface {
	// NextHypID allocates the next sequential hypothesis identifier
	// (HYP-NNN). Allocation happens under the transaction's write lock, so
	// concurrent creators serialize rather than racing to the same id.
	NextHypID(ctx context.Context) (string, error)

	InsertHypothesis(ctx context.Context, record *types.HypothesisRecord) error
	UpdateHypothesis(ctx context.Context, record *types.HypothesisRecord) error

	// GetHypothesis supports read-your-writes within the transaction.
	GetHypothesis(ctx context.Context, hypID string) (*Hypothesis, error)

	AddStageHistory(ctx context.Context, entry *types.StageHistoryEntry) error
	AppendActivity(ctx context.Context, event *types.ActivityEvent) error

	AddChecklistItem(ctx context.Context, item *types.ChecklistItem) error
	UpdateChecklistItem(ctx context.Context, item *types.ChecklistItem) error
	DeleteChecklistItem(ctx context.Context, hypID, itemID string) error
	ReplaceChecklist(ctx context.Context, hypID string, items []*types.ChecklistItem) error

	AddTask(ctx context.Context, task *types.Task) error
	UpdateTask(ctx context.Context, task *types.Task) error
	DeleteTask(ctx context.Context, hypID, taskID string) error

	AddApproval(ctx context.Context, approval *types.Approval) error
	UpdateApproval(ctx context.Context, approval *types.Approval) error

	AddComment(ctx context.Context, comment *types.Comment) error
	UpdateComment(ctx context.Context, comment *types.Comment) error
	// DeleteComment removes a comment and its reply subtree (cascade).
	DeleteComment(ctx context.Context, hypID, commentID string) error

	AddAttachment(ctx context.Context, attachment *types.Attachment) error

	// RefreshSnapshots regenerates the denormalized gating_checklist,
	// attachments, and activity_digest columns from the sub-entity tables.
	// The snapshots are a pure projection; this is the only writer.
	RefreshSnapshots(ctx context.Context, hypID string) error
}
