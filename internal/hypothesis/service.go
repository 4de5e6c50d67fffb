// Package hypothesis implements the lifecycle engine for portfolio
// hypotheses: creation, partial updates with stage gating, archival, and the
// derived dashboard, task, and activity views.
package hypothesis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/k2tech/ailab/internal/debug"
	"github.com/k2tech/ailab/internal/storage"
	"github.com/k2tech/ailab/internal/types"
)

// Service owns the hypothesis domain logic. All mutating operations run in a
// single storage transaction: record, sub-entities, denormalized snapshots,
// and activity log commit together or not at all.
type Service struct {
	store storage.Storage
	now   func() time.Time
}

// NewService creates a hypothesis service backed by the given store.
func NewService(store storage.Storage) *Service {
	return &Service{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// ChecklistItemInput is the caller-supplied shape for a gating checklist item.
type ChecklistItemInput struct {
	Label      string                `json:"label"`
	Owner      string                `json:"owner,omitempty"`
	OwnerEmail string                `json:"ownerEmail,omitempty"`
	Status     types.ChecklistStatus `json:"status,omitempty"`
	DueAt      *time.Time            `json:"dueAt,omitempty"`
}

// CreateRequest carries the fields accepted at hypothesis creation.
type CreateRequest struct {
	LabID            string                   `json:"labId"`
	Title            string                   `json:"title"`
	Statement        string                   `json:"statement"`
	Description      string                   `json:"description,omitempty"`
	AIType           string                   `json:"aiType,omitempty"`
	AISubtype        string                   `json:"aiSubtype,omitempty"`
	BusinessCategory string                   `json:"businessCategory,omitempty"`
	Priority         types.Priority           `json:"priority,omitempty"`
	InitialStage     types.Stage              `json:"initialStage,omitempty"`
	StageHealth      types.StageHealth        `json:"stageHealth,omitempty"`
	ImpactScore      float64                  `json:"impactScore"`
	FeasibilityScore float64                  `json:"feasibilityScore"`
	ConfidenceScore  float64                  `json:"confidenceScore"`
	ComplexityScore  *float64                 `json:"complexityScore,omitempty"`
	RiskClass        types.RiskClass          `json:"riskClass,omitempty"`
	DataRequirements types.DataRequirements   `json:"dataRequirements,omitempty"`
	ROIEstimate      *types.ValueEstimate     `json:"roiEstimate,omitempty"`
	TimeEstimate     *types.TimeEstimate      `json:"timeEstimate,omitempty"`
	SuccessMetrics   []types.SuccessMetric    `json:"successMetrics,omitempty"`
	Dependencies     []string                 `json:"dependencies,omitempty"`
	LinkedExps       []types.LinkedExperiment `json:"linkedExperiments,omitempty"`
	Tags             []string                 `json:"tags,omitempty"`
	Links            []types.Link             `json:"links,omitempty"`
	Notes            string                   `json:"notes,omitempty"`
	Owners           []types.Actor            `json:"owners"`
	Sponsors         []types.Actor            `json:"sponsors,omitempty"`
	Observers        []types.Actor            `json:"observers,omitempty"`
	GatingChecklist  []ChecklistItemInput     `json:"gatingChecklist,omitempty"`
}

// UpdateRequest carries a partial update. Nil fields mean "no change".
type UpdateRequest struct {
	UpdatedBy        string                    `json:"updatedBy,omitempty"`
	Title            *string                   `json:"title,omitempty"`
	Statement        *string                   `json:"statement,omitempty"`
	Description      *string                   `json:"description,omitempty"`
	Priority         *types.Priority           `json:"priority,omitempty"`
	Stage            *types.Stage              `json:"stage,omitempty"`
	StageHealth      *types.StageHealth        `json:"stageHealth,omitempty"`
	ImpactScore      *float64                  `json:"impactScore,omitempty"`
	FeasibilityScore *float64                  `json:"feasibilityScore,omitempty"`
	ConfidenceScore  *float64                  `json:"confidenceScore,omitempty"`
	ComplexityScore  *float64                  `json:"complexityScore,omitempty"`
	RiskClass        *types.RiskClass          `json:"riskClass,omitempty"`
	GovernanceState  *types.GovernanceState    `json:"governanceState,omitempty"`
	Notes            *string                   `json:"notes,omitempty"`
	Owners           *[]types.Actor            `json:"owners,omitempty"`
	Sponsors         *[]types.Actor            `json:"sponsors,omitempty"`
	Observers        *[]types.Actor            `json:"observers,omitempty"`
	Tags             *[]string                 `json:"tags,omitempty"`
	Dependencies     *[]string                 `json:"dependencies,omitempty"`
	Links            *[]types.Link             `json:"links,omitempty"`
	LinkedExps       *[]types.LinkedExperiment `json:"linkedExperiments,omitempty"`
	SuccessMetrics   *[]types.SuccessMetric    `json:"successMetrics,omitempty"`
	DataRequirements *types.DataRequirements   `json:"dataRequirements,omitempty"`
	ROIEstimate      *types.ValueEstimate      `json:"roiEstimate,omitempty"`
	TimeEstimate     *types.TimeEstimate       `json:"timeEstimate,omitempty"`
	GatingChecklist  *[]ChecklistItemInput     `json:"gatingChecklist,omitempty"`
}

// Create validates the payload, allocates the next HYP-NNN id, and persists
// the record with its initial stage history entry and CREATED activity event.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Detail, error) {
	if len(req.Owners) == 0 {
		return nil, validationErrorf("at least one owner is required")
	}

	now := s.now()
	stage := req.InitialStage
	if stage == "" {
		stage = types.StageIdeation
	}
	if !stage.IsValid() || stage == types.StageArchived {
		return nil, validationErrorf("invalid initial stage: %s", stage)
	}
	ownerName := req.Owners[0].Name

	rec := &types.HypothesisRecord{
		LabID:            req.LabID,
		Title:            req.Title,
		Statement:        req.Statement,
		Description:      req.Description,
		AIType:           req.AIType,
		AISubtype:        req.AISubtype,
		BusinessCategory: req.BusinessCategory,
		Priority:         req.Priority,
		Stage:            stage,
		StageHealth:      req.StageHealth,
		ImpactScore:      req.ImpactScore,
		FeasibilityScore: req.FeasibilityScore,
		ConfidenceScore:  req.ConfidenceScore,
		ComplexityScore:  req.ComplexityScore,
		RiskClass:        req.RiskClass,
		DataRequirements: req.DataRequirements,
		ROIEstimate:      req.ROIEstimate,
		TimeEstimate:     req.TimeEstimate,
		SuccessMetrics:   req.SuccessMetrics,
		Dependencies:     req.Dependencies,
		LinkedExperiments: req.LinkedExps,
		Tags:             req.Tags,
		Links:            req.Links,
		GovernanceState:  initialGovernanceState(stage),
		Notes:            req.Notes,
		Owners:           req.Owners,
		Sponsors:         req.Sponsors,
		Observers:        req.Observers,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	rec.SetDefaults()
	if err := rec.Validate(); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	var hypID string
	err := s.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		id, err := tx.NextHypID(ctx)
		if err != nil {
			return err
		}
		hypID = id
		rec.HypID = id

		if err := tx.InsertHypothesis(ctx, rec); err != nil {
			return err
		}
		for _, input := range req.GatingChecklist {
			if err := tx.AddChecklistItem(ctx, checklistItemFromInput(id, input, now)); err != nil {
				return err
			}
		}
		if err := tx.AddStageHistory(ctx, &types.StageHistoryEntry{
			HypID:     id,
			ToStage:   stage,
			ChangedAt: now,
			ChangedBy: ownerName,
			Notes:     "Initial submission",
		}); err != nil {
			return err
		}
		if err := tx.AppendActivity(ctx, &types.ActivityEvent{
			ID:         uuid.NewString(),
			HypID:      id,
			Type:       types.ActivityCreated,
			Title:      "Hypothesis created",
			Actor:      ownerName,
			Stage:      stage,
			Impact:     types.ImpactPositive,
			OccurredAt: now,
		}); err != nil {
			return err
		}
		return tx.RefreshSnapshots(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	debug.Logf("created hypothesis %s in stage %s\n", hypID, stage)
	return s.Get(ctx, hypID)
}

// Get returns the full detail view. Archived hypotheses answer NotFound.
func (s *Service) Get(ctx context.Context, hypID string) (*Detail, error) {
	hyp, err := s.getActive(ctx, hypID)
	if err != nil {
		return nil, err
	}
	return toDetail(hyp, s.now()), nil
}

// List returns the light view of every active hypothesis, newest first.
func (s *Service) List(ctx context.Context) ([]*Light, error) {
	hyps, err := s.store.ListHypotheses(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list hypotheses: %w", err)
	}
	out := make([]*Light, 0, len(hyps))
	for _, hyp := range hyps {
		out = append(out, toLight(hyp))
	}
	return out, nil
}

// Update applies a partial update. If the stage changes, the transition is
// gated first; a blocked transition leaves the record untouched. Moving to
// ARCHIVED is always permitted and carries full archive semantics: archived_at
// is stamped and the record drops out of subsequent listings and gets. One
// activity event is logged per call regardless of how many fields changed.
func (s *Service) Update(ctx context.Context, hypID string, req *UpdateRequest) (*Detail, error) {
	now := s.now()
	actor := req.UpdatedBy
	if actor == "" {
		actor = "System"
	}

	archiving := false
	err := s.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		hyp, err := tx.GetHypothesis(ctx, hypID)
		if err != nil {
			return translateNotFound(err, "hypothesis", hypID)
		}
		if hyp.Record.IsArchived() {
			return &NotFoundError{Resource: "hypothesis", ID: hypID}
		}
		rec := hyp.Record

		stageChanged := false
		if req.Stage != nil && *req.Stage != rec.Stage {
			if err := checkTransition(hyp, *req.Stage); err != nil {
				return err
			}
			stageChanged = true
			archiving = *req.Stage == types.StageArchived
			notes := "Stage updated via API"
			if archiving {
				notes = "Archived via API"
			}
			if err := tx.AddStageHistory(ctx, &types.StageHistoryEntry{
				HypID:     hypID,
				FromStage: rec.Stage,
				ToStage:   *req.Stage,
				ChangedAt: now,
				ChangedBy: actor,
				Notes:     notes,
			}); err != nil {
				return err
			}
			rec.Stage = *req.Stage
			if archiving {
				rec.ArchivedAt = &now
			}
		}

		applyUpdates(rec, req)
		rec.UpdatedAt = now
		if err := rec.Validate(); err != nil {
			return &ValidationError{Message: err.Error()}
		}

		if req.GatingChecklist != nil {
			items := make([]*types.ChecklistItem, 0, len(*req.GatingChecklist))
			for _, input := range *req.GatingChecklist {
				items = append(items, checklistItemFromInput(hypID, input, now))
			}
			if err := tx.ReplaceChecklist(ctx, hypID, items); err != nil {
				return err
			}
		}

		if err := tx.UpdateHypothesis(ctx, rec); err != nil {
			return err
		}

		event := &types.ActivityEvent{
			ID:         uuid.NewString(),
			HypID:      hypID,
			Type:       types.ActivityUpdated,
			Title:      "Hypothesis updated",
			Actor:      actor,
			Stage:      rec.Stage,
			Impact:     types.ImpactNeutral,
			OccurredAt: now,
		}
		if stageChanged {
			event.Type = types.ActivityStageChanged
			event.Title = fmt.Sprintf("Hypothesis moved to %s", titleCase(string(rec.Stage)))
			event.Impact = types.ImpactPositive
		}
		if archiving {
			// Same event shape as Archive.
			event.Type = types.ActivityUpdated
			event.Title = "Hypothesis archived"
			event.Impact = types.ImpactNeutral
		}
		if err := tx.AppendActivity(ctx, event); err != nil {
			return err
		}
		return tx.RefreshSnapshots(ctx, hypID)
	})
	if err != nil {
		return nil, err
	}
	if archiving {
		// Get filters archived records; return the final state directly.
		hyp, err := s.store.GetHypothesis(ctx, hypID)
		if err != nil {
			return nil, translateNotFound(err, "hypothesis", hypID)
		}
		return toDetail(hyp, s.now()), nil
	}
	return s.Get(ctx, hypID)
}

// Archive soft-deletes a hypothesis: stage becomes ARCHIVED, archived_at is
// set, and the record drops out of listings and direct gets. Irreversible.
func (s *Service) Archive(ctx context.Context, hypID, actor string) error {
	if actor == "" {
		actor = "System"
	}
	now := s.now()

	return s.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		hyp, err := tx.GetHypothesis(ctx, hypID)
		if err != nil {
			return translateNotFound(err, "hypothesis", hypID)
		}
		if hyp.Record.IsArchived() {
			return &NotFoundError{Resource: "hypothesis", ID: hypID}
		}
		rec := hyp.Record

		previous := rec.Stage
		rec.Stage = types.StageArchived
		rec.ArchivedAt = &now
		rec.UpdatedAt = now

		if err := tx.AddStageHistory(ctx, &types.StageHistoryEntry{
			HypID:     hypID,
			FromStage: previous,
			ToStage:   types.StageArchived,
			ChangedAt: now,
			ChangedBy: actor,
			Notes:     "Archived via API",
		}); err != nil {
			return err
		}
		if err := tx.AppendActivity(ctx, &types.ActivityEvent{
			ID:         uuid.NewString(),
			HypID:      hypID,
			Type:       types.ActivityUpdated,
			Title:      "Hypothesis archived",
			Actor:      actor,
			Stage:      types.StageArchived,
			Impact:     types.ImpactNeutral,
			OccurredAt: now,
		}); err != nil {
			return err
		}
		if err := tx.UpdateHypothesis(ctx, rec); err != nil {
			return err
		}
		return tx.RefreshSnapshots(ctx, hypID)
	})
}

func (s *Service) getActive(ctx context.Context, hypID string) (*storage.Hypothesis, error) {
	hyp, err := s.store.GetHypothesis(ctx, hypID)
	if err != nil {
		return nil, translateNotFound(err, "hypothesis", hypID)
	}
	if hyp.Record.IsArchived() {
		return nil, &NotFoundError{Resource: "hypothesis", ID: hypID}
	}
	return hyp, nil
}

func initialGovernanceState(stage types.Stage) types.GovernanceState {
	switch stage {
	case types.StagePrioritization, types.StageExperimentation, types.StageEvaluation:
		return types.GovernancePending
	}
	return types.GovernanceNotRequired
}

func checklistItemFromInput(hypID string, input ChecklistItemInput, now time.Time) *types.ChecklistItem {
	status := input.Status
	if status == "" {
		status = types.ChecklistPending
	}
	label := input.Label
	if label == "" {
		label = "Checklist item"
	}
	return &types.ChecklistItem{
		ID:         uuid.NewString(),
		HypID:      hypID,
		Label:      label,
		Owner:      input.Owner,
		OwnerEmail: input.OwnerEmail,
		Status:     status,
		DueAt:      input.DueAt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func applyUpdates(rec *types.HypothesisRecord, req *UpdateRequest) {
	if req.Title != nil {
		rec.Title = *req.Title
	}
	if req.Statement != nil {
		rec.Statement = *req.Statement
	}
	if req.Description != nil {
		rec.Description = *req.Description
	}
	if req.Priority != nil {
		rec.Priority = *req.Priority
	}
	if req.StageHealth != nil {
		rec.StageHealth = *req.StageHealth
	}
	if req.ImpactScore != nil {
		rec.ImpactScore = *req.ImpactScore
	}
	if req.FeasibilityScore != nil {
		rec.FeasibilityScore = *req.FeasibilityScore
	}
	if req.ConfidenceScore != nil {
		rec.ConfidenceScore = *req.ConfidenceScore
	}
	if req.ComplexityScore != nil {
		rec.ComplexityScore = req.ComplexityScore
	}
	if req.RiskClass != nil {
		rec.RiskClass = *req.RiskClass
	}
	if req.GovernanceState != nil {
		rec.GovernanceState = *req.GovernanceState
	}
	if req.Notes != nil {
		rec.Notes = *req.Notes
	}
	if req.Owners != nil {
		rec.Owners = *req.Owners
	}
	if req.Sponsors != nil {
		rec.Sponsors = *req.Sponsors
	}
	if req.Observers != nil {
		rec.Observers = *req.Observers
	}
	if req.Tags != nil {
		rec.Tags = *req.Tags
	}
	if req.Dependencies != nil {
		rec.Dependencies = *req.Dependencies
	}
	if req.Links != nil {
		rec.Links = *req.Links
	}
	if req.LinkedExps != nil {
		rec.LinkedExperiments = *req.LinkedExps
	}
	if req.SuccessMetrics != nil {
		rec.SuccessMetrics = *req.SuccessMetrics
	}
	if req.DataRequirements != nil {
		rec.DataRequirements = *req.DataRequirements
	}
	if req.ROIEstimate != nil {
		rec.ROIEstimate = req.ROIEstimate
	}
	if req.TimeEstimate != nil {
		rec.TimeEstimate = req.TimeEstimate
	}
}

// translateNotFound maps the store's sentinel to the service error taxonomy.
func translateNotFound(err error, resource, id string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrNotFound) {
		return &NotFoundError{Resource: resource, ID: id}
	}
	return err
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	out := []rune(strings.ToLower(s))
	out[0] = unicode.ToUpper(out[0])
	return string(out)
}
