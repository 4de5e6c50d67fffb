// Package types defines core data structures for the AI Lab hypothesis tracker.
package types

import (
	"fmt"
	"regexp"
	"time"
)

// Stage is one of the ordered lifecycle phases a hypothesis passes through,
// plus the terminal ARCHIVED state.
type Stage string

// Lifecycle stages, in forward progression order.
const (
	StageIdeation        Stage = "IDEATION"
	StageScoping         Stage = "SCOPING"
	StagePrioritization  Stage = "PRIORITIZATION"
	StageExperimentation Stage = "EXPERIMENTATION"
	StageEvaluation      Stage = "EVALUATION"
	StageScaling         Stage = "SCALING"
	StageProduction      Stage = "PRODUCTION"
	StageArchived        Stage = "ARCHIVED"
)

// StageOrder is the linear progression used for gating decisions.
// ARCHIVED is deliberately excluded: it is terminal and reachable from anywhere.
var StageOrder = []Stage{
	StageIdeation,
	StageScoping,
	StagePrioritization,
	StageExperimentation,
	StageEvaluation,
	StageScaling,
	StageProduction,
}

// Index returns the position of the stage in the linear order, or -1 for
// ARCHIVED and unrecognized values.
func (s Stage) Index() int {
	for i, stage := range StageOrder {
		if stage == s {
			return i
		}
	}
	return -1
}

// IsValid checks if the stage value is recognized.
func (s Stage) IsValid() bool {
	return s == StageArchived || s.Index() >= 0
}

// Priority buckets for portfolio ranking.
type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// IsValid checks if the priority value is recognized.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// RiskClass is the coarse risk banding for a hypothesis.
type RiskClass string

const (
	RiskLow    RiskClass = "LOW"
	RiskMedium RiskClass = "MEDIUM"
	RiskHigh   RiskClass = "HIGH"
)

// IsValid checks if the risk class is recognized.
func (r RiskClass) IsValid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// GovernanceState tracks whether governance review is needed and its outcome.
type GovernanceState string

const (
	GovernanceNotRequired GovernanceState = "NOT_REQUIRED"
	GovernancePending     GovernanceState = "PENDING"
	GovernanceApproved    GovernanceState = "APPROVED"
	GovernanceRejected    GovernanceState = "REJECTED"
)

// StageHealth is the qualitative health signal shown on the board.
type StageHealth string

const (
	HealthOnTrack StageHealth = "on-track"
	HealthWarning StageHealth = "warning"
	HealthRisk    StageHealth = "risk"
)

// Actor identifies a person attached to a hypothesis (owner, sponsor, observer).
type Actor struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role,omitempty"`
	Department string `json:"department,omitempty"`
}

// DataRequirements describes the data a hypothesis needs to be testable.
type DataRequirements struct {
	Sources         []string `json:"sources"`
	Volume          string   `json:"volume,omitempty"`
	Quality         string   `json:"quality,omitempty"`
	RefreshCadence  string   `json:"refreshCadence,omitempty"`
	GovernanceNotes string   `json:"governanceNotes,omitempty"`
}

// ValueEstimate captures the ROI projection for a hypothesis.
type ValueEstimate struct {
	Currency            string   `json:"currency"`
	OneTimeCost         *float64 `json:"oneTimeCost,omitempty"`
	OngoingCostPerCycle *float64 `json:"ongoingCostPerPeriod,omitempty"`
	ExpectedROI         float64  `json:"expectedRoi"`
	PaybackPeriodWeeks  int      `json:"paybackPeriodWeeks"`
	ValueDriver         string   `json:"valueDriver,omitempty"`
}

// TimeEstimate is the phased effort projection in weeks.
type TimeEstimate struct {
	DiscoveryWeeks  *int `json:"discoveryWeeks,omitempty"`
	ExperimentWeeks *int `json:"experimentWeeks,omitempty"`
	ProductionWeeks *int `json:"productionWeeks,omitempty"`
}

// SuccessMetric is a measurable target attached to a hypothesis.
type SuccessMetric struct {
	Label        string   `json:"label"`
	Target       float64  `json:"target"`
	Direction    string   `json:"direction,omitempty"`
	Unit         string   `json:"unit,omitempty"`
	CurrentValue *float64 `json:"currentValue,omitempty"`
}

// Link is a reference to an external artifact (spec, doc, dataset, ...).
type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
	Type  string `json:"type,omitempty"`
}

// LinkedExperiment is a lightweight pointer to an experiment record owned by
// the experiments service.
type LinkedExperiment struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	Owner       string     `json:"owner,omitempty"`
	LastUpdated *time.Time `json:"lastUpdated,omitempty"`
}

// HypothesisRecord is a business hypothesis under evaluation.
//
// The GatingChecklist, Attachments, and ActivityDigest fields are denormalized
// JSON snapshots of the owned sub-entity tables. They are a read cache: the
// store regenerates them after every mutation and never treats them as input.
type HypothesisRecord struct {
	HypID             string             `json:"hypId"`
	LabID             string             `json:"labId"`
	Version           int                `json:"version"`
	Title             string             `json:"title"`
	Statement         string             `json:"statement"`
	Description       string             `json:"description,omitempty"`
	AIType            string             `json:"aiType"`
	AISubtype         string             `json:"aiSubtype,omitempty"`
	BusinessCategory  string             `json:"businessCategory,omitempty"`
	Priority          Priority           `json:"priority"`
	Stage             Stage              `json:"stage"`
	StageHealth       StageHealth        `json:"stageHealth"`
	ImpactScore       float64            `json:"impactScore"`
	FeasibilityScore  float64            `json:"feasibilityScore"`
	ConfidenceScore   float64            `json:"confidenceScore"`
	ComplexityScore   *float64           `json:"complexityScore,omitempty"`
	RiskClass         RiskClass          `json:"riskClass"`
	DataRequirements  DataRequirements   `json:"dataRequirements"`
	ROIEstimate       *ValueEstimate     `json:"roiEstimate,omitempty"`
	TimeEstimate      *TimeEstimate      `json:"timeEstimate,omitempty"`
	SuccessMetrics    []SuccessMetric    `json:"successMetrics,omitempty"`
	Dependencies      []string           `json:"dependencies,omitempty"`
	LinkedExperiments []LinkedExperiment `json:"linkedExperiments,omitempty"`
	Tags              []string           `json:"tags,omitempty"`
	Links             []Link             `json:"links,omitempty"`
	GovernanceState   GovernanceState    `json:"governanceState"`
	Notes             string             `json:"notes,omitempty"`
	Owners            []Actor            `json:"owners"`
	Sponsors          []Actor            `json:"sponsors,omitempty"`
	Observers         []Actor            `json:"observers,omitempty"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
	ArchivedAt        *time.Time         `json:"archivedAt,omitempty"`

	// Denormalized snapshots, regenerated from sub-entity tables on write.
	GatingChecklist []ChecklistItem `json:"gatingChecklist,omitempty"`
	Attachments     []Attachment    `json:"attachments,omitempty"`
	ActivityDigest  []ActivityEvent `json:"activityDigest,omitempty"`
}

// HypIDPattern matches well-formed hypothesis identifiers and captures the
// numeric suffix used for sequential allocation.
var HypIDPattern = regexp.MustCompile(`^HYP-(\d+)$`)

// Validate checks if the record has valid field values.
func (h *HypothesisRecord) Validate() error {
	if h.Title == "" {
		return fmt.Errorf("title is required")
	}
	if len(h.Title) > 160 {
		return fmt.Errorf("title must be 160 characters or less (got %d)", len(h.Title))
	}
	if h.Statement == "" {
		return fmt.Errorf("statement is required")
	}
	if len(h.Owners) == 0 {
		return fmt.Errorf("at least one owner is required")
	}
	if !h.Stage.IsValid() {
		return fmt.Errorf("invalid stage: %s", h.Stage)
	}
	if !h.Priority.IsValid() {
		return fmt.Errorf("invalid priority: %s", h.Priority)
	}
	if !h.RiskClass.IsValid() {
		return fmt.Errorf("invalid risk class: %s", h.RiskClass)
	}
	if h.ImpactScore < 0 || h.ImpactScore > 10 {
		return fmt.Errorf("impact score must be between 0 and 10 (got %g)", h.ImpactScore)
	}
	if h.FeasibilityScore < 0 || h.FeasibilityScore > 10 {
		return fmt.Errorf("feasibility score must be between 0 and 10 (got %g)", h.FeasibilityScore)
	}
	if h.ConfidenceScore < 0 || h.ConfidenceScore > 1 {
		return fmt.Errorf("confidence score must be between 0 and 1 (got %g)", h.ConfidenceScore)
	}
	if h.ComplexityScore != nil && (*h.ComplexityScore < 0 || *h.ComplexityScore > 10) {
		return fmt.Errorf("complexity score must be between 0 and 10 (got %g)", *h.ComplexityScore)
	}
	// archived_at invariant: set if and only if stage is ARCHIVED
	if h.Stage == StageArchived && h.ArchivedAt == nil {
		return fmt.Errorf("archived hypotheses must have archivedAt timestamp")
	}
	if h.Stage != StageArchived && h.ArchivedAt != nil {
		return fmt.Errorf("non-archived hypotheses cannot have archivedAt timestamp")
	}
	return nil
}

// SetDefaults applies default values for fields omitted on create.
func (h *HypothesisRecord) SetDefaults() {
	if h.Version == 0 {
		h.Version = 1
	}
	if h.AIType == "" {
		h.AIType = "OTHER"
	}
	if h.Priority == "" {
		h.Priority = PriorityMedium
	}
	if h.Stage == "" {
		h.Stage = StageIdeation
	}
	if h.StageHealth == "" {
		h.StageHealth = HealthOnTrack
	}
	if h.RiskClass == "" {
		h.RiskClass = RiskMedium
	}
	if h.GovernanceState == "" {
		h.GovernanceState = GovernanceNotRequired
	}
}

// IsArchived returns true if the hypothesis has been soft-deleted.
func (h *HypothesisRecord) IsArchived() bool {
	return h.ArchivedAt != nil
}
