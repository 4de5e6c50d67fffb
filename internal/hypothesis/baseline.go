package hypothesis

import "github.com/k2tech/ailab/internal/types"

// StageBaseline is the static metadata shown on a dashboard stage section.
// These are fixed editorial constants, not values computed from history.
type StageBaseline struct {
	Title              string
	Description        string
	SLAHours           int
	StageOwner         string
	ConversionRate     float64
	AverageDaysInStage int
}

var stageBaselines = map[types.Stage]StageBaseline{
	types.StageIdeation: {
		Title:              "Ideation",
		Description:        "Capture opportunities with business context and desired outcomes.",
		SLAHours:           72,
		StageOwner:         "Business Analyst Guild",
		ConversionRate:     0.62,
		AverageDaysInStage: 4,
	},
	types.StageScoping: {
		Title:              "Scoping",
		Description:        "Validate data availability and outline the experiment plan.",
		SLAHours:           96,
		StageOwner:         "Product Strategy",
		ConversionRate:     0.48,
		AverageDaysInStage: 6,
	},
	types.StagePrioritization: {
		Title:              "Prioritization",
		Description:        "Score for ROI, capacity, and strategic fit.",
		SLAHours:           48,
		StageOwner:         "Portfolio Council",
		ConversionRate:     0.54,
		AverageDaysInStage: 3,
	},
	types.StageExperimentation: {
		Title:              "Experimentation",
		Description:        "Prototype, evaluate, and execute experiment backlog.",
		SLAHours:           168,
		StageOwner:         "Lab Squad Alpha",
		ConversionRate:     0.41,
		AverageDaysInStage: 10,
	},
	types.StageEvaluation: {
		Title:              "Evaluation",
		Description:        "Assess impact, adoption, and risk before scaling.",
		SLAHours:           72,
		StageOwner:         "Governance Office",
		ConversionRate:     0.33,
		AverageDaysInStage: 5,
	},
	types.StageScaling: {
		Title:              "Scaling",
		Description:        "Handover to product ops and track ROI commitments.",
		SLAHours:           120,
		StageOwner:         "Scale Factory",
		ConversionRate:     0.22,
		AverageDaysInStage: 14,
	},
	types.StageProduction: {
		Title:              "Production",
		Description:        "Operationalised hypothesis with ROI tracking and observability.",
		SLAHours:           240,
		StageOwner:         "Operations",
		ConversionRate:     0.18,
		AverageDaysInStage: 21,
	},
}

// nextStageGate names the review gate a hypothesis faces before leaving each
// stage. PRODUCTION has no outbound gate.
var nextStageGate = map[types.Stage]string{
	types.StageIdeation:        "SCOPING_KICKOFF",
	types.StageScoping:         "PRIORITIZATION_REVIEW",
	types.StagePrioritization:  "EXPERIMENT_KICKOFF",
	types.StageExperimentation: "EVALUATION_GATE",
	types.StageEvaluation:      "SCALING_KICKOFF",
	types.StageScaling:         "PRODUCTION_ROLLOUT",
}
