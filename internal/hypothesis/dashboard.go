package hypothesis

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/k2tech/ailab/internal/storage"
	"github.com/k2tech/ailab/internal/types"
)

// StageSection is one of the seven fixed dashboard buckets: static baseline
// metadata plus the summaries of every hypothesis currently in that stage.
type StageSection struct {
	Key                types.Stage    `json:"key"`
	Title              string         `json:"title"`
	Description        string         `json:"description"`
	SLAHours           int            `json:"slaHours"`
	StageOwner         string         `json:"stageOwner"`
	StageHealth        string         `json:"stageHealth"`
	ConversionRate     float64        `json:"conversionRate"`
	AverageDaysInStage int            `json:"averageDaysInStage"`
	Items              []*SummaryItem `json:"items"`
}

// Highlights is the headline strip at the top of the dashboard.
type Highlights struct {
	PortfolioValue      string `json:"portfolioValue"`
	ExperimentsInFlight int    `json:"experimentsInFlight"`
	AvgTimeToValue      string `json:"avgTimeToValue"`
	GovernancePending   int    `json:"governancePending"`
}

// Dashboard is the portfolio rollup across all active hypotheses.
type Dashboard struct {
	Stages          []*StageSection        `json:"stages"`
	Highlights      *Highlights            `json:"highlights"`
	FocusHypothesis *Detail                `json:"focusHypothesis"`
	Tasks           []*types.Task          `json:"tasks"`
	Activity        []*types.ActivityEvent `json:"activity"`
}

const (
	dashboardTaskLimit     = 20
	dashboardActivityLimit = 25
)

// BuildDashboard aggregates every active hypothesis into the portfolio view.
// Returns NotFoundError when no hypotheses exist at all.
func (s *Service) BuildDashboard(ctx context.Context) (*Dashboard, error) {
	hyps, err := s.store.ListHypotheses(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list hypotheses: %w", err)
	}
	if len(hyps) == 0 {
		return nil, &NotFoundError{Resource: "dashboard", ID: "hypotheses"}
	}

	now := s.now()

	sections := make(map[types.Stage]*StageSection, len(types.StageOrder))
	ordered := make([]*StageSection, 0, len(types.StageOrder))
	for _, stage := range types.StageOrder {
		baseline := stageBaselines[stage]
		section := &StageSection{
			Key:                stage,
			Title:              baseline.Title,
			Description:        baseline.Description,
			SLAHours:           baseline.SLAHours,
			StageOwner:         baseline.StageOwner,
			StageHealth:        string(types.HealthOnTrack),
			ConversionRate:     baseline.ConversionRate,
			AverageDaysInStage: baseline.AverageDaysInStage,
			Items:              []*SummaryItem{},
		}
		sections[stage] = section
		ordered = append(ordered, section)
	}

	var focus *storage.Hypothesis
	for _, hyp := range hyps {
		section, ok := sections[hyp.Record.Stage]
		if !ok {
			// Unknown stage values land in the first bucket.
			section = sections[types.StageIdeation]
		}
		summary := toSummary(hyp)
		summary.NextGate = nextStageGate[hyp.Record.Stage]
		section.Items = append(section.Items, summary)

		if focus == nil || !hyp.Record.UpdatedAt.Before(focus.Record.UpdatedAt) {
			focus = hyp
		}
	}

	return &Dashboard{
		Stages:          ordered,
		Highlights:      buildHighlights(hyps),
		FocusHypothesis: toDetail(focus, now),
		Tasks:           aggregateTasks(hyps, now),
		Activity:        aggregateActivity(hyps),
	}, nil
}

func buildHighlights(hyps []*storage.Hypothesis) *Highlights {
	var (
		totalValue        float64
		experiments       int
		governancePending int
		totalWeeks        int
		weeksCount        int
	)
	for _, hyp := range hyps {
		rec := hyp.Record
		if rec.ROIEstimate != nil && rec.ROIEstimate.OneTimeCost != nil {
			totalValue += *rec.ROIEstimate.OneTimeCost
		}
		experiments += len(rec.LinkedExperiments)
		if rec.GovernanceState == types.GovernancePending {
			governancePending++
		}
		if rec.TimeEstimate != nil && rec.TimeEstimate.ProductionWeeks != nil {
			totalWeeks += *rec.TimeEstimate.ProductionWeeks
			weeksCount++
		}
	}

	portfolioValue := fmt.Sprintf("%d active hypotheses", len(hyps))
	if totalValue != 0 {
		portfolioValue = fmt.Sprintf("$%.1fM potential", totalValue/1_000_000)
	}
	avgTimeToValue := "n/a"
	if weeksCount > 0 {
		avgTimeToValue = fmt.Sprintf("%d weeks", totalWeeks/weeksCount)
	}

	return &Highlights{
		PortfolioValue:      portfolioValue,
		ExperimentsInFlight: experiments,
		AvgTimeToValue:      avgTimeToValue,
		GovernancePending:   governancePending,
	}
}

func aggregateTasks(hyps []*storage.Hypothesis, now time.Time) []*types.Task {
	var tasks []*types.Task
	for _, hyp := range hyps {
		tasks = append(tasks, deriveHypothesisTasks(hyp, now)...)
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Due.Before(*tasks[j].Due)
	})
	if len(tasks) > dashboardTaskLimit {
		tasks = tasks[:dashboardTaskLimit]
	}
	return tasks
}

func aggregateActivity(hyps []*storage.Hypothesis) []*types.ActivityEvent {
	var events []*types.ActivityEvent
	for _, hyp := range hyps {
		for _, event := range hyp.Events {
			normalized := *event
			normalized.Type = event.Type.Normalize()
			normalized.Impact = event.Impact.Normalize()
			if normalized.Stage == "" {
				normalized.Stage = hyp.Record.Stage
			}
			events = append(events, &normalized)
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].OccurredAt.After(events[j].OccurredAt)
	})
	if len(events) > dashboardActivityLimit {
		events = events[:dashboardActivityLimit]
	}
	return events
}
