package hypothesis

import (
	"context"
	"testing"

	"github.com/k2tech/ailab/internal/types"
)

func TestDashboardEmptyPortfolio(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.BuildDashboard(context.Background())
	if !isNotFound(err) {
		t.Errorf("empty dashboard = %v, want NotFoundError", err)
	}
}

func TestDashboardPortfolioValue(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	costs := []float64{450000, 650000}
	for _, cost := range costs {
		req := createRequest()
		c := cost
		req.ROIEstimate = &types.ValueEstimate{Currency: "USD", OneTimeCost: &c, ExpectedROI: 2, PaybackPeriodWeeks: 12}
		if _, err := svc.Create(ctx, req); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	dashboard, err := svc.BuildDashboard(ctx)
	if err != nil {
		t.Fatalf("dashboard failed: %v", err)
	}
	if dashboard.Highlights.PortfolioValue != "$1.1M potential" {
		t.Errorf("portfolio value = %q, want $1.1M potential", dashboard.Highlights.PortfolioValue)
	}
}

func TestDashboardHighlightsFallbacks(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, createRequest()); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.Create(ctx, createRequest()); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	dashboard, err := svc.BuildDashboard(ctx)
	if err != nil {
		t.Fatalf("dashboard failed: %v", err)
	}
	if dashboard.Highlights.PortfolioValue != "2 active hypotheses" {
		t.Errorf("portfolio value = %q", dashboard.Highlights.PortfolioValue)
	}
	if dashboard.Highlights.AvgTimeToValue != "n/a" {
		t.Errorf("avg time to value = %q, want n/a", dashboard.Highlights.AvgTimeToValue)
	}
	if dashboard.Highlights.GovernancePending != 0 {
		t.Errorf("governance pending = %d", dashboard.Highlights.GovernancePending)
	}
}

func TestDashboardAvgTimeToValue(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, weeks := range []int{10, 15} {
		req := createRequest()
		w := weeks
		req.TimeEstimate = &types.TimeEstimate{ProductionWeeks: &w}
		if _, err := svc.Create(ctx, req); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	dashboard, err := svc.BuildDashboard(ctx)
	if err != nil {
		t.Fatalf("dashboard failed: %v", err)
	}
	// Integer division: (10+15)/2 = 12.
	if dashboard.Highlights.AvgTimeToValue != "12 weeks" {
		t.Errorf("avg time to value = %q, want 12 weeks", dashboard.Highlights.AvgTimeToValue)
	}
}

func TestDashboardStageSections(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	scoping := createRequest()
	scoping.InitialStage = types.StageScoping
	if _, err := svc.Create(ctx, scoping); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.Create(ctx, createRequest()); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	dashboard, err := svc.BuildDashboard(ctx)
	if err != nil {
		t.Fatalf("dashboard failed: %v", err)
	}
	if len(dashboard.Stages) != 7 {
		t.Fatalf("stages = %d, want 7", len(dashboard.Stages))
	}
	if dashboard.Stages[0].Key != types.StageIdeation || dashboard.Stages[0].Title != "Ideation" {
		t.Errorf("first section = %+v", dashboard.Stages[0])
	}
	if dashboard.Stages[0].SLAHours != 72 || dashboard.Stages[0].StageOwner != "Business Analyst Guild" {
		t.Errorf("ideation baseline = %+v", dashboard.Stages[0])
	}
	if len(dashboard.Stages[0].Items) != 1 {
		t.Errorf("ideation items = %d, want 1", len(dashboard.Stages[0].Items))
	}
	if len(dashboard.Stages[1].Items) != 1 {
		t.Errorf("scoping items = %d, want 1", len(dashboard.Stages[1].Items))
	}
	if dashboard.Stages[1].Items[0].NextGate != "PRIORITIZATION_REVIEW" {
		t.Errorf("scoping next gate = %q", dashboard.Stages[1].Items[0].NextGate)
	}
}

func TestDashboardFocusIsMostRecentlyUpdated(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, createRequest())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	second, err := svc.Create(ctx, createRequest())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	_ = second

	// Touch the first one so it becomes the freshest.
	notes := "touched"
	if _, err := svc.Update(ctx, first.Record.HypID, &UpdateRequest{Notes: &notes}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	dashboard, err := svc.BuildDashboard(ctx)
	if err != nil {
		t.Fatalf("dashboard failed: %v", err)
	}
	if dashboard.FocusHypothesis.Record.HypID != first.Record.HypID {
		t.Errorf("focus = %s, want %s", dashboard.FocusHypothesis.Record.HypID, first.Record.HypID)
	}
}

func TestDashboardTaskAggregation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	req := createRequest()
	req.GatingChecklist = []ChecklistItemInput{
		{Label: "Collect data sample", Status: types.ChecklistPending},
		{Label: "Completed already", Status: types.ChecklistComplete},
	}
	if _, err := svc.Create(ctx, req); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	dashboard, err := svc.BuildDashboard(ctx)
	if err != nil {
		t.Fatalf("dashboard failed: %v", err)
	}
	if len(dashboard.Tasks) != 1 {
		t.Fatalf("tasks = %d, want 1 (complete items excluded)", len(dashboard.Tasks))
	}
	if dashboard.Tasks[0].Type != types.TaskData {
		t.Errorf("task type = %s, want data", dashboard.Tasks[0].Type)
	}
}

func TestDashboardActivityNewestFirst(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	detail, err := svc.Create(ctx, createRequest())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.AddComment(ctx, detail.Record.HypID, &CommentRequest{Author: "Dana Ives", Body: "First pass done"}); err != nil {
		t.Fatalf("comment failed: %v", err)
	}

	dashboard, err := svc.BuildDashboard(ctx)
	if err != nil {
		t.Fatalf("dashboard failed: %v", err)
	}
	if len(dashboard.Activity) < 2 {
		t.Fatalf("activity = %d entries", len(dashboard.Activity))
	}
	for i := 1; i < len(dashboard.Activity); i++ {
		if dashboard.Activity[i].OccurredAt.After(dashboard.Activity[i-1].OccurredAt) {
			t.Errorf("activity out of order at %d", i)
		}
	}
	if dashboard.Activity[0].Type != types.ActivityCommented {
		t.Errorf("latest event = %s, want COMMENTED", dashboard.Activity[0].Type)
	}
}
