package onboarding

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k2tech/ailab/internal/types"
)

func TestGenerateChecklistShape(t *testing.T) {
	summary := types.Summary{types.SummaryGoals: {"cut costs", "reduce churn"}}
	items := GenerateChecklist(summary, 6, testToday)

	require.Len(t, items, 5)

	wantCategories := []string{"Команда", "Данные", "Инфраструктура", "Методология", "Бюджет"}
	for i, item := range items {
		assert.Equal(t, wantCategories[i], item.Category)
		assert.Equal(t, wantCategories[i]+" readiness", item.Title)
		assert.Equal(t, ChecklistStatusPending, item.Status)
		assert.NotEmpty(t, item.ID)
	}

	// First two categories are high priority.
	assert.Equal(t, "high", items[0].Priority)
	assert.Equal(t, "high", items[1].Priority)
	assert.Equal(t, "medium", items[2].Priority)

	// Goals cycle through the descriptions.
	assert.Equal(t, "Ensure team readiness to support goal: cut costs", items[0].Description)
	assert.Equal(t, "Ensure data readiness to support goal: reduce churn", items[1].Description)
	assert.Equal(t, "Ensure infrastructure readiness to support goal: cut costs", items[2].Description)
}

func TestGenerateChecklistDueDatesCappedByHorizon(t *testing.T) {
	items := GenerateChecklist(types.Summary{}, 3, testToday)
	require.Len(t, items, 5)

	// Offsets are min(horizon, index+1): 2, 3, 3, 3, 3 months of 30 days.
	assert.Equal(t, "2026-05-09", items[0].DueDate)
	assert.Equal(t, "2026-06-08", items[1].DueDate)
	assert.Equal(t, "2026-06-08", items[4].DueDate)
}

func TestGenerateChecklistDefaultGoal(t *testing.T) {
	items := GenerateChecklist(types.Summary{}, 6, testToday)
	assert.Contains(t, items[0].Description, "Validate 3 AI opportunities")
}

func TestCalculateReadinessScore(t *testing.T) {
	assert.Equal(t, 0, CalculateReadinessScore(nil))
	assert.Equal(t, 0, CalculateReadinessScore([]types.SessionChecklistItem{}))

	mk := func(statuses ...string) []types.SessionChecklistItem {
		items := make([]types.SessionChecklistItem, len(statuses))
		for i, s := range statuses {
			items[i] = types.SessionChecklistItem{ID: fmt.Sprint(i), Status: s}
		}
		return items
	}

	assert.Equal(t, 100, CalculateReadinessScore(mk(ChecklistStatusCompleted)))
	assert.Equal(t, 50, CalculateReadinessScore(mk(ChecklistStatusCompleted, ChecklistStatusPending)))
	assert.Equal(t, 33, CalculateReadinessScore(mk(ChecklistStatusCompleted, ChecklistStatusPending, ChecklistStatusInProgress)))
	assert.Equal(t, 67, CalculateReadinessScore(mk(ChecklistStatusCompleted, ChecklistStatusCompleted, ChecklistStatusPending)))
}

func TestGenerateRoadmapPhaseWindows(t *testing.T) {
	tests := []struct {
		horizon   int
		wantDue   map[string]int
	}{
		{3, map[string]int{"Discovery": 1, "Pilot": 2, "Scale": 3}},
		{6, map[string]int{"Discovery": 1, "Pilot": 3, "Scale": 6}},
		{12, map[string]int{"Discovery": 3, "Pilot": 6, "Scale": 12}},
		{9, map[string]int{"Discovery": 3, "Pilot": 5, "Scale": 9}},
	}
	for _, tt := range tests {
		roadmap := GenerateRoadmap(types.Summary{}, tt.horizon)
		require.Len(t, roadmap, 3, "horizon %d", tt.horizon)
		for phase, due := range tt.wantDue {
			require.NotEmpty(t, roadmap[phase], "horizon %d phase %s", tt.horizon, phase)
			assert.Equal(t, due, roadmap[phase][0].DueMonth, "horizon %d phase %s", tt.horizon, phase)
		}
	}
}

func TestGenerateRoadmapGoalsAndDependencies(t *testing.T) {
	summary := types.Summary{
		types.SummaryGoals:    {"cut costs", "reduce churn"},
		types.SummaryBarriers: {"legacy data", "no ml team"},
	}
	roadmap := GenerateRoadmap(summary, 6)

	discovery := roadmap["Discovery"]
	require.Len(t, discovery, 2)
	assert.Equal(t, "Phase 1: cut costs", discovery[0].Title)
	assert.Empty(t, discovery[0].Dependency)
	assert.Equal(t, "legacy data", discovery[0].BarrierFocus)

	pilot := roadmap["Pilot"]
	require.Len(t, pilot, 2)
	assert.Equal(t, "Phase 2: cut costs", pilot[0].Title)
	assert.Equal(t, "cut costs", pilot[0].Dependency)

	scale := roadmap["Scale"]
	require.Len(t, scale, 2)
	assert.Equal(t, "reduce churn", scale[0].Dependency)
}

func TestGenerateRoadmapDefaults(t *testing.T) {
	roadmap := GenerateRoadmap(types.Summary{}, 6)
	discovery := roadmap["Discovery"]
	require.Len(t, discovery, 1)
	assert.Equal(t, "Phase 1: "+defaultGoal, discovery[0].Title)
	assert.Equal(t, defaultBarrier, discovery[0].BarrierFocus)
	// Single goal never gets a dependency.
	assert.Empty(t, roadmap["Pilot"][0].Dependency)
}
