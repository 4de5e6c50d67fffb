package onboarding

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/k2tech/ailab/internal/types"
)

// Checklist item statuses. "completed" is what the readiness score counts.
const (
	ChecklistStatusPending    = "pending"
	ChecklistStatusInProgress = "in_progress"
	ChecklistStatusCompleted  = "completed"
)

type checklistCategory struct {
	label string // display label, localized
	key   string // english key used in generated descriptions
}

// The five fixed readiness categories, in generation order. Labels are
// Russian per the product's launch market.
var checklistCategories = []checklistCategory{
	{"Команда", "team"},
	{"Данные", "data"},
	{"Инфраструктура", "infrastructure"},
	{"Методология", "methodology"},
	{"Бюджет", "budget"},
}

// GenerateChecklist produces exactly five items, one per category, cycling
// through the summary's goals for description text. The first two categories
// are high priority; due dates spread out by 30-day months capped at the
// horizon.
func GenerateChecklist(summary types.Summary, horizonMonths int, today time.Time) []types.SessionChecklistItem {
	goals := summary[types.SummaryGoals]
	if len(goals) == 0 {
		goals = []string{"Validate 3 AI opportunities"}
	}

	items := make([]types.SessionChecklistItem, 0, len(checklistCategories))
	for i, category := range checklistCategories {
		index := i + 1
		goal := goals[i%len(goals)]
		priority := "medium"
		if index <= 2 {
			priority = "high"
		}
		items = append(items, types.SessionChecklistItem{
			ID:          uuid.NewString(),
			Category:    category.label,
			Title:       fmt.Sprintf("%s readiness", category.label),
			Description: fmt.Sprintf("Ensure %s readiness to support goal: %s", category.key, goal),
			DueDate:     dueDate(today, min(horizonMonths, index+1)),
			Priority:    priority,
			Status:      ChecklistStatusPending,
		})
	}
	return items
}

// CalculateReadinessScore returns the percentage of checklist items marked
// completed, rounded to the nearest integer. An empty checklist scores zero.
func CalculateReadinessScore(checklist []types.SessionChecklistItem) int {
	if len(checklist) == 0 {
		return 0
	}
	completed := 0
	for _, item := range checklist {
		if item.Status == ChecklistStatusCompleted {
			completed++
		}
	}
	return int(math.Round(float64(completed) / float64(len(checklist)) * 100))
}

// highPriorityCategory reports whether a voice-added checklist category
// defaults to high priority. Team and data qualify, in either language.
func highPriorityCategory(category string) bool {
	switch strings.ToLower(category) {
	case "команда", "team", "данные", "data":
		return true
	}
	return false
}
