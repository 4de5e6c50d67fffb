package onboarding

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/k2tech/ailab/internal/types"
)

// Defaults used when the extracted summary is still empty.
const (
	defaultGoal    = "Launch AI lab with measurable ROI"
	defaultBarrier = "Limited data maturity"
)

// RoadmapPhases lists the phase names in their canonical order. The roadmap
// itself is a map, so renderers should iterate this slice for stable output.
var RoadmapPhases = []string{"Discovery", "Pilot", "Scale"}

type phaseWindow struct {
	name     string
	dueMonth int
}

// phaseWindows picks the due-month offsets for the three phases by horizon
// bucket.
func phaseWindows(horizonMonths int) []phaseWindow {
	switch {
	case horizonMonths <= 3:
		return []phaseWindow{{"Discovery", 1}, {"Pilot", 2}, {"Scale", 3}}
	case horizonMonths <= 6:
		return []phaseWindow{{"Discovery", 1}, {"Pilot", 3}, {"Scale", 6}}
	default:
		return []phaseWindow{
			{"Discovery", 3},
			{"Pilot", int(math.Ceil(float64(horizonMonths) / 2))},
			{"Scale", horizonMonths},
		}
	}
}

// GenerateRoadmap builds the three-phase roadmap from the summary's goals.
// Every phase carries one milestone per goal; from the second phase on, each
// milestone depends on an earlier goal, and every milestone is focused on the
// first known barrier.
func GenerateRoadmap(summary types.Summary, horizonMonths int) types.Roadmap {
	phases := phaseWindows(horizonMonths)
	roadmap := make(types.Roadmap, len(phases))

	goals := summary[types.SummaryGoals]
	if len(goals) == 0 {
		goals = []string{defaultGoal}
	}
	barriers := summary[types.SummaryBarriers]
	if len(barriers) == 0 {
		barriers = []string{defaultBarrier}
	}

	for idx, phase := range phases {
		phaseNumber := idx + 1
		items := make([]types.RoadmapItem, 0, len(goals))
		for _, goal := range goals {
			dependency := ""
			if len(goals) > 1 && phaseNumber > 1 {
				dependency = goals[max(phaseNumber-2, 0)]
			}
			items = append(items, types.RoadmapItem{
				ID:           uuid.NewString(),
				Title:        fmt.Sprintf("Phase %d: %s", phaseNumber, goal),
				DueMonth:     phase.dueMonth,
				Dependency:   dependency,
				BarrierFocus: barriers[0],
			})
		}
		roadmap[phase.name] = items
	}
	return roadmap
}

// dueDate renders today + 30 days per month offset as YYYY-MM-DD.
func dueDate(today time.Time, monthOffset int) string {
	return today.AddDate(0, 0, 30*monthOffset).Format("2006-01-02")
}
