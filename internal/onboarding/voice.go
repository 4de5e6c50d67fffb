package onboarding

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/k2tech/ailab/internal/types"
)

// Voice command grammars, tried in priority order; the first match wins.
var (
	// \p{L} instead of \w so Cyrillic category names match.
	voiceAddChecklist  = regexp.MustCompile(`(?i)add checklist item (?P<category>[\p{L}\p{N}_\s]+): (?P<title>.+)`)
	voiceMarkChecklist = regexp.MustCompile(`(?i)mark (?P<title>.+?) as (?P<status>pending|in progress|completed)`)
	voiceAddGoal       = regexp.MustCompile(`(?i)add goal (?P<goal>.+)`)
	voiceSetHorizon    = regexp.MustCompile(`(?i)set horizon (?P<months>\d+)`)
)

var voiceStatusMapping = map[string]string{
	"pending":     ChecklistStatusPending,
	"in progress": ChecklistStatusInProgress,
	"completed":   ChecklistStatusCompleted,
}

const (
	horizonMin = 1
	horizonMax = 24
)

// VoiceCommandResult is what ApplyVoiceCommand hands back: the possibly
// updated artefacts plus an Applied map describing the change for the audit
// log. Applied is empty when the command matched nothing.
type VoiceCommandResult struct {
	Summary        types.Summary
	Checklist      []types.SessionChecklistItem
	HorizonMonths  int
	ReadinessScore int
	Applied        map[string]any
}

// ApplyVoiceCommand parses one of four command grammars and applies it to
// copies of the session artefacts:
//
//	add checklist item {category}: {title}
//	mark {title fragment} as {pending|in progress|completed}
//	add goal {text}
//	set horizon {months}
//
// An unrecognized command returns the inputs unchanged with an empty Applied
// map. The horizon is clamped to [1, 24] months.
func ApplyVoiceCommand(command string, summary types.Summary, checklist []types.SessionChecklistItem, horizonMonths int, today time.Time) VoiceCommandResult {
	result := VoiceCommandResult{
		Summary:       summary.Clone(),
		Checklist:     append([]types.SessionChecklistItem(nil), checklist...),
		HorizonMonths: horizonMonths,
		Applied:       map[string]any{},
	}

	command = strings.TrimSpace(command)

	switch {
	case voiceAddChecklist.MatchString(command):
		match := voiceAddChecklist.FindStringSubmatch(command)
		category := titleWords(strings.TrimSpace(match[voiceAddChecklist.SubexpIndex("category")]))
		title := strings.TrimRight(strings.TrimSpace(match[voiceAddChecklist.SubexpIndex("title")]), ".")
		if title == "" {
			title = category + " readiness"
		}
		priority := "medium"
		if highPriorityCategory(category) {
			priority = "high"
		}
		item := types.SessionChecklistItem{
			ID:          uuid.NewString(),
			Category:    category,
			Title:       title,
			Description: title,
			DueDate:     dueDate(today, min(result.HorizonMonths, len(result.Checklist)+1)),
			Priority:    priority,
			Status:      ChecklistStatusPending,
		}
		result.Checklist = append(result.Checklist, item)
		result.Applied["added_checklist_item"] = item

	case voiceMarkChecklist.MatchString(command):
		match := voiceMarkChecklist.FindStringSubmatch(command)
		fragment := strings.ToLower(strings.TrimSpace(match[voiceMarkChecklist.SubexpIndex("title")]))
		status := voiceStatusMapping[strings.ToLower(match[voiceMarkChecklist.SubexpIndex("status")])]
		// Only the first matching item is updated.
		for i := range result.Checklist {
			if strings.Contains(strings.ToLower(result.Checklist[i].Title), fragment) {
				result.Checklist[i].Status = status
				result.Applied["updated_checklist_item"] = map[string]any{
					"id":     result.Checklist[i].ID,
					"status": status,
				}
				break
			}
		}

	case voiceAddGoal.MatchString(command):
		match := voiceAddGoal.FindStringSubmatch(command)
		goal := strings.TrimRight(strings.TrimSpace(match[voiceAddGoal.SubexpIndex("goal")]), ".")
		if goal != "" && !contains(result.Summary[types.SummaryGoals], goal) {
			result.Summary[types.SummaryGoals] = append(result.Summary[types.SummaryGoals], goal)
			result.Applied["added_goal"] = goal
		}

	case voiceSetHorizon.MatchString(command):
		match := voiceSetHorizon.FindStringSubmatch(command)
		months, err := strconv.Atoi(match[voiceSetHorizon.SubexpIndex("months")])
		if err == nil {
			months = max(horizonMin, min(horizonMax, months))
			result.HorizonMonths = months
			result.Applied["time_horizon_months"] = months
		}
	}

	result.ReadinessScore = CalculateReadinessScore(result.Checklist)
	return result
}

// titleWords uppercases the first letter of every word and lowercases the
// rest, like Python's str.title for simple phrases.
func titleWords(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	startOfWord := true
	for _, r := range s {
		if unicode.IsLetter(r) {
			if startOfWord {
				b.WriteRune(unicode.ToUpper(r))
			} else {
				b.WriteRune(unicode.ToLower(r))
			}
			startOfWord = false
		} else {
			b.WriteRune(r)
			startOfWord = true
		}
	}
	return b.String()
}
