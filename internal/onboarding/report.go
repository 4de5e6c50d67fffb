package onboarding

import (
	"fmt"
	"strings"

	"github.com/k2tech/ailab/internal/types"
)

// BuildMarkdownReport renders a session export as Markdown: header metadata,
// the extracted summary, the roadmap by phase, the readiness checklist, and
// the ingested transcript.
func BuildMarkdownReport(session *types.OnboardingSession, transcript []*types.TranscriptEntry) string {
	var lines []string
	add := func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	add("# K2Tech AI Lab Onboarding — Session %s", session.ID)
	add("")
	add("**User:** %s | **Language:** %s | **Mode:** %s", session.UserID, session.Language, session.Mode)
	if session.Industry != "" {
		add("**Industry:** %s", session.Industry)
	}
	add("**Status:** %s | **Readiness:** %d%% | **Time Horizon:** %dm",
		session.Status, session.ReadinessScore, session.TimeHorizonMonths)
	add("")

	add("## Extracted Summary")
	for _, key := range types.SummaryKeys {
		label := titleWords(strings.ReplaceAll(key, "_", " "))
		rendered := "—"
		if values := session.ExtractedSummary[key]; len(values) > 0 {
			rendered = strings.Join(values, ", ")
		}
		add("- **%s:** %s", label, rendered)
	}
	add("")

	add("## Roadmap")
	for _, phase := range RoadmapPhases {
		items, ok := session.Roadmap[phase]
		if !ok {
			continue
		}
		add("### %s", phase)
		for _, item := range items {
			depText := ""
			if item.Dependency != "" {
				depText = fmt.Sprintf(" (depends on %s)", item.Dependency)
			}
			add("- %s — due month %d%s", item.Title, item.DueMonth, depText)
		}
		add("")
	}

	add("## Readiness Checklist")
	for _, item := range session.Checklist {
		add("- [%s] %s: %s — due %s", item.Status, item.Category, item.Title, item.DueDate)
	}
	add("")

	if len(transcript) > 0 {
		add("## Transcript")
		for _, entry := range transcript {
			add("- %s — %s: %s", entry.CreatedAt.Format("2006-01-02 15:04"), entry.Source, entry.Text)
		}
		add("")
	}

	return strings.TrimSpace(strings.Join(lines, "\n")) + "\n"
}
