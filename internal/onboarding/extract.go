// Package onboarding implements the session onboarding flow: regex-based
// summary extraction from free text, roadmap and readiness checklist
// generation, the voice-command mini-language, and the readiness score.
//
// The extraction and command functions are pure: they copy their inputs and
// return new values, so concurrent calls across sessions need no locking.
package onboarding

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/k2tech/ailab/internal/types"
)

type patternGroup struct {
	key       string
	group     string
	normalize func(string) string
	patterns  []*regexp.Regexp
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		out[i] = regexp.MustCompile(`(?i)` + expr)
	}
	return out
}

// The four category groups run in a fixed order. Roles are capitalized;
// goals, barriers, and state phrases get trailing periods stripped.
var summaryPatterns = []patternGroup{
	{
		key:       types.SummaryRole,
		group:     "role",
		normalize: capitalizePhrase,
		patterns: compileAll(
			`i am the (?P<role>[a-z\s]+)`,
			`my role is (?P<role>[a-z\s]+)`,
			`as a (?P<role>[a-z\s]+)`,
		),
	},
	{
		key:       types.SummaryGoals,
		group:     "goal",
		normalize: stripTrailingPeriod,
		patterns: compileAll(
			`our goal is (?P<goal>.+?)\.`,
			`we need to (?P<goal>.+?)\.`,
			`i want to (?P<goal>.+?)\.`,
		),
	},
	{
		key:       types.SummaryBarriers,
		group:     "barrier",
		normalize: stripTrailingPeriod,
		patterns: compileAll(
			`our barrier is (?P<barrier>.+?)\.`,
			`we struggle with (?P<barrier>.+?)\.`,
			`the main challenge is (?P<barrier>.+?)\.`,
		),
	},
	{
		key:       types.SummaryCurrentState,
		group:     "state",
		normalize: stripTrailingPeriod,
		patterns: compileAll(
			`current state:? (?P<state>.+?)\.`,
			`today we (?P<state>.+?)\.`,
			`right now (?P<state>.+?)\.`,
		),
	},
}

// ExtractSummary runs the pattern table over text and appends each new match
// to the matching category of current. Dedup is by exact string with
// insertion order preserved; re-running over the same text is a no-op.
// The input summary is not mutated.
func ExtractSummary(text string, current types.Summary) types.Summary {
	summary := current.Clone()

	for _, group := range summaryPatterns {
		for _, pattern := range group.patterns {
			idx := pattern.SubexpIndex(group.group)
			for _, match := range pattern.FindAllStringSubmatch(text, -1) {
				value := group.normalize(strings.TrimSpace(match[idx]))
				if value == "" || contains(summary[group.key], value) {
					continue
				}
				summary[group.key] = append(summary[group.key], value)
			}
		}
	}
	return summary
}

// MergeSummary overlays override onto base: override entries come first,
// then base entries, deduplicated in that order.
func MergeSummary(base, override types.Summary) types.Summary {
	merged := make(types.Summary, len(types.SummaryKeys))
	for _, key := range types.SummaryKeys {
		var values []string
		for _, v := range append(append([]string{}, override[key]...), base[key]...) {
			if !contains(values, v) {
				values = append(values, v)
			}
		}
		if values == nil {
			values = []string{}
		}
		merged[key] = values
	}
	return merged
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

// capitalizePhrase lowercases the phrase and uppercases the first rune, so
// "Head of Ops" becomes "Head of ops".
func capitalizePhrase(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func stripTrailingPeriod(s string) string {
	return strings.TrimRight(s, ".")
}
