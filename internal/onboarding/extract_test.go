package onboarding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k2tech/ailab/internal/types"
)

func TestExtractSummaryBasic(t *testing.T) {
	text := "I am the Head of Ops. Our goal is cut costs by 10%. We struggle with legacy data."
	summary := ExtractSummary(text, types.Summary{})

	assert.Equal(t, []string{"Head of ops"}, summary[types.SummaryRole])
	assert.Equal(t, []string{"cut costs by 10%"}, summary[types.SummaryGoals])
	assert.Equal(t, []string{"legacy data"}, summary[types.SummaryBarriers])
	assert.Empty(t, summary[types.SummaryCurrentState])
}

func TestExtractSummaryAllCategories(t *testing.T) {
	text := "My role is data lead. We need to automate reporting. " +
		"The main challenge is siloed systems. Today we export everything by hand."
	summary := ExtractSummary(text, types.Summary{})

	assert.Equal(t, []string{"Data lead"}, summary[types.SummaryRole])
	assert.Equal(t, []string{"automate reporting"}, summary[types.SummaryGoals])
	assert.Equal(t, []string{"siloed systems"}, summary[types.SummaryBarriers])
	assert.Equal(t, []string{"export everything by hand"}, summary[types.SummaryCurrentState])
}

func TestExtractSummaryIdempotent(t *testing.T) {
	text := "I am the Head of Ops. Our goal is cut costs by 10%."
	first := ExtractSummary(text, types.Summary{})
	second := ExtractSummary(text, first)

	assert.Equal(t, first, second)
}

func TestExtractSummaryPreservesExisting(t *testing.T) {
	current := types.Summary{
		types.SummaryGoals: {"existing goal"},
	}
	summary := ExtractSummary("Our goal is launch a pilot.", current)

	require.Len(t, summary[types.SummaryGoals], 2)
	assert.Equal(t, "existing goal", summary[types.SummaryGoals][0])
	assert.Equal(t, "launch a pilot", summary[types.SummaryGoals][1])

	// The input map is untouched.
	assert.Len(t, current[types.SummaryGoals], 1)
}

func TestMergeSummaryOverrideFirst(t *testing.T) {
	base := types.Summary{
		types.SummaryGoals:    {"a", "b"},
		types.SummaryBarriers: {"x"},
	}
	override := types.Summary{
		types.SummaryGoals: {"b", "c"},
	}
	merged := MergeSummary(base, override)

	assert.Equal(t, []string{"b", "c", "a"}, merged[types.SummaryGoals])
	assert.Equal(t, []string{"x"}, merged[types.SummaryBarriers])
	assert.Empty(t, merged[types.SummaryRole])
	assert.Empty(t, merged[types.SummaryCurrentState])
}
