package hypothesis

import (
	"time"

	"github.com/k2tech/ailab/internal/storage"
	"github.com/k2tech/ailab/internal/types"
)

// Light is the compact list-view shape: enough for a portfolio table row.
type Light struct {
	HypID string      `json:"hypId"`
	Title string      `json:"title"`
	Stage types.Stage `json:"stage"`
	Owner string      `json:"owner"`
}

// SummaryItem is the dashboard card shape shown within a stage section.
type SummaryItem struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Owner       string         `json:"owner"`
	Stage       types.Stage    `json:"stage"`
	Impact      float64        `json:"impact"`
	Feasibility float64        `json:"feasibility"`
	Confidence  float64        `json:"confidence"`
	NextGate    string         `json:"nextGate,omitempty"`
	LastUpdated time.Time      `json:"lastUpdated"`
	Tags        []string       `json:"tags"`
	Priority    types.Priority `json:"priority"`
}

// Detail is the full single-hypothesis view: the record plus every owned
// sub-entity, with comments assembled into a reply tree and tasks derived
// from open checklist items and explicit task rows.
type Detail struct {
	Record       *types.HypothesisRecord    `json:"record"`
	StageHistory []*types.StageHistoryEntry `json:"stageHistory"`
	Checklist    []*types.ChecklistItem     `json:"gatingChecklist"`
	Tasks        []*types.Task              `json:"tasks"`
	Comments     []*types.Comment           `json:"comments"`
	Attachments  []*types.Attachment        `json:"attachments"`
	Approvals    []*types.Approval          `json:"approvals"`
	Activity     []*types.ActivityEvent     `json:"activity"`
	NextGate     string                     `json:"nextGate,omitempty"`
}

func primaryOwner(rec *types.HypothesisRecord) string {
	if len(rec.Owners) == 0 {
		return "Unassigned"
	}
	return rec.Owners[0].Name
}

func toLight(hyp *storage.Hypothesis) *Light {
	return &Light{
		HypID: hyp.Record.HypID,
		Title: hyp.Record.Title,
		Stage: hyp.Record.Stage,
		Owner: primaryOwner(hyp.Record),
	}
}

func toSummary(hyp *storage.Hypothesis) *SummaryItem {
	rec := hyp.Record
	lastUpdated := rec.UpdatedAt
	for _, entry := range hyp.StageHistory {
		if entry.ChangedAt.After(lastUpdated) {
			lastUpdated = entry.ChangedAt
		}
	}
	tags := rec.Tags
	if tags == nil {
		tags = []string{}
	}
	return &SummaryItem{
		ID:          rec.HypID,
		Title:       rec.Title,
		Owner:       primaryOwner(rec),
		Stage:       rec.Stage,
		Impact:      rec.ImpactScore,
		Feasibility: rec.FeasibilityScore,
		Confidence:  rec.ConfidenceScore,
		LastUpdated: lastUpdated,
		Tags:        tags,
		Priority:    rec.Priority,
	}
}

func toDetail(hyp *storage.Hypothesis, now time.Time) *Detail {
	return &Detail{
		Record:       hyp.Record,
		StageHistory: hyp.StageHistory,
		Checklist:    hyp.Checklist,
		Tasks:        deriveHypothesisTasks(hyp, now),
		Comments:     buildCommentTree(hyp.Comments),
		Attachments:  hyp.Attachments,
		Approvals:    hyp.Approvals,
		Activity:     hyp.Events,
		NextGate:     nextStageGate[hyp.Record.Stage],
	}
}

// buildCommentTree assembles the flat comment rows into a reply tree. Rows
// arrive in creation order, so parents are indexed before their replies;
// a reply whose parent is missing is promoted to a root rather than dropped.
func buildCommentTree(flat []*types.Comment) []*types.Comment {
	byID := make(map[string]*types.Comment, len(flat))
	for _, c := range flat {
		c.Replies = nil
		byID[c.ID] = c
	}

	var roots []*types.Comment
	for _, c := range flat {
		if c.ParentID == "" {
			roots = append(roots, c)
			continue
		}
		parent, ok := byID[c.ParentID]
		if !ok {
			roots = append(roots, c)
			continue
		}
		parent.Replies = append(parent.Replies, c)
	}
	return roots
}

// findComment walks the flat comment list by id.
func findComment(comments []*types.Comment, id string) *types.Comment {
	for _, c := range comments {
		if c.ID == id {
			return c
		}
	}
	return nil
}
