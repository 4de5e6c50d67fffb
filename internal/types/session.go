package types

import "time"

// Summary category keys populated by the onboarding extractor.
const (
	SummaryRole         = "role"
	SummaryGoals        = "goals"
	SummaryBarriers     = "barriers"
	SummaryCurrentState = "current_state"
)

// SummaryKeys lists the extractor categories in their canonical order.
var SummaryKeys = []string{SummaryRole, SummaryGoals, SummaryBarriers, SummaryCurrentState}

// Summary maps an extractor category to an ordered, deduplicated list of
// phrases pulled from session transcripts.
type Summary map[string][]string

// Clone returns a deep copy with all four category keys present.
func (s Summary) Clone() Summary {
	out := make(Summary, len(SummaryKeys))
	for key, values := range s {
		out[key] = append([]string(nil), values...)
	}
	for _, key := range SummaryKeys {
		if _, ok := out[key]; !ok {
			out[key] = []string{}
		}
	}
	return out
}

// RoadmapItem is a single milestone within a roadmap phase.
type RoadmapItem struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	DueMonth     int    `json:"dueMonth"`
	Dependency   string `json:"dependency,omitempty"`
	BarrierFocus string `json:"barrierFocus"`
}

// Roadmap maps a phase name (Discovery/Pilot/Scale) to its milestones.
type Roadmap map[string][]RoadmapItem

// SessionChecklistItem is a readiness checklist entry on an onboarding
// session. Distinct from the hypothesis gating ChecklistItem: these are plain
// per-session rows with a category and description.
type SessionChecklistItem struct {
	ID          string `json:"id"`
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	DueDate     string `json:"dueDate"` // YYYY-MM-DD
	Priority    string `json:"priority"`
	Status      string `json:"status"`
}

// Session statuses.
const (
	SessionActive    = "active"
	SessionCompleted = "completed"
	SessionDeleted   = "deleted"
)

// OnboardingSession captures one user's onboarding flow: consent flags, the
// extracted summary, the generated roadmap and checklist, and the readiness
// score derived from the checklist.
type OnboardingSession struct {
	ID                string                 `json:"id"`
	UserID            string                 `json:"userId"`
	Language          string                 `json:"language"`
	Mode              string                 `json:"mode"`
	Industry          string                 `json:"industry,omitempty"`
	Status            string                 `json:"status"`
	ReadinessScore    int                    `json:"readinessScore"`
	ConsentGiven      bool                   `json:"consentGiven"`
	VoiceConsent      bool                   `json:"voiceConsent"`
	ConsentTimestamp  *time.Time             `json:"consentTimestamp,omitempty"`
	TimeHorizonMonths int                    `json:"timeHorizonMonths"`
	ExtractedSummary  Summary                `json:"extractedSummary"`
	Roadmap           Roadmap                `json:"roadmap"`
	Checklist         []SessionChecklistItem `json:"checklist"`
	CreatedAt         time.Time              `json:"createdAt"`
	UpdatedAt         time.Time              `json:"updatedAt"`
	DeletedAt         *time.Time             `json:"-"`
}

// IsDeleted returns true if the session has been soft-deleted.
func (s *OnboardingSession) IsDeleted() bool {
	return s.DeletedAt != nil
}

// TranscriptEntry is a write-once record of text ingested into a session.
type TranscriptEntry struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Source    string    `json:"source"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionEvent is a write-once audit entry describing a session mutation.
// Payload is stored as a JSON blob; values vary by event type.
type SessionEvent struct {
	ID        string         `json:"id"`
	SessionID string         `json:"sessionId"`
	EventType string         `json:"eventType"`
	Payload   map[string]any `json:"payload"`
	CreatedAt time.Time      `json:"createdAt"`
}
