package story

import "time"

// ActiveStory wraps a Story with the mutable progression state the scheduler
// advances tick by tick. Once the story moves past its final act it is
// archived and never touched again.
type ActiveStory struct {
	Story  Story  `json:"story"`
	Status Status `json:"status"`

	CurrentActIndex int `json:"current_act_index"`
	TotalBroadcasts int `json:"total_broadcasts"`
	BroadcastsInAct int `json:"broadcasts_in_current_act"`

	StartedAt       time.Time  `json:"started_at"`
	LastBroadcastAt *time.Time `json:"last_broadcast_at,omitempty"`

	// Diagnostic signals. Bounded, recomputed after every beat, and never
	// used to hard-gate act advancement.
	EngagementScore float64 `json:"engagement_score"`
	NoveltyFactor   float64 `json:"novelty_factor"`

	EscalatedFrom   string `json:"escalated_from,omitempty"`
	EscalationCount int    `json:"escalation_count"`
	CanEscalate     bool   `json:"can_escalate"`
}

// NewActiveStory activates a pooled story at its first act.
func NewActiveStory(s Story) *ActiveStory {
	return &ActiveStory{
		Story:           s,
		Status:          StatusActive,
		StartedAt:       time.Now(),
		EngagementScore: 0.5,
		NoveltyFactor:   1.0,
		CanEscalate:     true,
	}
}

// CurrentAct returns the act currently on air, or false once the story has
// advanced past its final act.
func (a *ActiveStory) CurrentAct() (Act, bool) {
	if a.CurrentActIndex < 0 || a.CurrentActIndex >= len(a.Story.Acts) {
		return Act{}, false
	}
	return a.Story.Acts[a.CurrentActIndex], true
}

// IsComplete reports whether every act has been broadcast.
func (a *ActiveStory) IsComplete() bool {
	return a.CurrentActIndex >= len(a.Story.Acts)
}

// Progress returns completion as a percentage of acts finished.
func (a *ActiveStory) Progress() float64 {
	if len(a.Story.Acts) == 0 {
		return 100.0
	}
	return float64(a.CurrentActIndex) / float64(len(a.Story.Acts)) * 100.0
}

// AdvanceAct moves to the next act and resets the per-act broadcast counter.
// Returns false if the story was already complete. Advancing onto a climax or
// resolution act updates the status to match.
func (a *ActiveStory) AdvanceAct() bool {
	if a.IsComplete() {
		return false
	}

	a.CurrentActIndex++
	a.BroadcastsInAct = 0

	if a.IsComplete() {
		return true
	}

	switch a.Story.Acts[a.CurrentActIndex].Type {
	case ActClimax:
		a.Status = StatusClimax
	case ActFalling:
		a.Status = StatusFalling
	case ActResolution:
		a.Status = StatusResolution
	}
	return true
}

// Beat is one act's worth of narrative surfaced for a single broadcast tick.
// Beats are produced by the scheduler and consumed immediately by the weaver;
// they are never persisted.
type Beat struct {
	StoryID  string   `json:"story_id"`
	Timeline Timeline `json:"timeline"`

	ActNumber int     `json:"act_number"`
	ActType   ActType `json:"act_type"`

	Summary  string   `json:"beat_summary"`
	Entities []string `json:"entities,omitempty"`

	IntroSuggestion string `json:"intro_suggestion,omitempty"`
	OutroSuggestion string `json:"outro_suggestion,omitempty"`

	ConflictLevel float64 `json:"conflict_level"`
	EmotionalTone string  `json:"emotional_tone,omitempty"`
}
