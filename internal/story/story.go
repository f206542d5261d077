package story

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNoActs            = errors.New("story has no acts")
	ErrActNumbering      = errors.New("act numbers must be sequential from 1")
	ErrYearRangeInverted = errors.New("year_min is greater than year_max")
)

// Act is one segment of a story. Each act can be broadcast independently but
// contributes to the overall arc.
type Act struct {
	ActNumber     int       `json:"act_number"`
	Type          ActType   `json:"act_type"`
	Title         string    `json:"title"`
	Summary       string    `json:"summary"`
	SourceChunks  []string  `json:"source_chunks,omitempty"`
	Entities      []string  `json:"entities,omitempty"`
	Themes        []string  `json:"themes,omitempty"`
	ConflictLevel float64   `json:"conflict_level"`
	EmotionalTone string    `json:"emotional_tone,omitempty"`
	BroadcastCount int      `json:"broadcast_count"`
	LastBroadcast *time.Time `json:"last_broadcast,omitempty"`
}

// Story is an immutable narrative template extracted from source content.
// Once pooled it is never edited; all mutable progression lives on ActiveStory.
type Story struct {
	ID       string   `json:"story_id"`
	Title    string   `json:"title"`
	Timeline Timeline `json:"timeline"`

	Acts    []Act  `json:"acts"`
	Summary string `json:"summary"`

	ContentType string   `json:"content_type"`
	Themes      []string `json:"themes,omitempty"`
	Factions    []string `json:"factions,omitempty"`
	Locations   []string `json:"locations,omitempty"`
	Characters  []string `json:"characters,omitempty"`

	Era     string `json:"era,omitempty"`
	Region  string `json:"region,omitempty"`
	YearMin int    `json:"year_min,omitempty"`
	YearMax int    `json:"year_max,omitempty"`

	DJCompatible     []string      `json:"dj_compatible,omitempty"`
	KnowledgeTier    KnowledgeTier `json:"knowledge_tier"`
	SuggestedFraming Framing       `json:"suggested_framing,omitempty"`

	SourceTitles []string  `json:"source_wiki_titles,omitempty"`
	ExtractedAt  time.Time `json:"extraction_date"`

	EstimatedBroadcasts int     `json:"estimated_broadcasts"`
	Priority            float64 `json:"priority"`
}

// Validate enforces the structural invariants every pooled story must hold:
// acts numbered exactly 1..N with no gaps, and a non-inverted year range.
func (s *Story) Validate() error {
	if len(s.Acts) == 0 {
		return ErrNoActs
	}
	for i, act := range s.Acts {
		if act.ActNumber != i+1 {
			return fmt.Errorf("%w: expected %d, got %d", ErrActNumbering, i+1, act.ActNumber)
		}
	}
	if s.YearMin != 0 && s.YearMax != 0 && s.YearMin > s.YearMax {
		return fmt.Errorf("%w: %d > %d", ErrYearRangeInverted, s.YearMin, s.YearMax)
	}
	return nil
}

// AverageConflict returns the mean conflict level across all acts.
func (s *Story) AverageConflict() float64 {
	if len(s.Acts) == 0 {
		return 0
	}
	var sum float64
	for _, act := range s.Acts {
		sum += act.ConflictLevel
	}
	return sum / float64(len(s.Acts))
}
