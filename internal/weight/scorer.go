// Package weight scores stories on narrative complexity (1-10) and gates
// which timeline pools may admit them. The exact arithmetic is tuned to a
// calibration contract: fetch-style errands stay below 5, multi-faction
// arcs with ramping conflict land at 7+, and five-act multi-faction epics
// with a full-intensity climax reach 9+.
package weight

import (
	"math"
	"strings"

	"github.com/vampirenirmal/storycast/internal/story"
)

// Category buckets a narrative weight score.
type Category string

const (
	CategoryTrivial     Category = "trivial"
	CategoryMinor       Category = "minor"
	CategorySignificant Category = "significant"
	CategoryEpic        Category = "epic"
)

// Scorer computes narrative weight from a story's structure and metadata.
// The zero value is not usable; construct with NewScorer.
type Scorer struct {
	trivialKeywords     []string
	significantKeywords []string
	majorFactions       map[string]bool
	significantThemes   []string
}

// Option customizes a Scorer.
type Option func(*Scorer)

// WithMajorFactions replaces the major-faction set.
func WithMajorFactions(factions []string) Option {
	return func(s *Scorer) {
		s.majorFactions = make(map[string]bool, len(factions))
		for _, f := range factions {
			s.majorFactions[strings.ToLower(f)] = true
		}
	}
}

// WithKeywords replaces the trivial/significant keyword lists.
func WithKeywords(trivial, significant []string) Option {
	return func(s *Scorer) {
		s.trivialKeywords = trivial
		s.significantKeywords = significant
	}
}

// NewScorer builds a scorer with the stock keyword and faction tables.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		trivialKeywords: []string{
			"collect", "gather", "fetch", "retrieve", "find", "pick up",
			"deliver", "talk to", "return to", "simple", "minor", "small",
			"easy",
		},
		significantKeywords: []string{
			"main quest", "legendary", "critical", "major", "epic", "save",
			"destroy", "defend", "war", "battle", "defeat", "rescue",
			"betray", "reveal", "final", "ultimate",
		},
		majorFactions: map[string]bool{
			"brotherhood of steel": true,
			"brotherhood":          true,
			"ncr":                  true,
			"legion":               true,
			"caesar's legion":      true,
			"enclave":              true,
			"institute":            true,
			"railroad":             true,
			"minutemen":            true,
			"free states":          true,
			"free_states":          true,
			"responders":           true,
		},
		significantThemes: []string{
			"sacrifice", "betrayal", "redemption", "war", "survival",
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score returns the narrative weight of a story, clamped to [1, 10] and
// rounded to one decimal place. Monotonic in conflict level and faction
// count for otherwise-identical stories: every factor below is
// non-decreasing in both.
func (s *Scorer) Score(st *story.Story) float64 {
	score := 5.0

	text := strings.ToLower(st.Title + " " + st.Summary)

	trivial := 0.0
	for _, kw := range s.trivialKeywords {
		if strings.Contains(text, kw) {
			trivial += 0.5
		}
	}
	score -= math.Min(trivial, 2.0)

	significant := 0.0
	for _, kw := range s.significantKeywords {
		if strings.Contains(text, kw) {
			significant += 0.7
		}
	}
	score += math.Min(significant, 3.0)

	// Faction breadth: every faction widens the story, major factions
	// raise the stakes further.
	score += math.Min(float64(len(st.Factions))*0.3, 0.9)
	major := 0.0
	for _, faction := range st.Factions {
		if s.majorFactions[strings.ToLower(faction)] {
			major += 0.8
		}
	}
	score += math.Min(major, 2.0)

	switch n := len(st.Acts); {
	case n >= 7:
		score += 2.0
	case n >= 5:
		score += 1.5
	case n >= 3:
		score += 0.5
	case n <= 1:
		score -= 1.5
	}

	if len(st.Acts) > 0 {
		avg := st.AverageConflict()
		switch {
		case avg >= 0.8:
			score += 1.5
		case avg >= 0.6:
			score += 0.8
		case avg <= 0.3:
			score -= 0.5
		}

		peak := 0.0
		for _, act := range st.Acts {
			if act.ConflictLevel > peak {
				peak = act.ConflictLevel
			}
		}
		switch {
		case peak >= 0.95:
			score += 0.8
		case peak >= 0.85:
			score += 0.5
		}
	}

	switch st.ContentType {
	case "quest":
		score += 0.5
	case "event":
		score += 0.3
	}

	score += math.Min(float64(len(st.Themes))*0.3, 0.9)
	themed := 0.0
	for _, theme := range st.Themes {
		lower := strings.ToLower(theme)
		for _, sig := range s.significantThemes {
			if strings.Contains(lower, sig) {
				themed += 0.4
				break
			}
		}
	}
	score += math.Min(themed, 1.2)

	if len(st.Characters) > 0 {
		score += 0.5
	}

	score = math.Max(1.0, math.Min(10.0, score))
	return math.Round(score*10) / 10
}

// Categorize buckets a score into its narrative weight category.
func (s *Scorer) Categorize(score float64) Category {
	switch {
	case score <= 3.0:
		return CategoryTrivial
	case score <= 6.0:
		return CategoryMinor
	case score <= 9.0:
		return CategorySignificant
	default:
		return CategoryEpic
	}
}

// FilterByMinimumWeight drops stories scoring below minWeight.
func (s *Scorer) FilterByMinimumWeight(stories []story.Story, minWeight float64) []story.Story {
	var kept []story.Story
	for i := range stories {
		if s.Score(&stories[i]) >= minWeight {
			kept = append(kept, stories[i])
		}
	}
	return kept
}

// Distribution counts stories per weight category.
func (s *Scorer) Distribution(stories []story.Story) map[Category]int {
	dist := map[Category]int{
		CategoryTrivial:     0,
		CategoryMinor:       0,
		CategorySignificant: 0,
		CategoryEpic:        0,
	}
	for i := range stories {
		dist[s.Categorize(s.Score(&stories[i]))]++
	}
	return dist
}
