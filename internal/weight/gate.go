package weight

import (
	"github.com/vampirenirmal/storycast/internal/config"
	"github.com/vampirenirmal/storycast/internal/story"
)

// Gate is the timeline admission check: a story must score at least the
// target timeline's threshold to enter that pool. Boundaries are inclusive.
// A story that fails its candidate timeline is rejected outright, never
// demoted to a shorter timeline.
type Gate struct {
	scorer     *Scorer
	thresholds config.Admission
}

// NewGate builds an admission gate from a scorer and threshold table.
func NewGate(scorer *Scorer, thresholds config.Admission) *Gate {
	return &Gate{scorer: scorer, thresholds: thresholds}
}

// Admissible reports whether a story with the given score may enter the
// timeline's pool.
func (g *Gate) Admissible(score float64, timeline story.Timeline) bool {
	return score >= g.thresholds.Threshold(timeline)
}

// Admit scores the story against its own timeline and returns the score
// alongside the admission decision.
func (g *Gate) Admit(st *story.Story) (float64, bool) {
	score := g.scorer.Score(st)
	return score, g.Admissible(score, st.Timeline)
}
