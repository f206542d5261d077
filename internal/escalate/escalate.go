// Package escalate promotes well-performing stories to longer timelines.
// A daily story with sustained engagement can grow into a weekly arc, a
// weekly into a monthly saga, a monthly into a yearly epic. Yearly stories
// never escalate. Each promotion transforms the act structure to fill the
// larger canvas and leaves an audit record in state.
package escalate

import (
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/vampirenirmal/storycast/internal/config"
	"github.com/vampirenirmal/storycast/internal/state"
	"github.com/vampirenirmal/storycast/internal/story"
)

// factionBonus weights escalation odds by the most prominent faction
// involved. Bigger players make bigger stories.
var factionBonus = map[string]float64{
	"brotherhood_of_steel": 1.3,
	"ncr":                  1.25,
	"caesar_legion":        1.25,
	"enclave":              1.2,
	"institute":            1.2,
	"railroad":             1.15,
	"raiders":              1.1,
	"super_mutants":        1.1,
}

// locationBonus weights escalation odds by setting importance.
var locationBonus = map[string]float64{
	"capital_wasteland": 1.2,
	"mojave_wasteland":  1.2,
	"commonwealth":      1.2,
	"appalachia":        1.15,
	"new_vegas":         1.25,
	"hoover_dam":        1.3,
	"diamond_city":      1.15,
}

// Engine evaluates and performs story escalations.
type Engine struct {
	state  *state.State
	cfg    config.EscalationConfig
	rng    *rand.Rand
	logger *slog.Logger
}

// Option customizes an Engine.
type Option func(*Engine)

// WithRand injects a random source for deterministic escalation rolls.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		e.rng = rng
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New builds an escalation engine over the given state.
func New(st *state.State, cfg config.EscalationConfig, opts ...Option) *Engine {
	e := &Engine{
		state:  st,
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ShouldEscalate reports whether an active story passes every escalation
// gate and wins the probability roll this tick.
func (e *Engine) ShouldEscalate(active *story.ActiveStory) bool {
	timeline := active.Story.Timeline

	if timeline == story.TimelineYearly {
		return false
	}
	if !active.CanEscalate {
		return false
	}
	if active.TotalBroadcasts < e.minBroadcasts(timeline) {
		return false
	}
	if active.EngagementScore < e.cfg.MinEngagement {
		return false
	}

	return e.rng.Float64() < e.Probability(active)
}

// Probability computes the escalation chance for a story that has passed
// the hard gates. Base probability scales with engagement above the
// threshold, then with the strongest faction and location bonuses, capped
// at 0.95 so escalation is never certain.
func (e *Engine) Probability(active *story.ActiveStory) float64 {
	st := active.Story

	prob := e.baseProbability(st.Timeline)
	prob *= active.EngagementScore / e.cfg.MinEngagement

	factionMult := 1.0
	for _, faction := range st.Factions {
		if bonus, ok := factionBonus[normalizeKey(faction)]; ok && bonus > factionMult {
			factionMult = bonus
		}
	}
	prob *= factionMult

	locationMult := 1.0
	for _, location := range st.Locations {
		if bonus, ok := locationBonus[normalizeKey(location)]; ok && bonus > locationMult {
			locationMult = bonus
		}
	}
	prob *= locationMult

	if prob > 0.95 {
		prob = 0.95
	}
	return prob
}

// Escalate builds the promoted story for the next timeline and records the
// escalation. The returned story carries a transformed act structure sized
// for the larger canvas; the caller is responsible for pooling it and
// retiring the original.
func (e *Engine) Escalate(active *story.ActiveStory) (story.Story, bool) {
	next, ok := active.Story.Timeline.Next()
	if !ok {
		return story.Story{}, false
	}

	escalated := transform(active.Story, next)
	e.state.RecordEscalation(active.Story.ID, escalated.ID, active.Story.Timeline, next)

	e.logger.Info("story escalated",
		"from_id", active.Story.ID, "to_id", escalated.ID,
		"from_timeline", active.Story.Timeline, "to_timeline", next,
		"engagement", active.EngagementScore, "broadcasts", active.TotalBroadcasts)

	return escalated, true
}

func (e *Engine) minBroadcasts(t story.Timeline) int {
	switch t {
	case story.TimelineDaily:
		return e.cfg.MinBroadcastsDaily
	case story.TimelineWeekly:
		return e.cfg.MinBroadcastsWeekly
	case story.TimelineMonthly:
		return e.cfg.MinBroadcastsMonthly
	default:
		return int(^uint(0) >> 1)
	}
}

func (e *Engine) baseProbability(t story.Timeline) float64 {
	switch t {
	case story.TimelineDaily:
		return e.cfg.BaseProbabilityDaily
	case story.TimelineWeekly:
		return e.cfg.BaseProbabilityWeekly
	case story.TimelineMonthly:
		return e.cfg.BaseProbabilityMonthly
	default:
		return 0
	}
}

func normalizeKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "_")
}

// transform rebuilds a story for its next timeline. Each transition reshapes
// the acts differently: daily arcs deepen, weekly arcs grow subplots,
// monthly arcs split into parallel threads.
func transform(st story.Story, next story.Timeline) story.Story {
	escalated := st
	escalated.Timeline = next
	escalated.ID = fmt.Sprintf("%s_escalated_%s", st.ID, next)
	escalated.Title = st.Title + " (Extended)"
	escalated.Summary = fmt.Sprintf("%s [Escalated from %s to %s]", st.Summary, st.Timeline, next)

	switch {
	case st.Timeline == story.TimelineDaily && next == story.TimelineWeekly:
		escalated.Acts = expandActs(st.Acts)
		escalated.EstimatedBroadcasts = len(escalated.Acts) * 3
	case st.Timeline == story.TimelineWeekly && next == story.TimelineMonthly:
		escalated.Acts = addSubplotActs(st.Acts)
		escalated.EstimatedBroadcasts = len(escalated.Acts) * 5
	case st.Timeline == story.TimelineMonthly && next == story.TimelineYearly:
		escalated.Acts = epicActs(st.Acts)
		escalated.EstimatedBroadcasts = len(escalated.Acts) * 10
	default:
		escalated.Acts = cloneActs(st.Acts)
	}

	return escalated
}

// expandActs deepens each act for the daily to weekly transition.
func expandActs(acts []story.Act) []story.Act {
	expanded := cloneActs(acts)
	for i := range expanded {
		expanded[i].ActNumber = i + 1
		expanded[i].Summary += " [Expanded with more detail and character development]"
		expanded[i].ConflictLevel = capConflict(expanded[i].ConflictLevel + 0.1)
		expanded[i].BroadcastCount = 0
		expanded[i].LastBroadcast = nil
	}
	return expanded
}

// addSubplotActs inserts a complication act after each non-resolution act
// for the weekly to monthly transition.
func addSubplotActs(acts []story.Act) []story.Act {
	var result []story.Act
	for i, act := range acts {
		main := cloneAct(act)
		main.ActNumber = len(result) + 1
		result = append(result, main)

		if act.Type != story.ActResolution && i < len(acts)-1 {
			result = append(result, story.Act{
				ActNumber:     len(result) + 1,
				Type:          story.ActRising,
				Title:         act.Title + " - Complications",
				Summary:       fmt.Sprintf("Subplot complicating %s: additional challenges and character development", act.Title),
				SourceChunks:  append([]string(nil), act.SourceChunks...),
				Entities:      append([]string(nil), act.Entities...),
				Themes:        append(append([]string(nil), act.Themes...), "complication"),
				ConflictLevel: capConflict(act.ConflictLevel + 0.15),
				EmotionalTone: "tense",
			})
		}
	}
	return result
}

// epicActs splits the story into parallel threads for the monthly to yearly
// transition. Setup and resolution stay single-threaded.
func epicActs(acts []story.Act) []story.Act {
	var result []story.Act
	for _, act := range acts {
		main := cloneAct(act)
		main.ActNumber = len(result) + 1
		main.Summary = "Thread A: " + act.Summary
		result = append(result, main)

		if act.Type != story.ActSetup && act.Type != story.ActResolution {
			parallel := cloneAct(act)
			parallel.ActNumber = len(result) + 1
			parallel.Title = act.Title + " - Parallel Events"
			parallel.Summary = "Thread B: Parallel events related to " + act.Title
			parallel.Themes = append(append([]string(nil), act.Themes...), "parallel_story")
			result = append(result, parallel)
		}
	}
	return result
}

func cloneActs(acts []story.Act) []story.Act {
	cloned := make([]story.Act, len(acts))
	for i, act := range acts {
		cloned[i] = cloneAct(act)
	}
	return cloned
}

func cloneAct(act story.Act) story.Act {
	c := act
	c.SourceChunks = append([]string(nil), act.SourceChunks...)
	c.Entities = append([]string(nil), act.Entities...)
	c.Themes = append([]string(nil), act.Themes...)
	c.BroadcastCount = 0
	c.LastBroadcast = nil
	return c
}

func capConflict(v float64) float64 {
	if v > 1.0 {
		return 1.0
	}
	return v
}
