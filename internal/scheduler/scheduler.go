// Package scheduler is the per-tick heart of the engine. Each broadcast
// tick walks the four timelines, emits at most one beat per active story,
// advances acts on their configured cadence, archives finished stories, and
// pulls replacements from the pools. A failure in one timeline never costs
// another timeline its beat.
package scheduler

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/vampirenirmal/storycast/internal/config"
	"github.com/vampirenirmal/storycast/internal/state"
	"github.com/vampirenirmal/storycast/internal/story"
)

// Scheduler drives story progression against a StoryState.
type Scheduler struct {
	state   *state.State
	cadence config.CadenceConfig
	rng     *rand.Rand
	logger  *slog.Logger

	tick               int
	lastBeatTick       map[story.Timeline]int
	lastCompletionTick map[story.Timeline]int
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithRand injects a random source, letting tests drive the probabilistic
// inclusion and advancement rolls deterministically.
func WithRand(rng *rand.Rand) Option {
	return func(s *Scheduler) {
		s.rng = rng
	}
}

// New builds a scheduler over the given state and cadence table.
func New(st *state.State, cadence config.CadenceConfig, opts ...Option) *Scheduler {
	s := &Scheduler{
		state:              st,
		cadence:            cadence,
		rng:                rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:             slog.Default(),
		lastBeatTick:       make(map[story.Timeline]int),
		lastCompletionTick: make(map[story.Timeline]int),
	}
	for _, t := range story.Timelines() {
		s.lastBeatTick[t] = -100
		s.lastCompletionTick[t] = -100
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tick returns the global broadcast counter.
func (s *Scheduler) Tick() int {
	return s.tick
}

// BeatsForBroadcast selects the story beats for the current broadcast. The
// global tick counter increments exactly once per call. Empty pools and
// empty slots are normal: a timeline with nothing to say simply contributes
// no beat.
func (s *Scheduler) BeatsForBroadcast() []story.Beat {
	s.tick++
	broadcastID := uuid.NewString()

	var beats []story.Beat
	for _, timeline := range story.Timelines() {
		beat, ok := s.runTimeline(timeline, broadcastID)
		if ok {
			beats = append(beats, beat)
		}
	}

	for _, timeline := range story.Timelines() {
		if s.state.Active(timeline) != nil {
			s.state.IncrementBroadcasts(timeline)
		}
	}

	s.logger.Debug("broadcast tick complete",
		"broadcast_id", broadcastID, "tick", s.tick, "beats", len(beats))
	return beats
}

// runTimeline processes one timeline for one tick. Panics are contained
// here so a single misbehaving timeline degrades only its own beat.
func (s *Scheduler) runTimeline(timeline story.Timeline, broadcastID string) (beat story.Beat, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("timeline failed during tick, skipping its beat",
				"timeline", timeline, "broadcast_id", broadcastID, "panic", r)
			ok = false
		}
	}()

	active := s.state.Active(timeline)
	if active != nil && s.shouldIncludeBeat(timeline, active) {
		beat, ok = s.emitBeat(timeline, active)
	}

	// Refill the slot whenever it is empty, whether the story just
	// finished or the timeline was idle coming into the tick.
	if s.state.Active(timeline) == nil {
		s.tryActivate(timeline)
	}
	return beat, ok
}

func (s *Scheduler) emitBeat(timeline story.Timeline, active *story.ActiveStory) (story.Beat, bool) {
	act, exists := active.CurrentAct()
	if !exists {
		return story.Beat{}, false
	}

	beat := story.Beat{
		StoryID:         active.Story.ID,
		Timeline:        timeline,
		ActNumber:       act.ActNumber,
		ActType:         act.Type,
		Summary:         act.Summary,
		Entities:        act.Entities,
		ConflictLevel:   act.ConflictLevel,
		EmotionalTone:   act.EmotionalTone,
		IntroSuggestion: introSuggestion(active),
		OutroSuggestion: outroSuggestion(active),
	}

	s.lastBeatTick[timeline] = s.tick

	now := time.Now()
	active.TotalBroadcasts++
	active.BroadcastsInAct++
	active.LastBroadcastAt = &now

	s.state.RecordBeat(active.Story.ID, act.Summary, act.Entities, act.ActNumber, act.ConflictLevel)
	s.updateEngagement(active)

	if s.shouldAdvanceAct(active) {
		active.AdvanceAct()
		if active.IsComplete() {
			active.Status = story.StatusCompleted
			s.state.ArchiveStory(active)
			s.state.SetActive(timeline, nil)
			s.lastCompletionTick[timeline] = s.tick
			s.logger.Info("story completed",
				"story_id", active.Story.ID, "timeline", timeline,
				"broadcasts", active.TotalBroadcasts)
		}
	}

	return beat, true
}

// shouldIncludeBeat applies the timeline's spacing rule and inclusion
// probability.
func (s *Scheduler) shouldIncludeBeat(timeline story.Timeline, active *story.ActiveStory) bool {
	cadence := s.cadence.For(timeline)

	since := s.tick - s.lastBeatTick[timeline]
	if since < cadence.MinSpacing {
		s.logger.Debug("beat skipped by spacing rule",
			"timeline", timeline, "ticks_since_last", since, "min_spacing", cadence.MinSpacing)
		return false
	}

	if s.rng.Float64() > cadence.InclusionProbability {
		s.logger.Debug("beat skipped by inclusion roll", "timeline", timeline)
		return false
	}
	return true
}

// shouldAdvanceAct decides whether the current act has had enough exposure.
// Below the timeline's minimum it never advances, at the maximum it always
// does, and in between there is a flat 30% chance per broadcast.
func (s *Scheduler) shouldAdvanceAct(active *story.ActiveStory) bool {
	cadence := s.cadence.For(active.Story.Timeline)

	if active.BroadcastsInAct >= cadence.MaxBroadcastsPerAct {
		return true
	}
	if active.BroadcastsInAct < cadence.MinBroadcastsPerAct {
		return false
	}
	return s.rng.Float64() < 0.3
}

// tryActivate pops the oldest pooled story into the timeline's empty slot,
// honoring the post-completion cooldown.
func (s *Scheduler) tryActivate(timeline story.Timeline) bool {
	cadence := s.cadence.For(timeline)

	if since := s.tick - s.lastCompletionTick[timeline]; since < cadence.CooldownBroadcasts {
		s.logger.Debug("activation blocked by cooldown",
			"timeline", timeline,
			"ticks_since_completion", since,
			"cooldown", cadence.CooldownBroadcasts)
		return false
	}

	pool := s.state.Pool(timeline)
	if len(pool) == 0 {
		return false
	}

	next := pool[0]
	active := story.NewActiveStory(next)
	s.state.SetActive(timeline, active)
	s.state.RemoveFromPool(next.ID, timeline)

	s.logger.Info("story activated",
		"story_id", next.ID, "title", next.Title, "timeline", timeline)
	return true
}

// updateEngagement recomputes the diagnostic engagement signals. Novelty
// decays with exposure, stories near resolution get a completion boost, and
// both values stay bounded. These signals never gate act advancement.
func (s *Scheduler) updateEngagement(active *story.ActiveStory) {
	novelty := 1.0 - float64(active.TotalBroadcasts)*0.05
	if novelty < 0.5 {
		novelty = 0.5
	}

	completion := 1.0 + active.Progress()/200.0

	engagement := 0.5 * novelty * completion
	if engagement < 0 {
		engagement = 0
	}
	if engagement > 1 {
		engagement = 1
	}

	active.EngagementScore = engagement
	active.NoveltyFactor = novelty
}

func introSuggestion(active *story.ActiveStory) string {
	if active.BroadcastsInAct == 0 {
		if active.CurrentActIndex == 0 {
			return "New story beginning"
		}
		return "Continuing our story"
	}
	return "As you may recall"
}

func outroSuggestion(active *story.ActiveStory) string {
	if active.CurrentActIndex >= len(active.Story.Acts)-1 {
		return "And that concludes this tale"
	}
	return "More on this later"
}

// ForceComplete is an administrative override that archives the timeline's
// active story as completed and clears the slot immediately. Returns false
// when the slot was already empty.
func (s *Scheduler) ForceComplete(timeline story.Timeline) bool {
	active := s.state.Active(timeline)
	if active == nil {
		return false
	}
	active.Status = story.StatusCompleted
	s.state.ArchiveStory(active)
	s.state.SetActive(timeline, nil)
	s.lastCompletionTick[timeline] = s.tick
	s.logger.Info("story force-completed", "story_id", active.Story.ID, "timeline", timeline)
	return true
}

// TimelineStatus describes one timeline in a Status snapshot.
type TimelineStatus struct {
	StoryID    string  `json:"story_id,omitempty"`
	Title      string  `json:"title,omitempty"`
	ActNumber  int     `json:"act_number,omitempty"`
	Progress   float64 `json:"progress"`
	Engagement float64 `json:"engagement"`
	PoolSize   int     `json:"pool_size"`
	Broadcasts int     `json:"broadcasts"`
}

// Status is a read-only snapshot of the scheduler and its state, suitable
// for logging or an operator dashboard.
type Status struct {
	Tick      int                               `json:"tick"`
	Timelines map[story.Timeline]TimelineStatus `json:"timelines"`
}

// Status reports the current tick and per-timeline occupancy without
// mutating anything.
func (s *Scheduler) Status() Status {
	status := Status{
		Tick:      s.tick,
		Timelines: make(map[story.Timeline]TimelineStatus, len(story.Timelines())),
	}
	for _, timeline := range story.Timelines() {
		ts := TimelineStatus{
			PoolSize:   s.state.PoolSize(timeline),
			Broadcasts: s.state.Broadcasts(timeline),
		}
		if active := s.state.Active(timeline); active != nil {
			ts.StoryID = active.Story.ID
			ts.Title = active.Story.Title
			ts.Progress = active.Progress()
			ts.Engagement = active.EngagementScore
			if act, ok := active.CurrentAct(); ok {
				ts.ActNumber = act.ActNumber
			}
		}
		status.Timelines[timeline] = ts
	}
	return status
}
