// Package state is the durable single source of truth for the narrative
// engine: per-timeline story pools, active slots, archives, escalation
// history, and per-story beat logs. It exclusively owns every Story and
// ActiveStory; the scheduler and weaver only borrow references for the
// duration of a tick.
//
// State is single-writer by design. The engine is tick-synchronous, so no
// internal locking is provided; concurrent mutation requires external
// coordination.
package state

import (
	"log/slog"
	"time"

	"github.com/vampirenirmal/storycast/internal/story"
	"github.com/vampirenirmal/storycast/internal/storage"
)

const schemaVersion = "1.0"

// ArchiveEntry records a finished story. The full story is retained, not
// just its ID, because the weaver mines archives for callback material
// (shared entities, themes, regions).
type ArchiveEntry struct {
	Story           story.Story  `json:"story"`
	Status          story.Status `json:"status"`
	ArchivedAt      time.Time    `json:"archived_at"`
	TotalBroadcasts int          `json:"total_broadcasts"`
	EngagementScore float64      `json:"engagement_score"`
	EscalationCount int          `json:"escalation_count"`
}

// EscalationRecord is one audit entry for a story promoted to a longer
// timeline.
type EscalationRecord struct {
	FromStoryID  string         `json:"from_story_id"`
	ToStoryID    string         `json:"to_story_id"`
	FromTimeline story.Timeline `json:"from_timeline"`
	ToTimeline   story.Timeline `json:"to_timeline"`
	EscalatedAt  time.Time      `json:"escalated_at"`
}

// BeatRecord is one logged beat in a story's broadcast history. Older
// records get collapsed into a single summary record to keep the history
// cheap to feed back into prompts.
type BeatRecord struct {
	Timestamp       time.Time `json:"timestamp"`
	ActNumber       int       `json:"act_number"`
	Summary         string    `json:"beat_summary"`
	Entities        []string  `json:"entities,omitempty"`
	ConflictLevel   float64   `json:"conflict_level"`
	TokenCount      int       `json:"token_count"`
	IsSummary       bool      `json:"is_summary,omitempty"`
	SummarizedCount int       `json:"summarized_count,omitempty"`
}

// State holds all narrative engine state for one world.
type State struct {
	store  storage.Storage
	path   string
	logger *slog.Logger

	createdAt    time.Time
	lastModified time.Time

	pools          map[story.Timeline][]story.Story
	active         map[story.Timeline]*story.ActiveStory
	completed      []ArchiveEntry
	abandoned      []ArchiveEntry
	escalations    []EscalationRecord
	beatHistory    map[string][]BeatRecord
	lastActivation map[story.Timeline]*time.Time
	broadcasts     map[story.Timeline]int
}

// New builds an empty state persisting through the given storage at path.
func New(store storage.Storage, path string, logger *slog.Logger) *State {
	if logger == nil {
		logger = slog.Default()
	}
	s := &State{
		store:     store,
		path:      path,
		logger:    logger,
		createdAt: time.Now(),
	}
	s.initEmpty()
	return s
}

func (s *State) initEmpty() {
	s.pools = make(map[story.Timeline][]story.Story)
	s.active = make(map[story.Timeline]*story.ActiveStory)
	s.lastActivation = make(map[story.Timeline]*time.Time)
	s.broadcasts = make(map[story.Timeline]int)
	for _, t := range story.Timelines() {
		s.pools[t] = nil
		s.active[t] = nil
		s.lastActivation[t] = nil
		s.broadcasts[t] = 0
	}
	s.completed = nil
	s.abandoned = nil
	s.escalations = nil
	s.beatHistory = make(map[string][]BeatRecord)
}

func (s *State) touch() {
	s.lastModified = time.Now()
}

// AddToPool queues a story on its timeline's FIFO pool. Idempotent by story
// ID: re-adding an already pooled story is a no-op.
func (s *State) AddToPool(st story.Story) {
	for _, existing := range s.pools[st.Timeline] {
		if existing.ID == st.ID {
			return
		}
	}
	s.pools[st.Timeline] = append(s.pools[st.Timeline], st)
	s.touch()
}

// Pool returns the queued stories for a timeline, oldest first.
func (s *State) Pool(t story.Timeline) []story.Story {
	return s.pools[t]
}

// PoolSize returns the number of queued stories for a timeline.
func (s *State) PoolSize(t story.Timeline) int {
	return len(s.pools[t])
}

// RemoveFromPool removes a story by ID. Returns false when not found.
func (s *State) RemoveFromPool(id string, t story.Timeline) bool {
	pool := s.pools[t]
	for i, st := range pool {
		if st.ID == id {
			s.pools[t] = append(pool[:i], pool[i+1:]...)
			s.touch()
			return true
		}
	}
	return false
}

// Active returns the active story occupying a timeline slot, or nil.
func (s *State) Active(t story.Timeline) *story.ActiveStory {
	return s.active[t]
}

// SetActive replaces a timeline's active slot. Passing nil clears the slot.
// Replacing does not archive: callers archive explicitly first.
func (s *State) SetActive(t story.Timeline, active *story.ActiveStory) {
	s.active[t] = active
	if active != nil {
		now := time.Now()
		s.lastActivation[t] = &now
	}
	s.touch()
}

// LastActivation returns when a story was last activated on the timeline.
func (s *State) LastActivation(t story.Timeline) *time.Time {
	return s.lastActivation[t]
}

// ArchiveStory files a finished story into the completed or abandoned
// archive according to its status. The archive keeps the full story for
// later callbacks.
func (s *State) ArchiveStory(active *story.ActiveStory) {
	entry := ArchiveEntry{
		Story:           active.Story,
		Status:          active.Status,
		ArchivedAt:      time.Now(),
		TotalBroadcasts: active.TotalBroadcasts,
		EngagementScore: active.EngagementScore,
		EscalationCount: active.EscalationCount,
	}
	if active.Status == story.StatusCompleted {
		s.completed = append(s.completed, entry)
	} else {
		s.abandoned = append(s.abandoned, entry)
	}
	s.touch()
}

// Completed returns the completed-story archive.
func (s *State) Completed() []ArchiveEntry {
	return s.completed
}

// Abandoned returns the abandoned-story archive.
func (s *State) Abandoned() []ArchiveEntry {
	return s.abandoned
}

// Archived returns both archives, completed first.
func (s *State) Archived() []ArchiveEntry {
	entries := make([]ArchiveEntry, 0, len(s.completed)+len(s.abandoned))
	entries = append(entries, s.completed...)
	entries = append(entries, s.abandoned...)
	return entries
}

// RecordEscalation appends an escalation audit entry. It performs no pool or
// slot manipulation; the escalation engine drives those separately.
func (s *State) RecordEscalation(fromID, toID string, from, to story.Timeline) {
	s.escalations = append(s.escalations, EscalationRecord{
		FromStoryID:  fromID,
		ToStoryID:    toID,
		FromTimeline: from,
		ToTimeline:   to,
		EscalatedAt:  time.Now(),
	})
	s.touch()
}

// Escalations returns the escalation audit log.
func (s *State) Escalations() []EscalationRecord {
	return s.escalations
}

// IncrementBroadcasts bumps the per-timeline broadcast counter.
func (s *State) IncrementBroadcasts(t story.Timeline) {
	s.broadcasts[t]++
	s.touch()
}

// Broadcasts returns the per-timeline broadcast count.
func (s *State) Broadcasts(t story.Timeline) int {
	return s.broadcasts[t]
}

// TotalActive counts occupied active slots across all timelines.
func (s *State) TotalActive() int {
	count := 0
	for _, active := range s.active {
		if active != nil {
			count++
		}
	}
	return count
}

// ClearTimeline wipes one timeline's pool, slot, and counters.
func (s *State) ClearTimeline(t story.Timeline) {
	s.pools[t] = nil
	s.active[t] = nil
	s.lastActivation[t] = nil
	s.broadcasts[t] = 0
	s.touch()
}

// Reset wipes all state back to empty.
func (s *State) Reset() {
	s.initEmpty()
	s.touch()
}
