package state

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vampirenirmal/storycast/internal/story"
)

// document is the on-disk shape of the whole state: one JSON document per
// world. Load/save symmetry is the only schema contract.
type document struct {
	SchemaVersion string    `json:"schema_version"`
	CreatedAt     time.Time `json:"created_at"`
	LastModified  time.Time `json:"last_modified"`

	Pools          map[story.Timeline][]story.Story        `json:"story_pools"`
	Active         map[story.Timeline]*story.ActiveStory   `json:"active_stories"`
	Completed      []ArchiveEntry                          `json:"completed_stories"`
	Abandoned      []ArchiveEntry                          `json:"abandoned_stories"`
	Escalations    []EscalationRecord                      `json:"escalation_history"`
	BeatHistory    map[string][]BeatRecord                 `json:"beat_history"`
	LastActivation map[story.Timeline]*time.Time           `json:"last_activation"`
	Broadcasts     map[story.Timeline]int                  `json:"broadcasts_by_timeline"`
}

func (s *State) toDocument() document {
	return document{
		SchemaVersion:  schemaVersion,
		CreatedAt:      s.createdAt,
		LastModified:   s.lastModified,
		Pools:          s.pools,
		Active:         s.active,
		Completed:      s.completed,
		Abandoned:      s.abandoned,
		Escalations:    s.escalations,
		BeatHistory:    s.beatHistory,
		LastActivation: s.lastActivation,
		Broadcasts:     s.broadcasts,
	}
}

func (s *State) fromDocument(doc document) {
	s.initEmpty()
	if !doc.CreatedAt.IsZero() {
		s.createdAt = doc.CreatedAt
	}
	s.lastModified = doc.LastModified
	for t, pool := range doc.Pools {
		if t.Valid() {
			s.pools[t] = pool
		}
	}
	for t, active := range doc.Active {
		if t.Valid() {
			s.active[t] = active
		}
	}
	s.completed = doc.Completed
	s.abandoned = doc.Abandoned
	s.escalations = doc.Escalations
	if doc.BeatHistory != nil {
		s.beatHistory = doc.BeatHistory
	}
	for t, ts := range doc.LastActivation {
		if t.Valid() {
			s.lastActivation[t] = ts
		}
	}
	for t, count := range doc.Broadcasts {
		if t.Valid() {
			s.broadcasts[t] = count
		}
	}
}

// Save writes the whole state through the storage layer. Save errors are
// always surfaced: a silent save failure would mean silently losing
// narrative progress.
func (s *State) Save(ctx context.Context) error {
	doc := s.toDocument()
	if doc.LastModified.IsZero() {
		doc.LastModified = time.Now()
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding story state: %w", err)
	}
	if err := s.store.Save(ctx, s.path, data); err != nil {
		return fmt.Errorf("saving story state: %w", err)
	}

	s.logger.Debug("story state saved",
		"path", s.path,
		"active", s.TotalActive(),
		"pooled", len(s.pools[story.TimelineDaily])+len(s.pools[story.TimelineWeekly])+len(s.pools[story.TimelineMonthly])+len(s.pools[story.TimelineYearly]))
	return nil
}

// Load reads the persisted document. A missing file yields empty state and
// no error; a corrupt file is logged and likewise degrades to empty state
// rather than taking the broadcast down.
func (s *State) Load(ctx context.Context) error {
	if !s.store.Exists(ctx, s.path) {
		return nil
	}

	data, err := s.store.Load(ctx, s.path)
	if err != nil {
		s.logger.Warn("failed to read story state, starting empty", "path", s.path, "error", err)
		s.initEmpty()
		return nil
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Warn("story state file is corrupt, starting empty", "path", s.path, "error", err)
		s.initEmpty()
		return nil
	}

	s.fromDocument(doc)
	return nil
}

// Snapshot serializes the state for checkpointing outside the normal
// persistence path.
func (s *State) Snapshot() ([]byte, error) {
	data, err := json.Marshal(s.toDocument())
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return data, nil
}

// Restore replaces the state from a Snapshot payload.
func (s *State) Restore(data []byte) error {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decoding snapshot: %w", err)
	}
	s.fromDocument(doc)
	return nil
}
