package state

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// RecordBeat appends a beat to a story's broadcast history.
func (s *State) RecordBeat(storyID, summary string, entities []string, actNumber int, conflict float64) {
	s.beatHistory[storyID] = append(s.beatHistory[storyID], BeatRecord{
		Timestamp:     time.Now(),
		ActNumber:     actNumber,
		Summary:       summary,
		Entities:      entities,
		ConflictLevel: conflict,
		TokenCount:    len(strings.Fields(summary)),
	})
	s.touch()
}

// StoryBeats returns a story's beat history with older beats collapsed into
// one summary record. The most recent recentCount beats stay in full detail;
// everything before them is condensed so the history stays cheap to feed
// into prompt context.
func (s *State) StoryBeats(storyID string, recentCount int) []BeatRecord {
	beats := s.beatHistory[storyID]
	if len(beats) == 0 {
		return nil
	}
	if recentCount <= 0 {
		recentCount = 5
	}
	if len(beats) <= recentCount {
		return beats
	}

	old := beats[:len(beats)-recentCount]
	recent := beats[len(beats)-recentCount:]

	result := make([]BeatRecord, 0, recentCount+1)
	result = append(result, summarizeBeats(old))
	result = append(result, recent...)
	return result
}

// BeatTokenCount approximates the prompt cost of a story's beat history
// after summarization.
func (s *State) BeatTokenCount(storyID string) int {
	total := 0
	for _, beat := range s.StoryBeats(storyID, 5) {
		total += beat.TokenCount
	}
	return total
}

func summarizeBeats(beats []BeatRecord) BeatRecord {
	entitySet := make(map[string]bool)
	var conflictSum float64
	for _, beat := range beats {
		for _, e := range beat.Entities {
			entitySet[e] = true
		}
		conflictSum += beat.ConflictLevel
	}

	entities := make([]string, 0, len(entitySet))
	for e := range entitySet {
		entities = append(entities, e)
	}
	sort.Strings(entities)

	listed := entities
	if len(listed) > 10 {
		listed = listed[:10]
	}
	var summary string
	if len(listed) > 0 {
		summary = fmt.Sprintf("Previous %d beats involved: %s", len(beats), strings.Join(listed, ", "))
	} else {
		summary = fmt.Sprintf("Previous %d beats covered early story development", len(beats))
	}

	return BeatRecord{
		Timestamp:       beats[len(beats)-1].Timestamp,
		Summary:         summary,
		Entities:        entities,
		ConflictLevel:   conflictSum / float64(len(beats)),
		TokenCount:      len(strings.Fields(summary)),
		IsSummary:       true,
		SummarizedCount: len(beats),
	}
}
