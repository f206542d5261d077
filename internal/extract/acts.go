package extract

import (
	"sort"
	"strings"

	"github.com/vampirenirmal/storycast/internal/store"
	"github.com/vampirenirmal/storycast/internal/story"
)

// actSlot is one position in the fixed five-act shape with its baseline
// conflict level.
type actSlot struct {
	actType  story.ActType
	title    string
	conflict float64
}

var actSlots = []actSlot{
	{story.ActSetup, "Setup", 0.2},
	{story.ActRising, "Rising Action", 0.5},
	{story.ActClimax, "Climax", 0.8},
	{story.ActFalling, "Falling Action", 0.5},
	{story.ActResolution, "Resolution", 0.3},
}

// buildActs always produces the normalized five-act skeleton, spreading
// however many chunks arrived across the five slots and synthesizing
// placeholder beats for slots without dedicated source text. Keyword scans
// then bias each slot's conflict: conflict words push the rising/climax
// slots up, setup and resolution words ease the first and last slots down.
func (e *Extractor) buildActs(chunks []store.Chunk) []story.Act {
	if len(chunks) == 0 {
		return nil
	}

	acts := make([]story.Act, 0, len(actSlots))
	for i, slot := range actSlots {
		chunk := chunkForSlot(chunks, i)
		text := chunk.Text
		summary := text
		if len(summary) > 200 {
			summary = summary[:200] + "..."
		}
		if strings.TrimSpace(summary) == "" {
			summary = "The story continues to unfold."
		}

		conflict := slot.conflict
		lower := strings.ToLower(text)
		switch slot.actType {
		case story.ActRising, story.ActClimax:
			if matchesAny(lower, e.keywords.Conflict) {
				conflict = min(1.0, conflict+0.2)
			}
		case story.ActSetup:
			if matchesAny(lower, e.keywords.Setup) {
				conflict = max(0.1, conflict-0.1)
			}
		case story.ActResolution:
			if matchesAny(lower, e.keywords.Resolution) {
				conflict = max(0.1, conflict-0.1)
			}
		}

		var sourceChunks []string
		if chunk.ID != "" {
			sourceChunks = []string{chunk.ID}
		}

		acts = append(acts, story.Act{
			ActNumber:     i + 1,
			Type:          slot.actType,
			Title:         slot.title,
			Summary:       summary,
			SourceChunks:  sourceChunks,
			Entities:      chunkEntities(chunk),
			ConflictLevel: conflict,
			EmotionalTone: "neutral",
		})
	}
	return acts
}

// chunkForSlot distributes sparse chunk groups fairly across the five act
// slots; groups of five or more map one chunk per slot.
func chunkForSlot(chunks []store.Chunk, slot int) store.Chunk {
	switch len(chunks) {
	case 1:
		return chunks[0]
	case 2:
		if slot <= 1 {
			return chunks[0]
		}
		return chunks[1]
	case 3:
		return chunks[[]int{0, 1, 1, 2, 2}[slot]]
	case 4:
		return chunks[[]int{0, 1, 2, 2, 3}[slot]]
	default:
		return chunks[slot]
	}
}

func chunkEntities(chunk store.Chunk) []string {
	set := make(map[string]bool)
	for _, value := range []string{
		chunk.Metadata.Faction(),
		chunk.Metadata.Character(),
		chunk.Metadata.Location(),
	} {
		if value != "" {
			set[value] = true
		}
	}
	return sortedKeys(set)
}

// determineTimeline assigns a candidate timeline from group size and content
// type. Event content of a given size lands on an equal or longer timeline
// than quest content. This is only a candidate: the admission gate has the
// final say on whether the story may enter that pool.
func determineTimeline(chunks []store.Chunk, contentType string) story.Timeline {
	n := len(chunks)

	metaType := ""
	if len(chunks) > 0 {
		metaType = chunks[0].Metadata.ContentType()
	}

	switch {
	case contentType == "quest" || strings.Contains(metaType, "questline"):
		switch {
		case n >= 5:
			return story.TimelineMonthly
		case n >= 2:
			return story.TimelineWeekly
		default:
			return story.TimelineDaily
		}
	case contentType == "event":
		switch {
		case n >= 4:
			return story.TimelineMonthly
		case n >= 2:
			return story.TimelineWeekly
		default:
			return story.TimelineDaily
		}
	default:
		switch {
		case n >= 7:
			return story.TimelineMonthly
		case n >= 2:
			return story.TimelineWeekly
		default:
			return story.TimelineDaily
		}
	}
}

func extractFactions(chunks []store.Chunk) []string {
	set := make(map[string]bool)
	for _, chunk := range chunks {
		if f := chunk.Metadata.Faction(); f != "" {
			set[f] = true
		}
	}
	return sortedKeys(set)
}

func extractLocations(chunks []store.Chunk) []string {
	set := make(map[string]bool)
	for _, chunk := range chunks {
		if l := chunk.Metadata.Location(); l != "" {
			set[l] = true
		}
		if r := chunk.Metadata.Region(); r != "" {
			set[r] = true
		}
	}
	return sortedKeys(set)
}

func extractCharacters(chunks []store.Chunk) []string {
	set := make(map[string]bool)
	for _, chunk := range chunks {
		if c := chunk.Metadata.Character(); c != "" {
			set[c] = true
		}
	}
	return sortedKeys(set)
}

func extractThemes(chunks []store.Chunk) []string {
	set := make(map[string]bool)
	for _, chunk := range chunks {
		for _, theme := range chunk.Metadata.Themes() {
			set[theme] = true
		}
	}
	return sortedKeys(set)
}

// determineDJCompatibility is a cheap pre-filter mapping eras to the
// personas most likely to accept the story. The persona validator makes the
// real decision; unknown eras fall back to every persona.
func determineDJCompatibility(era string) []string {
	eraToDJs := map[string][]string{
		"fallout_76": {"julie"},
		"fallout_3":  {"three_dog"},
		"fallout_nv": {"mr_new_vegas"},
		"fallout_4":  {"travis_miles_confident"},
	}
	if djs, ok := eraToDJs[era]; ok {
		return djs
	}
	return []string{"julie", "three_dog", "mr_new_vegas", "travis_miles_confident"}
}

func determineKnowledgeTier(meta store.Metadata) story.KnowledgeTier {
	switch {
	case meta.Classified():
		return story.TierClassified
	case meta.Restricted():
		return story.TierRestricted
	case meta.Regional():
		return story.TierRegional
	default:
		return story.TierCommon
	}
}

func matchesAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
