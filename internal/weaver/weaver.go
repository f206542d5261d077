// Package weaver turns the scheduler's raw beats into a broadcast-ready
// bundle: beats ordered by timeline scale, intro and outro transitions,
// occasional callbacks to archived stories, and a prompt-context block for
// the script generator downstream.
package weaver

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/vampirenirmal/storycast/internal/state"
	"github.com/vampirenirmal/storycast/internal/story"
)

// Callback references a previously broadcast story that relates to one of
// the current beats.
type Callback struct {
	StoryID       string `json:"story_id"`
	StoryTitle    string `json:"story_title"`
	ReferenceText string `json:"reference_text"`
	Relationship  string `json:"relationship"`
}

// Woven is the full output of one weave: everything the script generator
// needs to place the stories inside a broadcast.
type Woven struct {
	OrderedBeats  []story.Beat `json:"ordered_beats"`
	IntroText     string       `json:"intro_text"`
	OutroText     string       `json:"outro_text"`
	ContextForLLM string       `json:"context_for_llm"`
	Callbacks     []Callback   `json:"callbacks"`
}

// Weaver composes beats and archive callbacks into broadcast structure.
type Weaver struct {
	state               *state.State
	rng                 *rand.Rand
	callbackProbability float64
}

// Option customizes a Weaver.
type Option func(*Weaver)

// WithRand injects a random source so tests can force or suppress the
// callback roll.
func WithRand(rng *rand.Rand) Option {
	return func(w *Weaver) {
		w.rng = rng
	}
}

// WithCallbackProbability overrides the per-beat callback chance.
func WithCallbackProbability(p float64) Option {
	return func(w *Weaver) {
		w.callbackProbability = p
	}
}

// New builds a weaver over the given state. The state provides the archives
// mined for callback material.
func New(st *state.State, opts ...Option) *Weaver {
	w := &Weaver{
		state:               st,
		rng:                 rand.New(rand.NewSource(time.Now().UnixNano())),
		callbackProbability: 0.25,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Weave orders the beats, generates transitions and callbacks, and builds
// the prompt context. An empty beat slice yields a zero-value Woven.
func (w *Weaver) Weave(beats []story.Beat) Woven {
	if len(beats) == 0 {
		return Woven{}
	}

	ordered := orderBeats(beats)
	callbacks := w.generateCallbacks(ordered)

	return Woven{
		OrderedBeats:  ordered,
		IntroText:     generateIntro(ordered),
		OutroText:     generateOutro(ordered),
		ContextForLLM: buildContext(ordered, callbacks),
		Callbacks:     callbacks,
	}
}

// orderBeats sorts by timeline scale, daily first and yearly last. The sort
// is stable so beats on the same timeline keep their scheduler order.
func orderBeats(beats []story.Beat) []story.Beat {
	ordered := make([]story.Beat, len(beats))
	copy(ordered, beats)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timeline.Rank() < ordered[j].Timeline.Rank()
	})
	return ordered
}

func generateIntro(beats []story.Beat) string {
	hasClimax := false
	for _, beat := range beats {
		if beat.ActType == story.ActClimax {
			hasClimax = true
			break
		}
	}

	if len(beats) == 1 {
		if hasClimax {
			return fmt.Sprintf("[STORY INTRO: Major development in story %s]", beats[0].StoryID)
		}
		return fmt.Sprintf("[STORY INTRO: Update on story %s]", beats[0].StoryID)
	}
	if hasClimax {
		return fmt.Sprintf("[STORY INTRO: %d stories today, including some major developments]", len(beats))
	}
	return fmt.Sprintf("[STORY INTRO: %d stories from across the wasteland]", len(beats))
}

func generateOutro(beats []story.Beat) string {
	if len(beats) == 1 {
		return "[STORY OUTRO: More on this as it develops]"
	}
	return fmt.Sprintf("[STORY OUTRO: That's %d stories for now, stay tuned for more]", len(beats))
}

// generateCallbacks rolls once per beat and, on success, references one
// related archived story. Few broadcasts carry callbacks; that scarcity is
// what keeps them feeling like memory rather than formula.
func (w *Weaver) generateCallbacks(beats []story.Beat) []Callback {
	var callbacks []Callback
	for _, beat := range beats {
		if w.rng.Float64() > w.callbackProbability {
			continue
		}
		related := w.findRelated(beat)
		if len(related) == 0 {
			continue
		}
		pick := related[w.rng.Intn(len(related))]
		if cb, ok := makeCallback(pick); ok {
			callbacks = append(callbacks, cb)
		}
	}
	return callbacks
}

// relatedStory pairs an archive entry with how it overlaps the current beat.
type relatedStory struct {
	entry          state.ArchiveEntry
	sharedEntities []string
	sharedThemes   []string
	sameTimeline   bool
}

// findRelated scans the archives for stories sharing entities with the beat
// or living on the same timeline.
func (w *Weaver) findRelated(beat story.Beat) []relatedStory {
	beatEntities := make(map[string]bool, len(beat.Entities))
	for _, e := range beat.Entities {
		beatEntities[e] = true
	}

	var related []relatedStory
	for _, entry := range w.state.Archived() {
		st := entry.Story

		var shared []string
		for _, candidate := range append(append(append([]string{}, st.Characters...), st.Locations...), st.Factions...) {
			if beatEntities[candidate] {
				shared = append(shared, candidate)
			}
		}
		sort.Strings(shared)

		sameTimeline := st.Timeline == beat.Timeline
		if len(shared) == 0 && !sameTimeline {
			continue
		}
		related = append(related, relatedStory{
			entry:          entry,
			sharedEntities: shared,
			sharedThemes:   st.Themes,
			sameTimeline:   sameTimeline,
		})
	}
	return related
}

func makeCallback(related relatedStory) (Callback, bool) {
	st := related.entry.Story
	switch {
	case len(related.sharedEntities) > 0:
		entity := related.sharedEntities[0]
		return Callback{
			StoryID:       st.ID,
			StoryTitle:    st.Title,
			ReferenceText: fmt.Sprintf("Remember the %s? %s is involved in this new situation.", st.Title, entity),
			Relationship:  "entity:" + entity,
		}, true
	case len(related.sharedThemes) > 0:
		theme := related.sharedThemes[0]
		return Callback{
			StoryID:       st.ID,
			StoryTitle:    st.Title,
			ReferenceText: fmt.Sprintf("This reminds me of the %s - same kind of %s situation.", st.Title, theme),
			Relationship:  "theme:" + theme,
		}, true
	case related.sameTimeline:
		return Callback{
			StoryID:       st.ID,
			StoryTitle:    st.Title,
			ReferenceText: fmt.Sprintf("Another %s story, just like the %s.", st.Timeline, st.Title),
			Relationship:  "timeline:" + string(st.Timeline),
		}, true
	default:
		return Callback{}, false
	}
}

// buildContext renders the prompt block fed to the script generator. The
// header strings are load-bearing: downstream prompt templates key on them.
func buildContext(beats []story.Beat, callbacks []Callback) string {
	if len(beats) == 0 && len(callbacks) == 0 {
		return ""
	}

	var b strings.Builder

	if len(beats) > 0 {
		b.WriteString("STORY BEATS FOR THIS BROADCAST:")
		for i, beat := range beats {
			fmt.Fprintf(&b, "\n\n%d. Story %s (%s, Act %d)", i+1, beat.StoryID, beat.Timeline, beat.ActNumber)
			fmt.Fprintf(&b, "\n   Type: %s", beat.ActType)
			fmt.Fprintf(&b, "\n   Summary: %s", beat.Summary)
			if len(beat.Entities) > 0 {
				listed := beat.Entities
				if len(listed) > 3 {
					listed = listed[:3]
				}
				fmt.Fprintf(&b, "\n   Entities: %s", strings.Join(listed, ", "))
			}
			fmt.Fprintf(&b, "\n   Tone: %s, Conflict: %.1f/1.0", beat.EmotionalTone, beat.ConflictLevel)
		}
	}

	if len(callbacks) > 0 {
		b.WriteString("\n\nCALLBACKS TO PREVIOUS STORIES:")
		for _, cb := range callbacks {
			fmt.Fprintf(&b, "\n- %s", cb.ReferenceText)
		}
	}

	b.WriteString("\n\nDIRECTIONS:")
	b.WriteString("\n- Weave these stories naturally into your broadcast segments")
	b.WriteString("\n- Maintain your DJ personality while delivering the story content")
	b.WriteString("\n- Use callbacks to create continuity with previous broadcasts")
	b.WriteString("\n- Respect the emotional tone and conflict level of each beat")

	return b.String()
}

// Summary renders a one-line digest of the beats for logs.
func Summary(beats []story.Beat) string {
	if len(beats) == 0 {
		return "No stories"
	}
	parts := make([]string, 0, len(beats))
	for _, beat := range beats {
		parts = append(parts, fmt.Sprintf("Story %s (%s)", beat.StoryID, beat.Timeline))
	}
	return strings.Join(parts, " | ")
}
