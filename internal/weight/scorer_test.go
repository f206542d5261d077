package weight

import (
	"testing"

	"github.com/vampirenirmal/storycast/internal/config"
	"github.com/vampirenirmal/storycast/internal/story"
)

func acts(conflicts ...float64) []story.Act {
	types := []story.ActType{story.ActSetup, story.ActRising, story.ActClimax, story.ActFalling, story.ActResolution}
	built := make([]story.Act, len(conflicts))
	for i, c := range conflicts {
		at := story.ActRising
		if i < len(types) {
			at = types[i]
		}
		built[i] = story.Act{ActNumber: i + 1, Type: at, ConflictLevel: c}
	}
	return built
}

func TestScoreCalibration(t *testing.T) {
	scorer := NewScorer()

	tests := []struct {
		name  string
		story story.Story
		below float64
		above float64
	}{
		{
			name: "fetch errand stays trivial",
			story: story.Story{
				Title:       "Fetch the Water Samples",
				Summary:     "Collect water samples and deliver them to the doctor. Simple task.",
				ContentType: "quest",
				Acts:        acts(0.2),
			},
			below: 5.0,
		},
		{
			name: "three act local mystery lands mid-band",
			story: story.Story{
				Title:       "The Missing Caravan",
				Summary:     "A caravan has gone missing on the trade route.",
				ContentType: "quest",
				Factions:    []string{"raiders"},
				Themes:      []string{"mystery"},
				Acts:        acts(0.3, 0.5, 0.4),
			},
			above: 4.0,
			below: 7.0,
		},
		{
			name: "five act multi faction arc is significant",
			story: story.Story{
				Title:       "Border Skirmishes Escalate",
				Summary:     "Tensions rise as patrols press along the border.",
				ContentType: "quest",
				Factions:    []string{"ncr", "raiders"},
				Themes:      []string{"conflict"},
				Acts:        acts(0.2, 0.4, 0.6, 0.8, 0.5),
			},
			above: 7.0,
		},
		{
			name: "three faction epic with full climax",
			story: story.Story{
				Title:       "The Second Battle of Hoover Dam",
				Summary:     "NCR and Legion war over the dam while the Brotherhood watches.",
				ContentType: "event",
				Factions:    []string{"ncr", "legion", "brotherhood"},
				Themes:      []string{"war", "survival"},
				Characters:  []string{"courier"},
				Acts:        acts(0.4, 0.6, 0.8, 1.0, 0.7),
			},
			above: 9.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := scorer.Score(&tt.story)
			if score < 1.0 || score > 10.0 {
				t.Fatalf("Score() = %v, outside [1, 10]", score)
			}
			if tt.above != 0 && score < tt.above {
				t.Errorf("Score() = %v, want >= %v", score, tt.above)
			}
			if tt.below != 0 && score >= tt.below {
				t.Errorf("Score() = %v, want < %v", score, tt.below)
			}
		})
	}
}

func TestScoreMonotonicInConflict(t *testing.T) {
	scorer := NewScorer()

	base := story.Story{
		Title:       "Contested Ground",
		Summary:     "Two groups press claims on the same territory.",
		ContentType: "event",
		Factions:    []string{"ncr"},
		Acts:        acts(0.2, 0.3, 0.4, 0.3, 0.2),
	}
	low := scorer.Score(&base)

	raised := base
	raised.Acts = acts(0.5, 0.7, 0.9, 0.7, 0.5)
	high := scorer.Score(&raised)

	if high < low {
		t.Errorf("raising conflict lowered score: %v -> %v", low, high)
	}
}

func TestScoreMonotonicInFactions(t *testing.T) {
	scorer := NewScorer()

	base := story.Story{
		Title:       "Contested Ground",
		Summary:     "Two groups press claims on the same territory.",
		ContentType: "event",
		Factions:    []string{"ncr"},
		Acts:        acts(0.2, 0.4, 0.6),
	}
	one := scorer.Score(&base)

	widened := base
	widened.Factions = []string{"ncr", "legion", "brotherhood"}
	three := scorer.Score(&widened)

	if three < one {
		t.Errorf("adding factions lowered score: %v -> %v", one, three)
	}
}

func TestCategorize(t *testing.T) {
	scorer := NewScorer()
	tests := []struct {
		score float64
		want  Category
	}{
		{1.0, CategoryTrivial},
		{3.0, CategoryTrivial},
		{3.1, CategoryMinor},
		{6.0, CategoryMinor},
		{6.1, CategorySignificant},
		{9.0, CategorySignificant},
		{9.1, CategoryEpic},
		{10.0, CategoryEpic},
	}
	for _, tt := range tests {
		if got := scorer.Categorize(tt.score); got != tt.want {
			t.Errorf("Categorize(%v) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestGateThresholdsInclusive(t *testing.T) {
	gate := NewGate(NewScorer(), config.Default().Admission)

	tests := []struct {
		score    float64
		timeline story.Timeline
		want     bool
	}{
		{0.9, story.TimelineDaily, false},
		{1.0, story.TimelineDaily, true},
		{4.9, story.TimelineWeekly, false},
		{5.0, story.TimelineWeekly, true},
		{6.9, story.TimelineMonthly, false},
		{7.0, story.TimelineMonthly, true},
		{8.9, story.TimelineYearly, false},
		{9.0, story.TimelineYearly, true},
	}
	for _, tt := range tests {
		if got := gate.Admissible(tt.score, tt.timeline); got != tt.want {
			t.Errorf("Admissible(%v, %v) = %v, want %v", tt.score, tt.timeline, got, tt.want)
		}
	}
}

func TestGateAdmitRejectsWeakWeeklyStory(t *testing.T) {
	gate := NewGate(NewScorer(), config.Default().Admission)

	weak := story.Story{
		Title:       "Fetch the Water Samples",
		Summary:     "Collect water samples and deliver them to the doctor. Simple task.",
		Timeline:    story.TimelineWeekly,
		ContentType: "quest",
		Acts:        acts(0.2),
	}
	if score, ok := gate.Admit(&weak); ok {
		t.Errorf("weak story admitted to weekly pool with score %v", score)
	}

	// The same weak story is rejected, not demoted: its timeline is
	// untouched after the gate runs.
	if weak.Timeline != story.TimelineWeekly {
		t.Errorf("gate mutated story timeline to %v", weak.Timeline)
	}
}

func TestFilterAndDistribution(t *testing.T) {
	scorer := NewScorer()
	stories := []story.Story{
		{
			Title:       "Fetch the Water Samples",
			Summary:     "Collect water samples and deliver them. Simple task.",
			ContentType: "quest",
			Acts:        acts(0.2),
		},
		{
			Title:       "The Second Battle of Hoover Dam",
			Summary:     "NCR and Legion war over the dam.",
			ContentType: "event",
			Factions:    []string{"ncr", "legion", "brotherhood"},
			Themes:      []string{"war", "survival"},
			Characters:  []string{"courier"},
			Acts:        acts(0.4, 0.6, 0.8, 1.0, 0.7),
		},
	}

	kept := scorer.FilterByMinimumWeight(stories, 7.0)
	if len(kept) != 1 || kept[0].Title != stories[1].Title {
		t.Errorf("FilterByMinimumWeight kept %d stories, want the epic only", len(kept))
	}

	dist := scorer.Distribution(stories)
	total := 0
	for _, n := range dist {
		total += n
	}
	if total != len(stories) {
		t.Errorf("Distribution counted %d stories, want %d", total, len(stories))
	}
}
