package escalate

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/vampirenirmal/storycast/internal/config"
	"github.com/vampirenirmal/storycast/internal/state"
	"github.com/vampirenirmal/storycast/internal/storage"
	"github.com/vampirenirmal/storycast/internal/story"
)

func newTestState(t *testing.T) *state.State {
	t.Helper()
	return state.New(storage.NewFileSystem(t.TempDir()), "state.json", nil)
}

func activeStory(timeline story.Timeline, broadcasts int, engagement float64) *story.ActiveStory {
	st := story.Story{
		ID:       "story_x",
		Title:    "Escalation Candidate",
		Timeline: timeline,
		Summary:  "A promising story.",
		Acts: []story.Act{
			{ActNumber: 1, Type: story.ActSetup, Title: "Setup", Summary: "begins", ConflictLevel: 0.3},
			{ActNumber: 2, Type: story.ActRising, Title: "Rising Action", Summary: "builds", ConflictLevel: 0.5},
			{ActNumber: 3, Type: story.ActClimax, Title: "Climax", Summary: "peaks", ConflictLevel: 0.8},
			{ActNumber: 4, Type: story.ActResolution, Title: "Resolution", Summary: "ends", ConflictLevel: 0.3},
		},
	}
	active := story.NewActiveStory(st)
	active.TotalBroadcasts = broadcasts
	active.EngagementScore = engagement
	return active
}

func TestShouldEscalateGates(t *testing.T) {
	cfg := config.Default().Escalation
	// A rand source whose first Float64 is below any realistic probability
	// would make the roll pass; gate tests must fail before the roll.
	engine := New(newTestState(t), cfg, WithRand(rand.New(rand.NewSource(1))))

	tests := []struct {
		name   string
		active *story.ActiveStory
		want   bool
	}{
		{
			name:   "yearly stories never escalate",
			active: activeStory(story.TimelineYearly, 100, 1.0),
			want:   false,
		},
		{
			name: "escalation flag off",
			active: func() *story.ActiveStory {
				a := activeStory(story.TimelineDaily, 10, 1.0)
				a.CanEscalate = false
				return a
			}(),
			want: false,
		},
		{
			name:   "too few broadcasts",
			active: activeStory(story.TimelineDaily, 1, 1.0),
			want:   false,
		},
		{
			name:   "engagement below threshold",
			active: activeStory(story.TimelineDaily, 10, 0.5),
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := engine.ShouldEscalate(tt.active); got != tt.want {
				t.Errorf("ShouldEscalate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProbabilityBonusesAndCap(t *testing.T) {
	cfg := config.Default().Escalation
	engine := New(newTestState(t), cfg)

	plain := activeStory(story.TimelineDaily, 5, 0.75)
	base := engine.Probability(plain)
	if base != cfg.BaseProbabilityDaily {
		t.Errorf("plain probability = %v, want base %v", base, cfg.BaseProbabilityDaily)
	}

	boosted := activeStory(story.TimelineDaily, 5, 0.75)
	boosted.Story.Factions = []string{"brotherhood_of_steel"}
	boosted.Story.Locations = []string{"hoover_dam"}
	if got := engine.Probability(boosted); got <= base {
		t.Errorf("faction and location bonuses should raise probability: %v <= %v", got, base)
	}

	// Max out every multiplier; the cap must hold.
	capped := activeStory(story.TimelineDaily, 5, 1.0)
	capped.Story.Factions = []string{"brotherhood_of_steel", "ncr"}
	capped.Story.Locations = []string{"hoover_dam", "new_vegas"}
	if got := engine.Probability(capped); got > 0.95 {
		t.Errorf("probability %v exceeds the 0.95 cap", got)
	}
}

func TestEscalateDailyToWeeklyExpandsActs(t *testing.T) {
	st := newTestState(t)
	engine := New(st, config.Default().Escalation)

	active := activeStory(story.TimelineDaily, 5, 0.9)
	escalated, ok := engine.Escalate(active)
	if !ok {
		t.Fatal("Escalate returned false for a daily story")
	}

	if escalated.Timeline != story.TimelineWeekly {
		t.Errorf("timeline = %v, want weekly", escalated.Timeline)
	}
	if escalated.ID != "story_x_escalated_weekly" {
		t.Errorf("id = %q", escalated.ID)
	}
	if !strings.HasSuffix(escalated.Title, "(Extended)") {
		t.Errorf("title = %q, want (Extended) suffix", escalated.Title)
	}
	if len(escalated.Acts) != len(active.Story.Acts) {
		t.Errorf("expanded acts = %d, want same count %d", len(escalated.Acts), len(active.Story.Acts))
	}
	for i, act := range escalated.Acts {
		if act.ConflictLevel < active.Story.Acts[i].ConflictLevel {
			t.Errorf("act %d conflict dropped on expansion", i+1)
		}
	}

	// Original story is untouched.
	if active.Story.Timeline != story.TimelineDaily {
		t.Error("escalation mutated the original story")
	}
	if strings.Contains(active.Story.Acts[0].Summary, "Expanded") {
		t.Error("escalation mutated the original acts")
	}

	// Audit record lands in state.
	recs := st.Escalations()
	if len(recs) != 1 || recs[0].FromStoryID != "story_x" || recs[0].ToTimeline != story.TimelineWeekly {
		t.Errorf("escalation records = %+v", recs)
	}
}

func TestEscalateWeeklyToMonthlyAddsSubplots(t *testing.T) {
	engine := New(newTestState(t), config.Default().Escalation)

	active := activeStory(story.TimelineWeekly, 8, 0.9)
	escalated, ok := engine.Escalate(active)
	if !ok {
		t.Fatal("Escalate returned false")
	}

	if escalated.Timeline != story.TimelineMonthly {
		t.Errorf("timeline = %v, want monthly", escalated.Timeline)
	}
	if len(escalated.Acts) <= len(active.Story.Acts) {
		t.Errorf("subplot insertion should grow the act list: %d -> %d",
			len(active.Story.Acts), len(escalated.Acts))
	}

	// Act numbering must stay sequential for Validate.
	if err := escalated.Validate(); err != nil {
		t.Errorf("escalated story invalid: %v", err)
	}

	foundSubplot := false
	for _, act := range escalated.Acts {
		if strings.Contains(act.Title, "Complications") {
			foundSubplot = true
			if act.Type != story.ActRising {
				t.Errorf("subplot act type = %v, want rising", act.Type)
			}
		}
	}
	if !foundSubplot {
		t.Error("no subplot act inserted")
	}
}

func TestEscalateMonthlyToYearlySplitsThreads(t *testing.T) {
	engine := New(newTestState(t), config.Default().Escalation)

	active := activeStory(story.TimelineMonthly, 20, 0.9)
	escalated, ok := engine.Escalate(active)
	if !ok {
		t.Fatal("Escalate returned false")
	}

	if escalated.Timeline != story.TimelineYearly {
		t.Errorf("timeline = %v, want yearly", escalated.Timeline)
	}
	if err := escalated.Validate(); err != nil {
		t.Errorf("escalated story invalid: %v", err)
	}

	threadA, threadB := 0, 0
	for _, act := range escalated.Acts {
		if strings.HasPrefix(act.Summary, "Thread A:") {
			threadA++
		}
		if strings.HasPrefix(act.Summary, "Thread B:") {
			threadB++
		}
	}
	if threadA != len(active.Story.Acts) {
		t.Errorf("thread A acts = %d, want %d", threadA, len(active.Story.Acts))
	}
	// Setup and resolution stay single threaded; the middle acts split.
	if threadB != len(active.Story.Acts)-2 {
		t.Errorf("thread B acts = %d, want %d", threadB, len(active.Story.Acts)-2)
	}
}

func TestEscalateYearlyRefused(t *testing.T) {
	engine := New(newTestState(t), config.Default().Escalation)

	active := activeStory(story.TimelineYearly, 50, 1.0)
	if _, ok := engine.Escalate(active); ok {
		t.Error("yearly story must not escalate")
	}
}
