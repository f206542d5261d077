package story

import (
	"errors"
	"testing"
)

func fiveActStory() Story {
	return Story{
		ID:       "story_quest_test",
		Title:    "Test Story",
		Timeline: TimelineWeekly,
		Acts: []Act{
			{ActNumber: 1, Type: ActSetup, ConflictLevel: 0.2},
			{ActNumber: 2, Type: ActRising, ConflictLevel: 0.5},
			{ActNumber: 3, Type: ActClimax, ConflictLevel: 0.8},
			{ActNumber: 4, Type: ActFalling, ConflictLevel: 0.5},
			{ActNumber: 5, Type: ActResolution, ConflictLevel: 0.3},
		},
	}
}

func TestStoryValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Story)
		wantErr error
	}{
		{
			name:   "valid five act story",
			mutate: func(s *Story) {},
		},
		{
			name:    "no acts",
			mutate:  func(s *Story) { s.Acts = nil },
			wantErr: ErrNoActs,
		},
		{
			name:    "non-sequential act numbers",
			mutate:  func(s *Story) { s.Acts[2].ActNumber = 7 },
			wantErr: ErrActNumbering,
		},
		{
			name:    "act numbering starts at zero",
			mutate:  func(s *Story) { s.Acts[0].ActNumber = 0 },
			wantErr: ErrActNumbering,
		},
		{
			name: "inverted year range",
			mutate: func(s *Story) {
				s.YearMin = 2281
				s.YearMax = 2102
			},
			wantErr: ErrYearRangeInverted,
		},
		{
			name: "open year range is fine",
			mutate: func(s *Story) {
				s.YearMin = 2281
				s.YearMax = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := fiveActStory()
			tt.mutate(&st)
			err := st.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAverageConflict(t *testing.T) {
	st := fiveActStory()
	got := st.AverageConflict()
	want := (0.2 + 0.5 + 0.8 + 0.5 + 0.3) / 5.0
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("AverageConflict() = %v, want %v", got, want)
	}

	empty := Story{}
	if empty.AverageConflict() != 0 {
		t.Errorf("AverageConflict() on empty story = %v, want 0", empty.AverageConflict())
	}
}

func TestActiveStoryAdvance(t *testing.T) {
	active := NewActiveStory(fiveActStory())

	if active.Status != StatusActive {
		t.Fatalf("new active story status = %v, want %v", active.Status, StatusActive)
	}
	if act, ok := active.CurrentAct(); !ok || act.ActNumber != 1 {
		t.Fatalf("CurrentAct() = %v, %v, want act 1", act, ok)
	}

	wantStatus := []Status{StatusActive, StatusClimax, StatusFalling, StatusResolution}
	for i, want := range wantStatus {
		if !active.AdvanceAct() {
			t.Fatalf("AdvanceAct() %d returned false", i+1)
		}
		if active.Status != want {
			t.Errorf("after advance %d status = %v, want %v", i+1, active.Status, want)
		}
	}

	// Advancing past the final act completes the story.
	if !active.AdvanceAct() {
		t.Fatal("final AdvanceAct() returned false")
	}
	if !active.IsComplete() {
		t.Error("story not complete after advancing past final act")
	}
	if _, ok := active.CurrentAct(); ok {
		t.Error("CurrentAct() should report false once complete")
	}
	if active.AdvanceAct() {
		t.Error("AdvanceAct() on complete story should return false")
	}
}

func TestActiveStoryProgress(t *testing.T) {
	active := NewActiveStory(fiveActStory())
	if got := active.Progress(); got != 0 {
		t.Errorf("initial Progress() = %v, want 0", got)
	}
	active.AdvanceAct()
	if got := active.Progress(); got != 20 {
		t.Errorf("Progress() after one act = %v, want 20", got)
	}
	for active.AdvanceAct() {
	}
	if got := active.Progress(); got != 100 {
		t.Errorf("Progress() at completion = %v, want 100", got)
	}
}

func TestTimelineOrdering(t *testing.T) {
	order := Timelines()
	want := []Timeline{TimelineDaily, TimelineWeekly, TimelineMonthly, TimelineYearly}
	if len(order) != len(want) {
		t.Fatalf("Timelines() length = %d, want %d", len(order), len(want))
	}
	for i, tl := range want {
		if order[i] != tl {
			t.Errorf("Timelines()[%d] = %v, want %v", i, order[i], tl)
		}
		if order[i].Rank() != i {
			t.Errorf("%v.Rank() = %d, want %d", order[i], order[i].Rank(), i)
		}
	}
}

func TestTimelineNext(t *testing.T) {
	tests := []struct {
		from   Timeline
		want   Timeline
		wantOK bool
	}{
		{TimelineDaily, TimelineWeekly, true},
		{TimelineWeekly, TimelineMonthly, true},
		{TimelineMonthly, TimelineYearly, true},
		{TimelineYearly, TimelineYearly, false},
	}
	for _, tt := range tests {
		got, ok := tt.from.Next()
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("%v.Next() = %v, %v, want %v, %v", tt.from, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseTimeline(t *testing.T) {
	if tl, err := ParseTimeline("weekly"); err != nil || tl != TimelineWeekly {
		t.Errorf("ParseTimeline(weekly) = %v, %v", tl, err)
	}
	if _, err := ParseTimeline("fortnightly"); err == nil {
		t.Error("ParseTimeline(fortnightly) should fail")
	}
}
