package persona

import (
	"testing"

	"github.com/vampirenirmal/storycast/internal/story"
)

func TestValidateForDJFullyKnownStory(t *testing.T) {
	v := NewValidator(DefaultRegistry())

	st := story.Story{
		Title:         "Dam Dispute",
		Region:        "mojave",
		YearMin:       2280,
		YearMax:       2281,
		Factions:      []string{"ncr", "legion"},
		KnowledgeTier: story.TierCommon,
	}

	ctx := v.ValidateForDJ(&st, "mr_new_vegas")
	if !ctx.IsValid {
		t.Fatalf("fully known story invalid: %v", ctx.Issues)
	}
	if ctx.SuggestedFraming != story.FramingDirect {
		t.Errorf("framing = %v, want direct", ctx.SuggestedFraming)
	}
	if ctx.Confidence != ConfidenceHigh {
		t.Errorf("confidence = %v, want high", ctx.Confidence)
	}
}

func TestValidateForDJFutureStoryBecomesRumor(t *testing.T) {
	v := NewValidator(DefaultRegistry())

	// Julie broadcasts from 2102; a 2281 story is far in her future.
	st := story.Story{
		Title:   "Dam Dispute",
		Region:  "appalachia",
		YearMin: 2281,
		YearMax: 2281,
	}

	ctx := v.ValidateForDJ(&st, "julie")
	if ctx.IsValid {
		t.Fatal("future story should not validate cleanly")
	}
	if ctx.SuggestedFraming != story.FramingRumor {
		t.Errorf("framing = %v, want rumor", ctx.SuggestedFraming)
	}
	if ctx.Confidence != ConfidenceLow {
		t.Errorf("confidence = %v, want low", ctx.Confidence)
	}
	if len(ctx.Issues) == 0 {
		t.Error("expected at least one issue for a future story")
	}
}

func TestValidateForDJDistantRegionBecomesReport(t *testing.T) {
	v := NewValidator(DefaultRegistry())

	// In-time for three_dog but set in a region he has never seen.
	st := story.Story{
		Title:   "Mojave Trouble",
		Region:  "mojave",
		YearMin: 2276,
		YearMax: 2277,
	}

	ctx := v.ValidateForDJ(&st, "three_dog")
	if ctx.IsValid {
		t.Fatal("out-of-region story should not validate cleanly")
	}
	if ctx.SuggestedFraming != story.FramingReport {
		t.Errorf("framing = %v, want report", ctx.SuggestedFraming)
	}
	if ctx.Confidence != ConfidenceMedium {
		t.Errorf("confidence = %v, want medium", ctx.Confidence)
	}
}

func TestValidateForDJUnknownFactionForcesSpeculation(t *testing.T) {
	v := NewValidator(DefaultRegistry())

	// The Institute means nothing to Mr. New Vegas in 2281.
	st := story.Story{
		Title:    "Strange Synthetics",
		Region:   "mojave",
		YearMin:  2280,
		YearMax:  2281,
		Factions: []string{"institute"},
	}

	ctx := v.ValidateForDJ(&st, "mr_new_vegas")
	if ctx.IsValid {
		t.Fatal("unknown faction story should not validate cleanly")
	}
	if ctx.SuggestedFraming != story.FramingSpeculation {
		t.Errorf("framing = %v, want speculation", ctx.SuggestedFraming)
	}
	if ctx.Confidence != ConfidenceLow {
		t.Errorf("confidence = %v, want low", ctx.Confidence)
	}
}

func TestValidateForDJTierRestriction(t *testing.T) {
	v := NewValidator(DefaultRegistry())

	// Julie only reaches common and regional tiers.
	st := story.Story{
		Title:         "Sealed Records",
		Region:        "appalachia",
		YearMin:       2101,
		YearMax:       2102,
		KnowledgeTier: story.TierClassified,
	}

	ctx := v.ValidateForDJ(&st, "julie")
	if ctx.IsValid {
		t.Fatal("classified story should not validate for julie")
	}
	// Tier violations degrade confidence but leave the framing direct.
	if ctx.SuggestedFraming != story.FramingDirect {
		t.Errorf("framing = %v, want direct", ctx.SuggestedFraming)
	}
	if ctx.Confidence != ConfidenceLow {
		t.Errorf("confidence = %v, want low", ctx.Confidence)
	}
}

func TestValidateForDJUnknownPersonaIsPermissive(t *testing.T) {
	v := NewValidator(DefaultRegistry())

	st := story.Story{Title: "Anything", YearMin: 2281, YearMax: 2281}
	ctx := v.ValidateForDJ(&st, "nobody")
	if !ctx.IsValid {
		t.Error("unknown persona should be permissive")
	}
	if ctx.SuggestedFraming != story.FramingDirect {
		t.Errorf("framing = %v, want direct", ctx.SuggestedFraming)
	}
	if ctx.Confidence != ConfidenceMedium {
		t.Errorf("confidence = %v, want medium", ctx.Confidence)
	}
}

func TestCompatibleDJs(t *testing.T) {
	v := NewValidator(DefaultRegistry())

	// 2281 Mojave story: only Mr. New Vegas can carry it directly. Everyone
	// else fails on time or region.
	st := story.Story{
		Title:   "Dam Dispute",
		Region:  "mojave",
		YearMin: 2280,
		YearMax: 2281,
	}

	got := v.CompatibleDJs(&st)
	if len(got) != 1 || got[0] != "mr_new_vegas" {
		t.Errorf("CompatibleDJs = %v, want [mr_new_vegas]", got)
	}
}

func TestRegistryNamesSorted(t *testing.T) {
	names := DefaultRegistry().Names()
	want := []string{"julie", "mr_new_vegas", "three_dog", "travis_miles_confident"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %s, want %s", i, names[i], want[i])
		}
	}
}
