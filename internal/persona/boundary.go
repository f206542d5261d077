// Package persona decides whether a specific broadcast persona may credibly
// narrate a story, given the persona's temporal, spatial, and faction
// knowledge boundaries. Failing validation is not a rejection: each failure
// mode maps to a degraded narrative framing (report, rumor, speculation) the
// downstream generator can use instead.
package persona

import (
	"sort"

	"github.com/vampirenirmal/storycast/internal/story"
)

// Boundary is everything a persona can plausibly know: when and where it
// lives, which regions and factions it has heard of, and which knowledge
// tiers it can access.
type Boundary struct {
	DJName      string `json:"dj_name"`
	GameEra     string `json:"game_era"`
	Region      string `json:"region"`
	YearCurrent int    `json:"year_current"`
	YearMin     int    `json:"year_min"`
	YearMax     int    `json:"year_max"`

	KnownRegions  []string `json:"known_regions"`
	PrimaryRegion string   `json:"primary_region"`

	AllowedTiers []story.KnowledgeTier `json:"allowed_tiers"`

	KnownFactions   []string `json:"known_factions"`
	UnknownFactions []string `json:"unknown_factions"`
}

func (b Boundary) knowsRegion(region string) bool {
	for _, r := range b.KnownRegions {
		if r == region {
			return true
		}
	}
	return false
}

func (b Boundary) factionUnknown(faction string) bool {
	for _, f := range b.UnknownFactions {
		if f == faction {
			return true
		}
	}
	return false
}

func (b Boundary) tierAllowed(tier story.KnowledgeTier) bool {
	for _, t := range b.AllowedTiers {
		if t == tier {
			return true
		}
	}
	return false
}

// Registry is the injected persona table. It is plain data so alternate
// configurations (test fixtures, other worlds) can coexist.
type Registry map[string]Boundary

// Names returns the registered persona names, sorted for determinism.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry returns the four stock broadcast personas.
func DefaultRegistry() Registry {
	return Registry{
		"julie": {
			DJName:        "julie",
			GameEra:       "fallout_76",
			Region:        "appalachia",
			YearCurrent:   2102,
			YearMin:       2077,
			YearMax:       2105,
			KnownRegions:  []string{"appalachia", "west_virginia"},
			PrimaryRegion: "appalachia",
			AllowedTiers:  []story.KnowledgeTier{story.TierCommon, story.TierRegional},
			KnownFactions: []string{
				"responders", "free_states", "raiders", "vault_76",
				"brotherhood_defectors", "scorched",
			},
			UnknownFactions: []string{
				"ncr", "legion", "institute", "railroad", "minutemen",
				"mr_house", "brotherhood",
			},
		},
		"three_dog": {
			DJName:        "three_dog",
			GameEra:       "fallout_3",
			Region:        "capital_wasteland",
			YearCurrent:   2277,
			YearMin:       2077,
			YearMax:       2277,
			KnownRegions:  []string{"capital_wasteland", "dc_area"},
			PrimaryRegion: "capital_wasteland",
			AllowedTiers:  []story.KnowledgeTier{story.TierCommon, story.TierRegional, story.TierRestricted},
			KnownFactions: []string{
				"brotherhood_lyons", "enclave", "super_mutants",
				"talon_company", "regulators", "slavers",
			},
			UnknownFactions: []string{
				"institute", "railroad", "minutemen", "synths",
			},
		},
		"mr_new_vegas": {
			DJName:        "mr_new_vegas",
			GameEra:       "fallout_nv",
			Region:        "mojave",
			YearCurrent:   2281,
			YearMin:       2077,
			YearMax:       2281,
			KnownRegions:  []string{"mojave", "new_vegas", "nevada"},
			PrimaryRegion: "mojave",
			AllowedTiers:  []story.KnowledgeTier{story.TierCommon, story.TierRegional, story.TierRestricted},
			KnownFactions: []string{
				"ncr", "legion", "mr_house", "brotherhood_mojave",
				"great_khans", "boomers", "followers_apocalypse",
				"white_glove", "omertas", "chairmen",
			},
			UnknownFactions: []string{
				"institute", "railroad", "minutemen", "synths",
				"responders", "free_states",
			},
		},
		"travis_miles_confident": {
			DJName:        "travis_miles_confident",
			GameEra:       "fallout_4",
			Region:        "commonwealth",
			YearCurrent:   2287,
			YearMin:       2077,
			YearMax:       2287,
			KnownRegions:  []string{"commonwealth", "boston", "massachusetts"},
			PrimaryRegion: "commonwealth",
			AllowedTiers:  []story.KnowledgeTier{story.TierCommon, story.TierRegional},
			KnownFactions: []string{
				"institute", "railroad", "brotherhood_maxson",
				"minutemen", "synths", "gunners", "diamond_city",
				"goodneighbor",
			},
			UnknownFactions: []string{
				"responders", "free_states", "scorched",
			},
		},
	}
}
