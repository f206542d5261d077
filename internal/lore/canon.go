// Package lore validates stories against world canon: faction relationships,
// faction lifespans, and dated canonical events. It has no notion of
// personas; per-persona knowledge boundaries live in the persona package.
package lore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Relation is the canonical relationship between two factions.
type Relation string

const (
	RelationAlly     Relation = "ally"
	RelationFriendly Relation = "friendly"
	RelationNeutral  Relation = "neutral"
	RelationUneasy   Relation = "uneasy"
	RelationHostile  Relation = "hostile"
	RelationWar      Relation = "war"
)

// Hostile reports whether the relation rules out peaceful co-presence.
func (r Relation) Hostile() bool {
	return r == RelationHostile || r == RelationWar
}

// Pair is an unordered faction pair key.
type Pair struct {
	A, B string
}

// EraWindow is the span a faction existed for. Dissolved nil means ongoing.
type EraWindow struct {
	Founded   int  `json:"founded"`
	Dissolved *int `json:"dissolved,omitempty"`
}

// Canon is the immutable world-canon tables a Validator checks against.
// It is injected configuration, not a process-wide singleton, so test
// fixtures and alternate worlds can carry their own canon.
type Canon struct {
	Conflicts map[Pair]Relation
	Eras      map[string]EraWindow
	Events    map[string]int
	// PreWarYear marks the boundary before which references are flagged
	// as pre-war (warning only).
	PreWarYear int
}

func yearPtr(y int) *int { return &y }

// DefaultCanon returns the stock canon tables for the wasteland setting.
func DefaultCanon() *Canon {
	return &Canon{
		Conflicts: map[Pair]Relation{
			{"ncr", "legion"}:                        RelationWar,
			{"ncr", "great_khans"}:                   RelationHostile,
			{"ncr", "brotherhood_mojave"}:            RelationUneasy,
			{"legion", "brotherhood"}:                RelationHostile,
			{"legion", "followers_apocalypse"}:       RelationHostile,
			{"legion", "great_khans"}:                RelationAlly,
			{"house", "legion"}:                      RelationHostile,
			{"house", "ncr"}:                         RelationUneasy,
			{"house", "brotherhood"}:                 RelationHostile,
			{"brotherhood_lyons", "enclave"}:         RelationWar,
			{"brotherhood_lyons", "talon_company"}:   RelationHostile,
			{"brotherhood_maxson", "institute"}:      RelationWar,
			{"brotherhood_maxson", "railroad"}:       RelationHostile,
			{"institute", "railroad"}:                RelationWar,
			{"institute", "minutemen"}:               RelationHostile,
			{"railroad", "minutemen"}:                RelationFriendly,
		},
		Eras: map[string]EraWindow{
			"brotherhood":           {Founded: 2082},
			"brotherhood_lyons":     {Founded: 2255, Dissolved: yearPtr(2278)},
			"brotherhood_maxson":    {Founded: 2283},
			"brotherhood_mojave":    {Founded: 2274},
			"ncr":                   {Founded: 2189},
			"legion":                {Founded: 2247, Dissolved: yearPtr(2283)},
			"enclave":               {Founded: 2077, Dissolved: yearPtr(2278)},
			"institute":             {Founded: 2110},
			"railroad":              {Founded: 2266},
			"minutemen":             {Founded: 2180, Dissolved: yearPtr(2240)},
			"minutemen_reformed":    {Founded: 2287},
			"followers_apocalypse":  {Founded: 2155},
			"great_khans":           {Founded: 2267},
			"responders":            {Founded: 2082, Dissolved: yearPtr(2096)},
			"free_states":           {Founded: 2082, Dissolved: yearPtr(2086)},
		},
		Events: map[string]int{
			"great_war":                  2077,
			"brotherhood_founded":        2082,
			"vault_76_opens":             2102,
			"the_master_defeated":        2162,
			"ncr_founded":                2189,
			"enclave_oil_rig_destroyed":  2241,
			"project_purity_activated":   2277,
			"hoover_dam_second_battle":   2281,
			"shady_sands_fall":           2283,
		},
		PreWarYear: 2077,
	}
}

// Relation returns the canonical relation between two factions. Lookup is
// symmetric; unknown pairs are neutral; the pseudo-faction "everyone" is
// hostile to all.
func (c *Canon) Relation(a, b string) Relation {
	if rel, ok := c.Conflicts[Pair{a, b}]; ok {
		return rel
	}
	if rel, ok := c.Conflicts[Pair{b, a}]; ok {
		return rel
	}
	if a == "everyone" || b == "everyone" {
		return RelationHostile
	}
	return RelationNeutral
}

// FactionExistsIn reports whether a faction existed in the given year.
// Unknown factions pass: the canon is permissive about what it does not know.
func (c *Canon) FactionExistsIn(faction string, year int) bool {
	window, ok := c.Eras[faction]
	if !ok {
		return true
	}
	if year < window.Founded {
		return false
	}
	if window.Dissolved != nil && year > *window.Dissolved {
		return false
	}
	return true
}

type canonOverlay struct {
	Relationships []struct {
		FactionA string `json:"faction_a"`
		FactionB string `json:"faction_b"`
		Relation string `json:"relation"`
	} `json:"relationships"`
	Events map[string]int `json:"events"`
}

// LoadOverlay merges faction relationships and events from JSON files in
// dataDir on top of the canon. Missing files are skipped.
func (c *Canon) LoadOverlay(dataDir string) error {
	relPath := filepath.Join(dataDir, "faction_relationships.json")
	if data, err := os.ReadFile(relPath); err == nil {
		var overlay canonOverlay
		if err := json.Unmarshal(data, &overlay); err != nil {
			return fmt.Errorf("parsing %s: %w", relPath, err)
		}
		for _, entry := range overlay.Relationships {
			c.Conflicts[Pair{entry.FactionA, entry.FactionB}] = Relation(entry.Relation)
		}
	}

	eventsPath := filepath.Join(dataDir, "world_timeline.json")
	if data, err := os.ReadFile(eventsPath); err == nil {
		var overlay canonOverlay
		if err := json.Unmarshal(data, &overlay); err != nil {
			return fmt.Errorf("parsing %s: %w", eventsPath, err)
		}
		for name, year := range overlay.Events {
			c.Events[name] = year
		}
	}
	return nil
}
