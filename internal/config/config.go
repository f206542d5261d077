// Package config loads the engine's tuning parameters from YAML with
// environment overrides. Everything heuristic about the engine — admission
// thresholds, act cadence, keyword lists, callback probability — lives here
// so the heuristics are swappable without touching scheduling logic.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/vampirenirmal/storycast/internal/story"
)

type Config struct {
	// World names the narrative world this engine instance schedules for.
	// One persistence document exists per world.
	World string `yaml:"world" validate:"required"`

	Persistence PersistenceConfig `yaml:"persistence"`
	Store       StoreConfig       `yaml:"store"`
	Extraction  ExtractionConfig  `yaml:"extraction"`
	Keywords    Keywords          `yaml:"keywords"`
	Admission   Admission         `yaml:"admission"`
	Cadence     CadenceConfig     `yaml:"cadence"`
	Weaver      WeaverConfig      `yaml:"weaver"`
	Escalation  EscalationConfig  `yaml:"escalation"`
}

type PersistenceConfig struct {
	// Path is the durable state file, one JSON document per world.
	Path string `yaml:"path" validate:"required"`
}

type StoreConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" validate:"min=1"`
	Burst             int `yaml:"burst" validate:"min=1"`
}

type ExtractionConfig struct {
	MaxStories int `yaml:"max_stories" validate:"min=1"`
	MinChunks  int `yaml:"min_chunks" validate:"min=1"`
	MaxChunks  int `yaml:"max_chunks" validate:"min=1"`
	QueryLimit int `yaml:"query_limit" validate:"min=1"`
}

// Keywords are the word lists driving the act-classification heuristic.
type Keywords struct {
	Conflict   []string `yaml:"conflict" validate:"min=1,dive,required"`
	Setup      []string `yaml:"setup" validate:"min=1,dive,required"`
	Resolution []string `yaml:"resolution" validate:"min=1,dive,required"`
}

// Admission holds the minimum narrative weight a story needs to enter each
// timeline pool. Boundaries are inclusive; a story failing its candidate
// timeline's threshold is rejected, never demoted.
type Admission struct {
	Daily   float64 `yaml:"daily" validate:"min=1,max=10"`
	Weekly  float64 `yaml:"weekly" validate:"min=1,max=10"`
	Monthly float64 `yaml:"monthly" validate:"min=1,max=10"`
	Yearly  float64 `yaml:"yearly" validate:"min=1,max=10"`
}

// Threshold returns the admission threshold for a timeline.
func (a Admission) Threshold(t story.Timeline) float64 {
	switch t {
	case story.TimelineDaily:
		return a.Daily
	case story.TimelineWeekly:
		return a.Weekly
	case story.TimelineMonthly:
		return a.Monthly
	default:
		return a.Yearly
	}
}

// TimelineCadence controls pacing for one timeline: how many broadcasts an
// act gets before it may advance, how often a beat is included, and the gap
// enforced between beats and between stories.
type TimelineCadence struct {
	MinBroadcastsPerAct  int     `yaml:"min_broadcasts_per_act" validate:"min=1"`
	MaxBroadcastsPerAct  int     `yaml:"max_broadcasts_per_act" validate:"min=1"`
	InclusionProbability float64 `yaml:"inclusion_probability" validate:"min=0,max=1"`
	MinSpacing           int     `yaml:"min_spacing" validate:"min=0"`
	CooldownBroadcasts   int     `yaml:"cooldown_broadcasts" validate:"min=0"`
}

type CadenceConfig struct {
	Daily   TimelineCadence `yaml:"daily"`
	Weekly  TimelineCadence `yaml:"weekly"`
	Monthly TimelineCadence `yaml:"monthly"`
	Yearly  TimelineCadence `yaml:"yearly"`
}

// For returns the cadence for a timeline.
func (c CadenceConfig) For(t story.Timeline) TimelineCadence {
	switch t {
	case story.TimelineDaily:
		return c.Daily
	case story.TimelineWeekly:
		return c.Weekly
	case story.TimelineMonthly:
		return c.Monthly
	default:
		return c.Yearly
	}
}

type WeaverConfig struct {
	CallbackProbability float64 `yaml:"callback_probability" validate:"min=0,max=1"`
}

type EscalationConfig struct {
	MinEngagement float64 `yaml:"min_engagement" validate:"min=0,max=1"`
	// MinBroadcasts gates escalation per source timeline.
	MinBroadcastsDaily   int `yaml:"min_broadcasts_daily" validate:"min=0"`
	MinBroadcastsWeekly  int `yaml:"min_broadcasts_weekly" validate:"min=0"`
	MinBroadcastsMonthly int `yaml:"min_broadcasts_monthly" validate:"min=0"`
	// BaseProbability per source timeline, before engagement and bonuses.
	BaseProbabilityDaily   float64 `yaml:"base_probability_daily" validate:"min=0,max=1"`
	BaseProbabilityWeekly  float64 `yaml:"base_probability_weekly" validate:"min=0,max=1"`
	BaseProbabilityMonthly float64 `yaml:"base_probability_monthly" validate:"min=0,max=1"`
}

// Default returns the canonical tuning the engine ships with.
func Default() *Config {
	return &Config{
		World: "wasteland",
		Persistence: PersistenceConfig{
			Path: "story_state.json",
		},
		Store: StoreConfig{
			RequestsPerMinute: 60,
			Burst:             5,
		},
		Extraction: ExtractionConfig{
			MaxStories: 10,
			MinChunks:  3,
			MaxChunks:  10,
			QueryLimit: 300,
		},
		Keywords: Keywords{
			Conflict: []string{
				"battle", "fight", "confrontation", "showdown", "attack",
				"raid", "conflict", "war", "combat", "struggle", "versus",
				"against",
			},
			Setup: []string{
				"begins", "starts", "arrives", "discovers", "finds", "meets",
				"introduction", "setup", "beginning", "first",
			},
			Resolution: []string{
				"victory", "defeat", "peace", "ended", "resolved",
				"concluded", "aftermath", "outcome", "result", "consequence",
			},
		},
		Admission: Admission{
			Daily:   1.0,
			Weekly:  5.0,
			Monthly: 7.0,
			Yearly:  9.0,
		},
		Cadence: CadenceConfig{
			Daily:   TimelineCadence{MinBroadcastsPerAct: 1, MaxBroadcastsPerAct: 3, InclusionProbability: 0.8, MinSpacing: 0, CooldownBroadcasts: 2},
			Weekly:  TimelineCadence{MinBroadcastsPerAct: 2, MaxBroadcastsPerAct: 6, InclusionProbability: 0.5, MinSpacing: 1, CooldownBroadcasts: 5},
			Monthly: TimelineCadence{MinBroadcastsPerAct: 3, MaxBroadcastsPerAct: 15, InclusionProbability: 0.3, MinSpacing: 3, CooldownBroadcasts: 10},
			Yearly:  TimelineCadence{MinBroadcastsPerAct: 5, MaxBroadcastsPerAct: 30, InclusionProbability: 0.15, MinSpacing: 10, CooldownBroadcasts: 20},
		},
		Weaver: WeaverConfig{
			CallbackProbability: 0.25,
		},
		Escalation: EscalationConfig{
			MinEngagement:          0.75,
			MinBroadcastsDaily:     2,
			MinBroadcastsWeekly:    5,
			MinBroadcastsMonthly:   15,
			BaseProbabilityDaily:   0.2,
			BaseProbabilityWeekly:  0.15,
			BaseProbabilityMonthly: 0.1,
		},
	}
}

// Load reads the config file at path, falling back to defaults for any
// omitted sections, then applies env overrides and validates. A missing file
// is not an error: the defaults are a complete working configuration.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	if statePath := os.Getenv("STORYCAST_STATE_PATH"); statePath != "" {
		cfg.Persistence.Path = statePath
	}
	if world := os.Getenv("STORYCAST_WORLD"); world != "" {
		cfg.World = world
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration against its struct tags plus the
// cross-field constraints the tags cannot express.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}
	for _, t := range story.Timelines() {
		cad := c.Cadence.For(t)
		if cad.MinBroadcastsPerAct > cad.MaxBroadcastsPerAct {
			return fmt.Errorf("cadence for %s: min broadcasts per act %d exceeds max %d",
				t, cad.MinBroadcastsPerAct, cad.MaxBroadcastsPerAct)
		}
	}
	return nil
}
