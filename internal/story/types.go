package story

import "fmt"

// Timeline is the narrative scale a story plays out on. It governs how long
// the story stays active and how often its acts repeat on air.
type Timeline string

const (
	TimelineDaily   Timeline = "daily"
	TimelineWeekly  Timeline = "weekly"
	TimelineMonthly Timeline = "monthly"
	TimelineYearly  Timeline = "yearly"
)

// Timelines returns all timelines in canonical broadcast order,
// shortest scope first.
func Timelines() []Timeline {
	return []Timeline{TimelineDaily, TimelineWeekly, TimelineMonthly, TimelineYearly}
}

// Rank returns the ordering position of the timeline (daily=0 .. yearly=3).
// Unknown timelines sort last.
func (t Timeline) Rank() int {
	switch t {
	case TimelineDaily:
		return 0
	case TimelineWeekly:
		return 1
	case TimelineMonthly:
		return 2
	case TimelineYearly:
		return 3
	default:
		return 4
	}
}

// Next returns the next longer timeline, or false when already yearly.
func (t Timeline) Next() (Timeline, bool) {
	switch t {
	case TimelineDaily:
		return TimelineWeekly, true
	case TimelineWeekly:
		return TimelineMonthly, true
	case TimelineMonthly:
		return TimelineYearly, true
	default:
		return t, false
	}
}

// Valid reports whether t is one of the four known timelines.
func (t Timeline) Valid() bool {
	return t.Rank() < 4
}

// ParseTimeline converts a string into a Timeline.
func ParseTimeline(s string) (Timeline, error) {
	t := Timeline(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown timeline %q", s)
	}
	return t, nil
}

// Status tracks where an active story is in its life cycle.
type Status string

const (
	StatusDormant    Status = "dormant"
	StatusActive     Status = "active"
	StatusClimax     Status = "climax"
	StatusFalling    Status = "falling"
	StatusResolution Status = "resolution"
	StatusCompleted  Status = "completed"
	StatusAbandoned  Status = "abandoned"
)

// Terminal reports whether the status marks a story that will never
// progress again.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusAbandoned
}

// ActType is the narrative function of an act within the five-act shape.
type ActType string

const (
	ActSetup      ActType = "setup"
	ActRising     ActType = "rising"
	ActClimax     ActType = "climax"
	ActFalling    ActType = "falling"
	ActResolution ActType = "resolution"
)

// ActTypes returns the five act types in narrative order.
func ActTypes() []ActType {
	return []ActType{ActSetup, ActRising, ActClimax, ActFalling, ActResolution}
}

// KnowledgeTier classifies how widely a piece of lore is known.
type KnowledgeTier string

const (
	TierCommon     KnowledgeTier = "common"
	TierRegional   KnowledgeTier = "regional"
	TierRestricted KnowledgeTier = "restricted"
	TierClassified KnowledgeTier = "classified"
)

// Framing is how a persona should present a story it cannot fully vouch for.
type Framing string

const (
	FramingDirect      Framing = "direct"
	FramingReport      Framing = "report"
	FramingRumor       Framing = "rumor"
	FramingSpeculation Framing = "speculation"
)
