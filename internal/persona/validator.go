package persona

import (
	"fmt"

	"github.com/vampirenirmal/storycast/internal/story"
)

// Confidence grades how comfortably a persona can carry a story.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

func (c Confidence) downgrade() Confidence {
	switch c {
	case ConfidenceHigh:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Context is the validation outcome for one story/persona pairing.
// Violations accumulate in Issues; SuggestedFraming is always usable, even
// when the pairing is invalid, so callers can degrade gracefully instead of
// dropping the story.
type Context struct {
	IsValid          bool
	Issues           []string
	SuggestedFraming story.Framing
	Confidence       Confidence
}

// Validator checks stories against the knowledge boundaries in a Registry.
type Validator struct {
	registry Registry
}

// NewValidator builds a validator over an injected persona registry.
func NewValidator(registry Registry) *Validator {
	return &Validator{registry: registry}
}

// ValidateForDJ decides whether the named persona may broadcast the story.
// Framing precedence when multiple boundaries are violated: an unknown
// faction forces speculation, a future story forces rumor, and a distant
// region alone suggests a second-hand report.
func (v *Validator) ValidateForDJ(st *story.Story, djName string) Context {
	boundary, ok := v.registry[djName]
	if !ok {
		// Unknown persona: permissive, but flag reduced confidence.
		return Context{
			IsValid:          true,
			SuggestedFraming: story.FramingDirect,
			Confidence:       ConfidenceMedium,
		}
	}

	var issues []string
	framing := story.FramingDirect
	confidence := ConfidenceHigh

	if temporal := v.temporalIssues(st, boundary); len(temporal) > 0 {
		issues = append(issues, temporal...)
		framing = story.FramingRumor
		confidence = ConfidenceLow
	}

	if spatial := v.spatialIssues(st, boundary); len(spatial) > 0 {
		issues = append(issues, spatial...)
		if framing == story.FramingDirect {
			framing = story.FramingReport
		}
		confidence = confidence.downgrade()
	}

	if factions := v.factionIssues(st, boundary); len(factions) > 0 {
		issues = append(issues, factions...)
		framing = story.FramingSpeculation
		confidence = ConfidenceLow
	}

	if tier := v.tierIssues(st, boundary); len(tier) > 0 {
		issues = append(issues, tier...)
		confidence = ConfidenceLow
	}

	return Context{
		IsValid:          len(issues) == 0,
		Issues:           issues,
		SuggestedFraming: framing,
		Confidence:       confidence,
	}
}

func (v *Validator) temporalIssues(st *story.Story, b Boundary) []string {
	if st.YearMin == 0 && st.YearMax == 0 {
		return nil
	}
	var issues []string
	if st.YearMin > b.YearCurrent {
		issues = append(issues, fmt.Sprintf(
			"story year %d is after %s's current year %d", st.YearMin, b.DJName, b.YearCurrent))
	}
	if st.YearMax != 0 && st.YearMax < b.YearMin {
		issues = append(issues, fmt.Sprintf(
			"story year %d is before %s's earliest knowledge %d", st.YearMax, b.DJName, b.YearMin))
	}
	return issues
}

func (v *Validator) spatialIssues(st *story.Story, b Boundary) []string {
	// Specific locations are deliberately not checked: distant places can
	// surface in reports and rumors even when the region is out of reach.
	if st.Region == "" || b.knowsRegion(st.Region) {
		return nil
	}
	return []string{fmt.Sprintf(
		"story region %q is outside %s's known regions", st.Region, b.DJName)}
}

func (v *Validator) factionIssues(st *story.Story, b Boundary) []string {
	var issues []string
	for _, faction := range st.Factions {
		if b.factionUnknown(faction) {
			issues = append(issues, fmt.Sprintf(
				"faction %q is unknown to %s in %s", faction, b.DJName, b.GameEra))
		}
	}
	return issues
}

func (v *Validator) tierIssues(st *story.Story, b Boundary) []string {
	tier := st.KnowledgeTier
	if tier == "" {
		tier = story.TierCommon
	}
	if b.tierAllowed(tier) {
		return nil
	}
	return []string{fmt.Sprintf(
		"knowledge tier %q is not accessible to %s", tier, b.DJName)}
}

// CompatibleDJs returns every registered persona that validates cleanly for
// the story, in sorted name order.
func (v *Validator) CompatibleDJs(st *story.Story) []string {
	var compatible []string
	for _, name := range v.registry.Names() {
		if v.ValidateForDJ(st, name).IsValid {
			compatible = append(compatible, name)
		}
	}
	return compatible
}

// SuggestFraming returns the single framing the persona should use for the
// story. Direct only when fully valid.
func (v *Validator) SuggestFraming(st *story.Story, djName string) story.Framing {
	return v.ValidateForDJ(st, djName).SuggestedFraming
}
