package lore

import (
	"fmt"
	"strings"

	"github.com/vampirenirmal/storycast/internal/story"
)

// Severity grades a validation issue. Only errors invalidate a story.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue is one canon violation or observation. Issues are values returned to
// the caller, never Go errors: validation outcomes are data.
type Issue struct {
	Severity Severity
	Category string
	Message  string
	Context  string
}

// Result is the outcome of validating one story against canon.
type Result struct {
	IsValid  bool
	Issues   []Issue
	Errors   int
	Warnings int
}

func newResult(issues []Issue) Result {
	result := Result{Issues: issues}
	for _, issue := range issues {
		switch issue.Severity {
		case SeverityError:
			result.Errors++
		case SeverityWarning:
			result.Warnings++
		}
	}
	result.IsValid = result.Errors == 0
	return result
}

var cooperationKeywords = []string{
	"alliance", "cooperate", "together", "allied", "partnership",
}

// Validator checks stories against an injected Canon.
type Validator struct {
	canon            *Canon
	conflictKeywords []string
}

// NewValidator builds a validator over the given canon. The conflict keyword
// list marks summaries that depict open hostilities; pass nil for the stock
// list.
func NewValidator(canon *Canon, conflictKeywords []string) *Validator {
	if conflictKeywords == nil {
		conflictKeywords = []string{"battle", "war", "fight", "attack", "combat", "clash"}
	}
	return &Validator{canon: canon, conflictKeywords: conflictKeywords}
}

// ValidateStory runs every canon check. Warnings never invalidate; the
// result is invalid iff at least one error-severity issue exists.
func (v *Validator) ValidateStory(st *story.Story) Result {
	var issues []Issue
	issues = append(issues, v.checkFactionConflicts(st)...)
	issues = append(issues, v.checkFactionEras(st)...)
	issues = append(issues, v.checkYearRange(st)...)
	issues = append(issues, v.checkCanonEvents(st)...)
	return newResult(issues)
}

// checkFactionConflicts flags hostile faction pairs appearing in the same
// story. Co-presence is an error unless the summary depicts the hostilities
// themselves, in which case the pairing is the story's own conflict and only
// an informational note is recorded. Explicit cooperation language between
// hostile factions is always an error.
func (v *Validator) checkFactionConflicts(st *story.Story) []Issue {
	if len(st.Factions) < 2 {
		return nil
	}

	summary := strings.ToLower(st.Summary)
	cooperating := containsAny(summary, cooperationKeywords)
	depictsConflict := containsAny(summary, v.conflictKeywords)

	var issues []Issue
	for i, a := range st.Factions {
		for _, b := range st.Factions[i+1:] {
			rel := v.canon.Relation(a, b)
			if !rel.Hostile() {
				continue
			}
			switch {
			case cooperating:
				issues = append(issues, Issue{
					Severity: SeverityError,
					Category: "faction",
					Message:  fmt.Sprintf("story shows cooperation between hostile factions %s and %s", a, b),
					Context:  fmt.Sprintf("factions are in %s relationship", rel),
				})
			case depictsConflict:
				issues = append(issues, Issue{
					Severity: SeverityInfo,
					Category: "faction",
					Message:  fmt.Sprintf("story depicts the %s between %s and %s", rel, a, b),
				})
			default:
				issues = append(issues, Issue{
					Severity: SeverityError,
					Category: "faction",
					Message:  fmt.Sprintf("hostile factions %s and %s appear together without depicted conflict", a, b),
					Context:  fmt.Sprintf("factions are in %s relationship", rel),
				})
			}
		}
	}
	return issues
}

// checkFactionEras flags factions referenced outside their existence window.
// References before founding or entirely after dissolution are errors;
// a range that merely extends past dissolution is a warning.
func (v *Validator) checkFactionEras(st *story.Story) []Issue {
	if st.YearMin == 0 || len(st.Factions) == 0 {
		return nil
	}

	var issues []Issue
	for _, faction := range st.Factions {
		window, ok := v.canon.Eras[faction]
		if !ok {
			continue
		}
		if st.YearMin < window.Founded {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Category: "timeline",
				Message:  fmt.Sprintf("faction %q referenced before it existed", faction),
				Context:  fmt.Sprintf("story year %d, faction founded %d", st.YearMin, window.Founded),
			})
		}
		if window.Dissolved == nil || st.YearMax == 0 {
			continue
		}
		dissolved := *window.Dissolved
		if st.YearMin > dissolved {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Category: "timeline",
				Message:  fmt.Sprintf("faction %q referenced after it dissolved", faction),
				Context:  fmt.Sprintf("story year %d, faction dissolved %d", st.YearMin, dissolved),
			})
		} else if st.YearMax > dissolved {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Category: "timeline",
				Message:  fmt.Sprintf("faction %q may not exist through the story's full timeframe", faction),
				Context:  fmt.Sprintf("story year %d, faction dissolved %d", st.YearMax, dissolved),
			})
		}
	}
	return issues
}

// checkYearRange flags inverted ranges as errors and pre-war references as
// warnings.
func (v *Validator) checkYearRange(st *story.Story) []Issue {
	var issues []Issue
	if st.YearMin != 0 && st.YearMax != 0 && st.YearMin > st.YearMax {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Category: "timeline",
			Message:  "story year_min is greater than year_max",
			Context:  fmt.Sprintf("year_min %d, year_max %d", st.YearMin, st.YearMax),
		})
	}
	if st.YearMin != 0 && st.YearMin < v.canon.PreWarYear {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Category: "timeline",
			Message:  "story references the pre-war era",
			Context:  fmt.Sprintf("year_min %d is before %d", st.YearMin, v.canon.PreWarYear),
		})
	}
	return issues
}

// checkCanonEvents warns when a summary references a fixed canon event
// outside the story's own timeframe.
func (v *Validator) checkCanonEvents(st *story.Story) []Issue {
	if st.YearMin == 0 || st.YearMax == 0 {
		return nil
	}

	summary := strings.ToLower(st.Summary)
	var issues []Issue
	for name, year := range v.canon.Events {
		keywords := strings.Split(strings.ReplaceAll(name, "_", " "), " ")
		if !containsAny(summary, keywords) {
			continue
		}
		if year < st.YearMin || year > st.YearMax {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Category: "timeline",
				Message:  fmt.Sprintf("canon event %q (%d) falls outside the story timeframe", name, year),
				Context:  fmt.Sprintf("story years %d-%d", st.YearMin, st.YearMax),
			})
		}
	}
	return issues
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
