package validate

import (
	"fmt"
	"math"

	"eventflow/internal/graph"
	"eventflow/internal/narrative"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeDanglingTarget    = "dangling_target"
	codeDuplicateTarget   = "duplicate_target"
	codeMixedModeTargets  = "mixed_mode_targets"
	codeProbabilitySum    = "probability_sum_invalid"
	codeNegativeWeight    = "negative_probability"
	codeCheckWithoutEdges = "skill_check_without_outcomes"
	codeDuplicateStarter  = "duplicate_starter"
	codeStarterDrift      = "starter_pointer_drift"
	codeNoStarter         = "no_starter"
	codeUnreachableEvent  = "unreachable_event"
	codeEffectOutOfRange  = "effect_out_of_range"
)

type Issue struct {
	Severity Severity
	Code     string
	Message  string
	EventID  string
	Option   int
}

type Report struct {
	Issues []Issue
}

// HasErrors reports whether the audit found anything beyond warnings.
func (r *Report) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Run audits a loaded storyline graph. The engine keeps these invariants
// on every mutation, so findings here point at hand-edited rows or
// partial imports rather than engine bugs.
func Run(model *graph.Model) *Report {
	issues := make([]Issue, 0)

	for _, event := range model.Events() {
		for i := range event.Options {
			issues = append(issues, auditOption(model, event, i)...)
		}
	}
	issues = append(issues, auditStarter(model)...)
	issues = append(issues, auditReachability(model)...)

	return &Report{Issues: issues}
}

func auditOption(model *graph.Model, event *narrative.Event, index int) []Issue {
	option := &event.Options[index]
	var issues []Issue

	issue := func(severity Severity, code, format string, args ...any) {
		issues = append(issues, Issue{
			Severity: severity,
			Code:     code,
			Message:  fmt.Sprintf(format, args...),
			EventID:  event.ID,
			Option:   index,
		})
	}

	outcomes, plain := 0, 0
	seen := make(map[string]int, len(option.Targets))
	for _, target := range option.Targets {
		if model.Event(target.EventID) == nil {
			issue(SeverityError, codeDanglingTarget, "target %s does not exist", target.EventID)
		}
		if target.Probability < 0 {
			issue(SeverityError, codeNegativeWeight, "target %s has probability %v", target.EventID, target.Probability)
		}
		if target.IsSkillCheckOutcome {
			outcomes++
		} else {
			plain++
		}
		seen[targetKey(target)]++
	}
	for key, count := range seen {
		if count > 1 {
			issue(SeverityError, codeDuplicateTarget, "target %s appears %d times", key, count)
		}
	}

	if outcomes > 0 && plain > 0 {
		issue(SeverityError, codeMixedModeTargets, "option mixes probability and skill-check targets")
	}

	switch {
	case option.HasSkillCheck():
		if outcomes == 0 && plain == 0 {
			issue(SeverityWarn, codeCheckWithoutEdges, "skill check on %s has no outcome targets", option.SkillCheck.Skill)
		}
		if plain > 0 {
			issue(SeverityError, codeMixedModeTargets, "skill-check option holds probability targets")
		}
	case outcomes > 0:
		issue(SeverityError, codeMixedModeTargets, "outcome targets without a skill check")
	case plain > 0:
		sum := narrative.ProbabilitySum(option.Targets)
		if math.Abs(sum-1) > narrative.SumTolerance {
			issue(SeverityError, codeProbabilitySum, "probabilities sum to %v", sum)
		}
	}

	for _, effect := range option.Effects {
		if effect.Value < narrative.EffectValueMin || effect.Value > narrative.EffectValueMax {
			issue(SeverityError, codeEffectOutOfRange, "effect on %s has value %d", effect.Skill, effect.Value)
		}
	}

	return issues
}

func targetKey(target narrative.Target) string {
	if !target.IsSkillCheckOutcome {
		return target.EventID
	}
	if target.IsSuccess {
		return target.EventID + "/success"
	}
	return target.EventID + "/failure"
}

func auditStarter(model *graph.Model) []Issue {
	var issues []Issue
	var flagged []string
	for _, event := range model.Events() {
		if event.IsStarter {
			flagged = append(flagged, event.ID)
		}
	}

	if len(flagged) > 1 {
		for _, id := range flagged[1:] {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeDuplicateStarter,
				Message:  "more than one event is flagged as starter",
				EventID:  id,
				Option:   -1,
			})
		}
	}

	pointer := model.Storyline.StarterEventID
	switch {
	case len(flagged) == 0 && pointer == "":
		if model.Len() > 0 {
			issues = append(issues, Issue{
				Severity: SeverityWarn,
				Code:     codeNoStarter,
				Message:  "storyline has events but no starter",
				Option:   -1,
			})
		}
	case len(flagged) == 0 || pointer != flagged[0]:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Code:     codeStarterDrift,
			Message:  fmt.Sprintf("storyline points at starter %q but flags say %q", pointer, first(flagged)),
			EventID:  pointer,
			Option:   -1,
		})
	}

	return issues
}

func auditReachability(model *graph.Model) []Issue {
	starter := model.Starter()
	if starter == nil {
		return nil
	}

	var issues []Issue
	for _, id := range model.Orphans() {
		issues = append(issues, Issue{
			Severity: SeverityWarn,
			Code:     codeUnreachableEvent,
			Message:  "event is unreachable from the starter",
			EventID:  id,
			Option:   -1,
		})
	}
	return issues
}

func first(ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}
