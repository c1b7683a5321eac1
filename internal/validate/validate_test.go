package validate

import (
	"testing"

	"eventflow/internal/graph"
	"eventflow/internal/narrative"
)

func model(storyline *narrative.Storyline, events ...*narrative.Event) *graph.Model {
	return graph.NewModel(storyline, events)
}

func codes(report *Report) map[string]int {
	counts := make(map[string]int)
	for _, issue := range report.Issues {
		counts[issue.Code]++
	}
	return counts
}

func TestRunCleanGraph(t *testing.T) {
	start := &narrative.Event{
		ID: "a", StorylineID: "sl", IsStarter: true,
		Options: []narrative.Option{{
			Text: "Go on",
			Targets: []narrative.Target{
				{EventID: "b", Probability: 0.5},
				{EventID: "c", Probability: 0.5},
			},
		}},
	}
	report := Run(model(
		&narrative.Storyline{ID: "sl", StarterEventID: "a"},
		start,
		&narrative.Event{ID: "b", StorylineID: "sl"},
		&narrative.Event{ID: "c", StorylineID: "sl"},
	))
	if len(report.Issues) != 0 {
		t.Fatalf("clean graph reported issues: %+v", report.Issues)
	}
	if report.HasErrors() {
		t.Fatalf("HasErrors on empty report")
	}
}

func TestRunDanglingTarget(t *testing.T) {
	event := &narrative.Event{
		ID: "a", IsStarter: true,
		Options: []narrative.Option{{
			Targets: []narrative.Target{{EventID: "ghost", Probability: 1}},
		}},
	}
	report := Run(model(&narrative.Storyline{ID: "sl", StarterEventID: "a"}, event))
	if codes(report)[codeDanglingTarget] != 1 {
		t.Fatalf("dangling target missed: %+v", report.Issues)
	}
	if !report.HasErrors() {
		t.Fatalf("dangling target should be an error")
	}
}

func TestRunProbabilitySum(t *testing.T) {
	event := &narrative.Event{
		ID: "a", IsStarter: true,
		Options: []narrative.Option{{
			Targets: []narrative.Target{
				{EventID: "b", Probability: 0.3},
				{EventID: "c", Probability: 0.3},
			},
		}},
	}
	report := Run(model(
		&narrative.Storyline{ID: "sl", StarterEventID: "a"},
		event,
		&narrative.Event{ID: "b"},
		&narrative.Event{ID: "c"},
	))
	if codes(report)[codeProbabilitySum] != 1 {
		t.Fatalf("bad probability sum missed: %+v", report.Issues)
	}
}

func TestRunMixedModes(t *testing.T) {
	event := &narrative.Event{
		ID: "a", IsStarter: true,
		Options: []narrative.Option{
			{
				// Outcome targets but no skill check.
				Targets: []narrative.Target{
					{EventID: "b", Probability: 1, IsSkillCheckOutcome: true, IsSuccess: true},
				},
			},
			{
				// Skill check carrying a plain probability target.
				SkillCheck: &narrative.SkillCheck{Skill: "stealth", MinValue: 10},
				Targets:    []narrative.Target{{EventID: "b", Probability: 1}},
			},
		},
	}
	report := Run(model(
		&narrative.Storyline{ID: "sl", StarterEventID: "a"},
		event,
		&narrative.Event{ID: "b"},
	))
	if codes(report)[codeMixedModeTargets] != 2 {
		t.Fatalf("mode violations missed: %+v", report.Issues)
	}
}

func TestRunDuplicateTarget(t *testing.T) {
	event := &narrative.Event{
		ID: "a", IsStarter: true,
		Options: []narrative.Option{{
			Targets: []narrative.Target{
				{EventID: "b", Probability: 0.5},
				{EventID: "b", Probability: 0.5},
			},
		}},
	}
	report := Run(model(
		&narrative.Storyline{ID: "sl", StarterEventID: "a"},
		event,
		&narrative.Event{ID: "b"},
	))
	if codes(report)[codeDuplicateTarget] != 1 {
		t.Fatalf("duplicate target missed: %+v", report.Issues)
	}
}

func TestRunStarterProblems(t *testing.T) {
	t.Run("duplicate flags", func(t *testing.T) {
		report := Run(model(
			&narrative.Storyline{ID: "sl", StarterEventID: "a"},
			&narrative.Event{ID: "a", IsStarter: true},
			&narrative.Event{ID: "b", IsStarter: true},
		))
		if codes(report)[codeDuplicateStarter] != 1 {
			t.Fatalf("duplicate starter missed: %+v", report.Issues)
		}
	})

	t.Run("pointer drift", func(t *testing.T) {
		report := Run(model(
			&narrative.Storyline{ID: "sl", StarterEventID: "b"},
			&narrative.Event{ID: "a", IsStarter: true},
			&narrative.Event{ID: "b"},
		))
		if codes(report)[codeStarterDrift] != 1 {
			t.Fatalf("pointer drift missed: %+v", report.Issues)
		}
	})

	t.Run("no starter at all", func(t *testing.T) {
		report := Run(model(
			&narrative.Storyline{ID: "sl"},
			&narrative.Event{ID: "a"},
		))
		counts := codes(report)
		if counts[codeNoStarter] != 1 {
			t.Fatalf("missing starter not warned: %+v", report.Issues)
		}
		if report.HasErrors() {
			t.Fatalf("missing starter is a warning, not an error")
		}
	})
}

func TestRunUnreachable(t *testing.T) {
	report := Run(model(
		&narrative.Storyline{ID: "sl", StarterEventID: "a"},
		&narrative.Event{ID: "a", IsStarter: true},
		&narrative.Event{ID: "island"},
	))
	counts := codes(report)
	if counts[codeUnreachableEvent] != 1 {
		t.Fatalf("unreachable event missed: %+v", report.Issues)
	}
}

func TestRunEffectRange(t *testing.T) {
	event := &narrative.Event{
		ID: "a", IsStarter: true,
		Options: []narrative.Option{{
			Effects: []narrative.Effect{{Skill: "strength", Value: 250}},
		}},
	}
	report := Run(model(&narrative.Storyline{ID: "sl", StarterEventID: "a"}, event))
	if codes(report)[codeEffectOutOfRange] != 1 {
		t.Fatalf("effect range violation missed: %+v", report.Issues)
	}
}
