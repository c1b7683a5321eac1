package graph

import (
	"context"
	"errors"
	"math"
	"testing"

	"eventflow/internal/narrative"
)

type wiredFixture struct {
	engine *Engine
	model  *Model
	a      *narrative.Event
	b      *narrative.Event
	c      *narrative.Event
	d      *narrative.Event
}

// newWiredFixture builds a storyline with four events and one empty option
// on the first.
func newWiredFixture(t *testing.T) *wiredFixture {
	t.Helper()
	ctx := context.Background()
	db := newMockStore()
	engine := New(db)
	storylineID := seedStoryline(t, db)
	model := loadModel(t, engine, storylineID)

	a, _ := engine.CreateEvent(ctx, model, EventSeed{})
	b, _ := engine.CreateEvent(ctx, model, EventSeed{})
	c, _ := engine.CreateEvent(ctx, model, EventSeed{})
	d, _ := engine.CreateEvent(ctx, model, EventSeed{})
	if _, err := engine.AddOption(ctx, model, a.ID); err != nil {
		t.Fatalf("add option: %v", err)
	}
	return &wiredFixture{engine: engine, model: model, a: a, b: b, c: c, d: d}
}

func TestConnectPlain(t *testing.T) {
	ctx := context.Background()
	f := newWiredFixture(t)

	option, err := f.engine.Connect(ctx, f.model, f.a.ID, 0, f.b.ID, LinkPlain)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if len(option.Targets) != 1 || option.Targets[0].Probability != 1 {
		t.Fatalf("single target should be certain: %+v", option.Targets)
	}

	option, err = f.engine.Connect(ctx, f.model, f.a.ID, 0, f.c.ID, LinkPlain)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	for i, target := range option.Targets {
		if math.Abs(target.Probability-0.5) > narrative.SumTolerance {
			t.Fatalf("target %d: expected equal share 0.5, got %v", i, target.Probability)
		}
	}

	// Connecting the same pair twice is a no-op.
	option, err = f.engine.Connect(ctx, f.model, f.a.ID, 0, f.b.ID, LinkPlain)
	if err != nil {
		t.Fatalf("duplicate connect: %v", err)
	}
	if len(option.Targets) != 2 {
		t.Fatalf("duplicate connect grew targets: %d", len(option.Targets))
	}
}

func TestConnectValidation(t *testing.T) {
	ctx := context.Background()
	f := newWiredFixture(t)

	if _, err := f.engine.Connect(ctx, f.model, f.a.ID, 3, f.b.ID, LinkPlain); !IsValidation(err) {
		t.Fatalf("expected validation error for bad index, got %v", err)
	}
	if _, err := f.engine.Connect(ctx, f.model, f.a.ID, 0, "ghost", LinkPlain); !IsValidation(err) {
		t.Fatalf("expected validation error for unknown target, got %v", err)
	}
	if _, err := f.engine.Connect(ctx, f.model, "ghost", 0, f.b.ID, LinkPlain); !IsValidation(err) {
		t.Fatalf("expected validation error for unknown source, got %v", err)
	}
	if _, err := f.engine.Connect(ctx, f.model, f.a.ID, 0, f.b.ID, LinkKind("sideways")); !IsValidation(err) {
		t.Fatalf("expected validation error for bad kind, got %v", err)
	}
}

func TestConnectSkillOutcomes(t *testing.T) {
	ctx := context.Background()
	f := newWiredFixture(t)

	// Skill connects require the check to be set first.
	if _, err := f.engine.Connect(ctx, f.model, f.a.ID, 0, f.b.ID, LinkSkillSuccess); !IsValidation(err) {
		t.Fatalf("expected validation error without a skill check, got %v", err)
	}

	check := narrative.SkillCheck{Skill: "stealth", MinValue: 30}
	if err := f.engine.SetSkillCheck(ctx, f.model, f.a.ID, 0, check); err != nil {
		t.Fatalf("set skill check: %v", err)
	}

	if _, err := f.engine.Connect(ctx, f.model, f.a.ID, 0, f.b.ID, LinkSkillSuccess); err != nil {
		t.Fatalf("connect success: %v", err)
	}
	option, err := f.engine.Connect(ctx, f.model, f.a.ID, 0, f.c.ID, LinkSkillFailure)
	if err != nil {
		t.Fatalf("connect failure: %v", err)
	}

	// The same event may serve as both outcomes, but the same pair only once.
	if _, err := f.engine.Connect(ctx, f.model, f.a.ID, 0, f.b.ID, LinkSkillFailure); err != nil {
		t.Fatalf("connect b as failure: %v", err)
	}
	option, err = f.engine.Connect(ctx, f.model, f.a.ID, 0, f.b.ID, LinkSkillSuccess)
	if err != nil {
		t.Fatalf("duplicate pair connect: %v", err)
	}
	if len(option.Targets) != 3 {
		t.Fatalf("duplicate pair grew targets: %d", len(option.Targets))
	}

	opt := f.model.Event(f.a.ID).Options[0]
	wantSuccess := []string{f.b.ID}
	wantFailure := []string{f.c.ID, f.b.ID}
	if got := opt.SuccessTargets(); len(got) != 1 || got[0] != wantSuccess[0] {
		t.Fatalf("unexpected success set: %v", got)
	}
	if got := opt.FailureTargets(); len(got) != 2 || got[0] != wantFailure[0] || got[1] != wantFailure[1] {
		t.Fatalf("unexpected failure set: %v", got)
	}
}

func TestModeConflict(t *testing.T) {
	ctx := context.Background()
	f := newWiredFixture(t)

	if _, err := f.engine.Connect(ctx, f.model, f.a.ID, 0, f.b.ID, LinkPlain); err != nil {
		t.Fatalf("connect: %v", err)
	}

	// Probability targets exist: switching the check on must fail, not clear.
	err := f.engine.SetSkillCheck(ctx, f.model, f.a.ID, 0, narrative.SkillCheck{Skill: "luck"})
	if !errors.Is(err, ErrModeConflict) {
		t.Fatalf("expected ErrModeConflict, got %v", err)
	}
	if got := len(f.model.Event(f.a.ID).Options[0].Targets); got != 1 {
		t.Fatalf("targets were touched: %d", got)
	}

	// Skill connect onto a probability fan-out is a mode conflict too.
	if _, err := f.engine.Connect(ctx, f.model, f.a.ID, 0, f.c.ID, LinkSkillSuccess); !errors.Is(err, ErrModeConflict) {
		t.Fatalf("expected ErrModeConflict, got %v", err)
	}

	// And the reverse: clearing a check while outcomes exist.
	if _, err := f.engine.AddOption(ctx, f.model, f.a.ID); err != nil {
		t.Fatalf("add option: %v", err)
	}
	if err := f.engine.SetSkillCheck(ctx, f.model, f.a.ID, 1, narrative.SkillCheck{Skill: "might"}); err != nil {
		t.Fatalf("set skill check: %v", err)
	}
	if _, err := f.engine.Connect(ctx, f.model, f.a.ID, 1, f.b.ID, LinkSkillSuccess); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := f.engine.ClearSkillCheck(ctx, f.model, f.a.ID, 1); !errors.Is(err, ErrModeConflict) {
		t.Fatalf("expected ErrModeConflict, got %v", err)
	}
	if _, err := f.engine.Connect(ctx, f.model, f.a.ID, 1, f.c.ID, LinkPlain); !errors.Is(err, ErrModeConflict) {
		t.Fatalf("expected ErrModeConflict, got %v", err)
	}
}

func TestDisconnectPlain(t *testing.T) {
	ctx := context.Background()
	f := newWiredFixture(t)

	for _, target := range []string{f.b.ID, f.c.ID} {
		if _, err := f.engine.Connect(ctx, f.model, f.a.ID, 0, target, LinkPlain); err != nil {
			t.Fatalf("connect %s: %v", target, err)
		}
	}

	// [B:0.5, C:0.5], drop B: the survivor becomes certain.
	option, err := f.engine.Disconnect(ctx, f.model, f.a.ID, 0, f.b.ID, LinkPlain)
	if err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	if len(option.Targets) != 1 || option.Targets[0].EventID != f.c.ID {
		t.Fatalf("unexpected survivors: %+v", option.Targets)
	}
	if math.Abs(option.Targets[0].Probability-1) > narrative.SumTolerance {
		t.Fatalf("survivor not renormalized: %v", option.Targets[0].Probability)
	}

	// Disconnecting something absent is a no-op.
	option, err = f.engine.Disconnect(ctx, f.model, f.a.ID, 0, f.b.ID, LinkPlain)
	if err != nil {
		t.Fatalf("absent disconnect: %v", err)
	}
	if len(option.Targets) != 1 {
		t.Fatalf("absent disconnect changed targets: %d", len(option.Targets))
	}
}

func TestDisconnectKeepsAuthoredWeights(t *testing.T) {
	ctx := context.Background()
	f := newWiredFixture(t)

	for _, target := range []string{f.b.ID, f.c.ID, f.d.ID} {
		if _, err := f.engine.Connect(ctx, f.model, f.a.ID, 0, target, LinkPlain); err != nil {
			t.Fatalf("connect %s: %v", target, err)
		}
	}
	if err := f.engine.SetProbabilities(ctx, f.model, f.a.ID, 0, []float64{0.6, 0.2, 0.2}); err != nil {
		t.Fatalf("set probabilities: %v", err)
	}

	option, err := f.engine.Disconnect(ctx, f.model, f.a.ID, 0, f.d.ID, LinkPlain)
	if err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	if len(option.Targets) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(option.Targets))
	}
	if math.Abs(option.Targets[0].Probability-0.75) > narrative.SumTolerance {
		t.Fatalf("authored ratio lost: %v", option.Targets[0].Probability)
	}
	if math.Abs(option.Targets[1].Probability-0.25) > narrative.SumTolerance {
		t.Fatalf("authored ratio lost: %v", option.Targets[1].Probability)
	}
}

func TestDisconnectSkillOutcome(t *testing.T) {
	ctx := context.Background()
	f := newWiredFixture(t)

	if err := f.engine.SetSkillCheck(ctx, f.model, f.a.ID, 0, narrative.SkillCheck{Skill: "agility"}); err != nil {
		t.Fatalf("set skill check: %v", err)
	}
	if _, err := f.engine.Connect(ctx, f.model, f.a.ID, 0, f.b.ID, LinkSkillSuccess); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if _, err := f.engine.Connect(ctx, f.model, f.a.ID, 0, f.b.ID, LinkSkillFailure); err != nil {
		t.Fatalf("connect: %v", err)
	}

	// Only the exact (event, outcome) pair goes away.
	option, err := f.engine.Disconnect(ctx, f.model, f.a.ID, 0, f.b.ID, LinkSkillFailure)
	if err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	if len(option.Targets) != 1 || !option.Targets[0].IsSuccess {
		t.Fatalf("wrong target removed: %+v", option.Targets)
	}
}

func TestSetProbabilitiesValidation(t *testing.T) {
	ctx := context.Background()
	f := newWiredFixture(t)

	if _, err := f.engine.Connect(ctx, f.model, f.a.ID, 0, f.b.ID, LinkPlain); err != nil {
		t.Fatalf("connect: %v", err)
	}

	if err := f.engine.SetProbabilities(ctx, f.model, f.a.ID, 0, []float64{0.5, 0.5}); !IsValidation(err) {
		t.Fatalf("expected validation error for length mismatch, got %v", err)
	}
	if err := f.engine.SetProbabilities(ctx, f.model, f.a.ID, 0, []float64{-1}); !IsValidation(err) {
		t.Fatalf("expected validation error for negative weight, got %v", err)
	}
	if err := f.engine.SetProbabilities(ctx, f.model, f.a.ID, 0, []float64{0}); !IsValidation(err) {
		t.Fatalf("expected validation error for all-zero weights, got %v", err)
	}
	if err := f.engine.SetProbabilities(ctx, f.model, f.a.ID, 0, []float64{3}); err != nil {
		t.Fatalf("set probabilities: %v", err)
	}
	got := f.model.Event(f.a.ID).Options[0].Targets[0].Probability
	if math.Abs(got-1) > narrative.SumTolerance {
		t.Fatalf("weights not normalized after edit: %v", got)
	}
}

func TestSetEffectsValidation(t *testing.T) {
	ctx := context.Background()
	f := newWiredFixture(t)

	err := f.engine.SetEffects(ctx, f.model, f.a.ID, 0, []narrative.Effect{{Skill: "might", Value: 101}})
	if !IsValidation(err) {
		t.Fatalf("expected validation error for out-of-range value, got %v", err)
	}
	err = f.engine.SetEffects(ctx, f.model, f.a.ID, 0, []narrative.Effect{{Skill: "", Value: 10}})
	if !IsValidation(err) {
		t.Fatalf("expected validation error for empty skill, got %v", err)
	}
	err = f.engine.SetEffects(ctx, f.model, f.a.ID, 0, []narrative.Effect{{Skill: "might", Value: -100}})
	if err != nil {
		t.Fatalf("set effects: %v", err)
	}
	if got := f.model.Event(f.a.ID).Options[0].Effects; len(got) != 1 || got[0].Value != -100 {
		t.Fatalf("effects not applied: %+v", got)
	}
}

func TestQueries(t *testing.T) {
	ctx := context.Background()
	f := newWiredFixture(t)

	if _, err := f.engine.Connect(ctx, f.model, f.a.ID, 0, f.b.ID, LinkPlain); err != nil {
		t.Fatalf("connect: %v", err)
	}

	summaries := f.model.ConnectionSummaries(f.a.ID)
	if len(summaries) != 1 {
		t.Fatalf("expected one option summary, got %d", len(summaries))
	}
	if !summaries[0].Connected || summaries[0].TargetCount != 1 || summaries[0].SkillCheck {
		t.Fatalf("unexpected summary: %+v", summaries[0])
	}
	if f.model.ConnectionSummaries("ghost") != nil {
		t.Fatalf("unknown event should yield nil summaries")
	}

	reachable := f.model.Reachable(f.a.ID)
	if len(reachable) != 2 || reachable[0] != f.a.ID || reachable[1] != f.b.ID {
		t.Fatalf("unexpected reachability: %v", reachable)
	}

	// a is the starter; c and d hang loose.
	orphans := f.model.Orphans()
	if len(orphans) != 2 {
		t.Fatalf("expected 2 orphans, got %v", orphans)
	}
}
