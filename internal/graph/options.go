package graph

import (
	"context"
	"fmt"

	"eventflow/internal/narrative"
)

// AddOption appends an empty option labeled "Option N". Option order is
// identity: existing indices stay valid, the new option takes the tail.
func (e *Engine) AddOption(ctx context.Context, m *Model, eventID string) (*narrative.Option, error) {
	event := m.Event(eventID)
	if event == nil {
		return nil, validationf("event %s not found", eventID)
	}

	clone := event.Clone()
	clone.Options = append(clone.Options, narrative.Option{
		Text:    fmt.Sprintf("Option %d", len(clone.Options)+1),
		Targets: []narrative.Target{},
		Effects: []narrative.Effect{},
	})

	if err := e.persistEvent(ctx, "add option", clone); err != nil {
		return nil, err
	}
	m.replace(clone)
	return &clone.Options[len(clone.Options)-1], nil
}

// RemoveOption deletes the option at index. Indices above it shift down;
// there is deliberately no reorder operation, since handle identity is the
// position in the list.
func (e *Engine) RemoveOption(ctx context.Context, m *Model, eventID string, index int) error {
	event, _, err := m.option(eventID, index)
	if err != nil {
		return err
	}

	clone := event.Clone()
	clone.Options = append(clone.Options[:index], clone.Options[index+1:]...)

	if err := e.persistEvent(ctx, "remove option", clone); err != nil {
		return err
	}
	m.replace(clone)
	return nil
}

// SetOptionText relabels the option at index.
func (e *Engine) SetOptionText(ctx context.Context, m *Model, eventID string, index int, text string) error {
	event, _, err := m.option(eventID, index)
	if err != nil {
		return err
	}

	clone := event.Clone()
	clone.Options[index].Text = text

	if err := e.persistEvent(ctx, "rename option", clone); err != nil {
		return err
	}
	m.replace(clone)
	return nil
}

// SetSkillCheck switches the option into skill-check mode, or updates the
// check it already has. Turning the mode on while probability targets
// exist fails with ErrModeConflict instead of discarding them.
func (e *Engine) SetSkillCheck(ctx context.Context, m *Model, eventID string, index int, check narrative.SkillCheck) error {
	event, option, err := m.option(eventID, index)
	if err != nil {
		return err
	}
	if check.Skill == "" {
		return validationf("skill check needs a skill name")
	}
	if !option.HasSkillCheck() && len(option.Targets) > 0 {
		return ErrModeConflict
	}

	clone := event.Clone()
	clone.Options[index].SkillCheck = &check

	if err := e.persistEvent(ctx, "set skill check", clone); err != nil {
		return err
	}
	m.replace(clone)
	return nil
}

// ClearSkillCheck switches the option back to probability mode. Rejected
// with ErrModeConflict while skill-check targets exist.
func (e *Engine) ClearSkillCheck(ctx context.Context, m *Model, eventID string, index int) error {
	event, option, err := m.option(eventID, index)
	if err != nil {
		return err
	}
	if !option.HasSkillCheck() {
		return nil
	}
	if len(option.Targets) > 0 {
		return ErrModeConflict
	}

	clone := event.Clone()
	clone.Options[index].SkillCheck = nil

	if err := e.persistEvent(ctx, "clear skill check", clone); err != nil {
		return err
	}
	m.replace(clone)
	return nil
}

// SetEffects replaces the option's skill effects. Values outside
// [-100, 100] are rejected, not clamped; clamping sloppy user input is a
// form-layer concern.
func (e *Engine) SetEffects(ctx context.Context, m *Model, eventID string, index int, effects []narrative.Effect) error {
	event, _, err := m.option(eventID, index)
	if err != nil {
		return err
	}
	for i, effect := range effects {
		if effect.Skill == "" {
			return validationf("effect %d: skill name is required", i)
		}
		if effect.Value < narrative.EffectValueMin || effect.Value > narrative.EffectValueMax {
			return validationf("effect %d: value %d out of range [%d, %d]",
				i, effect.Value, narrative.EffectValueMin, narrative.EffectValueMax)
		}
	}

	clone := event.Clone()
	clone.Options[index].Effects = append([]narrative.Effect{}, effects...)

	if err := e.persistEvent(ctx, "set effects", clone); err != nil {
		return err
	}
	m.replace(clone)
	return nil
}

// SetProbabilities assigns authored weights to a probability option's
// targets, one weight per target in order, then normalizes so the
// persisted list sums to 1.
func (e *Engine) SetProbabilities(ctx context.Context, m *Model, eventID string, index int, weights []float64) error {
	event, option, err := m.option(eventID, index)
	if err != nil {
		return err
	}
	if option.HasSkillCheck() {
		return validationf("option %d branches on a skill check, not probabilities", index)
	}
	if len(weights) != len(option.Targets) {
		return validationf("expected %d weights, got %d", len(option.Targets), len(weights))
	}
	var sum float64
	for i, weight := range weights {
		if weight < 0 {
			return validationf("weight %d: must not be negative", i)
		}
		sum += weight
	}
	if len(weights) > 0 && sum == 0 {
		return validationf("weights must not all be zero")
	}

	clone := event.Clone()
	targets := clone.Options[index].Targets
	for i := range targets {
		targets[i].Probability = weights[i]
	}
	narrative.Normalize(targets)

	if err := e.persistEvent(ctx, "set probabilities", clone); err != nil {
		return err
	}
	m.replace(clone)
	return nil
}

// option validates an (event, index) address and returns both halves.
func (m *Model) option(eventID string, index int) (*narrative.Event, *narrative.Option, error) {
	event := m.Event(eventID)
	if event == nil {
		return nil, nil, validationf("event %s not found", eventID)
	}
	if index < 0 || index >= len(event.Options) {
		return nil, nil, validationf("option index %d out of range for event %s", index, eventID)
	}
	return event, &event.Options[index], nil
}
