package graph

import (
	"context"

	"eventflow/internal/narrative"
)

// LinkKind selects the edge semantics of a Connect or Disconnect call.
type LinkKind string

const (
	// LinkPlain is a probability-weighted edge on an option without a
	// skill check.
	LinkPlain LinkKind = "plain"
	// LinkSkillSuccess is the edge taken when the option's skill check
	// passes.
	LinkSkillSuccess LinkKind = "skillSuccess"
	// LinkSkillFailure is the edge taken when the option's skill check
	// fails.
	LinkSkillFailure LinkKind = "skillFailure"
)

// ParseLinkKind maps the wire spelling of a link kind to its constant.
func ParseLinkKind(s string) (LinkKind, error) {
	switch LinkKind(s) {
	case LinkPlain, LinkSkillSuccess, LinkSkillFailure:
		return LinkKind(s), nil
	default:
		return "", validationf("unknown link kind %q", s)
	}
}

// Connect wires the option at (sourceID, index) to targetID. A plain
// connect starts every branch equally likely: the new target joins at
// 1/(n+1) and all weights are reset to the equal share. Skill connects tag
// the target with the requested outcome. Connecting an already-present
// target (same outcome for skill kinds) is a no-op. Mixing edge kinds on
// one option fails with ErrModeConflict.
func (e *Engine) Connect(ctx context.Context, m *Model, sourceID string, index int, targetID string, kind LinkKind) (*narrative.Option, error) {
	event, option, err := m.option(sourceID, index)
	if err != nil {
		return nil, err
	}
	if m.Event(targetID) == nil {
		return nil, validationf("target event %s not found", targetID)
	}

	switch kind {
	case LinkPlain:
		if option.HasSkillCheck() {
			return nil, ErrModeConflict
		}
		if option.HasTarget(targetID) {
			return option, nil
		}
	case LinkSkillSuccess, LinkSkillFailure:
		if !option.HasSkillCheck() {
			if len(option.Targets) > 0 {
				return nil, ErrModeConflict
			}
			return nil, validationf("option %d has no skill check to branch on", index)
		}
		if option.TargetIndex(targetID, kind == LinkSkillSuccess) >= 0 {
			return option, nil
		}
	default:
		return nil, validationf("unknown link kind %q", kind)
	}

	clone := event.Clone()
	targets := &clone.Options[index].Targets
	if kind == LinkPlain {
		*targets = append(*targets, narrative.Target{
			EventID:     targetID,
			Probability: 1 / float64(len(*targets)+1),
		})
		narrative.EvenDistribution(*targets)
	} else {
		*targets = append(*targets, narrative.Target{
			EventID:             targetID,
			Probability:         1,
			IsSkillCheckOutcome: true,
			IsSuccess:           kind == LinkSkillSuccess,
		})
	}

	if err := e.persistEvent(ctx, "connect option", clone); err != nil {
		return nil, err
	}
	m.replace(clone)
	return &clone.Options[index], nil
}

// Disconnect removes the matching target. Plain survivors keep their
// authored relative weights, renormalized to sum to 1. Skill disconnects
// remove only the exact (target, outcome) pair and leave weights alone.
// Disconnecting an absent target is a no-op, mirroring Connect.
func (e *Engine) Disconnect(ctx context.Context, m *Model, sourceID string, index int, targetID string, kind LinkKind) (*narrative.Option, error) {
	event, option, err := m.option(sourceID, index)
	if err != nil {
		return nil, err
	}

	var at int
	switch kind {
	case LinkPlain:
		if option.HasSkillCheck() {
			return nil, ErrModeConflict
		}
		at = option.TargetIndex(targetID, false)
	case LinkSkillSuccess, LinkSkillFailure:
		if !option.HasSkillCheck() {
			return nil, ErrModeConflict
		}
		at = option.TargetIndex(targetID, kind == LinkSkillSuccess)
	default:
		return nil, validationf("unknown link kind %q", kind)
	}
	if at < 0 {
		return option, nil
	}

	clone := event.Clone()
	targets := &clone.Options[index].Targets
	*targets = append((*targets)[:at], (*targets)[at+1:]...)
	if kind == LinkPlain {
		narrative.Normalize(*targets)
	}

	if err := e.persistEvent(ctx, "disconnect option", clone); err != nil {
		return nil, err
	}
	m.replace(clone)
	return &clone.Options[index], nil
}
