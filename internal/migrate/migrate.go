package migrate

import (
	"encoding/json"
	"errors"
	"fmt"

	"eventflow/internal/narrative"
)

var (
	ErrInvalidOptions = errors.New("options column is not a JSON array")
	ErrInvalidOption  = errors.New("option is neither a string nor an object")
	ErrInvalidTarget  = errors.New("target is missing a string eventId")
)

// Options converts a persisted options column, in whatever historical shape
// it was written, into the canonical option list. The persisted formats have
// no version field, so each shape is detected structurally:
//
//   - a bare string becomes {text, no targets}
//   - a legacy scalar nextEventId becomes a single certain target
//   - missing targets/skillCheck/effects fields are filled with defaults
//
// The second return reports whether any conversion fired, so the caller can
// write the canonical form back and skip migration on future loads. Each
// conversion is idempotent: running Options over its own output changes
// nothing.
func Options(raw json.RawMessage) ([]narrative.Option, bool, error) {
	if len(raw) == 0 {
		return []narrative.Option{}, false, nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false, ErrInvalidOptions
	}

	options := make([]narrative.Option, 0, len(entries))
	changed := false
	for i, entry := range entries {
		option, converted, err := Option(entry)
		if err != nil {
			return nil, false, fmt.Errorf("option %d: %w", i, err)
		}
		options = append(options, *option)
		changed = changed || converted
	}
	return options, changed, nil
}

// Option converts one persisted option value into its canonical shape.
func Option(raw json.RawMessage) (*narrative.Option, bool, error) {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return &narrative.Option{
			Text:    text,
			Targets: []narrative.Target{},
			Effects: []narrative.Effect{},
		}, true, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, false, ErrInvalidOption
	}

	option := &narrative.Option{
		Targets: []narrative.Target{},
		Effects: []narrative.Effect{},
	}
	changed := false

	if rawText, ok := fields["text"]; ok {
		if err := json.Unmarshal(rawText, &option.Text); err != nil {
			return nil, false, fmt.Errorf("decoding text: %w", err)
		}
	}

	if rawTargets, ok := fields["targets"]; ok && !isNull(rawTargets) {
		targets, err := decodeTargets(rawTargets)
		if err != nil {
			return nil, false, err
		}
		option.Targets = targets
	} else if rawNext, ok := fields["nextEventId"]; ok && !isNull(rawNext) {
		var next string
		if err := json.Unmarshal(rawNext, &next); err != nil {
			return nil, false, fmt.Errorf("decoding nextEventId: %w", err)
		}
		if next != "" {
			option.Targets = []narrative.Target{{EventID: next, Probability: 1}}
		}
		changed = true
	} else if !ok {
		changed = true
	}

	if rawCheck, ok := fields["skillCheck"]; ok && !isNull(rawCheck) {
		var check narrative.SkillCheck
		if err := json.Unmarshal(rawCheck, &check); err != nil {
			return nil, false, fmt.Errorf("decoding skillCheck: %w", err)
		}
		option.SkillCheck = &check
	} else if !ok {
		changed = true
	}

	if rawEffects, ok := fields["effects"]; ok && !isNull(rawEffects) {
		if err := json.Unmarshal(rawEffects, &option.Effects); err != nil {
			return nil, false, fmt.Errorf("decoding effects: %w", err)
		}
	} else if !ok {
		changed = true
	}

	return option, changed, nil
}

func decodeTargets(raw json.RawMessage) ([]narrative.Target, error) {
	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decoding targets: %w", err)
	}

	targets := make([]narrative.Target, 0, len(entries))
	for i, entry := range entries {
		rawID, ok := entry["eventId"]
		if !ok || isNull(rawID) {
			return nil, fmt.Errorf("target %d: %w", i, ErrInvalidTarget)
		}
		var target narrative.Target
		if err := json.Unmarshal(rawID, &target.EventID); err != nil {
			return nil, fmt.Errorf("target %d: %w", i, ErrInvalidTarget)
		}
		if rawProb, ok := entry["probability"]; ok && !isNull(rawProb) {
			if err := json.Unmarshal(rawProb, &target.Probability); err != nil {
				return nil, fmt.Errorf("target %d: decoding probability: %w", i, err)
			}
		}
		if rawOutcome, ok := entry["isSkillCheckOutcome"]; ok && !isNull(rawOutcome) {
			if err := json.Unmarshal(rawOutcome, &target.IsSkillCheckOutcome); err != nil {
				return nil, fmt.Errorf("target %d: decoding isSkillCheckOutcome: %w", i, err)
			}
		}
		if rawSuccess, ok := entry["isSuccess"]; ok && !isNull(rawSuccess) {
			if err := json.Unmarshal(rawSuccess, &target.IsSuccess); err != nil {
				return nil, fmt.Errorf("target %d: decoding isSuccess: %w", i, err)
			}
		}
		if target.IsSkillCheckOutcome && target.Probability == 0 {
			target.Probability = 1
		}
		targets = append(targets, target)
	}
	return targets, nil
}

func isNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}
