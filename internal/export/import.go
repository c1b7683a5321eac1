package export

import (
	"encoding/json"
	"errors"
	"fmt"

	"eventflow/internal/migrate"
	"eventflow/internal/narrative"
)

// FormatError means the document is structurally unusable. It is raised
// during Parse, before any writes, so a bad document aborts the whole
// import.
type FormatError struct {
	msg string
}

func (e *FormatError) Error() string {
	return e.msg
}

func formatErrf(format string, args ...any) error {
	return &FormatError{msg: fmt.Sprintf(format, args...)}
}

// IsFormat reports whether err is a document format rejection.
func IsFormat(err error) bool {
	var f *FormatError
	return errors.As(err, &f)
}

// ImportedEvent is one parsed document record with its options already in
// canonical form. Target ids still refer to the document's own id space;
// Apply re-keys them.
type ImportedEvent struct {
	ID           string
	Title        string
	Content      string
	IsStarter    bool
	Position     narrative.Position
	Requirements map[string]any
	Options      []narrative.Option
}

// Parse decodes a storyline document. The exported formats never carried a
// version field, so every historical shape is detected structurally:
//
//   - the current flat forms (successTargets/failureTargets and
//     optionTargets/optionProbabilities)
//   - canonical embedded targets and the scalar nextEventId form
//   - bare-string options paired positionally with a top-level links array
//
// Anything that is not an array of event records with recognizable option
// encodings fails with FormatError.
func Parse(data []byte) ([]ImportedEvent, error) {
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, formatErrf("document is not a JSON array of events")
	}

	events := make([]ImportedEvent, 0, len(records))
	for i, record := range records {
		event, err := parseEvent(record)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		events = append(events, *event)
	}
	return events, nil
}

func parseEvent(raw json.RawMessage) (*ImportedEvent, error) {
	var fields struct {
		ID                  string             `json:"id"`
		Title               string             `json:"title"`
		Content             string             `json:"content"`
		IsStarter           bool               `json:"isStarter"`
		Position            narrative.Position `json:"position"`
		TriggerRequirements map[string]any     `json:"triggerRequirements"`
		Options             []json.RawMessage  `json:"options"`
		Links               []string           `json:"links"`
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, formatErrf("record is not an event object")
	}
	if fields.ID == "" {
		return nil, formatErrf("record has no id")
	}

	event := &ImportedEvent{
		ID:           fields.ID,
		Title:        fields.Title,
		Content:      fields.Content,
		IsStarter:    fields.IsStarter,
		Position:     fields.Position,
		Requirements: fields.TriggerRequirements,
		Options:      make([]narrative.Option, 0, len(fields.Options)),
	}

	for i, rawOption := range fields.Options {
		option, bare, err := parseOption(rawOption)
		if err != nil {
			return nil, fmt.Errorf("option %d: %w", i, err)
		}
		// The oldest format stored options as bare strings and kept the
		// wiring in a parallel top-level links array.
		if bare && len(option.Targets) == 0 && i < len(fields.Links) && fields.Links[i] != "" {
			option.Targets = []narrative.Target{{EventID: fields.Links[i], Probability: 1}}
		}
		event.Options = append(event.Options, *option)
	}
	return event, nil
}

func parseOption(raw json.RawMessage) (*narrative.Option, bool, error) {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		option, _, err := migrate.Option(raw)
		return option, true, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, false, formatErrf("option has no recognizable encoding")
	}

	if _, ok := fields["optionTargets"]; ok {
		option, err := parseProbabilityForm(raw)
		return option, false, err
	}
	_, success := fields["successTargets"]
	_, failure := fields["failureTargets"]
	if success || failure {
		option, err := parseSkillForm(raw)
		return option, false, err
	}

	_, hasText := fields["text"]
	_, hasTargets := fields["targets"]
	_, hasNext := fields["nextEventId"]
	if !hasText && !hasTargets && !hasNext {
		return nil, false, formatErrf("option has no recognizable encoding")
	}
	option, _, err := migrate.Option(raw)
	if err != nil {
		return nil, false, formatErrf("option has no recognizable encoding")
	}
	return option, false, nil
}

func parseProbabilityForm(raw json.RawMessage) (*narrative.Option, error) {
	var fields struct {
		Text                string             `json:"text"`
		OptionTargets       []string           `json:"optionTargets"`
		OptionProbabilities []float64          `json:"optionProbabilities"`
		Effects             []narrative.Effect `json:"effects"`
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, formatErrf("malformed probability option")
	}
	if len(fields.OptionProbabilities) > 0 && len(fields.OptionProbabilities) != len(fields.OptionTargets) {
		return nil, formatErrf("optionProbabilities has %d entries for %d targets",
			len(fields.OptionProbabilities), len(fields.OptionTargets))
	}

	option := &narrative.Option{
		Text:    fields.Text,
		Targets: make([]narrative.Target, 0, len(fields.OptionTargets)),
		Effects: fields.Effects,
	}
	if option.Effects == nil {
		option.Effects = []narrative.Effect{}
	}
	for i, id := range fields.OptionTargets {
		target := narrative.Target{EventID: id}
		if i < len(fields.OptionProbabilities) {
			target.Probability = fields.OptionProbabilities[i]
		}
		option.Targets = append(option.Targets, target)
	}
	if len(fields.OptionProbabilities) == 0 {
		narrative.EvenDistribution(option.Targets)
	}
	return option, nil
}

func parseSkillForm(raw json.RawMessage) (*narrative.Option, error) {
	var fields struct {
		Text           string                `json:"text"`
		SkillCheck     *narrative.SkillCheck `json:"skillCheck"`
		SuccessTargets []string              `json:"successTargets"`
		FailureTargets []string              `json:"failureTargets"`
		Effects        []narrative.Effect    `json:"effects"`
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, formatErrf("malformed skill-check option")
	}
	if fields.SkillCheck == nil {
		return nil, formatErrf("skill-check targets without a skillCheck")
	}

	option := &narrative.Option{
		Text:       fields.Text,
		SkillCheck: fields.SkillCheck,
		Targets:    make([]narrative.Target, 0, len(fields.SuccessTargets)+len(fields.FailureTargets)),
		Effects:    fields.Effects,
	}
	if option.Effects == nil {
		option.Effects = []narrative.Effect{}
	}
	for _, id := range fields.SuccessTargets {
		option.Targets = append(option.Targets, narrative.Target{
			EventID: id, Probability: 1, IsSkillCheckOutcome: true, IsSuccess: true,
		})
	}
	for _, id := range fields.FailureTargets {
		option.Targets = append(option.Targets, narrative.Target{
			EventID: id, Probability: 1, IsSkillCheckOutcome: true, IsSuccess: false,
		})
	}
	return option, nil
}
