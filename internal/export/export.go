package export

import (
	"encoding/json"
	"fmt"

	"eventflow/internal/narrative"
)

// Event is one record of the portable storyline document. Options are
// re-encoded into one of two mutually exclusive flat forms, picked by
// whether the option carries a skill check; nothing else about the
// canonical shape is lost.
type Event struct {
	ID                  string             `json:"id"`
	Title               string             `json:"title"`
	Content             string             `json:"content"`
	IsStarter           bool               `json:"isStarter"`
	Position            narrative.Position `json:"position"`
	TriggerRequirements map[string]any     `json:"triggerRequirements,omitempty"`
	Options             []Option           `json:"options"`
}

// Option is the flat per-option encoding: either the skill-check form
// (successTargets/failureTargets) or the probability form
// (optionTargets/optionProbabilities).
type Option struct {
	Text                string                `json:"text"`
	SkillCheck          *narrative.SkillCheck `json:"skillCheck,omitempty"`
	SuccessTargets      []string              `json:"successTargets,omitempty"`
	FailureTargets      []string              `json:"failureTargets,omitempty"`
	OptionTargets       []string              `json:"optionTargets,omitempty"`
	OptionProbabilities []float64             `json:"optionProbabilities,omitempty"`
	Effects             []narrative.Effect    `json:"effects"`
}

// Filename is the conventional name for a storyline's exported document.
func Filename(storylineID string) string {
	return fmt.Sprintf("storyline_%s.json", storylineID)
}

// Marshal renders the storyline's events as a UTF-8 JSON array, one record
// per event.
func Marshal(events []*narrative.Event) ([]byte, error) {
	records := make([]Event, 0, len(events))
	for _, event := range events {
		records = append(records, recordFromEvent(event))
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding storyline document: %w", err)
	}
	return data, nil
}

func recordFromEvent(event *narrative.Event) Event {
	record := Event{
		ID:                  event.ID,
		Title:               event.Title,
		Content:             event.Content,
		IsStarter:           event.IsStarter,
		Position:            event.Position,
		TriggerRequirements: event.Requirements,
		Options:             make([]Option, 0, len(event.Options)),
	}
	for _, option := range event.Options {
		record.Options = append(record.Options, optionRecord(option))
	}
	return record
}

func optionRecord(option narrative.Option) Option {
	out := Option{
		Text:    option.Text,
		Effects: option.Effects,
	}
	if out.Effects == nil {
		out.Effects = []narrative.Effect{}
	}
	if option.HasSkillCheck() {
		check := *option.SkillCheck
		out.SkillCheck = &check
		out.SuccessTargets = option.SuccessTargets()
		out.FailureTargets = option.FailureTargets()
		return out
	}
	for _, target := range option.Targets {
		out.OptionTargets = append(out.OptionTargets, target.EventID)
		out.OptionProbabilities = append(out.OptionProbabilities, target.Probability)
	}
	return out
}
