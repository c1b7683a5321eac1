package store

import (
	"encoding/json"
	"fmt"

	"eventflow/internal/narrative"
)

// EventRecord is an event row as persisted. Options stays raw because rows
// written by older releases may hold bare-string options or scalar
// nextEventId links; the migrator owns decoding them.
type EventRecord struct {
	ID           string
	StorylineID  string
	Title        string
	Content      string
	IsStarter    bool
	Requirements map[string]any
	Position     narrative.Position
	Options      json.RawMessage
}

// EncodeOptions marshals canonical options for the options column.
func EncodeOptions(options []narrative.Option) (json.RawMessage, error) {
	if options == nil {
		options = []narrative.Option{}
	}
	data, err := json.Marshal(options)
	if err != nil {
		return nil, fmt.Errorf("encoding options: %w", err)
	}
	return data, nil
}

// EncodeRequirements marshals trigger requirements for their column.
func EncodeRequirements(requirements map[string]any) (json.RawMessage, error) {
	if requirements == nil {
		requirements = map[string]any{}
	}
	data, err := json.Marshal(requirements)
	if err != nil {
		return nil, fmt.Errorf("encoding requirements: %w", err)
	}
	return data, nil
}
