package export

import (
	"context"
	"fmt"

	"eventflow/internal/narrative"
	"eventflow/internal/store"
)

// Result reports what an Apply run managed to do. Imports are not rolled
// back: a storage failure partway through leaves the earlier events in
// place, and the caller surfaces Errors as a partial-import state.
type Result struct {
	Created int
	// IDMap maps document ids to the fresh ids the events were stored
	// under.
	IDMap  map[string]string
	Errors []error
}

// Apply writes parsed events into the storyline. Every event gets a fresh
// id and targets are remapped accordingly; imported ids are never trusted
// to be free of collisions with existing events. Targets pointing outside
// the document are dropped (reported in Errors) and probability options
// are renormalized. An imported starter flag is honored only when the
// storyline has no starter yet.
func Apply(ctx context.Context, db store.Store, storyline *narrative.Storyline, events []ImportedEvent) (*Result, error) {
	result := &Result{IDMap: make(map[string]string, len(events))}
	for _, event := range events {
		if _, dup := result.IDMap[event.ID]; dup {
			return nil, formatErrf("duplicate event id %s in document", event.ID)
		}
		result.IDMap[event.ID] = narrative.NewID()
	}

	hasStarter := storyline.StarterEventID != ""
	var starterID string

	for _, imported := range events {
		event := &narrative.Event{
			ID:           result.IDMap[imported.ID],
			StorylineID:  storyline.ID,
			Title:        imported.Title,
			Content:      imported.Content,
			Options:      remapOptions(imported, result),
			Requirements: imported.Requirements,
			Position:     imported.Position,
		}
		if imported.IsStarter && !hasStarter && starterID == "" {
			event.IsStarter = true
			starterID = event.ID
		}

		if err := db.AddEvent(ctx, event); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("storing event %s: %w", imported.ID, err))
			if event.IsStarter {
				starterID = ""
			}
			continue
		}
		result.Created++
	}

	if starterID != "" {
		updated := *storyline
		updated.StarterEventID = starterID
		if err := db.UpdateStoryline(ctx, &updated); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("updating storyline starter: %w", err))
		} else {
			*storyline = updated
		}
	}

	return result, nil
}

func remapOptions(imported ImportedEvent, result *Result) []narrative.Option {
	options := narrative.CloneOptions(imported.Options)
	if options == nil {
		options = []narrative.Option{}
	}
	for i := range options {
		option := &options[i]
		kept := option.Targets[:0]
		for _, target := range option.Targets {
			mapped, ok := result.IDMap[target.EventID]
			if !ok {
				result.Errors = append(result.Errors,
					fmt.Errorf("event %s option %d: target %s not in document, dropped",
						imported.ID, i, target.EventID))
				continue
			}
			target.EventID = mapped
			kept = append(kept, target)
		}
		option.Targets = kept
		if !option.HasSkillCheck() {
			narrative.Normalize(option.Targets)
		}
	}
	return options
}
