package graph

import (
	"context"
	"fmt"

	"eventflow/internal/narrative"
)

// EventSeed carries the optional initial fields for a new event. Zero
// values fall back to "Event N" / placeholder content.
type EventSeed struct {
	Title    string
	Content  string
	Position narrative.Position
}

// CreateEvent appends a new event to the storyline. The first event of a
// storyline becomes its starter and the storyline pointer is set to match.
func (e *Engine) CreateEvent(ctx context.Context, m *Model, seed EventSeed) (*narrative.Event, error) {
	title := seed.Title
	if title == "" {
		title = fmt.Sprintf("Event %d", m.Len()+1)
	}
	content := seed.Content
	if content == "" {
		content = "Add content here..."
	}

	event := &narrative.Event{
		ID:          narrative.NewID(),
		StorylineID: m.Storyline.ID,
		Title:       title,
		Content:     content,
		Options:     []narrative.Option{},
		IsStarter:   m.Len() == 0,
		Position:    seed.Position,
	}

	if err := e.db.AddEvent(ctx, event); err != nil {
		return nil, storageErr("add event", err)
	}

	if event.IsStarter {
		updated := *m.Storyline
		updated.StarterEventID = event.ID
		if err := e.db.UpdateStoryline(ctx, &updated); err != nil {
			return nil, storageErr("set storyline starter", err)
		}
		m.Storyline = &updated
	}

	m.insert(event)
	return event, nil
}

// DeleteEvent removes an event and scrubs every target in the storyline
// that referenced it. Probability options left shorter keep their relative
// weights, renormalized to sum to 1. If the removed event was the starter
// the storyline pointer is cleared; no successor is elected.
func (e *Engine) DeleteEvent(ctx context.Context, m *Model, eventID string) error {
	event := m.Event(eventID)
	if event == nil {
		return validationf("event %s not found", eventID)
	}

	var updated []*narrative.Event
	for _, other := range m.Events() {
		if other.ID == eventID {
			continue
		}
		stripped, changed := stripTargets(other, eventID)
		if changed {
			updated = append(updated, stripped)
		}
	}

	for _, stripped := range updated {
		if err := e.persistEvent(ctx, "scrub deleted event references", stripped); err != nil {
			return err
		}
	}

	if err := e.db.DeleteEvent(ctx, eventID); err != nil {
		return storageErr("delete event", err)
	}

	var storyline *narrative.Storyline
	if event.IsStarter {
		copied := *m.Storyline
		copied.StarterEventID = ""
		if err := e.db.UpdateStoryline(ctx, &copied); err != nil {
			return storageErr("clear storyline starter", err)
		}
		storyline = &copied
	}

	for _, stripped := range updated {
		m.replace(stripped)
	}
	m.remove(eventID)
	if storyline != nil {
		m.Storyline = storyline
	}
	return nil
}

func stripTargets(event *narrative.Event, deletedID string) (*narrative.Event, bool) {
	changed := false
	clone := event.Clone()
	for i := range clone.Options {
		option := &clone.Options[i]
		kept := option.Targets[:0]
		for _, target := range option.Targets {
			if target.EventID == deletedID {
				changed = true
				continue
			}
			kept = append(kept, target)
		}
		option.Targets = kept
		if !option.HasSkillCheck() {
			narrative.Normalize(option.Targets)
		}
	}
	if !changed {
		return nil, false
	}
	return clone, true
}

// SetStarter makes eventID the unique starter of the storyline: siblings
// are cleared, the event is flagged, and the storyline pointer follows.
// The writes are best-effort sequential; an interruption is repaired by
// the reconciliation pass on the next load.
func (e *Engine) SetStarter(ctx context.Context, m *Model, eventID string) error {
	event := m.Event(eventID)
	if event == nil {
		return validationf("event %s not found", eventID)
	}

	var flagged *narrative.Event
	if !event.IsStarter {
		flagged = event.Clone()
		flagged.IsStarter = true
		if err := e.persistEvent(ctx, "flag starter", flagged); err != nil {
			return err
		}
	}

	var cleared []*narrative.Event
	for _, other := range m.Events() {
		if other.ID == eventID || !other.IsStarter {
			continue
		}
		copied := other.Clone()
		copied.IsStarter = false
		if err := e.persistEvent(ctx, "clear previous starter", copied); err != nil {
			return err
		}
		cleared = append(cleared, copied)
	}

	var storyline *narrative.Storyline
	if m.Storyline.StarterEventID != eventID {
		copied := *m.Storyline
		copied.StarterEventID = eventID
		if err := e.db.UpdateStoryline(ctx, &copied); err != nil {
			return storageErr("update storyline starter", err)
		}
		storyline = &copied
	}

	if flagged != nil {
		m.replace(flagged)
	}
	for _, copied := range cleared {
		m.replace(copied)
	}
	if storyline != nil {
		m.Storyline = storyline
	}
	return nil
}

// UpdateDetails replaces the event's display text.
func (e *Engine) UpdateDetails(ctx context.Context, m *Model, eventID, title, content string) error {
	event := m.Event(eventID)
	if event == nil {
		return validationf("event %s not found", eventID)
	}
	clone := event.Clone()
	clone.Title = title
	clone.Content = content
	if err := e.persistEvent(ctx, "update event details", clone); err != nil {
		return err
	}
	m.replace(clone)
	return nil
}

// SetPosition moves the event on the (externally rendered) canvas. The
// coordinate is opaque to the engine.
func (e *Engine) SetPosition(ctx context.Context, m *Model, eventID string, position narrative.Position) error {
	event := m.Event(eventID)
	if event == nil {
		return validationf("event %s not found", eventID)
	}
	clone := event.Clone()
	clone.Position = position
	if err := e.persistEvent(ctx, "move event", clone); err != nil {
		return err
	}
	m.replace(clone)
	return nil
}

// SetRequirements replaces the event's trigger requirements. Values must be
// scalars; evaluation against player state happens outside the engine.
func (e *Engine) SetRequirements(ctx context.Context, m *Model, eventID string, requirements map[string]any) error {
	event := m.Event(eventID)
	if event == nil {
		return validationf("event %s not found", eventID)
	}
	for key, value := range requirements {
		switch value.(type) {
		case string, bool, int, int64, float64, nil:
		default:
			return validationf("requirement %s: value must be a scalar", key)
		}
	}
	clone := event.Clone()
	clone.Requirements = requirements
	if err := e.persistEvent(ctx, "update event requirements", clone); err != nil {
		return err
	}
	m.replace(clone)
	return nil
}
