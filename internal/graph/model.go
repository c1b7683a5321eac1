package graph

import "eventflow/internal/narrative"

// Model is the in-memory graph of one storyline: its events in load order
// plus an id index. All mutation goes through the Engine so the model and
// the store stay aligned; direct writes to the returned events are not
// supported.
type Model struct {
	Storyline *narrative.Storyline

	events []*narrative.Event
	index  map[string]*narrative.Event
}

func newModel(storyline *narrative.Storyline) *Model {
	return &Model{
		Storyline: storyline,
		index:     make(map[string]*narrative.Event),
	}
}

// NewModel builds a model from already-loaded events, without the
// migration and starter reconciliation the Engine performs. Audits use
// it to inspect rows exactly as they sit in storage.
func NewModel(storyline *narrative.Storyline, events []*narrative.Event) *Model {
	m := newModel(storyline)
	for _, event := range events {
		m.insert(event)
	}
	return m
}

// Event returns the event with the given id, or nil.
func (m *Model) Event(id string) *narrative.Event {
	return m.index[id]
}

// Events returns the events in load order.
func (m *Model) Events() []*narrative.Event {
	return m.events
}

// Len returns the number of events in the storyline.
func (m *Model) Len() int {
	return len(m.events)
}

// Starter returns the event flagged as the storyline entry point, or nil.
func (m *Model) Starter() *narrative.Event {
	for _, event := range m.events {
		if event.IsStarter {
			return event
		}
	}
	return nil
}

func (m *Model) insert(event *narrative.Event) {
	m.events = append(m.events, event)
	m.index[event.ID] = event
}

// replace swaps the stored event for an updated copy with the same id.
func (m *Model) replace(event *narrative.Event) {
	for i, existing := range m.events {
		if existing.ID == event.ID {
			m.events[i] = event
			m.index[event.ID] = event
			return
		}
	}
}

func (m *Model) remove(id string) {
	for i, event := range m.events {
		if event.ID == id {
			m.events = append(m.events[:i], m.events[i+1:]...)
			delete(m.index, id)
			return
		}
	}
}
