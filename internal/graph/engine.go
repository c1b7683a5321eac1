package graph

import (
	"context"
	"errors"
	"fmt"

	"eventflow/internal/migrate"
	"eventflow/internal/narrative"
	"eventflow/internal/store"
)

// Engine applies authoring mutations to one storyline graph at a time. It
// assumes a single active writer: mutations against the same model must be
// issued sequentially, each against the model state the previous mutation
// produced. Writes go to the store first; the model is only updated once
// the store confirms, so a failed write leaves the model untouched.
type Engine struct {
	db store.Store
}

func New(db store.Store) *Engine {
	return &Engine{db: db}
}

// LoadModel reads a storyline and its events, migrates any legacy option
// shapes (writing the canonical form back), and reconciles the storyline's
// denormalized starter pointer against the per-event flags, which win.
func (e *Engine) LoadModel(ctx context.Context, storylineID string) (*Model, error) {
	storyline, err := e.db.GetStoryline(ctx, storylineID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, validationf("storyline %s not found", storylineID)
	}
	if err != nil {
		return nil, storageErr("get storyline", err)
	}
	if storyline == nil {
		return nil, validationf("storyline %s not found", storylineID)
	}

	records, err := e.db.ListEventsByStoryline(ctx, storylineID)
	if err != nil {
		return nil, storageErr("list events", err)
	}

	model := newModel(storyline)
	for _, record := range records {
		event, migrated, err := eventFromRecord(&record)
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", record.ID, err)
		}
		if migrated {
			if err := e.db.UpdateEvent(ctx, event); err != nil {
				return nil, storageErr("write back migrated event", err)
			}
		}
		model.insert(event)
	}

	if err := e.reconcileStarter(ctx, model); err != nil {
		return nil, err
	}
	return model, nil
}

func eventFromRecord(record *store.EventRecord) (*narrative.Event, bool, error) {
	options, migrated, err := migrate.Options(record.Options)
	if err != nil {
		return nil, false, err
	}
	return &narrative.Event{
		ID:           record.ID,
		StorylineID:  record.StorylineID,
		Title:        record.Title,
		Content:      record.Content,
		Options:      options,
		IsStarter:    record.IsStarter,
		Requirements: record.Requirements,
		Position:     record.Position,
	}, migrated, nil
}

// reconcileStarter trusts the per-event isStarter flags over the storyline
// pointer: an interrupted SetStarter can leave the two out of sync. The
// first flagged event in load order wins; surplus flags are cleared and
// written back.
func (e *Engine) reconcileStarter(ctx context.Context, m *Model) error {
	var starter *narrative.Event
	for _, event := range m.Events() {
		if !event.IsStarter {
			continue
		}
		if starter == nil {
			starter = event
			continue
		}
		cleared := event.Clone()
		cleared.IsStarter = false
		if err := e.db.UpdateEvent(ctx, cleared); err != nil {
			return storageErr("clear surplus starter flag", err)
		}
		m.replace(cleared)
	}

	want := ""
	if starter != nil {
		want = starter.ID
	}
	if m.Storyline.StarterEventID == want {
		return nil
	}

	updated := *m.Storyline
	updated.StarterEventID = want
	if err := e.db.UpdateStoryline(ctx, &updated); err != nil {
		return storageErr("reconcile starter pointer", err)
	}
	m.Storyline = &updated
	return nil
}

func (e *Engine) persistEvent(ctx context.Context, op string, event *narrative.Event) error {
	if err := e.db.UpdateEvent(ctx, event); err != nil {
		return storageErr(op, err)
	}
	return nil
}
