package store

import (
	"context"
	"errors"

	"eventflow/internal/narrative"
)

// ErrNotFound is returned by Get* methods when no row matches the id.
var ErrNotFound = errors.New("not found")

// Store is the persistence port for the narrative graph: plain CRUD keyed
// by id, plus lookup by parent id (story -> storylines, storyline ->
// events). Events are returned as records whose options column is raw JSON
// so historical shapes reach the migrator untouched.
type Store interface {
	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	GetStory(ctx context.Context, id string) (*narrative.Story, error)
	ListStories(ctx context.Context) ([]narrative.Story, error)
	AddStory(ctx context.Context, story *narrative.Story) error
	UpdateStory(ctx context.Context, story *narrative.Story) error
	DeleteStory(ctx context.Context, id string) error

	GetStoryline(ctx context.Context, id string) (*narrative.Storyline, error)
	ListStorylinesByStory(ctx context.Context, storyID string) ([]narrative.Storyline, error)
	AddStoryline(ctx context.Context, storyline *narrative.Storyline) error
	UpdateStoryline(ctx context.Context, storyline *narrative.Storyline) error
	DeleteStoryline(ctx context.Context, id string) error

	GetEvent(ctx context.Context, id string) (*EventRecord, error)
	ListEventsByStoryline(ctx context.Context, storylineID string) ([]EventRecord, error)
	AddEvent(ctx context.Context, event *narrative.Event) error
	UpdateEvent(ctx context.Context, event *narrative.Event) error
	DeleteEvent(ctx context.Context, id string) error
	DeleteEventsByStoryline(ctx context.Context, storylineID string) error
}
