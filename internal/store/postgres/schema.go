package postgres

import (
	"context"
	"fmt"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	// All DDL runs in one call, which PostgreSQL executes in an implicit
	// transaction. IF NOT EXISTS keeps it idempotent; destructive schema
	// changes would need a real migration tool.
	ddl := `
CREATE TABLE IF NOT EXISTS stories (
    id          TEXT PRIMARY KEY,
    title       TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    author      TEXT NOT NULL DEFAULT '',
    published   BOOLEAN NOT NULL DEFAULT FALSE,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS storylines (
    id               TEXT PRIMARY KEY,
    story_id         TEXT NOT NULL REFERENCES stories(id) ON DELETE CASCADE,
    title            TEXT NOT NULL DEFAULT '',
    description      TEXT NOT NULL DEFAULT '',
    starter_event_id TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS events (
    id           TEXT PRIMARY KEY,
    storyline_id TEXT NOT NULL REFERENCES storylines(id) ON DELETE CASCADE,
    title        TEXT NOT NULL DEFAULT '',
    content      TEXT NOT NULL DEFAULT '',
    is_starter   BOOLEAN NOT NULL DEFAULT FALSE,
    requirements JSONB NOT NULL DEFAULT '{}',
    position_x   DOUBLE PRECISION NOT NULL DEFAULT 0,
    position_y   DOUBLE PRECISION NOT NULL DEFAULT 0,
    options      JSONB NOT NULL DEFAULT '[]'
);

CREATE INDEX IF NOT EXISTS idx_storylines_story ON storylines (story_id);
CREATE INDEX IF NOT EXISTS idx_events_storyline ON events (storyline_id);
CREATE INDEX IF NOT EXISTS idx_events_starter ON events (storyline_id, is_starter) WHERE is_starter = TRUE;
`
	_, err := c.pool.Exec(ctx, ddl)
	if err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}
