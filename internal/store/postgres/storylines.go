package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"eventflow/internal/narrative"
	"eventflow/internal/store"
)

func (c *Client) GetStoryline(ctx context.Context, id string) (*narrative.Storyline, error) {
	query := `
SELECT id, story_id, title, description, starter_event_id
FROM storylines WHERE id = $1
`
	var storyline narrative.Storyline
	err := c.pool.QueryRow(ctx, query, id).Scan(
		&storyline.ID, &storyline.StoryID, &storyline.Title,
		&storyline.Description, &storyline.StarterEventID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting storyline: %w", err)
	}
	return &storyline, nil
}

func (c *Client) ListStorylinesByStory(ctx context.Context, storyID string) ([]narrative.Storyline, error) {
	query := `
SELECT id, story_id, title, description, starter_event_id
FROM storylines WHERE story_id = $1 ORDER BY id
`
	rows, err := c.pool.Query(ctx, query, storyID)
	if err != nil {
		return nil, fmt.Errorf("listing storylines: %w", err)
	}
	defer rows.Close()

	storylines := make([]narrative.Storyline, 0)
	for rows.Next() {
		var storyline narrative.Storyline
		if err := rows.Scan(
			&storyline.ID, &storyline.StoryID, &storyline.Title,
			&storyline.Description, &storyline.StarterEventID,
		); err != nil {
			return nil, fmt.Errorf("scanning storyline: %w", err)
		}
		storylines = append(storylines, storyline)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating storyline rows: %w", err)
	}
	return storylines, nil
}

func (c *Client) AddStoryline(ctx context.Context, storyline *narrative.Storyline) error {
	query := `
INSERT INTO storylines (id, story_id, title, description, starter_event_id)
VALUES ($1, $2, $3, $4, $5)
`
	_, err := c.pool.Exec(ctx, query,
		storyline.ID, storyline.StoryID, storyline.Title,
		storyline.Description, storyline.StarterEventID,
	)
	if err != nil {
		return fmt.Errorf("adding storyline: %w", err)
	}
	return nil
}

func (c *Client) UpdateStoryline(ctx context.Context, storyline *narrative.Storyline) error {
	query := `
UPDATE storylines
SET title = $1, description = $2, starter_event_id = $3
WHERE id = $4
`
	tag, err := c.pool.Exec(ctx, query,
		storyline.Title, storyline.Description, storyline.StarterEventID, storyline.ID,
	)
	if err != nil {
		return fmt.Errorf("updating storyline: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("storyline: %w", store.ErrNotFound)
	}
	return nil
}

func (c *Client) DeleteStoryline(ctx context.Context, id string) error {
	if _, err := c.pool.Exec(ctx, `DELETE FROM storylines WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting storyline: %w", err)
	}
	return nil
}
