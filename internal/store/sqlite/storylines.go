package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventflow/internal/narrative"
	"eventflow/internal/store"
)

func (c *Client) GetStoryline(ctx context.Context, id string) (*narrative.Storyline, error) {
	query := `
	SELECT id, story_id, title, description, starter_event_id
	FROM storylines WHERE id = ?
	`
	var storyline narrative.Storyline
	err := c.db.QueryRowContext(ctx, query, id).Scan(
		&storyline.ID, &storyline.StoryID, &storyline.Title,
		&storyline.Description, &storyline.StarterEventID,
	)
	if errors.Is(err, sql.ErrNoRows) {
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
	FROM storylines WHERE story_id = ? ORDER BY id
	`
	rows, err := c.db.QueryContext(ctx, query, storyID)
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
	VALUES (?, ?, ?, ?, ?)
	`
	_, err := c.db.ExecContext(ctx, query,
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
	SET title = ?, description = ?, starter_event_id = ?
	WHERE id = ?
	`
	result, err := c.db.ExecContext(ctx, query,
		storyline.Title, storyline.Description, storyline.StarterEventID, storyline.ID,
	)
	if err != nil {
		return fmt.Errorf("updating storyline: %w", err)
	}
	return requireRow(result, "storyline")
}

func (c *Client) DeleteStoryline(ctx context.Context, id string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM storylines WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting storyline: %w", err)
	}
	return nil
}
