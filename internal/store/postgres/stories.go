package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"eventflow/internal/narrative"
	"eventflow/internal/store"
)

func (c *Client) GetStory(ctx context.Context, id string) (*narrative.Story, error) {
	query := `
SELECT id, title, description, author, published, created_at, updated_at
FROM stories WHERE id = $1
`
	var story narrative.Story
	err := c.pool.QueryRow(ctx, query, id).Scan(
		&story.ID, &story.Title, &story.Description, &story.Author,
		&story.Published, &story.CreatedAt, &story.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting story: %w", err)
	}
	return &story, nil
}

func (c *Client) ListStories(ctx context.Context) ([]narrative.Story, error) {
	query := `
SELECT id, title, description, author, published, created_at, updated_at
FROM stories ORDER BY created_at, id
`
	rows, err := c.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing stories: %w", err)
	}
	defer rows.Close()

	stories := make([]narrative.Story, 0)
	for rows.Next() {
		var story narrative.Story
		if err := rows.Scan(
			&story.ID, &story.Title, &story.Description, &story.Author,
			&story.Published, &story.CreatedAt, &story.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning story: %w", err)
		}
		stories = append(stories, story)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating story rows: %w", err)
	}
	return stories, nil
}

func (c *Client) AddStory(ctx context.Context, story *narrative.Story) error {
	now := time.Now().UTC()
	if story.CreatedAt.IsZero() {
		story.CreatedAt = now
	}
	story.UpdatedAt = now

	query := `
INSERT INTO stories (id, title, description, author, published, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`
	_, err := c.pool.Exec(ctx, query,
		story.ID, story.Title, story.Description, story.Author,
		story.Published, story.CreatedAt, story.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("adding story: %w", err)
	}
	return nil
}

func (c *Client) UpdateStory(ctx context.Context, story *narrative.Story) error {
	story.UpdatedAt = time.Now().UTC()

	query := `
UPDATE stories
SET title = $1, description = $2, author = $3, published = $4, updated_at = $5
WHERE id = $6
`
	tag, err := c.pool.Exec(ctx, query,
		story.Title, story.Description, story.Author, story.Published,
		story.UpdatedAt, story.ID,
	)
	if err != nil {
		return fmt.Errorf("updating story: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("story: %w", store.ErrNotFound)
	}
	return nil
}

func (c *Client) DeleteStory(ctx context.Context, id string) error {
	if _, err := c.pool.Exec(ctx, `DELETE FROM stories WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting story: %w", err)
	}
	return nil
}
