package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eventflow/internal/narrative"
	"eventflow/internal/store"
)

func (c *Client) GetStory(ctx context.Context, id string) (*narrative.Story, error) {
	query := `
	SELECT id, title, description, author, published, created_at, updated_at
	FROM stories WHERE id = ?
	`
	var story narrative.Story
	var created, updated string
	err := c.db.QueryRowContext(ctx, query, id).Scan(
		&story.ID, &story.Title, &story.Description, &story.Author,
		&story.Published, &created, &updated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting story: %w", err)
	}
	story.CreatedAt = parseTime(created)
	story.UpdatedAt = parseTime(updated)
	return &story, nil
}

func (c *Client) ListStories(ctx context.Context) ([]narrative.Story, error) {
	query := `
	SELECT id, title, description, author, published, created_at, updated_at
	FROM stories ORDER BY created_at, id
	`
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing stories: %w", err)
	}
	defer rows.Close()

	stories := make([]narrative.Story, 0)
	for rows.Next() {
		var story narrative.Story
		var created, updated string
		if err := rows.Scan(
			&story.ID, &story.Title, &story.Description, &story.Author,
			&story.Published, &created, &updated,
		); err != nil {
			return nil, fmt.Errorf("scanning story: %w", err)
		}
		story.CreatedAt = parseTime(created)
		story.UpdatedAt = parseTime(updated)
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
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := c.db.ExecContext(ctx, query,
		story.ID, story.Title, story.Description, story.Author,
		story.Published, formatTime(story.CreatedAt), formatTime(story.UpdatedAt),
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
	SET title = ?, description = ?, author = ?, published = ?, updated_at = ?
	WHERE id = ?
	`
	result, err := c.db.ExecContext(ctx, query,
		story.Title, story.Description, story.Author, story.Published,
		formatTime(story.UpdatedAt), story.ID,
	)
	if err != nil {
		return fmt.Errorf("updating story: %w", err)
	}
	return requireRow(result, "story")
}

func (c *Client) DeleteStory(ctx context.Context, id string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM stories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting story: %w", err)
	}
	return nil
}

func requireRow(result sql.Result, kind string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", kind, store.ErrNotFound)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
