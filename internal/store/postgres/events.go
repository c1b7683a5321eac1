package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"eventflow/internal/narrative"
	"eventflow/internal/store"
)

func (c *Client) GetEvent(ctx context.Context, id string) (*store.EventRecord, error) {
	query := `
SELECT id, storyline_id, title, content, is_starter, requirements, position_x, position_y, options
FROM events WHERE id = $1
`
	record, err := scanEvent(c.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting event: %w", err)
	}
	return record, nil
}

func (c *Client) ListEventsByStoryline(ctx context.Context, storylineID string) ([]store.EventRecord, error) {
	query := `
SELECT id, storyline_id, title, content, is_starter, requirements, position_x, position_y, options
FROM events WHERE storyline_id = $1 ORDER BY id
`
	rows, err := c.pool.Query(ctx, query, storylineID)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	records := make([]store.EventRecord, 0)
	for rows.Next() {
		record, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating event rows: %w", err)
	}
	return records, nil
}

func (c *Client) AddEvent(ctx context.Context, event *narrative.Event) error {
	optionsJSON, err := store.EncodeOptions(event.Options)
	if err != nil {
		return err
	}
	requirementsJSON, err := store.EncodeRequirements(event.Requirements)
	if err != nil {
		return err
	}

	query := `
INSERT INTO events (id, storyline_id, title, content, is_starter, requirements, position_x, position_y, options)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`
	_, err = c.pool.Exec(ctx, query,
		event.ID, event.StorylineID, event.Title, event.Content, event.IsStarter,
		requirementsJSON, event.Position.X, event.Position.Y, optionsJSON,
	)
	if err != nil {
		return fmt.Errorf("adding event: %w", err)
	}
	return nil
}

func (c *Client) UpdateEvent(ctx context.Context, event *narrative.Event) error {
	optionsJSON, err := store.EncodeOptions(event.Options)
	if err != nil {
		return err
	}
	requirementsJSON, err := store.EncodeRequirements(event.Requirements)
	if err != nil {
		return err
	}

	query := `
UPDATE events
SET title = $1, content = $2, is_starter = $3, requirements = $4, position_x = $5, position_y = $6, options = $7
WHERE id = $8
`
	tag, err := c.pool.Exec(ctx, query,
		event.Title, event.Content, event.IsStarter,
		requirementsJSON, event.Position.X, event.Position.Y,
		optionsJSON, event.ID,
	)
	if err != nil {
		return fmt.Errorf("updating event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("event: %w", store.ErrNotFound)
	}
	return nil
}

func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	if _, err := c.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	return nil
}

func (c *Client) DeleteEventsByStoryline(ctx context.Context, storylineID string) error {
	if _, err := c.pool.Exec(ctx, `DELETE FROM events WHERE storyline_id = $1`, storylineID); err != nil {
		return fmt.Errorf("deleting storyline events: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanEvent keeps the options column raw so legacy shapes reach the
// migrator untouched.
func scanEvent(row rowScanner) (*store.EventRecord, error) {
	var record store.EventRecord
	var requirements, options []byte
	if err := row.Scan(
		&record.ID, &record.StorylineID, &record.Title, &record.Content,
		&record.IsStarter, &requirements, &record.Position.X, &record.Position.Y,
		&options,
	); err != nil {
		return nil, err
	}
	if len(requirements) > 0 {
		if err := json.Unmarshal(requirements, &record.Requirements); err != nil {
			return nil, fmt.Errorf("unmarshaling requirements: %w", err)
		}
	}
	record.Options = json.RawMessage(options)
	return &record, nil
}
