package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"eventflow/internal/narrative"
	"eventflow/internal/store"
)

func (c *Client) GetEvent(ctx context.Context, id string) (*store.EventRecord, error) {
	query := `
	SELECT id, storyline_id, title, content, is_starter, requirements, position_x, position_y, options
	FROM events WHERE id = ?
	`
	record, err := scanEvent(c.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
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
	FROM events WHERE storyline_id = ? ORDER BY id
	`
	rows, err := c.db.QueryContext(ctx, query, storylineID)
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
	optionsJSON, requirementsJSON, err := encodeEvent(event)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO events (id, storyline_id, title, content, is_starter, requirements, position_x, position_y, options)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = c.db.ExecContext(ctx, query,
		event.ID, event.StorylineID, event.Title, event.Content, event.IsStarter,
		string(requirementsJSON), event.Position.X, event.Position.Y, string(optionsJSON),
	)
	if err != nil {
		return fmt.Errorf("adding event: %w", err)
	}
	return nil
}

func (c *Client) UpdateEvent(ctx context.Context, event *narrative.Event) error {
	optionsJSON, requirementsJSON, err := encodeEvent(event)
	if err != nil {
		return err
	}

	query := `
	UPDATE events
	SET title = ?, content = ?, is_starter = ?, requirements = ?, position_x = ?, position_y = ?, options = ?
	WHERE id = ?
	`
	result, err := c.db.ExecContext(ctx, query,
		event.Title, event.Content, event.IsStarter,
		string(requirementsJSON), event.Position.X, event.Position.Y,
		string(optionsJSON), event.ID,
	)
	if err != nil {
		return fmt.Errorf("updating event: %w", err)
	}
	return requireRow(result, "event")
}

func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	return nil
}

func (c *Client) DeleteEventsByStoryline(ctx context.Context, storylineID string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM events WHERE storyline_id = ?`, storylineID)
	if err != nil {
		return fmt.Errorf("deleting storyline events: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanEvent leaves the options column as raw JSON. Rows written by older
// releases may hold legacy option shapes; decoding them is the migrator's
// job, not the store's.
func scanEvent(row rowScanner) (*store.EventRecord, error) {
	var record store.EventRecord
	var requirements, options string
	if err := row.Scan(
		&record.ID, &record.StorylineID, &record.Title, &record.Content,
		&record.IsStarter, &requirements, &record.Position.X, &record.Position.Y,
		&options,
	); err != nil {
		return nil, err
	}
	if requirements != "" {
		if err := json.Unmarshal([]byte(requirements), &record.Requirements); err != nil {
			return nil, fmt.Errorf("unmarshaling requirements: %w", err)
		}
	}
	record.Options = json.RawMessage(options)
	return &record, nil
}

func encodeEvent(event *narrative.Event) (options, requirements json.RawMessage, err error) {
	options, err = store.EncodeOptions(event.Options)
	if err != nil {
		return nil, nil, err
	}
	requirements, err = store.EncodeRequirements(event.Requirements)
	if err != nil {
		return nil, nil, err
	}
	return options, requirements, nil
}
