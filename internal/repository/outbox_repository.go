package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Freeeeeet/faculty_scheduler/internal/model"
)

type OutboxRepository interface {
	Insert(ctx context.Context, event model.Event) error
	// FetchUnpublished locks up to limit unpublished events, skipping rows
	// locked by a concurrent dispatcher. Call it inside a transaction.
	FetchUnpublished(ctx context.Context, limit int) ([]model.Event, error)
	MarkPublished(ctx context.Context, id uuid.UUID) error
}

type OutboxPostgresRepository struct {
	db Execer
}

func NewOutboxPostgresRepository(db Execer) *OutboxPostgresRepository {
	return &OutboxPostgresRepository{db: db}
}

func (r *OutboxPostgresRepository) Insert(ctx context.Context, event model.Event) error {
	query := `
		INSERT INTO outbox_events (id, event_type, payload, created_at)
		VALUES ($1, $2, $3, now())
	`

	if _, err := r.db.Exec(ctx, query, event.ID, event.Type, []byte(event.Payload)); err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}

	return nil
}

func (r *OutboxPostgresRepository) FetchUnpublished(ctx context.Context, limit int) ([]model.Event, error) {
	query := `
		SELECT id, event_type, payload, created_at, published_at
		FROM outbox_events
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch outbox events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var (
			e       model.Event
			payload []byte
		)
		if err := rows.Scan(&e.ID, &e.Type, &payload, &e.CreatedAt, &e.PublishedAt); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		e.Payload = payload
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox events: %w", err)
	}

	return events, nil
}

func (r *OutboxPostgresRepository) MarkPublished(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `UPDATE outbox_events SET published_at = now() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("mark outbox event published: %w", err)
	}
	return nil
}
