package pgdb

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
	"github.com/lyricmix/go-backend/internal/usecase"
	"github.com/lyricmix/go-backend/pkg/e"
	"github.com/lyricmix/go-backend/pkg/tr"
)

const (
	statusPending   = "pending"
	statusPublished = "published"
)

// OutboxEventRepo хранит события транзакционного outbox.
type OutboxEventRepo struct {
	pool *pgxpool.Pool
}

func NewOutboxEventRepo(pool *pgxpool.Pool) *OutboxEventRepo {
	return &OutboxEventRepo{
		pool: pool,
	}
}

// Insert записывает событие в outbox в рамках текущей транзакции метаданных.
func (o *OutboxEventRepo) Insert(ctx context.Context, event *usecase.OutboxEvent) error {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		INSERT INTO outbox_events (
			event_id,
			event_type,
			payload,
			status,
			created_at
		) VALUES ($1, $2, $3::jsonb, $4, $5);
	`

	_, err = tx.Exec(ctx, query,
		event.EventID,
		event.EventType,
		string(event.Payload),
		statusPending,
		event.CreatedAt,
	)
	if err != nil {
		if postgresDuplicate(err) {
			return fmt.Errorf("%s: event with id %s already exists", whereami.WhereAmI(), event.EventID)
		}

		return e.Wrap(whereami.WhereAmI(), err)
	}

	_, err = tx.Exec(ctx, "NOTIFY outbox_pending;")
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// FetchPending возвращает неопубликованные события в порядке создания.
func (o *OutboxEventRepo) FetchPending(ctx context.Context, limit int) ([]usecase.OutboxEvent, error) {
	query := `
		SELECT event_id, event_type, payload, created_at
		FROM outbox_events
		WHERE status = $1
		ORDER BY created_at
		LIMIT $2
	`

	rows, err := o.pool.Query(ctx, query, statusPending, limit)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	events := make([]usecase.OutboxEvent, 0, limit)
	for rows.Next() {
		var event usecase.OutboxEvent
		if err := rows.Scan(&event.EventID, &event.EventType, &event.Payload, &event.CreatedAt); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return events, nil
}

// MarkPublished переводит события в статус published после подтверждения брокера.
func (o *OutboxEventRepo) MarkPublished(ctx context.Context, eventIDs []string) error {
	if len(eventIDs) == 0 {
		return nil
	}

	query := `
		UPDATE outbox_events
		SET status = $1, published_at = NOW()
		WHERE event_id = ANY($2) AND status = $3
	`

	_, err := o.pool.Exec(ctx, query, statusPublished, eventIDs, statusPending)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
