package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/commonfund/ledgerd/domain"
	"github.com/commonfund/ledgerd/repository"
)

type eventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository returns a Postgres-backed implementation of EventRepository.
func NewEventRepository(pool *pgxpool.Pool) repository.EventRepository {
	return &eventRepository{pool: pool}
}

func (r *eventRepository) Append(ctx context.Context, event domain.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO effort_events (id, effort_id, kind, actor_handle, amount_cents, matched_cents, duration_days)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (id) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query,
		event.ID,
		event.EffortID,
		event.Kind,
		event.ActorHandle,
		event.AmountCents,
		event.MatchedCents,
		event.DurationDays,
	)
	return err
}

func (r *eventRepository) ListByEffort(ctx context.Context, effortID int64) ([]domain.Event, error) {
	const query = `
	SELECT id, effort_id, kind, actor_handle, amount_cents, matched_cents, duration_days, created_at
	FROM effort_events
	WHERE effort_id = $1
	ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query, effortID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var event domain.Event
		if err := rows.Scan(
			&event.ID,
			&event.EffortID,
			&event.Kind,
			&event.ActorHandle,
			&event.AmountCents,
			&event.MatchedCents,
			&event.DurationDays,
			&event.CreatedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
