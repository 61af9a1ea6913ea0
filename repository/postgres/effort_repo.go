package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/commonfund/ledgerd/domain"
	"github.com/commonfund/ledgerd/repository"
)

type effortRepository struct {
	pool *pgxpool.Pool
}

// NewEffortRepository returns a Postgres-backed implementation of EffortRepository.
func NewEffortRepository(pool *pgxpool.Pool) repository.EffortRepository {
	return &effortRepository{pool: pool}
}

const effortColumns = `
	id, proposer_handle, performer_handle, deposit_cents, duration_days,
	pending_duration_days, committed, commitment_accepted_at,
	completion_marked, completed_at, concluded, resolution,
	created_at, updated_at
`

func (r *effortRepository) GetByID(ctx context.Context, id int64) (*domain.Effort, error) {
	query := `SELECT ` + effortColumns + ` FROM efforts WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanEffort(row)
}

func (r *effortRepository) List(ctx context.Context, filter repository.EffortFilter) ([]domain.Effort, error) {
	query := `
	SELECT ` + effortColumns + `
	FROM efforts
	WHERE ($1 = '' OR proposer_handle = $1 OR performer_handle = $1)
	  AND ($2::boolean IS NULL OR concluded = $2)
	ORDER BY created_at DESC
	LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query, filter.Handle, filter.Concluded, clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var efforts []domain.Effort
	for rows.Next() {
		effort, err := scanEffort(rows)
		if err != nil {
			return nil, err
		}
		if filter.State != "" && string(effort.State()) != filter.State {
			continue
		}
		efforts = append(efforts, *effort)
	}
	return efforts, rows.Err()
}

func (r *effortRepository) Create(ctx context.Context, effort *domain.Effort) (*domain.Effort, error) {
	if effort == nil {
		return nil, domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO efforts (proposer_handle, performer_handle, deposit_cents, duration_days)
	VALUES ($1, $2, $3, $4)
	RETURNING id, created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		effort.ProposerHandle,
		effort.PerformerHandle,
		effort.DepositCents,
		effort.DurationDays,
	).Scan(&effort.ID, &effort.CreatedAt, &effort.UpdatedAt); err != nil {
		return nil, err
	}
	return effort, nil
}

func (r *effortRepository) Update(ctx context.Context, effort *domain.Effort) error {
	return r.update(ctx, effort, false)
}

func (r *effortRepository) UpdateWhereUnconcluded(ctx context.Context, effort *domain.Effort) error {
	return r.update(ctx, effort, true)
}

func (r *effortRepository) update(ctx context.Context, effort *domain.Effort, guardUnconcluded bool) error {
	if effort == nil {
		return domain.ErrInvalidPayload
	}

	query := `
	UPDATE efforts
	SET deposit_cents = $2,
		duration_days = $3,
		pending_duration_days = $4,
		committed = $5,
		commitment_accepted_at = $6,
		completion_marked = $7,
		completed_at = $8,
		concluded = $9,
		resolution = $10,
		updated_at = NOW()
	WHERE id = $1
	`
	if guardUnconcluded {
		query += ` AND concluded = false`
	}

	tag, err := r.pool.Exec(ctx, query,
		effort.ID,
		effort.DepositCents,
		effort.DurationDays,
		effort.PendingDurationDays,
		effort.Committed,
		effort.CommitmentAcceptedAt,
		effort.CompletionMarked,
		effort.CompletedAt,
		effort.Concluded,
		effort.Resolution,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if guardUnconcluded {
			// Row exists but the guard rejected it, or the id is unknown.
			if _, getErr := r.GetByID(ctx, effort.ID); getErr != nil {
				return getErr
			}
			return domain.ErrEffortConcluded
		}
		return domain.ErrEffortNotFound
	}
	return nil
}

func scanEffort(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Effort, error) {
	var effort domain.Effort
	var (
		pendingDays *int
		acceptedAt  *time.Time
		completedAt *time.Time
		resolution  *string
	)

	if err := row.Scan(
		&effort.ID,
		&effort.ProposerHandle,
		&effort.PerformerHandle,
		&effort.DepositCents,
		&effort.DurationDays,
		&pendingDays,
		&effort.Committed,
		&acceptedAt,
		&effort.CompletionMarked,
		&completedAt,
		&effort.Concluded,
		&resolution,
		&effort.CreatedAt,
		&effort.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEffortNotFound
		}
		return nil, err
	}

	effort.PendingDurationDays = pendingDays
	effort.CommitmentAcceptedAt = acceptedAt
	effort.CompletedAt = completedAt
	if resolution != nil {
		effort.Resolution = *resolution
	}
	return &effort, nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 100
	}
	return limit
}
