package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/commonfund/ledgerd/domain"
	"github.com/commonfund/ledgerd/repository"
)

type treasuryRepository struct {
	pool *pgxpool.Pool
}

// NewTreasuryRepository returns a Postgres-backed implementation of
// TreasuryRepository. The treasury is a single row guarded by a CHECK
// constraint so the balance can never go negative.
func NewTreasuryRepository(pool *pgxpool.Pool) repository.TreasuryRepository {
	return &treasuryRepository{pool: pool}
}

func (r *treasuryRepository) Balance(ctx context.Context) (int64, error) {
	var balance int64
	err := r.pool.QueryRow(ctx, `SELECT balance_cents FROM treasury WHERE id = 1`).Scan(&balance)
	return balance, err
}

func (r *treasuryRepository) Add(ctx context.Context, delta int64) (int64, error) {
	const query = `
	UPDATE treasury
	SET balance_cents = balance_cents + $1, updated_at = NOW()
	WHERE id = 1 AND balance_cents + $1 >= 0
	RETURNING balance_cents
	`
	var balance int64
	if err := r.pool.QueryRow(ctx, query, delta).Scan(&balance); err != nil {
		// The guard rejects any debit that would overdraw the row.
		return 0, domain.ErrInsufficientFund
	}
	return balance, nil
}
