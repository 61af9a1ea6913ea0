package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/commonfund/ledgerd/domain"
	"github.com/commonfund/ledgerd/repository"
)

type memberRepository struct {
	pool *pgxpool.Pool
}

// NewMemberRepository returns a Postgres-backed implementation of MemberRepository.
func NewMemberRepository(pool *pgxpool.Pool) repository.MemberRepository {
	return &memberRepository{pool: pool}
}

const memberColumns = `
	handle, address, status, balance_cents, penalty_cents,
	paid_through, last_accrued_at, created_at, updated_at
`

func (r *memberRepository) GetByHandle(ctx context.Context, handle string) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE handle = $1`
	return scanMember(r.pool.QueryRow(ctx, query, handle))
}

func (r *memberRepository) GetByAddress(ctx context.Context, address string) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE address = $1`
	return scanMember(r.pool.QueryRow(ctx, query, address))
}

func (r *memberRepository) List(ctx context.Context) ([]domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, *member)
	}
	return members, rows.Err()
}

func (r *memberRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM members`).Scan(&count)
	return count, err
}

func (r *memberRepository) Create(ctx context.Context, member *domain.Member) error {
	if member == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO members (handle, address, status, balance_cents, penalty_cents, paid_through, last_accrued_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		member.Handle,
		member.Address,
		member.Status,
		member.BalanceCents,
		member.PenaltyCents,
		member.PaidThrough,
		member.LastAccruedAt,
	).Scan(&member.CreatedAt, &member.UpdatedAt)
}

func (r *memberRepository) Update(ctx context.Context, member *domain.Member) error {
	if member == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE members
	SET status = $2,
		balance_cents = $3,
		penalty_cents = $4,
		paid_through = $5,
		last_accrued_at = $6,
		updated_at = NOW()
	WHERE handle = $1
	RETURNING updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		member.Handle,
		member.Status,
		member.BalanceCents,
		member.PenaltyCents,
		member.PaidThrough,
		member.LastAccruedAt,
	).Scan(&member.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrMemberNotFound
		}
		return err
	}
	return nil
}

func scanMember(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Member, error) {
	var member domain.Member
	if err := row.Scan(
		&member.Handle,
		&member.Address,
		&member.Status,
		&member.BalanceCents,
		&member.PenaltyCents,
		&member.PaidThrough,
		&member.LastAccruedAt,
		&member.CreatedAt,
		&member.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}
