package treasury

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/commonfund/ledgerd/domain"
	"github.com/commonfund/ledgerd/repository"
)

// errNotConfigured covers calls through a nil *Treasury, which otherwise
// sneaks past interface nil checks as a typed nil.
var errNotConfigured = domain.NewError(domain.ErrCodeInternal, "treasury not configured")

// Treasury funnels every balance mutation through Debit/Credit so the
// never-negative invariant is enforced in one place. Match combines the
// read and the debit under one lock because matching spans two steps and
// concurrent approvals would otherwise race on the shared balance.
type Treasury struct {
	repo   repository.TreasuryRepository
	logger *zap.Logger

	mu sync.Mutex
}

func New(repo repository.TreasuryRepository, logger *zap.Logger) *Treasury {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Treasury{
		repo:   repo,
		logger: logger,
	}
}

func (t *Treasury) Balance(ctx context.Context) (int64, error) {
	if t == nil || t.repo == nil {
		return 0, errNotConfigured
	}
	return t.repo.Balance(ctx)
}

func (t *Treasury) Credit(ctx context.Context, amount int64) error {
	if t == nil || t.repo == nil {
		return errNotConfigured
	}
	if amount < 0 {
		return domain.ErrInvalidPayload
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := t.repo.Add(ctx, amount)
	return err
}

func (t *Treasury) Debit(ctx context.Context, amount int64) error {
	if t == nil || t.repo == nil {
		return errNotConfigured
	}
	if amount < 0 {
		return domain.ErrInvalidPayload
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := t.repo.Add(ctx, -amount)
	return err
}

// Match debits and returns min(deposit, balance), the treasury contribution
// added to a performer's payout on approved completion.
func (t *Treasury) Match(ctx context.Context, deposit int64) (int64, error) {
	if t == nil || t.repo == nil {
		return 0, errNotConfigured
	}
	if deposit < 0 {
		return 0, domain.ErrInvalidPayload
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	balance, err := t.repo.Balance(ctx)
	if err != nil {
		return 0, err
	}
	matched := deposit
	if balance < matched {
		matched = balance
	}
	if matched == 0 {
		return 0, nil
	}
	if _, err := t.repo.Add(ctx, -matched); err != nil {
		return 0, err
	}
	t.logger.Debug("treasury matched",
		zap.Int64("deposit_cents", deposit),
		zap.Int64("matched_cents", matched))
	return matched, nil
}
