package memory

import (
	"context"
	"sync"

	"github.com/commonfund/ledgerd/domain"
	"github.com/commonfund/ledgerd/repository"
)

type treasuryRepository struct {
	mu      sync.Mutex
	balance int64
}

// NewTreasuryRepository returns an in-memory TreasuryRepository seeded with
// the given opening balance.
func NewTreasuryRepository(opening int64) repository.TreasuryRepository {
	return &treasuryRepository{balance: opening}
}

func (r *treasuryRepository) Balance(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.balance, nil
}

func (r *treasuryRepository) Add(ctx context.Context, delta int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.balance+delta < 0 {
		return 0, domain.ErrInsufficientFund
	}
	r.balance += delta
	return r.balance, nil
}
