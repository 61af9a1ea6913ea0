package repository

import "context"

type TreasuryRepository interface {
	Balance(ctx context.Context) (int64, error)
	// Add applies a signed delta and returns the new balance.
	// A delta that would take the balance negative fails with
	// ErrInsufficientFund and leaves the balance unchanged.
	Add(ctx context.Context, delta int64) (int64, error)
}
