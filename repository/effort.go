package repository

import (
	"context"

	"github.com/commonfund/ledgerd/domain"
)

type EffortFilter struct {
	Handle    string
	State     string
	Concluded *bool
	Limit     int
	Offset    int
}

type EffortRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Effort, error)
	List(ctx context.Context, filter EffortFilter) ([]domain.Effort, error)
	// Create assigns a fresh sequential id and persists the record.
	Create(ctx context.Context, effort *domain.Effort) (*domain.Effort, error)
	Update(ctx context.Context, effort *domain.Effort) error
	// UpdateWhereUnconcluded persists the record only if the stored row is
	// still unconcluded. Returns ErrEffortConcluded when the guard fails,
	// which makes the three terminal transitions mutually exclusive.
	UpdateWhereUnconcluded(ctx context.Context, effort *domain.Effort) error
}
