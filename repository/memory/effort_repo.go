package memory

import (
	"context"
	"sync"
	"time"

	"github.com/commonfund/ledgerd/domain"
	"github.com/commonfund/ledgerd/repository"
)

type effortRepository struct {
	mu      sync.RWMutex
	nextID  int64
	efforts map[int64]*domain.Effort
}

// NewEffortRepository returns an in-memory EffortRepository used by tests
// and standalone runs. Ids are sequential and never reused.
func NewEffortRepository() repository.EffortRepository {
	return &effortRepository{
		nextID:  1,
		efforts: make(map[int64]*domain.Effort),
	}
}

func (r *effortRepository) GetByID(ctx context.Context, id int64) (*domain.Effort, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	effort, ok := r.efforts[id]
	if !ok {
		return nil, domain.ErrEffortNotFound
	}
	return effort.Clone(), nil
}

func (r *effortRepository) List(ctx context.Context, filter repository.EffortFilter) ([]domain.Effort, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	var efforts []domain.Effort
	skipped := 0
	for id := int64(1); id < r.nextID && len(efforts) < limit; id++ {
		effort, ok := r.efforts[id]
		if !ok {
			continue
		}
		if filter.Handle != "" && !effort.IsProposer(filter.Handle) && !effort.IsPerformer(filter.Handle) {
			continue
		}
		if filter.Concluded != nil && effort.Concluded != *filter.Concluded {
			continue
		}
		if filter.State != "" && string(effort.State()) != filter.State {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}
		efforts = append(efforts, *effort.Clone())
	}
	return efforts, nil
}

func (r *effortRepository) Create(ctx context.Context, effort *domain.Effort) (*domain.Effort, error) {
	if effort == nil {
		return nil, domain.ErrInvalidPayload
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	effort.ID = r.nextID
	r.nextID++
	now := time.Now()
	effort.CreatedAt = now
	effort.UpdatedAt = now
	r.efforts[effort.ID] = effort.Clone()
	return effort, nil
}

func (r *effortRepository) Update(ctx context.Context, effort *domain.Effort) error {
	return r.update(ctx, effort, false)
}

func (r *effortRepository) UpdateWhereUnconcluded(ctx context.Context, effort *domain.Effort) error {
	return r.update(ctx, effort, true)
}

func (r *effortRepository) update(_ context.Context, effort *domain.Effort, guardUnconcluded bool) error {
	if effort == nil {
		return domain.ErrInvalidPayload
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.efforts[effort.ID]
	if !ok {
		return domain.ErrEffortNotFound
	}
	if guardUnconcluded && stored.Concluded {
		return domain.ErrEffortConcluded
	}
	effort.UpdatedAt = time.Now()
	r.efforts[effort.ID] = effort.Clone()
	return nil
}
