package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/commonfund/ledgerd/domain"
	"github.com/commonfund/ledgerd/repository"
)

type eventRepository struct {
	mu     sync.RWMutex
	events []domain.Event
}

// NewEventRepository returns an in-memory EventRepository.
func NewEventRepository() repository.EventRepository {
	return &eventRepository{}
}

func (r *eventRepository) Append(ctx context.Context, event domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	r.events = append(r.events, event)
	return nil
}

func (r *eventRepository) ListByEffort(ctx context.Context, effortID int64) ([]domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var events []domain.Event
	for _, event := range r.events {
		if event.EffortID == effortID {
			events = append(events, event)
		}
	}
	return events, nil
}
