package repository

import (
	"context"

	"github.com/commonfund/ledgerd/domain"
)

type EventRepository interface {
	Append(ctx context.Context, event domain.Event) error
	ListByEffort(ctx context.Context, effortID int64) ([]domain.Event, error)
}
