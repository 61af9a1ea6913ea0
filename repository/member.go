package repository

import (
	"context"

	"github.com/commonfund/ledgerd/domain"
)

type MemberRepository interface {
	GetByHandle(ctx context.Context, handle string) (*domain.Member, error)
	GetByAddress(ctx context.Context, address string) (*domain.Member, error)
	List(ctx context.Context) ([]domain.Member, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, member *domain.Member) error
	Update(ctx context.Context, member *domain.Member) error
}
