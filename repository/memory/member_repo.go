package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/commonfund/ledgerd/domain"
	"github.com/commonfund/ledgerd/repository"
)

type memberRepository struct {
	mu        sync.RWMutex
	byHandle  map[string]*domain.Member
	byAddress map[string]string
}

// NewMemberRepository returns an in-memory MemberRepository.
func NewMemberRepository() repository.MemberRepository {
	return &memberRepository{
		byHandle:  make(map[string]*domain.Member),
		byAddress: make(map[string]string),
	}
}

func (r *memberRepository) GetByHandle(ctx context.Context, handle string) (*domain.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	member, ok := r.byHandle[handle]
	if !ok {
		return nil, domain.ErrMemberNotFound
	}
	out := *member
	return &out, nil
}

func (r *memberRepository) GetByAddress(ctx context.Context, address string) (*domain.Member, error) {
	r.mu.RLock()
	handle, ok := r.byAddress[address]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrMemberNotFound
	}
	return r.GetByHandle(ctx, handle)
}

func (r *memberRepository) List(ctx context.Context) ([]domain.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := make([]domain.Member, 0, len(r.byHandle))
	for _, member := range r.byHandle {
		members = append(members, *member)
	}
	sort.Slice(members, func(i, j int) bool {
		return members[i].CreatedAt.Before(members[j].CreatedAt)
	})
	return members, nil
}

func (r *memberRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byHandle), nil
}

func (r *memberRepository) Create(ctx context.Context, member *domain.Member) error {
	if member == nil || member.Handle == "" || member.Address == "" {
		return domain.ErrInvalidPayload
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byHandle[member.Handle]; exists {
		return domain.NewError(domain.ErrCodeConflict, "handle already registered")
	}
	if _, exists := r.byAddress[member.Address]; exists {
		return domain.NewError(domain.ErrCodeConflict, "address already holds a membership")
	}

	now := time.Now()
	member.CreatedAt = now
	member.UpdatedAt = now
	stored := *member
	r.byHandle[member.Handle] = &stored
	r.byAddress[member.Address] = member.Handle
	return nil
}

func (r *memberRepository) Update(ctx context.Context, member *domain.Member) error {
	if member == nil {
		return domain.ErrInvalidPayload
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byHandle[member.Handle]; !ok {
		return domain.ErrMemberNotFound
	}
	member.UpdatedAt = time.Now()
	stored := *member
	r.byHandle[member.Handle] = &stored
	return nil
}
