package membership

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/commonfund/ledgerd/domain"
	"github.com/commonfund/ledgerd/repository"
)

// ActivityCache is an optional read-through cache for activity lookups.
// Mutations always invalidate; a miss falls back to the member repository.
type ActivityCache interface {
	Get(ctx context.Context, handle string) (active bool, err error)
	Save(ctx context.Context, handle string, active bool, penaltyCents int64) error
	Invalidate(ctx context.Context, handle string) error
}

// TreasuryCreditor receives subscription payments.
type TreasuryCreditor interface {
	Credit(ctx context.Context, amount int64) error
}

// Config holds membership billing parameters.
type Config struct {
	MaxMembers      int
	SubscriptionFee int64 // cents per billing period
	PenaltyRate     int64 // cents accrued per lapsed billing period
	BillingPeriod   time.Duration
	Clock           func() time.Time
}

// Registry maps external addresses to membership handles and tracks each
// member's subscription standing. Activity gates effort commitment.
type Registry struct {
	members  repository.MemberRepository
	cache    ActivityCache
	treasury TreasuryCreditor
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time
}

func New(members repository.MemberRepository, cache ActivityCache, treasury TreasuryCreditor, cfg Config, logger *zap.Logger) *Registry {
	if cfg.MaxMembers <= 0 {
		cfg.MaxMembers = 10
	}
	if cfg.BillingPeriod <= 0 {
		cfg.BillingPeriod = 30 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	return &Registry{
		members:  members,
		cache:    cache,
		treasury: treasury,
		cfg:      cfg,
		logger:   logger,
		now:      now,
	}
}

// Register mints a membership handle for an address. Each address holds at
// most one handle and total membership is capped.
func (r *Registry) Register(ctx context.Context, address string) (*domain.Member, error) {
	if address == "" {
		return nil, domain.ErrInvalidPayload
	}
	if _, err := r.members.GetByAddress(ctx, address); err == nil {
		return nil, domain.NewError(domain.ErrCodeConflict, "address already holds a membership")
	}

	count, err := r.members.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count >= r.cfg.MaxMembers {
		return nil, domain.NewError(domain.ErrCodeConflict, "membership is full")
	}

	now := r.now()
	member := &domain.Member{
		Handle:        uuid.NewString(),
		Address:       address,
		Status:        "active",
		PaidThrough:   now.Add(r.cfg.BillingPeriod),
		LastAccruedAt: now,
	}
	if err := r.members.Create(ctx, member); err != nil {
		return nil, err
	}
	r.logger.Info("member registered", zap.String("handle", member.Handle))
	return member, nil
}

func (r *Registry) IsMember(ctx context.Context, address string) (bool, error) {
	if _, err := r.members.GetByAddress(ctx, address); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// HandleOf resolves an address to its one membership handle.
func (r *Registry) HandleOf(ctx context.Context, address string) (string, error) {
	member, err := r.members.GetByAddress(ctx, address)
	if err != nil {
		return "", err
	}
	return member.Handle, nil
}

func (r *Registry) GetByHandle(ctx context.Context, handle string) (*domain.Member, error) {
	return r.members.GetByHandle(ctx, handle)
}

func (r *Registry) GetByAddress(ctx context.Context, address string) (*domain.Member, error) {
	return r.members.GetByAddress(ctx, address)
}

func (r *Registry) List(ctx context.Context) ([]domain.Member, error) {
	return r.members.List(ctx)
}

// IsActive reports whether the member may take on commitments right now.
// Reads go through the cache when one is configured; every mutation
// invalidates, so a check immediately after Accrue sees the fresh record.
func (r *Registry) IsActive(ctx context.Context, handle string) (bool, error) {
	if r.cache != nil {
		if active, err := r.cache.Get(ctx, handle); err == nil {
			return active, nil
		}
	}

	member, err := r.members.GetByHandle(ctx, handle)
	if err != nil {
		return false, err
	}
	active := member.IsActive(r.now())
	if r.cache != nil {
		if err := r.cache.Save(ctx, handle, active, member.PenaltyCents); err != nil {
			r.logger.Warn("activity cache save failed", zap.Error(err))
		}
	}
	return active, nil
}

// Accrue applies the periodic penalty tick: one penalty per full billing
// period the subscription has been lapsed since the last tick.
func (r *Registry) Accrue(ctx context.Context, handle string) error {
	member, err := r.members.GetByHandle(ctx, handle)
	if err != nil {
		return err
	}

	now := r.now()
	start := member.PaidThrough
	if member.LastAccruedAt.After(start) {
		start = member.LastAccruedAt
	}
	if now.After(start) {
		periods := int64(now.Sub(start) / r.cfg.BillingPeriod)
		if periods > 0 {
			member.PenaltyCents += periods * r.cfg.PenaltyRate
			member.LastAccruedAt = start.Add(time.Duration(periods) * r.cfg.BillingPeriod)
			r.logger.Info("penalty accrued",
				zap.String("handle", handle),
				zap.Int64("periods", periods),
				zap.Int64("penalty_cents", member.PenaltyCents))
		}
	}
	if member.LastAccruedAt.Before(now) && !now.After(member.PaidThrough) {
		member.LastAccruedAt = now
	}

	if err := r.members.Update(ctx, member); err != nil {
		return err
	}
	r.invalidate(ctx, handle)
	return nil
}

// PaySubscription settles any outstanding penalty plus one subscription fee,
// extends the paid-through horizon, and credits the treasury.
func (r *Registry) PaySubscription(ctx context.Context, handle string, amount int64) (*domain.Member, error) {
	member, err := r.members.GetByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}

	due := member.PenaltyCents + r.cfg.SubscriptionFee
	if amount < due {
		return nil, domain.NewError(domain.ErrCodeInvalid, "payment does not cover penalty and subscription fee")
	}

	now := r.now()
	member.PenaltyCents = 0
	if member.PaidThrough.Before(now) {
		member.PaidThrough = now
	}
	member.PaidThrough = member.PaidThrough.Add(r.cfg.BillingPeriod)
	member.LastAccruedAt = now

	if err := r.members.Update(ctx, member); err != nil {
		return nil, err
	}
	if r.treasury != nil {
		if err := r.treasury.Credit(ctx, amount); err != nil {
			return nil, err
		}
	}
	r.invalidate(ctx, handle)
	r.logger.Info("subscription paid",
		zap.String("handle", handle),
		zap.Int64("amount_cents", amount))
	return member, nil
}

// CreditPayout adds a payout to the member's internal balance.
func (r *Registry) CreditPayout(ctx context.Context, handle string, amount int64) error {
	member, err := r.members.GetByHandle(ctx, handle)
	if err != nil {
		return err
	}
	member.BalanceCents += amount
	if err := r.members.Update(ctx, member); err != nil {
		return err
	}
	r.invalidate(ctx, handle)
	return nil
}

func (r *Registry) invalidate(ctx context.Context, handle string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Invalidate(ctx, handle); err != nil {
		r.logger.Warn("activity cache invalidation failed", zap.Error(err))
	}
}
