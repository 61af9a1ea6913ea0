package effort_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/commonfund/ledgerd/domain"
	"github.com/commonfund/ledgerd/repository"
	"github.com/commonfund/ledgerd/repository/memory"
	"github.com/commonfund/ledgerd/usecase/effort"
	"github.com/commonfund/ledgerd/usecase/membership"
	treasuryUC "github.com/commonfund/ledgerd/usecase/treasury"
	"github.com/commonfund/ledgerd/usecase/vault"
)

const (
	proposerAddr  = "addr-proposer"
	performerAddr = "addr-performer"
	minDeposit    = int64(1000)
	confirmWindow = 72 * time.Hour
	billingPeriod = 30 * 24 * time.Hour
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type payoutCall struct {
	handle string
	amount int64
}

type fakeTransfer struct {
	mu     sync.Mutex
	calls  []payoutCall
	err    error
	before func(ctx context.Context)
}

func (f *fakeTransfer) Payout(ctx context.Context, handle string, amount int64) error {
	if f.before != nil {
		f.before(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, payoutCall{handle: handle, amount: amount})
	return nil
}

func (f *fakeTransfer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fixture struct {
	ledger    *effort.Ledger
	registry  *membership.Registry
	treasury  *treasuryUC.Treasury
	efforts   repository.EffortRepository
	payouts   *fakeTransfer
	clock     *fakeClock
	proposer  *domain.Member
	performer *domain.Member
}

func newFixture(t *testing.T, openingTreasury int64) *fixture {
	t.Helper()
	clock := newFakeClock()
	payouts := &fakeTransfer{}

	tre := treasuryUC.New(memory.NewTreasuryRepository(openingTreasury), zap.NewNop())
	registry := membership.New(memory.NewMemberRepository(), nil, tre, membership.Config{
		SubscriptionFee: 2500,
		PenaltyRate:     500,
		BillingPeriod:   billingPeriod,
		Clock:           clock.Now,
	}, zap.NewNop())

	effortRepo := memory.NewEffortRepository()
	ledger := effort.New(effortRepo, memory.NewEventRepository(), registry, tre, payouts, nil, effort.Config{
		MinDepositCents: minDeposit,
		ConfirmWindow:   confirmWindow,
		Clock:           clock.Now,
	}, zap.NewNop())

	ctx := context.Background()
	proposer, err := registry.Register(ctx, proposerAddr)
	require.NoError(t, err)
	performer, err := registry.Register(ctx, performerAddr)
	require.NoError(t, err)

	return &fixture{
		ledger:    ledger,
		registry:  registry,
		treasury:  tre,
		efforts:   effortRepo,
		payouts:   payouts,
		clock:     clock,
		proposer:  proposer,
		performer: performer,
	}
}

func (f *fixture) submit(t *testing.T, deposit int64, days int) *domain.Effort {
	t.Helper()
	record, err := f.ledger.SubmitProposal(context.Background(), proposerAddr, performerAddr, deposit, days)
	require.NoError(t, err)
	return record
}

// markReady walks an effort to the completion_marked state.
func (f *fixture) markReady(t *testing.T, deposit int64, days int) *domain.Effort {
	t.Helper()
	ctx := context.Background()
	record := f.submit(t, deposit, days)
	_, err := f.ledger.CommitToEffort(ctx, performerAddr, record.ID)
	require.NoError(t, err)
	record, err = f.ledger.MarkEffortCompleted(ctx, performerAddr, record.ID)
	require.NoError(t, err)
	return record
}

func TestSubmitProposal(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	record := f.submit(t, 5000, 14)
	assert.Equal(t, domain.EffortProposed, record.State())
	assert.Equal(t, f.proposer.Handle, record.ProposerHandle)
	assert.Equal(t, f.performer.Handle, record.PerformerHandle)
	assert.Equal(t, int64(5000), record.DepositCents)
	assert.Equal(t, 14, record.DurationDays)
	assert.False(t, record.Committed)

	events, err := f.ledger.ListEvents(ctx, record.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventEffortSubmitted, events[0].Kind)
	assert.Equal(t, int64(5000), events[0].AmountCents)
}

func TestSubmitProposal_Validation(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	_, err := f.ledger.SubmitProposal(ctx, proposerAddr, performerAddr, minDeposit-1, 14)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid), "deposit below minimum: %v", err)

	_, err = f.ledger.SubmitProposal(ctx, proposerAddr, performerAddr, 5000, 0)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid), "zero duration: %v", err)

	_, err = f.ledger.SubmitProposal(ctx, proposerAddr, performerAddr, 5000, effort.MaxDurationDays+1)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid), "duration over cap: %v", err)

	_, err = f.ledger.SubmitProposal(ctx, proposerAddr, proposerAddr, 5000, 14)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid), "self proposal: %v", err)

	_, err = f.ledger.SubmitProposal(ctx, proposerAddr, "addr-stranger", 5000, 14)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid), "unknown performer: %v", err)

	_, err = f.ledger.SubmitProposal(ctx, "addr-stranger", performerAddr, 5000, 14)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthorized), "unknown proposer: %v", err)
}

func TestSubmitProposal_LapsedProposerRejected(t *testing.T) {
	f := newFixture(t, 0)
	f.clock.Advance(billingPeriod + 24*time.Hour)

	_, err := f.ledger.SubmitProposal(context.Background(), proposerAddr, performerAddr, 5000, 14)
	assert.ErrorIs(t, err, domain.ErrMemberInactive)
}

func TestDurationRenegotiation(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	record := f.submit(t, 5000, 14)

	// Only the performer may request.
	_, err := f.ledger.RequestDurationUpdate(ctx, proposerAddr, record.ID, 20)
	assert.ErrorIs(t, err, domain.ErrNotPerformer)

	// Approval without a pending request is a conflict.
	_, err = f.ledger.ApproveDurationUpdate(ctx, proposerAddr, record.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConflict))

	// A second request replaces the first.
	_, err = f.ledger.RequestDurationUpdate(ctx, performerAddr, record.ID, 20)
	require.NoError(t, err)
	updated, err := f.ledger.RequestDurationUpdate(ctx, performerAddr, record.ID, 25)
	require.NoError(t, err)
	require.NotNil(t, updated.PendingDurationDays)
	assert.Equal(t, 25, *updated.PendingDurationDays)
	assert.Equal(t, 14, updated.DurationDays)

	// Only the proposer may approve.
	_, err = f.ledger.ApproveDurationUpdate(ctx, performerAddr, record.ID)
	assert.ErrorIs(t, err, domain.ErrNotProposer)

	approved, err := f.ledger.ApproveDurationUpdate(ctx, proposerAddr, record.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, approved.DurationDays)
	assert.Nil(t, approved.PendingDurationDays)

	// Duration events carry the day count in their own field; the money
	// fields stay zero.
	events, err := f.ledger.ListEvents(ctx, record.ID)
	require.NoError(t, err)
	last := events[len(events)-1]
	assert.Equal(t, domain.EventDurationApproved, last.Kind)
	assert.Equal(t, 25, last.DurationDays)
	assert.Zero(t, last.AmountCents)
}

func TestDurationRenegotiation_AfterCommitMovesDeadline(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	record := f.submit(t, 5000, 10)

	committed, err := f.ledger.CommitToEffort(ctx, performerAddr, record.ID)
	require.NoError(t, err)
	originalDeadline := committed.Deadline()

	_, err = f.ledger.RequestDurationUpdate(ctx, performerAddr, record.ID, 20)
	require.NoError(t, err)
	approved, err := f.ledger.ApproveDurationUpdate(ctx, proposerAddr, record.ID)
	require.NoError(t, err)

	assert.Equal(t, originalDeadline.Add(10*24*time.Hour), approved.Deadline())
}

func TestDurationCap_DeadlineStaysInTheFuture(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	// An uncapped day count would wrap the deadline into the past and let
	// anyone deadline-fail a freshly committed effort.
	_, err := f.ledger.SubmitProposal(ctx, proposerAddr, performerAddr, 5000, 200000)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	record := f.submit(t, 5000, effort.MaxDurationDays)
	_, err = f.ledger.RequestDurationUpdate(ctx, performerAddr, record.ID, 200000)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	committed, err := f.ledger.CommitToEffort(ctx, performerAddr, record.ID)
	require.NoError(t, err)
	assert.True(t, committed.Deadline().After(f.clock.Now()))

	_, err = f.ledger.FailIfNotCompletedByDeadline(ctx, "", record.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeTooEarly))
}

func TestCommitToEffort(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	record := f.submit(t, 5000, 14)

	_, err := f.ledger.CommitToEffort(ctx, proposerAddr, record.ID)
	assert.ErrorIs(t, err, domain.ErrNotPerformer)

	committed, err := f.ledger.CommitToEffort(ctx, performerAddr, record.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EffortCommitted, committed.State())
	require.NotNil(t, committed.CommitmentAcceptedAt)
	assert.Equal(t, f.clock.Now(), *committed.CommitmentAcceptedAt)
	assert.Equal(t, f.clock.Now().Add(14*24*time.Hour), committed.Deadline())

	_, err = f.ledger.CommitToEffort(ctx, performerAddr, record.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConflict), "double commit: %v", err)
}

func TestCommitToEffort_LapsedPerformerBlocked(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	record := f.submit(t, 5000, 14)

	// Past paid-through plus one full billing period: the accrual tick at
	// commit time applies a penalty, which makes the performer inactive.
	f.clock.Advance(2*billingPeriod + 24*time.Hour)

	_, err := f.ledger.CommitToEffort(ctx, performerAddr, record.ID)
	assert.ErrorIs(t, err, domain.ErrMemberInactive)

	stored, err := f.ledger.GetEffort(ctx, record.ID)
	require.NoError(t, err)
	assert.False(t, stored.Committed)

	performer, err := f.registry.GetByHandle(ctx, f.performer.Handle)
	require.NoError(t, err)
	assert.Equal(t, int64(500), performer.PenaltyCents)
}

func TestMarkEffortCompleted(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	record := f.submit(t, 5000, 14)

	_, err := f.ledger.MarkEffortCompleted(ctx, performerAddr, record.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConflict), "mark before commit: %v", err)

	_, err = f.ledger.CommitToEffort(ctx, performerAddr, record.ID)
	require.NoError(t, err)

	_, err = f.ledger.MarkEffortCompleted(ctx, proposerAddr, record.ID)
	assert.ErrorIs(t, err, domain.ErrNotPerformer)

	marked, err := f.ledger.MarkEffortCompleted(ctx, performerAddr, record.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EffortCompletionMarked, marked.State())
	require.NotNil(t, marked.CompletedAt)

	_, err = f.ledger.MarkEffortCompleted(ctx, performerAddr, record.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConflict), "double mark: %v", err)
}

func TestApproveEffortCompletion_PaysDepositPlusMatch(t *testing.T) {
	f := newFixture(t, 4000)
	ctx := context.Background()
	record := f.markReady(t, 10000, 14)

	approved, err := f.ledger.ApproveEffortCompletion(ctx, proposerAddr, record.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EffortApproved, approved.State())
	assert.Equal(t, domain.ResolutionApproved, approved.Resolution)
	assert.Zero(t, approved.DepositCents)

	// Treasury held less than the deposit, so the match is the full balance.
	require.Len(t, f.payouts.calls, 1)
	assert.Equal(t, f.performer.Handle, f.payouts.calls[0].handle)
	assert.Equal(t, int64(14000), f.payouts.calls[0].amount)

	balance, err := f.treasury.Balance(ctx)
	require.NoError(t, err)
	assert.Zero(t, balance)

	events, err := f.ledger.ListEvents(ctx, record.ID)
	require.NoError(t, err)
	last := events[len(events)-1]
	assert.Equal(t, domain.EventCompletionApproved, last.Kind)
	assert.Equal(t, int64(14000), last.AmountCents)
	assert.Equal(t, int64(4000), last.MatchedCents)
}

func TestApproveEffortCompletion_MatchCappedAtDeposit(t *testing.T) {
	f := newFixture(t, 50000)
	ctx := context.Background()
	record := f.markReady(t, 2000, 14)

	_, err := f.ledger.ApproveEffortCompletion(ctx, proposerAddr, record.ID)
	require.NoError(t, err)

	require.Len(t, f.payouts.calls, 1)
	assert.Equal(t, int64(4000), f.payouts.calls[0].amount)

	balance, err := f.treasury.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(48000), balance)
}

func TestApproveEffortCompletion_Preconditions(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	record := f.submit(t, 5000, 14)

	_, err := f.ledger.ApproveEffortCompletion(ctx, proposerAddr, record.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConflict), "approve before mark: %v", err)

	_, err = f.ledger.CommitToEffort(ctx, performerAddr, record.ID)
	require.NoError(t, err)
	_, err = f.ledger.MarkEffortCompleted(ctx, performerAddr, record.ID)
	require.NoError(t, err)

	_, err = f.ledger.ApproveEffortCompletion(ctx, performerAddr, record.ID)
	assert.ErrorIs(t, err, domain.ErrNotProposer)
	assert.Zero(t, f.payouts.callCount())
}

func TestAutoFailIfNoApproval(t *testing.T) {
	f := newFixture(t, 4000)
	ctx := context.Background()
	record := f.markReady(t, 10000, 14)

	_, err := f.ledger.AutoFailIfNoApproval(ctx, "", record.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeTooEarly), "window still open: %v", err)

	f.clock.Advance(confirmWindow + time.Minute)

	failed, err := f.ledger.AutoFailIfNoApproval(ctx, "", record.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EffortAutoFailed, failed.State())
	assert.Zero(t, failed.DepositCents)

	// Full deposit back to the proposer, no treasury match.
	require.Len(t, f.payouts.calls, 1)
	assert.Equal(t, f.proposer.Handle, f.payouts.calls[0].handle)
	assert.Equal(t, int64(10000), f.payouts.calls[0].amount)

	balance, err := f.treasury.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4000), balance)

	_, err = f.ledger.AutoFailIfNoApproval(ctx, "", record.ID)
	assert.ErrorIs(t, err, domain.ErrEffortConcluded)
}

func TestAutoFailIfNoApproval_RequiresMarkedCompletion(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	record := f.submit(t, 5000, 14)

	_, err := f.ledger.CommitToEffort(ctx, performerAddr, record.ID)
	require.NoError(t, err)
	f.clock.Advance(100 * 24 * time.Hour)

	_, err = f.ledger.AutoFailIfNoApproval(ctx, "", record.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConflict), "unmarked effort: %v", err)
}

func TestFailIfNotCompletedByDeadline(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	record := f.submit(t, 5000, 14)

	_, err := f.ledger.FailIfNotCompletedByDeadline(ctx, "", record.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConflict), "uncommitted effort: %v", err)

	_, err = f.ledger.CommitToEffort(ctx, performerAddr, record.ID)
	require.NoError(t, err)

	_, err = f.ledger.FailIfNotCompletedByDeadline(ctx, "", record.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeTooEarly), "before deadline: %v", err)

	f.clock.Advance(14*24*time.Hour + time.Minute)

	failed, err := f.ledger.FailIfNotCompletedByDeadline(ctx, "", record.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EffortDeadlineFailed, failed.State())

	require.Len(t, f.payouts.calls, 1)
	assert.Equal(t, f.proposer.Handle, f.payouts.calls[0].handle)
	assert.Equal(t, int64(5000), f.payouts.calls[0].amount)
}

func TestFailIfNotCompletedByDeadline_MarkedCompletionRejected(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	record := f.markReady(t, 5000, 14)

	// Even past the deadline, a marked completion resolves only through
	// approval or auto-fail.
	f.clock.Advance(15 * 24 * time.Hour)

	_, err := f.ledger.FailIfNotCompletedByDeadline(ctx, "", record.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConflict))
	assert.Zero(t, f.payouts.callCount())
}

func TestTerminalPathsMutuallyExclusive(t *testing.T) {
	f := newFixture(t, 4000)
	ctx := context.Background()
	record := f.markReady(t, 10000, 14)

	// Past both the deadline and the confirm window: every terminal path's
	// time precondition holds, yet only the first transition may land.
	f.clock.Advance(30 * 24 * time.Hour)

	_, err := f.ledger.ApproveEffortCompletion(ctx, proposerAddr, record.ID)
	require.NoError(t, err)

	_, err = f.ledger.AutoFailIfNoApproval(ctx, "", record.ID)
	assert.ErrorIs(t, err, domain.ErrEffortConcluded)
	_, err = f.ledger.FailIfNotCompletedByDeadline(ctx, "", record.ID)
	assert.ErrorIs(t, err, domain.ErrEffortConcluded)
	_, err = f.ledger.ApproveEffortCompletion(ctx, proposerAddr, record.ID)
	assert.ErrorIs(t, err, domain.ErrEffortConcluded)

	assert.Equal(t, 1, f.payouts.callCount())
}

func TestApproveEffortCompletion_PayoutFailureRollsBack(t *testing.T) {
	f := newFixture(t, 4000)
	ctx := context.Background()
	record := f.markReady(t, 10000, 14)
	f.payouts.err = errors.New("bridge unavailable")

	_, err := f.ledger.ApproveEffortCompletion(ctx, proposerAddr, record.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeTransfer), "payout failure: %v", err)

	// All-or-nothing: escrow, state and treasury are all restored.
	stored, err := f.ledger.GetEffort(ctx, record.ID)
	require.NoError(t, err)
	assert.False(t, stored.Concluded)
	assert.Equal(t, int64(10000), stored.DepositCents)
	assert.Equal(t, domain.EffortCompletionMarked, stored.State())

	balance, err := f.treasury.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4000), balance)

	// Cleared transfer path succeeds afterwards.
	f.payouts.err = nil
	_, err = f.ledger.ApproveEffortCompletion(ctx, proposerAddr, record.ID)
	require.NoError(t, err)
	require.Len(t, f.payouts.calls, 1)
	assert.Equal(t, int64(14000), f.payouts.calls[0].amount)
}

func TestRefund_PayoutFailureRollsBack(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	record := f.markReady(t, 5000, 14)
	f.payouts.err = errors.New("bridge unavailable")

	f.clock.Advance(confirmWindow + time.Minute)

	_, err := f.ledger.AutoFailIfNoApproval(ctx, "", record.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeTransfer))

	stored, err := f.ledger.GetEffort(ctx, record.ID)
	require.NoError(t, err)
	assert.False(t, stored.Concluded)
	assert.Equal(t, int64(5000), stored.DepositCents)
}

func TestApproveEffortCompletion_ReentrantPayoutRejected(t *testing.T) {
	f := newFixture(t, 4000)
	ctx := context.Background()
	record := f.markReady(t, 10000, 14)

	// A payout recipient that calls back into the ledger observes the
	// already-concluded record and fails its preconditions.
	var reentrantErr error
	f.payouts.before = func(ctx context.Context) {
		f.payouts.before = nil
		_, reentrantErr = f.ledger.ApproveEffortCompletion(ctx, proposerAddr, record.ID)
	}

	_, err := f.ledger.ApproveEffortCompletion(ctx, proposerAddr, record.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, reentrantErr, domain.ErrEffortConcluded)
	assert.Equal(t, 1, f.payouts.callCount())
}

func TestApproveEffortCompletion_ConservesMoney(t *testing.T) {
	clock := newFakeClock()
	openingTreasury := int64(4000)
	deposit := int64(10000)

	tre := treasuryUC.New(memory.NewTreasuryRepository(openingTreasury), zap.NewNop())
	registry := membership.New(memory.NewMemberRepository(), nil, tre, membership.Config{
		SubscriptionFee: 2500,
		PenaltyRate:     500,
		BillingPeriod:   billingPeriod,
		Clock:           clock.Now,
	}, zap.NewNop())
	ledger := effort.New(memory.NewEffortRepository(), memory.NewEventRepository(), registry, tre,
		vault.New(registry, zap.NewNop()), nil, effort.Config{
			MinDepositCents: minDeposit,
			ConfirmWindow:   confirmWindow,
			Clock:           clock.Now,
		}, zap.NewNop())

	ctx := context.Background()
	_, err := registry.Register(ctx, proposerAddr)
	require.NoError(t, err)
	performer, err := registry.Register(ctx, performerAddr)
	require.NoError(t, err)

	record, err := ledger.SubmitProposal(ctx, proposerAddr, performerAddr, deposit, 14)
	require.NoError(t, err)
	_, err = ledger.CommitToEffort(ctx, performerAddr, record.ID)
	require.NoError(t, err)
	_, err = ledger.MarkEffortCompleted(ctx, performerAddr, record.ID)
	require.NoError(t, err)
	_, err = ledger.ApproveEffortCompletion(ctx, proposerAddr, record.ID)
	require.NoError(t, err)

	balance, err := tre.Balance(ctx)
	require.NoError(t, err)
	paid, err := registry.GetByHandle(ctx, performer.Handle)
	require.NoError(t, err)

	assert.Equal(t, deposit+openingTreasury, paid.BalanceCents)
	assert.Zero(t, balance)
	assert.Equal(t, openingTreasury, balance+paid.BalanceCents-deposit)
}

func TestListEfforts_Filter(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	first := f.submit(t, 5000, 14)
	second := f.submit(t, 6000, 7)
	_, err := f.ledger.CommitToEffort(ctx, performerAddr, second.ID)
	require.NoError(t, err)

	all, err := f.ledger.ListEfforts(ctx, repository.EffortFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	committed, err := f.ledger.ListEfforts(ctx, repository.EffortFilter{State: string(domain.EffortCommitted)})
	require.NoError(t, err)
	require.Len(t, committed, 1)
	assert.Equal(t, second.ID, committed[0].ID)

	proposed, err := f.ledger.ListEfforts(ctx, repository.EffortFilter{State: string(domain.EffortProposed)})
	require.NoError(t, err)
	require.Len(t, proposed, 1)
	assert.Equal(t, first.ID, proposed[0].ID)
}

func TestGetEffort_NotFound(t *testing.T) {
	f := newFixture(t, 0)
	_, err := f.ledger.GetEffort(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrEffortNotFound)
}
