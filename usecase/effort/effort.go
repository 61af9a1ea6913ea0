package effort

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/commonfund/ledgerd/domain"
	"github.com/commonfund/ledgerd/repository"
	"github.com/commonfund/ledgerd/usecase"
)

// Membership is the slice of the registry the ledger depends on.
type Membership interface {
	IsMember(ctx context.Context, address string) (bool, error)
	HandleOf(ctx context.Context, address string) (string, error)
	IsActive(ctx context.Context, handle string) (bool, error)
	Accrue(ctx context.Context, handle string) error
}

// Treasury is the slice of the treasury the ledger depends on.
type Treasury interface {
	Balance(ctx context.Context) (int64, error)
	Match(ctx context.Context, deposit int64) (int64, error)
	Credit(ctx context.Context, amount int64) error
}

// MaxDurationDays bounds an effort's duration. The cap keeps deadline
// arithmetic well inside time.Duration's range; day counts past it would
// wrap the deadline into the past and unlock deadline-fail immediately.
const MaxDurationDays = 3650

// Config holds the ledger's tunable constants.
type Config struct {
	MinDepositCents int64
	ConfirmWindow   time.Duration
	Clock           func() time.Time
}

// Ledger owns every Effort record and drives its lifecycle. Each operation
// resolves the caller, validates role, state and time preconditions under a
// per-effort lock, then mutates and persists. Terminal transitions persist
// the concluded zero-deposit record before the payout call goes out, so a
// reentrant call observes a concluded record and fails its preconditions.
type Ledger struct {
	efforts  repository.EffortRepository
	events   repository.EventRepository
	members  Membership
	treasury Treasury
	payouts  usecase.FundTransfer
	sink     usecase.EventSink
	cfg      Config
	locks    *effortLocks
	logger   *zap.Logger
	now      func() time.Time
}

func New(
	efforts repository.EffortRepository,
	events repository.EventRepository,
	members Membership,
	treasury Treasury,
	payouts usecase.FundTransfer,
	sink usecase.EventSink,
	cfg Config,
	logger *zap.Logger,
) *Ledger {
	if cfg.MinDepositCents <= 0 {
		cfg.MinDepositCents = 1000
	}
	if cfg.ConfirmWindow <= 0 {
		cfg.ConfirmWindow = 72 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	return &Ledger{
		efforts:  efforts,
		events:   events,
		members:  members,
		treasury: treasury,
		payouts:  payouts,
		sink:     sink,
		cfg:      cfg,
		locks:    newEffortLocks(),
		logger:   logger,
		now:      now,
	}
}

// SubmitProposal escrows the proposer's deposit and creates a new Effort in
// the proposed state. The deposit is held by the ledger, not the treasury.
func (l *Ledger) SubmitProposal(ctx context.Context, proposerAddr, performerAddr string, depositCents int64, durationDays int) (*domain.Effort, error) {
	proposer, err := l.members.HandleOf(ctx, proposerAddr)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeUnauthorized, "proposer is not a member", err)
	}
	performer, err := l.members.HandleOf(ctx, performerAddr)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "performer is not a member", err)
	}
	if proposer == performer {
		return nil, domain.NewError(domain.ErrCodeInvalid, "cannot propose an effort to yourself")
	}
	active, err := l.members.IsActive(ctx, proposer)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, domain.ErrMemberInactive
	}
	if depositCents < l.cfg.MinDepositCents {
		return nil, domain.NewError(domain.ErrCodeInvalid, "deposit below minimum")
	}
	if durationDays <= 0 || durationDays > MaxDurationDays {
		return nil, domain.NewError(domain.ErrCodeInvalid, "duration out of range")
	}

	record := &domain.Effort{
		ProposerHandle:  proposer,
		PerformerHandle: performer,
		DepositCents:    depositCents,
		DurationDays:    durationDays,
	}
	created, err := l.efforts.Create(ctx, record)
	if err != nil {
		return nil, err
	}

	l.appendEvent(ctx, domain.Event{
		EffortID:    created.ID,
		Kind:        domain.EventEffortSubmitted,
		ActorHandle: proposer,
		AmountCents: depositCents,
	})
	l.logger.Info("effort submitted",
		zap.Int64("effort_id", created.ID),
		zap.String("proposer", proposer),
		zap.String("performer", performer),
		zap.Int64("deposit_cents", depositCents))
	return created, nil
}

// RequestDurationUpdate lets the performer ask for a different duration.
// A second request before approval simply replaces the pending value.
func (l *Ledger) RequestDurationUpdate(ctx context.Context, callerAddr string, effortID int64, newDurationDays int) (*domain.Effort, error) {
	handle, err := l.members.HandleOf(ctx, callerAddr)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeUnauthorized, "caller is not a member", err)
	}
	if newDurationDays <= 0 || newDurationDays > MaxDurationDays {
		return nil, domain.NewError(domain.ErrCodeInvalid, "duration out of range")
	}

	unlock := l.locks.lock(effortID)
	defer unlock()

	record, err := l.efforts.GetByID(ctx, effortID)
	if err != nil {
		return nil, err
	}
	if record.Concluded {
		return nil, domain.ErrEffortConcluded
	}
	if !record.IsPerformer(handle) {
		return nil, domain.ErrNotPerformer
	}

	record.PendingDurationDays = &newDurationDays
	if err := l.efforts.Update(ctx, record); err != nil {
		return nil, err
	}

	l.appendEvent(ctx, domain.Event{
		EffortID:     record.ID,
		Kind:         domain.EventDurationRequested,
		ActorHandle:  handle,
		DurationDays: newDurationDays,
	})
	return record, nil
}

// ApproveDurationUpdate applies the pending duration request.
func (l *Ledger) ApproveDurationUpdate(ctx context.Context, callerAddr string, effortID int64) (*domain.Effort, error) {
	handle, err := l.members.HandleOf(ctx, callerAddr)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeUnauthorized, "caller is not a member", err)
	}

	unlock := l.locks.lock(effortID)
	defer unlock()

	record, err := l.efforts.GetByID(ctx, effortID)
	if err != nil {
		return nil, err
	}
	if record.Concluded {
		return nil, domain.ErrEffortConcluded
	}
	if !record.IsProposer(handle) {
		return nil, domain.ErrNotProposer
	}
	if record.PendingDurationDays == nil {
		return nil, domain.NewError(domain.ErrCodeConflict, "no pending duration request")
	}

	record.DurationDays = *record.PendingDurationDays
	record.PendingDurationDays = nil
	if err := l.efforts.Update(ctx, record); err != nil {
		return nil, err
	}

	l.appendEvent(ctx, domain.Event{
		EffortID:     record.ID,
		Kind:         domain.EventDurationApproved,
		ActorHandle:  handle,
		DurationDays: record.DurationDays,
	})
	return record, nil
}

// CommitToEffort starts the deadline clock. Before committing, the
// performer's penalty accrual is ticked and their activity re-checked
// synchronously; a lapsed subscription blocks commitment.
func (l *Ledger) CommitToEffort(ctx context.Context, callerAddr string, effortID int64) (*domain.Effort, error) {
	handle, err := l.members.HandleOf(ctx, callerAddr)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeUnauthorized, "caller is not a member", err)
	}

	unlock := l.locks.lock(effortID)
	defer unlock()

	record, err := l.efforts.GetByID(ctx, effortID)
	if err != nil {
		return nil, err
	}
	if record.Concluded {
		return nil, domain.ErrEffortConcluded
	}
	if !record.IsPerformer(handle) {
		return nil, domain.ErrNotPerformer
	}
	if record.Committed {
		return nil, domain.NewError(domain.ErrCodeConflict, "effort already committed")
	}

	if err := l.members.Accrue(ctx, handle); err != nil {
		return nil, err
	}
	active, err := l.members.IsActive(ctx, handle)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, domain.ErrMemberInactive
	}

	now := l.now()
	record.Committed = true
	record.CommitmentAcceptedAt = &now
	if err := l.efforts.Update(ctx, record); err != nil {
		return nil, err
	}

	l.appendEvent(ctx, domain.Event{
		EffortID:    record.ID,
		Kind:        domain.EventEffortCommitted,
		ActorHandle: handle,
	})
	l.logger.Info("effort committed",
		zap.Int64("effort_id", record.ID),
		zap.Time("deadline", record.Deadline()))
	return record, nil
}

// MarkEffortCompleted records the performer's unilateral completion claim.
func (l *Ledger) MarkEffortCompleted(ctx context.Context, callerAddr string, effortID int64) (*domain.Effort, error) {
	handle, err := l.members.HandleOf(ctx, callerAddr)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeUnauthorized, "caller is not a member", err)
	}

	unlock := l.locks.lock(effortID)
	defer unlock()

	record, err := l.efforts.GetByID(ctx, effortID)
	if err != nil {
		return nil, err
	}
	if record.Concluded {
		return nil, domain.ErrEffortConcluded
	}
	if !record.IsPerformer(handle) {
		return nil, domain.ErrNotPerformer
	}
	if !record.Committed {
		return nil, domain.NewError(domain.ErrCodeConflict, "effort not committed")
	}
	if record.CompletionMarked {
		return nil, domain.NewError(domain.ErrCodeConflict, "completion already marked")
	}

	now := l.now()
	record.CompletionMarked = true
	record.CompletedAt = &now
	if err := l.efforts.Update(ctx, record); err != nil {
		return nil, err
	}

	l.appendEvent(ctx, domain.Event{
		EffortID:    record.ID,
		Kind:        domain.EventCompletionMarked,
		ActorHandle: handle,
	})
	return record, nil
}

// ApproveEffortCompletion is the reward path: the proposer confirms the
// work, the treasury matches up to the deposit, and the performer is paid
// deposit plus match in a single payout.
func (l *Ledger) ApproveEffortCompletion(ctx context.Context, callerAddr string, effortID int64) (*domain.Effort, error) {
	handle, err := l.members.HandleOf(ctx, callerAddr)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeUnauthorized, "caller is not a member", err)
	}

	unlock := l.locks.lock(effortID)

	record, err := l.efforts.GetByID(ctx, effortID)
	if err != nil {
		unlock()
		return nil, err
	}
	if record.Concluded {
		unlock()
		return nil, domain.ErrEffortConcluded
	}
	if !record.IsProposer(handle) {
		unlock()
		return nil, domain.ErrNotProposer
	}
	if !record.Committed || !record.CompletionMarked {
		unlock()
		return nil, domain.NewError(domain.ErrCodeConflict, "completion not marked")
	}

	prev := record.Clone()
	deposit := record.DepositCents

	// Conclude before any money moves. The persisted zero-deposit record is
	// the reentrancy guard for the payout call below.
	record.DepositCents = 0
	record.Concluded = true
	record.Resolution = domain.ResolutionApproved
	if err := l.efforts.UpdateWhereUnconcluded(ctx, record); err != nil {
		unlock()
		return nil, err
	}

	matched, err := l.treasury.Match(ctx, deposit)
	if err != nil {
		if rollErr := l.efforts.Update(ctx, prev); rollErr != nil {
			l.logger.Error("rollback after match failure failed", zap.Int64("effort_id", effortID), zap.Error(rollErr))
		}
		unlock()
		return nil, err
	}
	unlock()

	if err := l.payouts.Payout(ctx, record.PerformerHandle, deposit+matched); err != nil {
		return nil, l.rollbackPayout(ctx, effortID, prev, matched, err)
	}

	l.appendEvent(ctx, domain.Event{
		EffortID:     record.ID,
		Kind:         domain.EventCompletionApproved,
		ActorHandle:  handle,
		AmountCents:  deposit + matched,
		MatchedCents: matched,
	})
	l.logger.Info("effort completion approved",
		zap.Int64("effort_id", record.ID),
		zap.Int64("reward_cents", deposit+matched),
		zap.Int64("matched_cents", matched))
	return record, nil
}

// AutoFailIfNoApproval is the proposer-stall escape hatch: once the confirm
// window after completion-marking has elapsed, anyone may force a refund of
// the full deposit to the proposer. The performer is never rewarded here;
// unconfirmed completion defaults to refund.
func (l *Ledger) AutoFailIfNoApproval(ctx context.Context, callerAddr string, effortID int64) (*domain.Effort, error) {
	actor := l.resolveActor(ctx, callerAddr)

	unlock := l.locks.lock(effortID)

	record, err := l.efforts.GetByID(ctx, effortID)
	if err != nil {
		unlock()
		return nil, err
	}
	if record.Concluded {
		unlock()
		return nil, domain.ErrEffortConcluded
	}
	if !record.CompletionMarked {
		unlock()
		return nil, domain.NewError(domain.ErrCodeConflict, "completion not marked")
	}
	if !l.now().After(record.ConfirmDeadline(l.cfg.ConfirmWindow)) {
		unlock()
		return nil, domain.NewError(domain.ErrCodeTooEarly, "confirm window still open")
	}

	return l.refund(ctx, unlock, record, domain.ResolutionAutoFailed, domain.EventEffortAutoFailed, actor)
}

// FailIfNotCompletedByDeadline refunds the proposer when the performer
// committed but let the deadline pass without marking completion. A marked
// completion is rejected here; that case resolves exclusively through
// approval or auto-fail, which keeps the two refund paths from racing.
func (l *Ledger) FailIfNotCompletedByDeadline(ctx context.Context, callerAddr string, effortID int64) (*domain.Effort, error) {
	actor := l.resolveActor(ctx, callerAddr)

	unlock := l.locks.lock(effortID)

	record, err := l.efforts.GetByID(ctx, effortID)
	if err != nil {
		unlock()
		return nil, err
	}
	if record.Concluded {
		unlock()
		return nil, domain.ErrEffortConcluded
	}
	if !record.Committed {
		unlock()
		return nil, domain.NewError(domain.ErrCodeConflict, "effort not committed")
	}
	if record.CompletionMarked {
		unlock()
		return nil, domain.NewError(domain.ErrCodeConflict, "completion pending approval")
	}
	if !l.now().After(record.Deadline()) {
		unlock()
		return nil, domain.NewError(domain.ErrCodeTooEarly, "deadline not reached")
	}

	return l.refund(ctx, unlock, record, domain.ResolutionDeadlineFailed, domain.EventEffortDeadlineFailed, actor)
}

func (l *Ledger) GetEffort(ctx context.Context, effortID int64) (*domain.Effort, error) {
	record, err := l.efforts.GetByID(ctx, effortID)
	if err != nil {
		return nil, err
	}
	if !record.Committed && !record.Concluded && l.now().Sub(record.CreatedAt) > 90*24*time.Hour {
		// There is no resolution path for a proposal whose performer never
		// commits; the deposit stays escrowed. Surface it rather than hide it.
		l.logger.Warn("stale uncommitted effort",
			zap.Int64("effort_id", record.ID),
			zap.Time("created_at", record.CreatedAt))
	}
	return record, nil
}

func (l *Ledger) ListEfforts(ctx context.Context, filter repository.EffortFilter) ([]domain.Effort, error) {
	return l.efforts.List(ctx, filter)
}

func (l *Ledger) ListEvents(ctx context.Context, effortID int64) ([]domain.Event, error) {
	return l.events.ListByEffort(ctx, effortID)
}

// refund concludes the record and pays the escrowed deposit back to the
// proposer. Called with the per-effort lock held; releases it before the
// payout call, mirroring the reward path.
func (l *Ledger) refund(ctx context.Context, unlock func(), record *domain.Effort, resolution, eventKind, actor string) (*domain.Effort, error) {
	prev := record.Clone()
	deposit := record.DepositCents

	record.DepositCents = 0
	record.Concluded = true
	record.Resolution = resolution
	if err := l.efforts.UpdateWhereUnconcluded(ctx, record); err != nil {
		unlock()
		return nil, err
	}
	unlock()

	if err := l.payouts.Payout(ctx, record.ProposerHandle, deposit); err != nil {
		return nil, l.rollbackPayout(ctx, record.ID, prev, 0, err)
	}

	l.appendEvent(ctx, domain.Event{
		EffortID:    record.ID,
		Kind:        eventKind,
		ActorHandle: actor,
		AmountCents: deposit,
	})
	l.logger.Info("effort failed, deposit refunded",
		zap.Int64("effort_id", record.ID),
		zap.String("resolution", resolution),
		zap.Int64("refund_cents", deposit))
	return record, nil
}

// rollbackPayout restores the pre-transition record and any matched debit
// after a failed payout, so the caller-visible contract stays all-or-nothing.
func (l *Ledger) rollbackPayout(ctx context.Context, effortID int64, prev *domain.Effort, matched int64, cause error) error {
	unlock := l.locks.lock(effortID)
	defer unlock()

	if matched > 0 {
		if err := l.treasury.Credit(ctx, matched); err != nil {
			l.logger.Error("treasury rollback failed",
				zap.Int64("effort_id", effortID),
				zap.Int64("matched_cents", matched),
				zap.Error(err))
		}
	}
	if err := l.efforts.Update(ctx, prev); err != nil {
		l.logger.Error("effort rollback failed",
			zap.Int64("effort_id", effortID),
			zap.Error(err))
		return domain.WrapError(domain.ErrCodeInternal, "payout and rollback both failed", cause)
	}
	return domain.WrapError(domain.ErrCodeTransfer, "payout failed", cause)
}

func (l *Ledger) resolveActor(ctx context.Context, callerAddr string) string {
	if callerAddr == "" {
		return ""
	}
	handle, err := l.members.HandleOf(ctx, callerAddr)
	if err != nil {
		return ""
	}
	return handle
}

// appendEvent writes the audit record, falling back to the durable sink
// when the primary store is unavailable. Transitions never fail because an
// audit write did.
func (l *Ledger) appendEvent(ctx context.Context, event domain.Event) {
	event.ID = uuid.NewString()
	event.CreatedAt = l.now()

	if err := l.events.Append(ctx, event); err != nil {
		l.logger.Warn("event append failed, buffering",
			zap.String("kind", event.Kind),
			zap.Int64("effort_id", event.EffortID),
			zap.Error(err))
		if l.sink != nil {
			l.sink.Publish(event)
		}
	}
}
