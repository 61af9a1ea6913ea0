package usecase

import (
	"context"

	"github.com/commonfund/ledgerd/domain"
)

// FundTransfer moves escrowed or treasury money to a member. It is the one
// external call boundary inside a terminal transition, so implementations
// must be assumed potentially reentrant: the ledger persists the concluded
// record before invoking Payout.
type FundTransfer interface {
	Payout(ctx context.Context, recipientHandle string, amountCents int64) error
}

// EventSink receives audit events that could not be written to the primary
// event store, for durable buffering and later replay.
type EventSink interface {
	Publish(event domain.Event)
}
