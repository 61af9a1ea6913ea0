package vault

import (
	"context"

	"go.uber.org/zap"

	"github.com/commonfund/ledgerd/domain"
	"github.com/commonfund/ledgerd/usecase/membership"
)

// Vault is the default FundTransfer implementation: payouts land on the
// recipient's internal member balance rather than leaving the system.
// External custody integrations replace this behind the same port.
type Vault struct {
	registry *membership.Registry
	logger   *zap.Logger
}

func New(registry *membership.Registry, logger *zap.Logger) *Vault {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Vault{
		registry: registry,
		logger:   logger,
	}
}

// Payout implements usecase.FundTransfer.
func (v *Vault) Payout(ctx context.Context, recipientHandle string, amountCents int64) error {
	if recipientHandle == "" || amountCents < 0 {
		return domain.ErrInvalidPayload
	}
	if err := v.registry.CreditPayout(ctx, recipientHandle, amountCents); err != nil {
		return domain.WrapError(domain.ErrCodeTransfer, "payout credit failed", err)
	}
	v.logger.Info("payout credited",
		zap.String("handle", recipientHandle),
		zap.Int64("amount_cents", amountCents))
	return nil
}
