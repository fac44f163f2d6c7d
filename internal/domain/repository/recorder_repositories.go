package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tristanfischer-ux/centauros-payment/internal/domain/model"
)

// DisputeRepository records chargebacks. Create is idempotent per external
// dispute id.
type DisputeRepository interface {
	Create(ctx context.Context, dispute *model.Dispute) error
	GetByStripeID(ctx context.Context, stripeDisputeID string) (*model.Dispute, error)
}

// TransferLogRepository records seller-bound transfers, keyed by external id.
type TransferLogRepository interface {
	Record(ctx context.Context, entry *model.TransferLogEntry) error
}

// PayoutLogRepository records gateway payouts, keyed by external id.
type PayoutLogRepository interface {
	Record(ctx context.Context, entry *model.PayoutLogEntry) error
}

// BalanceRepository credits user balances from gateway top-ups.
type BalanceRepository interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (*model.UserBalance, error)

	// TopUp credits the user's balance and appends a balance transaction in
	// one row-locked database transaction. The referenceID (payment intent
	// id) deduplicates replays: a reference that was already credited
	// returns the existing transaction without touching the balance.
	TopUp(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description string, referenceID string) (*model.UserBalance, *model.BalanceTransaction, error)
}

// SellerAccountRepository keeps connected-account capability flags in sync.
type SellerAccountRepository interface {
	GetByStripeAccountID(ctx context.Context, stripeAccountID string) (*model.SellerAccount, error)

	// UpsertStatus creates or updates the account row for the given gateway
	// account id and returns the stored row. It reports whether this update
	// completed onboarding for the first time.
	UpsertStatus(ctx context.Context, stripeAccountID string, chargesEnabled, payoutsEnabled, detailsSubmitted bool) (*model.SellerAccount, bool, error)
}
