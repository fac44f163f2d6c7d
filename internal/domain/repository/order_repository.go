package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/tristanfischer-ux/centauros-payment/internal/domain/model"
)

// OrderRepository provides access to marketplace orders and owns the
// transactional escrow transitions. Every mutation re-reads the order under
// a row lock, so concurrent events against the same order stay safe.
type OrderRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	GetByPaymentReference(ctx context.Context, reference string) (*model.Order, error)

	// ConfirmEscrowHold moves a pending order to held, records the payment
	// reference and appends the hold ledger entry in one transaction.
	// Re-running against a non-pending order is a no-op.
	ConfirmEscrowHold(ctx context.Context, orderID uuid.UUID, paymentReference string, amountMinor int64, currency string) error

	// ReleaseEscrow moves a held order to released and appends the release
	// ledger entry.
	ReleaseEscrow(ctx context.Context, orderID uuid.UUID, amountMinor int64, currency string) error

	// RefundEscrow moves a held order to refunded and appends the refund
	// ledger entry.
	RefundEscrow(ctx context.Context, orderID uuid.UUID, amountMinor int64, currency string) error

	// MarkDisputed forces the escrow back to held and flags the order
	// disputed, whatever state it is in.
	MarkDisputed(ctx context.Context, orderID uuid.UUID) error
}

// EscrowLedgerRepository reads the append-only escrow ledger.
type EscrowLedgerRepository interface {
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.EscrowTransaction, error)
}
