package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	domainErrors "github.com/tristanfischer-ux/centauros-payment/internal/domain/errors"
	"github.com/tristanfischer-ux/centauros-payment/internal/domain/model"
	domainRepo "github.com/tristanfischer-ux/centauros-payment/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// orderRepository implements the OrderRepository interface
type orderRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewOrderRepository creates a new order repository instance
func NewOrderRepository(db *gorm.DB, logger *zap.Logger) domainRepo.OrderRepository {
	return &orderRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID retrieves an order by its internal id
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&order).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.ErrOrderNotFound
		}
		r.logger.Error("Failed to get order",
			zap.String("order_id", id.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return &order, nil
}

// GetByPaymentReference retrieves an order by its gateway payment reference
func (r *orderRepository) GetByPaymentReference(ctx context.Context, reference string) (*model.Order, error) {
	var order model.Order

	err := r.db.WithContext(ctx).
		Where("payment_reference = ?", reference).
		First(&order).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.ErrOrderNotFound
		}
		r.logger.Error("Failed to get order by payment reference",
			zap.String("payment_reference", reference),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get order by payment reference: %w", err)
	}

	return &order, nil
}

// ConfirmEscrowHold moves a pending order to held and appends the hold
// ledger entry. Both writes share one transaction, and the order row is
// locked first so a racing event observes the committed state.
func (r *orderRepository) ConfirmEscrowHold(ctx context.Context, orderID uuid.UUID, paymentReference string, amountMinor int64, currency string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order model.Order

		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", orderID).
			First(&order).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainErrors.ErrOrderNotFound
			}
			return fmt.Errorf("failed to lock order: %w", err)
		}

		if order.EscrowStatus != model.EscrowStatusPending {
			// Already held (or beyond): a redelivered or re-run event has
			// nothing left to do.
			r.logger.Info("Escrow hold already applied",
				zap.String("order_id", orderID.String()),
				zap.String("escrow_status", string(order.EscrowStatus)))
			return nil
		}

		updates := map[string]interface{}{
			"escrow_status":     model.EscrowStatusHeld,
			"payment_reference": paymentReference,
		}
		if err := tx.Model(&order).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update escrow status: %w", err)
		}

		entry := &model.EscrowTransaction{
			OrderID:          orderID,
			Kind:             model.EscrowTransactionHold,
			AmountMinor:      amountMinor,
			Currency:         currency,
			PaymentReference: &paymentReference,
		}
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to create escrow ledger entry: %w", err)
		}

		return nil
	})

	if err != nil {
		if !errors.Is(err, domainErrors.ErrOrderNotFound) {
			r.logger.Error("Failed to confirm escrow hold",
				zap.String("order_id", orderID.String()),
				zap.Error(err))
		}
		return err
	}

	return nil
}

// ReleaseEscrow moves a held order to released and appends the release entry
func (r *orderRepository) ReleaseEscrow(ctx context.Context, orderID uuid.UUID, amountMinor int64, currency string) error {
	return r.settleEscrow(ctx, orderID, model.EscrowStatusReleased, model.EscrowTransactionRelease, amountMinor, currency)
}

// RefundEscrow moves a held order to refunded and appends the refund entry
func (r *orderRepository) RefundEscrow(ctx context.Context, orderID uuid.UUID, amountMinor int64, currency string) error {
	return r.settleEscrow(ctx, orderID, model.EscrowStatusRefunded, model.EscrowTransactionRefund, amountMinor, currency)
}

func (r *orderRepository) settleEscrow(ctx context.Context, orderID uuid.UUID, target model.EscrowStatus, kind model.EscrowTransactionKind, amountMinor int64, currency string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order model.Order

		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", orderID).
			First(&order).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainErrors.ErrOrderNotFound
			}
			return fmt.Errorf("failed to lock order: %w", err)
		}

		if order.EscrowStatus == target {
			return nil
		}
		if order.EscrowStatus != model.EscrowStatusHeld {
			return fmt.Errorf("cannot move escrow from %s to %s for order %s", order.EscrowStatus, target, orderID)
		}

		if err := tx.Model(&order).Update("escrow_status", target).Error; err != nil {
			return fmt.Errorf("failed to update escrow status: %w", err)
		}

		entry := &model.EscrowTransaction{
			OrderID:     orderID,
			Kind:        kind,
			AmountMinor: amountMinor,
			Currency:    currency,
		}
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to create escrow ledger entry: %w", err)
		}

		return nil
	})

	if err != nil && !errors.Is(err, domainErrors.ErrOrderNotFound) {
		r.logger.Error("Failed to settle escrow",
			zap.String("order_id", orderID.String()),
			zap.String("target", string(target)),
			zap.Error(err))
	}

	return err
}

// MarkDisputed forces the escrow back to held and flags the order disputed.
// This applies from any state; a dispute landing after a release is
// operationally suspect but must still be recorded.
func (r *orderRepository) MarkDisputed(ctx context.Context, orderID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"escrow_status": model.EscrowStatusHeld,
			"status":        model.OrderStatusDisputed,
		})

	if result.Error != nil {
		r.logger.Error("Failed to mark order disputed",
			zap.String("order_id", orderID.String()),
			zap.Error(result.Error))
		return fmt.Errorf("failed to mark order disputed: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domainErrors.ErrOrderNotFound
	}

	return nil
}

// escrowLedgerRepository implements the EscrowLedgerRepository interface
type escrowLedgerRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewEscrowLedgerRepository creates a new escrow ledger reader
func NewEscrowLedgerRepository(db *gorm.DB, logger *zap.Logger) domainRepo.EscrowLedgerRepository {
	return &escrowLedgerRepository{
		db:     db,
		logger: logger,
	}
}

// ListByOrder returns all ledger entries for an order, oldest first
func (r *escrowLedgerRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.EscrowTransaction, error) {
	var entries []model.EscrowTransaction

	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		r.logger.Error("Failed to list escrow ledger entries",
			zap.String("order_id", orderID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list escrow ledger entries: %w", err)
	}

	return entries, nil
}
