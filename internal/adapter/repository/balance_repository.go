package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tristanfischer-ux/centauros-payment/internal/domain/model"
	domainRepo "github.com/tristanfischer-ux/centauros-payment/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// balanceRepository implements the BalanceRepository interface
type balanceRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewBalanceRepository creates a new balance repository instance
func NewBalanceRepository(db *gorm.DB, logger *zap.Logger) domainRepo.BalanceRepository {
	return &balanceRepository{
		db:     db,
		logger: logger,
	}
}

// GetBalance retrieves the current balance for a user
func (r *balanceRepository) GetBalance(ctx context.Context, userID uuid.UUID) (*model.UserBalance, error) {
	var balance model.UserBalance

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&balance).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Return zero balance if not found
			return &model.UserBalance{
				UserID:         userID,
				CurrentBalance: decimal.Zero,
			}, nil
		}
		r.logger.Error("Failed to get user balance",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get user balance: %w", err)
	}

	return &balance, nil
}

// TopUp credits the user's balance atomically. The balance row is locked
// for the duration of the transaction, and a reference id that was already
// credited short-circuits without touching the balance.
func (r *balanceRepository) TopUp(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description string, referenceID string) (*model.UserBalance, *model.BalanceTransaction, error) {
	var balance *model.UserBalance
	var transaction *model.BalanceTransaction

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Replay check by reference id before any mutation
		if referenceID != "" {
			var existingTx model.BalanceTransaction
			err := tx.Where("reference_id = ?", referenceID).First(&existingTx).Error
			if err == nil {
				transaction = &existingTx

				var currentBalance model.UserBalance
				if err := tx.Where("user_id = ?", userID).First(&currentBalance).Error; err == nil {
					balance = &currentBalance
				}

				r.logger.Info("Balance top-up already credited",
					zap.String("reference_id", referenceID),
					zap.String("user_id", userID.String()))
				return nil
			}
		}

		var currentBalance model.UserBalance
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			FirstOrCreate(&currentBalance, model.UserBalance{
				UserID:         userID,
				CurrentBalance: decimal.Zero,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to lock balance row: %w", err)
		}

		newBalance := currentBalance.CurrentBalance.Add(amount)

		transaction = &model.BalanceTransaction{
			UserID:          userID,
			TransactionType: model.BalanceTransactionTopUp,
			Amount:          amount,
			BalanceAfter:    newBalance,
			Description:     description,
		}
		if referenceID != "" {
			transaction.ReferenceID = &referenceID
		}
		if err := tx.Create(transaction).Error; err != nil {
			return fmt.Errorf("failed to create balance transaction: %w", err)
		}

		now := time.Now()
		err = tx.Model(&currentBalance).Updates(map[string]interface{}{
			"current_balance":     newBalance,
			"last_transaction_at": now,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update balance: %w", err)
		}

		currentBalance.CurrentBalance = newBalance
		currentBalance.LastTransactionAt = now
		balance = &currentBalance

		return nil
	})

	if err != nil {
		r.logger.Error("Failed to top up balance",
			zap.String("user_id", userID.String()),
			zap.String("amount", amount.String()),
			zap.String("reference_id", referenceID),
			zap.Error(err))
		return nil, nil, err
	}

	return balance, transaction, nil
}
