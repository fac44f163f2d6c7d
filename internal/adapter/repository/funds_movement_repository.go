package repository

import (
	"context"
	"fmt"

	"github.com/tristanfischer-ux/centauros-payment/internal/domain/model"
	domainRepo "github.com/tristanfischer-ux/centauros-payment/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// transferLogRepository implements the TransferLogRepository interface
type transferLogRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewTransferLogRepository creates a new transfer log repository instance
func NewTransferLogRepository(db *gorm.DB, logger *zap.Logger) domainRepo.TransferLogRepository {
	return &transferLogRepository{
		db:     db,
		logger: logger,
	}
}

// Record appends a transfer audit entry, keyed by the external transfer id
func (r *transferLogRepository) Record(ctx context.Context, entry *model.TransferLogEntry) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(entry).Error

	if err != nil {
		r.logger.Error("Failed to record transfer",
			zap.String("stripe_transfer_id", entry.StripeTransferID),
			zap.Error(err))
		return fmt.Errorf("failed to record transfer: %w", err)
	}

	return nil
}

// payoutLogRepository implements the PayoutLogRepository interface
type payoutLogRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPayoutLogRepository creates a new payout log repository instance
func NewPayoutLogRepository(db *gorm.DB, logger *zap.Logger) domainRepo.PayoutLogRepository {
	return &payoutLogRepository{
		db:     db,
		logger: logger,
	}
}

// Record appends a payout audit entry, keyed by the external payout id
func (r *payoutLogRepository) Record(ctx context.Context, entry *model.PayoutLogEntry) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(entry).Error

	if err != nil {
		r.logger.Error("Failed to record payout",
			zap.String("stripe_payout_id", entry.StripePayoutID),
			zap.Error(err))
		return fmt.Errorf("failed to record payout: %w", err)
	}

	return nil
}
