package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/tristanfischer-ux/centauros-payment/internal/domain/model"
	domainRepo "github.com/tristanfischer-ux/centauros-payment/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// disputeRepository implements the DisputeRepository interface
type disputeRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewDisputeRepository creates a new dispute repository instance
func NewDisputeRepository(db *gorm.DB, logger *zap.Logger) domainRepo.DisputeRepository {
	return &disputeRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a dispute row. The unique stripe_dispute_id plus ON
// CONFLICT DO NOTHING makes replays a no-op.
func (r *disputeRepository) Create(ctx context.Context, dispute *model.Dispute) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(dispute).Error

	if err != nil {
		r.logger.Error("Failed to create dispute",
			zap.String("stripe_dispute_id", dispute.StripeDisputeID),
			zap.Error(err))
		return fmt.Errorf("failed to create dispute: %w", err)
	}

	return nil
}

// GetByStripeID retrieves a dispute by its external id
func (r *disputeRepository) GetByStripeID(ctx context.Context, stripeDisputeID string) (*model.Dispute, error) {
	var dispute model.Dispute

	err := r.db.WithContext(ctx).
		Where("stripe_dispute_id = ?", stripeDisputeID).
		First(&dispute).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get dispute",
			zap.String("stripe_dispute_id", stripeDisputeID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get dispute: %w", err)
	}

	return &dispute, nil
}
