package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tristanfischer-ux/centauros-payment/internal/domain/model"
	domainRepo "github.com/tristanfischer-ux/centauros-payment/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sellerAccountRepository implements the SellerAccountRepository interface
type sellerAccountRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSellerAccountRepository creates a new seller account repository instance
func NewSellerAccountRepository(db *gorm.DB, logger *zap.Logger) domainRepo.SellerAccountRepository {
	return &sellerAccountRepository{
		db:     db,
		logger: logger,
	}
}

// GetByStripeAccountID retrieves a seller account by its gateway account id
func (r *sellerAccountRepository) GetByStripeAccountID(ctx context.Context, stripeAccountID string) (*model.SellerAccount, error) {
	var account model.SellerAccount

	err := r.db.WithContext(ctx).
		Where("stripe_account_id = ?", stripeAccountID).
		First(&account).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get seller account",
			zap.String("stripe_account_id", stripeAccountID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get seller account: %w", err)
	}

	return &account, nil
}

// UpsertStatus creates or updates the capability flags for an account and
// reports whether this update completed onboarding for the first time.
func (r *sellerAccountRepository) UpsertStatus(ctx context.Context, stripeAccountID string, chargesEnabled, payoutsEnabled, detailsSubmitted bool) (*model.SellerAccount, bool, error) {
	var account model.SellerAccount
	var justOnboarded bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("stripe_account_id = ?", stripeAccountID).
			FirstOrCreate(&account, model.SellerAccount{
				StripeAccountID: stripeAccountID,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to lock seller account: %w", err)
		}

		wasOnboarded := account.Onboarded()

		account.ChargesEnabled = chargesEnabled
		account.PayoutsEnabled = payoutsEnabled
		account.DetailsSubmitted = detailsSubmitted

		updates := map[string]interface{}{
			"charges_enabled":   chargesEnabled,
			"payouts_enabled":   payoutsEnabled,
			"details_submitted": detailsSubmitted,
		}

		if !wasOnboarded && account.Onboarded() {
			justOnboarded = true
			now := time.Now()
			account.OnboardedAt = &now
			updates["onboarded_at"] = &now
		}

		if err := tx.Model(&model.SellerAccount{}).
			Where("stripe_account_id = ?", stripeAccountID).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update seller account: %w", err)
		}

		return nil
	})

	if err != nil {
		r.logger.Error("Failed to upsert seller account status",
			zap.String("stripe_account_id", stripeAccountID),
			zap.Error(err))
		return nil, false, err
	}

	return &account, justOnboarded, nil
}
