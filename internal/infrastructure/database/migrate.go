package database

import (
	"github.com/tristanfischer-ux/centauros-payment/internal/domain/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migrate runs database migrations
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running database migrations...")

	if err := createExtensions(db); err != nil {
		logger.Error("Failed to create extensions", zap.Error(err))
		return err
	}

	err := db.AutoMigrate(
		&model.PaymentEvent{},
		&model.Order{},
		&model.EscrowTransaction{},
		&model.TimesheetEntry{},
		&model.Dispute{},
		&model.TransferLogEntry{},
		&model.PayoutLogEntry{},
		&model.UserBalance{},
		&model.BalanceTransaction{},
		&model.SellerAccount{},
	)
	if err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}

	if err := createCustomIndexes(db); err != nil {
		logger.Error("Failed to create custom indexes", zap.Error(err))
		return err
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// createCustomIndexes creates partial indexes that GORM doesn't handle
// automatically
func createCustomIndexes(db *gorm.DB) error {
	// Retryable ledger rows, scanned by operators and redelivery takeover
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_payment_events_unfinished ON payment_events (received_at) WHERE status IN ('processing', 'failed')`).Error; err != nil {
		return err
	}

	return nil
}

// createExtensions creates required PostgreSQL extensions
func createExtensions(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return err
	}
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error; err != nil {
		return err
	}
	return nil
}
