package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	domainErrors "github.com/tristanfischer-ux/centauros-payment/internal/domain/errors"
	"github.com/tristanfischer-ux/centauros-payment/internal/domain/model"
	domainRepo "github.com/tristanfischer-ux/centauros-payment/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// timesheetRepository implements the TimesheetRepository interface
type timesheetRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewTimesheetRepository creates a new timesheet repository instance
func NewTimesheetRepository(db *gorm.DB, logger *zap.Logger) domainRepo.TimesheetRepository {
	return &timesheetRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID retrieves a timesheet entry by its internal id
func (r *timesheetRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.TimesheetEntry, error) {
	var entry model.TimesheetEntry

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&entry).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.ErrTimesheetNotFound
		}
		r.logger.Error("Failed to get timesheet entry",
			zap.String("timesheet_id", id.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get timesheet entry: %w", err)
	}

	return &entry, nil
}

// GetByPaymentReference retrieves a timesheet entry by its payment reference
func (r *timesheetRepository) GetByPaymentReference(ctx context.Context, reference string) (*model.TimesheetEntry, error) {
	var entry model.TimesheetEntry

	err := r.db.WithContext(ctx).
		Where("payment_reference = ?", reference).
		First(&entry).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.ErrTimesheetNotFound
		}
		r.logger.Error("Failed to get timesheet entry by payment reference",
			zap.String("payment_reference", reference),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get timesheet entry by payment reference: %w", err)
	}

	return &entry, nil
}

// MarkPaid transitions an approved entry to paid. The status guard in the
// WHERE clause makes the transition single-shot under replay.
func (r *timesheetRepository) MarkPaid(ctx context.Context, id uuid.UUID, paymentReference string, paidAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.TimesheetEntry{}).
		Where("id = ? AND status = ?", id, model.TimesheetStatusApproved).
		Updates(map[string]interface{}{
			"status":            model.TimesheetStatusPaid,
			"payment_reference": paymentReference,
			"paid_at":           &paidAt,
		})

	if result.Error != nil {
		r.logger.Error("Failed to mark timesheet paid",
			zap.String("timesheet_id", id.String()),
			zap.Error(result.Error))
		return fmt.Errorf("failed to mark timesheet paid: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		r.logger.Info("Timesheet already paid, skipping transition",
			zap.String("timesheet_id", id.String()))
	}

	return nil
}

// ClearPaymentReference detaches the failed payment so the timesheet can be
// retried. Status stays approved.
func (r *timesheetRepository) ClearPaymentReference(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&model.TimesheetEntry{}).
		Where("id = ? AND status = ?", id, model.TimesheetStatusApproved).
		Update("payment_reference", nil)

	if result.Error != nil {
		r.logger.Error("Failed to clear timesheet payment reference",
			zap.String("timesheet_id", id.String()),
			zap.Error(result.Error))
		return fmt.Errorf("failed to clear timesheet payment reference: %w", result.Error)
	}

	return nil
}
