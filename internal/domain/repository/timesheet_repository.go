package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tristanfischer-ux/centauros-payment/internal/domain/model"
)

// TimesheetRepository provides access to retainer timesheet entries.
type TimesheetRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.TimesheetEntry, error)
	GetByPaymentReference(ctx context.Context, reference string) (*model.TimesheetEntry, error)

	// MarkPaid transitions an approved entry to paid. The transition happens
	// at most once; a paid entry is left untouched.
	MarkPaid(ctx context.Context, id uuid.UUID, paymentReference string, paidAt time.Time) error

	// ClearPaymentReference detaches a failed payment attempt so the
	// timesheet can be retried with a fresh intent.
	ClearPaymentReference(ctx context.Context, id uuid.UUID) error
}
