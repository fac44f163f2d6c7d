package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v79"
	domainErrors "github.com/tristanfischer-ux/centauros-payment/internal/domain/errors"
	"github.com/tristanfischer-ux/centauros-payment/internal/domain/model"
	"github.com/tristanfischer-ux/centauros-payment/internal/domain/notification"
	"go.uber.org/zap"
)

// handleTimesheetPaid marks a retainer timesheet paid. The stored payment
// reference must match the inbound intent, the same anti-replay check
// orders get.
func (r *Reconciler) handleTimesheetPaid(ctx context.Context, entry *model.TimesheetEntry, pi *stripe.PaymentIntent) error {
	if entry.PaymentReference != nil && *entry.PaymentReference != "" && *entry.PaymentReference != pi.ID {
		r.logger.Warn("Timesheet payment reference mismatch",
			zap.String("timesheet_id", entry.ID.String()),
			zap.String("stored_reference", *entry.PaymentReference),
			zap.String("inbound_reference", pi.ID))
		return fmt.Errorf("%w: timesheet %s", domainErrors.ErrReferenceMismatch, entry.ID)
	}

	if entry.Status == model.TimesheetStatusPaid {
		r.logger.Info("Timesheet already paid",
			zap.String("timesheet_id", entry.ID.String()))
		return nil
	}

	if err := r.timesheets.MarkPaid(ctx, entry.ID, pi.ID, time.Now()); err != nil {
		return fmt.Errorf("failed to mark timesheet paid: %w", err)
	}

	r.logger.Info("Retainer timesheet paid",
		zap.String("timesheet_id", entry.ID.String()),
		zap.String("retainer_id", entry.RetainerID.String()),
		zap.String("payment_reference", pi.ID))

	r.notify(ctx, notification.Notification{
		UserID:    entry.SellerID,
		Title:     "Timesheet paid",
		Body:      fmt.Sprintf("A retainer payment of %s %s has been completed.", entry.Amount.StringFixed(2), entry.Currency),
		Priority:  notification.PriorityNormal,
		ActionURL: fmt.Sprintf("/retainers/%s", entry.RetainerID),
		Metadata:  map[string]interface{}{"timesheet_id": entry.ID.String()},
	})

	return nil
}

// handleTimesheetPaymentFailed clears the payment reference so the buyer
// can retry; the entry stays approved.
func (r *Reconciler) handleTimesheetPaymentFailed(ctx context.Context, entry *model.TimesheetEntry, reason string) error {
	if err := r.timesheets.ClearPaymentReference(ctx, entry.ID); err != nil {
		return fmt.Errorf("failed to clear timesheet payment reference: %w", err)
	}

	r.logger.Info("Retainer payment failed, reference cleared",
		zap.String("timesheet_id", entry.ID.String()),
		zap.String("reason", reason))

	r.notify(ctx, notification.Notification{
		UserID:    entry.BuyerID,
		Title:     "Retainer payment failed",
		Body:      fmt.Sprintf("The payment for a timesheet did not go through: %s. Please try again.", reason),
		Priority:  notification.PriorityHigh,
		ActionURL: fmt.Sprintf("/retainers/%s", entry.RetainerID),
		Metadata:  map[string]interface{}{"timesheet_id": entry.ID.String()},
	})

	return nil
}
