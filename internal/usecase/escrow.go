package usecase

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	domainErrors "github.com/tristanfischer-ux/centauros-payment/internal/domain/errors"
	"github.com/tristanfischer-ux/centauros-payment/internal/domain/model"
	"github.com/tristanfischer-ux/centauros-payment/internal/domain/notification"
	"go.uber.org/zap"
)

// handlePaymentSucceeded is the confirm-payment path. Balance top-ups are
// routed by metadata before reference resolution; everything else resolves
// to a timesheet (checked first) or an order.
func (r *Reconciler) handlePaymentSucceeded(ctx context.Context, pi *stripe.PaymentIntent) error {
	if pi.Metadata[metadataPurpose] == purposeBalanceTopUp {
		return r.handleBalanceTopUp(ctx, pi)
	}

	target, err := r.resolvePaymentTarget(ctx, pi)
	if err != nil {
		return err
	}

	if target.timesheet != nil {
		return r.handleTimesheetPaid(ctx, target.timesheet, pi)
	}

	return r.confirmOrderPayment(ctx, target.order, pi)
}

func (r *Reconciler) confirmOrderPayment(ctx context.Context, order *model.Order, pi *stripe.PaymentIntent) error {
	if err := r.validateOrderPayment(order, pi); err != nil {
		return err
	}

	if err := r.orders.ConfirmEscrowHold(ctx, order.ID, pi.ID, pi.Amount, string(pi.Currency)); err != nil {
		return fmt.Errorf("failed to confirm escrow hold: %w", err)
	}

	r.logger.Info("Escrow hold confirmed",
		zap.String("order_id", order.ID.String()),
		zap.String("payment_reference", pi.ID),
		zap.Int64("amount_minor", pi.Amount))

	r.notify(ctx, notification.Notification{
		UserID:    order.BuyerID,
		Title:     "Payment received",
		Body:      "Your payment has been received and is held securely until the order is complete.",
		Priority:  notification.PriorityNormal,
		ActionURL: fmt.Sprintf("/orders/%s", order.ID),
		Metadata:  map[string]interface{}{"order_id": order.ID.String()},
	})
	r.notify(ctx, notification.Notification{
		UserID:    order.SellerID,
		Title:     "Order funded",
		Body:      "The buyer's payment is in escrow. You can start work on the order.",
		Priority:  notification.PriorityHigh,
		ActionURL: fmt.Sprintf("/orders/%s", order.ID),
		Metadata:  map[string]interface{}{"order_id": order.ID.String()},
	})

	return nil
}

// handlePaymentFailed notifies the payer. Orders in pending already reflect
// the failure, so no state regression is needed; timesheets get their
// payment reference cleared so the retainer payment can be retried.
func (r *Reconciler) handlePaymentFailed(ctx context.Context, pi *stripe.PaymentIntent) error {
	reason := failureReason(pi)

	if pi.Metadata[metadataPurpose] == purposeBalanceTopUp {
		if userID, err := parseUserID(pi); err == nil {
			r.notify(ctx, notification.Notification{
				UserID:   userID,
				Title:    "Top-up failed",
				Body:     fmt.Sprintf("Your balance top-up could not be completed: %s", reason),
				Priority: notification.PriorityNormal,
			})
		}
		return nil
	}

	target, err := r.resolvePaymentTarget(ctx, pi)
	if err != nil {
		return err
	}

	if target.timesheet != nil {
		return r.handleTimesheetPaymentFailed(ctx, target.timesheet, reason)
	}

	order := target.order
	if order.EscrowStatus != model.EscrowStatusPending {
		r.logger.Warn("Payment failure reported for funded order, leaving state untouched",
			zap.String("order_id", order.ID.String()),
			zap.String("escrow_status", string(order.EscrowStatus)))
	}

	r.notify(ctx, notification.Notification{
		UserID:    order.BuyerID,
		Title:     "Payment failed",
		Body:      fmt.Sprintf("Your payment for this order did not go through: %s", reason),
		Priority:  notification.PriorityHigh,
		ActionURL: fmt.Sprintf("/orders/%s", order.ID),
		Metadata:  map[string]interface{}{"order_id": order.ID.String()},
	})

	return nil
}

// handleChargeRefunded records a gateway-side refund against the order's
// escrow. Partial refunds are recorded at the refunded amount.
func (r *Reconciler) handleChargeRefunded(ctx context.Context, charge *stripe.Charge) error {
	if charge.PaymentIntent == nil || charge.PaymentIntent.ID == "" {
		return fmt.Errorf("%w: charge %s has no payment intent", domainErrors.ErrReferenceUnresolvable, charge.ID)
	}

	order, err := r.orders.GetByPaymentReference(ctx, charge.PaymentIntent.ID)
	if err != nil {
		return err
	}

	if err := r.orders.RefundEscrow(ctx, order.ID, charge.AmountRefunded, string(charge.Currency)); err != nil {
		return fmt.Errorf("failed to refund escrow: %w", err)
	}

	r.logger.Info("Escrow refunded",
		zap.String("order_id", order.ID.String()),
		zap.Int64("amount_minor", charge.AmountRefunded))

	r.notify(ctx, notification.Notification{
		UserID:    order.BuyerID,
		Title:     "Refund issued",
		Body:      "Your payment has been refunded to your original payment method.",
		Priority:  notification.PriorityNormal,
		ActionURL: fmt.Sprintf("/orders/%s", order.ID),
		Metadata:  map[string]interface{}{"order_id": order.ID.String()},
	})

	return nil
}

func failureReason(pi *stripe.PaymentIntent) string {
	if pi.LastPaymentError != nil && pi.LastPaymentError.Msg != "" {
		return pi.LastPaymentError.Msg
	}
	return "the payment was declined"
}
