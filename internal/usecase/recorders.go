package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
	domainErrors "github.com/tristanfischer-ux/centauros-payment/internal/domain/errors"
	"github.com/tristanfischer-ux/centauros-payment/internal/domain/model"
	"github.com/tristanfischer-ux/centauros-payment/internal/domain/notification"
	"go.uber.org/zap"
)

// handleDisputeCreated records a chargeback and forces the order's escrow
// back to held. The order is found through the disputed charge's payment
// intent (dispute -> charge -> payment reference -> order).
func (r *Reconciler) handleDisputeCreated(ctx context.Context, dispute *stripe.Dispute) error {
	paymentRef := disputePaymentReference(dispute)
	if paymentRef == "" {
		return fmt.Errorf("%w: dispute %s has no payment intent", domainErrors.ErrReferenceUnresolvable, dispute.ID)
	}

	order, err := r.orders.GetByPaymentReference(ctx, paymentRef)
	if err != nil {
		return err
	}

	record := &model.Dispute{
		StripeDisputeID: dispute.ID,
		OrderID:         order.ID,
		Reason:          string(dispute.Reason),
		Status:          model.DisputeStatusOpen,
		AmountMinor:     dispute.Amount,
		Currency:        string(dispute.Currency),
	}
	if err := r.disputes.Create(ctx, record); err != nil {
		return fmt.Errorf("failed to record dispute: %w", err)
	}

	if err := r.orders.MarkDisputed(ctx, order.ID); err != nil {
		return fmt.Errorf("failed to mark order disputed: %w", err)
	}

	if order.EscrowStatus == model.EscrowStatusReleased {
		r.logger.Warn("Dispute raised against already-released escrow",
			zap.String("order_id", order.ID.String()),
			zap.String("stripe_dispute_id", dispute.ID))
	}

	r.logger.Info("Dispute recorded, escrow held",
		zap.String("order_id", order.ID.String()),
		zap.String("stripe_dispute_id", dispute.ID),
		zap.String("reason", string(dispute.Reason)))

	body := "A payment dispute has been opened on this order. The funds are held while it is reviewed."
	for _, userID := range []uuid.UUID{order.BuyerID, order.SellerID} {
		r.notify(ctx, notification.Notification{
			UserID:    userID,
			Title:     "Payment disputed",
			Body:      body,
			Priority:  notification.PriorityHigh,
			ActionURL: fmt.Sprintf("/orders/%s", order.ID),
			Metadata:  map[string]interface{}{"order_id": order.ID.String(), "dispute_id": dispute.ID},
		})
	}

	return nil
}

// handleTransferCreated is an observer: it records the transfer and tells
// the seller a release is underway, but never touches escrow state.
func (r *Reconciler) handleTransferCreated(ctx context.Context, transfer *stripe.Transfer) error {
	entry := &model.TransferLogEntry{
		StripeTransferID: transfer.ID,
		AmountMinor:      transfer.Amount,
		Currency:         string(transfer.Currency),
	}

	if transfer.Destination != nil && transfer.Destination.ID != "" {
		dest := transfer.Destination.ID
		entry.DestinationAccountID = &dest
	}

	var sellerID uuid.UUID
	if orderID, err := uuid.Parse(transfer.Metadata["order_id"]); err == nil {
		entry.OrderID = &orderID
		if order, err := r.orders.GetByID(ctx, orderID); err == nil {
			sellerID = order.SellerID
		}
	}

	if err := r.transfers.Record(ctx, entry); err != nil {
		return fmt.Errorf("failed to record transfer: %w", err)
	}

	r.logger.Info("Transfer recorded",
		zap.String("stripe_transfer_id", transfer.ID),
		zap.Int64("amount_minor", transfer.Amount))

	if sellerID != uuid.Nil {
		r.notify(ctx, notification.Notification{
			UserID:   sellerID,
			Title:    "Payout on its way",
			Body:     "Funds for your completed order are being transferred to your account.",
			Priority: notification.PriorityNormal,
			Metadata: map[string]interface{}{"transfer_id": transfer.ID},
		})
	}

	return nil
}

// handlePayoutPaid records a completed payout to the seller's bank account
// and tells the seller, when the connected account maps to a known user.
func (r *Reconciler) handlePayoutPaid(ctx context.Context, payout *stripe.Payout, stripeAccountID string) error {
	entry := &model.PayoutLogEntry{
		StripePayoutID: payout.ID,
		AmountMinor:    payout.Amount,
		Currency:       string(payout.Currency),
		Status:         string(payout.Status),
	}
	if payout.ArrivalDate > 0 {
		arrival := time.Unix(payout.ArrivalDate, 0)
		entry.ArrivalDate = &arrival
	}

	if err := r.payouts.Record(ctx, entry); err != nil {
		return fmt.Errorf("failed to record payout: %w", err)
	}

	r.logger.Info("Payout recorded",
		zap.String("stripe_payout_id", payout.ID),
		zap.Int64("amount_minor", payout.Amount),
		zap.String("status", string(payout.Status)))

	if stripeAccountID != "" {
		account, err := r.accounts.GetByStripeAccountID(ctx, stripeAccountID)
		if err != nil {
			r.logger.Error("Failed to resolve payout account",
				zap.String("stripe_account_id", stripeAccountID),
				zap.Error(err))
			return nil
		}
		if account != nil && account.UserID != nil {
			r.notify(ctx, notification.Notification{
				UserID:   *account.UserID,
				Title:    "Payout completed",
				Body:     "A payout to your bank account has been paid out.",
				Priority: notification.PriorityNormal,
				Metadata: map[string]interface{}{"payout_id": payout.ID},
			})
		}
	}

	return nil
}

// handleAccountUpdated keeps the seller's connected-account flags in sync
// and tells the seller once onboarding completes.
func (r *Reconciler) handleAccountUpdated(ctx context.Context, account *stripe.Account) error {
	stored, justOnboarded, err := r.accounts.UpsertStatus(ctx, account.ID,
		account.ChargesEnabled, account.PayoutsEnabled, account.DetailsSubmitted)
	if err != nil {
		return fmt.Errorf("failed to update seller account: %w", err)
	}

	r.logger.Info("Seller account status updated",
		zap.String("stripe_account_id", account.ID),
		zap.Bool("charges_enabled", account.ChargesEnabled),
		zap.Bool("payouts_enabled", account.PayoutsEnabled),
		zap.Bool("details_submitted", account.DetailsSubmitted))

	if justOnboarded && stored.UserID != nil {
		r.notify(ctx, notification.Notification{
			UserID:   *stored.UserID,
			Title:    "Payout account ready",
			Body:     "Your account is fully set up. You can now receive payouts for completed orders.",
			Priority: notification.PriorityNormal,
		})
	}

	return nil
}

func disputePaymentReference(dispute *stripe.Dispute) string {
	if dispute.PaymentIntent != nil && dispute.PaymentIntent.ID != "" {
		return dispute.PaymentIntent.ID
	}
	if dispute.Charge != nil && dispute.Charge.PaymentIntent != nil {
		return dispute.Charge.PaymentIntent.ID
	}
	return ""
}
