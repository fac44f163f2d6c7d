package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
	domainErrors "github.com/tristanfischer-ux/centauros-payment/internal/domain/errors"
	"github.com/tristanfischer-ux/centauros-payment/internal/domain/model"
	"github.com/tristanfischer-ux/centauros-payment/internal/domain/notification"
	"github.com/tristanfischer-ux/centauros-payment/internal/domain/repository"
	"go.uber.org/zap"
)

// Metadata keys the platform writes onto payment intents at creation time.
const (
	metadataPurpose   = "purpose"
	metadataReference = "reference_id"
	metadataUserID    = "user_id"

	purposeBalanceTopUp = "balance_topup"
)

// Reconciler routes authenticated gateway events to the handler for their
// type and applies the resulting state transitions. It holds no in-process
// state; all mutual exclusion lives in the event ledger and the row locks
// taken by the repositories.
type Reconciler struct {
	orders     repository.OrderRepository
	timesheets repository.TimesheetRepository
	disputes   repository.DisputeRepository
	transfers  repository.TransferLogRepository
	payouts    repository.PayoutLogRepository
	balances   repository.BalanceRepository
	accounts   repository.SellerAccountRepository
	notifier   notification.Dispatcher
	logger     *zap.Logger
}

// NewReconciler creates a new Reconciler
func NewReconciler(
	orders repository.OrderRepository,
	timesheets repository.TimesheetRepository,
	disputes repository.DisputeRepository,
	transfers repository.TransferLogRepository,
	payouts repository.PayoutLogRepository,
	balances repository.BalanceRepository,
	accounts repository.SellerAccountRepository,
	notifier notification.Dispatcher,
	logger *zap.Logger,
) *Reconciler {
	return &Reconciler{
		orders:     orders,
		timesheets: timesheets,
		disputes:   disputes,
		transfers:  transfers,
		payouts:    payouts,
		balances:   balances,
		accounts:   accounts,
		notifier:   notifier,
		logger:     logger,
	}
}

// Process dispatches an authenticated event to its handler. Unrecognized
// types are logged and acknowledged; the gateway must not be provoked into
// retrying something we will never handle.
func (r *Reconciler) Process(ctx context.Context, event stripe.Event) error {
	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return fmt.Errorf("failed to parse payment intent: %w", err)
		}
		return r.handlePaymentSucceeded(ctx, &pi)

	case stripe.EventTypePaymentIntentPaymentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return fmt.Errorf("failed to parse payment intent: %w", err)
		}
		return r.handlePaymentFailed(ctx, &pi)

	case stripe.EventTypeChargeRefunded:
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			return fmt.Errorf("failed to parse charge: %w", err)
		}
		return r.handleChargeRefunded(ctx, &charge)

	case stripe.EventTypeChargeDisputeCreated:
		var dispute stripe.Dispute
		if err := json.Unmarshal(event.Data.Raw, &dispute); err != nil {
			return fmt.Errorf("failed to parse dispute: %w", err)
		}
		return r.handleDisputeCreated(ctx, &dispute)

	case stripe.EventTypeTransferCreated:
		var transfer stripe.Transfer
		if err := json.Unmarshal(event.Data.Raw, &transfer); err != nil {
			return fmt.Errorf("failed to parse transfer: %w", err)
		}
		return r.handleTransferCreated(ctx, &transfer)

	case stripe.EventTypePayoutPaid:
		var payout stripe.Payout
		if err := json.Unmarshal(event.Data.Raw, &payout); err != nil {
			return fmt.Errorf("failed to parse payout: %w", err)
		}
		// Connect events carry the connected account id on the envelope,
		// not inside the payout object.
		return r.handlePayoutPaid(ctx, &payout, event.Account)

	case stripe.EventTypeAccountUpdated:
		var account stripe.Account
		if err := json.Unmarshal(event.Data.Raw, &account); err != nil {
			return fmt.Errorf("failed to parse account: %w", err)
		}
		return r.handleAccountUpdated(ctx, &account)

	default:
		r.logger.Warn("Unhandled event type",
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)))
		return nil
	}
}

// paymentTarget is the resolved destination of a payment reference: exactly
// one of timesheet or order is set.
type paymentTarget struct {
	timesheet *model.TimesheetEntry
	order     *model.Order
}

// resolvePaymentTarget maps an inbound payment to the record it pays for.
// Payment references can be timesheet ids or order ids; timesheets win the
// probe so a coincidentally colliding order id cannot shadow a retainer
// payment. As a fallback the payment intent id itself is matched against
// stored payment references.
func (r *Reconciler) resolvePaymentTarget(ctx context.Context, pi *stripe.PaymentIntent) (*paymentTarget, error) {
	if refID, err := uuid.Parse(pi.Metadata[metadataReference]); err == nil {
		entry, err := r.timesheets.GetByID(ctx, refID)
		if err == nil {
			return &paymentTarget{timesheet: entry}, nil
		}
		if !errors.Is(err, domainErrors.ErrTimesheetNotFound) {
			return nil, err
		}

		order, err := r.orders.GetByID(ctx, refID)
		if err == nil {
			return &paymentTarget{order: order}, nil
		}
		if !errors.Is(err, domainErrors.ErrOrderNotFound) {
			return nil, err
		}
	}

	entry, err := r.timesheets.GetByPaymentReference(ctx, pi.ID)
	if err == nil {
		return &paymentTarget{timesheet: entry}, nil
	}
	if !errors.Is(err, domainErrors.ErrTimesheetNotFound) {
		return nil, err
	}

	order, err := r.orders.GetByPaymentReference(ctx, pi.ID)
	if err == nil {
		return &paymentTarget{order: order}, nil
	}
	if !errors.Is(err, domainErrors.ErrOrderNotFound) {
		return nil, err
	}

	return nil, fmt.Errorf("%w: payment %s", domainErrors.ErrReferenceUnresolvable, pi.ID)
}

// notify hands a notification to the dispatcher. Delivery failures are
// logged and swallowed: a dropped alert must never unwind financial state.
func (r *Reconciler) notify(ctx context.Context, n notification.Notification) {
	if err := r.notifier.Send(ctx, n); err != nil {
		r.logger.Error("Failed to dispatch notification",
			zap.String("user_id", n.UserID.String()),
			zap.String("title", n.Title),
			zap.Error(err))
	}
}
