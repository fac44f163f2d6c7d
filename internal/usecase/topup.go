package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v79"
	domainErrors "github.com/tristanfischer-ux/centauros-payment/internal/domain/errors"
	"github.com/tristanfischer-ux/centauros-payment/internal/domain/notification"
	"go.uber.org/zap"
)

// handleBalanceTopUp credits a user's platform balance from a successful
// top-up intent. The balance repository deduplicates by payment reference,
// so a redelivered event cannot credit twice.
func (r *Reconciler) handleBalanceTopUp(ctx context.Context, pi *stripe.PaymentIntent) error {
	userID, err := parseUserID(pi)
	if err != nil {
		return err
	}

	amount := decimal.NewFromInt(pi.Amount).Div(minorUnitsPerMajor)

	balance, _, err := r.balances.TopUp(ctx, userID, amount,
		fmt.Sprintf("Balance top-up via %s", pi.ID), pi.ID)
	if err != nil {
		return fmt.Errorf("failed to credit balance: %w", err)
	}

	r.logger.Info("Balance topped up",
		zap.String("user_id", userID.String()),
		zap.String("amount", amount.String()),
		zap.String("payment_reference", pi.ID))

	r.notify(ctx, notification.Notification{
		UserID:   userID,
		Title:    "Balance topped up",
		Body:     fmt.Sprintf("%s %s has been added to your balance. New balance: %s.", amount.StringFixed(2), pi.Currency, balance.CurrentBalance.StringFixed(2)),
		Priority: notification.PriorityNormal,
		Metadata: map[string]interface{}{"payment_reference": pi.ID},
	})

	return nil
}

func parseUserID(pi *stripe.PaymentIntent) (uuid.UUID, error) {
	userID, err := uuid.Parse(pi.Metadata[metadataUserID])
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: top-up %s carries no valid user id", domainErrors.ErrReferenceUnresolvable, pi.ID)
	}
	return userID, nil
}
