package usecase

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v79"
	domainErrors "github.com/tristanfischer-ux/centauros-payment/internal/domain/errors"
	"github.com/tristanfischer-ux/centauros-payment/internal/domain/model"
	"go.uber.org/zap"
)

var minorUnitsPerMajor = decimal.NewFromInt(100)

// validateOrderPayment cross-checks the inbound payment against the stored
// order before any escrow mutation is allowed.
//
// Reference and currency mismatches are hard aborts. An amount outside the
// one-minor-unit tolerance is logged as a security alert but does not block
// the hold; the discrepancy is reconciled operationally rather than by
// refusing confirmed funds.
func (r *Reconciler) validateOrderPayment(order *model.Order, pi *stripe.PaymentIntent) error {
	if order.PaymentReference != nil && *order.PaymentReference != "" && *order.PaymentReference != pi.ID {
		r.logger.Warn("Payment reference mismatch",
			zap.String("order_id", order.ID.String()),
			zap.String("stored_reference", *order.PaymentReference),
			zap.String("inbound_reference", pi.ID))
		return fmt.Errorf("%w: order %s", domainErrors.ErrReferenceMismatch, order.ID)
	}

	expected := order.TotalAmount.Mul(minorUnitsPerMajor).Round(0).IntPart()
	if diff := expected - pi.Amount; diff > 1 || diff < -1 {
		mismatch := domainErrors.NewAmountMismatchError(order.ID.String(), expected, pi.Amount)
		r.logger.Error("SECURITY ALERT: payment amount mismatch",
			zap.String("order_id", order.ID.String()),
			zap.Int64("expected_minor", expected),
			zap.Int64("received_minor", pi.Amount),
			zap.String("payment_reference", pi.ID),
			zap.Error(mismatch))
	}

	if !strings.EqualFold(order.Currency, string(pi.Currency)) {
		r.logger.Warn("Payment currency mismatch",
			zap.String("order_id", order.ID.String()),
			zap.String("order_currency", order.Currency),
			zap.String("event_currency", string(pi.Currency)))
		return fmt.Errorf("%w: order %s has %s, event has %s", domainErrors.ErrCurrencyMismatch, order.ID, order.Currency, pi.Currency)
	}

	return nil
}
