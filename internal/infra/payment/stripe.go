package payment

import (
	"context"
	"fmt"

	"shopbook/internal/pkg/config"
	"shopbook/internal/pkg/errs"
	"shopbook/internal/usecase/commands"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/paymentintent"
	"github.com/stripe/stripe-go/v79/refund"
)

// StripeGateway charges online bookings through stripe PaymentIntents.
// stripe-go carries no context on its calls; the caller's timeout still
// bounds the surrounding usecase.
type StripeGateway struct{}

func NewStripeGateway(cfg config.StripeConfig) *StripeGateway {
	stripe.Key = cfg.APIKey
	return &StripeGateway{}
}

func (g *StripeGateway) Charge(_ context.Context, req commands.ChargeRequest) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(req.AmountCents),
		Currency:    stripe.String(req.Currency),
		Description: stripe.String(req.Description),
		Confirm:     stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.IdempotencyKey = stripe.String("charge:" + req.AppointmentID.String())

	intent, err := paymentintent.New(params)
	if err != nil {
		return "", errs.Wrap(err, "stripe charge failed")
	}
	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return "", errs.New(fmt.Sprintf("stripe charge not captured: %s", intent.Status))
	}

	return intent.ID, nil
}

func (g *StripeGateway) Refund(_ context.Context, transactionID string, amountCents int64) error {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(transactionID),
		Amount:        stripe.Int64(amountCents),
	}
	params.IdempotencyKey = stripe.String("refund:" + transactionID)

	if _, err := refund.New(params); err != nil {
		return errs.Wrap(err, "stripe refund failed")
	}
	return nil
}
