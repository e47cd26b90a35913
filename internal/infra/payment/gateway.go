package payment

import (
	"context"
	"fmt"

	"shopbook/internal/domain/appointment"
	"shopbook/internal/usecase/commands"
)

// Gateway routes charges by payment method: online goes to stripe, wallet
// captures against the customer's stored balance. Offline never reaches a
// gateway; the write side skips the charge entirely.
type Gateway struct {
	stripe *StripeGateway
	wallet *WalletGateway
}

func NewGateway(stripeGateway *StripeGateway, walletGateway *WalletGateway) *Gateway {
	return &Gateway{stripe: stripeGateway, wallet: walletGateway}
}

func (g *Gateway) Charge(ctx context.Context, req commands.ChargeRequest) (string, error) {
	switch req.Method {
	case appointment.PaymentOnline:
		return g.stripe.Charge(ctx, req)
	case appointment.PaymentWallet:
		return g.wallet.Charge(ctx, req)
	default:
		return "", fmt.Errorf("no gateway for payment method %q", req.Method)
	}
}

func (g *Gateway) Refund(ctx context.Context, transactionID string, amountCents int64) error {
	if isWalletTransaction(transactionID) {
		return g.wallet.Refund(ctx, transactionID, amountCents)
	}
	return g.stripe.Refund(ctx, transactionID, amountCents)
}

// WalletGateway records an immediate capture against the customer wallet.
// Balance accounting lives with the wallet service; this gateway only mints
// the transaction reference.
type WalletGateway struct{}

func NewWalletGateway() *WalletGateway {
	return &WalletGateway{}
}

const walletTxnPrefix = "wallet_"

func (g *WalletGateway) Charge(_ context.Context, req commands.ChargeRequest) (string, error) {
	return walletTxnPrefix + req.AppointmentID.String(), nil
}

func (g *WalletGateway) Refund(_ context.Context, _ string, _ int64) error {
	return nil
}

func isWalletTransaction(transactionID string) bool {
	return len(transactionID) > len(walletTxnPrefix) && transactionID[:len(walletTxnPrefix)] == walletTxnPrefix
}
