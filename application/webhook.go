package application

import (
	"context"

	"go.uber.org/zap"
)

// HandleGatewayWebhook treats a processor callback as a hint only: the
// status applied is always the one fetched back from the gateway.
func (us *AccessApplication) HandleGatewayWebhook(ctx context.Context, gateway, paymentID string) error {
	gw, err := us.GatewayFor(gateway)
	if err != nil {
		us.Logger.Warn("webhook_unknown_gateway", zap.String("gateway", gateway), zap.String("payment_id", paymentID))
		return err
	}

	tx, err := us.Transactions.FindByGatewayPaymentID(ctx, gw.Name(), paymentID)
	if err != nil {
		us.Logger.Warn("webhook_find_transaction_err", zap.String("gateway", gateway), zap.String("payment_id", paymentID), zap.Error(err))
		return err
	}

	_, err = us.refreshFromGateway(ctx, gw, tx)
	return err
}
