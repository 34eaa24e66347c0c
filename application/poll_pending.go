package application

import (
	"context"

	"go.uber.org/zap"

	"access-system/domain/entities"
	"access-system/domain/value_objects"
)

const JobPollPending = "poll_pending"

// PollPendingPayments refreshes every pending transaction that already has a
// gateway payment id. An item counts as processed when its status moved.
func (us *AccessApplication) PollPendingPayments(ctx context.Context) value_objects.SweepReport {
	items, err := us.Transactions.FindPending(ctx, us.batchLimit())
	if err != nil {
		us.Logger.Error("get_pending_transactions_err", zap.Error(err))
		return value_objects.SweepReport{Job: JobPollPending}
	}

	return us.sweep(ctx, JobPollPending, items, func(ctx context.Context, tx *entities.Transaction) (bool, error) {
		gateway, err := us.GatewayFor(tx.Gateway)
		if err != nil {
			return false, err
		}
		updated, err := us.refreshFromGateway(ctx, gateway, tx)
		if err != nil {
			return false, err
		}
		return updated.Status != tx.Status, nil
	})
}
