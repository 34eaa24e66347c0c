package application

import (
	"context"

	"go.uber.org/zap"

	"access-system/domain/constants"
	"access-system/domain/entities"
	"access-system/domain/value_objects"
	"access-system/errors"
)

const JobExpirePendingPix = "expire_pending_pix"

// JobExpirePendingPix closes PIX charges left unpaid past the PIX TTL. The
// gateway is asked first so a late approval still wins.
func (us *AccessApplication) JobExpirePendingPix(ctx context.Context) value_objects.SweepReport {
	cutoff := us.now().Add(-us.Config.Jobs.PixTTL())
	items, err := us.Transactions.FindPendingPixBefore(ctx, cutoff, us.batchLimit())
	if err != nil {
		us.Logger.Error("get_pending_pix_err", zap.Error(err))
		return value_objects.SweepReport{Job: JobExpirePendingPix}
	}

	return us.sweep(ctx, JobExpirePendingPix, items, us.expirePendingPix)
}

func (us *AccessApplication) expirePendingPix(ctx context.Context, tx *entities.Transaction) (bool, error) {
	if tx.GatewayPaymentID != "" {
		gateway, err := us.GatewayFor(tx.Gateway)
		if err != nil {
			us.Logger.Warn("expire_pix_unknown_gateway", zap.String("transaction_id", tx.ID), zap.String("gateway", tx.Gateway))
		} else {
			status, err := us.getPayment(ctx, gateway, tx.GatewayPaymentID)
			switch {
			case err == nil && entities.MapGatewayStatus(status.Status) != entities.StatusPending:
				updated, err := us.ApplyGatewayStatus(ctx, tx, status.Status, status.StatusDetail)
				if err != nil {
					return false, err
				}
				return updated.Status != tx.Status, nil
			case err != nil && !errors.Is(err, errors.ErrPaymentNotFound):
				// Unreachable gateway: leave the charge pending for the next run.
				return false, err
			}
		}
	}

	now := us.now()
	updated, err := us.Transactions.UpdateStatus(ctx, tx.ID, entities.StatusPending, entities.StatusExpired, entities.MetadataPatch{LastStatusCheck: &now}, now)
	if errors.Is(err, errors.ErrStatusConflict) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	us.Logger.Info("pix_expired", zap.String("transaction_id", tx.ID))
	us.publishStatus(ctx, updated, entities.StatusPending, entities.StatusExpired, now)

	_, err = us.notifyOnce(ctx, KindPixExpired, updated, constants.MetaPixExpirationNotified, 0, NotifyOptions{})
	return true, err
}
