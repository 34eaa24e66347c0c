package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"access-system/domain/constants"
	"access-system/domain/entities"
	"access-system/domain/value_objects"
)

const (
	JobNotifyExpiring = "notify_expiring"

	expiringNoticeInterval = 24 * time.Hour
)

// JobNotifyExpiringAccess warns contacts whose access ends within the
// configured horizon, at most once per day each.
func (us *AccessApplication) JobNotifyExpiringAccess(ctx context.Context) value_objects.SweepReport {
	now := us.now()
	items, err := us.Transactions.FindAccessExpiringBetween(ctx, now, now.Add(us.Config.Jobs.ExpiringHorizon()), us.batchLimit())
	if err != nil {
		us.Logger.Error("get_expiring_access_err", zap.Error(err))
		return value_objects.SweepReport{Job: JobNotifyExpiring}
	}

	return us.sweep(ctx, JobNotifyExpiring, items, func(ctx context.Context, tx *entities.Transaction) (bool, error) {
		return us.notifyOnce(ctx, KindExpiringSoon, tx, constants.MetaExpirationNotificationSentAt, expiringNoticeInterval, NotifyOptions{})
	})
}
