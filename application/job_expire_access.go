package application

import (
	"context"

	"go.uber.org/zap"

	"access-system/domain/constants"
	"access-system/domain/entities"
	"access-system/domain/value_objects"
	"access-system/errors"
	"access-system/utils/retry"
)

const JobExpireAccess = "expire_access"

// JobExpireAccess moves completed transactions whose paid cycle ended to
// expired, then removes the member and sends the expiry notice. Expired
// transactions with an unfinished follow-up are picked up again, and
// completed ones that never recorded their expiry get it derived from the
// cycle first.
func (us *AccessApplication) JobExpireAccess(ctx context.Context) value_objects.SweepReport {
	now := us.now()

	due, err := us.Transactions.FindAccessExpiredBefore(ctx, now, us.batchLimit())
	if err != nil {
		us.Logger.Error("get_expired_access_err", zap.Error(err))
	}
	open, err := us.Transactions.FindExpiredWithOpenFollowUp(ctx, us.batchLimit())
	if err != nil {
		us.Logger.Error("get_open_follow_up_err", zap.Error(err))
	}
	unbounded, err := us.Transactions.FindCompletedWithoutExpiry(ctx, us.batchLimit())
	if err != nil {
		us.Logger.Error("get_unbounded_access_err", zap.Error(err))
	}

	return us.sweep(ctx, JobExpireAccess, uniqueTransactions(due, open, unbounded), us.expireAccess)
}

func uniqueTransactions(batches ...[]*entities.Transaction) []*entities.Transaction {
	seen := make(map[string]struct{})
	var items []*entities.Transaction
	for _, batch := range batches {
		for _, tx := range batch {
			if _, ok := seen[tx.ID]; ok {
				continue
			}
			seen[tx.ID] = struct{}{}
			items = append(items, tx)
		}
	}
	return items
}

func (us *AccessApplication) expireAccess(ctx context.Context, tx *entities.Transaction) (bool, error) {
	processed := false

	if tx.Status.IsCompleted() && tx.Metadata.AccessExpiresAt == nil {
		bounded, err := us.backfillAccessExpiry(ctx, tx)
		if err != nil || bounded == nil {
			return false, err
		}
		tx, processed = bounded, true
		if tx.Metadata.AccessExpiresAt.After(us.now()) {
			return true, nil
		}
	}

	if tx.Status.IsCompleted() {
		now := us.now()
		updated, err := us.Transactions.UpdateStatus(ctx, tx.ID, entities.StatusCompleted, entities.StatusExpired, entities.MetadataPatch{}, now)
		switch {
		case err == nil:
			us.Logger.Info("access_expired", zap.String("transaction_id", tx.ID))
			us.publishStatus(ctx, updated, entities.StatusCompleted, entities.StatusExpired, now)
			tx, processed = updated, true
		case errors.Is(err, errors.ErrStatusConflict):
			fresh, ferr := us.Transactions.FindByID(ctx, tx.ID)
			if ferr != nil {
				return false, ferr
			}
			tx = fresh
		default:
			return false, err
		}
	}

	if !tx.Status.IsExpired() || !tx.WasApproved() {
		return processed, nil
	}

	// Removal and notice are independent; neither failure blocks the other.
	removed, removeErr := us.removeFromGroup(ctx, tx)
	notified, notifyErr := us.notifyOnce(ctx, KindExpired, tx, constants.MetaAccessExpiredNotifiedAt, 0, NotifyOptions{})

	return processed || removed || notified, errors.Join(removeErr, notifyErr)
}

// backfillAccessExpiry records the expiry derived from the cycle. A nil
// transaction means the cycle is gone and access has no end.
func (us *AccessApplication) backfillAccessExpiry(ctx context.Context, tx *entities.Transaction) (*entities.Transaction, error) {
	at, ok, err := us.accessExpiresAt(ctx, tx)
	if err != nil {
		us.Logger.Warn("backfill_access_expiry_err", zap.String("transaction_id", tx.ID), zap.Error(err))
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	updated, _, err := us.Transactions.MergeMetadata(ctx, tx.ID, entities.MetadataPatch{AccessExpiresAt: &at}, us.now())
	if err != nil {
		return nil, err
	}
	us.Logger.Info("access_expiry_backfilled", zap.String("transaction_id", tx.ID), zap.Time("access_expires_at", at))
	return updated, nil
}

// removeFromGroup takes the contact out of the group once. A bot without
// rights, or a contact or group without a chat id, is recorded as skipped.
func (us *AccessApplication) removeFromGroup(ctx context.Context, tx *entities.Transaction) (bool, error) {
	if tx.Metadata.GroupRemovedAt != nil || tx.Metadata.GroupRemovalSkipped != "" {
		return false, nil
	}

	bot, err := us.Catalog.FindBot(ctx, tx.BotID)
	if err != nil {
		return false, err
	}
	contact, err := us.Catalog.FindContact(ctx, tx.ContactID)
	if err != nil {
		return false, err
	}
	if contact.TelegramUserID == 0 {
		return us.skipRemoval(ctx, tx, constants.RemovalSkippedNoContact)
	}

	chatID := tx.Metadata.GroupChatID
	if chatID == 0 {
		target, err := us.locateGroup(ctx, tx, bot)
		if err == nil {
			chatID = target.ChatID
		}
	}
	if chatID == 0 {
		return us.skipRemoval(ctx, tx, constants.RemovalSkippedNoGroup)
	}

	err = retry.Do(ctx, us.Retry, func() error {
		err := us.Messenger.RemoveMember(ctx, *bot, chatID, contact.TelegramUserID)
		if errors.Is(err, errors.ErrInsufficientRights) {
			return retry.Permanent(err)
		}
		return err
	})
	if errors.Is(err, errors.ErrInsufficientRights) {
		us.Logger.Warn("remove_member_no_rights", zap.String("transaction_id", tx.ID), zap.Int64("chat_id", chatID))
		return us.skipRemoval(ctx, tx, constants.RemovalSkippedNoRights)
	}
	if err != nil {
		us.Logger.Error("remove_member_err", zap.String("transaction_id", tx.ID), zap.Int64("chat_id", chatID), zap.Error(err))
		return false, err
	}

	now := us.now()
	if _, _, err := us.Transactions.MergeMetadata(ctx, tx.ID, entities.MetadataPatch{GroupRemovedAt: &now}, now); err != nil {
		return true, err
	}
	us.Logger.Info("member_removed", zap.String("transaction_id", tx.ID), zap.Int64("chat_id", chatID))
	return true, nil
}

func (us *AccessApplication) skipRemoval(ctx context.Context, tx *entities.Transaction, reason string) (bool, error) {
	_, _, err := us.Transactions.MergeMetadata(ctx, tx.ID, entities.MetadataPatch{GroupRemovalSkipped: &reason}, us.now())
	return false, err
}
