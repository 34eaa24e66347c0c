package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"access-system/domain/constants"
	"access-system/domain/entities"
	"access-system/domain/repositories"
	"access-system/domain/value_objects"
	"access-system/errors"
	"access-system/utils/retry"
)

// ApplyGatewayStatus folds a raw processor status into tx. Replaying a status
// only refreshes the gateway mirror; an approved transaction is re-notified
// when its last approval message is older than the renotify window.
func (us *AccessApplication) ApplyGatewayStatus(ctx context.Context, tx *entities.Transaction, raw, detail string) (*entities.Transaction, error) {
	now := us.now()
	target := entities.MapGatewayStatus(raw)
	patch := entities.MetadataPatch{
		GatewayStatus:       &raw,
		GatewayStatusDetail: &detail,
		LastStatusCheck:     &now,
	}

	if tx.Status != target && tx.Status.CanTransitionTo(target) {
		updated, err := us.transition(ctx, tx, target, patch, now)
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, errors.ErrStatusConflict) {
			return tx, err
		}
		us.Logger.Info("apply_gateway_status_conflict", zap.String("transaction_id", tx.ID), zap.String("raw_status", raw))
	}

	updated, _, err := us.Transactions.MergeMetadata(ctx, tx.ID, patch, now)
	if err != nil {
		us.Logger.Error("gateway_status_mirror_err", zap.String("transaction_id", tx.ID), zap.Error(err))
		return tx, err
	}
	if target == entities.StatusCompleted && updated.Status.IsCompleted() {
		us.notifyApproval(ctx, updated)
	}
	return updated, nil
}

// transition moves tx to target under a status guard and runs the side
// effects bound to the edge.
func (us *AccessApplication) transition(ctx context.Context, tx *entities.Transaction, target entities.EntityStatus, patch entities.MetadataPatch, now time.Time) (*entities.Transaction, error) {
	switch target {
	case entities.StatusCompleted:
		// Without the cycle the paid period cannot be bounded; the status
		// stays pending so the next poll or webhook retries the approval.
		expiresAt, ok, err := us.accessExpiresAt(ctx, tx)
		if err != nil {
			us.Logger.Error("approval_cycle_lookup_err", zap.String("transaction_id", tx.ID), zap.Error(err))
			return nil, err
		}
		patch.ApprovedAt = &now
		if ok {
			patch.AccessExpiresAt = &expiresAt
		}
	case entities.StatusFailed:
		if patch.FailureReason == nil {
			reason := constants.FailureReasonGatewayRejected
			patch.FailureReason = &reason
		}
	}

	from := tx.Status
	updated, err := us.Transactions.UpdateStatus(ctx, tx.ID, from, target, patch, now)
	if err != nil {
		return nil, err
	}
	us.Logger.Info("transaction_status_changed",
		zap.String("transaction_id", tx.ID),
		zap.String("from", from.StatusString()),
		zap.String("to", target.StatusString()),
	)
	us.publishStatus(ctx, updated, from, target, now)

	switch target {
	case entities.StatusCompleted:
		us.notifyApproval(ctx, updated)
	case entities.StatusFailed:
		if _, err := us.notifyOnce(ctx, KindPaymentFailed, updated, constants.MetaFailureNotifiedAt, 0, NotifyOptions{}); err != nil {
			us.Logger.Warn("payment_failed_notification_err", zap.String("transaction_id", tx.ID), zap.Error(err))
		}
	}
	return updated, nil
}

// notifyApproval sends the approval message with an invite link. Without a
// link the customer is told it follows shortly and operators are alerted.
func (us *AccessApplication) notifyApproval(ctx context.Context, tx *entities.Transaction) {
	key := constants.MetaPaymentApprovalNotifiedAt
	claimed, previous, err := us.Transactions.ClaimNotification(ctx, tx.ID, key, us.now(), us.Config.Jobs.ApprovalRenotifyAfter())
	if err != nil {
		us.Logger.Error("claim_approval_notification_err", zap.String("transaction_id", tx.ID), zap.Error(err))
		return
	}
	if !claimed {
		us.Logger.Info("approval_notification_deduplicated", zap.String("transaction_id", tx.ID))
		return
	}

	var opts NotifyOptions
	result, err := us.ResolveInviteLink(ctx, tx)
	if err != nil {
		us.Logger.Error("resolve_invite_link_err", zap.String("transaction_id", tx.ID), zap.Error(err))
		pending := true
		if _, _, merr := us.Transactions.MergeMetadata(ctx, tx.ID, entities.MetadataPatch{LinkDeliveryPending: &pending}, us.now()); merr != nil {
			us.Logger.Error("mark_link_delivery_pending_err", zap.String("transaction_id", tx.ID), zap.Error(merr))
		}
		if aerr := us.AlertOperators(ctx, tx, fmt.Sprintf("%s: %v", constants.MsgNoInviteLinkAlert, err)); aerr != nil {
			us.Logger.Warn("alert_operators_err", zap.String("transaction_id", tx.ID), zap.Error(aerr))
		}
	} else {
		opts.InviteLink = result.Link.Link
	}

	if err := us.Notify(ctx, KindApproved, tx, opts); err != nil {
		if rerr := us.Transactions.ReleaseNotification(ctx, tx.ID, key, previous); rerr != nil {
			us.Logger.Error("release_notification_err", zap.String("transaction_id", tx.ID), zap.String("key", key), zap.Error(rerr))
		}
	}
}

// refreshFromGateway asks the gateway for the authoritative status of tx
// and applies it. Unknown payment ids count toward the not-found threshold.
func (us *AccessApplication) refreshFromGateway(ctx context.Context, gateway repositories.IGateway, tx *entities.Transaction) (*entities.Transaction, error) {
	status, err := us.getPayment(ctx, gateway, tx.GatewayPaymentID)
	if errors.Is(err, errors.ErrPaymentNotFound) {
		return us.recordNotFound(ctx, tx)
	}
	if err != nil {
		us.Logger.Warn("get_payment_err", zap.String("transaction_id", tx.ID), zap.String("gateway", gateway.Name()), zap.Error(err))
		return tx, err
	}
	return us.ApplyGatewayStatus(ctx, tx, status.Status, status.StatusDetail)
}

func (us *AccessApplication) getPayment(ctx context.Context, gateway repositories.IGateway, paymentID string) (status value_objects.PaymentStatus, err error) {
	err = retry.Do(ctx, us.Retry, func() error {
		var err error
		status, err = gateway.GetPayment(ctx, paymentID)
		if errors.Is(err, errors.ErrPaymentNotFound) {
			return retry.Permanent(err)
		}
		return err
	})
	return status, err
}

func (us *AccessApplication) recordNotFound(ctx context.Context, tx *entities.Transaction) (*entities.Transaction, error) {
	now := us.now()
	count, err := us.Transactions.IncrementNotFound(ctx, tx.ID, now)
	if err != nil {
		return tx, err
	}
	us.Logger.Warn("payment_not_found", zap.String("transaction_id", tx.ID), zap.Int("count", count))
	if count < constants.PaymentNotFoundThreshold || !tx.Status.IsPending() {
		return tx, nil
	}

	reason := constants.FailureReasonPaymentNotFound
	updated, err := us.transition(ctx, tx, entities.StatusFailed, entities.MetadataPatch{FailureReason: &reason, LastStatusCheck: &now}, now)
	if errors.Is(err, errors.ErrStatusConflict) {
		return us.Transactions.FindByID(ctx, tx.ID)
	}
	if err != nil {
		return tx, err
	}
	return updated, nil
}
