package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"access-system/domain/entities"
	"access-system/domain/value_objects"
	"access-system/errors"
	"access-system/utils/helpers"
	"access-system/utils/retry"
	"access-system/utils/telegram"
)

type NotificationKind string

const (
	KindApproved      NotificationKind = "approved"
	KindExpiringSoon  NotificationKind = "expiring_soon"
	KindExpired       NotificationKind = "expired"
	KindPaymentFailed NotificationKind = "payment_failed"
	KindPixExpired    NotificationKind = "pix_expired"
	KindPixCreated    NotificationKind = "pix_created"
)

type NotifyOptions struct {
	InviteLink   string
	PixExpiresAt *time.Time
}

func render(kind NotificationKind, data telegram.MessageData) (string, value_objects.Keyboard, error) {
	switch kind {
	case KindApproved:
		var keyboard value_objects.Keyboard
		if data.InviteLink != "" {
			keyboard = value_objects.Keyboard{{{Text: telegram.ButtonJoinGroup, URL: data.InviteLink}}}
		}
		return telegram.Approved(data), keyboard, nil
	case KindExpiringSoon:
		return telegram.ExpiringSoon(data), nil, nil
	case KindExpired:
		return telegram.Expired(data), nil, nil
	case KindPaymentFailed:
		return telegram.PaymentFailed(data), nil, nil
	case KindPixExpired:
		return telegram.PixExpired(data), nil, nil
	case KindPixCreated:
		return telegram.PixCreated(data), nil, nil
	}
	return "", nil, fmt.Errorf("unknown notification kind %q", kind)
}

// Notify renders kind for tx and sends it to the contact's private chat.
// Delivery errors are logged and returned.
func (us *AccessApplication) Notify(ctx context.Context, kind NotificationKind, tx *entities.Transaction, opts NotifyOptions) error {
	logs := us.Logger.With(zap.String("transaction_id", tx.ID), zap.String("kind", string(kind)))

	ac, err := us.loadAccessContext(ctx, tx)
	if err != nil {
		logs.Error("notify_load_catalog_err", zap.Error(err))
		return err
	}
	if ac.Contact.TelegramUserID == 0 {
		logs.Error("notify_missing_chat", zap.String("contact_id", tx.ContactID))
		return errors.ErrMissingChat
	}

	data := telegram.MessageData{
		PlanTitle:    ac.planTitle(),
		Amount:       tx.Amount,
		InviteLink:   opts.InviteLink,
		PixCode:      tx.Metadata.PixCode,
		PixExpiresAt: opts.PixExpiresAt,
	}
	if expiresAt, ok := tx.AccessExpiresAt(ac.Cycle); ok {
		data.ExpiresAt = &expiresAt
		data.DaysRemaining = helpers.DaysRemaining(expiresAt, us.now())
	}

	text, keyboard, err := render(kind, data)
	if err != nil {
		logs.Error("notify_render_err", zap.Error(err))
		return err
	}

	err = retry.Do(ctx, us.Retry, func() error {
		err := us.Messenger.SendMessage(ctx, *ac.Bot, ac.Contact.TelegramUserID, text, keyboard)
		if errors.Is(err, errors.ErrInsufficientRights) {
			return retry.Permanent(err)
		}
		return err
	})
	if err != nil {
		logs.Error("notify_send_err", zap.Error(err))
		return fmt.Errorf("notify %s: %w", kind, err)
	}

	logs.Info("notify_sent")
	return nil
}

// notifyOnce claims key before sending so concurrent runs deliver at most
// one message per window. The claim is given back when delivery fails for a
// reason a later run could overcome.
func (us *AccessApplication) notifyOnce(ctx context.Context, kind NotificationKind, tx *entities.Transaction, key string, minAge time.Duration, opts NotifyOptions) (bool, error) {
	claimed, previous, err := us.Transactions.ClaimNotification(ctx, tx.ID, key, us.now(), minAge)
	if err != nil {
		us.Logger.Error("claim_notification_err", zap.String("transaction_id", tx.ID), zap.String("key", key), zap.Error(err))
		return false, err
	}
	if !claimed {
		us.Logger.Debug("notification_already_sent", zap.String("transaction_id", tx.ID), zap.String("key", key))
		return false, nil
	}

	err = us.Notify(ctx, kind, tx, opts)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, errors.ErrMissingChat) || errors.Is(err, errors.ErrCatalogNotFound) {
		return false, err
	}
	if rerr := us.Transactions.ReleaseNotification(ctx, tx.ID, key, previous); rerr != nil {
		us.Logger.Error("release_notification_err", zap.String("transaction_id", tx.ID), zap.String("key", key), zap.Error(rerr))
	}
	return false, err
}

// AlertOperators posts a critical message to the ops channel. Without an ops
// channel configured the alert only reaches the log.
func (us *AccessApplication) AlertOperators(ctx context.Context, tx *entities.Transaction, reason string) error {
	us.Logger.Error("critical_operator_alert",
		zap.String("transaction_id", tx.ID),
		zap.String("bot_id", tx.BotID),
		zap.String("reason", reason),
	)

	conf := us.Config.Telegram
	if conf.OpsBotToken == "" || conf.OpsChannelID == 0 {
		return nil
	}

	botName := tx.BotID
	if bot, err := us.Catalog.FindBot(ctx, tx.BotID); err == nil {
		botName = bot.Name
	}
	text := telegram.OperatorAlert(telegram.OpsAlert{
		TransactionID: tx.ID,
		BotName:       botName,
		ContactID:     tx.ContactID,
		Reason:        reason,
		CreatedAt:     tx.CreatedAt,
		Now:           us.now(),
	})
	ops := entities.Bot{ID: "ops", Name: "ops", Token: conf.OpsBotToken}

	err := retry.Do(ctx, us.Retry, func() error {
		return us.Messenger.SendMessage(ctx, ops, conf.OpsChannelID, text, nil)
	})
	if err != nil {
		us.Logger.Error("operator_alert_send_err", zap.String("transaction_id", tx.ID), zap.Error(err))
	}
	return err
}
