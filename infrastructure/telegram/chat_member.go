package telegram

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"access-system/domain/constants"
	"access-system/domain/entities"
)

// UpdateChatMember is the update type carrying member status changes. Bots
// only receive it when it is listed in allowed_updates.
const UpdateChatMember = "chat_member"

func present(m tgbotapi.ChatMember) bool {
	switch m.Status {
	case "creator", "administrator", "member":
		return true
	case "restricted":
		return m.IsMember
	}
	return false
}

// InviteLinkJoin returns the invite link a user entered the chat through.
// ok is false for any other update, including rejoins of present members.
func InviteLinkJoin(u tgbotapi.Update) (link string, ok bool) {
	cm := u.ChatMember
	if cm == nil || cm.InviteLink == nil || cm.InviteLink.InviteLink == "" {
		return "", false
	}
	if present(cm.OldChatMember) || !present(cm.NewChatMember) {
		return "", false
	}
	return cm.InviteLink.InviteLink, true
}

// ListenChatMembers polls getUpdates for bot and calls onJoin for each join
// through an invite link, until ctx is done. It must not run for a bot whose
// updates another process consumes: Telegram hands each update out once.
func (m *Messenger) ListenChatMembers(ctx context.Context, bot entities.Bot, interval time.Duration, onJoin func(ctx context.Context, link string)) error {
	api, err := m.api(bot)
	if err != nil {
		return err
	}

	cfg := tgbotapi.NewUpdate(0)
	cfg.AllowedUpdates = []string{UpdateChatMember}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		updates, err := api.GetUpdates(cfg)
		if err != nil {
			m.logger.With(zap.Error(err), zap.String("bot_id", bot.ID)).Warn(constants.SERVICE_TELEGRAM_ERROR + "get_updates")
		}
		for _, u := range updates {
			if u.UpdateID >= cfg.Offset {
				cfg.Offset = u.UpdateID + 1
			}
			if link, ok := InviteLinkJoin(u); ok {
				onJoin(ctx, link)
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
