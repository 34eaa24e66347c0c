package rabbitmq

import (
	"context"
	"encoding/json"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cast"
	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"access-system/infrastructure/telegram"
)

const HeaderBotID = "bot_id"

type JoinRecorder interface {
	RecordInviteLinkJoin(ctx context.Context, botID, link string) error
}

// ChatMemberConsumer counts invite link joins from Telegram updates that a
// bot's update handler forwards verbatim, tagged with the bot_id header.
type ChatMemberConsumer struct {
	recorder JoinRecorder
	timeout  time.Duration
	logger   *zap.Logger
}

func NewChatMemberConsumer(recorder JoinRecorder, timeout time.Duration, logger *zap.Logger) *ChatMemberConsumer {
	return &ChatMemberConsumer{recorder: recorder, timeout: timeout, logger: logger}
}

func (c *ChatMemberConsumer) Handle(ctx context.Context, d amqp.Delivery) Outcome {
	botID := cast.ToString(d.Headers[HeaderBotID])
	var update tgbotapi.Update
	if err := json.Unmarshal(d.Body, &update); err != nil || botID == "" {
		c.logger.With(zap.Error(err), zap.String("bot_id", botID), zap.ByteString("body", d.Body)).Error("chat_member_decode_err")
		return Drop
	}

	link, ok := telegram.InviteLinkJoin(update)
	if !ok {
		return Ack
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if err := c.recorder.RecordInviteLinkJoin(ctx, botID, link); err != nil {
		c.logger.With(zap.Error(err), zap.String("bot_id", botID), zap.Int("update_id", update.UpdateID)).Error("chat_member_record_err")
		return Retry
	}
	return Ack
}
