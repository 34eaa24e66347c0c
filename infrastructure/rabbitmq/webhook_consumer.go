package rabbitmq

import (
	"context"
	"encoding/json"
	"time"

	"github.com/spf13/cast"
	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"access-system/domain/value_objects"
	"access-system/errors"
)

const (
	HeaderGateway   = "gateway"
	HeaderSignature = "signature"
)

type WebhookHandler interface {
	HandleGatewayWebhook(ctx context.Context, gateway, paymentID string) error
}

// WebhookParser verifies a raw, signed processor callback.
type WebhookParser interface {
	ParseWebhook(payload []byte, signature string) (value_objects.GatewayWebhook, error)
}

// WebhookConsumer feeds queued gateway callbacks into the state machine.
// Messages are either a JSON GatewayWebhook or a raw signed callback with
// gateway and signature headers.
type WebhookConsumer struct {
	handler WebhookHandler
	parsers map[string]WebhookParser
	timeout time.Duration
	logger  *zap.Logger
}

func NewWebhookConsumer(handler WebhookHandler, parsers map[string]WebhookParser, timeout time.Duration, logger *zap.Logger) *WebhookConsumer {
	return &WebhookConsumer{handler: handler, parsers: parsers, timeout: timeout, logger: logger}
}

func (c *WebhookConsumer) decode(d amqp.Delivery) (value_objects.GatewayWebhook, error) {
	signature := cast.ToString(d.Headers[HeaderSignature])
	if signature == "" {
		var hook value_objects.GatewayWebhook
		err := json.Unmarshal(d.Body, &hook)
		return hook, err
	}

	gateway := cast.ToString(d.Headers[HeaderGateway])
	parser, ok := c.parsers[gateway]
	if !ok {
		return value_objects.GatewayWebhook{}, errors.ErrUnknownGateway
	}
	return parser.ParseWebhook(d.Body, signature)
}

func (c *WebhookConsumer) Handle(ctx context.Context, d amqp.Delivery) Outcome {
	hook, err := c.decode(d)
	if err != nil {
		c.logger.With(zap.Error(err), zap.ByteString("body", d.Body)).Error("webhook_decode_err")
		return Drop
	}
	if hook.PaymentID == "" {
		c.logger.Debug("webhook_without_payment", zap.String("gateway", hook.Gateway))
		return Ack
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	err = c.handler.HandleGatewayWebhook(ctx, hook.Gateway, hook.PaymentID)
	switch {
	case err == nil:
		return Ack
	case errors.Is(err, errors.ErrTransactionNotFound), errors.Is(err, errors.ErrUnknownGateway):
		c.logger.With(zap.Error(err), zap.String("gateway", hook.Gateway), zap.String("payment_id", hook.PaymentID)).Warn("webhook_ignored")
		return Drop
	default:
		c.logger.With(zap.Error(err), zap.String("gateway", hook.Gateway), zap.String("payment_id", hook.PaymentID)).Error("webhook_handle_err")
		return Retry
	}
}
