package rabbitmq

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"access-system/domain/value_objects"
	"access-system/errors"
)

type handlerMock struct {
	mock.Mock
}

func (m *handlerMock) HandleGatewayWebhook(ctx context.Context, gateway, paymentID string) error {
	return m.Called(gateway, paymentID).Error(0)
}

type parserStub struct {
	hook value_objects.GatewayWebhook
	err  error
}

func (p parserStub) ParseWebhook(payload []byte, signature string) (value_objects.GatewayWebhook, error) {
	return p.hook, p.err
}

type ackRecorder struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (a *ackRecorder) Ack(multiple bool) error {
	a.acked = true
	return nil
}

func (a *ackRecorder) Nack(multiple, requeue bool) error {
	a.nacked = true
	a.requeue = requeue
	return nil
}

func TestWebhookConsumer_Handle(t *testing.T) {
	tests := []struct {
		name        string
		delivery    amqp.Delivery
		handlerErr  error
		wantCall    bool
		wantOutcome Outcome
	}{
		{
			name:        "json message",
			delivery:    amqp.Delivery{Body: []byte(`{"gateway":"mercadopago","payment_id":"123"}`)},
			wantCall:    true,
			wantOutcome: Ack,
		},
		{
			name:        "garbage body",
			delivery:    amqp.Delivery{Body: []byte(`not json`)},
			wantOutcome: Drop,
		},
		{
			name:        "no payment id",
			delivery:    amqp.Delivery{Body: []byte(`{"gateway":"mercadopago"}`)},
			wantOutcome: Ack,
		},
		{
			name:        "unknown transaction",
			delivery:    amqp.Delivery{Body: []byte(`{"gateway":"mercadopago","payment_id":"123"}`)},
			handlerErr:  fmt.Errorf("lookup: %w", errors.ErrTransactionNotFound),
			wantCall:    true,
			wantOutcome: Drop,
		},
		{
			name:        "transient failure",
			delivery:    amqp.Delivery{Body: []byte(`{"gateway":"mercadopago","payment_id":"123"}`)},
			handlerErr:  fmt.Errorf("gateway timeout"),
			wantCall:    true,
			wantOutcome: Retry,
		},
		{
			name: "signed callback",
			delivery: amqp.Delivery{
				Body:    []byte(`{"type":"payment_intent.succeeded"}`),
				Headers: amqp.Table{HeaderGateway: "stripe", HeaderSignature: "t=1,v1=abc"},
			},
			wantCall:    true,
			wantOutcome: Ack,
		},
		{
			name: "signed callback from unknown gateway",
			delivery: amqp.Delivery{
				Body:    []byte(`{}`),
				Headers: amqp.Table{HeaderGateway: "other", HeaderSignature: "sig"},
			},
			wantOutcome: Drop,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := &handlerMock{}
			if tt.wantCall {
				handler.On("HandleGatewayWebhook", mock.Anything, "123").Return(tt.handlerErr).Once()
			}
			parsers := map[string]WebhookParser{
				"stripe": parserStub{hook: value_objects.GatewayWebhook{Gateway: "stripe", PaymentID: "123"}},
			}
			c := NewWebhookConsumer(handler, parsers, time.Second, zap.NewNop())

			assert.Equal(t, tt.wantOutcome, c.Handle(context.Background(), tt.delivery))
			handler.AssertExpectations(t)
		})
	}
}

func TestSettleWith(t *testing.T) {
	tests := []struct {
		name        string
		outcome     Outcome
		redelivered bool
		wantAck     bool
		wantRequeue bool
	}{
		{name: "ack", outcome: Ack, wantAck: true},
		{name: "first retry requeues", outcome: Retry, wantRequeue: true},
		{name: "second retry drops", outcome: Retry, redelivered: true},
		{name: "drop", outcome: Drop},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &ackRecorder{}
			assert.NoError(t, settleWith(rec, tt.redelivered, tt.outcome))
			assert.Equal(t, tt.wantAck, rec.acked)
			assert.Equal(t, !tt.wantAck, rec.nacked)
			assert.Equal(t, tt.wantRequeue, rec.requeue)
		})
	}
}
