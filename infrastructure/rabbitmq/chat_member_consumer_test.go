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
)

type recorderMock struct {
	mock.Mock
}

func (m *recorderMock) RecordInviteLinkJoin(ctx context.Context, botID, link string) error {
	return m.Called(botID, link).Error(0)
}

func joinBody(oldStatus, newStatus string) []byte {
	return []byte(fmt.Sprintf(`{"update_id":9,"chat_member":{"chat":{"id":-100123,"type":"supergroup"},"from":{"id":7,"is_bot":false,"first_name":"Ana"},"date":0,`+
		`"old_chat_member":{"user":{"id":7,"is_bot":false,"first_name":"Ana"},"status":%q},`+
		`"new_chat_member":{"user":{"id":7,"is_bot":false,"first_name":"Ana"},"status":%q},`+
		`"invite_link":{"invite_link":"https://t.me/+minted","creator":{"id":1,"is_bot":true,"first_name":"vip"}}}}`, oldStatus, newStatus))
}

func TestChatMemberConsumer_Handle(t *testing.T) {
	botHeader := amqp.Table{HeaderBotID: "bot-1"}

	tests := []struct {
		name        string
		delivery    amqp.Delivery
		recordErr   error
		wantCall    bool
		wantOutcome Outcome
	}{
		{
			name:        "join through link",
			delivery:    amqp.Delivery{Body: joinBody("left", "member"), Headers: botHeader},
			wantCall:    true,
			wantOutcome: Ack,
		},
		{
			name:        "member leaves",
			delivery:    amqp.Delivery{Body: joinBody("member", "left"), Headers: botHeader},
			wantOutcome: Ack,
		},
		{
			name:        "other update",
			delivery:    amqp.Delivery{Body: []byte(`{"update_id":9,"message":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"}}}`), Headers: botHeader},
			wantOutcome: Ack,
		},
		{
			name:        "missing bot header",
			delivery:    amqp.Delivery{Body: joinBody("left", "member")},
			wantOutcome: Drop,
		},
		{
			name:        "garbage body",
			delivery:    amqp.Delivery{Body: []byte(`not json`), Headers: botHeader},
			wantOutcome: Drop,
		},
		{
			name:        "registry unavailable",
			delivery:    amqp.Delivery{Body: joinBody("left", "member"), Headers: botHeader},
			recordErr:   fmt.Errorf("dial tcp: connection refused"),
			wantCall:    true,
			wantOutcome: Retry,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := &recorderMock{}
			if tt.wantCall {
				recorder.On("RecordInviteLinkJoin", "bot-1", "https://t.me/+minted").Return(tt.recordErr).Once()
			}
			c := NewChatMemberConsumer(recorder, time.Second, zap.NewNop())

			assert.Equal(t, tt.wantOutcome, c.Handle(context.Background(), tt.delivery))
			recorder.AssertExpectations(t)
		})
	}
}
