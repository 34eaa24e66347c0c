package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Shopify/sarama"
	"github.com/Shopify/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"access-system/domain/constants"
	"access-system/domain/value_objects"
)

func TestStatusPublisher_PublishStatus(t *testing.T) {
	conf := sarama.NewConfig()
	conf.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, conf)
	defer producer.Close()

	event := value_objects.TransactionStatusEvent{
		TransactionID: "tx-1",
		From:          "pending",
		To:            "completed",
		At:            time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var got value_objects.TransactionStatusEvent
		if err := json.Unmarshal(val, &got); err != nil {
			return err
		}
		if got.TransactionID != "tx-1" || got.To != "completed" {
			return errors.New("unexpected event payload")
		}
		return nil
	})

	p := NewStatusPublisher(producer, "", zap.NewNop())
	assert.Equal(t, constants.TopicTransactionStatus, p.topic)
	require.NoError(t, p.PublishStatus(context.Background(), event))
}

func TestStatusPublisher_PublishStatusFailure(t *testing.T) {
	conf := sarama.NewConfig()
	conf.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, conf)
	defer producer.Close()

	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewStatusPublisher(producer, "access-status", zap.NewNop())
	err := p.PublishStatus(context.Background(), value_objects.TransactionStatusEvent{TransactionID: "tx-2"})
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
}
