package kafka

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/Shopify/sarama"
	"go.uber.org/zap"

	"access-system/domain/constants"
	"access-system/domain/value_objects"
)

// NewSyncProducer waits for every in-sync replica so a published status
// event survives a broker failover.
func NewSyncProducer(brokers string, returnDuration int) (sarama.SyncProducer, error) {
	conf := sarama.NewConfig()
	conf.Producer.Return.Successes = true
	conf.Producer.RequiredAcks = sarama.WaitForAll
	conf.Producer.Retry.Max = 3
	if returnDuration > 0 {
		conf.Producer.Timeout = time.Duration(returnDuration) * time.Second
	}
	return sarama.NewSyncProducer(strings.Split(brokers, ","), conf)
}

type StatusPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *zap.Logger
}

func NewStatusPublisher(producer sarama.SyncProducer, topic string, logger *zap.Logger) *StatusPublisher {
	if topic == "" {
		topic = constants.TopicTransactionStatus
	}
	return &StatusPublisher{producer: producer, topic: topic, logger: logger}
}

// PublishStatus keys events by transaction id so one transaction's
// transitions stay ordered within a partition.
func (p *StatusPublisher) PublishStatus(ctx context.Context, event value_objects.TransactionStatusEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.TransactionID),
		Value: sarama.ByteEncoder(body),
		Headers: []sarama.RecordHeader{
			{Key: []byte("to"), Value: []byte(event.To)},
		},
	})
	if err != nil {
		p.logger.With(zap.Error(err), zap.String("transaction_id", event.TransactionID)).Error(constants.SERVICE_PUBLISHER_ERROR + "kafka")
		return err
	}

	p.logger.Debug("kafka_status_published",
		zap.String("transaction_id", event.TransactionID),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)
	return nil
}

func (p *StatusPublisher) Close() error {
	return p.producer.Close()
}
