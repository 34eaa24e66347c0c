package rabbitmq

import (
	"context"
	"encoding/json"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"access-system/domain/value_objects"
	"access-system/utils/gpooling"
)

type options struct {
	Uri        string
	AutoDelete bool
	Exclusive  bool
	NoWait     bool
	Prefetch   int
}

func NewOptions() *options {
	return &options{Prefetch: 10}
}

func (o *options) WithUri(uri string) *options {
	o.Uri = uri
	return o
}

func (o *options) WithPrefetch(n int) *options {
	o.Prefetch = n
	return o
}

type RabbiMQ struct {
	Connection *amqp.Connection
	IPool      gpooling.IPool
	options
	*zap.Logger
}

func NewRabbiMQ(o options, log *zap.Logger, pool gpooling.IPool) (*RabbiMQ, error) {
	conn, err := amqp.Dial(o.Uri)
	if err != nil {
		return nil, err
	}

	return &RabbiMQ{
		IPool:      pool,
		Connection: conn,
		options:    o,
		Logger:     log,
	}, nil
}

// PublishWebhook drops a gateway notification on the intake queue.
func (r *RabbiMQ) PublishWebhook(queue string, hook value_objects.GatewayWebhook) error {
	ch, err := r.Connection.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if _, err = r.declare(ch, queue); err != nil {
		return err
	}

	body, err := json.Marshal(hook)
	if err != nil {
		return err
	}
	return ch.Publish(
		"",    // exchange
		queue, // routing key
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		})
}

func (r *RabbiMQ) declare(ch *amqp.Channel, queue string) (amqp.Queue, error) {
	return ch.QueueDeclare(
		queue,        // name
		true,         // durable
		r.AutoDelete, // delete when usused
		r.Exclusive,  // exclusive
		r.NoWait,     // no-wait
		nil,          // arguments
	)
}

func (r *RabbiMQ) logQueueErr(queue string, err error) {
	r.Logger.Error("err queue", zap.String("queue", queue), zap.Error(err))
}

// WithConsumerQueue consumes queue on a pool worker until ctx is done or the
// channel closes. fn decides how each delivery is settled.
func (r *RabbiMQ) WithConsumerQueue(ctx context.Context, queue string, fn func(ctx context.Context, d amqp.Delivery) Outcome) error {
	ch, err := r.Connection.Channel()
	if err != nil {
		return err
	}
	if r.Prefetch > 0 {
		if err = ch.Qos(r.Prefetch, 0, false); err != nil {
			ch.Close()
			return err
		}
	}
	q, err := r.declare(ch, queue)
	if err != nil {
		ch.Close()
		return err
	}
	msgs, err := ch.Consume(
		q.Name,      // queue
		"",          // consumer
		false,       // auto-ack
		r.Exclusive, // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		ch.Close()
		return err
	}

	return r.IPool.Submit(func() {
		defer ch.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-msgs:
				if !ok {
					r.Logger.Warn("queue_channel_closed", zap.String("queue", queue))
					return
				}
				if err := settle(d, fn(ctx, d)); err != nil {
					r.logQueueErr(queue, err)
				}
			}
		}
	})
}

type Outcome int

const (
	Ack Outcome = iota
	// Retry requeues a delivery once; a redelivered message is dropped.
	Retry
	Drop
)

type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func settle(d amqp.Delivery, outcome Outcome) error {
	return settleWith(d, d.Redelivered, outcome)
}

func settleWith(d acknowledger, redelivered bool, outcome Outcome) error {
	switch outcome {
	case Retry:
		return d.Nack(false, !redelivered)
	case Drop:
		return d.Nack(false, false)
	default:
		return d.Ack(false)
	}
}
