package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"access-system/domain/constants"
	"access-system/domain/value_objects"
	"access-system/utils/helpers"
)

func Connection(uri, user, password string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().AddBroker(uri)
	opts.SetUsername(user)
	opts.SetPassword(password)
	opts.SetClientID("access-engine-" + helpers.GetUUId()[:8])
	opts.SetAutoReconnect(true)

	client_mqtt := mqtt.NewClient(opts)

	if token := client_mqtt.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return client_mqtt, nil
}

type repositoryImpl struct {
	client  mqtt.Client
	prefix  string
	timeout time.Duration
	zap.Logger
}

// NewMQTTRepositoryImpl publishes status events for the live dashboards
// under <prefix>/topic/<topic>/<bot id>/.
func NewMQTTRepositoryImpl(client mqtt.Client, prefix string, logger *zap.Logger) *repositoryImpl {
	return &repositoryImpl{client: client, prefix: prefix, timeout: 5 * time.Second, Logger: *logger}
}

func (r *repositoryImpl) topic(botID string) string {
	return fmt.Sprintf("%s/topic/%s/%s/", r.prefix, constants.TopicTransactionStatus, botID)
}

func (r *repositoryImpl) Publish(topic, message string, retain bool) (err error) {
	publish := r.client.Publish(topic, byte(1), retain, message)
	if !publish.WaitTimeout(r.timeout) {
		err = fmt.Errorf("mqtt publish to %s timed out", topic)
	} else {
		err = publish.Error()
	}
	if err != nil {
		r.Logger.With(zap.Any("message", message)).
			With(zap.Any("topic", topic)).
			With(zap.Error(err)).
			Error("MQTT_PUBLISH")
	}
	return err
}

func (r *repositoryImpl) PublishStatus(ctx context.Context, event value_objects.TransactionStatusEvent) error {
	body, err := json.Marshal(struct {
		Event string `json:"event"`
		value_objects.TransactionStatusEvent
	}{Event: constants.MQTTEventBackground, TransactionStatusEvent: event})
	if err != nil {
		return err
	}
	return r.Publish(r.topic(event.BotID), string(body), false)
}
