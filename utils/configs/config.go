package configs

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Prefix      string `json:"prefix" mapstructure:"prefix"`
	ENV         string `json:"env" mapstructure:"env"`
	Job         bool   `json:"job" mapstructure:"job"`
	MaxPoolSize int    `json:"max_pool_size" mapstructure:"max_pool_size"`

	// PoolExpirySeconds is how long an idle pool worker lives.
	PoolExpirySeconds int `json:"pool_expiry_seconds" mapstructure:"pool_expiry_seconds"`

	MongoURI      string        `json:"mongo_uri" mapstructure:"mongo_uri"`
	MongoDatabase string        `json:"mongo_database" mapstructure:"mongo_database"`
	PostgresDSN   string        `json:"postgres_dsn" mapstructure:"postgres_dsn"`
	Redis         RedisConfig   `json:"redis" mapstructure:"redis"`
	KafkaConfig   Kafka         `json:"kafka_config" mapstructure:"kafka_config"`
	MQTT          MQTTConfig    `json:"mqtt" mapstructure:"mqtt"`
	QueueUri      string        `json:"queue_uri" mapstructure:"queue_uri"`
	QueuePrefetch int           `json:"queue_prefetch" mapstructure:"queue_prefetch"`
	Gateways      GatewayConfig `json:"gateways" mapstructure:"gateways"`
	Telegram      Telegram      `json:"telegram" mapstructure:"telegram"`
	Jobs          Jobs          `json:"jobs" mapstructure:"jobs"`
	Retry         Retry         `json:"retry" mapstructure:"retry"`
}

type RedisConfig struct {
	Address  string `json:"address" mapstructure:"address"`
	Password string `json:"password" mapstructure:"password"`
	DB       int    `json:"db" mapstructure:"db"`
	// LinkTTLDays bounds how long registry entries of links without an
	// expiry are kept.
	LinkTTLDays int `json:"link_ttl_days" mapstructure:"link_ttl_days"`
}

type Kafka struct {
	Brokers        string `json:"brokers" mapstructure:"brokers"`
	Topic          string `json:"topic" mapstructure:"topic"`
	ReturnDuration int    `json:"return_duration" mapstructure:"return_duration"`
}

type MQTTConfig struct {
	Uri      string `json:"uri" mapstructure:"uri"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Prefix   string `json:"prefix" mapstructure:"prefix"`
}

type GatewayConfig struct {
	Default     string      `json:"default" mapstructure:"default"`
	Card        string      `json:"card" mapstructure:"card"`
	MercadoPago MercadoPago `json:"mercadopago" mapstructure:"mercadopago"`
	Stripe      Stripe      `json:"stripe" mapstructure:"stripe"`
}

type MercadoPago struct {
	BaseURL        string `json:"base_url" mapstructure:"base_url"`
	AccessToken    string `json:"access_token" mapstructure:"access_token"`
	TimeoutSeconds int    `json:"timeout_seconds" mapstructure:"timeout_seconds"`
}

type Stripe struct {
	SecretKey     string `json:"secret_key" mapstructure:"secret_key"`
	WebhookSecret string `json:"webhook_secret" mapstructure:"webhook_secret"`
}

type Telegram struct {
	APIEndpoint    string `json:"api_endpoint" mapstructure:"api_endpoint"`
	OpsBotToken    string `json:"ops_bot_token" mapstructure:"ops_bot_token"`
	OpsChannelID   int64  `json:"ops_channel_id" mapstructure:"ops_channel_id"`
	TimeoutSeconds int    `json:"timeout_seconds" mapstructure:"timeout_seconds"`

	// JoinListenerBots lists bots whose chat_member updates the engine polls
	// itself. Bots with their own update handler forward those updates to
	// the chat member queue instead.
	JoinListenerBots []string `json:"join_listener_bots" mapstructure:"join_listener_bots"`
	JoinPollSeconds  int      `json:"join_poll_seconds" mapstructure:"join_poll_seconds"`
}

type Jobs struct {
	ExpireIntervalSeconds  int `json:"expire_interval_seconds" mapstructure:"expire_interval_seconds"`
	NotifyIntervalSeconds  int `json:"notify_interval_seconds" mapstructure:"notify_interval_seconds"`
	PixIntervalSeconds     int `json:"pix_interval_seconds" mapstructure:"pix_interval_seconds"`
	PollIntervalSeconds    int `json:"poll_interval_seconds" mapstructure:"poll_interval_seconds"`
	ExpiringHorizonDays    int `json:"expiring_horizon_days" mapstructure:"expiring_horizon_days"`
	PixTTLMinutes          int `json:"pix_ttl_minutes" mapstructure:"pix_ttl_minutes"`
	ItemTimeoutSeconds     int `json:"item_timeout_seconds" mapstructure:"item_timeout_seconds"`
	BatchLimit             int `json:"batch_limit" mapstructure:"batch_limit"`
	ApprovalRenotifyMinute int `json:"approval_renotify_minutes" mapstructure:"approval_renotify_minutes"`
}

type Retry struct {
	Attempts   int `json:"attempts" mapstructure:"attempts"`
	IntervalMs int `json:"interval_ms" mapstructure:"interval_ms"`
}

func (j Jobs) ExpiringHorizon() time.Duration {
	return time.Duration(j.ExpiringHorizonDays) * 24 * time.Hour
}

func (j Jobs) PixTTL() time.Duration {
	return time.Duration(j.PixTTLMinutes) * time.Minute
}

func (j Jobs) ItemTimeout() time.Duration {
	return time.Duration(j.ItemTimeoutSeconds) * time.Second
}

func (j Jobs) ApprovalRenotifyAfter() time.Duration {
	return time.Duration(j.ApprovalRenotifyMinute) * time.Minute
}

func (r Retry) Interval() time.Duration {
	return time.Duration(r.IntervalMs) * time.Millisecond
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "production")
	v.SetDefault("max_pool_size", 50)
	v.SetDefault("pool_expiry_seconds", 10)
	v.SetDefault("mongo_database", "access")
	v.SetDefault("queue_prefetch", 10)
	v.SetDefault("kafka_config.topic", "transaction-status")
	v.SetDefault("kafka_config.return_duration", 5)
	v.SetDefault("gateways.default", "mercadopago")
	v.SetDefault("gateways.card", "stripe")
	v.SetDefault("gateways.mercadopago.base_url", "https://api.mercadopago.com")
	v.SetDefault("gateways.mercadopago.timeout_seconds", 10)
	v.SetDefault("telegram.api_endpoint", "https://api.telegram.org/bot%s/%s")
	v.SetDefault("telegram.timeout_seconds", 10)
	v.SetDefault("telegram.join_poll_seconds", 5)
	v.SetDefault("redis.link_ttl_days", 400)
	v.SetDefault("jobs.expire_interval_seconds", 300)
	v.SetDefault("jobs.notify_interval_seconds", 3600)
	v.SetDefault("jobs.pix_interval_seconds", 60)
	v.SetDefault("jobs.poll_interval_seconds", 120)
	v.SetDefault("jobs.expiring_horizon_days", 7)
	v.SetDefault("jobs.pix_ttl_minutes", 30)
	v.SetDefault("jobs.item_timeout_seconds", 30)
	v.SetDefault("jobs.batch_limit", 200)
	v.SetDefault("jobs.approval_renotify_minutes", 2)
	v.SetDefault("retry.attempts", 3)
	v.SetDefault("retry.interval_ms", 500)
}

func load(path, name string) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigType("json")
	v.SetConfigName(name)
	v.SetEnvPrefix("ACCESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}
	result := &Config{}
	err = v.Unmarshal(result)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func LoadConfig() (*Config, error) {
	return load("./", "config.json")
}

// LoadTestConfig load config for running tests
func LoadTestConfig(configPath string) (*Config, error) {
	return load(configPath, "config_test.json")
}
