package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"access-system/domain/entities"
	"access-system/domain/repositories"
	"access-system/domain/value_objects"
	"access-system/errors"
	"access-system/infrastructure/database_mgo"
	"access-system/infrastructure/database_mgo/transaction"
	"access-system/infrastructure/database_sql"
	"access-system/infrastructure/database_sql/catalog"
	"access-system/infrastructure/kafka"
	"access-system/infrastructure/mqtt"
	"access-system/infrastructure/redis_cache"
	"access-system/infrastructure/service/mercadopago"
	"access-system/infrastructure/service/stripe_gateway"
	"access-system/infrastructure/telegram"
	"access-system/utils/configs"
	"access-system/utils/gpooling"
	"access-system/utils/helpers"
	"access-system/utils/retry"
)

type AccessApplication struct {
	Config       *configs.Config
	Logger       *zap.Logger
	IPool        gpooling.IPool
	Transactions repositories.TransactionRepository
	Catalog      repositories.ICatalog
	Messenger    repositories.IMessenger
	Links        repositories.ILinkRegistry
	Gateways     map[string]repositories.IGateway
	Publishers   []repositories.IEventPublisher
	Retry        retry.Policy
	// Now is the engine clock; nil means helpers.GetCurrentTime.
	Now func() time.Time

	links   singleflight.Group
	closers []func()
}

// NewAccessApplication connects every collaborator named in config. Optional
// outputs (Kafka, MQTT, Stripe) are skipped when they are not configured.
func NewAccessApplication(ctx context.Context, config *configs.Config, logger *zap.Logger, pool gpooling.IPool) (*AccessApplication, error) {
	app := &AccessApplication{
		Config: config,
		Logger: logger,
		IPool:  pool,
		Retry:  DefaultRetry(config),
	}

	db, err := database_mgo.NewMongoDBconnection(ctx, config.MongoURI)
	if err != nil {
		return nil, fmt.Errorf("mongo: %w", err)
	}
	app.closers = append(app.closers, func() { _ = db.Disconnect(context.Background()) })

	app.Transactions, err = transaction.NewTransactionCollectionImpl(ctx, db, config)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("transaction collection: %w", err)
	}

	sqlDB, err := database_sql.NewPostgresConnection(config.PostgresDSN, logger)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}
	app.Catalog = catalog.NewCatalogRepositoryImpl(sqlDB)

	redisClient := redis_cache.NewRedisClient(config.Redis.Address, config.Redis.Password, config.Redis.DB)
	app.closers = append(app.closers, func() { _ = redisClient.Close() })
	app.Links = redis_cache.NewLinkRegistry(redisClient, time.Duration(config.Redis.LinkTTLDays)*24*time.Hour)

	app.Messenger = telegram.NewMessenger(
		config.Telegram.APIEndpoint,
		time.Duration(config.Telegram.TimeoutSeconds)*time.Second,
		app.Links,
		logger,
	)

	gateways := []repositories.IGateway{
		mercadopago.NewMercadoPagoClient(config.Gateways.MercadoPago, config.Jobs.PixTTL(), logger),
	}
	if config.Gateways.Stripe.SecretKey != "" {
		gateways = append(gateways, stripe_gateway.NewStripeGateway(config.Gateways.Stripe.SecretKey, config.Gateways.Stripe.WebhookSecret, nil))
	}
	app.Gateways = GatewayRegistry(gateways...)

	if config.KafkaConfig.Brokers != "" {
		producer, err := kafka.NewSyncProducer(config.KafkaConfig.Brokers, config.KafkaConfig.ReturnDuration)
		if err != nil {
			logger.Error("kafka_connect_err", zap.Error(err))
		} else {
			publisher := kafka.NewStatusPublisher(producer, config.KafkaConfig.Topic, logger)
			app.closers = append(app.closers, func() { _ = publisher.Close() })
			app.Publishers = append(app.Publishers, publisher)
		}
	}

	if config.MQTT.Uri != "" {
		client, err := mqtt.Connection(config.MQTT.Uri, config.MQTT.Username, config.MQTT.Password)
		if err != nil {
			logger.Error("mqtt_connect_err", zap.Error(err))
		} else {
			app.closers = append(app.closers, func() { client.Disconnect(250) })
			app.Publishers = append(app.Publishers, mqtt.NewMQTTRepositoryImpl(client, config.MQTT.Prefix, logger))
		}
	}

	return app, nil
}

func DefaultRetry(config *configs.Config) retry.Policy {
	return retry.Policy{Attempts: config.Retry.Attempts, Interval: config.Retry.Interval()}
}

// Close releases the connections opened by NewAccessApplication, newest first.
func (us *AccessApplication) Close() {
	for i := len(us.closers) - 1; i >= 0; i-- {
		us.closers[i]()
	}
	us.closers = nil
}

// GatewayRegistry indexes gateways by their Name.
func GatewayRegistry(gateways ...repositories.IGateway) map[string]repositories.IGateway {
	registry := make(map[string]repositories.IGateway, len(gateways))
	for _, g := range gateways {
		registry[g.Name()] = g
	}
	return registry
}

func (us *AccessApplication) GatewayFor(name string) (repositories.IGateway, error) {
	gateway, ok := us.Gateways[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownGateway, name)
	}
	return gateway, nil
}

func (us *AccessApplication) now() time.Time {
	if us.Now != nil {
		return us.Now()
	}
	return helpers.GetCurrentTime()
}

func (us *AccessApplication) batchLimit() int64 {
	return int64(us.Config.Jobs.BatchLimit)
}

// publishStatus fans a transition out to every publisher. Failures are
// logged only.
func (us *AccessApplication) publishStatus(ctx context.Context, tx *entities.Transaction, from, to entities.EntityStatus, at time.Time) {
	event := value_objects.TransactionStatusEvent{
		TransactionID: tx.ID,
		From:          from.StatusString(),
		To:            to.StatusString(),
		BotID:         tx.BotID,
		ContactID:     tx.ContactID,
		PlanID:        tx.PlanID,
		Gateway:       tx.Gateway,
		Amount:        tx.Amount,
		At:            at,
	}
	for _, publisher := range us.Publishers {
		if err := publisher.PublishStatus(ctx, event); err != nil {
			us.Logger.Warn("publish_status_err",
				zap.String("transaction_id", tx.ID),
				zap.String("to", event.To),
				zap.Error(err),
			)
		}
	}
}

// accessContext is the catalogue view of one transaction.
type accessContext struct {
	Bot     *entities.Bot
	Contact *entities.Contact
	// Plan and Cycle are nil when the catalogue no longer has them.
	Plan  *entities.Plan
	Cycle *entities.Cycle
}

func (a accessContext) planTitle() string {
	if a.Plan == nil {
		return ""
	}
	return a.Plan.Title
}

func (us *AccessApplication) loadAccessContext(ctx context.Context, tx *entities.Transaction) (accessContext, error) {
	var (
		ac  accessContext
		err error
	)
	ac.Bot, err = us.Catalog.FindBot(ctx, tx.BotID)
	if err != nil {
		return ac, err
	}
	ac.Contact, err = us.Catalog.FindContact(ctx, tx.ContactID)
	if err != nil {
		return ac, err
	}
	ac.Plan, err = us.Catalog.FindPlan(ctx, tx.PlanID)
	if err != nil && !errors.Is(err, errors.ErrCatalogNotFound) {
		return ac, err
	}
	ac.Cycle, err = us.findCycle(ctx, tx.CycleID)
	return ac, err
}

// findCycle returns a nil cycle when none is recorded or the catalogue no
// longer has it, which means access has no end. Any other lookup error is
// returned so callers never mistake an outage for an endless cycle.
func (us *AccessApplication) findCycle(ctx context.Context, id string) (*entities.Cycle, error) {
	if id == "" {
		return nil, nil
	}
	cycle, err := us.Catalog.FindCycle(ctx, id)
	if errors.Is(err, errors.ErrCatalogNotFound) {
		us.Logger.Warn("cycle_not_found", zap.String("cycle_id", id))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find cycle %s: %w", id, err)
	}
	return cycle, nil
}

// accessExpiresAt is Transaction.AccessExpiresAt with the cycle looked up
// only when the transaction has not recorded an expiry yet.
func (us *AccessApplication) accessExpiresAt(ctx context.Context, tx *entities.Transaction) (time.Time, bool, error) {
	if at, ok := tx.AccessExpiresAt(nil); ok {
		return at, true, nil
	}
	cycle, err := us.findCycle(ctx, tx.CycleID)
	if err != nil {
		return time.Time{}, false, err
	}
	at, ok := tx.AccessExpiresAt(cycle)
	return at, ok, nil
}
