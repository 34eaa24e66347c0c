package test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"access-system/application"
	"access-system/domain/constants"
	"access-system/domain/entities"
	"access-system/domain/repositories"
	"access-system/domain/repositories/mocks"
	"access-system/domain/value_objects"
	"access-system/errors"
	"access-system/utils/configs"
	"access-system/utils/gpooling"
	logger2 "access-system/utils/logger"
)

// T0 is the creation time of every seeded transaction.
var T0 = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

const (
	ContactChat int64 = 5001
	GroupChat   int64 = -100200
	OpsChat     int64 = -1001000
)

type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type MockService struct {
	Transactions      *MemoryTransactions
	Catalog           *mocks.ICatalog
	Messenger         *mocks.IMessenger
	Links             *mocks.ILinkRegistry
	Gateway           *mocks.IGateway
	Publisher         *mocks.IEventPublisher
	Clock             *Clock
	Logs              *observer.ObservedLogs
	AccessApplication *application.AccessApplication
}

func NewTestAccessApplication(t *testing.T) *MockService {
	config, err := configs.LoadTestConfig("../../")
	require.NoError(t, err)

	logger, err := logger2.NewLogger("production")
	require.NoError(t, err)
	observed, logs := observer.New(zapcore.WarnLevel)
	logger = logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, observed)
	}))

	pool, err := gpooling.NewPooling(config.MaxPoolSize, logger, gpooling.WithExpiry(time.Duration(config.PoolExpirySeconds)*time.Second))
	require.NoError(t, err)
	t.Cleanup(pool.Release)

	gateway := &mocks.IGateway{}
	gateway.On("Name").Return(constants.GatewayMercadoPago)
	publisher := &mocks.IEventPublisher{}
	publisher.On("PublishStatus", mock.Anything, mock.Anything).Return(nil).Maybe()

	th := &MockService{
		Transactions: NewMemoryTransactions(),
		Catalog:      &mocks.ICatalog{},
		Messenger:    &mocks.IMessenger{},
		Links:        &mocks.ILinkRegistry{},
		Gateway:      gateway,
		Publisher:    publisher,
		Clock:        &Clock{now: T0},
		Logs:         logs,
	}
	th.AccessApplication = &application.AccessApplication{
		Config:       config,
		Logger:       logger,
		IPool:        pool,
		Transactions: th.Transactions,
		Catalog:      th.Catalog,
		Messenger:    th.Messenger,
		Links:        th.Links,
		Gateways:     application.GatewayRegistry(gateway),
		Publishers:   []repositories.IEventPublisher{publisher},
		Retry:        application.DefaultRetry(config),
		Now:          th.Clock.Now,
	}
	return th
}

// Fixtures is the catalogue a test runs against. Zero-value records are
// reported as not found.
type Fixtures struct {
	Bot         entities.Bot
	Contact     entities.Contact
	Plan        entities.Plan
	Cycle       entities.Cycle
	Group       entities.Group
	ActiveGroup entities.Group
	AnyGroup    entities.Group
}

func DefaultFixtures() Fixtures {
	return Fixtures{
		Bot:     entities.Bot{ID: "bot-1", Name: "VIP Bot", Token: "token-1"},
		Contact: entities.Contact{ID: "contact-1", BotID: "bot-1", TelegramUserID: ContactChat, Name: "Ana", Email: "ana@example.com"},
		Plan:    entities.Plan{ID: "plan-1", BotID: "bot-1", GroupID: "group-1", Title: "Plano VIP", Price: 2990, Active: true},
		Cycle:   entities.Cycle{ID: "cycle-30", Name: "Mensal", Days: 30},
		Group:   entities.Group{ID: "group-1", BotID: "bot-1", Title: "VIP", ChatID: GroupChat, Active: true},
	}
}

func found[T any](v T, ok bool) (*T, error) {
	if !ok {
		return nil, errors.ErrCatalogNotFound
	}
	return &v, nil
}

func (th *MockService) SeedCatalog(f Fixtures) {
	th.Catalog.On("FindBot", mock.Anything, mock.Anything).Return(found(f.Bot, f.Bot.ID != "")).Maybe()
	th.Catalog.On("FindContact", mock.Anything, mock.Anything).Return(found(f.Contact, f.Contact.ID != "")).Maybe()
	th.Catalog.On("FindPlan", mock.Anything, mock.Anything).Return(found(f.Plan, f.Plan.ID != "")).Maybe()
	th.Catalog.On("FindCycle", mock.Anything, mock.Anything).Return(found(f.Cycle, f.Cycle.ID != "")).Maybe()
	th.Catalog.On("FindGroup", mock.Anything, mock.Anything).Return(found(f.Group, f.Group.ID != "")).Maybe()
	th.Catalog.On("FindActiveGroupByBot", mock.Anything, mock.Anything).Return(found(f.ActiveGroup, f.ActiveGroup.ID != "")).Maybe()
	th.Catalog.On("FindAnyGroupByBot", mock.Anything, mock.Anything).Return(found(f.AnyGroup, f.AnyGroup.ID != "")).Maybe()
}

// Seed stores a transaction of the default fixtures in the given status.
func (th *MockService) Seed(t *testing.T, id string, status entities.EntityStatus, mutate func(tx *entities.Transaction)) *entities.Transaction {
	tx := &entities.Transaction{
		ID:               id,
		Gateway:          constants.GatewayMercadoPago,
		GatewayPaymentID: "pay-" + id,
		Amount:           2990,
		Currency:         constants.CurrencyBRL,
		PaymentMethod:    entities.PaymentMethodPix,
		Status:           status,
		BotID:            "bot-1",
		ContactID:        "contact-1",
		PlanID:           "plan-1",
		CycleID:          "cycle-30",
		CreatedAt:        T0,
		UpdatedAt:        T0,
	}
	if mutate != nil {
		mutate(tx)
	}
	created, err := th.Transactions.Create(context.Background(), tx)
	require.NoError(t, err)
	return created
}

// Approved marks tx as approved at T0 with access until T0 plus 30 days.
func Approved(tx *entities.Transaction) {
	approvedAt := T0
	expiresAt := T0.AddDate(0, 0, 30)
	tx.Metadata.ApprovedAt = &approvedAt
	tx.Metadata.AccessExpiresAt = &expiresAt
	tx.Metadata.GroupChatID = GroupChat
}

// SentTo returns the texts sent to chatID, in order.
func (th *MockService) SentTo(chatID int64) []string {
	var texts []string
	for _, call := range th.Messenger.Calls {
		if call.Method == "SendMessage" && call.Arguments.Get(2).(int64) == chatID {
			texts = append(texts, call.Arguments.String(3))
		}
	}
	return texts
}

// Warned reports whether a warn or error entry named msg was logged.
func (th *MockService) Warned(msg string) bool {
	return th.Logs.FilterMessage(msg).Len() > 0
}

// AcceptMessages makes every SendMessage succeed.
func (th *MockService) AcceptMessages() {
	th.Messenger.On("SendMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
}

// LinkInfoUnavailable makes every invite link lookup fail, which the engine
// treats as a usable link.
func (th *MockService) LinkInfoUnavailable() {
	th.Messenger.On("GetInviteLinkInfo", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(value_objects.InviteLinkInfo{}, errors.ErrInviteLinkInfoUnavailable)
}

// CallsTo counts the recorded calls of method on m.
func CallsTo(m *mock.Mock, method string) int {
	n := 0
	for _, call := range m.Calls {
		if call.Method == method {
			n++
		}
	}
	return n
}

func lastCall(m *mock.Mock, method string) mock.Call {
	for i := len(m.Calls) - 1; i >= 0; i-- {
		if m.Calls[i].Method == method {
			return m.Calls[i]
		}
	}
	return mock.Call{}
}
