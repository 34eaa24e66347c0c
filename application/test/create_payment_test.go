package test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"access-system/application"
	"access-system/domain/constants"
	"access-system/domain/entities"
	"access-system/domain/value_objects"
	"access-system/errors"
	"access-system/utils/emv"
)

// pixCode is a well-formed PIX code terminated by its checksum.
var pixCode = emv.Append("00020126580014br.gov.bcb.pix0136123e4567-e12b-12d1-a456-4266554400005204000053039865802BR5913Fulano de Tal6008BRASILIA62070503***6304")

func corrupt(code string) string {
	last := code[len(code)-1]
	replacement := "0"
	if last == '0' {
		replacement = "1"
	}
	return code[:len(code)-1] + replacement
}

func pixRequest() application.CreatePaymentRequest {
	return application.CreatePaymentRequest{BotID: "bot-1", ContactID: "contact-1", PlanID: "plan-1", CycleID: "cycle-30"}
}

func TestAccessApplication_CreatePixPayment(t *testing.T) {
	ctx := context.TODO()

	tests := []struct {
		name        string
		payload     string
		wantStatus  entities.EntityStatus
		wantCode    string
		wantValid   bool
		wantErr     error
		wantReason  string
		wantMessage string
	}{
		{
			name:        "valid-code",
			payload:     pixCode,
			wantStatus:  entities.StatusPending,
			wantCode:    pixCode,
			wantValid:   true,
			wantMessage: "PIX gerado",
		},
		{
			name:        "code-wrapped-by-transport",
			payload:     "\n" + pixCode[:40] + "\r\n" + pixCode[40:] + "\t",
			wantStatus:  entities.StatusPending,
			wantCode:    pixCode,
			wantValid:   true,
			wantMessage: "PIX gerado",
		},
		{
			name:        "checksum-mismatch",
			payload:     corrupt(pixCode),
			wantStatus:  entities.StatusFailed,
			wantCode:    corrupt(pixCode),
			wantErr:     errors.ErrInvalidPixCode,
			wantReason:  constants.FailureReasonInvalidPixPayload,
			wantMessage: "Pagamento não aprovado",
		},
		{
			name:        "wrong-format-prefix",
			payload:     emv.Append("01" + strings.Repeat("9", 120)),
			wantStatus:  entities.StatusFailed,
			wantCode:    emv.Append("01" + strings.Repeat("9", 120)),
			wantErr:     errors.ErrInvalidPixCode,
			wantReason:  constants.FailureReasonInvalidPixPayload,
			wantMessage: "Pagamento não aprovado",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := NewTestAccessApplication(t)
			th.SeedCatalog(DefaultFixtures())
			th.AcceptMessages()
			th.Gateway.On("CreatePixPayment", mock.Anything, mock.Anything).
				Return(value_objects.PaymentCreated{PaymentID: "pix-1", Status: "pending", PixPayload: tt.payload}, nil)

			tx, err := th.AccessApplication.CreatePixPayment(ctx, pixRequest())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.NotNil(t, tx)

			stored := th.Transactions.Get(tx.ID)
			require.NotNil(t, stored)
			assert.Equal(t, tt.wantStatus, stored.Status)
			assert.Equal(t, "pix-1", stored.GatewayPaymentID)
			assert.Equal(t, int64(2990), stored.Amount)
			assert.Equal(t, constants.CurrencyBRL, stored.Currency)
			assert.Equal(t, tt.wantCode, stored.Metadata.PixCode)
			require.NotNil(t, stored.Metadata.PixChecksum)
			assert.Equal(t, tt.wantValid, stored.Metadata.PixChecksum.Valid)
			assert.Equal(t, tt.wantReason, stored.Metadata.FailureReason)

			sent := th.SentTo(ContactChat)
			require.Len(t, sent, 1)
			assert.Contains(t, sent[0], tt.wantMessage)

			req := lastCall(&th.Gateway.Mock, "CreatePixPayment").Arguments.Get(1).(value_objects.CreatePaymentReq)
			assert.Equal(t, tx.ID, req.IdempotencyKey)
			assert.Equal(t, "ana@example.com", req.Payer.Email)
			assert.Equal(t, "Plano VIP", req.Description)
		})
	}
}

func TestAccessApplication_CreatePixPayment_NotificationLost(t *testing.T) {
	ctx := context.TODO()
	th := NewTestAccessApplication(t)
	th.SeedCatalog(DefaultFixtures())
	th.Messenger.On("SendMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.ErrInsufficientRights)
	th.Gateway.On("CreatePixPayment", mock.Anything, mock.Anything).
		Return(value_objects.PaymentCreated{PaymentID: "pix-1", Status: "pending", PixPayload: pixCode}, nil)

	tx, err := th.AccessApplication.CreatePixPayment(ctx, pixRequest())
	require.NoError(t, err)

	stored := th.Transactions.Get(tx.ID)
	assert.Equal(t, entities.StatusPending, stored.Status)
	assert.Equal(t, pixCode, stored.Metadata.PixCode)
	assert.NotEmpty(t, th.SentTo(ContactChat))
	assert.True(t, th.Warned("pix_created_notification_err"))
}

func TestAccessApplication_CreatePixPayment_Rejected(t *testing.T) {
	ctx := context.TODO()

	tests := []struct {
		name     string
		fixtures func(f *Fixtures)
		fd       func(th *MockService)
		wantErr  error
		wantTx   bool
	}{
		{
			name: "free-plan",
			fixtures: func(f *Fixtures) {
				f.Plan.Price = 0
			},
			wantErr: errors.ErrInvalidAmount,
		},
		{
			name: "unknown-plan",
			fixtures: func(f *Fixtures) {
				f.Plan = entities.Plan{}
			},
			wantErr: errors.ErrCatalogNotFound,
		},
		{
			name: "gateway-refuses-method",
			fd: func(th *MockService) {
				th.Gateway.On("CreatePixPayment", mock.Anything, mock.Anything).
					Return(value_objects.PaymentCreated{}, errors.ErrMethodNotSupported)
			},
			wantErr: errors.ErrMethodNotSupported,
			wantTx:  true,
		},
		{
			name: "gateway-refuses-request",
			fd: func(th *MockService) {
				th.Gateway.On("CreatePixPayment", mock.Anything, mock.Anything).
					Return(value_objects.PaymentCreated{}, errors.ErrPaymentRefused)
			},
			wantErr: errors.ErrPaymentRefused,
			wantTx:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := NewTestAccessApplication(t)
			f := DefaultFixtures()
			if tt.fixtures != nil {
				tt.fixtures(&f)
			}
			th.SeedCatalog(f)
			if tt.fd != nil {
				tt.fd(th)
			}

			tx, err := th.AccessApplication.CreatePixPayment(ctx, pixRequest())
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, th.Messenger.Calls)
			if !tt.wantTx {
				assert.Nil(t, tx)
				return
			}

			require.NotNil(t, tx)
			stored := th.Transactions.Get(tx.ID)
			assert.Equal(t, entities.StatusFailed, stored.Status)
			assert.Equal(t, constants.FailureReasonGatewayError, stored.Metadata.FailureReason)
			// A refusal is final: the gateway is asked once.
			assert.Equal(t, 1, CallsTo(&th.Gateway.Mock, "CreatePixPayment"))
		})
	}
}

func TestAccessApplication_CreateCardPayment(t *testing.T) {
	ctx := context.TODO()

	tests := []struct {
		name        string
		status      string
		wantStatus  entities.EntityStatus
		wantMessage string
	}{
		{name: "approved", status: "approved", wantStatus: entities.StatusCompleted, wantMessage: "Pagamento aprovado"},
		{name: "rejected", status: "rejected", wantStatus: entities.StatusFailed, wantMessage: "Pagamento não aprovado"},
		{name: "in-review", status: "in_process", wantStatus: entities.StatusPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := NewTestAccessApplication(t)
			th.SeedCatalog(DefaultFixtures())
			th.AcceptMessages()
			th.LinkInfoUnavailable()
			th.mintLinks()
			th.Gateway.On("CreateCardPayment", mock.Anything, mock.MatchedBy(func(req value_objects.CreatePaymentReq) bool {
				return req.CardToken == "tok-1"
			})).Return(value_objects.PaymentCreated{PaymentID: "card-1", Status: tt.status}, nil)

			req := pixRequest()
			req.CardToken = "tok-1"
			tx, err := th.AccessApplication.CreateCardPayment(ctx, req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, tx.Status)

			stored := th.Transactions.Get(tx.ID)
			assert.Equal(t, "card-1", stored.GatewayPaymentID)
			assert.Equal(t, entities.PaymentMethodCard, stored.PaymentMethod)
			assert.Equal(t, tt.status, stored.Metadata.GatewayStatus)

			sent := th.SentTo(ContactChat)
			if tt.wantMessage == "" {
				assert.Empty(t, sent)
				return
			}
			require.Len(t, sent, 1)
			assert.Contains(t, sent[0], tt.wantMessage)
		})
	}
}

func TestAccessApplication_CreateCardPayment_RequiresToken(t *testing.T) {
	th := NewTestAccessApplication(t)

	tx, err := th.AccessApplication.CreateCardPayment(context.TODO(), pixRequest())
	assert.Error(t, err)
	assert.Nil(t, tx)
	assert.Equal(t, 0, CallsTo(&th.Gateway.Mock, "CreateCardPayment"))
}

var errGatewayTimeout = errors.New("dial tcp 10.0.0.9:443: i/o timeout")

func TestAccessApplication_CreatePayment_GatewayUnreachable(t *testing.T) {
	ctx := context.TODO()

	tests := []struct {
		name   string
		method string
		create func(th *MockService) (*entities.Transaction, error)
		answer value_objects.PaymentCreated
		want   entities.EntityStatus
	}{
		{
			name:   "pix",
			method: "CreatePixPayment",
			create: func(th *MockService) (*entities.Transaction, error) {
				return th.AccessApplication.CreatePixPayment(ctx, pixRequest())
			},
			answer: value_objects.PaymentCreated{PaymentID: "pix-1", Status: "pending", PixPayload: pixCode},
			want:   entities.StatusPending,
		},
		{
			name:   "card",
			method: "CreateCardPayment",
			create: func(th *MockService) (*entities.Transaction, error) {
				req := pixRequest()
				req.CardToken = "tok-1"
				return th.AccessApplication.CreateCardPayment(ctx, req)
			},
			answer: value_objects.PaymentCreated{PaymentID: "card-1", Status: "approved"},
			want:   entities.StatusCompleted,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := NewTestAccessApplication(t)
			th.SeedCatalog(DefaultFixtures())
			th.AcceptMessages()
			th.LinkInfoUnavailable()
			th.mintLinks()
			th.Gateway.On(tt.method, mock.Anything, mock.Anything).Return(value_objects.PaymentCreated{}, errGatewayTimeout).Twice()
			th.Gateway.On(tt.method, mock.Anything, mock.Anything).Return(tt.answer, nil)

			tx, err := tt.create(th)
			assert.ErrorIs(t, err, errGatewayTimeout)
			require.NotNil(t, tx)
			assert.Equal(t, 2, CallsTo(&th.Gateway.Mock, tt.method))

			// The gateway may hold the payment: nothing is closed or sent.
			stored := th.Transactions.Get(tx.ID)
			assert.Equal(t, entities.StatusPending, stored.Status)
			assert.Empty(t, stored.Metadata.FailureReason)
			assert.Empty(t, stored.GatewayPaymentID)
			assert.Empty(t, th.SentTo(ContactChat))

			resumed, err := th.AccessApplication.ResumePayment(ctx, tx.ID, application.CreatePaymentRequest{CardToken: "tok-1"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, resumed.Status)
			assert.Equal(t, tt.answer.PaymentID, th.Transactions.Get(tx.ID).GatewayPaymentID)
			assert.Len(t, th.SentTo(ContactChat), 1)

			req := lastCall(&th.Gateway.Mock, tt.method).Arguments.Get(1).(value_objects.CreatePaymentReq)
			assert.Equal(t, tx.ID, req.IdempotencyKey)
		})
	}
}

func TestAccessApplication_ResumePayment(t *testing.T) {
	ctx := context.TODO()

	tests := []struct {
		name       string
		status     entities.EntityStatus
		paymentID  string
		req        application.CreatePaymentRequest
		wantErr    error
		wantStatus entities.EntityStatus
		wantCalls  map[string]int
	}{
		{
			name:       "already-failed",
			status:     entities.StatusFailed,
			wantErr:    errors.ErrInvalidTransition,
			wantStatus: entities.StatusFailed,
		},
		{
			name:       "payment-already-registered",
			status:     entities.StatusPending,
			paymentID:  "pay-tx-1",
			wantStatus: entities.StatusFailed,
			wantCalls:  map[string]int{"GetPayment": 1},
		},
		{
			name:       "card-without-token",
			status:     entities.StatusPending,
			wantStatus: entities.StatusPending,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := NewTestAccessApplication(t)
			th.SeedCatalog(DefaultFixtures())
			th.AcceptMessages()
			th.gatewayAnswers("pay-tx-1", "rejected")
			th.Seed(t, "tx-1", tt.status, func(tx *entities.Transaction) {
				tx.PaymentMethod = entities.PaymentMethodCard
				tx.GatewayPaymentID = tt.paymentID
			})

			tx, err := th.AccessApplication.ResumePayment(ctx, "tx-1", tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			require.NotNil(t, tx)
			assert.Equal(t, tt.wantStatus, th.Transactions.Get("tx-1").Status)
			assert.Equal(t, tt.wantCalls["GetPayment"], CallsTo(&th.Gateway.Mock, "GetPayment"))
			assert.Equal(t, 0, CallsTo(&th.Gateway.Mock, "CreateCardPayment"))
		})
	}
}
