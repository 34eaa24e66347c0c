package test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"access-system/domain/constants"
	"access-system/domain/entities"
	"access-system/domain/value_objects"
	"access-system/errors"
)

const mintedLink = "https://t.me/+minted"

func (th *MockService) mintLinks() {
	th.Messenger.On("CreateInviteLink", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(func(_ context.Context, _ entities.Bot, _ int64, _ string, expireAt *time.Time) value_objects.MintedInviteLink {
			return value_objects.MintedInviteLink{Link: mintedLink, ExpireAt: expireAt}
		}, nil)
}

func (th *MockService) gatewayAnswers(paymentID, status string) {
	th.Gateway.On("GetPayment", mock.Anything, paymentID).
		Return(value_objects.PaymentStatus{PaymentID: paymentID, Status: status}, nil)
}

func TestAccessApplication_ApprovalIsNotifiedOncePerWindow(t *testing.T) {
	ctx := context.TODO()
	th := NewTestAccessApplication(t)
	th.SeedCatalog(DefaultFixtures())
	th.AcceptMessages()
	th.LinkInfoUnavailable()
	th.mintLinks()
	th.gatewayAnswers("pay-tx-1", "approved")
	th.Seed(t, "tx-1", entities.StatusPending, nil)

	th.Clock.Advance(time.Minute)
	require.NoError(t, th.AccessApplication.HandleGatewayWebhook(ctx, constants.GatewayMercadoPago, "pay-tx-1"))

	tx := th.Transactions.Get("tx-1")
	assert.Equal(t, entities.StatusCompleted, tx.Status)
	require.NotNil(t, tx.Metadata.AccessExpiresAt)
	assert.Equal(t, T0.AddDate(0, 0, 30), *tx.Metadata.AccessExpiresAt)
	assert.Equal(t, mintedLink, tx.Metadata.GroupInviteLink)
	assert.Equal(t, GroupChat, tx.Metadata.GroupChatID)
	assert.Len(t, th.SentTo(ContactChat), 1)

	tests := []struct {
		name      string
		advance   time.Duration
		wantSent  int
		wantMints int
	}{
		{name: "replay-inside-window", advance: 30 * time.Second, wantSent: 1, wantMints: 1},
		{name: "replay-after-window", advance: 3 * time.Minute, wantSent: 2, wantMints: 1},
		{name: "replay-right-after-renotify", advance: time.Second, wantSent: 2, wantMints: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th.Clock.Advance(tt.advance)
			require.NoError(t, th.AccessApplication.HandleGatewayWebhook(ctx, constants.GatewayMercadoPago, "pay-tx-1"))

			sent := th.SentTo(ContactChat)
			assert.Len(t, sent, tt.wantSent)
			for _, text := range sent {
				assert.Contains(t, text, "Pagamento aprovado")
				assert.Contains(t, text, mintedLink)
			}
			assert.Equal(t, tt.wantMints, CallsTo(&th.Messenger.Mock, "CreateInviteLink"))
			assert.Equal(t, entities.StatusCompleted, th.Transactions.Get("tx-1").Status)
		})
	}
}

func TestAccessApplication_ApplyGatewayStatus(t *testing.T) {
	ctx := context.TODO()

	tests := []struct {
		name        string
		status      entities.EntityStatus
		mutate      func(tx *entities.Transaction)
		raw         string
		wantStatus  entities.EntityStatus
		wantReason  string
		wantMessage string
	}{
		{
			name:        "rejected-fails-pending",
			status:      entities.StatusPending,
			raw:         "rejected",
			wantStatus:  entities.StatusFailed,
			wantReason:  constants.FailureReasonGatewayRejected,
			wantMessage: "Pagamento não aprovado",
		},
		{
			name:        "cancelled-fails-pending",
			status:      entities.StatusPending,
			raw:         "cancelled",
			wantStatus:  entities.StatusFailed,
			wantReason:  constants.FailureReasonGatewayRejected,
			wantMessage: "Pagamento não aprovado",
		},
		{
			name:       "refunded-pending",
			status:     entities.StatusPending,
			raw:        "refunded",
			wantStatus: entities.StatusRefunded,
		},
		{
			name:       "in-process-stays-pending",
			status:     entities.StatusPending,
			raw:        "in_process",
			wantStatus: entities.StatusPending,
		},
		{
			name:       "rejected-cannot-leave-completed",
			status:     entities.StatusCompleted,
			mutate:     Approved,
			raw:        "rejected",
			wantStatus: entities.StatusCompleted,
		},
		{
			name:       "charged-back-cannot-leave-completed",
			status:     entities.StatusCompleted,
			mutate:     Approved,
			raw:        "charged_back",
			wantStatus: entities.StatusCompleted,
		},
		{
			name:       "approved-cannot-revive-failed",
			status:     entities.StatusFailed,
			raw:        "approved",
			wantStatus: entities.StatusFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := NewTestAccessApplication(t)
			th.SeedCatalog(DefaultFixtures())
			th.AcceptMessages()
			tx := th.Seed(t, "tx-1", tt.status, tt.mutate)

			updated, err := th.AccessApplication.ApplyGatewayStatus(ctx, tx, tt.raw, "detail")
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, updated.Status)

			stored := th.Transactions.Get("tx-1")
			assert.Equal(t, tt.wantStatus, stored.Status)
			assert.Equal(t, tt.raw, stored.Metadata.GatewayStatus)
			assert.Equal(t, "detail", stored.Metadata.GatewayStatusDetail)
			assert.Equal(t, tt.wantReason, stored.Metadata.FailureReason)

			sent := th.SentTo(ContactChat)
			if tt.wantMessage == "" {
				assert.Empty(t, sent)
				return
			}
			require.Len(t, sent, 1)
			assert.Contains(t, sent[0], tt.wantMessage)

			// A replay never repeats the failure notice.
			_, err = th.AccessApplication.ApplyGatewayStatus(ctx, stored, tt.raw, "detail")
			require.NoError(t, err)
			assert.Len(t, th.SentTo(ContactChat), 1)
		})
	}
}

func TestAccessApplication_ApprovalWithoutInviteLink(t *testing.T) {
	ctx := context.TODO()
	th := NewTestAccessApplication(t)
	f := DefaultFixtures()
	f.Plan.GroupID = ""
	f.Group = entities.Group{}
	th.SeedCatalog(f)
	th.AcceptMessages()
	tx := th.Seed(t, "tx-1", entities.StatusPending, nil)

	updated, err := th.AccessApplication.ApplyGatewayStatus(ctx, tx, "approved", "accredited")
	require.NoError(t, err)
	assert.Equal(t, entities.StatusCompleted, updated.Status)

	stored := th.Transactions.Get("tx-1")
	assert.True(t, stored.Metadata.LinkDeliveryPending)
	assert.Empty(t, stored.Metadata.GroupInviteLink)
	assert.NotNil(t, stored.Metadata.PaymentApprovalNotifiedAt)

	sent := th.SentTo(ContactChat)
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0], "Pagamento aprovado")
	assert.Contains(t, sent[0], constants.MsgLinkDeferred)

	alerts := th.SentTo(OpsChat)
	require.Len(t, alerts, 1)
	assert.Contains(t, alerts[0], "tx-1")
	assert.Equal(t, 0, CallsTo(&th.Messenger.Mock, "CreateInviteLink"))
}

func TestAccessApplication_ApprovalSurvivesOpsAlertFailure(t *testing.T) {
	ctx := context.TODO()
	th := NewTestAccessApplication(t)
	f := DefaultFixtures()
	f.Plan.GroupID = ""
	f.Group = entities.Group{}
	th.SeedCatalog(f)
	th.Messenger.On("SendMessage", mock.Anything, mock.Anything, OpsChat, mock.Anything, mock.Anything).
		Return(errors.ErrInsufficientRights)
	th.AcceptMessages()
	tx := th.Seed(t, "tx-1", entities.StatusPending, nil)

	updated, err := th.AccessApplication.ApplyGatewayStatus(ctx, tx, "approved", "accredited")
	require.NoError(t, err)
	assert.Equal(t, entities.StatusCompleted, updated.Status)

	assert.NotEmpty(t, th.SentTo(OpsChat))
	assert.True(t, th.Warned("alert_operators_err"))

	sent := th.SentTo(ContactChat)
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0], constants.MsgLinkDeferred)
	assert.NotNil(t, th.Transactions.Get("tx-1").Metadata.PaymentApprovalNotifiedAt)
}

func TestAccessApplication_ApprovalMessageFailureReleasesClaim(t *testing.T) {
	ctx := context.TODO()
	th := NewTestAccessApplication(t)
	th.SeedCatalog(DefaultFixtures())
	th.LinkInfoUnavailable()
	th.mintLinks()
	th.Messenger.On("SendMessage", mock.Anything, mock.Anything, ContactChat, mock.Anything, mock.Anything).
		Return(errors.ErrInsufficientRights).Once()
	th.AcceptMessages()
	tx := th.Seed(t, "tx-1", entities.StatusPending, nil)

	updated, err := th.AccessApplication.ApplyGatewayStatus(ctx, tx, "approved", "")
	require.NoError(t, err)
	assert.Nil(t, th.Transactions.Get("tx-1").Metadata.PaymentApprovalNotifiedAt)

	// The released claim lets the very next replay deliver.
	_, err = th.AccessApplication.ApplyGatewayStatus(ctx, updated, "approved", "")
	require.NoError(t, err)
	assert.Len(t, th.SentTo(ContactChat), 2)
	assert.NotNil(t, th.Transactions.Get("tx-1").Metadata.PaymentApprovalNotifiedAt)
	assert.Equal(t, 1, CallsTo(&th.Messenger.Mock, "CreateInviteLink"))
}

func TestAccessApplication_PaymentNotFoundThreshold(t *testing.T) {
	ctx := context.TODO()
	th := NewTestAccessApplication(t)
	th.SeedCatalog(DefaultFixtures())
	th.AcceptMessages()
	th.Gateway.On("GetPayment", mock.Anything, "pay-tx-1").Return(value_objects.PaymentStatus{}, errors.ErrPaymentNotFound)
	th.Seed(t, "tx-1", entities.StatusPending, nil)

	tests := []struct {
		name       string
		wantCount  int
		wantStatus entities.EntityStatus
		wantSent   int
	}{
		{name: "first-miss", wantCount: 1, wantStatus: entities.StatusPending, wantSent: 0},
		{name: "second-miss", wantCount: 2, wantStatus: entities.StatusPending, wantSent: 0},
		{name: "third-miss-fails", wantCount: 3, wantStatus: entities.StatusFailed, wantSent: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th.Clock.Advance(time.Minute)
			require.NoError(t, th.AccessApplication.HandleGatewayWebhook(ctx, constants.GatewayMercadoPago, "pay-tx-1"))

			stored := th.Transactions.Get("tx-1")
			assert.Equal(t, tt.wantCount, stored.Metadata.PaymentNotFoundCount)
			assert.Equal(t, tt.wantStatus, stored.Status)
			assert.Len(t, th.SentTo(ContactChat), tt.wantSent)
		})
	}

	stored := th.Transactions.Get("tx-1")
	assert.Equal(t, constants.FailureReasonPaymentNotFound, stored.Metadata.FailureReason)
	assert.Contains(t, th.SentTo(ContactChat)[0], "Pagamento não aprovado")
	// A not-found answer is final; the lookup is never retried.
	assert.Equal(t, 3, CallsTo(&th.Gateway.Mock, "GetPayment"))
}

func TestAccessApplication_HandleGatewayWebhook(t *testing.T) {
	ctx := context.TODO()

	tests := []struct {
		name      string
		gateway   string
		paymentID string
		wantErr   error
	}{
		{name: "unknown-gateway", gateway: "paypal", paymentID: "pay-tx-1", wantErr: errors.ErrUnknownGateway},
		{name: "unknown-payment", gateway: constants.GatewayMercadoPago, paymentID: "pay-missing", wantErr: errors.ErrTransactionNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := NewTestAccessApplication(t)
			th.SeedCatalog(DefaultFixtures())
			th.Seed(t, "tx-1", entities.StatusPending, nil)

			err := th.AccessApplication.HandleGatewayWebhook(ctx, tt.gateway, tt.paymentID)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 0, CallsTo(&th.Gateway.Mock, "GetPayment"))
			assert.Equal(t, entities.StatusPending, th.Transactions.Get("tx-1").Status)
		})
	}
}

func TestAccessApplication_PollPendingPayments(t *testing.T) {
	ctx := context.TODO()
	th := NewTestAccessApplication(t)
	th.SeedCatalog(DefaultFixtures())
	th.AcceptMessages()
	th.LinkInfoUnavailable()
	th.mintLinks()
	th.gatewayAnswers("pay-tx-1", "approved")
	th.gatewayAnswers("pay-tx-2", "pending")
	th.Gateway.On("GetPayment", mock.Anything, "pay-tx-3").Return(value_objects.PaymentStatus{}, errors.New("gateway unavailable"))
	th.Seed(t, "tx-1", entities.StatusPending, nil)
	th.Seed(t, "tx-2", entities.StatusPending, nil)
	th.Seed(t, "tx-3", entities.StatusPending, nil)
	th.Seed(t, "tx-4", entities.StatusPending, func(tx *entities.Transaction) { tx.GatewayPaymentID = "" })

	report := th.AccessApplication.PollPendingPayments(ctx)

	assert.Equal(t, value_objects.SweepReport{Job: "poll_pending", Scanned: 3, Processed: 1, Skipped: 1, Failed: 1}, report)
	assert.Equal(t, entities.StatusCompleted, th.Transactions.Get("tx-1").Status)
	assert.Equal(t, entities.StatusPending, th.Transactions.Get("tx-2").Status)
	assert.Equal(t, "pending", th.Transactions.Get("tx-2").Metadata.GatewayStatus)
	assert.Equal(t, entities.StatusPending, th.Transactions.Get("tx-3").Status)
	assert.Len(t, th.SentTo(ContactChat), 1)
}
