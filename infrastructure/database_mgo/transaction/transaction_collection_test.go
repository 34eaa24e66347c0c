package transaction_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"access-system/domain/constants"
	"access-system/domain/entities"
	"access-system/errors"
	"access-system/infrastructure/database_mgo"
	"access-system/infrastructure/database_mgo/transaction"
	"access-system/utils/configs"
	"access-system/utils/helpers"
)

// newCollection needs a reachable MongoDB in ACCESS_TEST_MONGO_URI; each run
// works in its own database.
func newCollection(t *testing.T) *transaction.TransactionCollection {
	uri := os.Getenv("ACCESS_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("ACCESS_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	client, err := database_mgo.NewMongoDBconnection(ctx, uri)
	require.NoError(t, err)

	conf := &configs.Config{Prefix: "T", MongoDatabase: "access_test_" + helpers.GetUUId()[:8]}
	t.Cleanup(func() {
		_ = client.Database(conf.MongoDatabase).Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	c, err := transaction.NewTransactionCollectionImpl(ctx, client, conf)
	require.NoError(t, err)
	return c
}

func seed(t *testing.T, c *transaction.TransactionCollection, status entities.EntityStatus) *entities.Transaction {
	now := time.Now().UTC().Truncate(time.Millisecond)
	tx, err := c.Create(context.Background(), &entities.Transaction{
		Gateway:          constants.GatewayMercadoPago,
		GatewayPaymentID: helpers.GetUUId(),
		Amount:           4990,
		Currency:         constants.CurrencyBRL,
		PaymentMethod:    entities.PaymentMethodPix,
		Status:           status,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	require.NoError(t, err)
	return tx
}

func TestTransactionCollection_CreateAndFind(t *testing.T) {
	c := newCollection(t)
	ctx := context.Background()

	tx := seed(t, c, entities.StatusPending)
	assert.Regexp(t, `^TACC\d{8}\d{8}$`, tx.ID)

	got, err := c.FindByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, tx.GatewayPaymentID, got.GatewayPaymentID)

	got, err = c.FindByGatewayPaymentID(ctx, constants.GatewayMercadoPago, tx.GatewayPaymentID)
	require.NoError(t, err)
	assert.Equal(t, tx.ID, got.ID)

	_, err = c.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, errors.ErrTransactionNotFound)
}

func TestTransactionCollection_UpdateStatusIsGuarded(t *testing.T) {
	c := newCollection(t)
	ctx := context.Background()
	tx := seed(t, c, entities.StatusPending)
	now := time.Now().UTC()
	approved := now

	updated, err := c.UpdateStatus(ctx, tx.ID, entities.StatusPending, entities.StatusCompleted, entities.MetadataPatch{ApprovedAt: &approved}, now)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusCompleted, updated.Status)

	_, err = c.UpdateStatus(ctx, tx.ID, entities.StatusPending, entities.StatusFailed, entities.MetadataPatch{}, now)
	assert.ErrorIs(t, err, errors.ErrStatusConflict)

	_, err = c.UpdateStatus(ctx, tx.ID, entities.StatusCompleted, entities.StatusPending, entities.MetadataPatch{}, now)
	assert.ErrorIs(t, err, errors.ErrInvalidTransition)

	stored, err := c.FindByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusCompleted, stored.Status)
	require.NotNil(t, stored.Metadata.ApprovedAt)
	assert.Len(t, stored.Metadata.History, 2)
}

func TestTransactionCollection_ClaimNotification(t *testing.T) {
	c := newCollection(t)
	ctx := context.Background()
	tx := seed(t, c, entities.StatusCompleted)
	t0 := time.Now().UTC().Truncate(time.Millisecond)
	key := constants.MetaPaymentApprovalNotifiedAt

	claimed, prev, err := c.ClaimNotification(ctx, tx.ID, key, t0, 2*time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed)
	assert.Nil(t, prev)

	claimed, _, err = c.ClaimNotification(ctx, tx.ID, key, t0.Add(30*time.Second), 2*time.Minute)
	require.NoError(t, err)
	assert.False(t, claimed)

	claimed, prev, err = c.ClaimNotification(ctx, tx.ID, key, t0.Add(3*time.Minute), 2*time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed)
	require.NotNil(t, prev)
	assert.True(t, prev.Equal(t0))

	require.NoError(t, c.ReleaseNotification(ctx, tx.ID, key, prev))
	stored, err := c.FindByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.True(t, stored.Metadata.PaymentApprovalNotifiedAt.Equal(t0))
}

func TestTransactionCollection_MergeMetadataKeepsPixCode(t *testing.T) {
	c := newCollection(t)
	ctx := context.Background()
	tx := seed(t, c, entities.StatusPending)
	code := "000201-first"
	other := "000201-second"

	_, changes, err := c.MergeMetadata(ctx, tx.ID, entities.MetadataPatch{PixCode: &code}, time.Now())
	require.NoError(t, err)
	assert.Len(t, changes, 1)

	_, _, err = c.MergeMetadata(ctx, tx.ID, entities.MetadataPatch{PixCode: &other}, time.Now())
	assert.ErrorIs(t, err, errors.ErrPixCodeImmutable)

	count, err := c.IncrementNotFound(ctx, tx.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
