package repositories

import (
	"context"
	"time"

	"access-system/domain/entities"
)

type TransactionRepository interface {
	Create(ctx context.Context, tx *entities.Transaction) (*entities.Transaction, error)
	FindByID(ctx context.Context, id string) (*entities.Transaction, error)
	FindByGatewayPaymentID(ctx context.Context, gateway, paymentID string) (*entities.Transaction, error)

	FindPending(ctx context.Context, limit int64) ([]*entities.Transaction, error)
	FindPendingPixBefore(ctx context.Context, before time.Time, limit int64) ([]*entities.Transaction, error)
	FindAccessExpiredBefore(ctx context.Context, now time.Time, limit int64) ([]*entities.Transaction, error)
	FindAccessExpiringBetween(ctx context.Context, from, to time.Time, limit int64) ([]*entities.Transaction, error)
	FindExpiredWithOpenFollowUp(ctx context.Context, limit int64) ([]*entities.Transaction, error)
	// FindCompletedWithoutExpiry returns completed transactions bound to a
	// cycle that never recorded when their access ends.
	FindCompletedWithoutExpiry(ctx context.Context, limit int64) ([]*entities.Transaction, error)

	// MergeMetadata applies the patch in one read-modify-write and appends
	// the resulting changes to the ledger history. A gateway_payment_ref in
	// the patch is mirrored onto the transaction's GatewayPaymentID.
	MergeMetadata(ctx context.Context, id string, patch entities.MetadataPatch, at time.Time) (*entities.Transaction, []entities.MetadataChange, error)
	// UpdateStatus moves the transaction from -> to only if it is still in
	// from; otherwise errors.ErrStatusConflict.
	UpdateStatus(ctx context.Context, id string, from, to entities.EntityStatus, patch entities.MetadataPatch, at time.Time) (*entities.Transaction, error)
	// ClaimNotification atomically sets the timestamp key to at when it is
	// unset or older than minAge. minAge <= 0 means the key may only be
	// claimed once.
	ClaimNotification(ctx context.Context, id, key string, at time.Time, minAge time.Duration) (claimed bool, previous *time.Time, err error)
	// ReleaseNotification restores a claimed key after a failed delivery.
	ReleaseNotification(ctx context.Context, id, key string, previous *time.Time) error
	IncrementNotFound(ctx context.Context, id string, at time.Time) (int, error)
}

type ICatalog interface {
	FindBot(ctx context.Context, id string) (*entities.Bot, error)
	FindContact(ctx context.Context, id string) (*entities.Contact, error)
	FindPlan(ctx context.Context, id string) (*entities.Plan, error)
	FindCycle(ctx context.Context, id string) (*entities.Cycle, error)
	FindGroup(ctx context.Context, id string) (*entities.Group, error)
	FindActiveGroupByBot(ctx context.Context, botID string) (*entities.Group, error)
	FindAnyGroupByBot(ctx context.Context, botID string) (*entities.Group, error)
}
