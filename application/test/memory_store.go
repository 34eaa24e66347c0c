package test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"access-system/domain/constants"
	"access-system/domain/entities"
	"access-system/errors"
	"access-system/utils/helpers"
)

// MemoryTransactions is a TransactionRepository kept in process memory with
// the same guards as the Mongo collection.
type MemoryTransactions struct {
	mu   sync.Mutex
	rows map[string]*entities.Transaction
}

func NewMemoryTransactions() *MemoryTransactions {
	return &MemoryTransactions{rows: make(map[string]*entities.Transaction)}
}

func clone(tx *entities.Transaction) *entities.Transaction {
	c := *tx
	c.Metadata.History = append([]entities.MetadataChange(nil), tx.Metadata.History...)
	return &c
}

// Get returns a copy of the stored row, or nil.
func (m *MemoryTransactions) Get(id string) *entities.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	if row, ok := m.rows[id]; ok {
		return clone(row)
	}
	return nil
}

func (m *MemoryTransactions) Create(ctx context.Context, tx *entities.Transaction) (*entities.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tx.ID == "" {
		tx.ID = helpers.GetUUId()
	}
	if _, ok := m.rows[tx.ID]; ok {
		return nil, fmt.Errorf("duplicate transaction %s", tx.ID)
	}
	m.rows[tx.ID] = clone(tx)
	return clone(tx), nil
}

func (m *MemoryTransactions) FindByID(ctx context.Context, id string) (*entities.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, errors.ErrTransactionNotFound
	}
	return clone(row), nil
}

func (m *MemoryTransactions) FindByGatewayPaymentID(ctx context.Context, gateway, paymentID string) (*entities.Transaction, error) {
	found := m.find(0, func(tx *entities.Transaction) bool {
		return tx.Gateway == gateway && tx.GatewayPaymentID == paymentID
	})
	if len(found) == 0 {
		return nil, errors.ErrTransactionNotFound
	}
	return found[0], nil
}

func (m *MemoryTransactions) find(limit int64, match func(tx *entities.Transaction) bool) []*entities.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []*entities.Transaction
	for _, row := range m.rows {
		if match(row) {
			res = append(res, clone(row))
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	if limit > 0 && int64(len(res)) > limit {
		res = res[:limit]
	}
	return res
}

func (m *MemoryTransactions) FindPending(ctx context.Context, limit int64) ([]*entities.Transaction, error) {
	return m.find(limit, func(tx *entities.Transaction) bool {
		return tx.Status.IsPending() && tx.GatewayPaymentID != ""
	}), nil
}

func (m *MemoryTransactions) FindPendingPixBefore(ctx context.Context, before time.Time, limit int64) ([]*entities.Transaction, error) {
	return m.find(limit, func(tx *entities.Transaction) bool {
		return tx.Status.IsPending() && tx.IsPix() && !tx.CreatedAt.After(before)
	}), nil
}

func (m *MemoryTransactions) FindAccessExpiredBefore(ctx context.Context, now time.Time, limit int64) ([]*entities.Transaction, error) {
	return m.find(limit, func(tx *entities.Transaction) bool {
		at := tx.Metadata.AccessExpiresAt
		return tx.Status.IsCompleted() && at != nil && !at.After(now)
	}), nil
}

func (m *MemoryTransactions) FindAccessExpiringBetween(ctx context.Context, from, to time.Time, limit int64) ([]*entities.Transaction, error) {
	return m.find(limit, func(tx *entities.Transaction) bool {
		at := tx.Metadata.AccessExpiresAt
		return tx.Status.IsCompleted() && at != nil && at.After(from) && !at.After(to)
	}), nil
}

func (m *MemoryTransactions) FindExpiredWithOpenFollowUp(ctx context.Context, limit int64) ([]*entities.Transaction, error) {
	return m.find(limit, func(tx *entities.Transaction) bool {
		meta := tx.Metadata
		removalOpen := meta.GroupRemovedAt == nil && meta.GroupRemovalSkipped == ""
		return tx.Status.IsExpired() && tx.WasApproved() && (removalOpen || meta.AccessExpiredNotifiedAt == nil)
	}), nil
}

func (m *MemoryTransactions) FindCompletedWithoutExpiry(ctx context.Context, limit int64) ([]*entities.Transaction, error) {
	return m.find(limit, func(tx *entities.Transaction) bool {
		return tx.Status.IsCompleted() && tx.CycleID != "" && tx.Metadata.AccessExpiresAt == nil
	}), nil
}

func mirrorPaymentID(row *entities.Transaction, patch entities.MetadataPatch) {
	if patch.GatewayPaymentRef != nil && *patch.GatewayPaymentRef != "" {
		row.GatewayPaymentID = *patch.GatewayPaymentRef
	}
}

func (m *MemoryTransactions) MergeMetadata(ctx context.Context, id string, patch entities.MetadataPatch, at time.Time) (*entities.Transaction, []entities.MetadataChange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, nil, errors.ErrTransactionNotFound
	}
	changes, err := row.Metadata.Merge(patch, at)
	if err != nil {
		return nil, nil, err
	}
	if len(changes) > 0 {
		mirrorPaymentID(row, patch)
		row.UpdatedAt = at
	}
	return clone(row), changes, nil
}

func (m *MemoryTransactions) UpdateStatus(ctx context.Context, id string, from, to entities.EntityStatus, patch entities.MetadataPatch, at time.Time) (*entities.Transaction, error) {
	if !from.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: %s -> %s", errors.ErrInvalidTransition, from, to)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, errors.ErrTransactionNotFound
	}
	if row.Status != from {
		return nil, errors.ErrStatusConflict
	}
	if _, err := row.Metadata.Merge(patch, at); err != nil {
		return nil, err
	}
	row.Metadata.History = append(row.Metadata.History, entities.MetadataChange{Key: constants.MetaStatus, Previous: from, Current: to, At: at})
	mirrorPaymentID(row, patch)
	row.Status = to
	row.UpdatedAt = at
	return clone(row), nil
}

func (m *MemoryTransactions) ClaimNotification(ctx context.Context, id, key string, at time.Time, minAge time.Duration) (bool, *time.Time, error) {
	if !entities.IsNotificationKey(key) {
		return false, nil, fmt.Errorf("not a notification key: %s", key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return false, nil, errors.ErrTransactionNotFound
	}
	previous := row.Metadata.NotificationTime(key)
	if previous != nil && (minAge <= 0 || previous.After(at.Add(-minAge))) {
		return false, nil, nil
	}
	row.Metadata.SetNotificationTime(key, &at)
	row.UpdatedAt = at
	return true, previous, nil
}

func (m *MemoryTransactions) ReleaseNotification(ctx context.Context, id, key string, previous *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return errors.ErrTransactionNotFound
	}
	if !row.Metadata.SetNotificationTime(key, previous) {
		return fmt.Errorf("not a notification key: %s", key)
	}
	return nil
}

func (m *MemoryTransactions) IncrementNotFound(ctx context.Context, id string, at time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return 0, errors.ErrTransactionNotFound
	}
	row.Metadata.PaymentNotFoundCount++
	row.Metadata.LastStatusCheck = &at
	row.UpdatedAt = at
	return row.Metadata.PaymentNotFoundCount, nil
}
