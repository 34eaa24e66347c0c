package entities

import (
	"time"

	"access-system/domain/constants"
	"access-system/errors"
)

type ChecksumAudit struct {
	Valid         bool      `json:"valid" bson:"valid"`
	CRCValid      bool      `json:"crc_valid" bson:"crc_valid"`
	CalculatedCRC string    `json:"calculated_crc" bson:"calculated_crc"`
	FoundCRC      string    `json:"found_crc" bson:"found_crc"`
	Errors        []string  `json:"errors,omitempty" bson:"errors,omitempty"`
	CheckedAt     time.Time `json:"checked_at" bson:"checked_at"`
}

// MetadataChange is one ledger line: which key moved, from what, to what.
type MetadataChange struct {
	Key      string      `json:"key" bson:"key"`
	Previous interface{} `json:"previous,omitempty" bson:"previous,omitempty"`
	Current  interface{} `json:"current" bson:"current"`
	At       time.Time   `json:"at" bson:"at"`
}

// TransactionMetadata is the per-transaction audit ledger. Fields only move
// through Merge so that every overwrite leaves a history line behind.
type TransactionMetadata struct {
	PixCode     string         `json:"pix_code,omitempty" bson:"pix_code,omitempty"`
	PixQRImage  string         `json:"pix_qr_image,omitempty" bson:"pix_qr_image,omitempty"`
	PixChecksum *ChecksumAudit `json:"pix_checksum,omitempty" bson:"pix_checksum,omitempty"`

	GatewayPaymentRef    string     `json:"gateway_payment_ref,omitempty" bson:"gateway_payment_ref,omitempty"`
	GatewayStatus        string     `json:"gateway_status,omitempty" bson:"gateway_status,omitempty"`
	GatewayStatusDetail  string     `json:"gateway_status_detail,omitempty" bson:"gateway_status_detail,omitempty"`
	LastStatusCheck      *time.Time `json:"last_status_check,omitempty" bson:"last_status_check,omitempty"`
	PaymentNotFoundCount int        `json:"payment_not_found_count,omitempty" bson:"payment_not_found_count,omitempty"`
	FailureReason        string     `json:"failure_reason,omitempty" bson:"failure_reason,omitempty"`

	ApprovedAt      *time.Time `json:"approved_at,omitempty" bson:"approved_at,omitempty"`
	AccessExpiresAt *time.Time `json:"access_expires_at,omitempty" bson:"access_expires_at,omitempty"`

	GroupInviteLink          string     `json:"group_invite_link,omitempty" bson:"group_invite_link,omitempty"`
	GroupInviteLinkCreatedAt *time.Time `json:"group_invite_link_created_at,omitempty" bson:"group_invite_link_created_at,omitempty"`
	GroupInviteLinkExpiresAt *time.Time `json:"group_invite_link_expires_at,omitempty" bson:"group_invite_link_expires_at,omitempty"`
	GroupInviteLinkNoExpiry  bool       `json:"group_invite_link_no_expiry,omitempty" bson:"group_invite_link_no_expiry,omitempty"`
	GroupChatID              int64      `json:"group_chat_id,omitempty" bson:"group_chat_id,omitempty"`
	LinkDeliveryPending      bool       `json:"link_delivery_pending,omitempty" bson:"link_delivery_pending,omitempty"`

	PaymentApprovalNotifiedAt    *time.Time `json:"payment_approval_notified_at,omitempty" bson:"payment_approval_notified_at,omitempty"`
	PixExpirationNotified        *time.Time `json:"pix_expiration_notified,omitempty" bson:"pix_expiration_notified,omitempty"`
	ExpirationNotificationSentAt *time.Time `json:"expiration_notification_sent_at,omitempty" bson:"expiration_notification_sent_at,omitempty"`
	AccessExpiredNotifiedAt      *time.Time `json:"access_expired_notified_at,omitempty" bson:"access_expired_notified_at,omitempty"`
	FailureNotifiedAt            *time.Time `json:"failure_notified_at,omitempty" bson:"failure_notified_at,omitempty"`

	GroupRemovedAt      *time.Time `json:"group_removed_at,omitempty" bson:"group_removed_at,omitempty"`
	GroupRemovalSkipped string     `json:"group_removal_skipped,omitempty" bson:"group_removal_skipped,omitempty"`

	History []MetadataChange `json:"history,omitempty" bson:"history,omitempty"`
}

// MetadataPatch carries the fields a caller wants to set; nil leaves the
// stored value alone.
type MetadataPatch struct {
	PixCode     *string
	PixQRImage  *string
	PixChecksum *ChecksumAudit

	GatewayPaymentRef    *string
	GatewayStatus        *string
	GatewayStatusDetail  *string
	LastStatusCheck      *time.Time
	PaymentNotFoundCount *int
	FailureReason        *string

	ApprovedAt      *time.Time
	AccessExpiresAt *time.Time

	GroupInviteLink          *string
	GroupInviteLinkCreatedAt *time.Time
	GroupInviteLinkExpiresAt *time.Time
	GroupInviteLinkNoExpiry  *bool
	GroupChatID              *int64
	LinkDeliveryPending      *bool

	GroupRemovedAt      *time.Time
	GroupRemovalSkipped *string
}

// Merge applies p onto m and returns one change per field that actually
// moved. The stored pix code can never be replaced by a different value.
func (m *TransactionMetadata) Merge(p MetadataPatch, at time.Time) ([]MetadataChange, error) {
	if p.PixCode != nil && m.PixCode != "" && *p.PixCode != m.PixCode {
		return nil, errors.ErrPixCodeImmutable
	}

	var changes []MetadataChange

	mergeValue(&changes, constants.MetaPixCode, &m.PixCode, p.PixCode, at)
	mergeValue(&changes, constants.MetaPixQRImage, &m.PixQRImage, p.PixQRImage, at)
	if p.PixChecksum != nil {
		changes = append(changes, MetadataChange{Key: constants.MetaPixChecksum, Previous: m.PixChecksum, Current: *p.PixChecksum, At: at})
		audit := *p.PixChecksum
		m.PixChecksum = &audit
	}

	mergeValue(&changes, constants.MetaGatewayPaymentRef, &m.GatewayPaymentRef, p.GatewayPaymentRef, at)
	mergeValue(&changes, constants.MetaGatewayStatus, &m.GatewayStatus, p.GatewayStatus, at)
	mergeValue(&changes, constants.MetaGatewayStatusDetail, &m.GatewayStatusDetail, p.GatewayStatusDetail, at)
	mergeTime(&changes, constants.MetaLastStatusCheck, &m.LastStatusCheck, p.LastStatusCheck, at)
	mergeValue(&changes, constants.MetaPaymentNotFoundCount, &m.PaymentNotFoundCount, p.PaymentNotFoundCount, at)
	mergeValue(&changes, constants.MetaFailureReason, &m.FailureReason, p.FailureReason, at)

	mergeTime(&changes, constants.MetaApprovedAt, &m.ApprovedAt, p.ApprovedAt, at)
	mergeTime(&changes, constants.MetaAccessExpiresAt, &m.AccessExpiresAt, p.AccessExpiresAt, at)

	mergeValue(&changes, constants.MetaGroupInviteLink, &m.GroupInviteLink, p.GroupInviteLink, at)
	mergeTime(&changes, constants.MetaGroupInviteLinkCreatedAt, &m.GroupInviteLinkCreatedAt, p.GroupInviteLinkCreatedAt, at)
	mergeTime(&changes, constants.MetaGroupInviteLinkExpiresAt, &m.GroupInviteLinkExpiresAt, p.GroupInviteLinkExpiresAt, at)
	mergeValue(&changes, constants.MetaGroupInviteLinkNoExpiry, &m.GroupInviteLinkNoExpiry, p.GroupInviteLinkNoExpiry, at)
	mergeValue(&changes, constants.MetaGroupChatID, &m.GroupChatID, p.GroupChatID, at)
	mergeValue(&changes, constants.MetaLinkDeliveryPending, &m.LinkDeliveryPending, p.LinkDeliveryPending, at)

	mergeTime(&changes, constants.MetaGroupRemovedAt, &m.GroupRemovedAt, p.GroupRemovedAt, at)
	mergeValue(&changes, constants.MetaGroupRemovalSkipped, &m.GroupRemovalSkipped, p.GroupRemovalSkipped, at)

	m.History = append(m.History, changes...)
	return changes, nil
}

func (p MetadataPatch) IsEmpty() bool {
	return p == (MetadataPatch{})
}

func mergeValue[T comparable](changes *[]MetadataChange, key string, dst *T, src *T, at time.Time) {
	if src == nil || *dst == *src {
		return
	}
	*changes = append(*changes, MetadataChange{Key: key, Previous: *dst, Current: *src, At: at})
	*dst = *src
}

func mergeTime(changes *[]MetadataChange, key string, dst **time.Time, src *time.Time, at time.Time) {
	if src == nil {
		return
	}
	var previous interface{}
	if *dst != nil {
		if (*dst).Equal(*src) {
			return
		}
		previous = **dst
	}
	*changes = append(*changes, MetadataChange{Key: key, Previous: previous, Current: *src, At: at})
	v := *src
	*dst = &v
}

// NotificationTime returns the dedup timestamp stored under key, if any.
func (m *TransactionMetadata) NotificationTime(key string) *time.Time {
	if p := m.notificationField(key); p != nil {
		return *p
	}
	return nil
}

// SetNotificationTime overwrites the dedup timestamp stored under key. It
// reports false for keys that are not notification timestamps.
func (m *TransactionMetadata) SetNotificationTime(key string, at *time.Time) bool {
	p := m.notificationField(key)
	if p == nil {
		return false
	}
	if at == nil {
		*p = nil
		return true
	}
	v := *at
	*p = &v
	return true
}

func (m *TransactionMetadata) notificationField(key string) **time.Time {
	switch key {
	case constants.MetaPaymentApprovalNotifiedAt:
		return &m.PaymentApprovalNotifiedAt
	case constants.MetaPixExpirationNotified:
		return &m.PixExpirationNotified
	case constants.MetaExpirationNotificationSentAt:
		return &m.ExpirationNotificationSentAt
	case constants.MetaAccessExpiredNotifiedAt:
		return &m.AccessExpiredNotifiedAt
	case constants.MetaFailureNotifiedAt:
		return &m.FailureNotifiedAt
	}
	return nil
}

// IsNotificationKey reports whether key names a claimable timestamp.
func IsNotificationKey(key string) bool {
	var m TransactionMetadata
	return m.notificationField(key) != nil
}
