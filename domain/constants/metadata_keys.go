package constants

// Persisted keys of the transaction metadata ledger.
const (
	MetaPixCode                      = "pix_code"
	MetaPixQRImage                   = "pix_qr_image"
	MetaPixChecksum                  = "pix_checksum"
	MetaGatewayPaymentRef            = "gateway_payment_ref"
	MetaGatewayStatus                = "gateway_status"
	MetaGatewayStatusDetail          = "gateway_status_detail"
	MetaLastStatusCheck              = "last_status_check"
	MetaPaymentNotFoundCount         = "payment_not_found_count"
	MetaFailureReason                = "failure_reason"
	MetaApprovedAt                   = "approved_at"
	MetaAccessExpiresAt              = "access_expires_at"
	MetaGroupInviteLink              = "group_invite_link"
	MetaGroupInviteLinkCreatedAt     = "group_invite_link_created_at"
	MetaGroupInviteLinkExpiresAt     = "group_invite_link_expires_at"
	MetaGroupInviteLinkNoExpiry      = "group_invite_link_no_expiry"
	MetaGroupChatID                  = "group_chat_id"
	MetaLinkDeliveryPending          = "link_delivery_pending"
	MetaPaymentApprovalNotifiedAt    = "payment_approval_notified_at"
	MetaPixExpirationNotified        = "pix_expiration_notified"
	MetaExpirationNotificationSentAt = "expiration_notification_sent_at"
	MetaAccessExpiredNotifiedAt      = "access_expired_notified_at"
	MetaFailureNotifiedAt            = "failure_notified_at"
	MetaGroupRemovedAt               = "group_removed_at"
	MetaGroupRemovalSkipped          = "group_removal_skipped"
	MetaHistory                      = "history"
	MetaStatus                       = "status"
)

const (
	FailureReasonInvalidPixPayload = "invalid_pix_payload"
	FailureReasonPaymentNotFound   = "payment_not_found"
	FailureReasonGatewayRejected   = "gateway_rejected"
	FailureReasonGatewayError      = "gateway_error"

	RemovalSkippedNoRights  = "insufficient_rights"
	RemovalSkippedNoContact = "no_contact_chat"
	RemovalSkippedNoGroup   = "no_group_chat"
)
