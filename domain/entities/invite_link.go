package entities

import "time"

type InviteLinkSource string

const (
	InviteLinkStored InviteLinkSource = "stored"
	InviteLinkMinted InviteLinkSource = "minted"
	InviteLinkHandle InviteLinkSource = "handle"
)

// InviteLink lives inside a transaction's metadata; its validity window is
// the owning transaction's paid cycle.
type InviteLink struct {
	Link      string           `json:"link"`
	ChatID    int64            `json:"chat_id"`
	CreatedAt time.Time        `json:"created_at"`
	ExpiresAt *time.Time       `json:"expires_at,omitempty"`
	NoExpiry  bool             `json:"no_expiry"`
	Source    InviteLinkSource `json:"source"`
}

// ExpiredAt reports whether the recorded expiry has passed at now.
func (l InviteLink) ExpiredAt(now time.Time) bool {
	return l.ExpiresAt != nil && !now.Before(*l.ExpiresAt)
}

// StoredInviteLink rebuilds the link value kept in the metadata, if any.
func (m *TransactionMetadata) StoredInviteLink() (InviteLink, bool) {
	if m.GroupInviteLink == "" {
		return InviteLink{}, false
	}
	l := InviteLink{
		Link:      m.GroupInviteLink,
		ChatID:    m.GroupChatID,
		ExpiresAt: m.GroupInviteLinkExpiresAt,
		NoExpiry:  m.GroupInviteLinkNoExpiry,
		Source:    InviteLinkStored,
	}
	if m.GroupInviteLinkCreatedAt != nil {
		l.CreatedAt = *m.GroupInviteLinkCreatedAt
	}
	return l, true
}
