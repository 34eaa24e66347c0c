package value_objects

import "time"

type InviteLinkInfo struct {
	Link        string     `json:"link"`
	ExpireAt    *time.Time `json:"expire_at,omitempty"`
	MemberCount int        `json:"member_count"`
	MemberLimit int        `json:"member_limit"`
	Revoked     bool       `json:"revoked"`
}

// UsableAt reports whether a user could still join through the link.
func (i InviteLinkInfo) UsableAt(now time.Time) bool {
	if i.Revoked {
		return false
	}
	if i.ExpireAt != nil && !now.Before(*i.ExpireAt) {
		return false
	}
	if i.MemberLimit > 0 && i.MemberCount >= i.MemberLimit {
		return false
	}
	return true
}

type MintedInviteLink struct {
	Link        string     `json:"link"`
	ExpireAt    *time.Time `json:"expire_at,omitempty"`
	MemberLimit int        `json:"member_limit"`
}

type KeyboardButton struct {
	Text string
	URL  string
}

// Keyboard is an inline keyboard, one row per slice.
type Keyboard [][]KeyboardButton
