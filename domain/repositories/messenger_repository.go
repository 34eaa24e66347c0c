package repositories

import (
	"context"
	"time"

	"access-system/domain/entities"
	"access-system/domain/value_objects"
)

type IMessenger interface {
	SendMessage(ctx context.Context, bot entities.Bot, chatID int64, text string, keyboard value_objects.Keyboard) error
	// CreateInviteLink mints a fresh link; expireAt nil means no expiry.
	CreateInviteLink(ctx context.Context, bot entities.Bot, chatID int64, username string, expireAt *time.Time) (value_objects.MintedInviteLink, error)
	GetInviteLinkInfo(ctx context.Context, bot entities.Bot, chatID int64, link string) (value_objects.InviteLinkInfo, error)
	RemoveMember(ctx context.Context, bot entities.Bot, chatID, userID int64) error
}

// ILinkRegistry remembers links the bot minted so their state can be
// checked later; the Bot API has no lookup call for a single link.
type ILinkRegistry interface {
	Save(ctx context.Context, botID string, chatID int64, link value_objects.InviteLinkInfo) error
	Find(ctx context.Context, botID string, link string) (value_objects.InviteLinkInfo, error)
	IncrementMembers(ctx context.Context, botID string, link string) (int, error)
}

type IEventPublisher interface {
	PublishStatus(ctx context.Context, event value_objects.TransactionStatusEvent) error
}
