package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"access-system/domain/entities"
	"access-system/errors"
	"access-system/utils/retry"
)

const handleLinkBase = "https://t.me/"

type InviteLinkResult struct {
	Link entities.InviteLink
	// Persisted is false when the link could not be written back to the
	// transaction; the link itself is still usable.
	Persisted bool
}

// groupTarget is the chat a link is minted for. Username is set for groups
// that also have a public handle.
type groupTarget struct {
	GroupID  string
	ChatID   int64
	Username string
}

// ResolveInviteLink returns a link into the transaction's group whose
// validity ends with the paid cycle. Concurrent calls for one transaction
// share a single resolution.
func (us *AccessApplication) ResolveInviteLink(ctx context.Context, tx *entities.Transaction) (InviteLinkResult, error) {
	v, err, _ := us.links.Do(tx.ID, func() (interface{}, error) {
		return us.resolveInviteLink(ctx, tx)
	})
	if err != nil {
		return InviteLinkResult{}, err
	}
	return v.(InviteLinkResult), nil
}

func (us *AccessApplication) resolveInviteLink(ctx context.Context, tx *entities.Transaction) (InviteLinkResult, error) {
	now := us.now()
	logs := us.Logger.With(zap.String("transaction_id", tx.ID))

	bot, err := us.Catalog.FindBot(ctx, tx.BotID)
	if err != nil {
		return InviteLinkResult{}, fmt.Errorf("%w: %v", errors.ErrNoInviteLink, err)
	}

	if stored, ok := tx.Metadata.StoredInviteLink(); ok {
		if storedUsable(stored, now) && us.validateLink(ctx, *bot, stored.ChatID, stored.Link, now) {
			return InviteLinkResult{Link: stored, Persisted: true}, nil
		}
		logs.Info("stored_invite_link_rejected", zap.String("link", stored.Link))
	}

	target, err := us.locateGroup(ctx, tx, bot)
	if err != nil {
		return InviteLinkResult{}, err
	}

	at, ok, err := us.accessExpiresAt(ctx, tx)
	if err != nil {
		return InviteLinkResult{}, fmt.Errorf("%w: %v", errors.ErrNoInviteLink, err)
	}
	var expireAt *time.Time
	if ok {
		if !at.After(now) {
			return InviteLinkResult{}, fmt.Errorf("%w: access ended at %s", errors.ErrNoInviteLink, at.Format(time.RFC3339))
		}
		expireAt = &at
	}

	link, err := us.mintLink(ctx, *bot, target, expireAt, now)
	if err != nil {
		logs.Warn("mint_invite_link_err", zap.Int64("chat_id", target.ChatID), zap.String("username", target.Username), zap.Error(err))
		if target.Username == "" {
			return InviteLinkResult{}, fmt.Errorf("%w: %v", errors.ErrNoInviteLink, err)
		}
		link = entities.InviteLink{
			Link:      handleLinkBase + target.Username,
			ChatID:    target.ChatID,
			CreatedAt: now,
			NoExpiry:  true,
			Source:    entities.InviteLinkHandle,
		}
	}

	return InviteLinkResult{Link: link, Persisted: us.persistLink(ctx, tx, link, now)}, nil
}

// storedUsable checks the recorded expiry only; the messaging API gets the
// final word in validateLink.
func storedUsable(l entities.InviteLink, now time.Time) bool {
	if l.NoExpiry {
		return true
	}
	return l.ExpiresAt != nil && !l.ExpiredAt(now)
}

// locateGroup walks plan group, active bot group, any bot group and finally
// the bot's default chat.
func (us *AccessApplication) locateGroup(ctx context.Context, tx *entities.Transaction, bot *entities.Bot) (groupTarget, error) {
	lookups := []func() (*entities.Group, error){
		func() (*entities.Group, error) {
			plan, err := us.Catalog.FindPlan(ctx, tx.PlanID)
			if err != nil {
				return nil, err
			}
			if plan.GroupID == "" {
				return nil, errors.ErrCatalogNotFound
			}
			return us.Catalog.FindGroup(ctx, plan.GroupID)
		},
		func() (*entities.Group, error) { return us.Catalog.FindActiveGroupByBot(ctx, bot.ID) },
		func() (*entities.Group, error) { return us.Catalog.FindAnyGroupByBot(ctx, bot.ID) },
	}

	for _, lookup := range lookups {
		group, err := lookup()
		if err != nil {
			if !errors.Is(err, errors.ErrCatalogNotFound) {
				us.Logger.Warn("locate_group_err", zap.String("transaction_id", tx.ID), zap.Error(err))
			}
			continue
		}
		if group.ChatID != 0 || group.HasHandle() {
			return groupTarget{GroupID: group.ID, ChatID: group.ChatID, Username: group.Username}, nil
		}
	}

	if bot.DefaultGroupChatID != 0 {
		return groupTarget{ChatID: bot.DefaultGroupChatID}, nil
	}
	return groupTarget{}, fmt.Errorf("%w: no group for bot %s", errors.ErrNoInviteLink, bot.ID)
}

// mintLink always asks for a fresh link; exported links may already be past
// their expiry or member limit.
func (us *AccessApplication) mintLink(ctx context.Context, bot entities.Bot, target groupTarget, expireAt *time.Time, now time.Time) (entities.InviteLink, error) {
	var link entities.InviteLink
	err := retry.Do(ctx, us.Retry, func() error {
		minted, err := us.Messenger.CreateInviteLink(ctx, bot, target.ChatID, target.Username, expireAt)
		if errors.Is(err, errors.ErrInsufficientRights) {
			return retry.Permanent(err)
		}
		if err != nil {
			return err
		}
		link = entities.InviteLink{
			Link:      minted.Link,
			ChatID:    target.ChatID,
			CreatedAt: now,
			ExpiresAt: minted.ExpireAt,
			NoExpiry:  minted.ExpireAt == nil,
			Source:    entities.InviteLinkMinted,
		}
		return nil
	})
	if err != nil {
		return entities.InviteLink{}, err
	}
	if !us.validateLink(ctx, bot, target.ChatID, link.Link, now) {
		return entities.InviteLink{}, fmt.Errorf("minted link %s is not usable", link.Link)
	}
	return link, nil
}

// validateLink is optimistic: a failed lookup counts as valid.
func (us *AccessApplication) validateLink(ctx context.Context, bot entities.Bot, chatID int64, link string, now time.Time) bool {
	info, err := us.Messenger.GetInviteLinkInfo(ctx, bot, chatID, link)
	if err != nil {
		us.Logger.Debug("invite_link_info_unavailable", zap.String("link", link), zap.Error(err))
		return true
	}
	return info.UsableAt(now)
}

func (us *AccessApplication) persistLink(ctx context.Context, tx *entities.Transaction, link entities.InviteLink, now time.Time) bool {
	pending := false
	patch := entities.MetadataPatch{
		GroupInviteLink:          &link.Link,
		GroupInviteLinkCreatedAt: &link.CreatedAt,
		GroupInviteLinkExpiresAt: link.ExpiresAt,
		GroupInviteLinkNoExpiry:  &link.NoExpiry,
		LinkDeliveryPending:      &pending,
	}
	if link.ChatID != 0 {
		patch.GroupChatID = &link.ChatID
	}
	if _, _, err := us.Transactions.MergeMetadata(ctx, tx.ID, patch, now); err != nil {
		us.Logger.Error("persist_invite_link_err", zap.String("transaction_id", tx.ID), zap.Error(err))
		return false
	}
	return true
}

// RecordInviteLinkJoin counts a member who joined through a minted link so
// later validation sees the member limit.
func (us *AccessApplication) RecordInviteLinkJoin(ctx context.Context, botID, link string) error {
	if us.Links == nil {
		return nil
	}
	count, err := us.Links.IncrementMembers(ctx, botID, link)
	if err != nil {
		if errors.Is(err, errors.ErrInviteLinkInfoUnavailable) {
			return nil
		}
		us.Logger.Error("record_invite_link_join_err", zap.String("bot_id", botID), zap.Error(err))
		return err
	}
	us.Logger.Info("invite_link_joined", zap.String("bot_id", botID), zap.Int("member_count", count))
	return nil
}
