package redis_cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cast"

	"access-system/domain/value_objects"
	"access-system/errors"
)

const (
	fieldLink        = "link"
	fieldChatID      = "chat_id"
	fieldExpireAt    = "expire_at"
	fieldMemberCount = "member_count"
	fieldMemberLimit = "member_limit"
	fieldRevoked     = "revoked"
)

// LinkRegistry keeps one hash per minted invite link. Entries outlive the
// link by a day so a late join is still counted.
type LinkRegistry struct {
	client     redis.UniversalClient
	defaultTTL time.Duration
	now        func() time.Time
}

func NewRedisClient(address, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
}

func NewLinkRegistry(client redis.UniversalClient, defaultTTL time.Duration) *LinkRegistry {
	return &LinkRegistry{client: client, defaultTTL: defaultTTL, now: time.Now}
}

func linkKey(botID, link string) string {
	sum := sha1.Sum([]byte(link))
	return fmt.Sprintf("invite_link:%s:%s", botID, hex.EncodeToString(sum[:]))
}

func (r *LinkRegistry) Save(ctx context.Context, botID string, chatID int64, link value_objects.InviteLinkInfo) error {
	key := linkKey(botID, link.Link)
	fields := map[string]interface{}{
		fieldLink:        link.Link,
		fieldChatID:      chatID,
		fieldMemberCount: link.MemberCount,
		fieldMemberLimit: link.MemberLimit,
		fieldRevoked:     link.Revoked,
	}
	expireAt := r.now().Add(r.defaultTTL)
	if link.ExpireAt != nil {
		fields[fieldExpireAt] = link.ExpireAt.Unix()
		expireAt = link.ExpireAt.Add(24 * time.Hour)
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fields)
	pipe.ExpireAt(ctx, key, expireAt)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *LinkRegistry) Find(ctx context.Context, botID string, link string) (value_objects.InviteLinkInfo, error) {
	values, err := r.client.HGetAll(ctx, linkKey(botID, link)).Result()
	if err != nil {
		return value_objects.InviteLinkInfo{}, err
	}
	if len(values) == 0 {
		return value_objects.InviteLinkInfo{}, errors.ErrInviteLinkInfoUnavailable
	}

	info := value_objects.InviteLinkInfo{
		Link:        values[fieldLink],
		MemberCount: cast.ToInt(values[fieldMemberCount]),
		MemberLimit: cast.ToInt(values[fieldMemberLimit]),
		Revoked:     cast.ToBool(values[fieldRevoked]),
	}
	if raw, ok := values[fieldExpireAt]; ok && raw != "" {
		at := time.Unix(cast.ToInt64(raw), 0)
		info.ExpireAt = &at
	}
	return info, nil
}

// IncrementMembers counts one more join through link. Unknown links are
// left alone.
func (r *LinkRegistry) IncrementMembers(ctx context.Context, botID string, link string) (int, error) {
	key := linkKey(botID, link)
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, errors.ErrInviteLinkInfoUnavailable
	}
	count, err := r.client.HIncrBy(ctx, key, fieldMemberCount, 1).Result()
	return int(count), err
}
