package redis_cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"access-system/domain/value_objects"
	"access-system/errors"
	"access-system/utils/helpers"
)

// newRegistry needs a Redis in ACCESS_TEST_REDIS_ADDR.
func newRegistry(t *testing.T) *LinkRegistry {
	addr := os.Getenv("ACCESS_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("ACCESS_TEST_REDIS_ADDR not set")
	}
	client := NewRedisClient(addr, "", 0)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())
	return NewLinkRegistry(client, time.Hour)
}

func TestLinkKey_StableAndScopedByBot(t *testing.T) {
	link := "https://t.me/+AbCdEf"
	assert.Equal(t, linkKey("bot-1", link), linkKey("bot-1", link))
	assert.NotEqual(t, linkKey("bot-1", link), linkKey("bot-2", link))
	assert.Contains(t, linkKey("bot-1", link), "invite_link:bot-1:")
}

func TestLinkRegistry_SaveFindIncrement(t *testing.T) {
	r := newRegistry(t)
	ctx := context.Background()
	botID := "bot-" + helpers.GetUUId()
	expire := time.Now().Add(30 * 24 * time.Hour).Truncate(time.Second)
	link := "https://t.me/+" + helpers.GetUUId()

	require.NoError(t, r.Save(ctx, botID, -100123, value_objects.InviteLinkInfo{
		Link:        link,
		ExpireAt:    &expire,
		MemberLimit: 1,
	}))

	info, err := r.Find(ctx, botID, link)
	require.NoError(t, err)
	assert.Equal(t, link, info.Link)
	require.NotNil(t, info.ExpireAt)
	assert.True(t, info.ExpireAt.Equal(expire))
	assert.True(t, info.UsableAt(time.Now()))

	count, err := r.IncrementMembers(ctx, botID, link)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	info, err = r.Find(ctx, botID, link)
	require.NoError(t, err)
	assert.False(t, info.UsableAt(time.Now()))
}

func TestLinkRegistry_UnknownLink(t *testing.T) {
	r := newRegistry(t)
	ctx := context.Background()

	_, err := r.Find(ctx, "bot-x", "https://t.me/+unknown")
	assert.ErrorIs(t, err, errors.ErrInviteLinkInfoUnavailable)

	_, err = r.IncrementMembers(ctx, "bot-x", "https://t.me/+unknown")
	assert.ErrorIs(t, err, errors.ErrInviteLinkInfoUnavailable)
}
