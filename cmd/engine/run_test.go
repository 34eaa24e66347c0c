package main

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"access-system/domain/entities"
	"access-system/domain/value_objects"
	"access-system/utils/gpooling"
)

func TestEvery(t *testing.T) {
	pool, err := gpooling.NewPooling(2, zap.NewNop(), gpooling.WithExpiry(10*time.Millisecond))
	require.NoError(t, err)
	defer pool.Release()

	var runs int32
	job := func(ctx context.Context) value_objects.SweepReport {
		atomic.AddInt32(&runs, 1)
		return value_objects.SweepReport{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, every(ctx, pool, time.Millisecond, job))
	require.Eventually(t, func() bool { return atomic.LoadInt32(&runs) >= 3 }, time.Second, time.Millisecond)

	cancel()
	// A tick already in flight may still finish; after that the count holds.
	var stopped int32
	require.Eventually(t, func() bool {
		before := atomic.LoadInt32(&runs)
		time.Sleep(5 * time.Millisecond)
		stopped = atomic.LoadInt32(&runs)
		return before == stopped
	}, time.Second, 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, atomic.LoadInt32(&runs))

	// The loop's worker went idle and was reclaimed.
	assert.Eventually(t, func() bool { return pool.Running() == 0 }, time.Second, 5*time.Millisecond)
}

func TestEvery_DisabledInterval(t *testing.T) {
	pool, err := gpooling.NewPooling(1, zap.NewNop())
	require.NoError(t, err)
	defer pool.Release()

	require.NoError(t, every(context.Background(), pool, 0, func(ctx context.Context) value_objects.SweepReport {
		t.Fatal("disabled job ran")
		return value_objects.SweepReport{}
	}))
	assert.Equal(t, 0, pool.Running())
}

// scriptedListener reports its links as joins, then waits for shutdown.
type scriptedListener struct {
	links map[string][]string
}

func (l scriptedListener) ListenChatMembers(ctx context.Context, bot entities.Bot, interval time.Duration, onJoin func(ctx context.Context, link string)) error {
	for _, link := range l.links[bot.ID] {
		onJoin(ctx, link)
	}
	<-ctx.Done()
	return nil
}

type joinLog struct {
	mu    sync.Mutex
	joins []string
	err   error
}

func (j *joinLog) RecordInviteLinkJoin(ctx context.Context, botID, link string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.joins = append(j.joins, botID+" "+link)
	return j.err
}

func (j *joinLog) recorded() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := append([]string(nil), j.joins...)
	sort.Strings(out)
	return out
}

func TestListenForJoins(t *testing.T) {
	listener := scriptedListener{links: map[string][]string{
		"bot-1": {"https://t.me/+a", "https://t.me/+b"},
		"bot-2": {"https://t.me/+c"},
	}}
	bots := []*entities.Bot{{ID: "bot-1", Token: "1:x"}, {ID: "bot-2", Token: "2:y"}}

	t.Run("records-every-join", func(t *testing.T) {
		pool, err := gpooling.NewPooling(2, zap.NewNop())
		require.NoError(t, err)
		defer pool.Release()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		recorder := &joinLog{}
		require.NoError(t, listenForJoins(ctx, pool, listener, recorder, bots, time.Millisecond, zap.NewNop()))

		want := []string{"bot-1 https://t.me/+a", "bot-1 https://t.me/+b", "bot-2 https://t.me/+c"}
		assert.Eventually(t, func() bool { return assert.ObjectsAreEqual(want, recorder.recorded()) }, time.Second, time.Millisecond)
	})

	t.Run("keeps-listening-after-lost-join", func(t *testing.T) {
		pool, err := gpooling.NewPooling(2, zap.NewNop())
		require.NoError(t, err)
		defer pool.Release()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		recorder := &joinLog{err: fmt.Errorf("redis down")}
		require.NoError(t, listenForJoins(ctx, pool, listener, recorder, bots[:1], time.Millisecond, zap.NewNop()))
		assert.Eventually(t, func() bool { return len(recorder.recorded()) == 2 }, time.Second, time.Millisecond)
	})

	t.Run("disabled-interval", func(t *testing.T) {
		pool, err := gpooling.NewPooling(1, zap.NewNop())
		require.NoError(t, err)
		defer pool.Release()

		recorder := &joinLog{}
		require.NoError(t, listenForJoins(context.Background(), pool, listener, recorder, bots, 0, zap.NewNop()))
		assert.Equal(t, 0, pool.Running())
		assert.Empty(t, recorder.recorded())
	})
}

func TestSweepCmd_ValidArgs(t *testing.T) {
	var names []string
	for name := range sweeps {
		names = append(names, name)
	}
	sort.Strings(names)

	valid := append([]string(nil), sweepCmd().ValidArgs...)
	sort.Strings(valid)
	assert.Equal(t, valid, names)
}
