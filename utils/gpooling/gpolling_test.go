package gpooling

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPool_RunsEveryTask(t *testing.T) {
	pool, err := NewPooling(4, zap.NewNop())
	require.NoError(t, err)
	defer pool.Release()

	var done int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		require.NoError(t, pool.Submit(func() {
			defer wg.Done()
			atomic.AddInt32(&done, 1)
		}))
	}
	wg.Wait()

	assert.Equal(t, int32(50), atomic.LoadInt32(&done))
}

func TestPool_SurvivesPanics(t *testing.T) {
	pool, err := NewPooling(1, zap.NewNop())
	require.NoError(t, err)
	defer pool.Release()

	var wg sync.WaitGroup
	wg.Add(1)
	require.NoError(t, pool.Submit(func() {
		defer wg.Done()
		panic("boom")
	}))
	wg.Wait()

	ran := make(chan struct{})
	require.NoError(t, pool.Submit(func() { close(ran) }))
	<-ran
}

func TestPool_SubmitAfterRelease(t *testing.T) {
	pool, err := NewPooling(1, zap.NewNop())
	require.NoError(t, err)
	pool.Release()

	assert.Error(t, pool.Submit(func() {}))
}

func TestPool_ReclaimsIdleWorkers(t *testing.T) {
	tests := []struct {
		name       string
		opts       []Option
		wantIdleUp bool
	}{
		{name: "short-expiry", opts: []Option{WithExpiry(10 * time.Millisecond)}},
		{name: "default-expiry", wantIdleUp: true},
		{name: "non-positive-expiry-keeps-default", opts: []Option{WithExpiry(0)}, wantIdleUp: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool, err := NewPooling(4, zap.NewNop(), tt.opts...)
			require.NoError(t, err)
			defer pool.Release()

			var wg sync.WaitGroup
			for i := 0; i < 3; i++ {
				wg.Add(1)
				require.NoError(t, pool.Submit(wg.Done))
			}
			wg.Wait()

			if tt.wantIdleUp {
				// Finished workers stay alive until the one second default expiry.
				assert.Positive(t, pool.Running())
				return
			}
			assert.Eventually(t, func() bool { return pool.Running() == 0 }, time.Second, 5*time.Millisecond)
		})
	}
}
