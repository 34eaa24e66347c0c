// Package retry runs outbound calls with a small constant backoff.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

type Policy struct {
	Attempts int
	Interval time.Duration
}

// Default is three attempts half a second apart.
var Default = Policy{Attempts: 3, Interval: 500 * time.Millisecond}

// Permanent marks err as not worth retrying; Do returns it unwrapped.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do calls fn until it succeeds, returns a permanent error, the attempts
// are used up or ctx is done.
func Do(ctx context.Context, p Policy, fn func() error) error {
	if p.Attempts <= 0 {
		p.Attempts = 1
	}
	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(p.Interval), uint64(p.Attempts-1)),
		ctx,
	)
	return backoff.Retry(fn, b)
}
