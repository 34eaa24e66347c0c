package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errFlaky = errors.New("flaky")

func TestDo(t *testing.T) {
	fast := Policy{Attempts: 3, Interval: time.Millisecond}

	tests := []struct {
		name      string
		failures  int
		permanent bool
		wantCalls int
		wantErr   error
	}{
		{name: "first try", failures: 0, wantCalls: 1},
		{name: "recovers on last attempt", failures: 2, wantCalls: 3},
		{name: "gives up", failures: 5, wantCalls: 3, wantErr: errFlaky},
		{name: "permanent stops at once", failures: 5, permanent: true, wantCalls: 1, wantErr: errFlaky},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Do(context.Background(), fast, func() error {
				calls++
				if calls <= tt.failures {
					if tt.permanent {
						return Permanent(errFlaky)
					}
					return errFlaky
				}
				return nil
			})
			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDo_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Do(ctx, Policy{Attempts: 5, Interval: time.Second}, func() error {
		calls++
		return errFlaky
	})
	assert.Error(t, err)
	assert.LessOrEqual(t, calls, 1)
}
