package gpooling

import (
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// Pool runs the engine's sweeps, per-item work and queue consumers on a
// bounded set of goroutines.
type Pool struct {
	antsPool *ants.Pool
}

type IPool interface {
	Submit(task func()) error
	Release()
	Running() int
}

type Option func(*settings)

type settings struct {
	expiry time.Duration
}

// WithExpiry sets how long a worker may sit idle before it is reclaimed.
// Idle workers still count in Running until then. Non-positive values keep
// the ants default.
func WithExpiry(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.expiry = d
		}
	}
}

// antsLogger routes the pool's own diagnostics into zap.
type antsLogger struct {
	log *zap.SugaredLogger
}

func (l antsLogger) Printf(format string, args ...interface{}) {
	l.log.Warnf(format, args...)
}

// NewPooling builds a pool of maxPoolSize workers. Submit blocks while every
// worker is busy; a panicking task is logged and its worker recycled.
func NewPooling(maxPoolSize int, log *zap.Logger, opts ...Option) (*Pool, error) {
	s := settings{expiry: ants.DefaultCleanIntervalTime}
	for _, opt := range opts {
		opt(&s)
	}

	pool, err := ants.NewPool(maxPoolSize,
		ants.WithNonblocking(false),
		ants.WithExpiryDuration(s.expiry),
		ants.WithLogger(antsLogger{log: log.Named("pool").Sugar()}),
		ants.WithPanicHandler(func(data interface{}) {
			log.Error("pool_task_panic", zap.Any("panic", data))
		}),
	)
	if err != nil {
		return nil, err
	}
	return &Pool{antsPool: pool}, nil
}

func (p *Pool) Release() {
	p.antsPool.Release()
}

// Running counts live workers, busy or idle.
func (p *Pool) Running() int {
	return p.antsPool.Running()
}

func (p *Pool) Submit(task func()) error {
	return p.antsPool.Submit(task)
}
