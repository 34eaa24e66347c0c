package application

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"access-system/domain/entities"
	"access-system/domain/value_objects"
)

// sweepItemFunc handles one transaction of a batch; processed reports
// whether it changed anything.
type sweepItemFunc func(ctx context.Context, tx *entities.Transaction) (processed bool, err error)

// sweep runs fn for every item on the worker pool, each under its own
// timeout. Failures are counted, never propagated; once ctx is done no new
// items are scheduled.
func (us *AccessApplication) sweep(ctx context.Context, job string, items []*entities.Transaction, fn sweepItemFunc) value_objects.SweepReport {
	var (
		processed, skipped, failed int64
		wg                         sync.WaitGroup
	)
	logs := us.Logger.With(zap.String("job", job))

	for _, tx := range items {
		if ctx.Err() != nil {
			logs.Warn("sweep_cancelled", zap.Error(ctx.Err()))
			break
		}

		tx := tx
		wg.Add(1)
		task := func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					atomic.AddInt64(&failed, 1)
					logs.Error("sweep_item_panic", zap.String("transaction_id", tx.ID), zap.String("panic", fmt.Sprint(r)))
				}
			}()

			itemCtx, cancel := us.itemContext(ctx)
			defer cancel()

			ok, err := fn(itemCtx, tx)
			switch {
			case err != nil:
				atomic.AddInt64(&failed, 1)
				logs.Warn("sweep_item_err", zap.String("transaction_id", tx.ID), zap.Error(err))
			case ok:
				atomic.AddInt64(&processed, 1)
			default:
				atomic.AddInt64(&skipped, 1)
			}
		}

		if err := us.IPool.Submit(task); err != nil {
			wg.Done()
			atomic.AddInt64(&failed, 1)
			logs.Error("sweep_submit_err", zap.String("transaction_id", tx.ID), zap.Error(err))
		}
	}
	wg.Wait()

	report := value_objects.SweepReport{
		Job:       job,
		Scanned:   len(items),
		Processed: int(atomic.LoadInt64(&processed)),
		Skipped:   int(atomic.LoadInt64(&skipped)),
		Failed:    int(atomic.LoadInt64(&failed)),
	}
	logs.Info("sweep_done",
		zap.Int("scanned", report.Scanned),
		zap.Int("processed", report.Processed),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
	)
	return report
}

func (us *AccessApplication) itemContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if timeout := us.Config.Jobs.ItemTimeout(); timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}
