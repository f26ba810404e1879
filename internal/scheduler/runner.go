package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/helpdesk-kit/ticket-bot/internal/observability"
)

// Sweep is one pass of a periodic background job.
type Sweep func(ctx context.Context) error

// RunEvery runs sweep on a fixed cadence until ctx is cancelled. Sweep
// errors are logged and the cadence continues; one bad pass must not
// kill the loop.
func RunEvery(ctx context.Context, name string, interval time.Duration, sweep Sweep, logger *zap.Logger, metrics *observability.Metrics) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		err := sweep(ctx)
		metrics.RecordSweep(name, err != nil)
		if err != nil {
			logger.Error("sweep failed", zap.String("sweep", name), zap.Error(err))
		}
	}
}
