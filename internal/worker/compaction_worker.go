package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/leasehub/exposure-rotation/internal/domain"
)

// Compactor is the part of rotation.Compactor the worker needs.
type Compactor interface {
	RenumberAll(ctx context.Context) []domain.CompactionResult
}

// CompactionWorker renumbers every exposure queue once per interval
// (daily by default).
//
// A failed or missed run has no lasting effect: compaction derives entirely
// from current state, so the next tick repairs whatever the last one missed.
type CompactionWorker struct {
	compactor Compactor
	interval  time.Duration
	timeout   time.Duration
	logger    *zap.Logger
}

func NewCompactionWorker(
	compactor Compactor,
	interval time.Duration,
	timeout time.Duration,
	logger *zap.Logger,
) *CompactionWorker {
	return &CompactionWorker{compactor: compactor, interval: interval, timeout: timeout, logger: logger}
}

// Run ticks every interval and compacts all queues.
// Stops cleanly when ctx is cancelled.
func (cw *CompactionWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(cw.interval)
	defer ticker.Stop()

	cw.logger.Info("compaction worker started", zap.Duration("interval", cw.interval))

	for {
		select {
		case <-ctx.Done():
			cw.logger.Info("compaction worker stopping")
			return
		case <-ticker.C:
			cw.RunOnce(ctx)
		}
	}
}

// RunOnce compacts every queue under the configured timeout and returns the
// per-queue results.
func (cw *CompactionWorker) RunOnce(ctx context.Context) []domain.CompactionResult {
	runCtx, cancel := context.WithTimeout(ctx, cw.timeout)
	defer cancel()

	results := cw.compactor.RenumberAll(runCtx)

	total, failed := 0, 0
	for _, r := range results {
		total += r.Renumbered
		if r.Error != "" {
			failed++
		}
	}
	cw.logger.Info("compaction pass finished",
		zap.Int("queues", len(results)),
		zap.Int("failed", failed),
		zap.Int("renumbered", total))
	return results
}
