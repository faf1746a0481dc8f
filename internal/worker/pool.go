package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/leasehub/exposure-rotation/internal/config"
	"github.com/leasehub/exposure-rotation/internal/domain"
	"github.com/leasehub/exposure-rotation/internal/queue"
	"github.com/leasehub/exposure-rotation/internal/ratelimiter"
	"github.com/leasehub/exposure-rotation/internal/repository"
)

// MetricHooks carries the metric callback functions injected by main.
// Using a struct keeps the pool constructor signature clean.
type MetricHooks struct {
	OnMoved  func(q domain.QueueType, moved int, latency time.Duration)
	OnFailed func(q domain.QueueType)
}

// Pool manages the lifecycle of all rotation workers.
// All workers share the same task queue.
type Pool struct {
	workers []*Worker
	wg      sync.WaitGroup
}

// NewPool creates cfg.RotationWorkers identical workers.
func NewPool(
	cfg *config.Config,
	q *queue.TaskQueue,
	repo repository.ItemRepository,
	limiter *ratelimiter.QueueLimiters,
	logger *zap.Logger,
	hooks MetricHooks,
) *Pool {
	workers := make([]*Worker, cfg.RotationWorkers)

	for i := range workers {
		workers[i] = NewWorker(
			i, q, repo, limiter,
			cfg.RotationTaskTimeout,
			logger.With(zap.Int("worker_id", i)),
			hooks.OnMoved,
			hooks.OnFailed,
		)
	}

	return &Pool{workers: workers}
}

// Start launches all workers as goroutines.
// The provided ctx is forwarded to every worker; cancelling it
// triggers a graceful shutdown of the entire pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.Run(ctx)
		}(w)
	}
}

// Wait blocks until every worker has returned after ctx is cancelled.
// Tasks still buffered at that point are discarded; compaction reconciles.
func (p *Pool) Wait() {
	p.wg.Wait()
}
