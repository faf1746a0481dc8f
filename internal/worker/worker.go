package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/leasehub/exposure-rotation/internal/domain"
	"github.com/leasehub/exposure-rotation/internal/queue"
	"github.com/leasehub/exposure-rotation/internal/ratelimiter"
	"github.com/leasehub/exposure-rotation/internal/repository"
)

// Worker is a single goroutine that continuously pulls rotation tasks from
// the task queue, applies per-queue rate limiting, and moves the served batch
// to the tail of its queue.
//
// Nobody waits on a task's outcome. Failures are logged and reported through
// onFailed, and the queue stays slightly stale until the next compaction.
type Worker struct {
	id      int
	q       *queue.TaskQueue
	repo    repository.ItemRepository
	limiter *ratelimiter.QueueLimiters
	timeout time.Duration
	logger  *zap.Logger

	// Metric hooks, injected by the pool.
	onMoved  func(q domain.QueueType, moved int, latency time.Duration)
	onFailed func(q domain.QueueType)
}

// NewWorker constructs a worker. onMoved and onFailed are optional (nil = no-op).
func NewWorker(
	id int,
	q *queue.TaskQueue,
	repo repository.ItemRepository,
	limiter *ratelimiter.QueueLimiters,
	timeout time.Duration,
	logger *zap.Logger,
	onMoved func(domain.QueueType, int, time.Duration),
	onFailed func(domain.QueueType),
) *Worker {
	if onMoved == nil {
		onMoved = func(domain.QueueType, int, time.Duration) {}
	}
	if onFailed == nil {
		onFailed = func(domain.QueueType) {}
	}
	return &Worker{
		id: id, q: q, repo: repo, limiter: limiter,
		timeout: timeout, logger: logger,
		onMoved: onMoved, onFailed: onFailed,
	}
}

// Run blocks until ctx is cancelled, processing one task per iteration.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("rotation worker started", zap.Int("id", w.id))
	for {
		task, ok := w.q.Dequeue(ctx)
		if !ok {
			w.logger.Info("rotation worker stopping", zap.Int("id", w.id))
			return
		}
		w.process(ctx, task)
	}
}

func (w *Worker) process(ctx context.Context, task queue.Task) {
	log := w.logger.With(
		zap.String("queue", string(task.Queue)),
		zap.String("session_id", task.SessionID),
		zap.Int("batch", len(task.ItemIDs)),
	)

	defer func() {
		if r := recover(); r != nil {
			log.Error("rotation task panicked", zap.Any("panic", r))
			w.onFailed(task.Queue)
		}
	}()

	// Block here until the per-queue rate limiter grants a token.
	if err := w.limiter.Wait(ctx, task.Queue); err != nil {
		// ctx cancelled while waiting: the worker is shutting down.
		return
	}

	// A move that already started finishes even if shutdown begins.
	moveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.timeout)
	defer cancel()

	moved, err := w.repo.MoveToTail(moveCtx, task.Queue, task.ItemIDs)
	if err != nil {
		log.Warn("tail move failed, leaving it to compaction", zap.Error(err))
		w.onFailed(task.Queue)
		return
	}

	latency := time.Since(task.EnqueuedAt)
	w.onMoved(task.Queue, moved, latency)
	log.Debug("batch moved to tail", zap.Int("moved", moved), zap.Duration("latency", latency))
}
