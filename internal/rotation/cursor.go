package rotation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/leasehub/exposure-rotation/internal/domain"
	"github.com/leasehub/exposure-rotation/internal/queue"
	"github.com/leasehub/exposure-rotation/internal/repository"
)

// Enqueuer accepts detached tail-move tasks without blocking.
type Enqueuer interface {
	Enqueue(t queue.Task) error
	Full() bool
}

// Cursor serves the head of a large exposure queue and rotates what it served
// to the tail, at most once per visitor and cooldown window.
type Cursor struct {
	repo   repository.ItemRepository
	gate   *CooldownGate
	tasks  Enqueuer
	logger *zap.Logger
	hooks  Hooks
}

func NewCursor(repo repository.ItemRepository, gate *CooldownGate, tasks Enqueuer, logger *zap.Logger, hooks Hooks) *Cursor {
	return &Cursor{
		repo:   repo,
		gate:   gate,
		tasks:  tasks,
		logger: logger,
		hooks:  hooks.withDefaults(),
	}
}

// GetExposureBatch returns the count eligible items with the smallest order
// values in q. rotated reports whether a tail-move of that batch was handed
// to the rotation workers; the move itself happens after this call returns,
// so the returned batch is always the pre-rotation head.
//
// Only a relational read failure is returned as an error. Cache failures and
// a full task buffer degrade silently.
func (c *Cursor) GetExposureBatch(ctx context.Context, q domain.QueueType, count int, sessionID string) ([]*domain.Item, bool, error) {
	if !q.IsValid() {
		return nil, false, domain.ErrInvalidQueue
	}
	if count <= 0 {
		return nil, false, nil
	}

	items, err := c.repo.TopByOrder(ctx, q, count)
	if err != nil {
		return nil, false, fmt.Errorf("read %s queue head: %w", q, err)
	}
	if len(items) == 0 {
		return items, false, nil
	}

	// A move that cannot be queued must not cost the visitor a cooldown
	// window. Full is checked before the marker is taken; the Enqueue error
	// below only covers a buffer that filled in between.
	if c.tasks.Full() {
		c.drop(q, sessionID, domain.ErrQueueFull)
		return items, false, nil
	}

	if !c.gate.Acquire(ctx, q, sessionID) {
		return items, false, nil
	}

	ids := make([]int64, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}

	err = c.tasks.Enqueue(queue.Task{
		Queue:      q,
		ItemIDs:    ids,
		SessionID:  sessionID,
		EnqueuedAt: time.Now().UTC(),
	})
	if err != nil {
		c.drop(q, sessionID, err)
		return items, false, nil
	}

	c.hooks.OnRotationQueued(q)
	return items, true, nil
}

func (c *Cursor) drop(q domain.QueueType, sessionID string, err error) {
	c.logger.Warn("rotation task dropped",
		zap.String("queue", string(q)),
		zap.String("session_id", sessionID),
		zap.Error(err))
	c.hooks.OnRotationDropped(q)
}
