package rotation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/leasehub/exposure-rotation/internal/domain"
	"github.com/leasehub/exposure-rotation/internal/repository"
)

// Compactor renumbers queues densely, reclaiming gaps left by items that left
// a queue and bounding the growth of order values from repeated tail-moves.
type Compactor struct {
	repo   repository.ItemRepository
	logger *zap.Logger
	hooks  Hooks
}

func NewCompactor(repo repository.ItemRepository, logger *zap.Logger, hooks Hooks) *Compactor {
	return &Compactor{repo: repo, logger: logger, hooks: hooks.withDefaults()}
}

// RenumberQueue assigns 1..N to q's eligible items, keeping their current
// (order, id) sequence, and returns N. Running it twice in a row leaves the
// order unchanged.
func (c *Compactor) RenumberQueue(ctx context.Context, q domain.QueueType) (int, error) {
	if !q.IsValid() {
		return 0, domain.ErrInvalidQueue
	}

	start := time.Now()
	n, err := c.repo.Renumber(ctx, q)
	if err != nil {
		c.hooks.OnCompactionFailed(q)
		return 0, fmt.Errorf("renumber %s: %w", q, err)
	}

	elapsed := time.Since(start)
	c.hooks.OnRenumbered(q, n, elapsed)
	c.logger.Info("queue compacted",
		zap.String("queue", string(q)),
		zap.Int("renumbered", n),
		zap.Duration("elapsed", elapsed))
	return n, nil
}

// RenumberAll compacts every queue type independently. A failed queue is
// logged and reported; the others still run.
func (c *Compactor) RenumberAll(ctx context.Context) []domain.CompactionResult {
	results := make([]domain.CompactionResult, 0, len(domain.AllQueues))
	for _, q := range domain.AllQueues {
		res := domain.CompactionResult{Queue: q}
		n, err := c.RenumberQueue(ctx, q)
		if err != nil {
			c.logger.Error("queue compaction failed", zap.String("queue", string(q)), zap.Error(err))
			res.Error = err.Error()
		}
		res.Renumbered = n
		results = append(results, res)
	}
	return results
}
