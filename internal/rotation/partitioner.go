package rotation

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/leasehub/exposure-rotation/internal/cache"
	"github.com/leasehub/exposure-rotation/internal/domain"
)

// Keyed is anything that can be deduplicated by listing id.
type Keyed interface {
	ExposureID() int64
}

// Partitioner picks one slot-sized group of a small pool per request, driven
// by a shared cache counter per queue.
type Partitioner struct {
	store      cache.Store
	counterTTL time.Duration
	timeout    time.Duration
	logger     *zap.Logger
	hooks      Hooks
}

// NewPartitioner constructs a Partitioner. counterTTL is applied when a
// counter is first created (daily fairness window); timeout bounds each
// cache call.
func NewPartitioner(store cache.Store, counterTTL, timeout time.Duration, logger *zap.Logger, hooks Hooks) *Partitioner {
	return &Partitioner{
		store:      store,
		counterTTL: counterTTL,
		timeout:    timeout,
		logger:     logger,
		hooks:      hooks.withDefaults(),
	}
}

// GroupIndex increments q's counter and maps it onto [0, totalGroups).
// Any cache error or timeout yields group 0.
func (p *Partitioner) GroupIndex(ctx context.Context, q domain.QueueType, totalGroups int) int {
	if totalGroups <= 1 {
		return 0
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	n, err := p.store.IncrWithExpiry(ctx, CounterKey(q), p.counterTTL)
	if err != nil {
		p.logger.Warn("rotation counter unavailable, serving first group",
			zap.String("queue", string(q)), zap.Error(err))
		p.hooks.OnCounterFallback(q)
		return 0
	}
	return GroupFor(n, totalGroups)
}

// GroupFor maps a counter value to a group index: (counter-1) mod totalGroups.
func GroupFor(counter int64, totalGroups int) int {
	if totalGroups <= 0 {
		return 0
	}
	idx := (counter - 1) % int64(totalGroups)
	if idx < 0 {
		idx += int64(totalGroups)
	}
	return int(idx)
}

// SelectRotatedGroup returns the slotCount items to show for queue q.
//
// A pool that fits in the slots is returned whole, padded with fill. A larger
// pool is split into ceil(len/slotCount) groups and the counter picks one; a
// short final group is padded with fill. Padding never repeats an id already
// in the result.
func SelectRotatedGroup[T Keyed](ctx context.Context, p *Partitioner, items []T, slotCount int, q domain.QueueType, fill []T) []T {
	if slotCount <= 0 {
		return nil
	}

	out := make([]T, 0, slotCount)
	if len(items) <= slotCount {
		out = append(out, items...)
		return pad(out, slotCount, fill)
	}

	totalGroups := (len(items) + slotCount - 1) / slotCount
	start := p.GroupIndex(ctx, q, totalGroups) * slotCount
	end := min(start+slotCount, len(items))

	out = append(out, items[start:end]...)
	return pad(out, slotCount, fill)
}

func pad[T Keyed](out []T, slotCount int, fill []T) []T {
	if len(out) >= slotCount {
		return out
	}
	seen := make(map[int64]struct{}, slotCount)
	for _, it := range out {
		seen[it.ExposureID()] = struct{}{}
	}
	for _, it := range fill {
		if len(out) == slotCount {
			break
		}
		if _, dup := seen[it.ExposureID()]; dup {
			continue
		}
		seen[it.ExposureID()] = struct{}{}
		out = append(out, it)
	}
	return out
}
