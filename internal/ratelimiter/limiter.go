package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/leasehub/exposure-rotation/internal/domain"
)

// QueueLimiters holds one token bucket per queue type and paces the detached
// tail-moves written to each queue.
// Burst is set equal to the rate so no extra burst capacity is allowed
// beyond the configured per-second maximum.
type QueueLimiters struct {
	limiters map[domain.QueueType]*rate.Limiter
}

// New creates a QueueLimiters with ratePerSec tokens per second per queue.
// A non-positive rate disables limiting.
func New(ratePerSec int) *QueueLimiters {
	r := rate.Limit(ratePerSec)
	burst := ratePerSec
	if ratePerSec <= 0 {
		r, burst = rate.Inf, 1
	}

	limiters := make(map[domain.QueueType]*rate.Limiter, len(domain.AllQueues))
	for _, q := range domain.AllQueues {
		limiters[q] = rate.NewLimiter(r, burst)
	}
	return &QueueLimiters{limiters: limiters}
}

// Wait blocks until the queue's limiter grants a token.
// Called by each rotation worker immediately before writing to the database.
// Returns a non-nil error only if ctx is cancelled while waiting.
func (ql *QueueLimiters) Wait(ctx context.Context, q domain.QueueType) error {
	lim, ok := ql.limiters[q]
	if !ok {
		return nil
	}
	return lim.Wait(ctx)
}
