package rotation

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/leasehub/exposure-rotation/internal/cache"
	"github.com/leasehub/exposure-rotation/internal/domain"
)

// CooldownGate limits tail-moves to one per (queue, session) per TTL.
type CooldownGate struct {
	store   cache.Store
	ttl     time.Duration
	timeout time.Duration
	logger  *zap.Logger
	hooks   Hooks
}

func NewCooldownGate(store cache.Store, ttl, timeout time.Duration, logger *zap.Logger, hooks Hooks) *CooldownGate {
	return &CooldownGate{
		store:   store,
		ttl:     ttl,
		timeout: timeout,
		logger:  logger,
		hooks:   hooks.withDefaults(),
	}
}

// Acquire reports whether this read may trigger a rotation. It sets the
// cooldown marker when it does. An unreachable store authorizes the rotation.
func (g *CooldownGate) Acquire(ctx context.Context, q domain.QueueType, sessionID string) bool {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	ok, err := g.store.SetIfAbsent(ctx, CooldownKey(q, sessionID), g.ttl)
	if err != nil {
		g.logger.Warn("cooldown store unavailable, rotating anyway",
			zap.String("queue", string(q)), zap.Error(err))
		g.hooks.OnCooldownFallback(q)
		return true
	}
	return ok
}
