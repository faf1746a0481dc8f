package rotation

import (
	"time"

	"github.com/leasehub/exposure-rotation/internal/domain"
)

// Hooks carries the metric callbacks injected by main so this package stays
// metrics-agnostic. Nil fields are no-ops.
type Hooks struct {
	OnCounterFallback  func(q domain.QueueType)
	OnCooldownFallback func(q domain.QueueType)
	OnRotationQueued   func(q domain.QueueType)
	OnRotationDropped  func(q domain.QueueType)
	OnRenumbered       func(q domain.QueueType, n int, elapsed time.Duration)
	OnCompactionFailed func(q domain.QueueType)
}

func (h Hooks) withDefaults() Hooks {
	if h.OnCounterFallback == nil {
		h.OnCounterFallback = func(domain.QueueType) {}
	}
	if h.OnCooldownFallback == nil {
		h.OnCooldownFallback = func(domain.QueueType) {}
	}
	if h.OnRotationQueued == nil {
		h.OnRotationQueued = func(domain.QueueType) {}
	}
	if h.OnRotationDropped == nil {
		h.OnRotationDropped = func(domain.QueueType) {}
	}
	if h.OnRenumbered == nil {
		h.OnRenumbered = func(domain.QueueType, int, time.Duration) {}
	}
	if h.OnCompactionFailed == nil {
		h.OnCompactionFailed = func(domain.QueueType) {}
	}
	return h
}
