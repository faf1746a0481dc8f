package rotation

import "github.com/leasehub/exposure-rotation/internal/domain"

// CounterKey names the rotation counter of a panel queue.
func CounterKey(q domain.QueueType) string {
	return "rotation:counter:" + string(q)
}

// CooldownKey names the cooldown marker of a visitor on a queue.
func CooldownKey(q domain.QueueType, sessionID string) string {
	return "rotation:" + string(q) + ":" + sessionID
}
