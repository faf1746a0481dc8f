package queue

import (
	"time"

	"github.com/leasehub/exposure-rotation/internal/domain"
)

// Task is a detached tail-move: the ids a visitor was just shown, in the
// order they were shown. Workers recompute the queue's max order when they
// run the task, not when it is enqueued.
type Task struct {
	Queue      domain.QueueType
	ItemIDs    []int64
	SessionID  string
	EnqueuedAt time.Time
}
