package queue

import (
	"context"

	"github.com/leasehub/exposure-rotation/internal/domain"
)

// TaskQueue buffers detached rotation tasks between request handlers and the
// rotation workers.
//
// Enqueue never blocks: a request must not wait on a rotation, so a full
// buffer drops the task with ErrQueueFull and the next rotation or compaction
// pass picks up the slack.
type TaskQueue struct {
	tasks chan Task
}

func New(capacity int) *TaskQueue {
	if capacity <= 0 {
		capacity = 1
	}
	return &TaskQueue{tasks: make(chan Task, capacity)}
}

// Enqueue places a task on the buffer or returns domain.ErrQueueFull.
func (q *TaskQueue) Enqueue(t Task) error {
	select {
	case q.tasks <- t:
		return nil
	default:
		return domain.ErrQueueFull
	}
}

// Dequeue blocks until a task is available or ctx is cancelled.
// Returns (Task{}, false) when ctx is cancelled (graceful shutdown signal).
func (q *TaskQueue) Dequeue(ctx context.Context) (Task, bool) {
	select {
	case t := <-q.tasks:
		return t, true
	case <-ctx.Done():
		return Task{}, false
	}
}

// Depth returns the number of tasks waiting.
// Used by the metrics handler for the buffer snapshot.
func (q *TaskQueue) Depth() int {
	return len(q.tasks)
}

// Capacity returns the buffer size.
func (q *TaskQueue) Capacity() int {
	return cap(q.tasks)
}

// Full reports whether the next Enqueue would be dropped. A concurrent
// Dequeue or Enqueue can change the answer; callers still handle ErrQueueFull.
func (q *TaskQueue) Full() bool {
	return len(q.tasks) == cap(q.tasks)
}
