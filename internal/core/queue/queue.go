// Package queue holds deferred writes captured while the service is
// unreachable and replays them in causal order.
package queue

import (
	"errors"
	"fmt"
	"sync"

	"github.com/penwyp/go-health-monitor/internal/core/model"
)

// DefaultCapacity bounds the queue when no capacity is configured.
const DefaultCapacity = 500

// ErrQueueFull is returned by Enqueue and Replace when the bound is reached.
// Queued actions are never evicted to make room.
var ErrQueueFull = errors.New("offline queue is full")

// Queue is a bounded FIFO of queued actions, safe for concurrent use.
// Append order is preserved; nothing is reordered or deduplicated.
type Queue struct {
	mu       sync.Mutex
	items    []model.QueuedAction
	capacity int
}

// NewQueue creates a queue holding at most capacity actions.
// A non-positive capacity uses DefaultCapacity.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{capacity: capacity}
}

// Capacity returns the bound.
func (q *Queue) Capacity() int {
	return q.capacity
}

// Enqueue appends a to the tail.
func (q *Queue) Enqueue(a model.QueuedAction) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) >= q.capacity {
		return fmt.Errorf("%w (%d actions)", ErrQueueFull, q.capacity)
	}
	q.items = append(q.items, a)
	return nil
}

// Dequeue removes and returns the head. ok is false on an empty queue.
func (q *Queue) Dequeue() (model.QueuedAction, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return model.QueuedAction{}, false
	}
	head := q.items[0]
	q.items[0] = model.QueuedAction{}
	q.items = q.items[1:]
	return head, true
}

// DequeueIf removes the head only when its action id is actionID. ok reports
// whether it was removed.
func (q *Queue) DequeueIf(actionID string) (model.QueuedAction, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 || q.items[0].ActionID != actionID {
		return model.QueuedAction{}, false
	}
	head := q.items[0]
	q.items[0] = model.QueuedAction{}
	q.items = q.items[1:]
	return head, true
}

// Peek returns the head without removing it.
func (q *Queue) Peek() (model.QueuedAction, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return model.QueuedAction{}, false
	}
	return q.items[0], true
}

// Len returns the number of queued actions.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Snapshot returns a copy of the queue, head first.
func (q *Queue) Snapshot() []model.QueuedAction {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]model.QueuedAction{}, q.items...)
}

// Replace swaps the whole queue for actions.
func (q *Queue) Replace(actions []model.QueuedAction) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(actions) > q.capacity {
		return fmt.Errorf("%w: %d actions exceed capacity %d", ErrQueueFull, len(actions), q.capacity)
	}
	q.items = append([]model.QueuedAction(nil), actions...)
	return nil
}
