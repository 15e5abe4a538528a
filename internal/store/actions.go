package store

import (
	"github.com/penwyp/go-health-monitor/internal/core/model"
	"github.com/penwyp/go-health-monitor/internal/util"
)

// EnqueueAction appends a deferred write. It fails with queue.ErrQueueFull
// when the queue is at capacity.
func (s *Store) EnqueueAction(action model.QueuedAction) error {
	err := s.write(func() error {
		return s.queue.Enqueue(action)
	})
	if err == nil {
		util.LogInfo("Queued offline action",
			util.F("action_id", action.ActionID),
			util.F("name", action.Name))
	}
	return err
}

// DequeueAction removes and returns the head of the queue.
func (s *Store) DequeueAction() (model.QueuedAction, bool, error) {
	var (
		head model.QueuedAction
		ok   bool
	)
	err := s.write(func() error {
		head, ok = s.queue.Dequeue()
		return nil
	})
	return head, ok, err
}

// DequeueActionIf removes the head only when it is actionID. The check and
// the removal happen under one exclusive lock, so a replay in another process
// cannot slip in between.
func (s *Store) DequeueActionIf(actionID string) (bool, error) {
	var removed bool
	err := s.write(func() error {
		_, removed = s.queue.DequeueIf(actionID)
		return nil
	})
	return removed, err
}

// PeekAction returns the head without removing it.
func (s *Store) PeekAction() (model.QueuedAction, bool, error) {
	var (
		head model.QueuedAction
		ok   bool
	)
	err := s.read(func() error {
		head, ok = s.queue.Peek()
		return nil
	})
	return head, ok, err
}

// QueuedActions returns a copy of the queue, head first.
func (s *Store) QueuedActions() ([]model.QueuedAction, error) {
	var out []model.QueuedAction
	err := s.read(func() error {
		out = s.queue.Snapshot()
		return nil
	})
	return out, err
}

// UpdateQueuedActions replaces the whole queue.
func (s *Store) UpdateQueuedActions(actions []model.QueuedAction) error {
	return s.write(func() error {
		return s.queue.Replace(actions)
	})
}

// QueueCapacity returns the queue bound.
func (s *Store) QueueCapacity() int {
	return s.queue.Capacity()
}
