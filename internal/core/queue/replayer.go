package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/penwyp/go-health-monitor/internal/core/model"
	"github.com/penwyp/go-health-monitor/internal/util"
)

// FailurePolicy decides what happens to an action whose replay fails for a
// reason other than the service being unreachable.
type FailurePolicy string

const (
	// PolicyRetry leaves the action at the head and stops the replay.
	PolicyRetry FailurePolicy = "retry"
	// PolicyDrop removes the action and continues.
	PolicyDrop FailurePolicy = "drop"
	// PolicyRequeue moves the action to the tail and continues.
	PolicyRequeue FailurePolicy = "requeue"
)

// ParsePolicy parses a policy name; empty means PolicyRetry.
func ParsePolicy(s string) (FailurePolicy, error) {
	switch p := FailurePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyRetry, nil
	case PolicyRetry, PolicyDrop, PolicyRequeue:
		return p, nil
	default:
		return "", fmt.Errorf("unknown replay policy %q (use retry, drop or requeue)", s)
	}
}

// State is where a queued write is in its lifecycle.
type State int

const (
	StatePending State = iota
	StateReplaying
	StateSettled
	StateDropped
	StateRequeued
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateReplaying:
		return "replaying"
	case StateSettled:
		return "settled"
	case StateDropped:
		return "dropped"
	case StateRequeued:
		return "requeued"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Dispatcher performs a queued write against the service.
type Dispatcher interface {
	Dispatch(ctx context.Context, action model.QueuedAction) error
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, action model.QueuedAction) error

func (f DispatcherFunc) Dispatch(ctx context.Context, action model.QueuedAction) error {
	return f(ctx, action)
}

// ActionQueue is the persisted queue a replay consumes.
type ActionQueue interface {
	QueuedActions() ([]model.QueuedAction, error)
	PeekAction() (model.QueuedAction, bool, error)
	// DequeueActionIf removes the head only when it is actionID, atomically
	// with respect to other consumers of the same queue.
	DequeueActionIf(actionID string) (bool, error)
	EnqueueAction(action model.QueuedAction) error
}

// Outcome is the final state of one replayed action.
type Outcome struct {
	Action model.QueuedAction
	State  State
	Err    error
}

// Report summarises a replay.
type Report struct {
	Outcomes  []Outcome
	Settled   int
	Dropped   int
	Requeued  int
	Remaining int
	// Offline is set when replay stopped because the service is unreachable.
	Offline bool
	// Failure is the error that stopped a PolicyRetry replay.
	Failure error
	// Cancelled is set when the context ended the replay early.
	Cancelled bool
}

// Replayer drains an ActionQueue through a Dispatcher, head first.
type Replayer struct {
	queue      ActionQueue
	dispatcher Dispatcher
	policy     FailurePolicy
}

// NewReplayer creates a replayer. An empty policy means PolicyRetry.
func NewReplayer(q ActionQueue, d Dispatcher, policy FailurePolicy) *Replayer {
	if policy == "" {
		policy = PolicyRetry
	}
	return &Replayer{queue: q, dispatcher: d, policy: policy}
}

// Policy returns the failure policy in use.
func (r *Replayer) Policy() FailurePolicy {
	return r.policy
}

// Replay visits each action queued when it starts, at most once. It stops at
// the first unreachable error, leaving that action at the head, and at the
// first other error under PolicyRetry. A cancelled ctx stops it with
// Report.Cancelled set. Actions enqueued during the replay wait for the next
// one.
func (r *Replayer) Replay(ctx context.Context) (Report, error) {
	var report Report

	pending, err := r.queue.QueuedActions()
	if err != nil {
		return report, fmt.Errorf("failed to read queued actions: %w", err)
	}

	for budget := len(pending); budget > 0; budget-- {
		if ctx.Err() != nil {
			report.Cancelled = true
			return r.finish(report)
		}

		action, ok, err := r.queue.PeekAction()
		if err != nil {
			return report, fmt.Errorf("failed to peek queued action: %w", err)
		}
		if !ok {
			break
		}

		util.LogDebug("Replaying queued action",
			util.F("action_id", action.ActionID),
			util.F("name", action.Name),
			util.F("state", StateReplaying.String()))

		dispatchErr := r.dispatcher.Dispatch(ctx, action)
		switch {
		case dispatchErr == nil:
			if _, err := r.removeHead(action); err != nil {
				return report, err
			}
			report.Settled++
			report.Outcomes = append(report.Outcomes, Outcome{Action: action, State: StateSettled})

		case ctx.Err() != nil:
			report.Cancelled = true
			report.Outcomes = append(report.Outcomes, Outcome{Action: action, State: StatePending, Err: dispatchErr})
			return r.finish(report)

		case errors.Is(dispatchErr, model.ErrNetworkUnreachable):
			report.Offline = true
			report.Outcomes = append(report.Outcomes, Outcome{Action: action, State: StatePending, Err: dispatchErr})
			util.LogInfo("Service unreachable, replay paused",
				util.F("action_id", action.ActionID))
			return r.finish(report)

		case r.policy == PolicyDrop:
			removed, err := r.removeHead(action)
			if err != nil {
				return report, err
			}
			if !removed {
				continue
			}
			report.Dropped++
			report.Outcomes = append(report.Outcomes, Outcome{Action: action, State: StateDropped, Err: dispatchErr})
			util.LogWarn("Dropped queued action after failed replay",
				util.F("action_id", action.ActionID),
				util.F("error", dispatchErr.Error()))

		case r.policy == PolicyRequeue:
			removed, err := r.removeHead(action)
			if err != nil {
				return report, err
			}
			if !removed {
				continue
			}
			action.Attempts++
			if err := r.queue.EnqueueAction(action); err != nil {
				return report, fmt.Errorf("failed to requeue action %s: %w", action.ActionID, err)
			}
			report.Requeued++
			report.Outcomes = append(report.Outcomes, Outcome{Action: action, State: StateRequeued, Err: dispatchErr})
			util.LogWarn("Requeued action after failed replay",
				util.F("action_id", action.ActionID),
				util.F("attempts", action.Attempts),
				util.F("error", dispatchErr.Error()))

		default:
			report.Failure = dispatchErr
			report.Outcomes = append(report.Outcomes, Outcome{Action: action, State: StatePending, Err: dispatchErr})
			util.LogWarn("Replay failed, action kept at head",
				util.F("action_id", action.ActionID),
				util.F("error", dispatchErr.Error()))
			return r.finish(report)
		}
	}

	return r.finish(report)
}

func (r *Replayer) finish(report Report) (Report, error) {
	remaining, err := r.queue.QueuedActions()
	if err != nil {
		return report, fmt.Errorf("failed to read queued actions: %w", err)
	}
	report.Remaining = len(remaining)
	return report, nil
}

// removeHead removes the action just replayed if it is still the head. When
// another replay already removed it, nothing is removed and removed is false;
// the loop then peeks the new head.
func (r *Replayer) removeHead(expected model.QueuedAction) (bool, error) {
	removed, err := r.queue.DequeueActionIf(expected.ActionID)
	if err != nil {
		return false, fmt.Errorf("failed to dequeue action %s: %w", expected.ActionID, err)
	}
	if !removed {
		util.LogDebug("Queued action already removed by another replay",
			util.F("action_id", expected.ActionID))
	}
	return removed, nil
}

// Memory adapts an in-memory Queue to ActionQueue.
func Memory(q *Queue) ActionQueue {
	return memoryQueue{q: q}
}

type memoryQueue struct {
	q *Queue
}

func (m memoryQueue) QueuedActions() ([]model.QueuedAction, error) {
	return m.q.Snapshot(), nil
}

func (m memoryQueue) PeekAction() (model.QueuedAction, bool, error) {
	a, ok := m.q.Peek()
	return a, ok, nil
}

func (m memoryQueue) DequeueActionIf(actionID string) (bool, error) {
	_, ok := m.q.DequeueIf(actionID)
	return ok, nil
}

func (m memoryQueue) EnqueueAction(action model.QueuedAction) error {
	return m.q.Enqueue(action)
}
