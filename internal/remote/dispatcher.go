package remote

import (
	"context"
	"fmt"

	"github.com/penwyp/go-health-monitor/internal/core/model"
)

// Writer is the write half of the service API. *Client implements it.
type Writer interface {
	UpdateWeight(ctx context.Context, userID string, update model.WeightUpdate) error
	LogWater(ctx context.Context, userID string, log model.WaterLog) error
	AddFasting(ctx context.Context, userID string, rec model.FastingRecord) error
}

// Dispatcher replays queued actions through a Writer by their invoker name.
type Dispatcher struct {
	client Writer
}

// NewDispatcher wraps client.
func NewDispatcher(client Writer) *Dispatcher {
	return &Dispatcher{client: client}
}

// Dispatch performs the write recorded in action.
func (d *Dispatcher) Dispatch(ctx context.Context, action model.QueuedAction) error {
	switch action.Invoker {
	case model.InvokerUpdateWeight:
		var update model.WeightUpdate
		if err := action.DecodeParam(0, &update); err != nil {
			return err
		}
		return d.client.UpdateWeight(ctx, action.UserID, update)

	case model.InvokerLogWater:
		var log model.WaterLog
		if err := action.DecodeParam(0, &log); err != nil {
			return err
		}
		return d.client.LogWater(ctx, action.UserID, log)

	case model.InvokerAddFasting:
		var rec model.FastingRecord
		if err := action.DecodeParam(0, &rec); err != nil {
			return err
		}
		return d.client.AddFasting(ctx, action.UserID, rec)

	default:
		return fmt.Errorf("unknown invoker %q for action %s", action.Invoker, action.ActionID)
	}
}
