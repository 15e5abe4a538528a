package model

import (
	"encoding/json"
	"fmt"

	"github.com/bytedance/sonic"
)

// Invokers name the network-service method a queued action replays through.
const (
	InvokerUpdateWeight = "updateWeight"
	InvokerLogWater     = "logWater"
	InvokerAddFasting   = "addFasting"
)

// Action tags
const (
	ActionUpdateWeight = "UPDATE_WEIGHT"
	ActionLogWater     = "LOG_WATER"
	ActionAddFasting   = "ADD_FASTING"
)

// QueuedAction is a deferred write captured while the service was unreachable.
// Params are the invoker's arguments in call order.
type QueuedAction struct {
	UserID   string            `json:"userId"`
	ActionID string            `json:"actionId"`
	Invoker  string            `json:"invoker"`
	Name     string            `json:"name"`
	Params   []json.RawMessage `json:"params"`
	Attempts int               `json:"attempts,omitempty"`
}

// NewQueuedAction encodes params and builds an action.
func NewQueuedAction(userID, actionID, invoker, name string, params ...interface{}) (QueuedAction, error) {
	encoded := make([]json.RawMessage, 0, len(params))
	for i, p := range params {
		data, err := sonic.Marshal(p)
		if err != nil {
			return QueuedAction{}, fmt.Errorf("failed to encode param %d of %s: %w", i, name, err)
		}
		encoded = append(encoded, data)
	}

	return QueuedAction{
		UserID:   userID,
		ActionID: actionID,
		Invoker:  invoker,
		Name:     name,
		Params:   encoded,
	}, nil
}

// DecodeParam unmarshals the i-th param into target.
func (a QueuedAction) DecodeParam(i int, target interface{}) error {
	if i < 0 || i >= len(a.Params) {
		return fmt.Errorf("action %s has no param %d (has %d)", a.ActionID, i, len(a.Params))
	}
	if err := sonic.Unmarshal(a.Params[i], target); err != nil {
		return fmt.Errorf("failed to decode param %d of action %s: %w", i, a.ActionID, err)
	}
	return nil
}

// WeightUpdate is the payload of an UPDATE_WEIGHT write.
type WeightUpdate struct {
	CurrentWeight float64 `json:"currentWeight"`
	NewBodyRecID  string  `json:"newBodyRecId"`
	CurrentDate   string  `json:"currentDate"` // YYYY-MM-DD
	// CreatedAt is when the weight was taken, RFC 3339. A replay may reach
	// the service days later, so the record keeps this time, not the replay's.
	CreatedAt string `json:"createdAt,omitempty"`
}

// WaterLog is the payload of a LOG_WATER write.
type WaterLog struct {
	IntakeID string     `json:"intakeId"`
	Date     string     `json:"date"` // YYYY-MM-DD
	Goal     float64    `json:"goal"`
	Drink    IntakeTime `json:"drink"`
}
