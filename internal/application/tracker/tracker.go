// Package tracker coordinates the store, the network service and the offline
// queue. Writes go to the service first and fall back to the queue when the
// service is unreachable.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/penwyp/go-health-monitor/internal/core/calendar"
	"github.com/penwyp/go-health-monitor/internal/core/health"
	"github.com/penwyp/go-health-monitor/internal/core/model"
	"github.com/penwyp/go-health-monitor/internal/core/queue"
	"github.com/penwyp/go-health-monitor/internal/remote"
	"github.com/penwyp/go-health-monitor/internal/store"
	"github.com/penwyp/go-health-monitor/internal/util"
)

// ErrPendingActions is returned by operations that would discard queued writes.
var ErrPendingActions = errors.New("queued actions are waiting to be replayed")

// Status reports where a write ended up.
type Status int

const (
	// StatusSynced means the service accepted the write.
	StatusSynced Status = iota
	// StatusQueued means the write was saved locally and queued for replay.
	StatusQueued
	// StatusLocal means no user is configured; the write stays local.
	StatusLocal
)

func (s Status) String() string {
	switch s {
	case StatusSynced:
		return "synced"
	case StatusQueued:
		return "queued"
	case StatusLocal:
		return "local"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// WriteResult describes a completed write.
type WriteResult struct {
	Status   Status
	ActionID string // set when Status is StatusQueued
	RecordID string
}

// Tracker coordinates all components for the health commands
type Tracker struct {
	config *Config
	store  *store.Store
	clock  util.Clock

	// Service components
	service    Service
	dispatcher queue.Dispatcher
}

// NewTracker opens the store under config.DataDir and connects to config.ServerURL
func NewTracker(config *Config) (*Tracker, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	clock := util.GetTimeProvider()
	st, err := store.Open(config.StorePath(), store.Options{
		QueueCapacity: config.QueueCapacity,
		Clock:         clock,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	client := remote.NewClient(config.ServerURL, config.RequestTimeout)
	return New(config, st, client, clock), nil
}

// New assembles a tracker from existing components. config must be validated.
func New(config *Config, st *store.Store, service Service, clock util.Clock) *Tracker {
	if clock == nil {
		clock = util.GetTimeProvider()
	}
	return &Tracker{
		config:     config,
		store:      st,
		clock:      clock,
		service:    service,
		dispatcher: remote.NewDispatcher(service),
	}
}

// Store returns the state store.
func (t *Tracker) Store() *store.Store {
	return t.store
}

// Close releases the store.
func (t *Tracker) Close() error {
	return t.store.Close()
}

// UserID resolves the user writes are made for: the configured one, else the
// signed-in session.
func (t *Tracker) UserID() (string, error) {
	if t.config.UserID != "" {
		return t.config.UserID, nil
	}
	session, err := t.store.Session()
	if err != nil {
		return "", err
	}
	if session == nil {
		return "", nil
	}
	return session.UserID, nil
}

// SignIn records the session used when no user is configured.
func (t *Tracker) SignIn(userID string) error {
	if userID == "" {
		return t.store.UpdateSession(nil)
	}
	return t.store.UpdateSession(&model.Session{UserID: userID})
}

// UpdateWeight records today's weight given in unit (kg or lb).
func (t *Tracker) UpdateWeight(ctx context.Context, value float64, unit string) (WriteResult, error) {
	kg, err := health.ToKilograms(value, unit)
	if err != nil {
		return WriteResult{}, model.Invalid("weight", "", "value", err.Error())
	}

	update := model.WeightUpdate{
		CurrentWeight: kg,
		NewBodyRecID:  util.AutoID("br"),
		CurrentDate:   t.today().Key(),
		CreatedAt:     model.FormatTimestamp(t.clock.Now()),
	}

	var recordID string
	result, err := t.write(ctx, writeOp{
		invoker: model.InvokerUpdateWeight,
		name:    model.ActionUpdateWeight,
		payload: update,
		send: func(ctx context.Context, userID string) error {
			return t.service.UpdateWeight(ctx, userID, update)
		},
		apply: func() error {
			rec, _, err := t.store.UpsertDailyWeight(kg, update.NewBodyRecID)
			recordID = rec.ID
			return err
		},
	})
	result.RecordID = recordID
	return result, err
}

// LogWater adds a drink of ml millilitres to today's intake.
func (t *Tracker) LogWater(ctx context.Context, ml float64) (WriteResult, error) {
	if ml <= 0 {
		return WriteResult{}, model.Invalid("water", "", "value", "must be > 0")
	}

	md, err := t.store.Metadata()
	if err != nil {
		return WriteResult{}, err
	}

	now := t.clock.Now()
	log := model.WaterLog{
		IntakeID: util.AutoID("wr"),
		Date:     t.today().Key(),
		Goal:     t.config.WaterGoal,
		Drink: model.IntakeTime{
			ID:        util.AutoID("wt"),
			Value:     ml,
			CreatedAt: model.FormatTimestamp(now),
		},
	}
	for _, rec := range md.WaterRecords {
		if rec.Date == log.Date {
			log.IntakeID = rec.ID
			if rec.Goal > 0 {
				log.Goal = rec.Goal
			}
			break
		}
	}

	result, err := t.write(ctx, writeOp{
		invoker: model.InvokerLogWater,
		name:    model.ActionLogWater,
		payload: log,
		send: func(ctx context.Context, userID string) error {
			return t.service.LogWater(ctx, userID, log)
		},
		apply: func() error {
			_, err := t.store.AddWaterIntake(log)
			return err
		},
	})
	result.RecordID = log.IntakeID
	return result, err
}

// AddFasting stores a completed fast.
func (t *Tracker) AddFasting(ctx context.Context, start, end time.Time, plan string) (WriteResult, error) {
	rec := model.FastingRecord{
		ID:             util.AutoID("fr"),
		StartTimeStamp: start.UnixMilli(),
		EndTimeStamp:   end.UnixMilli(),
		PlanName:       plan,
		CreatedAt:      model.FormatTimestamp(t.clock.Now()),
	}
	if start.IsZero() || !end.After(start) {
		return WriteResult{}, model.Invalid("fasting", rec.ID, "endTimeStamp", "must be after the start")
	}
	if end.After(t.clock.Now()) {
		return WriteResult{}, model.Invalid("fasting", rec.ID, "endTimeStamp", "is in the future")
	}

	result, err := t.write(ctx, writeOp{
		invoker: model.InvokerAddFasting,
		name:    model.ActionAddFasting,
		payload: rec,
		send: func(ctx context.Context, userID string) error {
			return t.service.AddFasting(ctx, userID, rec)
		},
		apply: func() error {
			return t.store.AddFastingRecord(rec)
		},
	})
	result.RecordID = rec.ID
	return result, err
}

type writeOp struct {
	invoker string
	name    string
	payload interface{}
	send    func(ctx context.Context, userID string) error
	apply   func() error
}

// write sends op to the service and mirrors it into the store. An unreachable
// service queues op instead. While older writes are queued, op joins the tail
// so the service sees writes in the order they were made.
func (t *Tracker) write(ctx context.Context, op writeOp) (WriteResult, error) {
	userID, err := t.UserID()
	if err != nil {
		return WriteResult{}, err
	}
	if userID == "" {
		if err := op.apply(); err != nil {
			return WriteResult{}, fmt.Errorf("failed to save %s: %w", op.name, err)
		}
		util.LogDebug("Saved locally, no user configured", util.F("action", op.name))
		return WriteResult{Status: StatusLocal}, nil
	}

	backlog, err := t.drain(ctx)
	if err != nil {
		return WriteResult{}, err
	}

	var sendErr error
	if backlog.Remaining == 0 {
		sendErr = op.send(ctx, userID)
	}

	switch {
	case backlog.Remaining == 0 && sendErr == nil:
		if err := op.apply(); err != nil {
			return WriteResult{}, fmt.Errorf("failed to update local state: %w", err)
		}
		util.LogInfo("Write synced", util.F("action", op.name), util.F("user", userID))
		return WriteResult{Status: StatusSynced}, nil

	case backlog.Remaining > 0 || remote.IsUnreachable(sendErr):
		action, err := model.NewQueuedAction(userID, util.AutoID("qaid"), op.invoker, op.name, op.payload)
		if err != nil {
			return WriteResult{}, err
		}
		if err := t.store.EnqueueAction(action); err != nil {
			return WriteResult{}, fmt.Errorf("failed to queue %s: %w", op.name, err)
		}
		if err := op.apply(); err != nil {
			return WriteResult{}, fmt.Errorf("failed to update local state: %w", err)
		}
		if backlog.Remaining > 0 {
			fields := []util.Field{
				util.F("action", op.name),
				util.F("action_id", action.ActionID),
				util.F("pending", backlog.Remaining),
				util.F("offline", backlog.Offline),
			}
			if backlog.Failure != nil {
				fields = append(fields, util.F("blocked_by", backlog.Failure.Error()))
			}
			util.LogWarn("Write queued behind pending actions", fields...)
		} else {
			util.LogWarn("Service unreachable, write queued",
				util.F("action", op.name),
				util.F("action_id", action.ActionID),
				util.F("error", sendErr.Error()))
		}
		return WriteResult{Status: StatusQueued, ActionID: action.ActionID}, nil

	default:
		util.LogError("Write rejected",
			util.F("action", op.name),
			util.F("user", userID),
			util.F("error", sendErr.Error()))
		return WriteResult{}, fmt.Errorf("failed to send %s: %w", op.name, sendErr)
	}
}

// drain replays the queue ahead of a new write. The report's Remaining is
// the number of actions still waiting afterwards.
func (t *Tracker) drain(ctx context.Context) (queue.Report, error) {
	actions, err := t.store.QueuedActions()
	if err != nil {
		return queue.Report{}, err
	}
	if len(actions) == 0 {
		return queue.Report{}, nil
	}
	return t.Sync(ctx, t.policy())
}

func (t *Tracker) policy() queue.FailurePolicy {
	return queue.FailurePolicy(t.config.ReplayPolicy)
}

func (t *Tracker) today() calendar.Date {
	return calendar.In(t.clock.Now(), t.clock.Location())
}
