package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/penwyp/go-health-monitor/internal/core/model"
	"github.com/penwyp/go-health-monitor/internal/core/queue"
	"github.com/penwyp/go-health-monitor/internal/store"
	"github.com/penwyp/go-health-monitor/internal/util"
)

// QueuedActions lists the writes waiting for replay, head first.
func (t *Tracker) QueuedActions() ([]model.QueuedAction, error) {
	return t.store.QueuedActions()
}

// Sync replays the offline queue with policy. An empty policy uses the
// configured one.
func (t *Tracker) Sync(ctx context.Context, policy queue.FailurePolicy) (queue.Report, error) {
	if policy == "" {
		policy = t.policy()
	}

	replayer := queue.NewReplayer(t.store, t.dispatcher, policy)
	report, err := replayer.Replay(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to replay queue: %w", err)
	}

	if len(report.Outcomes) > 0 {
		util.LogInfo("Replay finished",
			util.F("settled", report.Settled),
			util.F("dropped", report.Dropped),
			util.F("requeued", report.Requeued),
			util.F("remaining", report.Remaining),
			util.F("offline", report.Offline),
			util.F("cancelled", report.Cancelled))
	}
	return report, nil
}

// Pull replaces the cached metadata with the service's copy. It refuses while
// writes are queued, since the service copy does not have them yet.
func (t *Tracker) Pull(ctx context.Context) (*model.Metadata, error) {
	userID, err := t.UserID()
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, fmt.Errorf("no user configured")
	}

	actions, err := t.store.QueuedActions()
	if err != nil {
		return nil, err
	}
	if len(actions) > 0 {
		return nil, fmt.Errorf("%w: %d pending", ErrPendingActions, len(actions))
	}

	md, err := t.service.Metadata(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch metadata: %w", err)
	}
	if err := t.store.ReplaceMetadata(md); err != nil {
		return nil, fmt.Errorf("failed to save metadata: %w", err)
	}
	return md, nil
}

// Watch replays the queue now, whenever another process changes the store
// file, and every interval. onReport receives each result. It returns when
// ctx is done.
func (t *Tracker) Watch(ctx context.Context, interval time.Duration, onReport func(queue.Report, error)) error {
	if interval <= 0 {
		interval = t.config.SyncInterval
	}

	watcher, err := store.NewWatcher(t.store.Path())
	if err != nil {
		return fmt.Errorf("failed to watch store: %w", err)
	}
	defer watcher.Close()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	run := func(reason string) {
		util.LogDebug("Sync triggered", util.F("reason", reason))
		report, err := t.Sync(ctx, "")
		if onReport != nil {
			onReport(report, err)
		}
	}

	run("start")
	for {
		select {
		case <-ctx.Done():
			return nil

		case event := <-watcher.Events():
			// Our own writes leave the store current; only foreign ones count.
			stale, err := t.store.Stale()
			if err != nil {
				util.LogWarn("Failed to check store", util.F("error", err.Error()))
				continue
			}
			if stale {
				run("store " + event.Operation)
			}

		case <-ticker.C:
			run("interval")
		}
	}
}
