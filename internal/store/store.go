// Package store persists the application state: the signed-in session, the
// cached metadata and the offline action queue.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-health-monitor/internal/core/model"
	"github.com/penwyp/go-health-monitor/internal/core/queue"
	"github.com/penwyp/go-health-monitor/internal/data/aggregator"
	"github.com/penwyp/go-health-monitor/internal/util"
)

// FileName is the state file inside the data directory.
const FileName = "state.json"

// State is the on-disk document.
type State struct {
	Session       *model.Session       `json:"session,omitempty"`
	Metadata      *model.Metadata      `json:"metadata"`
	QueuedActions []model.QueuedAction `json:"queuedActions"`
}

// Options configure a Store.
type Options struct {
	QueueCapacity int
	Clock         util.Clock
}

// Store is the process-wide application state. Every method reloads the file
// when another process has replaced it, and every write is persisted before
// the method returns. Writers in different processes are serialised with an
// advisory lock.
type Store struct {
	path  string
	lock  *fileLock
	clock util.Clock
	agg   *aggregator.Aggregator

	mu       sync.Mutex
	session  *model.Session
	metadata *model.Metadata
	queue    *queue.Queue
	stamp    util.FileStamp
}

// Open loads the state file at path, creating its directory when needed.
// A missing file starts an empty state.
func Open(path string, opts Options) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	lock, err := openLock(path + ".lock")
	if err != nil {
		return nil, err
	}

	clock := opts.Clock
	if clock == nil {
		clock = util.GetTimeProvider()
	}

	s := &Store{
		path:     path,
		lock:     lock,
		clock:    clock,
		agg:      aggregator.NewAggregator(clock.Location()),
		metadata: &model.Metadata{},
		queue:    queue.NewQueue(opts.QueueCapacity),
	}

	if err := s.lock.shared(); err != nil {
		lock.close()
		return nil, err
	}
	defer s.lock.unlock()

	if err := s.reload(); err != nil {
		lock.close()
		return nil, err
	}

	util.LogDebug("Opened store",
		util.F("path", path),
		util.F("queued", s.queue.Len()))
	return s, nil
}

// Path returns the state file path.
func (s *Store) Path() string {
	return s.path
}

// Close releases the lock file.
func (s *Store) Close() error {
	return s.lock.close()
}

// Stale reports whether the file on disk changed since this store last read
// or wrote it.
func (s *Store) Stale() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamp, err := util.StatFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return !s.stamp.IsZero(), nil
	}
	if err != nil {
		return false, err
	}
	return stamp != s.stamp, nil
}

// read runs fn under a shared lock with fresh state.
func (s *Store) read(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.shared(); err != nil {
		return err
	}
	defer s.lock.unlock()

	if err := s.refresh(); err != nil {
		return err
	}
	return fn()
}

// write runs fn under an exclusive lock with fresh state and persists the
// result. When fn fails nothing is saved and the in-memory state is reloaded.
func (s *Store) write(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.exclusive(); err != nil {
		return err
	}
	defer s.lock.unlock()

	if err := s.refresh(); err != nil {
		return err
	}
	if err := fn(); err != nil {
		if reloadErr := s.reload(); reloadErr != nil {
			util.LogWarnf("Failed to restore store after error: %v", reloadErr)
		}
		return err
	}
	return s.save()
}

// refresh reloads the file when its stamp differs from the one last seen.
func (s *Store) refresh() error {
	stamp, err := util.StatFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat store: %w", err)
	}
	if stamp == s.stamp {
		return nil
	}
	util.LogDebug("Store changed on disk, reloading", util.F("path", s.path))
	return s.reload()
}

func (s *Store) reload() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.session = nil
		s.metadata = &model.Metadata{}
		s.stamp = util.FileStamp{}
		return s.queue.Replace(nil)
	}
	if err != nil {
		return fmt.Errorf("failed to read store: %w", err)
	}

	var state State
	if len(data) > 0 {
		if err := sonic.Unmarshal(data, &state); err != nil {
			return fmt.Errorf("failed to parse store %s: %w", s.path, err)
		}
	}
	if state.Metadata == nil {
		state.Metadata = &model.Metadata{}
	}
	if err := s.queue.Replace(state.QueuedActions); err != nil {
		return fmt.Errorf("failed to load queued actions: %w", err)
	}

	s.session = state.Session
	s.metadata = state.Metadata
	stamp, err := util.StatFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to stat store: %w", err)
	}
	s.stamp = stamp
	return nil
}

// save writes the state atomically: temp file, then rename.
func (s *Store) save() error {
	state := State{
		Session:       s.session,
		Metadata:      s.metadata,
		QueuedActions: s.queue.Snapshot(),
	}

	data, err := sonic.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store: %w", err)
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write store: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		return fmt.Errorf("failed to replace store: %w", err)
	}

	stamp, err := util.StatFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to stat store: %w", err)
	}
	s.stamp = stamp
	return nil
}
