package store

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/penwyp/go-health-monitor/internal/util"
)

// ChangeEvent reports a change to the watched state file.
type ChangeEvent struct {
	Path      string
	Operation string
}

// Watcher notifies when the state file is written or replaced. It watches the
// parent directory because atomic writes rename a new file over the old one.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	events  chan ChangeEvent
	done    chan struct{}
}

// NewWatcher starts watching path.
func NewWatcher(path string) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, err
	}

	w := &Watcher{
		watcher: watcher,
		path:    abs,
		events:  make(chan ChangeEvent, 1),
		done:    make(chan struct{}),
	}

	go w.processEvents()

	return w, nil
}

func (w *Watcher) processEvents() {
	defer close(w.done)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			// One pending notification is enough; readers reload everything.
			select {
			case w.events <- ChangeEvent{Path: event.Name, Operation: event.Op.String()}:
			default:
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			util.LogError("Store watch error: " + err.Error())
		}
	}
}

// Events delivers change notifications.
func (w *Watcher) Events() <-chan ChangeEvent {
	return w.events
}

// Close stops watching.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}
