package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_NotifiesOnStoreWrite(t *testing.T) {
	path := tempStorePath(t)
	s := openTestStore(t, path, 10)

	w, err := NewWatcher(path)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, s.EnqueueAction(queuedAction("a")))

	select {
	case ev := <-w.Events():
		assert.Equal(t, FileName, filepath.Base(ev.Path))
	case <-time.After(2 * time.Second):
		t.Fatal("no change event for store write")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	path := tempStorePath(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))

	w, err := NewWatcher(path)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "other.json"), []byte("{}"), 0644))

	select {
	case ev := <-w.Events():
		t.Fatalf("unexpected event %v", ev)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_MissingDirectory(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "missing", FileName))
	assert.Error(t, err)
}
