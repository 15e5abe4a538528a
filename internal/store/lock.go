package store

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// fileLock is an advisory flock on a sidecar file. The state file itself is
// replaced on every write, so it cannot carry the lock.
type fileLock struct {
	file *os.File
}

func openLock(path string) (*fileLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}
	return &fileLock{file: f}, nil
}

func (l *fileLock) shared() error {
	return l.flock(unix.LOCK_SH)
}

func (l *fileLock) exclusive() error {
	return l.flock(unix.LOCK_EX)
}

func (l *fileLock) unlock() {
	_ = l.flock(unix.LOCK_UN)
}

func (l *fileLock) flock(how int) error {
	for {
		err := unix.Flock(int(l.file.Fd()), how)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to lock store: %w", err)
		}
		return nil
	}
}

func (l *fileLock) close() error {
	return l.file.Close()
}
