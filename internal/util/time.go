package util

import (
	"fmt"
	"sync"
	"time"
)

// Clock is the time source used by everything that needs "now" or "today"
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

// TimeProvider is the process clock; it reports wall time in the configured timezone
type TimeProvider struct {
	location *time.Location
	mu       sync.RWMutex
}

var (
	globalTimeProvider *TimeProvider
	mu                 sync.Mutex
)

// InitializeTimeProvider initializes the global time provider with the specified timezone
func InitializeTimeProvider(timezone string) error {
	mu.Lock()
	defer mu.Unlock()

	provider := &TimeProvider{}
	if err := provider.SetTimezone(timezone); err != nil {
		return err
	}

	globalTimeProvider = provider
	return nil
}

// GetTimeProvider returns the global time provider, defaulting to Local
func GetTimeProvider() *TimeProvider {
	mu.Lock()
	initialized := globalTimeProvider != nil
	mu.Unlock()

	if !initialized {
		_ = InitializeTimeProvider("Local")
	}

	mu.Lock()
	defer mu.Unlock()
	return globalTimeProvider
}

// SetTimezone updates the timezone for the time provider
func (tp *TimeProvider) SetTimezone(timezone string) error {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	loc := time.Local
	if timezone != "" && timezone != "Local" {
		l, err := time.LoadLocation(timezone)
		if err != nil {
			return fmt.Errorf("invalid timezone '%s': %w\nValid examples: Local, UTC, America/New_York, Asia/Shanghai, Europe/London, Australia/Sydney", timezone, err)
		}
		loc = l
	}
	tp.location = loc
	return nil
}

// Location returns the configured timezone
func (tp *TimeProvider) Location() *time.Location {
	tp.mu.RLock()
	defer tp.mu.RUnlock()
	if tp.location == nil {
		return time.Local
	}
	return tp.location
}

// Now returns the current time in the configured timezone
func (tp *TimeProvider) Now() time.Time {
	return time.Now().In(tp.Location())
}

// In converts a time to the configured timezone
func (tp *TimeProvider) In(t time.Time) time.Time {
	return t.In(tp.Location())
}

// Format formats a time according to the layout in the configured timezone
func (tp *TimeProvider) Format(t time.Time, layout string) string {
	return t.In(tp.Location()).Format(layout)
}

// FixedClock always reports the same instant. Used by tests and replays.
type FixedClock struct {
	At  time.Time
	Loc *time.Location
}

func (c FixedClock) Now() time.Time {
	return c.At.In(c.Location())
}

func (c FixedClock) Location() *time.Location {
	if c.Loc != nil {
		return c.Loc
	}
	if c.At.Location() != nil {
		return c.At.Location()
	}
	return time.Local
}
