package tracker

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/penwyp/go-health-monitor/internal/core/calendar"
	"github.com/penwyp/go-health-monitor/internal/core/queue"
	"github.com/penwyp/go-health-monitor/internal/store"
)

// Config contains configuration for the tracker
type Config struct {
	// Storage
	DataDir string

	// Service
	ServerURL      string
	UserID         string
	RequestTimeout time.Duration

	// Display settings
	Timezone  string
	ChartDays int

	// Offline queue
	QueueCapacity int
	ReplayPolicy  string // retry, drop, requeue
	SyncInterval  time.Duration

	// Defaults for new records
	WaterGoal float64 // millilitres per day
}

// Validate fills defaults and rejects invalid settings
func (c *Config) Validate() error {
	if c.DataDir == "" {
		c.DataDir = "~/.go-health-monitor"
	}
	if c.ServerURL == "" {
		c.ServerURL = "http://127.0.0.1:8080"
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 5 * time.Second
	}
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	if c.ChartDays == 0 {
		c.ChartDays = calendar.DefaultRangeDays
	}
	if c.QueueCapacity == 0 {
		c.QueueCapacity = queue.DefaultCapacity
	}
	if c.SyncInterval == 0 {
		c.SyncInterval = 30 * time.Second
	}
	if c.WaterGoal == 0 {
		c.WaterGoal = 2000
	}

	policy, err := queue.ParsePolicy(c.ReplayPolicy)
	if err != nil {
		return err
	}
	c.ReplayPolicy = string(policy)

	if c.ChartDays < 0 {
		return fmt.Errorf("chart days must be >= 0, got %d", c.ChartDays)
	}
	if c.QueueCapacity < 0 {
		return fmt.Errorf("queue capacity must be > 0, got %d", c.QueueCapacity)
	}
	if c.WaterGoal < 0 {
		return fmt.Errorf("water goal must be > 0, got %g", c.WaterGoal)
	}
	return nil
}

// StorePath is the state file inside DataDir
func (c *Config) StorePath() string {
	return filepath.Join(c.DataDir, store.FileName)
}
