// Package fixtures builds health records and store files for tests.
package fixtures

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-health-monitor/internal/core/model"
)

// RecordGenerator builds records with timestamps in a fixed location.
type RecordGenerator struct {
	loc *time.Location
	seq int
}

// NewRecordGenerator creates a generator for loc (UTC when nil).
func NewRecordGenerator(loc *time.Location) *RecordGenerator {
	if loc == nil {
		loc = time.UTC
	}
	return &RecordGenerator{loc: loc}
}

func (g *RecordGenerator) nextID(prefix string) string {
	g.seq++
	return fmt.Sprintf("%s%03d", prefix, g.seq)
}

// At returns a time in the generator's location.
func (g *RecordGenerator) At(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, g.loc)
}

// Weight builds a weight record created at the given time.
func (g *RecordGenerator) Weight(at time.Time, value float64) model.BodyRecord {
	stamp := at.Format(time.RFC3339)
	return model.BodyRecord{
		ID:        g.nextID("br"),
		Value:     value,
		Type:      model.BodyTypeWeight,
		CreatedAt: stamp,
		UpdatedAt: stamp,
	}
}

// Water builds an intake day with one drink per given time.
func (g *RecordGenerator) Water(day string, value, goal float64, drinks ...time.Time) model.IntakeRecord {
	rec := model.IntakeRecord{
		ID:    g.nextID("wr"),
		Date:  day,
		Value: value,
		Goal:  goal,
	}
	if len(drinks) > 0 {
		per := value / float64(len(drinks))
		for _, at := range drinks {
			rec.Times = append(rec.Times, model.IntakeTime{
				ID:        g.nextID("wt"),
				Value:     per,
				CreatedAt: at.Format(time.RFC3339),
			})
		}
	}
	return rec
}

// Fast builds a fasting session created at its end.
func (g *RecordGenerator) Fast(start, end time.Time, plan string) model.FastingRecord {
	return model.FastingRecord{
		ID:             g.nextID("fr"),
		StartTimeStamp: start.UnixMilli(),
		EndTimeStamp:   end.UnixMilli(),
		PlanName:       plan,
		CreatedAt:      end.Format(time.RFC3339),
	}
}

// StoreFile is the on-disk shape written by WriteStoreFile.
type StoreFile struct {
	Session       *model.Session       `json:"session"`
	Metadata      *model.Metadata      `json:"metadata"`
	QueuedActions []model.QueuedAction `json:"queuedActions"`
}

// WriteStoreFile writes a state file the store can load.
func WriteStoreFile(path string, state StoreFile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := sonic.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
