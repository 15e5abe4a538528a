package store

import (
	"fmt"

	"github.com/penwyp/go-health-monitor/internal/core/calendar"
	"github.com/penwyp/go-health-monitor/internal/core/model"
)

// Metadata returns a copy of the cached metadata.
func (s *Store) Metadata() (*model.Metadata, error) {
	var out *model.Metadata
	err := s.read(func() error {
		out = s.metadata.Clone()
		return nil
	})
	return out, err
}

// UpdateMetadata merges a partial update.
func (s *Store) UpdateMetadata(patch model.MetadataPatch) error {
	return s.write(func() error {
		patch.Apply(s.metadata)
		return nil
	})
}

// ReplaceMetadata swaps the cached metadata for a fresh copy from the service.
func (s *Store) ReplaceMetadata(m *model.Metadata) error {
	return s.write(func() error {
		s.metadata = m.Clone()
		return nil
	})
}

// AddBodyRecord appends a body measurement as is.
func (s *Store) AddBodyRecord(rec model.BodyRecord) error {
	return s.write(func() error {
		s.metadata.BodyRecords = append(s.metadata.BodyRecords, rec)
		return nil
	})
}

// UpsertDailyWeight records today's weight and makes it the current weight.
// The record created today is updated when there is one; otherwise a record
// with newID is added. The resulting record is returned.
func (s *Store) UpsertDailyWeight(value float64, newID string) (model.BodyRecord, bool, error) {
	var (
		result  model.BodyRecord
		created bool
	)

	err := s.write(func() error {
		now := s.clock.Now()
		records, isNew, err := s.agg.UpsertDailyWeight(s.metadata.BodyRecords, value, newID, now)
		if err != nil {
			return err
		}

		today := calendar.In(now, s.clock.Location())
		for _, r := range records {
			if r.Type != model.BodyTypeWeight {
				continue
			}
			t, err := model.ParseTimestamp(r.CreatedAt, s.clock.Location())
			if err == nil && calendar.In(t, s.clock.Location()) == today {
				result = r
				break
			}
		}

		s.metadata.BodyRecords = records
		s.metadata.CurrentWeight = value
		created = isNew
		return nil
	})
	return result, created, err
}

// AddFastingRecord appends a completed fasting session.
func (s *Store) AddFastingRecord(rec model.FastingRecord) error {
	if rec.StartTimeStamp <= 0 || rec.EndTimeStamp < rec.StartTimeStamp {
		return model.Invalid("fasting", rec.ID, "endTimeStamp", "does not close the session")
	}
	return s.write(func() error {
		s.metadata.FastingRecords = append(s.metadata.FastingRecords, rec)
		return nil
	})
}

// AddWaterIntake adds a drink to its day, creating the intake day with
// log.IntakeID when the day has none yet. The updated day is returned.
func (s *Store) AddWaterIntake(log model.WaterLog) (model.IntakeRecord, error) {
	if _, err := calendar.ParseKey(log.Date); err != nil {
		return model.IntakeRecord{}, model.Invalid("water", log.IntakeID, "date", fmt.Sprintf("%q is not YYYY-MM-DD", log.Date))
	}
	if log.Drink.Value <= 0 {
		return model.IntakeRecord{}, model.Invalid("water", log.Drink.ID, "value", "must be > 0")
	}

	var out model.IntakeRecord
	err := s.write(func() error {
		for i := range s.metadata.WaterRecords {
			rec := &s.metadata.WaterRecords[i]
			if rec.Date != log.Date {
				continue
			}
			rec.Value += log.Drink.Value
			if log.Goal > 0 {
				rec.Goal = log.Goal
			}
			rec.Times = append(rec.Times, log.Drink)
			out = *rec
			return nil
		}

		out = model.IntakeRecord{
			ID:    log.IntakeID,
			Date:  log.Date,
			Value: log.Drink.Value,
			Goal:  log.Goal,
			Times: []model.IntakeTime{log.Drink},
		}
		s.metadata.WaterRecords = append(s.metadata.WaterRecords, out)
		return nil
	})
	out.Times = append([]model.IntakeTime(nil), out.Times...)
	return out, err
}

// Session returns the signed-in session, nil when signed out.
func (s *Store) Session() (*model.Session, error) {
	var out *model.Session
	err := s.read(func() error {
		if s.session != nil {
			copied := *s.session
			out = &copied
		}
		return nil
	})
	return out, err
}

// UpdateSession replaces the session; nil signs out.
func (s *Store) UpdateSession(session *model.Session) error {
	return s.write(func() error {
		if session == nil {
			s.session = nil
			return nil
		}
		copied := *session
		s.session = &copied
		return nil
	})
}
