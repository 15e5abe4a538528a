// Package storage is the SQLite persistence of the reference backend.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/penwyp/go-health-monitor/internal/core/calendar"
	"github.com/penwyp/go-health-monitor/internal/core/model"
)

// ErrNotFound is returned for an unknown user.
var ErrNotFound = errors.New("not found")

type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer keeps SQLite from returning SQLITE_BUSY under concurrent requests.
	db.SetMaxOpenConns(1)

	storage := &SQLiteStorage{db: db}
	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) initSchema() error {
	schema := `
    PRAGMA foreign_keys = ON;

    CREATE TABLE IF NOT EXISTS users (
        id TEXT PRIMARY KEY,
        current_weight REAL NOT NULL DEFAULT 0,
        height REAL NOT NULL DEFAULT 0,
        created_at TEXT NOT NULL
    );

    CREATE TABLE IF NOT EXISTS body_records (
        id TEXT PRIMARY KEY,
        user_id TEXT NOT NULL,
        type TEXT NOT NULL,
        value REAL NOT NULL,
        day TEXT NOT NULL,
        created_at TEXT NOT NULL,
        updated_at TEXT NOT NULL,
        FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
    );

    CREATE TABLE IF NOT EXISTS water_records (
        id TEXT PRIMARY KEY,
        user_id TEXT NOT NULL,
        date TEXT NOT NULL,
        value REAL NOT NULL,
        goal REAL NOT NULL,
        UNIQUE (user_id, date),
        FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
    );

    CREATE TABLE IF NOT EXISTS water_times (
        id TEXT PRIMARY KEY,
        intake_id TEXT NOT NULL,
        value REAL NOT NULL,
        created_at TEXT NOT NULL,
        FOREIGN KEY (intake_id) REFERENCES water_records(id) ON DELETE CASCADE
    );

    CREATE TABLE IF NOT EXISTS fasting_records (
        id TEXT PRIMARY KEY,
        user_id TEXT NOT NULL,
        start_ts INTEGER NOT NULL,
        end_ts INTEGER NOT NULL,
        plan_name TEXT NOT NULL,
        created_at TEXT NOT NULL,
        FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
    );

    CREATE INDEX IF NOT EXISTS idx_body_user_day ON body_records(user_id, type, day);
    CREATE INDEX IF NOT EXISTS idx_water_times_intake ON water_times(intake_id);
    CREATE INDEX IF NOT EXISTS idx_fasting_user ON fasting_records(user_id, start_ts);
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

func ensureUser(tx *sql.Tx, userID string, now time.Time) error {
	_, err := tx.Exec(`INSERT OR IGNORE INTO users (id, created_at) VALUES (?, ?)`,
		userID, now.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// UpsertWeight applies the one-weight-per-day rule: the weight record of
// update.CurrentDate is updated, or a record with update.NewBodyRecID is
// created. The user's current weight follows.
func (s *SQLiteStorage) UpsertWeight(userID string, update model.WeightUpdate, now time.Time) (model.BodyRecord, error) {
	if update.CurrentWeight <= 0 {
		return model.BodyRecord{}, model.Invalid("weight", update.NewBodyRecID, "currentWeight", "must be > 0")
	}
	if _, err := calendar.ParseKey(update.CurrentDate); err != nil {
		return model.BodyRecord{}, model.Invalid("weight", update.NewBodyRecID, "currentDate", "is not YYYY-MM-DD")
	}
	if update.NewBodyRecID == "" {
		return model.BodyRecord{}, model.Invalid("weight", "", "newBodyRecId", "is missing")
	}
	createdAt, err := weightCreatedAt(update)
	if err != nil {
		return model.BodyRecord{}, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return model.BodyRecord{}, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := ensureUser(tx, userID, now); err != nil {
		return model.BodyRecord{}, err
	}

	stamp := now.UTC().Format(time.RFC3339)
	rec := model.BodyRecord{Type: model.BodyTypeWeight, Value: update.CurrentWeight, UpdatedAt: stamp}

	err = tx.QueryRow(`
        SELECT id, created_at FROM body_records
        WHERE user_id = ? AND type = ? AND day = ?
        ORDER BY created_at LIMIT 1
    `, userID, model.BodyTypeWeight, update.CurrentDate).Scan(&rec.ID, &rec.CreatedAt)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		rec.ID = update.NewBodyRecID
		rec.CreatedAt = createdAt
		_, err = tx.Exec(`
            INSERT INTO body_records (id, user_id, type, value, day, created_at, updated_at)
            VALUES (?, ?, ?, ?, ?, ?, ?)
        `, rec.ID, userID, rec.Type, rec.Value, update.CurrentDate, rec.CreatedAt, rec.UpdatedAt)
		if err != nil {
			return model.BodyRecord{}, fmt.Errorf("failed to insert body record: %w", err)
		}
	case err != nil:
		return model.BodyRecord{}, fmt.Errorf("failed to query body records: %w", err)
	default:
		_, err = tx.Exec(`UPDATE body_records SET value = ?, updated_at = ? WHERE id = ?`,
			rec.Value, rec.UpdatedAt, rec.ID)
		if err != nil {
			return model.BodyRecord{}, fmt.Errorf("failed to update body record: %w", err)
		}
	}

	if _, err := tx.Exec(`UPDATE users SET current_weight = ? WHERE id = ?`, update.CurrentWeight, userID); err != nil {
		return model.BodyRecord{}, fmt.Errorf("failed to update current weight: %w", err)
	}

	return rec, tx.Commit()
}

// weightCreatedAt is the creation time of a new weight record: the client's
// stamp, or noon UTC of CurrentDate so the record stays on its day in any
// timezone within 12 hours of UTC.
func weightCreatedAt(update model.WeightUpdate) (string, error) {
	if update.CreatedAt == "" {
		day, err := calendar.ParseKey(update.CurrentDate)
		if err != nil {
			return "", model.Invalid("weight", update.NewBodyRecID, "currentDate", "is not YYYY-MM-DD")
		}
		return day.Start(time.UTC).Add(12 * time.Hour).Format(time.RFC3339), nil
	}
	t, err := model.ParseTimestamp(update.CreatedAt, time.UTC)
	if err != nil {
		return "", model.Invalid("weight", update.NewBodyRecID, "createdAt", "is not a timestamp")
	}
	return t.UTC().Format(time.RFC3339), nil
}

// AddWater records a drink. A drink id already stored is ignored, so a
// replayed write does not count twice.
func (s *SQLiteStorage) AddWater(userID string, log model.WaterLog, now time.Time) (bool, error) {
	if _, err := calendar.ParseKey(log.Date); err != nil {
		return false, model.Invalid("water", log.IntakeID, "date", "is not YYYY-MM-DD")
	}
	if log.Drink.ID == "" || log.Drink.Value <= 0 {
		return false, model.Invalid("water", log.Drink.ID, "drink", "needs an id and a positive value")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := ensureUser(tx, userID, now); err != nil {
		return false, err
	}

	var intakeID string
	err = tx.QueryRow(`SELECT id FROM water_records WHERE user_id = ? AND date = ?`, userID, log.Date).Scan(&intakeID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		intakeID = log.IntakeID
		if intakeID == "" {
			intakeID = log.Drink.ID
		}
		_, err = tx.Exec(`INSERT INTO water_records (id, user_id, date, value, goal) VALUES (?, ?, ?, 0, ?)`,
			intakeID, userID, log.Date, log.Goal)
		if err != nil {
			return false, fmt.Errorf("failed to insert water record: %w", err)
		}
	case err != nil:
		return false, fmt.Errorf("failed to query water records: %w", err)
	}

	createdAt := log.Drink.CreatedAt
	if createdAt == "" {
		createdAt = now.UTC().Format(time.RFC3339)
	}
	res, err := tx.Exec(`INSERT OR IGNORE INTO water_times (id, intake_id, value, created_at) VALUES (?, ?, ?, ?)`,
		log.Drink.ID, intakeID, log.Drink.Value, createdAt)
	if err != nil {
		return false, fmt.Errorf("failed to insert drink: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}

	if inserted > 0 {
		query := `UPDATE water_records SET value = value + ? WHERE id = ?`
		args := []interface{}{log.Drink.Value, intakeID}
		if log.Goal > 0 {
			query = `UPDATE water_records SET value = value + ?, goal = ? WHERE id = ?`
			args = []interface{}{log.Drink.Value, log.Goal, intakeID}
		}
		if _, err := tx.Exec(query, args...); err != nil {
			return false, fmt.Errorf("failed to update water record: %w", err)
		}
	}

	return inserted > 0, tx.Commit()
}

// AddFasting stores a completed session. A session id already stored is ignored.
func (s *SQLiteStorage) AddFasting(userID string, rec model.FastingRecord, now time.Time) (bool, error) {
	if rec.ID == "" {
		return false, model.Invalid("fasting", "", "id", "is missing")
	}
	if rec.StartTimeStamp <= 0 || rec.EndTimeStamp < rec.StartTimeStamp {
		return false, model.Invalid("fasting", rec.ID, "endTimeStamp", "does not close the session")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := ensureUser(tx, userID, now); err != nil {
		return false, err
	}

	createdAt := rec.CreatedAt
	if createdAt == "" {
		createdAt = now.UTC().Format(time.RFC3339)
	}
	res, err := tx.Exec(`
        INSERT OR IGNORE INTO fasting_records (id, user_id, start_ts, end_ts, plan_name, created_at)
        VALUES (?, ?, ?, ?, ?, ?)
    `, rec.ID, userID, rec.StartTimeStamp, rec.EndTimeStamp, rec.PlanName, createdAt)
	if err != nil {
		return false, fmt.Errorf("failed to insert fasting record: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}

	return inserted > 0, tx.Commit()
}

// SetHeight stores the user's height in centimetres.
func (s *SQLiteStorage) SetHeight(userID string, heightCm float64, now time.Time) error {
	if heightCm <= 0 {
		return model.Invalid("body", userID, "height", "must be > 0")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := ensureUser(tx, userID, now); err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE users SET height = ? WHERE id = ?`, heightCm, userID); err != nil {
		return fmt.Errorf("failed to update height: %w", err)
	}
	return tx.Commit()
}

// Metadata loads everything stored for userID.
func (s *SQLiteStorage) Metadata(userID string) (*model.Metadata, error) {
	md := &model.Metadata{
		WaterRecords:   []model.IntakeRecord{},
		BodyRecords:    []model.BodyRecord{},
		FastingRecords: []model.FastingRecord{},
	}

	err := s.db.QueryRow(`SELECT current_weight, height FROM users WHERE id = ?`, userID).
		Scan(&md.CurrentWeight, &md.Height)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if err := s.loadBodyRecords(userID, md); err != nil {
		return nil, err
	}
	if err := s.loadWaterRecords(userID, md); err != nil {
		return nil, err
	}
	if err := s.loadFastingRecords(userID, md); err != nil {
		return nil, err
	}
	return md, nil
}

func (s *SQLiteStorage) loadBodyRecords(userID string, md *model.Metadata) error {
	rows, err := s.db.Query(`
        SELECT id, type, value, created_at, updated_at
        FROM body_records
        WHERE user_id = ?
        ORDER BY created_at, id
    `, userID)
	if err != nil {
		return fmt.Errorf("failed to query body records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec model.BodyRecord
		if err := rows.Scan(&rec.ID, &rec.Type, &rec.Value, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return fmt.Errorf("failed to scan body record: %w", err)
		}
		md.BodyRecords = append(md.BodyRecords, rec)
	}
	return rows.Err()
}

func (s *SQLiteStorage) loadWaterRecords(userID string, md *model.Metadata) error {
	rows, err := s.db.Query(`
        SELECT id, date, value, goal
        FROM water_records
        WHERE user_id = ?
        ORDER BY date
    `, userID)
	if err != nil {
		return fmt.Errorf("failed to query water records: %w", err)
	}

	for rows.Next() {
		var rec model.IntakeRecord
		if err := rows.Scan(&rec.ID, &rec.Date, &rec.Value, &rec.Goal); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan water record: %w", err)
		}
		md.WaterRecords = append(md.WaterRecords, rec)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	// The pool has a single connection, so drinks are loaded after the
	// outer rows are closed.
	for i := range md.WaterRecords {
		if err := s.loadDrinks(&md.WaterRecords[i]); err != nil {
			return fmt.Errorf("failed to load drinks for %s: %w", md.WaterRecords[i].ID, err)
		}
	}
	return nil
}

func (s *SQLiteStorage) loadDrinks(rec *model.IntakeRecord) error {
	rows, err := s.db.Query(`
        SELECT id, value, created_at
        FROM water_times
        WHERE intake_id = ?
        ORDER BY created_at, id
    `, rec.ID)
	if err != nil {
		return fmt.Errorf("failed to query drinks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var drink model.IntakeTime
		if err := rows.Scan(&drink.ID, &drink.Value, &drink.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan drink: %w", err)
		}
		rec.Times = append(rec.Times, drink)
	}
	return rows.Err()
}

func (s *SQLiteStorage) loadFastingRecords(userID string, md *model.Metadata) error {
	rows, err := s.db.Query(`
        SELECT id, start_ts, end_ts, plan_name, created_at
        FROM fasting_records
        WHERE user_id = ?
        ORDER BY start_ts
    `, userID)
	if err != nil {
		return fmt.Errorf("failed to query fasting records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec model.FastingRecord
		if err := rows.Scan(&rec.ID, &rec.StartTimeStamp, &rec.EndTimeStamp, &rec.PlanName, &rec.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan fasting record: %w", err)
		}
		md.FastingRecords = append(md.FastingRecords, rec)
	}
	return rows.Err()
}
