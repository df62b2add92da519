package storage

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/raykavin/vitaltrend/pkg/core"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// clockSeconds is the layout of the stored time of day column
const clockSeconds = "15:04:05"

// logRow maps the logs table of the tracker database
type logRow struct {
	ID          int64  `gorm:"primaryKey"`
	Date        string `gorm:"index"`
	Time        string
	Weight      *float64
	BodyFat     *float64
	Muscle      *float64
	VisceralFat *int64
	Sleep       *float64
	Notes       string
}

func (logRow) TableName() string { return "logs" }

// jabRow maps the jabs table
type jabRow struct {
	ID    int64  `gorm:"primaryKey"`
	Date  string `gorm:"index"`
	Time  string
	Dose  float64
	Notes string
}

func (jabRow) TableName() string { return "jabs" }

// measurementRow maps the body_measurements table
type measurementRow struct {
	ID            int64  `gorm:"primaryKey"`
	Date          string `gorm:"index"`
	Time          string
	UpperArmLeft  *float64
	UpperArmRight *float64
	Chest         *float64
	Waist         *float64
	ThighLeft     *float64
	ThighRight    *float64
	Face          *float64
	Neck          *float64
	Notes         string
}

func (measurementRow) TableName() string { return "body_measurements" }

func splitTime(t time.Time) (date, clock string) {
	t = t.UTC()
	return t.Format(core.DateLayout), t.Format(clockSeconds)
}

func joinTime(date, clock string) (time.Time, error) {
	t, err := time.ParseInLocation(core.DateLayout+" "+clockSeconds, date+" "+clock, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored time %q %q: %w", date, clock, err)
	}
	return t, nil
}

func intPtr(v core.NullFloat) *int64 {
	if !v.Usable() {
		return nil
	}
	i := int64(math.Round(v.Float64))
	return &i
}

func fromIntPtr(v *int64) core.NullFloat {
	if v == nil {
		return core.Null()
	}
	return core.Float(float64(*v))
}

func newLogRow(entry core.LogEntry) logRow {
	date, clock := splitTime(entry.Time)
	return logRow{
		ID:          entry.ID,
		Date:        date,
		Time:        clock,
		Weight:      entry.Weight.Ptr(),
		BodyFat:     entry.BodyFat.Ptr(),
		Muscle:      entry.Muscle.Ptr(),
		VisceralFat: intPtr(entry.VisceralFat),
		Sleep:       entry.Sleep.Ptr(),
		Notes:       entry.Notes,
	}
}

func (r logRow) entry() (core.LogEntry, error) {
	t, err := joinTime(r.Date, r.Time)
	if err != nil {
		return core.LogEntry{}, err
	}
	return core.LogEntry{
		ID:          r.ID,
		Time:        t,
		Weight:      core.FromPtr(r.Weight),
		BodyFat:     core.FromPtr(r.BodyFat),
		Muscle:      core.FromPtr(r.Muscle),
		VisceralFat: fromIntPtr(r.VisceralFat),
		Sleep:       core.FromPtr(r.Sleep),
		Notes:       r.Notes,
	}, nil
}

func newJabRow(jab core.Jab) jabRow {
	date, clock := splitTime(jab.Time)
	return jabRow{ID: jab.ID, Date: date, Time: clock, Dose: jab.Dose, Notes: jab.Notes}
}

func (r jabRow) jab() (core.Jab, error) {
	t, err := joinTime(r.Date, r.Time)
	if err != nil {
		return core.Jab{}, err
	}
	return core.Jab{ID: r.ID, Time: t, Dose: r.Dose, Notes: r.Notes}, nil
}

func newMeasurementRow(m core.BodyMeasurement) measurementRow {
	date, clock := splitTime(m.Time)
	return measurementRow{
		ID:            m.ID,
		Date:          date,
		Time:          clock,
		UpperArmLeft:  m.UpperArmLeft.Ptr(),
		UpperArmRight: m.UpperArmRight.Ptr(),
		Chest:         m.Chest.Ptr(),
		Waist:         m.Waist.Ptr(),
		ThighLeft:     m.ThighLeft.Ptr(),
		ThighRight:    m.ThighRight.Ptr(),
		Face:          m.Face.Ptr(),
		Neck:          m.Neck.Ptr(),
		Notes:         m.Notes,
	}
}

func (r measurementRow) measurement() (core.BodyMeasurement, error) {
	t, err := joinTime(r.Date, r.Time)
	if err != nil {
		return core.BodyMeasurement{}, err
	}
	return core.BodyMeasurement{
		ID:            r.ID,
		Time:          t,
		UpperArmLeft:  core.FromPtr(r.UpperArmLeft),
		UpperArmRight: core.FromPtr(r.UpperArmRight),
		Chest:         core.FromPtr(r.Chest),
		Waist:         core.FromPtr(r.Waist),
		ThighLeft:     core.FromPtr(r.ThighLeft),
		ThighRight:    core.FromPtr(r.ThighRight),
		Face:          core.FromPtr(r.Face),
		Neck:          core.FromPtr(r.Neck),
		Notes:         r.Notes,
	}, nil
}

// SQLStorage implements the core.Storage interface using a SQL database via GORM
type SQLStorage struct {
	db *gorm.DB
}

// FromSQLite opens a SQLite database file with the pure Go driver
func FromSQLite(file string, opts ...gorm.Option) (*SQLStorage, error) {
	return FromSQL(sqlite.Open(file), opts...)
}

// FromSQL creates a new SQL storage instance
func FromSQL(dialect gorm.Dialector, opts ...gorm.Option) (*SQLStorage, error) {
	db, err := gorm.Open(dialect, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&logRow{}, &jabRow{}, &measurementRow{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLStorage{
		db: db,
	}, nil
}

// chronological orders rows as the tracker lists them
func chronological(db *gorm.DB) *gorm.DB {
	return db.Order("date asc").Order("time asc").Order("id asc")
}

// decode converts rows into records and applies the time filters in memory
func decode[R any, T any](rows []R, convert func(R) (T, error), timeOf func(T) time.Time, filters []core.RecordFilter) ([]T, error) {
	records := make([]T, 0, len(rows))
	for _, row := range rows {
		record, err := convert(row)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return lo.Filter(records, func(record T, _ int) bool {
		return core.Match(timeOf(record), filters...)
	}), nil
}

// CreateLog creates a new log entry
func (s *SQLStorage) CreateLog(entry *core.LogEntry) error {
	row := newLogRow(*entry)
	row.ID = 0
	if result := s.db.Create(&row); result.Error != nil {
		return fmt.Errorf("failed to create log: %w", result.Error)
	}

	entry.ID = row.ID
	entry.Time, _ = joinTime(row.Date, row.Time)
	return nil
}

// Logs retrieves log entries in time order
func (s *SQLStorage) Logs(filters ...core.RecordFilter) ([]core.LogEntry, error) {
	var rows []logRow
	if result := chronological(s.db).Find(&rows); result.Error != nil {
		return nil, fmt.Errorf("failed to fetch logs: %w", result.Error)
	}

	return decode(rows, logRow.entry, func(e core.LogEntry) time.Time { return e.Time }, filters)
}

// LastLog returns the log entry with the highest id
func (s *SQLStorage) LastLog() (core.LogEntry, error) {
	var row logRow
	if err := s.last(&row); err != nil {
		return core.LogEntry{}, err
	}
	return row.entry()
}

// CreateJab creates a new jab
func (s *SQLStorage) CreateJab(jab *core.Jab) error {
	row := newJabRow(*jab)
	row.ID = 0
	if result := s.db.Create(&row); result.Error != nil {
		return fmt.Errorf("failed to create jab: %w", result.Error)
	}

	jab.ID = row.ID
	jab.Time, _ = joinTime(row.Date, row.Time)
	return nil
}

// Jabs retrieves jabs in time order
func (s *SQLStorage) Jabs(filters ...core.RecordFilter) ([]core.Jab, error) {
	var rows []jabRow
	if result := chronological(s.db).Find(&rows); result.Error != nil {
		return nil, fmt.Errorf("failed to fetch jabs: %w", result.Error)
	}

	return decode(rows, jabRow.jab, func(j core.Jab) time.Time { return j.Time }, filters)
}

// LastJab returns the jab with the highest id
func (s *SQLStorage) LastJab() (core.Jab, error) {
	var row jabRow
	if err := s.last(&row); err != nil {
		return core.Jab{}, err
	}
	return row.jab()
}

// CreateMeasurement creates a new body measurement
func (s *SQLStorage) CreateMeasurement(measurement *core.BodyMeasurement) error {
	row := newMeasurementRow(*measurement)
	row.ID = 0
	if result := s.db.Create(&row); result.Error != nil {
		return fmt.Errorf("failed to create body measurement: %w", result.Error)
	}

	measurement.ID = row.ID
	measurement.Time, _ = joinTime(row.Date, row.Time)
	return nil
}

// Measurements retrieves body measurements in time order
func (s *SQLStorage) Measurements(filters ...core.RecordFilter) ([]core.BodyMeasurement, error) {
	var rows []measurementRow
	if result := chronological(s.db).Find(&rows); result.Error != nil {
		return nil, fmt.Errorf("failed to fetch body measurements: %w", result.Error)
	}

	return decode(rows, measurementRow.measurement, func(m core.BodyMeasurement) time.Time { return m.Time }, filters)
}

func (s *SQLStorage) last(row any) error {
	result := s.db.Order("id desc").Limit(1).Take(row)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if result.Error != nil {
		return fmt.Errorf("failed to fetch last record: %w", result.Error)
	}
	return nil
}

// Close closes the database connection
func (s *SQLStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	return sqlDB.Close()
}
