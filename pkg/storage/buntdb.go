package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/raykavin/vitaltrend/pkg/core"
	"github.com/tidwall/buntdb"
)

// collection is one record kind stored under a key prefix
type collection struct {
	prefix string
	index  string
	lastID atomic.Int64
}

func (c *collection) key(id int64) string {
	// zero padded so key order is id order
	return fmt.Sprintf("%s:%020d", c.prefix, id)
}

func (c *collection) pattern() string {
	return c.prefix + ":*"
}

// BuntStorage implements the core.Storage interface using BuntDB
type BuntStorage struct {
	db           *buntdb.DB
	logs         *collection
	jabs         *collection
	measurements *collection
}

// FromMemory creates an in-memory storage
func FromMemory() (*BuntStorage, error) {
	return NewBuntStorage(":memory:")
}

// FromFile creates a file-based storage
func FromFile(file string) (*BuntStorage, error) {
	return NewBuntStorage(file)
}

// NewBuntStorage creates a new BuntDB storage instance
func NewBuntStorage(sourceFile string) (*BuntStorage, error) {
	db, err := buntdb.Open(sourceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open buntdb: %w", err)
	}

	storage := &BuntStorage{
		db:           db,
		logs:         &collection{prefix: "log", index: "log_time"},
		jabs:         &collection{prefix: "jab", index: "jab_time"},
		measurements: &collection{prefix: "measurement", index: "measurement_time"},
	}

	for _, c := range storage.collections() {
		if err := db.CreateIndex(c.index, c.pattern(), buntdb.IndexJSON("time")); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to create index %s: %w", c.index, err)
		}

		if err := storage.seed(c); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return storage, nil
}

func (b *BuntStorage) collections() []*collection {
	return []*collection{b.logs, b.jabs, b.measurements}
}

// seed restores the id counter from the highest stored id
func (b *BuntStorage) seed(c *collection) error {
	return b.db.View(func(tx *buntdb.Tx) error {
		var parseErr error
		err := tx.DescendKeys(c.pattern(), func(key, _ string) bool {
			id, err := strconv.ParseInt(strings.TrimPrefix(key, c.prefix+":"), 10, 64)
			if err != nil {
				parseErr = fmt.Errorf("invalid key %q: %w", key, err)
				return false
			}
			c.lastID.Store(id)
			return false
		})
		if err != nil {
			return fmt.Errorf("failed to read %s keys: %w", c.prefix, err)
		}
		return parseErr
	})
}

// normalizeTime keeps stored times in UTC at second precision so the time
// index orders them correctly
func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// put assigns the next id through assign and stores the record
func (b *BuntStorage) put(c *collection, record any, assign func(id int64)) error {
	return b.db.Update(func(tx *buntdb.Tx) error {
		id := c.lastID.Add(1)
		assign(id)

		content, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", c.prefix, err)
		}

		if _, _, err = tx.Set(c.key(id), string(content), nil); err != nil {
			return fmt.Errorf("failed to store %s: %w", c.prefix, err)
		}

		return nil
	})
}

// list decodes every record of the collection in time order, keeping those
// whose time passes the filters
func list[T any](b *BuntStorage, c *collection, timeOf func(T) time.Time, filters []core.RecordFilter) ([]T, error) {
	records := make([]T, 0)

	err := b.db.View(func(tx *buntdb.Tx) error {
		var decodeErr error
		err := tx.Ascend(c.index, func(key, value string) bool {
			var record T
			if err := json.Unmarshal([]byte(value), &record); err != nil {
				decodeErr = fmt.Errorf("failed to unmarshal %s: %w", key, err)
				return false
			}

			if core.Match(timeOf(record), filters...) {
				records = append(records, record)
			}
			return true
		})
		if err != nil {
			return fmt.Errorf("failed to iterate over %s records: %w", c.prefix, err)
		}
		return decodeErr
	})

	if err != nil {
		return nil, err
	}

	return records, nil
}

// last decodes the record with the highest id
func last[T any](b *BuntStorage, c *collection) (T, error) {
	var record T
	found := false

	err := b.db.View(func(tx *buntdb.Tx) error {
		var decodeErr error
		err := tx.DescendKeys(c.pattern(), func(key, value string) bool {
			found = true
			decodeErr = json.Unmarshal([]byte(value), &record)
			return false
		})
		if err != nil {
			return err
		}
		return decodeErr
	})

	switch {
	case err != nil:
		return record, fmt.Errorf("failed to read last %s: %w", c.prefix, err)
	case !found:
		return record, ErrNotFound
	default:
		return record, nil
	}
}

// CreateLog stores a new log entry
func (b *BuntStorage) CreateLog(entry *core.LogEntry) error {
	entry.Time = normalizeTime(entry.Time)
	return b.put(b.logs, entry, func(id int64) { entry.ID = id })
}

// Logs retrieves log entries in time order
func (b *BuntStorage) Logs(filters ...core.RecordFilter) ([]core.LogEntry, error) {
	return list(b, b.logs, func(e core.LogEntry) time.Time { return e.Time }, filters)
}

// LastLog returns the log entry created last
func (b *BuntStorage) LastLog() (core.LogEntry, error) {
	return last[core.LogEntry](b, b.logs)
}

// CreateJab stores a new jab
func (b *BuntStorage) CreateJab(jab *core.Jab) error {
	jab.Time = normalizeTime(jab.Time)
	return b.put(b.jabs, jab, func(id int64) { jab.ID = id })
}

// Jabs retrieves jabs in time order
func (b *BuntStorage) Jabs(filters ...core.RecordFilter) ([]core.Jab, error) {
	return list(b, b.jabs, func(j core.Jab) time.Time { return j.Time }, filters)
}

// LastJab returns the jab created last
func (b *BuntStorage) LastJab() (core.Jab, error) {
	return last[core.Jab](b, b.jabs)
}

// CreateMeasurement stores a new body measurement
func (b *BuntStorage) CreateMeasurement(measurement *core.BodyMeasurement) error {
	measurement.Time = normalizeTime(measurement.Time)
	return b.put(b.measurements, measurement, func(id int64) { measurement.ID = id })
}

// Measurements retrieves body measurements in time order
func (b *BuntStorage) Measurements(filters ...core.RecordFilter) ([]core.BodyMeasurement, error) {
	return list(b, b.measurements, func(m core.BodyMeasurement) time.Time { return m.Time }, filters)
}

// Close closes the database connection
func (b *BuntStorage) Close() error {
	if b.db != nil {
		err := b.db.Close()
		if errors.Is(err, buntdb.ErrDatabaseClosed) {
			return nil
		}
		return err
	}
	return nil
}
