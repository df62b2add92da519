package core

import (
	"time"
)

// RecordFilter selects records by their time
type RecordFilter func(t time.Time) bool

// Storage defines the persistence operations for tracker records
type Storage interface {
	// CreateLog stores a new log entry and assigns its ID
	CreateLog(entry *LogEntry) error

	// Logs returns log entries in ascending time order
	Logs(filters ...RecordFilter) ([]LogEntry, error)

	// LastLog returns the most recently created log entry
	LastLog() (LogEntry, error)

	// CreateJab stores a new jab and assigns its ID
	CreateJab(jab *Jab) error

	// Jabs returns jabs in ascending time order
	Jabs(filters ...RecordFilter) ([]Jab, error)

	// LastJab returns the most recently created jab
	LastJab() (Jab, error)

	// CreateMeasurement stores a new body measurement and assigns its ID
	CreateMeasurement(measurement *BodyMeasurement) error

	// Measurements returns body measurements in ascending time order
	Measurements(filters ...RecordFilter) ([]BodyMeasurement, error)

	Close() error
}

// WithSince keeps records at or after since
func WithSince(since time.Time) RecordFilter {
	return func(t time.Time) bool {
		return !t.Before(since)
	}
}

// WithUntil keeps records at or before until
func WithUntil(until time.Time) RecordFilter {
	return func(t time.Time) bool {
		return !t.After(until)
	}
}

// Match reports whether t passes every filter
func Match(t time.Time, filters ...RecordFilter) bool {
	for _, filter := range filters {
		if !filter(t) {
			return false
		}
	}
	return true
}
