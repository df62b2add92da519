package vitaltrend

import (
	"context"
	"fmt"
	"time"

	"github.com/raykavin/vitaltrend/pkg/core"
	"github.com/samber/lo"
)

// Records is a batch of tracker records to import
type Records struct {
	Logs         []core.LogEntry
	Jabs         []core.Jab
	Measurements []core.BodyMeasurement
}

// Len returns the number of records in the batch
func (r Records) Len() int {
	return len(r.Logs) + len(r.Jabs) + len(r.Measurements)
}

// ImportResult counts the records stored and skipped by Import
type ImportResult struct {
	Logs         int
	Jabs         int
	Measurements int
	Skipped      int
}

// Import stores the records, skipping those whose time, at second
// precision, is already present for their kind. progress, when set, is
// called once per record.
func Import(ctx context.Context, store core.Storage, records Records, progress func()) (ImportResult, error) {
	var result ImportResult
	if progress == nil {
		progress = func() {}
	}

	existingLogs, err := store.Logs()
	if err != nil {
		return result, fmt.Errorf("failed to load logs: %w", err)
	}
	existingJabs, err := store.Jabs()
	if err != nil {
		return result, fmt.Errorf("failed to load jabs: %w", err)
	}
	existingMeasurements, err := store.Measurements()
	if err != nil {
		return result, fmt.Errorf("failed to load body measurements: %w", err)
	}

	logTimes := timeSet(existingLogs, func(e core.LogEntry) time.Time { return e.Time })
	jabTimes := timeSet(existingJabs, func(j core.Jab) time.Time { return j.Time })
	measurementTimes := timeSet(existingMeasurements, func(m core.BodyMeasurement) time.Time { return m.Time })

	for _, entry := range records.Logs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if !logTimes.add(entry.Time) {
			result.Skipped++
		} else {
			entry.ID = 0
			if err := store.CreateLog(&entry); err != nil {
				return result, fmt.Errorf("failed to store log of %s: %w", core.Label(entry.Time), err)
			}
			result.Logs++
		}
		progress()
	}

	for _, jab := range records.Jabs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if !jabTimes.add(jab.Time) {
			result.Skipped++
		} else {
			jab.ID = 0
			if err := store.CreateJab(&jab); err != nil {
				return result, fmt.Errorf("failed to store jab of %s: %w", core.Label(jab.Time), err)
			}
			result.Jabs++
		}
		progress()
	}

	for _, measurement := range records.Measurements {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if !measurementTimes.add(measurement.Time) {
			result.Skipped++
		} else {
			measurement.ID = 0
			if err := store.CreateMeasurement(&measurement); err != nil {
				return result, fmt.Errorf("failed to store body measurement of %s: %w", core.Label(measurement.Time), err)
			}
			result.Measurements++
		}
		progress()
	}

	return result, nil
}

// seconds holds record times as unix seconds
type seconds map[int64]struct{}

func timeSet[T any](records []T, timeOf func(T) time.Time) seconds {
	return lo.SliceToMap(records, func(record T) (int64, struct{}) {
		return timeOf(record).Unix(), struct{}{}
	})
}

// add records t and reports whether it was absent
func (s seconds) add(t time.Time) bool {
	if _, ok := s[t.Unix()]; ok {
		return false
	}
	s[t.Unix()] = struct{}{}
	return true
}
