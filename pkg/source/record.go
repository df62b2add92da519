package source

import (
	"fmt"
	"strings"
	"time"

	"github.com/raykavin/vitaltrend/pkg/core"
)

// clockLayouts are the accepted time of day formats, most precise first.
// Fractional seconds are accepted after the seconds.
var clockLayouts = []string{"15:04:05", core.ClockLayout}

// ParseTime combines a YYYY-MM-DD date with a HH:MM[:SS[.ffffff]] time of
// day into a wall clock time carried in UTC. An empty clock means midnight.
func ParseTime(date, clock string) (time.Time, error) {
	day, err := time.ParseInLocation(core.DateLayout, strings.TrimSpace(date), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", ErrInvalidRecord, date)
	}

	clock = strings.TrimSpace(clock)
	if clock == "" {
		return day, nil
	}

	for _, layout := range clockLayouts {
		if t, err := time.ParseInLocation(layout, clock, time.UTC); err == nil {
			return day.Add(time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second), nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: time %q", ErrInvalidRecord, clock)
}

// logRecord is a log as exchanged with the tracker backend
type logRecord struct {
	ID          int64          `json:"id"`
	Date        string         `json:"date"`
	Time        string         `json:"time"`
	Weight      core.NullFloat `json:"weight"`
	BodyFat     core.NullFloat `json:"body_fat"`
	Muscle      core.NullFloat `json:"muscle"`
	VisceralFat core.NullFloat `json:"visceral_fat"`
	Sleep       core.NullFloat `json:"sleep"`
	Notes       *string        `json:"notes"`
}

func (r logRecord) entry() (core.LogEntry, error) {
	t, err := ParseTime(r.Date, r.Time)
	if err != nil {
		return core.LogEntry{}, fmt.Errorf("log %d: %w", r.ID, err)
	}
	return core.LogEntry{
		ID:          r.ID,
		Time:        t,
		Weight:      r.Weight,
		BodyFat:     r.BodyFat,
		Muscle:      r.Muscle,
		VisceralFat: r.VisceralFat,
		Sleep:       r.Sleep,
		Notes:       notes(r.Notes),
	}, nil
}

// jabRecord is a jab as exchanged with the tracker backend
type jabRecord struct {
	ID    int64   `json:"id"`
	Date  string  `json:"date"`
	Time  string  `json:"time"`
	Dose  float64 `json:"dose"`
	Notes *string `json:"notes"`
}

func (r jabRecord) jab() (core.Jab, error) {
	t, err := ParseTime(r.Date, r.Time)
	if err != nil {
		return core.Jab{}, fmt.Errorf("jab %d: %w", r.ID, err)
	}
	return core.Jab{ID: r.ID, Time: t, Dose: r.Dose, Notes: notes(r.Notes)}, nil
}

// measurementRecord is a body measurement as exchanged with the tracker backend
type measurementRecord struct {
	ID            int64          `json:"id"`
	Date          string         `json:"date"`
	Time          string         `json:"time"`
	UpperArmLeft  core.NullFloat `json:"upper_arm_left"`
	UpperArmRight core.NullFloat `json:"upper_arm_right"`
	Chest         core.NullFloat `json:"chest"`
	Waist         core.NullFloat `json:"waist"`
	ThighLeft     core.NullFloat `json:"thigh_left"`
	ThighRight    core.NullFloat `json:"thigh_right"`
	Face          core.NullFloat `json:"face"`
	Neck          core.NullFloat `json:"neck"`
	Notes         *string        `json:"notes"`
}

func (r measurementRecord) measurement() (core.BodyMeasurement, error) {
	t, err := ParseTime(r.Date, r.Time)
	if err != nil {
		return core.BodyMeasurement{}, fmt.Errorf("body measurement %d: %w", r.ID, err)
	}
	return core.BodyMeasurement{
		ID:            r.ID,
		Time:          t,
		UpperArmLeft:  r.UpperArmLeft,
		UpperArmRight: r.UpperArmRight,
		Chest:         r.Chest,
		Waist:         r.Waist,
		ThighLeft:     r.ThighLeft,
		ThighRight:    r.ThighRight,
		Face:          r.Face,
		Neck:          r.Neck,
		Notes:         notes(r.Notes),
	}, nil
}

func notes(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

// convertAll converts every record and stops at the first failure
func convertAll[R any, T any](records []R, convert func(R) (T, error)) ([]T, error) {
	out := make([]T, 0, len(records))
	for _, record := range records {
		value, err := convert(record)
		if err != nil {
			return nil, err
		}
		out = append(out, value)
	}
	return out, nil
}
