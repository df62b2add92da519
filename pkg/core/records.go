package core

import (
	"fmt"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
	LabelLayout = DateLayout + " " + ClockLayout
)

// LogEntry is a single daily health log
type LogEntry struct {
	ID          int64     `json:"id"`
	Time        time.Time `json:"time"`
	Weight      NullFloat `json:"weight"`
	BodyFat     NullFloat `json:"body_fat"`
	Muscle      NullFloat `json:"muscle"`
	VisceralFat NullFloat `json:"visceral_fat"`
	Sleep       NullFloat `json:"sleep"`
	Notes       string    `json:"notes,omitempty"`
}

// DoseEvent is a medication dose taken at a given time
type DoseEvent struct {
	Time time.Time
	Dose float64
}

// Jab is a stored medication injection
type Jab struct {
	ID    int64     `json:"id"`
	Time  time.Time `json:"time"`
	Dose  float64   `json:"dose"`
	Notes string    `json:"notes,omitempty"`
}

// Event returns the dose event carried by the jab
func (j Jab) Event() DoseEvent {
	return DoseEvent{Time: j.Time, Dose: j.Dose}
}

// DoseEvents converts jabs into dose events, keeping their order
func DoseEvents(jabs []Jab) []DoseEvent {
	events := make([]DoseEvent, len(jabs))
	for i, jab := range jabs {
		events[i] = jab.Event()
	}
	return events
}

// BodyMeasurement holds tape measurements in centimeters
type BodyMeasurement struct {
	ID            int64     `json:"id"`
	Time          time.Time `json:"time"`
	UpperArmLeft  NullFloat `json:"upper_arm_left"`
	UpperArmRight NullFloat `json:"upper_arm_right"`
	Chest         NullFloat `json:"chest"`
	Waist         NullFloat `json:"waist"`
	ThighLeft     NullFloat `json:"thigh_left"`
	ThighRight    NullFloat `json:"thigh_right"`
	Face          NullFloat `json:"face"`
	Neck          NullFloat `json:"neck"`
	Notes         string    `json:"notes,omitempty"`
}

// Metric identifies a numeric field of a LogEntry
type Metric string

const (
	MetricWeight      Metric = "weight"
	MetricBodyFat     Metric = "body_fat"
	MetricMuscle      Metric = "muscle"
	MetricVisceralFat Metric = "visceral_fat"
	MetricSleep       Metric = "sleep"
)

// Metrics lists every log metric in display order
var Metrics = []Metric{MetricWeight, MetricBodyFat, MetricMuscle, MetricVisceralFat, MetricSleep}

// ParseMetric validates a metric name
func ParseMetric(name string) (Metric, error) {
	for _, m := range Metrics {
		if string(m) == name {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown metric %q", name)
}

// Label returns the chart label of the metric
func (m Metric) Label() string {
	switch m {
	case MetricWeight:
		return "Weight (kg)"
	case MetricBodyFat:
		return "Body Fat (%)"
	case MetricMuscle:
		return "Muscle (%)"
	case MetricVisceralFat:
		return "Visceral Fat"
	case MetricSleep:
		return "Sleep (hours)"
	default:
		return string(m)
	}
}

// Smoothed reports whether the metric gets a trend line
func (m Metric) Smoothed() bool {
	return m != MetricVisceralFat
}

// Value returns the metric value of the entry
func (e LogEntry) Value(m Metric) NullFloat {
	switch m {
	case MetricWeight:
		return e.Weight
	case MetricBodyFat:
		return e.BodyFat
	case MetricMuscle:
		return e.Muscle
	case MetricVisceralFat:
		return e.VisceralFat
	case MetricSleep:
		return e.Sleep
	default:
		return Null()
	}
}

// MetricValues extracts one metric from a list of entries
func MetricValues(entries []LogEntry, m Metric) NullSeries {
	values := make(NullSeries, len(entries))
	for i, entry := range entries {
		values[i] = entry.Value(m)
	}
	return values
}

// EntryTimes returns the time of every entry
func EntryTimes(entries []LogEntry) []time.Time {
	times := make([]time.Time, len(entries))
	for i, entry := range entries {
		times[i] = entry.Time
	}
	return times
}

// StartOfDay truncates t to midnight in its own location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Label formats t as an axis label
func Label(t time.Time) string {
	return t.Format(LabelLayout)
}
