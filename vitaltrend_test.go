package vitaltrend

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/raykavin/vitaltrend/pkg/chart"
	"github.com/raykavin/vitaltrend/pkg/core"
	"github.com/raykavin/vitaltrend/pkg/logger"
	"github.com/raykavin/vitaltrend/pkg/plot"
	"github.com/raykavin/vitaltrend/pkg/storage"
	"github.com/raykavin/vitaltrend/pkg/trend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d, hour int) time.Time {
	return time.Date(2025, 1, d, hour, 0, 0, 0, time.UTC)
}

func newStore(t *testing.T) *storage.BuntStorage {
	t.Helper()

	store, err := storage.FromMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	for d := 1; d <= 31; d++ {
		entry := core.LogEntry{
			Time:        day(d, 8),
			Weight:      core.Float(100 - 0.2*float64(d) + 0.3*float64(d%3)),
			BodyFat:     core.Float(30 - 0.05*float64(d)),
			Muscle:      core.Null(),
			VisceralFat: core.Float(9),
			Sleep:       core.Float(7 + 0.1*float64(d%4)),
		}
		require.NoError(t, store.CreateLog(&entry))
	}

	for _, jab := range []core.Jab{{Time: day(10, 19), Dose: 5}, {Time: day(20, 7), Dose: 10}} {
		require.NoError(t, store.CreateJab(&jab))
	}

	return store
}

func TestTracker_Refresh(t *testing.T) {
	store := newStore(t)
	measurement := core.BodyMeasurement{Time: day(5, 8), Waist: core.Float(98)}
	require.NoError(t, store.CreateMeasurement(&measurement))

	tracker := NewTracker(store, WithLogger(logger.Nop()))
	require.NoError(t, tracker.Refresh(context.Background()))

	assert.Equal(t, []string{
		"body_fat", "chest_waist", "face_neck", "muscle", "sleep",
		"thighs", "upper_arms", "visceral_fat", "weight",
	}, tracker.ChartIDs())

	weight, err := tracker.Chart(context.Background(), "weight")
	require.NoError(t, err)
	assert.Equal(t, 31, weight.Observed())
	assert.Len(t, weight.Trend, 31+trend.DefaultConfig().ProjectionHorizon)
	assert.True(t, weight.Secondary)

	_, ok := weight.Dataset(chart.LabelMedication)
	assert.True(t, ok)

	visceral, err := tracker.Chart(context.Background(), "visceral_fat")
	require.NoError(t, err)
	assert.Empty(t, visceral.Trend)
	assert.Empty(t, visceral.Segments)
}

func TestTracker_Segments(t *testing.T) {
	tracker := NewTracker(newStore(t), WithLogger(logger.Nop()))

	segments, err := tracker.Segments(context.Background())
	require.NoError(t, err)
	require.Len(t, segments, 3)

	assert.Equal(t, "Pre-jab", segments[0].Label())
	assert.Equal(t, 0, segments[0].Start)
	assert.Equal(t, 9, segments[0].End)
	assert.Equal(t, "5mg", segments[1].Label())
	assert.Equal(t, 9, segments[1].Start)
	assert.Equal(t, 19, segments[1].End)
	assert.Equal(t, "10mg", segments[2].Label())
	assert.Equal(t, 30, segments[2].End)
}

func TestTracker_MedicationLevels(t *testing.T) {
	tracker := NewTracker(newStore(t), WithLogger(logger.Nop()))

	levels, err := tracker.MedicationLevels(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, levels)
	assert.Equal(t, day(10, 19), levels[0].Time)
	assert.Equal(t, day(20, 7).Add(14*24*time.Hour), levels[len(levels)-1].Time)
}

func TestTracker_UnknownChart(t *testing.T) {
	tracker := NewTracker(newStore(t), WithLogger(logger.Nop()))

	_, err := tracker.Chart(context.Background(), "height")
	assert.ErrorIs(t, err, ErrUnknownChart)
	assert.ErrorIs(t, err, plot.ErrChartNotFound)
}

func TestTracker_Since(t *testing.T) {
	tracker := NewTracker(newStore(t), WithLogger(logger.Nop()), WithSince(7*24*time.Hour))
	tracker.now = func() time.Time { return day(31, 12) }

	weight, err := tracker.Chart(context.Background(), "weight")
	require.NoError(t, err)
	assert.Equal(t, 7, weight.Observed())
	assert.Equal(t, day(25, 8), weight.Times[0])

	// both jabs are before the window, so no dose matches a label
	segments, err := tracker.Segments(context.Background())
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.False(t, segments[0].Dose.Valid)
}

func TestTracker_RefreshRemovesStaleCharts(t *testing.T) {
	store := newStore(t)
	measurement := core.BodyMeasurement{Time: day(5, 8), Waist: core.Float(98)}
	require.NoError(t, store.CreateMeasurement(&measurement))

	tracker := NewTracker(store, WithLogger(logger.Nop()), WithSince(24*time.Hour))

	tracker.now = func() time.Time { return day(6, 0) }
	require.NoError(t, tracker.Refresh(context.Background()))
	assert.Contains(t, tracker.ChartIDs(), "chest_waist")

	tracker.now = func() time.Time { return day(20, 0) }
	require.NoError(t, tracker.Refresh(context.Background()))
	assert.NotContains(t, tracker.ChartIDs(), "chest_waist")
	assert.Contains(t, tracker.ChartIDs(), "weight")
}

func TestTracker_ConcurrentRefresh(t *testing.T) {
	store := newStore(t)
	tracker := NewTracker(store, WithLogger(logger.Nop()))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func(d int) {
			defer wg.Done()
			jab := core.Jab{Time: day(25+d, 7), Dose: 12.5}
			assert.NoError(t, store.CreateJab(&jab))
			assert.NoError(t, tracker.Refresh(ctx))
		}(i)
		go func() {
			defer wg.Done()
			_, err := tracker.Chart(ctx, "weight")
			assert.NoError(t, err)
			_, err = tracker.Segments(ctx)
			assert.NoError(t, err)
			assert.NotEmpty(t, tracker.ChartIDs())
		}()
	}
	wg.Wait()

	require.NoError(t, tracker.Refresh(ctx))
	weight, err := tracker.Chart(ctx, "weight")
	require.NoError(t, err)
	segments, err := tracker.Segments(ctx)
	require.NoError(t, err)
	assert.Equal(t, weight.Segments, segments)
	assert.Len(t, segments, 7)
}

func TestTracker_CanceledContext(t *testing.T) {
	tracker := NewTracker(newStore(t), WithLogger(logger.Nop()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, tracker.Refresh(ctx), context.Canceled)
	_, err := tracker.Chart(ctx, "weight")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTracker_Summary(t *testing.T) {
	tracker := NewTracker(newStore(t), WithLogger(logger.Nop()))

	var out bytes.Buffer
	require.NoError(t, tracker.Summary(context.Background(), &out))

	report := out.String()
	assert.Contains(t, report, "LAST LOG: 2025-01-31 08:00")
	assert.Contains(t, report, "Weight (kg)")
	assert.Contains(t, report, "DOSE SEGMENTS")
	assert.Contains(t, report, "10mg")
	assert.Contains(t, report, "PEAK MEDICATION LEVEL")
	assert.Contains(t, report, "WEIGHT RESIDUALS")
}

func TestTracker_SummaryEmpty(t *testing.T) {
	store, err := storage.FromMemory()
	require.NoError(t, err)
	defer store.Close()

	var out bytes.Buffer
	require.NoError(t, NewTracker(store, WithLogger(logger.Nop())).Summary(context.Background(), &out))
	assert.Contains(t, out.String(), "No logs recorded")
	assert.NotContains(t, out.String(), "DOSE SEGMENTS")
}

func TestNewLogger(t *testing.T) {
	config := logger.Config{Level: "info", Output: &bytes.Buffer{}}

	for _, backend := range []string{"zerolog", "logrus", "Logrus"} {
		log, err := NewLogger(backend, config)
		require.NoError(t, err, backend)
		assert.Equal(t, logger.InfoLevel, log.GetLevel(), backend)
	}

	_, err := NewLogger("syslog", config)
	assert.Error(t, err)

	_, err = NewLogger("zerolog", logger.Config{Level: "loud"})
	assert.Error(t, err)
}

func TestLoggerConfig(t *testing.T) {
	t.Setenv(envLogLevel, "warn")
	t.Setenv(envLogJSON, "true")

	config, err := loggerConfig()
	require.NoError(t, err)
	assert.Equal(t, "warn", config.Level)
	assert.True(t, config.JSON)
	assert.True(t, config.Colored)
	assert.Equal(t, defaultLogTimeFormat, config.TimeFormat)

	t.Setenv(envLogColor, "sometimes")
	_, err = loggerConfig()
	assert.Error(t, err)
}

func TestTracker_TuneBandwidth(t *testing.T) {
	tracker := NewTracker(newStore(t), WithLogger(logger.Nop()))

	results, err := tracker.TuneBandwidth(context.Background(), core.MetricWeight, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.LessOrEqual(t, results[0].Score, results[1].Score)

	var out bytes.Buffer
	WriteTuning(&out, results)
	assert.Contains(t, out.String(), "BANDWIDTH")

	_, err = tracker.TuneBandwidth(context.Background(), core.MetricMuscle, 3)
	assert.Error(t, err)
}
