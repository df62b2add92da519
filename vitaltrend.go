// Package vitaltrend turns stored health logs and medication jabs into chart
// data: smoothed and projected trends colored by dose, estimated medication
// levels and body measurement charts.
package vitaltrend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/raykavin/vitaltrend/pkg/chart"
	"github.com/raykavin/vitaltrend/pkg/core"
	"github.com/raykavin/vitaltrend/pkg/logger"
	"github.com/raykavin/vitaltrend/pkg/medication"
	"github.com/raykavin/vitaltrend/pkg/palette"
	"github.com/raykavin/vitaltrend/pkg/plot"
	"github.com/raykavin/vitaltrend/pkg/regimen"
	"github.com/raykavin/vitaltrend/pkg/trend"
)

// DefaultLog is the default logger instance
var DefaultLog logger.Logger

// ErrUnknownChart is returned for ids without a chart
var ErrUnknownChart = plot.ErrChartNotFound

// Tracker computes and holds the charts of one store
type Tracker struct {
	storage  core.Storage
	registry *chart.Registry
	log      logger.Logger

	trendOptions []trend.Option
	scale        palette.DoseScale
	model        medication.Model
	window       time.Duration
	now          func() time.Time

	mu        sync.RWMutex
	refreshed bool
	segments  []regimen.Segment
	levels    []medication.Level
}

// Option is a functional option for configuring a Tracker instance
type Option func(*Tracker)

// WithLogger sets the logger of the tracker and the chart builder
func WithLogger(log logger.Logger) Option {
	return func(t *Tracker) {
		t.log = log
	}
}

// WithTrendOptions sets the smoothing parameters of every trend
func WithTrendOptions(options ...trend.Option) Option {
	return func(t *Tracker) {
		t.trendOptions = options
	}
}

// WithDoseScale sets the dose to color scale of the weight segments
func WithDoseScale(scale palette.DoseScale) Option {
	return func(t *Tracker) {
		t.scale = scale
	}
}

// WithMedicationModel sets the pharmacokinetic model of the medication levels
func WithMedicationModel(model medication.Model) Option {
	return func(t *Tracker) {
		t.model = model
	}
}

// WithSince limits the charts to records newer than window. Zero keeps every record.
func WithSince(window time.Duration) Option {
	return func(t *Tracker) {
		t.window = window
	}
}

// NewTracker creates a tracker reading from storage. Charts are computed on
// the first access or on Refresh.
func NewTracker(storage core.Storage, options ...Option) *Tracker {
	tracker := &Tracker{
		storage:  storage,
		registry: chart.NewRegistry(),
		log:      DefaultLog,
		scale:    palette.DefaultDoseScale(),
		model:    medication.DefaultModel(),
		now:      time.Now,
	}
	for _, option := range options {
		option(tracker)
	}
	if tracker.log == nil {
		tracker.log = logger.Nop()
	}
	return tracker
}

func (t *Tracker) filters() []core.RecordFilter {
	if t.window <= 0 {
		return nil
	}
	return []core.RecordFilter{core.WithSince(t.now().Add(-t.window))}
}

// Refresh reads every record and recomputes all charts. Charts that are no
// longer produced are removed.
func (t *Tracker) Refresh(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	filters := t.filters()

	entries, err := t.storage.Logs(filters...)
	if err != nil {
		return fmt.Errorf("failed to load logs: %w", err)
	}

	// the whole history is kept so doses before the window still count
	jabs, err := t.storage.Jabs()
	if err != nil {
		return fmt.Errorf("failed to load jabs: %w", err)
	}

	measurements, err := t.storage.Measurements(filters...)
	if err != nil {
		return fmt.Errorf("failed to load body measurements: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	builder := chart.NewBuilder(
		chart.WithTrendOptions(t.trendOptions...),
		chart.WithSegmenter(regimen.New(regimen.WithScale(t.scale))),
		chart.WithLogger(t.log),
	)

	levels := t.model.Levels(core.DoseEvents(jabs))

	charts := make([]chart.Chart, 0, len(core.Metrics)+len(chart.MeasurementIDs()))
	for _, metric := range core.Metrics {
		var options []chart.TrendOption
		if metric == core.MetricWeight {
			options = append(options, chart.WithRegimen(jabs), chart.WithMedication(levels))
		}
		charts = append(charts, builder.TrendChart(metric, entries, options...))
	}
	charts = append(charts, builder.MeasurementCharts(measurements)...)

	var segments []regimen.Segment
	for _, c := range charts {
		if c.ID == string(core.MetricWeight) {
			segments = c.Segments
		}
	}

	// charts, segments and levels are published together
	t.mu.Lock()
	t.publish(charts)
	t.refreshed = true
	t.segments = segments
	t.levels = levels
	stored := t.registry.Len()
	t.mu.Unlock()

	t.log.WithFields(map[string]any{
		"logs":         len(entries),
		"jabs":         len(jabs),
		"measurements": len(measurements),
		"charts":       stored,
	}).Info("charts refreshed")

	return nil
}

// publish replaces the stored charts and removes the ones no longer produced.
// Callers hold t.mu.
func (t *Tracker) publish(charts []chart.Chart) {
	produced := make(map[string]bool, len(charts))
	for _, c := range charts {
		t.registry.Replace(c)
		produced[c.ID] = true
	}
	for _, id := range t.registry.IDs() {
		if !produced[id] {
			t.registry.Delete(id)
		}
	}
}

// ensure refreshes once when nothing was computed yet
func (t *Tracker) ensure(ctx context.Context) error {
	t.mu.RLock()
	refreshed := t.refreshed
	t.mu.RUnlock()

	if refreshed {
		return nil
	}
	return t.Refresh(ctx)
}

// Chart returns the chart with the given id
func (t *Tracker) Chart(ctx context.Context, id string) (chart.Chart, error) {
	if err := t.ensure(ctx); err != nil {
		return chart.Chart{}, err
	}

	t.mu.RLock()
	c, ok := t.registry.Get(id)
	t.mu.RUnlock()
	if !ok {
		return chart.Chart{}, fmt.Errorf("%w: %s", ErrUnknownChart, id)
	}
	return c, nil
}

// ChartIDs returns the ids of the computed charts in lexical order
func (t *Tracker) ChartIDs() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.registry.IDs()
}

// Segments returns the dose segments of the weight chart
func (t *Tracker) Segments(ctx context.Context) ([]regimen.Segment, error) {
	if err := t.ensure(ctx); err != nil {
		return nil, err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.segments, nil
}

// MedicationLevels returns the estimated medication levels of every jab
func (t *Tracker) MedicationLevels(ctx context.Context) ([]medication.Level, error) {
	if err := t.ensure(ctx); err != nil {
		return nil, err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.levels, nil
}
