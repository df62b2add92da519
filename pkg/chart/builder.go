package chart

import (
	"time"

	"github.com/raykavin/vitaltrend/pkg/core"
	"github.com/raykavin/vitaltrend/pkg/logger"
	"github.com/raykavin/vitaltrend/pkg/medication"
	"github.com/raykavin/vitaltrend/pkg/palette"
	"github.com/raykavin/vitaltrend/pkg/regimen"
	"github.com/raykavin/vitaltrend/pkg/trend"
)

const (
	lineTension       = 0.3
	medicationTension = 0.2
)

// Builder turns stored records into chart data
type Builder struct {
	trendOptions []trend.Option
	segmenter    *regimen.Segmenter
	log          logger.Logger
}

// Option configures a Builder
type Option func(*Builder)

// WithTrendOptions sets the options of every trend fit
func WithTrendOptions(options ...trend.Option) Option {
	return func(b *Builder) {
		b.trendOptions = options
	}
}

// WithSegmenter sets the dose segmenter
func WithSegmenter(segmenter *regimen.Segmenter) Option {
	return func(b *Builder) {
		b.segmenter = segmenter
	}
}

// WithLogger sets the logger
func WithLogger(log logger.Logger) Option {
	return func(b *Builder) {
		b.log = log
	}
}

// NewBuilder creates a chart builder with default smoothing and segmentation
func NewBuilder(options ...Option) *Builder {
	builder := &Builder{
		segmenter: regimen.New(),
		log:       logger.Nop(),
	}
	for _, option := range options {
		option(builder)
	}
	return builder
}

// TrendOption adds an overlay to a trend chart
type TrendOption func(*trendOverlay)

type trendOverlay struct {
	segmented bool
	jabs      []core.Jab
	levels    []medication.Level
}

// WithRegimen colors the trend by the dose in effect. Without jabs the
// whole trend is a single segment without dose.
func WithRegimen(jabs []core.Jab) TrendOption {
	return func(o *trendOverlay) {
		o.segmented = true
		o.jabs = jabs
	}
}

// WithMedication overlays the medication levels on the secondary axis
func WithMedication(levels []medication.Level) TrendOption {
	return func(o *trendOverlay) {
		o.levels = levels
	}
}

// TrendChart builds the chart of one log metric. Metrics with a trend get
// the smoothed line, split by dose segment when a regimen is given, followed
// by the dashed projection. The projection is placed one day apart after the
// date of the last entry.
func (b *Builder) TrendChart(metric core.Metric, entries []core.LogEntry, options ...TrendOption) Chart {
	var overlay trendOverlay
	for _, option := range options {
		option(&overlay)
	}

	times := core.EntryTimes(entries)
	values := core.MetricValues(entries, metric)
	observed := len(values)

	chart := Chart{
		ID:     string(metric),
		Title:  metric.Label(),
		Times:  times,
		Values: values,
	}

	log := b.log.WithFields(map[string]any{"chart": chart.ID, "entries": observed})

	if metric.Smoothed() {
		chart.Trend = trend.Smooth(values, b.trendOptions...)
		chart.Times = append(times[:observed:observed], projectionTimes(times, len(chart.Trend)-observed)...)

		trendColor := palette.Secondary
		if overlay.segmented {
			chart.Segments = b.segmenter.Segments(core.DoseEvents(overlay.jabs), times)
		}

		if len(chart.Segments) > 0 {
			for _, segment := range chart.Segments {
				chart.Datasets = append(chart.Datasets, Dataset{
					Label:   segment.Label(),
					Kind:    KindSegment,
					Color:   segment.Color,
					Style:   StyleSolid,
					Axis:    AxisPrimary,
					Tension: lineTension,
					Points:  points(chart.Times, chart.Trend, segment.Start, min(segment.End, observed-1)),
				})
			}
			trendColor = chart.Segments[len(chart.Segments)-1].Color
		} else {
			chart.Datasets = append(chart.Datasets, Dataset{
				Label:   LabelSmoothed,
				Kind:    KindSmoothed,
				Color:   trendColor,
				Style:   StyleSolid,
				Axis:    AxisPrimary,
				Tension: lineTension,
				Points:  points(chart.Times, chart.Trend, 0, observed-1),
			})
		}

		// the projection starts at the last observed point so both lines join
		if observed > 0 && len(chart.Trend) > observed {
			chart.Datasets = append(chart.Datasets, Dataset{
				Label:   LabelProjected,
				Kind:    KindProjected,
				Color:   trendColor,
				Style:   StyleDashed,
				Axis:    AxisPrimary,
				Tension: lineTension,
				Points:  points(chart.Times, chart.Trend, observed-1, len(chart.Trend)-1),
			})
		}
	}

	if len(overlay.levels) > 0 {
		var medicationPoints []Point
		if observed > 0 {
			for _, level := range medication.Between(overlay.levels, times[0], times[observed-1]) {
				medicationPoints = append(medicationPoints, Point{X: level.Time, Y: level.Level})
			}
		}

		chart.Secondary = true
		chart.Datasets = append(chart.Datasets, Dataset{
			Label:      LabelMedication,
			Kind:       KindMedication,
			Color:      palette.Quaternary,
			Background: palette.Quaternary.Alpha(0.1),
			Style:      StyleSolid,
			Axis:       AxisSecondary,
			Tension:    medicationTension,
			Points:     medicationPoints,
		})
	}

	chart.Datasets = append(chart.Datasets, Dataset{
		Label:      metric.Label(),
		Kind:       KindRaw,
		Color:      palette.Primary,
		Background: palette.Primary.Alpha(0.2),
		Style:      StyleSolid,
		Axis:       AxisPrimary,
		Fill:       true,
		Tension:    lineTension,
		Points:     points(times, values, 0, observed-1),
	})

	chart.Legend = Legend(chart.Datasets)

	log.WithFields(map[string]any{
		"datasets": len(chart.Datasets),
		"segments": len(chart.Segments),
		"samples":  values.Count(),
	}).Debug("trend chart built")

	return chart
}

// projectionTimes returns horizon midnights, one day apart, after the date of the last time
func projectionTimes(times []time.Time, horizon int) []time.Time {
	if len(times) == 0 || horizon <= 0 {
		return nil
	}

	lastDay := core.StartOfDay(times[len(times)-1])
	out := make([]time.Time, horizon)
	for k := range out {
		out[k] = lastDay.AddDate(0, 0, k+1)
	}
	return out
}

type measurementField struct {
	label string
	value func(core.BodyMeasurement) core.NullFloat
}

type measurementGroup struct {
	id     string
	title  string
	fields []measurementField
}

var measurementGroups = []measurementGroup{
	{
		id:    "upper_arms",
		title: "Upper Arms (cm)",
		fields: []measurementField{
			{label: "Left", value: func(m core.BodyMeasurement) core.NullFloat { return m.UpperArmLeft }},
			{label: "Right", value: func(m core.BodyMeasurement) core.NullFloat { return m.UpperArmRight }},
		},
	},
	{
		id:    "chest_waist",
		title: "Chest & Waist (cm)",
		fields: []measurementField{
			{label: "Chest", value: func(m core.BodyMeasurement) core.NullFloat { return m.Chest }},
			{label: "Waist", value: func(m core.BodyMeasurement) core.NullFloat { return m.Waist }},
		},
	},
	{
		id:    "thighs",
		title: "Thighs (cm)",
		fields: []measurementField{
			{label: "Left", value: func(m core.BodyMeasurement) core.NullFloat { return m.ThighLeft }},
			{label: "Right", value: func(m core.BodyMeasurement) core.NullFloat { return m.ThighRight }},
		},
	},
	{
		id:    "face_neck",
		title: "Face & Neck (cm)",
		fields: []measurementField{
			{label: "Face", value: func(m core.BodyMeasurement) core.NullFloat { return m.Face }},
			{label: "Neck", value: func(m core.BodyMeasurement) core.NullFloat { return m.Neck }},
		},
	},
}

// MeasurementIDs lists the ids of the body measurement charts
func MeasurementIDs() []string {
	ids := make([]string, len(measurementGroups))
	for i, group := range measurementGroups {
		ids[i] = group.id
	}
	return ids
}

// MeasurementCharts builds one multi line chart per body area. No
// measurements produce no charts.
func (b *Builder) MeasurementCharts(measurements []core.BodyMeasurement) []Chart {
	if len(measurements) == 0 {
		return nil
	}

	times := make([]time.Time, len(measurements))
	for i, m := range measurements {
		times[i] = m.Time
	}

	charts := make([]Chart, 0, len(measurementGroups))
	for _, group := range measurementGroups {
		chart := Chart{ID: group.id, Title: group.title, Times: times}

		for i, field := range group.fields {
			values := make(core.NullSeries, len(measurements))
			for k, m := range measurements {
				values[k] = field.value(m)
			}

			color := palette.Series(i)
			chart.Datasets = append(chart.Datasets, Dataset{
				Label:      field.label,
				Kind:       KindSeries,
				Color:      color,
				Background: color.Hex() + "33",
				Style:      StyleSolid,
				Axis:       AxisPrimary,
				Tension:    lineTension,
				Points:     points(times, values, 0, len(values)-1),
			})
		}

		chart.Legend = Legend(chart.Datasets)
		charts = append(charts, chart)
	}

	b.log.WithField("measurements", len(measurements)).Debugf("%d measurement charts built", len(charts))
	return charts
}
