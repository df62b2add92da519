package vitaltrend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/olekukonko/tablewriter"
	"github.com/raykavin/vitaltrend/pkg/chart"
	"github.com/raykavin/vitaltrend/pkg/core"
	"github.com/raykavin/vitaltrend/pkg/medication"
	"github.com/raykavin/vitaltrend/pkg/metric"
	"github.com/raykavin/vitaltrend/pkg/storage"
)

const (
	bootstrapSamples    = 1000
	bootstrapConfidence = 0.95
	histogramBins       = 15
)

// Summary writes a text report of every metric, the weight change of each
// dose segment and the distribution of the weight residuals around the trend
func (t *Tracker) Summary(ctx context.Context, w io.Writer) error {
	if err := t.ensure(ctx); err != nil {
		return err
	}

	if err := t.writeLastLog(w); err != nil {
		return err
	}

	fmt.Fprintln(w, t.metricTable())

	weight, ok := t.registry.Get(string(core.MetricWeight))
	if !ok {
		return nil
	}

	if len(weight.Segments) > 0 {
		fmt.Fprintln(w, "------ DOSE SEGMENTS -------")
		fmt.Fprintln(w, segmentTable(weight))
	}

	levels, err := t.MedicationLevels(ctx)
	if err != nil {
		return err
	}
	if peak, ok := medication.Peak(levels); ok {
		fmt.Fprintf(w, "PEAK MEDICATION LEVEL: %.2f mg at %s\n\n", peak.Level, core.Label(peak.Time))
	}

	residuals := metric.Residuals(weight.Values, weight.Trend)
	if len(residuals) > 1 && slices.Min(residuals) < slices.Max(residuals) {
		fmt.Fprintln(w, "------ WEIGHT RESIDUALS (kg) -------")
		hist := histogram.Hist(histogramBins, residuals)
		if err := histogram.Fprint(w, hist, histogram.Linear(10)); err != nil {
			return fmt.Errorf("failed to print histogram: %w", err)
		}
		fmt.Fprintln(w)
	}

	return nil
}

func (t *Tracker) writeLastLog(w io.Writer) error {
	last, err := t.storage.LastLog()
	if errors.Is(err, storage.ErrNotFound) {
		fmt.Fprintln(w, "No logs recorded")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load last log: %w", err)
	}

	fmt.Fprintf(w, "LAST LOG: %s weight %s\n", core.Label(last.Time), formatNumber(last.Weight, 1))
	return nil
}

// metricTable renders one row per log metric
func (t *Tracker) metricTable() string {
	buffer := bytes.NewBuffer(nil)
	table := tablewriter.NewWriter(buffer)
	table.SetHeader([]string{"Metric", "Entries", "First", "Last", "Change", "Weekly", "Weekly 95%", "Projected"})
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
	})

	for _, m := range core.Metrics {
		c, ok := t.registry.Get(string(m))
		if !ok {
			continue
		}

		usable, _ := c.Values.Valid()
		row := []string{m.Label(), strconv.Itoa(len(usable)), "-", "-", "-", "-", "-", "-"}
		if len(usable) > 0 {
			row[2] = strconv.FormatFloat(usable[0], 'f', 2, 64)
			row[3] = strconv.FormatFloat(usable[len(usable)-1], 'f', 2, 64)
		}
		if change, ok := metric.Change(c.Values); ok {
			row[4] = fmt.Sprintf("%+.2f", change)
		}

		interval, ok := metric.RateInterval(c.Times, c.Values,
			metric.WithResamples(bootstrapSamples),
			metric.WithConfidence(bootstrapConfidence),
		)
		if ok {
			row[5] = fmt.Sprintf("%+.2f", interval.Mean)
			row[6] = fmt.Sprintf("%+.2f ~ %+.2f", interval.Lower, interval.Upper)
		}

		if len(c.Trend) > c.Observed() {
			row[7] = formatNumber(c.Trend[len(c.Trend)-1], 2)
		}

		table.Append(row)
	}

	table.Render()
	return buffer.String()
}

// segmentTable renders the smoothed weight change within each dose segment
func segmentTable(c chart.Chart) string {
	buffer := bytes.NewBuffer(nil)
	table := tablewriter.NewWriter(buffer)
	table.SetHeader([]string{"Dose", "From", "To", "Entries", "Start", "End", "Change"})
	table.SetFooterAlignment(tablewriter.ALIGN_RIGHT)

	var total float64

	observed := c.Observed()
	for _, segment := range c.Segments {
		end := min(segment.End, observed-1)
		row := []string{
			segment.Label(),
			core.Label(c.Times[segment.Start]),
			core.Label(c.Times[end]),
			strconv.Itoa(end - segment.Start + 1),
			"-", "-", "-",
		}

		if end < len(c.Trend) {
			first, last := c.Trend[segment.Start], c.Trend[end]
			row[4] = formatNumber(first, 2)
			row[5] = formatNumber(last, 2)
			if first.Usable() && last.Usable() {
				change := last.Float64 - first.Float64
				row[6] = fmt.Sprintf("%+.2f", change)
				total += change
			}
		}

		table.Append(row)
	}

	table.SetFooter([]string{"TOTAL", "", "", strconv.Itoa(observed), "", "", fmt.Sprintf("%+.2f", total)})
	table.Render()
	return buffer.String()
}

func formatNumber(v core.NullFloat, precision int) string {
	if !v.Usable() {
		return "-"
	}
	return strconv.FormatFloat(v.Float64, 'f', precision, 64)
}
