// Package metric summarizes a metric series: rates of change, residuals
// against its trend and bootstrap confidence intervals.
package metric

import (
	"time"

	"github.com/raykavin/vitaltrend/pkg/core"
)

const week = 7 * 24 * time.Hour

// WeeklyRates returns the change per week between consecutive usable
// samples. Pairs of samples at the same time are skipped.
func WeeklyRates(times []time.Time, values core.NullSeries) []float64 {
	var (
		rates    []float64
		previous = -1
	)

	for i := 0; i < len(values) && i < len(times); i++ {
		if !values[i].Usable() {
			continue
		}
		if previous >= 0 {
			elapsed := times[i].Sub(times[previous])
			if elapsed > 0 {
				change := values[i].Float64 - values[previous].Float64
				rates = append(rates, change*float64(week)/float64(elapsed))
			}
		}
		previous = i
	}

	return rates
}

// Residuals returns observed minus trend wherever both are usable
func Residuals(observed, trend core.NullSeries) []float64 {
	var residuals []float64
	for i := 0; i < len(observed) && i < len(trend); i++ {
		if observed[i].Usable() && trend[i].Usable() {
			residuals = append(residuals, observed[i].Float64-trend[i].Float64)
		}
	}
	return residuals
}

// Change returns the difference between the last and the first usable sample
func Change(values core.NullSeries) (float64, bool) {
	usable, _ := values.Valid()
	if len(usable) < 2 {
		return 0, false
	}
	return usable[len(usable)-1] - usable[0], true
}
