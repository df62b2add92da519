package trend

import (
	"slices"

	"github.com/raykavin/vitaltrend/pkg/core"
	"gonum.org/v1/gonum/stat"
)

// projectionLookback is the number of trailing fitted values used to estimate the slope
const projectionLookback = 10

// Interpolate fills every run of nulls bounded on both sides by a value with
// a straight line between the two bounds. Leading and trailing runs are kept.
func Interpolate(series core.NullSeries) core.NullSeries {
	out := slices.Clone(series)

	prev := -1
	for i, v := range out {
		if !v.Usable() {
			continue
		}

		if prev >= 0 && i-prev > 1 {
			a, b := out[prev].Float64, v.Float64
			gap := float64(i - prev)
			for k := prev + 1; k < i; k++ {
				out[k] = core.Float(a + (b-a)*float64(k-prev)/gap)
			}
		}
		prev = i
	}

	return out
}

// Project extrapolates horizon points after the last fitted value using the
// least squares slope of the trailing values. The line is anchored at the last
// fitted value so the projection starts where the fit ends. With fewer than
// two fitted values the projected points are null.
func Project(fitted []float64, horizon int) core.NullSeries {
	if horizon <= 0 {
		return nil
	}

	tail := core.NullSeriesOf(horizon)
	if len(fitted) < 2 {
		return tail
	}

	recent := core.Series[float64](fitted).LastValues(projectionLookback)
	xs := make([]float64, recent.Length())
	for i := range xs {
		xs[i] = float64(i)
	}

	_, slope := stat.LinearRegression(xs, recent.Values(), nil, false)
	last := recent.Last(0)
	for k := range tail {
		tail[k] = core.Float(last + slope*float64(k+1))
	}

	return tail
}
