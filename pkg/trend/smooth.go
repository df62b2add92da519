// Package trend fits a locally weighted regression (LOWESS) trend through
// sparse samples and extends it with a short linear projection.
package trend

import (
	"math"
	"sort"

	"github.com/raykavin/vitaltrend/pkg/core"
	"gonum.org/v1/gonum/stat"
)

const (
	minSpan = 3

	// minDenominator is the smallest normal equation determinant that still yields a regression
	minDenominator = 1e-10
)

// Smooth returns the LOWESS fit of the samples followed by the projected tail.
// The result always has len(samples) + ProjectionHorizon entries. Positions
// without a fit (leading or trailing gaps, or too few samples) are null.
func Smooth(samples core.NullSeries, options ...Option) core.NullSeries {
	config := newConfig(options...)

	values, positions := samples.Valid()
	if len(values) < config.MinValidPoints {
		return core.NullSeriesOf(len(samples) + config.ProjectionHorizon)
	}

	fitted := Fit(values, config.Bandwidth)

	result := core.NullSeriesOf(len(samples))
	for k, position := range positions {
		result[position] = core.Float(fitted[k])
	}

	result = Interpolate(result)
	return append(result, Project(fitted, config.ProjectionHorizon)...)
}

// Fit computes the LOWESS value of every point. Distances are measured in
// index space over the given values, not in time.
func Fit(values []float64, bandwidth float64) []float64 {
	n := len(values)
	fitted := make([]float64, n)
	if n == 0 {
		return fitted
	}

	span := max(minSpan, int(math.Floor(bandwidth*float64(n))))
	rank := min(span, n-1)

	distances := make([]float64, n)
	sorted := make([]float64, n)
	for i := range values {
		for j := range values {
			distances[j] = math.Abs(float64(j - i))
		}
		copy(sorted, distances)
		sort.Float64s(sorted)

		radius := sorted[rank]
		if radius == 0 {
			fitted[i] = values[i]
			continue
		}

		fitted[i] = localLinear(values, distances, radius, float64(i))
	}

	return fitted
}

// localLinear fits a tricube weighted line around one point and evaluates it there
func localLinear(values, distances []float64, radius, at float64) float64 {
	xs := make([]float64, 0, len(values))
	ys := make([]float64, 0, len(values))
	weights := make([]float64, 0, len(values))

	var sumW, sumWX, sumWX2 float64
	for j, d := range distances {
		w := tricube(d / radius)
		if w <= 0 {
			continue
		}

		x := float64(j)
		xs = append(xs, x)
		ys = append(ys, values[j])
		weights = append(weights, w)

		sumW += w
		sumWX += w * x
		sumWX2 += w * x * x
	}

	denominator := sumW*sumWX2 - sumWX*sumWX
	if math.Abs(denominator) <= minDenominator {
		return stat.Mean(ys, weights)
	}

	alpha, beta := stat.LinearRegression(xs, ys, weights, false)
	return alpha + beta*at
}

// tricube is the LOWESS kernel, 1 at zero distance and 0 from |x| >= 1
func tricube(x float64) float64 {
	x = math.Abs(x)
	if x >= 1 {
		return 0
	}
	return math.Pow(1-x*x*x, 3)
}
