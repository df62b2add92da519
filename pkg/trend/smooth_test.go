package trend

import (
	"math"
	"testing"

	"github.com/raykavin/vitaltrend/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const epsilon = 1e-9

// series builds a NullSeries where NaN marks an absent sample
func series(values ...float64) core.NullSeries {
	out := make(core.NullSeries, len(values))
	for i, v := range values {
		if !math.IsNaN(v) {
			out[i] = core.Float(v)
		}
	}
	return out
}

var null = math.NaN()

func requireSeries(t *testing.T, expected []float64, actual core.NullSeries) {
	t.Helper()
	require.Len(t, actual, len(expected))
	for i, want := range expected {
		if math.IsNaN(want) {
			assert.False(t, actual[i].Valid, "point %d: expected null, got %v", i, actual[i].Float64)
			continue
		}
		require.True(t, actual[i].Valid, "point %d: expected %.4f, got null", i, want)
		assert.InDelta(t, want, actual[i].Float64, epsilon, "point %d", i)
	}
}

func TestSmooth(t *testing.T) {
	tests := []struct {
		name     string
		samples  core.NullSeries
		options  []Option
		expected []float64
	}{
		{
			name:     "insufficient data",
			samples:  series(10, null, null, 13),
			expected: []float64{null, null, null, null, null, null, null},
		},
		{
			name:     "empty input",
			samples:  core.NullSeries{},
			expected: []float64{null, null, null},
		},
		{
			name:     "straight line is preserved",
			samples:  series(1, 3, 5, 7, 9, 11),
			expected: []float64{1, 3, 5, 7, 9, 11, 13, 15, 17},
		},
		{
			name:     "constant values",
			samples:  series(5, 5, 5, 5),
			expected: []float64{5, 5, 5, 5, 5, 5, 5},
		},
		{
			name:     "gaps are interpolated",
			samples:  series(1, null, 5, null, 9),
			expected: []float64{1, 3, 5, 7, 9, 13, 17, 21},
		},
		{
			name:     "leading and trailing gaps stay null",
			samples:  series(null, 1, null, 5, null, 9, null),
			expected: []float64{null, 1, 3, 5, 7, 9, null, 13, 17, 21},
		},
		{
			name:     "NaN samples are ignored",
			samples:  core.NullSeries{core.Float(1), core.Float(math.NaN()), core.Float(5), core.Null(), core.Float(9)},
			expected: []float64{1, 3, 5, 7, 9, 13, 17, 21},
		},
		{
			name:     "single point with one required sample",
			samples:  series(null, 7, null),
			options:  []Option{WithMinValidPoints(1)},
			expected: []float64{null, 7, null, null, null, null},
		},
		{
			name:     "two points fall back to their raw values",
			samples:  series(1, 2),
			options:  []Option{WithMinValidPoints(1)},
			expected: []float64{1, 2, 3, 4, 5},
		},
		{
			name:     "no projection",
			samples:  series(1, 3, 5, 7),
			options:  []Option{WithProjectionHorizon(0)},
			expected: []float64{1, 3, 5, 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireSeries(t, tt.expected, Smooth(tt.samples, tt.options...))
		})
	}
}

func TestSmooth_Length(t *testing.T) {
	inputs := []core.NullSeries{
		{},
		series(1),
		series(null, null),
		series(1, 2),
		series(1, null, 3, null, null, 6, 7),
		series(4, 4.2, 4.1, 3.9, 4.3, 4.0, 3.8, 3.7, 3.9, 3.6, 3.5, 3.4),
	}

	for _, samples := range inputs {
		for _, horizon := range []int{0, 1, 3, 5} {
			for _, minPoints := range []int{1, 3} {
				result := Smooth(samples, WithProjectionHorizon(horizon), WithMinValidPoints(minPoints))
				assert.Len(t, result, len(samples)+horizon)
			}
		}
	}
}

func TestSmooth_InsufficientDataIsAllNull(t *testing.T) {
	result := Smooth(series(1, null, 2, null), WithMinValidPoints(3), WithProjectionHorizon(2))
	require.Len(t, result, 6)
	for i, v := range result {
		assert.False(t, v.Valid, "point %d", i)
	}
}

func TestSmooth_DampensOutlier(t *testing.T) {
	result := Smooth(series(10, 10, 10, 30, 10, 10, 10))
	require.True(t, result[3].Valid)
	assert.Less(t, result[3].Float64, 30.0)
	assert.Greater(t, result[3].Float64, 10.0)
}

func TestSmooth_DoesNotModifyInput(t *testing.T) {
	samples := series(1, null, 5, null, 9)
	snapshot := append(core.NullSeries(nil), samples...)

	Smooth(samples)
	assert.Equal(t, snapshot, samples)
}

func TestInterpolate(t *testing.T) {
	result := Interpolate(series(null, 2, null, null, null, 10, null))
	requireSeries(t, []float64{null, 2, 4, 6, 8, 10, null}, result)
}

func TestInterpolate_Law(t *testing.T) {
	a, b := 3.5, -1.25
	i, j := 2, 9

	samples := core.NullSeriesOf(12)
	samples[i] = core.Float(a)
	samples[j] = core.Float(b)

	result := Interpolate(samples)
	for k := i + 1; k < j; k++ {
		want := a + (b-a)*float64(k-i)/float64(j-i)
		require.True(t, result[k].Valid)
		assert.InDelta(t, want, result[k].Float64, epsilon, "point %d", k)
	}
}

func TestProject(t *testing.T) {
	t.Run("anchored at last value", func(t *testing.T) {
		// regression line of the tail does not pass exactly through the last point
		requireSeries(t, []float64{4.9, 5.8}, Project([]float64{1, 2, 2, 4}, 2))
	})

	t.Run("uses only the last ten values", func(t *testing.T) {
		fitted := []float64{100, 90, 80, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
		requireSeries(t, []float64{10, 11}, Project(fitted, 2))
	})

	t.Run("single value projects nulls", func(t *testing.T) {
		requireSeries(t, []float64{null, null}, Project([]float64{1}, 2))
	})

	t.Run("no horizon", func(t *testing.T) {
		assert.Empty(t, Project([]float64{1, 2, 3}, 0))
		assert.Empty(t, Project([]float64{1, 2, 3}, -1))
	})
}

func TestConfig_Normalize(t *testing.T) {
	config := newConfig(WithBandwidth(0), WithProjectionHorizon(-2), WithMinValidPoints(0))
	assert.Equal(t, Config{Bandwidth: defaultBandwidth, ProjectionHorizon: 0, MinValidPoints: 1}, config)

	config = newConfig(WithBandwidth(5))
	assert.Equal(t, 1.0, config.Bandwidth)

	config = newConfig(WithConfig(Config{Bandwidth: 0.6, ProjectionHorizon: 7, MinValidPoints: 2}))
	assert.Equal(t, Config{Bandwidth: 0.6, ProjectionHorizon: 7, MinValidPoints: 2}, config)

	assert.Equal(t, Config{Bandwidth: 0.43, ProjectionHorizon: 3, MinValidPoints: 3}, DefaultConfig())
}

func TestTricube(t *testing.T) {
	assert.Equal(t, 1.0, tricube(0))
	assert.Equal(t, 0.0, tricube(1))
	assert.Equal(t, 0.0, tricube(-1.5))
	assert.InDelta(t, 0.669921875, tricube(0.5), epsilon)
	assert.InDelta(t, tricube(0.3), tricube(-0.3), epsilon)
}
