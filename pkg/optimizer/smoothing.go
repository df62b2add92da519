package optimizer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/raykavin/vitaltrend/pkg/core"
	"github.com/raykavin/vitaltrend/pkg/trend"
)

// BandwidthParameter names the smoothing bandwidth in a ParameterSet
const BandwidthParameter = "bandwidth"

// minCrossValidationPoints is the number of usable samples a score needs
const minCrossValidationPoints = 4

// ErrNotEnoughData is returned when a series is too short to score
var ErrNotEnoughData = errors.New("not enough samples to cross validate")

// Bandwidth returns the bandwidth search space
func Bandwidth() Parameter {
	return Parameter{
		Name:        BandwidthParameter,
		Description: "fraction of samples in each local regression",
		Default:     trend.DefaultConfig().Bandwidth,
		Min:         0.1,
		Max:         1,
		Step:        0.05,
	}
}

// SmoothingEvaluator scores a bandwidth by leave one out cross validation:
// every interior sample is hidden in turn and compared with the trend fitted
// without it. The score is the root mean square of those errors.
type SmoothingEvaluator struct {
	samples core.NullSeries
	options []trend.Option
}

// NewSmoothingEvaluator creates an evaluator for samples. options are
// applied to every fit before the bandwidth under evaluation.
func NewSmoothingEvaluator(samples core.NullSeries, options ...trend.Option) *SmoothingEvaluator {
	return &SmoothingEvaluator{samples: samples, options: options}
}

// Evaluate returns the cross validation error of the bandwidth in params
func (e *SmoothingEvaluator) Evaluate(ctx context.Context, params ParameterSet) (float64, error) {
	bandwidth, ok := params[BandwidthParameter]
	if !ok {
		return 0, fmt.Errorf("missing parameter: %s", BandwidthParameter)
	}

	_, positions := e.samples.Valid()
	if len(positions) < minCrossValidationPoints {
		return 0, ErrNotEnoughData
	}

	options := append(slices.Clone(e.options),
		trend.WithBandwidth(bandwidth),
		trend.WithProjectionHorizon(0),
	)

	var (
		sum   float64
		count int
	)

	held := slices.Clone(e.samples)
	// the first and last samples are skipped as they cannot be interpolated
	for _, position := range positions[1 : len(positions)-1] {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		actual := held[position]
		held[position] = core.Null()
		fitted := trend.Smooth(held, options...)
		held[position] = actual

		if fitted[position].Usable() {
			diff := fitted[position].Float64 - actual.Float64
			sum += diff * diff
			count++
		}
	}

	if count == 0 {
		return 0, ErrNotEnoughData
	}
	return math.Sqrt(sum / float64(count)), nil
}

// TuneBandwidth grid searches the bandwidth of samples and returns the
// results, best first. The whole grid is always searched; config is not modified.
func TuneBandwidth(ctx context.Context, samples core.NullSeries, config *Config, options ...trend.Option) ([]*Result, error) {
	if config == nil {
		config = NewConfig()
	}

	tuned := *config
	if len(tuned.Parameters) == 0 {
		tuned.WithParameters(Bandwidth())
	}
	tuned.MaxIterations = 0

	search, err := NewGridSearch(&tuned)
	if err != nil {
		return nil, err
	}
	return search.Optimize(ctx, NewSmoothingEvaluator(samples, options...))
}
