package metric

import (
	"math/rand"
	"sort"
	"time"

	"github.com/raykavin/vitaltrend/pkg/core"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

// Interval is a bootstrap confidence interval around the mean of a sample
type Interval struct {
	Mean       float64 // mean of the observed sample
	Lower      float64 // lower bound at the confidence level
	Upper      float64 // upper bound at the confidence level
	Spread     float64 // standard deviation of the resampled means
	Confidence float64
}

// Contains reports whether v lies within the interval
func (i Interval) Contains(v float64) bool {
	return v >= i.Lower && v <= i.Upper
}

type bootstrap struct {
	resamples  int
	confidence float64
	random     *rand.Rand
}

// BootstrapOption configures an interval estimate
type BootstrapOption func(*bootstrap)

// WithResamples sets the number of resampled means
func WithResamples(n int) BootstrapOption {
	return func(b *bootstrap) {
		b.resamples = n
	}
}

// WithConfidence sets the confidence level, e.g. 0.95
func WithConfidence(confidence float64) BootstrapOption {
	return func(b *bootstrap) {
		b.confidence = confidence
	}
}

// WithRand sets the random source, for reproducible intervals
func WithRand(random *rand.Rand) BootstrapOption {
	return func(b *bootstrap) {
		b.random = random
	}
}

// MeanInterval estimates the confidence interval of the mean of values by
// resampling with replacement. It returns false without values, without
// resamples or with a confidence outside (0, 1).
func MeanInterval(values []float64, options ...BootstrapOption) (Interval, bool) {
	b := bootstrap{resamples: 1000, confidence: 0.95}
	for _, option := range options {
		option(&b)
	}
	if b.random == nil {
		b.random = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	if len(values) == 0 || b.resamples <= 0 || b.confidence <= 0 || b.confidence >= 1 {
		return Interval{}, false
	}

	means := lo.Times(b.resamples, func(int) float64 {
		sample := lo.Times(len(values), func(int) float64 {
			return values[b.random.Intn(len(values))]
		})
		return stat.Mean(sample, nil)
	})
	sort.Float64s(means)

	tail := (1 - b.confidence) / 2
	return Interval{
		Mean:       stat.Mean(values, nil),
		Lower:      stat.Quantile(tail, stat.LinInterp, means, nil),
		Upper:      stat.Quantile(1-tail, stat.LinInterp, means, nil),
		Spread:     stat.StdDev(means, nil),
		Confidence: b.confidence,
	}, true
}

// RateInterval estimates the mean weekly rate of change of a metric and its
// confidence interval. It returns false when fewer than two usable samples
// are apart in time.
func RateInterval(times []time.Time, values core.NullSeries, options ...BootstrapOption) (Interval, bool) {
	return MeanInterval(WeeklyRates(times, values), options...)
}
