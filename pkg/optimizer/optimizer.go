// Package optimizer searches parameter values that minimize a score, such as
// the cross validation error of a smoothing bandwidth.
package optimizer

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/raykavin/vitaltrend/pkg/logger"
)

// ErrNoParameters is returned when a search has nothing to optimize
var ErrNoParameters = errors.New("at least one parameter must be provided")

// Parameter represents a numeric parameter that can be optimized
type Parameter struct {
	Name        string  // Name of the parameter
	Description string  // Description of what the parameter does
	Default     float64 // Default value
	Min         float64 // Minimum value
	Max         float64 // Maximum value
	Step        float64 // Step size in grid search
}

// ParameterSet represents a collection of parameters with specific values
type ParameterSet map[string]float64

// Result represents the outcome of a single evaluation
type Result struct {
	Parameters ParameterSet  // The parameter values used
	Score      float64       // Score of the evaluation, lower is better
	Duration   time.Duration // How long the evaluation took
}

// Evaluator scores a parameter set, lower is better
type Evaluator interface {
	Evaluate(ctx context.Context, params ParameterSet) (float64, error)
}

// EvaluatorFunc adapts a function to the Evaluator interface
type EvaluatorFunc func(ctx context.Context, params ParameterSet) (float64, error)

// Evaluate calls f
func (f EvaluatorFunc) Evaluate(ctx context.Context, params ParameterSet) (float64, error) {
	return f(ctx, params)
}

// Optimizer defines the interface for optimization algorithms
type Optimizer interface {
	// Optimize evaluates candidate parameter sets and returns the results, best first
	Optimize(ctx context.Context, evaluator Evaluator) ([]*Result, error)
}

// Config holds configuration for the optimization process
type Config struct {
	// Parameters to optimize
	Parameters []Parameter
	// Maximum number of evaluations, zero for no limit in grid search
	MaxIterations int
	// Number of parallel evaluations
	Parallelism int
	// Logger instance
	Logger logger.Logger
	// Top N results to return, zero for all
	TopN int
}

// NewConfig creates a default configuration
func NewConfig() *Config {
	return &Config{
		MaxIterations: 100,
		Parallelism:   1,
		Logger:        logger.Nop(),
		TopN:          5,
	}
}

// WithParameters adds parameters to the configuration
func (c *Config) WithParameters(params ...Parameter) *Config {
	c.Parameters = append(c.Parameters, params...)
	return c
}

// WithMaxIterations sets the maximum number of iterations
func (c *Config) WithMaxIterations(iterations int) *Config {
	c.MaxIterations = iterations
	return c
}

// WithParallelism sets the number of parallel evaluations
func (c *Config) WithParallelism(n int) *Config {
	c.Parallelism = n
	return c
}

// WithLogger sets the logger
func (c *Config) WithLogger(logger logger.Logger) *Config {
	c.Logger = logger
	return c
}

// WithTopN sets the number of top results to return
func (c *Config) WithTopN(n int) *Config {
	c.TopN = n
	return c
}

func (c *Config) validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if len(c.Parameters) == 0 {
		return ErrNoParameters
	}
	for _, param := range c.Parameters {
		if param.Min > param.Max {
			return fmt.Errorf("parameter %s: min %g is greater than max %g", param.Name, param.Min, param.Max)
		}
	}
	if c.Logger == nil {
		c.Logger = logger.Nop()
	}
	if c.Parallelism < 1 {
		c.Parallelism = 1
	}
	return nil
}

// rank sorts results by score, keeping the evaluation order of ties, and
// keeps the top n when n is positive
func rank(results []*Result, n int) []*Result {
	slices.SortStableFunc(results, func(a, b *Result) int {
		return cmp.Compare(a.Score, b.Score)
	})
	if n > 0 && len(results) > n {
		results = results[:n]
	}
	return results
}
