package optimizer

import (
	"context"
	"fmt"
	"math/rand"
)

// RandomSearch evaluates MaxIterations parameter sets drawn uniformly
// between each parameter's Min and Max
type RandomSearch struct {
	config *Config
	rng    *rand.Rand
}

// NewRandomSearch creates a random search optimizer drawing from seed
func NewRandomSearch(config *Config, seed int64) (*RandomSearch, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	if config.MaxIterations < 1 {
		return nil, fmt.Errorf("random search needs a positive number of iterations")
	}

	return &RandomSearch{
		config: config,
		rng:    rand.New(rand.NewSource(seed)),
	}, nil
}

// Optimize runs the random search optimization process
func (r *RandomSearch) Optimize(ctx context.Context, evaluator Evaluator) ([]*Result, error) {
	if evaluator == nil {
		return nil, fmt.Errorf("evaluator cannot be nil")
	}

	parameterSets := r.generate()
	r.config.Logger.Infof("Starting random search with %d iterations", len(parameterSets))

	results, err := evaluateAll(ctx, evaluator, parameterSets, r.config.Parallelism, r.config.Logger)
	if err != nil {
		return nil, err
	}

	r.config.Logger.Infof("Random search completed with %d results", len(results))
	return rank(results, r.config.TopN), nil
}

// generate creates random parameter sets for evaluation
func (r *RandomSearch) generate() []ParameterSet {
	parameterSets := make([]ParameterSet, r.config.MaxIterations)
	for i := range parameterSets {
		paramSet := make(ParameterSet, len(r.config.Parameters))
		for _, param := range r.config.Parameters {
			paramSet[param.Name] = param.Min + r.rng.Float64()*(param.Max-param.Min)
		}
		parameterSets[i] = paramSet
	}
	return parameterSets
}
