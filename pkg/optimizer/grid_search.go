package optimizer

import (
	"context"
	"fmt"
	"math"
)

// GridSearch evaluates every combination of parameter values from Min to
// Max in Step increments
type GridSearch struct {
	config *Config
}

// NewGridSearch creates a new grid search optimizer
func NewGridSearch(config *Config) (*GridSearch, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &GridSearch{config: config}, nil
}

// Optimize runs the grid search optimization process
func (g *GridSearch) Optimize(ctx context.Context, evaluator Evaluator) ([]*Result, error) {
	if evaluator == nil {
		return nil, fmt.Errorf("evaluator cannot be nil")
	}

	parameterSets := g.grid()
	g.config.Logger.Infof("Starting grid search with %d combinations", len(parameterSets))

	results, err := evaluateAll(ctx, evaluator, parameterSets, g.config.Parallelism, g.config.Logger)
	if err != nil {
		return nil, err
	}

	g.config.Logger.Infof("Grid search completed with %d results", len(results))
	return rank(results, g.config.TopN), nil
}

// grid returns the cartesian product of every parameter's values, truncated
// to MaxIterations when it is positive
func (g *GridSearch) grid() []ParameterSet {
	sets := []ParameterSet{{}}

	for _, param := range g.config.Parameters {
		values := steps(param)
		next := make([]ParameterSet, 0, len(sets)*len(values))
		for _, set := range sets {
			for _, value := range values {
				combined := make(ParameterSet, len(set)+1)
				for name, v := range set {
					combined[name] = v
				}
				combined[param.Name] = value
				next = append(next, combined)
			}
		}
		sets = next
	}

	if limit := g.config.MaxIterations; limit > 0 && len(sets) > limit {
		sets = sets[:limit]
	}
	return sets
}

// steps lists the values of param. Without a positive step only Min is used.
func steps(param Parameter) []float64 {
	if param.Step <= 0 || param.Min == param.Max {
		return []float64{param.Min}
	}

	count := int(math.Floor((param.Max-param.Min)/param.Step+1e-9)) + 1
	values := make([]float64, count)
	for i := range values {
		// rounded to drop accumulated float error
		values[i] = math.Round((param.Min+float64(i)*param.Step)*1e9) / 1e9
	}
	return values
}
