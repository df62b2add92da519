package optimizer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/raykavin/vitaltrend/pkg/logger"
)

// evaluateAll runs the evaluations with at most parallelism at a time. The
// results keep the order of parameterSets.
func evaluateAll(
	ctx context.Context,
	evaluator Evaluator,
	parameterSets []ParameterSet,
	parallelism int,
	log logger.Logger,
) ([]*Result, error) {
	var (
		results   = make([]*Result, len(parameterSets))
		wg        sync.WaitGroup
		errCh     = make(chan error, 1)
		semaphore = make(chan struct{}, max(1, parallelism))
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

dispatch:
	for i, params := range parameterSets {
		select {
		case <-ctx.Done():
			break dispatch
		case semaphore <- struct{}{}:
		}

		wg.Add(1)
		go func(index int, paramSet ParameterSet) {
			defer wg.Done()
			defer func() { <-semaphore }()

			begin := time.Now()
			score, err := evaluator.Evaluate(ctx, paramSet)
			if err != nil {
				select {
				case errCh <- fmt.Errorf("evaluation %d failed: %w", index+1, err):
					cancel()
				default:
				}
				return
			}

			results[index] = &Result{Parameters: paramSet, Score: score, Duration: time.Since(begin)}
			log.Debugf("Completed evaluation %d/%d: %g", index+1, len(parameterSets), score)
		}(i, params)
	}

	wg.Wait()

	select {
	case err := <-errCh:
		return nil, err
	default:
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return results, nil
}
