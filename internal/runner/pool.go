package runner

import (
	"context"

	"github.com/sourcegraph/conc/pool"
)

// RunAll executes tasks concurrently, bounded by concurrency, modeling the
// process-level isolation CI gives each reviewer job while still letting
// local/testing runs share one machine. Results preserve the input order
// regardless of completion order.
func RunAll(ctx context.Context, tasks []Task, concurrency int) ([]*Artifact, error) {
	if concurrency <= 0 {
		concurrency = 1
	}

	results := make([]*Artifact, len(tasks))
	p := pool.New().WithContext(ctx).WithMaxGoroutines(concurrency).WithCancelOnError()

	for i, task := range tasks {
		i, task := i, task
		p.Go(func(gctx context.Context) error {
			art, err := Run(gctx, task)
			if err != nil {
				return err
			}
			results[i] = art
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
