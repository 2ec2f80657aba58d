package pipeline

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kinetics-tools/thermofit/internal/model"
)

// SpeciesError records one species' failure within a batch.
type SpeciesError struct {
	Label string
	Err   error
}

// BatchResult collects the outcome of a batch run: the fitted records and
// the per-species error list. A batch never aborts because one species
// failed; only context cancellation stops it early.
type BatchResult struct {
	Records []*model.SpeciesRecord
	Errors  []SpeciesError
}

// Succeeded returns the number of fitted species.
func (r *BatchResult) Succeeded() int { return len(r.Records) }

// Failed returns the number of failed species.
func (r *BatchResult) Failed() int { return len(r.Errors) }

// RunBatch fits all species concurrently with at most concurrency
// in-flight at once. The returned error is non-nil only for context
// cancellation; per-species failures land in the result's error list.
func (p *Pipeline) RunBatch(ctx context.Context, inputs []*model.SpeciesRecord, concurrency int) (*BatchResult, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	zap.L().Info("pipeline: processing batch",
		zap.Int("species", len(inputs)),
		zap.Int("concurrency", concurrency),
	)

	var (
		mu        sync.Mutex
		result    BatchResult
		succeeded atomic.Int64
		failed    atomic.Int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, input := range inputs {
		input := input
		g.Go(func() error {
			rec, err := p.Run(gctx, input)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				failed.Add(1)
				zap.L().Error("pipeline: species failed",
					zap.String("species", input.Label),
					zap.Error(err),
				)
				mu.Lock()
				result.Errors = append(result.Errors, SpeciesError{Label: input.Label, Err: err})
				mu.Unlock()
				return nil
			}
			succeeded.Add(1)
			mu.Lock()
			result.Records = append(result.Records, rec)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return &result, err
	}

	zap.L().Info("pipeline: batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return &result, nil
}
