package sim

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Builder assembles an independent simulator for one replica seed.
type Builder func(seed int64) (*Simulator, error)

// Ensemble runs independent replicas of a system that differ only in the seed
// used to generate their initial state. Replicas share nothing, so each runs
// on its own goroutine.
type Ensemble struct {
	build     Builder
	numRuns   int
	seedStart int64
}

func NewEnsemble(build Builder, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{build: build, numRuns: numRuns, seedStart: seedStart}
}

// Run returns one result per replica in seed order. The first failing replica
// cancels the others.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < e.numRuns; i++ {
		g.Go(func() error {
			s, err := e.build(e.seedStart + int64(i))
			if err != nil {
				return err
			}
			res, err := s.Run(gctx, cfg)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
