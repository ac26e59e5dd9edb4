package sim

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/sphgas/internal/dynamo"
)

// Ensemble runs the same configuration under consecutive seeds.
type Ensemble struct {
	base      Config
	numRuns   int
	seedStart int64
	// Concurrency caps how many runs step at once; 0 means no limit.
	Concurrency int
}

func NewEnsemble(base Config, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{base: base, numRuns: numRuns, seedStart: seedStart}
}

// Run builds every member and advances it steps times. The first error
// cancels the remaining runs. Results are ordered by seed.
func (e *Ensemble) Run(ctx context.Context, steps int) ([]*Simulation, error) {
	results := make([]*Simulation, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	if e.Concurrency > 0 {
		g.SetLimit(e.Concurrency)
	}
	for i := 0; i < e.numRuns; i++ {
		idx := i
		g.Go(func() error {
			cfg := e.base
			cfg.Seed = e.seedStart + int64(idx)

			s, err := New(cfg)
			if err != nil {
				return err
			}
			for step := 0; step < steps; step++ {
				if ctx.Err() != nil {
					return dynamo.ErrContextCanceled
				}
				if err := s.Step(); err != nil {
					return err
				}
			}
			results[idx] = s
			logrus.WithField("seed", cfg.Seed).Debugf("ensemble member finished %d steps", steps)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
