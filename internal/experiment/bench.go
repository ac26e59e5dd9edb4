package experiment

import (
	"context"
	"time"

	"github.com/san-kum/sphgas/internal/dynamo"
	"github.com/san-kum/sphgas/internal/sim"
	"github.com/san-kum/sphgas/internal/vec"
)

// BenchResult is the mean wall time of each stage for one combination.
type BenchResult struct {
	Finder   string
	Solver   string
	Search   time.Duration
	Gravity  time.Duration
	FullStep time.Duration
}

// Benchmark times every finder × solver pair on the initial cloud of base,
// averaging over reps repetitions.
func (r *Registry) Benchmark(ctx context.Context, base sim.Config, reps int) ([]BenchResult, error) {
	if reps < 1 {
		reps = 1
	}
	var out []BenchResult
	for _, fname := range r.ListFinders() {
		for _, sname := range r.ListSolvers() {
			if err := ctx.Err(); err != nil {
				return out, dynamo.ErrContextCanceled
			}
			res, err := r.benchOne(base, fname, sname, reps)
			if err != nil {
				return out, err
			}
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *Registry) benchOne(base sim.Config, fname, sname string, reps int) (BenchResult, error) {
	cfg := base
	cfg.NeighborSearch = fname
	cfg.GravitySolver = sname
	s, err := sim.New(cfg)
	if err != nil {
		return BenchResult{}, err
	}
	finder, err := r.GetFinder(fname, cfg.Workers)
	if err != nil {
		return BenchResult{}, err
	}
	solver, err := r.GetSolver(sname, cfg.Workers, cfg.Theta)
	if err != nil {
		return BenchResult{}, err
	}

	res := BenchResult{Finder: fname, Solver: sname}
	pos, mass := s.Positions(), s.Masses()
	acc := make([]vec.Vec3, len(pos))
	minSep2 := cfg.MinSeparation * cfg.MinSeparation

	for i := 0; i < reps; i++ {
		t := time.Now()
		if _, err := finder.Find(pos, cfg.Neighbors); err != nil {
			return res, err
		}
		res.Search += time.Since(t)

		t = time.Now()
		if err := solver.Accelerations(pos, mass, cfg.G, minSep2, acc); err != nil {
			return res, err
		}
		res.Gravity += time.Since(t)

		t = time.Now()
		if err := s.Step(); err != nil {
			return res, err
		}
		res.FullStep += time.Since(t)
	}
	n := time.Duration(reps)
	res.Search /= n
	res.Gravity /= n
	res.FullStep /= n
	return res, nil
}
