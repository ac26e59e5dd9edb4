package analysis

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/sphgas/internal/dynamo"
	"github.com/san-kum/sphgas/internal/sim"
	"github.com/san-kum/sphgas/internal/vec"
)

// Sensitivity records how a run and a slightly perturbed twin drift apart.
type Sensitivity struct {
	Times      []float64
	Separation []float64 // RMS position difference after each step
	// Rate is the least-squares slope of ln(Separation) against time. A
	// positive rate means nearby initial states diverge exponentially.
	Rate float64
}

// Separation samples cfg once, then steps two copies of that cloud, the
// second with particle 0 displaced by perturbation·Radius along x. On
// error the partial record is returned with it.
func Separation(ctx context.Context, cfg sim.Config, perturbation float64, steps int) (*Sensitivity, error) {
	if !(perturbation > 0) || math.IsInf(perturbation, 0) {
		return nil, dynamo.ConfigError("perturbation must be positive and finite, got %g", perturbation)
	}
	seed, err := sim.New(cfg)
	if err != nil {
		return nil, err
	}
	pos, vel := seed.Positions(), seed.Velocities()
	ref, err := sim.FromParticles(cfg, pos, vel)
	if err != nil {
		return nil, err
	}
	pos[0].X += perturbation * cfg.Radius
	twin, err := sim.FromParticles(cfg, pos, vel)
	if err != nil {
		return nil, err
	}

	out := &Sensitivity{}
	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return out, fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, err)
		}
		if err := ref.Step(); err != nil {
			return out, err
		}
		if err := twin.Step(); err != nil {
			return out, err
		}
		out.Times = append(out.Times, ref.Time())
		out.Separation = append(out.Separation, rmsDistance(ref.Positions(), twin.Positions()))
	}
	out.Rate = growthRate(out.Times, out.Separation)
	return out, nil
}

func rmsDistance(a, b []vec.Vec3) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i].Sub(b[i]).Norm2()
	}
	return math.Sqrt(sum / float64(len(a)))
}

func growthRate(times, sep []float64) float64 {
	var xs, ys []float64
	for i, d := range sep {
		if d > 0 {
			xs = append(xs, times[i])
			ys = append(ys, math.Log(d))
		}
	}
	if len(xs) < 2 {
		return 0
	}
	_, beta := stat.LinearRegression(xs, ys, nil, false)
	return beta
}
