package compute

import (
	"math"

	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/sphgas/internal/dynamo"
	"github.com/san-kum/sphgas/internal/vec"
)

// BarnesHutBackend approximates distant groups of particles by their
// centre of mass using gonum's octree. The tree is rebuilt on every call.
// Theta > 0 requires all masses to be equal.
type BarnesHutBackend struct {
	Theta   float64
	Workers int
}

func (b *BarnesHutBackend) Name() string { return "barneshut" }

func (b *BarnesHutBackend) Accelerations(positions []vec.Vec3, masses []float64, g, minSep2 float64, out []vec.Vec3) error {
	if err := checkLengths(positions, masses, out); err != nil {
		return err
	}

	// The octree's centres of mass are only right for unit-mass bodies, so
	// for θ > 0 the shared particle mass scales the pull instead.
	scale := 1.0
	unit := b.Theta > 0
	if unit && len(masses) > 0 {
		scale = masses[0]
		for _, m := range masses[1:] {
			if m != scale {
				return dynamo.ConfigError("barneshut with theta > 0 needs equal particle masses")
			}
		}
	}

	bodies := make([]body, len(positions))
	particles := make([]barneshut.Particle3, len(positions))
	for i, p := range positions {
		m := masses[i]
		if unit {
			m = 1
		}
		bodies[i] = body{pos: r3.Vec{X: p.X, Y: p.Y, Z: p.Z}, mass: m}
		particles[i] = &bodies[i]
	}
	volume, err := barneshut.NewVolume(particles)
	if err != nil {
		return err
	}

	force := pull(g*scale, minSep2)
	dynamo.ParallelFor(len(positions), b.Workers, 16, func(start, end int) {
		for i := start; i < end; i++ {
			a := volume.ForceOn(particles[i], b.Theta, force)
			out[i] = vec.Vec3{X: a.X, Y: a.Y, Z: a.Z}
		}
	})
	return nil
}

// body is addressed by pointer so ForceOn can recognise and skip the
// particle it is evaluating.
type body struct {
	pos  r3.Vec
	mass float64
}

func (b *body) Coord3() r3.Vec { return b.pos }
func (b *body) Mass() float64  { return b.mass }

// pull returns the acceleration of p1 toward a mass m2 displaced by v,
// G m2 v / |v|³, or zero inside the minimum separation.
func pull(g, minSep2 float64) barneshut.Force3 {
	return func(_, _ barneshut.Particle3, _, m2 float64, v r3.Vec) r3.Vec {
		d2 := r3.Norm2(v)
		if d2 < minSep2 || d2 == 0 {
			return r3.Vec{}
		}
		return r3.Scale(g*m2/(d2*math.Sqrt(d2)), v)
	}
}
