package sim

import (
	"math"

	"github.com/san-kum/sphgas/internal/dynamo"
	"github.com/san-kum/sphgas/internal/physics"
	"github.com/san-kum/sphgas/internal/vec"
)

const minChunk = 8

func (s *Simulation) particle(i int) physics.Particle {
	return physics.Particle{
		Pos:       s.pos[i],
		Vel:       s.vel[i],
		Mass:      s.mass[i],
		Thermal:   s.thermal[i],
		Smoothing: s.smoothing[i],
		Density:   s.density[i],
	}
}

func (s *Simulation) gather(nb *physics.Neighborhood, i int) {
	nb.Reset()
	for _, j := range s.nbrs[i] {
		nb.Append(s.particle(j))
	}
}

// updateDensities rebuilds neighbor lists, then smoothing lengths, then
// densities. Density reads only positions, masses and smoothing lengths,
// never another particle's density.
func (s *Simulation) updateDensities() error {
	nbrs, err := s.finder.Find(s.pos, s.cfg.Neighbors)
	if err != nil {
		return err
	}
	s.nbrs = nbrs

	floor := s.cfg.smoothingFloor()
	dynamo.ParallelFor(len(s.pos), s.cfg.Workers, minChunk, func(start, end int) {
		pts := make([]vec.Vec3, 0, s.cfg.Neighbors)
		for i := start; i < end; i++ {
			pts = pts[:0]
			for _, j := range s.nbrs[i] {
				pts = append(pts, s.pos[j])
			}
			s.smoothing[i] = physics.SmoothingLength(s.pos[i], pts, s.cfg.SmoothingPolicy, s.cfg.SmoothingFactor, floor)
		}
	})

	dynamo.ParallelFor(len(s.pos), s.cfg.Workers, minChunk, func(start, end int) {
		nb := s.pool.Get()
		defer s.pool.Put(nb)
		for i := start; i < end; i++ {
			s.gather(nb, i)
			s.density[i] = physics.Density(s.particle(i), nb, s.params)
		}
	})
	return nil
}

// computeDeltas evaluates every particle against the committed state.
func (s *Simulation) computeDeltas() error {
	if s.cfg.EnableGravity {
		minSep2 := s.cfg.MinSeparation * s.cfg.MinSeparation
		if err := s.gravity.Accelerations(s.pos, s.mass, s.cfg.G, minSep2, s.gravAcc); err != nil {
			return err
		}
	} else {
		clear(s.gravAcc)
	}

	dynamo.ParallelFor(len(s.pos), s.cfg.Workers, minChunk, func(start, end int) {
		nb := s.pool.Get()
		defer s.pool.Put(nb)
		for i := start; i < end; i++ {
			s.gather(nb, i)
			self := s.particle(i)
			d := delta{
				acc:        s.gravAcc[i],
				divergence: physics.VelocityDivergence(self, nb, s.params),
			}
			if s.cfg.EnableGas {
				d.acc.AddAssign(physics.PressureAcceleration(self, nb, s.params))
				d.dThermal = physics.ThermalEnergyRate(self, nb, s.params)
				d.xsph = physics.NeighborhoodVelocity(self, nb, s.params)
			}
			s.deltas[i] = d
		}
	})
	return nil
}

func (s *Simulation) commit(dt float64) {
	w := s.cfg.XSPHWeight
	dynamo.ParallelFor(len(s.pos), s.cfg.Workers, minChunk, func(start, end int) {
		for i := start; i < end; i++ {
			d := &s.deltas[i]
			move := s.vel[i].Scale(dt).
				Add(d.acc.Scale(0.5 * dt * dt)).
				Add(d.xsph.Scale(w * dt))
			s.pos[i].AddAssign(move)
			s.vel[i].AddAssign(d.acc.Scale(dt))
			s.thermal[i] += d.dThermal * dt
			s.divergence[i] = d.divergence
		}
	})
}

// recenter moves the mass-weighted centre of mass to the origin.
func (s *Simulation) recenter() {
	com := CenterOfMass(s.pos, s.mass)
	for i := range s.pos {
		s.pos[i].SubAssign(com)
	}
}

// checkInvariants returns the first offending particle and its error.
func (s *Simulation) checkInvariants() (int, error) {
	for i := range s.pos {
		if !s.pos[i].IsFinite() || !s.vel[i].IsFinite() || math.IsNaN(s.thermal[i]) || math.IsInf(s.thermal[i], 0) {
			return i, dynamo.ErrDiverged
		}
		if s.thermal[i] < 0 {
			return i, dynamo.ErrNegativeEnergy
		}
	}
	return -1, nil
}

// CenterOfMass is Σ m_i r_i / Σ m_i.
func CenterOfMass(positions []vec.Vec3, masses []float64) vec.Vec3 {
	var sum vec.Vec3
	total := 0.0
	for i, p := range positions {
		sum.AddAssign(p.Scale(masses[i]))
		total += masses[i]
	}
	if total == 0 {
		return vec.Vec3{}
	}
	return sum.Div(total)
}
