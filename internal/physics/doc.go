// Package physics holds the pure functions of the particle model: the
// Gaussian smoothing kernel and its gradient, SPH density, pressure,
// pressure acceleration, velocity divergence, thermal-energy rate and XSPH
// velocity, plus direct-sum Newtonian gravity and ideal-gas relations.
//
// No function keeps state. Each takes the particle's own attributes as a
// [Particle] and its neighbors' attributes as index-aligned slices in a
// [Neighborhood], so a caller can evaluate every particle of a step in
// parallel against the same committed snapshot.
//
// # Conventions
//
//   - Pair smoothing length is the arithmetic mean of the two particles'
//     smoothing lengths ([PairSmoothing]); it is symmetric, which makes
//     [GradKernel] antisymmetric and the pressure force momentum-conserving.
//   - Thermal energy is the internal energy carried by one particle (not
//     per unit mass). Pressure follows P = 2/3 · ρ · E/m (γ = 5/3).
//   - Sums always run over the full neighbor list.
package physics
