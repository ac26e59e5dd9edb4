package physics

import (
	"github.com/san-kum/sphgas/internal/vec"
)

// Params carries the constants shared by the SPH sums.
type Params struct {
	// KernelCutoff truncates the kernel at this multiple of the pair
	// smoothing length. Zero keeps the full Gaussian.
	KernelCutoff float64
	// BackgroundPressure is subtracted from every particle's pressure.
	BackgroundPressure float64
}

// Particle is the state of the particle a sum is evaluated for. Density
// and Smoothing must already be current when they are read.
type Particle struct {
	Pos       vec.Vec3
	Vel       vec.Vec3
	Mass      float64
	Thermal   float64
	Smoothing float64
	Density   float64
}

// Pressure of this particle under p.
func (pt Particle) Pressure(p Params) float64 {
	return Pressure(pt.Thermal, pt.Density, pt.Mass, p.BackgroundPressure)
}

// Neighborhood holds the attributes of a particle's neighbors as
// index-aligned slices. A caller reuses one per worker with Reset/Append.
type Neighborhood struct {
	Pos       []vec.Vec3
	Vel       []vec.Vec3
	Mass      []float64
	Thermal   []float64
	Smoothing []float64
	Density   []float64
}

// Len is the number of neighbors.
func (nb *Neighborhood) Len() int { return len(nb.Pos) }

// Reset empties the neighborhood, keeping capacity.
func (nb *Neighborhood) Reset() {
	nb.Pos = nb.Pos[:0]
	nb.Vel = nb.Vel[:0]
	nb.Mass = nb.Mass[:0]
	nb.Thermal = nb.Thermal[:0]
	nb.Smoothing = nb.Smoothing[:0]
	nb.Density = nb.Density[:0]
}

// Append adds one neighbor.
func (nb *Neighborhood) Append(p Particle) {
	nb.Pos = append(nb.Pos, p.Pos)
	nb.Vel = append(nb.Vel, p.Vel)
	nb.Mass = append(nb.Mass, p.Mass)
	nb.Thermal = append(nb.Thermal, p.Thermal)
	nb.Smoothing = append(nb.Smoothing, p.Smoothing)
	nb.Density = append(nb.Density, p.Density)
}

// At returns neighbor j as a Particle.
func (nb *Neighborhood) At(j int) Particle {
	return Particle{
		Pos:       nb.Pos[j],
		Vel:       nb.Vel[j],
		Mass:      nb.Mass[j],
		Thermal:   nb.Thermal[j],
		Smoothing: nb.Smoothing[j],
		Density:   nb.Density[j],
	}
}

// Density is the kernel-weighted mass sum around self, including self's
// own contribution m·W(0, h), so it is positive for any positive mass.
func Density(self Particle, nb *Neighborhood, p Params) float64 {
	rho := self.Mass * Kernel(0, self.Smoothing, p.KernelCutoff)
	for j := range nb.Pos {
		h := PairSmoothing(self.Smoothing, nb.Smoothing[j])
		rho += nb.Mass[j] * Kernel(self.Pos.Sub(nb.Pos[j]).Norm2(), h, p.KernelCutoff)
	}
	return rho
}

// Pressure is the ideal monatomic gas pressure 2/3 · ρ · E/m minus the
// background.
func Pressure(thermal, density, mass, background float64) float64 {
	return thermal*density/(1.5*mass) - background
}

// pressureTerm is P_i/ρ_i² + P_j/ρ_j², symmetric in i and j.
func pressureTerm(self Particle, nb *Neighborhood, j int, p Params, pSelf float64) float64 {
	pj := Pressure(nb.Thermal[j], nb.Density[j], nb.Mass[j], p.BackgroundPressure)
	return pSelf/(self.Density*self.Density) + pj/(nb.Density[j]*nb.Density[j])
}

// PressureAcceleration is -Σ m_j (P_i/ρ_i² + P_j/ρ_j²) ∇_i W_ij.
func PressureAcceleration(self Particle, nb *Neighborhood, p Params) vec.Vec3 {
	pSelf := self.Pressure(p)
	var acc vec.Vec3
	for j := range nb.Pos {
		h := PairSmoothing(self.Smoothing, nb.Smoothing[j])
		grad := GradKernel(self.Pos, nb.Pos[j], h, p.KernelCutoff)
		acc.SubAssign(grad.Scale(nb.Mass[j] * pressureTerm(self, nb, j, p, pSelf)))
	}
	return acc
}

// VelocityDivergence estimates ∇·v at self as (1/ρ_i) Σ m_j (v_j - v_i)·∇_i W_ij.
// Negative values mean the neighborhood is converging.
func VelocityDivergence(self Particle, nb *Neighborhood, p Params) float64 {
	div := 0.0
	for j := range nb.Pos {
		h := PairSmoothing(self.Smoothing, nb.Smoothing[j])
		grad := GradKernel(self.Pos, nb.Pos[j], h, p.KernelCutoff)
		div += nb.Mass[j] * nb.Vel[j].Sub(self.Vel).Dot(grad)
	}
	return div / self.Density
}

// ThermalEnergyRate is the compression heating of self:
// ½ m_i Σ m_j (P_i/ρ_i² + P_j/ρ_j²)(v_i - v_j)·∇_i W_ij.
// Summed over a closed system it cancels the kinetic work of
// PressureAcceleration.
func ThermalEnergyRate(self Particle, nb *Neighborhood, p Params) float64 {
	pSelf := self.Pressure(p)
	rate := 0.0
	for j := range nb.Pos {
		h := PairSmoothing(self.Smoothing, nb.Smoothing[j])
		grad := GradKernel(self.Pos, nb.Pos[j], h, p.KernelCutoff)
		rate += nb.Mass[j] * pressureTerm(self, nb, j, p, pSelf) * self.Vel.Sub(nb.Vel[j]).Dot(grad)
	}
	return 0.5 * self.Mass * rate
}

// NeighborhoodVelocity is the XSPH correction Σ 2 m_j (v_j - v_i)/(ρ_i + ρ_j) W_ij,
// pulling self's advection velocity toward its neighbors' mean.
func NeighborhoodVelocity(self Particle, nb *Neighborhood, p Params) vec.Vec3 {
	var out vec.Vec3
	for j := range nb.Pos {
		h := PairSmoothing(self.Smoothing, nb.Smoothing[j])
		w := Kernel(self.Pos.Sub(nb.Pos[j]).Norm2(), h, p.KernelCutoff)
		if w == 0 {
			continue
		}
		scale := 2 * nb.Mass[j] * w / (self.Density + nb.Density[j])
		out.AddAssign(nb.Vel[j].Sub(self.Vel).Scale(scale))
	}
	return out
}
