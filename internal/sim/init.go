package sim

import (
	"math"
	"math/rand"

	"github.com/san-kum/sphgas/internal/vec"
)

// samplePositions draws cfg.Count points between ShellInner and Radius
// with isotropic directions and a radial law following cfg.Profile.
func samplePositions(cfg Config, rng *rand.Rand) []vec.Vec3 {
	out := make([]vec.Vec3, cfg.Count)
	for i := range out {
		out[i] = randomDirection(rng).Scale(sampleRadius(cfg, rng.Float64()))
	}
	return out
}

// sampleRadius inverts the enclosed-mass fraction u of the profile.
func sampleRadius(cfg Config, u float64) float64 {
	r0, r1 := cfg.ShellInner, cfg.Radius
	switch cfg.Profile {
	case ProfileInverseLinear:
		// ρ ∝ 1/r, M(r) ∝ r²
		return math.Sqrt(u*(r1*r1-r0*r0) + r0*r0)
	case ProfileInverseQuadratic:
		// ρ ∝ 1/r², M(r) ∝ r
		return r0 + u*(r1-r0)
	default:
		return math.Cbrt(u*(r1*r1*r1-r0*r0*r0) + r0*r0*r0)
	}
}

func randomDirection(rng *rand.Rand) vec.Vec3 {
	z := 2*rng.Float64() - 1
	phi := 2 * math.Pi * rng.Float64()
	rho := math.Sqrt(1 - z*z)
	sin, cos := math.Sincos(phi)
	return vec.Vec3{X: rho * cos, Y: rho * sin, Z: z}
}

// rotatingVelocities gives rigid rotation about z with speed cfg.Speed at
// cfg.Radius.
func rotatingVelocities(cfg Config, positions []vec.Vec3) []vec.Vec3 {
	omega := cfg.Speed / cfg.Radius
	out := make([]vec.Vec3, len(positions))
	for i, p := range positions {
		out[i] = vec.Vec3{X: -p.Y, Y: p.X}.Scale(omega)
	}
	return out
}
