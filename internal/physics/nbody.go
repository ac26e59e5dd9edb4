package physics

import (
	"math"

	"github.com/san-kum/sphgas/internal/vec"
)

// Gravity is the Newtonian pull of one mass on a particle at pos:
// G m (other - pos) / |other - pos|³. Pairs closer than sqrt(minSep2)
// contribute nothing.
func Gravity(pos, other vec.Vec3, mass, g, minSep2 float64) vec.Vec3 {
	r := other.Sub(pos)
	d2 := r.Norm2()
	if d2 < minSep2 || d2 == 0 {
		return vec.Vec3{}
	}
	return r.Scale(g * mass / (d2 * math.Sqrt(d2)))
}

// GravitationalAcceleration sums Gravity from every entry of positions on
// particle self, skipping index self. O(n).
func GravitationalAcceleration(self int, positions []vec.Vec3, masses []float64, g, minSep2 float64) vec.Vec3 {
	pos := positions[self]
	var acc vec.Vec3
	for j, other := range positions {
		if j == self {
			continue
		}
		acc.AddAssign(Gravity(pos, other, masses[j], g, minSep2))
	}
	return acc
}

// PotentialEnergy is -Σ_{i<j} G m_i m_j / |r_ij| with the same
// minimum-separation guard as Gravity.
func PotentialEnergy(positions []vec.Vec3, masses []float64, g, minSep2 float64) float64 {
	u := 0.0
	for i := range positions {
		for j := i + 1; j < len(positions); j++ {
			d2 := positions[i].Sub(positions[j]).Norm2()
			if d2 < minSep2 || d2 == 0 {
				continue
			}
			u -= g * masses[i] * masses[j] / math.Sqrt(d2)
		}
	}
	return u
}
