package physics

import (
	"math"

	"github.com/san-kum/sphgas/internal/vec"
)

// π^(-3/2), the 3-D Gaussian normalization.
var gaussNorm = math.Pow(math.Pi, -1.5)

// SmoothingPolicy selects how a particle's smoothing length follows its
// neighbor distances.
type SmoothingPolicy int

const (
	// PolicyMax uses the largest neighbor distance divided by a factor.
	PolicyMax SmoothingPolicy = iota
	// PolicyMean uses the mean neighbor distance.
	PolicyMean
)

func (p SmoothingPolicy) String() string {
	switch p {
	case PolicyMax:
		return "max"
	case PolicyMean:
		return "mean"
	default:
		return "unknown"
	}
}

// ParseSmoothingPolicy maps "max" or "mean" to a policy.
func ParseSmoothingPolicy(s string) (SmoothingPolicy, bool) {
	switch s {
	case "", "max":
		return PolicyMax, true
	case "mean":
		return PolicyMean, true
	}
	return PolicyMax, false
}

// SmoothingLength derives a particle's kernel scale from the positions of
// its neighbors. The result is never below floor.
func SmoothingLength(self vec.Vec3, neighbors []vec.Vec3, policy SmoothingPolicy, factor, floor float64) float64 {
	var h float64
	switch policy {
	case PolicyMean:
		sum := 0.0
		for _, p := range neighbors {
			sum += p.Sub(self).Norm()
		}
		if len(neighbors) > 0 {
			h = sum / float64(len(neighbors))
		}
	default:
		maxD2 := 0.0
		for _, p := range neighbors {
			maxD2 = math.Max(maxD2, p.Sub(self).Norm2())
		}
		h = math.Sqrt(maxD2) / factor
	}
	if !(h > floor) {
		return floor
	}
	return h
}

// PairSmoothing is the smoothing length used for the interaction of two
// particles.
func PairSmoothing(a, b float64) float64 {
	return 0.5 * (a + b)
}

// Kernel is the normalized Gaussian W(d, h) = π^-3/2 h^-3 exp(-d²/h²),
// taking the squared distance. With cutoff > 0 it is zero beyond cutoff·h.
func Kernel(d2, h, cutoff float64) float64 {
	if cutoff > 0 && d2 > cutoff*cutoff*h*h {
		return 0
	}
	return gaussNorm * math.Exp(-d2/(h*h)) / (h * h * h)
}

// GradKernel is the gradient of Kernel with respect to self's position:
// -2 (self - other) / h² · W. Swapping self and other flips its sign.
func GradKernel(self, other vec.Vec3, h, cutoff float64) vec.Vec3 {
	r := self.Sub(other)
	w := Kernel(r.Norm2(), h, cutoff)
	if w == 0 {
		return vec.Vec3{}
	}
	return r.Scale(-2 * w / (h * h))
}
