package sim

import "github.com/san-kum/sphgas/internal/vec"

// Phase is the lifecycle state of a Simulation.
type Phase int

const (
	Uninitialized Phase = iota
	Ready
	Stepping
	Terminated
)

func (p Phase) String() string {
	switch p {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case Stepping:
		return "stepping"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Snapshot is an independent copy of the particle state between steps.
// Index i refers to the same particle in every slice and every snapshot
// of a run.
type Snapshot struct {
	Step       int
	Time       float64
	Positions  []vec.Vec3
	Velocities []vec.Vec3
	Masses     []float64
	Thermal    []float64
	Densities  []float64
	Smoothing  []float64
	Divergence []float64
}

// Len is the particle count.
func (s *Snapshot) Len() int { return len(s.Positions) }

// delta is what the parallel pass produces for one particle. Nothing is
// applied until every particle has one.
type delta struct {
	acc        vec.Vec3
	xsph       vec.Vec3
	dThermal   float64
	divergence float64
}

func cloneVecs(v []vec.Vec3) []vec.Vec3 {
	out := make([]vec.Vec3, len(v))
	copy(out, v)
	return out
}

func cloneFloats(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
