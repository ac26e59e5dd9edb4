package compute

import (
	"github.com/san-kum/sphgas/internal/dynamo"
	"github.com/san-kum/sphgas/internal/physics"
	"github.com/san-kum/sphgas/internal/vec"
)

// CPUBackend is the exact pairwise sum. Each worker owns a contiguous
// range of output slots, so no reduction is needed.
type CPUBackend struct {
	workers int
}

func NewCPUBackend(workers int) *CPUBackend {
	return &CPUBackend{workers: workers}
}

func (c *CPUBackend) Name() string { return "direct" }

func (c *CPUBackend) Accelerations(positions []vec.Vec3, masses []float64, g, minSep2 float64, out []vec.Vec3) error {
	if err := checkLengths(positions, masses, out); err != nil {
		return err
	}
	// Small systems stay on one goroutine.
	dynamo.ParallelFor(len(positions), c.workers, 16, func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = physics.GravitationalAcceleration(i, positions, masses, g, minSep2)
		}
	})
	return nil
}
