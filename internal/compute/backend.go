package compute

import (
	"fmt"

	"github.com/san-kum/sphgas/internal/dynamo"
	"github.com/san-kum/sphgas/internal/vec"
)

// Backend fills out[i] with the gravitational acceleration of particle i
// due to every other particle. Pairs closer than sqrt(minSep2) are skipped.
type Backend interface {
	Name() string
	Accelerations(positions []vec.Vec3, masses []float64, g, minSep2 float64, out []vec.Vec3) error
}

// New returns the backend registered under name.
func New(name string, workers int, theta float64) (Backend, error) {
	switch name {
	case "", "direct":
		return NewCPUBackend(workers), nil
	case "barneshut":
		if theta < 0 {
			return nil, dynamo.ConfigError("barnes-hut theta must be >= 0, got %g", theta)
		}
		return &BarnesHutBackend{Theta: theta, Workers: workers}, nil
	default:
		return nil, dynamo.ConfigError("unknown gravity solver %q", name)
	}
}

// Names lists the backends accepted by New.
func Names() []string { return []string{"direct", "barneshut"} }

func checkLengths(positions []vec.Vec3, masses []float64, out []vec.Vec3) error {
	if len(masses) != len(positions) || len(out) != len(positions) {
		return fmt.Errorf("%w: gravity buffers differ in length (%d positions, %d masses, %d out)",
			dynamo.ErrConfig, len(positions), len(masses), len(out))
	}
	return nil
}
