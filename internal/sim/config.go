package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/sphgas/internal/dynamo"
	"github.com/san-kum/sphgas/internal/physics"
)

// SI reference units.
const (
	AU        = 1.5e11
	Year      = 3e7
	SolarMass = 2e30

	GravitationalConstant = 6.674e-11
	GasConstant           = 8.314
	// MolarMassH2 is molecular hydrogen, kg/mol.
	MolarMassH2 = 0.002016
)

// Profile is the radial distribution used to sample initial positions.
type Profile string

const (
	ProfileUniform          Profile = "uniform"
	ProfileInverseLinear    Profile = "inverse_linear"
	ProfileInverseQuadratic Profile = "inverse_quadratic"
)

// Config holds every construction input of a Simulation. It is copied at
// construction and kept for the run.
type Config struct {
	Count int
	// Radius of the initial cloud.
	Radius float64
	// ShellInner > 0 samples a hollow shell between ShellInner and Radius.
	ShellInner float64
	Profile    Profile
	// Speed is the rotational speed at Radius; velocity is
	// Speed/Radius · (-y, x, 0).
	Speed       float64
	TotalMass   float64
	Temperature float64
	MolarMass   float64
	GasConstant float64
	G           float64

	Neighbors int
	Dt        float64

	EnableGravity bool
	EnableGas     bool

	SmoothingPolicy    physics.SmoothingPolicy
	SmoothingFactor    float64
	KernelCutoff       float64
	BackgroundPressure float64
	XSPHWeight         float64
	// MinSeparation guards gravity and floors the smoothing length.
	MinSeparation float64
	Recenter      bool

	Workers        int
	Seed           int64
	NeighborSearch string
	GravitySolver  string
	Theta          float64
}

// DefaultConfig is a slowly rotating solar-mass hydrogen cloud of 10 000 AU.
func DefaultConfig() Config {
	const radius = 10000 * AU
	const period = 1e9 * Year
	return Config{
		Count:       2000,
		Radius:      radius,
		Profile:     ProfileUniform,
		Speed:       2 * math.Pi * radius / period,
		TotalMass:   SolarMass,
		Temperature: 5,
		MolarMass:   MolarMassH2,
		GasConstant: GasConstant,
		G:           GravitationalConstant,

		Neighbors: 30,
		Dt:        1000 * Year,

		EnableGravity: true,
		EnableGas:     true,

		SmoothingPolicy: physics.PolicyMax,
		SmoothingFactor: 2,
		KernelCutoff:    2,
		XSPHWeight:      1,
		MinSeparation:   radius * 1e-6,
		Recenter:        true,

		NeighborSearch: "kdtree",
		GravitySolver:  "direct",
		Theta:          0.5,
	}
}

// Validate reports the first invalid field as an error matching
// dynamo.ErrConfig.
func (c Config) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"radius", c.Radius}, {"shell inner radius", c.ShellInner}, {"speed", c.Speed},
		{"total mass", c.TotalMass}, {"temperature", c.Temperature}, {"molar mass", c.MolarMass},
		{"gas constant", c.GasConstant}, {"G", c.G}, {"dt", c.Dt},
		{"smoothing factor", c.SmoothingFactor}, {"kernel cutoff", c.KernelCutoff},
		{"background pressure", c.BackgroundPressure}, {"xsph weight", c.XSPHWeight},
		{"min separation", c.MinSeparation}, {"theta", c.Theta},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return dynamo.ConfigError("%s must be finite, got %g", f.name, f.v)
		}
	}

	switch {
	case c.Count < 2:
		return dynamo.ConfigError("count must be at least 2, got %d", c.Count)
	case c.Neighbors < 1 || c.Neighbors >= c.Count:
		return fmt.Errorf("%w (k=%d, n=%d)", dynamo.ErrNeighborCount, c.Neighbors, c.Count)
	case c.Radius <= 0:
		return dynamo.ConfigError("radius must be positive, got %g", c.Radius)
	case c.ShellInner < 0 || c.ShellInner >= c.Radius:
		return dynamo.ConfigError("shell inner radius must be in [0, radius), got %g", c.ShellInner)
	case c.TotalMass <= 0:
		return dynamo.ConfigError("total mass must be positive, got %g", c.TotalMass)
	case c.Temperature < 0:
		return dynamo.ConfigError("temperature must be non-negative, got %g", c.Temperature)
	case c.MolarMass <= 0:
		return dynamo.ConfigError("molar mass must be positive, got %g", c.MolarMass)
	case c.GasConstant <= 0:
		return dynamo.ConfigError("gas constant must be positive, got %g", c.GasConstant)
	case c.G < 0:
		return dynamo.ConfigError("G must be non-negative, got %g", c.G)
	case c.Dt <= 0:
		return dynamo.ConfigError("dt must be positive, got %g", c.Dt)
	case c.SmoothingFactor <= 0:
		return dynamo.ConfigError("smoothing factor must be positive, got %g", c.SmoothingFactor)
	case c.KernelCutoff < 0:
		return dynamo.ConfigError("kernel cutoff must be non-negative, got %g", c.KernelCutoff)
	case c.XSPHWeight < 0:
		return dynamo.ConfigError("xsph weight must be non-negative, got %g", c.XSPHWeight)
	case c.MinSeparation < 0:
		return dynamo.ConfigError("min separation must be non-negative, got %g", c.MinSeparation)
	case c.Theta < 0:
		return dynamo.ConfigError("theta must be non-negative, got %g", c.Theta)
	}

	switch c.Profile {
	case "", ProfileUniform, ProfileInverseLinear, ProfileInverseQuadratic:
	default:
		return dynamo.ConfigError("unknown density profile %q", c.Profile)
	}
	if c.SmoothingPolicy != physics.PolicyMax && c.SmoothingPolicy != physics.PolicyMean {
		return dynamo.ConfigError("unknown smoothing policy %d", c.SmoothingPolicy)
	}
	return nil
}

// ParticleMass is the mass of every particle.
func (c Config) ParticleMass() float64 {
	return c.TotalMass / float64(c.Count)
}

// smoothingFloor keeps smoothing lengths positive when neighbors coincide.
func (c Config) smoothingFloor() float64 {
	return math.Max(c.MinSeparation, c.Radius*1e-9)
}
