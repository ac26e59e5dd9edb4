// Package metrics computes run statistics from simulation snapshots:
// momentum drift, energies, mean temperature and pressure, the idealised
// radius and velocity divergence.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/sphgas/internal/physics"
	"github.com/san-kum/sphgas/internal/sim"
	"github.com/san-kum/sphgas/internal/vec"
)

// Metric accumulates one statistic over the snapshots it observes.
type Metric interface {
	Name() string
	Observe(s *sim.Snapshot)
	Value() float64
	Reset()
}

// Constants are the physical parameters the statistics depend on.
type Constants struct {
	G                  float64
	MinSeparation      float64
	MolarMass          float64
	GasConstant        float64
	BackgroundPressure float64
}

func ConstantsFrom(cfg sim.Config) Constants {
	return Constants{
		G:                  cfg.G,
		MinSeparation:      cfg.MinSeparation,
		MolarMass:          cfg.MolarMass,
		GasConstant:        cfg.GasConstant,
		BackgroundPressure: cfg.BackgroundPressure,
	}
}

// Movement is |Σ m v| / Σ m, the centre-of-mass speed. It stays near zero
// when momentum is conserved.
func Movement(s *sim.Snapshot) float64 {
	var p vec.Vec3
	for i, v := range s.Velocities {
		p.AddAssign(v.Scale(s.Masses[i]))
	}
	return p.Norm() / floats.Sum(s.Masses)
}

func KineticEnergy(s *sim.Snapshot) float64 {
	e := 0.0
	for i, v := range s.Velocities {
		e += 0.5 * s.Masses[i] * v.Norm2()
	}
	return e
}

func ThermalEnergy(s *sim.Snapshot) float64 {
	return floats.Sum(s.Thermal)
}

func PotentialEnergy(s *sim.Snapshot, c Constants) float64 {
	return physics.PotentialEnergy(s.Positions, s.Masses, c.G, c.MinSeparation*c.MinSeparation)
}

// TotalEnergy is kinetic plus thermal plus gravitational potential.
func TotalEnergy(s *sim.Snapshot, c Constants) float64 {
	return KineticEnergy(s) + ThermalEnergy(s) + PotentialEnergy(s, c)
}

// IdealisedRadius is the radius of a sphere whose volume is Σ m/ρ.
func IdealisedRadius(s *sim.Snapshot) float64 {
	volume := 0.0
	for i, m := range s.Masses {
		volume += m / s.Densities[i]
	}
	return math.Cbrt(volume * 3 / (4 * math.Pi))
}

func MeanTemperature(s *sim.Snapshot, c Constants) float64 {
	temps := make([]float64, s.Len())
	for i := range temps {
		temps[i] = physics.Temperature(s.Thermal[i], s.Masses[i], c.MolarMass, c.GasConstant)
	}
	return stat.Mean(temps, s.Masses)
}

func MeanPressure(s *sim.Snapshot, c Constants) float64 {
	p := make([]float64, s.Len())
	for i := range p {
		p[i] = physics.Pressure(s.Thermal[i], s.Densities[i], s.Masses[i], c.BackgroundPressure)
	}
	return stat.Mean(p, nil)
}

func MeanDivergence(s *sim.Snapshot) float64 {
	return stat.Mean(s.Divergence, nil)
}

func PeakDensity(s *sim.Snapshot) float64 {
	return floats.Max(s.Densities)
}

// SpeedDispersion is the standard deviation of particle speeds.
func SpeedDispersion(s *sim.Snapshot) float64 {
	speeds := make([]float64, s.Len())
	for i, v := range s.Velocities {
		speeds[i] = v.Norm()
	}
	return stat.StdDev(speeds, nil)
}

// Gauge reports the latest value of a snapshot function.
type Gauge struct {
	name  string
	fn    func(*sim.Snapshot) float64
	value float64
}

func NewGauge(name string, fn func(*sim.Snapshot) float64) *Gauge {
	return &Gauge{name: name, fn: fn}
}

func (g *Gauge) Name() string            { return g.name }
func (g *Gauge) Observe(s *sim.Snapshot) { g.value = g.fn(s) }
func (g *Gauge) Value() float64          { return g.value }
func (g *Gauge) Reset()                  { g.value = 0 }

// Standard returns the statistics reported by the CLI, in display order.
func Standard(c Constants) []Metric {
	return []Metric{
		NewGauge("movement", Movement),
		NewGauge("radius", IdealisedRadius),
		NewGauge("kinetic", KineticEnergy),
		NewGauge("thermal", ThermalEnergy),
		NewGauge("potential", func(s *sim.Snapshot) float64 { return PotentialEnergy(s, c) }),
		NewGauge("total_energy", func(s *sim.Snapshot) float64 { return TotalEnergy(s, c) }),
		NewEnergyDrift(c),
		NewGauge("temperature", func(s *sim.Snapshot) float64 { return MeanTemperature(s, c) }),
		NewGauge("pressure", func(s *sim.Snapshot) float64 { return MeanPressure(s, c) }),
		NewGauge("peak_density", PeakDensity),
		NewGauge("divergence", MeanDivergence),
		NewGauge("speed_dispersion", SpeedDispersion),
	}
}
