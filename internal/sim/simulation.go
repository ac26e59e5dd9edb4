package sim

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/sphgas/internal/compute"
	"github.com/san-kum/sphgas/internal/dynamo"
	"github.com/san-kum/sphgas/internal/neighbors"
	"github.com/san-kum/sphgas/internal/physics"
	"github.com/san-kum/sphgas/internal/vec"
)

// Simulation owns the particle ensemble and advances it one step at a
// time. It is not safe for concurrent use; views returned between steps
// are copies.
type Simulation struct {
	cfg     Config
	params  physics.Params
	finder  neighbors.Finder
	gravity compute.Backend
	pool    *NeighborhoodPool
	log     *logrus.Entry

	pos        []vec.Vec3
	vel        []vec.Vec3
	mass       []float64
	thermal    []float64
	smoothing  []float64
	density    []float64
	divergence []float64
	nbrs       [][]int

	gravAcc []vec.Vec3
	deltas  []delta

	phase Phase
	step  int
	time  float64
}

// New samples an initial cloud from cfg and prepares it for stepping.
func New(cfg Config) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	pos := samplePositions(cfg, rng)
	return build(cfg, pos, rotatingVelocities(cfg, pos))
}

// FromParticles starts from explicit positions and velocities. cfg.Count
// is taken from len(positions); masses and thermal energies follow cfg as
// in New. The slices are copied.
func FromParticles(cfg Config, positions, velocities []vec.Vec3) (*Simulation, error) {
	if len(velocities) != len(positions) {
		return nil, dynamo.ConfigError("%d positions but %d velocities", len(positions), len(velocities))
	}
	for i := range positions {
		if !positions[i].IsFinite() || !velocities[i].IsFinite() {
			return nil, dynamo.ConfigError("particle %d has a non-finite initial state", i)
		}
	}
	cfg.Count = len(positions)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return build(cfg, cloneVecs(positions), cloneVecs(velocities))
}

func build(cfg Config, pos, vel []vec.Vec3) (*Simulation, error) {
	if cfg.Profile == "" {
		cfg.Profile = ProfileUniform
	}
	finder, err := neighbors.New(cfg.NeighborSearch, cfg.Workers)
	if err != nil {
		return nil, err
	}
	gravity, err := compute.New(cfg.GravitySolver, cfg.Workers, cfg.Theta)
	if err != nil {
		return nil, err
	}

	n := cfg.Count
	s := &Simulation{
		cfg: cfg,
		params: physics.Params{
			KernelCutoff:       cfg.KernelCutoff,
			BackgroundPressure: cfg.BackgroundPressure,
		},
		finder:  finder,
		gravity: gravity,
		pool:    NewNeighborhoodPool(cfg.Neighbors),
		log: logrus.WithFields(logrus.Fields{
			"count":  n,
			"seed":   cfg.Seed,
			"search": finder.Name(),
			"solver": gravity.Name(),
		}),
		pos:        pos,
		vel:        vel,
		mass:       make([]float64, n),
		thermal:    make([]float64, n),
		smoothing:  make([]float64, n),
		density:    make([]float64, n),
		divergence: make([]float64, n),
		gravAcc:    make([]vec.Vec3, n),
		deltas:     make([]delta, n),
	}

	m := cfg.ParticleMass()
	e := physics.ThermalEnergy(m, cfg.MolarMass, cfg.GasConstant, cfg.Temperature)
	for i := 0; i < n; i++ {
		s.mass[i] = m
		s.thermal[i] = e
	}

	if err := s.updateDensities(); err != nil {
		return nil, err
	}
	s.phase = Ready
	s.log.Infof("simulation ready: radius %.3g, mass %.3g, k=%d, dt=%.3g", cfg.Radius, cfg.TotalMass, cfg.Neighbors, cfg.Dt)
	return s, nil
}

// Step advances by the configured time step.
func (s *Simulation) Step() error {
	return s.StepDt(s.cfg.Dt)
}

// StepDt advances by dt. A failed invariant check is fatal: the returned
// error is a *dynamo.SimulationError and every later call returns
// dynamo.ErrTerminated.
func (s *Simulation) StepDt(dt float64) error {
	switch s.phase {
	case Terminated:
		return dynamo.ErrTerminated
	case Ready:
	default:
		return fmt.Errorf("sim: cannot step in phase %s", s.phase)
	}
	if !(dt > 0) {
		return dynamo.ConfigError("dt must be positive, got %g", dt)
	}

	s.phase = Stepping
	if err := s.updateDensities(); err != nil {
		return s.fail(-1, err)
	}
	if err := s.computeDeltas(); err != nil {
		return s.fail(-1, err)
	}
	s.commit(dt)
	if s.cfg.Recenter {
		s.recenter()
	}
	if i, err := s.checkInvariants(); err != nil {
		return s.fail(i, err)
	}

	s.step++
	s.time += dt
	s.phase = Ready
	s.log.WithFields(logrus.Fields{"step": s.step, "time": s.time}).Debug("step complete")
	return nil
}

func (s *Simulation) fail(particle int, err error) error {
	s.phase = Terminated
	serr := &dynamo.SimulationError{Step: s.step, Time: s.time, Particle: particle, Wrapped: err}
	s.log.WithFields(logrus.Fields{"step": s.step, "particle": particle}).Errorf("simulation terminated: %v", err)
	return serr
}

// Phase reports the lifecycle state.
func (s *Simulation) Phase() Phase { return s.phase }

// StepIndex is the number of completed steps.
func (s *Simulation) StepIndex() int { return s.step }

// Time is the simulated time elapsed.
func (s *Simulation) Time() float64 { return s.time }

// Config returns the configuration the simulation was built with.
func (s *Simulation) Config() Config { return s.cfg }

// Len is the particle count.
func (s *Simulation) Len() int { return len(s.pos) }

func (s *Simulation) Positions() []vec.Vec3  { return cloneVecs(s.pos) }
func (s *Simulation) Velocities() []vec.Vec3 { return cloneVecs(s.vel) }
func (s *Simulation) Masses() []float64      { return cloneFloats(s.mass) }
func (s *Simulation) Thermal() []float64     { return cloneFloats(s.thermal) }

// Densities is the density snapshot of the most recent neighbor pass,
// evaluated at the positions the last step started from.
func (s *Simulation) Densities() []float64 { return cloneFloats(s.density) }
func (s *Simulation) Smoothing() []float64 { return cloneFloats(s.smoothing) }

// Divergence is the velocity divergence from the last step; zero before
// the first step.
func (s *Simulation) Divergence() []float64 { return cloneFloats(s.divergence) }

// Neighbors returns the neighbor lists of the most recent pass.
func (s *Simulation) Neighbors() [][]int {
	out := make([][]int, len(s.nbrs))
	for i, row := range s.nbrs {
		out[i] = append([]int(nil), row...)
	}
	return out
}

// Snapshot copies the whole observable state.
func (s *Simulation) Snapshot() *Snapshot {
	return &Snapshot{
		Step:       s.step,
		Time:       s.time,
		Positions:  s.Positions(),
		Velocities: s.Velocities(),
		Masses:     s.Masses(),
		Thermal:    s.Thermal(),
		Densities:  s.Densities(),
		Smoothing:  s.Smoothing(),
		Divergence: s.Divergence(),
	}
}
