package sim

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/sphgas/internal/dynamo"
	"github.com/san-kum/sphgas/internal/physics"
	"github.com/san-kum/sphgas/internal/vec"
)

// unitConfig is a small cloud in units where G = R = M = 1 and the gas
// starts near virial equilibrium.
func unitConfig() Config {
	cfg := DefaultConfig()
	cfg.Count = 64
	cfg.Radius = 1
	cfg.Speed = 0
	cfg.TotalMass = 1
	cfg.G = 1
	cfg.GasConstant = 1
	cfg.MolarMass = 1
	cfg.Temperature = 0.2
	cfg.Neighbors = 16
	cfg.Dt = 1e-3
	cfg.MinSeparation = 1e-6
	cfg.XSPHWeight = 0.1
	cfg.Workers = 2
	cfg.Seed = 42
	return cfg
}

func totalEnergy(s *Simulation) float64 {
	cfg := s.Config()
	pos, vel, mass, thermal := s.Positions(), s.Velocities(), s.Masses(), s.Thermal()
	e := physics.PotentialEnergy(pos, mass, cfg.G, cfg.MinSeparation*cfg.MinSeparation)
	for i := range pos {
		e += 0.5*mass[i]*vel[i].Norm2() + thermal[i]
	}
	return e
}

var _ = Describe("Simulation", func() {
	Describe("four equal masses on a square", func() {
		var (
			s      *Simulation
			before []vec.Vec3
			dt     = 0.01
		)

		BeforeEach(func() {
			cfg := unitConfig()
			cfg.TotalMass = 4
			cfg.Neighbors = 3
			cfg.EnableGas = false
			cfg.Dt = dt
			before = []vec.Vec3{{X: 1, Y: 1}, {X: -1, Y: 1}, {X: -1, Y: -1}, {X: 1, Y: -1}}

			var err error
			s, err = FromParticles(cfg, before, make([]vec.Vec3, 4))
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Step()).To(Succeed())
		})

		It("moves every corner the same distance toward the centre", func() {
			// Two edge neighbors at distance 2 and one diagonal at 2√2.
			accel := math.Sqrt2/4 + 1.0/8
			want := 0.5 * accel * dt * dt

			after := s.Positions()
			for i := range after {
				move := after[i].Sub(before[i])
				Expect(move.Norm()).To(BeNumerically("~", want, want*1e-9))
				Expect(move.Dot(before[i])).To(BeNumerically("<", 0))
				Expect(move.Cross(before[i]).Norm()).To(BeNumerically("<", want*1e-9))
				Expect(after[i].Z).To(BeZero())
			}
		})

		It("leaves the thermal energy untouched", func() {
			Expect(s.Thermal()).To(HaveEach(BeNumerically("~", s.Thermal()[0])))
			Expect(s.Divergence()).To(HaveLen(4))
		})
	})

	Describe("two particles beyond the kernel cutoff", func() {
		It("does not move either of them", func() {
			cfg := unitConfig()
			cfg.EnableGravity = false
			cfg.Neighbors = 1
			cfg.SmoothingFactor = 4
			cfg.KernelCutoff = 2
			cfg.Temperature = 1
			start := []vec.Vec3{{X: -5}, {X: 5}}

			s, err := FromParticles(cfg, start, make([]vec.Vec3, 2))
			Expect(err).NotTo(HaveOccurred())
			thermal := s.Thermal()

			for i := 0; i < 10; i++ {
				Expect(s.Step()).To(Succeed())
			}
			for i, p := range s.Positions() {
				Expect(p.Sub(start[i]).Norm()).To(BeNumerically("<", 1e-12))
			}
			Expect(s.Velocities()).To(HaveEach(Equal(vec.Vec3{})))
			Expect(s.Thermal()).To(Equal(thermal))
		})
	})

	Describe("a cloud near equilibrium", func() {
		var s *Simulation

		BeforeEach(func() {
			var err error
			s, err = New(unitConfig())
			Expect(err).NotTo(HaveOccurred())
		})

		It("keeps the centre of mass at the origin after every step", func() {
			for i := 0; i < 20; i++ {
				Expect(s.Step()).To(Succeed())
				com := CenterOfMass(s.Positions(), s.Masses())
				Expect(com.Norm()).To(BeNumerically("<", 1e-12))
			}
		})

		It("keeps total energy within a few percent over 100 steps", func() {
			e0 := totalEnergy(s)
			Expect(e0).NotTo(BeZero())
			worst := 0.0
			for i := 0; i < 100; i++ {
				Expect(s.Step()).To(Succeed())
				worst = math.Max(worst, math.Abs(totalEnergy(s)-e0)/math.Abs(e0))
			}
			Expect(worst).To(BeNumerically("<", 0.05))
			Expect(s.StepIndex()).To(Equal(100))
			Expect(s.Time()).To(BeNumerically("~", 0.1, 1e-12))
		})
	})

	Describe("a numerically unstable step", func() {
		var s *Simulation

		BeforeEach(func() {
			cfg := unitConfig()
			cfg.EnableGravity = false
			cfg.Neighbors = 1
			cfg.SmoothingFactor = 1
			cfg.KernelCutoff = 0
			cfg.XSPHWeight = 0
			cfg.Temperature = 1e-3
			cfg.Dt = 1

			var err error
			s, err = FromParticles(cfg,
				[]vec.Vec3{{X: -0.5}, {X: 0.5}},
				[]vec.Vec3{{X: -1e3}, {X: 1e3}})
			Expect(err).NotTo(HaveOccurred())
		})

		It("terminates with the failing step and refuses further steps", func() {
			err := s.Step()
			Expect(err).To(MatchError(dynamo.ErrNegativeEnergy))

			var serr *dynamo.SimulationError
			Expect(errors.As(err, &serr)).To(BeTrue())
			Expect(serr.Step).To(Equal(0))
			Expect(serr.Particle).To(BeNumerically(">=", 0))

			Expect(s.Phase()).To(Equal(Terminated))
			Expect(s.Step()).To(MatchError(dynamo.ErrTerminated))
			Expect(s.StepIndex()).To(Equal(0))
		})
	})
})
