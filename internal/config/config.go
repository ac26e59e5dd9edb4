package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/gcfg.v1"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/sphgas/internal/dynamo"
	"github.com/san-kum/sphgas/internal/physics"
	"github.com/san-kum/sphgas/internal/sim"
)

const (
	DefaultSteps = 500
	DefaultEvery = 10
)

// Config is the on-disk form of a run. Values are SI. YAML files use the
// lower-case keys below; .gcfg and .ini files use one [section] per struct
// with the Go field names as variables.
type Config struct {
	Cloud   CloudConfig   `yaml:"cloud"`
	Physics PhysicsConfig `yaml:"physics"`
	Solver  SolverConfig  `yaml:"solver"`
	Run     RunConfig     `yaml:"run"`
}

type CloudConfig struct {
	Count       int     `yaml:"count"`
	Radius      float64 `yaml:"radius"`
	ShellInner  float64 `yaml:"shell_inner"`
	Profile     string  `yaml:"profile"`
	Speed       float64 `yaml:"speed"`
	TotalMass   float64 `yaml:"total_mass"`
	Temperature float64 `yaml:"temperature"`
	Seed        int64   `yaml:"seed"`
}

type PhysicsConfig struct {
	G                  float64 `yaml:"g"`
	GasConstant        float64 `yaml:"gas_constant"`
	MolarMass          float64 `yaml:"molar_mass"`
	Gravity            bool    `yaml:"gravity"`
	Gas                bool    `yaml:"gas"`
	SmoothingPolicy    string  `yaml:"smoothing_policy"`
	SmoothingFactor    float64 `yaml:"smoothing_factor"`
	KernelCutoff       float64 `yaml:"kernel_cutoff"`
	BackgroundPressure float64 `yaml:"background_pressure"`
	XSPHWeight         float64 `yaml:"xsph_weight"`
	MinSeparation      float64 `yaml:"min_separation"`
	Recenter           bool    `yaml:"recenter"`
}

type SolverConfig struct {
	Neighbors      int     `yaml:"neighbors"`
	Dt             float64 `yaml:"dt"`
	Workers        int     `yaml:"workers"`
	NeighborSearch string  `yaml:"neighbor_search"`
	GravitySolver  string  `yaml:"gravity_solver"`
	Theta          float64 `yaml:"theta"`
}

// RunConfig controls the hosting loop rather than the physics.
type RunConfig struct {
	Steps int    `yaml:"steps"`
	Every int    `yaml:"every"`
	Name  string `yaml:"name"`
}

func DefaultConfig() *Config {
	cfg := FromSim(sim.DefaultConfig())
	cfg.Run = RunConfig{Steps: DefaultSteps, Every: DefaultEvery}
	return cfg
}

// FromSim converts an orchestrator configuration to its file form.
func FromSim(s sim.Config) *Config {
	return &Config{
		Cloud: CloudConfig{
			Count:       s.Count,
			Radius:      s.Radius,
			ShellInner:  s.ShellInner,
			Profile:     string(s.Profile),
			Speed:       s.Speed,
			TotalMass:   s.TotalMass,
			Temperature: s.Temperature,
			Seed:        s.Seed,
		},
		Physics: PhysicsConfig{
			G:                  s.G,
			GasConstant:        s.GasConstant,
			MolarMass:          s.MolarMass,
			Gravity:            s.EnableGravity,
			Gas:                s.EnableGas,
			SmoothingPolicy:    s.SmoothingPolicy.String(),
			SmoothingFactor:    s.SmoothingFactor,
			KernelCutoff:       s.KernelCutoff,
			BackgroundPressure: s.BackgroundPressure,
			XSPHWeight:         s.XSPHWeight,
			MinSeparation:      s.MinSeparation,
			Recenter:           s.Recenter,
		},
		Solver: SolverConfig{
			Neighbors:      s.Neighbors,
			Dt:             s.Dt,
			Workers:        s.Workers,
			NeighborSearch: s.NeighborSearch,
			GravitySolver:  s.GravitySolver,
			Theta:          s.Theta,
		},
	}
}

// ToSim converts to an orchestrator configuration and validates it.
func (c *Config) ToSim() (sim.Config, error) {
	policy, ok := physics.ParseSmoothingPolicy(strings.ToLower(c.Physics.SmoothingPolicy))
	if !ok {
		return sim.Config{}, dynamo.ConfigError("unknown smoothing policy %q", c.Physics.SmoothingPolicy)
	}
	s := sim.Config{
		Count:       c.Cloud.Count,
		Radius:      c.Cloud.Radius,
		ShellInner:  c.Cloud.ShellInner,
		Profile:     sim.Profile(c.Cloud.Profile),
		Speed:       c.Cloud.Speed,
		TotalMass:   c.Cloud.TotalMass,
		Temperature: c.Cloud.Temperature,
		Seed:        c.Cloud.Seed,

		G:                  c.Physics.G,
		GasConstant:        c.Physics.GasConstant,
		MolarMass:          c.Physics.MolarMass,
		EnableGravity:      c.Physics.Gravity,
		EnableGas:          c.Physics.Gas,
		SmoothingPolicy:    policy,
		SmoothingFactor:    c.Physics.SmoothingFactor,
		KernelCutoff:       c.Physics.KernelCutoff,
		BackgroundPressure: c.Physics.BackgroundPressure,
		XSPHWeight:         c.Physics.XSPHWeight,
		MinSeparation:      c.Physics.MinSeparation,
		Recenter:           c.Physics.Recenter,

		Neighbors:      c.Solver.Neighbors,
		Dt:             c.Solver.Dt,
		Workers:        c.Solver.Workers,
		NeighborSearch: c.Solver.NeighborSearch,
		GravitySolver:  c.Solver.GravitySolver,
		Theta:          c.Solver.Theta,
	}
	if err := s.Validate(); err != nil {
		return sim.Config{}, err
	}
	return s, nil
}

// Clone returns an independent copy.
func (c *Config) Clone() *Config {
	out := *c
	return &out
}

// Load reads path over the defaults, so absent keys keep their default
// values. The format follows the extension: .gcfg and .ini are gcfg, all
// else YAML.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gcfg", ".ini":
		if err := gcfg.ReadFileInto(cfg, path); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	return cfg, nil
}

// Save writes cfg as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Encode writes cfg to w as YAML.
func Encode(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}
