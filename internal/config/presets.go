package config

import (
	"sort"

	"github.com/san-kum/sphgas/internal/sim"
)

// Presets adjust the default configuration. Scales are astronomical SI
// except quick, which uses G = R = M = 1.
var Presets = map[string]func(*Config){
	"default": func(*Config) {},
	"cloud": func(c *Config) {
		c.Cloud.Profile = string(sim.ProfileInverseLinear)
		c.Cloud.Speed *= 20
	},
	"collapse": func(c *Config) {
		c.Cloud.Temperature = 1
		c.Cloud.Speed = 0
	},
	"shell": func(c *Config) {
		c.Cloud.ShellInner = 0.8 * c.Cloud.Radius
		c.Cloud.Temperature = 2
	},
	"dust": func(c *Config) {
		c.Physics.Gas = false
		c.Physics.XSPHWeight = 0
	},
	"quick": func(c *Config) {
		c.Cloud = CloudConfig{Count: 300, Radius: 1, Profile: string(sim.ProfileUniform), Speed: 0.2, TotalMass: 1, Temperature: 0.1}
		c.Physics.G = 1
		c.Physics.GasConstant = 1
		c.Physics.MolarMass = 1
		c.Physics.MinSeparation = 1e-6
		c.Physics.XSPHWeight = 0.1
		c.Solver.Neighbors = 20
		c.Solver.Dt = 2e-3
		c.Run.Steps = 300
	},
}

// GetPreset returns a fresh configuration for name, or nil if unknown.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

// ListPresets returns the preset names in order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
