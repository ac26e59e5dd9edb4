package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/sphgas/internal/dynamo"
	"github.com/san-kum/sphgas/internal/experiment"
	"github.com/san-kum/sphgas/internal/sim"
)

// Setters maps sweepable parameter names to the configuration field they
// set. Integer fields are rounded.
var Setters = map[string]func(*sim.Config, float64){
	"temperature":         func(c *sim.Config, v float64) { c.Temperature = v },
	"radius":              func(c *sim.Config, v float64) { c.Radius = v },
	"speed":               func(c *sim.Config, v float64) { c.Speed = v },
	"mass":                func(c *sim.Config, v float64) { c.TotalMass = v },
	"count":               func(c *sim.Config, v float64) { c.Count = int(math.Round(v)) },
	"neighbors":           func(c *sim.Config, v float64) { c.Neighbors = int(math.Round(v)) },
	"dt":                  func(c *sim.Config, v float64) { c.Dt = v },
	"xsph":                func(c *sim.Config, v float64) { c.XSPHWeight = v },
	"theta":               func(c *sim.Config, v float64) { c.Theta = v },
	"cutoff":              func(c *sim.Config, v float64) { c.KernelCutoff = v },
	"smoothing_factor":    func(c *sim.Config, v float64) { c.SmoothingFactor = v },
	"background_pressure": func(c *sim.Config, v float64) { c.BackgroundPressure = v },
}

// SweepParams lists the names accepted by Sweep.
func SweepParams() []string {
	names := make([]string, 0, len(Setters))
	for name := range Setters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SweepPoint is the outcome of one value of a sweep.
type SweepPoint struct {
	Value float64
	Steps int
	Final map[string]float64
	Err   error
}

// Sweep runs base once per value of param for the given number of steps
// and records the final statistics. A run that fails to build or step is
// kept with its error and the sweep moves on; cancellation ends the sweep.
func Sweep(ctx context.Context, reg *experiment.Registry, base sim.Config, param string, values []float64, steps int) ([]SweepPoint, error) {
	set, ok := Setters[param]
	if !ok {
		return nil, dynamo.ConfigError("unknown sweep parameter %q (available: %v)", param, SweepParams())
	}

	points := make([]SweepPoint, 0, len(values))
	for _, v := range values {
		cfg := base
		set(&cfg, v)
		pt := SweepPoint{Value: v}

		exp, err := experiment.New(experiment.Config{Name: fmt.Sprintf("%s=%g", param, v), Sim: cfg, Steps: steps}, reg)
		if err != nil {
			pt.Err = err
			points = append(points, pt)
			continue
		}
		res, err := exp.Run(ctx)
		pt.Steps, pt.Final, pt.Err = res.StepsTaken, res.Final, err
		points = append(points, pt)
		if errors.Is(err, dynamo.ErrContextCanceled) {
			return points, err
		}
	}
	return points, nil
}

// Best returns the successful point with the smallest value of metric.
func Best(points []SweepPoint, metric string) (SweepPoint, bool) {
	var best SweepPoint
	found := false
	for _, p := range points {
		if p.Err != nil {
			continue
		}
		v, ok := p.Final[metric]
		if !ok || math.IsNaN(v) {
			continue
		}
		if !found || v < best.Final[metric] {
			best, found = p, true
		}
	}
	return best, found
}
