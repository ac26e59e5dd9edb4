// Package automation runs scripted batches of simulations described in
// YAML scenario files.
package automation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/sphgas/internal/analysis"
	"github.com/san-kum/sphgas/internal/config"
	"github.com/san-kum/sphgas/internal/dynamo"
	"github.com/san-kum/sphgas/internal/experiment"
)

// Scenario is a named sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run of a scenario, or several with consecutive seeds
// when Trials > 1. Params are keyed by sweep parameter name.
type ScenarioStep struct {
	Preset string             `yaml:"preset"`
	Config string             `yaml:"config"`
	Params map[string]float64 `yaml:"params"`
	Steps  int                `yaml:"steps"`
	Every  int                `yaml:"every"`
	Trials int                `yaml:"trials"`
	SaveAs string             `yaml:"save_as"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", dynamo.ErrConfig, path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, dynamo.ConfigError("scenario %s has no steps", path)
	}
	return &scenario, nil
}

// StepResult pairs a run with the error that ended it, if any.
type StepResult struct {
	Step   int
	Trial  int
	Result *experiment.Result
	Err    error
}

// Sink receives every finished run, failed ones included.
type Sink func(StepResult) error

// resolve builds the experiment configuration of one scenario step.
func resolve(step ScenarioStep) (experiment.Config, error) {
	var cfg *config.Config
	switch {
	case step.Config != "":
		c, err := config.Load(step.Config)
		if err != nil {
			return experiment.Config{}, err
		}
		cfg = c
		if cfg.Run.Name == "" {
			cfg.Run.Name = strings.TrimSuffix(filepath.Base(step.Config), filepath.Ext(step.Config))
		}
	default:
		name := step.Preset
		if name == "" {
			name = "default"
		}
		cfg = config.GetPreset(name)
		if cfg == nil {
			return experiment.Config{}, dynamo.ConfigError("unknown preset: %s (available: %v)", name, config.ListPresets())
		}
		if cfg.Run.Name == "" {
			cfg.Run.Name = name
		}
	}
	if step.Steps > 0 {
		cfg.Run.Steps = step.Steps
	}
	if step.Every > 0 {
		cfg.Run.Every = step.Every
	}
	if step.SaveAs != "" {
		cfg.Run.Name = step.SaveAs
	}

	simCfg, err := cfg.ToSim()
	if err != nil {
		return experiment.Config{}, err
	}
	for k, v := range step.Params {
		set, ok := analysis.Setters[k]
		if !ok {
			return experiment.Config{}, dynamo.ConfigError("unknown parameter %q (available: %v)", k, analysis.SweepParams())
		}
		set(&simCfg, v)
	}
	return experiment.Config{Name: cfg.Run.Name, Sim: simCfg, Steps: cfg.Run.Steps, Every: cfg.Run.Every}, nil
}

// RunScenario executes all steps in order and hands each run to sink. A
// run that fails to step is passed on and the scenario continues; a step
// that cannot be configured, a sink error or cancellation stops it.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, sink Sink) (int, error) {
	runs := 0
	for i, step := range scenario.Steps {
		cfg, err := resolve(step)
		if err != nil {
			return runs, fmt.Errorf("step %d: %w", i+1, err)
		}
		trials := max(step.Trials, 1)
		for trial := 0; trial < trials; trial++ {
			tc := cfg
			tc.Sim.Seed = cfg.Sim.Seed + int64(trial)
			logrus.WithFields(logrus.Fields{"scenario": scenario.Name, "step": i + 1, "trial": trial + 1}).Infof("running %s", tc.Name)

			exp, err := experiment.New(tc, registry)
			if err != nil {
				return runs, fmt.Errorf("step %d: %w", i+1, err)
			}
			res, runErr := exp.Run(ctx)
			runs++
			if sink != nil {
				if err := sink(StepResult{Step: i + 1, Trial: trial, Result: res, Err: runErr}); err != nil {
					return runs, err
				}
			}
			if errors.Is(runErr, dynamo.ErrContextCanceled) {
				return runs, runErr
			}
		}
	}
	return runs, nil
}
