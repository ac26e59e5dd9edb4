// Package experiment hosts simulation runs: it owns the step loop,
// samples statistics, honours cancellation and collects a Result.
package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/sphgas/internal/dynamo"
	"github.com/san-kum/sphgas/internal/metrics"
	"github.com/san-kum/sphgas/internal/sim"
)

type Config struct {
	Name  string
	Sim   sim.Config
	Steps int
	// Every is the sampling interval in steps; 0 samples only the first
	// and last state.
	Every int
}

// Observer is notified after every sample.
type Observer interface {
	OnSample(step int, snap *sim.Snapshot, changed []metrics.Sample)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(step int, snap *sim.Snapshot, changed []metrics.Sample)

func (f ObserverFunc) OnSample(step int, snap *sim.Snapshot, changed []metrics.Sample) {
	f(step, snap, changed)
}

// Result is the record of one run. On failure it holds everything up to
// the failing step.
type Result struct {
	Name       string
	Config     sim.Config
	StepsTaken int
	SimTime    float64
	WallTime   time.Duration
	// Names lists metric names in Series order.
	Names  []string
	Steps  []int
	Times  []float64
	Series map[string][]float64
	Final  map[string]float64
	Last   *sim.Snapshot
}

type Experiment struct {
	cfg       Config
	sim       *sim.Simulation
	collector *metrics.Collector
	observers []Observer
}

// New builds the simulation and the registry's default metrics.
func New(cfg Config, reg *Registry) (*Experiment, error) {
	if cfg.Steps < 0 {
		return nil, dynamo.ConfigError("steps must be non-negative, got %d", cfg.Steps)
	}
	s, err := sim.New(cfg.Sim)
	if err != nil {
		return nil, err
	}
	return &Experiment{
		cfg:       cfg,
		sim:       s,
		collector: metrics.NewCollector(reg.DefaultMetrics(cfg.Sim)...),
	}, nil
}

// NewWith hosts an already built simulation.
func NewWith(cfg Config, s *sim.Simulation, ms ...metrics.Metric) *Experiment {
	cfg.Sim = s.Config()
	return &Experiment{cfg: cfg, sim: s, collector: metrics.NewCollector(ms...)}
}

func (e *Experiment) AddObserver(o Observer) { e.observers = append(e.observers, o) }

// Simulation returns the hosted simulation.
func (e *Experiment) Simulation() *sim.Simulation { return e.sim }

// Run advances the simulation cfg.Steps times. Cancellation is checked
// between steps; the partial Result is returned with the error.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := &Result{
		Name:   e.cfg.Name,
		Config: e.sim.Config(),
		Series: make(map[string][]float64),
		Final:  make(map[string]float64),
	}
	for _, m := range e.collector.Metrics() {
		res.Names = append(res.Names, m.Name())
	}
	e.collector.Reset()

	log := logrus.WithField("experiment", e.cfg.Name)
	log.Infof("running %d steps of %d particles", e.cfg.Steps, e.sim.Len())

	e.sample(res)
	var runErr error
	for i := 0; i < e.cfg.Steps; i++ {
		if err := ctx.Err(); err != nil {
			runErr = fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, err)
			break
		}
		if err := e.sim.Step(); err != nil {
			runErr = err
			break
		}
		res.StepsTaken++
		if e.cfg.Every > 0 && res.StepsTaken%e.cfg.Every == 0 && res.StepsTaken != e.cfg.Steps {
			e.sample(res)
			log.Debugf("step %d/%d", res.StepsTaken, e.cfg.Steps)
		}
	}
	if res.Steps[len(res.Steps)-1] != e.sim.StepIndex() {
		e.sample(res)
	}

	res.SimTime = e.sim.Time()
	res.WallTime = time.Since(start)
	res.Final = e.collector.Map()
	res.Last = e.sim.Snapshot()

	if runErr != nil {
		log.WithError(runErr).Warnf("stopped after %d steps", res.StepsTaken)
		return res, runErr
	}
	log.Infof("finished %d steps in %s", res.StepsTaken, res.WallTime.Round(time.Millisecond))
	return res, nil
}

func (e *Experiment) sample(res *Result) {
	snap := e.sim.Snapshot()
	e.collector.Observe(snap)
	changed := e.collector.Changed()

	res.Steps = append(res.Steps, snap.Step)
	res.Times = append(res.Times, snap.Time)
	for _, v := range e.collector.Values() {
		res.Series[v.Name] = append(res.Series[v.Name], v.Value)
	}
	for _, o := range e.observers {
		o.OnSample(snap.Step, snap, changed)
	}
}
