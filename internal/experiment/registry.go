package experiment

import (
	"sort"

	"github.com/san-kum/sphgas/internal/compute"
	"github.com/san-kum/sphgas/internal/dynamo"
	"github.com/san-kum/sphgas/internal/metrics"
	"github.com/san-kum/sphgas/internal/neighbors"
	"github.com/san-kum/sphgas/internal/sim"
)

// Registry names the interchangeable parts of a run. Entries resolve
// through the same constructors sim.New uses for Config.NeighborSearch and
// Config.GravitySolver.
type Registry struct {
	finders map[string]func(workers int) (neighbors.Finder, error)
	solvers map[string]func(workers int, theta float64) (compute.Backend, error)
}

func NewRegistry() *Registry {
	r := &Registry{
		finders: make(map[string]func(int) (neighbors.Finder, error)),
		solvers: make(map[string]func(int, float64) (compute.Backend, error)),
	}
	for _, name := range neighbors.Names() {
		r.finders[name] = func(w int) (neighbors.Finder, error) { return neighbors.New(name, w) }
	}
	for _, name := range compute.Names() {
		r.solvers[name] = func(w int, theta float64) (compute.Backend, error) { return compute.New(name, w, theta) }
	}
	return r
}

func (r *Registry) GetFinder(name string, workers int) (neighbors.Finder, error) {
	fn, ok := r.finders[name]
	if !ok {
		return nil, dynamo.ConfigError("unknown neighbor search %q (available: %v)", name, r.ListFinders())
	}
	return fn(workers)
}

func (r *Registry) GetSolver(name string, workers int, theta float64) (compute.Backend, error) {
	fn, ok := r.solvers[name]
	if !ok {
		return nil, dynamo.ConfigError("unknown gravity solver %q (available: %v)", name, r.ListSolvers())
	}
	return fn(workers, theta)
}

// ListFinders returns the registered neighbor searches in order.
func (r *Registry) ListFinders() []string { return sortedKeys(r.finders) }

// ListSolvers returns the registered gravity solvers in order.
func (r *Registry) ListSolvers() []string { return sortedKeys(r.solvers) }

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DefaultMetrics is the standard statistics set plus the fraction of
// particles beyond twice the initial radius.
func (r *Registry) DefaultMetrics(cfg sim.Config) []metrics.Metric {
	ms := metrics.Standard(metrics.ConstantsFrom(cfg))
	return append(ms, metrics.NewEscaped(2*cfg.Radius))
}
