package metrics

import (
	"fmt"

	"github.com/san-kum/sphgas/internal/sim"
)

// Sample is one reported statistic.
type Sample struct {
	Name      string
	Value     float64
	Formatted string
}

// Collector feeds snapshots to a fixed set of metrics and reports values
// whose formatted form changed since the last report.
type Collector struct {
	metrics []Metric
	format  string
	last    map[string]string
}

// NewCollector formats values with "%.2e".
func NewCollector(ms ...Metric) *Collector {
	return &Collector{metrics: ms, format: "%.2e", last: make(map[string]string)}
}

// WithFormat sets the fmt verb used for change detection and display.
func (c *Collector) WithFormat(format string) *Collector {
	c.format = format
	return c
}

func (c *Collector) Metrics() []Metric { return c.metrics }

func (c *Collector) Observe(s *sim.Snapshot) {
	for _, m := range c.metrics {
		m.Observe(s)
	}
}

// Values returns every metric in registration order.
func (c *Collector) Values() []Sample {
	out := make([]Sample, len(c.metrics))
	for i, m := range c.metrics {
		v := m.Value()
		out[i] = Sample{Name: m.Name(), Value: v, Formatted: fmt.Sprintf(c.format, v)}
	}
	return out
}

// Changed returns the metrics whose formatted value differs from the
// previous call.
func (c *Collector) Changed() []Sample {
	var out []Sample
	for _, s := range c.Values() {
		if c.last[s.Name] != s.Formatted {
			c.last[s.Name] = s.Formatted
			out = append(out, s)
		}
	}
	return out
}

// Map returns name → value.
func (c *Collector) Map() map[string]float64 {
	out := make(map[string]float64, len(c.metrics))
	for _, m := range c.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

func (c *Collector) Reset() {
	for _, m := range c.metrics {
		m.Reset()
	}
	c.last = make(map[string]string)
}
