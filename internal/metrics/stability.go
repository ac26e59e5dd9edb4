package metrics

import (
	"github.com/san-kum/sphgas/internal/sim"
)

// Escaped is the fraction of particles found beyond threshold from the
// origin, averaged over observed snapshots.
type Escaped struct {
	name      string
	threshold float64
	fraction  float64
	samples   int
}

func NewEscaped(threshold float64) *Escaped {
	return &Escaped{
		name:      "escaped",
		threshold: threshold,
	}
}

func (e *Escaped) Name() string {
	return e.name
}

func (e *Escaped) Observe(s *sim.Snapshot) {
	if s.Len() == 0 {
		return
	}
	t2 := e.threshold * e.threshold
	out := 0
	for _, p := range s.Positions {
		if p.Norm2() > t2 {
			out++
		}
	}
	e.fraction += float64(out) / float64(s.Len())
	e.samples++
}

func (e *Escaped) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.fraction / float64(e.samples)
}

func (e *Escaped) Reset() {
	e.fraction = 0
	e.samples = 0
}
