package sim

import (
	"sync"

	"github.com/san-kum/sphgas/internal/physics"
	"github.com/san-kum/sphgas/internal/vec"
)

// NeighborhoodPool hands out per-worker gather buffers sized for k
// neighbors, so a step allocates nothing per particle.
type NeighborhoodPool struct {
	pool sync.Pool
	k    int
}

func NewNeighborhoodPool(k int) *NeighborhoodPool {
	p := &NeighborhoodPool{k: k}
	p.pool.New = func() any {
		return &physics.Neighborhood{
			Pos:       make([]vec.Vec3, 0, k),
			Vel:       make([]vec.Vec3, 0, k),
			Mass:      make([]float64, 0, k),
			Thermal:   make([]float64, 0, k),
			Smoothing: make([]float64, 0, k),
			Density:   make([]float64, 0, k),
		}
	}
	return p
}

// Get returns an empty neighborhood.
func (p *NeighborhoodPool) Get() *physics.Neighborhood {
	nb := p.pool.Get().(*physics.Neighborhood)
	nb.Reset()
	return nb
}

func (p *NeighborhoodPool) Put(nb *physics.Neighborhood) {
	if cap(nb.Pos) >= p.k {
		p.pool.Put(nb)
	}
}
