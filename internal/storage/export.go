package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/sphgas/internal/vec"
)

type ExportParticle struct {
	Position  vec.Vec3 `json:"position"`
	Velocity  vec.Vec3 `json:"velocity"`
	Mass      float64  `json:"mass"`
	Thermal   float64  `json:"thermal"`
	Density   float64  `json:"density"`
	Smoothing float64  `json:"smoothing"`
}

type ExportData struct {
	Metadata  RunMetadata          `json:"metadata"`
	Steps     []int                `json:"steps"`
	Times     []float64            `json:"times"`
	Series    map[string][]float64 `json:"series"`
	Particles []ExportParticle     `json:"particles,omitempty"`
}

// ExportJSON writes a stored run as one JSON document. Particles are
// included when withParticles is set.
func (s *Store) ExportJSON(w io.Writer, runID string, withParticles bool) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	stats, err := s.LoadStats(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		Metadata: *meta,
		Steps:    stats.Steps,
		Times:    stats.Times,
		Series:   stats.Series,
	}
	if withParticles {
		snap, err := s.LoadParticles(runID)
		if err != nil {
			return err
		}
		data.Particles = make([]ExportParticle, snap.Len())
		for i := range data.Particles {
			data.Particles[i] = ExportParticle{
				Position:  snap.Positions[i],
				Velocity:  snap.Velocities[i],
				Mass:      snap.Masses[i],
				Thermal:   snap.Thermal[i],
				Density:   snap.Densities[i],
				Smoothing: snap.Smoothing[i],
			}
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
