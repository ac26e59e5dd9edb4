package metrics

import (
	"math"

	"github.com/san-kum/sphgas/internal/sim"
)

// EnergyDrift is the largest relative change of total energy from the
// first observed snapshot.
type EnergyDrift struct {
	name          string
	consts        Constants
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(c Constants) *EnergyDrift {
	return &EnergyDrift{
		name:   "energy_drift",
		consts: c,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(s *sim.Snapshot) {
	energy := TotalEnergy(s, e.consts)

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.currentEnergy = energy
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

// Current is the total energy of the latest snapshot.
func (e *EnergyDrift) Current() float64 {
	return e.currentEnergy
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
