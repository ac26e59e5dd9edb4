package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrConfig indicates an invalid construction parameter. Fatal; nothing
	// is built when it is returned.
	ErrConfig = errors.New("dynamo: invalid configuration")

	// ErrNeighborCount indicates a neighbor count that is not in [1, n).
	ErrNeighborCount = fmt.Errorf("%w: neighbor count must be in [1, particle count)", ErrConfig)

	// ErrDiverged indicates a non-finite position or velocity after a step.
	ErrDiverged = errors.New("dynamo: simulation diverged (NaN or Inf detected)")

	// ErrNegativeEnergy indicates a thermal energy below zero after a step.
	ErrNegativeEnergy = errors.New("dynamo: negative thermal energy")

	// ErrTerminated is returned when stepping a simulation that already
	// failed an invariant check.
	ErrTerminated = errors.New("dynamo: simulation terminated")

	// ErrContextCanceled indicates the hosting loop was interrupted.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")
)

// SimulationError wraps a fatal numerical error with the step it was
// detected at. Particle is -1 when the failure is not tied to one index.
type SimulationError struct {
	Step     int
	Time     float64
	Particle int
	Wrapped  error
}

func (e *SimulationError) Error() string {
	if e.Particle >= 0 {
		return fmt.Sprintf("step %d (t=%.4g), particle %d: %v", e.Step, e.Time, e.Particle, e.Wrapped)
	}
	return fmt.Sprintf("step %d (t=%.4g): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

// ConfigError formats a configuration failure that matches ErrConfig.
func ConfigError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
}
