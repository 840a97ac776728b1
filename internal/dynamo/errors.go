package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation setup and execution.
var (
	// ErrInvalidBoundary indicates a periodic condition on only one face of an axis.
	ErrInvalidBoundary = errors.New("dynamo: periodic boundary must be set on both faces of an axis")

	// ErrInvalidDomain indicates non-positive extents, cutoff or dimensionality.
	ErrInvalidDomain = errors.New("dynamo: invalid domain geometry")

	// ErrInvalidConfig indicates a run parameter outside its valid range.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrUnknownParticle indicates a lookup of an identity that was never assigned
	// or has been removed.
	ErrUnknownParticle = errors.New("dynamo: unknown particle id")

	// ErrUnknownLaw indicates an unsupported force law name.
	ErrUnknownLaw = errors.New("dynamo: unknown force law")

	// ErrReflectingLaw indicates a reflecting boundary combined with a force law
	// that has no repulsive core.
	ErrReflectingLaw = errors.New("dynamo: reflecting boundary requires a repulsive force law")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
