package sim

import (
	"time"

	"github.com/san-kum/mdsim/internal/boundary"
	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/physics"
)

// Integrator advances particles in the two halves of a velocity-Verlet step.
type Integrator interface {
	UpdatePositions(ps []*dynamo.Particle, dt float64)
	UpdateVelocities(ps []*dynamo.Particle, dt float64)
}

type Config struct {
	Dt      float64
	EndTime float64

	// OutputEvery is the observer cadence in steps. Zero disables periodic
	// output; observers still see the initial and final state.
	OutputEvery int
}

// StepStats describes the work done by one step.
type StepStats struct {
	Boundary  boundary.Stats
	Pairs     physics.PairStats
	Particles int
}

func (s *StepStats) Merge(o StepStats) {
	s.Boundary.Merge(o.Boundary)
	s.Pairs.Merge(o.Pairs)
	s.Particles = o.Particles
}

type Result struct {
	Steps     int
	Time      float64
	Particles int
	Totals    StepStats
	Metrics   map[string]float64
	Elapsed   time.Duration
}
