package integrators

import (
	"runtime"

	"github.com/san-kum/mdsim/internal/dynamo"
)

// minChunk is the smallest slice of particles handed to one goroutine.
const minChunk = 2048

// Verlet is the velocity-Verlet scheme split into its two half updates so
// that the force phase can run between them:
//
//	x(t+dt) = x + dt*v + dt²/(2m)*F(t)
//	v(t+dt) = v + dt/(2m)*(F(t) + F(t+dt))
//
// Immovable particles are left untouched by both halves.
type Verlet struct {
	Workers int
}

// NewVerlet splits the particle updates over workers goroutines; zero or less
// means one per CPU.
func NewVerlet(workers int) *Verlet {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Verlet{Workers: workers}
}

func (v *Verlet) Name() string { return "velocity-verlet" }

// UpdatePositions advances every movable particle with the force of the
// previous step.
func (v *Verlet) UpdatePositions(ps []*dynamo.Particle, dt float64) {
	dt2 := 0.5 * dt * dt
	dynamo.ParallelFor(len(ps), v.Workers, minChunk, func(start, end int) {
		for _, p := range ps[start:end] {
			if p.Immovable {
				continue
			}
			p.X = p.X.Add(p.V.Scale(dt)).Add(p.F.Scale(dt2 / p.Mass))
		}
	})
}

// UpdateVelocities completes the step once F holds the new force and OldF
// the previous one.
func (v *Verlet) UpdateVelocities(ps []*dynamo.Particle, dt float64) {
	halfDt := 0.5 * dt
	dynamo.ParallelFor(len(ps), v.Workers, minChunk, func(start, end int) {
		for _, p := range ps[start:end] {
			if p.Immovable {
				continue
			}
			p.V = p.V.Add(p.OldF.Add(p.F).Scale(halfDt / p.Mass))
		}
	})
}
