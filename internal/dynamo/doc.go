// Package dynamo provides the core primitives shared by the molecular
// dynamics packages.
//
// The package defines the particle model and the narrow interfaces through
// which collaborators observe a running simulation:
//
//   - [Vec3]: fixed-size 3-vector used for positions, velocities and forces
//   - [Particle]: mutable physical state of one point particle
//   - [ParticleSet]: read access to the live particle population
//   - [Observer]: output writers invoked at the output cadence
//   - [Metric]: scalar diagnostics accumulated over a run
//
// # Example
//
//	lc, _ := cells.New(origin, domain, cutoff, 3)
//	ps, _ := cuboid.Generate(3, rng)
//	lc.AddAll(ps)
//	s := sim.New(lc, handler, kernel, backend, integrator, logger)
//	result, _ := s.Run(ctx, cfg)
//
// # Thread Safety
//
// Particles are owned by the linked-cell container for the duration of a
// step. Observers and metrics are only called between steps.
package dynamo
