// Package physics provides the pairwise force laws of a simulation and the
// kernel that applies them to enumerated particle pairs.
//
// Two laws are available:
//
//   - [LennardJones]: 12-6 potential with Lorentz-Berthelot mixing and a
//     cutoff at CutoffFactor*sigma
//   - [Gravity]: Newtonian attraction G*m_i*m_j/r^2
//
// A [Kernel] evaluates a law once per pair and writes equal and opposite
// forces, so the sum of forces over real particles stays zero:
//
//	k := physics.NewKernel(physics.NewLennardJones(2.5), 3.0)
//	var stats physics.PairStats
//	lc.ForEachPair(func(p, q *dynamo.Particle) { k.Apply(p, q, &stats) })
//
// Pairs closer than the law's MinSeparation are skipped and counted in
// [PairStats.Skipped].
package physics
