// Package compute provides the backends that run the pair force phase.
//
//   - Serial: single-threaded half-neighbour sweep over all cells
//   - CPU: colour-partitioned sweep fanned out with errgroup
//
// Both produce the same forces up to floating-point summation order:
//
//	backend := compute.Select(cfg.Workers)
//	stats := backend.Forces(lc, kernel)
//
// The CPU backend relies on [cells.LinkedCells.Colors]: two cells of one
// colour are at least three cells apart along some axis, so their forward
// stencils are disjoint.
package compute
