package cells

import "github.com/san-kum/mdsim/internal/dynamo"

// PairFunc receives one unordered interacting pair. p is always a real
// particle; q is either real or a ghost clone (q.Ghost).
type PairFunc func(p, q *dynamo.Particle)

// VisitCell enumerates the pairs owned by one cell: the in-cell pairs and the
// pairs with every neighbour of strictly greater index. Visiting every cell
// once yields every unordered pair exactly once. Ghost-ghost pairs are never
// produced.
func (lc *LinkedCells) VisitCell(index int, fn PairFunc) {
	a := &lc.cells[index]

	for i, p := range a.particles {
		for _, q := range a.particles[i+1:] {
			fn(p, q)
		}
		for _, g := range a.ghosts {
			fn(p, g)
		}
	}

	for _, j := range a.forward {
		b := &lc.cells[j]
		if len(b.particles) == 0 && (len(b.ghosts) == 0 || len(a.particles) == 0) {
			continue
		}
		for _, p := range a.particles {
			for _, q := range b.particles {
				fn(p, q)
			}
			for _, g := range b.ghosts {
				fn(p, g)
			}
		}
		for _, q := range b.particles {
			for _, g := range a.ghosts {
				fn(q, g)
			}
		}
	}
}

// ForEachPair enumerates every interacting pair of the grid once.
func (lc *LinkedCells) ForEachPair(fn PairFunc) {
	for i := range lc.cells {
		lc.VisitCell(i, fn)
	}
}
