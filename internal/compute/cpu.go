package compute

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/mdsim/internal/cells"
	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/physics"
)

// CPUBackend processes the cell colours one after another. Cells of one
// colour never share a write target, so each colour is split across workers
// without locks; the wait between colours is the barrier.
type CPUBackend struct {
	workers int
	local   []physics.PairStats
}

func NewCPUBackend(workers int) *CPUBackend {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &CPUBackend{
		workers: workers,
		local:   make([]physics.PairStats, workers),
	}
}

func (c *CPUBackend) Name() string { return "cpu" }
func (c *CPUBackend) Workers() int { return c.workers }

func (c *CPUBackend) Forces(lc *cells.LinkedCells, k physics.Kernel) physics.PairStats {
	clear(c.local)

	for _, group := range lc.Colors() {
		if len(group) < 2*c.workers {
			c.forcesSerial(lc, k, group, &c.local[0])
			continue
		}

		var g errgroup.Group
		g.SetLimit(c.workers)
		chunkSize := (len(group) + c.workers - 1) / c.workers

		for w := 0; w < c.workers; w++ {
			start := w * chunkSize
			if start >= len(group) {
				break
			}
			end := min(start+chunkSize, len(group))
			stats := &c.local[w]
			cellsOf := group[start:end]

			g.Go(func() error {
				c.forcesSerial(lc, k, cellsOf, stats)
				return nil
			})
		}
		_ = g.Wait()
	}

	var total physics.PairStats
	for _, s := range c.local {
		total.Merge(s)
	}
	return total
}

func (c *CPUBackend) forcesSerial(lc *cells.LinkedCells, k physics.Kernel, indices []int, stats *physics.PairStats) {
	for _, i := range indices {
		lc.VisitCell(i, func(p, q *dynamo.Particle) {
			k.Apply(p, q, stats)
		})
	}
}
