package compute

import (
	"runtime"

	"github.com/san-kum/mdsim/internal/cells"
	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/physics"
)

// Backend runs the pair force phase over a linked-cell index. Forces must
// have been reset and periodic clones placed before the call.
type Backend interface {
	Name() string
	Forces(lc *cells.LinkedCells, k physics.Kernel) physics.PairStats
}

// Select returns the serial backend for one worker and the colour-parallel
// CPU backend otherwise. workers <= 0 means one per CPU.
func Select(workers int) Backend {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers == 1 {
		return NewSerialBackend()
	}
	return NewCPUBackend(workers)
}

type SerialBackend struct{}

func NewSerialBackend() *SerialBackend { return &SerialBackend{} }

func (s *SerialBackend) Name() string { return "serial" }

func (s *SerialBackend) Forces(lc *cells.LinkedCells, k physics.Kernel) physics.PairStats {
	var stats physics.PairStats
	lc.ForEachPair(func(p, q *dynamo.Particle) {
		k.Apply(p, q, &stats)
	})
	return stats
}
