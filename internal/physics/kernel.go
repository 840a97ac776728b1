package physics

import (
	"github.com/san-kum/mdsim/internal/dynamo"
)

// PairStats counts the work of a force phase.
type PairStats struct {
	Evaluated int
	Skipped   int
}

func (s *PairStats) Merge(o PairStats) {
	s.Evaluated += o.Evaluated
	s.Skipped += o.Skipped
}

// Kernel applies a Law to enumerated pairs, honouring the linked-cell cutoff
// radius and Newton's third law.
type Kernel struct {
	Law    Law
	Cutoff float64
}

func NewKernel(law Law, cutoff float64) Kernel {
	return Kernel{Law: law, Cutoff: cutoff}
}

// Apply evaluates the law once for the pair and adds the force to p and its
// negation to q. Ghost partners never receive force.
func (k Kernel) Apply(p, q *dynamo.Particle, stats *PairStats) {
	if q.X.Sub(p.X).Norm2() > k.Cutoff*k.Cutoff {
		return
	}

	f, ok := k.Law.Force(p.X, q.X, p.Params(), q.Params())
	if !ok {
		stats.Skipped++
		return
	}
	stats.Evaluated++

	p.F = p.F.Add(f)
	if !q.Ghost {
		q.F = q.F.Sub(f)
	}
}
