package physics

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/mdsim/internal/dynamo"
)

type LawKind int

const (
	LennardJones LawKind = iota
	Gravity
)

func (k LawKind) String() string {
	switch k {
	case LennardJones:
		return "lennard-jones"
	case Gravity:
		return "gravity"
	}
	return "unknown"
}

func ParseLawKind(name string) (LawKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "lennard-jones", "lennard_jones", "lj", "":
		return LennardJones, nil
	case "gravity", "gravitation", "gravitational":
		return Gravity, nil
	}
	return 0, fmt.Errorf("%w: %q", dynamo.ErrUnknownLaw, name)
}

const (
	DefaultCutoffFactor  = 2.5
	DefaultMinSeparation = 1e-6
	DefaultG             = 1.0
)

// sixthRootOfTwo is the Lennard-Jones equilibrium distance in units of sigma.
var sixthRootOfTwo = math.Pow(2, 1.0/6.0)

// Law is the pairwise force law of a run. The set of laws is closed; the
// variant is chosen once at configuration time.
type Law struct {
	Kind LawKind

	// CutoffFactor bounds Lennard-Jones interactions to CutoffFactor*sigma.
	// Zero disables the law's own cutoff.
	CutoffFactor float64

	// MinSeparation is the distance below which a pair is treated as a
	// degenerate overlap and skipped.
	MinSeparation float64

	G float64
}

func NewLennardJones(cutoffFactor float64) Law {
	return Law{Kind: LennardJones, CutoffFactor: cutoffFactor, MinSeparation: DefaultMinSeparation}
}

func NewGravity(g float64) Law {
	return Law{Kind: Gravity, G: g, MinSeparation: DefaultMinSeparation}
}

// Mix returns the Lennard-Jones parameters of a pair: geometric mean of the
// epsilons, arithmetic mean of the sigmas.
func Mix(a, b dynamo.Params) (epsilon, sigma float64) {
	if a.Epsilon == b.Epsilon && a.Sigma == b.Sigma {
		return a.Epsilon, a.Sigma
	}
	return math.Sqrt(a.Epsilon * b.Epsilon), 0.5 * (a.Sigma + b.Sigma)
}

// Force returns the force exerted on a particle at xi by one at xj. ok is
// false when the pair is closer than MinSeparation and was skipped.
func (l Law) Force(xi, xj dynamo.Vec3, a, b dynamo.Params) (f dynamo.Vec3, ok bool) {
	d := xi.Sub(xj)
	r2 := d.Norm2()
	if r2 < l.MinSeparation*l.MinSeparation {
		return dynamo.Vec3{}, false
	}

	switch l.Kind {
	case Gravity:
		r := math.Sqrt(r2)
		return d.Scale(-l.G * a.Mass * b.Mass / (r2 * r)), true
	default:
		epsilon, sigma := Mix(a, b)
		if l.CutoffFactor > 0 {
			rc := l.CutoffFactor * sigma
			if r2 > rc*rc {
				return dynamo.Vec3{}, true
			}
		}
		s2 := sigma * sigma / r2
		s6 := s2 * s2 * s2
		return d.Scale(24 * epsilon / r2 * (2*s6*s6 - s6)), true
	}
}

// Potential returns the pair potential energy at separation r.
func (l Law) Potential(r float64, a, b dynamo.Params) float64 {
	if r < l.MinSeparation {
		return 0
	}
	switch l.Kind {
	case Gravity:
		return -l.G * a.Mass * b.Mass / r
	default:
		epsilon, sigma := Mix(a, b)
		if l.CutoffFactor > 0 && r > l.CutoffFactor*sigma {
			return 0
		}
		s6 := math.Pow(sigma/r, 6)
		return 4 * epsilon * (s6*s6 - s6)
	}
}

// RepulsiveRange is the separation below which the law pushes a pair apart.
// Laws without a repulsive core return zero.
func (l Law) RepulsiveRange(p dynamo.Params) float64 {
	if l.Kind == LennardJones {
		return sixthRootOfTwo * p.Sigma
	}
	return 0
}

func (l Law) String() string {
	switch l.Kind {
	case Gravity:
		return fmt.Sprintf("gravity(G=%g)", l.G)
	default:
		return fmt.Sprintf("lennard-jones(rc=%gσ)", l.CutoffFactor)
	}
}
