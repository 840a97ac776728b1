package dynamo

import (
	"math"
)

type Vec3 [3]float64

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v[0] - o[0], v[1] - o[1], v[2] - o[2]}
}

func (v Vec3) Scale(factor float64) Vec3 {
	return Vec3{v[0] * factor, v[1] * factor, v[2] * factor}
}

func (v Vec3) Dot(o Vec3) float64 {
	return v[0]*o[0] + v[1]*o[1] + v[2]*o[2]
}

func (v Vec3) Norm2() float64 { return v.Dot(v) }

func (v Vec3) Norm() float64 { return math.Sqrt(v.Dot(v)) }

func (v Vec3) IsValid() bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Params are the per-particle inputs of a pairwise force law.
type Params struct {
	Mass    float64
	Epsilon float64
	Sigma   float64
}

// Particle is the mutable state of one point particle. ID is assigned by the
// container on insertion and never reused; zero-valued particles built by
// generators carry no identity until then. Ghost particles are transient
// periodic clones and must never receive force.
type Particle struct {
	ID        int
	X         Vec3
	V         Vec3
	F         Vec3
	OldF      Vec3
	Mass      float64
	Epsilon   float64
	Sigma     float64
	Immovable bool
	Ghost     bool
}

func (p *Particle) Params() Params {
	return Params{Mass: p.Mass, Epsilon: p.Epsilon, Sigma: p.Sigma}
}

// ResetForce saves the current force as the previous-step force and zeroes
// the accumulator.
func (p *Particle) ResetForce() {
	p.OldF = p.F
	p.F = Vec3{}
}

func (p *Particle) KineticEnergy() float64 {
	return 0.5 * p.Mass * p.V.Norm2()
}

// ParticleSet gives collaborators read access to the live particles.
type ParticleSet interface {
	Size() int
	Each(fn func(p *Particle))
}

// Observer is notified at the configured output cadence.
type Observer interface {
	OnStep(step int, t float64, ps ParticleSet) error
}

type Metric interface {
	Name() string
	Observe(ps ParticleSet, t float64)
	Value() float64
	Reset()
}
