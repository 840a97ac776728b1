// Package generator builds initial particle configurations: cuboid lattices
// and discs, optionally with Maxwell-Boltzmann distributed thermal motion.
// Generated particles carry no identity; the index assigns one on insertion.
package generator

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/mdsim/internal/dynamo"
)

// Material holds the physical parameters shared by a generated body.
type Material struct {
	Mass      float64
	Epsilon   float64
	Sigma     float64
	Velocity  dynamo.Vec3
	Immovable bool

	// Brownian is the mean thermal speed added per active axis.
	Brownian float64
}

func (m Material) particle(x dynamo.Vec3) dynamo.Particle {
	return dynamo.Particle{
		X:         x,
		V:         m.Velocity,
		Mass:      m.Mass,
		Epsilon:   m.Epsilon,
		Sigma:     m.Sigma,
		Immovable: m.Immovable,
	}
}

func (m Material) validate() error {
	if !(m.Mass > 0) {
		return fmt.Errorf("%w: mass must be positive, got %g", dynamo.ErrInvalidConfig, m.Mass)
	}
	if m.Epsilon < 0 || m.Sigma < 0 {
		return fmt.Errorf("%w: epsilon and sigma must not be negative", dynamo.ErrInvalidConfig)
	}
	if m.Brownian < 0 {
		return fmt.Errorf("%w: brownian speed must not be negative, got %g", dynamo.ErrInvalidConfig, m.Brownian)
	}
	return nil
}

// Cuboid is a regular lattice of N[0]*N[1]*N[2] particles with spacing H
// starting at Corner.
type Cuboid struct {
	Corner dynamo.Vec3
	N      [3]int
	H      float64
	Material
}

func (c Cuboid) Generate(dims int, rng *rand.Rand) ([]dynamo.Particle, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	if !(c.H > 0) {
		return nil, fmt.Errorf("%w: lattice spacing must be positive, got %g", dynamo.ErrInvalidConfig, c.H)
	}
	n := c.N
	if dims == 2 {
		n[2] = 1
	}
	for d := 0; d < 3; d++ {
		if n[d] < 0 {
			return nil, fmt.Errorf("%w: negative particle count %v", dynamo.ErrInvalidConfig, c.N)
		}
	}

	out := make([]dynamo.Particle, 0, n[0]*n[1]*n[2])
	for k := 0; k < n[2]; k++ {
		for j := 0; j < n[1]; j++ {
			for i := 0; i < n[0]; i++ {
				x := c.Corner.Add(dynamo.Vec3{float64(i), float64(j), float64(k)}.Scale(c.H))
				p := c.particle(x)
				p.V = p.V.Add(Jitter(rng, c.Brownian, dims))
				out = append(out, p)
			}
		}
	}
	return out, nil
}

// Disc is a 2-D disc of lattice points with spacing H within Radius lattice
// steps of Center.
type Disc struct {
	Center dynamo.Vec3
	Radius int
	H      float64
	Material
}

func (d Disc) Generate(dims int, rng *rand.Rand) ([]dynamo.Particle, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	if !(d.H > 0) || d.Radius < 0 {
		return nil, fmt.Errorf("%w: disc needs positive spacing and non-negative radius", dynamo.ErrInvalidConfig)
	}

	r2 := float64(d.Radius * d.Radius)
	out := make([]dynamo.Particle, 0, int(math.Pi*r2)+1)
	for j := -d.Radius; j <= d.Radius; j++ {
		for i := -d.Radius; i <= d.Radius; i++ {
			if float64(i*i+j*j) > r2 {
				continue
			}
			x := d.Center.Add(dynamo.Vec3{float64(i), float64(j), 0}.Scale(d.H))
			p := d.particle(x)
			p.V = p.V.Add(Jitter(rng, d.Brownian, dims))
			out = append(out, p)
		}
	}
	return out, nil
}

// Jitter draws a thermal velocity: each active component is normal with
// standard deviation mean.
func Jitter(rng *rand.Rand, mean float64, dims int) dynamo.Vec3 {
	var v dynamo.Vec3
	if mean == 0 || rng == nil {
		return v
	}
	for d := 0; d < dims; d++ {
		v[d] = mean * rng.NormFloat64()
	}
	return v
}
