package cells

import (
	"math/bits"

	"github.com/san-kum/mdsim/internal/dynamo"
)

type Kind uint8

const (
	Inner Kind = iota
	Boundary
	Halo
)

func (k Kind) String() string {
	switch k {
	case Inner:
		return "inner"
	case Boundary:
		return "boundary"
	case Halo:
		return "halo"
	}
	return "unknown"
}

// Face identifies one of the six domain planes. Even faces lie on the lower
// side of their axis, odd faces on the upper side.
type Face uint8

const (
	Left   Face = iota // x-
	Right              // x+
	Bottom             // y-
	Top                // y+
	Front              // z-
	Back               // z+
)

const NumFaces = 6

func FaceOf(axis int, upper bool) Face {
	f := Face(axis * 2)
	if upper {
		f++
	}
	return f
}

func (f Face) Axis() int      { return int(f) / 2 }
func (f Face) Upper() bool    { return f%2 == 1 }
func (f Face) Opposite() Face { return f ^ 1 }

func (f Face) String() string {
	switch f {
	case Left:
		return "left"
	case Right:
		return "right"
	case Bottom:
		return "bottom"
	case Top:
		return "top"
	case Front:
		return "front"
	case Back:
		return "back"
	}
	return "unknown"
}

// FaceSet is a bitmask of faces.
type FaceSet uint8

func (s FaceSet) Has(f Face) bool     { return s&(1<<f) != 0 }
func (s FaceSet) With(f Face) FaceSet { return s | 1<<f }
func (s FaceSet) Len() int            { return bits.OnesCount8(uint8(s)) }

func (s FaceSet) Faces() []Face {
	out := make([]Face, 0, s.Len())
	for f := Face(0); f < NumFaces; f++ {
		if s.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// Cell is one bucket of the linked-cell grid. For boundary cells Faces holds
// the domain faces the cell touches from inside, for halo cells the faces it
// lies beyond.
type Cell struct {
	index     int
	coord     [3]int
	kind      Kind
	faces     FaceSet
	particles []*dynamo.Particle
	ghosts    []*dynamo.Particle
	neighbors []int
	forward   []int
}

func (c *Cell) Index() int       { return c.index }
func (c *Cell) Coord() [3]int    { return c.coord }
func (c *Cell) Kind() Kind       { return c.kind }
func (c *Cell) Faces() FaceSet   { return c.faces }
func (c *Cell) Len() int         { return len(c.particles) }
func (c *Cell) Neighbors() []int { return c.neighbors }
func (c *Cell) Forward() []int   { return c.forward }

// Ghosts returns the transient periodic clones placed in the cell.
func (c *Cell) Ghosts() []*dynamo.Particle { return c.ghosts }

// Particles returns the real particles bucketed into the cell. The slice is
// owned by the cell and only valid until the next re-bucketing.
func (c *Cell) Particles() []*dynamo.Particle { return c.particles }

func (c *Cell) Add(p *dynamo.Particle) {
	if p.Ghost {
		c.ghosts = append(c.ghosts, p)
		return
	}
	c.particles = append(c.particles, p)
}

// Remove drops p from the cell, keeping the order of the remaining members.
func (c *Cell) Remove(p *dynamo.Particle) bool {
	for i, q := range c.particles {
		if q == p {
			copy(c.particles[i:], c.particles[i+1:])
			c.particles[len(c.particles)-1] = nil
			c.particles = c.particles[:len(c.particles)-1]
			return true
		}
	}
	return false
}

func (c *Cell) Contains(p *dynamo.Particle) bool {
	for _, q := range c.particles {
		if q == p {
			return true
		}
	}
	return false
}

func (c *Cell) Clear() {
	clear(c.particles)
	c.particles = c.particles[:0]
}

func (c *Cell) clearGhosts() {
	clear(c.ghosts)
	c.ghosts = c.ghosts[:0]
}
