package cells

import (
	"fmt"
	"math"
	"slices"

	"github.com/san-kum/mdsim/internal/dynamo"
)

// LinkedCells is the spatial index of a simulation: a grid of cells at least
// one cutoff wide covering the domain, padded by one halo layer on both sides
// of every active axis. It owns the particles and assigns their identities.
type LinkedCells struct {
	origin dynamo.Vec3
	domain dynamo.Vec3
	cutoff float64
	dims   int

	count [3]int
	size  dynamo.Vec3
	pad   [3]int
	grid  [3]int

	cells    []Cell
	inner    []int
	boundary []int
	halo     []int
	colors   [][]int

	particles []*dynamo.Particle
	nextID    int

	ghostPool  []*dynamo.Particle
	ghostN     int
	ghostCells []int
}

// New builds the cell grid for a domain starting at origin with the given
// extents. dims is 2 or 3; in 2-D the z axis carries a single cell and no
// halo padding.
func New(origin, domain dynamo.Vec3, cutoff float64, dims int) (*LinkedCells, error) {
	if dims != 2 && dims != 3 {
		return nil, fmt.Errorf("%w: dimensions must be 2 or 3, got %d", dynamo.ErrInvalidDomain, dims)
	}
	if !(cutoff > 0) || math.IsInf(cutoff, 0) {
		return nil, fmt.Errorf("%w: cutoff must be positive, got %g", dynamo.ErrInvalidDomain, cutoff)
	}
	for d := 0; d < dims; d++ {
		if !(domain[d] > 0) || math.IsInf(domain[d], 0) {
			return nil, fmt.Errorf("%w: extent %d must be positive, got %g", dynamo.ErrInvalidDomain, d, domain[d])
		}
	}

	lc := &LinkedCells{
		origin: origin,
		domain: domain,
		cutoff: cutoff,
		dims:   dims,
	}

	for d := 0; d < 3; d++ {
		if d >= dims {
			lc.count[d] = 1
			lc.size[d] = domain[d]
			if !(lc.size[d] > 0) {
				lc.size[d] = 1
			}
			lc.grid[d] = 1
			continue
		}
		lc.count[d] = max(1, int(math.Floor(domain[d]/cutoff)))
		lc.size[d] = domain[d] / float64(lc.count[d])
		lc.pad[d] = 1
		lc.grid[d] = lc.count[d] + 2
	}

	lc.buildCells()
	return lc, nil
}

func (lc *LinkedCells) buildCells() {
	n := lc.grid[0] * lc.grid[1] * lc.grid[2]
	lc.cells = make([]Cell, n)

	for i := range lc.cells {
		c := &lc.cells[i]
		c.index = i
		c.coord = lc.Coord(i)
		c.kind, c.faces = lc.classify(c.coord)

		switch c.kind {
		case Inner:
			lc.inner = append(lc.inner, i)
		case Boundary:
			lc.boundary = append(lc.boundary, i)
		case Halo:
			lc.halo = append(lc.halo, i)
		}
	}

	lc.buildNeighbors()
	lc.buildColors()
}

func (lc *LinkedCells) classify(coord [3]int) (Kind, FaceSet) {
	var haloFaces, boundaryFaces FaceSet
	for d := 0; d < lc.dims; d++ {
		last := lc.grid[d] - 1
		switch coord[d] {
		case 0:
			haloFaces = haloFaces.With(FaceOf(d, false))
		case last:
			haloFaces = haloFaces.With(FaceOf(d, true))
		}
		if coord[d] == 1 {
			boundaryFaces = boundaryFaces.With(FaceOf(d, false))
		}
		if coord[d] == last-1 {
			boundaryFaces = boundaryFaces.With(FaceOf(d, true))
		}
	}

	if haloFaces != 0 {
		return Halo, haloFaces
	}
	if boundaryFaces != 0 {
		return Boundary, boundaryFaces
	}
	return Inner, 0
}

func (lc *LinkedCells) buildNeighbors() {
	span := [3]int{1, 1, 1}
	for d := lc.dims; d < 3; d++ {
		span[d] = 0
	}

	for i := range lc.cells {
		c := &lc.cells[i]
		for dz := -span[2]; dz <= span[2]; dz++ {
			for dy := -span[1]; dy <= span[1]; dy++ {
				for dx := -span[0]; dx <= span[0]; dx++ {
					if dx == 0 && dy == 0 && dz == 0 {
						continue
					}
					nc := [3]int{c.coord[0] + dx, c.coord[1] + dy, c.coord[2] + dz}
					if !lc.inGrid(nc) {
						continue
					}
					j := lc.Index(nc)
					c.neighbors = append(c.neighbors, j)
					if j > i {
						c.forward = append(c.forward, j)
					}
				}
			}
		}
	}
}

// buildColors partitions the grid so that two cells of the same colour are at
// least three cells apart along some axis; their forward stencils never
// touch the same cell.
func (lc *LinkedCells) buildColors() {
	var groups [27][]int
	for i := range lc.cells {
		c := lc.cells[i].coord
		color := c[0]%3 + 3*(c[1]%3) + 9*(c[2]%3)
		groups[color] = append(groups[color], i)
	}
	for _, g := range groups {
		if len(g) > 0 {
			lc.colors = append(lc.colors, g)
		}
	}
}

func (lc *LinkedCells) inGrid(coord [3]int) bool {
	for d := 0; d < 3; d++ {
		if coord[d] < 0 || coord[d] >= lc.grid[d] {
			return false
		}
	}
	return true
}

func (lc *LinkedCells) Index(coord [3]int) int {
	return coord[0] + lc.grid[0]*(coord[1]+lc.grid[1]*coord[2])
}

func (lc *LinkedCells) Coord(index int) [3]int {
	x := index % lc.grid[0]
	rest := index / lc.grid[0]
	return [3]int{x, rest % lc.grid[1], rest / lc.grid[1]}
}

// CoordOf maps a position to its padded grid coordinate. Positions further
// out than the halo layer are clamped into the nearest halo cell.
func (lc *LinkedCells) CoordOf(x dynamo.Vec3) [3]int {
	var coord [3]int
	for d := 0; d < lc.dims; d++ {
		rel := x[d] - lc.origin[d]
		c := math.Floor(rel/lc.size[d]) + float64(lc.pad[d])

		// Rounding in rel/size must not move a position across a domain plane.
		switch {
		case rel < 0:
			c = min(c, 0)
		case rel >= lc.domain[d]:
			c = max(c, float64(lc.count[d]+1))
		default:
			c = max(1, min(c, float64(lc.count[d])))
		}

		last := float64(lc.grid[d] - 1)
		if !(c >= 0) {
			c = 0
		} else if c > last {
			c = last
		}
		coord[d] = int(c)
	}
	return coord
}

func (lc *LinkedCells) CellOf(x dynamo.Vec3) *Cell {
	return &lc.cells[lc.Index(lc.CoordOf(x))]
}

func (lc *LinkedCells) Origin() dynamo.Vec3   { return lc.origin }
func (lc *LinkedCells) Domain() dynamo.Vec3   { return lc.domain }
func (lc *LinkedCells) Cutoff() float64       { return lc.cutoff }
func (lc *LinkedCells) Dims() int             { return lc.dims }
func (lc *LinkedCells) CellCount() [3]int     { return lc.count }
func (lc *LinkedCells) CellSize() dynamo.Vec3 { return lc.size }
func (lc *LinkedCells) GridSize() [3]int      { return lc.grid }
func (lc *LinkedCells) NumCells() int         { return len(lc.cells) }
func (lc *LinkedCells) Cell(index int) *Cell  { return &lc.cells[index] }
func (lc *LinkedCells) InnerCells() []int     { return lc.inner }
func (lc *LinkedCells) BoundaryCells() []int  { return lc.boundary }
func (lc *LinkedCells) HaloCells() []int      { return lc.halo }

// Colors returns the cell partition used by parallel force workers.
func (lc *LinkedCells) Colors() [][]int { return lc.colors }

// Add inserts a copy of p, assigns it the next identity and buckets it.
func (lc *LinkedCells) Add(p dynamo.Particle) *dynamo.Particle {
	np := new(dynamo.Particle)
	*np = p
	np.ID = lc.nextID
	np.Ghost = false
	lc.nextID++

	lc.particles = append(lc.particles, np)
	lc.CellOf(np.X).Add(np)
	return np
}

func (lc *LinkedCells) AddAll(ps []dynamo.Particle) {
	lc.particles = slices.Grow(lc.particles, len(ps))
	for i := range ps {
		lc.Add(ps[i])
	}
}

func (lc *LinkedCells) Size() int { return len(lc.particles) }

func (lc *LinkedCells) Each(fn func(p *dynamo.Particle)) {
	for _, p := range lc.particles {
		fn(p)
	}
}

// Particles returns the live particles ordered by identity.
func (lc *LinkedCells) Particles() []*dynamo.Particle { return lc.particles }

// NextID is the identity the next inserted particle will receive.
func (lc *LinkedCells) NextID() int { return lc.nextID }

// Lookup resolves an identity. Particles stay sorted by ID because identities
// are handed out in increasing order and removal preserves order.
func (lc *LinkedCells) Lookup(id int) (*dynamo.Particle, bool) {
	i, ok := slices.BinarySearchFunc(lc.particles, id, func(p *dynamo.Particle, id int) int {
		return p.ID - id
	})
	if !ok {
		return nil, false
	}
	return lc.particles[i], true
}

// Get resolves an identity and panics if it does not exist; a missing
// identity means the container invariants are broken.
func (lc *LinkedCells) Get(id int) *dynamo.Particle {
	p, ok := lc.Lookup(id)
	if !ok {
		panic(fmt.Errorf("%w: %d", dynamo.ErrUnknownParticle, id))
	}
	return p
}

// RemoveIf permanently deletes every particle matching pred and returns how
// many were removed. Cell membership must be current.
func (lc *LinkedCells) RemoveIf(pred func(p *dynamo.Particle) bool) int {
	removed := 0
	kept := lc.particles[:0]
	for _, p := range lc.particles {
		if pred(p) {
			lc.CellOf(p.X).Remove(p)
			removed++
			continue
		}
		kept = append(kept, p)
	}
	clear(lc.particles[len(kept):])
	lc.particles = kept
	return removed
}

// Rebuild clears every cell and re-inserts all particles at their current
// positions.
func (lc *LinkedCells) Rebuild() {
	for i := range lc.cells {
		lc.cells[i].Clear()
	}
	for _, p := range lc.particles {
		lc.CellOf(p.X).Add(p)
	}
}

func (lc *LinkedCells) ResetForces() {
	for _, p := range lc.particles {
		p.ResetForce()
	}
}

// AddGhost places a transient clone of src at x. Clones are bucketed like
// real particles but never receive force and are dropped by ClearGhosts.
func (lc *LinkedCells) AddGhost(src *dynamo.Particle, x dynamo.Vec3) *dynamo.Particle {
	var g *dynamo.Particle
	if lc.ghostN < len(lc.ghostPool) {
		g = lc.ghostPool[lc.ghostN]
	} else {
		g = new(dynamo.Particle)
		lc.ghostPool = append(lc.ghostPool, g)
	}
	lc.ghostN++

	*g = *src
	g.X = x
	g.Ghost = true

	c := lc.CellOf(x)
	if len(c.ghosts) == 0 {
		lc.ghostCells = append(lc.ghostCells, c.index)
	}
	c.Add(g)
	return g
}

// Ghosts returns the clones placed since the last ClearGhosts.
func (lc *LinkedCells) Ghosts() []*dynamo.Particle { return lc.ghostPool[:lc.ghostN] }

func (lc *LinkedCells) ClearGhosts() {
	if lc.ghostN == 0 {
		return
	}
	for _, i := range lc.ghostCells {
		lc.cells[i].clearGhosts()
	}
	lc.ghostCells = lc.ghostCells[:0]
	lc.ghostN = 0
}

// Restore inserts particles that already carry identities, such as those read
// from a checkpoint. Identities must be strictly increasing and not below
// NextID.
func (lc *LinkedCells) Restore(ps []dynamo.Particle) error {
	for i := range ps {
		if ps[i].ID < lc.nextID {
			return fmt.Errorf("%w: restored id %d below next id %d", dynamo.ErrInvalidConfig, ps[i].ID, lc.nextID)
		}
		np := new(dynamo.Particle)
		*np = ps[i]
		np.Ghost = false
		lc.nextID = np.ID + 1

		lc.particles = append(lc.particles, np)
		lc.CellOf(np.X).Add(np)
	}
	return nil
}

// Reserve raises NextID to at least id. Restored systems use it so that
// identities of particles removed before the snapshot stay retired.
func (lc *LinkedCells) Reserve(id int) {
	if id > lc.nextID {
		lc.nextID = id
	}
}
