package boundary

import (
	"fmt"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"github.com/san-kum/mdsim/internal/cells"
	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/physics"
)

// Stats summarises one application of the boundary rules.
type Stats struct {
	Removed  int
	Wrapped  int
	Mirrored int
	Clones   int
	Skipped  int
	Invalid  int
}

func (s *Stats) Merge(o Stats) {
	s.Removed += o.Removed
	s.Wrapped += o.Wrapped
	s.Mirrored += o.Mirrored
	s.Clones += o.Clones
	s.Skipped += o.Skipped
	s.Invalid += o.Invalid
}

// Handler applies the per-face conditions to a linked-cell index. It runs
// after the particles have been moved and re-bucketed, and before the force
// phase.
type Handler struct {
	lc     *cells.LinkedCells
	conds  Conditions
	law    physics.Law
	logger log.Logger

	origin dynamo.Vec3
	extent dynamo.Vec3
	dims   int

	periodic  []int
	reflect   bool
	removeSet map[*dynamo.Particle]struct{}
}

// New binds conditions to an index. Reflecting faces need a law with a
// repulsive core.
func New(lc *cells.LinkedCells, conds Conditions, law physics.Law, logger log.Logger) (*Handler, error) {
	if err := conds.Validate(lc.Dims()); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}

	h := &Handler{
		lc:        lc,
		conds:     conds,
		law:       law,
		logger:    log.With(logger, "subsys", "boundary"),
		origin:    lc.Origin(),
		extent:    lc.Domain(),
		dims:      lc.Dims(),
		removeSet: make(map[*dynamo.Particle]struct{}),
	}

	if conds.Has(Reflecting, h.dims) {
		if law.RepulsiveRange(dynamo.Params{Sigma: 1}) == 0 {
			return nil, fmt.Errorf("%w: %s", dynamo.ErrReflectingLaw, law)
		}
		h.reflect = true
	}

	for d := 0; d < h.dims; d++ {
		if !conds.Periodic(d) {
			continue
		}
		h.periodic = append(h.periodic, d)
		if h.extent[d] < 2*lc.Cutoff() {
			level.Warn(h.logger).Log(
				"msg", "periodic extent below twice the cutoff, particles may see several images of a partner",
				"axis", d, "extent", h.extent[d], "cutoff", lc.Cutoff())
		}
	}

	level.Debug(h.logger).Log("conditions", conds.String())
	return h, nil
}

func (h *Handler) Conditions() Conditions { return h.conds }

// Apply runs the halo rules (removal and wrapping), then injects mirror
// forces at reflecting faces and finally places periodic clones. Forces must
// have been reset before the call; clones stay in place until Release.
func (h *Handler) Apply() Stats {
	var st Stats
	h.handleHalo(&st)
	if h.reflect {
		h.applyMirrorForces(&st)
	}
	if len(h.periodic) > 0 {
		h.placeClones(&st)
	}

	if st.Removed > 0 || st.Wrapped > 0 || st.Skipped > 0 {
		level.Debug(h.logger).Log(
			"removed", st.Removed, "wrapped", st.Wrapped,
			"mirrored", st.Mirrored, "clones", st.Clones, "skipped", st.Skipped)
	}
	if st.Invalid > 0 {
		level.Warn(h.logger).Log("msg", "removed particles with non-finite position", "count", st.Invalid)
	}
	return st
}

// Release drops the clones placed by the last Apply.
func (h *Handler) Release() {
	h.lc.ClearGhosts()
}

// handleHalo inspects every real particle that ended up in the halo layer. A
// particle that crossed any outflow face is deleted. Otherwise the periodic
// axes it crossed are wrapped; crossings of reflecting faces are left alone.
func (h *Handler) handleHalo(st *Stats) {
	for _, i := range h.lc.HaloCells() {
		for _, p := range h.lc.Cell(i).Particles() {
			if !p.X.IsValid() {
				h.removeSet[p] = struct{}{}
				st.Invalid++
				continue
			}

			exits := exitFaces(p.X, h.origin, h.extent, h.dims)
			if exits == 0 {
				continue
			}

			outflow := false
			for _, f := range exits.Faces() {
				if h.conds[f] == Outflow {
					outflow = true
					break
				}
			}
			if outflow {
				h.removeSet[p] = struct{}{}
				continue
			}

			wrapped := false
			for _, f := range exits.Faces() {
				if h.conds[f] != Periodic {
					continue
				}
				a := f.Axis()
				p.X[a] = Wrap(p.X[a], h.origin[a], h.extent[a])
				wrapped = true
			}
			if wrapped {
				st.Wrapped++
			}
		}
	}

	if len(h.removeSet) > 0 {
		st.Removed = h.lc.RemoveIf(func(p *dynamo.Particle) bool {
			_, ok := h.removeSet[p]
			return ok
		})
		clear(h.removeSet)
	}
	if st.Wrapped > 0 {
		h.lc.Rebuild()
	}
}

// applyMirrorForces pushes particles in boundary cells away from reflecting
// planes they come closer to than half the law's repulsive range. The force
// is the law evaluated against the particle's own mirror image.
func (h *Handler) applyMirrorForces(st *Stats) {
	for _, i := range h.lc.BoundaryCells() {
		c := h.lc.Cell(i)
		for _, f := range c.Faces().Faces() {
			if h.conds[f] != Reflecting {
				continue
			}
			for _, p := range c.Particles() {
				params := p.Params()
				if Distance(p.X, f, h.origin, h.extent) >= 0.5*h.law.RepulsiveRange(params) {
					continue
				}
				force, ok := h.law.Force(p.X, Mirror(p.X, f, h.origin, h.extent), params, params)
				if !ok {
					st.Skipped++
					continue
				}
				p.F = p.F.Add(force)
				st.Mirrored++
			}
		}
	}
}

// placeClones copies particles within one cutoff of a periodic face to the
// opposite side of the domain. Axes are processed in order and each later
// axis also clones the clones of earlier ones, which yields edge and corner
// images.
func (h *Handler) placeClones(st *Stats) {
	rc := h.lc.Cutoff()
	for _, d := range h.periodic {
		lo, hi := h.origin[d], h.origin[d]+h.extent[d]
		ghosts := h.lc.Ghosts()

		clone := func(p *dynamo.Particle) {
			if p.X[d]-lo <= rc {
				h.lc.AddGhost(p, Shift(p.X, d, h.extent[d]))
				st.Clones++
			}
			if hi-p.X[d] <= rc {
				h.lc.AddGhost(p, Shift(p.X, d, -h.extent[d]))
				st.Clones++
			}
		}

		for _, p := range h.lc.Particles() {
			clone(p)
		}
		for _, g := range ghosts {
			clone(g)
		}
	}
}
