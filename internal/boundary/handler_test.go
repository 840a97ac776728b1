package boundary_test

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mdsim/internal/boundary"
	"github.com/san-kum/mdsim/internal/cells"
	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/physics"
)

var inert = dynamo.Particle{Mass: 1, Epsilon: 0, Sigma: 1}

var _ = Describe("Handler", func() {
	Describe("construction", func() {
		It("rejects a one-sided periodic axis", func() {
			lc, err := cells.New(dynamo.Vec3{}, dynamo.Vec3{4, 4, 4}, 1, 3)
			Expect(err).NotTo(HaveOccurred())

			conds := boundary.Uniform(boundary.Outflow)
			conds[cells.Top] = boundary.Periodic
			_, err = boundary.New(lc, conds, physics.NewLennardJones(2.5), nil)
			Expect(err).To(MatchError(dynamo.ErrInvalidBoundary))
		})

		It("ignores the z faces in two dimensions", func() {
			lc, err := cells.New(dynamo.Vec3{}, dynamo.Vec3{4, 4, 1}, 1, 2)
			Expect(err).NotTo(HaveOccurred())

			conds := boundary.Uniform(boundary.Periodic)
			conds[cells.Back] = boundary.Outflow
			_, err = boundary.New(lc, conds, physics.NewLennardJones(2.5), nil)
			Expect(err).NotTo(HaveOccurred())
		})

		It("refuses reflecting faces under gravity", func() {
			lc, err := cells.New(dynamo.Vec3{}, dynamo.Vec3{4, 4, 4}, 1, 3)
			Expect(err).NotTo(HaveOccurred())

			_, err = boundary.New(lc, boundary.Uniform(boundary.Reflecting), physics.NewGravity(1), nil)
			Expect(err).To(MatchError(dynamo.ErrReflectingLaw))
		})
	})

	Describe("outflow", func() {
		It("eventually empties the container without reusing identities", func() {
			s := newSystem(dynamo.Vec3{4, 4, 1}, 1, 2, boundary.Uniform(boundary.Outflow), physics.NewLennardJones(2.5), 0.01)
			rng := rand.New(rand.NewSource(5))

			for i := 0; i < 4; i++ {
				for j := 0; j < 4; j++ {
					p := inert
					p.X = dynamo.Vec3{0.5 + float64(i), 0.5 + float64(j), 0}
					angle := rng.Float64() * 2 * math.Pi
					p.V = dynamo.Vec3{math.Cos(angle), math.Sin(angle), 0}
					s.lc.Add(p)
				}
			}
			s.forces()

			removed := 0
			for n := 0; n < 10000 && s.lc.Size() > 0; n++ {
				removed += s.step().Removed
			}

			Expect(s.lc.Size()).To(BeZero())
			Expect(removed).To(Equal(16))
			Expect(s.lc.Add(inert).ID).To(Equal(16))
		})
	})

	Describe("periodic", func() {
		It("keeps positions congruent to the unwrapped trajectory", func() {
			s := newSystem(dynamo.Vec3{4, 4, 1}, 1, 2, boundary.Uniform(boundary.Periodic), physics.NewLennardJones(2.5), 0.01)

			p := inert
			p.X = dynamo.Vec3{3.9, 0.2, 0}
			p.V = dynamo.Vec3{0.73, -0.41, 0}
			start := p.X
			id := s.lc.Add(p).ID
			s.forces()

			wraps := 0
			for n := 1; n <= 1000; n++ {
				wraps += s.step().Wrapped

				q := s.lc.Get(id)
				for d := 0; d < 2; d++ {
					unwrapped := start[d] + p.V[d]*float64(n)*s.dt
					k := (q.X[d] - unwrapped) / 4
					Expect(k).To(BeNumerically("~", math.Round(k), 1e-9))
					Expect(q.X[d]).To(And(BeNumerically(">=", 0), BeNumerically("<", 4)))
				}
			}
			Expect(s.lc.Size()).To(Equal(1))
			Expect(wraps).To(BeNumerically(">", 1))
		})

		It("places face, edge and corner clones", func() {
			s := newSystem(dynamo.Vec3{4, 4, 1}, 1, 2, boundary.Uniform(boundary.Periodic), physics.NewLennardJones(2.5), 0.01)
			s.lc.Add(dynamo.Particle{X: dynamo.Vec3{0.3, 0.4, 0}, Mass: 1, Epsilon: 1, Sigma: 1})
			s.lc.Add(dynamo.Particle{X: dynamo.Vec3{2, 3.5, 0}, Mass: 1, Epsilon: 1, Sigma: 1})

			st := s.handler.Apply()
			Expect(st.Clones).To(Equal(4))

			var at []dynamo.Vec3
			for _, g := range s.lc.Ghosts() {
				Expect(g.Ghost).To(BeTrue())
				at = append(at, g.X)
			}
			Expect(at).To(ConsistOf(
				dynamo.Vec3{4.3, 0.4, 0},
				dynamo.Vec3{0.3, 4.4, 0},
				dynamo.Vec3{4.3, 4.4, 0},
				dynamo.Vec3{2, -0.5, 0},
			))

			s.handler.Release()
			Expect(s.lc.Ghosts()).To(BeEmpty())
			Expect(s.lc.Size()).To(Equal(2))
		})

		It("conserves momentum across the wrap", func() {
			s := newSystem(dynamo.Vec3{6, 6, 1}, 2.5, 2, boundary.Uniform(boundary.Periodic), physics.NewLennardJones(2.5), 0.002)
			for _, x := range []dynamo.Vec3{{0.3, 3, 0}, {5.5, 3.2, 0}, {3, 0.2, 0}, {3.1, 5.6, 0}} {
				s.lc.Add(dynamo.Particle{X: x, Mass: 1, Epsilon: 1, Sigma: 1})
			}
			s.forces()

			for n := 0; n < 500; n++ {
				s.step()
			}

			var momentum dynamo.Vec3
			s.lc.Each(func(p *dynamo.Particle) { momentum = momentum.Add(p.V.Scale(p.Mass)) })
			Expect(momentum.Norm()).To(BeNumerically("<", 1e-9))
		})
	})

	Describe("reflecting", func() {
		It("never lets a particle leave the domain", func() {
			rng := rand.New(rand.NewSource(42))

			for trial := 0; trial < 40; trial++ {
				s := newSystem(dynamo.Vec3{6, 6, 1}, 1.5, 2, boundary.Uniform(boundary.Reflecting), physics.NewLennardJones(2.5), 0.001)

				face := cells.Face(rng.Intn(4))
				a := face.Axis()
				p := dynamo.Particle{Mass: 1, Epsilon: 1, Sigma: 1}
				p.X = dynamo.Vec3{1 + 4*rng.Float64(), 1 + 4*rng.Float64(), 0}
				dist := 0.6 + 0.6*rng.Float64()
				speed := 0.5 + 1.5*rng.Float64()
				if face.Upper() {
					p.X[a] = 6 - dist
					p.V[a] = speed
				} else {
					p.X[a] = dist
					p.V[a] = -speed
				}
				p.V[1-a] = rng.NormFloat64()
				s.lc.Add(p)
				s.forces()

				for n := 0; n < 2000; n++ {
					s.step()
					q := s.lc.Get(0)
					Expect(q.X[0]).To(And(BeNumerically(">", 0), BeNumerically("<", 6)), "trial %d step %d", trial, n)
					Expect(q.X[1]).To(And(BeNumerically(">", 0), BeNumerically("<", 6)), "trial %d step %d", trial, n)
				}
			}
		})

		It("pushes along the face normal only", func() {
			s := newSystem(dynamo.Vec3{6, 6, 6}, 1.5, 3, boundary.Uniform(boundary.Reflecting), physics.NewLennardJones(2.5), 0.001)
			p := s.lc.Add(dynamo.Particle{X: dynamo.Vec3{3, 3, 5.6}, Mass: 1, Epsilon: 1, Sigma: 1})

			st := s.handler.Apply()
			Expect(st.Mirrored).To(Equal(1))
			Expect(p.F[2]).To(BeNumerically("<", 0))
			Expect(p.F[0]).To(BeZero())
			Expect(p.F[1]).To(BeZero())
		})
	})

	Describe("mixed faces", func() {
		var s *system

		BeforeEach(func() {
			conds := boundary.Uniform(boundary.Reflecting)
			conds[cells.Left] = boundary.Outflow
			conds[cells.Bottom] = boundary.Periodic
			conds[cells.Top] = boundary.Periodic
			s = newSystem(dynamo.Vec3{4, 4, 1}, 1, 2, conds, physics.NewLennardJones(2.5), 0.1)
		})

		It("removes a particle leaving through an outflow corner", func() {
			p := inert
			p.X = dynamo.Vec3{0.05, 0.05, 0}
			p.V = dynamo.Vec3{-1, -1, 0}
			s.lc.Add(p)

			st := s.step()
			Expect(st.Removed).To(Equal(1))
			Expect(s.lc.Size()).To(BeZero())
		})

		It("wraps a particle leaving through a periodic face only", func() {
			p := inert
			p.X = dynamo.Vec3{2, 0.05, 0}
			p.V = dynamo.Vec3{0, -1, 0}
			id := s.lc.Add(p).ID

			st := s.step()
			Expect(st.Wrapped).To(Equal(1))
			Expect(s.lc.Get(id).X[1]).To(BeNumerically("~", 3.95, 1e-12))
			Expect(s.lc.CellOf(s.lc.Get(id).X).Kind()).To(Equal(cells.Boundary))
		})
	})
})
