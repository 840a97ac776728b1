package boundary_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/mdsim/internal/boundary"
	"github.com/san-kum/mdsim/internal/cells"
	"github.com/san-kum/mdsim/internal/dynamo"
)

var _ = Describe("geometry helpers", func() {
	origin := dynamo.Vec3{-1, 0, 2}
	extent := dynamo.Vec3{4, 5, 6}

	DescribeTable("Distance and Mirror",
		func(f cells.Face, x dynamo.Vec3, dist float64, mirror dynamo.Vec3) {
			Expect(boundary.Distance(x, f, origin, extent)).To(BeNumerically("~", dist, 1e-12))
			Expect(boundary.Mirror(x, f, origin, extent)).To(Equal(mirror))
		},
		Entry("left", cells.Left, dynamo.Vec3{-0.5, 1, 3}, 0.5, dynamo.Vec3{-1.5, 1, 3}),
		Entry("right", cells.Right, dynamo.Vec3{2.5, 1, 3}, 0.5, dynamo.Vec3{3.5, 1, 3}),
		Entry("top", cells.Top, dynamo.Vec3{0, 4, 3}, 1.0, dynamo.Vec3{0, 6, 3}),
		Entry("front", cells.Front, dynamo.Vec3{0, 1, 2.25}, 0.25, dynamo.Vec3{0, 1, 1.75}),
	)

	DescribeTable("Wrap",
		func(v, want float64) {
			Expect(boundary.Wrap(v, -1, 4)).To(BeNumerically("~", want, 1e-12))
		},
		Entry("inside", 0.5, 0.5),
		Entry("past upper", 3.25, -0.75),
		Entry("past lower", -1.5, 2.5),
		Entry("several periods", 11.0, -1.0),
	)

	It("shifts along a single axis", func() {
		Expect(boundary.Shift(dynamo.Vec3{1, 2, 3}, 1, -5)).To(Equal(dynamo.Vec3{1, -3, 3}))
	})
})

var _ = Describe("Conditions", func() {
	It("decodes from YAML", func() {
		var doc struct {
			Left  boundary.Condition `yaml:"left"`
			Right boundary.Condition `yaml:"right"`
			Top   boundary.Condition `yaml:"top"`
		}
		Expect(yaml.Unmarshal([]byte("left: periodic\nright: Reflecting\ntop: outflow\n"), &doc)).To(Succeed())
		Expect(doc.Left).To(Equal(boundary.Periodic))
		Expect(doc.Right).To(Equal(boundary.Reflecting))
		Expect(doc.Top).To(Equal(boundary.Outflow))

		err := yaml.Unmarshal([]byte("left: sticky\n"), &doc)
		Expect(err).To(MatchError(ContainSubstring("sticky")))
	})

	It("encodes to YAML", func() {
		out, err := yaml.Marshal(map[string]boundary.Condition{"back": boundary.Periodic})
		Expect(err).NotTo(HaveOccurred())
		Expect(string(out)).To(Equal("back: periodic\n"))
	})

	It("reports periodic axes", func() {
		cs := boundary.Uniform(boundary.Reflecting)
		cs[cells.Front], cs[cells.Back] = boundary.Periodic, boundary.Periodic
		Expect(cs.Validate(3)).To(Succeed())
		Expect(cs.Periodic(2)).To(BeTrue())
		Expect(cs.Periodic(0)).To(BeFalse())
		Expect(cs.Has(boundary.Periodic, 2)).To(BeFalse())
		Expect(cs.Has(boundary.Periodic, 3)).To(BeTrue())
	})
})
