package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/mdsim/internal/dynamo"
)

// Sample is a summary of a particle set at one instant.
type Sample struct {
	Time        float64
	Count       int
	Kinetic     float64
	Temperature float64
	Momentum    float64
	MeanSpeed   float64
	SpeedStdDev float64
}

// Measure summarises ps. Temperature is 2*E_kin/(dims*N) in reduced units.
func Measure(ps dynamo.ParticleSet, t float64, dims int) Sample {
	n := ps.Size()
	s := Sample{Time: t, Count: n}
	if n == 0 {
		return s
	}

	energies := make([]float64, 0, n)
	speeds := make([]float64, 0, n)
	var momentum dynamo.Vec3
	ps.Each(func(p *dynamo.Particle) {
		energies = append(energies, p.KineticEnergy())
		speeds = append(speeds, p.V.Norm())
		momentum = momentum.Add(p.V.Scale(p.Mass))
	})

	s.Kinetic = floats.Sum(energies)
	s.Temperature = 2 * s.Kinetic / (float64(dims) * float64(n))
	s.Momentum = momentum.Norm()
	if n > 1 {
		s.MeanSpeed, s.SpeedStdDev = stat.MeanStdDev(speeds, nil)
	} else {
		s.MeanSpeed = speeds[0]
	}
	return s
}

type KineticEnergy struct {
	name  string
	value float64
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (k *KineticEnergy) Name() string { return k.name }

func (k *KineticEnergy) Observe(ps dynamo.ParticleSet, t float64) {
	var sum float64
	ps.Each(func(p *dynamo.Particle) { sum += p.KineticEnergy() })
	k.value = sum
}

func (k *KineticEnergy) Value() float64 { return k.value }
func (k *KineticEnergy) Reset()         { k.value = 0 }

type Temperature struct {
	name  string
	dims  int
	value float64
}

func NewTemperature(dims int) *Temperature {
	return &Temperature{name: "temperature", dims: dims}
}

func (m *Temperature) Name() string { return m.name }

func (m *Temperature) Observe(ps dynamo.ParticleSet, t float64) {
	m.value = Measure(ps, t, m.dims).Temperature
}

func (m *Temperature) Value() float64 { return m.value }
func (m *Temperature) Reset()         { m.value = 0 }

// Count tracks the live particle count; with outflow faces it only shrinks.
type Count struct {
	name    string
	value   float64
	initial float64
	samples int
}

func NewCount() *Count {
	return &Count{name: "particles"}
}

func (c *Count) Name() string { return c.name }

func (c *Count) Observe(ps dynamo.ParticleSet, t float64) {
	c.value = float64(ps.Size())
	if c.samples == 0 {
		c.initial = c.value
	}
	c.samples++
}

func (c *Count) Value() float64 { return c.value }

// Lost is the number of particles removed since the first observation.
func (c *Count) Lost() float64 { return c.initial - c.value }

func (c *Count) Reset() {
	c.value = 0
	c.initial = 0
	c.samples = 0
}

// MomentumDrift records the largest total momentum magnitude seen. It stays
// at rounding level for closed periodic systems that start at rest.
type MomentumDrift struct {
	name     string
	maxDrift float64
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(ps dynamo.ParticleSet, t float64) {
	var total dynamo.Vec3
	ps.Each(func(p *dynamo.Particle) { total = total.Add(p.V.Scale(p.Mass)) })
	m.maxDrift = math.Max(m.maxDrift, total.Norm())
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }
func (m *MomentumDrift) Reset()         { m.maxDrift = 0 }

// Standard returns the metrics attached to every run.
func Standard(dims int) []dynamo.Metric {
	return []dynamo.Metric{
		NewKineticEnergy(),
		NewTemperature(dims),
		NewCount(),
		NewMomentumDrift(),
	}
}
