package generator

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/mdsim/internal/dynamo"
)

var argon = Material{Mass: 1, Epsilon: 1, Sigma: 1}

func TestCuboid(t *testing.T) {
	c := Cuboid{Corner: dynamo.Vec3{1, 2, 3}, N: [3]int{4, 3, 2}, H: 1.5, Material: argon}
	c.Velocity = dynamo.Vec3{0.5, 0, 0}

	ps, err := c.Generate(3, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(ps) != 24 {
		t.Fatalf("expected 24 particles, got %d", len(ps))
	}

	last := ps[len(ps)-1]
	want := dynamo.Vec3{1 + 3*1.5, 2 + 2*1.5, 3 + 1.5}
	if last.X != want {
		t.Errorf("last particle at %v, expected %v", last.X, want)
	}
	for _, p := range ps {
		if p.V != c.Velocity || p.ID != 0 || p.Mass != 1 {
			t.Fatalf("unexpected particle %+v", p)
		}
	}
}

func TestCuboid2DIgnoresDepth(t *testing.T) {
	c := Cuboid{N: [3]int{5, 5, 7}, H: 1, Material: argon}
	ps, err := c.Generate(2, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(ps) != 25 {
		t.Errorf("expected 25 particles, got %d", len(ps))
	}
}

func TestDisc(t *testing.T) {
	d := Disc{Center: dynamo.Vec3{10, 10, 0}, Radius: 3, H: 1, Material: argon}
	ps, err := d.Generate(2, nil)
	if err != nil {
		t.Fatal(err)
	}

	// lattice points with i²+j² <= 9
	if len(ps) != 29 {
		t.Errorf("expected 29 particles, got %d", len(ps))
	}
	for _, p := range ps {
		if p.X.Sub(d.Center).Norm() > 3+1e-12 {
			t.Errorf("particle %v outside the disc", p.X)
		}
	}
}

func TestBrownianJitter(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	c := Cuboid{N: [3]int{40, 40, 1}, H: 1, Material: argon}
	c.Brownian = 0.5

	ps, err := c.Generate(2, rng)
	if err != nil {
		t.Fatal(err)
	}

	var sum, sq float64
	for _, p := range ps {
		if p.V[2] != 0 {
			t.Fatal("inactive axis received thermal motion")
		}
		sum += p.V[0]
		sq += p.V[0] * p.V[0]
	}
	n := float64(len(ps))
	std := math.Sqrt(sq/n - (sum/n)*(sum/n))
	if math.Abs(std-0.5) > 0.05 {
		t.Errorf("velocity spread %g, expected about 0.5", std)
	}
}

func TestInvalidMaterial(t *testing.T) {
	tests := []struct {
		name string
		gen  interface {
			Generate(int, *rand.Rand) ([]dynamo.Particle, error)
		}
	}{
		{"zero mass", Cuboid{N: [3]int{1, 1, 1}, H: 1}},
		{"zero spacing", Cuboid{N: [3]int{1, 1, 1}, Material: argon}},
		{"negative radius", Disc{Radius: -1, H: 1, Material: argon}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.gen.Generate(3, nil)
			if !errors.Is(err, dynamo.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}
